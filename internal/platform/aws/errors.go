package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// notFoundCodes are API error codes that mean the resource does not exist.
var notFoundCodes = []string{
	// IAM
	"NoSuchEntity",
	"NoSuchEntityException",

	// EC2
	"InvalidSubnetID.NotFound",
	"InvalidSubnet.NotFound",
	"InvalidVpcID.NotFound",
}

// authCodes are API error codes that mean the caller lacks permission.
var authCodes = []string{
	"AccessDenied",
	"AccessDeniedException",
	"AuthFailure",
	"UnauthorizedOperation",
	"InvalidClientTokenId",
	"ExpiredToken",
}

// throttleCodes are API error codes that mean the caller should back off.
var throttleCodes = []string{
	"Throttling",
	"ThrottlingException",
	"RequestLimitExceeded",
	"TooManyRequestsException",
}

// IsNotFound reports whether err means the requested resource is absent.
func IsNotFound(err error) bool {
	return hasErrorCode(err, notFoundCodes) ||
		strings.Contains(errorMessage(err), "not found")
}

// IsAuthError reports whether err is an authentication or authorization
// failure. These are never retried.
func IsAuthError(err error) bool {
	return hasErrorCode(err, authCodes)
}

// IsThrottling reports whether err is a rate-limit rejection worth retrying.
func IsThrottling(err error) bool {
	return hasErrorCode(err, throttleCodes)
}

func hasErrorCode(err error, codes []string) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	for _, c := range codes {
		if code == c {
			return true
		}
	}
	return false
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
