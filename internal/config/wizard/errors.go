package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errClusterNameRequired  = errors.New("cluster name is required")
	errClusterNameInvalid   = errors.New("cluster name must be 1-32 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errIssuerRequired       = errors.New("OIDC issuer URL is required")
	errIssuerInvalid        = errors.New("OIDC issuer must be an https:// URL")
	errRoleARNRequired      = errors.New("role ARN is required")
	errRoleARNInvalid       = errors.New("role ARN must start with arn:")
	errRepoRequired         = errors.New("chart repository URL is required")
	errRepoInvalid          = errors.New("invalid repository URL (expected: https://charts.example.com)")
	errChartNameRequired    = errors.New("chart name is required")
	errChartVersionRequired = errors.New("chart version is required")
	errDocumentRequired     = errors.New("policy document is required")
	errDocumentInvalid      = errors.New("policy document is not valid YAML or JSON")
	errSubnetIDInvalid      = errors.New("subnet IDs must start with subnet-")
	errBucketRequired       = errors.New("bucket name is required")
)
