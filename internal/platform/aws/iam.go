package aws

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// maxPolicyVersions is the IAM limit on managed policy versions. Creating a
// new version at the limit requires deleting an old one first.
const maxPolicyVersions = 5

// OIDCProvider is the observed state of an IAM OIDC identity provider.
type OIDCProvider struct {
	ARN         string
	URL         string
	ClientIDs   []string
	Thumbprints []string
	Tags        map[string]string
}

// Policy is the observed state of an IAM managed policy. DocumentJSON holds
// the decoded default version document.
type Policy struct {
	ARN              string
	Name             string
	DocumentJSON     string
	DefaultVersionID string
	Tags             map[string]string
}

// GetOIDCProvider returns the identity provider for the given issuer URL,
// or nil when none exists.
func (c *Client) GetOIDCProvider(ctx context.Context, issuerURL string) (*OIDCProvider, error) {
	account, err := c.AccountID(ctx)
	if err != nil {
		return nil, err
	}
	arn := providerARN(account, issuerURL)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out, err := c.iam.GetOpenIDConnectProvider(ctx, &iam.GetOpenIDConnectProviderInput{
		OpenIDConnectProviderArn: aws.String(arn),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity provider %s: %w", issuerURL, err)
	}

	return &OIDCProvider{
		ARN:         arn,
		URL:         aws.ToString(out.Url),
		ClientIDs:   out.ClientIDList,
		Thumbprints: out.ThumbprintList,
		Tags:        iamTagMap(out.Tags),
	}, nil
}

// CreateOIDCProvider registers an identity provider for the issuer and
// returns its ARN.
func (c *Client) CreateOIDCProvider(ctx context.Context, issuerURL string, clientIDs, thumbprints []string, tags map[string]string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	out, err := c.iam.CreateOpenIDConnectProvider(ctx, &iam.CreateOpenIDConnectProviderInput{
		Url:            aws.String(issuerURL),
		ClientIDList:   clientIDs,
		ThumbprintList: thumbprints,
		Tags:           iamTagSlice(tags),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create identity provider %s: %w", issuerURL, err)
	}
	return aws.ToString(out.OpenIDConnectProviderArn), nil
}

// GetPolicy returns the managed policy with the given name, or nil when
// none exists. The default version document is fetched and decoded.
func (c *Client) GetPolicy(ctx context.Context, name string) (*Policy, error) {
	account, err := c.AccountID(ctx)
	if err != nil {
		return nil, err
	}
	arn := policyARN(account, name)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out, err := c.iam.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: aws.String(arn)})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get policy %s: %w", name, err)
	}

	policy := &Policy{
		ARN:              arn,
		Name:             aws.ToString(out.Policy.PolicyName),
		DefaultVersionID: aws.ToString(out.Policy.DefaultVersionId),
		Tags:             iamTagMap(out.Policy.Tags),
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	version, err := c.iam.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
		PolicyArn: aws.String(arn),
		VersionId: out.Policy.DefaultVersionId,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get policy version %s: %w", policy.DefaultVersionID, err)
	}
	policy.DocumentJSON = decodePolicyDocument(aws.ToString(version.PolicyVersion.Document))

	return policy, nil
}

// CreatePolicy creates a managed policy and returns its ARN.
func (c *Client) CreatePolicy(ctx context.Context, name, documentJSON string, tags map[string]string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	out, err := c.iam.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(documentJSON),
		Tags:           iamTagSlice(tags),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create policy %s: %w", name, err)
	}
	return aws.ToString(out.Policy.Arn), nil
}

// CreatePolicyVersion publishes a new default version of an existing
// policy. At the version limit the oldest non-default version is pruned
// first.
func (c *Client) CreatePolicyVersion(ctx context.Context, arn, documentJSON string) error {
	if err := c.prunePolicyVersions(ctx, arn); err != nil {
		return err
	}

	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.iam.CreatePolicyVersion(ctx, &iam.CreatePolicyVersionInput{
		PolicyArn:      aws.String(arn),
		PolicyDocument: aws.String(documentJSON),
		SetAsDefault:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to create policy version for %s: %w", arn, err)
	}
	return nil
}

// prunePolicyVersions deletes the oldest non-default version when the
// policy sits at the version limit.
func (c *Client) prunePolicyVersions(ctx context.Context, arn string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	out, err := c.iam.ListPolicyVersions(ctx, &iam.ListPolicyVersionsInput{PolicyArn: aws.String(arn)})
	if err != nil {
		return fmt.Errorf("failed to list policy versions for %s: %w", arn, err)
	}
	if len(out.Versions) < maxPolicyVersions {
		return nil
	}

	var oldest *iamtypes.PolicyVersion
	for i := range out.Versions {
		v := &out.Versions[i]
		if v.IsDefaultVersion {
			continue
		}
		if oldest == nil || createDate(v).Before(createDate(oldest)) {
			oldest = v
		}
	}
	if oldest == nil {
		return nil
	}

	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err = c.iam.DeletePolicyVersion(ctx, &iam.DeletePolicyVersionInput{
		PolicyArn: aws.String(arn),
		VersionId: oldest.VersionId,
	})
	if err != nil {
		return fmt.Errorf("failed to delete policy version %s: %w", aws.ToString(oldest.VersionId), err)
	}
	return nil
}

func createDate(v *iamtypes.PolicyVersion) time.Time {
	if v.CreateDate == nil {
		return time.Time{}
	}
	return *v.CreateDate
}

// providerARN builds the identity provider ARN for an issuer URL. The ARN
// path is the issuer without its scheme.
func providerARN(accountID, issuerURL string) string {
	host := strings.TrimPrefix(issuerURL, "https://")
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("arn:aws:iam::%s:oidc-provider/%s", accountID, host)
}

// policyARN builds the managed policy ARN for a policy name.
func policyARN(accountID, name string) string {
	return fmt.Sprintf("arn:aws:iam::%s:policy/%s", accountID, name)
}

// decodePolicyDocument URL-decodes the document returned by the API.
// Documents that are not URL-encoded pass through unchanged.
func decodePolicyDocument(document string) string {
	decoded, err := url.QueryUnescape(document)
	if err != nil {
		return document
	}
	return decoded
}

func iamTagSlice(tags map[string]string) []iamtypes.Tag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]iamtypes.Tag, 0, len(tags))
	for _, k := range keys {
		out = append(out, iamtypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func iamTagMap(tags []iamtypes.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		out[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return out
}
