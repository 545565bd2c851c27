// Package aws provides rate-limited access to the IAM, EC2, and STS APIs.
//
// The client exposes narrow DTOs instead of SDK output types so that
// resource handlers stay decoupled from SDK churn. Absence of a resource is
// reported as a nil DTO, never as an error.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/time/rate"
)

// IAMAPI is the subset of the IAM service the provisioner calls.
type IAMAPI interface {
	GetOpenIDConnectProvider(ctx context.Context, params *iam.GetOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.GetOpenIDConnectProviderOutput, error)
	CreateOpenIDConnectProvider(ctx context.Context, params *iam.CreateOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.CreateOpenIDConnectProviderOutput, error)
	GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error)
	GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error)
	CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	CreatePolicyVersion(ctx context.Context, params *iam.CreatePolicyVersionInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyVersionOutput, error)
	ListPolicyVersions(ctx context.Context, params *iam.ListPolicyVersionsInput, optFns ...func(*iam.Options)) (*iam.ListPolicyVersionsOutput, error)
	DeletePolicyVersion(ctx context.Context, params *iam.DeletePolicyVersionInput, optFns ...func(*iam.Options)) (*iam.DeletePolicyVersionOutput, error)
}

// EC2API is the subset of the EC2 service the provisioner calls.
type EC2API interface {
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

// STSAPI is the subset of the STS service the provisioner calls.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Options tune the client.
type Options struct {
	// Region overrides the ambient AWS region.
	Region string

	// RateLimitRPS bounds API calls per second. Out-of-range values fall
	// back to the default.
	RateLimitRPS int
}

// Client wraps the AWS service clients behind a shared rate limiter.
type Client struct {
	iam IAMAPI
	ec2 EC2API
	sts STSAPI

	limiter *rate.Limiter

	mu        sync.Mutex
	accountID string
}

// NewClient resolves the ambient AWS configuration (environment, shared
// config, instance role) and wires the service clients.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		iam:     iam.NewFromConfig(cfg),
		ec2:     ec2.NewFromConfig(cfg),
		sts:     sts.NewFromConfig(cfg),
		limiter: newLimiter(opts.RateLimitRPS),
	}, nil
}

// NewClientWithAPIs wires a client around pre-built service APIs. Tests use
// this to substitute fakes.
func NewClientWithAPIs(iamAPI IAMAPI, ec2API EC2API, stsAPI STSAPI, opts Options) *Client {
	return &Client{
		iam:     iamAPI,
		ec2:     ec2API,
		sts:     stsAPI,
		limiter: newLimiter(opts.RateLimitRPS),
	}
}

// wait blocks until the rate limiter admits one API call.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
