// Package s3 archives run reports and diagnostic bundles to S3-compatible
// object storage.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the S3 service the archiver calls.
type S3API interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configure the archiver.
type Options struct {
	// Bucket receives the archived objects. Required.
	Bucket string

	// Prefix is prepended to every object key.
	Prefix string

	// Region overrides the ambient AWS region.
	Region string

	// Endpoint points at an S3-compatible service. When set, path-style
	// addressing is used.
	Endpoint string

	// AccessKey and SecretKey override the ambient credential chain. Both
	// must be set together.
	AccessKey string
	SecretKey string
}

// Archiver uploads JSON payloads from provisioning runs.
type Archiver struct {
	s3     S3API
	bucket string
	prefix string
}

// NewArchiver resolves credentials and wires the S3 client.
func NewArchiver(ctx context.Context, opts Options) (*Archiver, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Archiver{s3: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// NewArchiverWithAPI wires an archiver around a pre-built S3 API. Tests use
// this to substitute fakes.
func NewArchiverWithAPI(api S3API, opts Options) *Archiver {
	return &Archiver{s3: api, bucket: opts.Bucket, prefix: opts.Prefix}
}

// EnsureBucket creates the archive bucket. A bucket that already exists and
// is owned by the caller is fine.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	_, err := a.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Archive uploads one JSON payload under the configured prefix.
func (a *Archiver) Archive(ctx context.Context, key string, payload []byte) error {
	objectKey := path.Join(a.prefix, key)

	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", objectKey, a.bucket, err)
	}
	return nil
}

// isBucketAlreadyOwnedByYou checks whether bucket creation collided with a
// bucket the caller already owns.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}

	var exists *types.BucketAlreadyExists
	if errors.As(err, &exists) {
		return true
	}

	// S3-compatible services do not always return the typed SDK errors.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists"
	}

	return false
}
