package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/errors"
)

// ClientConfig describes how to reach an S3-compatible endpoint.
type ClientConfig struct {
	// Endpoint overrides the AWS endpoint (e.g., "http://localhost:9000").
	// Empty means AWS.
	Endpoint string `yaml:"endpoint"`

	// Region is the signing region. Default: us-east-1
	Region string `yaml:"region"`

	// AccessKey and SecretKey are static credentials. When both are empty
	// the default AWS credential chain is used.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// UsePathStyle addresses buckets as path segments instead of
	// subdomains, as MinIO and most S3-compatible servers require.
	UsePathStyle bool `yaml:"use_path_style"`
}

// defaultRegion is used when ClientConfig.Region is empty.
const defaultRegion = "us-east-1"

// NewClient builds an S3 client from cfg.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load aws config")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Config holds S3 adapter configuration.
type Config struct {
	// Client performs the requests. Required.
	Client API

	// Bucket is the bucket every key lives in. Required.
	Bucket string

	// Prefix namespaces every key under a sub-tree of the bucket.
	Prefix string

	// PageSize is the MaxKeys sent with each listing request.
	// Default: 1000 (the S3 maximum)
	PageSize int32

	// ACL enables object ACLs for visibility. Buckets with ACLs disabled
	// reject ACL requests, so leave this off for them; visibility is then
	// reported as public.
	ACL bool

	// MaxConcurrency bounds the parallel copies made by CopyDir and
	// RenameDir. Default: 10
	MaxConcurrency int

	// Logger receives debug logs for every request.
	// Default: no logging
	Logger *zap.Logger
}

const (
	// defaultPageSize is used when PageSize is not set.
	defaultPageSize = 1000

	// defaultConcurrency is used when MaxConcurrency is not set.
	defaultConcurrency = 10
)

func (c *Config) validate() error {
	if c.Client == nil {
		return errors.New(errors.CodeInvalidConfig, "client is required")
	}
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.PageSize < 0 || c.PageSize > defaultPageSize {
		return errors.Newf(errors.CodeInvalidConfig, "page size must be between 1 and %d", defaultPageSize)
	}
	if c.MaxConcurrency < 0 {
		return errors.New(errors.CodeInvalidConfig, "max concurrency must not be negative")
	}
	return nil
}
