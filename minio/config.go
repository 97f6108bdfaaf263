package minio

import (
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/errors"
)

// Config holds MinIO adapter configuration.
type Config struct {
	// Endpoint is the MinIO server address (e.g., "localhost:9000")
	Endpoint string `yaml:"endpoint"`

	// Bucket is the bucket every key lives in
	Bucket string `yaml:"bucket"`

	// AccessKey is the access key ID for authentication
	AccessKey string `yaml:"access_key"`

	// SecretKey is the secret access key for authentication
	SecretKey string `yaml:"secret_key"`

	// Region is sent with requests when set
	Region string `yaml:"region"`

	// UseSSL enables HTTPS connections
	UseSSL bool `yaml:"use_ssl"`

	// Prefix namespaces every key under a sub-tree of the bucket
	Prefix string `yaml:"prefix"`

	// ACL enables object ACLs for visibility. MinIO servers accept but
	// ignore ACL headers, so leave this off unless the endpoint enforces
	// them; visibility is then reported as public.
	ACL bool `yaml:"acl"`

	// Client is an optional pre-configured MinIO client.
	// If provided, Endpoint/AccessKey/SecretKey are ignored.
	Client *minio.Client `yaml:"-"`

	// MaxConcurrency limits concurrent copies during CopyDir and RenameDir.
	// Default: 10
	MaxConcurrency int `yaml:"max_concurrency"`

	// Logger receives debug logs for every call to the server.
	// Default: no logging
	Logger *zap.Logger `yaml:"-"`
}

// defaultConcurrency is used when MaxConcurrency is not set.
const defaultConcurrency = 10

// validate checks if the configuration is valid.
// Either Client OR (Endpoint + AccessKey + SecretKey) must be provided.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.MaxConcurrency < 0 {
		return errors.New(errors.CodeInvalidConfig, "max concurrency must not be negative")
	}

	if c.Client != nil {
		return nil
	}

	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return errors.New(errors.CodeInvalidConfig, "access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return errors.New(errors.CodeInvalidConfig, "secret key is required when client is not provided")
	}

	return nil
}
