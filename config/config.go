// Package config loads a storage configuration from YAML and opens the
// adapter it describes.
//
// # Usage Example
//
//	cfg, err := config.Load("storage.yaml")
//	if err != nil {
//	    return err
//	}
//	adapter, logger, err := config.Open(ctx, *cfg)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
// A configuration file looks like:
//
//	adapter: s3
//	prefix: uploads
//	logging:
//	  level: debug
//	s3:
//	  bucket: assets
//	  region: eu-west-1
//	  access_key: ${AWS_ACCESS_KEY_ID}
//	  secret_key: ${AWS_SECRET_ACCESS_KEY}
package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/logging"
	"github.com/jmgilman/go/storage/minio"
	"github.com/jmgilman/go/storage/s3"
)

// Adapter names accepted in Config.Adapter.
const (
	AdapterLocal  = "local"
	AdapterMemory = "memory"
	AdapterMinIO  = "minio"
	AdapterS3     = "s3"
)

// Config selects and configures one storage adapter.
type Config struct {
	// Adapter is one of local, memory, minio or s3.
	Adapter string `yaml:"adapter"`

	// Prefix roots the adapter at a sub-tree of its medium. A prefix set in
	// the minio or s3 section takes precedence.
	Prefix string `yaml:"prefix"`

	Logging logging.Config `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`

	Local LocalConfig  `yaml:"local"`
	MinIO minio.Config `yaml:"minio"`
	S3    S3Config     `yaml:"s3"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LocalConfig configures the disk-backed adapter.
type LocalConfig struct {
	// Root is the directory every path resolves under. It is created if
	// missing.
	Root string `yaml:"root"`
}

// S3Config configures the S3 adapter and the client it talks through.
type S3Config struct {
	s3.ClientConfig `yaml:",inline"`

	Bucket         string `yaml:"bucket"`
	Prefix         string `yaml:"prefix"`
	PageSize       int32  `yaml:"page_size"`
	ACL            bool   `yaml:"acl"`
	MaxConcurrency int    `yaml:"max_concurrency"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Adapter: AdapterMemory,
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read config file %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML document on top of Default and validates the result.
// ${VAR} and $VAR references are expanded from the environment first.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected adapter has what it needs. Backend
// packages validate the remaining fields when the adapter is opened.
func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterMemory:
	case AdapterLocal:
		if c.Local.Root == "" {
			return errors.New(errors.CodeInvalidConfig, "local.root is required")
		}
	case AdapterMinIO:
		if c.MinIO.Bucket == "" {
			return errors.New(errors.CodeInvalidConfig, "minio.bucket is required")
		}
		if c.MinIO.Endpoint == "" {
			return errors.New(errors.CodeInvalidConfig, "minio.endpoint is required")
		}
	case AdapterS3:
		if c.S3.Bucket == "" {
			return errors.New(errors.CodeInvalidConfig, "s3.bucket is required")
		}
	case "":
		return errors.New(errors.CodeInvalidConfig, "adapter is required")
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown adapter %q", c.Adapter)
	}
	return nil
}
