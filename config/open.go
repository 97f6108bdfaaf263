package config

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/local"
	"github.com/jmgilman/go/storage/logging"
	"github.com/jmgilman/go/storage/metrics"
	"github.com/jmgilman/go/storage/minio"
	"github.com/jmgilman/go/storage/s3"
)

// Option customizes Open.
type Option func(*openOptions)

type openOptions struct {
	registerer prometheus.Registerer
	logger     *zap.Logger
}

// WithRegisterer registers metrics on reg instead of the default registry.
// Metric families can only be registered once per registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *openOptions) { o.registerer = reg }
}

// WithLogger uses l instead of building a logger from Config.Logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *openOptions) { o.logger = l }
}

// Open validates cfg and builds the adapter it selects. The returned logger
// is the one handed to the adapter; callers should Sync it on shutdown.
func Open(ctx context.Context, cfg Config, opts ...Option) (core.Adapter, *zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to build logger")
		}
	}

	adapter, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Metrics.Enabled {
		adapter = metrics.Wrap(adapter, metrics.New(o.registerer), cfg.Adapter)
	}

	logger.Info("storage adapter opened",
		zap.String("adapter", cfg.Adapter),
		zap.String("prefix", adapter.PathPrefix()),
		zap.Bool("metrics", cfg.Metrics.Enabled))
	return adapter, logger, nil
}

func open(ctx context.Context, cfg Config, logger *zap.Logger) (core.Adapter, error) {
	switch cfg.Adapter {
	case AdapterMemory:
		return local.NewMemory(local.WithPrefix(cfg.Prefix), local.WithLogger(logger)), nil

	case AdapterLocal:
		return local.New(cfg.Local.Root, local.WithPrefix(cfg.Prefix), local.WithLogger(logger))

	case AdapterMinIO:
		mc := cfg.MinIO
		if mc.Prefix == "" {
			mc.Prefix = cfg.Prefix
		}
		mc.Logger = logger
		return minio.New(mc)

	case AdapterS3:
		client, err := s3.NewClient(ctx, cfg.S3.ClientConfig)
		if err != nil {
			return nil, err
		}
		prefix := cfg.S3.Prefix
		if prefix == "" {
			prefix = cfg.Prefix
		}
		return s3.New(s3.Config{
			Client:         client,
			Bucket:         cfg.S3.Bucket,
			Prefix:         prefix,
			PageSize:       cfg.S3.PageSize,
			ACL:            cfg.S3.ACL,
			MaxConcurrency: cfg.S3.MaxConcurrency,
			Logger:         logger,
		})

	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown adapter %q", cfg.Adapter)
	}
}
