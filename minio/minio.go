// Package minio provides a MinIO/S3-compatible implementation of the
// core.Adapter contract.
package minio

import (
	"context"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/logging"
	"github.com/jmgilman/go/storage/minio/internal/errs"
)

// fields maps minio.ObjectInfo attributes onto Entry fields.
var fields = core.FieldMap{
	"Key":          core.FieldPath,
	"Size":         core.FieldSize,
	"LastModified": core.FieldTimestamp,
	"ContentType":  core.FieldMimetype,
	"ETag":         core.FieldETag,
	"StorageClass": core.FieldStorageClass,
	"UserMetadata": core.FieldMetadata,
}

// Adapter implements core.Adapter for MinIO/S3-compatible storage.
//
// Directories do not exist on the server. CreateDir writes a zero-byte
// "dir/" placeholder and every other directory is emulated from key
// prefixes.
type Adapter struct {
	client      *minio.Client
	bucket      string
	prefixer    *core.Prefixer
	normalizer  *core.Normalizer
	acl         bool
	concurrency int
	logger      *zap.Logger
}

// New creates a MinIO-backed adapter.
// Returns an INVALID_CONFIGURATION error if cfg is incomplete.
func New(cfg Config) (*Adapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	concurrency := cfg.MaxConcurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	prefixer := core.NewPrefixer(cfg.Prefix)
	return &Adapter{
		client:      client,
		bucket:      cfg.Bucket,
		prefixer:    prefixer,
		normalizer:  core.NewNormalizer(prefixer, fields),
		acl:         cfg.ACL,
		concurrency: concurrency,
		logger:      logging.Adapter(cfg.Logger, "minio", prefixer.Prefix()),
	}, nil
}

// Client returns the underlying MinIO client.
func (a *Adapter) Client() *minio.Client {
	return a.client
}

// Kind returns core.KindRemote.
func (a *Adapter) Kind() core.Kind {
	return core.KindRemote
}

// PathPrefix returns the namespace root.
func (a *Adapter) PathPrefix() string {
	return a.prefixer.Prefix()
}

// fileKey returns the object key for path.
func (a *Adapter) fileKey(path string) string {
	return strings.TrimSuffix(a.prefixer.Apply(path), core.Separator)
}

// dirKey returns the key prefix shared by everything below path. The
// namespace root of an unprefixed adapter is the empty prefix.
func (a *Adapter) dirKey(path string) string {
	key := a.fileKey(path)
	if key == "" {
		return ""
	}
	return key + core.Separator
}

// isRoot reports whether path resolves to the namespace root.
func (a *Adapter) isRoot(path string) bool {
	return a.fileKey(path) == a.fileKey("")
}

// entry normalizes an object description.
func (a *Adapter) entry(info minio.ObjectInfo) core.Entry {
	return a.normalizer.Normalize(core.Raw{
		"Key":          info.Key,
		"Size":         info.Size,
		"LastModified": info.LastModified,
		"ContentType":  info.ContentType,
		"ETag":         info.ETag,
		"StorageClass": info.StorageClass,
		"UserMetadata": map[string]string(info.UserMetadata),
	}, "")
}

// stat resolves path to a file, a placeholder or an emulated directory.
func (a *Adapter) stat(ctx context.Context, path string) (core.Entry, bool, error) {
	if a.isRoot(path) {
		return core.NewDirEntry(""), true, nil
	}

	if !core.IsDirPath(path) {
		key := a.fileKey(path)
		a.logger.Debug("minio stat", zap.String("key", key))
		info, err := a.client.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return a.entry(info), true, nil
		}
		if !errs.IsNotFound(err) {
			return core.Entry{}, false, errs.Translate(err)
		}
	}

	found, err := a.prefixExists(ctx, a.dirKey(path))
	if err != nil || !found {
		return core.Entry{}, false, err
	}
	return core.NewDirEntry(path), true, nil
}

// prefixExists reports whether any object lives below prefix.
func (a *Adapter) prefixExists(ctx context.Context, prefix string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Debug("minio probe prefix", zap.String("key", prefix))
	objects := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:  prefix,
		MaxKeys: 1,
	})

	first, ok := <-objects
	if !ok {
		return false, nil
	}
	if first.Err != nil {
		return false, errs.Translate(first.Err)
	}
	return true, nil
}

// stamp fills a missing timestamp on entries built from upload results.
func stamp(entry core.Entry) core.Entry {
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().Unix()
	}
	return entry
}

func (a *Adapter) fail(op, path string, err error) error {
	return core.NewStorageError(op, path, err)
}

// debugFailure records a fault swallowed by a boolean operation.
func (a *Adapter) debugFailure(op, path string, err error) {
	a.logger.Debug("operation failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
}

// Compile-time interface check.
var _ core.Adapter = (*Adapter)(nil)
