// Package s3 provides an AWS S3 implementation of the core.Adapter
// contract on top of aws-sdk-go-v2.
//
// The adapter talks to the service through the narrow API interface, so any
// S3-compatible endpoint reachable by the SDK works, and tests can run
// against an in-memory client.
//
// # Usage Example
//
//	client, err := s3.NewClient(ctx, s3.ClientConfig{Region: "eu-west-1"})
//	if err != nil {
//	    return err
//	}
//	adapter, err := s3.New(s3.Config{Client: client, Bucket: "assets", Prefix: "site"})
//	if err != nil {
//	    return err
//	}
//	_, err = adapter.Write(ctx, "index.html", page, core.Options{})
package s3

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/logging"
)

// fields maps S3 response attributes onto Entry fields.
var fields = core.FieldMap{
	"Key":           core.FieldPath,
	"Size":          core.FieldSize,
	"ContentLength": core.FieldSize,
	"LastModified":  core.FieldTimestamp,
	"ContentType":   core.FieldMimetype,
	"ETag":          core.FieldETag,
	"StorageClass":  core.FieldStorageClass,
	"Metadata":      core.FieldMetadata,
}

// Adapter implements core.Adapter for AWS S3.
//
// Like every object store, S3 has no directories. CreateDir writes a
// zero-byte "dir/" placeholder and all other directories are emulated from
// key prefixes.
type Adapter struct {
	client      API
	bucket      string
	prefixer    *core.Prefixer
	normalizer  *core.Normalizer
	pageSize    int32
	acl         bool
	concurrency int
	logger      *zap.Logger
}

// New creates an S3-backed adapter.
// Returns an INVALID_CONFIGURATION error if cfg is incomplete.
func New(cfg Config) (*Adapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	concurrency := cfg.MaxConcurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	prefixer := core.NewPrefixer(cfg.Prefix)
	return &Adapter{
		client:      cfg.Client,
		bucket:      cfg.Bucket,
		prefixer:    prefixer,
		normalizer:  core.NewNormalizer(prefixer, fields),
		pageSize:    pageSize,
		acl:         cfg.ACL,
		concurrency: concurrency,
		logger:      logging.Adapter(cfg.Logger, "s3", prefixer.Prefix()),
	}, nil
}

// Client returns the underlying S3 client.
func (a *Adapter) Client() API {
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

func (a *Adapter) fileKey(path string) string {
	return strings.TrimSuffix(a.prefixer.Apply(path), core.Separator)
}

func (a *Adapter) dirKey(path string) string {
	key := a.fileKey(path)
	if key == "" {
		return ""
	}
	return key + core.Separator
}

func (a *Adapter) isRoot(path string) bool {
	return a.fileKey(path) == a.fileKey("")
}

// objectEntry normalizes a listed object.
func (a *Adapter) objectEntry(obj types.Object) core.Entry {
	return a.normalizer.Normalize(core.Raw{
		"Key":          obj.Key,
		"Size":         obj.Size,
		"LastModified": obj.LastModified,
		"ETag":         obj.ETag,
		"StorageClass": string(obj.StorageClass),
	}, "")
}

// headEntry normalizes a HEAD response for key.
func (a *Adapter) headEntry(key string, out *s3.HeadObjectOutput) core.Entry {
	return a.normalizer.Normalize(core.Raw{
		"Key":           key,
		"ContentLength": out.ContentLength,
		"LastModified":  out.LastModified,
		"ContentType":   out.ContentType,
		"ETag":          out.ETag,
		"StorageClass":  string(out.StorageClass),
		"Metadata":      out.Metadata,
	}, "")
}

// head issues a HEAD request for key. Missing keys report found == false.
func (a *Adapter) head(ctx context.Context, key string) (*s3.HeadObjectOutput, bool, error) {
	a.logger.Debug("s3 head", zap.String("key", key))
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate(err)
	}
	return out, true, nil
}

// stat resolves path to a file, a placeholder or an emulated directory.
func (a *Adapter) stat(ctx context.Context, path string) (core.Entry, bool, error) {
	if a.isRoot(path) {
		return core.NewDirEntry(""), true, nil
	}

	if !core.IsDirPath(path) {
		key := a.fileKey(path)
		out, found, err := a.head(ctx, key)
		if err != nil {
			return core.Entry{}, false, err
		}
		if found {
			return a.headEntry(key, out), true, nil
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
	a.logger.Debug("s3 probe prefix", zap.String("key", prefix))
	out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, translate(err)
	}
	return len(out.Contents) > 0, nil
}

// listPages walks every page of a listing below prefix, calling fn once per
// page. Non-recursive listings use the "/" delimiter.
func (a *Adapter) listPages(ctx context.Context, prefix string, recursive bool, fn func(*s3.ListObjectsV2Output) error) error {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(a.pageSize),
	}
	if !recursive {
		input.Delimiter = aws.String(core.Separator)
	}

	for {
		if err := ctx.Err(); err != nil {
			return translate(err)
		}

		a.logger.Debug("s3 list page", zap.String("key", prefix), zap.Bool("recursive", recursive))
		out, err := a.client.ListObjectsV2(ctx, input)
		if err != nil {
			return translate(err)
		}
		if err := fn(out); err != nil {
			return err
		}

		if !aws.ToBool(out.IsTruncated) || aws.ToString(out.NextContinuationToken) == "" {
			return nil
		}
		input.ContinuationToken = out.NextContinuationToken
	}
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

func (a *Adapter) debugFailure(op, path string, err error) {
	a.logger.Debug("operation failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
}

// Compile-time interface check.
var _ core.Adapter = (*Adapter)(nil)
