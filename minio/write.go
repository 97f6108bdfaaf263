package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/contenttype"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/minio/internal/errs"
)

// aclHeader carries the canned ACL on PUT and COPY requests.
const aclHeader = "x-amz-acl"

// Write uploads contents to path. Files without a visibility option are
// public.
func (a *Adapter) Write(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	entry, err := a.put(ctx, "write", path, bytes.NewReader(contents), int64(len(contents)), contents, opts, opts.VisibilityOr(core.VisibilityPublic))
	if err != nil {
		return core.Entry{}, err
	}
	return entry.WithContents(contents), nil
}

// WriteStream uploads everything read from r to path. Readers of unknown
// length are uploaded in multipart chunks.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	return a.put(ctx, "writeStream", path, r, -1, nil, opts, opts.VisibilityOr(core.VisibilityPublic))
}

// Update overwrites the existing object at path, keeping its visibility
// unless opts requests one.
func (a *Adapter) Update(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	v, err := a.existingVisibility(ctx, "update", path, opts)
	if err != nil {
		return core.Entry{}, err
	}
	entry, err := a.put(ctx, "update", path, bytes.NewReader(contents), int64(len(contents)), contents, opts, v)
	if err != nil {
		return core.Entry{}, err
	}
	return entry.WithContents(contents), nil
}

// UpdateStream is the streaming form of Update.
func (a *Adapter) UpdateStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	v, err := a.existingVisibility(ctx, "updateStream", path, opts)
	if err != nil {
		return core.Entry{}, err
	}
	return a.put(ctx, "updateStream", path, r, -1, nil, opts, v)
}

// existingVisibility fails with NOT_FOUND when path holds no object and
// otherwise resolves the visibility an update should apply.
func (a *Adapter) existingVisibility(ctx context.Context, op, path string, opts core.Options) (core.Visibility, error) {
	info, found, err := a.statFile(ctx, op, path)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.WithPath(errors.New(errors.CodeNotFound, "file does not exist"), op, path)
	}
	if opts.Visibility.Valid() {
		return opts.Visibility, nil
	}

	v, err := a.objectVisibility(ctx, info.Key)
	if err != nil {
		return "", a.fail(op, path, errs.Translate(err))
	}
	return v, nil
}

// CreateDir writes a zero-byte placeholder so the directory survives
// without descendants. Ancestors are emulated.
func (a *Adapter) CreateDir(ctx context.Context, path string, opts core.Options) bool {
	if a.isRoot(path) {
		return true
	}

	key := a.dirKey(path)
	a.logger.Debug("minio put placeholder", zap.String("key", key))
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{
		UserMetadata: a.userMetadata(opts.Metadata, opts.VisibilityOr(core.VisibilityPublic)),
	})
	if err != nil {
		a.debugFailure("createDir", path, errs.Translate(err))
		return false
	}
	return true
}

// put uploads r to the object at path. size is -1 when unknown; head holds
// leading bytes for content sniffing when available.
func (a *Adapter) put(ctx context.Context, op, path string, r io.Reader, size int64, head []byte, opts core.Options, v core.Visibility) (core.Entry, error) {
	if core.IsDirPath(path) || a.isRoot(path) {
		return core.Entry{}, errors.WithPath(
			errors.New(errors.CodeInvalidInput, "cannot write to a directory path"), op, path)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = contenttype.Detect(path, head)
	}

	key := a.fileKey(path)
	a.logger.Debug("minio put", zap.String("key", key), zap.Int64("size", size), zap.Stringer("options", opts))
	info, err := a.client.PutObject(ctx, a.bucket, key, r, size, minio.PutObjectOptions{
		UserMetadata:       a.userMetadata(opts.Metadata, v),
		ContentType:        contentType,
		ContentEncoding:    opts.ContentEncoding,
		ContentDisposition: opts.ContentDisposition,
		ContentLanguage:    opts.ContentLanguage,
		CacheControl:       opts.CacheControl,
		Expires:            opts.Expires,
		StorageClass:       opts.StorageClass,
	})
	if err != nil {
		return core.Entry{}, a.fail(op, path, errs.Translate(err))
	}

	entry := stamp(a.entry(minio.ObjectInfo{
		Key:          key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  contentType,
		ETag:         info.ETag,
		UserMetadata: opts.Metadata,
	}))
	if opts.Visibility.Valid() {
		entry.Visibility = a.effective(v)
	}
	return entry, nil
}

// userMetadata returns meta extended with the canned ACL for v when ACLs
// are enabled.
func (a *Adapter) userMetadata(meta map[string]string, v core.Visibility) map[string]string {
	if !a.acl && len(meta) == 0 {
		return nil
	}

	out := make(map[string]string, len(meta)+1)
	for k, val := range meta {
		out[k] = val
	}
	if a.acl {
		out[aclHeader] = cannedACL(v)
	}
	return out
}
