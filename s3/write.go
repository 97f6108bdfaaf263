package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/contenttype"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

// Write uploads contents to path. Files without a visibility option are
// public.
func (a *Adapter) Write(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	entry, err := a.put(ctx, "write", path, bytes.NewReader(contents), int64(len(contents)), contents, opts, opts.VisibilityOr(core.VisibilityPublic))
	if err != nil {
		return core.Entry{}, err
	}
	return entry.WithContents(contents), nil
}

// WriteStream uploads everything read from r to path. Readers that cannot
// seek are spooled to a temporary file first, since a signed PUT needs the
// content length up front.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	return a.putStream(ctx, "writeStream", path, r, opts, opts.VisibilityOr(core.VisibilityPublic))
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
	return a.putStream(ctx, "updateStream", path, r, opts, v)
}

// existingVisibility fails with NOT_FOUND when path holds no object and
// otherwise resolves the visibility an update should apply.
func (a *Adapter) existingVisibility(ctx context.Context, op, path string, opts core.Options) (core.Visibility, error) {
	notFound := errors.WithPath(errors.New(errors.CodeNotFound, "file does not exist"), op, path)
	if core.IsDirPath(path) || a.isRoot(path) {
		return "", notFound
	}

	key := a.fileKey(path)
	_, found, err := a.head(ctx, key)
	if err != nil {
		return "", a.fail(op, path, err)
	}
	if !found {
		return "", notFound
	}
	if opts.Visibility.Valid() {
		return opts.Visibility, nil
	}

	v, err := a.objectVisibility(ctx, key)
	if err != nil {
		return "", a.fail(op, path, translate(err))
	}
	return v, nil
}

// CreateDir writes a zero-byte placeholder so the directory survives
// without descendants.
func (a *Adapter) CreateDir(ctx context.Context, path string, opts core.Options) bool {
	if a.isRoot(path) {
		return true
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(a.dirKey(path)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
		Metadata:      opts.Metadata,
	}
	if a.acl {
		input.ACL = cannedACL(opts.VisibilityOr(core.VisibilityPublic))
	}

	a.logger.Debug("s3 put placeholder", zap.String("key", aws.ToString(input.Key)))
	if _, err := a.client.PutObject(ctx, input); err != nil {
		a.debugFailure("createDir", path, translate(err))
		return false
	}
	return true
}

// putStream uploads r, spooling it first when its length is unknown.
func (a *Adapter) putStream(ctx context.Context, op, path string, r io.Reader, opts core.Options, v core.Visibility) (core.Entry, error) {
	if err := a.checkFilePath(op, path); err != nil {
		return core.Entry{}, err
	}

	body, err := spool(ctx, r)
	if err != nil {
		return core.Entry{}, a.fail(op, path, err)
	}
	defer func() {
		if err := body.Close(); err != nil {
			a.logger.Warn("failed to remove spool file", zap.Error(err))
		}
	}()

	return a.put(ctx, op, path, body, body.size, body.head, opts, v)
}

func (a *Adapter) checkFilePath(op, path string) error {
	if core.IsDirPath(path) || a.isRoot(path) {
		return errors.WithPath(
			errors.New(errors.CodeInvalidInput, "cannot write to a directory path"), op, path)
	}
	return nil
}

// put uploads size bytes from r to the object at path. head holds leading
// bytes for content sniffing when available.
func (a *Adapter) put(ctx context.Context, op, path string, r io.Reader, size int64, head []byte, opts core.Options, v core.Visibility) (core.Entry, error) {
	if err := a.checkFilePath(op, path); err != nil {
		return core.Entry{}, err
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = contenttype.Detect(path, head)
	}

	key := a.fileKey(path)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		Metadata:      opts.Metadata,
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}
	if opts.ContentEncoding != "" {
		input.ContentEncoding = aws.String(opts.ContentEncoding)
	}
	if opts.ContentDisposition != "" {
		input.ContentDisposition = aws.String(opts.ContentDisposition)
	}
	if opts.ContentLanguage != "" {
		input.ContentLanguage = aws.String(opts.ContentLanguage)
	}
	if !opts.Expires.IsZero() {
		input.Expires = aws.Time(opts.Expires)
	}
	if opts.StorageClass != "" {
		input.StorageClass = types.StorageClass(opts.StorageClass)
	}
	if a.acl {
		input.ACL = cannedACL(v)
	}

	a.logger.Debug("s3 put", zap.String("key", key), zap.Int64("size", size), zap.Stringer("options", opts))
	out, err := a.client.PutObject(ctx, input)
	if err != nil {
		return core.Entry{}, a.fail(op, path, translate(err))
	}

	entry := stamp(a.normalizer.Normalize(core.Raw{
		"Key":          key,
		"Size":         size,
		"ContentType":  contentType,
		"ETag":         out.ETag,
		"StorageClass": opts.StorageClass,
		"Metadata":     opts.Metadata,
	}, ""))
	if opts.Visibility.Valid() {
		entry.Visibility = a.effective(v)
	}
	return entry, nil
}
