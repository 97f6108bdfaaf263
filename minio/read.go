package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/contenttype"
	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/minio/internal/errs"
)

// Has reports whether an object or any key below path exists.
func (a *Adapter) Has(ctx context.Context, path string) bool {
	_, found, err := a.stat(ctx, path)
	if err != nil {
		a.debugFailure("has", path, err)
		return false
	}
	return found
}

// statFile returns the object stored at path. Missing objects and
// directory paths report found == false.
func (a *Adapter) statFile(ctx context.Context, op, path string) (minio.ObjectInfo, bool, error) {
	if core.IsDirPath(path) || a.isRoot(path) {
		return minio.ObjectInfo{}, false, nil
	}

	key := a.fileKey(path)
	a.logger.Debug("minio stat", zap.String("key", key))
	info, err := a.client.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{})
	if errs.IsNotFound(err) {
		return minio.ObjectInfo{}, false, nil
	}
	if err != nil {
		return minio.ObjectInfo{}, false, a.fail(op, path, errs.Translate(err))
	}
	return info, true, nil
}

// Read downloads the object at path.
func (a *Adapter) Read(ctx context.Context, path string) (core.Entry, bool, error) {
	info, found, err := a.statFile(ctx, "read", path)
	if err != nil || !found {
		return core.Entry{}, false, err
	}

	a.logger.Debug("minio get", zap.String("key", info.Key))
	obj, err := a.client.GetObject(ctx, a.bucket, info.Key, minio.GetObjectOptions{})
	if err != nil {
		return core.Entry{}, false, a.fail("read", path, errs.Translate(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return core.Entry{}, false, a.fail("read", path, errs.Translate(err))
	}

	return a.entry(info).WithContents(buf), true, nil
}

// ReadStream opens the object at path for streaming. The stream body is a
// *Reader.
func (a *Adapter) ReadStream(ctx context.Context, path string) (*core.Stream, bool, error) {
	info, found, err := a.statFile(ctx, "readStream", path)
	if err != nil || !found {
		return nil, false, err
	}

	r, err := newReader(ctx, a, info, path)
	if err != nil {
		return nil, false, err
	}
	return &core.Stream{Entry: a.entry(info), Body: r}, true, nil
}

// ListContents lists dir. Non-recursive listings use the "/" delimiter, so
// the server reports first-level prefixes as directories.
func (a *Adapter) ListContents(ctx context.Context, dir string, recursive bool) ([]core.Entry, error) {
	prefix := a.dirKey(dir)
	a.logger.Debug("minio list", zap.String("key", prefix), zap.Bool("recursive", recursive))

	var entries []core.Entry
	for object := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if object.Err != nil {
			return nil, a.fail("listContents", dir, errs.Translate(object.Err))
		}
		if object.Key == prefix {
			continue
		}
		entries = append(entries, a.entry(object))
	}

	return core.EmulateDirectories(entries, dir, recursive), nil
}

// GetMetadata returns the file or directory at path without contents.
func (a *Adapter) GetMetadata(ctx context.Context, path string) (core.Entry, bool, error) {
	entry, found, err := a.stat(ctx, path)
	if err != nil {
		return core.Entry{}, false, a.fail("getMetadata", path, err)
	}
	return entry, found, nil
}

// GetSize returns the entry at path with its size.
func (a *Adapter) GetSize(ctx context.Context, path string) (core.Entry, bool, error) {
	return a.GetMetadata(ctx, path)
}

// GetTimestamp returns the entry at path with its last modification time.
func (a *Adapter) GetTimestamp(ctx context.Context, path string) (core.Entry, bool, error) {
	return a.GetMetadata(ctx, path)
}

// GetMimetype returns the file at path with its stored content type, or the
// type implied by its extension when none was stored.
func (a *Adapter) GetMimetype(ctx context.Context, path string) (core.Entry, bool, error) {
	info, found, err := a.statFile(ctx, "getMimetype", path)
	if err != nil || !found {
		return core.Entry{}, false, err
	}

	entry := a.entry(info)
	if entry.Mimetype == "" {
		entry.Mimetype = contenttype.Lookup(entry.Extension)
	}
	return entry, true, nil
}
