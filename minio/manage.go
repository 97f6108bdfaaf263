package minio

import (
	"context"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/minio/internal/errs"
)

// Delete removes the object at path. Directory paths and missing objects
// return false.
func (a *Adapter) Delete(ctx context.Context, path string) bool {
	info, found, err := a.statFile(ctx, "delete", path)
	if err != nil {
		a.debugFailure("delete", path, err)
		return false
	}
	if !found {
		return false
	}

	a.logger.Debug("minio remove", zap.String("key", info.Key))
	if err := a.client.RemoveObject(ctx, a.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
		a.debugFailure("delete", path, errs.Translate(err))
		return false
	}
	return true
}

// DeleteDir removes every object below path, placeholders included. A
// prefix with no objects counts as deleted.
func (a *Adapter) DeleteDir(ctx context.Context, path string) bool {
	if err := a.removePrefix(ctx, a.dirKey(path)); err != nil {
		a.logger.Warn("directory partially deleted", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// removePrefix streams a recursive listing of prefix into the batch delete
// API.
func (a *Adapter) removePrefix(ctx context.Context, prefix string) error {
	a.logger.Debug("minio remove prefix", zap.String("key", prefix))

	objectsCh := make(chan minio.ObjectInfo, 100)

	var listErr error
	go func() {
		defer close(objectsCh)
		for object := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	return a.drainRemovals(ctx, objectsCh, func() error { return listErr })
}

// removeKeys deletes keys with the batch delete API.
func (a *Adapter) removeKeys(ctx context.Context, keys []string) error {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	return a.drainRemovals(ctx, objectsCh, func() error { return nil })
}

// drainRemovals runs RemoveObjects over objectsCh and returns the first
// failure. sourceErr is consulted once the removal stream is done.
func (a *Adapter) drainRemovals(ctx context.Context, objectsCh <-chan minio.ObjectInfo, sourceErr func() error) error {
	var errList []error
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			a.logger.Warn("batch delete failed", zap.String("key", rerr.ObjectName), zap.Error(rerr.Err))
			errList = append(errList, rerr.Err)
		}
	}

	if err := sourceErr(); err != nil {
		return errs.Translate(err)
	}
	if len(errList) > 0 {
		return errs.Translate(errList[0])
	}
	return nil
}

// Rename copies path to newpath on the server and then removes path. When
// the copy fails path is untouched. When the removal fails both objects
// remain and false is returned. Renaming onto itself returns false.
func (a *Adapter) Rename(ctx context.Context, path, newpath string) bool {
	if a.fileKey(path) == a.fileKey(newpath) {
		return false
	}
	if !a.Copy(ctx, path, newpath) {
		return false
	}

	key := a.fileKey(path)
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		a.logger.Warn("rename left source in place", zap.String("path", path), zap.String("newpath", newpath), zap.Error(err))
		return false
	}
	return true
}

// Copy duplicates the object at path to newpath with a server-side copy,
// keeping its metadata and visibility.
func (a *Adapter) Copy(ctx context.Context, path, newpath string) bool {
	if core.IsDirPath(newpath) || a.isRoot(newpath) || a.fileKey(path) == a.fileKey(newpath) {
		return false
	}

	info, found, err := a.statFile(ctx, "copy", path)
	if err != nil {
		a.debugFailure("copy", path, err)
		return false
	}
	if !found {
		return false
	}

	if err := a.copyObject(ctx, info.Key, a.fileKey(newpath), ""); err != nil {
		a.debugFailure("copy", newpath, errs.Translate(err))
		return false
	}
	return true
}

// copyObject copies srcKey to dstKey. With ACLs enabled the metadata is
// replaced with the source's plus the canned ACL for v, or for the source
// visibility when v is empty.
func (a *Adapter) copyObject(ctx context.Context, srcKey, dstKey string, v core.Visibility) error {
	src := minio.CopySrcOptions{Bucket: a.bucket, Object: srcKey}
	dst := minio.CopyDestOptions{Bucket: a.bucket, Object: dstKey}

	if a.acl {
		info, err := a.client.StatObject(ctx, a.bucket, srcKey, minio.StatObjectOptions{})
		if err != nil {
			return err
		}
		if !v.Valid() {
			if v, err = a.objectVisibility(ctx, srcKey); err != nil {
				return err
			}
		}

		dst.ReplaceMetadata = true
		dst.UserMetadata = a.userMetadata(info.UserMetadata, v)
		dst.ContentType = info.ContentType
		dst.ContentEncoding = info.Metadata.Get("Content-Encoding")
		dst.ContentDisposition = info.Metadata.Get("Content-Disposition")
		dst.ContentLanguage = info.Metadata.Get("Content-Language")
		dst.CacheControl = info.Metadata.Get("Cache-Control")
	}

	a.logger.Debug("minio copy", zap.String("src", srcKey), zap.String("dst", dstKey))
	_, err := a.client.CopyObject(ctx, dst, src)
	return err
}

// CopyDir copies every object below src to the same relative key below
// dst. Copies run concurrently, bounded by Config.MaxConcurrency.
func (a *Adapter) CopyDir(ctx context.Context, src, dst string) error {
	_, err := a.copyDir(ctx, "copyDir", src, dst)
	return err
}

// RenameDir moves every object below src to dst. Sources are only removed
// once every copy succeeded. The operation is not atomic: when removal
// fails, objects remain under both prefixes.
func (a *Adapter) RenameDir(ctx context.Context, src, dst string) error {
	copied, err := a.copyDir(ctx, "renameDir", src, dst)
	if err != nil {
		return err
	}

	if err := a.removeKeys(ctx, copied); err != nil {
		a.logger.Warn("rename left sources in place", zap.String("src", src), zap.String("dst", dst), zap.Error(err))
		return a.fail("renameDir", src, err)
	}
	return nil
}

func (a *Adapter) copyDir(ctx context.Context, op, src, dst string) ([]string, error) {
	oldPrefix, newPrefix := a.dirKey(src), a.dirKey(dst)
	if oldPrefix == newPrefix || strings.HasPrefix(newPrefix, oldPrefix) {
		return nil, errors.WithPath(
			errors.Newf(errors.CodeInvalidInput, "cannot copy %q into itself", src), op, dst)
	}

	copied, err := a.parallelCopy(ctx, oldPrefix, newPrefix)
	if err != nil {
		return nil, a.fail(op, src, errs.Translate(err))
	}
	if len(copied) == 0 {
		return nil, errors.WithPath(errors.New(errors.CodeNotFound, "directory does not exist"), op, src)
	}
	return copied, nil
}

// parallelCopy copies objects from oldPrefix to newPrefix using a bounded
// worker pool. It returns the keys that were copied.
func (a *Adapter) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)

	var copiedMu sync.Mutex
	var copied []string

	for object := range a.client.ListObjects(egCtx, a.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			_ = eg.Wait()
			return nil, object.Err
		}

		objectKey := object.Key
		eg.Go(func() error {
			newKey := newPrefix + strings.TrimPrefix(objectKey, oldPrefix)
			if err := a.copyObject(egCtx, objectKey, newKey, ""); err != nil {
				return err
			}

			copiedMu.Lock()
			copied = append(copied, objectKey)
			copiedMu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return copied, nil
}
