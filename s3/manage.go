package s3

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

// Delete removes the object at path. Directory paths and missing objects
// return false.
func (a *Adapter) Delete(ctx context.Context, path string) bool {
	if core.IsDirPath(path) || a.isRoot(path) {
		return false
	}

	key := a.fileKey(path)
	_, found, err := a.head(ctx, key)
	if err != nil {
		a.debugFailure("delete", path, err)
		return false
	}
	if !found {
		return false
	}

	if err := a.deleteObject(ctx, key); err != nil {
		a.debugFailure("delete", path, translate(err))
		return false
	}
	return true
}

func (a *Adapter) deleteObject(ctx context.Context, key string) error {
	a.logger.Debug("s3 delete", zap.String("key", key))
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeleteDir removes every object below path, placeholders included, with
// one batch delete per listing page. A prefix with no objects counts as
// deleted.
func (a *Adapter) DeleteDir(ctx context.Context, path string) bool {
	prefix := a.dirKey(path)
	err := a.listPages(ctx, prefix, true, func(out *s3.ListObjectsV2Output) error {
		keys := make([]string, 0, len(out.Contents))
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		return a.deleteKeys(ctx, keys)
	})
	if err != nil {
		a.logger.Warn("directory partially deleted", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// deleteKeys removes keys with a single DeleteObjects request and reports
// the first per-key failure.
func (a *Adapter) deleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	ids := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		ids[i] = types.ObjectIdentifier{Key: aws.String(key)}
	}

	a.logger.Debug("s3 batch delete", zap.Int("count", len(keys)))
	out, err := a.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(a.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return translate(err)
	}

	for _, e := range out.Errors {
		a.logger.Warn("batch delete failed",
			zap.String("key", aws.ToString(e.Key)),
			zap.String("code", aws.ToString(e.Code)),
			zap.String("message", aws.ToString(e.Message)))
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		code := errors.CodeStorage
		if mapped, ok := codes[aws.ToString(first.Code)]; ok {
			code = mapped
		}
		return errors.Newf(code, "failed to delete %d of %d objects, first %q: %s",
			len(out.Errors), len(keys), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// Rename copies path to newpath and then deletes path. When the copy fails
// path is untouched. When the delete fails both objects remain and false
// is returned. Renaming onto itself returns false.
func (a *Adapter) Rename(ctx context.Context, path, newpath string) bool {
	if a.fileKey(path) == a.fileKey(newpath) {
		return false
	}
	if !a.Copy(ctx, path, newpath) {
		return false
	}

	if err := a.deleteObject(ctx, a.fileKey(path)); err != nil {
		a.logger.Warn("rename left source in place", zap.String("path", path), zap.String("newpath", newpath), zap.Error(err))
		return false
	}
	return true
}

// Copy duplicates the object at path to newpath with a server-side copy.
// Metadata is copied by the service; the ACL is reapplied from the source.
func (a *Adapter) Copy(ctx context.Context, path, newpath string) bool {
	if core.IsDirPath(path) || a.isRoot(path) || core.IsDirPath(newpath) || a.isRoot(newpath) {
		return false
	}
	src, dst := a.fileKey(path), a.fileKey(newpath)
	if src == dst {
		return false
	}

	_, found, err := a.head(ctx, src)
	if err != nil {
		a.debugFailure("copy", path, err)
		return false
	}
	if !found {
		return false
	}

	if err := a.copyObject(ctx, src, dst); err != nil {
		a.debugFailure("copy", newpath, translate(err))
		return false
	}
	return true
}

// copySource encodes bucket and key as the CopySource header expects. "+"
// is escaped too since the service would read it as a space.
func copySource(bucket, key string) string {
	segments := strings.Split(key, core.Separator)
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(url.PathEscape(s), "+", "%2B")
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// copyObject copies srcKey to dstKey. Copies start private, so with ACLs
// enabled the source visibility is sent along.
func (a *Adapter) copyObject(ctx context.Context, srcKey, dstKey string) error {
	input := &s3.CopyObjectInput{
		Bucket:     aws.String(a.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(copySource(a.bucket, srcKey)),
	}
	if a.acl {
		v, err := a.objectVisibility(ctx, srcKey)
		if err != nil {
			return err
		}
		input.ACL = cannedACL(v)
	}

	a.logger.Debug("s3 copy", zap.String("src", srcKey), zap.String("dst", dstKey))
	_, err := a.client.CopyObject(ctx, input)
	return err
}

// CopyDir copies every object below src to the same relative key below
// dst. Copies run concurrently, bounded by Config.MaxConcurrency.
func (a *Adapter) CopyDir(ctx context.Context, src, dst string) error {
	_, err := a.copyDir(ctx, "copyDir", src, dst)
	return err
}

// RenameDir moves every object below src to dst. Sources are only removed
// once every copy succeeded; when removal fails objects remain under both
// prefixes.
func (a *Adapter) RenameDir(ctx context.Context, src, dst string) error {
	copied, err := a.copyDir(ctx, "renameDir", src, dst)
	if err != nil {
		return err
	}

	for start := 0; start < len(copied); start += int(a.pageSize) {
		end := min(start+int(a.pageSize), len(copied))
		if err := a.deleteKeys(ctx, copied[start:end]); err != nil {
			a.logger.Warn("rename left sources in place", zap.String("src", src), zap.String("dst", dst), zap.Error(err))
			return a.fail("renameDir", src, err)
		}
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
		return nil, a.fail(op, src, translate(err))
	}
	if len(copied) == 0 {
		return nil, errors.WithPath(errors.New(errors.CodeNotFound, "directory does not exist"), op, src)
	}
	return copied, nil
}

// parallelCopy copies objects from oldPrefix to newPrefix using a bounded
// worker pool fed one listing page at a time. It returns the keys that
// were copied.
func (a *Adapter) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)

	var copiedMu sync.Mutex
	var copied []string

	listErr := a.listPages(egCtx, oldPrefix, true, func(out *s3.ListObjectsV2Output) error {
		for _, obj := range out.Contents {
			objectKey := aws.ToString(obj.Key)
			eg.Go(func() error {
				newKey := newPrefix + strings.TrimPrefix(objectKey, oldPrefix)
				if err := a.copyObject(egCtx, objectKey, newKey); err != nil {
					return err
				}

				copiedMu.Lock()
				copied = append(copied, objectKey)
				copiedMu.Unlock()
				return nil
			})
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, listErr
	}
	return copied, nil
}
