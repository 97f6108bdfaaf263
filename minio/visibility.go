package minio

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/minio/internal/errs"
)

// allUsers is the grantee URI of anonymous access.
const allUsers = "http://acs.amazonaws.com/groups/global/AllUsers"

func cannedACL(v core.Visibility) string {
	if v == core.VisibilityPrivate {
		return "private"
	}
	return "public-read"
}

// effective returns the visibility the server actually enforces for v.
func (a *Adapter) effective(v core.Visibility) core.Visibility {
	if !a.acl {
		return core.VisibilityPublic
	}
	return v
}

// visibilityFromACL reads a GetObjectACL result. A canned public ACL or a
// READ grant to all users is public; everything else is private.
func visibilityFromACL(info *minio.ObjectInfo) core.Visibility {
	switch info.Metadata.Get("X-Amz-Acl") {
	case "public-read", "public-read-write":
		return core.VisibilityPublic
	case "":
	default:
		return core.VisibilityPrivate
	}

	for _, g := range info.Grant {
		if g.Grantee.URI == allUsers && (g.Permission == "READ" || g.Permission == "FULL_CONTROL") {
			return core.VisibilityPublic
		}
	}
	return core.VisibilityPrivate
}

// objectVisibility returns the visibility of the object at key.
func (a *Adapter) objectVisibility(ctx context.Context, key string) (core.Visibility, error) {
	if !a.acl {
		return core.VisibilityPublic, nil
	}

	a.logger.Debug("minio get acl", zap.String("key", key))
	info, err := a.client.GetObjectACL(ctx, a.bucket, key)
	if err != nil {
		return "", err
	}
	return visibilityFromACL(info), nil
}

// GetVisibility returns the entry at path with its visibility. Directories
// without a placeholder object are public.
func (a *Adapter) GetVisibility(ctx context.Context, path string) (core.Entry, bool, error) {
	entry, found, err := a.stat(ctx, path)
	if err != nil {
		return core.Entry{}, false, a.fail("getVisibility", path, err)
	}
	if !found {
		return core.Entry{}, false, nil
	}

	key := a.fileKey(path)
	if entry.IsDir() {
		key = a.dirKey(path)
	}

	v := core.VisibilityPublic
	if !a.isRoot(path) {
		v, err = a.objectVisibility(ctx, key)
	}
	switch {
	case err != nil && entry.IsDir() && errs.IsNotFound(err):
		v = core.VisibilityPublic
	case err != nil:
		return core.Entry{}, false, a.fail("getVisibility", path, errs.Translate(err))
	}

	entry.Visibility = v
	return entry, true, nil
}

// SetVisibility applies the canned ACL for v. Files are copied onto
// themselves with their metadata preserved; directories get a placeholder
// carrying the ACL.
func (a *Adapter) SetVisibility(ctx context.Context, path string, v core.Visibility) (core.Entry, bool, error) {
	if !v.Valid() {
		return core.Entry{}, false, errors.WithPath(
			errors.Newf(errors.CodeInvalidInput, "invalid visibility %q", v), "setVisibility", path)
	}

	entry, found, err := a.stat(ctx, path)
	if err != nil {
		return core.Entry{}, false, a.fail("setVisibility", path, err)
	}
	if !found {
		return core.Entry{}, false, nil
	}

	if !a.acl {
		a.logger.Debug("acl disabled, visibility unchanged", zap.String("path", path))
		entry.Visibility = core.VisibilityPublic
		return entry, true, nil
	}

	if entry.IsDir() {
		if !a.isRoot(path) {
			key := a.dirKey(path)
			_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{
				UserMetadata: a.userMetadata(nil, v),
			})
		}
	} else {
		key := a.fileKey(path)
		err = a.copyObject(ctx, key, key, v)
	}
	if err != nil {
		return core.Entry{}, false, a.fail("setVisibility", path, errs.Translate(err))
	}

	entry.Visibility = v
	return entry, true, nil
}
