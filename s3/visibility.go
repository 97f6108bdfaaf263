package s3

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

// allUsers is the grantee URI of anonymous access.
const allUsers = "http://acs.amazonaws.com/groups/global/AllUsers"

func cannedACL(v core.Visibility) types.ObjectCannedACL {
	if v == core.VisibilityPrivate {
		return types.ObjectCannedACLPrivate
	}
	return types.ObjectCannedACLPublicRead
}

// effective returns the visibility the bucket actually enforces for v.
func (a *Adapter) effective(v core.Visibility) core.Visibility {
	if !a.acl {
		return core.VisibilityPublic
	}
	return v
}

// visibilityFromGrants reports public when all users may read.
func visibilityFromGrants(grants []types.Grant) core.Visibility {
	for _, g := range grants {
		if g.Grantee == nil || g.Grantee.Type != types.TypeGroup || aws.ToString(g.Grantee.URI) != allUsers {
			continue
		}
		if g.Permission == types.PermissionRead || g.Permission == types.PermissionFullControl {
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

	a.logger.Debug("s3 get acl", zap.String("key", key))
	out, err := a.client.GetObjectAcl(ctx, &s3.GetObjectAclInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	return visibilityFromGrants(out.Grants), nil
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
	case err != nil && entry.IsDir() && isNotFound(err):
		v = core.VisibilityPublic
	case err != nil:
		return core.Entry{}, false, a.fail("getVisibility", path, translate(err))
	}

	entry.Visibility = v
	return entry, true, nil
}

// SetVisibility applies the canned ACL for v. Emulated directories get a
// placeholder carrying the ACL.
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

	switch {
	case a.isRoot(path):
	case entry.IsDir():
		err = a.setDirVisibility(ctx, a.dirKey(path), v)
	default:
		err = a.putACL(ctx, a.fileKey(path), v)
	}
	if err != nil {
		return core.Entry{}, false, a.fail("setVisibility", path, translate(err))
	}

	entry.Visibility = v
	return entry, true, nil
}

func (a *Adapter) putACL(ctx context.Context, key string, v core.Visibility) error {
	a.logger.Debug("s3 put acl", zap.String("key", key), zap.String("visibility", string(v)))
	_, err := a.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		ACL:    cannedACL(v),
	})
	return err
}

// setDirVisibility updates the placeholder at key, creating it when the
// directory is only emulated.
func (a *Adapter) setDirVisibility(ctx context.Context, key string, v core.Visibility) error {
	err := a.putACL(ctx, key, v)
	if !isNotFound(err) {
		return err
	}

	a.logger.Debug("s3 put placeholder", zap.String("key", key))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
		ACL:           cannedACL(v),
	})
	return err
}
