package s3

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeObject struct {
	data         []byte
	contentType  string
	cacheControl string
	storageClass types.StorageClass
	metadata     map[string]string
	acl          types.ObjectCannedACL
	modified     time.Time
}

// fakeS3 is an in-memory single-bucket S3 server.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]*fakeObject
	calls   map[string]int

	// Fault injection.
	copyErr     error
	deleteErr   error
	failDeletes map[string]bool
	aclDisabled bool
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{
		bucket:      bucket,
		objects:     make(map[string]*fakeObject),
		calls:       make(map[string]int),
		failDeletes: make(map[string]bool),
	}
}

func (f *fakeS3) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeS3) object(key string) (*fakeObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	return obj, ok
}

func (f *fakeS3) enter(op string, bucket *string) error {
	f.calls[op]++
	if aws.ToString(bucket) != f.bucket {
		return &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "bucket does not exist"}
	}
	return nil
}

func etag(data []byte) *string {
	return aws.String(fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(data))))
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("HeadObject", in.Bucket); err != nil {
		return nil, err
	}

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          etag(obj.data),
		LastModified:  aws.Time(obj.modified),
		Metadata:      obj.metadata,
		StorageClass:  obj.storageClass,
	}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetObject", in.Bucket); err != nil {
		return nil, err
	}

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))),
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          etag(obj.data),
		LastModified:  aws.Time(obj.modified),
		Metadata:      obj.metadata,
		StorageClass:  obj.storageClass,
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	var data []byte
	if in.Body != nil {
		var err error
		if data, err = io.ReadAll(in.Body); err != nil {
			return nil, err
		}
	}
	if in.ContentLength != nil && *in.ContentLength != int64(len(data)) {
		return nil, &smithy.GenericAPIError{Code: "IncompleteBody", Message: "content length mismatch"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PutObject", in.Bucket); err != nil {
		return nil, err
	}

	acl := in.ACL
	if acl == "" {
		acl = types.ObjectCannedACLPrivate
	}
	f.objects[aws.ToString(in.Key)] = &fakeObject{
		data:         data,
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
		storageClass: in.StorageClass,
		metadata:     in.Metadata,
		acl:          acl,
		modified:     time.Now().UTC(),
	}
	return &s3.PutObjectOutput{ETag: etag(data)}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteObject", in.Bucket); err != nil {
		return nil, err
	}
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}

	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteObjects", in.Bucket); err != nil {
		return nil, err
	}

	out := &s3.DeleteObjectsOutput{}
	for _, id := range in.Delete.Objects {
		key := aws.ToString(id.Key)
		if f.failDeletes[key] {
			out.Errors = append(out.Errors, types.Error{
				Key:     id.Key,
				Code:    aws.String("AccessDenied"),
				Message: aws.String("Access Denied"),
			})
			continue
		}
		delete(f.objects, key)
		if !aws.ToBool(in.Delete.Quiet) {
			out.Deleted = append(out.Deleted, types.DeletedObject{Key: id.Key})
		}
	}
	return out, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CopyObject", in.Bucket); err != nil {
		return nil, err
	}
	if f.copyErr != nil {
		return nil, f.copyErr
	}

	bucket, escaped, _ := strings.Cut(aws.ToString(in.CopySource), "/")
	key, err := url.PathUnescape(escaped)
	if err != nil || bucket != f.bucket {
		return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: "bad copy source"}
	}

	src, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	dst := *src
	dst.data = bytes.Clone(src.data)
	dst.modified = time.Now().UTC()
	dst.acl = in.ACL
	if dst.acl == "" {
		dst.acl = types.ObjectCannedACLPrivate
	}
	f.objects[aws.ToString(in.Key)] = &dst
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListObjectsV2", in.Bucket); err != nil {
		return nil, err
	}

	prefix := aws.ToString(in.Prefix)
	delim := aws.ToString(in.Delimiter)
	token := aws.ToString(in.ContinuationToken)
	maxKeys := int(aws.ToInt32(in.MaxKeys))
	if maxKeys == 0 {
		maxKeys = 1000
	}

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	last := ""
	emitted := 0
	for _, k := range keys {
		if token != "" && (k <= token || (delim != "" && strings.HasSuffix(token, delim) && strings.HasPrefix(k, token))) {
			continue
		}

		item := k
		if delim != "" {
			if i := strings.Index(k[len(prefix):], delim); i >= 0 {
				item = k[:len(prefix)+i+len(delim)]
			}
		}
		if item == last {
			continue
		}

		if emitted == maxKeys {
			out.IsTruncated = aws.Bool(true)
			out.NextContinuationToken = aws.String(last)
			break
		}

		if item != k {
			out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(item)})
		} else {
			obj := f.objects[k]
			out.Contents = append(out.Contents, types.Object{
				Key:          aws.String(k),
				Size:         aws.Int64(int64(len(obj.data))),
				LastModified: aws.Time(obj.modified),
				ETag:         etag(obj.data),
				StorageClass: types.ObjectStorageClass(obj.storageClass),
			})
		}
		last = item
		emitted++
	}
	out.KeyCount = aws.Int32(int32(emitted))
	return out, nil
}

func (f *fakeS3) GetObjectAcl(_ context.Context, in *s3.GetObjectAclInput, _ ...func(*s3.Options)) (*s3.GetObjectAclOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetObjectAcl", in.Bucket); err != nil {
		return nil, err
	}
	if f.aclDisabled {
		return nil, &smithy.GenericAPIError{Code: "AccessControlListNotSupported", Message: "The bucket does not allow ACLs"}
	}

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	grants := []types.Grant{{
		Grantee:    &types.Grantee{Type: types.TypeCanonicalUser, ID: aws.String("owner")},
		Permission: types.PermissionFullControl,
	}}
	if obj.acl == types.ObjectCannedACLPublicRead {
		grants = append(grants, types.Grant{
			Grantee:    &types.Grantee{Type: types.TypeGroup, URI: aws.String(allUsers)},
			Permission: types.PermissionRead,
		})
	}
	return &s3.GetObjectAclOutput{Grants: grants}, nil
}

func (f *fakeS3) PutObjectAcl(_ context.Context, in *s3.PutObjectAclInput, _ ...func(*s3.Options)) (*s3.PutObjectAclOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PutObjectAcl", in.Bucket); err != nil {
		return nil, err
	}
	if f.aclDisabled {
		return nil, &smithy.GenericAPIError{Code: "AccessControlListNotSupported", Message: "The bucket does not allow ACLs"}
	}

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	obj.acl = in.ACL
	return &s3.PutObjectAclOutput{}, nil
}

var _ API = (*fakeS3)(nil)
