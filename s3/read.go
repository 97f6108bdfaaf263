package s3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/contenttype"
	"github.com/jmgilman/go/storage/core"
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

// get opens the object at path. Directory paths and missing objects report
// found == false.
func (a *Adapter) get(ctx context.Context, op, path string) (*s3.GetObjectOutput, string, bool, error) {
	if core.IsDirPath(path) || a.isRoot(path) {
		return nil, "", false, nil
	}

	key := a.fileKey(path)
	a.logger.Debug("s3 get", zap.String("key", key))
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, a.fail(op, path, translate(err))
	}
	return out, key, true, nil
}

// getEntry normalizes a GET response for key.
func (a *Adapter) getEntry(key string, out *s3.GetObjectOutput) core.Entry {
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

// Read downloads the object at path.
func (a *Adapter) Read(ctx context.Context, path string) (core.Entry, bool, error) {
	out, key, found, err := a.get(ctx, "read", path)
	if err != nil || !found {
		return core.Entry{}, false, err
	}
	defer func() {
		_ = out.Body.Close()
	}()

	contents, err := io.ReadAll(out.Body)
	if err != nil {
		return core.Entry{}, false, a.fail("read", path, translate(err))
	}

	return a.getEntry(key, out).WithContents(contents), true, nil
}

// ReadStream opens the object at path for streaming. The body is the HTTP
// response body and must be closed by the caller.
func (a *Adapter) ReadStream(ctx context.Context, path string) (*core.Stream, bool, error) {
	out, key, found, err := a.get(ctx, "readStream", path)
	if err != nil || !found {
		return nil, false, err
	}
	return &core.Stream{Entry: a.getEntry(key, out), Body: out.Body}, true, nil
}

// ListContents lists dir one page at a time. Non-recursive listings report
// first-level prefixes as directories.
func (a *Adapter) ListContents(ctx context.Context, dir string, recursive bool) ([]core.Entry, error) {
	prefix := a.dirKey(dir)

	var entries []core.Entry
	err := a.listPages(ctx, prefix, recursive, func(out *s3.ListObjectsV2Output) error {
		for _, obj := range out.Contents {
			if aws.ToString(obj.Key) == prefix {
				continue
			}
			entries = append(entries, a.objectEntry(obj))
		}
		for _, cp := range out.CommonPrefixes {
			entries = append(entries, core.NewDirEntry(a.prefixer.Remove(aws.ToString(cp.Prefix))))
		}
		return nil
	})
	if err != nil {
		return nil, a.fail("listContents", dir, err)
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
// type implied by its extension.
func (a *Adapter) GetMimetype(ctx context.Context, path string) (core.Entry, bool, error) {
	if core.IsDirPath(path) || a.isRoot(path) {
		return core.Entry{}, false, nil
	}

	key := a.fileKey(path)
	out, found, err := a.head(ctx, key)
	if err != nil {
		return core.Entry{}, false, a.fail("getMimetype", path, err)
	}
	if !found {
		return core.Entry{}, false, nil
	}

	entry := a.headEntry(key, out)
	if entry.Mimetype == "" {
		entry.Mimetype = contenttype.Lookup(entry.Extension)
	}
	return entry, true, nil
}
