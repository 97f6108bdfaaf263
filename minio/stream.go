package minio

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/minio/internal/errs"
)

// Reader streams an object without buffering it in memory.
// Seek and ReadAt are served with ranged GET requests.
type Reader struct {
	adapter *Adapter
	ctx     context.Context
	key     string
	name    string
	obj     *minio.Object
	size    int64
	offset  int64 // Current read position for Seek
	closed  bool
}

// newReader opens key for streaming. info describes the object at the time
// it was opened.
func newReader(ctx context.Context, a *Adapter, info minio.ObjectInfo, name string) (*Reader, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, info.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, core.NewStorageError("readStream", name, errs.Translate(err))
	}

	return &Reader{
		adapter: a,
		ctx:     ctx,
		key:     info.Key,
		name:    name,
		obj:     obj,
		size:    info.Size,
	}, nil
}

// Read reads up to len(p) bytes into p from the object.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, core.NewStorageError("read", r.name, fs.ErrClosed)
	}
	n, err := r.obj.Read(p)
	r.offset += int64(n)

	// Only return EOF when no data is read.
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, core.NewStorageError("read", r.name, errs.Translate(err))
	}
	return n, err
}

// Close releases the connection. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.obj.Close()
}

// Name returns the path the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Size returns the object size at open time.
func (r *Reader) Size() int64 {
	return r.size
}

// Seek sets the read position for the next Read.
// It reopens the object with a range request starting at the new offset.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, core.NewStorageError("seek", r.name, fs.ErrClosed)
	}

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = r.offset + offset
	case io.SeekEnd:
		next = r.size + offset
	default:
		return 0, core.NewStorageError("seek", r.name, fs.ErrInvalid)
	}

	if next < 0 {
		return 0, core.NewStorageError("seek", r.name, fs.ErrInvalid)
	}
	if next == r.offset {
		return next, nil
	}

	_ = r.obj.Close()

	opts := minio.GetObjectOptions{}
	if next > 0 {
		if err := opts.SetRange(next, 0); err != nil {
			return 0, core.NewStorageError("seek", r.name, err)
		}
	}

	obj, err := r.adapter.client.GetObject(r.ctx, r.adapter.bucket, r.key, opts)
	if err != nil {
		return 0, core.NewStorageError("seek", r.name, errs.Translate(err))
	}

	r.obj = obj
	r.offset = next
	return next, nil
}

// ReadAt reads len(p) bytes starting at byte offset off without moving the
// read position.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, core.NewStorageError("readAt", r.name, fs.ErrClosed)
	}
	if off < 0 {
		return 0, core.NewStorageError("readAt", r.name, fs.ErrInvalid)
	}
	if len(p) == 0 {
		return 0, nil
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+int64(len(p))-1); err != nil {
		return 0, core.NewStorageError("readAt", r.name, err)
	}

	obj, err := r.adapter.client.GetObject(r.ctx, r.adapter.bucket, r.key, opts)
	if err != nil {
		return 0, core.NewStorageError("readAt", r.name, errs.Translate(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	return io.ReadFull(obj, p)
}

// Compile-time interface checks.
var (
	_ io.ReadSeekCloser = (*Reader)(nil)
	_ io.ReaderAt       = (*Reader)(nil)
)
