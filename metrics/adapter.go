package metrics

import (
	"context"
	"io"
	"time"

	"github.com/jmgilman/go/storage/core"
)

// Wrap returns an adapter that records every contract operation of a on r,
// labelled with backend.
func Wrap(a core.Adapter, r *Recorder, backend string) core.Adapter {
	return &instrumented{next: a, rec: r, backend: backend}
}

type instrumented struct {
	next    core.Adapter
	rec     *Recorder
	backend string
}

func (m *instrumented) observe(op string, start time.Time, result string) {
	m.rec.RecordOperation(m.backend, op, time.Since(start), result)
}

func boolResult(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFalse
}

func lookupResult(found bool, err error) string {
	switch {
	case err != nil:
		return ResultError
	case !found:
		return ResultNotFound
	default:
		return ResultSuccess
	}
}

func errResult(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func (m *instrumented) lookup(op string, fn func() (core.Entry, bool, error)) (core.Entry, bool, error) {
	start := time.Now()
	entry, found, err := fn()
	m.observe(op, start, lookupResult(found, err))
	return entry, found, err
}

func (m *instrumented) Kind() core.Kind    { return m.next.Kind() }
func (m *instrumented) PathPrefix() string { return m.next.PathPrefix() }

func (m *instrumented) Has(ctx context.Context, path string) bool {
	start := time.Now()
	ok := m.next.Has(ctx, path)
	m.observe("has", start, boolResult(ok))
	return ok
}

func (m *instrumented) Read(ctx context.Context, path string) (core.Entry, bool, error) {
	entry, found, err := m.lookup("read", func() (core.Entry, bool, error) {
		return m.next.Read(ctx, path)
	})
	if found {
		m.rec.RecordRead(m.backend, int64(len(entry.Contents)))
	}
	return entry, found, err
}

func (m *instrumented) ReadStream(ctx context.Context, path string) (*core.Stream, bool, error) {
	start := time.Now()
	stream, found, err := m.next.ReadStream(ctx, path)
	m.observe("readStream", start, lookupResult(found, err))
	if found && stream != nil {
		stream.Body = &countingReader{ReadCloser: stream.Body, done: func(n int64) {
			m.rec.RecordRead(m.backend, n)
		}}
	}
	return stream, found, err
}

func (m *instrumented) ListContents(ctx context.Context, dir string, recursive bool) ([]core.Entry, error) {
	start := time.Now()
	entries, err := m.next.ListContents(ctx, dir, recursive)
	m.observe("listContents", start, errResult(err))
	return entries, err
}

func (m *instrumented) GetMetadata(ctx context.Context, path string) (core.Entry, bool, error) {
	return m.lookup("getMetadata", func() (core.Entry, bool, error) { return m.next.GetMetadata(ctx, path) })
}

func (m *instrumented) GetSize(ctx context.Context, path string) (core.Entry, bool, error) {
	return m.lookup("getSize", func() (core.Entry, bool, error) { return m.next.GetSize(ctx, path) })
}

func (m *instrumented) GetTimestamp(ctx context.Context, path string) (core.Entry, bool, error) {
	return m.lookup("getTimestamp", func() (core.Entry, bool, error) { return m.next.GetTimestamp(ctx, path) })
}

func (m *instrumented) GetMimetype(ctx context.Context, path string) (core.Entry, bool, error) {
	return m.lookup("getMimetype", func() (core.Entry, bool, error) { return m.next.GetMimetype(ctx, path) })
}

func (m *instrumented) GetVisibility(ctx context.Context, path string) (core.Entry, bool, error) {
	return m.lookup("getVisibility", func() (core.Entry, bool, error) { return m.next.GetVisibility(ctx, path) })
}

func (m *instrumented) SetVisibility(ctx context.Context, path string, v core.Visibility) (core.Entry, bool, error) {
	return m.lookup("setVisibility", func() (core.Entry, bool, error) { return m.next.SetVisibility(ctx, path, v) })
}

func (m *instrumented) Write(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	start := time.Now()
	entry, err := m.next.Write(ctx, path, contents, opts)
	m.observe("write", start, errResult(err))
	if err == nil {
		m.rec.RecordWrite(m.backend, int64(len(contents)))
	}
	return entry, err
}

func (m *instrumented) WriteStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	start := time.Now()
	entry, err := m.next.WriteStream(ctx, path, r, opts)
	m.observe("writeStream", start, errResult(err))
	if err == nil {
		m.rec.RecordWrite(m.backend, entry.Size)
	}
	return entry, err
}

func (m *instrumented) Update(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	start := time.Now()
	entry, err := m.next.Update(ctx, path, contents, opts)
	m.observe("update", start, errResult(err))
	if err == nil {
		m.rec.RecordWrite(m.backend, int64(len(contents)))
	}
	return entry, err
}

func (m *instrumented) UpdateStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	start := time.Now()
	entry, err := m.next.UpdateStream(ctx, path, r, opts)
	m.observe("updateStream", start, errResult(err))
	if err == nil {
		m.rec.RecordWrite(m.backend, entry.Size)
	}
	return entry, err
}

func (m *instrumented) CreateDir(ctx context.Context, path string, opts core.Options) bool {
	start := time.Now()
	ok := m.next.CreateDir(ctx, path, opts)
	m.observe("createDir", start, boolResult(ok))
	return ok
}

func (m *instrumented) Delete(ctx context.Context, path string) bool {
	start := time.Now()
	ok := m.next.Delete(ctx, path)
	m.observe("delete", start, boolResult(ok))
	return ok
}

func (m *instrumented) DeleteDir(ctx context.Context, path string) bool {
	start := time.Now()
	ok := m.next.DeleteDir(ctx, path)
	m.observe("deleteDir", start, boolResult(ok))
	return ok
}

func (m *instrumented) Rename(ctx context.Context, path, newpath string) bool {
	start := time.Now()
	ok := m.next.Rename(ctx, path, newpath)
	m.observe("rename", start, boolResult(ok))
	return ok
}

func (m *instrumented) Copy(ctx context.Context, path, newpath string) bool {
	start := time.Now()
	ok := m.next.Copy(ctx, path, newpath)
	m.observe("copy", start, boolResult(ok))
	return ok
}

// countingReader reports the number of bytes read through it when closed.
type countingReader struct {
	io.ReadCloser
	n    int64
	done func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) Close() error {
	if c.done != nil {
		c.done(c.n)
		c.done = nil
	}
	return c.ReadCloser.Close()
}

var _ core.Adapter = (*instrumented)(nil)
