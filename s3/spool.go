package s3

import (
	"context"
	"io"
	"os"
)

// sniffLen is the number of leading bytes kept for content detection.
const sniffLen = 512

// spooled is an upload body of known length.
type spooled struct {
	io.ReadSeeker
	size int64
	head []byte
	file *os.File
}

// Close removes the temporary file backing the body, if any. Calling it
// again is a no-op.
func (s *spooled) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil

	name := f.Name()
	err := f.Close()
	if rerr := os.Remove(name); err == nil {
		err = rerr
	}
	return err
}

// spool returns r as a seekable body. Seekable readers are used in place
// from their current offset; anything else is copied to a temporary file
// that Close removes.
func spool(ctx context.Context, r io.Reader) (*spooled, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return measure(rs, nil)
	}

	f, err := os.CreateTemp("", "storage-s3-*")
	if err != nil {
		return nil, err
	}
	s := &spooled{ReadSeeker: f, file: f}

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = s.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = s.Close()
		return nil, err
	}

	measured, err := measure(f, f)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return measured, nil
}

// measure records the remaining length of rs and its leading bytes, leaving
// the offset unchanged.
func measure(rs io.ReadSeeker, file *os.File) (*spooled, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	return &spooled{ReadSeeker: rs, size: end - start, head: head[:n], file: file}, nil
}

// ctxReader stops a copy once ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
