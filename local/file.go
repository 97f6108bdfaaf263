package local

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
)

// File is the body of a stream opened by ReadStream.
//
// It stores the billy path since billy.File.Name() may return different
// formats depending on the backend, and a reference to the filesystem to
// support Stat() calls.
type File struct {
	file   billy.File
	fs     billy.Basic
	name   string
	closed bool
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	return f.file.Read(p)
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

// Close releases the underlying handle. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

// Stat returns the current file info. billy.File has no Stat(), so the
// filesystem is asked instead.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.name)
}

// Name returns the billy path the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Compile-time interface checks.
var (
	_ fs.File           = (*File)(nil)
	_ io.ReadSeekCloser = (*File)(nil)
)
