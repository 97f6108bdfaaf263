package core

import (
	"context"
	"io"
)

// Kind represents the underlying medium an adapter talks to.
type Kind int

const (
	// KindUnknown indicates the medium is unknown or unspecified.
	KindUnknown Kind = iota
	// KindLocal indicates a disk-backed hierarchical filesystem.
	KindLocal
	// KindMemory indicates an in-memory filesystem.
	KindMemory
	// KindRemote indicates a flat object store (S3, MinIO).
	KindRemote
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindMemory:
		return "memory"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Adapter is the single contract every storage backend implements.
//
// It is composed of four sub-interfaces: ReadAdapter, WriteAdapter,
// ManageAdapter and VisibilityAdapter. All paths are relative to the
// adapter's namespace root and use "/" as separator.
//
// Operations fall into three result channels:
//
//   - Boolean operations (Has, Delete, DeleteDir, Rename, Copy, CreateDir)
//     report any failure as false. Medium faults are logged, not returned.
//   - Entry-or-false operations (Read, ReadStream, GetMetadata and the
//     GetSize/GetTimestamp/GetMimetype/GetVisibility family) return
//     found == false with a nil error when the target does not exist, and a
//     non-nil error for every other fault.
//   - Write-side operations (Write, WriteStream, Update, UpdateStream) return
//     an error for every fault.
//
// Errors returned across this boundary are StorageError values from the
// errors package. Backend client error types never leak.
type Adapter interface {
	ReadAdapter
	WriteAdapter
	ManageAdapter
	VisibilityAdapter

	// Kind returns the medium this adapter is backed by.
	Kind() Kind

	// PathPrefix returns the namespace root, with a trailing separator when
	// non-empty.
	PathPrefix() string
}

// ReadAdapter defines read-only operations.
type ReadAdapter interface {
	// Has reports whether a file or a real or emulated directory exists at path.
	Has(ctx context.Context, path string) bool

	// Read returns a file entry carrying its contents.
	// found is false when path does not exist as a file.
	Read(ctx context.Context, path string) (entry Entry, found bool, err error)

	// ReadStream opens path for streaming. The caller must Close the stream.
	// found is false when path does not exist as a file.
	ReadStream(ctx context.Context, path string) (stream *Stream, found bool, err error)

	// ListContents lists dir. Non-recursive listings return direct children
	// ordered lexically by path; recursive listings return every descendant
	// with ancestors ordered before their descendants. The directory itself
	// is never included and a missing directory yields an empty listing.
	ListContents(ctx context.Context, dir string, recursive bool) ([]Entry, error)

	// GetMetadata returns the entry at path without contents.
	GetMetadata(ctx context.Context, path string) (entry Entry, found bool, err error)

	// GetSize returns an entry whose Size is populated.
	GetSize(ctx context.Context, path string) (entry Entry, found bool, err error)

	// GetTimestamp returns an entry whose Timestamp is populated.
	GetTimestamp(ctx context.Context, path string) (entry Entry, found bool, err error)

	// GetMimetype returns an entry whose Mimetype is populated.
	GetMimetype(ctx context.Context, path string) (entry Entry, found bool, err error)
}

// WriteAdapter defines write operations.
type WriteAdapter interface {
	// Write creates or overwrites path with contents, creating any missing
	// parent directories. The returned entry carries contents.
	Write(ctx context.Context, path string, contents []byte, opts Options) (Entry, error)

	// WriteStream creates or overwrites path with everything read from r.
	// The returned entry carries no contents.
	WriteStream(ctx context.Context, path string, r io.Reader, opts Options) (Entry, error)

	// Update overwrites an existing file. It fails with a NOT_FOUND storage
	// error when path does not exist.
	Update(ctx context.Context, path string, contents []byte, opts Options) (Entry, error)

	// UpdateStream is the streaming form of Update.
	UpdateStream(ctx context.Context, path string, r io.Reader, opts Options) (Entry, error)

	// CreateDir creates path and every missing ancestor. It succeeds when the
	// directory already exists.
	CreateDir(ctx context.Context, path string, opts Options) bool
}

// ManageAdapter defines operations that move or remove existing entries.
type ManageAdapter interface {
	// Delete removes a file. It returns false for directory paths (trailing
	// separator) and for missing targets.
	Delete(ctx context.Context, path string) bool

	// DeleteDir removes path and all its descendants. It returns true when
	// the directory does not exist.
	DeleteDir(ctx context.Context, path string) bool

	// Rename moves path to newpath. When it returns false because the copy
	// phase failed, path is untouched.
	Rename(ctx context.Context, path, newpath string) bool

	// Copy duplicates path at newpath, preserving the source visibility.
	Copy(ctx context.Context, path, newpath string) bool
}

// VisibilityAdapter defines the two-state access control operations.
//
// Backends that cannot represent the distinction report VisibilityPublic
// instead of failing.
type VisibilityAdapter interface {
	// GetVisibility returns an entry whose Visibility is populated.
	GetVisibility(ctx context.Context, path string) (entry Entry, found bool, err error)

	// SetVisibility applies v to path and returns the updated entry.
	SetVisibility(ctx context.Context, path string, v Visibility) (entry Entry, found bool, err error)
}

// Stream is an open file handed to the caller of ReadStream.
//
// Body must be closed on every exit path. Entry describes the file at the
// moment it was opened and carries no contents.
type Stream struct {
	Entry
	Body io.ReadCloser
}

// Read reads from the underlying body.
func (s *Stream) Read(p []byte) (int, error) {
	return s.Body.Read(p)
}

// Close releases the underlying handle. It is safe to call on a nil stream.
func (s *Stream) Close() error {
	if s == nil || s.Body == nil {
		return nil
	}
	return s.Body.Close()
}

// ReadAll reads the remainder of s and closes it.
func ReadAll(s *Stream) ([]byte, error) {
	defer func() { _ = s.Close() }()
	return io.ReadAll(s.Body)
}
