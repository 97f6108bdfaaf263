package core

import "fmt"

// Type tags an Entry as a file or a directory.
type Type string

const (
	// TypeFile marks an entry backed by stored bytes.
	TypeFile Type = "file"
	// TypeDir marks a directory, real or emulated.
	TypeDir Type = "dir"
)

// Valid reports whether t is one of the two known entry types.
func (t Type) Valid() bool {
	return t == TypeFile || t == TypeDir
}

// Visibility is the two-state abstraction over backend access control
// (POSIX permission bits, object ACL grants).
type Visibility string

const (
	// VisibilityPublic means readable by anyone the medium exposes it to.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate means readable only by the owner.
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is public or private.
// The empty visibility (not queried) is not valid.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Entry is the canonical record describing one file or directory.
//
// Entries are projections of the storage medium at call time. They are built
// fresh by every call and never cached or mutated by adapters afterwards.
type Entry struct {
	// Path is slash-separated, relative to the adapter's namespace root,
	// without a leading slash and without a trailing slash for directories.
	Path string `json:"path"`

	// Type is exactly one of TypeFile or TypeDir.
	Type Type `json:"type"`

	// Dirname is the parent path, empty at the root.
	Dirname string `json:"dirname"`

	// Basename is the final path segment.
	Basename string `json:"basename"`

	// Filename is Basename without its extension.
	Filename string `json:"filename"`

	// Extension is the suffix after the last "." in Basename, if any.
	Extension string `json:"extension"`

	// Size is the file length in bytes. Always zero for directories.
	Size int64 `json:"size,omitempty"`

	// Timestamp is the last modification time in seconds since the epoch.
	Timestamp int64 `json:"timestamp,omitempty"`

	// Contents is set only by read and write operations, never by listings.
	Contents []byte `json:"contents,omitempty"`

	// Visibility is set only when it was explicitly queried or set.
	Visibility Visibility `json:"visibility,omitempty"`

	// Mimetype is set when the backend reports a content type or when it was
	// explicitly queried.
	Mimetype string `json:"mimetype,omitempty"`

	// Metadata holds backend passthrough attributes such as etag, storage
	// class and user metadata.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewFileEntry returns a file entry for path with its path parts derived.
func NewFileEntry(path string) Entry {
	return newEntry(path, TypeFile)
}

// NewDirEntry returns a directory entry for path with its path parts derived.
// A trailing separator on path is stripped.
func NewDirEntry(path string) Entry {
	return newEntry(path, TypeDir)
}

func newEntry(path string, typ Type) Entry {
	path = cleanEntryPath(path)
	info := SplitPath(path)
	return Entry{
		Path:      path,
		Type:      typ,
		Dirname:   info.Dirname,
		Basename:  info.Basename,
		Filename:  info.Filename,
		Extension: info.Extension,
	}
}

// IsFile reports whether the entry is a file.
func (e Entry) IsFile() bool { return e.Type == TypeFile }

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Type == TypeDir }

// String returns a short description used in logs and test failures.
func (e Entry) String() string {
	if e.IsDir() {
		return fmt.Sprintf("dir %s", e.Path)
	}
	return fmt.Sprintf("file %s (%d bytes)", e.Path, e.Size)
}

// WithContents returns a copy of e carrying contents and the matching size.
// Directories are returned unchanged since they never carry contents.
func (e Entry) WithContents(contents []byte) Entry {
	if e.IsDir() {
		return e
	}
	e.Contents = contents
	e.Size = int64(len(contents))
	return e
}
