// Package local provides a go-billy-backed implementation of core.Adapter
// for hierarchical filesystems.
//
// This package wraps go-billy's osfs (local disk) and memfs (in-memory)
// implementations. Directories are real, rename is the filesystem's native
// rename, and visibility maps onto the other-read permission bit.
//
// Usage:
//
//	// Create an adapter rooted at a directory on disk
//	a, err := local.New("/var/lib/uploads", local.WithPrefix("tenant-42"))
//
//	// Use with the core.Adapter interface
//	entry, found, err := a.Read(ctx, "reports/q3.csv")
//
// # Memory Filesystem
//
// For testing or temporary storage, use the in-memory filesystem:
//
//	a := local.NewMemory()
//	_, err := a.Write(ctx, "temp.txt", []byte("data"), core.Options{})
//
// # Writes
//
// Files are written to a temporary sibling and renamed over the target, so
// concurrent readers see either the old or the new contents. Temporary files
// are hidden from listings.
//
// # Thread Safety
//
// Disk-backed adapters are safe for concurrent use by multiple goroutines.
// Memory adapters inherit the guarantees of go-billy's memfs. Streams
// returned by ReadStream are not safe for concurrent use.
package local
