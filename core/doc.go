// Package core provides the contract and the backend-independent machinery
// shared by every storage adapter.
//
// An adapter lets callers read, write, move, list and inspect files the same
// way whether the medium is a hierarchical filesystem or a flat object store.
// This package holds the parts that make that possible without any I/O:
//
//   - Entry: the canonical record every operation returns
//   - Prefixer: roots an adapter at a sub-tree of its medium
//   - Normalizer: turns a backend response into an Entry through one
//     declarative field table per backend
//   - EmulateDirectories: synthesizes the intermediate directories an object
//     store listing never reports, and orders the result
//   - Adapter: the capability contract, composed of ReadAdapter,
//     WriteAdapter, ManageAdapter and VisibilityAdapter
//
// # Usage Example
//
//	import "github.com/jmgilman/go/storage/core"
//
//	func Publish(ctx context.Context, a core.Adapter, path string, data []byte) error {
//	    opts := core.Options{Visibility: core.VisibilityPublic}
//	    if _, err := a.Write(ctx, path, data, opts); err != nil {
//	        return err
//	    }
//	    return nil
//	}
//
// # Result Channels
//
// Read and metadata operations return (Entry, bool, error). A false bool with
// a nil error means the target does not exist; a non-nil error means the
// medium failed. Boolean operations such as Delete and Copy collapse both
// cases into false.
package core
