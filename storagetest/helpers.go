package storagetest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

func mustWrite(t *testing.T, a core.Adapter, path, contents string) core.Entry {
	t.Helper()
	entry, err := a.Write(context.Background(), path, []byte(contents), core.Options{})
	if err != nil {
		t.Fatalf("Write(%s): setup failed: %v", path, err)
	}
	return entry
}

func mustCreateDir(t *testing.T, a core.Adapter, path string) {
	t.Helper()
	if !a.CreateDir(context.Background(), path, core.Options{}) {
		t.Fatalf("CreateDir(%s): setup failed", path)
	}
}

func mustList(t *testing.T, a core.Adapter, dir string, recursive bool) []core.Entry {
	t.Helper()
	entries, err := a.ListContents(context.Background(), dir, recursive)
	if err != nil {
		t.Fatalf("ListContents(%s, %v): got error %v, want nil", dir, recursive, err)
	}
	return entries
}

func entryPaths(entries []core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func findEntry(entries []core.Entry, path string) (core.Entry, bool) {
	for _, e := range entries {
		if e.Path == path {
			return e, true
		}
	}
	return core.Entry{}, false
}

// checkEntry verifies the invariants every returned entry must hold.
func checkEntry(t *testing.T, e core.Entry) {
	t.Helper()
	if e.IsFile() == e.IsDir() {
		t.Errorf("entry %q: type %q is not exactly one of file or dir", e.Path, e.Type)
	}
	if e.IsDir() && (e.Size != 0 || e.Contents != nil) {
		t.Errorf("entry %q: directory carries size %d or contents", e.Path, e.Size)
	}
	if len(e.Path) > 0 && (e.Path[0] == '/' || e.Path[len(e.Path)-1] == '/') {
		t.Errorf("entry %q: path has a leading or trailing separator", e.Path)
	}
	if want := core.SplitPath(e.Path); e.Dirname != want.Dirname || e.Basename != want.Basename {
		t.Errorf("entry %q: dirname/basename = %q/%q, want %q/%q",
			e.Path, e.Dirname, e.Basename, want.Dirname, want.Basename)
	}
}
