package storagetest

import (
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestListing tests ListContents.
// Uses FilesystemConfig() by default.
func TestListing(t *testing.T, a core.Adapter) {
	TestListingWithConfig(t, a, FilesystemConfig())
}

// TestListingWithConfig tests listings with behavior configuration.
func TestListingWithConfig(t *testing.T, a core.Adapter, config Config) {
	const group = "Listing"
	config.run(t, group, "Recursive", func(t *testing.T) { testListRecursive(t, a) })
	config.run(t, group, "NonRecursive", func(t *testing.T) { testListNonRecursive(t, a) })
	config.run(t, group, "ImpliedDirectories", func(t *testing.T) { testListImpliedDirectories(t, a) })
	config.run(t, group, "Ordering", func(t *testing.T) { testListOrdering(t, a) })
	config.run(t, group, "NoContents", func(t *testing.T) { testListNoContents(t, a) })
	config.run(t, group, "Missing", func(t *testing.T) { testListMissing(t, a) })
	config.run(t, group, "Root", func(t *testing.T) { testListRoot(t, a) })
}

// setupTree creates test2/test31/test4, test2/test32/test4 and test2/test.txt.
func setupTree(t *testing.T, a core.Adapter) {
	t.Helper()
	mustCreateDir(t, a, "test2/test31/test4")
	mustCreateDir(t, a, "test2/test32/test4")
	mustWrite(t, a, "test2/test.txt", "test")
}

// testListRecursive verifies a recursive listing reports the file and all
// four directories with matching dirnames.
func testListRecursive(t *testing.T, a core.Adapter) {
	setupTree(t, a)
	entries := mustList(t, a, "test2", true)

	want := map[string]core.Type{
		"test2/test.txt":     core.TypeFile,
		"test2/test31":       core.TypeDir,
		"test2/test31/test4": core.TypeDir,
		"test2/test32":       core.TypeDir,
		"test2/test32/test4": core.TypeDir,
	}
	if len(entries) != len(want) {
		t.Fatalf("ListContents(test2, true) = %v, want %d entries", entryPaths(entries), len(want))
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		checkEntry(t, e)
		if seen[e.Path] {
			t.Errorf("ListContents(test2, true): duplicate entry %q", e.Path)
		}
		seen[e.Path] = true

		typ, ok := want[e.Path]
		if !ok {
			t.Errorf("ListContents(test2, true): unexpected entry %q", e.Path)
			continue
		}
		if e.Type != typ {
			t.Errorf("ListContents(test2, true): %q type = %q, want %q", e.Path, e.Type, typ)
		}
		if e.Dirname != core.Dirname(e.Path) {
			t.Errorf("ListContents(test2, true): %q dirname = %q, want %q", e.Path, e.Dirname, core.Dirname(e.Path))
		}
	}
}

// testListNonRecursive verifies a shallow listing reports only direct
// children.
func testListNonRecursive(t *testing.T, a core.Adapter) {
	setupTree(t, a)
	got := entryPaths(mustList(t, a, "test2", false))

	want := []string{"test2/test.txt", "test2/test31", "test2/test32"}
	if len(got) != len(want) {
		t.Fatalf("ListContents(test2, false) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListContents(test2, false)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// testListImpliedDirectories verifies directories implied only by file paths
// are reported.
func testListImpliedDirectories(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "deep/a/b/c.txt", "c")

	entries := mustList(t, a, "deep", true)
	for _, p := range []string{"deep/a", "deep/a/b"} {
		e, ok := findEntry(entries, p)
		if !ok {
			t.Errorf("ListContents(deep, true): missing directory %q in %v", p, entryPaths(entries))
			continue
		}
		if !e.IsDir() {
			t.Errorf("ListContents(deep, true): %q type = %q, want dir", p, e.Type)
		}
	}
	if _, ok := findEntry(entries, "deep"); ok {
		t.Error("ListContents(deep, true): listed directory reported itself")
	}
}

// testListOrdering verifies every directory precedes its descendants.
func testListOrdering(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "order/b/2.txt", "2")
	mustWrite(t, a, "order/a.txt", "a")
	mustWrite(t, a, "order/a/1.txt", "1")

	entries := mustList(t, a, "order", true)
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Path] = i
	}

	for _, e := range entries {
		parent := e.Dirname
		if parent == "order" {
			continue
		}
		pi, ok := index[parent]
		if !ok {
			t.Errorf("ListContents(order, true): parent %q of %q not listed", parent, e.Path)
			continue
		}
		if pi > index[e.Path] {
			t.Errorf("ListContents(order, true): %q listed after its descendant %q", parent, e.Path)
		}
	}
}

// testListNoContents verifies listings never carry file contents.
func testListNoContents(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "bare/file.txt", "payload")

	for _, e := range mustList(t, a, "bare", true) {
		if e.Contents != nil {
			t.Errorf("ListContents(bare): %q carries contents", e.Path)
		}
		if e.IsFile() && e.Size != int64(len("payload")) {
			t.Errorf("ListContents(bare): %q size = %d, want %d", e.Path, e.Size, len("payload"))
		}
	}
}

// testListMissing verifies listing a missing directory yields no entries.
func testListMissing(t *testing.T, a core.Adapter) {
	if entries := mustList(t, a, "nothing/here", true); len(entries) != 0 {
		t.Errorf("ListContents(missing) = %v, want empty", entryPaths(entries))
	}
}

// testListRoot verifies the namespace root can be listed.
func testListRoot(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "top.txt", "t")
	mustWrite(t, a, "under/leaf.txt", "l")

	entries := mustList(t, a, "", false)
	for _, p := range []string{"top.txt", "under"} {
		if _, ok := findEntry(entries, p); !ok {
			t.Errorf("ListContents(\"\") = %v, missing %q", entryPaths(entries), p)
		}
	}
	if _, ok := findEntry(entries, "under/leaf.txt"); ok {
		t.Error("ListContents(\"\", false) reported a nested file")
	}
}
