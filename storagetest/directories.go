package storagetest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestDirectories tests CreateDir, DeleteDir and directory existence.
// Uses FilesystemConfig() by default.
func TestDirectories(t *testing.T, a core.Adapter) {
	TestDirectoriesWithConfig(t, a, FilesystemConfig())
}

// TestDirectoriesWithConfig tests directories with behavior configuration.
func TestDirectoriesWithConfig(t *testing.T, a core.Adapter, config Config) {
	const group = "Directories"
	config.run(t, group, "CreateDirIdempotent", func(t *testing.T) { testCreateDirIdempotent(t, a) })
	config.run(t, group, "CreateDirNested", func(t *testing.T) { testCreateDirNested(t, a) })
	config.run(t, group, "HasEmulatedDirectory", func(t *testing.T) { testHasEmulatedDirectory(t, a) })
	config.run(t, group, "DeleteDir", func(t *testing.T) { testDeleteDir(t, a) })
	config.run(t, group, "DeleteDirMissing", func(t *testing.T) { testDeleteDirMissing(t, a) })
	config.run(t, group, "DeleteDirEmptiesParentListing", func(t *testing.T) {
		testDeleteDirEmptiesParentListing(t, a, config)
	})
}

// testCreateDirIdempotent verifies CreateDir succeeds twice and leaves one
// directory node.
func testCreateDirIdempotent(t *testing.T, a core.Adapter) {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !a.CreateDir(ctx, "idem/y", core.Options{}) {
			t.Fatalf("CreateDir(idem/y) call %d = false, want true", i+1)
		}
	}

	if !a.Has(ctx, "idem/y") {
		t.Error("Has(idem/y) = false, want true")
	}

	entries := mustList(t, a, "idem", false)
	if len(entries) != 1 {
		t.Fatalf("ListContents(idem) = %v, want exactly [idem/y]", entryPaths(entries))
	}
	if entries[0].Path != "idem/y" || !entries[0].IsDir() {
		t.Errorf("ListContents(idem)[0] = %v, want dir idem/y", entries[0])
	}
}

// testCreateDirNested verifies CreateDir creates every missing ancestor.
func testCreateDirNested(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustCreateDir(t, a, "nest/a/b/c")

	for _, dir := range []string{"nest", "nest/a", "nest/a/b", "nest/a/b/c"} {
		if !a.Has(ctx, dir) {
			t.Errorf("Has(%s) = false, want true", dir)
		}
	}

	entry, found, err := a.GetMetadata(ctx, "nest/a/b/c")
	if err != nil || !found {
		t.Fatalf("GetMetadata(nest/a/b/c): got (found=%v, err=%v)", found, err)
	}
	if !entry.IsDir() {
		t.Errorf("GetMetadata(nest/a/b/c).Type = %q, want dir", entry.Type)
	}
	checkEntry(t, entry)
}

// testHasEmulatedDirectory verifies Has sees directories implied by files.
func testHasEmulatedDirectory(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "implied/sub/file.txt", "x")

	if !a.Has(ctx, "implied/sub") {
		t.Error("Has(implied/sub) = false, want true")
	}
	if a.Has(ctx, "implied/other") {
		t.Error("Has(implied/other) = true, want false")
	}
}

// testDeleteDir verifies DeleteDir removes every descendant.
func testDeleteDir(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "gone/1.txt", "1")
	mustWrite(t, a, "gone/sub/2.txt", "2")
	mustCreateDir(t, a, "gone/empty")

	if !a.DeleteDir(ctx, "gone") {
		t.Fatal("DeleteDir(gone) = false, want true")
	}

	for _, p := range []string{"gone", "gone/1.txt", "gone/sub", "gone/sub/2.txt", "gone/empty"} {
		if a.Has(ctx, p) {
			t.Errorf("Has(%s) after DeleteDir = true, want false", p)
		}
	}
}

// testDeleteDirMissing verifies DeleteDir of a missing directory succeeds.
func testDeleteDirMissing(t *testing.T, a core.Adapter) {
	if !a.DeleteDir(context.Background(), "not/a/dir") {
		t.Error("DeleteDir(missing) = false, want true")
	}
}

// testDeleteDirEmptiesParentListing verifies a deleted directory no longer
// appears in its parent listing, and that siblings survive.
func testDeleteDirEmptiesParentListing(t *testing.T, a core.Adapter, config Config) {
	ctx := context.Background()
	mustWrite(t, a, "parent/keep.txt", "k")
	mustWrite(t, a, "parent/drop/x.txt", "x")
	mustWrite(t, a, "parent/dropped.txt", "prefix sibling")

	if !a.DeleteDir(ctx, "parent/drop") {
		t.Fatal("DeleteDir(parent/drop) = false, want true")
	}

	got := entryPaths(mustList(t, a, "parent", false))
	want := []string{"parent/dropped.txt", "parent/keep.txt"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ListContents(parent) = %v, want %v (virtual=%v)", got, want, config.VirtualDirectories)
	}
}
