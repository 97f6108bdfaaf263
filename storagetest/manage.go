package storagetest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestManage tests Delete, Copy and Rename.
// Uses FilesystemConfig() by default.
func TestManage(t *testing.T, a core.Adapter) {
	TestManageWithConfig(t, a, FilesystemConfig())
}

// TestManageWithConfig tests file management with behavior configuration.
func TestManageWithConfig(t *testing.T, a core.Adapter, config Config) {
	const group = "Manage"
	config.run(t, group, "DeleteFile", func(t *testing.T) { testDeleteFile(t, a) })
	config.run(t, group, "DeleteDirectoryPath", func(t *testing.T) { testDeleteDirectoryPath(t, a) })
	config.run(t, group, "DeleteMissing", func(t *testing.T) { testDeleteMissing(t, a) })
	config.run(t, group, "CopyThenRename", func(t *testing.T) { testCopyThenRename(t, a) })
	config.run(t, group, "CopyMissing", func(t *testing.T) { testCopyMissing(t, a) })
	config.run(t, group, "RenameMissing", func(t *testing.T) { testRenameMissing(t, a) })
	config.run(t, group, "RenameFailureKeepsSource", func(t *testing.T) { testRenameFailureKeepsSource(t, a) })
	config.run(t, group, "OntoItself", func(t *testing.T) { testOntoItself(t, a) })
	config.run(t, group, "CopyPreservesVisibility", func(t *testing.T) {
		if config.FixedVisibility {
			t.Skip("adapter reports a fixed visibility")
		}
		testCopyPreservesVisibility(t, a)
	})
}

// testDeleteFile verifies Delete removes a file.
func testDeleteFile(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "del/1.txt", "test")

	if !a.Delete(ctx, "del/1.txt") {
		t.Fatal("Delete(del/1.txt) = false, want true")
	}
	if a.Has(ctx, "del/1.txt") {
		t.Error("Has(del/1.txt) after Delete = true, want false")
	}
}

// testDeleteDirectoryPath verifies Delete refuses directory paths without
// touching storage.
func testDeleteDirectoryPath(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "guard/1.txt", "test")

	if a.Delete(ctx, "guard/") {
		t.Error("Delete(guard/) = true, want false")
	}
	if !a.Has(ctx, "guard/1.txt") {
		t.Error("Has(guard/1.txt) after Delete(guard/) = false, want true")
	}
	if !a.Has(ctx, "guard") {
		t.Error("Has(guard) after Delete(guard/) = false, want true")
	}
}

// testDeleteMissing verifies Delete on a missing file returns false.
func testDeleteMissing(t *testing.T, a core.Adapter) {
	if a.Delete(context.Background(), "never/existed.txt") {
		t.Error("Delete(missing) = true, want false")
	}
}

// testCopyThenRename runs the copy and rename scenario on test/1.txt.
func testCopyThenRename(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "scenario/1.txt", "test")

	if !a.Copy(ctx, "scenario/1.txt", "scenario/2.txt") {
		t.Fatal("Copy(scenario/1.txt, scenario/2.txt) = false, want true")
	}
	if !a.Has(ctx, "scenario/2.txt") {
		t.Error("Has(scenario/2.txt) after Copy = false, want true")
	}
	if !a.Has(ctx, "scenario/1.txt") {
		t.Error("Has(scenario/1.txt) after Copy = false, want true")
	}

	copied, _, _ := a.Read(ctx, "scenario/2.txt")
	if string(copied.Contents) != "test" {
		t.Errorf("Read(scenario/2.txt) = %q, want %q", copied.Contents, "test")
	}

	if !a.Rename(ctx, "scenario/2.txt", "scenario/3.txt") {
		t.Fatal("Rename(scenario/2.txt, scenario/3.txt) = false, want true")
	}
	if a.Has(ctx, "scenario/2.txt") {
		t.Error("Has(scenario/2.txt) after Rename = true, want false")
	}
	if !a.Has(ctx, "scenario/3.txt") {
		t.Error("Has(scenario/3.txt) after Rename = false, want true")
	}

	renamed, _, _ := a.Read(ctx, "scenario/3.txt")
	if string(renamed.Contents) != "test" {
		t.Errorf("Read(scenario/3.txt) = %q, want %q", renamed.Contents, "test")
	}
}

// testCopyMissing verifies Copy of a missing source returns false.
func testCopyMissing(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	if a.Copy(ctx, "missing/src.txt", "missing/dst.txt") {
		t.Error("Copy(missing) = true, want false")
	}
	if a.Has(ctx, "missing/dst.txt") {
		t.Error("Copy(missing) created the destination")
	}
}

// testRenameMissing verifies Rename of a missing source returns false.
func testRenameMissing(t *testing.T, a core.Adapter) {
	if a.Rename(context.Background(), "missing/a.txt", "missing/b.txt") {
		t.Error("Rename(missing) = true, want false")
	}
}

// testRenameFailureKeepsSource verifies a rename that cannot complete leaves
// the source in place. The namespace root is never a valid file target.
func testRenameFailureKeepsSource(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "atomic/source.txt", "keep me")

	if a.Rename(ctx, "atomic/source.txt", "") {
		t.Fatal("Rename(atomic/source.txt, \"\") = true, want false")
	}
	if !a.Has(ctx, "atomic/source.txt") {
		t.Error("Has(atomic/source.txt) after failed Rename = false, want true")
	}
}

// testOntoItself verifies Copy and Rename refuse a destination equal to the
// source and leave the file as it was.
func testOntoItself(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "self/same.txt", "same")

	if a.Copy(ctx, "self/same.txt", "self/same.txt") {
		t.Error("Copy(self/same.txt, self/same.txt) = true, want false")
	}
	if a.Rename(ctx, "self/same.txt", "self/same.txt") {
		t.Error("Rename(self/same.txt, self/same.txt) = true, want false")
	}

	entry, found, err := a.Read(ctx, "self/same.txt")
	if err != nil || !found {
		t.Fatalf("Read(self/same.txt): got (found=%v, err=%v), want (true, nil)", found, err)
	}
	if string(entry.Contents) != "same" {
		t.Errorf("Read(self/same.txt) = %q, want %q", entry.Contents, "same")
	}
}

// testCopyPreservesVisibility verifies Copy keeps the source visibility.
func testCopyPreservesVisibility(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	opts := core.Options{Visibility: core.VisibilityPrivate}
	if _, err := a.Write(ctx, "vis/private.txt", []byte("secret"), opts); err != nil {
		t.Fatalf("Write(vis/private.txt): setup failed: %v", err)
	}

	if !a.Copy(ctx, "vis/private.txt", "vis/private-copy.txt") {
		t.Fatal("Copy(vis/private.txt) = false, want true")
	}

	entry, found, err := a.GetVisibility(ctx, "vis/private-copy.txt")
	if err != nil || !found {
		t.Fatalf("GetVisibility(vis/private-copy.txt): got (found=%v, err=%v)", found, err)
	}
	if entry.Visibility != core.VisibilityPrivate {
		t.Errorf("GetVisibility(vis/private-copy.txt) = %q, want %q", entry.Visibility, core.VisibilityPrivate)
	}
}
