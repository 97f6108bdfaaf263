package storagetest

import (
	"context"
	"testing"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

// TestReadWrite tests Write, Read, Update, Has and the metadata getters.
// Uses FilesystemConfig() by default.
func TestReadWrite(t *testing.T, a core.Adapter) {
	TestReadWriteWithConfig(t, a, FilesystemConfig())
}

// TestReadWriteWithConfig tests reads and writes with behavior configuration.
func TestReadWriteWithConfig(t *testing.T, a core.Adapter, config Config) {
	const group = "ReadWrite"
	config.run(t, group, "WriteThenRead", func(t *testing.T) { testWriteThenRead(t, a) })
	config.run(t, group, "ReadMissing", func(t *testing.T) { testReadMissing(t, a) })
	config.run(t, group, "ReadDirectory", func(t *testing.T) { testReadDirectory(t, a) })
	config.run(t, group, "Overwrite", func(t *testing.T) { testOverwrite(t, a) })
	config.run(t, group, "WriteCreatesParents", func(t *testing.T) { testWriteCreatesParents(t, a) })
	config.run(t, group, "Update", func(t *testing.T) { testUpdate(t, a) })
	config.run(t, group, "UpdateMissing", func(t *testing.T) { testUpdateMissing(t, a) })
	config.run(t, group, "Metadata", func(t *testing.T) { testMetadata(t, a) })
	config.run(t, group, "MetadataMissing", func(t *testing.T) { testMetadataMissing(t, a) })
}

// testWriteThenRead writes test/1.txt and reads it back.
func testWriteThenRead(t *testing.T, a core.Adapter) {
	ctx := context.Background()

	written, err := a.Write(ctx, "test/1.txt", []byte("test"), core.Options{})
	if err != nil {
		t.Fatalf("Write(test/1.txt): got error %v, want nil", err)
	}
	checkEntry(t, written)
	if string(written.Contents) != "test" {
		t.Errorf("Write(test/1.txt): contents = %q, want %q", written.Contents, "test")
	}

	entry, found, err := a.Read(ctx, "test/1.txt")
	if err != nil || !found {
		t.Fatalf("Read(test/1.txt): got (found=%v, err=%v), want (true, nil)", found, err)
	}
	checkEntry(t, entry)

	if string(entry.Contents) != "test" {
		t.Errorf("Read(test/1.txt): contents = %q, want %q", entry.Contents, "test")
	}
	if entry.Size != 4 {
		t.Errorf("Read(test/1.txt): size = %d, want 4", entry.Size)
	}
	if entry.Type != core.TypeFile {
		t.Errorf("Read(test/1.txt): type = %q, want %q", entry.Type, core.TypeFile)
	}
	if entry.Path != "test/1.txt" || entry.Dirname != "test" || entry.Extension != "txt" {
		t.Errorf("Read(test/1.txt): path parts = %q %q %q", entry.Path, entry.Dirname, entry.Extension)
	}
	if !a.Has(ctx, "test/1.txt") {
		t.Error("Has(test/1.txt) = false, want true")
	}
}

// testReadMissing verifies a missing file is reported as not found.
func testReadMissing(t *testing.T, a core.Adapter) {
	entry, found, err := a.Read(context.Background(), "does/not/exist.txt")
	if err != nil {
		t.Fatalf("Read(missing): got error %v, want nil", err)
	}
	if found {
		t.Errorf("Read(missing): found = true, entry = %v", entry)
	}
	if a.Has(context.Background(), "does/not/exist.txt") {
		t.Error("Has(missing) = true, want false")
	}
}

// testReadDirectory verifies Read does not return directories.
func testReadDirectory(t *testing.T, a core.Adapter) {
	mustCreateDir(t, a, "readdir")

	_, found, err := a.Read(context.Background(), "readdir")
	if err != nil {
		t.Fatalf("Read(readdir): got error %v, want nil", err)
	}
	if found {
		t.Error("Read(readdir): found = true for a directory")
	}
}

// testOverwrite verifies Write replaces existing contents.
func testOverwrite(t *testing.T, a core.Adapter) {
	mustWrite(t, a, "overwrite.txt", "first version")
	mustWrite(t, a, "overwrite.txt", "second")

	entry, found, err := a.Read(context.Background(), "overwrite.txt")
	if err != nil || !found {
		t.Fatalf("Read(overwrite.txt): got (found=%v, err=%v)", found, err)
	}
	if string(entry.Contents) != "second" || entry.Size != 6 {
		t.Errorf("Read(overwrite.txt) = %q (size %d), want %q (size 6)", entry.Contents, entry.Size, "second")
	}
}

// testWriteCreatesParents verifies writes into missing directories succeed.
func testWriteCreatesParents(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "deep/er/still/file.txt", "x")

	for _, dir := range []string{"deep", "deep/er", "deep/er/still"} {
		if !a.Has(ctx, dir) {
			t.Errorf("Has(%s) = false after nested write, want true", dir)
		}
	}
}

// testUpdate verifies Update replaces an existing file.
func testUpdate(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "update.txt", "before")

	entry, err := a.Update(ctx, "update.txt", []byte("after!"), core.Options{})
	if err != nil {
		t.Fatalf("Update(update.txt): got error %v, want nil", err)
	}
	if string(entry.Contents) != "after!" {
		t.Errorf("Update(update.txt): contents = %q, want %q", entry.Contents, "after!")
	}

	read, _, _ := a.Read(ctx, "update.txt")
	if string(read.Contents) != "after!" {
		t.Errorf("Read(update.txt) after Update = %q, want %q", read.Contents, "after!")
	}
}

// testUpdateMissing verifies Update fails with NOT_FOUND for missing files.
func testUpdateMissing(t *testing.T, a core.Adapter) {
	_, err := a.Update(context.Background(), "no-such-file.txt", []byte("x"), core.Options{})
	if err == nil {
		t.Fatal("Update(missing): got nil error, want NOT_FOUND")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("Update(missing): code = %s, want %s", errors.GetCode(err), errors.CodeNotFound)
	}
	if a.Has(context.Background(), "no-such-file.txt") {
		t.Error("Update(missing) created the file")
	}
}

// testMetadata verifies the metadata getters.
func testMetadata(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "meta/info.txt", "hello world")

	getters := map[string]func(context.Context, string) (core.Entry, bool, error){
		"GetMetadata":  a.GetMetadata,
		"GetSize":      a.GetSize,
		"GetTimestamp": a.GetTimestamp,
		"GetMimetype":  a.GetMimetype,
	}
	for name, get := range getters {
		entry, found, err := get(ctx, "meta/info.txt")
		if err != nil || !found {
			t.Errorf("%s(meta/info.txt): got (found=%v, err=%v), want (true, nil)", name, found, err)
			continue
		}
		checkEntry(t, entry)
		if entry.Contents != nil {
			t.Errorf("%s(meta/info.txt): carries contents", name)
		}
	}

	size, _, _ := a.GetSize(ctx, "meta/info.txt")
	if size.Size != 11 {
		t.Errorf("GetSize(meta/info.txt) = %d, want 11", size.Size)
	}

	ts, _, _ := a.GetTimestamp(ctx, "meta/info.txt")
	if ts.Timestamp <= 0 {
		t.Errorf("GetTimestamp(meta/info.txt) = %d, want > 0", ts.Timestamp)
	}

	mt, _, _ := a.GetMimetype(ctx, "meta/info.txt")
	if mt.Mimetype != "text/plain" && mt.Mimetype != "text/plain; charset=utf-8" {
		t.Errorf("GetMimetype(meta/info.txt) = %q, want text/plain", mt.Mimetype)
	}
}

// testMetadataMissing verifies getters report missing targets as not found.
func testMetadataMissing(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	getters := map[string]func(context.Context, string) (core.Entry, bool, error){
		"GetMetadata":   a.GetMetadata,
		"GetSize":       a.GetSize,
		"GetTimestamp":  a.GetTimestamp,
		"GetMimetype":   a.GetMimetype,
		"GetVisibility": a.GetVisibility,
	}
	for name, get := range getters {
		_, found, err := get(ctx, "missing/meta.txt")
		if err != nil || found {
			t.Errorf("%s(missing): got (found=%v, err=%v), want (false, nil)", name, found, err)
		}
	}
}
