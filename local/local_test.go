package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
	"github.com/jmgilman/go/storage/storagetest"
)

// TestMemory runs the conformance suite against the in-memory adapter.
// memfs has no mode support for directories, so visibility is only
// exercised for files.
func TestMemory(t *testing.T) {
	storagetest.TestSuite(t, func() core.Adapter {
		return NewMemory()
	})
}

// TestLocal runs the conformance suite against a temporary directory.
func TestLocal(t *testing.T) {
	storagetest.TestSuite(t, func() core.Adapter {
		a, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New(): %v", err)
		}
		return a
	})
}

// TestMemory_Prefixed runs the conformance suite inside a prefix.
func TestMemory_Prefixed(t *testing.T) {
	storagetest.TestSuite(t, func() core.Adapter {
		return NewMemory(WithPrefix("tenant/a"))
	})
}

// TestNew_Errors verifies constructor validation.
func TestNew_Errors(t *testing.T) {
	if _, err := New(""); errors.GetCode(err) != errors.CodeInvalidConfig {
		t.Errorf("New(\"\") code = %s, want %s", errors.GetCode(err), errors.CodeInvalidConfig)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := New(file); errors.GetCode(err) != errors.CodeInvalidConfig {
		t.Errorf("New(file) code = %s, want %s", errors.GetCode(err), errors.CodeInvalidConfig)
	}
}

// TestNew_CreatesRoot verifies New creates a missing root directory.
func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does", "not", "exist")
	if _, err := New(root); err != nil {
		t.Fatalf("New(%s): %v", root, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("New(%s) did not create the root: %v", root, err)
	}
}

// TestAdapter_Kind verifies each constructor reports its medium.
func TestAdapter_Kind(t *testing.T) {
	disk, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New(): %v", err)
	}

	tests := []struct {
		name string
		a    *Adapter
		want core.Kind
	}{
		{"disk", disk, core.KindLocal},
		{"memory", NewMemory(), core.KindMemory},
		{"billy memory", NewFromBilly(memfs.New(), core.KindMemory), core.KindMemory},
		{"billy disk", NewFromBilly(osfs.New(t.TempDir()), core.KindLocal), core.KindLocal},
	}
	for _, tt := range tests {
		if got := tt.a.Kind(); got != tt.want {
			t.Errorf("%s.Kind() = %v (%s), want %v (%s)", tt.name, got, got.String(), tt.want, tt.want.String())
		}
	}
}

// TestAdapter_Unwrap verifies Unwrap returns the live billy filesystem.
func TestAdapter_Unwrap(t *testing.T) {
	a := NewMemory()
	bfs := a.Unwrap()
	if bfs == nil {
		t.Fatal("Unwrap() returned nil")
	}

	f, err := bfs.Create("direct.txt")
	if err != nil {
		t.Fatalf("Create through unwrapped filesystem: %v", err)
	}
	_, _ = f.Write([]byte("direct"))
	_ = f.Close()

	if !a.Has(context.Background(), "direct.txt") {
		t.Error("Has(direct.txt) = false for a file created through Unwrap")
	}
}

// TestAdapter_Prefix verifies paths are stored under the prefix and
// reported relative to it.
func TestAdapter_Prefix(t *testing.T) {
	ctx := context.Background()
	a := NewMemory(WithPrefix("/root/dir/"))

	if got := a.PathPrefix(); got != "root/dir/" {
		t.Errorf("PathPrefix() = %q, want %q", got, "root/dir/")
	}

	entry, err := a.Write(ctx, "sub/file.txt", []byte("x"), core.Options{})
	if err != nil {
		t.Fatalf("Write(): %v", err)
	}
	if entry.Path != "sub/file.txt" {
		t.Errorf("Write() path = %q, want %q", entry.Path, "sub/file.txt")
	}

	if _, err := a.Unwrap().Stat("root/dir/sub/file.txt"); err != nil {
		t.Errorf("file not stored under prefix: %v", err)
	}

	entries, err := a.ListContents(ctx, "", true)
	if err != nil {
		t.Fatalf("ListContents(): %v", err)
	}
	for _, e := range entries {
		if len(e.Path) >= 4 && e.Path[:4] == "root" {
			t.Errorf("ListContents() leaked prefix in %q", e.Path)
		}
	}
}

// TestAdapter_TempFilesHidden verifies in-flight write files never appear in
// listings.
func TestAdapter_TempFilesHidden(t *testing.T) {
	a := NewMemory()
	f, err := a.Unwrap().Create(tempPrefix + "leftover.tmp")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	_ = f.Close()

	entries, err := a.ListContents(context.Background(), "", true)
	if err != nil {
		t.Fatalf("ListContents(): %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ListContents() = %v, want empty", entries)
	}
}

// TestAdapter_WriteLeavesNoTempFiles verifies the atomic write cleans up.
func TestAdapter_WriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	a, err := New(root)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	if _, err := a.Write(context.Background(), "a.txt", []byte("x"), core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	names, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir(): %v", err)
	}
	if len(names) != 1 || names[0].Name() != "a.txt" {
		t.Errorf("root contains %v, want only a.txt", names)
	}
}

// TestAdapter_Permissions verifies the configured modes reach the disk.
func TestAdapter_Permissions(t *testing.T) {
	root := t.TempDir()
	perms := Permissions{FilePublic: 0o640, FilePrivate: 0o600, DirPublic: 0o750, DirPrivate: 0o700}
	a, err := New(root, WithPermissions(perms))
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	ctx := context.Background()

	if _, err := a.Write(ctx, "private.txt", []byte("x"), core.Options{Visibility: core.VisibilityPrivate}); err != nil {
		t.Fatalf("Write(private.txt): %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "private.txt"))
	if err != nil {
		t.Fatalf("Stat(): %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("private.txt mode = %o, want 600", info.Mode().Perm())
	}

	if !a.CreateDir(ctx, "closed", core.Options{Visibility: core.VisibilityPrivate}) {
		t.Fatal("CreateDir(closed) = false")
	}
	info, err = os.Stat(filepath.Join(root, "closed"))
	if err != nil {
		t.Fatalf("Stat(): %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("closed mode = %o, want 700", info.Mode().Perm())
	}

	entry, _, _ := a.GetVisibility(ctx, "closed")
	if entry.Visibility != core.VisibilityPrivate {
		t.Errorf("GetVisibility(closed) = %q, want private", entry.Visibility)
	}
}

// TestAdapter_WriteOverDirectory verifies a file cannot replace a directory.
func TestAdapter_WriteOverDirectory(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	if !a.CreateDir(ctx, "taken", core.Options{}) {
		t.Fatal("CreateDir(taken) = false")
	}

	_, err := a.Write(ctx, "taken", []byte("x"), core.Options{})
	if errors.GetCode(err) != errors.CodeConflict {
		t.Errorf("Write(taken) code = %s, want %s", errors.GetCode(err), errors.CodeConflict)
	}

	_, err = a.Write(ctx, "dir/", []byte("x"), core.Options{})
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Errorf("Write(dir/) code = %s, want %s", errors.GetCode(err), errors.CodeInvalidInput)
	}
}

// TestAdapter_OntoItself verifies Copy and Rename onto the source neither
// succeed nor rewrite the file.
func TestAdapter_OntoItself(t *testing.T) {
	root := t.TempDir()
	a, err := New(root)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	ctx := context.Background()
	if _, err := a.Write(ctx, "same.txt", []byte("same"), core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	past := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	file := filepath.Join(root, "same.txt")
	if err := os.Chtimes(file, past, past); err != nil {
		t.Fatalf("Chtimes(): %v", err)
	}

	if a.Copy(ctx, "same.txt", "same.txt") {
		t.Error("Copy(same.txt, same.txt) = true, want false")
	}
	if a.Rename(ctx, "same.txt", "/same.txt") {
		t.Error("Rename(same.txt, /same.txt) = true, want false")
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat(): %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("ModTime() = %v, want %v", info.ModTime(), past)
	}
}

// TestAdapter_CreateDirOverFile verifies CreateDir fails when a file holds
// the path.
func TestAdapter_CreateDirOverFile(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	if _, err := a.Write(ctx, "file", []byte("x"), core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	if a.CreateDir(ctx, "file", core.Options{}) {
		t.Error("CreateDir(file) = true, want false")
	}
	if a.DeleteDir(ctx, "file") {
		t.Error("DeleteDir(file) = true, want false")
	}
}

// TestAdapter_DeleteDirRoot verifies deleting the namespace root empties it.
func TestAdapter_DeleteDirRoot(t *testing.T) {
	a := NewMemory(WithPrefix("ns"))
	ctx := context.Background()
	if _, err := a.Write(ctx, "a/b.txt", []byte("x"), core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	if !a.DeleteDir(ctx, "") {
		t.Fatal("DeleteDir(\"\") = false")
	}
	entries, err := a.ListContents(ctx, "", true)
	if err != nil {
		t.Fatalf("ListContents(): %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ListContents() after DeleteDir = %v, want empty", entries)
	}
}

// TestAdapter_ReadStreamSeek verifies streams returned by ReadStream seek.
func TestAdapter_ReadStreamSeek(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	if _, err := a.Write(ctx, "seek.txt", []byte("0123456789"), core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	s, found, err := a.ReadStream(ctx, "seek.txt")
	if err != nil || !found {
		t.Fatalf("ReadStream(): found=%v err=%v", found, err)
	}
	defer func() { _ = s.Close() }()

	f, ok := s.Body.(*File)
	if !ok {
		t.Fatalf("ReadStream() body is %T, want *File", s.Body)
	}
	if _, err := f.Seek(5, 0); err != nil {
		t.Fatalf("Seek(): %v", err)
	}
	buf := make([]byte, 5)
	if _, err := f.Read(buf); err != nil {
		t.Fatalf("Read(): %v", err)
	}
	if string(buf) != "56789" {
		t.Errorf("Read() after Seek = %q, want %q", buf, "56789")
	}

	if err := f.Close(); err != nil {
		t.Errorf("Close(): %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

// TestAdapter_MimeDetector verifies a custom detector is used.
func TestAdapter_MimeDetector(t *testing.T) {
	var seen []byte
	a := NewMemory(WithMimeDetector(func(path string, head []byte) string {
		seen = append([]byte(nil), head...)
		return "application/x-custom"
	}))
	ctx := context.Background()
	if _, err := a.Write(ctx, "blob", []byte("head bytes"), core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	entry, found, err := a.GetMimetype(ctx, "blob")
	if err != nil || !found {
		t.Fatalf("GetMimetype(): found=%v err=%v", found, err)
	}
	if entry.Mimetype != "application/x-custom" {
		t.Errorf("GetMimetype() = %q, want application/x-custom", entry.Mimetype)
	}
	if !bytes.Equal(seen, []byte("head bytes")) {
		t.Errorf("detector saw %q, want %q", seen, "head bytes")
	}
}

// TestAdapter_DetectsFromContent verifies content sniffing for files
// without an extension.
func TestAdapter_DetectsFromContent(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if _, err := a.Write(ctx, "image", png, core.Options{}); err != nil {
		t.Fatalf("Write(): %v", err)
	}

	entry, _, _ := a.GetMimetype(ctx, "image")
	if entry.Mimetype != "image/png" {
		t.Errorf("GetMimetype(image) = %q, want image/png", entry.Mimetype)
	}
}

// TestAdapter_CanceledContext verifies operations honor cancellation.
func TestAdapter_CanceledContext(t *testing.T) {
	a := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Write(ctx, "x.txt", []byte("x"), core.Options{}); err == nil {
		t.Error("Write() with canceled context succeeded")
	}
	if _, _, err := a.Read(ctx, "x.txt"); err == nil {
		t.Error("Read() with canceled context succeeded")
	}
	if a.Has(context.Background(), "x.txt") {
		t.Error("canceled Write() left a file behind")
	}
}

// TestAdapter_LogsFailures verifies boolean operations log their failures.
func TestAdapter_LogsFailures(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	a := NewMemory(WithLogger(zap.New(obs)))
	ctx := context.Background()

	if _, err := a.Write(ctx, "blocker", []byte("x"), core.Options{}); err != nil {
		t.Fatalf("Write(blocker): %v", err)
	}
	if _, err := a.Write(ctx, "src.txt", []byte("x"), core.Options{}); err != nil {
		t.Fatalf("Write(src.txt): %v", err)
	}
	if a.Rename(ctx, "src.txt", "blocker/dst.txt") {
		t.Fatal("Rename(src.txt, blocker/dst.txt) = true, want false")
	}
	if !a.Has(ctx, "src.txt") {
		t.Error("failed Rename removed the source")
	}

	failures := logs.FilterMessage("operation failed")
	if failures.Len() == 0 {
		t.Error("failed Rename logged nothing")
	}
	for _, entry := range failures.All() {
		if entry.ContextMap()["backend"] != "memory" {
			t.Errorf("log entry %q missing backend field: %v", entry.Message, entry.ContextMap())
		}
	}
}

// TestCopyFromFS verifies embedded trees are copied into an adapter.
func TestCopyFromFS(t *testing.T) {
	src := fstest.MapFS{
		"templates/index.html":      {Data: []byte("<html></html>")},
		"templates/partials/a.tmpl": {Data: []byte("a")},
		"templates/empty":           {Mode: os.ModeDir | 0o755},
		"other/skip.txt":            {Data: []byte("skip")},
	}

	a := NewMemory()
	ctx := context.Background()
	if err := core.CopyFromFS(ctx, src, a, "templates", core.Options{}); err != nil {
		t.Fatalf("CopyFromFS(): %v", err)
	}

	entry, found, err := a.Read(ctx, "partials/a.tmpl")
	if err != nil || !found || string(entry.Contents) != "a" {
		t.Errorf("Read(partials/a.tmpl) = %q found=%v err=%v", entry.Contents, found, err)
	}
	if !a.Has(ctx, "index.html") {
		t.Error("Has(index.html) = false")
	}
	if !a.Has(ctx, "empty") {
		t.Error("Has(empty) = false, empty directory not copied")
	}
	if a.Has(ctx, "skip.txt") || a.Has(ctx, "other") {
		t.Error("CopyFromFS copied files outside srcRoot")
	}
}
