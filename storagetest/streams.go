package storagetest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/jmgilman/go/storage/core"
)

// TestStreams tests WriteStream, UpdateStream and ReadStream.
// Uses FilesystemConfig() by default.
func TestStreams(t *testing.T, a core.Adapter) {
	TestStreamsWithConfig(t, a, FilesystemConfig())
}

// TestStreamsWithConfig tests streaming with behavior configuration.
func TestStreamsWithConfig(t *testing.T, a core.Adapter, config Config) {
	const group = "Streams"
	config.run(t, group, "WriteStreamThenReadStream", func(t *testing.T) { testWriteStreamThenReadStream(t, a) })
	config.run(t, group, "NonSeekableSource", func(t *testing.T) { testNonSeekableSource(t, a) })
	config.run(t, group, "ReadStreamMissing", func(t *testing.T) { testReadStreamMissing(t, a) })
	config.run(t, group, "ReadStreamDirectory", func(t *testing.T) { testReadStreamDirectory(t, a) })
	config.run(t, group, "UpdateStream", func(t *testing.T) { testUpdateStream(t, a) })
	config.run(t, group, "UpdateStreamMissing", func(t *testing.T) { testUpdateStreamMissing(t, a) })
}

// testWriteStreamThenReadStream round-trips a payload through the streaming
// API.
func testWriteStreamThenReadStream(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	payload := bytes.Repeat([]byte("0123456789"), 1024)

	written, err := a.WriteStream(ctx, "stream/data.bin", bytes.NewReader(payload), core.Options{})
	if err != nil {
		t.Fatalf("WriteStream(stream/data.bin): got error %v, want nil", err)
	}
	checkEntry(t, written)
	if written.Contents != nil {
		t.Error("WriteStream(stream/data.bin): returned entry carries contents")
	}

	s, found, err := a.ReadStream(ctx, "stream/data.bin")
	if err != nil || !found {
		t.Fatalf("ReadStream(stream/data.bin): got (found=%v, err=%v)", found, err)
	}
	if s.Size != int64(len(payload)) {
		t.Errorf("ReadStream(stream/data.bin): size = %d, want %d", s.Size, len(payload))
	}

	got, err := core.ReadAll(s)
	if err != nil {
		t.Fatalf("ReadAll(stream/data.bin): got error %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadAll(stream/data.bin): got %d bytes, want %d matching bytes", len(got), len(payload))
	}
}

// onlyReader hides every interface but io.Reader.
type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

// testNonSeekableSource verifies WriteStream accepts readers of unknown
// length.
func testNonSeekableSource(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	src := onlyReader{r: strings.NewReader("unknown length")}

	if _, err := a.WriteStream(ctx, "stream/pipe.txt", src, core.Options{}); err != nil {
		t.Fatalf("WriteStream(stream/pipe.txt): got error %v, want nil", err)
	}

	entry, found, err := a.Read(ctx, "stream/pipe.txt")
	if err != nil || !found {
		t.Fatalf("Read(stream/pipe.txt): got (found=%v, err=%v)", found, err)
	}
	if string(entry.Contents) != "unknown length" {
		t.Errorf("Read(stream/pipe.txt) = %q, want %q", entry.Contents, "unknown length")
	}
}

// testReadStreamMissing verifies a missing file yields no stream.
func testReadStreamMissing(t *testing.T, a core.Adapter) {
	s, found, err := a.ReadStream(context.Background(), "stream/missing.bin")
	if err != nil || found {
		t.Fatalf("ReadStream(missing) = (found=%v, err=%v), want (false, nil)", found, err)
	}
	if s != nil {
		_ = s.Close()
		t.Error("ReadStream(missing) returned a non-nil stream")
	}
}

// testReadStreamDirectory verifies directories cannot be streamed.
func testReadStreamDirectory(t *testing.T, a core.Adapter) {
	mustCreateDir(t, a, "stream/dir")

	s, found, _ := a.ReadStream(context.Background(), "stream/dir")
	if found {
		_ = s.Close()
		t.Error("ReadStream(stream/dir) found = true, want false")
	}
}

// testUpdateStream verifies UpdateStream replaces an existing file.
func testUpdateStream(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	mustWrite(t, a, "stream/update.txt", "old")

	if _, err := a.UpdateStream(ctx, "stream/update.txt", strings.NewReader("new"), core.Options{}); err != nil {
		t.Fatalf("UpdateStream(stream/update.txt): got error %v, want nil", err)
	}

	entry, _, _ := a.Read(ctx, "stream/update.txt")
	if string(entry.Contents) != "new" {
		t.Errorf("Read(stream/update.txt) = %q, want %q", entry.Contents, "new")
	}
}

// testUpdateStreamMissing verifies UpdateStream fails for missing files.
func testUpdateStreamMissing(t *testing.T, a core.Adapter) {
	ctx := context.Background()
	if _, err := a.UpdateStream(ctx, "stream/absent.txt", strings.NewReader("x"), core.Options{}); err == nil {
		t.Error("UpdateStream(missing): got nil error, want NOT_FOUND")
	}
	if a.Has(ctx, "stream/absent.txt") {
		t.Error("UpdateStream(missing) created the file")
	}
}
