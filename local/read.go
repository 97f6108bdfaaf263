package local

import (
	"context"
	"io"
	"io/fs"

	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
)

// sniffLen is the number of leading bytes handed to the mime detector.
const sniffLen = 512

// Has reports whether a file or directory exists at path.
func (a *Adapter) Has(ctx context.Context, path string) bool {
	if ctx.Err() != nil {
		return false
	}
	_, found, err := a.stat(a.location(path))
	if err != nil {
		a.debugFailure("has", path, err)
	}
	return found
}

// Read returns the file at path with its contents.
func (a *Adapter) Read(ctx context.Context, path string) (core.Entry, bool, error) {
	if err := ctxErr(ctx, "read", path); err != nil {
		return core.Entry{}, false, err
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		return core.Entry{}, false, a.fail("read", path, err)
	}
	if !found || info.IsDir() || core.IsDirPath(path) {
		return core.Entry{}, false, nil
	}

	f, err := a.bfs.Open(location)
	if err != nil {
		return core.Entry{}, false, a.fail("read", path, err)
	}
	defer func() { _ = f.Close() }()

	contents, err := io.ReadAll(f)
	if err != nil {
		return core.Entry{}, false, a.fail("read", path, err)
	}

	a.logger.Debug("local read", zap.String("path", location), zap.Int("size", len(contents)))
	return a.entry(location, info).WithContents(contents), true, nil
}

// ReadStream opens the file at path. The caller must close the stream.
func (a *Adapter) ReadStream(ctx context.Context, path string) (*core.Stream, bool, error) {
	if err := ctxErr(ctx, "readStream", path); err != nil {
		return nil, false, err
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		return nil, false, a.fail("readStream", path, err)
	}
	if !found || info.IsDir() || core.IsDirPath(path) {
		return nil, false, nil
	}

	f, err := a.bfs.Open(location)
	if err != nil {
		return nil, false, a.fail("readStream", path, err)
	}

	return &core.Stream{
		Entry: a.entry(location, info),
		Body:  &File{file: f, fs: a.bfs, name: location},
	}, true, nil
}

// ListContents lists dir. A missing directory yields an empty listing.
func (a *Adapter) ListContents(ctx context.Context, dir string, recursive bool) ([]core.Entry, error) {
	if err := ctxErr(ctx, "listContents", dir); err != nil {
		return nil, err
	}

	root := a.location(dir)
	info, found, err := a.stat(root)
	if err != nil {
		return nil, a.fail("listContents", dir, err)
	}
	if !found || !info.IsDir() {
		return []core.Entry{}, nil
	}

	var entries []core.Entry
	err = a.walk(ctx, root, recursive, func(rel string, info fs.FileInfo) error {
		entries = append(entries, a.entry(rel, info))
		return nil
	})
	if err != nil {
		return nil, a.fail("listContents", dir, err)
	}

	a.logger.Debug("local list", zap.String("path", root), zap.Bool("recursive", recursive), zap.Int("count", len(entries)))
	return core.EmulateDirectories(entries, dir, recursive), nil
}

// GetMetadata returns the file or directory at path without contents.
func (a *Adapter) GetMetadata(ctx context.Context, path string) (core.Entry, bool, error) {
	if err := ctxErr(ctx, "getMetadata", path); err != nil {
		return core.Entry{}, false, err
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		return core.Entry{}, false, a.fail("getMetadata", path, err)
	}
	if !found {
		return core.Entry{}, false, nil
	}
	return a.entry(location, info), true, nil
}

// GetSize returns the entry at path with its size.
func (a *Adapter) GetSize(ctx context.Context, path string) (core.Entry, bool, error) {
	return a.GetMetadata(ctx, path)
}

// GetTimestamp returns the entry at path with its modification time.
func (a *Adapter) GetTimestamp(ctx context.Context, path string) (core.Entry, bool, error) {
	return a.GetMetadata(ctx, path)
}

// GetMimetype returns the file at path with its detected content type.
// Directories have no content type and report found == false.
func (a *Adapter) GetMimetype(ctx context.Context, path string) (core.Entry, bool, error) {
	entry, found, err := a.GetMetadata(ctx, path)
	if err != nil || !found || entry.IsDir() {
		return core.Entry{}, false, err
	}

	location := a.location(path)
	f, err := a.bfs.Open(location)
	if err != nil {
		return core.Entry{}, false, a.fail("getMimetype", path, err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return core.Entry{}, false, a.fail("getMimetype", path, err)
	}

	entry.Mimetype = a.detect(path, head[:n])
	return entry, true, nil
}
