package local

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

// Write creates or overwrites the file at path.
func (a *Adapter) Write(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	entry, err := a.put(ctx, "write", path, bytes.NewReader(contents), opts, core.VisibilityPublic)
	if err != nil {
		return core.Entry{}, err
	}
	return entry.WithContents(contents), nil
}

// WriteStream creates or overwrites the file at path from r.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	return a.put(ctx, "writeStream", path, r, opts, core.VisibilityPublic)
}

// Update overwrites the existing file at path, keeping its visibility unless
// opts sets one.
func (a *Adapter) Update(ctx context.Context, path string, contents []byte, opts core.Options) (core.Entry, error) {
	current, err := a.existingVisibility("update", path)
	if err != nil {
		return core.Entry{}, err
	}
	entry, err := a.put(ctx, "update", path, bytes.NewReader(contents), opts, current)
	if err != nil {
		return core.Entry{}, err
	}
	return entry.WithContents(contents), nil
}

// UpdateStream is the streaming form of Update.
func (a *Adapter) UpdateStream(ctx context.Context, path string, r io.Reader, opts core.Options) (core.Entry, error) {
	current, err := a.existingVisibility("updateStream", path)
	if err != nil {
		return core.Entry{}, err
	}
	return a.put(ctx, "updateStream", path, r, opts, current)
}

// CreateDir creates the directory at path and any missing parents.
func (a *Adapter) CreateDir(ctx context.Context, path string, opts core.Options) bool {
	if ctx.Err() != nil {
		return false
	}

	location := a.location(path)
	if location == "" {
		return true
	}

	info, found, err := a.stat(location)
	if err != nil {
		a.debugFailure("createDir", path, err)
		return false
	}
	if found && !info.IsDir() {
		return false
	}

	mode := a.perms.dir(opts.VisibilityOr(core.VisibilityPublic))
	if err := a.bfs.MkdirAll(location, mode); err != nil {
		a.debugFailure("createDir", path, err)
		return false
	}
	if opts.Visibility.Valid() {
		if err := a.chmod(location, mode); err != nil {
			a.debugFailure("createDir", path, err)
		}
	}

	a.logger.Debug("local mkdir", zap.String("path", location))
	return true
}

func (a *Adapter) existingVisibility(op, path string) (core.Visibility, error) {
	info, found, err := a.stat(a.location(path))
	if err != nil {
		return "", a.fail(op, path, err)
	}
	if !found || info.IsDir() {
		return "", errors.WithPath(errors.New(errors.CodeNotFound, "file does not exist"), op, path)
	}
	return visibilityOf(info.Mode()), nil
}

// put writes r to path through a temporary sibling file that is renamed
// over the target, so readers never observe a partial file.
func (a *Adapter) put(ctx context.Context, op, path string, r io.Reader, opts core.Options, fallback core.Visibility) (core.Entry, error) {
	if err := ctxErr(ctx, op, path); err != nil {
		return core.Entry{}, err
	}

	location := a.location(path)
	if location == "" || core.IsDirPath(path) {
		return core.Entry{}, errors.WithPath(errors.New(errors.CodeInvalidInput, "path denotes a directory"), op, path)
	}

	visibility := opts.VisibilityOr(fallback)
	info, err := a.writeFile(ctx, location, r, a.perms.file(visibility))
	if err != nil {
		return core.Entry{}, a.fail(op, path, err)
	}

	a.logger.Debug("local write", zap.String("path", location), zap.Int64("size", info.Size()))

	entry := a.entry(location, info)
	if opts.Visibility.Valid() {
		entry.Visibility = visibility
	}
	if opts.ContentType != "" {
		entry.Mimetype = opts.ContentType
	}
	return entry, nil
}

// writeFile stores r at location with mode and returns the resulting info.
func (a *Adapter) writeFile(ctx context.Context, location string, r io.Reader, mode os.FileMode) (fs.FileInfo, error) {
	if info, found, err := a.stat(location); err != nil {
		return nil, err
	} else if found && info.IsDir() {
		return nil, errors.New(errors.CodeConflict, "a directory exists at the target path")
	}

	dir := path.Dir(location)
	if dir != "." {
		if err := a.bfs.MkdirAll(dir, a.perms.DirPublic); err != nil {
			return nil, err
		}
	}

	tmp := path.Join(dir, tempPrefix+uuid.NewString()+".tmp")
	f, err := a.bfs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		_ = a.bfs.Remove(tmp)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = a.bfs.Remove(tmp)
		return nil, err
	}

	if err := a.bfs.Rename(tmp, location); err != nil {
		_ = a.bfs.Remove(tmp)
		return nil, err
	}

	// Creation modes are filtered by the process umask on disk.
	if err := a.chmod(location, mode); err != nil && !errors.Is(err, core.ErrUnsupported) {
		a.logger.Warn("failed to apply file mode", zap.String("path", location), zap.Error(err))
	}

	return a.bfs.Stat(location)
}

// chmoder is implemented by billy filesystems that can change modes.
type chmoder interface {
	Chmod(name string, mode os.FileMode) error
}

// chmod changes the mode of location, through the filesystem when it
// supports it and through the operating system for disk-backed adapters.
func (a *Adapter) chmod(location string, mode os.FileMode) error {
	if c, ok := a.bfs.(chmoder); ok {
		return c.Chmod(billyPath(location), mode)
	}
	if a.osRoot != "" {
		return os.Chmod(filepath.Join(a.osRoot, filepath.FromSlash(location)), mode)
	}
	return core.ErrUnsupported
}

// ctxReader stops a copy once ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
