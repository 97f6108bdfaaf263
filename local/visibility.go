package local

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
	"github.com/jmgilman/go/storage/errors"
)

// GetVisibility reports public when the entry at path is readable by
// others and private otherwise.
func (a *Adapter) GetVisibility(ctx context.Context, path string) (core.Entry, bool, error) {
	if err := ctxErr(ctx, "getVisibility", path); err != nil {
		return core.Entry{}, false, err
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		return core.Entry{}, false, a.fail("getVisibility", path, err)
	}
	if !found {
		return core.Entry{}, false, nil
	}

	entry := a.entry(location, info)
	entry.Visibility = visibilityOf(info.Mode())
	return entry, true, nil
}

// SetVisibility applies the permission bits configured for v.
//
// Files on filesystems without mode support are rewritten with the new
// mode. Directories on such filesystems keep their mode and the visibility
// actually in effect is reported.
func (a *Adapter) SetVisibility(ctx context.Context, path string, v core.Visibility) (core.Entry, bool, error) {
	if !v.Valid() {
		return core.Entry{}, false, errors.WithPath(
			errors.Newf(errors.CodeInvalidInput, "invalid visibility %q", v), "setVisibility", path)
	}
	if err := ctxErr(ctx, "setVisibility", path); err != nil {
		return core.Entry{}, false, err
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		return core.Entry{}, false, a.fail("setVisibility", path, err)
	}
	if !found {
		return core.Entry{}, false, nil
	}

	mode := a.perms.file(v)
	if info.IsDir() {
		mode = a.perms.dir(v)
	}

	err = a.chmod(location, mode)
	switch {
	case errors.Is(err, core.ErrUnsupported) && !info.IsDir():
		err = a.rewrite(ctx, location, mode)
	case errors.Is(err, core.ErrUnsupported):
		a.logger.Debug("directory mode unsupported", zap.String("path", location))
		err = nil
	}
	if err != nil {
		return core.Entry{}, false, a.fail("setVisibility", path, err)
	}

	return a.GetVisibility(ctx, path)
}

// rewrite recreates the file at location with mode.
func (a *Adapter) rewrite(ctx context.Context, location string, mode os.FileMode) error {
	f, err := a.bfs.Open(location)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = a.writeFile(ctx, location, f, mode)
	return err
}
