package local

import (
	"context"
	"path"

	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/jmgilman/go/storage/core"
)

// Delete removes the file at path. Directory paths and missing targets
// return false.
func (a *Adapter) Delete(ctx context.Context, path string) bool {
	if ctx.Err() != nil || core.IsDirPath(path) {
		return false
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		a.debugFailure("delete", path, err)
		return false
	}
	if !found || info.IsDir() {
		return false
	}

	if err := a.bfs.Remove(location); err != nil {
		a.debugFailure("delete", path, err)
		return false
	}

	a.logger.Debug("local delete", zap.String("path", location))
	return true
}

// DeleteDir removes the directory at path and everything below it. A
// missing directory counts as deleted.
func (a *Adapter) DeleteDir(ctx context.Context, path string) bool {
	if ctx.Err() != nil {
		return false
	}

	location := a.location(path)
	info, found, err := a.stat(location)
	if err != nil {
		a.debugFailure("deleteDir", path, err)
		return false
	}
	if !found {
		return true
	}
	if !info.IsDir() {
		return false
	}

	if location == "" {
		err = a.clearRoot()
	} else {
		err = util.RemoveAll(a.bfs, location)
	}
	if err != nil {
		a.debugFailure("deleteDir", path, err)
		return false
	}

	a.logger.Debug("local delete dir", zap.String("path", location))
	return true
}

// clearRoot empties the billy root without removing the root itself.
func (a *Adapter) clearRoot() error {
	infos, err := a.bfs.ReadDir(billyPath(""))
	if err != nil {
		return err
	}
	for _, info := range infos {
		if err := util.RemoveAll(a.bfs, info.Name()); err != nil {
			return err
		}
	}
	return nil
}

// Rename moves path to newpath with the filesystem's native rename, which
// leaves the source untouched on failure. Renaming onto itself returns false.
func (a *Adapter) Rename(ctx context.Context, path, newpath string) bool {
	if ctx.Err() != nil {
		return false
	}

	src, dst := a.location(path), a.location(newpath)
	if root := a.location(""); src == root || dst == root || src == dst {
		return false
	}
	if _, found, err := a.stat(src); err != nil || !found {
		if err != nil {
			a.debugFailure("rename", path, err)
		}
		return false
	}

	if dir := pathDir(dst); dir != "" {
		if err := a.bfs.MkdirAll(dir, a.perms.DirPublic); err != nil {
			a.debugFailure("rename", newpath, err)
			return false
		}
	}

	if err := a.bfs.Rename(src, dst); err != nil {
		a.debugFailure("rename", path, err)
		return false
	}

	a.logger.Debug("local rename", zap.String("src", src), zap.String("dst", dst))
	return true
}

// Copy duplicates the file at path to newpath with the same permission
// bits, preserving its visibility. Copying onto itself returns false.
func (a *Adapter) Copy(ctx context.Context, path, newpath string) bool {
	if ctx.Err() != nil || core.IsDirPath(path) {
		return false
	}

	src, dst := a.location(path), a.location(newpath)
	if src == dst {
		return false
	}
	info, found, err := a.stat(src)
	if err != nil {
		a.debugFailure("copy", path, err)
		return false
	}
	if !found || info.IsDir() || dst == "" {
		return false
	}

	f, err := a.bfs.Open(src)
	if err != nil {
		a.debugFailure("copy", path, err)
		return false
	}
	defer func() { _ = f.Close() }()

	if _, err := a.writeFile(ctx, dst, f, info.Mode().Perm()); err != nil {
		a.debugFailure("copy", newpath, err)
		return false
	}

	a.logger.Debug("local copy", zap.String("src", src), zap.String("dst", dst))
	return true
}

func pathDir(location string) string {
	dir := path.Dir(location)
	if dir == "." {
		return ""
	}
	return dir
}
