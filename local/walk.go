package local

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path"
	"strings"
)

// walkFunc is called for every descendant of the walk root. rel is the
// billy path of the visited entry.
type walkFunc func(rel string, info fs.FileInfo) error

// walk visits every descendant of root, depth first, in the order the
// filesystem reports them. Returning fs.SkipDir from fn skips a directory.
// Recursion stops after the first level when recursive is false.
func (a *Adapter) walk(ctx context.Context, root string, recursive bool, fn walkFunc) error {
	err := a.walkDir(ctx, root, recursive, fn)
	if stderrors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (a *Adapter) walkDir(ctx context.Context, dir string, recursive bool, fn walkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	infos, err := a.bfs.ReadDir(billyPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, info := range infos {
		if strings.HasPrefix(info.Name(), tempPrefix) {
			continue
		}

		child := path.Join(dir, info.Name())
		if err := fn(child, info); err != nil {
			if stderrors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}

		if recursive && info.IsDir() {
			if err := a.walkDir(ctx, child, recursive, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
