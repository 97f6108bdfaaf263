package core

import (
	"context"
	"io/fs"
	"strings"

	"github.com/jmgilman/go/storage/errors"
)

// CopyFromFS copies every file below srcRoot in a read-only filesystem
// (typically an embed.FS) into dst, preserving the directory structure.
//
// Use "." to copy the entire source filesystem. Empty source directories are
// created on dst with CreateDir so they survive on object stores too. opts
// is passed to every write.
//
// Example:
//
//	//go:embed templates/*
//	var templatesFS embed.FS
//
//	mem := local.NewMemory()
//	err := core.CopyFromFS(ctx, templatesFS, mem, "templates", core.Options{})
func CopyFromFS(ctx context.Context, src fs.FS, dst Adapter, srcRoot string, opts Options) error {
	return fs.WalkDir(src, srcRoot, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		dstPath := filePath
		if srcRoot != "." && srcRoot != "" {
			dstPath = strings.TrimPrefix(filePath, srcRoot)
			dstPath = strings.TrimPrefix(dstPath, "/")
		}
		if dstPath == "" || dstPath == "." {
			return nil
		}

		if d.IsDir() {
			if !dst.CreateDir(ctx, dstPath, opts) {
				return errors.WithPath(errors.New(errors.CodeStorage, "directory could not be created"), "createDir", dstPath)
			}
			return nil
		}

		data, err := fs.ReadFile(src, filePath)
		if err != nil {
			return NewStorageError("read", filePath, err)
		}

		_, err = dst.Write(ctx, dstPath, data, opts)
		return err
	})
}
