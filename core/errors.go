package core

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/jmgilman/go/storage/errors"
)

var (
	// ErrNotExist is returned when a file or directory does not exist.
	// Re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is returned when a file or directory already exists.
	// Re-exported from io/fs for convenience.
	ErrExist = fs.ErrExist

	// ErrPermission is returned when permission is denied.
	// Re-exported from io/fs for convenience.
	ErrPermission = fs.ErrPermission

	// ErrUnsupported is returned when a medium cannot perform an operation.
	ErrUnsupported = stderrors.New("operation not supported")
)

// NewStorageError converts a medium fault into a StorageError tagged with op
// and path. Errors that already are StorageErrors keep their code; stdlib
// sentinels map onto the matching code; anything else becomes STORAGE_ERROR.
func NewStorageError(op, path string, err error) errors.StorageError {
	if err == nil {
		return nil
	}

	var se errors.StorageError
	if errors.As(err, &se) {
		return errors.WithPath(se, op, path)
	}

	code := codeFor(err)
	return errors.WithPath(errors.Wrap(err, code, op+" failed"), op, path)
}

func codeFor(err error) errors.ErrorCode {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.CodeNotFound
	case stderrors.Is(err, fs.ErrExist):
		return errors.CodeAlreadyExists
	case stderrors.Is(err, fs.ErrPermission):
		return errors.CodeForbidden
	case stderrors.Is(err, fs.ErrInvalid):
		return errors.CodeInvalidInput
	case stderrors.Is(err, ErrUnsupported):
		return errors.CodeNotImplemented
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.CodeTimeout
	default:
		return errors.CodeStorage
	}
}
