package errors

import (
	"errors"
	"fmt"
)

// New creates a new StorageError with the given code and message.
// The classification is determined by the error code using default mappings.
//
// Example:
//
//	err := errors.New(errors.CodeNotFound, "file not found")
func New(code ErrorCode, message string) StorageError {
	return &storageError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a new StorageError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) StorageError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with a code and message while preserving the original
// error. If the wrapped error is a StorageError, its classification, operation
// and path are preserved.
//
// Returns nil if err is nil.
//
// Example:
//
//	if err := f.Close(); err != nil {
//	    return errors.Wrap(err, errors.CodeStorage, "failed to flush file")
//	}
func Wrap(err error, code ErrorCode, message string) StorageError {
	if err == nil {
		return nil
	}

	wrapped := &storageError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
		cause:          err,
	}

	var storageErr StorageError
	if errors.As(err, &storageErr) {
		wrapped.classification = storageErr.Classification()
		wrapped.op = storageErr.Op()
		wrapped.path = storageErr.Path()
	}

	return wrapped
}

// Wrapf wraps an error with a formatted message.
//
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) StorageError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}
