package errors

import "errors"

// asStorageError returns err as a *storageError, converting foreign errors to
// CodeUnknown so that decoration helpers work on any error.
func asStorageError(err error) *storageError {
	var storageErr StorageError
	if !errors.As(err, &storageErr) {
		return &storageError{
			code:           CodeUnknown,
			classification: ClassificationPermanent,
			message:        err.Error(),
			cause:          err,
		}
	}

	if concrete, ok := storageErr.(*storageError); ok {
		return concrete.clone()
	}

	return &storageError{
		code:           storageErr.Code(),
		classification: storageErr.Classification(),
		message:        storageErr.Message(),
		op:             storageErr.Op(),
		path:           storageErr.Path(),
		context:        storageErr.Context(),
		cause:          storageErr.Unwrap(),
	}
}

// WithPath records the operation and caller-facing path on an error.
// Returns a new StorageError; the original is left untouched.
//
// If err is not a StorageError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WithPath(err, "read", path)
func WithPath(err error, op, path string) StorageError {
	if err == nil {
		return nil
	}
	e := asStorageError(err)
	e.op = op
	e.path = path
	return e
}

// WithContext adds a single context field to an error.
// Existing context fields are preserved.
//
// If err is not a StorageError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "bucket", bucket)
func WithContext(err error, key string, value interface{}) StorageError {
	if err == nil {
		return nil
	}
	e := asStorageError(err)
	if e.context == nil {
		e.context = make(map[string]interface{}, 1)
	}
	e.context[key] = value
	return e
}

// WithClassification overrides the classification of an error.
//
// If err is not a StorageError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) StorageError {
	if err == nil {
		return nil
	}
	e := asStorageError(err)
	e.classification = classification
	return e
}
