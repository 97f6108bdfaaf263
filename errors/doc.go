// Package errors provides the structured error type returned across the
// storage adapter boundary.
//
// Adapters never leak the native error types of their storage medium (MinIO
// responses, AWS API errors, *fs.PathError). Every medium fault is translated
// into a StorageError that carries an error code, a retry classification, the
// operation and path that failed, and optional context metadata. The wrapped
// cause stays reachable through Unwrap for debugging.
//
// # Quick Start
//
// Creating errors:
//
//	err := errors.New(errors.CodeNotFound, "file not found")
//	err := errors.Newf(errors.CodeInvalidInput, "invalid visibility %q", v)
//
// Wrapping a medium fault:
//
//	if _, err := client.PutObject(ctx, bucket, key, r, size, opts); err != nil {
//	    return errors.WithPath(errors.Wrap(err, errors.CodeStorage, "put object failed"), "write", path)
//	}
//
// # Standard Library Compatibility
//
// StorageError works with errors.Is, errors.As and errors.Unwrap. In addition,
// a StorageError reports itself as matching the io/fs sentinels for the
// corresponding codes, so callers can keep writing:
//
//	if errors.Is(err, fs.ErrNotExist) {
//	    // handle missing file
//	}
//
// # Error Classification
//
// Each code has a default classification (retryable or permanent). This
// package never retries anything itself; the classification is exposed so
// that callers can decide.
package errors
