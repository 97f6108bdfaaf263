package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Returns CodeUnknown if the error is nil or not a StorageError.
//
// Example:
//
//	if errors.GetCode(err) == errors.CodeForbidden {
//	    // Handle permission problem
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var storageErr StorageError
	if stderrors.As(err, &storageErr) {
		return storageErr.Code()
	}

	return CodeUnknown
}

// GetClassification extracts the ErrorClassification from an error.
// Returns ClassificationPermanent if the error is nil or not a StorageError.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var storageErr StorageError
	if stderrors.As(err, &storageErr) {
		return storageErr.Classification()
	}

	return ClassificationPermanent
}

// IsRetryable returns true if the error is classified as retryable.
// Returns false if the error is nil or not a StorageError.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}

// IsNotFound returns true if err carries CodeNotFound.
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}
