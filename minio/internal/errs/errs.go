// Package errs translates MinIO errors into storage errors.
package errs

import (
	"context"
	stderrors "errors"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/storage/errors"
)

// codes maps S3 error codes onto storage error codes.
var codes = map[string]errors.ErrorCode{
	"NoSuchKey":             errors.CodeNotFound,
	"NoSuchBucket":          errors.CodeNotFound,
	"NotFound":              errors.CodeNotFound,
	"AccessDenied":          errors.CodeForbidden,
	"InvalidAccessKeyId":    errors.CodeUnauthorized,
	"SignatureDoesNotMatch": errors.CodeUnauthorized,
	"SlowDown":              errors.CodeRateLimit,
	"RequestTimeout":        errors.CodeTimeout,
	"ServiceUnavailable":    errors.CodeUnavailable,
	"InternalError":         errors.CodeUnavailable,
	"InvalidObjectName":     errors.CodeInvalidInput,
	"KeyTooLongError":       errors.CodeInvalidInput,
	"NotImplemented":        errors.CodeNotImplemented,
}

// Translate converts a MinIO error into a storage error. Nil stays nil.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, errors.CodeTimeout, "minio request timed out")
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(err, errors.CodeStorage, "minio request canceled")
	}

	resp := minio.ToErrorResponse(err)
	if code, ok := codes[resp.Code]; ok {
		return errors.Wrapf(err, code, "minio: %s", resp.Code)
	}

	return errors.Wrap(err, errors.CodeStorage, "minio request failed")
}

// IsNotFound reports whether err is a MinIO missing key error. A missing
// bucket is a misconfiguration and does not count.
func IsNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
