package s3

import (
	"context"
	stderrors "errors"

	"github.com/aws/smithy-go"

	"github.com/jmgilman/go/storage/errors"
)

// codes maps S3 API error codes onto storage error codes.
var codes = map[string]errors.ErrorCode{
	"NoSuchKey":                     errors.CodeNotFound,
	"NotFound":                      errors.CodeNotFound,
	"NoSuchBucket":                  errors.CodeNotFound,
	"AccessDenied":                  errors.CodeForbidden,
	"InvalidAccessKeyId":            errors.CodeUnauthorized,
	"SignatureDoesNotMatch":         errors.CodeUnauthorized,
	"ExpiredToken":                  errors.CodeUnauthorized,
	"SlowDown":                      errors.CodeRateLimit,
	"Throttling":                    errors.CodeRateLimit,
	"RequestTimeout":                errors.CodeTimeout,
	"ServiceUnavailable":            errors.CodeUnavailable,
	"InternalError":                 errors.CodeUnavailable,
	"InvalidObjectName":             errors.CodeInvalidInput,
	"KeyTooLongError":               errors.CodeInvalidInput,
	"AccessControlListNotSupported": errors.CodeNotImplemented,
	"NotImplemented":                errors.CodeNotImplemented,
}

// errorCode returns the API error code carried by err, if any.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// translate converts an SDK error into a storage error. Nil and errors
// that already are storage errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se errors.StorageError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, errors.CodeTimeout, "s3 request timed out")
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(err, errors.CodeStorage, "s3 request canceled")
	}

	code := errorCode(err)
	if mapped, ok := codes[code]; ok {
		return errors.Wrapf(err, mapped, "s3: %s", code)
	}
	return errors.Wrap(err, errors.CodeStorage, "s3 request failed")
}

// isNotFound reports whether err is a missing key error. HEAD responses
// carry no body, so a missing bucket looks the same there.
func isNotFound(err error) bool {
	switch errorCode(err) {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
