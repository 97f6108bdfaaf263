package errors

import (
	"fmt"
	"io/fs"
	"strings"
)

// StorageError extends the standard error interface with structured
// information about a failed storage operation.
type StorageError interface {
	error

	// Code returns the error code identifying the type of error.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable error message.
	Message() string

	// Op returns the contract operation that failed (e.g. "write").
	// Empty when the error was not raised by an operation.
	Op() string

	// Path returns the caller-facing path the operation was invoked with.
	Path() string

	// Context returns attached metadata as a read-only map.
	// Returns nil if no context has been attached.
	Context() map[string]interface{}

	// Unwrap returns the wrapped error for errors.Is and errors.As compatibility.
	Unwrap() error
}

// storageError is the concrete implementation of StorageError.
// It is private to enforce construction through package functions.
type storageError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	op             string
	path           string
	context        map[string]interface{}
	cause          error
}

// Error returns the string representation of the error.
// Format: "[CODE] op path: message: cause", omitting empty parts.
func (e *storageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.code)
	if e.op != "" {
		b.WriteString(e.op)
		if e.path != "" {
			b.WriteString(" ")
			b.WriteString(e.path)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.message)
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *storageError) Code() ErrorCode                     { return e.code }
func (e *storageError) Classification() ErrorClassification { return e.classification }
func (e *storageError) Message() string                     { return e.message }
func (e *storageError) Op() string                          { return e.op }
func (e *storageError) Path() string                        { return e.path }
func (e *storageError) Unwrap() error                       { return e.cause }

// Context returns a copy of the context map.
func (e *storageError) Context() map[string]interface{} {
	return copyContext(e.context)
}

// Is lets errors.Is match the io/fs sentinel that corresponds to the code.
func (e *storageError) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.code == CodeNotFound
	case fs.ErrExist:
		return e.code == CodeAlreadyExists
	case fs.ErrPermission:
		return e.code == CodeForbidden || e.code == CodeUnauthorized
	}
	return false
}

func (e *storageError) clone() *storageError {
	c := *e
	c.context = copyContext(e.context)
	return &c
}

func copyContext(ctx map[string]interface{}) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
