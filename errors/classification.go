package errors

// ErrorClassification tells a caller whether repeating the failed
// operation can succeed. Adapters never retry on their own.
type ErrorClassification string

const (
	// ClassificationRetryable marks faults of the medium or the path to it
	// that are expected to clear: timeouts, throttling, an endpoint that is
	// briefly down.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks failures that repeat until the request
	// or the stored data changes.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable reports whether c is ClassificationRetryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// getDefaultClassification classifies code. Codes unknown to this package
// are permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	switch code {
	case CodeTimeout, CodeNetwork, CodeRateLimit, CodeUnavailable:
		return ClassificationRetryable
	default:
		return ClassificationPermanent
	}
}
