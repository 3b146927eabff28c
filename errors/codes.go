package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Setup errors. These abort worker boot and are never retried.
const (
	// ErrCodeConfiguration indicates an application reference or config that cannot be used.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates a config value failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Dependency context errors
const (
	// ErrCodeNotFound indicates a capability or path has nothing registered for it.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTypeMismatch indicates a resolved value has an unexpected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Runtime errors
const (
	// ErrCodeServiceUnavailable indicates the application has not finished starting.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates a lifecycle phase ran out of time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
