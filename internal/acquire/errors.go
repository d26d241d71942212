package acquire

import (
	"errors"
	"fmt"
)

// AcquireError represents a domain-specific acquisition error
type AcquireError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AcquireError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AcquireError) Unwrap() error {
	return e.Cause
}

// Error codes. Setup failures are fatal for this device instance: the
// caller must Release() and recover elsewhere, there is no retry policy.
const (
	ErrCodeNoDevicesPresent        = "NO_DEVICES_PRESENT"
	ErrCodeDeviceNotFound          = "DEVICE_NOT_FOUND"
	ErrCodeUnsupportedFormat       = "UNSUPPORTED_FORMAT"
	ErrCodeConfigurationRejected   = "CONFIGURATION_REJECTED"
	ErrCodeAllocationFailed        = "ALLOCATION_FAILED"
	ErrCodeMappingFailed           = "MAPPING_FAILED"
	ErrCodeRequestBuildFailed      = "REQUEST_BUILD_FAILED"
	ErrCodeUnsupportedBufferLayout = "UNSUPPORTED_BUFFER_LAYOUT"
)

// NewAcquireError creates a new acquisition error
func NewAcquireError(code, message string, cause error) *AcquireError {
	return &AcquireError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the error code of err if it is (or wraps) an
// AcquireError, and "" otherwise.
func CodeOf(err error) string {
	var ae *AcquireError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
