package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an error category independent of its message.
type ErrorCode string

const (
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Store errors
	ErrStoreUnavailable     ErrorCode = "STORE_UNAVAILABLE"
	ErrUnsupportedValueType ErrorCode = "UNSUPPORTED_VALUE_TYPE"
	ErrKeyNotFound          ErrorCode = "KEY_NOT_FOUND"
	ErrPermissionDenied     ErrorCode = "PERMISSION_DENIED"
	ErrStore                ErrorCode = "STORE_ERROR"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Backup errors
	ErrBackupWrite    ErrorCode = "BACKUP_WRITE"
	ErrBackupNotFound ErrorCode = "BACKUP_NOT_FOUND"
)

// WenvError carries a code, a message and optional details.
type WenvError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func (e *WenvError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *WenvError) Unwrap() error {
	return e.Wrapped
}

// Is matches any WenvError with the same code.
func (e *WenvError) Is(target error) bool {
	var targetErr *WenvError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

func New(code ErrorCode, message string) *WenvError {
	return &WenvError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func Newf(code ErrorCode, format string, args ...interface{}) *WenvError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *WenvError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WenvError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *WenvError) WithDetail(key string, value interface{}) *WenvError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode returns the code of the first WenvError in the chain, or ErrUnknown.
func GetCode(err error) ErrorCode {
	var we *WenvError
	if errors.As(err, &we) {
		return we.Code
	}
	return ErrUnknown
}

// IsErrorCode checks whether any error in the chain has the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	return errors.Is(err, &WenvError{Code: code})
}
