package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Module loading errors
	ErrCodeModuleNotFound   ErrorCode = "MODULE_NOT_FOUND"
	ErrCodeNoExecutor       ErrorCode = "NO_EXECUTOR"
	ErrCodeModuleLoadFailed ErrorCode = "MODULE_LOAD_FAILED"

	// Model lookup and export errors
	ErrCodeModelNotFound      ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeModelNotExportable ErrorCode = "MODEL_NOT_EXPORTABLE"
	ErrCodeSchemaExport       ErrorCode = "SCHEMA_EXPORT_FAILED"

	// Output errors
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// Input validation errors
	ErrCodeInputInvalid     ErrorCode = "INPUT_INVALID"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Scaffold errors
	ErrCodeScaffoldInvalid   ErrorCode = "SCAFFOLD_INVALID"
	ErrCodeOutputExists      ErrorCode = "OUTPUT_EXISTS"
	ErrCodeOutputWriteFailed ErrorCode = "OUTPUT_WRITE_FAILED"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Command execution errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// CydanticError represents a structured error with context
type CydanticError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *CydanticError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CydanticError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *CydanticError) WithDetail(key string, value interface{}) *CydanticError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *CydanticError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new CydanticError
func New(code ErrorCode, message string) *CydanticError {
	return &CydanticError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a CydanticError
func Wrap(err error, code ErrorCode, message string) *CydanticError {
	return &CydanticError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the outermost CydanticError in err's chain.
func As(err error) (*CydanticError, bool) {
	for err != nil {
		if ce, ok := err.(*CydanticError); ok {
			return ce, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if any CydanticError in err's chain carries code
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if ce, ok := err.(*CydanticError); ok && ce.Code == code {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	ce, ok := As(err)
	if !ok {
		return ""
	}
	return ce.Code
}

// IsLoadError reports whether err means the schema module could not be loaded.
func IsLoadError(err error) bool {
	switch GetCode(err) {
	case ErrCodeModuleNotFound, ErrCodeNoExecutor, ErrCodeModuleLoadFailed,
		ErrCodeCommandFailed, ErrCodeCommandNotFound:
		return true
	}
	return false
}

// IsLookupError reports whether err means the named model could not be used.
func IsLookupError(err error) bool {
	switch GetCode(err) {
	case ErrCodeModelNotFound, ErrCodeModelNotExportable:
		return true
	}
	return false
}
