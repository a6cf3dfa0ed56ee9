package domain

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeStagingError      = "STAGING_ERROR"
	ErrCodeGenerationError   = "GENERATION_ERROR"
	ErrCodeUnclassified      = "UNCLASSIFIED_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeValidationError   = "VALIDATION_ERROR"
)

// DomainError represents a classified error raised by a report build component
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates a parse error naming the offending source document
func NewParseError(source string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse result file: %s", source), cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewStagingError creates an asset staging error
func NewStagingError(bundle string, cause error) error {
	return NewDomainError(ErrCodeStagingError, fmt.Sprintf("failed to stage asset bundle: %s", bundle), cause)
}

// NewGenerationError creates a page generation error
func NewGenerationError(page string, cause error) error {
	return NewDomainError(ErrCodeGenerationError, fmt.Sprintf("failed to generate page: %s", page), cause)
}

// NewUnclassifiedError wraps a failure that escaped every other classification
func NewUnclassifiedError(message string, cause error) error {
	return NewDomainError(ErrCodeUnclassified, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeValidationError, message, nil)
}

// ErrorCode returns the code of the first DomainError in err's chain,
// or ErrCodeUnclassified when there is none.
func ErrorCode(err error) string {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeUnclassified
}

// CauseChain returns the messages of err and every error it wraps, outermost first.
func CauseChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// PanicError carries a recovered panic value and the stack it was raised on
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StackTrace returns the captured stack
func (e *PanicError) StackTrace() string {
	return string(e.Stack)
}
