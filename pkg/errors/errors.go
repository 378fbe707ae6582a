// Package errors provides structured error types for bookplot.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_*: Missing resources and failed computations
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid alpha: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "failed to read %s", path)
//
// Errors returned by the core packages are plain sentinels; [Classify] assigns
// them a code at the CLI and API boundary.
package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	"github.com/matzehuels/bookplot/pkg/core/ternary"
	pkgio "github.com/matzehuels/bookplot/pkg/io"
	"github.com/matzehuels/bookplot/pkg/pgn"
	"github.com/matzehuels/bookplot/pkg/render"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSamples Code = "INVALID_SAMPLES"
	ErrCodeInvalidAlpha   Code = "INVALID_ALPHA"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Resource and computation errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNotConverged Code = "NOT_CONVERGED"
	ErrCodeParse        Code = "PARSE_FAILED"
	ErrCodeTimeout      Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil && !strings.Contains(e.Message, e.Cause.Error()) {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// sentinelCodes maps errors of the core packages to codes, first match wins.
var sentinelCodes = []struct {
	err  error
	code Code
}{
	{dirichlet.ErrNotConverged, ErrCodeNotConverged},
	{dirichlet.ErrNoSamples, ErrCodeInvalidSamples},
	{dirichlet.ErrNegativeCount, ErrCodeInvalidSamples},
	{dirichlet.ErrDegenerateSamples, ErrCodeInvalidSamples},
	{dirichlet.ErrInvalidAlpha, ErrCodeInvalidAlpha},
	{dirichlet.ErrNegativeCoordinate, ErrCodeInvalidInput},
	{dirichlet.ErrOutsideSimplex, ErrCodeInvalidInput},
	{ternary.ErrNegativeResolution, ErrCodeInvalidInput},
	{pgn.ErrMalformedTag, ErrCodeParse},
	{opening.ErrMissingFEN, ErrCodeParse},
	{opening.ErrDuplicateFEN, ErrCodeParse},
	{opening.ErrBadTermination, ErrCodeParse},
	{pkgio.ErrInvalidCSV, ErrCodeInvalidSamples},
	{render.ErrUnsupportedFormat, ErrCodeInvalidFormat},
	{render.ErrConverterMissing, ErrCodeUnsupported},
	{fs.ErrNotExist, ErrCodeNotFound},
	{context.DeadlineExceeded, ErrCodeTimeout},
}

// Classify returns err as an *Error. Errors that already carry a code are
// returned unchanged; known sentinels are wrapped with their code; anything
// else becomes ErrCodeInternal. Classify(nil) is nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return &Error{Code: s.code, Message: err.Error(), Cause: err}
		}
	}
	return &Error{Code: ErrCodeInternal, Message: err.Error(), Cause: err}
}
