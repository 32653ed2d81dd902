// Package errors provides the error taxonomy for reach record assembly.
// Callers check failure kinds with errors.Is against the sentinel values
// or with the Is* helpers; the typed errors carry the path, field or reach
// that caused the failure.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for the reconciliation layer
var (
	// ErrSourceNotFound indicates that a required file or path is absent
	ErrSourceNotFound = errors.New("source not found")

	// ErrSchemaMismatch indicates that an expected group, field or shape is
	// absent from an otherwise present file
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrReachNotFound indicates that a reach identifier is absent from an index
	ErrReachNotFound = errors.New("reach not found")

	// ErrAmbiguousMatch indicates that a pattern-based lookup yielded zero or
	// several candidates
	ErrAmbiguousMatch = errors.New("ambiguous or missing match")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates that a computation is not yet implemented
	ErrNotImplemented = errors.New("not implemented")
)

// SourceNotFoundError reports a required file that does not exist.
type SourceNotFoundError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %s not found", e.Path)
}

// Unwrap implements errors.Unwrap
func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceNotFoundError) Is(target error) bool {
	return target == ErrSourceNotFound
}

// NewSourceNotFoundError creates a new SourceNotFoundError
func NewSourceNotFoundError(path string, err error) *SourceNotFoundError {
	return &SourceNotFoundError{Path: path, Err: err}
}

// SchemaMismatchError reports a group, field or shape that does not match
// what the reader expects.
type SchemaMismatchError struct {
	Path    string // file the field was read from
	Field   string // slash-separated group/field path inside the file
	Message string
}

// Error implements the error interface
func (e *SchemaMismatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema mismatch in %s at %s: %s", e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("schema mismatch at %s: %s", e.Field, e.Message)
}

// Is implements errors.Is support
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// NewSchemaMismatchError creates a new SchemaMismatchError
func NewSchemaMismatchError(path, field, message string) *SchemaMismatchError {
	return &SchemaMismatchError{Path: path, Field: field, Message: message}
}

// ReachNotFoundError reports a reach identifier missing from an index array.
type ReachNotFoundError struct {
	Source  string
	ReachID int64
}

// Error implements the error interface
func (e *ReachNotFoundError) Error() string {
	return fmt.Sprintf("reach %d not found in %s", e.ReachID, e.Source)
}

// Is implements errors.Is support
func (e *ReachNotFoundError) Is(target error) bool {
	return target == ErrReachNotFound
}

// NewReachNotFoundError creates a new ReachNotFoundError
func NewReachNotFoundError(source string, reachID int64) *ReachNotFoundError {
	return &ReachNotFoundError{Source: source, ReachID: reachID}
}

// AmbiguousMatchError reports a pattern lookup that did not resolve to
// exactly one candidate.
type AmbiguousMatchError struct {
	Pattern string
	ReachID int64
	Matches []string
}

// Error implements the error interface
func (e *AmbiguousMatchError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no match for reach %d (pattern %s)", e.ReachID, e.Pattern)
	}
	return fmt.Sprintf("%d matches for reach %d (pattern %s): %s",
		len(e.Matches), e.ReachID, e.Pattern, strings.Join(e.Matches, ", "))
}

// Is implements errors.Is support
func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}

// NewAmbiguousMatchError creates a new AmbiguousMatchError
func NewAmbiguousMatchError(pattern string, reachID int64, matches []string) *AmbiguousMatchError {
	return &AmbiguousMatchError{Pattern: pattern, ReachID: reachID, Matches: matches}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "open", "read", "scan", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsSourceNotFound checks if an error is a missing-source error
func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}

// IsSchemaMismatch checks if an error is a schema mismatch
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsReachNotFound checks if an error is a missing-reach error
func IsReachNotFound(err error) bool {
	return errors.Is(err, ErrReachNotFound)
}

// IsAmbiguousMatch checks if an error is an ambiguous or missing match
func IsAmbiguousMatch(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
