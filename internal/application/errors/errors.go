// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
	"strings"
)

// ValidationError indicates an invalid combination of request options.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%s)", e.Field, e.Message, strings.Join(e.Details, "; "))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// StructureLoadError indicates a structure reference could not be read or parsed.
type StructureLoadError struct {
	Cause  error
	Source string
}

func (e *StructureLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load structure %s: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("failed to load structure %s", e.Source)
}

func (e *StructureLoadError) Unwrap() error {
	return e.Cause
}

// NewStructureLoadError creates a new structure load error.
func NewStructureLoadError(source string, cause error) *StructureLoadError {
	return &StructureLoadError{
		Source: source,
		Cause:  cause,
	}
}

// UnsupportedFormatError indicates a format name or file extension outside csv, json, parquet.
type UnsupportedFormatError struct {
	Format string
	Path   string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("unsupported format %q for %s (supported: csv, json, parquet)", e.Format, e.Path)
	}
	return fmt.Sprintf("unsupported format %q (supported: csv, json, parquet)", e.Format)
}

// NewUnsupportedFormatError creates a new unsupported format error.
func NewUnsupportedFormatError(format, path string) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		Format: format,
		Path:   path,
	}
}

// SchemaError indicates a stored profile file whose shape does not match its format.
type SchemaError struct {
	Cause   error
	Format  string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s profile data: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s profile data: %s", e.Format, e.Message)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// NewSchemaError creates a new schema error.
func NewSchemaError(format, message string, cause error) *SchemaError {
	return &SchemaError{
		Format:  format,
		Message: message,
		Cause:   cause,
	}
}

// ExecutionError indicates processing one composition failed.
type ExecutionError struct {
	Cause       error
	Composition string
	Message     string
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("composition (%s): %s: %v", e.Composition, e.Message, e.Cause)
	}
	return fmt.Sprintf("composition (%s): %s", e.Composition, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates a new execution error.
func NewExecutionError(composition, message string, cause error) *ExecutionError {
	return &ExecutionError{
		Composition: composition,
		Message:     message,
		Cause:       cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
