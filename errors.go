package envschema

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for validation failures.
const (
	ErrCodeMissingRequired = "missing_required"
	ErrCodeInvalidType     = "invalid_type"
	ErrCodeInvalidEnum     = "invalid_enum"
	ErrCodeInvalidPattern  = "invalid_pattern"
	ErrCodeInvalidRegex    = "invalid_regex"
	ErrCodeExtraField      = "extra_field"
)

// ErrUnknownFieldType is returned when a schema field declares an unsupported "type".
var ErrUnknownFieldType = errors.New("envschema: unknown field type")

// FieldError is a single validation failure. Implementations are
// MissingRequiredError, InvalidTypeError, InvalidEnumError,
// InvalidPatternError, InvalidRegexPatternError and ExtraFieldError.
type FieldError interface {
	error
	FieldName() string
	Code() string
}

// MissingRequiredError reports a required field that is absent and has no default.
type MissingRequiredError struct {
	Name string
}

func (e MissingRequiredError) Error() string {
	return "missing required field: " + e.Name
}

// InvalidTypeError reports a value that cannot be read as the field's kind.
type InvalidTypeError struct {
	Name     string
	Expected Kind
	Got      string
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid type for %s: expected %s, got %s", e.Name, e.Expected, e.Got)
}

// InvalidEnumError reports a value outside an enum's allowed values.
type InvalidEnumError struct {
	Name    string
	Allowed []string
	Got     string
}

func (e InvalidEnumError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, v := range e.Allowed {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("invalid enum value for %s: expected one of [%s], got %s",
		e.Name, strings.Join(quoted, ", "), e.Got)
}

// InvalidPatternError reports a string value that does not match its pattern.
type InvalidPatternError struct {
	Name    string
	Pattern string
}

func (e InvalidPatternError) Error() string {
	return fmt.Sprintf("value for %s does not match pattern: %s", e.Name, e.Pattern)
}

// InvalidRegexPatternError reports a schema pattern that does not compile.
type InvalidRegexPatternError struct {
	Name   string
	Reason string // Compiler message
}

func (e InvalidRegexPatternError) Error() string {
	return fmt.Sprintf("invalid regex pattern for %s: %s", e.Name, e.Reason)
}

// ExtraFieldError reports an entry with no schema field. Strict mode only.
type ExtraFieldError struct {
	Name string
}

func (e ExtraFieldError) Error() string {
	return "extra field not in schema: " + e.Name
}

func (e MissingRequiredError) FieldName() string     { return e.Name }
func (e InvalidTypeError) FieldName() string         { return e.Name }
func (e InvalidEnumError) FieldName() string         { return e.Name }
func (e InvalidPatternError) FieldName() string      { return e.Name }
func (e InvalidRegexPatternError) FieldName() string { return e.Name }
func (e ExtraFieldError) FieldName() string          { return e.Name }

func (MissingRequiredError) Code() string     { return ErrCodeMissingRequired }
func (InvalidTypeError) Code() string         { return ErrCodeInvalidType }
func (InvalidEnumError) Code() string         { return ErrCodeInvalidEnum }
func (InvalidPatternError) Code() string      { return ErrCodeInvalidPattern }
func (InvalidRegexPatternError) Code() string { return ErrCodeInvalidRegex }
func (ExtraFieldError) Code() string          { return ErrCodeExtraField }

// ValidationError aggregates field-level validation failures.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "env validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("env validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "env validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.FieldName(), fe.Code(), fe.Error())
	}

	return strings.TrimRight(b.String(), "\n")
}

// SchemaError reports a schema field that could not be decoded.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema field %q: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
