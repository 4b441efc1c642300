package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrParse signals a malformed field mapping.
	ErrParse = errors.New("invalid field mapping")
	// ErrPathConflict signals a dotted path colliding with an existing scalar or object.
	ErrPathConflict = errors.New("path conflict")
	// ErrTypeCoercion signals a value that cannot be coerced for a system field.
	ErrTypeCoercion = errors.New("type coercion failed")
	// ErrScriptEvaluation signals a failed script field.
	ErrScriptEvaluation = errors.New("script evaluation failed")
	// ErrUnknownLanguage signals a script language without a registered engine.
	ErrUnknownLanguage = errors.New("unknown script language")
	// ErrVersionConflict signals an external version that is not newer than the stored one.
	ErrVersionConflict = errors.New("version conflict")
	// ErrInvalidJob signals an export job that cannot run.
	ErrInvalidJob = errors.New("invalid export job")
)

// ParseError wraps ErrParse with the offending mapping fragment.
type ParseError struct {
	Fragment any
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (at %v)", ErrParse.Error(), e.Reason, e.Fragment)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NewParseError creates a parse error for a mapping fragment.
func NewParseError(fragment any, format string, args ...any) error {
	return &ParseError{Fragment: fragment, Reason: fmt.Sprintf(format, args...)}
}

// PathConflictError wraps ErrPathConflict with the colliding path.
type PathConflictError struct {
	Path string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("%s: mixed objects and values at %q", ErrPathConflict.Error(), e.Path)
}

func (e *PathConflictError) Unwrap() error { return ErrPathConflict }

// TypeCoercionError wraps ErrTypeCoercion with the system field and the rejected value.
type TypeCoercionError struct {
	Field string
	Want  string
	Value any
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("%s: %s requires %s, got %T(%v)", ErrTypeCoercion.Error(), e.Field, e.Want, e.Value, e.Value)
}

func (e *TypeCoercionError) Unwrap() error { return ErrTypeCoercion }

// ScriptEvaluationError carries a script failure from the driver into an output row.
type ScriptEvaluationError struct {
	Script string
	Err    error
}

func (e *ScriptEvaluationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrScriptEvaluation.Error(), e.Script, e.Err)
}

// Unwrap exposes both the sentinel and the engine error.
func (e *ScriptEvaluationError) Unwrap() []error { return []error{ErrScriptEvaluation, e.Err} }
