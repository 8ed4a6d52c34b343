// Package faults defines the error taxonomy shared by the resolution
// pipeline: configuration errors, parse errors, and evaluation errors.
// It exists as a leaf package so that vars, expr, artifact, and graph can
// classify failures without importing one another.
package faults

import (
	"errors"
	"fmt"
)

// Kind labels the failure class of an instance-level error.
type Kind string

const (
	// KindConfig marks defects in the test definition itself: bad names,
	// cycles, unknown kinds, malformed bounds.
	KindConfig Kind = "config"

	// KindParse marks malformed {{...}} template expressions.
	KindParse Kind = "parse"

	// KindEval marks failures while querying materialized artifacts:
	// unknown TARGET_FILE names, type-mismatched aggregates, missing paths.
	KindEval Kind = "eval"

	// KindAgent marks failures in the system under test, not in resolution.
	KindAgent Kind = "agent"
)

// ConfigError reports a defect in a test definition. Subject names the
// offending reference, component, or field.
type ConfigError struct {
	Subject string
	Msg     string
}

func (e *ConfigError) Error() string {
	if e.Subject == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Msg)
}

// Configf builds a ConfigError for subject.
func Configf(subject, format string, args ...any) *ConfigError {
	return &ConfigError{Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports a malformed template expression. Span holds the
// offending text and Offset its byte position in the source string.
type ParseError struct {
	Span   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Span == "" {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d near %q: %s", e.Offset, e.Span, e.Msg)
}

// Parsef builds a ParseError for the given span and offset.
func Parsef(span string, offset int, format string, args ...any) *ParseError {
	return &ParseError{Span: span, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// EvalError reports a failure while evaluating a template function against
// a materialized artifact. Expr holds the function expression, Subject the
// component name, path, or column involved.
type EvalError struct {
	Expr    string
	Subject string
	Msg     string
}

func (e *EvalError) Error() string {
	switch {
	case e.Expr != "" && e.Subject != "":
		return fmt.Sprintf("%s: %s: %s", e.Expr, e.Subject, e.Msg)
	case e.Expr != "":
		return fmt.Sprintf("%s: %s", e.Expr, e.Msg)
	case e.Subject != "":
		return fmt.Sprintf("%s: %s", e.Subject, e.Msg)
	default:
		return e.Msg
	}
}

// Evalf builds an EvalError for the given expression and subject.
func Evalf(expr, subject, format string, args ...any) *EvalError {
	return &EvalError{Expr: expr, Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

// Fielded attaches the originating definition field (question, scoring,
// a component name) to an error so failure records can point at it.
type Fielded struct {
	Field string
	Err   error
}

func (e *Fielded) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *Fielded) Unwrap() error { return e.Err }

// InField wraps err with the originating field. Returns nil for a nil err.
func InField(field string, err error) error {
	if err == nil {
		return nil
	}
	return &Fielded{Field: field, Err: err}
}

// ClassifyKind walks the error chain and returns the taxonomy kind.
// Unclassified errors report as config errors: they stem from the
// definition or environment, never from the system under test.
func ClassifyKind(err error) Kind {
	var (
		ce *ConfigError
		pe *ParseError
		ee *EvalError
	)
	switch {
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ee):
		return KindEval
	case errors.As(err, &ce):
		return KindConfig
	default:
		return KindConfig
	}
}

// Record is the structured failure surfaced for one aborted test instance.
// A batch run collects records instead of aborting sibling instances.
type Record struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
}

// RecordOf folds an error chain into a Record, pulling the field from the
// outermost Fielded wrapper if one is present.
func RecordOf(err error) Record {
	rec := Record{Kind: ClassifyKind(err), Message: err.Error()}
	var fe *Fielded
	if errors.As(err, &fe) {
		rec.Field = fe.Field
		rec.Message = fe.Err.Error()
	}
	return rec
}
