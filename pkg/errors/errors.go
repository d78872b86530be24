// Package errors defines the typed error-kind vocabulary surfaced by the
// review engine across spec loading, navigation, comparison and
// artifact I/O.
package errors

import (
	"errors"
	"fmt"
)

// Kind identifies a category of failure the engine can report.
type Kind string

const (
	SpecNotFound         Kind = "SpecNotFound"
	SpecParseError       Kind = "SpecParseError"
	SpecCycle            Kind = "SpecCycle"
	SpecInvalidSeverity  Kind = "SpecInvalidSeverity"
	NavigationError      Kind = "NavigationError"
	NavigationTimeout    Kind = "NavigationTimeout"
	ReferenceNotFound    Kind = "ReferenceNotFound"
	ReferenceUnreadable  Kind = "ReferenceUnreadable"
	AnnotationError      Kind = "AnnotationError"
	EvaluatorError       Kind = "EvaluatorError"
	ArtifactWriteError   Kind = "ArtifactWriteError"
	A11yScanFailed       Kind = "A11yScanFailed"
	BudgetExceeded       Kind = "BudgetExceeded"
)

// ReviewError is the concrete error type carrying a Kind plus an
// optional wrapped cause. cmd/ renders Kind+Message as the machine
// or human-readable surface described by the error handling design.
type ReviewError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ReviewError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ReviewError) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, errors.New(SomeKind)) style comparisons by
// matching on Kind rather than pointer identity.
func (e *ReviewError) Is(target error) bool {
	var other *ReviewError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs a ReviewError with no wrapped cause.
func New(kind Kind, message string) *ReviewError {
	return &ReviewError{Kind: kind, Message: message}
}

// Wrap constructs a ReviewError wrapping an underlying cause.
func Wrap(kind Kind, message string, cause error) *ReviewError {
	return &ReviewError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) a *ReviewError,
// returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var re *ReviewError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}
