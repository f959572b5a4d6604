package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid requirements")
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrInvalidBuild indicates a build record is malformed.
	ErrInvalidBuild = errors.New("invalid build")
	// ErrInvalidSelector indicates a selector does not name a lookup namespace.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrSealed indicates a registration after the catalog was sealed.
	ErrSealed = errors.New("catalog is sealed")
)

// ValidationError reports a requirement value outside its enumeration, or a
// min/max belt speed ordering violation.
type ValidationError struct {
	Field  string
	Value  int
	Valid  []int
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	return e.Reason
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Index names used by NotFoundError.
const (
	IndexCategory  = "category"
	IndexName      = "name"
	IndexShape     = "shape"
	IndexTier      = "tier"
	IndexBlueprint = "blueprint"
)

// NotFoundError reports a lookup key that was never registered.
type NotFoundError struct {
	Index       string
	Key         string
	Suggestions []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	msg := fmt.Sprintf("%s %q not found", e.Index, e.Key)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(quoteAll(e.Suggestions), " or ") + "?"
	}
	return msg
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

func invalidBuild(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBuild, fmt.Sprintf(format, args...))
}
