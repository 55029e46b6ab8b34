package data

import (
	"errors"
	"fmt"
)

// Scope is a position in a hierarchical data source.
type Scope interface {
	// ReadText evaluates expression against the scope and returns its text.
	ReadText(expression string) (string, error)
	// Children resolves a collection-valued expression into one scope per item.
	// An empty collection yields a single default scope, never zero scopes.
	Children(expression string) ([]Scope, error)
}

// ErrMissingData marks an expression that selected nothing under MissingDataError.
var ErrMissingData = errors.New("no data found")

// ExpressionError represents a binding expression that could not be evaluated.
type ExpressionError struct {
	Expression string
	Cause      error
}

func (e *ExpressionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation error for expression '%s': %v", e.Expression, e.Cause)
	}
	return fmt.Sprintf("evaluation error for expression '%s'", e.Expression)
}

func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// NewExpressionError creates a new expression error
func NewExpressionError(expression string, cause error) error {
	return &ExpressionError{
		Expression: expression,
		Cause:      cause,
	}
}

// Empty is the default scope: every expression reads as empty text and no
// expression has children beyond one further default scope.
var Empty Scope = emptyScope{}

type emptyScope struct{}

func (emptyScope) ReadText(string) (string, error) {
	return "", nil
}

func (emptyScope) Children(string) ([]Scope, error) {
	return []Scope{Empty}, nil
}

// DefaultIfEmpty returns scopes, or a single Empty scope when there are none.
func DefaultIfEmpty(scopes []Scope) []Scope {
	if len(scopes) == 0 {
		return []Scope{Empty}
	}
	return scopes
}
