package docxtemplate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
)

// MalformedTemplateError reports a directive whose markers are missing, empty,
// unterminated or out of place. It is always raised while parsing, before the
// document is touched.
type MalformedTemplateError struct {
	Tag     string
	Message string
}

func (e *MalformedTemplateError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("malformed template: %s: %s", e.Tag, e.Message)
	}
	return fmt.Sprintf("malformed template: %s", e.Message)
}

// NewMalformedTemplateError creates a new malformed template error
func NewMalformedTemplateError(tag, message string) error {
	return &MalformedTemplateError{
		Tag:     tag,
		Message: message,
	}
}

func tagNotFoundOrEmpty(tag string) error {
	return NewMalformedTemplateError(tag, "tag not found or empty")
}

// ExpressionError represents an error during expression evaluation
type ExpressionError = data.ExpressionError

// ContractViolation reports a processor executed without its tag or data
// binding. It is a programming error: processors panic with it and
// Engine.Execute turns the panic back into an error.
type ContractViolation struct {
	Processor string
	Missing   string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("processor contract violation: %s processor executed without %s", e.Processor, e.Missing)
}

// mustBeConfigured panics with a ContractViolation when ok is false.
func mustBeConfigured(ok bool, processor, missing string) {
	if !ok {
		panic(&ContractViolation{Processor: processor, Missing: missing})
	}
}

// DocumentError represents an error during document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	var contextParts []string
	for k, v := range e.Context {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(contextParts)

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// recoverContractViolation converts a recovered ContractViolation into an
// error. Any other panic value is re-raised.
func recoverContractViolation(r interface{}) error {
	if cv, ok := r.(*ContractViolation); ok {
		return cv
	}
	panic(r)
}

// IsMalformedTemplate checks if an error is or wraps a malformed template error
func IsMalformedTemplate(err error) bool {
	var target *MalformedTemplateError
	return errors.As(err, &target)
}

// IsExpressionError checks if an error is or wraps an expression error
func IsExpressionError(err error) bool {
	var target *ExpressionError
	return errors.As(err, &target)
}

// IsContractViolation checks if an error is or wraps a processor contract violation
func IsContractViolation(err error) bool {
	var target *ContractViolation
	return errors.As(err, &target)
}

// IsDocumentError checks if an error is or wraps a document error
func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}
