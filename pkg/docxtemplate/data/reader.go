package data

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// MissingDataMode selects what happens when an expression selects no node.
type MissingDataMode int

const (
	// MissingDataEmpty substitutes empty text.
	MissingDataEmpty MissingDataMode = iota
	// MissingDataError fails with an ExpressionError wrapping ErrMissingData.
	MissingDataError
)

func (m MissingDataMode) String() string {
	switch m {
	case MissingDataEmpty:
		return "empty"
	case MissingDataError:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures a Reader.
type Option func(*Reader)

// WithMissingDataMode sets the missing-data policy.
func WithMissingDataMode(mode MissingDataMode) Option {
	return func(r *Reader) {
		r.mode = mode
	}
}

// Reader evaluates XPath bindings against one node of an XML data document.
type Reader struct {
	node *xmlquery.Node
	mode MissingDataMode
}

// Parse reads an XML data document and returns a reader scoped to its root.
func Parse(r io.Reader, opts ...Option) (*Reader, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data document: %w", err)
	}
	return NewReader(root, opts...), nil
}

// NewReader returns a reader scoped to node.
func NewReader(node *xmlquery.Node, opts ...Option) *Reader {
	r := &Reader{node: node}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Node returns the node the reader is scoped to.
func (r *Reader) Node() *xmlquery.Node {
	return r.node
}

// Mode returns the missing-data policy.
func (r *Reader) Mode() MissingDataMode {
	return r.mode
}

// ReadText evaluates expression. Node-set results yield the text of the first
// node; booleans and numbers are rendered in their XPath string form.
func (r *Reader) ReadText(expression string) (string, error) {
	expr, err := xpath.Compile(expression)
	if err != nil {
		return "", NewExpressionError(expression, err)
	}

	switch v := expr.Evaluate(xmlquery.CreateXPathNavigator(r.node)).(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return formatNumber(v), nil
	case string:
		return v, nil
	case *xpath.NodeIterator:
		if v.MoveNext() {
			return v.Current().Value(), nil
		}
		return r.missing(expression)
	default:
		return "", NewExpressionError(expression, fmt.Errorf("unsupported result type %T", v))
	}
}

// Children selects the nodes matched by expression and scopes a reader to each.
func (r *Reader) Children(expression string) ([]Scope, error) {
	nodes, err := xmlquery.QueryAll(r.node, expression)
	if err != nil {
		return nil, NewExpressionError(expression, err)
	}
	scopes := make([]Scope, 0, len(nodes))
	for _, n := range nodes {
		scopes = append(scopes, &Reader{node: n, mode: r.mode})
	}
	return DefaultIfEmpty(scopes), nil
}

func (r *Reader) missing(expression string) (string, error) {
	if r.mode == MissingDataError {
		return "", NewExpressionError(expression, ErrMissingData)
	}
	return "", nil
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
