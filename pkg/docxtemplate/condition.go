package docxtemplate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
)

// parseCondition interprets the text of a condition. Empty text is false.
func parseCondition(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "no", "off":
		return false, nil
	case "yes", "on":
		return true, nil
	}
	return strconv.ParseBool(strings.TrimSpace(text))
}

// evaluateCondition reads expression in scope and interprets the result.
func evaluateCondition(scope data.Scope, expression string) (bool, error) {
	text, err := scope.ReadText(expression)
	if err != nil {
		return false, err
	}
	ok, err := parseCondition(text)
	if err != nil {
		return false, data.NewExpressionError(expression, fmt.Errorf("%q is not a boolean", text))
	}
	return ok, nil
}
