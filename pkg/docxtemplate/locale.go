package docxtemplate

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// IndexFormatter renders the 1-based position of a data item.
type IndexFormatter func(index int) string

// NewIndexFormatter returns a formatter writing indexes with the digits of the
// given locale and no grouping separators.
func NewIndexFormatter(locale string) (IndexFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, err
	}
	printer := message.NewPrinter(tag)
	return func(index int) string {
		return printer.Sprint(number.Decimal(index, number.NoSeparator()))
	}, nil
}

func decimalIndex(index int) string {
	return strconv.Itoa(index)
}

func (f IndexFormatter) format(index int) string {
	if f == nil {
		return decimalIndex(index)
	}
	return f(index)
}
