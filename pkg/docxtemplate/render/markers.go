package render

import (
	"errors"
	"strings"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// ErrNoMatchingEnd is returned by FindMatchingEnd when the balance never reaches zero.
var ErrNoMatchingEnd = errors.New("no matching end found")

// IsSdt reports whether id is a content-control marker (w:sdt).
func IsSdt(doc *xml.Document, id xml.NodeID) bool {
	return doc.IsElement(id) && doc.LocalName(id) == "sdt"
}

// TagName returns the directive name of a marker: the w:val of w:sdtPr/w:tag.
func TagName(doc *xml.Document, id xml.NodeID) string {
	if !IsSdt(doc, id) {
		return ""
	}
	for _, pr := range doc.ChildElements(id, "sdtPr") {
		for _, tag := range doc.ChildElements(pr, "tag") {
			if val, ok := doc.Attr(tag, "val"); ok {
				return strings.TrimSpace(val)
			}
		}
	}
	return ""
}

// IsTag reports whether id is a marker whose name equals one of names, ignoring case.
func IsTag(doc *xml.Document, id xml.NodeID, names ...string) bool {
	if !IsSdt(doc, id) {
		return false
	}
	tag := TagName(doc, id)
	for _, name := range names {
		if strings.EqualFold(tag, name) {
			return true
		}
	}
	return false
}

// Expression returns the bound expression of a marker: the trimmed text of w:sdtContent.
func Expression(doc *xml.Document, id xml.NodeID) string {
	contents := doc.ChildElements(id, "sdtContent")
	if len(contents) == 0 {
		return ""
	}
	return strings.TrimSpace(doc.Value(contents[0]))
}

// FindMatchingEnd walks the open/close markers after start and returns the
// close marker that balances it. Every open marker met on the way increments
// the depth, every close marker decrements it; other markers are ignored.
func FindMatchingEnd(doc *xml.Document, start xml.NodeID, open, close string) (xml.NodeID, error) {
	depth := 1
	for id := range NextTagElements(doc, start, open, close) {
		if IsTag(doc, id, open) {
			depth++
			continue
		}
		depth--
		if depth == 0 {
			return id, nil
		}
	}
	return xml.None, ErrNoMatchingEnd
}
