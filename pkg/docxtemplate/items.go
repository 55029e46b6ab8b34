package docxtemplate

import (
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// collectItemElements turns a document-ordered list of markers into the
// item-family placeholders it contains. ItemIf is paired with its EndItemIf
// and owns the placeholders between them. The spans of nested Table and
// Repeater directives are skipped: their placeholders belong to them.
func collectItemElements(doc *xml.Document, markers []xml.NodeID) ([]ItemElement, error) {
	elements, _, err := collectItems(doc, markers, 0, false)
	return elements, err
}

func collectItems(doc *xml.Document, markers []xml.NodeID, pos int, inItemIf bool) ([]ItemElement, int, error) {
	var out []ItemElement
	for pos < len(markers) {
		marker := markers[pos]
		switch DirectiveKindOf(render.TagName(doc, marker)) {
		case KindItem:
			expr := render.Expression(doc, marker)
			if expr == "" {
				return nil, pos, tagNotFoundOrEmpty(TagItem)
			}
			out = append(out, ItemElement{Kind: KindItem, Expression: expr, StartTag: marker, EndTag: xml.None})
			pos++

		case KindItemIndex:
			out = append(out, ItemElement{Kind: KindItemIndex, StartTag: marker, EndTag: xml.None})
			pos++

		case KindItemIf:
			expr := render.Expression(doc, marker)
			if expr == "" {
				return nil, pos, tagNotFoundOrEmpty(TagItemIf)
			}
			nested, end, err := collectItems(doc, markers, pos+1, true)
			if err != nil {
				return nil, end, err
			}
			out = append(out, ItemElement{
				Kind:       KindItemIf,
				Expression: expr,
				StartTag:   marker,
				EndTag:     markers[end],
				Elements:   nested,
			})
			pos = end + 1

		case KindEndItemIf:
			if inItemIf {
				return out, pos, nil
			}
			return nil, pos, NewMalformedTemplateError(TagEndItemIf, "found without a matching ItemIf")

		case KindTable:
			next, err := skipSpan(doc, markers, pos, TagTable, TagEndTable)
			if err != nil {
				return nil, pos, err
			}
			pos = next

		case KindRepeater:
			next, err := skipSpan(doc, markers, pos, TagRepeater, TagEndRepeater)
			if err != nil {
				return nil, pos, err
			}
			pos = next

		default:
			pos++
		}
	}
	if inItemIf {
		return nil, pos, tagNotFoundOrEmpty(TagEndItemIf)
	}
	return out, pos, nil
}

// skipSpan returns the position just past the close marker balancing markers[pos].
func skipSpan(doc *xml.Document, markers []xml.NodeID, pos int, open, close string) (int, error) {
	depth := 0
	for ; pos < len(markers); pos++ {
		switch {
		case render.IsTag(doc, markers[pos], open):
			depth++
		case render.IsTag(doc, markers[pos], close):
			depth--
		}
		if depth == 0 {
			return pos + 1, nil
		}
	}
	return pos, tagNotFoundOrEmpty(close)
}

// itemMarkers lists the markers of the given subtrees in document order.
func itemMarkers(doc *xml.Document, roots []xml.NodeID) []xml.NodeID {
	var out []xml.NodeID
	for _, id := range roots {
		if render.IsSdt(doc, id) {
			out = append(out, id)
			continue
		}
		out = append(out, render.TagElements(doc, id)...)
	}
	return out
}

// processItemElements substitutes placeholders against one data item.
// index is the item's 1-based position.
func processItemElements(doc *xml.Document, elements []ItemElement, scope data.Scope, index int, format IndexFormatter) error {
	for _, el := range elements {
		switch el.Kind {
		case KindItem:
			text, err := scope.ReadText(el.Expression)
			if err != nil {
				return WithContext(err, "item", map[string]interface{}{"index": index})
			}
			render.ReplaceWithText(doc, el.StartTag, text)

		case KindItemIndex:
			render.ReplaceWithText(doc, el.StartTag, format.format(index))

		case KindItemIf:
			ok, err := evaluateCondition(scope, el.Expression)
			if err != nil {
				return WithContext(err, "itemif", map[string]interface{}{"index": index})
			}
			if !ok {
				render.CleanUp(doc, el.StartTag, el.EndTag)
				continue
			}
			if err := processItemElements(doc, el.Elements, scope, index, format); err != nil {
				return err
			}
			doc.Remove(el.StartTag)
			doc.Remove(el.EndTag)
		}
	}
	return nil
}

// placeholderMarkers flattens elements into their start and end markers.
func placeholderMarkers(elements []ItemElement) []xml.NodeID {
	var out []xml.NodeID
	for _, el := range elements {
		out = append(out, el.StartTag)
		if el.EndTag != xml.None {
			out = append(out, el.EndTag)
		}
		out = append(out, placeholderMarkers(el.Elements)...)
	}
	return out
}
