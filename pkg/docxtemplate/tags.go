package docxtemplate

import (
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// Marker names. Matching is case-insensitive.
const (
	TagIf          = "If"
	TagEndIf       = "EndIf"
	TagTable       = "Table"
	TagEndTable    = "EndTable"
	TagRepeater    = "Repeater"
	TagEndRepeater = "EndRepeater"
	TagItems       = "Items"
	TagContent     = "Content"
	TagEndContent  = "EndContent"
	TagDynamicRow  = "DynamicRow"
	TagText        = "Text"
	TagItem        = "Item"
	TagItemIndex   = "ItemIndex"
	TagItemIf      = "ItemIf"
	TagEndItemIf   = "EndItemIf"
)

// DirectiveKind classifies a marker by its name.
type DirectiveKind int

const (
	KindUnknown DirectiveKind = iota
	KindIf
	KindEndIf
	KindTable
	KindEndTable
	KindRepeater
	KindEndRepeater
	KindItems
	KindContent
	KindEndContent
	KindDynamicRow
	KindText
	KindItem
	KindItemIndex
	KindItemIf
	KindEndItemIf
)

var kindNames = map[DirectiveKind]string{
	KindIf:          TagIf,
	KindEndIf:       TagEndIf,
	KindTable:       TagTable,
	KindEndTable:    TagEndTable,
	KindRepeater:    TagRepeater,
	KindEndRepeater: TagEndRepeater,
	KindItems:       TagItems,
	KindContent:     TagContent,
	KindEndContent:  TagEndContent,
	KindDynamicRow:  TagDynamicRow,
	KindText:        TagText,
	KindItem:        TagItem,
	KindItemIndex:   TagItemIndex,
	KindItemIf:      TagItemIf,
	KindEndItemIf:   TagEndItemIf,
}

var kindsByName = func() map[string]DirectiveKind {
	m := make(map[string]DirectiveKind, len(kindNames))
	for k, name := range kindNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// DirectiveKindOf returns the kind for a marker name, or KindUnknown.
func DirectiveKindOf(name string) DirectiveKind {
	return kindsByName[strings.ToLower(strings.TrimSpace(name))]
}

func (k DirectiveKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsItemFamily reports whether k belongs to the placeholders used inside
// Table and Repeater content.
func (k DirectiveKind) IsItemFamily() bool {
	switch k {
	case KindItem, KindItemIndex, KindItemIf, KindEndItemIf:
		return true
	}
	return false
}

// builtinTagNames lists every reserved marker name.
func builtinTagNames() []string {
	names := make([]string, 0, len(kindNames))
	for _, name := range kindNames {
		names = append(names, name)
	}
	return names
}

// Tag is the parsed description of one directive.
type Tag interface {
	Kind() DirectiveKind
	isTag()
}

// IfTag is a conditional span.
type IfTag struct {
	Doc       *xml.Document
	Condition string
	StartIf   xml.NodeID
	EndIf     xml.NodeID
	// Content holds the subtrees between the markers at parse time.
	Content []xml.NodeID
}

func (*IfTag) Kind() DirectiveKind { return KindIf }
func (*IfTag) isTag()              {}

// TableTag is a table whose template rows are repeated per data item.
type TableTag struct {
	Doc           *xml.Document
	TagTable      xml.NodeID
	TagEndTable   xml.NodeID
	TagContent    xml.NodeID
	TagEndContent xml.NodeID
	ItemsSource   string
	// Table is the bound w:tbl node, or xml.None when the content has none.
	Table xml.NodeID
	// DynamicRow is the 1-based index of the template row, when given.
	DynamicRow *int
	// Placeholders are the item-family markers found in the content at parse
	// time; the rows holding them are the template rows.
	Placeholders []ItemElement
	// MakeTableElements collects the placeholders inside one row.
	MakeTableElements func(doc *xml.Document, row xml.NodeID) ([]ItemElement, error)
}

func (*TableTag) Kind() DirectiveKind { return KindTable }
func (*TableTag) isTag()              {}

// RepeaterTag is an arbitrary content block repeated per data item.
type RepeaterTag struct {
	Doc           *xml.Document
	StartRepeater xml.NodeID
	EndRepeater   xml.NodeID
	StartContent  xml.NodeID
	EndContent    xml.NodeID
	Source        string
	// Placeholders are the item-family markers found in the content at parse
	// time. Passes are only scanned for placeholders when there are some.
	Placeholders []ItemElement
	// MakeElement snapshots one content node into a reusable description.
	MakeElement func(doc *xml.Document, id xml.NodeID) RepeaterElement
}

func (*RepeaterTag) Kind() DirectiveKind { return KindRepeater }
func (*RepeaterTag) isTag()              {}

// TextTag substitutes a marker with the text of its expression.
type TextTag struct {
	Doc        *xml.Document
	Expression string
	Marker     xml.NodeID
}

func (*TextTag) Kind() DirectiveKind { return KindText }
func (*TextTag) isTag()              {}

// ItemElement is an Item, ItemIndex or ItemIf placeholder. ItemIf carries its
// end marker and the placeholders nested between the two.
type ItemElement struct {
	Kind       DirectiveKind
	Expression string
	StartTag   xml.NodeID
	EndTag     xml.NodeID
	Elements   []ItemElement
}

func (e ItemElement) String() string {
	switch e.Kind {
	case KindItemIndex:
		return "ItemIndex"
	case KindItemIf:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = el.String()
		}
		return fmt.Sprintf("ItemIf(%s)[%s]", e.Expression, strings.Join(parts, " "))
	default:
		return fmt.Sprintf("Item(%s)", e.Expression)
	}
}

// RepeaterElementKind says how a snapshot element is materialised.
type RepeaterElementKind int

const (
	// RepeaterPlain is copied structurally, its children re-materialised.
	RepeaterPlain RepeaterElementKind = iota
	// RepeaterText is character data copied as is.
	RepeaterText
	// RepeaterIndex becomes the item's 1-based position.
	RepeaterIndex
	// RepeaterItem becomes the text of its expression in the item scope.
	RepeaterItem
)

// RepeaterElement is an immutable description of one template node.
type RepeaterElement struct {
	Kind       RepeaterElementKind
	Node       xml.NodeID
	Expression string
	Value      string
	Elements   []RepeaterElement
}

// IsIndex reports whether the element is an index placeholder.
func (e RepeaterElement) IsIndex() bool { return e.Kind == RepeaterIndex }

// IsItem reports whether the element is an item placeholder.
func (e RepeaterElement) IsItem() bool { return e.Kind == RepeaterItem }

// HasElements reports whether a plain element has nested structure.
func (e RepeaterElement) HasElements() bool { return len(e.Elements) > 0 }
