package xml

import (
	"encoding/xml"
)

// NodeID is a handle to a node inside a Document.
type NodeID int32

// None is the zero handle: no node.
const None NodeID = -1

// Kind distinguishes element content from character content.
type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
	CommentNode
)

func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Name is a prefixed XML name. Space holds the prefix, not a namespace URI.
type Name = xml.Name

// Attr is a prefixed XML attribute.
type Attr = xml.Attr

type node struct {
	kind  Kind
	name  Name
	attrs []Attr
	data  string

	parent NodeID
	first  NodeID
	last   NodeID
	prev   NodeID
	next   NodeID
}

// Local builds an unprefixed name.
func Local(local string) Name {
	return Name{Local: local}
}

// Prefixed builds a prefixed name such as w:p.
func Prefixed(prefix, local string) Name {
	return Name{Space: prefix, Local: local}
}
