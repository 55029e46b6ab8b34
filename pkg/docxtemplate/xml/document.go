package xml

import (
	"fmt"
	"strings"
)

// Document is an arena-backed XML tree.
type Document struct {
	nodes []node
	root  NodeID
	// Prolog holds the processing instructions written before the root element.
	Prolog []ProcInst
	// Doctype is the body of a <!DOCTYPE ...> declaration, without <! and >.
	Doctype string
}

// ProcInst is a processing instruction such as <?xml version="1.0"?>.
type ProcInst struct {
	Target string
	Inst   string
}

// NewDocument creates a document whose root element has the given name.
func NewDocument(root Name, attrs ...Attr) *Document {
	doc := &Document{root: None}
	doc.root = doc.CreateElement(root, attrs...)
	return doc
}

// Root returns the root element.
func (d *Document) Root() NodeID {
	return d.root
}

// Len returns the number of nodes ever allocated in the arena, detached ones included.
func (d *Document) Len() int {
	return len(d.nodes)
}

func (d *Document) alloc(n node) NodeID {
	n.parent, n.first, n.last, n.prev, n.next = None, None, None, None, None
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

func (d *Document) at(id NodeID) *node {
	if id < 0 || int(id) >= len(d.nodes) {
		panic(fmt.Sprintf("xml: invalid node handle %d", id))
	}
	return &d.nodes[id]
}

// CreateElement allocates a detached element.
func (d *Document) CreateElement(name Name, attrs ...Attr) NodeID {
	copied := make([]Attr, len(attrs))
	copy(copied, attrs)
	return d.alloc(node{kind: ElementNode, name: name, attrs: copied})
}

// CreateText allocates a detached text node.
func (d *Document) CreateText(text string) NodeID {
	return d.alloc(node{kind: TextNode, data: text})
}

// CreateComment allocates a detached comment node.
func (d *Document) CreateComment(text string) NodeID {
	return d.alloc(node{kind: CommentNode, data: text})
}

// Kind reports the kind of a node.
func (d *Document) Kind(id NodeID) Kind {
	return d.at(id).kind
}

// IsElement reports whether id is an element.
func (d *Document) IsElement(id NodeID) bool {
	return id != None && d.at(id).kind == ElementNode
}

// Name returns the prefixed name of an element.
func (d *Document) Name(id NodeID) Name {
	return d.at(id).name
}

// LocalName returns the element name without its prefix.
func (d *Document) LocalName(id NodeID) string {
	return d.at(id).name.Local
}

// Attrs returns a copy of the element's attributes.
func (d *Document) Attrs(id NodeID) []Attr {
	attrs := d.at(id).attrs
	out := make([]Attr, len(attrs))
	copy(out, attrs)
	return out
}

// Attr returns the value of the first attribute with the given local name.
func (d *Document) Attr(id NodeID, local string) (string, bool) {
	for _, a := range d.at(id).attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing one with the same name.
func (d *Document) SetAttr(id NodeID, name Name, value string) {
	n := d.at(id)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// Parent returns the parent of id, or None for a root or detached node.
func (d *Document) Parent(id NodeID) NodeID {
	return d.at(id).parent
}

// FirstChild returns the first child node of any kind.
func (d *Document) FirstChild(id NodeID) NodeID {
	return d.at(id).first
}

// LastChild returns the last child node of any kind.
func (d *Document) LastChild(id NodeID) NodeID {
	return d.at(id).last
}

// NextSibling returns the following sibling node of any kind.
func (d *Document) NextSibling(id NodeID) NodeID {
	return d.at(id).next
}

// PrevSibling returns the preceding sibling node of any kind.
func (d *Document) PrevSibling(id NodeID) NodeID {
	return d.at(id).prev
}

// FirstChildElement returns the first child that is an element.
func (d *Document) FirstChildElement(id NodeID) NodeID {
	c := d.at(id).first
	for c != None && d.nodes[c].kind != ElementNode {
		c = d.nodes[c].next
	}
	return c
}

// NextSiblingElement returns the following sibling that is an element.
func (d *Document) NextSiblingElement(id NodeID) NodeID {
	c := d.at(id).next
	for c != None && d.nodes[c].kind != ElementNode {
		c = d.nodes[c].next
	}
	return c
}

// PrevSiblingElement returns the preceding sibling that is an element.
func (d *Document) PrevSiblingElement(id NodeID) NodeID {
	c := d.at(id).prev
	for c != None && d.nodes[c].kind != ElementNode {
		c = d.nodes[c].prev
	}
	return c
}

// Children returns all child nodes in order.
func (d *Document) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := d.at(id).first; c != None; c = d.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// ChildElements returns the child elements in order, optionally restricted to a local name.
func (d *Document) ChildElements(id NodeID, local ...string) []NodeID {
	var out []NodeID
	for c := d.FirstChildElement(id); c != None; c = d.NextSiblingElement(c) {
		if len(local) > 0 && d.nodes[c].name.Local != local[0] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// HasElements reports whether id has at least one child element.
func (d *Document) HasElements(id NodeID) bool {
	return d.FirstChildElement(id) != None
}

// Descendants returns every element below id in document order.
func (d *Document) Descendants(id NodeID) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		for c := d.FirstChildElement(n); c != None; c = d.NextSiblingElement(c) {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// FindDescendant returns the first descendant element with the given local name.
func (d *Document) FindDescendant(id NodeID, local string) NodeID {
	for c := d.FirstChildElement(id); c != None; c = d.NextSiblingElement(c) {
		if d.nodes[c].name.Local == local {
			return c
		}
		if found := d.FindDescendant(c, local); found != None {
			return found
		}
	}
	return None
}

// Text returns the character data of a text or comment node.
func (d *Document) Text(id NodeID) string {
	return d.at(id).data
}

// Value returns the concatenated text of id and all of its descendants.
func (d *Document) Value(id NodeID) string {
	n := d.at(id)
	switch n.kind {
	case TextNode:
		return n.data
	case CommentNode:
		return ""
	}
	var b strings.Builder
	d.appendValue(&b, id)
	return b.String()
}

func (d *Document) appendValue(b *strings.Builder, id NodeID) {
	for c := d.nodes[id].first; c != None; c = d.nodes[c].next {
		switch d.nodes[c].kind {
		case TextNode:
			b.WriteString(d.nodes[c].data)
		case ElementNode:
			d.appendValue(b, c)
		}
	}
}

// SetValue replaces the content of an element with a single text node.
func (d *Document) SetValue(id NodeID, text string) {
	n := d.at(id)
	if n.kind != ElementNode {
		n.data = text
		return
	}
	d.RemoveChildren(id)
	if text != "" {
		d.AppendChild(id, d.CreateText(text))
	}
}

// IsAttached reports whether id is the root or hangs below it.
func (d *Document) IsAttached(id NodeID) bool {
	for id != None {
		if id == d.root {
			return true
		}
		id = d.nodes[id].parent
	}
	return false
}

// AppendChild appends child as the last child of parent, detaching it first.
func (d *Document) AppendChild(parent, child NodeID) {
	d.Remove(child)
	p := d.at(parent)
	c := d.at(child)
	c.parent = parent
	c.prev = p.last
	if p.last != None {
		d.nodes[p.last].next = child
	} else {
		p.first = child
	}
	p.last = child
}

// InsertAfter inserts n as the sibling immediately after ref.
func (d *Document) InsertAfter(ref, n NodeID) {
	if ref == n {
		return
	}
	d.Remove(n)
	r := d.at(ref)
	if r.parent == None {
		panic(fmt.Sprintf("xml: cannot insert after detached node %d", ref))
	}
	c := d.at(n)
	c.parent = r.parent
	c.prev = ref
	c.next = r.next
	if r.next != None {
		d.nodes[r.next].prev = n
	} else {
		d.nodes[r.parent].last = n
	}
	r.next = n
}

// InsertBefore inserts n as the sibling immediately before ref.
func (d *Document) InsertBefore(ref, n NodeID) {
	if ref == n {
		return
	}
	d.Remove(n)
	r := d.at(ref)
	if r.parent == None {
		panic(fmt.Sprintf("xml: cannot insert before detached node %d", ref))
	}
	c := d.at(n)
	c.parent = r.parent
	c.next = ref
	c.prev = r.prev
	if r.prev != None {
		d.nodes[r.prev].next = n
	} else {
		d.nodes[r.parent].first = n
	}
	r.prev = n
}

// Remove detaches id from its parent. Its own subtree stays intact.
func (d *Document) Remove(id NodeID) {
	n := d.at(id)
	if n.parent == None {
		return
	}
	p := &d.nodes[n.parent]
	if n.prev != None {
		d.nodes[n.prev].next = n.next
	} else {
		p.first = n.next
	}
	if n.next != None {
		d.nodes[n.next].prev = n.prev
	} else {
		p.last = n.prev
	}
	n.parent, n.prev, n.next = None, None, None
}

// RemoveChildren detaches every child of id.
func (d *Document) RemoveChildren(id NodeID) {
	for c := d.at(id).first; c != None; {
		next := d.nodes[c].next
		d.Remove(c)
		c = next
	}
}

// ShallowClone copies a node's name and attributes (or its text) into a new detached node.
func (d *Document) ShallowClone(id NodeID) NodeID {
	n := d.at(id)
	return d.alloc(node{kind: n.kind, name: n.name, attrs: append([]Attr(nil), n.attrs...), data: n.data})
}

// Clone deep-copies the subtree rooted at id into a new detached subtree.
func (d *Document) Clone(id NodeID) NodeID {
	cp := d.ShallowClone(id)
	for c := d.at(id).first; c != None; c = d.nodes[c].next {
		d.AppendChild(cp, d.Clone(c))
	}
	return cp
}
