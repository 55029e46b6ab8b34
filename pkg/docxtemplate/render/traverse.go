package render

import (
	"iter"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// NextElement returns the next sibling element of id.
func NextElement(doc *xml.Document, id xml.NodeID) xml.NodeID {
	return doc.NextSiblingElement(id)
}

// NextElementWithUpTransition returns the next sibling of id or, when id is the
// last child, the next sibling of the nearest ancestor that has one.
func NextElementWithUpTransition(doc *xml.Document, id xml.NodeID) xml.NodeID {
	for id != xml.None {
		if next := doc.NextSiblingElement(id); next != xml.None {
			return next
		}
		id = doc.Parent(id)
	}
	return xml.None
}

// NextInDocumentOrder returns the document-order successor of id, descending
// into ordinary elements but never into markers.
func NextInDocumentOrder(doc *xml.Document, id xml.NodeID) xml.NodeID {
	if !IsSdt(doc, id) {
		if child := doc.FirstChildElement(id); child != xml.None {
			return child
		}
	}
	return NextElementWithUpTransition(doc, id)
}

// NextTagElements yields, in document order, the markers strictly after from.
// When names are given only markers whose tag matches one of them are yielded.
// The descendants of from are not visited.
func NextTagElements(doc *xml.Document, from xml.NodeID, names ...string) iter.Seq[xml.NodeID] {
	return func(yield func(xml.NodeID) bool) {
		for cur := NextElementWithUpTransition(doc, from); cur != xml.None; cur = NextInDocumentOrder(doc, cur) {
			if !IsSdt(doc, cur) {
				continue
			}
			if len(names) > 0 && !IsTag(doc, cur, names...) {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// NextTagElement returns the first marker after from matching names, or None.
func NextTagElement(doc *xml.Document, from xml.NodeID, names ...string) xml.NodeID {
	found := xml.None
	for id := range NextTagElements(doc, from, names...) {
		found = id
		break
	}
	return found
}

// TagElementsBetween returns the markers strictly between start and end matching names.
func TagElementsBetween(doc *xml.Document, start, end xml.NodeID, names ...string) []xml.NodeID {
	var out []xml.NodeID
	for id := range NextTagElements(doc, start, names...) {
		if id == end || !IsBefore(doc, id, end) {
			break
		}
		out = append(out, id)
	}
	return out
}

// ElementsBetween returns the largest subtrees lying strictly between a and b
// in document order. a and b may sit at different depths: an ancestor of b is
// never returned whole, the walk enters it instead.
func ElementsBetween(doc *xml.Document, a, b xml.NodeID) []xml.NodeID {
	if !IsBefore(doc, a, b) {
		return nil
	}
	var out []xml.NodeID
	cur := NextElementWithUpTransition(doc, a)
	for cur != xml.None && cur != b {
		if IsAncestor(doc, cur, b) {
			cur = doc.FirstChildElement(cur)
			continue
		}
		out = append(out, cur)
		cur = NextElementWithUpTransition(doc, cur)
	}
	return out
}

// IsAncestor reports whether anc is a proper ancestor of id.
func IsAncestor(doc *xml.Document, anc, id xml.NodeID) bool {
	for p := doc.Parent(id); p != xml.None; p = doc.Parent(p) {
		if p == anc {
			return true
		}
	}
	return false
}

// IsBefore reports whether x precedes y in document order. An ancestor precedes
// its descendants. Nodes of unrelated subtrees are never before each other.
func IsBefore(doc *xml.Document, x, y xml.NodeID) bool {
	if x == y || x == xml.None || y == xml.None {
		return false
	}
	px, rx := path(doc, x)
	py, ry := path(doc, y)
	if rx != ry {
		return false
	}
	for i := 0; i < len(px) && i < len(py); i++ {
		if px[i] != py[i] {
			return px[i] < py[i]
		}
	}
	return len(px) < len(py)
}

// path returns the child positions from the subtree root down to id, and that root.
func path(doc *xml.Document, id xml.NodeID) ([]int, xml.NodeID) {
	var rev []int
	root := id
	for cur := id; cur != xml.None; cur = doc.Parent(cur) {
		pos := 0
		for s := doc.PrevSibling(cur); s != xml.None; s = doc.PrevSibling(s) {
			pos++
		}
		rev = append(rev, pos)
		root = cur
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out, root
}

// CleanUp removes every element strictly between start and end, then the two
// markers themselves. Nodes outside the span are untouched.
func CleanUp(doc *xml.Document, start, end xml.NodeID) {
	for _, id := range ElementsBetween(doc, start, end) {
		doc.Remove(id)
	}
	doc.Remove(start)
	doc.Remove(end)
}

// TagElements returns the markers inside the subtree rooted at id, in document
// order, optionally restricted to names.
func TagElements(doc *xml.Document, id xml.NodeID, names ...string) []xml.NodeID {
	var out []xml.NodeID
	var walk func(xml.NodeID)
	walk = func(n xml.NodeID) {
		for c := doc.FirstChildElement(n); c != xml.None; c = doc.NextSiblingElement(c) {
			if !IsSdt(doc, c) {
				walk(c)
				continue
			}
			if len(names) == 0 || IsTag(doc, c, names...) {
				out = append(out, c)
			}
		}
	}
	walk(id)
	return out
}
