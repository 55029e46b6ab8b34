package xml

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

// WriteTo serialises the document, prolog included.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, pi := range d.Prolog {
		cw.WriteString("<?" + pi.Target)
		if pi.Inst != "" {
			cw.WriteString(" " + pi.Inst)
		}
		cw.WriteString("?>\n")
	}
	if d.Doctype != "" {
		cw.WriteString("<!" + d.Doctype + ">\n")
	}
	d.writeNode(cw, d.root)
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// String returns the serialised document.
func (d *Document) String() string {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.String()
}

// NodeString serialises the subtree rooted at id.
func (d *Document) NodeString(id NodeID) string {
	var buf bytes.Buffer
	cw := &countingWriter{w: bufio.NewWriter(&buf)}
	d.writeNode(cw, id)
	_ = cw.w.Flush()
	return buf.String()
}

func (d *Document) writeNode(cw *countingWriter, id NodeID) {
	n := &d.nodes[id]
	switch n.kind {
	case TextNode:
		cw.WriteString(textEscaper.Replace(n.data))
		return
	case CommentNode:
		cw.WriteString("<!--" + n.data + "-->")
		return
	}

	cw.WriteString("<" + qualified(n.name))
	for _, a := range n.attrs {
		cw.WriteString(" " + qualified(a.Name) + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	if n.first == None {
		cw.WriteString("/>")
		return
	}
	cw.WriteString(">")
	for c := n.first; c != None; c = d.nodes[c].next {
		d.writeNode(cw, c)
	}
	cw.WriteString("</" + qualified(n.name) + ">")
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}
