package render

import (
	"strings"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// blockContainers hold paragraphs rather than runs.
var blockContainers = map[string]bool{
	"body":        true,
	"tc":          true,
	"txbxContent": true,
	"hdr":         true,
	"ftr":         true,
	"footnote":    true,
	"endnote":     true,
	"comment":     true,
	"docPartBody": true,
}

// CreateTextElement builds a detached element carrying text that can take the
// place of marker: a run when the marker sits inside a paragraph, a paragraph
// holding that run when it sits at block level. Run formatting found inside the
// marker content is carried over.
func CreateTextElement(doc *xml.Document, marker xml.NodeID, text string) xml.NodeID {
	prefix := doc.Name(marker).Space

	run := doc.CreateElement(xml.Prefixed(prefix, "r"))
	if rPr := doc.FindDescendant(marker, "rPr"); rPr != xml.None {
		doc.AppendChild(run, doc.Clone(rPr))
	}
	t := doc.CreateElement(xml.Prefixed(prefix, "t"))
	if strings.TrimSpace(text) != text {
		doc.SetAttr(t, xml.Prefixed("xml", "space"), "preserve")
	}
	if text != "" {
		doc.AppendChild(t, doc.CreateText(text))
	}
	doc.AppendChild(run, t)

	if !isBlockLevel(doc, marker) {
		return run
	}
	p := doc.CreateElement(xml.Prefixed(prefix, "p"))
	if pPr := doc.FindDescendant(marker, "pPr"); pPr != xml.None {
		doc.AppendChild(p, doc.Clone(pPr))
	}
	doc.AppendChild(p, run)
	return p
}

// isBlockLevel looks through enclosing content controls for the first real container.
func isBlockLevel(doc *xml.Document, marker xml.NodeID) bool {
	for p := doc.Parent(marker); p != xml.None; p = doc.Parent(p) {
		switch local := doc.LocalName(p); local {
		case "sdt", "sdtContent":
			continue
		default:
			return blockContainers[local]
		}
	}
	return false
}

// ReplaceWithText puts a text element in place of marker and detaches the marker.
func ReplaceWithText(doc *xml.Document, marker xml.NodeID, text string) xml.NodeID {
	el := CreateTextElement(doc, marker, text)
	if doc.Parent(marker) != xml.None {
		doc.InsertAfter(marker, el)
		doc.Remove(marker)
	}
	return el
}
