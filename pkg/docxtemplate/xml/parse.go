package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse builds a Document from XML text. Namespace prefixes are kept verbatim.
func Parse(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true

	doc := &Document{root: None}
	var stack []NodeID

	for {
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			id := doc.CreateElement(t.Name, t.Attr...)
			if len(stack) == 0 {
				if doc.root != None {
					return nil, errors.New("failed to parse document: multiple root elements")
				}
				doc.root = id
			} else {
				doc.AppendChild(stack[len(stack)-1], id)
			}
			stack = append(stack, id)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("failed to parse document: unexpected end element %s", qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if doc.Name(top) != t.Name {
				return nil, fmt.Errorf("failed to parse document: element %s closed by %s", qualified(doc.Name(top)), qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			doc.AppendChild(stack[len(stack)-1], doc.CreateText(string(t)))
		case xml.Comment:
			if len(stack) == 0 {
				continue
			}
			doc.AppendChild(stack[len(stack)-1], doc.CreateComment(string(t)))
		case xml.ProcInst:
			if doc.root == None {
				doc.Prolog = append(doc.Prolog, ProcInst{Target: t.Target, Inst: string(bytes.Clone(t.Inst))})
			}
		case xml.Directive:
			// Only a DOCTYPE before the root is kept; other directives are dropped.
			if doc.root == None && bytes.HasPrefix(t, []byte("DOCTYPE")) {
				doc.Doctype = string(bytes.Clone(t))
			}
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("failed to parse document: unclosed element %s", qualified(doc.Name(stack[len(stack)-1])))
	}
	if doc.root == None {
		return nil, errors.New("failed to parse document: no root element")
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func qualified(n Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
