// Package xml provides the mutable document tree that templates are rendered into.
//
// A Document is an arena of nodes addressed by NodeID handles. Parent, child and
// sibling links are handles into the same arena, so rewriting the tree never
// invalidates a handle held elsewhere: a removed node is merely detached and can
// still be inspected or re-inserted.
//
// # Structure Organization
//
//   - types.go: NodeID, Kind and the internal node record
//   - document.go: navigation, inspection and mutation of the arena
//   - parse.go: building a Document from XML text
//   - write.go: serialising a Document back to XML text
//
// # Names
//
// Element and attribute names are kept exactly as written in the source:
// xml.Name.Space holds the namespace prefix ("w" for "w:p"), not the namespace
// URI. This keeps WordprocessingML prefixes stable across a parse/write cycle
// without any namespace fix-up pass.
//
// # Usage
//
//	doc, err := xml.ParseString(`<w:body><w:p><w:r><w:t>Hi</w:t></w:r></w:p></w:body>`)
//	if err != nil {
//	    return err
//	}
//	p := doc.FirstChildElement(doc.Root())
//	fmt.Println(doc.Value(p)) // Hi
//
// A Document is not safe for concurrent use; a render pass owns its tree.
package xml
