// Package render provides the tree navigation helpers used by the template engine.
//
// Every function in this package is a pure helper over an *xml.Document: no
// state is kept between calls and nothing here calls back into the
// docxtemplate package, so the helpers can be tested on hand-built trees.
//
// # Structure Organization
//
//   - traverse.go: document-order walking (NextElementWithUpTransition,
//     NextTagElements, ElementsBetween, IsBefore) and span clean-up
//   - markers.go: content-control marker detection (IsSdt, TagName, Expression)
//     and balanced start/end matching (FindMatchingEnd)
//   - text.go: replacing a marker with a text run or paragraph
//
// # Document Order
//
// Document order is pre-order: a node precedes its descendants, which precede
// its later siblings and its ancestors' later siblings. Template markers do not
// nest the way XML elements do (an If may open in one paragraph and close in a
// table cell three paragraphs later), so matching is done over this total
// order rather than over parent/child containment.
//
// Markers are atomic: walks never descend into a w:sdt element.
package render
