// Package data is the data-binding side of the template engine.
//
// The engine only needs two operations from a data source: evaluate an
// expression to text, and split a collection-valued expression into one child
// scope per item. Scope captures exactly that contract. Reader implements it
// over an XML data document using XPath 1.0 as the binding language:
//
//	reader, err := data.Parse(strings.NewReader(`<Test><Name>Anna</Name></Test>`))
//	name, err := reader.ReadText("//Test/Name") // "Anna"
//
// Expressions in a child scope are evaluated relative to that scope's node,
// so a table row bound to //Orders/Order can use ./Number or Number.
package data
