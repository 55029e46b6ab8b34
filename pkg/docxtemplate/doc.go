// Package docxtemplate renders Microsoft Word (DOCX) templates whose directives
// are written as content controls.
//
// A directive is a w:sdt element whose w:tag value names it (If, Table,
// Repeater, Text, ...) and whose content holds its binding expression. Paired
// directives open and close with separate controls that may sit at different
// depths of the document tree; they are matched by document order, not by XML
// nesting.
//
// # Quick Start
//
//	engine := docxtemplate.New()
//	err := engine.RenderDocxFile("template.docx", "data.xml", "output.docx")
//
// Bindings are XPath expressions evaluated against an XML data document:
//
//	<Test><Certificates>
//	  <Certificate><Name>Math</Name></Certificate>
//	</Certificates></Test>
//
// # Directives
//
// If/EndIf keeps its content when the condition evaluates to true and removes
// it otherwise.
//
// Table/EndTable repeats the template rows of the table found between its
// Content and EndContent controls once per item selected by the Items control.
// Inside the rows, Item is replaced by the text of its expression evaluated
// against the item, ItemIndex by the item's 1-based position and ItemIf/EndItemIf
// keeps or drops a span per item. DynamicRow selects the template row by its
// 1-based position.
//
// Repeater/EndRepeater repeats arbitrary content between Content and
// EndContent once per item, with the same placeholders.
//
// Text is replaced by the text of its expression.
//
// # Two phases
//
// Rendering parses the whole template into a processor tree first and only
// then executes it, so a malformed template is reported before the document is
// modified:
//
//	root, err := engine.Parse(doc)
//	if err != nil {
//	    return err // *MalformedTemplateError, doc untouched
//	}
//	err = engine.Execute(root, scope)
//
// # Custom directives
//
// Marker names outside the built-in vocabulary can be handled by registering a
// ParserFunc with Engine.RegisterParser. Unregistered names are skipped with a
// warning.
//
// # Configuration
//
// Engines read a Config built from defaults, DOCXTEMPLATE_* environment
// variables or a YAML file. StrictMode turns bindings that select nothing into
// errors; Locale selects the digits used for item indexes.
package docxtemplate
