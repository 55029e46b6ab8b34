package docxtemplate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

func marker(tag, value string) string {
	return `<w:sdt><w:sdtPr><w:tag w:val="` + tag + `"/></w:sdtPr>` +
		`<w:sdtContent><w:r><w:t>` + value + `</w:t></w:r></w:sdtContent></w:sdt>`
}

func para(content ...string) string {
	return "<w:p>" + strings.Join(content, "") + "</w:p>"
}

func run(text string) string {
	return "<w:r><w:t>" + text + "</w:t></w:r>"
}

func cell(content ...string) string {
	return "<w:tc>" + strings.Join(content, "") + "</w:tc>"
}

func row(cells ...string) string {
	return "<w:tr>" + strings.Join(cells, "") + "</w:tr>"
}

func textRow(texts ...string) string {
	cells := make([]string, len(texts))
	for i, text := range texts {
		cells[i] = cell(para(run(text)))
	}
	return row(cells...)
}

func table(rows ...string) string {
	return "<w:tbl>" + strings.Join(rows, "") + "</w:tbl>"
}

func body(content ...string) string {
	return `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(content, "") + "</w:body></w:document>"
}

func mustParse(t *testing.T, s string) *xml.Document {
	t.Helper()
	doc, err := xml.ParseString(s)
	require.NoError(t, err)
	return doc
}

func mustData(t *testing.T, s string, opts ...data.Option) *data.Reader {
	t.Helper()
	reader, err := data.Parse(strings.NewReader(s), opts...)
	require.NoError(t, err)
	return reader
}

// testEngine returns an engine logging into buf.
func testEngine(config *Config) (*Engine, *bytes.Buffer) {
	if config == nil {
		config = DefaultConfig()
	}
	var buf bytes.Buffer
	e := NewWithConfig(config)
	e.SetLogger(NewLogger(&buf, LogDebug))
	return e, &buf
}

func bodyOf(doc *xml.Document) xml.NodeID {
	return doc.FindDescendant(doc.Root(), "body")
}

// paragraphTexts returns the text of every paragraph directly in the body.
func paragraphTexts(doc *xml.Document) []string {
	var out []string
	for _, p := range doc.ChildElements(bodyOf(doc), "p") {
		out = append(out, doc.Value(p))
	}
	return out
}

// tableCells returns the text of every cell of the first table, row by row.
func tableCells(t *testing.T, doc *xml.Document) [][]string {
	t.Helper()
	tbl := doc.FindDescendant(doc.Root(), "tbl")
	require.NotEqual(t, xml.None, tbl, "no table in document")
	var out [][]string
	for _, tr := range doc.ChildElements(tbl, "tr") {
		var cells []string
		for _, tc := range doc.ChildElements(tr, "tc") {
			cells = append(cells, doc.Value(tc))
		}
		out = append(out, cells)
	}
	return out
}

func remainingMarkers(doc *xml.Document) []string {
	var out []string
	for _, id := range render.TagElements(doc, doc.Root()) {
		out = append(out, render.TagName(doc, id))
	}
	return out
}

func capturePanic(fn func()) (r interface{}) {
	defer func() {
		r = recover()
	}()
	fn()
	return nil
}
