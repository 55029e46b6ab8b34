package docxtemplate

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

const stylesPart = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:styleId="Normal"/></w:styles>`

type part struct {
	name, content string
}

func buildDocx(t *testing.T, parts ...part) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readParts(t *testing.T, content []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = string(b)
	}
	return parts
}

func letterDocx(t *testing.T) []byte {
	return buildDocx(t,
		part{"[Content_Types].xml", `<?xml version="1.0"?><Types/>`},
		part{"word/document.xml", body(
			para(run("To: "), marker("Text", "//to")),
			para(marker("If", "//vip")),
			para(run("Priority")),
			para(marker("EndIf", "")),
		)},
		part{"word/header1.xml", `<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			para(run("For "), marker("Text", "//to")) + `</w:hdr>`},
		part{"word/styles.xml", stylesPart},
	)
}

func TestRenderDocx(t *testing.T) {
	template := letterDocx(t)
	e, logs := testEngine(nil)

	var out bytes.Buffer
	require.NoError(t, e.RenderDocx(bytes.NewReader(template), int64(len(template)), strings.NewReader(letterData), &out))

	parts := readParts(t, out.Bytes())
	require.Len(t, parts, 4)
	assert.Equal(t, stylesPart, parts["word/styles.xml"])
	assert.Equal(t, `<?xml version="1.0"?><Types/>`, parts["[Content_Types].xml"])

	doc, err := xml.ParseString(parts["word/document.xml"])
	require.NoError(t, err)
	assert.Equal(t, []string{"To: Grace", "", "Priority", ""}, paragraphTexts(doc))
	assert.Empty(t, remainingMarkers(doc))

	assert.Contains(t, parts["word/header1.xml"], "<w:t>Grace</w:t>")
	assert.NotContains(t, parts["word/header1.xml"], "w:sdt")

	assert.Contains(t, logs.String(), "part=word/header1.xml")
}

func TestRenderDocxKeepsPartOrder(t *testing.T) {
	template := letterDocx(t)
	e, _ := testEngine(nil)

	var out bytes.Buffer
	require.NoError(t, e.RenderDocx(bytes.NewReader(template), int64(len(template)), nil, &out))

	dr, err := NewDocxReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	assert.Equal(t, []string{"[Content_Types].xml", "word/document.xml", "word/header1.xml", "word/styles.xml"}, dr.ListParts())
	assert.Equal(t, []string{"word/document.xml", "word/header1.xml"}, dr.TemplateParts())
}

func TestRenderDocxErrors(t *testing.T) {
	e, _ := testEngine(nil)
	var out bytes.Buffer

	notZip := []byte("plain text")
	err := e.RenderDocx(bytes.NewReader(notZip), int64(len(notZip)), nil, &out)
	assert.True(t, IsDocumentError(err))

	noDocument := buildDocx(t, part{"word/styles.xml", stylesPart})
	err = e.RenderDocx(bytes.NewReader(noDocument), int64(len(noDocument)), nil, &out)
	assert.True(t, IsDocumentError(err))
	assert.Contains(t, err.Error(), mainDocumentPart)

	malformed := buildDocx(t, part{"word/document.xml", body(para(marker("Table", "//rows")))})
	err = e.RenderDocx(bytes.NewReader(malformed), int64(len(malformed)), nil, &out)
	assert.True(t, IsMalformedTemplate(err))
	assert.Contains(t, err.Error(), "part=word/document.xml")
}

func TestRenderDocxFile(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "letter.docx")
	dataPath := filepath.Join(dir, "letter.xml")
	outPath := filepath.Join(dir, "out.docx")
	require.NoError(t, os.WriteFile(templatePath, letterDocx(t), 0o644))
	require.NoError(t, os.WriteFile(dataPath, []byte(letterData), 0o644))

	e, _ := testEngine(nil)
	require.NoError(t, e.RenderDocxFile(templatePath, dataPath, outPath))

	dr, err := DocxReaderFromFile(outPath)
	require.NoError(t, err)
	content, err := dr.GetPart(mainDocumentPart)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<w:t>Grace</w:t>")

	_, err = dr.GetPart("word/missing.xml")
	assert.Error(t, err)

	err = e.RenderDocxFile(filepath.Join(dir, "missing.docx"), dataPath, outPath)
	assert.True(t, IsDocumentError(err))
}

func TestIsTemplatePart(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"word/document.xml", true},
		{"word/header1.xml", true},
		{"word/footer3.xml", true},
		{"word/styles.xml", false},
		{"word/_rels/header1.xml.rels", false},
		{"customXml/header1.xml", false},
		{"word/footnotes.xml", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isTemplatePart(tt.name), tt.name)
	}
}
