package docxtemplate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerXML(content ...string) string {
	return `<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		strings.Join(content, "") + `</w:hdr>`
}

func TestValidateTemplateValid(t *testing.T) {
	e, _ := testEngine(nil)

	result, err := e.ValidateTemplate(ValidateTemplateInput{DocxBytes: letterDocx(t), TemplateRevisionID: "rev-7"})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 4, result.Summary.CheckedMarkers)
	assert.Equal(t, "rev-7", result.Metadata.TemplateRevisionID)
	assert.Equal(t, validationParserVersion, result.Metadata.ParserVersion)
	assert.True(t, strings.HasPrefix(result.Metadata.DocumentHash, "sha256:"))
}

func TestValidateTemplateIssues(t *testing.T) {
	docx := buildDocx(t,
		part{"word/document.xml", body(
			para(marker("Iff", "//vip")),
			para(run("x")),
			para(marker("Table", "//rows/row")),
		)},
	)
	e, _ := testEngine(nil)

	result, err := e.ValidateTemplate(ValidateTemplateInput{DocxBytes: docx})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, 1, result.Summary.ErrorCount)
	assert.Equal(t, 1, result.Summary.WarningCount)
	require.Len(t, result.Issues, 2)

	unknown := result.Issues[0]
	assert.Equal(t, "iss_001", unknown.ID)
	assert.Equal(t, IssueSeverityWarning, unknown.Severity)
	assert.Equal(t, IssueCodeUnknownTag, unknown.Code)
	assert.Equal(t, "Iff", unknown.Tag)
	assert.Equal(t, []string{"If"}, unknown.Suggestions)
	assert.Equal(t, 0, unknown.Location.MarkerOrdinal)
	assert.Equal(t, 0, unknown.Location.ParagraphIndex)

	malformed := result.Issues[1]
	assert.Equal(t, "iss_002", malformed.ID)
	assert.Equal(t, IssueSeverityError, malformed.Severity)
	assert.Equal(t, IssueCodeMalformedTemplate, malformed.Code)
	assert.Equal(t, TagEndTable, malformed.Tag)
	assert.Equal(t, "tag not found or empty", malformed.Message)
	assert.Equal(t, mainDocumentPart, malformed.Location.Part)
	assert.Equal(t, 1, malformed.Location.MarkerOrdinal)
	assert.Equal(t, 2, malformed.Location.ParagraphIndex)
	assert.NotEmpty(t, malformed.Location.AnchorID)
}

func TestValidateTemplateLeavesOtherPartsChecked(t *testing.T) {
	docx := buildDocx(t,
		part{"word/document.xml", body(para(marker("EndIf", "")))},
		part{"word/footer1.xml", headerXML(para(marker("Item", "name")))},
	)
	e, _ := testEngine(nil)

	result, err := e.ValidateTemplate(ValidateTemplateInput{DocxBytes: docx})
	require.NoError(t, err)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, TagEndIf, result.Issues[0].Tag)
	assert.Equal(t, "word/footer1.xml", result.Issues[1].Location.Part)
	assert.Equal(t, TagItem, result.Issues[1].Tag)
}

func TestValidateTemplateMaxIssues(t *testing.T) {
	docx := buildDocx(t,
		part{"word/document.xml", body(
			para(marker("Iff", "")),
			para(marker("Tabel", "")),
			para(marker("Signature", "")),
		)},
	)
	e, _ := testEngine(nil)

	result, err := e.ValidateTemplate(ValidateTemplateInput{DocxBytes: docx, MaxIssues: 2})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.True(t, result.IssuesTruncated)
	assert.Equal(t, 3, result.Summary.WarningCount)
	assert.Equal(t, 2, result.Summary.ReturnedIssueCount)
	require.Len(t, result.Issues, 2)
	assert.Equal(t, []string{"Table"}, result.Issues[1].Suggestions)
}

func TestValidateTemplateErrors(t *testing.T) {
	e, _ := testEngine(nil)

	_, err := e.ValidateTemplate(ValidateTemplateInput{})
	assert.Error(t, err)

	_, err = e.ValidateTemplate(ValidateTemplateInput{DocxBytes: letterDocx(t), MaxIssues: -1})
	assert.Error(t, err)

	_, err = e.ValidateTemplate(ValidateTemplateInput{DocxBytes: []byte("plain text")})
	assert.True(t, IsDocumentError(err))

	broken := buildDocx(t, part{"word/document.xml", "<w:document>"})
	_, err = e.ExtractReferences(ExtractReferencesInput{DocxBytes: broken})
	assert.True(t, IsDocumentError(err))
	assert.Contains(t, err.Error(), mainDocumentPart)

	_, err = e.ExtractReferences(ExtractReferencesInput{})
	assert.Error(t, err)
}

func TestExtractReferences(t *testing.T) {
	docx := buildDocx(t,
		part{"word/header2.xml", headerXML(para(marker("Text", "//h2")))},
		part{"word/document.xml", body(
			para(marker("if", "//vip")),
			marker("Repeater", ""),
			marker("Items", "//people/person"),
			marker("Content", ""),
			para(marker("Item", "name")),
			marker("EndContent", ""),
			marker("EndRepeater", ""),
			para(marker("EndIf", "")),
		)},
		part{"word/header1.xml", headerXML(para(marker("Text", "//h1")))},
		part{"word/styles.xml", stylesPart},
	)
	e, _ := testEngine(nil)

	result, err := e.ExtractReferences(ExtractReferencesInput{DocxBytes: docx, TemplateRevisionID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "r1", result.Metadata.TemplateRevisionID)

	type ref struct {
		tag, expr, part    string
		ordinal, paragraph int
	}
	var got []ref
	for _, r := range result.References {
		got = append(got, ref{r.Tag, r.Expression, r.Location.Part, r.Location.MarkerOrdinal, r.Location.ParagraphIndex})
	}
	want := []ref{
		{"If", "//vip", mainDocumentPart, 0, 0},
		{"Items", "//people/person", mainDocumentPart, 2, -1},
		{"Item", "name", mainDocumentPart, 4, 1},
		{"Text", "//h1", "word/header1.xml", 8, 0},
		{"Text", "//h2", "word/header2.xml", 9, 0},
	}
	assert.Equal(t, want, got)
}

func TestValidationPartOrder(t *testing.T) {
	got := validationPartOrder([]string{
		"word/footer2.xml",
		"word/header10.xml",
		"word/document.xml",
		"word/header2.xml",
		"word/footer1.xml",
	})
	want := []string{
		"word/document.xml",
		"word/header2.xml",
		"word/header10.xml",
		"word/footer1.xml",
		"word/footer2.xml",
	}
	assert.Equal(t, want, got)
}
