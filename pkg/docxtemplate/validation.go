package docxtemplate

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

const validationParserVersion = "v1"

var (
	headerPartPattern = regexp.MustCompile(`^word/header(\d+)\.xml$`)
	footerPartPattern = regexp.MustCompile(`^word/footer(\d+)\.xml$`)
)

// IssueSeverity indicates template issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode classifies template issues.
type IssueCode string

const (
	IssueCodeMalformedTemplate IssueCode = "MALFORMED_TEMPLATE"
	IssueCodeUnknownTag        IssueCode = "UNKNOWN_TAG"
)

// ValidateTemplateInput controls template validation.
type ValidateTemplateInput struct {
	DocxBytes          []byte `json:"-"`
	TemplateRevisionID string `json:"templateRevisionId,omitempty"`
	MaxIssues          int    `json:"maxIssues,omitempty"` // 0 = unlimited
}

// ExtractReferencesInput controls reference extraction.
type ExtractReferencesInput struct {
	DocxBytes          []byte `json:"-"`
	TemplateRevisionID string `json:"templateRevisionId,omitempty"`
}

// TemplateLocation identifies a marker in a DOCX part.
type TemplateLocation struct {
	Part string `json:"part"`
	// ParagraphIndex is the index of the enclosing paragraph in the part, or -1
	// for a marker standing between paragraphs.
	ParagraphIndex int    `json:"paragraphIndex"`
	MarkerOrdinal  int    `json:"markerOrdinal"`
	AnchorID       string `json:"anchorId,omitempty"`
}

// TemplateReference is one binding expression carried by a marker.
type TemplateReference struct {
	Tag        string           `json:"tag"`
	Expression string           `json:"expression"`
	Location   TemplateLocation `json:"location"`
}

// TemplateIssue is a problem found without rendering.
type TemplateIssue struct {
	ID          string           `json:"id"`
	Severity    IssueSeverity    `json:"severity"`
	Code        IssueCode        `json:"code"`
	Message     string           `json:"message"`
	Tag         string           `json:"tag,omitempty"`
	Location    TemplateLocation `json:"location"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// TemplateValidationSummary contains validation counters.
type TemplateValidationSummary struct {
	CheckedMarkers     int `json:"checkedMarkers"`
	ErrorCount         int `json:"errorCount"`
	WarningCount       int `json:"warningCount"`
	ReturnedIssueCount int `json:"returnedIssueCount"`
}

// TemplateMetadata identifies the checked package and parser.
type TemplateMetadata struct {
	DocumentHash       string `json:"documentHash"`
	TemplateRevisionID string `json:"templateRevisionId,omitempty"`
	ParserVersion      string `json:"parserVersion"`
}

// ValidateTemplateResult contains validation output.
type ValidateTemplateResult struct {
	Valid           bool                      `json:"valid"`
	Summary         TemplateValidationSummary `json:"summary"`
	Issues          []TemplateIssue           `json:"issues"`
	IssuesTruncated bool                      `json:"issuesTruncated"`
	Metadata        TemplateMetadata          `json:"metadata"`
}

// ExtractReferencesResult lists the binding expressions of a template.
type ExtractReferencesResult struct {
	References []TemplateReference `json:"references"`
	Metadata   TemplateMetadata    `json:"metadata"`
}

// templatePart is one parsed template part with its marker locations.
type templatePart struct {
	name      string
	doc       *xml.Document
	markers   []xml.NodeID
	locations map[xml.NodeID]TemplateLocation
}

// ValidateTemplate parses every template part of a DOCX package and reports
// malformed directives and unknown markers. Nothing is rendered. Parsing of a
// part stops at its first malformed directive.
func (e *Engine) ValidateTemplate(input ValidateTemplateInput) (ValidateTemplateResult, error) {
	if len(input.DocxBytes) == 0 {
		return ValidateTemplateResult{}, fmt.Errorf("docx bytes are required")
	}
	if input.MaxIssues < 0 {
		return ValidateTemplateResult{}, fmt.Errorf("maxIssues must be >= 0")
	}

	parts, err := loadTemplateParts(input.DocxBytes)
	if err != nil {
		return ValidateTemplateResult{}, err
	}

	var issues []TemplateIssue
	checked := 0
	for _, part := range parts {
		checked += len(part.markers)
		issues = append(issues, e.validatePart(part)...)
	}
	sortTemplateIssues(issues)

	errorCount, warningCount := 0, 0
	for i := range issues {
		issues[i].ID = fmt.Sprintf("iss_%03d", i+1)
		if issues[i].Severity == IssueSeverityError {
			errorCount++
		} else {
			warningCount++
		}
	}

	returned := issues
	truncated := false
	if input.MaxIssues > 0 && len(issues) > input.MaxIssues {
		returned = issues[:input.MaxIssues]
		truncated = true
	}

	return ValidateTemplateResult{
		Valid: errorCount == 0,
		Summary: TemplateValidationSummary{
			CheckedMarkers:     checked,
			ErrorCount:         errorCount,
			WarningCount:       warningCount,
			ReturnedIssueCount: len(returned),
		},
		Issues:          returned,
		IssuesTruncated: truncated,
		Metadata:        newTemplateMetadata(input.DocxBytes, input.TemplateRevisionID),
	}, nil
}

func (e *Engine) validatePart(part templatePart) []TemplateIssue {
	var issues []TemplateIssue

	p := newGeneralParser(part.doc, e.registeredParsers(), e.logger, e.format, e.config.MaxNestingDepth)
	p.unknown = func(marker xml.NodeID, name, suggestion string) {
		issue := TemplateIssue{
			Severity: IssueSeverityWarning,
			Code:     IssueCodeUnknownTag,
			Message:  fmt.Sprintf("unknown tag %q is skipped", name),
			Tag:      name,
			Location: part.location(marker),
		}
		if suggestion != "" {
			issue.Suggestions = []string{suggestion}
		}
		issues = append(issues, issue)
	}

	if _, err := p.parse(); err != nil {
		issue := TemplateIssue{
			Severity: IssueSeverityError,
			Code:     IssueCodeMalformedTemplate,
			Message:  err.Error(),
			Location: part.location(p.failedAt),
		}
		var malformed *MalformedTemplateError
		if errors.As(err, &malformed) {
			issue.Message = malformed.Message
			issue.Tag = malformed.Tag
		}
		issues = append(issues, issue)
	}
	return issues
}

// ExtractReferences lists every non-empty binding expression carried by the
// markers of the template parts, in package and document order.
func (e *Engine) ExtractReferences(input ExtractReferencesInput) (ExtractReferencesResult, error) {
	if len(input.DocxBytes) == 0 {
		return ExtractReferencesResult{}, fmt.Errorf("docx bytes are required")
	}

	parts, err := loadTemplateParts(input.DocxBytes)
	if err != nil {
		return ExtractReferencesResult{}, err
	}

	references := make([]TemplateReference, 0)
	for _, part := range parts {
		for _, marker := range part.markers {
			expr := render.Expression(part.doc, marker)
			if expr == "" {
				continue
			}
			name := render.TagName(part.doc, marker)
			if kind := DirectiveKindOf(name); kind != KindUnknown {
				name = kind.String()
			}
			references = append(references, TemplateReference{
				Tag:        name,
				Expression: expr,
				Location:   part.location(marker),
			})
		}
	}

	return ExtractReferencesResult{
		References: references,
		Metadata:   newTemplateMetadata(input.DocxBytes, input.TemplateRevisionID),
	}, nil
}

// loadTemplateParts parses the template parts in validation order and numbers
// their markers across the package.
func loadTemplateParts(docxBytes []byte) ([]templatePart, error) {
	dr, err := NewDocxReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return nil, NewDocumentError("open", "docx", err)
	}

	var parts []templatePart
	ordinal := 0
	for _, name := range validationPartOrder(dr.TemplateParts()) {
		content, err := dr.GetPart(name)
		if err != nil {
			return nil, NewDocumentError("read", name, err)
		}
		doc, err := xml.Parse(bytes.NewReader(content))
		if err != nil {
			return nil, NewDocumentError("parse", name, err)
		}

		part := templatePart{
			name:      name,
			doc:       doc,
			markers:   render.TagElements(doc, doc.Root()),
			locations: make(map[xml.NodeID]TemplateLocation),
		}
		paragraphs := paragraphIndexes(doc)
		for _, marker := range part.markers {
			loc := TemplateLocation{
				Part:           name,
				ParagraphIndex: enclosingParagraph(doc, marker, paragraphs),
				MarkerOrdinal:  ordinal,
			}
			loc.AnchorID = buildAnchorID(loc, render.TagName(doc, marker))
			part.locations[marker] = loc
			ordinal++
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (p templatePart) location(marker xml.NodeID) TemplateLocation {
	if loc, ok := p.locations[marker]; ok {
		return loc
	}
	return TemplateLocation{Part: p.name, ParagraphIndex: -1, MarkerOrdinal: -1}
}

// validationPartOrder puts the main document first, then headers and footers
// by their number.
func validationPartOrder(partNames []string) []string {
	type orderedPart struct {
		Name  string
		Index int
	}
	var headers, footers []orderedPart
	ordered := make([]string, 0, len(partNames))

	for _, partName := range partNames {
		if partName == mainDocumentPart {
			ordered = append(ordered, partName)
			continue
		}
		if matches := headerPartPattern.FindStringSubmatch(partName); len(matches) == 2 {
			if idx, err := strconv.Atoi(matches[1]); err == nil {
				headers = append(headers, orderedPart{Name: partName, Index: idx})
			}
			continue
		}
		if matches := footerPartPattern.FindStringSubmatch(partName); len(matches) == 2 {
			if idx, err := strconv.Atoi(matches[1]); err == nil {
				footers = append(footers, orderedPart{Name: partName, Index: idx})
			}
		}
	}

	for _, group := range [][]orderedPart{headers, footers} {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Index == group[j].Index {
				return group[i].Name < group[j].Name
			}
			return group[i].Index < group[j].Index
		})
		for _, p := range group {
			ordered = append(ordered, p.Name)
		}
	}
	return ordered
}

// paragraphIndexes numbers the w:p elements of doc in document order.
func paragraphIndexes(doc *xml.Document) map[xml.NodeID]int {
	out := make(map[xml.NodeID]int)
	for _, id := range doc.Descendants(doc.Root()) {
		if doc.LocalName(id) == "p" {
			out[id] = len(out)
		}
	}
	return out
}

func enclosingParagraph(doc *xml.Document, marker xml.NodeID, paragraphs map[xml.NodeID]int) int {
	for p := doc.Parent(marker); p != xml.None; p = doc.Parent(p) {
		if idx, ok := paragraphs[p]; ok {
			return idx
		}
	}
	return -1
}

func buildAnchorID(loc TemplateLocation, tag string) string {
	seed := strings.Join([]string{
		loc.Part,
		strconv.Itoa(loc.ParagraphIndex),
		strconv.Itoa(loc.MarkerOrdinal),
		tag,
	}, "|")

	sum := sha256.Sum256([]byte(seed))
	return "anchor_" + hex.EncodeToString(sum[:8])
}

func newTemplateMetadata(docxBytes []byte, templateRevisionID string) TemplateMetadata {
	sum := sha256.Sum256(docxBytes)
	return TemplateMetadata{
		DocumentHash:       "sha256:" + hex.EncodeToString(sum[:]),
		TemplateRevisionID: templateRevisionID,
		ParserVersion:      validationParserVersion,
	}
}

// sortTemplateIssues orders issues by marker; ordinals run across the package.
func sortTemplateIssues(issues []TemplateIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		left, right := issues[i], issues[j]
		if left.Location.MarkerOrdinal != right.Location.MarkerOrdinal {
			return left.Location.MarkerOrdinal < right.Location.MarkerOrdinal
		}
		return left.Code < right.Code
	})
}
