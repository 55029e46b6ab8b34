package docxtemplate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// ParserFunc parses a custom directive starting at start. It must register
// its processor with parent and return the last marker of the directive; the
// walk resumes after it.
type ParserFunc func(ctx *ParseContext, parent Processor, start xml.NodeID) (xml.NodeID, error)

// ParseContext exposes the parse walk to custom parsers.
type ParseContext struct {
	p *generalParser
}

// Document returns the document being parsed.
func (c *ParseContext) Document() *xml.Document {
	return c.p.doc
}

// Logger returns the engine logger.
func (c *ParseContext) Logger() *Logger {
	return c.p.logger
}

// Expression returns the bound expression of a marker.
func (c *ParseContext) Expression(marker xml.NodeID) string {
	return render.Expression(c.p.doc, marker)
}

// FindMatchingEnd returns the close marker balancing start.
func (c *ParseContext) FindMatchingEnd(start xml.NodeID, open, close string) (xml.NodeID, error) {
	end, err := render.FindMatchingEnd(c.p.doc, start, open, close)
	if err != nil {
		return xml.None, tagNotFoundOrEmpty(close)
	}
	return end, nil
}

// ParseBetween discovers the directives strictly between start and end and
// registers them with parent.
func (c *ParseContext) ParseBetween(parent Processor, start, end xml.NodeID) error {
	return c.p.nested(func() error {
		return c.p.goDeeper(parent, render.NextElementWithUpTransition(c.p.doc, start), end)
	})
}

// generalParser walks the document once, dispatching every marker to the
// parser of its kind. Nothing is mutated while parsing.
type generalParser struct {
	doc       *xml.Document
	parsers   map[string]ParserFunc
	logger    *Logger
	format    IndexFormatter
	maxDepth  int
	depth     int
	itemScope int
	// failedAt is the marker the first parse error was raised at.
	failedAt xml.NodeID
	// unknown, when set, is told about every unregistered marker name.
	unknown func(marker xml.NodeID, name, suggestion string)
}

func newGeneralParser(doc *xml.Document, parsers map[string]ParserFunc, logger *Logger, format IndexFormatter, maxDepth int) *generalParser {
	if logger == nil {
		logger = GetLogger()
	}
	return &generalParser{
		doc:      doc,
		parsers:  parsers,
		logger:   logger,
		format:   format,
		maxDepth: maxDepth,
		failedAt: xml.None,
	}
}

// parse builds the processor tree of the whole document.
func (p *generalParser) parse() (*RootProcessor, error) {
	root := &RootProcessor{}
	if err := p.goDeeper(root, p.doc.Root(), xml.None); err != nil {
		return nil, err
	}
	return root, nil
}

// nested runs fn one directive level deeper.
func (p *generalParser) nested(fn func() error) error {
	p.depth++
	defer func() { p.depth-- }()
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		return NewMalformedTemplateError("", fmt.Sprintf("directives nested deeper than %d levels", p.maxDepth))
	}
	return fn()
}

// itemContent runs fn over the content span of a Table or Repeater, where
// item placeholders are left to the enclosing directive.
func (p *generalParser) itemContent(fn func() error) error {
	p.itemScope++
	defer func() { p.itemScope-- }()
	return p.nested(fn)
}

// goDeeper walks document order from first and dispatches every marker met.
// It stops at end; when end is None it runs to the end of the document.
// A nested directive whose end lies past end is crossing and rejected.
func (p *generalParser) goDeeper(parent Processor, first, end xml.NodeID) error {
	cur := first
	for cur != xml.None {
		if cur == end {
			return nil
		}
		if !render.IsSdt(p.doc, cur) {
			cur = render.NextInDocumentOrder(p.doc, cur)
			continue
		}
		last, err := p.parseSdt(parent, cur)
		if err != nil {
			return p.fail(cur, err)
		}
		if end != xml.None && last != cur && !render.IsBefore(p.doc, last, end) {
			return p.fail(cur, NewMalformedTemplateError(render.TagName(p.doc, cur), "crosses the end of the enclosing directive"))
		}
		cur = render.NextElementWithUpTransition(p.doc, last)
	}
	if end != xml.None {
		return p.fail(end, NewMalformedTemplateError(render.TagName(p.doc, end), "end of the enclosing directive not reached"))
	}
	return nil
}

// fail records the innermost marker an error was raised at.
func (p *generalParser) fail(at xml.NodeID, err error) error {
	if p.failedAt == xml.None {
		p.failedAt = at
	}
	return err
}

// parseSdt dispatches one marker and returns the marker the walk resumes after.
func (p *generalParser) parseSdt(parent Processor, marker xml.NodeID) (xml.NodeID, error) {
	name := render.TagName(p.doc, marker)
	switch kind := DirectiveKindOf(name); kind {
	case KindIf:
		return p.parseIf(parent, marker)
	case KindTable:
		return p.parseTable(parent, marker)
	case KindRepeater:
		return p.parseRepeater(parent, marker)
	case KindText:
		return p.parseText(parent, marker)
	case KindItem, KindItemIndex, KindItemIf, KindEndItemIf:
		if p.itemScope > 0 {
			return marker, nil
		}
		return xml.None, NewMalformedTemplateError(kind.String(), "found outside of a Table or Repeater content")
	case KindEndIf, KindEndTable, KindEndRepeater, KindEndContent:
		return xml.None, NewMalformedTemplateError(kind.String(), "found without a matching start tag")
	case KindItems, KindContent, KindDynamicRow:
		return xml.None, NewMalformedTemplateError(kind.String(), "found outside of a Table or Repeater")
	default:
		return p.parseCustom(parent, marker, name)
	}
}

func (p *generalParser) parseCustom(parent Processor, marker xml.NodeID, name string) (xml.NodeID, error) {
	if fn, ok := p.parsers[strings.ToLower(name)]; ok {
		p.logger.WithField("tag", name).Debug("parsing custom directive")
		var last xml.NodeID
		err := p.nested(func() error {
			var err error
			last, err = fn(&ParseContext{p: p}, parent, marker)
			return err
		})
		if err != nil {
			return xml.None, err
		}
		if last == xml.None {
			last = marker
		}
		return last, nil
	}

	if name == "" {
		p.logger.Debug("skipping content control without tag")
		return marker, nil
	}
	suggestion := suggestTagName(name, p.knownNames())
	if suggestion != "" {
		p.logger.WithField("tag", name).Warn("unknown tag skipped, did you mean %q?", suggestion)
	} else {
		p.logger.WithField("tag", name).Warn("unknown tag skipped")
	}
	if p.unknown != nil {
		p.unknown(marker, name, suggestion)
	}
	return marker, nil
}

func (p *generalParser) knownNames() []string {
	names := builtinTagNames()
	for name := range p.parsers {
		names = append(names, name)
	}
	return names
}

// suggestTagName returns the known name closest to name, or "" when nothing is close.
func suggestTagName(name string, candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	ranks := fuzzy.RankFindFold(name, sorted)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", 3
	lower := strings.ToLower(name)
	for _, candidate := range sorted {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate)); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// itemsSource resolves the items expression of a Table or Repeater starting
// at start: the first non-empty Items marker before content, otherwise the
// start marker's own expression.
func (p *generalParser) itemsSource(start, content xml.NodeID) string {
	for _, items := range render.TagElementsBetween(p.doc, start, content, TagItems) {
		if expr := render.Expression(p.doc, items); expr != "" {
			return expr
		}
	}
	return render.Expression(p.doc, start)
}

// contentSpan finds the Content/EndContent pair of the directive spanning
// start..end.
func (p *generalParser) contentSpan(start, end xml.NodeID) (xml.NodeID, xml.NodeID, error) {
	contents := render.TagElementsBetween(p.doc, start, end, TagContent)
	if len(contents) == 0 {
		return xml.None, xml.None, tagNotFoundOrEmpty(TagContent)
	}
	content := contents[0]
	endContent, err := render.FindMatchingEnd(p.doc, content, TagContent, TagEndContent)
	if err != nil || !render.IsBefore(p.doc, endContent, end) {
		return xml.None, xml.None, tagNotFoundOrEmpty(TagEndContent)
	}
	return content, endContent, nil
}
