package docxtemplate

import (
	"strconv"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// makeTableElements collects the placeholders of one table row.
func makeTableElements(doc *xml.Document, row xml.NodeID) ([]ItemElement, error) {
	return collectItemElements(doc, render.TagElements(doc, row))
}

func (p *generalParser) parseTable(parent Processor, start xml.NodeID) (xml.NodeID, error) {
	if !render.IsTag(p.doc, start, TagTable) {
		return xml.None, NewMalformedTemplateError(TagTable, "start tag expected")
	}
	end, err := render.FindMatchingEnd(p.doc, start, TagTable, TagEndTable)
	if err != nil {
		return xml.None, tagNotFoundOrEmpty(TagEndTable)
	}
	content, endContent, err := p.contentSpan(start, end)
	if err != nil {
		return xml.None, err
	}
	source := p.itemsSource(start, content)
	if source == "" {
		return xml.None, tagNotFoundOrEmpty(TagItems)
	}

	tag := &TableTag{
		Doc:               p.doc,
		TagTable:          start,
		TagEndTable:       end,
		TagContent:        content,
		TagEndContent:     endContent,
		ItemsSource:       source,
		Table:             xml.None,
		MakeTableElements: makeTableElements,
	}

	if rows := render.TagElementsBetween(p.doc, start, content, TagDynamicRow); len(rows) > 0 {
		if n, err := strconv.Atoi(render.Expression(p.doc, rows[0])); err == nil {
			tag.DynamicRow = &n
		}
	}

	for _, id := range render.ElementsBetween(p.doc, content, endContent) {
		if p.doc.IsElement(id) && p.doc.LocalName(id) == "tbl" {
			tag.Table = id
			break
		}
	}

	placeholders, err := collectItemElements(p.doc, render.TagElementsBetween(p.doc, content, endContent))
	if err != nil {
		return xml.None, err
	}
	tag.Placeholders = placeholders

	processor := &TableProcessor{Tag: tag, IndexFormatter: p.format, Logger: p.logger}
	p.logger.WithFields(Fields{"items": source, "placeholders": len(placeholders)}).Debug("parsed Table")

	err = p.itemContent(func() error {
		return p.goDeeper(processor, render.NextElementWithUpTransition(p.doc, content), endContent)
	})
	if err != nil {
		return xml.None, err
	}
	parent.AddProcessor(processor)
	return end, nil
}

// TableProcessor repeats the template rows of a table once per data item.
type TableProcessor struct {
	BaseProcessor
	Tag            *TableTag
	IndexFormatter IndexFormatter
	Logger         *Logger
}

func (p *TableProcessor) logger() *Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return GetLogger()
}

// Process runs the nested directives, then emits the template rows once per
// item after the last template row, removes the templates and collapses the
// Table..Content and EndContent..EndTable marker spans.
func (p *TableProcessor) Process() error {
	mustBeConfigured(p.Tag != nil, TagTable, "a tag")
	mustBeConfigured(p.DataReader() != nil, TagTable, "a data reader")

	if err := p.ProcessChildren(); err != nil {
		return err
	}

	tag := p.Tag
	doc := tag.Doc
	readers, err := p.DataReader().Children(tag.ItemsSource)
	if err != nil {
		return WithContext(err, "table", map[string]interface{}{"items": tag.ItemsSource})
	}
	readers = data.DefaultIfEmpty(readers)

	if tag.Table == xml.None {
		p.logger().WithField("items", tag.ItemsSource).Warn("table content holds no table, no rows generated")
	} else if err := p.expandRows(readers); err != nil {
		return err
	}

	render.CleanUp(doc, tag.TagTable, tag.TagContent)
	render.CleanUp(doc, tag.TagEndContent, tag.TagEndTable)
	return nil
}

func (p *TableProcessor) expandRows(readers []data.Scope) error {
	doc := p.Tag.Doc
	templates := p.templateRows()
	if len(templates) == 0 {
		return nil
	}
	makeElements := p.Tag.MakeTableElements
	if makeElements == nil {
		makeElements = makeTableElements
	}

	previous := templates[len(templates)-1]
	for i, reader := range readers {
		for _, row := range templates {
			clone := doc.Clone(row)
			doc.InsertAfter(previous, clone)
			previous = clone

			elements, err := makeElements(doc, clone)
			if err != nil {
				return err
			}
			if err := processItemElements(doc, elements, reader, i+1, p.IndexFormatter); err != nil {
				return WithContext(err, "table", map[string]interface{}{"items": p.Tag.ItemsSource})
			}
		}
	}
	for _, row := range templates {
		doc.Remove(row)
	}
	p.logger().WithFields(Fields{"items": len(readers), "rows": len(templates)}).Debug("expanded table")
	return nil
}

// templateRows picks the rows repeated per item: the DynamicRow when it is in
// range, otherwise the contiguous block from the first to the last row holding
// placeholders, otherwise the first row.
func (p *TableProcessor) templateRows() []xml.NodeID {
	doc := p.Tag.Doc
	rows := doc.ChildElements(p.Tag.Table, "tr")
	if len(rows) == 0 {
		return nil
	}
	if dr := p.Tag.DynamicRow; dr != nil && *dr >= 1 && *dr <= len(rows) {
		return []xml.NodeID{rows[*dr-1]}
	}
	markers := placeholderMarkers(p.Tag.Placeholders)
	if p.Tag.Placeholders == nil {
		markers = render.TagElements(doc, p.Tag.Table, TagItem, TagItemIndex, TagItemIf, TagEndItemIf)
	}
	first, last := -1, -1
	for i, row := range rows {
		for _, m := range markers {
			if render.IsAncestor(doc, row, m) {
				if first < 0 {
					first = i
				}
				last = i
				break
			}
		}
	}
	if first < 0 {
		return rows[:1]
	}
	return rows[first : last+1]
}
