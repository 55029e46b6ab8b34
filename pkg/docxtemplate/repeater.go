package docxtemplate

import (
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// makeRepeaterElement snapshots the subtree at id. Item and ItemIndex markers
// become placeholders; everything else, ItemIf markers included, is copied.
func makeRepeaterElement(doc *xml.Document, id xml.NodeID) RepeaterElement {
	switch {
	case doc.Kind(id) == xml.TextNode:
		return RepeaterElement{Kind: RepeaterText, Node: id, Value: doc.Text(id)}
	case render.IsTag(doc, id, TagItemIndex):
		return RepeaterElement{Kind: RepeaterIndex, Node: id}
	case render.IsTag(doc, id, TagItem):
		return RepeaterElement{Kind: RepeaterItem, Node: id, Expression: render.Expression(doc, id)}
	}
	el := RepeaterElement{Kind: RepeaterPlain, Node: id}
	for _, child := range doc.Children(id) {
		el.Elements = append(el.Elements, makeRepeaterElement(doc, child))
	}
	return el
}

func (p *generalParser) parseRepeater(parent Processor, start xml.NodeID) (xml.NodeID, error) {
	if !render.IsTag(p.doc, start, TagRepeater) {
		return xml.None, NewMalformedTemplateError(TagRepeater, "start tag expected")
	}
	end, err := render.FindMatchingEnd(p.doc, start, TagRepeater, TagEndRepeater)
	if err != nil {
		return xml.None, tagNotFoundOrEmpty(TagEndRepeater)
	}
	content, endContent, err := p.contentSpan(start, end)
	if err != nil {
		return xml.None, err
	}
	source := p.itemsSource(start, content)
	if source == "" {
		return xml.None, tagNotFoundOrEmpty(TagItems)
	}
	placeholders, err := collectItemElements(p.doc, render.TagElementsBetween(p.doc, content, endContent))
	if err != nil {
		return xml.None, err
	}

	tag := &RepeaterTag{
		Doc:           p.doc,
		StartRepeater: start,
		EndRepeater:   end,
		StartContent:  content,
		EndContent:    endContent,
		Source:        source,
		Placeholders:  placeholders,
		MakeElement:   makeRepeaterElement,
	}
	processor := &RepeaterProcessor{Tag: tag, IndexFormatter: p.format}
	p.logger.WithFields(Fields{"items": source, "placeholders": len(placeholders)}).Debug("parsed Repeater")

	err = p.itemContent(func() error {
		return p.goDeeper(processor, render.NextElementWithUpTransition(p.doc, content), endContent)
	})
	if err != nil {
		return xml.None, err
	}
	parent.AddProcessor(processor)
	return end, nil
}

// RepeaterProcessor repeats an arbitrary content block once per data item.
type RepeaterProcessor struct {
	BaseProcessor
	Tag            *RepeaterTag
	IndexFormatter IndexFormatter
}

// Process snapshots the content span, materialises it once per item in
// sequence, removes the template nodes and collapses both marker spans.
func (p *RepeaterProcessor) Process() error {
	mustBeConfigured(p.Tag != nil, TagRepeater, "a tag")
	mustBeConfigured(p.DataReader() != nil, TagRepeater, "a data reader")

	if err := p.ProcessChildren(); err != nil {
		return err
	}

	tag := p.Tag
	doc := tag.Doc
	readers, err := p.DataReader().Children(tag.Source)
	if err != nil {
		return WithContext(err, "repeater", map[string]interface{}{"items": tag.Source})
	}
	readers = data.DefaultIfEmpty(readers)

	makeElement := tag.MakeElement
	if makeElement == nil {
		makeElement = makeRepeaterElement
	}
	var elements []RepeaterElement
	for _, id := range render.ElementsBetween(doc, tag.StartContent, tag.EndContent) {
		elements = append(elements, makeElement(doc, id))
	}

	if len(elements) > 0 {
		// Every pass lands in front of the template, after the previous pass.
		before := elements[0].Node
		for i, reader := range readers {
			generated := make([]xml.NodeID, 0, len(elements))
			for _, el := range elements {
				node := p.materialize(el)
				doc.InsertBefore(before, node)
				generated = append(generated, node)
			}
			if err := p.processPass(generated, reader, i+1); err != nil {
				return err
			}
		}
		for _, el := range elements {
			doc.Remove(el.Node)
		}
	}

	render.CleanUp(doc, tag.StartRepeater, tag.StartContent)
	render.CleanUp(doc, tag.EndContent, tag.EndRepeater)
	return nil
}

// materialize builds a detached copy of el. Placeholders are copied as
// markers and substituted once the pass is in place.
func (p *RepeaterProcessor) materialize(el RepeaterElement) xml.NodeID {
	doc := p.Tag.Doc
	switch el.Kind {
	case RepeaterIndex, RepeaterItem:
		return doc.Clone(el.Node)
	case RepeaterText:
		return doc.CreateText(el.Value)
	}

	node := doc.ShallowClone(el.Node)
	for _, child := range el.Elements {
		doc.AppendChild(node, p.materialize(child))
	}
	return node
}

// processPass substitutes the placeholders copied into one pass. ItemIf
// spans are decided before anything inside them is evaluated.
func (p *RepeaterProcessor) processPass(generated []xml.NodeID, scope data.Scope, index int) error {
	if len(p.Tag.Placeholders) == 0 {
		return nil
	}
	doc := p.Tag.Doc
	elements, err := collectItemElements(doc, itemMarkers(doc, generated))
	if err != nil {
		return err
	}
	if err := processItemElements(doc, elements, scope, index, p.IndexFormatter); err != nil {
		return WithContext(err, "repeater", map[string]interface{}{"items": p.Tag.Source, "index": index})
	}
	return nil
}
