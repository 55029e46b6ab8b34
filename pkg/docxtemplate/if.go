package docxtemplate

import (
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

func (p *generalParser) parseIf(parent Processor, start xml.NodeID) (xml.NodeID, error) {
	if !render.IsTag(p.doc, start, TagIf) {
		return xml.None, NewMalformedTemplateError(TagIf, "start tag expected")
	}
	condition := render.Expression(p.doc, start)
	if condition == "" {
		return xml.None, tagNotFoundOrEmpty(TagIf)
	}
	end, err := render.FindMatchingEnd(p.doc, start, TagIf, TagEndIf)
	if err != nil {
		return xml.None, tagNotFoundOrEmpty(TagEndIf)
	}

	tag := &IfTag{
		Doc:       p.doc,
		Condition: condition,
		StartIf:   start,
		EndIf:     end,
		Content:   render.ElementsBetween(p.doc, start, end),
	}
	processor := &IfProcessor{Tag: tag}
	p.logger.WithField("condition", condition).Debug("parsed If")

	err = p.nested(func() error {
		return p.goDeeper(processor, render.NextElementWithUpTransition(p.doc, start), end)
	})
	if err != nil {
		return xml.None, err
	}
	parent.AddProcessor(processor)
	return end, nil
}

// IfProcessor keeps or drops the content of a conditional span.
type IfProcessor struct {
	BaseProcessor
	Tag *IfTag
}

// Process evaluates the condition. When it holds the nested directives run and
// only the markers are removed; otherwise the whole span goes, unexecuted.
func (p *IfProcessor) Process() error {
	mustBeConfigured(p.Tag != nil, TagIf, "a tag")
	mustBeConfigured(p.DataReader() != nil, TagIf, "a data reader")

	ok, err := evaluateCondition(p.DataReader(), p.Tag.Condition)
	if err != nil {
		return WithContext(err, "if", map[string]interface{}{"condition": p.Tag.Condition})
	}
	doc := p.Tag.Doc
	if !ok {
		render.CleanUp(doc, p.Tag.StartIf, p.Tag.EndIf)
		return nil
	}
	if err := p.ProcessChildren(); err != nil {
		return err
	}
	doc.Remove(p.Tag.StartIf)
	doc.Remove(p.Tag.EndIf)
	return nil
}
