package docxtemplate

import (
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

func (p *generalParser) parseText(parent Processor, marker xml.NodeID) (xml.NodeID, error) {
	expr := render.Expression(p.doc, marker)
	if expr == "" {
		return xml.None, tagNotFoundOrEmpty(TagText)
	}
	parent.AddProcessor(&TextProcessor{Tag: &TextTag{Doc: p.doc, Expression: expr, Marker: marker}})
	return marker, nil
}

// TextProcessor replaces a Text marker with the value of its expression.
type TextProcessor struct {
	BaseProcessor
	Tag *TextTag
}

func (p *TextProcessor) Process() error {
	mustBeConfigured(p.Tag != nil, TagText, "a tag")
	mustBeConfigured(p.DataReader() != nil, TagText, "a data reader")

	text, err := p.DataReader().ReadText(p.Tag.Expression)
	if err != nil {
		return WithContext(err, "text", map[string]interface{}{"expression": p.Tag.Expression})
	}
	render.ReplaceWithText(p.Tag.Doc, p.Tag.Marker, text)
	return nil
}
