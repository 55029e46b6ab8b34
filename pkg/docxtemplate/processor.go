package docxtemplate

import (
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
)

// Processor executes one parsed directive. Processors form a tree mirroring
// the nesting of directives in the template.
type Processor interface {
	// Process mutates the document for this directive and its children.
	Process() error
	// AddProcessor appends a nested directive.
	AddProcessor(child Processor)
	// Processors returns the nested directives in document order.
	Processors() []Processor
	// DataReader returns the scope the directive evaluates against.
	DataReader() data.Scope
	// SetDataReader binds the scope the directive evaluates against.
	SetDataReader(scope data.Scope)
}

// BaseProcessor carries the children and data binding shared by all
// processors. Custom processors embed it.
type BaseProcessor struct {
	children []Processor
	reader   data.Scope
}

func (p *BaseProcessor) AddProcessor(child Processor) {
	p.children = append(p.children, child)
}

func (p *BaseProcessor) Processors() []Processor {
	return p.children
}

func (p *BaseProcessor) DataReader() data.Scope {
	return p.reader
}

func (p *BaseProcessor) SetDataReader(scope data.Scope) {
	p.reader = scope
}

// ProcessChildren binds every child to this processor's scope and executes
// them in document order, stopping at the first error.
func (p *BaseProcessor) ProcessChildren() error {
	for _, child := range p.children {
		child.SetDataReader(p.reader)
		if err := child.Process(); err != nil {
			return err
		}
	}
	return nil
}

// RootProcessor is the top of the processor tree. It only runs its children.
type RootProcessor struct {
	BaseProcessor
}

func (p *RootProcessor) Process() error {
	return p.ProcessChildren()
}

// countProcessors returns the number of processors below p, p excluded.
func countProcessors(p Processor) int {
	n := 0
	for _, child := range p.Processors() {
		n += 1 + countProcessors(child)
	}
	return n
}
