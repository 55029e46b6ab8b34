package docxtemplate

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/data"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

// Engine parses and renders templates. Use New() to create a new engine instance.
// An Engine may render several documents concurrently; each render owns its
// document and data scope.
type Engine struct {
	config *Config
	logger *Logger
	format IndexFormatter

	mu      sync.RWMutex
	parsers map[string]ParserFunc
}

// New creates a new template engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new template engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	e := &Engine{
		config:  config,
		logger:  GetLogger(),
		parsers: make(map[string]ParserFunc),
	}
	format, err := NewIndexFormatter(config.Locale)
	if err != nil {
		e.logger.WithField("locale", config.Locale).Warn("invalid locale, falling back to plain digits")
	} else {
		e.format = format
	}
	return e
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// SetLogger replaces the logger used by this engine.
func (e *Engine) SetLogger(logger *Logger) {
	if logger == nil {
		logger = GetLogger()
	}
	e.logger = logger
}

// RegisterParser adds a parser for a custom directive name. Names are
// case-insensitive and cannot shadow the built-in directives.
func (e *Engine) RegisterParser(name string, fn ParserFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("parser name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("parser for %q cannot be nil", name)
	}
	if DirectiveKindOf(name) != KindUnknown {
		return fmt.Errorf("cannot override built-in tag %q", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.parsers[strings.ToLower(name)] = fn
	return nil
}

func (e *Engine) registeredParsers() map[string]ParserFunc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	parsers := make(map[string]ParserFunc, len(e.parsers))
	for name, fn := range e.parsers {
		parsers[name] = fn
	}
	return parsers
}

// Parse builds the processor tree for doc without modifying it. A malformed
// template fails here and leaves the document untouched.
func (e *Engine) Parse(doc *xml.Document) (*RootProcessor, error) {
	start := time.Now()
	p := newGeneralParser(doc, e.registeredParsers(), e.logger, e.format, e.config.MaxNestingDepth)
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	e.logger.WithFields(Fields{
		"directives": countProcessors(root),
		"duration":   time.Since(start),
	}).Debug("template parsed")
	return root, nil
}

// Execute runs a parsed processor tree against scope. A nil scope renders
// every binding as empty text.
func (e *Engine) Execute(root *RootProcessor, scope data.Scope) (err error) {
	if root == nil {
		return &ContractViolation{Processor: "Root", Missing: "a parsed template"}
	}
	if scope == nil {
		scope = data.Empty
	}
	defer func() {
		if r := recover(); r != nil {
			err = recoverContractViolation(r)
		}
	}()

	start := time.Now()
	root.SetDataReader(scope)
	if err := root.Process(); err != nil {
		return err
	}
	e.logger.WithField("duration", time.Since(start)).Debug("template executed")
	return nil
}

// Render parses doc and then executes it against scope.
func (e *Engine) Render(doc *xml.Document, scope data.Scope) error {
	root, err := e.Parse(doc)
	if err != nil {
		return err
	}
	return e.Execute(root, scope)
}

// NewDataReader parses an XML data document with the engine's missing-data policy.
func (e *Engine) NewDataReader(r io.Reader) (*data.Reader, error) {
	mode := data.MissingDataEmpty
	if e.config.StrictMode {
		mode = data.MissingDataError
	}
	return data.Parse(r, data.WithMissingDataMode(mode))
}

// RenderXML renders a WordprocessingML part read from template against the
// XML data read from dataSource and writes the result to w. A nil dataSource
// renders against the empty scope.
func (e *Engine) RenderXML(template, dataSource io.Reader, w io.Writer) error {
	scope, err := e.scopeFrom(dataSource)
	if err != nil {
		return err
	}
	return e.renderPart(template, scope, w)
}

func (e *Engine) scopeFrom(dataSource io.Reader) (data.Scope, error) {
	if dataSource == nil {
		return data.Empty, nil
	}
	reader, err := e.NewDataReader(dataSource)
	if err != nil {
		return nil, NewDocumentError("parse", "data", err)
	}
	return reader, nil
}

func (e *Engine) renderPart(template io.Reader, scope data.Scope, w io.Writer) error {
	doc, err := xml.Parse(template)
	if err != nil {
		return NewDocumentError("parse", "template", err)
	}
	if err := e.Render(doc, scope); err != nil {
		return err
	}
	if e.config.CompactOutput {
		return compactXML(w, doc)
	}
	if _, err := doc.WriteTo(w); err != nil {
		return NewDocumentError("write", "", err)
	}
	return nil
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

func getDefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// Render parses and executes doc against scope with the default engine.
func Render(doc *xml.Document, scope data.Scope) error {
	return getDefaultEngine().Render(doc, scope)
}
