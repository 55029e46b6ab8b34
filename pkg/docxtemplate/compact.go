package docxtemplate

import (
	"bytes"
	"io"
	"sync"

	"github.com/tdewolff/minify/v2"
	xmlmin "github.com/tdewolff/minify/v2/xml"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

const xmlMediaType = "text/xml"

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

// getMinifier returns a configured XML minifier (singleton)
func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		// w:t content keeps its spaces.
		minifier.Add(xmlMediaType, &xmlmin.Minifier{KeepWhitespace: true})
	})
	return minifier
}

// compactXML writes doc with comments and redundant markup stripped.
func compactXML(w io.Writer, doc *xml.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return NewDocumentError("write", "", err)
	}
	if err := getMinifier().Minify(xmlMediaType, w, &buf); err != nil {
		return NewDocumentError("minify", "", err)
	}
	return nil
}
