package docxtemplate

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

const mainDocumentPart = "word/document.xml"

// DocxReader handles reading the parts of a DOCX package
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// NewDocxReader creates a new DOCX reader
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}

	// Index all parts by name
	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	// Check if this is a valid DOCX file by looking for required parts
	if _, ok := dr.Parts[mainDocumentPart]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", mainDocumentPart)
	}

	return dr, nil
}

// DocxReaderFromFile creates a DocxReader from a file path
func DocxReaderFromFile(path string) (*DocxReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return NewDocxReader(bytes.NewReader(content), int64(len(content)))
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// ListParts returns the part names in package order
func (dr *DocxReader) ListParts() []string {
	parts := make([]string, 0, len(dr.reader.File))
	for _, file := range dr.reader.File {
		parts = append(parts, file.Name)
	}
	return parts
}

// TemplateParts returns the parts that may carry directives: the main
// document, headers and footers.
func (dr *DocxReader) TemplateParts() []string {
	var parts []string
	for _, name := range dr.ListParts() {
		if isTemplatePart(name) {
			parts = append(parts, name)
		}
	}
	return parts
}

func isTemplatePart(name string) bool {
	if name == mainDocumentPart {
		return true
	}
	dir, base := path.Split(name)
	if dir != "word/" || path.Ext(base) != ".xml" {
		return false
	}
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// RenderDocx renders a DOCX package read from r against the XML data read
// from dataSource and writes the new package to w. Template parts are
// rendered; every other part is copied unchanged.
func (e *Engine) RenderDocx(r io.ReaderAt, size int64, dataSource io.Reader, w io.Writer) error {
	dr, err := NewDocxReader(r, size)
	if err != nil {
		return NewDocumentError("open", "docx", err)
	}
	scope, err := e.scopeFrom(dataSource)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, file := range dr.reader.File {
		if !isTemplatePart(file.Name) {
			if err := zw.Copy(file); err != nil {
				return NewDocumentError("copy", file.Name, err)
			}
			continue
		}

		content, err := dr.GetPart(file.Name)
		if err != nil {
			return NewDocumentError("read", file.Name, err)
		}
		var out bytes.Buffer
		if err := e.renderPart(bytes.NewReader(content), scope, &out); err != nil {
			return WithContext(err, "render", map[string]interface{}{"part": file.Name})
		}

		pw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return NewDocumentError("write", file.Name, err)
		}
		if _, err := pw.Write(out.Bytes()); err != nil {
			return NewDocumentError("write", file.Name, err)
		}
		e.logger.WithField("part", file.Name).Debug("rendered part")
	}

	if err := zw.Close(); err != nil {
		return NewDocumentError("write", "docx", err)
	}
	return nil
}

// RenderDocxFile renders the DOCX at templatePath against the XML data at
// dataPath and writes the result to outPath.
func (e *Engine) RenderDocxFile(templatePath, dataPath, outPath string) error {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return NewDocumentError("read", templatePath, err)
	}
	dataFile, err := os.Open(dataPath)
	if err != nil {
		return NewDocumentError("read", dataPath, err)
	}
	defer dataFile.Close()

	var out bytes.Buffer
	if err := e.RenderDocx(bytes.NewReader(content), int64(len(content)), dataFile, &out); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return NewDocumentError("write", outPath, err)
	}
	return nil
}
