// Package docx reads the tables of a DOCX (Office Open XML) document into
// grids. Column spans come from w:gridSpan and row spans from w:vMerge.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Reader provides access to DOCX table content.
type Reader struct {
	zipCloser io.Closer
	zipReader *zip.Reader
	document  *documentXML
	tables    []ParsedTable
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r, err := newReader(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.zipCloser = zr
	return r, nil
}

// OpenReader reads a DOCX archive from ra. The caller keeps ownership of ra.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zipReader: zr}

	// Validate required files exist
	if err := r.validate(); err != nil {
		return nil, err
	}

	// Parse document.xml
	if err := r.parseDocument(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.zipCloser != nil {
		err := r.zipCloser.Close()
		r.zipCloser = nil
		return err
	}
	return nil
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseDocument parses word/document.xml and its tables.
func (r *Reader) parseDocument() error {
	data, err := r.getFileContent("word/document.xml")
	if err != nil {
		return err
	}

	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.document = &doc

	if doc.Body == nil {
		return nil
	}
	parser := NewTableParser()
	for _, tbl := range doc.Body.Tables {
		parsed := parser.ParseTable(tbl)
		if len(parsed.Rows) > 0 {
			r.tables = append(r.tables, parsed)
		}
	}
	return nil
}

// Tables returns the document's top-level tables in order.
func (r *Reader) Tables() []ParsedTable {
	return r.tables
}

// Grids places every table into a grid.
func (r *Reader) Grids(opts placement.Options) ([]*grid.Table, []placement.Warning, error) {
	var out []*grid.Table
	var warnings []placement.Warning
	for i := range r.tables {
		g, w, err := r.tables[i].ToGrid(opts)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("table %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, warnings, nil
}
