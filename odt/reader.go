// Package odt reads the tables of an ODT (OpenDocument Text) document into
// grids. Spans come from table:number-columns-spanned and
// table:number-rows-spanned.
package odt

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Reader provides access to ODT table content.
type Reader struct {
	zipCloser io.Closer
	zipReader *zip.Reader
	styles    *styleResolver
	tables    []ParsedTable
}

// Open opens an ODT file for reading.
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

// OpenReader reads an ODT package from ra. The caller keeps ownership of ra.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zipReader: zr}

	if err := r.validate(); err != nil {
		return nil, err
	}

	// styles.xml is optional
	var named []styleDefXML
	if data, err := r.getFileContent("styles.xml"); err == nil {
		var doc stylesXML
		if xml.Unmarshal(data, &doc) == nil {
			named = doc.Styles
		}
	}

	if err := r.parseContent(named); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
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

// validate checks that required ODT files exist.
func (r *Reader) validate() error {
	for _, f := range r.zipReader.File {
		if f.Name == "content.xml" {
			return nil
		}
	}
	return fmt.Errorf("missing required file: content.xml")
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

// parseContent parses content.xml and its tables. Automatic styles in
// content.xml take precedence over the named styles of styles.xml.
func (r *Reader) parseContent(named []styleDefXML) error {
	data, err := r.getFileContent("content.xml")
	if err != nil {
		return err
	}

	var doc contentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return err
	}

	r.styles = newStyleResolver(named, doc.AutoStyles)
	parser := NewTableParser(r.styles)
	for _, tbl := range doc.Tables {
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
