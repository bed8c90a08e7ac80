// Package epubdoc reads the tables of an EPUB book. Each content document
// in the spine is parsed as HTML; its tables are numbered in reading order
// across the whole book.
package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/htmldoc"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Reader-related errors.
var (
	ErrInvalidArchive  = errors.New("epub: invalid or corrupted archive")
	ErrInvalidMimetype = errors.New("epub: invalid mimetype (not an EPUB)")
)

// epubMimeType is the required content of the mimetype entry.
const epubMimeType = "application/epub+zip"

// Reader provides access to EPUB table content.
type Reader struct {
	zipCloser io.Closer
	pkg       *Package
	chapters  []*Chapter
}

// Chapter is one content document and the tables it holds.
type Chapter struct {
	ID     string
	Index  int // position in the spine
	Href   string
	Title  string
	Tables []htmldoc.ParsedTable
}

// Open opens an EPUB file from a path.
func Open(filePath string) (*Reader, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	r, err := newReader(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.zipCloser = zr
	return r, nil
}

// OpenReader opens an EPUB from an io.ReaderAt. The caller keeps ownership
// of ra.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	// A missing mimetype entry is tolerated; a wrong one is not.
	if data, ok, _ := readZipFile(zr, "mimetype"); ok && strings.TrimSpace(string(data)) != epubMimeType {
		return nil, ErrInvalidMimetype
	}

	if err := checkForDRM(zr); err != nil {
		return nil, err
	}

	opfPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}
	pkg, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, err
	}

	r := &Reader{pkg: pkg}
	if err := r.loadChapters(zr); err != nil {
		return nil, err
	}
	return r, nil
}

// loadChapters parses every HTML content document in the spine. Missing
// documents are skipped.
func (r *Reader) loadChapters(zr *zip.Reader) error {
	for i, item := range r.pkg.Spine {
		if !isHTML(item.MediaType) {
			continue
		}
		data, ok, err := readZipFile(zr, item.Href)
		if err != nil || !ok {
			continue
		}
		doc, err := htmldoc.OpenReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("chapter %s: %w", item.Href, err)
		}
		r.chapters = append(r.chapters, &Chapter{
			ID:     item.ID,
			Index:  i,
			Href:   item.Href,
			Title:  doc.Title(),
			Tables: doc.Tables(),
		})
	}

	if len(r.chapters) == 0 {
		return ErrEmptySpine
	}
	return nil
}

func isHTML(mediaType string) bool {
	return mediaType == "application/xhtml+xml" || mediaType == "text/html" || mediaType == ""
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

// Title returns the book title from the package metadata.
func (r *Reader) Title() string { return r.pkg.Title }

// Package returns the parsed package document.
func (r *Reader) Package() *Package { return r.pkg }

// Chapters returns the loaded content documents in spine order.
func (r *Reader) Chapters() []*Chapter { return r.chapters }

// Tables returns every table in the book in reading order.
func (r *Reader) Tables() []htmldoc.ParsedTable {
	var out []htmldoc.ParsedTable
	for _, ch := range r.chapters {
		out = append(out, ch.Tables...)
	}
	return out
}

// Grids places every table into a grid.
func (r *Reader) Grids(opts placement.Options) ([]*grid.Table, []placement.Warning, error) {
	var out []*grid.Table
	var warnings []placement.Warning
	for i, t := range r.Tables() {
		g, w, err := t.ToGrid(opts)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("table %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, warnings, nil
}
