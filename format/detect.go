// Package format identifies which importer can read a document.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// HTML indicates an HTML document.
	HTML
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
	// PPTX indicates a Microsoft PowerPoint (.pptx) presentation.
	PPTX
	// EPUB indicates an EPUB book.
	EPUB
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case HTML:
		return "HTML"
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case ODT:
		return "ODT"
	case PPTX:
		return "PPTX"
	case EPUB:
		return "EPUB"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case HTML:
		return ".html"
	case DOCX:
		return ".docx"
	case XLSX:
		return ".xlsx"
	case ODT:
		return ".odt"
	case PPTX:
		return ".pptx"
	case EPUB:
		return ".epub"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".odt":
		return ODT
	case ".pptx":
		return PPTX
	case ".epub":
		return EPUB
	default:
		return Unknown
	}
}

// DetectFile sniffs the file's content and falls back to its extension
// when the content is inconclusive.
func DetectFile(filename string) (Format, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Unknown, err
	}
	got, err := DetectFromReader(f, info.Size())
	if err != nil || got == Unknown {
		return Detect(filename), nil
	}
	return got, nil
}

var zipMagic = []byte("PK\x03\x04")

// DetectFromReader inspects the content to determine format. It tells
// the ZIP-based formats apart by their part names.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if bytes.HasPrefix(magic, zipMagic) {
		return detectZIPFormat(r, size)
	}
	if detectHTMLMagic(magic) {
		return HTML, nil
	}
	return Unknown, nil
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	upper := strings.ToUpper(strings.TrimLeft(string(data), " \t\r\n\uFEFF"))
	switch {
	case strings.HasPrefix(upper, "<!DOCTYPE HTML"),
		strings.HasPrefix(upper, "<HTML"),
		strings.HasPrefix(upper, "<TABLE"):
		return true
	case strings.HasPrefix(upper, "<?XML"):
		// XHTML
		return strings.Contains(upper, "<HTML")
	}
	return false
}

// Contents of the mimetype entry of ODT and EPUB packages.
const (
	odtMimeType  = "application/vnd.oasis.opendocument.text"
	epubMimeType = "application/epub+zip"
)

// detectZIPFormat inspects a ZIP archive for OpenDocument and Office Open
// XML markers.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	// OpenDocument and EPUB packages name their type in a mimetype entry.
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			break
		}
		data, _ := io.ReadAll(io.LimitReader(rc, 256))
		rc.Close()
		switch strings.TrimSpace(string(data)) {
		case odtMimeType:
			return ODT, nil
		case epubMimeType:
			return EPUB, nil
		}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}
	return Unknown, nil
}
