package tablewrap

import (
	"fmt"
	"sort"

	"github.com/tsawler/tablewrap/docx"
	"github.com/tsawler/tablewrap/element"
	"github.com/tsawler/tablewrap/epubdoc"
	"github.com/tsawler/tablewrap/format"
	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/htmldoc"
	"github.com/tsawler/tablewrap/internal/placement"
	"github.com/tsawler/tablewrap/odt"
	"github.com/tsawler/tablewrap/pptx"
	"github.com/tsawler/tablewrap/xlsx"
)

// Importer provides a fluent interface for reading tables out of HTML,
// DOCX, XLSX, ODT, PPTX and EPUB documents. Each configuration method
// returns a new Importer instance, making it safe for concurrent use and
// allowing method chaining.
type Importer struct {
	// Source
	filename string
	format   format.Format

	// Configuration
	options ImportOptions

	// Accumulated error (fail-fast)
	err error
}

// Open returns an Importer for filename. The file is not read until a
// terminal operation such as Elements() is called; its format is sniffed
// from the content, falling back to the extension.
//
// Example:
//
//	els, warnings, err := tablewrap.Open("report.docx").Elements()
func Open(filename string) *Importer {
	return &Importer{
		filename: filename,
		options:  defaultOptions(),
	}
}

// clone creates a shallow copy of the Importer with a deep copy of options.
func (im *Importer) clone() *Importer {
	return &Importer{
		filename: im.filename,
		format:   im.format,
		options:  im.options.clone(),
		err:      im.err,
	}
}

// ============================================================================
// Configuration Methods (return new Importer instance)
// ============================================================================

// Tables selects which tables to import (0-indexed, in document order).
// For workbooks each non-empty sheet is one table. Multiple calls are
// cumulative.
//
// Example:
//
//	els, _, err := tablewrap.Open("book.xlsx").Tables(0, 2).Elements()
func (im *Importer) Tables(indices ...int) *Importer {
	newIm := im.clone()
	newIm.options.tables = append(newIm.options.tables, indices...)
	return newIm
}

// Strict makes overlapping spans in the source an error. By default the
// offending cell is imported as 1x1 and a warning is returned.
func (im *Importer) Strict() *Importer {
	newIm := im.clone()
	newIm.options.strict = true
	return newIm
}

// Format overrides format detection.
func (im *Importer) Format(f format.Format) *Importer {
	newIm := im.clone()
	newIm.format = f
	if f == format.Unknown {
		newIm.err = fmt.Errorf("unsupported file format: %s", f)
	}
	return newIm
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Wrappers imports the selected tables as editable wrappers.
func (im *Importer) Wrappers() ([]*TableWrapper, []Warning, error) {
	grids, warnings, err := im.grids()
	if err != nil {
		return nil, warnings, err
	}
	out := make([]*TableWrapper, len(grids))
	for i, g := range grids {
		out[i] = Wrap(g)
	}
	return out, warnings, nil
}

// Elements imports the selected tables and serializes them.
func (im *Importer) Elements() ([]*element.Table, []Warning, error) {
	grids, warnings, err := im.grids()
	if err != nil {
		return nil, warnings, err
	}
	out := make([]*element.Table, len(grids))
	for i, g := range grids {
		out[i] = element.FromGrid(g)
	}
	return out, warnings, nil
}

// TableCount returns the number of tables in the document.
func (im *Importer) TableCount() (int, error) {
	if im.err != nil {
		return 0, im.err
	}
	src, err := im.open()
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return src.count(), nil
}

func (im *Importer) grids() ([]*grid.Table, []Warning, error) {
	if im.err != nil {
		return nil, nil, im.err
	}

	src, err := im.open()
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	indices, err := im.resolveTables(src.count())
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	out := make([]*grid.Table, 0, len(indices))
	for _, i := range indices {
		g, w, err := src.grid(i, im.options.placement())
		for _, warn := range w {
			warn.Message = fmt.Sprintf("table %d: %s", i, warn.Message)
			warnings = append(warnings, warn)
		}
		if err != nil {
			return nil, warnings, fmt.Errorf("table %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, warnings, nil
}

// resolveTables validates the selection against count and returns sorted,
// de-duplicated indices.
func (im *Importer) resolveTables(count int) ([]int, error) {
	if len(im.options.tables) == 0 {
		indices := make([]int, count)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	seen := make(map[int]bool)
	var indices []int
	for _, t := range im.options.tables {
		if t < 0 || t >= count {
			return nil, fmt.Errorf("table %d out of range (0-%d)", t, count-1)
		}
		if !seen[t] {
			seen[t] = true
			indices = append(indices, t)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

// open reads the document with the importer for its format.
func (im *Importer) open() (tableSource, error) {
	if im.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}

	f := im.format
	if f == format.Unknown {
		var err error
		if f, err = format.DetectFile(im.filename); err != nil {
			return nil, err
		}
	}

	switch f {
	case format.HTML:
		r, err := htmldoc.Open(im.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTML: %w", err)
		}
		return htmlSource{r}, nil

	case format.DOCX:
		r, err := docx.Open(im.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open DOCX: %w", err)
		}
		return docxSource{r}, nil

	case format.XLSX:
		r, err := xlsx.Open(im.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX: %w", err)
		}
		return newXLSXSource(r), nil

	case format.ODT:
		r, err := odt.Open(im.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open ODT: %w", err)
		}
		return odtSource{r}, nil

	case format.PPTX:
		r, err := pptx.Open(im.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open PPTX: %w", err)
		}
		return pptxSource{r: r, tables: r.Tables()}, nil

	case format.EPUB:
		r, err := epubdoc.Open(im.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open EPUB: %w", err)
		}
		return epubSource{r: r, tables: r.Tables()}, nil

	default:
		return nil, fmt.Errorf("unsupported file format: %s", f)
	}
}

// tableSource is an opened document seen as a list of tables.
type tableSource interface {
	count() int
	grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error)
	Close() error
}

type htmlSource struct{ r *htmldoc.Reader }

func (s htmlSource) count() int   { return len(s.r.Tables()) }
func (s htmlSource) Close() error { return s.r.Close() }
func (s htmlSource) grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	return s.r.Tables()[i].ToGrid(opts)
}

type docxSource struct{ r *docx.Reader }

func (s docxSource) count() int   { return len(s.r.Tables()) }
func (s docxSource) Close() error { return s.r.Close() }
func (s docxSource) grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	return s.r.Tables()[i].ToGrid(opts)
}

// xlsxSource lists only sheets with at least one cell or merge.
type xlsxSource struct {
	r      *xlsx.Reader
	sheets []*xlsx.Sheet
}

func newXLSXSource(r *xlsx.Reader) xlsxSource {
	s := xlsxSource{r: r}
	for _, sheet := range r.Sheets() {
		if sheet.RowCount() > 0 && sheet.ColCount() > 0 {
			s.sheets = append(s.sheets, sheet)
		}
	}
	return s
}

func (s xlsxSource) count() int   { return len(s.sheets) }
func (s xlsxSource) Close() error { return s.r.Close() }
func (s xlsxSource) grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	return s.sheets[i].ToGrid(opts)
}

type odtSource struct{ r *odt.Reader }

func (s odtSource) count() int   { return len(s.r.Tables()) }
func (s odtSource) Close() error { return s.r.Close() }
func (s odtSource) grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	return s.r.Tables()[i].ToGrid(opts)
}

// pptxSource numbers tables across the whole deck, slide by slide.
type pptxSource struct {
	r      *pptx.Reader
	tables []pptx.Table
}

func (s pptxSource) count() int   { return len(s.tables) }
func (s pptxSource) Close() error { return s.r.Close() }
func (s pptxSource) grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	return s.tables[i].ToGrid(opts)
}

// epubSource numbers tables across the book in reading order.
type epubSource struct {
	r      *epubdoc.Reader
	tables []htmldoc.ParsedTable
}

func (s epubSource) count() int   { return len(s.tables) }
func (s epubSource) Close() error { return s.r.Close() }
func (s epubSource) grid(i int, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	return s.tables[i].ToGrid(opts)
}
