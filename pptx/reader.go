// Package pptx reads the tables of a PPTX (Office Open XML Presentation)
// deck into grids. Spans come from a:tc gridSpan and rowSpan; the cells
// they cover are marked hMerge or vMerge and are not placed.
package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Reader provides access to PPTX table content.
type Reader struct {
	zipCloser    io.Closer
	zipReader    *zip.Reader
	presentation *presentationXML
	presRels     map[string]string // RID -> target path
	slides       []*Slide
}

// Open opens a PPTX file for reading.
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

// OpenReader reads a PPTX archive from ra. The caller keeps ownership of ra.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{
		zipReader: zr,
		presRels:  make(map[string]string),
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	// Parse presentation relationships first
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	// Parse presentation to get slide order
	if err := r.parsePresentation(); err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}

	if err := r.parseSlides(); err != nil {
		return nil, fmt.Errorf("parsing slides: %w", err)
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

// validate checks that required PPTX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"ppt/presentation.xml",
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

// parseRelationships parses the presentation relationships file.
func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil // Relationships are optional
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationship {
		r.presRels[rel.ID] = path.Join("ppt", rel.Target)
	}
	return nil
}

// parsePresentation parses the main presentation file.
func (r *Reader) parsePresentation() error {
	data, err := r.getFileContent("ppt/presentation.xml")
	if err != nil {
		return err
	}

	r.presentation = &presentationXML{}
	return xml.Unmarshal(data, r.presentation)
}

// slidePaths returns the slide parts in presentation order: the slide id
// list when it resolves, otherwise the slide files sorted by number.
func (r *Reader) slidePaths() []string {
	var paths []string
	if r.presentation.SlideIdList != nil {
		for _, id := range r.presentation.SlideIdList.SlideId {
			if target, ok := r.presRels[id.RID]; ok {
				paths = append(paths, target)
			}
		}
	}
	if len(paths) > 0 {
		return paths
	}

	for _, f := range r.zipReader.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			paths = append(paths, f.Name)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return extractSlideNumber(paths[i]) < extractSlideNumber(paths[j])
	})
	return paths
}

// extractSlideNumber extracts the slide number from a path like "ppt/slides/slide1.xml"
func extractSlideNumber(p string) int {
	name := strings.TrimPrefix(p, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}

// parseSlides parses all slide files.
func (r *Reader) parseSlides() error {
	paths := r.slidePaths()
	for _, p := range paths {
		slide, err := r.parseSlide(p, len(r.slides))
		if err != nil {
			continue // Skip slides that fail to parse
		}
		r.slides = append(r.slides, slide)
	}

	if len(r.slides) == 0 {
		return fmt.Errorf("no slides found in presentation")
	}
	return nil
}

// parseSlide parses a single slide file.
func (r *Reader) parseSlide(slidePath string, index int) (*Slide, error) {
	data, err := r.getFileContent(slidePath)
	if err != nil {
		return nil, err
	}

	var sx slideXML
	if err := xml.Unmarshal(data, &sx); err != nil {
		return nil, err
	}

	slide := &Slide{Index: index}
	extractShapes(&sx.CSld.SpTree, slide)
	return slide, nil
}

// extractShapes collects the slide title and tables, descending into
// groups.
func extractShapes(tree *spTreeXML, slide *Slide) {
	for _, sp := range tree.Sp {
		if slide.Title != "" || sp.NvSpPr.NvPr.Ph == nil || sp.TxBody == nil {
			continue
		}
		if t := sp.NvSpPr.NvPr.Ph.Type; t == "title" || t == "ctrTitle" {
			slide.Title = bodyText(sp.TxBody, " ")
		}
	}

	for _, gf := range tree.GraphicFrame {
		if gf.Tbl != nil {
			table := extractTable(gf.Tbl)
			table.Name = gf.NvGraphicFramePr.CNvPr.Name
			table.Slide = slide.Index
			slide.Tables = append(slide.Tables, table)
		}
	}

	for i := range tree.GrpSp {
		extractShapes(&tree.GrpSp[i], slide)
	}
}

// extractTable extracts a table from a graphic frame.
func extractTable(tbl *tblXML) Table {
	table := Table{
		Columns: len(tbl.GridCol),
		Rows:    make([][]TableCell, 0, len(tbl.Tr)),
	}

	for _, tr := range tbl.Tr {
		row := make([]TableCell, 0, len(tr.Tc))
		for _, tc := range tr.Tc {
			cell := TableCell{
				RowSpan:  max(tc.RowSpan, 1),
				ColSpan:  max(tc.GridSpan, 1),
				IsMerged: isTrue(tc.HMerge) || isTrue(tc.VMerge),
			}
			if tc.TxBody != nil {
				cell.Text = bodyText(tc.TxBody, "\n")
			}
			if tc.TcPr != nil && tc.TcPr.SolidFill != nil && tc.TcPr.SolidFill.SrgbClr != nil {
				if v := tc.TcPr.SolidFill.SrgbClr.Val; len(v) == 6 {
					cell.Fill = "#" + strings.ToUpper(v)
				}
			}
			row = append(row, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func isTrue(v string) bool {
	return v == "1" || v == "true"
}

// bodyText joins the non-empty paragraphs of a text body with sep.
func bodyText(body *txBodyXML, sep string) string {
	var paras []string
	for _, p := range body.P {
		var sb strings.Builder
		for _, run := range p.R {
			sb.WriteString(run.T)
		}
		// Field values such as slide numbers
		for _, fld := range p.Fld {
			sb.WriteString(fld.T)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paras = append(paras, text)
		}
	}
	return strings.Join(paras, sep)
}

// Slides returns the parsed slides in presentation order.
func (r *Reader) Slides() []*Slide {
	return r.slides
}

// SlideCount returns the number of slides.
func (r *Reader) SlideCount() int {
	return len(r.slides)
}

// Tables returns every table in the deck, slide by slide.
func (r *Reader) Tables() []Table {
	var out []Table
	for _, s := range r.slides {
		out = append(out, s.Tables...)
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
