// Package xlsx reads the worksheets of an XLSX (Office Open XML
// Spreadsheet) workbook into grids. Merged regions come from the sheet's
// mergeCells list.
package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Reader provides access to XLSX worksheet content.
type Reader struct {
	zipCloser     io.Closer
	zipReader     *zip.Reader
	workbook      *workbookXML
	sharedStrings []string
	fills         []string // cell style index -> fill colour
	sheets        []*Sheet
	sheetRels     map[string]string // RID -> target path
}

// Open opens an XLSX file for reading.
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

// OpenReader reads an XLSX archive from ra. The caller keeps ownership of ra.
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
		sheetRels: make(map[string]string),
	}

	// Validate required files exist
	if err := r.validate(); err != nil {
		return nil, err
	}

	// Parse relationships first
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	// Parse workbook to get sheet list
	if err := r.parseWorkbook(); err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	// Shared strings and styles are optional
	_ = r.parseSharedStrings()
	_ = r.parseStyles()

	if err := r.parseWorksheets(); err != nil {
		return nil, fmt.Errorf("parsing worksheets: %w", err)
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

// validate checks that required XLSX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"xl/workbook.xml",
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

// parseRelationships parses the workbook relationships file.
func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("xl/_rels/workbook.xml.rels")
	if err != nil {
		return nil // Relationships are optional
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationship {
		r.sheetRels[rel.ID] = rel.Target
	}
	return nil
}

// parseWorkbook parses the main workbook file.
func (r *Reader) parseWorkbook() error {
	data, err := r.getFileContent("xl/workbook.xml")
	if err != nil {
		return err
	}

	r.workbook = &workbookXML{}
	return xml.Unmarshal(data, r.workbook)
}

// parseSharedStrings parses the shared strings table.
func (r *Reader) parseSharedStrings() error {
	data, err := r.getFileContent("xl/sharedStrings.xml")
	if err != nil {
		return err
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return err
	}

	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		r.sharedStrings[i] = richText(si.T, si.R)
	}
	return nil
}

// parseStyles resolves each cell format to its solid fill colour.
func (r *Reader) parseStyles() error {
	data, err := r.getFileContent("xl/styles.xml")
	if err != nil {
		return err
	}

	var styles stylesXML
	if err := xml.Unmarshal(data, &styles); err != nil {
		return err
	}
	if styles.CellXfs == nil || styles.Fills == nil {
		return nil
	}

	r.fills = make([]string, len(styles.CellXfs.Xf))
	for i, xf := range styles.CellXfs.Xf {
		if xf.FillID < 0 || xf.FillID >= len(styles.Fills.Fill) {
			continue
		}
		r.fills[i] = solidFill(styles.Fills.Fill[xf.FillID])
	}
	return nil
}

// solidFill returns the #RRGGBB colour of a solid pattern fill, or "".
func solidFill(f fillXML) string {
	p := f.Pattern
	if p == nil || p.PatternType != "solid" || p.FgColor == nil {
		return ""
	}
	rgb := p.FgColor.RGB
	if len(rgb) == 8 {
		rgb = rgb[2:] // drop alpha
	}
	if len(rgb) != 6 {
		return ""
	}
	return "#" + strings.ToUpper(rgb)
}

func richText(t string, runs []rXML) string {
	if t != "" || len(runs) == 0 {
		return t
	}
	var text strings.Builder
	for _, run := range runs {
		text.WriteString(run.T)
	}
	return text.String()
}

// parseWorksheets parses all worksheet files.
func (r *Reader) parseWorksheets() error {
	r.sheets = make([]*Sheet, 0, len(r.workbook.Sheets.Sheet))

	for i, sheetRef := range r.workbook.Sheets.Sheet {
		// Find the sheet file path from relationships
		target := r.sheetRels[sheetRef.RID]
		if target == "" {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}

		// Normalize path
		if !strings.HasPrefix(target, "xl/") && !strings.HasPrefix(target, "/") {
			target = "xl/" + target
		}
		target = strings.TrimPrefix(target, "/")

		data, err := r.getFileContent(target)
		if err != nil {
			continue // Skip sheets we can't read
		}

		sheet, err := r.parseWorksheet(data, sheetRef.Name, len(r.sheets))
		if err != nil {
			return fmt.Errorf("sheet %q: %w", sheetRef.Name, err)
		}
		r.sheets = append(r.sheets, sheet)
	}

	if len(r.sheets) == 0 {
		return fmt.Errorf("no worksheets found")
	}
	return nil
}

// parseWorksheet parses a single worksheet.
func (r *Reader) parseWorksheet(data []byte, name string, index int) (*Sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	sheet := &Sheet{
		Name:  name,
		Index: index,
	}

	if ws.MergeCells != nil {
		for _, mc := range ws.MergeCells.MergeCell {
			startCol, startRow, endCol, endRow, err := ParseRangeRef(mc.Ref)
			if err != nil {
				continue
			}
			// Ranges may be written bottom-right first.
			sheet.MergedRegions = append(sheet.MergedRegions, MergedRegion{
				StartRow: min(startRow, endRow),
				StartCol: min(startCol, endCol),
				EndRow:   max(startRow, endRow),
				EndCol:   max(startCol, endCol),
			})
		}
	}

	// First pass: find dimensions. Rows without an r attribute follow the
	// previous row; cells without one follow the previous cell.
	type placed struct {
		row, col int
		xml      cellXML
	}
	var cells []placed
	maxRow, maxCol := -1, -1
	rowIdx := -1
	for _, row := range ws.SheetData.Rows {
		if row.R > 0 {
			rowIdx = row.R - 1
		} else {
			rowIdx++
		}
		col := -1
		for _, c := range row.Cells {
			if c.R != "" {
				cc, _, err := ParseCellRef(c.R)
				if err != nil {
					continue
				}
				col = cc
			} else {
				col++
			}
			cells = append(cells, placed{rowIdx, col, c})
			maxRow = max(maxRow, rowIdx)
			maxCol = max(maxCol, col)
		}
	}

	sheet.Rows = make([][]Cell, maxRow+1)
	for i := range sheet.Rows {
		sheet.Rows[i] = make([]Cell, maxCol+1)
		for j := range sheet.Rows[i] {
			sheet.Rows[i][j] = Cell{Row: i, Col: j, Type: CellTypeEmpty}
		}
	}

	// Second pass: populate cells
	for _, p := range cells {
		cell := &sheet.Rows[p.row][p.col]
		cell.Type, cell.Value = r.cellValue(p.xml)
		if p.xml.S >= 0 && p.xml.S < len(r.fills) {
			cell.Fill = r.fills[p.xml.S]
		}
	}

	return sheet, nil
}

// cellValue determines a cell's type and display value.
func (r *Reader) cellValue(c cellXML) (CellType, string) {
	switch c.T {
	case "s": // Shared string
		idx, err := strconv.Atoi(c.V)
		if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
			return CellTypeString, r.sharedStrings[idx]
		}
		return CellTypeString, ""
	case "b":
		if c.V == "1" {
			return CellTypeBoolean, "TRUE"
		}
		return CellTypeBoolean, "FALSE"
	case "e":
		return CellTypeError, c.V
	case "str": // Formula string result
		return CellTypeString, c.V
	case "inlineStr":
		if c.Is != nil {
			return CellTypeString, richText(c.Is.T, c.Is.R)
		}
		return CellTypeString, ""
	}
	if c.V != "" {
		return CellTypeNumber, c.V
	}
	if c.F != "" {
		return CellTypeFormula, "" // Formula without cached value
	}
	return CellTypeEmpty, ""
}

// Sheets returns the readable worksheets in workbook order.
func (r *Reader) Sheets() []*Sheet {
	return r.sheets
}

// SheetCount returns the number of readable worksheets.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// SheetNames returns the names of all worksheets.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the worksheet at the given index (0-based).
func (r *Reader) Sheet(index int) (*Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range [0, %d)", index, len(r.sheets))
	}
	return r.sheets[index], nil
}

// SheetByName returns the worksheet with the given name.
func (r *Reader) SheetByName(name string) (*Sheet, error) {
	for _, s := range r.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet not found: %s", name)
}

// Table places the named worksheet into a grid.
func (r *Reader) Table(name string, opts placement.Options) (*grid.Table, []placement.Warning, error) {
	s, err := r.SheetByName(name)
	if err != nil {
		return nil, nil, err
	}
	return s.ToGrid(opts)
}

// Grids places every non-empty worksheet into a grid, in workbook order.
func (r *Reader) Grids(opts placement.Options) ([]*grid.Table, []placement.Warning, error) {
	var out []*grid.Table
	var warnings []placement.Warning
	for _, s := range r.sheets {
		if s.RowCount() == 0 || s.ColCount() == 0 {
			continue
		}
		g, w, err := s.ToGrid(opts)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		out = append(out, g)
	}
	return out, warnings, nil
}
