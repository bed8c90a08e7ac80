package xlsx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

type testSheet struct {
	name string
	xml  string // contents of <sheetData> and anything after it
}

// buildXLSX returns the bytes of a minimal workbook holding sheets in order.
func buildXLSX(t *testing.T, sheets []testSheet, sharedStrings []string, styles string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeZipFile(t, zw, "[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`)

	var rels, workbook strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	workbook.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>`)
	for i, s := range sheets {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, i+1, i+1)
		fmt.Fprintf(&workbook, `<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, s.name, i+1, i+1)
		writeZipFile(t, zw, fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1),
			`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`+s.xml+`</worksheet>`)
	}
	rels.WriteString(`</Relationships>`)
	workbook.WriteString(`</sheets></workbook>`)
	writeZipFile(t, zw, "xl/_rels/workbook.xml.rels", rels.String())
	writeZipFile(t, zw, "xl/workbook.xml", workbook.String())

	if sharedStrings != nil {
		var ss strings.Builder
		ss.WriteString(`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
		for _, s := range sharedStrings {
			ss.WriteString("<si><t>" + s + "</t></si>")
		}
		ss.WriteString(`</sst>`)
		writeZipFile(t, zw, "xl/sharedStrings.xml", ss.String())
	}
	if styles != "" {
		writeZipFile(t, zw, "xl/styles.xml", styles)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func writeZipFile(t *testing.T, zw *zip.Writer, name, content string) {
	t.Helper()
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func openXLSX(t *testing.T, sheets []testSheet, sharedStrings []string, styles string) *Reader {
	t.Helper()
	data := buildXLSX(t, sheets, sharedStrings, styles)
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	return r
}

// A 3x3 sheet: "Title" merged across A1:C1, "Side" merged down A2:A3.
const mergedSheet = `<sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>3</v></c></row>
  <row r="2"><c r="A2" t="s"><v>1</v></c><c r="B2"><v>1</v></c><c r="C2"><v>2</v></c></row>
  <row r="3"><c r="B3"><v>3</v></c><c r="C3" t="s"><v>2</v></c></row>
</sheetData>
<mergeCells count="2"><mergeCell ref="A1:C1"/><mergeCell ref="A3:A2"/></mergeCells>`

var mergedStrings = []string{"Title", "Side", "end", "hidden"}

// ============================================================================
// Open
// ============================================================================

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xlsx")
	data := buildXLSX(t, []testSheet{{"Sheet1", mergedSheet}}, mergedStrings, "")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Second close is a no-op
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpen_NotFound(t *testing.T) {
	if _, err := Open("/nonexistent/file.xlsx"); err == nil {
		t.Error("Open() expected error for nonexistent file")
	}
}

func TestOpen_MissingWorkbook(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	writeZipFile(t, zw, "[Content_Types].xml", `<Types/>`)
	zw.Close()

	_, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err == nil || !strings.Contains(err.Error(), "xl/workbook.xml") {
		t.Errorf("OpenReader() error = %v, want missing xl/workbook.xml", err)
	}
}

func TestOpen_NoWorksheets(t *testing.T) {
	data := buildXLSX(t, nil, nil, "")
	if _, err := OpenReader(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Error("OpenReader() expected error for a workbook without sheets")
	}
}

// ============================================================================
// Sheets
// ============================================================================

func TestReader_Sheets(t *testing.T) {
	r := openXLSX(t, []testSheet{
		{"First", `<sheetData><row r="1"><c r="A1"><v>1</v></c></row></sheetData>`},
		{"Second", `<sheetData><row r="1"><c r="A1"><v>2</v></c></row></sheetData>`},
	}, nil, "")

	if r.SheetCount() != 2 {
		t.Fatalf("SheetCount() = %d, want 2", r.SheetCount())
	}
	names := r.SheetNames()
	if names[0] != "First" || names[1] != "Second" {
		t.Errorf("SheetNames() = %v", names)
	}

	s, err := r.SheetByName("Second")
	if err != nil {
		t.Fatalf("SheetByName() error = %v", err)
	}
	if s.Index != 1 || s.CellByRef("A1").Value != "2" {
		t.Errorf("SheetByName(Second) = index %d, A1 %q", s.Index, s.CellByRef("A1").Value)
	}
	if _, err := r.SheetByName("Missing"); err == nil {
		t.Error("SheetByName(Missing) expected error")
	}
	if _, err := r.Sheet(2); err == nil {
		t.Error("Sheet(2) expected error")
	}
	if len(r.Sheets()) != 2 {
		t.Errorf("len(Sheets()) = %d", len(r.Sheets()))
	}
}

func TestCellTypeHandling(t *testing.T) {
	r := openXLSX(t, []testSheet{{"Types", `<sheetData><row r="1">
  <c r="A1" t="s"><v>0</v></c>
  <c r="B1"><v>42.5</v></c>
  <c r="C1" t="b"><v>1</v></c>
  <c r="D1" t="b"><v>0</v></c>
  <c r="E1" t="e"><v>#DIV/0!</v></c>
  <c r="F1" t="str"><v>calc</v></c>
  <c r="G1" t="inlineStr"><is><r><t>in</t></r><r><t>line</t></r></is></c>
  <c r="H1"><f>SUM(B1)</f></c>
  <c r="I1" t="s"><v>99</v></c>
</row></sheetData>`}}, []string{"shared"}, "")

	s := r.Sheets()[0]
	tests := []struct {
		ref       string
		wantType  CellType
		wantValue string
	}{
		{"A1", CellTypeString, "shared"},
		{"B1", CellTypeNumber, "42.5"},
		{"C1", CellTypeBoolean, "TRUE"},
		{"D1", CellTypeBoolean, "FALSE"},
		{"E1", CellTypeError, "#DIV/0!"},
		{"F1", CellTypeString, "calc"},
		{"G1", CellTypeString, "inline"},
		{"H1", CellTypeFormula, ""},
		{"I1", CellTypeString, ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			c := s.CellByRef(tt.ref)
			if c == nil {
				t.Fatalf("CellByRef(%s) = nil", tt.ref)
			}
			if c.Type != tt.wantType || c.Value != tt.wantValue {
				t.Errorf("cell = %v %q, want %v %q", c.Type, c.Value, tt.wantType, tt.wantValue)
			}
		})
	}
}

func TestParseWorksheet_ImplicitReferences(t *testing.T) {
	r := openXLSX(t, []testSheet{{"S", `<sheetData>
  <row><c><v>1</v></c><c><v>2</v></c></row>
  <row><c r="C2"><v>3</v></c></row>
</sheetData>`}}, nil, "")

	s := r.Sheets()[0]
	if s.RowCount() != 2 || s.ColCount() != 3 {
		t.Fatalf("dimensions = %dx%d, want 2x3", s.RowCount(), s.ColCount())
	}
	if s.Cell(0, 1).Value != "2" || s.Cell(1, 2).Value != "3" {
		t.Errorf("B1 = %q, C2 = %q", s.Cell(0, 1).Value, s.Cell(1, 2).Value)
	}
	if !s.Cell(1, 0).IsEmpty() {
		t.Error("A2 should be empty")
	}
}

func TestParseStyles_Fills(t *testing.T) {
	styles := `<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <fills count="3">
    <fill><patternFill patternType="none"/></fill>
    <fill><patternFill patternType="gray125"/></fill>
    <fill><patternFill patternType="solid"><fgColor rgb="FFffff00"/></patternFill></fill>
  </fills>
  <cellXfs count="2"><xf fillId="0"/><xf fillId="2"/></cellXfs>
</styleSheet>`
	r := openXLSX(t, []testSheet{{"S", `<sheetData><row r="1">
  <c r="A1" s="1"><v>7</v></c><c r="B1" s="0"><v>8</v></c>
</row></sheetData>`}}, nil, styles)

	s := r.Sheets()[0]
	if got := s.Cell(0, 0).Fill; got != "#FFFF00" {
		t.Errorf("A1 Fill = %q, want #FFFF00", got)
	}
	if got := s.Cell(0, 1).Fill; got != "" {
		t.Errorf("B1 Fill = %q, want empty", got)
	}
}

// ============================================================================
// Merged regions and grids
// ============================================================================

func TestMergedCells(t *testing.T) {
	r := openXLSX(t, []testSheet{{"Sheet1", mergedSheet}}, mergedStrings, "")
	s := r.Sheets()[0]

	if len(s.MergedRegions) != 2 {
		t.Fatalf("MergedRegions = %d, want 2", len(s.MergedRegions))
	}
	side := s.MergedRegions[1]
	if side.StartRow != 1 || side.EndRow != 2 || side.String() != "A2:A3" {
		t.Errorf("reversed range normalised to %+v (%s)", side, side)
	}
	if side.RowSpan() != 2 || side.ColSpan() != 1 {
		t.Errorf("span = %dx%d, want 2x1", side.RowSpan(), side.ColSpan())
	}
}

func TestSheet_ToGrid(t *testing.T) {
	r := openXLSX(t, []testSheet{{"Sheet1", mergedSheet}}, mergedStrings, "")

	g, warnings, err := r.Table("Sheet1", placement.Options{Strict: true})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if g.Rows() != 3 || g.Cols() != 3 {
		t.Fatalf("dimensions = %dx%d, want 3x3", g.Rows(), g.Cols())
	}

	tests := []struct {
		row, col int
		want     grid.CellDetails
	}{
		{0, 2, grid.CellDetails{Row: 0, Col: 0, RowSpan: 1, ColSpan: 3, Content: "Title"}},
		{2, 0, grid.CellDetails{Row: 1, Col: 0, RowSpan: 2, ColSpan: 1, Content: "Side"}},
		{1, 1, grid.CellDetails{Row: 1, Col: 1, RowSpan: 1, ColSpan: 1, Content: "1"}},
		{2, 2, grid.CellDetails{Row: 2, Col: 2, RowSpan: 1, ColSpan: 1, Content: "end"}},
	}
	for _, tt := range tests {
		got, err := g.GetCellDetails(tt.row, tt.col)
		if err != nil {
			t.Fatalf("GetCellDetails(%d, %d) error = %v", tt.row, tt.col, err)
		}
		if got != tt.want {
			t.Errorf("GetCellDetails(%d, %d) = %+v, want %+v", tt.row, tt.col, got, tt.want)
		}
	}
	// 9 positions, minus 2 covered by the title, minus 1 by the side label.
	if g.AnchorCount() != 6 {
		t.Errorf("AnchorCount() = %d, want 6", g.AnchorCount())
	}
}

func TestSheet_ToGrid_MergeBeyondData(t *testing.T) {
	r := openXLSX(t, []testSheet{{"S", `<sheetData><row r="1"><c r="A1"><v>1</v></c></row></sheetData>
<mergeCells><mergeCell ref="A1:B3"/></mergeCells>`}}, nil, "")

	g, _, err := r.Sheets()[0].ToGrid(placement.Options{})
	if err != nil {
		t.Fatalf("ToGrid() error = %v", err)
	}
	if g.Rows() != 3 || g.Cols() != 2 || g.AnchorCount() != 1 {
		t.Errorf("got %dx%d with %d anchors, want 3x2 with 1", g.Rows(), g.Cols(), g.AnchorCount())
	}
}

func TestSheet_ToGrid_OverlappingMerges(t *testing.T) {
	sheet := &Sheet{
		Name: "S",
		Rows: [][]Cell{{{Value: "a", Type: CellTypeString}, {}}, {{}, {}}},
		MergedRegions: []MergedRegion{
			{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 1},
			{StartRow: 0, StartCol: 1, EndRow: 1, EndCol: 1},
		},
	}

	if _, _, err := sheet.ToGrid(placement.Options{Strict: true}); !errors.Is(err, grid.ErrOverlapConflict) {
		t.Errorf("strict ToGrid() error = %v, want ErrOverlapConflict", err)
	}

	g, warnings, err := sheet.ToGrid(placement.Options{})
	if err != nil {
		t.Fatalf("lenient ToGrid() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "B1:B2") {
		t.Errorf("warnings = %v, want one naming B1:B2", warnings)
	}
	first, _ := g.GetCellDetails(0, 1)
	if first.ColSpan != 2 || first.Content != "a" {
		t.Errorf("first merge lost: %+v", first)
	}
}

func TestSheet_ToGrid_Empty(t *testing.T) {
	sheet := &Sheet{Name: "blank"}
	if _, _, err := sheet.ToGrid(placement.Options{}); !errors.Is(err, grid.ErrInvalidDimension) {
		t.Errorf("ToGrid() error = %v, want ErrInvalidDimension", err)
	}
}

func TestReader_Grids_SkipsEmptySheets(t *testing.T) {
	r := openXLSX(t, []testSheet{
		{"Empty", `<sheetData/>`},
		{"Data", mergedSheet},
	}, mergedStrings, "")

	grids, _, err := r.Grids(placement.Options{})
	if err != nil {
		t.Fatalf("Grids() error = %v", err)
	}
	if len(grids) != 1 {
		t.Errorf("len(Grids()) = %d, want 1", len(grids))
	}
}
