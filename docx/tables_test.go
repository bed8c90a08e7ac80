package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// buildDOCX returns the bytes of a minimal DOCX whose body is bodyXML.
func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// [Content_Types].xml
	contentTypes := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(contentTypes))

	// word/document.xml with table
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>` + bodyXML + `</w:body>
</w:document>`
	w, _ = zw.Create("word/document.xml")
	w.Write([]byte(document))

	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// createTestDOCXWithTable writes a DOCX file with the given body and
// returns its path.
func createTestDOCXWithTable(t *testing.T, tableXML string) string {
	t.Helper()

	docxPath := filepath.Join(t.TempDir(), "test.docx")
	if err := os.WriteFile(docxPath, buildDOCX(t, tableXML), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return docxPath
}

func openBytes(t *testing.T, bodyXML string) *Reader {
	t.Helper()
	data := buildDOCX(t, bodyXML)
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	return r
}

const mergedTableXML = `
<w:tbl>
  <w:tblPr><w:tblStyle w:val="Grid"/></w:tblPr>
  <w:tblGrid>
    <w:gridCol w:w="2000"/>
    <w:gridCol w:w="2000"/>
    <w:gridCol w:w="2000"/>
  </w:tblGrid>
  <w:tr>
    <w:trPr><w:tblHeader/></w:trPr>
    <w:tc>
      <w:tcPr><w:gridSpan w:val="2"/><w:vMerge w:val="restart"/><w:shd w:fill="D9D9D9"/></w:tcPr>
      <w:p><w:r><w:t>Merged</w:t></w:r></w:p>
    </w:tc>
    <w:tc>
      <w:p><w:r><w:t>Single</w:t></w:r></w:p>
    </w:tc>
  </w:tr>
  <w:tr>
    <w:tc>
      <w:tcPr><w:gridSpan w:val="2"/><w:vMerge/></w:tcPr>
      <w:p/>
    </w:tc>
    <w:tc>
      <w:p><w:r><w:t>Right</w:t></w:r></w:p>
    </w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p><w:p><w:r><w:t>B2</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>C</w:t></w:r></w:p></w:tc>
  </w:tr>
</w:tbl>`

func TestTableParsing_Simple(t *testing.T) {
	// Simple 2x2 table
	tableXML := `
<w:tbl>
  <w:tr>
    <w:tc><w:p><w:r><w:t>Header 1</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>Header 2</w:t></w:r></w:p></w:tc>
  </w:tr>
  <w:tr>
    <w:tc><w:p><w:r><w:t>Cell A</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>Cell B</w:t></w:r></w:p></w:tc>
  </w:tr>
</w:tbl>`

	r, err := Open(createTestDOCXWithTable(t, tableXML))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	tables := r.Tables()
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	table := tables[0]
	if len(table.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0].Cells[0].Text != "Header 1" {
		t.Errorf("cell[0][0] = %q, want 'Header 1'", table.Rows[0].Cells[0].Text)
	}
	if table.Rows[1].Cells[1].Text != "Cell B" {
		t.Errorf("cell[1][1] = %q, want 'Cell B'", table.Rows[1].Cells[1].Text)
	}
	if table.ColCount() != 2 {
		t.Errorf("ColCount() = %d, want 2", table.ColCount())
	}
}

func TestTableParsing_Merges(t *testing.T) {
	r := openBytes(t, mergedTableXML)
	defer r.Close()

	table := r.Tables()[0]
	merged := table.Rows[0].Cells[0]
	if merged.ColSpan != 2 || merged.RowSpan != 2 {
		t.Errorf("merged span = %dx%d, want 2x2", merged.RowSpan, merged.ColSpan)
	}
	if merged.Shading != "#D9D9D9" {
		t.Errorf("Shading = %q, want #D9D9D9", merged.Shading)
	}
	if !table.Rows[1].Cells[0].IsMergedContinuation {
		t.Error("row 1 cell 0 should be a merge continuation")
	}
	if table.Rows[2].Cells[1].Text != "B\nB2" {
		t.Errorf("multi-paragraph text = %q", table.Rows[2].Cells[1].Text)
	}
	if table.Columns != 3 {
		t.Errorf("Columns = %d, want 3", table.Columns)
	}
}

func TestTableParsing_ToText(t *testing.T) {
	r := openBytes(t, mergedTableXML)
	got := r.Tables()[0].ToText()
	want := "Merged\tSingle\nRight\nA\tB B2\tC"
	if got != want {
		t.Errorf("ToText() = %q, want %q", got, want)
	}
}

func TestTableParsing_ToGrid(t *testing.T) {
	r := openBytes(t, mergedTableXML)

	grids, warnings, err := r.Grids(placement.Options{Strict: true})
	if err != nil {
		t.Fatalf("Grids() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	g := grids[0]
	if g.Rows() != 3 || g.Cols() != 3 {
		t.Fatalf("dimensions = %dx%d, want 3x3", g.Rows(), g.Cols())
	}

	covered, _ := g.GetCellDetails(1, 1)
	want := grid.CellDetails{Row: 0, Col: 0, RowSpan: 2, ColSpan: 2, Content: "Merged", Fill: "#D9D9D9"}
	if covered != want {
		t.Errorf("GetCellDetails(1, 1) = %+v, want %+v", covered, want)
	}
	right, _ := g.GetCellDetails(1, 2)
	if right.Content != "Right" || right.Row != 1 {
		t.Errorf("GetCellDetails(1, 2) = %+v, want Right anchored in row 1", right)
	}
	if g.AnchorCount() != 6 {
		t.Errorf("AnchorCount() = %d, want 6", g.AnchorCount())
	}
}

func TestTableParsing_OrphanContinuation(t *testing.T) {
	tableXML := `
<w:tbl>
  <w:tr>
    <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p><w:r><w:t>orphan</w:t></w:r></w:p></w:tc>
  </w:tr>
</w:tbl>`
	r := openBytes(t, tableXML)
	cell := r.Tables()[0].Rows[0].Cells[0]
	if cell.IsMergedContinuation {
		t.Error("continuation with nothing above should become a normal cell")
	}
}

func TestOpen_MissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(`<Types/>`))
	zw.Close()

	_, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err == nil || !strings.Contains(err.Error(), "word/document.xml") {
		t.Errorf("OpenReader() error = %v, want missing word/document.xml", err)
	}
}

func TestOpen_NotZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.docx")
	os.WriteFile(path, []byte("not a zip"), 0o644)

	if _, err := Open(path); err == nil {
		t.Error("Open() expected error for non-zip file")
	}
}

func TestToGrid_StrictError(t *testing.T) {
	// Row 1's span runs into the row span from row 0.
	table := ParsedTable{Rows: []ParsedTableRow{
		{Cells: []ParsedTableCell{{Text: "a", RowSpan: 1, ColSpan: 1}, {Text: "tall", RowSpan: 2, ColSpan: 1}}},
		{Cells: []ParsedTableCell{{Text: "wide", RowSpan: 1, ColSpan: 2}}},
	}}

	_, _, err := table.ToGrid(placement.Options{Strict: true})
	if !errors.Is(err, grid.ErrOverlapConflict) {
		t.Errorf("ToGrid() error = %v, want ErrOverlapConflict", err)
	}

	g, warnings, err := table.ToGrid(placement.Options{})
	if err != nil {
		t.Fatalf("lenient ToGrid() error = %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1", warnings)
	}
	if g.Cols() != 2 {
		t.Errorf("Cols() = %d, want 2", g.Cols())
	}
}

func TestToGrid_DeclaredGridWidth(t *testing.T) {
	r := openBytes(t, `
<w:tbl>
  <w:tblGrid><w:gridCol/><w:gridCol/><w:gridCol/><w:gridCol/></w:tblGrid>
  <w:tr>
    <w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc>
    <w:tc><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc>
  </w:tr>
</w:tbl>`)
	defer r.Close()

	table := r.Tables()[0]
	if table.ColCount() != 4 {
		t.Fatalf("ColCount() = %d, want 4", table.ColCount())
	}
	g, _, err := table.ToGrid(placement.Options{Strict: true})
	if err != nil {
		t.Fatalf("ToGrid() error = %v", err)
	}
	if g.Rows() != 1 || g.Cols() != 4 {
		t.Errorf("dimensions = %dx%d, want 1x4", g.Rows(), g.Cols())
	}
	if got, _ := g.GetCellDetails(0, 3); got.Content != "" {
		t.Errorf("(0,3) content = %q, want empty", got.Content)
	}
}
