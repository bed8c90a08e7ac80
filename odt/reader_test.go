package odt

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

const contentHeader = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
    xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
    xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"
    xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
    xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"
    xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0">`

const namedStyles = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles
    xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
    xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"
    xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0">
  <office:styles>
    <style:style style:name="Shaded" style:family="table-cell">
      <style:table-cell-properties fo:background-color="#eeeeee"/>
    </style:style>
  </office:styles>
</office:document-styles>`

const mergedContent = contentHeader + `
  <office:automatic-styles>
    <style:style style:name="ce1" style:family="table-cell">
      <style:table-cell-properties fo:background-color="#d9d9d9"/>
    </style:style>
    <style:style style:name="ce2" style:family="table-cell" style:parent-style-name="Shaded"/>
    <style:style style:name="ce3" style:family="table-cell">
      <style:table-cell-properties fo:background-color="transparent"/>
    </style:style>
  </office:automatic-styles>
  <office:body>
    <office:text>
      <text:p>Before the table</text:p>
      <table:table table:name="Table1">
        <table:table-column table:number-columns-repeated="3"/>
        <table:table-header-rows>
          <table:table-row>
            <table:table-cell table:style-name="ce1" table:number-columns-spanned="2" table:number-rows-spanned="2">
              <text:p>Merged</text:p>
            </table:table-cell>
            <table:covered-table-cell/>
            <table:table-cell table:style-name="ce3"><text:p>B</text:p></table:table-cell>
          </table:table-row>
        </table:table-header-rows>
        <table:table-row>
          <table:covered-table-cell table:number-columns-repeated="2"/>
          <table:table-cell><text:p>C</text:p></table:table-cell>
        </table:table-row>
        <table:table-row>
          <table:table-cell><text:p>x</text:p></table:table-cell>
          <table:table-cell><text:p>y</text:p><text:p><text:span>y2</text:span></text:p></table:table-cell>
          <table:table-cell table:style-name="ce2"><text:h>z</text:h></table:table-cell>
          <table:table-cell table:number-columns-repeated="1000"/>
        </table:table-row>
        <table:table-row table:number-rows-repeated="5000">
          <table:table-cell table:number-columns-repeated="3"/>
        </table:table-row>
      </table:table>
    </office:text>
  </office:body>
</office:document-content>`

// buildODT returns the bytes of a minimal ODT package.
func buildODT(t *testing.T, content, styles string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// mimetype must be first and stored uncompressed
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("failed to create mimetype: %v", err)
	}
	mw.Write([]byte("application/vnd.oasis.opendocument.text"))

	if content != "" {
		cw, _ := zw.Create("content.xml")
		cw.Write([]byte(content))
	}
	if styles != "" {
		sw, _ := zw.Create("styles.xml")
		sw.Write([]byte(styles))
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func openBytes(t *testing.T, content, styles string) *Reader {
	t.Helper()
	data := buildODT(t, content, styles)
	r, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	return r
}

func TestOpenAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.odt")
	if err := os.WriteFile(path, buildODT(t, mergedContent, namedStyles), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(r.Tables()) != 1 {
		t.Errorf("Tables() = %d, want 1", len(r.Tables()))
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	data := buildODT(t, "", "")
	_, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if err == nil || !strings.Contains(err.Error(), "content.xml") {
		t.Errorf("OpenReader() error = %v, want missing content.xml", err)
	}

	path := filepath.Join(t.TempDir(), "bad.odt")
	os.WriteFile(path, []byte("not a zip"), 0o644)
	if _, err := Open(path); err == nil {
		t.Error("Open() expected error for non-zip file")
	}
}

func TestParseTable(t *testing.T) {
	r := openBytes(t, mergedContent, namedStyles)
	table := r.Tables()[0]

	if table.Name != "Table1" || table.HeaderRows != 1 || table.ColumnDefs != 3 {
		t.Errorf("table = %q headers=%d cols=%d", table.Name, table.HeaderRows, table.ColumnDefs)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3 (filler rows dropped)", len(table.Rows))
	}
	if n := len(table.Rows[2].Cells); n != 3 {
		t.Errorf("row 2 cells = %d, want 3 (filler cells dropped)", n)
	}

	merged := table.Rows[0].Cells[0]
	if merged.ColSpan != 2 || merged.RowSpan != 2 || merged.Background != "#D9D9D9" {
		t.Errorf("merged cell = %+v", merged)
	}
	if bg := table.Rows[0].Cells[1].Background; bg != "" {
		t.Errorf("transparent background = %q, want empty", bg)
	}
	if bg := table.Rows[2].Cells[2].Background; bg != "#EEEEEE" {
		t.Errorf("inherited background = %q, want #EEEEEE", bg)
	}
	if text := table.Rows[2].Cells[1].Text; text != "y\ny2" {
		t.Errorf("multi-paragraph text = %q", text)
	}
	if got := table.ToText(); got != "Merged\tB\nC\nx\ty y2\tz" {
		t.Errorf("ToText() = %q", got)
	}
}

func TestToGrid(t *testing.T) {
	r := openBytes(t, mergedContent, namedStyles)

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

	got, _ := g.GetCellDetails(1, 1)
	want := grid.CellDetails{Row: 0, Col: 0, RowSpan: 2, ColSpan: 2, Content: "Merged", Fill: "#D9D9D9"}
	if got != want {
		t.Errorf("GetCellDetails(1, 1) = %+v, want %+v", got, want)
	}
	c, _ := g.GetCellDetails(1, 2)
	if c.Content != "C" || c.Row != 1 {
		t.Errorf("GetCellDetails(1, 2) = %+v, want C anchored in row 1", c)
	}
	if g.AnchorCount() != 6 {
		t.Errorf("AnchorCount() = %d, want 6", g.AnchorCount())
	}
}

func TestToGrid_DeclaredColumns(t *testing.T) {
	content := contentHeader + `
  <office:body><office:text>
    <table:table>
      <table:table-column table:number-columns-repeated="4"/>
      <table:table-row><table:table-cell><text:p>only</text:p></table:table-cell></table:table-row>
    </table:table>
  </office:text></office:body>
</office:document-content>`

	r := openBytes(t, content, "")
	if r.Tables()[0].ColCount() != 4 {
		t.Errorf("ColCount() = %d, want 4", r.Tables()[0].ColCount())
	}
	grids, _, err := r.Grids(placement.Options{})
	if err != nil {
		t.Fatalf("Grids() error = %v", err)
	}
	if grids[0].Cols() != 4 {
		t.Errorf("Cols() = %d, want 4", grids[0].Cols())
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

	_, warnings, err := table.ToGrid(placement.Options{})
	if err != nil {
		t.Fatalf("lenient ToGrid() error = %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1", warnings)
	}
}

func TestNoTables(t *testing.T) {
	content := contentHeader + `<office:body><office:text><text:p>prose</text:p></office:text></office:body></office:document-content>`
	r := openBytes(t, content, "")
	if len(r.Tables()) != 0 {
		t.Errorf("Tables() = %d, want 0", len(r.Tables()))
	}
	grids, _, err := r.Grids(placement.Options{})
	if err != nil || len(grids) != 0 {
		t.Errorf("Grids() = %d, %v", len(grids), err)
	}
}
