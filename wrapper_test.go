package tablewrap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/tablewrap/element"
	"github.com/tsawler/tablewrap/grid"
)

func TestNew_InvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-2, 3}} {
		if _, err := New(dims[0], dims[1]); !errors.Is(err, grid.ErrInvalidDimension) {
			t.Errorf("New(%d, %d) error = %v, want ErrInvalidDimension", dims[0], dims[1], err)
		}
	}
}

func TestTableWrapper_SpanOverflow(t *testing.T) {
	w := Must(New(2, 2))
	err := w.SetCellDetails(1, 1, CellOptions{ColSpan: 2})
	if !errors.Is(err, grid.ErrSpanOverflow) {
		t.Fatalf("SetCellDetails() error = %v, want ErrSpanOverflow", err)
	}
}

func TestTableWrapper_ColSpanMerge(t *testing.T) {
	w := Must(New(2, 3))
	if err := w.SetCellDetails(1, 1, CellOptions{ColSpan: 2}); err != nil {
		t.Fatalf("SetCellDetails() error = %v", err)
	}

	got, err := w.GetCellDetails(1, 2)
	if err != nil {
		t.Fatalf("GetCellDetails() error = %v", err)
	}
	want := CellDetails{Row: 1, Col: 1, RowSpan: 1, ColSpan: 2}
	if got != want {
		t.Errorf("GetCellDetails(1, 2) = %+v, want %+v", got, want)
	}

	el := w.ToElement()
	wantEl := &element.Table{
		Type:        element.TypeTable,
		RowCount:    2,
		ColumnCount: 3,
		Rows: []element.Row{
			{Index: 0, Cells: []element.Cell{
				{Row: 0, Column: 0, RowSpan: 1, ColSpan: 1},
				{Row: 0, Column: 1, RowSpan: 1, ColSpan: 1},
				{Row: 0, Column: 2, RowSpan: 1, ColSpan: 1},
			}},
			{Index: 1, Cells: []element.Cell{
				{Row: 1, Column: 0, RowSpan: 1, ColSpan: 1},
				{Row: 1, Column: 1, RowSpan: 1, ColSpan: 2},
			}},
		},
	}
	if diff := cmp.Diff(wantEl, el); diff != "" {
		t.Errorf("ToElement() mismatch (-want +got):\n%s", diff)
	}
}

func TestTableWrapper_ReanchorCoveredCell(t *testing.T) {
	w := Must(New(3, 3))
	if err := w.SetCellDetails(0, 0, CellOptions{RowSpan: 2, ColSpan: 2}); err != nil {
		t.Fatalf("SetCellDetails() error = %v", err)
	}
	before := w.ToElement()

	err := w.SetCellDetails(1, 1, CellOptions{RowSpan: 1, ColSpan: 1})
	if !errors.Is(err, grid.ErrOverlapConflict) {
		t.Fatalf("SetCellDetails(1, 1) error = %v, want ErrOverlapConflict", err)
	}

	var cellErr *grid.CellError
	if !errors.As(err, &cellErr) || cellErr.Row != 1 || cellErr.Col != 1 {
		t.Errorf("error = %#v, want *grid.CellError at (1,1)", err)
	}
	if diff := cmp.Diff(before, w.ToElement()); diff != "" {
		t.Errorf("failed call changed the table (-before +after):\n%s", diff)
	}
}

func TestTableWrapper_ToElementIsSnapshot(t *testing.T) {
	w := Must(New(2, 2))
	first := w.ToElement()
	if diff := cmp.Diff(first, w.ToElement()); diff != "" {
		t.Errorf("ToElement() not idempotent:\n%s", diff)
	}

	if err := w.SetCellDetails(0, 0, CellOptions{ColSpan: 2, Content: StringPtr("later")}); err != nil {
		t.Fatalf("SetCellDetails() error = %v", err)
	}
	if first.AnchorCount() != 4 || first.Rows[0].Cells[0].Content != "" {
		t.Error("earlier element changed after a later edit")
	}
	if got := w.ToElement(); got.AnchorCount() != 3 || got.Area() != 4 {
		t.Errorf("AnchorCount() = %d, Area() = %d, want 3 and 4", got.AnchorCount(), got.Area())
	}
}

func TestTableWrapper_Clone(t *testing.T) {
	w := Must(New(2, 2))
	c := w.Clone()
	if err := c.SetCellDetails(0, 0, CellOptions{RowSpan: 2}); err != nil {
		t.Fatalf("SetCellDetails() error = %v", err)
	}
	if w.Grid().IsCovered(1, 0) {
		t.Error("edit to clone reached the original")
	}
	if c.Rows() != 2 || c.Cols() != 2 {
		t.Errorf("clone dimensions = %dx%d", c.Rows(), c.Cols())
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must() did not panic on error")
		}
	}()
	Must(New(0, 0))
}

func TestFormatWarnings(t *testing.T) {
	got := FormatWarnings([]Warning{
		{Row: 0, Col: 1, Message: "first"},
		{Row: 2, Col: 0, Message: "second"},
	})
	want := "(0,1): first\n(2,0): second"
	if got != want {
		t.Errorf("FormatWarnings() = %q, want %q", got, want)
	}
	if FormatWarnings(nil) != "" {
		t.Error("FormatWarnings(nil) should be empty")
	}
}
