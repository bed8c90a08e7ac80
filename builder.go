package tablewrap

import (
	"fmt"

	"github.com/tsawler/tablewrap/element"
)

// Builder provides a fluent interface for laying out a table. The first
// failing call is remembered and every later call is skipped, so errors
// can be checked once at the end.
//
// Unlike the Importer, a Builder mutates in place and is not safe for
// concurrent use.
type Builder struct {
	w   *TableWrapper
	err error
}

// Build starts a rows x cols table.
//
// Example:
//
//	el, err := tablewrap.Build(2, 3).Merge(0, 0, 1, 2).Content(0, 0, "Head").Element()
func Build(rows, cols int) *Builder {
	w, err := New(rows, cols)
	return &Builder{w: w, err: err}
}

// Cell applies SetCellDetails at (row, col).
func (b *Builder) Cell(row, col int, opts CellOptions) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.w.SetCellDetails(row, col, opts); err != nil {
		b.err = err
	}
	return b
}

// Merge makes (row, col) the anchor of a rowSpan x colSpan region,
// keeping its content and fill.
func (b *Builder) Merge(row, col, rowSpan, colSpan int) *Builder {
	return b.Cell(row, col, CellOptions{RowSpan: rowSpan, ColSpan: colSpan})
}

// Content sets the content of the anchor governing (row, col).
func (b *Builder) Content(row, col int, content string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.w.grid.SetCellContent(row, col, content); err != nil {
		b.err = err
	}
	return b
}

// Fill sets the fill of the anchor governing (row, col), keeping its span.
func (b *Builder) Fill(row, col int, fill string) *Builder {
	if b.err != nil {
		return b
	}
	d, err := b.w.GetCellDetails(row, col)
	if err != nil {
		b.err = err
		return b
	}
	return b.Cell(d.Row, d.Col, CellOptions{RowSpan: d.RowSpan, ColSpan: d.ColSpan, Fill: &fill})
}

// Row sets the content of consecutive anchors in row, starting at column
// 0 and skipping columns covered by a merge.
func (b *Builder) Row(row int, contents ...string) *Builder {
	if b.err != nil {
		return b
	}
	col := 0
	for _, content := range contents {
		for col < b.w.Cols() && b.w.grid.IsCovered(row, col) {
			col++
		}
		if col >= b.w.Cols() {
			b.err = fmt.Errorf("row %d: %d values do not fit", row, len(contents))
			return b
		}
		b.Content(row, col, content)
		if b.err != nil {
			return b
		}
		d, _ := b.w.GetCellDetails(row, col)
		col = d.LastCol() + 1
	}
	return b
}

// Err returns the first error encountered, if any.
func (b *Builder) Err() error {
	return b.err
}

// Wrapper returns the built table.
func (b *Builder) Wrapper() (*TableWrapper, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.w, nil
}

// Element serializes the built table.
func (b *Builder) Element() (*element.Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.w.ToElement(), nil
}
