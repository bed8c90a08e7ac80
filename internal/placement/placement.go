// Package placement turns the row-by-row cell lists found in documents into
// a grid. Each source row lists only the cells that start in it; positions
// claimed by a row span from above are skipped, as an HTML table does.
package placement

import (
	"fmt"

	"github.com/tsawler/tablewrap/grid"
)

// Span limits, the same ones browsers apply to rowspan and colspan.
const (
	MaxColSpan = 1000
	MaxRowSpan = 65534
)

// RowSpanToEnd makes a cell run to the last row, like rowspan="0".
const RowSpanToEnd = -1

// Cell is a source cell. Spans below 1 are treated as 1, except a negative
// RowSpan, which runs to the last row. Larger spans are cut to MaxColSpan
// and MaxRowSpan.
type Cell struct {
	Text    string
	Fill    string
	RowSpan int
	ColSpan int
}

// Warning describes a source cell that could not be placed as written.
type Warning struct {
	Row     int
	Col     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("(%d,%d): %s", w.Row, w.Col, w.Message)
}

// Options controls how conflicts in the source are handled.
type Options struct {
	// Strict returns the grid error instead of degrading an overlapping
	// cell to 1x1.
	Strict bool
	// Columns is the column count the source declares. The grid is at
	// least this wide, up to MaxColSpan.
	Columns int
}

// Build places rows into a new grid. The column count is the widest row
// once spans from earlier rows are accounted for.
func Build(rows [][]Cell, opts Options) (*grid.Table, []Warning, error) {
	rowCount := len(rows)
	colCount := max(width(rows), min(opts.Columns, MaxColSpan))

	t, err := grid.New(rowCount, colCount)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	for r, row := range rows {
		c := 0
		for _, cell := range row {
			for c < colCount && t.IsCovered(r, c) {
				c++
			}
			if c >= colCount {
				warnings = append(warnings, Warning{Row: r, Col: c, Message: "cell dropped: row is full"})
				break
			}

			rs, cs := spans(cell, r, rowCount)
			if c+cs > colCount {
				cs = colCount - c
			}
			content := cell.Text
			fill := cell.Fill
			err := t.SetCellDetails(r, c, grid.CellOptions{RowSpan: rs, ColSpan: cs, Content: &content, Fill: &fill})
			if err != nil {
				if opts.Strict {
					return nil, warnings, err
				}
				warnings = append(warnings, Warning{Row: r, Col: c, Message: fmt.Sprintf("span %dx%d reduced to 1x1: %v", rs, cs, err)})
				if err := t.SetCellDetails(r, c, grid.CellOptions{Content: &content, Fill: &fill}); err != nil {
					return nil, warnings, err
				}
				cs = 1
			}
			c += cs
		}
	}
	return t, warnings, nil
}

func spans(cell Cell, r, rowCount int) (int, int) {
	rs := min(max(cell.RowSpan, 1), MaxRowSpan)
	if cell.RowSpan < 0 || r+rs > rowCount {
		rs = rowCount - r
	}
	cs := min(max(cell.ColSpan, 1), MaxColSpan)
	return rs, cs
}

// width runs the same walk as Build over an occupancy set to find the
// number of columns the rows need.
func width(rows [][]Cell) int {
	occupied := make(map[[2]int]bool)
	cols := 0
	for r, row := range rows {
		c := 0
		for _, cell := range row {
			for occupied[[2]int{r, c}] {
				c++
			}
			rs, cs := spans(cell, r, len(rows))
			for i := r; i < r+rs; i++ {
				for j := c; j < c+cs; j++ {
					occupied[[2]int{i, j}] = true
				}
			}
			c += cs
			if c > cols {
				cols = c
			}
		}
	}
	return cols
}
