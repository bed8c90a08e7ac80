package tablewrap

import (
	"github.com/tsawler/tablewrap/element"
	"github.com/tsawler/tablewrap/grid"
)

// TableWrapper pairs a grid with its serializer. It is the value a host
// holds while a table is being edited.
//
// A TableWrapper is not safe for concurrent use; share one through a
// host.Queue instead.
type TableWrapper struct {
	grid *grid.Table
}

// New creates a rows x cols table in which every cell is an empty 1x1
// anchor. It fails with grid.ErrInvalidDimension when either dimension is
// not positive.
func New(rows, cols int) (*TableWrapper, error) {
	g, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}
	return &TableWrapper{grid: g}, nil
}

// Wrap returns a TableWrapper around an existing grid, such as one built by
// an importer. The wrapper takes ownership of g.
func Wrap(g *grid.Table) *TableWrapper {
	return &TableWrapper{grid: g}
}

// Rows returns the number of rows.
func (w *TableWrapper) Rows() int { return w.grid.Rows() }

// Cols returns the number of columns.
func (w *TableWrapper) Cols() int { return w.grid.Cols() }

// Grid returns the underlying grid.
func (w *TableWrapper) Grid() *grid.Table { return w.grid }

// SetCellDetails makes (row, col) the anchor of a RowSpan x ColSpan region.
// On error the table is unchanged.
func (w *TableWrapper) SetCellDetails(row, col int, opts CellOptions) error {
	return w.grid.SetCellDetails(row, col, opts)
}

// GetCellDetails returns the record of the anchor governing (row, col).
func (w *TableWrapper) GetCellDetails(row, col int) (CellDetails, error) {
	return w.grid.GetCellDetails(row, col)
}

// ToElement serializes the current state of the table. The element shares
// nothing with the wrapper; later edits do not affect it.
func (w *TableWrapper) ToElement() *element.Table {
	return element.FromGrid(w.grid)
}

// Clone returns an independent copy of the wrapper.
func (w *TableWrapper) Clone() *TableWrapper {
	return &TableWrapper{grid: w.grid.Clone()}
}
