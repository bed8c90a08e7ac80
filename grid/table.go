package grid

import "fmt"

// Position addresses a single grid position (0-indexed).
type Position struct {
	Row int
	Col int
}

// CellDetails is the record held by an anchor. Row and Col are the anchor's
// own coordinates; RowSpan and ColSpan are at least 1.
type CellDetails struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
	Content string
	Fill    string // Background colour, host format (e.g. "#ff0000")
}

// IsMerged reports whether the anchor covers more than one position.
func (c CellDetails) IsMerged() bool {
	return c.RowSpan > 1 || c.ColSpan > 1
}

// LastRow returns the index of the bottom row of the region.
func (c CellDetails) LastRow() int { return c.Row + c.RowSpan - 1 }

// LastCol returns the index of the right-most column of the region.
func (c CellDetails) LastCol() int { return c.Col + c.ColSpan - 1 }

// Area returns the number of positions in the region.
func (c CellDetails) Area() int { return c.RowSpan * c.ColSpan }

// Covers reports whether (row, col) lies inside the region.
func (c CellDetails) Covers(row, col int) bool {
	return row >= c.Row && row <= c.LastRow() && col >= c.Col && col <= c.LastCol()
}

// CellOptions describes a reanchor request. A zero span means 1.
// Nil Content or Fill keeps the anchor's current value.
type CellOptions struct {
	RowSpan int
	ColSpan int
	Content *string
	Fill    *string
}

// StringPtr returns a pointer to s, for use in CellOptions.
func StringPtr(s string) *string { return &s }

// Table is a fixed-size grid of cells with merged regions.
type Table struct {
	rows    int
	cols    int
	anchors map[Position]CellDetails // keyed by anchor position
	covered map[Position]Position    // covered position -> its anchor
}

// New creates a table of rows x cols where every position is a 1x1 anchor.
func New(rows, cols int) (*Table, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, rows, cols)
	}
	t := &Table{
		rows:    rows,
		cols:    cols,
		anchors: make(map[Position]CellDetails, rows*cols),
		covered: make(map[Position]Position),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t.anchors[Position{i, j}] = single(i, j)
		}
	}
	return t, nil
}

func single(row, col int) CellDetails {
	return CellDetails{Row: row, Col: col, RowSpan: 1, ColSpan: 1}
}

// Rows returns the number of rows
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns
func (t *Table) Cols() int { return t.cols }

func (t *Table) inBounds(row, col int) bool {
	return row >= 0 && row < t.rows && col >= 0 && col < t.cols
}

// AnchorOf returns the anchor position governing (row, col).
func (t *Table) AnchorOf(row, col int) (Position, error) {
	if !t.inBounds(row, col) {
		return Position{}, cellErr("anchor", row, col, ErrOutOfBounds)
	}
	return t.anchorOf(Position{row, col}), nil
}

func (t *Table) anchorOf(p Position) Position {
	if a, ok := t.covered[p]; ok {
		return a
	}
	return p
}

// IsAnchor reports whether (row, col) is the anchor of its region.
// Positions outside the table are never anchors.
func (t *Table) IsAnchor(row, col int) bool {
	_, ok := t.anchors[Position{row, col}]
	return ok
}

// IsCovered reports whether (row, col) belongs to another anchor's region.
func (t *Table) IsCovered(row, col int) bool {
	_, ok := t.covered[Position{row, col}]
	return ok
}

// GetCellDetails returns the record governing (row, col). For a covered
// position this is the anchor's record, carrying the anchor's coordinates.
func (t *Table) GetCellDetails(row, col int) (CellDetails, error) {
	if !t.inBounds(row, col) {
		return CellDetails{}, cellErr("get cell details", row, col, ErrOutOfBounds)
	}
	return t.anchors[t.anchorOf(Position{row, col})], nil
}

// SetCellDetails reanchors (row, col) so that it covers opts.RowSpan x
// opts.ColSpan positions. The anchor's previous region is released before
// the new one is claimed. On error the table is unchanged.
func (t *Table) SetCellDetails(row, col int, opts CellOptions) error {
	const op = "set cell details"

	if !t.inBounds(row, col) {
		return cellErr(op, row, col, ErrOutOfBounds)
	}
	rowSpan, colSpan := opts.RowSpan, opts.ColSpan
	if rowSpan < 0 || colSpan < 0 {
		return cellErr(op, row, col, fmt.Errorf("%w: %dx%d", ErrInvalidSpan, rowSpan, colSpan))
	}
	if rowSpan == 0 {
		rowSpan = 1
	}
	if colSpan == 0 {
		colSpan = 1
	}

	pos := Position{row, col}
	if owner, ok := t.covered[pos]; ok {
		return cellErr(op, row, col, fmt.Errorf("%w: position is covered by (%d,%d)", ErrOverlapConflict, owner.Row, owner.Col))
	}
	if row+rowSpan > t.rows || col+colSpan > t.cols {
		return cellErr(op, row, col, fmt.Errorf("%w: %dx%d in a %dx%d table", ErrSpanOverflow, rowSpan, colSpan, t.rows, t.cols))
	}

	// Validate against the table with this anchor's old region released:
	// positions we already cover are free, 1x1 anchors are absorbed.
	for i := row; i < row+rowSpan; i++ {
		for j := col; j < col+colSpan; j++ {
			p := Position{i, j}
			if p == pos {
				continue
			}
			if owner, ok := t.covered[p]; ok && owner != pos {
				return cellErr(op, row, col, fmt.Errorf("%w: (%d,%d) is covered by (%d,%d)", ErrOverlapConflict, i, j, owner.Row, owner.Col))
			}
			if other, ok := t.anchors[p]; ok && other.IsMerged() {
				return cellErr(op, row, col, fmt.Errorf("%w: (%d,%d) anchors a %dx%d region", ErrOverlapConflict, i, j, other.RowSpan, other.ColSpan))
			}
		}
	}

	cell := t.release(pos)
	cell.RowSpan = rowSpan
	cell.ColSpan = colSpan
	if opts.Content != nil {
		cell.Content = *opts.Content
	}
	if opts.Fill != nil {
		cell.Fill = *opts.Fill
	}
	t.claim(cell)
	return nil
}

// release restores every position covered by the anchor at pos to an
// independent 1x1 anchor and returns the anchor's record shrunk to 1x1.
func (t *Table) release(pos Position) CellDetails {
	cell := t.anchors[pos]
	for i := cell.Row; i <= cell.LastRow(); i++ {
		for j := cell.Col; j <= cell.LastCol(); j++ {
			p := Position{i, j}
			if p == pos {
				continue
			}
			delete(t.covered, p)
			t.anchors[p] = single(i, j)
		}
	}
	cell.RowSpan, cell.ColSpan = 1, 1
	return cell
}

// claim writes cell as an anchor and marks the rest of its region covered.
// The caller has already checked the region is free.
func (t *Table) claim(cell CellDetails) {
	pos := Position{cell.Row, cell.Col}
	for i := cell.Row; i <= cell.LastRow(); i++ {
		for j := cell.Col; j <= cell.LastCol(); j++ {
			p := Position{i, j}
			if p == pos {
				continue
			}
			delete(t.anchors, p)
			t.covered[p] = pos
		}
	}
	t.anchors[pos] = cell
}

// SetCellContent sets the content of the anchor governing (row, col).
func (t *Table) SetCellContent(row, col int, content string) error {
	if !t.inBounds(row, col) {
		return cellErr("set cell content", row, col, ErrOutOfBounds)
	}
	a := t.anchorOf(Position{row, col})
	cell := t.anchors[a]
	cell.Content = content
	t.anchors[a] = cell
	return nil
}

// Unmerge shrinks the region governing (row, col) back to its anchor,
// restoring the covered positions to empty 1x1 cells.
func (t *Table) Unmerge(row, col int) error {
	if !t.inBounds(row, col) {
		return cellErr("unmerge", row, col, ErrOutOfBounds)
	}
	a := t.anchorOf(Position{row, col})
	t.anchors[a] = t.release(a)
	return nil
}

// Anchors returns a copy of every anchor record in row-major order.
func (t *Table) Anchors() []CellDetails {
	out := make([]CellDetails, 0, len(t.anchors))
	for i := 0; i < t.rows; i++ {
		for j := 0; j < t.cols; j++ {
			if cell, ok := t.anchors[Position{i, j}]; ok {
				out = append(out, cell)
			}
		}
	}
	return out
}

// AnchorCount returns the number of anchors in the table.
func (t *Table) AnchorCount() int { return len(t.anchors) }

// Clone returns an independent deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		rows:    t.rows,
		cols:    t.cols,
		anchors: make(map[Position]CellDetails, len(t.anchors)),
		covered: make(map[Position]Position, len(t.covered)),
	}
	for k, v := range t.anchors {
		c.anchors[k] = v
	}
	for k, v := range t.covered {
		c.covered[k] = v
	}
	return c
}
