package xlsx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeString indicates a string value.
	CellTypeString CellType = iota
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeFormula indicates a formula.
	CellTypeFormula
	// CellTypeError indicates an error value.
	CellTypeError
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeFormula:
		return "formula"
	case CellTypeError:
		return "error"
	case CellTypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Cell represents a cell in a worksheet.
type Cell struct {
	Value string   // The cell's display value
	Type  CellType // The type of data
	Row   int      // 0-indexed row
	Col   int      // 0-indexed column
	Fill  string   // Solid background colour as #RRGGBB, if any
}

// IsEmpty returns true if the cell has no value.
func (c *Cell) IsEmpty() bool {
	return c.Type == CellTypeEmpty || c.Value == ""
}

// Sheet represents a worksheet in the workbook.
type Sheet struct {
	Name  string
	Index int
	Rows  [][]Cell

	// Merged cell regions, in document order
	MergedRegions []MergedRegion
}

// MergedRegion represents a merged cell region. End coordinates are
// inclusive.
type MergedRegion struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// RowSpan returns the number of rows the region covers.
func (m MergedRegion) RowSpan() int { return m.EndRow - m.StartRow + 1 }

// ColSpan returns the number of columns the region covers.
func (m MergedRegion) ColSpan() int { return m.EndCol - m.StartCol + 1 }

// Cell returns the cell at the given row and column (0-indexed).
// Returns nil if the cell doesn't exist.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return nil
	}
	return &s.Rows[row][col]
}

// CellByRef returns the cell at the given reference (e.g., "A1").
// Returns nil if the cell doesn't exist.
func (s *Sheet) CellByRef(ref string) *Cell {
	col, row, err := ParseCellRef(ref)
	if err != nil {
		return nil
	}
	return s.Cell(row, col)
}

// RowCount returns the number of rows in the sheet, including rows that
// only a merged region reaches.
func (s *Sheet) RowCount() int {
	n := len(s.Rows)
	for _, m := range s.MergedRegions {
		if m.EndRow+1 > n {
			n = m.EndRow + 1
		}
	}
	return n
}

// ColCount returns the number of columns in the sheet, including columns
// that only a merged region reaches.
func (s *Sheet) ColCount() int {
	n := 0
	for _, row := range s.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	for _, m := range s.MergedRegions {
		if m.EndCol+1 > n {
			n = m.EndCol + 1
		}
	}
	return n
}

// ToGrid places the sheet into a new grid. Every populated cell becomes an
// anchor at its own position; each merged region is then applied with the
// content and fill of its top-left cell. A region that overlaps an earlier
// one is an error in strict mode and is skipped with a warning otherwise.
func (s *Sheet) ToGrid(opts placement.Options) (*grid.Table, []placement.Warning, error) {
	rows, cols := s.RowCount(), s.ColCount()
	if rows == 0 || cols == 0 {
		return nil, nil, fmt.Errorf("sheet %q: %w", s.Name, grid.ErrInvalidDimension)
	}

	t, err := grid.New(rows, cols)
	if err != nil {
		return nil, nil, err
	}

	for r, row := range s.Rows {
		for c := range row {
			cell := &row[c]
			if cell.IsEmpty() && cell.Fill == "" {
				continue
			}
			if err := t.SetCellDetails(r, c, grid.CellOptions{
				Content: grid.StringPtr(cell.Value),
				Fill:    grid.StringPtr(cell.Fill),
			}); err != nil {
				return nil, nil, err
			}
		}
	}

	var warnings []placement.Warning
	for _, m := range s.MergedRegions {
		root := s.Cell(m.StartRow, m.StartCol)
		opt := grid.CellOptions{RowSpan: m.RowSpan(), ColSpan: m.ColSpan()}
		if root != nil {
			opt.Content = grid.StringPtr(root.Value)
			opt.Fill = grid.StringPtr(root.Fill)
		}
		err := t.SetCellDetails(m.StartRow, m.StartCol, opt)
		if err == nil {
			continue
		}
		if opts.Strict || !errors.Is(err, grid.ErrOverlapConflict) {
			return nil, warnings, fmt.Errorf("merge %s: %w", m, err)
		}
		warnings = append(warnings, placement.Warning{
			Row:     m.StartRow,
			Col:     m.StartCol,
			Message: fmt.Sprintf("merge %s skipped: overlaps another merge", m),
		})
	}
	return t, warnings, nil
}

// String returns the region as an A1-style range, e.g. "A1:B2".
func (m MergedRegion) String() string {
	return CellRef(m.StartCol, m.StartRow) + ":" + CellRef(m.EndCol, m.EndRow)
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	// Find where letters end and numbers begin
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}

	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference: no column letters")
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference: no row number")
	}

	colPart := ref[:i]
	rowPart := ref[i:]

	// Parse column (A=0, B=1, ..., Z=25, AA=26, etc.)
	col = ColumnToIndex(colPart)
	if col < 0 {
		return 0, 0, fmt.Errorf("invalid column: %s", colPart)
	}

	// Parse row (1-indexed in Excel, convert to 0-indexed)
	rowNum, err := strconv.Atoi(rowPart)
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row: %s", rowPart)
	}
	row = rowNum - 1

	return col, row, nil
}

// ColumnToIndex converts a column letter(s) to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26, AB=27, etc.
func ColumnToIndex(col string) int {
	col = strings.ToUpper(col)
	result := 0
	for _, c := range col {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// IndexToColumn converts a 0-indexed column number to column letter(s).
// 0=A, 1=B, ..., 25=Z, 26=AA, 27=AB, etc.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}

	result := ""
	index++ // Convert to 1-indexed for calculation
	for index > 0 {
		index-- // Adjust for 0-based modulo
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// CellRef creates a cell reference string from column and row indices (0-indexed).
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", IndexToColumn(col), row+1)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// ParseRangeRef parses a range reference like "A1:D10" into start and end coordinates.
func ParseRangeRef(ref string) (startCol, startRow, endCol, endRow int, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("invalid range reference: %s", ref)
	}

	startCol, startRow, err = ParseCellRef(parts[0])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid start cell: %w", err)
	}

	endCol, endRow, err = ParseCellRef(parts[1])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid end cell: %w", err)
	}

	return startCol, startRow, endCol, endRow, nil
}
