package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned when a table is created with a
	// non-positive number of rows or columns.
	ErrInvalidDimension = errors.New("grid: invalid dimension")

	// ErrInvalidSpan is returned for a negative row or column span.
	ErrInvalidSpan = fmt.Errorf("%w: span must be positive", ErrInvalidDimension)

	// ErrOutOfBounds is returned when a position lies outside the table.
	ErrOutOfBounds = errors.New("grid: position out of bounds")

	// ErrSpanOverflow is returned when a span would extend past the table.
	ErrSpanOverflow = errors.New("grid: span exceeds table bounds")

	// ErrOverlapConflict is returned when a span would intersect the region
	// of a different anchor.
	ErrOverlapConflict = errors.New("grid: span overlaps another merged region")
)

// CellError records a failed cell operation and the position it targeted.
type CellError struct {
	Op  string
	Row int
	Col int
	Err error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%s (%d,%d): %v", e.Op, e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

func cellErr(op string, row, col int, err error) error {
	return &CellError{Op: op, Row: row, Col: col, Err: err}
}
