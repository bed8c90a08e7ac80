// Package grid provides the cell store behind a merged-cell table.
//
// A [Table] has a fixed number of rows and columns. Every position is either
// an anchor, the top-left cell of a region that owns the region's metadata,
// or a covered position that belongs to exactly one anchor's region.
// A new table starts with every position as its own 1x1 anchor:
//
//	t, err := grid.New(3, 3)
//	if err != nil {
//	    // handle error
//	}
//	err = t.SetCellDetails(0, 0, grid.CellOptions{RowSpan: 2, ColSpan: 2})
//
// # Merging
//
// [Table.SetCellDetails] reanchors a position with a new span. The previous
// region of that anchor is released first, then the new region is claimed.
// 1x1 anchors inside the new region are absorbed. Any position owned by a
// different merged region makes the call fail with [ErrOverlapConflict].
//
// # Lookups
//
// Covered positions are tracked in a flat map from position to anchor, so
// [Table.GetCellDetails] and overlap checks cost time proportional to the
// span being touched, not to the whole table.
//
// # Errors
//
// [New] fails with [ErrInvalidDimension]. Cell operations wrap one of
// [ErrInvalidSpan], [ErrOutOfBounds], [ErrSpanOverflow] or
// [ErrOverlapConflict] in a [*CellError]; test with errors.Is. The table is
// left unchanged when an operation fails.
//
// A Table does no locking. Confine it to one goroutine or serialize access.
package grid
