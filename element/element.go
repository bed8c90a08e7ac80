// Package element provides the serialized, host-consumable form of a grid.
//
// A [Table] is produced once from a grid by [FromGrid] and is never linked
// back to it. Rows are emitted in order; each row holds one [Cell] per anchor
// whose top-left corner is in that row, ordered by column. Positions covered
// by a merged region are omitted because the host infers them from the
// anchor's span.
//
// Export methods:
//
//   - [Table.ToMarkdown] - pipe table, merged cells padded
//   - [Table.ToCSV] - one field per grid position
//   - [Table.ToHTML] - <table> with rowspan/colspan
//   - encoding/json - the payload handed to the host
package element

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/tablewrap/grid"
)

// Type identifies the kind of native element a host should insert.
type Type string

// TypeTable is the only element kind produced by this package.
const TypeTable Type = "TABLE"

// Source is anything that can report its dimensions and anchors in
// row-major order. *grid.Table implements it.
type Source interface {
	Rows() int
	Cols() int
	Anchors() []grid.CellDetails
}

// Table is an immutable table element.
type Table struct {
	Type        Type  `json:"type"`
	RowCount    int   `json:"rowCount"`
	ColumnCount int   `json:"columnCount"`
	Rows        []Row `json:"rows"`
}

// Row holds the cells anchored in one grid row.
type Row struct {
	Index int    `json:"index"`
	Cells []Cell `json:"cells"`
}

// Cell describes one anchor and the region it spans.
type Cell struct {
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	RowSpan int    `json:"rowSpan"`
	ColSpan int    `json:"colSpan"`
	Content string `json:"content"`
	Fill    string `json:"fill,omitempty"`
}

// FromGrid serializes src. Anchors are grouped by row and ordered by column,
// so the same grid state always yields the same element.
func FromGrid(src Source) *Table {
	t := &Table{
		Type:        TypeTable,
		RowCount:    src.Rows(),
		ColumnCount: src.Cols(),
		Rows:        make([]Row, src.Rows()),
	}
	for i := range t.Rows {
		t.Rows[i] = Row{Index: i, Cells: []Cell{}}
	}

	for _, a := range src.Anchors() {
		if a.Row < 0 || a.Row >= len(t.Rows) {
			continue
		}
		t.Rows[a.Row].Cells = append(t.Rows[a.Row].Cells, Cell{
			Row:     a.Row,
			Column:  a.Col,
			RowSpan: a.RowSpan,
			ColSpan: a.ColSpan,
			Content: norm.NFC.String(a.Content),
			Fill:    a.Fill,
		})
	}
	return t
}

// AnchorCount returns the number of cells in the element.
func (t *Table) AnchorCount() int {
	n := 0
	for _, row := range t.Rows {
		n += len(row.Cells)
	}
	return n
}

// Area returns the sum of RowSpan*ColSpan over all cells. For an element
// produced from a consistent grid this equals RowCount*ColumnCount.
func (t *Table) Area() int {
	n := 0
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			n += c.RowSpan * c.ColSpan
		}
	}
	return n
}

// Cells returns every cell in row-major order.
func (t *Table) Cells() []Cell {
	out := make([]Cell, 0, t.AnchorCount())
	for _, row := range t.Rows {
		out = append(out, row.Cells...)
	}
	return out
}

// Equal reports whether two elements describe the same table.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Type != o.Type || t.RowCount != o.RowCount || t.ColumnCount != o.ColumnCount || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Rows {
		a, b := t.Rows[i], o.Rows[i]
		if a.Index != b.Index || len(a.Cells) != len(b.Cells) {
			return false
		}
		for j := range a.Cells {
			if a.Cells[j] != b.Cells[j] {
				return false
			}
		}
	}
	return true
}

// GetText returns the content of every cell, tab separated within a row.
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, c := range row.Cells {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(c.Content)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// slot is one grid position as seen by the exporters.
type slot struct {
	cell    *Cell
	covered bool
}

// layout expands the element back to a rows x cols matrix. Covered
// positions point at their anchor and are flagged as covered.
func (t *Table) layout() [][]slot {
	m := make([][]slot, t.RowCount)
	for i := range m {
		m[i] = make([]slot, t.ColumnCount)
	}
	for r := range t.Rows {
		for c := range t.Rows[r].Cells {
			cell := &t.Rows[r].Cells[c]
			for i := cell.Row; i < cell.Row+cell.RowSpan && i < t.RowCount; i++ {
				for j := cell.Column; j < cell.Column+cell.ColSpan && j < t.ColumnCount; j++ {
					if i < 0 || j < 0 {
						continue
					}
					m[i][j] = slot{cell: cell, covered: i != cell.Row || j != cell.Column}
				}
			}
		}
	}
	return m
}
