package pptx

import (
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Slide represents a parsed slide.
type Slide struct {
	Index  int     // 0-indexed position in the deck
	Title  string  // Slide title (from title placeholder)
	Tables []Table // Tables on the slide, groups included
}

// Table represents a table on a slide.
type Table struct {
	Name    string // Graphic frame name, e.g. "Table 3"
	Slide   int    // Index of the slide holding the table
	Rows    [][]TableCell
	Columns int // Columns declared by a:tblGrid
}

// TableCell represents a cell in a table.
type TableCell struct {
	Text     string
	RowSpan  int
	ColSpan  int
	Fill     string // #RRGGBB or ""
	IsMerged bool   // Part of a merged cell (not the origin)
}

// ToText returns the origin cells tab-separated, one line per row.
func (t *Table) ToText() string {
	var sb strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		first := true
		for _, cell := range row {
			if cell.IsMerged {
				continue
			}
			if !first {
				sb.WriteString("\t")
			}
			first = false
			sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
		}
	}
	return sb.String()
}

// ToGrid places the table into a new grid. Merged positions are dropped;
// the origin's spans cover them.
func (t *Table) ToGrid(opts placement.Options) (*grid.Table, []placement.Warning, error) {
	rows := make([][]placement.Cell, len(t.Rows))
	for i, row := range t.Rows {
		for _, cell := range row {
			if cell.IsMerged {
				continue
			}
			rows[i] = append(rows[i], placement.Cell{
				Text:    cell.Text,
				Fill:    cell.Fill,
				RowSpan: cell.RowSpan,
				ColSpan: cell.ColSpan,
			})
		}
	}
	return placement.Build(rows, opts)
}
