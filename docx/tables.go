package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// ParsedTable represents a parsed table with resolved structure.
type ParsedTable struct {
	Rows    []ParsedTableRow
	Columns int // Columns declared by w:tblGrid
}

// ToText returns a plain text representation of the table.
func (pt *ParsedTable) ToText() string {
	var sb strings.Builder
	for i, row := range pt.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		first := true
		for _, cell := range row.Cells {
			if cell.IsMergedContinuation {
				continue
			}
			if !first {
				sb.WriteString("\t")
			}
			first = false
			// Replace newlines within cells with spaces
			sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
		}
	}
	return sb.String()
}

// ColCount returns the number of grid columns: the declared grid if
// present, otherwise the widest row.
func (pt *ParsedTable) ColCount() int {
	if pt.Columns > 0 {
		return pt.Columns
	}
	count := 0
	for _, row := range pt.Rows {
		n := 0
		for _, cell := range row.Cells {
			n += cell.ColSpan
		}
		if n > count {
			count = n
		}
	}
	return count
}

// ParsedTableRow represents a parsed table row.
type ParsedTableRow struct {
	Cells []ParsedTableCell
}

// ParsedTableCell represents a parsed table cell.
type ParsedTableCell struct {
	Text string // Paragraph text joined by newlines

	// Structure
	ColSpan              int  // Number of columns spanned (gridSpan)
	RowSpan              int  // Number of rows spanned (vMerge)
	IsMergedContinuation bool // True if this is a continuation of a vertical merge

	Shading string // Background color (hex)
}

// TableParser handles parsing of DOCX tables.
type TableParser struct{}

// NewTableParser creates a new table parser.
func NewTableParser() *TableParser {
	return &TableParser{}
}

// ParseTable parses a table XML element into a ParsedTable.
func (tp *TableParser) ParseTable(tbl tableXML) ParsedTable {
	parsed := ParsedTable{
		Columns: len(tbl.Grid.Cols),
	}

	for _, row := range tbl.Rows {
		parsed.Rows = append(parsed.Rows, tp.parseRow(row))
	}

	tp.processVerticalMerges(&parsed)

	return parsed
}

// parseRow parses a table row.
func (tp *TableParser) parseRow(row tableRowXML) ParsedTableRow {
	var parsed ParsedTableRow
	for _, cell := range row.Cells {
		parsed.Cells = append(parsed.Cells, tp.parseCell(cell))
	}
	return parsed
}

// parseCell parses a table cell.
func (tp *TableParser) parseCell(cell tableCellXML) ParsedTableCell {
	parsed := ParsedTableCell{
		ColSpan: 1,
		RowSpan: 1,
	}

	props := cell.Properties

	// Parse column span (gridSpan)
	if props.GridSpan.Val != "" {
		if span, err := strconv.Atoi(props.GridSpan.Val); err == nil && span > 0 {
			parsed.ColSpan = span
		}
	}

	// A vMerge without val="restart" continues the merge above.
	if props.VMerge.XMLName.Local == "vMerge" && props.VMerge.Val != "restart" {
		parsed.IsMergedContinuation = true
	}

	if props.Shading.Fill != "" && props.Shading.Fill != "auto" {
		parsed.Shading = "#" + strings.TrimPrefix(props.Shading.Fill, "#")
	}

	var paras []string
	for _, p := range cell.Paragraphs {
		var sb strings.Builder
		for _, run := range p.Runs {
			for _, t := range run.Text {
				sb.WriteString(t.Value)
			}
		}
		if sb.Len() > 0 {
			paras = append(paras, sb.String())
		}
	}
	parsed.Text = strings.Join(paras, "\n")

	return parsed
}

// processVerticalMerges calculates row spans for vertically merged cells.
// Each continuation cell adds one row to the cell that started the merge in
// the same grid column.
func (tp *TableParser) processVerticalMerges(table *ParsedTable) {
	type ref struct{ row, cell int }
	starts := make(map[int]ref) // grid column -> merge start

	for rowIdx := range table.Rows {
		colIdx := 0
		for cellIdx := range table.Rows[rowIdx].Cells {
			cell := &table.Rows[rowIdx].Cells[cellIdx]
			if cell.IsMergedContinuation {
				if start, ok := starts[colIdx]; ok {
					table.Rows[start.row].Cells[start.cell].RowSpan++
				} else {
					// Continuation with nothing above: treat as a normal cell.
					cell.IsMergedContinuation = false
					starts[colIdx] = ref{rowIdx, cellIdx}
				}
			} else {
				starts[colIdx] = ref{rowIdx, cellIdx}
			}
			colIdx += cell.ColSpan
		}
	}
}

// ToGrid places the table into a new grid. Continuation cells are dropped;
// the positions they occupied are covered by the merge's row span. The grid
// is at least as wide as the declared column grid.
func (pt *ParsedTable) ToGrid(opts placement.Options) (*grid.Table, []placement.Warning, error) {
	rows := make([][]placement.Cell, len(pt.Rows))
	for i, row := range pt.Rows {
		for _, cell := range row.Cells {
			if cell.IsMergedContinuation {
				continue
			}
			rows[i] = append(rows[i], placement.Cell{
				Text:    cell.Text,
				Fill:    cell.Shading,
				RowSpan: cell.RowSpan,
				ColSpan: cell.ColSpan,
			})
		}
	}
	opts.Columns = pt.ColCount()
	return placement.Build(rows, opts)
}
