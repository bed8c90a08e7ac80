package odt

import (
	"strconv"
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// maxRepeat caps number-*-repeated attributes. Office suites write very
// large repeat counts for trailing empty rows and cells.
const maxRepeat = 1024

// ParsedTable represents a parsed table with resolved structure.
type ParsedTable struct {
	Name       string
	Rows       []ParsedTableRow
	ColumnDefs int // Columns declared by table:table-column
	HeaderRows int // Leading rows from table:table-header-rows
}

// ColCount returns the number of grid columns: the declared columns if
// present, otherwise the widest row.
func (pt *ParsedTable) ColCount() int {
	if pt.ColumnDefs > 0 {
		return pt.ColumnDefs
	}
	count := 0
	for _, row := range pt.Rows {
		n := 0
		for _, cell := range row.Cells {
			n += cell.ColSpan
		}
		count = max(count, n)
	}
	return count
}

// ToText returns a plain text representation of the table.
func (pt *ParsedTable) ToText() string {
	var sb strings.Builder
	for i, row := range pt.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, cell := range row.Cells {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
		}
	}
	return sb.String()
}

// ParsedTableRow represents a parsed table row.
type ParsedTableRow struct {
	Cells []ParsedTableCell
}

// ParsedTableCell represents a parsed table cell. Covered cells never
// appear; the cells that cover them carry the spans.
type ParsedTableCell struct {
	Text       string // Paragraph text joined by newlines
	ColSpan    int
	RowSpan    int
	Background string // #RRGGBB or ""
}

// TableParser handles parsing of ODT tables.
type TableParser struct {
	styles *styleResolver
}

// NewTableParser creates a new table parser.
func NewTableParser(styles *styleResolver) *TableParser {
	return &TableParser{styles: styles}
}

// ParseTable parses a table XML element into a ParsedTable.
func (tp *TableParser) ParseTable(tbl tableXML) ParsedTable {
	parsed := ParsedTable{
		Name:       tbl.Name,
		HeaderRows: len(tbl.HeaderRows),
	}
	for _, col := range tbl.Columns {
		parsed.ColumnDefs += repeat(col.NumberRepeated)
	}

	rows := append(append([]tableRowXML(nil), tbl.HeaderRows...), tbl.Rows...)
	for i, row := range rows {
		pr := tp.parseRow(row)
		n := repeat(row.NumberRepeated)
		if i == len(rows)-1 && n > 1 && len(pr.Cells) == 0 {
			break // filler rows to the end of the sheet
		}
		for ; n > 0; n-- {
			parsed.Rows = append(parsed.Rows, pr)
		}
	}
	return parsed
}

// parseRow parses a table row, expanding repeated cells. A repeated blank
// cell at the end of the row is filler and is dropped.
func (tp *TableParser) parseRow(row tableRowXML) ParsedTableRow {
	var parsed ParsedTableRow
	for i, cell := range row.Cells {
		pc := tp.parseCell(cell)
		n := repeat(cell.NumberRepeated)
		if i == len(row.Cells)-1 && n > 1 && pc.blank() {
			break
		}
		for ; n > 0; n-- {
			parsed.Cells = append(parsed.Cells, pc)
		}
	}
	return parsed
}

func (c ParsedTableCell) blank() bool {
	return c.Text == "" && c.Background == "" && c.ColSpan == 1 && c.RowSpan == 1
}

// parseCell parses a table cell.
func (tp *TableParser) parseCell(cell tableCellXML) ParsedTableCell {
	parsed := ParsedTableCell{
		ColSpan: positive(cell.NumberColumnsSpanned),
		RowSpan: positive(cell.NumberRowsSpanned),
	}
	if tp.styles != nil {
		parsed.Background = tp.styles.Background(cell.StyleName)
	}

	var paras []string
	for _, p := range cell.Paragraphs {
		if p.XMLName.Local != "p" && p.XMLName.Local != "h" {
			continue
		}
		var sb strings.Builder
		sb.WriteString(p.Text)
		for _, span := range p.Spans {
			sb.WriteString(span.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paras = append(paras, text)
		}
	}
	parsed.Text = strings.Join(paras, "\n")
	return parsed
}

// ToGrid places the table into a new grid. Columns the table declares
// but no cell reaches are kept as empty columns.
func (pt *ParsedTable) ToGrid(opts placement.Options) (*grid.Table, []placement.Warning, error) {
	rows := make([][]placement.Cell, len(pt.Rows))
	for i, row := range pt.Rows {
		for _, cell := range row.Cells {
			rows[i] = append(rows[i], placement.Cell{
				Text:    cell.Text,
				Fill:    cell.Background,
				RowSpan: cell.RowSpan,
				ColSpan: cell.ColSpan,
			})
		}
	}
	opts.Columns = pt.ColCount()
	return placement.Build(rows, opts)
}

func repeat(s string) int {
	n := positive(s)
	return min(n, maxRepeat)
}

// positive parses a span or repeat attribute; absent or invalid values
// count as 1.
func positive(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return 1
}
