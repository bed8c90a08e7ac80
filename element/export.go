package element

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToMarkdown converts the element to a markdown pipe table. The first row is
// the header. A merged cell's content appears once, at its anchor; the other
// positions it covers are written as empty cells.
func (t *Table) ToMarkdown() string {
	if t.RowCount == 0 || t.ColumnCount == 0 {
		return ""
	}

	var sb strings.Builder
	for i, row := range t.layout() {
		sb.WriteString("|")
		for _, s := range row {
			text := ""
			if s.cell != nil && !s.covered {
				// Replace newlines and pipes within cells
				text = strings.ReplaceAll(s.cell.Content, "\n", " ")
				text = strings.ReplaceAll(text, "|", "\\|")
				text = strings.TrimSpace(text)
			}
			sb.WriteString(" ")
			sb.WriteString(text)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")

		// Add header separator after first row
		if i == 0 {
			sb.WriteString("|")
			for j := 0; j < t.ColumnCount; j++ {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ToCSV converts the element to CSV with one field per grid position.
// Covered positions are empty fields.
func (t *Table) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.layout() {
		for j, s := range row {
			text := ""
			if s.cell != nil && !s.covered {
				text = s.cell.Content
			}
			// Escape quotes and wrap in quotes if necessary
			if strings.Contains(text, ",") || strings.Contains(text, "\"") || strings.Contains(text, "\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToHTML renders the element as an HTML table. Spans greater than one are
// written as rowspan/colspan attributes and a fill as a data-fill attribute.
func (t *Table) ToHTML() (string, error) {
	table := &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}
	body := &html.Node{Type: html.ElementNode, Data: "tbody", DataAtom: atom.Tbody}
	table.AppendChild(body)

	for _, row := range t.Rows {
		tr := &html.Node{Type: html.ElementNode, Data: "tr", DataAtom: atom.Tr}
		for _, c := range row.Cells {
			td := &html.Node{Type: html.ElementNode, Data: "td", DataAtom: atom.Td}
			if c.RowSpan > 1 {
				td.Attr = append(td.Attr, html.Attribute{Key: "rowspan", Val: strconv.Itoa(c.RowSpan)})
			}
			if c.ColSpan > 1 {
				td.Attr = append(td.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(c.ColSpan)})
			}
			if c.Fill != "" {
				td.Attr = append(td.Attr, html.Attribute{Key: "data-fill", Val: c.Fill})
			}
			if c.Content != "" {
				td.AppendChild(&html.Node{Type: html.TextNode, Data: c.Content})
			}
			tr.AppendChild(td)
		}
		body.AppendChild(tr)
	}

	var sb strings.Builder
	if err := html.Render(&sb, table); err != nil {
		return "", err
	}
	return sb.String(), nil
}
