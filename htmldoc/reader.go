// Package htmldoc reads the tables of an HTML document into grids.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/net/html"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

// Reader provides access to the tables of an HTML document.
type Reader struct {
	doc    *html.Node
	title  string
	tables []ParsedTable
}

// ParsedTable represents a table extracted from HTML, before placement.
// Rows keeps empty <tr> elements so that row spans line up as in a browser.
type ParsedTable struct {
	Caption string
	Rows    [][]TableCell
}

// TableCell represents a td or th cell.
type TableCell struct {
	Text    string
	Fill    string
	RowSpan int // 0 means "to the end of the table"
	ColSpan int
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{doc: doc}
	if title := findElement(doc, "title"); title != nil {
		reader.title = getTextContent(title)
	}
	reader.collectTables(doc)
	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// Nothing to close for HTML (no file handles kept)
	return nil
}

// Title returns the document title, if any.
func (r *Reader) Title() string { return r.title }

// Tables returns every non-empty table in document order, nested tables
// included.
func (r *Reader) Tables() []ParsedTable {
	return r.tables
}

// Grids places every table into a grid. Tables that cannot be placed in
// strict mode are reported as errors; warnings are collected per table.
func (r *Reader) Grids(opts placement.Options) ([]*grid.Table, []placement.Warning, error) {
	var out []*grid.Table
	var warnings []placement.Warning
	for i := range r.tables {
		g, w, err := r.tables[i].ToGrid(opts)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("table %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, warnings, nil
}

// ToGrid places the table's cells into a new grid.
func (t *ParsedTable) ToGrid(opts placement.Options) (*grid.Table, []placement.Warning, error) {
	rows := make([][]placement.Cell, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]placement.Cell, len(row))
		for j, cell := range row {
			rows[i][j] = placement.Cell{
				Text:    cell.Text,
				Fill:    cell.Fill,
				RowSpan: cell.RowSpan,
				ColSpan: cell.ColSpan,
			}
			if cell.RowSpan == 0 {
				rows[i][j].RowSpan = placement.RowSpanToEnd
			}
		}
	}
	return placement.Build(rows, opts)
}

func (r *Reader) collectTables(n *html.Node) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "table" {
			if table := r.parseTable(n); table.hasCells() {
				r.tables = append(r.tables, *table)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.collectTables(c)
	}
}

// parseTable extracts a table from an HTML table element.
func (r *Reader) parseTable(tableNode *html.Node) *ParsedTable {
	table := &ParsedTable{
		Rows: make([][]TableCell, 0),
	}

	// Find thead, tbody, tfoot, or direct tr children
	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "caption":
				table.Caption = getTextContent(c)
			case "thead", "tbody", "tfoot":
				r.parseTableRows(c, table)
			case "tr":
				table.Rows = append(table.Rows, r.parseTableRow(c))
			}
		}
	}

	return table
}

func (t *ParsedTable) hasCells() bool {
	for _, row := range t.Rows {
		if len(row) > 0 {
			return true
		}
	}
	return false
}

// parseTableRows parses rows within thead, tbody or tfoot.
func (r *Reader) parseTableRows(section *html.Node, table *ParsedTable) {
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "tr" {
			table.Rows = append(table.Rows, r.parseTableRow(c))
		}
	}
}

// parseTableRow parses a single table row.
func (r *Reader) parseTableRow(tr *html.Node) []TableCell {
	row := make([]TableCell, 0)

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cell := TableCell{
				Text:    strings.TrimSpace(getTextContent(c)),
				RowSpan: 1,
				ColSpan: 1,
			}

			for _, attr := range c.Attr {
				switch attr.Key {
				case "rowspan":
					cell.RowSpan = parseSpan(attr.Val, true)
				case "colspan":
					cell.ColSpan = parseSpan(attr.Val, false)
				case "bgcolor":
					cell.Fill = strings.TrimSpace(attr.Val)
				case "style":
					if fill := backgroundColor(attr.Val); fill != "" {
						cell.Fill = fill
					}
				}
			}

			row = append(row, cell)
		}
	}

	return row
}

// parseSpan reads a rowspan/colspan value. Invalid values mean 1; a zero
// rowspan is kept so that placement can extend it to the last row.
func parseSpan(val string, allowZero bool) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return 1
	}
	if n == 0 && !allowZero {
		return 1
	}
	return n
}

// backgroundColor pulls the colour out of an inline style's
// background-color or background declaration. The last one wins, as in
// CSS. Images, positions and other shorthand parts are ignored.
func backgroundColor(style string) string {
	fill := ""
	for _, decl := range strings.Split(style, ";") {
		name, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "background-color", "background":
			for _, tok := range cssTokens(val) {
				if isColor(tok) {
					fill = tok
					break
				}
			}
		}
	}
	return fill
}

// cssTokens splits a declaration value on whitespace outside parentheses.
func cssTokens(val string) []string {
	var tokens []string
	depth, start := 0, -1
	for i, ch := range val {
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (ch == ' ' || ch == '\t' || ch == '\n'):
			if start >= 0 {
				tokens = append(tokens, val[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, val[start:])
	}
	return tokens
}

// isColor reports whether tok is a hex colour, a colour function or a
// named colour. transparent is not a fill.
func isColor(tok string) bool {
	lower := strings.ToLower(tok)
	if strings.HasPrefix(lower, "#") {
		return len(lower) > 1
	}
	for _, fn := range []string{"rgb(", "rgba(", "hsl(", "hsla("} {
		if strings.HasPrefix(lower, fn) {
			return true
		}
	}
	_, ok := colornames.Map[lower]
	return ok
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
		return true
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		// Skip script/style content
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	// Add space after certain block elements
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			result.WriteString(" ")
		}
	}
}
