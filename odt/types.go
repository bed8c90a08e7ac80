package odt

import "encoding/xml"

// contentXML is the part of content.xml a table reader needs. Tables
// nested in sections or frames are not read.
type contentXML struct {
	XMLName    xml.Name      `xml:"document-content"`
	AutoStyles []styleDefXML `xml:"automatic-styles>style"`
	Tables     []tableXML    `xml:"body>text>table"`
}

// stylesXML holds the named styles of styles.xml.
type stylesXML struct {
	XMLName xml.Name      `xml:"document-styles"`
	Styles  []styleDefXML `xml:"styles>style"`
}

// styleDefXML represents a style definition (<style:style>).
type styleDefXML struct {
	Name            string             `xml:"name,attr"`
	Family          string             `xml:"family,attr"`
	ParentStyleName string             `xml:"parent-style-name,attr"`
	TableCellProps  *tableCellPropsXML `xml:"table-cell-properties"`
}

// tableCellPropsXML represents table cell properties.
type tableCellPropsXML struct {
	BackgroundColor string `xml:"background-color,attr"`
}

// tableXML represents a table (<table:table>).
type tableXML struct {
	Name       string        `xml:"name,attr"`
	StyleName  string        `xml:"style-name,attr"`
	Columns    []tableColXML `xml:"table-column"`
	HeaderRows []tableRowXML `xml:"table-header-rows>table-row"`
	Rows       []tableRowXML `xml:"table-row"`
}

// tableColXML represents a table column definition.
type tableColXML struct {
	NumberRepeated string `xml:"number-columns-repeated,attr"`
}

// tableRowXML represents a table row (<table:table-row>). Covered cells
// (<table:covered-table-cell>) are not decoded; their positions are
// implied by the spans of the cells that cover them.
type tableRowXML struct {
	NumberRepeated string         `xml:"number-rows-repeated,attr"`
	Cells          []tableCellXML `xml:"table-cell"`
}

// tableCellXML represents a table cell (<table:table-cell>).
type tableCellXML struct {
	StyleName            string         `xml:"style-name,attr"`
	NumberColumnsSpanned string         `xml:"number-columns-spanned,attr"`
	NumberRowsSpanned    string         `xml:"number-rows-spanned,attr"`
	NumberRepeated       string         `xml:"number-columns-repeated,attr"`
	Paragraphs           []paragraphXML `xml:",any"`
}

// paragraphXML represents a paragraph or heading inside a cell.
type paragraphXML struct {
	XMLName xml.Name
	Spans   []spanXML `xml:"span"`
	Text    string    `xml:",chardata"`
}

// spanXML represents a text span with formatting (<text:span>).
type spanXML struct {
	Text string `xml:",chardata"`
}
