// Package tablewrap builds tables with merged cells and serializes them
// into elements a host document can insert.
//
// Basic usage:
//
//	w, err := tablewrap.New(2, 3)
//	if err != nil {
//	    // handle error
//	}
//	err = w.SetCellDetails(0, 0, tablewrap.CellOptions{
//	    ColSpan: 2,
//	    Content: tablewrap.StringPtr("Quarter"),
//	})
//	el := w.ToElement()
//
// With the builder:
//
//	el, err := tablewrap.Build(3, 3).
//	    Merge(0, 0, 2, 2).
//	    Content(0, 0, "Region").
//	    Content(2, 2, "Total").
//	    Element()
//
// Importing tables from documents:
//
//	els, warnings, err := tablewrap.Open("report.docx").Tables(0, 2).Elements()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", tablewrap.FormatWarnings(warnings))
//	}
//
// HTML, DOCX, XLSX, ODT, PPTX and EPUB documents are recognised by content.
//
// For lower-level control, the grid, element and importer packages are
// also available.
package tablewrap

import (
	"strings"

	"github.com/tsawler/tablewrap/grid"
	"github.com/tsawler/tablewrap/internal/placement"
)

type (
	// CellOptions describes a cell update; see grid.CellOptions.
	CellOptions = grid.CellOptions
	// CellDetails is an anchor's record; see grid.CellDetails.
	CellDetails = grid.CellDetails
	// Warning describes an imported cell that could not be placed as
	// written.
	Warning = placement.Warning
)

// StringPtr returns a pointer to s, for CellOptions fields.
func StringPtr(s string) *string { return grid.StringPtr(s) }

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	w := tablewrap.Must(tablewrap.New(3, 3))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustImport is like Must for the import terminals, which also return
// warnings. The warnings are discarded.
//
// Example:
//
//	els := tablewrap.MustImport(tablewrap.Open("page.html").Elements())
func MustImport[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
