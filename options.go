package tablewrap

import "github.com/tsawler/tablewrap/internal/placement"

// ImportOptions holds configuration for importing tables.
type ImportOptions struct {
	// Table selection (0-indexed); nil means all tables
	tables []int

	// Fail on overlapping spans instead of degrading the cell to 1x1
	strict bool
}

// defaultOptions returns the default import options.
func defaultOptions() ImportOptions {
	return ImportOptions{
		tables: nil,
		strict: false,
	}
}

// clone creates a deep copy of ImportOptions.
func (o ImportOptions) clone() ImportOptions {
	newOpts := ImportOptions{
		strict: o.strict,
	}

	// Deep copy tables slice
	if o.tables != nil {
		newOpts.tables = make([]int, len(o.tables))
		copy(newOpts.tables, o.tables)
	}

	return newOpts
}

func (o ImportOptions) placement() placement.Options {
	return placement.Options{Strict: o.strict}
}
