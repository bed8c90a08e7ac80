// Package blueprint reads table layouts from YAML or TOML files.
//
// A blueprint names the table size and then the cells to set, in order:
//
//	rows: 3
//	cols: 3
//	cells:
//	  - {row: 0, col: 0, rowSpan: 2, colSpan: 2, content: "Merged", fill: "#eeeeee"}
//	  - {row: 2, col: 2, content: "Total"}
package blueprint

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/tablewrap"
)

// Blueprint is a table layout.
type Blueprint struct {
	Rows  int        `yaml:"rows" toml:"rows"`
	Cols  int        `yaml:"cols" toml:"cols"`
	Cells []CellSpec `yaml:"cells" toml:"cells"`
}

// CellSpec is one SetCellDetails call. Omitted spans mean 1; omitted
// content or fill leaves the cell's value alone.
type CellSpec struct {
	Row     int     `yaml:"row" toml:"row"`
	Col     int     `yaml:"col" toml:"col"`
	RowSpan int     `yaml:"rowSpan,omitempty" toml:"rowSpan,omitempty"`
	ColSpan int     `yaml:"colSpan,omitempty" toml:"colSpan,omitempty"`
	Content *string `yaml:"content,omitempty" toml:"content,omitempty"`
	Fill    *string `yaml:"fill,omitempty" toml:"fill,omitempty"`
}

// Syntax is a blueprint file syntax.
type Syntax string

const (
	YAML Syntax = "yaml"
	TOML Syntax = "toml"
)

// ErrUnknownSyntax is returned for files that are neither YAML nor TOML.
var ErrUnknownSyntax = errors.New("unknown blueprint syntax")

// SyntaxOf picks the syntax from a file extension.
func SyntaxOf(path string) (Syntax, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSyntax, filepath.Ext(path))
	}
}

// Load reads and validates the blueprint at path.
func Load(path string) (*Blueprint, error) {
	syntax, err := SyntaxOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint file: %w", err)
	}
	return Decode(data, syntax)
}

// Decode parses data. Unknown fields are rejected so that typos such as
// "colspan" do not silently produce an unmerged cell.
func Decode(data []byte, syntax Syntax) (*Blueprint, error) {
	var b Blueprint
	switch syntax {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case TOML:
		meta, err := toml.Decode(string(data), &b)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("failed to parse TOML: unknown fields %s", strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSyntax, syntax)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blueprint: %w", err)
	}
	return &b, nil
}

// Validate checks the fields that can be checked without building.
func (b *Blueprint) Validate() error {
	if b.Rows <= 0 {
		return fmt.Errorf("rows must be positive, got %d", b.Rows)
	}
	if b.Cols <= 0 {
		return fmt.Errorf("cols must be positive, got %d", b.Cols)
	}
	return nil
}

// Build applies the cells in order to a new table. The first failing cell
// stops the build.
func (b *Blueprint) Build() (*tablewrap.TableWrapper, error) {
	builder := tablewrap.Build(b.Rows, b.Cols)
	for i, c := range b.Cells {
		builder.Cell(c.Row, c.Col, tablewrap.CellOptions{
			RowSpan: c.RowSpan,
			ColSpan: c.ColSpan,
			Content: c.Content,
			Fill:    c.Fill,
		})
		if err := builder.Err(); err != nil {
			return nil, fmt.Errorf("cells[%d]: %w", i, err)
		}
	}
	return builder.Wrapper()
}

// FromWrapper describes an existing table as a blueprint, one entry per
// anchor that is merged or carries content or fill.
func FromWrapper(w *tablewrap.TableWrapper) *Blueprint {
	b := &Blueprint{Rows: w.Rows(), Cols: w.Cols()}
	for _, a := range w.Grid().Anchors() {
		if !a.IsMerged() && a.Content == "" && a.Fill == "" {
			continue
		}
		spec := CellSpec{Row: a.Row, Col: a.Col}
		if a.RowSpan > 1 {
			spec.RowSpan = a.RowSpan
		}
		if a.ColSpan > 1 {
			spec.ColSpan = a.ColSpan
		}
		if a.Content != "" {
			spec.Content = tablewrap.StringPtr(a.Content)
		}
		if a.Fill != "" {
			spec.Fill = tablewrap.StringPtr(a.Fill)
		}
		b.Cells = append(b.Cells, spec)
	}
	return b
}

// Encode writes b in the given syntax.
func (b *Blueprint) Encode(syntax Syntax) ([]byte, error) {
	var buf bytes.Buffer
	switch syntax {
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case TOML:
		if err := toml.NewEncoder(&buf).Encode(b); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSyntax, syntax)
	}
	return buf.Bytes(), nil
}
