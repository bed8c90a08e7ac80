package odt

import (
	"strconv"
	"strings"
)

// styleResolver looks up cell backgrounds through the style inheritance
// chain.
type styleResolver struct {
	styles map[string]styleDefXML
}

func newStyleResolver(named, automatic []styleDefXML) *styleResolver {
	sr := &styleResolver{styles: make(map[string]styleDefXML, len(named)+len(automatic))}
	for _, s := range named {
		sr.styles[s.Name] = s
	}
	for _, s := range automatic {
		sr.styles[s.Name] = s
	}
	return sr
}

// Background returns the #RRGGBB cell background of the named style, or
// "" when the style is unknown, transparent or sets none.
func (sr *styleResolver) Background(name string) string {
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		seen[name] = true
		s, ok := sr.styles[name]
		if !ok {
			return ""
		}
		if s.TableCellProps != nil && s.TableCellProps.BackgroundColor != "" {
			return normalizeColor(s.TableCellProps.BackgroundColor)
		}
		name = s.ParentStyleName
	}
	return ""
}

func normalizeColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(c) != 6 {
		return "" // transparent or a named colour
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return ""
	}
	return "#" + strings.ToUpper(c)
}
