package pathtree

import (
	"strings"

	"dataimport/internal/model"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TypeAll disables the file-type filter.
const TypeAll = "All"

// FileTypes are the choices offered by the type filter, in display order.
var FileTypes = []string{TypeAll, "csv", "json", "parquet", "txt"}

// Filter narrows a listing before it is built into a tree.
type Filter struct {
	Type  string // file extension without the dot, or TypeAll
	Query string // case-insensitive fuzzy match against the full path
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return (f.Type != "" && f.Type != TypeAll) || strings.TrimSpace(f.Query) != ""
}

// Match reports whether path passes the filter.
func (f Filter) Match(path string) bool {
	if f.Type != "" && f.Type != TypeAll {
		if !strings.HasSuffix(strings.ToLower(path), "."+strings.ToLower(f.Type)) {
			return false
		}
	}
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return true
	}
	return fuzzy.MatchNormalizedFold(q, path)
}

// Apply returns the items that pass, in their original order.
func (f Filter) Apply(items []model.Item) []model.Item {
	if !f.Active() {
		return items
	}
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if f.Match(it.Path) {
			out = append(out, it)
		}
	}
	return out
}

// NextType cycles to the type after current in FileTypes.
func NextType(current string) string {
	for i, t := range FileTypes {
		if t == current {
			return FileTypes[(i+1)%len(FileTypes)]
		}
	}
	return TypeAll
}
