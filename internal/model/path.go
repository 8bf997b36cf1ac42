package model

// SourceKind identifies where a set of items was listed from.
type SourceKind string

const (
	SourceLocal    SourceKind = "local"
	SourceS3       SourceKind = "s3"
	SourcePostgres SourceKind = "postgres"
)

// Sources lists the supported kinds in display order.
var Sources = []SourceKind{SourceLocal, SourceS3, SourcePostgres}

// Label returns the human readable name used in headings.
func (k SourceKind) Label() string {
	switch k {
	case SourceLocal:
		return "Local Files"
	case SourceS3:
		return "Amazon S3"
	case SourcePostgres:
		return "PostgreSQL"
	}
	return string(k)
}

// Valid reports whether k is one of the supported kinds.
func (k SourceKind) Valid() bool {
	for _, s := range Sources {
		if s == k {
			return true
		}
	}
	return false
}

// Item is a single importable object as listed by the backend.
type Item struct {
	Path string `json:"path"` // Normalized path (e.g. reports/2024/jan.csv or public.users)
	Size int64  `json:"size,omitempty"`
}

// ItemsFromPaths wraps plain path strings as items.
func ItemsFromPaths(paths []string) []Item {
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, Item{Path: p})
	}
	return items
}

// Paths returns the path of every item, in order.
func Paths(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path)
	}
	return out
}
