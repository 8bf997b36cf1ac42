package pathtree

import (
	"strings"

	"dataimport/internal/model"
)

// Grouping splits an item path into the folder segments it is filed under.
// The last segment names the leaf unless dirOnly is set, in which case every
// segment is a folder (S3 directory markers end in "/").
type Grouping interface {
	Split(path string) (segments []string, dirOnly bool)
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	grouping Grouping
}

// WithGrouping selects how paths are split into folders.
func WithGrouping(g Grouping) Option {
	return func(c *buildConfig) {
		if g != nil {
			c.grouping = g
		}
	}
}

// SlashPaths splits on "/". Empty segments are dropped.
var SlashPaths Grouping = slashPaths{}

// SchemaTable files "schema.table" names under a folder per schema. Names
// without a dot stay at the root.
var SchemaTable Grouping = schemaTable{}

type slashPaths struct{}

func (slashPaths) Split(path string) ([]string, bool) {
	dirOnly := strings.HasSuffix(path, "/")
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs, dirOnly && len(segs) > 0
}

type schemaTable struct{}

func (schemaTable) Split(path string) ([]string, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	schema, table, ok := strings.Cut(path, ".")
	if !ok || schema == "" || table == "" {
		return []string{path}, false
	}
	return []string{schema, table}, false
}

// GroupingFor returns the grouping a source's listings are built with.
func GroupingFor(kind model.SourceKind) Grouping {
	if kind == model.SourcePostgres {
		return SchemaTable
	}
	return SlashPaths
}
