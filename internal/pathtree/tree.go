// Package pathtree turns a flat list of item paths into a folder hierarchy and
// derives the selection, expansion and display state the file pickers need.
//
// A Tree is immutable once built. Selection and expansion live in separate
// trackers keyed by path strings, so rebuilding the tree after a filter or a
// reload never loses UI state.
package pathtree

import (
	"dataimport/internal/model"
)

// Placeholder is the name some sources use to keep an otherwise empty folder
// alive. It is never rendered and never collected as a leaf.
const Placeholder = ".folder_placeholder"

// Node is either a *Leaf or a *Folder.
type Node interface {
	Name() string
	Path() string
	IsLeaf() bool
}

// Leaf is a terminal item. Its path is the original, unmodified item path.
type Leaf struct {
	name   string
	path   string
	parent *Folder
}

func (l *Leaf) Name() string    { return l.name }
func (l *Leaf) Path() string    { return l.path }
func (l *Leaf) IsLeaf() bool    { return true }
func (l *Leaf) Parent() *Folder { return l.parent }

// Hidden reports whether the leaf is a placeholder.
func (l *Leaf) Hidden() bool { return l.name == Placeholder }

// Folder holds named children in insertion order.
type Folder struct {
	name     string
	path     string
	parent   *Folder
	order    []string
	children map[string]Node

	leafCount int // visible leaves in this subtree, set by finalize
}

func newFolder(name, path string, parent *Folder) *Folder {
	return &Folder{
		name:     name,
		path:     path,
		parent:   parent,
		children: make(map[string]Node),
	}
}

func (f *Folder) Name() string    { return f.name }
func (f *Folder) Path() string    { return f.path }
func (f *Folder) IsLeaf() bool    { return false }
func (f *Folder) Parent() *Folder { return f.parent }

// IsRoot reports whether f is the unnamed root folder.
func (f *Folder) IsRoot() bool { return f.parent == nil }

// Len returns the number of direct children, placeholders included.
func (f *Folder) Len() int { return len(f.order) }

// LeafCount returns the number of visible leaves anywhere below f.
func (f *Folder) LeafCount() int { return f.leafCount }

// Child looks up a direct child by name.
func (f *Folder) Child(name string) Node {
	return f.children[name]
}

// Children returns the direct children in insertion order.
func (f *Folder) Children() []Node {
	out := make([]Node, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.children[name])
	}
	return out
}

// put inserts or replaces a child. A replaced child keeps its sibling position.
func (f *Folder) put(name string, n Node) {
	if _, ok := f.children[name]; !ok {
		f.order = append(f.order, name)
	}
	f.children[name] = n
}

// Tree is the result of Build.
type Tree struct {
	Root *Folder

	leaves  map[string]*Leaf
	folders map[string]*Folder
}

// Build turns items into a tree. Items with an empty path are skipped.
// Segment order follows item order; duplicate paths and leaf/folder
// collisions resolve last-write-wins.
func Build(items []model.Item, opts ...Option) *Tree {
	cfg := buildConfig{grouping: SlashPaths}
	for _, opt := range opts {
		opt(&cfg)
	}

	root := newFolder("", "", nil)
	for _, it := range items {
		insert(root, it.Path, cfg.grouping)
	}

	t := &Tree{
		Root:    root,
		leaves:  make(map[string]*Leaf),
		folders: make(map[string]*Folder),
	}
	t.finalize(root)
	return t
}

// BuildPaths is Build for plain path strings.
func BuildPaths(paths []string, opts ...Option) *Tree {
	return Build(model.ItemsFromPaths(paths), opts...)
}

func insert(root *Folder, path string, g Grouping) {
	if path == "" {
		return
	}
	segs, dirOnly := g.Split(path)
	if len(segs) == 0 {
		return
	}

	cur := root
	for i, seg := range segs {
		if i == len(segs)-1 && !dirOnly {
			cur.put(seg, &Leaf{name: seg, path: path, parent: cur})
			return
		}
		next, ok := cur.children[seg].(*Folder)
		if !ok {
			next = newFolder(seg, joinFolder(cur.path, seg), cur)
			cur.put(seg, next)
		}
		cur = next
	}
}

func joinFolder(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// finalize indexes leaves and folders and caches leaf counts. Nodes orphaned
// by a last-write-wins replacement are unreachable and so never indexed.
func (t *Tree) finalize(f *Folder) int {
	if !f.IsRoot() {
		t.folders[f.path] = f
	}
	count := 0
	for _, name := range f.order {
		switch n := f.children[name].(type) {
		case *Leaf:
			if n.Hidden() {
				continue
			}
			t.leaves[n.path] = n
			count++
		case *Folder:
			count += t.finalize(n)
		}
	}
	f.leafCount = count
	return count
}

// Len returns the number of visible leaves.
func (t *Tree) Len() int { return t.Root.leafCount }

// Empty reports whether the tree has nothing to show.
func (t *Tree) Empty() bool { return t.Root.leafCount == 0 }

// Find returns the folder at folderPath, or the root for "".
func (t *Tree) Find(folderPath string) (*Folder, bool) {
	if folderPath == "" {
		return t.Root, true
	}
	f, ok := t.folders[folderPath]
	return f, ok
}

// Leaf returns the visible leaf holding path.
func (t *Tree) Leaf(path string) (*Leaf, bool) {
	l, ok := t.leaves[path]
	return l, ok
}

// Leaves returns every visible leaf path in traversal order.
func (t *Tree) Leaves() []string {
	return CollectLeaves(t.Root)
}

// Ancestors returns the folder paths above a leaf, outermost first.
// It returns nil for paths that are not leaves of t.
func (t *Tree) Ancestors(leafPath string) []string {
	l, ok := t.leaves[leafPath]
	if !ok {
		return nil
	}
	var out []string
	for f := l.parent; f != nil && !f.IsRoot(); f = f.parent {
		out = append(out, f.path)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CollectLeaves returns the path of every visible leaf under n, in traversal
// order. A visible leaf passed directly is returned on its own.
func CollectLeaves(n Node) []string {
	var out []string
	collect(n, &out)
	return out
}

func collect(n Node, out *[]string) {
	switch n := n.(type) {
	case *Leaf:
		if n != nil && !n.Hidden() {
			*out = append(*out, n.path)
		}
	case *Folder:
		if n == nil {
			return
		}
		for _, name := range n.order {
			collect(n.children[name], out)
		}
	}
}
