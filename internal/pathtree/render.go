package pathtree

// Kind tells folder rows from leaf rows.
type Kind int

const (
	KindFolder Kind = iota
	KindLeaf
)

// ViewNode is one row of a rendered tree. Folder rows use the folder fields
// (Checked, Indeterminate, Expanded, HasChildren, counts); leaf rows use Selected.
type ViewNode struct {
	Kind  Kind
	Name  string
	Path  string
	Depth int

	// Folder rows
	Checked       bool
	Indeterminate bool
	Expanded      bool
	HasChildren   bool
	LeafCount     int
	SelectedCount int

	// Leaf rows
	Selected bool
}

// IsFolder reports whether v is a folder row.
func (v ViewNode) IsFolder() bool { return v.Kind == KindFolder }

// State returns the folder checkbox state of a folder row.
func (v ViewNode) State() FolderState {
	return FolderState{Checked: v.Checked, Indeterminate: v.Indeterminate}
}

// Render projects the tree into rows, depth-first pre-order. Children of a
// collapsed folder are left out, but the folder's own checkbox state always
// reflects its whole subtree. Placeholders and folders without visible
// leaves are never emitted. Render does not modify any of its inputs.
func Render(t *Tree, sel *Selection, exp Expanded) []ViewNode {
	if t == nil {
		return nil
	}
	if sel == nil {
		sel = NewSelection()
	}
	if exp == nil {
		exp = expandNone{}
	}
	r := renderer{sel: sel, exp: exp, counts: make(map[*Folder]int)}
	r.count(t.Root)
	r.walk(t.Root, 0)
	return r.out
}

// RenderAll is Render with every folder expanded.
func RenderAll(t *Tree, sel *Selection) []ViewNode {
	return Render(t, sel, expandAll{})
}

type expandAll struct{}

func (expandAll) IsExpanded(string) bool { return true }

type expandNone struct{}

func (expandNone) IsExpanded(string) bool { return false }

type renderer struct {
	sel    *Selection
	exp    Expanded
	counts map[*Folder]int
	out    []ViewNode
}

// count fills in selected-leaf counts for every folder in one post-order pass.
func (r *renderer) count(f *Folder) int {
	n := 0
	for _, name := range f.order {
		switch c := f.children[name].(type) {
		case *Leaf:
			if !c.Hidden() && r.sel.IsSelected(c.path) {
				n++
			}
		case *Folder:
			n += r.count(c)
		}
	}
	r.counts[f] = n
	return n
}

func (r *renderer) walk(f *Folder, depth int) {
	for _, name := range f.order {
		switch c := f.children[name].(type) {
		case *Leaf:
			if c.Hidden() {
				continue
			}
			r.out = append(r.out, ViewNode{
				Kind:     KindLeaf,
				Name:     c.name,
				Path:     c.path,
				Depth:    depth,
				Selected: r.sel.IsSelected(c.path),
			})
		case *Folder:
			if c.leafCount == 0 {
				continue
			}
			selected := r.counts[c]
			st := stateOf(selected, c.leafCount)
			expanded := r.exp.IsExpanded(c.path)
			r.out = append(r.out, ViewNode{
				Kind:          KindFolder,
				Name:          c.name,
				Path:          c.path,
				Depth:         depth,
				Checked:       st.Checked,
				Indeterminate: st.Indeterminate,
				Expanded:      expanded,
				HasChildren:   true,
				LeafCount:     c.leafCount,
				SelectedCount: selected,
			})
			if expanded {
				r.walk(c, depth+1)
			}
		}
	}
}
