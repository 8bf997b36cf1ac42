package pathtree

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sorted(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}

func TestToggleLeaf(t *testing.T) {
	sel := NewSelection()

	sel.ToggleLeaf("a.csv")
	assert.True(t, sel.IsSelected("a.csv"))
	assert.Equal(t, 1, sel.Len())

	sel.ToggleLeaf("a.csv")
	assert.False(t, sel.IsSelected("a.csv"))
	assert.Equal(t, 0, sel.Len())
}

func TestToggleFolderSelectsNestedLeaves(t *testing.T) {
	tree := BuildPaths([]string{"x/y/z.csv"})
	x, _ := tree.Find("x")
	sel := NewSelection()

	sel.ToggleFolder(x)

	assert.Equal(t, []string{"x/y/z.csv"}, sel.Paths())
	assert.True(t, sel.FolderState(x).Checked)
	assert.False(t, sel.FolderState(x).Indeterminate)
}

func TestToggleFolderUnionKeepsOutsideSelection(t *testing.T) {
	tree := BuildPaths([]string{"f/a.csv", "f/b.csv", "g/c.csv"})
	f, _ := tree.Find("f")
	sel := NewSelection("g/c.csv", "f/a.csv")

	sel.ToggleFolder(f)
	assert.Equal(t, []string{"g/c.csv", "f/a.csv", "f/b.csv"}, sel.Paths())

	sel.ToggleFolder(f)
	assert.Equal(t, []string{"g/c.csv"}, sel.Paths())
}

func TestFolderStatePartial(t *testing.T) {
	tree := BuildPaths([]string{"f/a.csv", "f/b.csv"})
	f, _ := tree.Find("f")
	sel := NewSelection("f/a.csv")

	assert.Equal(t, FolderState{Checked: false, Indeterminate: true}, sel.FolderState(f))
}

func TestFolderStateEmptyFolderIsUnchecked(t *testing.T) {
	tree := BuildPaths([]string{"g/" + Placeholder})
	g, _ := tree.Find("g")
	sel := NewSelection()

	assert.True(t, sel.FolderState(g).Unchecked())
	sel.ToggleFolder(g)
	assert.Equal(t, 0, sel.Len())
	assert.True(t, sel.FolderState(g).Unchecked())
}

func randomTree(r *rand.Rand) *Tree {
	var paths []string
	n := 1 + r.Intn(30)
	for i := 0; i < n; i++ {
		depth := r.Intn(4)
		p := ""
		for d := 0; d < depth; d++ {
			p += fmt.Sprintf("d%d/", r.Intn(3))
		}
		paths = append(paths, fmt.Sprintf("%sf%d.csv", p, i))
	}
	return BuildPaths(paths)
}

func randomSelection(r *rand.Rand, tree *Tree) *Selection {
	sel := NewSelection()
	for _, p := range tree.Leaves() {
		if r.Intn(2) == 0 {
			sel.ToggleLeaf(p)
		}
	}
	return sel
}

func allFolders(tree *Tree) []*Folder {
	var out []*Folder
	var walk func(f *Folder)
	walk = func(f *Folder) {
		out = append(out, f)
		for _, c := range f.Children() {
			if cf, ok := c.(*Folder); ok {
				walk(cf)
			}
		}
	}
	walk(tree.Root)
	return out
}

func TestFolderStateCheckedIffAllLeavesSelected(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		sel := randomSelection(r, tree)

		for _, f := range allFolders(tree) {
			leaves := CollectLeaves(f)
			all := len(leaves) > 0
			some := false
			for _, p := range leaves {
				if sel.IsSelected(p) {
					some = true
				} else {
					all = false
				}
			}
			st := sel.FolderState(f)
			require.Equal(t, all, st.Checked, "folder %q", f.Path())
			require.Equal(t, some && !all, st.Indeterminate, "folder %q", f.Path())
		}
	}
}

func TestToggleFolderTwiceRestoresSelection(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		sel := randomSelection(r, tree)
		before := sorted(sel.Paths())

		for _, f := range allFolders(tree) {
			if sel.FolderState(f).Indeterminate {
				continue
			}
			sel.ToggleFolder(f)
			sel.ToggleFolder(f)
			require.Equal(t, before, sorted(sel.Paths()), "folder %q", f.Path())
		}
	}
}

func TestToggleFolderTwiceFromPartialClearsFolder(t *testing.T) {
	tree := BuildPaths([]string{"f/a.csv", "f/b.csv", "g/c.csv"})
	f, _ := tree.Find("f")
	sel := NewSelection("f/a.csv", "g/c.csv")
	require.True(t, sel.FolderState(f).Indeterminate)

	sel.ToggleFolder(f)
	assert.True(t, sel.FolderState(f).Checked)

	sel.ToggleFolder(f)
	assert.True(t, sel.FolderState(f).Unchecked())
	assert.Equal(t, []string{"g/c.csv"}, sel.Paths())
}

func TestSelectionSetAndClear(t *testing.T) {
	sel := NewSelection("a", "b")
	sel.Set([]string{"c", "c", ""})
	assert.Equal(t, []string{"c"}, sel.Paths())

	sel.Clear()
	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.Paths())
}

func TestSelectionRetain(t *testing.T) {
	tree := BuildPaths([]string{"a.csv", "b/c.csv"})
	sel := NewSelection("a.csv", "gone.csv", "b/c.csv")

	dropped := sel.Retain(tree)

	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"a.csv", "b/c.csv"}, sel.Paths())
}

func TestSelectionPathsIsACopy(t *testing.T) {
	sel := NewSelection("a")
	paths := sel.Paths()
	paths[0] = "mutated"

	assert.True(t, sel.IsSelected("a"))
	assert.Equal(t, []string{"a"}, sel.Paths())
}
