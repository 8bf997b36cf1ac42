package pathtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowPaths(rows []ViewNode) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Path)
	}
	return out
}

func rowByPath(t *testing.T, rows []ViewNode, path string) ViewNode {
	t.Helper()
	for _, r := range rows {
		if r.Path == path {
			return r
		}
	}
	require.Failf(t, "row not rendered", "path %q", path)
	return ViewNode{}
}

func TestRenderCollapsedByDefault(t *testing.T) {
	tree := BuildPaths([]string{"a/b.csv", "c.csv"})

	rows := Render(tree, nil, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "c.csv"}, rowPaths(rows))
	assert.True(t, rows[0].IsFolder())
	assert.False(t, rows[0].Expanded)
	assert.True(t, rows[0].HasChildren)
	assert.Equal(t, 1, rows[0].LeafCount)
	assert.Equal(t, KindLeaf, rows[1].Kind)
}

func TestRenderPreOrderWithDepth(t *testing.T) {
	tree := BuildPaths([]string{"a/b/c.csv", "a/d.csv", "e.csv"})

	rows := RenderAll(tree, nil)

	assert.Equal(t, []string{"a", "a/b", "a/b/c.csv", "a/d.csv", "e.csv"}, rowPaths(rows))
	depths := make([]int, len(rows))
	for i, r := range rows {
		depths[i] = r.Depth
	}
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
}

func TestRenderOmitsPlaceholderFolders(t *testing.T) {
	tree := BuildPaths([]string{
		"f/a.csv",
		"f/b.csv",
		"g/" + Placeholder,
		"h/" + Placeholder,
		"h/x.csv",
	})
	sel := NewSelection("f/a.csv")
	exp := NewExpansion(nil, nil)
	exp.Toggle("h")

	rows := Render(tree, sel, exp)

	assert.Equal(t, []string{"f", "h", "h/x.csv"}, rowPaths(rows))
	f := rowByPath(t, rows, "f")
	assert.False(t, f.Expanded)
	assert.Equal(t, FolderState{Indeterminate: true}, f.State(), "collapsed folders keep their tri-state")
	assert.Equal(t, 1, f.SelectedCount)
	assert.Equal(t, 2, f.LeafCount)
}

func TestRenderFolderStates(t *testing.T) {
	tree := BuildPaths([]string{"full/a.csv", "full/b.csv", "part/a.csv", "part/b.csv", "none/a.csv"})
	sel := NewSelection("full/a.csv", "full/b.csv", "part/b.csv")

	rows := Render(tree, sel, nil)

	assert.Equal(t, FolderState{Checked: true}, rowByPath(t, rows, "full").State())
	assert.Equal(t, FolderState{Indeterminate: true}, rowByPath(t, rows, "part").State())
	assert.True(t, rowByPath(t, rows, "none").State().Unchecked())
}

func TestRenderLeafSelection(t *testing.T) {
	tree := BuildPaths([]string{"a.csv", "b.csv"})

	rows := Render(tree, NewSelection("b.csv"), nil)

	assert.False(t, rows[0].Selected)
	assert.True(t, rows[1].Selected)
}

func TestRenderAgreesWithFolderState(t *testing.T) {
	tree := BuildPaths([]string{"a/b/c.csv", "a/b/d.csv", "a/e.csv", "x/y.csv"})
	sel := NewSelection("a/b/c.csv", "x/y.csv")

	for _, row := range RenderAll(tree, sel) {
		if !row.IsFolder() {
			continue
		}
		f, ok := tree.Find(row.Path)
		require.True(t, ok)
		assert.Equal(t, sel.FolderState(f), row.State(), "folder %q", row.Path)
	}
}

func TestRenderDoesNotMutate(t *testing.T) {
	tree := BuildPaths([]string{"a/b.csv", "c.csv"})
	sel := NewSelection("a/b.csv")
	exp := NewExpansion(nil, nil)

	Render(tree, sel, exp)

	assert.Equal(t, []string{"a/b.csv"}, sel.Paths())
	assert.Equal(t, 0, exp.Len())
	assert.Equal(t, 2, tree.Len())
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, Render(BuildPaths(nil), nil, nil))
	assert.Nil(t, Render(nil, nil, nil))
}
