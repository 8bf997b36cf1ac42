package tui

import (
	"testing"

	"dataimport/internal/model"
	"dataimport/internal/pathtree"

	"github.com/stretchr/testify/assert"
)

func TestRenderRow(t *testing.T) {
	folder := pathtree.ViewNode{
		Kind: pathtree.KindFolder, Name: "reports", Path: "reports",
		Expanded: true, Indeterminate: true, LeafCount: 3, SelectedCount: 1,
	}
	assert.Equal(t, "▾ [-] reports (1/3)", renderRow(folder))

	leaf := pathtree.ViewNode{Kind: pathtree.KindLeaf, Name: "jan.csv", Path: "reports/jan.csv", Depth: 1, Selected: true}
	assert.Equal(t, "    [x] ▤ jan.csv", renderRow(leaf))
}

func TestSelectionViewFooter(t *testing.T) {
	m := loaded(t, "a.csv", "b.csv", "c/d.json")
	m = send(t, m, keySpace)

	out := m.View()
	assert.Contains(t, out, "3 available")
	assert.Contains(t, out, "Selected: 1 files")
	assert.Contains(t, out, "File Selection")
}

func TestConnectionViewListsSources(t *testing.T) {
	out := newTestModel(t).View()

	for _, k := range model.Sources {
		assert.Contains(t, out, k.Label())
	}
	assert.Contains(t, out, "Upload file")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KB", humanSize(1536))
	assert.Equal(t, "10.0 MB", humanSize(model.MaxUploadSize))
}

func TestRenderPreviewNulls(t *testing.T) {
	out := renderPreview(model.TablePreview{
		Table:   "public.t",
		Columns: []model.Column{{Name: "x", Type: "text", Nullable: "YES"}},
		Rows:    []map[string]any{{"x": nil}},
	})
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "YES")
}
