package pathtree

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Load(string) ([]byte, error) { return nil, f.err }
func (f failingStore) Save(string, []byte) error   { return f.err }

func TestExpansionToggle(t *testing.T) {
	exp := NewExpansion(nil, nil)

	exp.Toggle("a")
	assert.True(t, exp.IsExpanded("a"))
	exp.Toggle("a")
	assert.False(t, exp.IsExpanded("a"))
}

func TestExpandAllIsAdditive(t *testing.T) {
	exp := NewExpansion(nil, nil)
	exp.Toggle("keep")

	changed := exp.ExpandAll([]string{"a", "b", ""})
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "b", "keep"}, exp.Paths())

	assert.False(t, exp.ExpandAll([]string{"a"}))
	assert.False(t, exp.ExpandAll(nil))
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	store := &MemoryStore{}
	exp := NewExpansion(store, nil)
	exp.ExpandAll([]string{"reports", "reports/2024"})
	require.NoError(t, exp.Persist())

	raw, err := store.Load(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["reports","reports/2024"]`, string(raw))

	restored := NewExpansion(store, nil)
	restored.Restore()
	assert.Equal(t, []string{"reports", "reports/2024"}, restored.Paths())
}

func TestRestoreDegradesToEmpty(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		exp := NewExpansion(&MemoryStore{}, nil)
		exp.Toggle("stale")
		exp.Restore()
		assert.Equal(t, 0, exp.Len())
	})

	t.Run("invalid json", func(t *testing.T) {
		store := &MemoryStore{}
		require.NoError(t, store.Save(StorageKey, []byte(`{not json`)))
		exp := NewExpansion(store, nil)
		exp.Restore()
		assert.Equal(t, 0, exp.Len())
	})

	t.Run("wrong shape", func(t *testing.T) {
		store := &MemoryStore{}
		require.NoError(t, store.Save(StorageKey, []byte(`{"a": true}`)))
		exp := NewExpansion(store, nil)
		exp.Restore()
		assert.Equal(t, 0, exp.Len())
	})

	t.Run("store failure", func(t *testing.T) {
		exp := NewExpansion(failingStore{err: errors.New("disk on fire")}, nil)
		assert.NotPanics(t, exp.Restore)
		assert.Equal(t, 0, exp.Len())
	})
}

func TestPersistReturnsStoreError(t *testing.T) {
	exp := NewExpansion(failingStore{err: errors.New("read-only")}, nil)
	exp.Toggle("a")

	err := exp.Persist()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.True(t, exp.IsExpanded("a"), "in-memory state survives a failed save")
}

func TestExpandToSelection(t *testing.T) {
	tree := BuildPaths([]string{"a/b/c.csv", "a/d.csv", "e/f.csv", "top.csv"})
	sel := NewSelection("a/b/c.csv", "top.csv", "not/in/tree.csv")
	exp := NewExpansion(nil, nil)

	exp.ExpandToSelection(tree, sel)

	assert.Equal(t, []string{"a", "a/b"}, exp.Paths())
}

func TestAutoExpansionNeverCollapses(t *testing.T) {
	tree := BuildPaths([]string{"a/b/c.csv", "e/f.csv"})
	exp := NewExpansion(nil, nil)
	exp.Toggle("e")

	exp.ExpandToSelection(tree, NewSelection("a/b/c.csv"))
	exp.ExpandToSelection(tree, NewSelection())

	assert.Equal(t, []string{"a", "a/b", "e"}, exp.Paths())
}

func TestAutoExpansionReopensCollapsedAncestor(t *testing.T) {
	tree := BuildPaths([]string{"a/b.csv", "a/c.csv"})
	sel := NewSelection("a/b.csv")
	exp := NewExpansion(nil, nil)
	exp.ExpandToSelection(tree, sel)

	exp.Toggle("a")
	require.False(t, exp.IsExpanded("a"))

	sel.ToggleLeaf("a/c.csv")
	exp.ExpandToSelection(tree, sel)
	assert.True(t, exp.IsExpanded("a"))
}

func TestExpansionSupersetOfAncestorClosure(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		tree := randomTree(r)
		sel := NewSelection()
		exp := NewExpansion(nil, nil)
		leaves := tree.Leaves()

		for step := 0; step < 20; step++ {
			switch r.Intn(3) {
			case 0:
				sel.ToggleLeaf(leaves[r.Intn(len(leaves))])
			case 1:
				folders := allFolders(tree)
				sel.ToggleFolder(folders[r.Intn(len(folders))])
			case 2:
				// A manual collapse between selection changes.
				if paths := exp.Paths(); len(paths) > 0 {
					exp.Toggle(paths[r.Intn(len(paths))])
				}
				continue
			}
			exp.ExpandToSelection(tree, sel)

			for _, a := range AncestorClosure(tree, sel) {
				require.True(t, exp.IsExpanded(a), "ancestor %q of selection must be open", a)
			}
		}
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ui.json")
	store := NewFileStore(path)

	_, err := store.Load(StorageKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(StorageKey, []byte(`["a"]`)))
	require.NoError(t, store.Save("other", []byte(`1`)))

	got, err := store.Load(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(got))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileTreeExpanded": ["a"], "other": 1}`, string(raw))
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "ui.json"))

	assert.Error(t, store.Save(StorageKey, []byte(`{oops`)))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	store := NewFileStore(path)

	_, err := store.Load(StorageKey)
	assert.Error(t, err)

	exp := NewExpansion(store, nil)
	exp.Restore()
	assert.Equal(t, 0, exp.Len())

	exp.Toggle("a")
	require.NoError(t, exp.Persist(), "a corrupt file is overwritten on save")
	restored := NewExpansion(store, nil)
	restored.Restore()
	assert.Equal(t, []string{"a"}, restored.Paths())
}
