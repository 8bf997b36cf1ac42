package pathtree

// FolderState is the tri-state checkbox of a folder.
type FolderState struct {
	Checked       bool
	Indeterminate bool
}

// Unchecked reports whether nothing under the folder is selected.
func (s FolderState) Unchecked() bool { return !s.Checked && !s.Indeterminate }

func stateOf(selected, total int) FolderState {
	checked := selected > 0 && selected == total
	return FolderState{
		Checked:       checked,
		Indeterminate: selected > 0 && !checked,
	}
}

// Selection tracks selected leaf paths. Paths are kept in the order they were
// first selected so import requests are stable.
type Selection struct {
	set   map[string]struct{}
	order []string
}

// NewSelection returns a selection holding paths.
func NewSelection(paths ...string) *Selection {
	s := &Selection{set: make(map[string]struct{})}
	s.add(paths)
	return s
}

// IsSelected reports whether path is selected.
func (s *Selection) IsSelected(path string) bool {
	_, ok := s.set[path]
	return ok
}

// Len returns the number of selected paths.
func (s *Selection) Len() int { return len(s.set) }

// Paths returns a copy of the selected paths in selection order.
func (s *Selection) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ToggleLeaf flips membership of path.
func (s *Selection) ToggleLeaf(path string) {
	if s.IsSelected(path) {
		s.remove([]string{path})
		return
	}
	s.add([]string{path})
}

// ToggleFolder deselects every leaf under n when all of them are selected and
// otherwise selects all of them. Paths outside n are left alone.
func (s *Selection) ToggleFolder(n Node) {
	leaves := CollectLeaves(n)
	if s.allSelected(leaves) {
		s.remove(leaves)
		return
	}
	s.add(leaves)
}

// FolderState derives the checkbox state of n from its leaves.
func (s *Selection) FolderState(n Node) FolderState {
	leaves := CollectLeaves(n)
	selected := 0
	for _, p := range leaves {
		if s.IsSelected(p) {
			selected++
		}
	}
	return stateOf(selected, len(leaves))
}

// Set replaces the selection.
func (s *Selection) Set(paths []string) {
	s.Clear()
	s.add(paths)
}

// Clear drops every selected path.
func (s *Selection) Clear() {
	s.set = make(map[string]struct{})
	s.order = nil
}

// Retain drops selected paths that are no longer leaves of t and reports how
// many were dropped.
func (s *Selection) Retain(t *Tree) int {
	var gone []string
	for _, p := range s.order {
		if _, ok := t.Leaf(p); !ok {
			gone = append(gone, p)
		}
	}
	s.remove(gone)
	return len(gone)
}

func (s *Selection) allSelected(paths []string) bool {
	for _, p := range paths {
		if !s.IsSelected(p) {
			return false
		}
	}
	return true
}

func (s *Selection) add(paths []string) {
	for _, p := range paths {
		if p == "" || s.IsSelected(p) {
			continue
		}
		s.set[p] = struct{}{}
		s.order = append(s.order, p)
	}
}

func (s *Selection) remove(paths []string) {
	if len(paths) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, ok := s.set[p]; ok {
			drop[p] = struct{}{}
			delete(s.set, p)
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := s.order[:0]
	for _, p := range s.order {
		if _, ok := drop[p]; !ok {
			kept = append(kept, p)
		}
	}
	s.order = kept
}
