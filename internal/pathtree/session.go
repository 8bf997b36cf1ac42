package pathtree

import (
	"dataimport/internal/model"
)

// Session ties one listing to its selection and expansion state. Front-ends
// drive it with toggles and read rows back through Nodes; none of the
// trackers are ever reached through the tree itself.
type Session struct {
	Kind      model.SourceKind
	Items     []model.Item
	Filter    Filter
	Tree      *Tree
	Selection *Selection
	Expansion *Expansion
}

// NewSession returns an empty session whose expansion state is restored from exp.
func NewSession(exp *Expansion) *Session {
	if exp == nil {
		exp = NewExpansion(nil, nil)
	}
	exp.Restore()
	return &Session{
		Tree:      BuildPaths(nil),
		Selection: NewSelection(),
		Expansion: exp,
	}
}

// SetItems replaces the listing and rebuilds the tree. Selection and
// expansion are kept.
func (s *Session) SetItems(kind model.SourceKind, items []model.Item) {
	s.Kind = kind
	s.Items = items
	s.rebuild()
}

// SetFilter rebuilds the tree from the filtered listing. Selected items that
// are filtered out stay selected.
func (s *Session) SetFilter(f Filter) {
	s.Filter = f
	s.rebuild()
}

// Reset drops the listing and the selection.
func (s *Session) Reset() {
	s.Items = nil
	s.Filter = Filter{}
	s.Selection.Clear()
	s.rebuild()
}

func (s *Session) rebuild() {
	s.Tree = Build(s.Filter.Apply(s.Items), WithGrouping(GroupingFor(s.Kind)))
}

// Available returns the number of visible leaves.
func (s *Session) Available() int { return s.Tree.Len() }

// Nodes renders the current rows.
func (s *Session) Nodes() []ViewNode {
	return Render(s.Tree, s.Selection, s.Expansion)
}

// ToggleLeaf flips a leaf and opens its ancestors.
func (s *Session) ToggleLeaf(path string) {
	s.Selection.ToggleLeaf(path)
	s.selectionChanged()
}

// ToggleFolder bulk-toggles every leaf under folderPath.
func (s *Session) ToggleFolder(folderPath string) bool {
	f, ok := s.Tree.Find(folderPath)
	if !ok {
		return false
	}
	s.Selection.ToggleFolder(f)
	s.selectionChanged()
	return true
}

// Toggle dispatches on the kind of row v.
func (s *Session) Toggle(v ViewNode) {
	if v.IsFolder() {
		s.ToggleFolder(v.Path)
		return
	}
	s.ToggleLeaf(v.Path)
}

// SelectAll selects every visible leaf, or clears them when all are selected.
func (s *Session) SelectAll() {
	s.Selection.ToggleFolder(s.Tree.Root)
	s.selectionChanged()
}

// ToggleExpanded opens or closes a folder and persists the result.
func (s *Session) ToggleExpanded(folderPath string) {
	s.Expansion.Toggle(folderPath)
	_ = s.Expansion.Persist()
}

// SetExpanded opens or closes a folder if it is not already in that state.
func (s *Session) SetExpanded(folderPath string, open bool) {
	if s.Expansion.IsExpanded(folderPath) == open {
		return
	}
	s.ToggleExpanded(folderPath)
}

func (s *Session) selectionChanged() {
	if s.Expansion.ExpandToSelection(s.Tree, s.Selection) {
		_ = s.Expansion.Persist()
	}
}
