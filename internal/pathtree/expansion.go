package pathtree

import (
	"encoding/json"
	"sort"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// StorageKey is the key the expanded folder set is persisted under.
const StorageKey = "fileTreeExpanded"

// Expanded is the read side of expansion state, as used by Render.
type Expanded interface {
	IsExpanded(folderPath string) bool
}

// Expansion tracks which folders are open.
//
// Expansion only grows on its own: ExpandToSelection opens the ancestors of
// selected leaves but never closes anything. A folder the user collapsed is
// opened again by the next selection change if it still holds a selected leaf.
type Expansion struct {
	set   map[string]struct{}
	store Store
	log   logrus.FieldLogger
}

// NewExpansion returns an empty tracker. A nil store disables persistence and
// a nil logger discards warnings.
func NewExpansion(store Store, log logrus.FieldLogger) *Expansion {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Expansion{
		set:   make(map[string]struct{}),
		store: store,
		log:   log,
	}
}

// IsExpanded reports whether folderPath is open.
func (e *Expansion) IsExpanded(folderPath string) bool {
	_, ok := e.set[folderPath]
	return ok
}

// Len returns the number of open folders.
func (e *Expansion) Len() int { return len(e.set) }

// Toggle opens or closes folderPath.
func (e *Expansion) Toggle(folderPath string) {
	if e.IsExpanded(folderPath) {
		delete(e.set, folderPath)
		return
	}
	e.set[folderPath] = struct{}{}
}

// ExpandAll opens every path. It never closes anything and reports whether
// any folder was newly opened.
func (e *Expansion) ExpandAll(paths []string) bool {
	changed := false
	for _, p := range paths {
		if p == "" || e.IsExpanded(p) {
			continue
		}
		e.set[p] = struct{}{}
		changed = true
	}
	return changed
}

// CollapseAll closes every folder.
func (e *Expansion) CollapseAll() {
	e.set = make(map[string]struct{})
}

// Paths returns the open folders, sorted.
func (e *Expansion) Paths() []string {
	out := make([]string, 0, len(e.set))
	for p := range e.set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ExpandToSelection opens every ancestor folder of every selected leaf in t.
func (e *Expansion) ExpandToSelection(t *Tree, sel *Selection) bool {
	return e.ExpandAll(AncestorClosure(t, sel))
}

// AncestorClosure returns the folder paths above every selected leaf of t,
// without duplicates. Selected paths that are not leaves of t contribute nothing.
func AncestorClosure(t *Tree, sel *Selection) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range sel.Paths() {
		for _, a := range t.Ancestors(p) {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// Persist writes the open folders to the store as a JSON array.
// Failures are logged and returned.
func (e *Expansion) Persist() error {
	if e.store == nil {
		return nil
	}
	data, err := json.Marshal(e.Paths())
	if err != nil {
		return errors.Wrap(err, "marshal expansion state")
	}
	if err := e.store.Save(StorageKey, data); err != nil {
		e.log.WithError(err).Warn("Could not save expansion state")
		return errors.Wrap(err, "save expansion state")
	}
	return nil
}

// Restore replaces the open folders with the stored set. Any failure leaves
// the tracker empty; nothing is returned to the caller.
func (e *Expansion) Restore() {
	e.set = make(map[string]struct{})
	if e.store == nil {
		return
	}
	data, err := e.store.Load(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.log.WithError(err).Warn("Could not load expansion state, starting collapsed")
		}
		return
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		e.log.WithError(err).Warn("Invalid expansion state, starting collapsed")
		return
	}
	e.ExpandAll(paths)
	e.log.WithField("folders", len(e.set)).Debug("Restored expansion state")
}
