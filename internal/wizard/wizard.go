// Package wizard sequences an import: pick a source, select items, follow the
// import until it finishes.
package wizard

import (
	"dataimport/internal/model"
	"dataimport/internal/pathtree"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Step is one stage of the wizard.
type Step int

const (
	StepConnection Step = iota
	StepFileSelection
	StepImportProgress
	StepSuccess
)

// Steps lists every step in order, for progress headers.
var Steps = []Step{StepConnection, StepFileSelection, StepImportProgress, StepSuccess}

// Label is the heading shown for the step.
func (s Step) Label() string {
	switch s {
	case StepConnection:
		return "Data Source"
	case StepFileSelection:
		return "File Selection"
	case StepImportProgress:
		return "Import Progress"
	case StepSuccess:
		return "Complete"
	}
	return "Unknown"
}

func (s Step) String() string { return s.Label() }

var (
	ErrNoItems      = errors.New("no files found")
	ErrNoSelection  = errors.New("select at least one file to import")
	ErrImporting    = errors.New("an import is still running")
	ErrWrongStep    = errors.New("not available at this step")
	ErrInvalidKind  = errors.New("unknown data source")
	ErrNotImporting = errors.New("no import is running")
	ErrOtherJob     = errors.New("progress belongs to another import")
)

// Wizard holds the state of one import flow. Tree, selection and expansion
// live in Session; the wizard only moves between steps and records the job.
type Wizard struct {
	Session *pathtree.Session

	step      Step
	kind      model.SourceKind
	jobID     string
	importing bool
	progress  model.Progress
	pending   []string
	imported  []string
	lastErr   string

	newJobID func() string
}

// New starts a wizard at the connection step with the local source.
func New(session *pathtree.Session) *Wizard {
	if session == nil {
		session = pathtree.NewSession(nil)
	}
	return &Wizard{
		Session:  session,
		step:     StepConnection,
		kind:     model.SourceLocal,
		newJobID: uuid.NewString,
	}
}

func (w *Wizard) Step() Step               { return w.step }
func (w *Wizard) Kind() model.SourceKind   { return w.kind }
func (w *Wizard) JobID() string            { return w.jobID }
func (w *Wizard) Importing() bool          { return w.importing }
func (w *Wizard) Progress() model.Progress { return w.progress }
func (w *Wizard) Imported() []string       { return w.imported }

// Error returns the last message to show the user, or "".
func (w *Wizard) Error() string { return w.lastErr }

// ClearError dismisses the current message.
func (w *Wizard) ClearError() { w.lastErr = "" }

// Fail records a message for an error raised outside the wizard, such as a
// failed listing request. State is left untouched.
func (w *Wizard) Fail(err error) {
	if err != nil {
		w.lastErr = err.Error()
	}
}

// ChangeSource switches the data source. Items and selection are dropped.
func (w *Wizard) ChangeSource(kind model.SourceKind) error {
	if w.step != StepConnection {
		return ErrWrongStep
	}
	if !kind.Valid() {
		return errors.Wrapf(ErrInvalidKind, "%q", kind)
	}
	if kind == w.kind {
		return nil
	}
	w.kind = kind
	w.lastErr = ""
	w.Session.Reset()
	w.Session.Kind = kind
	return nil
}

// SourceLoaded takes the listing fetched for the current source. A listing
// with visible items moves on to file selection; selected paths that are no
// longer listed are dropped.
func (w *Wizard) SourceLoaded(items []model.Item) error {
	if w.step != StepConnection && w.step != StepFileSelection {
		return ErrWrongStep
	}
	full := pathtree.Build(items, pathtree.WithGrouping(pathtree.GroupingFor(w.kind)))
	w.Session.SetItems(w.kind, items)
	if full.Len() == 0 {
		w.lastErr = ErrNoItems.Error()
		return ErrNoItems
	}
	w.Session.Selection.Retain(full)
	w.lastErr = ""
	w.step = StepFileSelection
	return nil
}

// EditSelection reports whether the tree may be changed: selection, filter
// and expansion are only editable on the file selection step.
func (w *Wizard) EditSelection() error {
	if w.step != StepFileSelection {
		return ErrWrongStep
	}
	return nil
}

// Pending returns the paths sent with the current import. They are fixed when
// the import starts; later selection changes do not affect them.
func (w *Wizard) Pending() []string { return append([]string(nil), w.pending...) }

// StartImport moves to the progress step and returns a fresh job id. The
// selection is kept until the import succeeds.
func (w *Wizard) StartImport() (string, error) {
	if w.step != StepFileSelection {
		return "", ErrWrongStep
	}
	if w.Session.Selection.Len() == 0 {
		w.lastErr = ErrNoSelection.Error()
		return "", ErrNoSelection
	}
	w.jobID = w.newJobID()
	w.pending = w.Session.Selection.Paths()
	w.importing = true
	w.lastErr = ""
	w.progress = model.Progress{
		JobID:   w.jobID,
		Status:  model.StatusRunning,
		Total:   len(w.pending),
		Message: "Starting import...",
	}
	w.step = StepImportProgress
	return w.jobID, nil
}

// JobStarted records the id the backend assigned, if it differs.
func (w *Wizard) JobStarted(jobID string) {
	if w.importing && jobID != "" {
		w.jobID = jobID
		w.progress.JobID = jobID
	}
}

// StartFailed handles a rejected import request: the wizard returns to file
// selection with the selection intact.
func (w *Wizard) StartFailed(err error) {
	w.importing = false
	w.pending = nil
	w.progress = model.Progress{}
	w.step = StepFileSelection
	if err != nil {
		w.lastErr = "Failed to load files: " + err.Error()
	}
}

// Update applies one progress report. "done" moves to success, "error" stops
// the import and shows the backend message verbatim, anything else is shown
// as-is and polling continues. Reports for another job are dropped.
func (w *Wizard) Update(p model.Progress) error {
	if w.step != StepImportProgress || !w.importing {
		return ErrNotImporting
	}
	if p.JobID != "" && p.JobID != w.jobID {
		return errors.Wrapf(ErrOtherJob, "%s", p.JobID)
	}
	if p.JobID == "" {
		p.JobID = w.jobID
	}
	w.progress = p
	switch p.Status {
	case model.StatusDone:
		w.importing = false
		w.imported = w.pending
		w.step = StepSuccess
	case model.StatusError:
		w.importing = false
		w.lastErr = p.Message
		if w.lastErr == "" {
			w.lastErr = "Import failed with errors."
		}
	}
	return nil
}

// Back returns to the connection step from file selection, or from a
// finished or failed import. The selection is kept.
func (w *Wizard) Back() error {
	switch {
	case w.step == StepImportProgress && w.importing:
		return ErrImporting
	case w.step == StepFileSelection, w.step == StepImportProgress:
		w.step = StepConnection
		w.progress = model.Progress{}
		w.jobID = ""
		w.pending = nil
		return nil
	}
	return ErrWrongStep
}

// Restart clears everything after a successful import.
func (w *Wizard) Restart() error {
	if w.step != StepSuccess {
		return ErrWrongStep
	}
	w.Session.Reset()
	w.step = StepConnection
	w.jobID = ""
	w.importing = false
	w.progress = model.Progress{}
	w.pending = nil
	w.imported = nil
	w.lastErr = ""
	return nil
}
