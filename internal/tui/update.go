package tui

import (
	"context"

	"dataimport/internal/client"
	"dataimport/internal/model"
	"dataimport/internal/pathtree"
	"dataimport/internal/progress"
	"dataimport/internal/source"
	"dataimport/internal/wizard"

	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgItemsLoaded carries a fresh listing of the current source.
type MsgItemsLoaded []model.Item

// MsgUploaded reports a file staged on the backend.
type MsgUploaded string

// MsgImportStarted carries the backend job id and its progress stream.
type MsgImportStarted struct {
	JobID   string
	Updates <-chan model.Progress
}

// MsgImportFailed indicates the backend refused to start the import.
type MsgImportFailed struct{ Err error }

// MsgProgress is one progress report of the running import.
type MsgProgress model.Progress

// MsgPollDone indicates the progress stream was closed.
type MsgPollDone struct{}

// MsgPreview carries a table sample.
type MsgPreview model.TablePreview

// MsgError indicates an error occurred.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = msg.Width / 2
		m.DetailsViewport.Height = msg.Height - 8 // minus header/footer
		m.bar.Width = msg.Width - 10
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressbar.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		if next, ok := updated.(progressbar.Model); ok {
			m.bar = next
		}
		return m, cmd

	case MsgItemsLoaded:
		m.Loading = false
		if err := m.Wizard.SourceLoaded(msg); err != nil {
			m.Log.WithError(err).Info("Listing not applied")
			return m, nil
		}
		m.Log.WithField("items", len(msg)).Info("Source listed")
		m.clampCursor()
		return m, nil

	case MsgUploaded:
		m.Loading = false
		m.Notice = "Uploaded " + string(msg)
		m.setFieldValue("upload", "")
		return m, nil

	case MsgImportStarted:
		m.Wizard.JobStarted(msg.JobID)
		m.updates = msg.Updates
		m.Log.WithField("job", m.Wizard.JobID()).Info("Import started")
		return m, waitProgress(m.updates)

	case MsgImportFailed:
		m.stopPolling()
		m.Wizard.StartFailed(msg.Err)
		m.Log.WithError(msg.Err).Error("Import could not be started")
		return m, nil

	case MsgProgress:
		p := model.Progress(msg)
		if err := m.Wizard.Update(p); err != nil {
			return m, nil
		}
		cmds := []tea.Cmd{m.bar.SetPercent(p.Percent())}
		if p.Status.Terminal() {
			m.Log.WithField("status", p.Status).Info("Import finished")
			m.stopPolling()
		} else {
			cmds = append(cmds, waitProgress(m.updates))
		}
		return m, tea.Batch(cmds...)

	case MsgPollDone:
		m.updates = nil
		return m, nil

	case MsgPreview:
		m.Loading = false
		preview := model.TablePreview(msg)
		m.Preview = &preview
		m.DetailsViewport.SetContent(renderPreview(preview))
		m.DetailsViewport.GotoTop()
		return m, nil

	case MsgError:
		m.Loading = false
		m.Wizard.Fail(msg)
		m.Log.WithError(msg).Warn("Request failed")
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.ShowHelp {
			switch msg.String() {
			case "?", "esc", "q":
				m.ShowHelp = false
			case "up", "k":
				if m.HelpScrollY > 0 {
					m.HelpScrollY--
				}
			case "down", "j":
				m.HelpScrollY++
			}
			return m, nil
		}
		m.Notice = ""

		switch m.Wizard.Step() {
		case wizard.StepConnection:
			return m.updateConnection(msg)
		case wizard.StepFileSelection:
			return m.updateSelection(msg)
		case wizard.StepImportProgress:
			return m.updateImport(msg)
		case wizard.StepSuccess:
			return m.updateSuccess(msg)
		}
	}

	return m, cmd
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.stopPolling()
	m.cancel()
	return m, tea.Quit
}

func (m *AppModel) stopPolling() {
	if m.pollCancel != nil {
		m.pollCancel()
		m.pollCancel = nil
	}
}

func (m AppModel) updateConnection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.fields()
	onPicker := m.Focus == 0

	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.Focus + 1) % (len(fields) + 1))
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.Focus + len(fields)) % (len(fields) + 1))
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Connect):
		if m.Loading {
			return m, nil
		}
		if m.Wizard.Kind() == model.SourceLocal && m.value("upload") != "" {
			return m.startUpload(m.value("upload"))
		}
		return m.startListing()
	}

	if onPicker {
		switch msg.String() {
		case "left", "h":
			m.cycleSource(-1)
		case "right", "l":
			m.cycleSource(1)
		case "q":
			return m.quit()
		case "?":
			m.ShowHelp = true
			m.HelpScrollY = 0
		}
		return m, nil
	}

	f := &m.Fields[m.Wizard.Kind()][m.Focus-1]
	if f.choices != nil {
		switch msg.String() {
		case "left", "h":
			f.choice = (f.choice + len(f.choices) - 1) % len(f.choices)
		case "right", "l", " ":
			f.choice = (f.choice + 1) % len(f.choices)
		}
		return m, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return m, cmd
}

func (m *AppModel) cycleSource(delta int) {
	kinds := model.Sources
	idx := 0
	for i, k := range kinds {
		if k == m.Wizard.Kind() {
			idx = i
		}
	}
	next := kinds[(idx+delta+len(kinds))%len(kinds)]
	if err := m.Wizard.ChangeSource(next); err != nil {
		m.Wizard.Fail(err)
		return
	}
	m.Cursor = 0
	m.Preview = nil
	m.PreviewPath = ""
}

func (m *AppModel) setFocus(focus int) {
	m.Focus = focus
	fields := m.Fields[m.Wizard.Kind()]
	for i := range fields {
		if i == focus-1 && fields[i].choices == nil {
			fields[i].input.Focus()
		} else {
			fields[i].input.Blur()
		}
	}
}

func (m *AppModel) setFieldValue(key, value string) {
	fields := m.Fields[m.Wizard.Kind()]
	for i := range fields {
		if fields[i].key == key {
			fields[i].input.SetValue(value)
		}
	}
}

func (m AppModel) startListing() (tea.Model, tea.Cmd) {
	src, err := m.buildSource()
	if err != nil {
		m.Wizard.Fail(err)
		return m, nil
	}
	m.Wizard.ClearError()
	m.Loading = true
	m.Log.WithField("source", src.Location()).Info("Listing source")
	return m, tea.Batch(m.spinner.Tick, loadSourceCmd(m.ctx, src))
}

func (m AppModel) startUpload(path string) (tea.Model, tea.Cmd) {
	m.Wizard.ClearError()
	m.Loading = true
	return m, tea.Batch(m.spinner.Tick, uploadCmd(m.ctx, m.Client, path))
}

func (m AppModel) updateSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.Wizard.Session

	if m.InputMode {
		switch msg.Type {
		case tea.KeyEnter:
			m.InputMode = false
			m.InputBuffer.Blur()
			return m, nil
		case tea.KeyEsc:
			m.InputMode = false
			m.InputBuffer.Blur()
			m.InputBuffer.SetValue("")
			m.applySearch()
			return m, nil
		}
		var cmd tea.Cmd
		m.InputBuffer, cmd = m.InputBuffer.Update(msg)
		m.applySearch()
		return m, cmd
	}

	nodes := m.nodes()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = true
		m.HelpScrollY = 0
	case key.Matches(msg, m.keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.Cursor < len(nodes)-1 {
			m.Cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if cur, ok := m.current(); ok {
			session.Toggle(cur)
			m.Wizard.ClearError()
		}
	case key.Matches(msg, m.keys.Expand):
		cur, ok := m.current()
		if !ok {
			break
		}
		switch {
		case !cur.IsFolder():
			if msg.String() == "enter" {
				session.Toggle(cur)
			}
		case !cur.Expanded:
			session.SetExpanded(cur.Path, true)
		case msg.String() == "enter":
			session.SetExpanded(cur.Path, false)
		case m.Cursor < len(nodes)-1:
			m.Cursor++
		}
	case key.Matches(msg, m.keys.Collapse):
		cur, ok := m.current()
		if !ok {
			break
		}
		if cur.IsFolder() && cur.Expanded {
			session.SetExpanded(cur.Path, false)
			break
		}
		m.Cursor = parentRow(nodes, m.Cursor)
	case key.Matches(msg, m.keys.All):
		session.SelectAll()
		m.Wizard.ClearError()
	case key.Matches(msg, m.keys.Type):
		f := session.Filter
		if f.Type == "" {
			f.Type = pathtree.TypeAll
		}
		f.Type = pathtree.NextType(f.Type)
		session.SetFilter(f)
		m.clampCursor()
	case key.Matches(msg, m.keys.Search):
		m.InputMode = true
		m.InputBuffer.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Preview):
		return m.startPreview()
	case key.Matches(msg, m.keys.Refresh):
		return m.startListing()
	case key.Matches(msg, m.keys.Import):
		return m.startImport()
	case key.Matches(msg, m.keys.Back):
		if session.Filter.Query != "" {
			m.InputBuffer.SetValue("")
			m.applySearch()
			break
		}
		if err := m.Wizard.Back(); err != nil {
			m.Wizard.Fail(err)
		}
		m.Preview = nil
	case msg.String() == "pgup", msg.String() == "pgdown":
		var cmd tea.Cmd
		m.DetailsViewport, cmd = m.DetailsViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// parentRow returns the closest row above i with a smaller depth.
func parentRow(nodes []pathtree.ViewNode, i int) int {
	if i <= 0 || i >= len(nodes) {
		return 0
	}
	for j := i - 1; j >= 0; j-- {
		if nodes[j].Depth < nodes[i].Depth {
			return j
		}
	}
	return i
}

func (m *AppModel) applySearch() {
	f := m.Wizard.Session.Filter
	f.Query = m.InputBuffer.Value()
	m.Wizard.Session.SetFilter(f)
	m.clampCursor()
}

func (m AppModel) startPreview() (tea.Model, tea.Cmd) {
	cur, ok := m.current()
	if !ok || cur.IsFolder() {
		return m, nil
	}
	src, err := m.buildSource()
	if err != nil {
		m.Wizard.Fail(err)
		return m, nil
	}
	pv, ok := src.(source.Previewer)
	if !ok {
		m.Notice = "Preview is only available for database tables"
		return m, nil
	}
	m.PreviewPath = cur.Path
	m.Loading = true
	return m, tea.Batch(m.spinner.Tick, previewCmd(m.ctx, pv, cur.Path))
}

func (m AppModel) startImport() (tea.Model, tea.Cmd) {
	src, err := m.buildSource()
	if err != nil {
		m.Wizard.Fail(err)
		return m, nil
	}
	jobID, err := m.Wizard.StartImport()
	if err != nil {
		return m, nil
	}
	paths := m.Wizard.Pending()

	m.stopPolling()
	ctx, cancel := context.WithCancel(m.ctx)
	m.pollCancel = cancel
	m.Log.WithField("items", len(paths)).Info("Starting import")
	return m, tea.Batch(
		m.spinner.Tick,
		m.bar.SetPercent(0),
		startImportCmd(ctx, src, m.Poller, paths, jobID),
	)
}

func (m AppModel) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = true
		m.HelpScrollY = 0
	case key.Matches(msg, m.keys.Back):
		if err := m.Wizard.Back(); err != nil {
			m.Notice = err.Error()
			return m, nil
		}
		m.stopPolling()
		m.Wizard.ClearError()
	}
	return m, nil
}

func (m AppModel) updateSuccess(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Restart):
		if err := m.Wizard.Restart(); err == nil {
			m.Cursor = 0
			m.Preview = nil
			m.PreviewPath = ""
			m.InputBuffer.SetValue("")
			m.setFocus(0)
		}
	}
	return m, nil
}

func loadSourceCmd(ctx context.Context, src source.Source) tea.Cmd {
	return func() tea.Msg {
		items, err := src.List(ctx)
		if err != nil {
			return MsgError(err)
		}
		return MsgItemsLoaded(items)
	}
}

func uploadCmd(ctx context.Context, c *client.Client, path string) tea.Cmd {
	return func() tea.Msg {
		name, err := c.Upload(ctx, model.ExpandTilde(path))
		if err != nil {
			return MsgError(err)
		}
		return MsgUploaded(name)
	}
}

func previewCmd(ctx context.Context, pv source.Previewer, table string) tea.Cmd {
	return func() tea.Msg {
		preview, err := pv.Preview(ctx, table)
		if err != nil {
			return MsgError(err)
		}
		return MsgPreview(preview)
	}
}

// startImportCmd asks the backend to start the job, then hands back the
// progress stream. The stream ends when ctx is cancelled.
func startImportCmd(ctx context.Context, src source.Source, poller *progress.Poller, paths []string, jobID string) tea.Cmd {
	return func() tea.Msg {
		id, err := src.StartImport(ctx, paths, jobID)
		if err != nil {
			return MsgImportFailed{Err: err}
		}
		return MsgImportStarted{JobID: id, Updates: poller.Poll(ctx, id)}
	}
}

// waitProgress reads the next report from the stream.
func waitProgress(ch <-chan model.Progress) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return MsgPollDone{}
		}
		return MsgProgress(p)
	}
}
