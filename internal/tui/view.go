package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"dataimport/internal/model"
	"dataimport/internal/pathtree"
	"dataimport/internal/wizard"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	activeStepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	doneStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	checkedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Sky Blue/Cyan
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(14)
)

func (m AppModel) View() string {
	if m.ShowHelp {
		return m.renderHelpDialog()
	}

	var body string
	switch m.Wizard.Step() {
	case wizard.StepConnection:
		body = m.viewConnection()
	case wizard.StepFileSelection:
		body = m.viewSelection()
	case wizard.StepImportProgress:
		body = m.viewImport()
	case wizard.StepSuccess:
		body = m.viewSuccess()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		"",
		body,
		m.viewStatus(),
		m.help.View(m.stepKeys()),
	)
}

func (m AppModel) stepKeys() stepKeys {
	switch m.Wizard.Step() {
	case wizard.StepFileSelection:
		return m.keys.selection()
	case wizard.StepImportProgress:
		return m.keys.importing()
	case wizard.StepSuccess:
		return m.keys.success()
	}
	return m.keys.connection()
}

// viewHeader shows the title and where the wizard is.
func (m AppModel) viewHeader() string {
	current := m.Wizard.Step()
	var steps []string
	for i, s := range wizard.Steps {
		label := fmt.Sprintf("%d %s", i+1, s.Label())
		switch {
		case s == current:
			steps = append(steps, activeStepStyle.Render(label))
		case s < current:
			steps = append(steps, doneStepStyle.Render(model.IconDone+" "+s.Label()))
		default:
			steps = append(steps, dimStyle.Render(label))
		}
	}
	return titleStyle.Render("Data Import") + "  " + strings.Join(steps, dimStyle.Render(" › "))
}

func (m AppModel) viewStatus() string {
	switch {
	case m.Wizard.Error() != "":
		return "\n" + errorStyle.Render(model.IconError+" "+m.Wizard.Error())
	case m.Notice != "":
		return "\n" + noticeStyle.Render(m.Notice)
	}
	return "\n"
}

func (m AppModel) viewConnection() string {
	var b strings.Builder

	var picker []string
	for _, k := range model.Sources {
		label := " " + k.Label() + " "
		if k == m.Wizard.Kind() {
			style := selectedStyle
			if m.Focus != 0 {
				style = checkedStyle
			}
			picker = append(picker, style.Render("‹"+label+"›"))
		} else {
			picker = append(picker, dimStyle.Render(" "+label+" "))
		}
	}
	b.WriteString(labelStyle.Render("Data source"))
	b.WriteString(strings.Join(picker, " "))
	b.WriteString("\n\n")

	for i, f := range m.fields() {
		label := f.label
		if i == m.Focus-1 {
			label = headingStyle.Render(label)
		}
		b.WriteString(labelStyle.Render(label))
		if f.choices != nil {
			v := "‹ " + f.value() + " ›"
			if i == m.Focus-1 {
				v = selectedStyle.Render(v)
			}
			b.WriteString(v)
		} else {
			b.WriteString(f.input.View())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.Loading:
		b.WriteString(m.spinner.View() + " Connecting...")
	case m.Wizard.Kind() == model.SourceLocal:
		server := ""
		if m.Client != nil {
			server = m.Client.BaseURL()
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"Enter lists the files staged on %s. Fill in a path to upload a file (max 10MB) first.", server)))
	default:
		b.WriteString(dimStyle.Render("Enter connects and lists everything importable."))
	}
	b.WriteString("\n")
	return b.String()
}

// paneSize returns the width of each pane and the interior height shared by both.
func (m AppModel) paneSize() (leftWidth, rightWidth, interiorHeight int) {
	netWidth := m.WindowSize.Width - 6
	if netWidth < 40 {
		netWidth = 40
	}
	leftWidth = netWidth * 3 / 5
	rightWidth = netWidth - leftWidth

	// Header, status and help lines
	boxHeight := m.WindowSize.Height - 7
	if boxHeight < 8 {
		boxHeight = 8
	}
	interiorHeight = boxHeight - 2
	return leftWidth, rightWidth, interiorHeight
}

func (m AppModel) viewSelection() string {
	session := m.Wizard.Session
	leftWidth, rightWidth, interiorHeight := m.paneSize()
	nodes := m.nodes()

	// LEFT PANEL: tree
	var leftView strings.Builder
	leftView.WriteString(headingStyle.Render(m.Wizard.Kind().Label()))
	leftView.WriteString("\n")

	filterType := session.Filter.Type
	if filterType == "" {
		filterType = pathtree.TypeAll
	}
	search := dimStyle.Render("/ to search")
	if m.InputMode {
		search = m.InputBuffer.View()
	} else if session.Filter.Query != "" {
		search = "Search: " + checkedStyle.Render(session.Filter.Query)
	}
	leftView.WriteString(fmt.Sprintf("Type: %s  %s\n", checkedStyle.Render(filterType), search))

	// Windowing Logic
	// Header is 2 lines (Title + filter line)
	visibleItems := interiorHeight - 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	startIdx := 0
	endIdx := len(nodes)

	if len(nodes) > visibleItems {
		if m.Cursor >= visibleItems/2 {
			startIdx = m.Cursor - (visibleItems / 2)
		}
		if startIdx+visibleItems > len(nodes) {
			startIdx = len(nodes) - visibleItems
		}
		if startIdx < 0 {
			startIdx = 0
		}
		endIdx = startIdx + visibleItems
	}

	if len(nodes) == 0 {
		leftView.WriteString(dimStyle.Render("No files match the current filter."))
	}
	for i := startIdx; i < endIdx; i++ {
		line := runewidth.Truncate(renderRow(nodes[i]), leftWidth-1, "…")

		var style lipgloss.Style
		switch {
		case i == m.Cursor:
			style = selectedStyle
		case nodes[i].Selected || nodes[i].Checked:
			style = checkedStyle
		default:
			style = normalStyle
		}
		leftView.WriteString(style.Render(line))
		leftView.WriteString("\n")
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("205")).
		Render(strings.TrimSuffix(leftView.String(), "\n"))

	// RIGHT PANEL: details
	var rightView strings.Builder
	rightView.WriteString(headingStyle.Render("Details"))
	rightView.WriteString("\n\n")
	if cur, ok := m.current(); ok {
		rightView.WriteString(m.renderDetails(cur, rightWidth))
	}

	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(strings.TrimSuffix(rightView.String(), "\n"))

	footer := fmt.Sprintf("%d available  ·  Selected: %d files",
		session.Available(), session.Selection.Len())
	if m.Loading {
		footer = m.spinner.View() + " " + footer
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + dimStyle.Render(footer)
}

// renderRow draws one tree row: indent, disclosure, checkbox, icon, name.
func renderRow(n pathtree.ViewNode) string {
	indent := strings.Repeat("  ", n.Depth)
	if n.IsFolder() {
		disclosure := model.IconFolderClosed
		if n.Expanded {
			disclosure = model.IconFolderOpen
		}
		box := model.IconUnchecked
		switch {
		case n.Checked:
			box = model.IconChecked
		case n.Indeterminate:
			box = model.IconPartial
		}
		return fmt.Sprintf("%s%s %s %s (%d/%d)", indent, disclosure, box, n.Name, n.SelectedCount, n.LeafCount)
	}

	box := model.IconUnchecked
	if n.Selected {
		box = model.IconChecked
	}
	return fmt.Sprintf("%s  %s %s %s", indent, box, model.FileIcon(n.Name), n.Name)
}

func (m AppModel) renderDetails(cur pathtree.ViewNode, width int) string {
	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(width - 2)

	if cur.IsFolder() {
		b.WriteString(wrap.Render("Folder: " + cur.Path))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Items: %d\nSelected: %d\n", cur.LeafCount, cur.SelectedCount))
		return b.String()
	}

	b.WriteString(wrap.Render(model.FileIcon(cur.Name) + " " + cur.Path))
	b.WriteString("\n")
	for _, it := range m.Wizard.Session.Items {
		if it.Path == cur.Path && it.Size > 0 {
			b.WriteString("Size: " + humanSize(it.Size) + "\n")
			break
		}
	}
	if cur.Selected {
		b.WriteString(checkedStyle.Render(model.IconDone + " selected"))
	} else {
		b.WriteString(dimStyle.Render("not selected"))
	}
	b.WriteString("\n\n")

	switch {
	case m.Preview != nil && m.PreviewPath == cur.Path:
		b.WriteString(m.DetailsViewport.View())
	case m.Loading && m.PreviewPath == cur.Path:
		b.WriteString(m.spinner.View() + " Loading preview...")
	case m.Wizard.Kind() == model.SourcePostgres:
		b.WriteString(dimStyle.Render("Press p to preview this table."))
	}
	return b.String()
}

// renderPreview lays out a table's columns and sample rows.
func renderPreview(p model.TablePreview) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(model.IconTable + " " + p.Table))
	b.WriteString("\n\n")

	schema := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Column", "Type", "Null")
	names := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		null := "NO"
		if c.IsNullable() {
			null = "YES"
		}
		schema.Row(c.Name, c.Type, null)
		names = append(names, c.Name)
	}
	b.WriteString(schema.Render())
	b.WriteString("\n\n")

	if len(p.Rows) == 0 {
		b.WriteString(dimStyle.Render("No rows."))
		return b.String()
	}
	if len(names) == 0 {
		for k := range p.Rows[0] {
			names = append(names, k)
		}
		sort.Strings(names)
	}
	sample := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(names...)
	for _, row := range p.Rows {
		cells := make([]string, len(names))
		for i, n := range names {
			v, ok := row[n]
			if !ok || v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = runewidth.Truncate(fmt.Sprint(v), 24, "…")
		}
		sample.Row(cells...)
	}
	b.WriteString(sample.Render())
	return b.String()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (m AppModel) viewImport() string {
	var b strings.Builder
	p := m.Wizard.Progress()

	b.WriteString(fmt.Sprintf("Importing %d items from %s\n", m.Wizard.Session.Selection.Len(), m.Wizard.Kind().Label()))
	b.WriteString(dimStyle.Render("Job " + m.Wizard.JobID()))
	b.WriteString("\n\n")

	if m.Wizard.Importing() {
		b.WriteString(m.spinner.View() + " " + p.Describe())
	} else {
		b.WriteString(errorStyle.Render(model.IconError + " " + p.Describe()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString(fmt.Sprintf("\n%d / %d\n", p.Processed, p.Total))

	if !m.Wizard.Importing() {
		b.WriteString("\n" + dimStyle.Render("Press esc to go back."))
	}
	return b.String()
}

func (m AppModel) viewSuccess() string {
	var b strings.Builder
	imported := m.Wizard.Imported()

	b.WriteString(doneStepStyle.Render(fmt.Sprintf("%s Import complete: %d items", model.IconDone, len(imported))))
	b.WriteString("\n")
	if msg := m.Wizard.Progress().Message; msg != "" {
		b.WriteString(dimStyle.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	limit := m.WindowSize.Height - 12
	if limit < 3 {
		limit = 3
	}
	for i, p := range imported {
		if i == limit {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(imported)-limit)))
			b.WriteString("\n")
			break
		}
		b.WriteString("  " + model.FileIcon(p) + " " + p + "\n")
	}
	return b.String()
}

func (m AppModel) renderHelpDialog() string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Window too small"
	}

	helpWidth := w * 80 / 100
	if helpWidth < 40 {
		helpWidth = 40
	}
	if helpWidth > w-4 {
		helpWidth = w - 4
	}
	helpHeight := h - 6
	if helpHeight < 5 {
		helpHeight = 5
	}

	content := m.HelpContent
	if content == "" {
		full := m.help
		full.ShowAll = true
		content = full.View(m.stepKeys())
	}
	lines := strings.Split(content, "\n")
	// Adjust height for border
	contentHeight := helpHeight - 2

	startY := m.HelpScrollY
	if startY > len(lines)-contentHeight {
		startY = len(lines) - contentHeight
	}
	if startY < 0 {
		startY = 0
	}

	endY := startY + contentHeight
	if endY > len(lines) {
		endY = len(lines)
	}

	dialog := lipgloss.NewStyle().
		Width(helpWidth).
		Height(helpHeight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(strings.Join(lines[startY:endY], "\n"))

	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.connect {
		src, err := m.buildSource()
		if err != nil {
			return tea.Batch(textinput.Blink, func() tea.Msg { return MsgError(err) })
		}
		cmds = append(cmds, loadSourceCmd(m.ctx, src))
	}
	return tea.Batch(cmds...)
}
