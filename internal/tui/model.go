package tui

import (
	"context"
	"io"
	"strconv"
	"strings"

	"dataimport/internal/client"
	"dataimport/internal/model"
	"dataimport/internal/pathtree"
	"dataimport/internal/progress"
	"dataimport/internal/source"
	"dataimport/internal/wizard"

	"github.com/charmbracelet/bubbles/help"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Options configures the TUI.
type Options struct {
	Client  *client.Client
	Poller  *progress.Poller
	Session *pathtree.Session
	Log     logrus.FieldLogger

	// Kind and Sources prefill the connection form.
	Kind    model.SourceKind
	Sources source.Config
	// Connect lists the source as soon as the program starts.
	Connect bool

	HelpContent string
}

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Wizard  *wizard.Wizard
	Client  *client.Client
	Poller  *progress.Poller
	Log     logrus.FieldLogger
	Loading bool
	Notice  string // transient message, e.g. after an upload

	// UI State
	Cursor      int // row in the file tree
	Focus       int // connection form; 0 is the source picker
	Fields      map[model.SourceKind][]field
	WindowSize  tea.WindowSizeMsg
	ShowHelp    bool
	HelpContent string
	HelpScrollY int

	// Search State
	InputMode   bool
	InputBuffer textinput.Model

	// Table preview (PostgreSQL)
	Preview     *model.TablePreview
	PreviewPath string

	// Components
	DetailsViewport viewport.Model
	keys            keyMap
	help            help.Model
	spinner         spinner.Model
	bar             progressbar.Model

	connect    bool
	ctx        context.Context
	cancel     context.CancelFunc
	pollCancel context.CancelFunc
	updates    <-chan model.Progress
}

// field is one input of the connection form. Fields with choices are cycled
// with the arrow keys instead of typed into.
type field struct {
	key     string
	label   string
	input   textinput.Model
	choices []string
	choice  int
}

func (f field) value() string {
	if f.choices != nil {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

func newInput(placeholder, value string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	ti.SetValue(value)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func newFields(cfg source.Config) map[model.SourceKind][]field {
	region := 0
	want := cfg.S3.Region
	if want == "" {
		want = model.DefaultS3Region
	}
	for i, r := range model.S3Regions {
		if r == want {
			region = i
		}
	}

	port := ""
	if cfg.Postgres.Port > 0 {
		port = strconv.Itoa(cfg.Postgres.Port)
	}

	return map[model.SourceKind][]field{
		model.SourceLocal: {
			{key: "upload", label: "Upload file", input: newInput("~/data/report.csv", "", false)},
		},
		model.SourceS3: {
			{key: "accessKey", label: "Access key", input: newInput("AKIA...", cfg.S3.AccessKey, false)},
			{key: "secretKey", label: "Secret key", input: newInput("", cfg.S3.SecretKey, true)},
			{key: "region", label: "Region", choices: model.S3Regions, choice: region},
			{key: "path", label: "S3 path", input: newInput("s3://bucket/folder/", cfg.S3.Path, false)},
		},
		model.SourcePostgres: {
			{key: "host", label: "Host", input: newInput("localhost", cfg.Postgres.Host, false)},
			{key: "port", label: "Port", input: newInput(strconv.Itoa(model.DefaultPostgresPort), port, false)},
			{key: "database", label: "Database", input: newInput("", cfg.Postgres.Database, false)},
			{key: "username", label: "Username", input: newInput("", cfg.Postgres.Username, false)},
			{key: "password", label: "Password", input: newInput("", cfg.Postgres.Password, true)},
			{key: "schema", label: "Schema", input: newInput("all schemas", cfg.Postgres.Schema, false)},
		},
	}
}

// InitialModel returns the initial state.
func InitialModel(opts Options) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Search files..."
	ti.CharLimit = 100
	ti.Width = 30

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	log := opts.Log
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	poller := opts.Poller
	if poller == nil && opts.Client != nil {
		poller = progress.NewPoller(opts.Client, progress.WithLogger(log))
	}

	w := wizard.New(opts.Session)
	if opts.Kind != "" {
		_ = w.ChangeSource(opts.Kind)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return AppModel{
		Wizard:      w,
		Client:      opts.Client,
		Poller:      poller,
		Log:         log,
		Fields:      newFields(opts.Sources),
		HelpContent: opts.HelpContent,
		InputBuffer: ti,
		keys:        newKeyMap(),
		help:        help.New(),
		spinner:     sp,
		bar:         progressbar.New(progressbar.WithDefaultGradient()),
		connect:     opts.Connect,
		Loading:     opts.Connect,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// fields returns the form of the current source.
func (m AppModel) fields() []field { return m.Fields[m.Wizard.Kind()] }

func (m AppModel) value(key string) string {
	for _, f := range m.fields() {
		if f.key == key {
			return f.value()
		}
	}
	return ""
}

// sourceConfig reads the connection form.
func (m AppModel) sourceConfig() source.Config {
	var cfg source.Config
	get := func(kind model.SourceKind, key string) string {
		for _, f := range m.Fields[kind] {
			if f.key == key {
				return f.value()
			}
		}
		return ""
	}

	cfg.S3 = model.S3Options{
		AccessKey: get(model.SourceS3, "accessKey"),
		SecretKey: get(model.SourceS3, "secretKey"),
		Region:    get(model.SourceS3, "region"),
		Path:      get(model.SourceS3, "path"),
	}

	port, err := strconv.Atoi(get(model.SourcePostgres, "port"))
	if err != nil || port <= 0 {
		port = model.DefaultPostgresPort
	}
	cfg.Postgres = model.PostgresOptions{
		Host:     get(model.SourcePostgres, "host"),
		Port:     port,
		Database: get(model.SourcePostgres, "database"),
		Username: get(model.SourcePostgres, "username"),
		Password: get(model.SourcePostgres, "password"),
		Schema:   get(model.SourcePostgres, "schema"),
	}
	return cfg
}

// buildSource builds the source the form currently describes.
func (m AppModel) buildSource() (source.Source, error) {
	return source.New(m.Wizard.Kind(), m.Client, m.sourceConfig())
}

// nodes returns the visible tree rows.
func (m AppModel) nodes() []pathtree.ViewNode {
	return m.Wizard.Session.Nodes()
}

// current returns the row under the cursor.
func (m AppModel) current() (pathtree.ViewNode, bool) {
	nodes := m.nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return pathtree.ViewNode{}, false
	}
	return nodes[m.Cursor], true
}

func (m *AppModel) clampCursor() {
	n := len(m.nodes())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
