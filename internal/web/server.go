package web

import (
	"context"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"dataimport/internal/client"
	"dataimport/internal/model"
	"dataimport/internal/pathtree"
	"dataimport/internal/progress"
	"dataimport/internal/source"
	"dataimport/internal/wizard"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

//go:embed static/*
var staticFS embed.FS

//go:embed help.md
var helpMD string

// HelpText returns the help page with the version filled in.
func HelpText() string {
	return strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)
}

// Options configures a Server.
type Options struct {
	Client  *client.Client
	Poller  *progress.Poller
	Session *pathtree.Session
	Log     logrus.FieldLogger
	Kind    model.SourceKind
	Sources source.Config
}

// Server exposes one wizard session over HTTP. Every handler takes mu
// before touching the wizard; network calls run without it.
type Server struct {
	client *client.Client
	poller *progress.Poller
	log    logrus.FieldLogger

	mu      sync.Mutex
	wiz     *wizard.Wizard
	sources source.Config

	ctx        context.Context
	cancel     context.CancelFunc
	pollCancel context.CancelFunc
}

// NewServer returns a server for opts. Close stops any running poll.
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	poller := opts.Poller
	if poller == nil {
		poller = progress.NewPoller(opts.Client, progress.WithLogger(log))
	}
	w := wizard.New(opts.Session)
	if opts.Kind != "" {
		_ = w.ChangeSource(opts.Kind)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		client:  opts.Client,
		poller:  poller,
		log:     log,
		wiz:     w,
		sources: opts.Sources,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close cancels background polling.
func (s *Server) Close() {
	s.cancel()
}

// Handler returns the routes of the web front-end.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	subFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServer(http.FS(subFS)))

	// API Endpoints
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/source", s.handleSource)
	mux.HandleFunc("POST /api/connect", s.handleConnect)
	mux.HandleFunc("POST /api/toggle", s.handleToggle)
	mux.HandleFunc("POST /api/expand", s.handleExpand)
	mux.HandleFunc("POST /api/select-all", s.handleSelectAll)
	mux.HandleFunc("POST /api/filter", s.handleFilter)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("POST /api/back", s.handleBack)
	mux.HandleFunc("POST /api/restart", s.handleRestart)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.HandleFunc("POST /api/files", s.handleUpload)
	mux.HandleFunc("GET /api/files/{name}", s.handleDownload)
	mux.HandleFunc("DELETE /api/files/{name}", s.handleDelete)
	mux.HandleFunc("GET /api/help", handleHelp)

	return mux
}

// StartServer serves the web front-end on addr until ctx is done.
func StartServer(ctx context.Context, addr string, opts Options) error {
	s := NewServer(opts)
	defer s.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("Web server started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "web server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// NodeView is the JSON form of one tree row.
type NodeView struct {
	Kind          string `json:"kind"` // "folder" or "leaf"
	Name          string `json:"name"`
	Path          string `json:"path"`
	Depth         int    `json:"depth"`
	Icon          string `json:"icon"`
	Checked       bool   `json:"checked"`
	Indeterminate bool   `json:"indeterminate,omitempty"`
	Expanded      bool   `json:"expanded,omitempty"`
	LeafCount     int    `json:"leafCount,omitempty"`
	SelectedCount int    `json:"selectedCount,omitempty"`
}

// State is the whole wizard as the page renders it.
type State struct {
	Step      string           `json:"step"`
	StepIndex int              `json:"stepIndex"`
	Kind      model.SourceKind `json:"kind"`
	Importing bool             `json:"importing"`
	JobID     string           `json:"jobId,omitempty"`
	Error     string           `json:"error,omitempty"`
	Progress  model.Progress   `json:"progress"`
	Percent   float64          `json:"percent"`
	Available int              `json:"available"`
	Selected  int              `json:"selected"`
	Filter    filterRequest    `json:"filter"`
	FileTypes []string         `json:"fileTypes"`
	Nodes     []NodeView       `json:"nodes"`
	Imported  []string         `json:"imported,omitempty"`
	Version   string           `json:"version"`
}

// NodeViews converts rendered rows to their JSON form.
func NodeViews(nodes []pathtree.ViewNode) []NodeView {
	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		v := NodeView{
			Name:  n.Name,
			Path:  n.Path,
			Depth: n.Depth,
		}
		if n.IsFolder() {
			v.Kind = "folder"
			v.Checked = n.Checked
			v.Indeterminate = n.Indeterminate
			v.Expanded = n.Expanded
			v.LeafCount = n.LeafCount
			v.SelectedCount = n.SelectedCount
			v.Icon = model.IconFolderClosed
			if n.Expanded {
				v.Icon = model.IconFolderOpen
			}
		} else {
			v.Kind = "leaf"
			v.Checked = n.Selected
			v.Icon = model.FileIcon(n.Name)
		}
		out = append(out, v)
	}
	return out
}

// state snapshots the wizard. Callers hold mu.
func (s *Server) state() State {
	session := s.wiz.Session
	p := s.wiz.Progress()
	return State{
		Step:      s.wiz.Step().Label(),
		StepIndex: int(s.wiz.Step()),
		Kind:      s.wiz.Kind(),
		Importing: s.wiz.Importing(),
		JobID:     s.wiz.JobID(),
		Error:     s.wiz.Error(),
		Progress:  p,
		Percent:   p.Percent(),
		Available: session.Available(),
		Selected:  session.Selection.Len(),
		Filter:    filterRequest{Type: session.Filter.Type, Query: session.Filter.Query},
		FileTypes: pathtree.FileTypes,
		Nodes:     NodeViews(session.Nodes()),
		Imported:  s.wiz.Imported(),
		Version:   model.Version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return errors.Wrap(err, "decode request")
	}
	return nil
}

// respond writes the current state, with status 409 when err is set.
func (s *Server) respond(w http.ResponseWriter, err error) {
	s.mu.Lock()
	st := s.state()
	s.mu.Unlock()
	if err != nil {
		st.Error = err.Error()
		writeJSON(w, http.StatusConflict, st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respond(w, nil)
}

type sourceRequest struct {
	Kind     model.SourceKind       `json:"kind"`
	S3       *model.S3Options       `json:"s3,omitempty"`
	Postgres *model.PostgresOptions `json:"postgres,omitempty"`
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	err := s.wiz.ChangeSource(req.Kind)
	if err == nil {
		if req.S3 != nil {
			s.sources.S3 = *req.S3
		}
		if req.Postgres != nil {
			s.sources.Postgres = *req.Postgres
		}
	}
	s.mu.Unlock()
	s.respond(w, err)
}

// source builds the configured source. Callers hold mu.
func (s *Server) source() (source.Source, error) {
	return source.New(s.wiz.Kind(), s.client, s.sources)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	src, err := s.source()
	s.mu.Unlock()
	if err != nil {
		s.respond(w, err)
		return
	}

	items, err := src.List(r.Context())

	s.mu.Lock()
	if err != nil {
		s.wiz.Fail(err)
		s.log.WithError(err).Warn("Listing failed")
	} else {
		err = s.wiz.SourceLoaded(items)
	}
	s.mu.Unlock()
	s.respond(w, err)
}

type pathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, s.editTree(func(session *pathtree.Session) error {
		if _, ok := session.Tree.Leaf(req.Path); ok {
			session.ToggleLeaf(req.Path)
		} else if !session.ToggleFolder(req.Path) {
			return errors.Errorf("%q is not in the tree", req.Path)
		}
		s.wiz.ClearError()
		return nil
	}))
}

// editTree runs fn on the session under the lock, if the wizard is on the
// file selection step.
func (s *Server) editTree(fn func(*pathtree.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.wiz.EditSelection(); err != nil {
		return err
	}
	return fn(s.wiz.Session)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, s.editTree(func(session *pathtree.Session) error {
		session.ToggleExpanded(req.Path)
		return nil
	}))
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.editTree(func(session *pathtree.Session) error {
		session.SelectAll()
		s.wiz.ClearError()
		return nil
	}))
}

type filterRequest struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, s.editTree(func(session *pathtree.Session) error {
		session.SetFilter(pathtree.Filter{Type: req.Type, Query: req.Query})
		return nil
	}))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	src, err := s.source()
	if err != nil {
		s.mu.Unlock()
		s.respond(w, err)
		return
	}
	jobID, err := s.wiz.StartImport()
	paths := s.wiz.Pending()
	s.mu.Unlock()
	if err != nil {
		s.respond(w, err)
		return
	}

	id, err := src.StartImport(r.Context(), paths, jobID)

	s.mu.Lock()
	if err != nil {
		s.wiz.StartFailed(err)
		s.mu.Unlock()
		s.log.WithError(err).Error("Import could not be started")
		s.respond(w, err)
		return
	}
	s.wiz.JobStarted(id)
	if s.pollCancel != nil {
		s.pollCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.pollCancel = cancel
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"job": id, "items": len(paths)}).Info("Import started")
	go s.follow(ctx, id)
	s.respond(w, nil)
}

// follow feeds progress reports into the wizard until the job ends.
func (s *Server) follow(ctx context.Context, jobID string) {
	for p := range s.poller.Poll(ctx, jobID) {
		s.mu.Lock()
		_ = s.wiz.Update(p)
		s.mu.Unlock()
		if p.Status.Terminal() {
			s.log.WithFields(logrus.Fields{"job": jobID, "status": p.Status}).Info("Import finished")
		}
	}
}

func (s *Server) stopPolling() {
	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.wiz.Back()
	if err == nil {
		s.stopPolling()
	}
	s.mu.Unlock()
	s.respond(w, err)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.wiz.Restart()
	s.mu.Unlock()
	s.respond(w, err)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		writeError(w, http.StatusBadRequest, errors.New("table is required"))
		return
	}
	s.mu.Lock()
	src, err := s.source()
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pv, ok := src.(source.Previewer)
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("preview is only available for database tables"))
		return
	}
	preview, err := pv.Preview(r.Context(), table)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleUpload stages a file from the machine running the server.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	msg, err := s.client.Upload(r.Context(), req.Path)
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err)
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(name, `"`, "")+`"`)
	if _, err := s.client.Download(r.Context(), name, w); err != nil {
		s.log.WithError(err).WithField("file", name).Warn("Download failed")
		writeError(w, http.StatusBadGateway, err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.client.Delete(r.Context(), name); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleHelp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown")
	_, _ = io.WriteString(w, HelpText())
}
