package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notes-frontend/internal/metrics"
	"notes-frontend/internal/modal"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr       string
	BackendURL string
	// SessionSecret signs the browser cookie. Empty means a per-process key.
	SessionSecret string
	SessionTTL    time.Duration

	// Transport is used for backend calls; nil means http.DefaultTransport.
	Transport http.RoundTripper
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	key    []byte
	log    zerolog.Logger
	states *stateStore
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.BackendURL = strings.TrimSpace(cfg.BackendURL)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.BackendURL == "" {
		return nil, errors.New("web: backend url is empty")
	}
	if u, err := url.Parse(cfg.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("web: invalid backend url %q", cfg.BackendURL)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":       strings.TrimSpace,
		"upper":      strings.ToUpper,
		"modalWidth": func(s modal.Size) string { return s.MaxWidthClass() },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	key, err := deriveKey(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("web: session key: %w", err)
	}

	log := cfg.Logger.With().Str("component", "web").Logger()
	srv := &Server{
		cfg:    cfg,
		tmpl:   tmpl,
		key:    key,
		log:    log,
		states: newStateStore(cfg.BackendURL, cfg.Transport, cfg.SessionTTL, log, cfg.Metrics),
	}
	go srv.states.sweepLoop(time.Minute)
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close stops background work.
func (s *Server) Close() { s.states.Stop() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics.Handler())
	}
	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("GET /{$}", s.handleLoginGet)
	mux.HandleFunc("POST /login", s.handleLoginPost)
	mux.HandleFunc("GET /welcome", s.handleLanding)
	mux.HandleFunc("POST /logout", s.handleLogoutPost)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/events", s.handleDashboardEvents)
	mux.HandleFunc("POST /dashboard/notes/new", s.handleNoteNew)
	mux.HandleFunc("POST /dashboard/notes/{noteId}/edit", s.handleNoteEdit)
	mux.HandleFunc("POST /dashboard/notes/{noteId}/delete", s.handleNoteDelete)
	mux.HandleFunc("POST /dashboard/note-form/validate", s.handleNoteValidate)
	mux.HandleFunc("POST /dashboard/note-form/submit", s.handleNoteSubmit)
	mux.HandleFunc("POST /dashboard/delete/confirm", s.handleDeleteConfirm)
	mux.HandleFunc("POST /dashboard/invite/open", s.handleInviteOpen)
	mux.HandleFunc("POST /dashboard/invite/validate", s.handleInviteValidate)
	mux.HandleFunc("POST /dashboard/invite/submit", s.handleInviteSubmit)
	mux.HandleFunc("POST /dashboard/upgrade", s.handleUpgrade)
	mux.HandleFunc("POST /dashboard/modal/close", s.handleModalClose)
	return s.withRequestLog(mux)
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := fs.ReadFile(assetsFS, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(b)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	s.writeHTMLTemplateStatus(w, http.StatusOK, name, data)
}

func (s *Server) writeHTMLTemplateStatus(w http.ResponseWriter, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}
