// Package server serves the marketing site, its JSON API and the contact
// endpoint that emails project inquiries.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skm16/skmdigital/pkg/contact"
	"github.com/skm16/skmdigital/pkg/inquiry"
	"github.com/skm16/skmdigital/pkg/mail"
	"github.com/skm16/skmdigital/pkg/site"
)

//go:embed dist
var frontendDist embed.FS

// Config holds listener settings. Zero durations get defaults.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	OpenBrowser     bool
}

// Deps are the collaborators of the handlers. A nil Sender means the email
// provider is not configured; the contact endpoint then answers 500.
type Deps struct {
	Schema   *inquiry.Schema
	Composer *mail.Composer
	Sender   mail.Sender
	Content  site.Content
	Logger   *zap.Logger
	Now      func() time.Time
}

type Server struct {
	cfg        Config
	schema     *inquiry.Schema
	composer   *mail.Composer
	sender     mail.Sender
	content    site.Content
	log        *zap.Logger
	now        func() time.Time
	started    time.Time
	dist       fs.FS
	index      *template.Template
	httpServer *http.Server
}

func New(cfg Config, deps Deps) (*Server, error) {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if deps.Schema == nil {
		deps.Schema = inquiry.Default()
	}
	if deps.Composer == nil {
		deps.Composer = mail.NewComposer(deps.Schema, "", nil, nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	dist, err := fs.Sub(frontendDist, "dist")
	if err != nil {
		return nil, err
	}
	index, err := template.ParseFS(dist, "index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		schema:   deps.Schema,
		composer: deps.Composer,
		sender:   deps.Sender,
		content:  deps.Content,
		log:      deps.Logger,
		now:      deps.Now,
		started:  deps.Now(),
		dist:     dist,
		index:    index,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(contact.Path, s.handleContact)
	mux.HandleFunc("/api/questions", s.handleQuestions)
	mux.HandleFunc("/api/site", s.handleSite)
	mux.HandleFunc("/sitemap.xml", s.handleSitemap)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleFrontend)

	return s.withRequestID(s.logRequests(s.recoverPanic(mux)))
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return ln, nil
}

// Run listens and serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. In-flight requests get
// ShutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	url := "http://" + displayAddr(ln.Addr())
	s.log.Info("Starting web interface",
		zap.String("url", url),
		zap.Bool("mailConfigured", s.sender != nil))
	if s.cfg.OpenBrowser {
		openBrowser(url, s.log)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	s.httpServer.SetKeepAlivesEnabled(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

func displayAddr(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func openBrowser(url string, log *zap.Logger) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}
	if err != nil {
		log.Warn("Failed to open browser", zap.Error(err))
	}
}

// handleFrontend serves files from dist and renders the landing page for
// everything else so client-side anchors keep working.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, contact.Response{Error: "Not found"})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	if path != "" && path != "index.html" {
		if f, err := s.dist.Open(path); err == nil {
			stat, statErr := f.Stat()
			f.Close()
			if statErr == nil && !stat.IsDir() {
				http.FileServer(http.FS(s.dist)).ServeHTTP(w, r)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, s.content); err != nil {
		s.requestLogger(r).Error("render index", zap.Error(err))
	}
}
