package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jpalmerr/sidebar/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so slow or disconnected
	// clients cannot pin a handler. Must be <= the shutdown timeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	defaultTitle     = "sidebar preview"
	titlePlaceholder = "{{.Title}}"
)

// Server serves frames from a [store.Store].
type Server struct {
	store      store.Store
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	metrics    http.Handler
	logger     *slog.Logger
	addr       net.Addr
}

// NewServer creates a [Server]. assets and metrics may be nil. The server is
// not started until [Server.Start] is called.
func NewServer(st store.Store, port int, assets fs.FS, title string, metrics http.Handler, logger *slog.Logger) *Server {
	if title == "" {
		title = defaultTitle
	}
	return &Server{
		store:   st,
		port:    port,
		assets:  assets,
		title:   title,
		metrics: metrics,
		logger:  logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Get("/frames.txt", s.handleText)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/frames", s.handleFrames)
	r.Get("/api/frames/{surface}", s.handleFrame)
	r.Get("/api/sse", s.handleSSE)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Start binds the port and serves in the background until ctx is cancelled,
// then shuts down with a 5 second grace period.
//
// Returns an error if the port cannot be bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.addr = ln.Addr()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx, so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address once [Server.Start] has succeeded.
func (s *Server) Addr() net.Addr {
	return s.addr
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		s.handleText(w, r)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Preview not found", http.StatusInternalServerError)
		return
	}

	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(s.title))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, rendered); err != nil {
		s.logger.Error("failed to write preview response", "error", err)
	}
}

func (s *Server) handleText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := WriteText(w, s.store.GetAll()); err != nil {
		s.logger.Error("failed to write text response", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleFrames(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.GetAll())
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.store.Get(chi.URLParam(r, "surface"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "surface not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, frame)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleSSE streams frame updates. Each write carries a deadline so a stuck
// client cannot block the handler from noticing shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, frame := range s.store.GetAll() {
		data, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case frame, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// WriteText renders frames as plain text, one block per surface.
func WriteText(w io.Writer, frames []store.Frame) error {
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s (v%d)\n", f.Surface, f.Title, f.Version)
		for _, line := range f.Lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		for _, t := range f.Teams {
			fmt.Fprintf(&b, "  team %s %q: %s\n", t.Name, t.Prefix, strings.Join(t.Members, ", "))
		}
		if f.Error != nil {
			fmt.Fprintf(&b, "  error: %s\n", *f.Error)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
