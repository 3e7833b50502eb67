package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/sidebar/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.Update(store.Frame{
		Surface: "global",
		Title:   "Arena",
		Lines:   []string{"Kills: 3", "Deaths: 1"},
		Teams:   []store.Team{{Name: "red", Prefix: "§c", Members: []string{"alice"}}},
	})
	return st
}

func parseSSEFrames(body string) []store.Frame {
	var frames []store.Frame
	for _, line := range strings.Split(body, "\n") {
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var f store.Frame
			if err := json.Unmarshal([]byte(data), &f); err == nil {
				frames = append(frames, f)
			}
		}
	}
	return frames
}

func TestHandleSSE_SendsInitialFrames(t *testing.T) {
	st := seededStore()
	st.Update(store.Frame{Surface: "alice", Title: "Personal"})
	srv := NewServer(st, 0, nil, "", nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	frames := parseSSEFrames(rec.Body.String())
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2; body: %s", len(frames), rec.Body.String())
	}
	if frames[0].Surface != "alice" || frames[1].Surface != "global" {
		t.Errorf("surfaces = %q,%q; want alice,global", frames[0].Surface, frames[1].Surface)
	}
	if frames[1].Lines[0] != "Kills: 3" {
		t.Errorf("Lines[0] = %q, want %q", frames[1].Lines[0], "Kills: 3")
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	st := store.NewMemoryStore()
	srv := NewServer(st, 0, nil, "", nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	time.Sleep(50 * time.Millisecond)
	st.Update(store.Frame{Surface: "bob", Title: "Streamed"})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	if !strings.Contains(rec.Body.String(), "Streamed") {
		t.Errorf("response should contain streamed frame, got: %s", rec.Body.String())
	}
}

func TestHandleSSE_ConcurrentClientsShutdown(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())
	serverCtx, serverCancel := context.WithCancel(context.Background())

	const numClients = 10
	var wg sync.WaitGroup
	var started atomic.Int32
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(serverCtx)
			started.Add(1)
			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}

	time.Sleep(100 * time.Millisecond)
	serverCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("not all handlers exited after shutdown (%d started)", started.Load())
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header { return n.header }

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) { n.statusCode = statusCode }

func TestHandleSSE_SSENotSupported(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), 0, nil, "", nil, testLogger())
	w := &nonFlushWriter{header: make(http.Header)}

	srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/sse", nil))

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.statusCode)
	}
}

func TestHandleSSE_Headers(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), 0, nil, "", nil, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	srv.handleSSE(rec, httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx))

	expected := map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	}
	for key, want := range expected {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("header %s = %q, want %q", key, got, want)
		}
	}
}

// TestHandleSSE_ServerShutdownIntegration uses a real connection, which
// supports write deadlines unlike ResponseRecorder.
func TestHandleSSE_ServerShutdownIntegration(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())
	serverCtx, serverCancel := context.WithCancel(context.Background())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.handleSSE(w, r.WithContext(serverCtx))
	}))
	defer ts.Close()

	connDone := make(chan error, 1)
	go func() {
		resp, err := ts.Client().Get(ts.URL)
		if err != nil {
			connDone <- err
			return
		}
		defer func() { _ = resp.Body.Close() }()
		buf := make([]byte, 1024)
		for {
			if _, err := resp.Body.Read(buf); err != nil {
				connDone <- nil
				return
			}
		}
	}()

	time.Sleep(100 * time.Millisecond)
	serverCancel()

	select {
	case <-connDone:
	case <-time.After(3 * time.Second):
		t.Fatal("SSE connection did not close after server shutdown")
	}
}

func TestHandler_Frames(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frames", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var frames []store.Frame
	if err := json.Unmarshal(rec.Body.Bytes(), &frames); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if len(frames) != 1 || frames[0].Title != "Arena" || frames[0].Version != 1 {
		t.Errorf("frames = %+v", frames)
	}
}

func TestHandler_FrameBySurface(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frames/global", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var f store.Frame
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if f.Surface != "global" || len(f.Teams) != 1 {
		t.Errorf("frame = %+v", f)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frames/nobody", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown surface status = %d, want 404", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/frames", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandler_TextWithoutAssets(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	for _, want := range []string{"[global] Arena (v1)", "  Kills: 3", "team red"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestHandler_Healthz(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), 0, nil, "", nil, testLogger())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "sidebar_pushes_total 1")
	})
	srv := NewServer(store.NewMemoryStore(), 0, nil, "", metrics, testLogger())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "sidebar_pushes_total") {
		t.Errorf("metrics body = %q", rec.Body.String())
	}

	bare := NewServer(store.NewMemoryStore(), 0, nil, "", nil, testLogger())
	rec = httptest.NewRecorder()
	bare.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics without handler status = %d, want 404", rec.Code)
	}
}

// mockFS implements fs.ReadFileFS for preview page tests.
type mockFS struct {
	content string
}

func (m *mockFS) Open(string) (fs.File, error) { return nil, fs.ErrNotExist }

func (m *mockFS) ReadFile(name string) ([]byte, error) {
	if name == "assets/index.html" {
		return []byte(m.content), nil
	}
	return nil, fs.ErrNotExist
}

func TestHandleIndex_Title(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"custom", "Arena Boards", "<h1>Arena Boards</h1>"},
		{"default", "", "<h1>sidebar preview</h1>"},
		{"escaped", "<b>&</b>", "<h1>&lt;b&gt;&amp;&lt;/b&gt;</h1>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets := &mockFS{content: "<h1>{{.Title}}</h1>"}
			srv := NewServer(store.NewMemoryStore(), 0, assets, tt.title, nil, testLogger())
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestHandleIndex_MissingAsset(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), 0, &mockFS{}, "", nil, testLogger())
	srv.assets = fsFunc(func(string) ([]byte, error) { return nil, fs.ErrNotExist })
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

type fsFunc func(string) ([]byte, error)

func (f fsFunc) Open(string) (fs.File, error)         { return nil, fs.ErrNotExist }
func (f fsFunc) ReadFile(name string) ([]byte, error) { return f(name) }

func TestWriteText(t *testing.T) {
	errMsg := "line too long"
	frames := []store.Frame{
		{Surface: "alice", Title: "A", Lines: []string{"one"}, Version: 2},
		{Surface: "bob", Title: "B", Version: 1, Error: &errMsg},
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, frames); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	want := "[alice] A (v2)\n  one\n\n[bob] B (v1)\n  error: line too long\n"
	if buf.String() != want {
		t.Errorf("WriteText() = %q, want %q", buf.String(), want)
	}
}

func TestStart_ServesRealRequests(t *testing.T) {
	srv := NewServer(seededStore(), 0, nil, "", nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	port := srv.Addr().(*net.TCPAddr).Port

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/frames/global", port))
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(store.NewMemoryStore(), port, nil, "", nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() on occupied port should return error")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("expected bind error, got: %v", err)
	}
}

func TestStart_InvalidPort_ReturnsError(t *testing.T) {
	srv := NewServer(store.NewMemoryStore(), -1, nil, "", nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Fatal("Start() with invalid port should return error")
	}
}
