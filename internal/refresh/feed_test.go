package refresh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestFeed_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("&aOnline: 4\r\nMap: Dust\n"))
	}))
	defer server.Close()

	feed := NewFeed()
	defer feed.Close()

	lines, err := feed.Lines(context.Background(), server.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	want := []string{"&aOnline: 4", "Map: Dust"}
	if !slices.Equal(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

func TestFeed_JSONArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`["one","two"]`))
	}))
	defer server.Close()

	lines, err := NewFeed().Lines(context.Background(), server.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if !slices.Equal(lines, []string{"one", "two"}) {
		t.Errorf("Lines() = %q, want [one two]", lines)
	}
}

func TestFeed_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer server.Close()

	lines, err := NewFeed().Lines(context.Background(), server.URL, map[string]string{"Authorization": "Bearer t"}, time.Second)
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if !slices.Equal(lines, []string{"Bearer t"}) {
		t.Errorf("Lines() = %q", lines)
	}
}

func TestFeed_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewFeed().Lines(context.Background(), server.URL, nil, time.Second)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("Lines() error = %v, want unexpected status 503", err)
	}
}

func TestFeed_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewFeed().Lines(context.Background(), server.URL, nil, 50*time.Millisecond)
	if err == nil {
		t.Error("Lines() expected timeout error, got nil")
	}
}

func TestFeed_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	if _, err := NewFeed().Lines(context.Background(), server.URL, nil, time.Second); err == nil {
		t.Error("Lines() expected decode error, got nil")
	}
}

func TestFeed_Close_NilFeed(t *testing.T) {
	var feed *Feed
	feed.Close()
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := SplitLines([]byte(tt.in)); !slices.Equal(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
