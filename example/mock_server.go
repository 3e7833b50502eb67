package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"slices"
	"sync"
)

// leaderboard is a fake match whose scores move on every request.
type leaderboard struct {
	mu    sync.Mutex
	kills map[string]int
}

func newLeaderboard(players ...string) *leaderboard {
	lb := &leaderboard{kills: make(map[string]int)}
	for _, p := range players {
		lb.kills[p] = 0
	}
	return lb
}

// lines advances the match and returns the top five, highest first.
func (lb *leaderboard) lines() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	names := make([]string, 0, len(lb.kills))
	for name := range lb.kills {
		names = append(names, name)
	}
	if len(names) == 0 {
		return []string{}
	}
	lb.kills[names[rand.Intn(len(names))]]++

	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(lb.kills[b], lb.kills[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(names) > 5 {
		names = names[:5]
	}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fmt.Sprintf("&e%d. &f%s &7%d", i+1, name, lb.kills[name])
	}
	return out
}

// ServeHTTP writes the leaderboard as plain text lines, or as a JSON array
// when ?format=json is given.
func (lb *leaderboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lines := lb.lines()
	if r.URL.Query().Get("format") == "json" {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lines); err != nil {
			slog.Error("failed to write response", "error", err)
		}
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

// StartMockFeedServer serves a changing leaderboard at /lines.
// Call this in a goroutine before creating boards that read from it.
func StartMockFeedServer(addr string, players ...string) {
	mux := http.NewServeMux()
	mux.Handle("/lines", newLeaderboard(players...))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
