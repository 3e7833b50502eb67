// Standalone mock feed for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/sidebar serve -c example/board.yaml
package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"sync"
)

func main() {
	fmt.Println("Mock feed server starting on :9999")
	fmt.Println("GET /lines for text, /lines?format=json for a JSON array")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu    sync.Mutex
		kills = map[string]int{"alice": 0, "bob": 0, "carol": 0, "dave": 0}
	)

	http.HandleFunc("/lines", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		names := make([]string, 0, len(kills))
		for name := range kills {
			names = append(names, name)
		}
		kills[names[rand.Intn(len(names))]]++
		slices.SortFunc(names, func(a, b string) int {
			if c := cmp.Compare(kills[b], kills[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		lines := make([]string, len(names))
		for i, name := range names {
			lines[i] = fmt.Sprintf("&e%d. &f%s &7%d", i+1, name, kills[name])
		}
		mu.Unlock()

		if r.URL.Query().Get("format") == "json" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(lines)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, line := range lines {
			_, _ = fmt.Fprintln(w, line)
		}
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
