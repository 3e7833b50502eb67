package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/internal/memhost"
	"github.com/jpalmerr/sidebar/internal/refresh"
)

func main() {
	players := []string{"alice", "bob", "carol", "dave"}

	// start mock feed (see mock_server.go)
	go StartMockFeedServer(":9999", players...)
	time.Sleep(100 * time.Millisecond)

	host := memhost.New()
	for _, p := range players {
		host.Join(p)
	}

	feed := refresh.NewFeed()
	defer feed.Close()

	var top []string
	board, err := sidebar.NewGlobalBoard(host,
		func() string { return "&6&lARENA" },
		func() []string {
			return append([]string{"&7Online: &f" + fmt.Sprint(len(host.Online())), ""}, top...)
		},
		sidebar.WithPushCallback(func(r sidebar.PushResult) {
			if r.Err != nil {
				slog.Warn("push failed", "error", r.Err)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create board", "error", err)
		os.Exit(1)
	}
	for _, v := range host.Online() {
		board.AddViewer(v.ID())
	}

	red, _ := board.CreateTeam("red", "&c")
	blue, _ := board.CreateTeam("blue", "&9")
	red.AddMember(memhost.ViewerID("alice"))
	red.AddMember(memhost.ViewerID("bob"))
	blue.AddMember(memhost.ViewerID("carol"))
	blue.AddMember(memhost.ViewerID("dave"))

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		lines, err := feed.Lines(ctx, "http://localhost:9999/lines", nil, time.Second)
		if err != nil && ctx.Err() == nil {
			slog.Warn("feed unavailable", "error", err)
		} else {
			top = lines
		}
		if err := board.UpdateScoreboard(); err != nil {
			slog.Error("update failed", "error", err)
		}
		printView(board)

		select {
		case <-ctx.Done():
			board.Destroy()
			return
		case <-ticker.C:
		}
	}
}

// printView draws the shared surface the way a viewer would see it.
func printView(board *sidebar.GlobalBoard) {
	s, ok := board.Surface().(*memhost.Surface)
	if !ok {
		return
	}
	view := s.Render()
	fmt.Println()
	fmt.Println("  " + sidebar.StripColor(view.Title))
	fmt.Println("  " + strings.Repeat("-", 20))
	for _, line := range view.Lines() {
		fmt.Println("  " + line)
	}
}
