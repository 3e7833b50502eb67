package sidebar_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/internal/memhost"
)

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g, err := sidebar.NewGlobalBoard(memhost.New(), nil, func() []string { return []string{"x"} },
		sidebar.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("NewGlobalBoard() error = %v", err)
	}
	red, _ := g.CreateTeam("red", "")
	_ = g.UpdateScoreboard()
	red.AddMember(uuid.New())

	if !strings.Contains(buf.String(), "unresolvable") {
		t.Errorf("expected debug log for unresolvable member, got %q", buf.String())
	}
}

func TestWithLogger_Nil(t *testing.T) {
	_, err := sidebar.NewGlobalBoard(memhost.New(), nil, nil, sidebar.WithLogger(nil))
	if err == nil {
		t.Error("NewGlobalBoard() expected error for nil logger, got nil")
	}
}

func TestWithObjectiveName(t *testing.T) {
	host := memhost.New()
	g, err := sidebar.NewGlobalBoard(host, nil, func() []string { return []string{"x"} },
		sidebar.WithObjectiveName("stats"),
	)
	if err != nil {
		t.Fatalf("NewGlobalBoard() error = %v", err)
	}
	if err := g.UpdateScoreboard(); err != nil {
		t.Fatalf("UpdateScoreboard() error = %v", err)
	}
	s := g.Surface().(*memhost.Surface)
	obj := s.Objective("stats").(*memhost.Objective)
	if obj.Slot() != sidebar.SlotSidebar {
		t.Errorf("Slot() = %v, want sidebar", obj.Slot())
	}
}

func TestWithObjectiveName_Invalid(t *testing.T) {
	for _, name := range []string{"", strings.Repeat("o", 17)} {
		if _, err := sidebar.NewGlobalBoard(memhost.New(), nil, nil, sidebar.WithObjectiveName(name)); err == nil {
			t.Errorf("WithObjectiveName(%q) expected error, got nil", name)
		}
	}
}

func TestWithPushCallback_Nil(t *testing.T) {
	g, err := sidebar.NewGlobalBoard(memhost.New(), nil, func() []string { return []string{"x"} },
		sidebar.WithPushCallback(nil),
	)
	if err != nil {
		t.Fatalf("NewGlobalBoard() error = %v", err)
	}
	if err := g.UpdateScoreboard(); err != nil {
		t.Errorf("UpdateScoreboard() error = %v", err)
	}
}

func TestWithPushCallback_ReportsViewer(t *testing.T) {
	host := memhost.New()
	alice := host.Join("alice")
	var got []sidebar.PushResult
	p, err := sidebar.NewPersonalBoard(host, nil, greeting,
		sidebar.WithLogger(testLogger()),
		sidebar.WithPushCallback(func(r sidebar.PushResult) { got = append(got, r) }),
	)
	if err != nil {
		t.Fatalf("NewPersonalBoard() error = %v", err)
	}
	_ = p.AddViewer(alice.ID())

	if len(got) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(got))
	}
	if got[0].Viewer != alice.ID() || got[0].Lines != 2 || got[0].Err != nil {
		t.Errorf("PushResult = %+v", got[0])
	}
}

func TestPushMode_String(t *testing.T) {
	tests := map[sidebar.PushMode]string{
		sidebar.PushFailed:   "failed",
		sidebar.PushFastPath: "fast",
		sidebar.PushUpdate:   "update",
		sidebar.PushReshape:  "reshape",
	}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("PushMode(%d).String() = %q, want %q", int(mode), got, want)
		}
	}
}
