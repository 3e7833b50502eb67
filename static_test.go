package sidebar_test

import (
	"slices"
	"testing"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/internal/memhost"
)

func TestStaticGlobalBoard(t *testing.T) {
	host := memhost.New()
	alice := host.Join("alice")
	sb, err := sidebar.NewStaticGlobalBoard(host, sidebar.WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("NewStaticGlobalBoard() error = %v", err)
	}
	sb.AddViewer(alice.ID())

	if err := sb.SetTitle("&bLobby"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	if sb.Lines() != nil {
		t.Errorf("Lines() = %q before SetLines, want nil", sb.Lines())
	}

	if err := sb.SetLines("one", "two"); err != nil {
		t.Fatalf("SetLines() error = %v", err)
	}
	view := alice.Looking().Render()
	if view.Title != "§bLobby" {
		t.Errorf("Title = %q, want §bLobby", view.Title)
	}
	if got := view.Lines(); !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("Lines() = %q, want [one two]", got)
	}

	if err := sb.SetLines(); err != nil {
		t.Fatalf("SetLines() error = %v", err)
	}
	if rows := alice.Looking().Render().Rows; len(rows) != 0 {
		t.Errorf("Rows = %v after clearing, want none", rows)
	}
}

func TestStaticPersonalBoard(t *testing.T) {
	host := memhost.New()
	alice := host.Join("alice")
	bob := host.Join("bob")
	sb, err := sidebar.NewStaticPersonalBoard(host, sidebar.WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("NewStaticPersonalBoard() error = %v", err)
	}
	_ = sb.AddViewer(alice.ID())
	_ = sb.AddViewer(bob.ID())

	if err := sb.SetLines(alice.ID(), "only alice"); err != nil {
		t.Fatalf("SetLines() error = %v", err)
	}
	if err := sb.SetTitle(alice.ID(), "A"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}

	if got := alice.Looking().Render().Lines(); !slices.Equal(got, []string{"only alice"}) {
		t.Errorf("alice lines = %q", got)
	}
	if got := alice.Looking().Render().Title; got != "A" {
		t.Errorf("alice title = %q, want A", got)
	}
	if got := bob.Looking().Render().Lines(); len(got) != 0 {
		t.Errorf("bob lines = %q, want none", got)
	}

	sb.RemoveViewer(alice.ID())
	if sb.Lines(alice.ID()) != nil || sb.Title(alice.ID()) != "" {
		t.Error("content should be forgotten with the viewer")
	}
}
