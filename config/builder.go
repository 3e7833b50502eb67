package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/internal/memhost"
)

// TemplateData is what title and line templates are evaluated against.
type TemplateData struct {
	// Viewer is the viewing player's name on a personal board, empty on a
	// global one.
	Viewer string
	// Online lists the names of online viewers in join order.
	Online []string
	Now    time.Time
	// Tick counts board updates, starting at 1.
	Tick uint64
	// Feed holds the most recent lines fetched from the feed.
	Feed []string
}

// Board is a board built from a [Config] on an in-memory host.
type Board struct {
	cfg   *Config
	host  *memhost.Host
	title *template.Template
	lines []*template.Template

	global   *sidebar.GlobalBoard
	personal *sidebar.PersonalBoard

	mu      sync.Mutex
	feed    []string
	tick    uint64
	execErr error
	now     func() time.Time
}

// BuildBoard creates the board described by cfg and its teams. Viewers are
// not added; see [Board.AddViewer].
func BuildBoard(cfg *Config, host *memhost.Host, opts ...sidebar.Option) (*Board, error) {
	b := &Board{cfg: cfg, host: host, now: time.Now}

	var err error
	// use missingkey=error to fail fast on fields the data does not have
	b.title, err = template.New("title").Option("missingkey=error").Parse(cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("invalid title template: %w", err)
	}
	for i, line := range cfg.Lines {
		tmpl, err := template.New(fmt.Sprintf("lines[%d]", i)).Option("missingkey=error").Parse(line)
		if err != nil {
			return nil, fmt.Errorf("lines[%d]: invalid template: %w", i, err)
		}
		b.lines = append(b.lines, tmpl)
	}

	if cfg.Objective != "" {
		opts = append([]sidebar.Option{sidebar.WithObjectiveName(cfg.Objective)}, opts...)
	}

	switch cfg.Kind {
	case KindPersonal:
		b.personal, err = sidebar.NewPersonalBoard(host,
			func(v sidebar.Viewer) string { return b.renderTitle(v.Name()) },
			func(v sidebar.Viewer) []string { return b.renderLines(v.Name()) },
			opts...,
		)
	default:
		b.global, err = sidebar.NewGlobalBoard(host,
			func() string { return b.renderTitle("") },
			func() []string { return b.renderLines("") },
			opts...,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	for _, tc := range cfg.Teams {
		team, err := b.createTeam(tc.Name, tc.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", tc.Name, err)
		}
		for _, m := range tc.Members {
			team.AddMember(memhost.ViewerID(m))
		}
	}

	return b, nil
}

// Kind reports whether the board is global or personal.
func (b *Board) Kind() string {
	return b.cfg.Kind
}

// AddViewer attaches a viewer to the board.
func (b *Board) AddViewer(id uuid.UUID) error {
	if b.personal != nil {
		return b.personal.AddViewer(id)
	}
	b.global.AddViewer(id)
	return nil
}

// RemoveViewer detaches a viewer from the board.
func (b *Board) RemoveViewer(id uuid.UUID) {
	if b.personal != nil {
		b.personal.RemoveViewer(id)
		return
	}
	b.global.RemoveViewer(id)
}

// Update advances the tick and pushes fresh content. Template execution
// errors are returned alongside push errors; a failing line renders empty.
func (b *Board) Update() error {
	b.mu.Lock()
	b.tick++
	b.execErr = nil
	b.mu.Unlock()

	var err error
	if b.personal != nil {
		err = b.personal.UpdateScoreboard()
	} else {
		err = b.global.UpdateScoreboard()
	}

	b.mu.Lock()
	execErr := b.execErr
	b.mu.Unlock()
	return errors.Join(err, execErr)
}

// SetFeed replaces the feed lines used by the next update.
func (b *Board) SetFeed(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feed = slices.Clone(lines)
}

// Feed returns the current feed lines.
func (b *Board) Feed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.feed)
}

// Teams returns the board's teams.
func (b *Board) Teams() []*sidebar.Team {
	if b.personal != nil {
		return b.personal.Teams()
	}
	return b.global.Teams()
}

// Surface returns the surface a viewer sees this board on. On a global board
// every viewer shares one surface.
func (b *Board) Surface(id uuid.UUID) (sidebar.Surface, bool) {
	if b.personal != nil {
		return b.personal.SurfaceFor(id)
	}
	s := b.global.Surface()
	return s, s != nil
}

// Destroy tears the board down and returns every viewer to the main surface.
func (b *Board) Destroy() {
	if b.personal != nil {
		b.personal.Destroy()
		return
	}
	b.global.Destroy()
}

func (b *Board) createTeam(name, displayName string) (*sidebar.Team, error) {
	if b.personal != nil {
		return b.personal.CreateTeam(name, displayName)
	}
	return b.global.CreateTeam(name, displayName)
}

func (b *Board) data(viewer string) TemplateData {
	online := b.host.Online()
	names := make([]string, 0, len(online))
	for _, v := range online {
		names = append(names, v.Name())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return TemplateData{
		Viewer: viewer,
		Online: names,
		Now:    b.now(),
		Tick:   b.tick,
		Feed:   slices.Clone(b.feed),
	}
}

func (b *Board) renderTitle(viewer string) string {
	return b.execute(b.title, b.data(viewer))
}

// renderLines evaluates the line templates, or falls back to the feed when
// none are configured.
func (b *Board) renderLines(viewer string) []string {
	data := b.data(viewer)
	if len(b.lines) == 0 {
		return data.Feed
	}
	out := make([]string, len(b.lines))
	for i, tmpl := range b.lines {
		out[i] = b.execute(tmpl, data)
	}
	return out
}

func (b *Board) execute(tmpl *template.Template, data TemplateData) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		b.mu.Lock()
		if b.execErr == nil {
			b.execErr = fmt.Errorf("template %s: %w", tmpl.Name(), err)
		}
		b.mu.Unlock()
		return ""
	}
	return buf.String()
}
