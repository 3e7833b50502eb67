package sidebar

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxLineLen is the longest formatted line, in runes, a board accepts.
	MaxLineLen = 64

	defaultObjective = "sidebar"
	lineTeamPrefix   = "line"
)

// surfaceState is the diff cache for one surface.
type surfaceState struct {
	pushed bool
	lines  []string
	// lineTeams maps roster team names this board created for line
	// rendering to their rank.
	lineTeams map[string]int
}

// board is the state and behavior shared by [GlobalBoard] and [PersonalBoard].
//
// All fields are guarded by mu. Methods with the Locked suffix expect mu to
// be held by the caller.
type board struct {
	mu        sync.Mutex
	host      Host
	logger    *slog.Logger
	objective string
	callbacks []func(PushResult)

	teams    []*Team
	viewers  []uuid.UUID
	surfaces map[Surface]*surfaceState

	// resolve returns the surfaces a team currently renders onto.
	resolve func(t *Team) []Surface
}

func newBoard(host Host, opts []Option) (*board, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	cfg := &boardConfig{objective: defaultObjective}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &board{
		host:      host,
		logger:    logger,
		objective: cfg.objective,
		callbacks: cfg.pushCallbacks,
		surfaces:  make(map[Surface]*surfaceState),
	}, nil
}

// Viewers returns the active viewer ids in insertion order.
func (b *board) Viewers() []uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.viewers)
}

// Teams returns the board's teams in creation order.
func (b *board) Teams() []*Team {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.teams)
}

// FindTeam looks a team up by name, ignoring color codes and case.
func (b *board) FindTeam(name string) (*Team, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findTeamLocked(name, nil)
}

// CreateTeam creates a team and renders it on every surface it resolves to.
//
// Returns [ErrDuplicateTeam] if a team with the same normalized name exists,
// [ErrTeamNameTooLong] for names over [MaxTeamNameLen] and
// [ErrReservedTeamName] for names shaped like a line team.
func (b *board) CreateTeam(name, displayName string) (*Team, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.findTeamLocked(name, nil); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateTeam, name)
	}
	if err := validateTeamName(name); err != nil {
		return nil, err
	}

	t := &Team{board: b, name: name, displayName: displayName}
	t.refreshLocked()
	b.teams = append(b.teams, t)
	return t, nil
}

// RemoveTeam destroys t and removes it from the board. Teams owned by a
// different board are ignored.
func (b *board) RemoveTeam(t *Team) {
	if t == nil || t.board != b {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.teams, t)
	if i < 0 {
		return
	}
	t.destroyLocked()
	b.teams = slices.Delete(b.teams, i, i+1)
}

func (b *board) findTeamLocked(name string, except *Team) (*Team, bool) {
	key := normalizeTeamName(name)
	for _, t := range b.teams {
		if t == except {
			continue
		}
		if normalizeTeamName(t.name) == key {
			return t, true
		}
	}
	return nil, false
}

func (b *board) addViewerLocked(id uuid.UUID) {
	if !slices.Contains(b.viewers, id) {
		b.viewers = append(b.viewers, id)
	}
}

// removeViewerLocked detaches the viewer back to the main surface and drops
// it from every team.
func (b *board) removeViewerLocked(id uuid.UUID) {
	b.viewers = slices.DeleteFunc(b.viewers, func(v uuid.UUID) bool { return v == id })
	if v, ok := b.host.Viewer(id); ok {
		v.SetSurface(b.host.MainSurface())
	}
	for _, t := range b.teams {
		t.removeMemberLocked(id)
	}
}

// destroyLocked tears down every team, returns viewers to the main surface
// and clears all state.
func (b *board) destroyLocked() {
	for _, t := range b.teams {
		t.destroyLocked()
	}
	main := b.host.MainSurface()
	for _, id := range b.viewers {
		if v, ok := b.host.Viewer(id); ok {
			v.SetSurface(main)
		}
	}
	b.teams = nil
	b.viewers = nil
	clear(b.surfaces)
}

func (b *board) stateLocked(s Surface) *surfaceState {
	st, ok := b.surfaces[s]
	if !ok {
		st = &surfaceState{lineTeams: make(map[string]int)}
		b.surfaces[s] = st
	}
	return st
}

// pushLocked renders title and lines onto s, touching only what changed since
// the last push to s. Nothing on s is modified if validation fails.
func (b *board) pushLocked(s Surface, viewer uuid.UUID, title string, lines []string) (PushResult, error) {
	start := time.Now()
	result := PushResult{Viewer: viewer, Lines: len(lines)}

	formatted := make([]string, len(lines))
	for i, line := range lines {
		f := Colorize(line)
		if n := displayLen(f); n > MaxLineLen {
			return result, fmt.Errorf("%w: line %d is %d characters, max %d", ErrLineTooLong, i, n, MaxLineLen)
		}
		formatted[i] = f
	}
	tokens, err := Entries(len(lines))
	if err != nil {
		return result, err
	}

	obj := s.Objective(b.objective)
	if t := Colorize(title); obj.DisplayName() != t {
		obj.SetDisplayName(t)
	}

	st := b.stateLocked(s)
	if st.pushed && slices.Equal(st.lines, lines) {
		b.renderTeamsLocked(s)
		result.Mode = PushFastPath
		result.Duration = time.Since(start)
		return result, nil
	}

	result.Mode = PushUpdate
	if st.pushed && len(st.lines) != len(lines) {
		b.reshapeLocked(s, st)
		result.Mode = PushReshape
	}

	st.pushed = true
	st.lines = slices.Clone(lines)
	obj.SetDisplaySlot(SlotSidebar)

	n := len(formatted)
	for score := 1; score <= n; score++ {
		line := formatted[n-score]
		token := tokens[score-1]
		name := lineTeamName(score)

		if rt, ok := s.Team(name); ok {
			if rt.Prefix() != line {
				rt.SetPrefix(line)
			}
			for _, e := range rt.Entries() {
				if e != token {
					rt.RemoveEntry(e)
				}
			}
			if !rt.HasEntry(token) {
				rt.AddEntry(token)
			}
			if _, scored := obj.Score(token); !scored {
				obj.SetScore(token, score)
			}
		} else {
			rt = s.RegisterTeam(name)
			rt.AddEntry(token)
			rt.SetPrefix(line)
			obj.SetScore(token, score)
		}
		st.lineTeams[name] = score
	}

	b.renderTeamsLocked(s)
	result.Duration = time.Since(start)
	return result, nil
}

// reshapeLocked removes every trace of the previous layout from s.
func (b *board) reshapeLocked(s Surface, st *surfaceState) {
	s.ClearSlot(SlotSidebar)
	for _, e := range s.Entries() {
		s.ResetScores(e)
	}
	for name := range st.lineTeams {
		if rt, ok := s.Team(name); ok {
			rt.Unregister()
		}
	}
	clear(st.lineTeams)
}

func (b *board) renderTeamsLocked(s Surface) {
	for _, t := range b.teams {
		t.renderLocked(s)
	}
}

// forgetLocked drops the diff cache for s.
func (b *board) forgetLocked(s Surface) {
	delete(b.surfaces, s)
}

// notify runs push callbacks. It must be called without mu held.
func (b *board) notify(results []PushResult) {
	for _, r := range results {
		for _, cb := range b.callbacks {
			invokeCallbackSafe(cb, r, b.logger)
		}
	}
}

func lineTeamName(rank int) string {
	return lineTeamPrefix + strconv.Itoa(rank)
}

// invokeCallbackSafe calls a push callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(PushResult), result PushResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("push callback panicked",
				"panic", r,
				"viewer", result.Viewer,
			)
		}
	}()
	cb(result)
}
