package sidebar

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// MaxTeamNameLen is the longest team name, in runes, the protocol accepts.
const MaxTeamNameLen = 16

// Team is a named group of viewers rendered as a roster team with a shared,
// colored prefix. A Team belongs to exactly one board for its whole life.
//
// Team methods are safe for concurrent use; they share the owning board's lock.
type Team struct {
	board       *board
	name        string
	displayName string
	members     []uuid.UUID
}

// Name returns the team's name.
func (t *Team) Name() string {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	return t.name
}

// DisplayName returns the unformatted prefix text.
func (t *Team) DisplayName() string {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	return t.displayName
}

// Members returns a copy of the member ids in join order.
func (t *Team) Members() []uuid.UUID {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	return slices.Clone(t.members)
}

// IsMember reports whether id belongs to the team.
func (t *Team) IsMember(id uuid.UUID) bool {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	return slices.Contains(t.members, id)
}

// SetName renames the team. The roster team registered under the old name
// is removed from every surface before the team renders under the new one.
func (t *Team) SetName(name string) error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()

	if name == t.name {
		return nil
	}
	if err := validateTeamName(name); err != nil {
		return err
	}
	if _, ok := t.board.findTeamLocked(name, t); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTeam, name)
	}

	t.destroyLocked()
	t.name = name
	t.refreshLocked()
	return nil
}

// SetDisplayName changes the prefix and re-renders the team.
func (t *Team) SetDisplayName(displayName string) {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	t.displayName = displayName
	t.refreshLocked()
}

// AddMember adds id to the team. Adding an existing member only re-renders.
func (t *Team) AddMember(id uuid.UUID) {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if !slices.Contains(t.members, id) {
		t.members = append(t.members, id)
	}
	t.refreshLocked()
}

// RemoveMember removes id from the team and from its roster entries.
func (t *Team) RemoveMember(id uuid.UUID) {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	t.removeMemberLocked(id)
}

func (t *Team) removeMemberLocked(id uuid.UUID) {
	if !slices.Contains(t.members, id) {
		return
	}
	stale := t.board.resolve(t)
	t.members = slices.DeleteFunc(t.members, func(m uuid.UUID) bool { return m == id })

	if v, ok := t.board.host.Viewer(id); ok {
		for _, s := range stale {
			if rt, ok := s.Team(t.name); ok {
				rt.RemoveEntry(v.Name())
			}
		}
	}
	t.refreshLocked()
}

// refreshLocked renders the team on every surface it currently resolves to.
func (t *Team) refreshLocked() {
	for _, s := range t.board.resolve(t) {
		t.renderLocked(s)
	}
}

// renderLocked makes the roster team on s match this team. Entries of former
// members are left in place.
func (t *Team) renderLocked(s Surface) {
	rt, ok := s.Team(t.name)
	if !ok {
		rt = s.RegisterTeam(t.name)
	}
	for _, id := range t.members {
		v, ok := t.board.host.Viewer(id)
		if !ok {
			t.board.logger.Debug("skipping unresolvable team member", "team", t.name, "viewer", id)
			continue
		}
		if !rt.HasEntry(v.Name()) {
			rt.AddEntry(v.Name())
		}
	}
	if prefix := Colorize(t.displayName); rt.Prefix() != prefix {
		rt.SetPrefix(prefix)
	}
}

// destroyLocked unregisters the roster team from every surface it resolves to.
// Membership is kept.
func (t *Team) destroyLocked() {
	for _, s := range t.board.resolve(t) {
		if rt, ok := s.Team(t.name); ok {
			rt.Unregister()
		}
	}
}

func validateTeamName(name string) error {
	if n := displayLen(name); n > MaxTeamNameLen {
		return fmt.Errorf("%w: %q is %d characters, max %d", ErrTeamNameTooLong, name, n, MaxTeamNameLen)
	}
	if isLineTeamName(normalizeTeamName(name)) {
		return fmt.Errorf("%w: %q", ErrReservedTeamName, name)
	}
	return nil
}

// normalizeTeamName is the key team uniqueness is checked on.
func normalizeTeamName(name string) string {
	return cases.Fold().String(StripColor(Colorize(name)))
}

func isLineTeamName(name string) bool {
	digits, ok := strings.CutPrefix(name, lineTeamPrefix)
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
