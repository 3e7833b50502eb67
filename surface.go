package sidebar

import "github.com/google/uuid"

// DisplaySlot identifies where an objective is shown on a viewer's screen.
type DisplaySlot int

const (
	// SlotNone means the objective is not displayed.
	SlotNone DisplaySlot = iota
	// SlotSidebar is the side panel the board renders into.
	SlotSidebar
)

// String returns the slot name.
func (s DisplaySlot) String() string {
	switch s {
	case SlotSidebar:
		return "sidebar"
	default:
		return "none"
	}
}

// Surface is one host-owned display: a set of objectives, scored entries and
// roster teams. A GlobalBoard owns one shared Surface, a PersonalBoard owns one
// per viewer.
//
// Implementations must be comparable (typically pointer types); boards key
// their diff cache by Surface.
type Surface interface {
	// Objective returns the named objective, creating it if absent.
	Objective(name string) Objective
	// ClearSlot removes whatever objective occupies slot.
	ClearSlot(slot DisplaySlot)
	// Entries lists every entry holding a score on any objective.
	Entries() []string
	// ResetScores removes all scores held by entry.
	ResetScores(entry string)
	// Team returns the roster team registered under name.
	Team(name string) (RosterTeam, bool)
	// RegisterTeam registers a new, empty roster team.
	RegisterTeam(name string) RosterTeam
	// Teams lists every registered roster team.
	Teams() []RosterTeam
}

// Objective is a titled score table on a [Surface].
type Objective interface {
	DisplayName() string
	SetDisplayName(name string)
	SetDisplaySlot(slot DisplaySlot)
	Score(entry string) (int, bool)
	SetScore(entry string, score int)
}

// RosterTeam is a named group of entries sharing a prefix on a [Surface].
type RosterTeam interface {
	Name() string
	Prefix() string
	SetPrefix(prefix string)
	Entries() []string
	HasEntry(entry string) bool
	AddEntry(entry string)
	RemoveEntry(entry string)
	// Unregister removes the team from its surface. Further calls on the
	// team have no visible effect.
	Unregister()
}

// Viewer is a connected participant who looks at exactly one [Surface].
type Viewer interface {
	ID() uuid.UUID
	Name() string
	Surface() Surface
	SetSurface(s Surface)
}

// Host resolves viewers and creates surfaces.
type Host interface {
	// Viewer resolves an online viewer. It returns false for viewers that
	// are offline or unknown.
	Viewer(id uuid.UUID) (Viewer, bool)
	// NewSurface creates a fresh surface. It returns false when the host
	// cannot create surfaces yet.
	NewSurface() (Surface, bool)
	// MainSurface is the host's default surface viewers return to.
	MainSurface() Surface
}
