package memhost

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/jpalmerr/sidebar"
)

// Surface is an in-memory [sidebar.Surface].
type Surface struct {
	mu         sync.Mutex
	objectives map[string]*Objective
	slots      map[sidebar.DisplaySlot]*Objective
	teams      map[string]*Team
	teamOrder  []string
	mutations  int
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{
		objectives: make(map[string]*Objective),
		slots:      make(map[sidebar.DisplaySlot]*Objective),
		teams:      make(map[string]*Team),
	}
}

// Mutations counts every state change made to the surface so far.
func (s *Surface) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// Objective implements [sidebar.Surface].
func (s *Surface) Objective(name string) sidebar.Objective {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.objectives[name]; ok {
		return o
	}
	o := &Objective{surface: s, name: name, scores: make(map[string]int)}
	s.objectives[name] = o
	s.mutations++
	return o
}

// ClearSlot implements [sidebar.Surface].
func (s *Surface) ClearSlot(slot sidebar.DisplaySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.slots[slot]; ok {
		o.slot = sidebar.SlotNone
		delete(s.slots, slot)
		s.mutations++
	}
}

// Entries implements [sidebar.Surface].
func (s *Surface) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, o := range s.objectives {
		for e := range o.scores {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	slices.Sort(out)
	return out
}

// ResetScores implements [sidebar.Surface].
func (s *Surface) ResetScores(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, o := range s.objectives {
		if _, ok := o.scores[entry]; ok {
			delete(o.scores, entry)
			changed = true
		}
	}
	if changed {
		s.mutations++
	}
}

// Team implements [sidebar.Surface].
func (s *Surface) Team(name string) (sidebar.RosterTeam, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// RegisterTeam implements [sidebar.Surface]. Registering a name that exists
// returns the existing team.
func (s *Surface) RegisterTeam(name string) sidebar.RosterTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.teams[name]; ok {
		return t
	}
	t := &Team{surface: s, name: name}
	s.teams[name] = t
	s.teamOrder = append(s.teamOrder, name)
	s.mutations++
	return t
}

// Teams implements [sidebar.Surface].
func (s *Surface) Teams() []sidebar.RosterTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sidebar.RosterTeam, 0, len(s.teamOrder))
	for _, name := range s.teamOrder {
		out = append(out, s.teams[name])
	}
	return out
}

// TeamNames lists registered roster team names in registration order.
func (s *Surface) TeamNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.teamOrder)
}

// Row is one visible sidebar line.
type Row struct {
	Entry string `json:"entry"`
	Score int    `json:"score"`
	// Text is the prefix and entry as shown, with color codes.
	Text string `json:"text"`
}

// Plain returns Text with color codes removed.
func (r Row) Plain() string {
	return sidebar.StripColor(r.Text)
}

// RosterView is a snapshot of one roster team.
type RosterView struct {
	Name    string   `json:"name"`
	Prefix  string   `json:"prefix"`
	Entries []string `json:"entries"`
}

// View is a snapshot of what a surface displays.
type View struct {
	Title string       `json:"title"`
	Rows  []Row        `json:"rows"`
	Teams []RosterView `json:"teams"`
}

// Lines returns the plain text of each row, top to bottom.
func (v View) Lines() []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Plain()
	}
	return out
}

// Render snapshots the sidebar as a viewer would see it: rows ordered by
// score, highest first, each showing the prefix of the entry's roster team
// followed by the entry itself. Entry tokens made only of color codes render
// as nothing.
func (s *Surface) Render() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view View
	for _, name := range s.teamOrder {
		t := s.teams[name]
		view.Teams = append(view.Teams, RosterView{
			Name:    t.name,
			Prefix:  t.prefix,
			Entries: slices.Clone(t.entries),
		})
	}

	o, ok := s.slots[sidebar.SlotSidebar]
	if !ok {
		return view
	}
	view.Title = o.displayName
	for entry, score := range o.scores {
		text := visibleEntry(entry)
		if t := s.teamOfLocked(entry); t != nil {
			text = t.prefix + text
		}
		view.Rows = append(view.Rows, Row{Entry: entry, Score: score, Text: text})
	}
	slices.SortFunc(view.Rows, func(a, b Row) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry, b.Entry)
	})
	return view
}

func (s *Surface) teamOfLocked(entry string) *Team {
	for _, name := range s.teamOrder {
		t := s.teams[name]
		if slices.Contains(t.entries, entry) {
			return t
		}
	}
	return nil
}

func visibleEntry(entry string) string {
	if !strings.ContainsRune(entry, sidebar.SectionSign) {
		return entry
	}
	return strings.TrimSpace(sidebar.StripColor(entry))
}

// Objective is an in-memory [sidebar.Objective].
type Objective struct {
	surface     *Surface
	name        string
	displayName string
	slot        sidebar.DisplaySlot
	scores      map[string]int
}

// DisplayName implements [sidebar.Objective].
func (o *Objective) DisplayName() string {
	o.surface.mu.Lock()
	defer o.surface.mu.Unlock()
	return o.displayName
}

// SetDisplayName implements [sidebar.Objective].
func (o *Objective) SetDisplayName(name string) {
	o.surface.mu.Lock()
	defer o.surface.mu.Unlock()
	o.displayName = name
	o.surface.mutations++
}

// SetDisplaySlot implements [sidebar.Objective].
func (o *Objective) SetDisplaySlot(slot sidebar.DisplaySlot) {
	s := o.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.slots[slot]; ok && prev != o {
		prev.slot = sidebar.SlotNone
	}
	if o.slot != sidebar.SlotNone {
		delete(s.slots, o.slot)
	}
	o.slot = slot
	if slot != sidebar.SlotNone {
		s.slots[slot] = o
	}
	s.mutations++
}

// Slot returns where the objective is displayed.
func (o *Objective) Slot() sidebar.DisplaySlot {
	o.surface.mu.Lock()
	defer o.surface.mu.Unlock()
	return o.slot
}

// Score implements [sidebar.Objective].
func (o *Objective) Score(entry string) (int, bool) {
	o.surface.mu.Lock()
	defer o.surface.mu.Unlock()
	v, ok := o.scores[entry]
	return v, ok
}

// SetScore implements [sidebar.Objective].
func (o *Objective) SetScore(entry string, score int) {
	o.surface.mu.Lock()
	defer o.surface.mu.Unlock()
	o.scores[entry] = score
	o.surface.mutations++
}

// Team is an in-memory [sidebar.RosterTeam].
type Team struct {
	surface      *Surface
	name         string
	prefix       string
	entries      []string
	unregistered bool
}

// Name implements [sidebar.RosterTeam].
func (t *Team) Name() string { return t.name }

// Prefix implements [sidebar.RosterTeam].
func (t *Team) Prefix() string {
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	return t.prefix
}

// SetPrefix implements [sidebar.RosterTeam].
func (t *Team) SetPrefix(prefix string) {
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	if t.unregistered {
		return
	}
	t.prefix = prefix
	t.surface.mutations++
}

// Entries implements [sidebar.RosterTeam].
func (t *Team) Entries() []string {
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	return slices.Clone(t.entries)
}

// HasEntry implements [sidebar.RosterTeam].
func (t *Team) HasEntry(entry string) bool {
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	return slices.Contains(t.entries, entry)
}

// AddEntry implements [sidebar.RosterTeam]. An entry belongs to at most one
// team per surface, so it is moved out of any other team first.
func (t *Team) AddEntry(entry string) {
	s := t.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.unregistered || slices.Contains(t.entries, entry) {
		return
	}
	for _, other := range s.teams {
		other.entries = slices.DeleteFunc(other.entries, func(e string) bool { return e == entry })
	}
	t.entries = append(t.entries, entry)
	s.mutations++
}

// RemoveEntry implements [sidebar.RosterTeam].
func (t *Team) RemoveEntry(entry string) {
	t.surface.mu.Lock()
	defer t.surface.mu.Unlock()
	if t.unregistered || !slices.Contains(t.entries, entry) {
		return
	}
	t.entries = slices.DeleteFunc(t.entries, func(e string) bool { return e == entry })
	t.surface.mutations++
}

// Unregister implements [sidebar.RosterTeam].
func (t *Team) Unregister() {
	s := t.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.unregistered {
		return
	}
	t.unregistered = true
	delete(s.teams, t.name)
	s.teamOrder = slices.DeleteFunc(s.teamOrder, func(n string) bool { return n == t.name })
	s.mutations++
}
