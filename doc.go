// Package sidebar keeps a scoreboard sidebar in sync for one or many viewers.
//
// A sidebar shows a title and an ordered list of text lines, plus named teams
// whose members are shown with a colored prefix. The display protocol behind
// it can only distinguish lines by a unique, invisible entry per line, limits
// team names to 16 characters and lines to 64, and redraws whatever it is
// told to change. This package hides those constraints: callers describe what
// should be shown and the board pushes only what differs from the last push.
//
// # Quick Start
//
// A [GlobalBoard] shows the same content to everyone through one shared
// surface:
//
//	board, err := sidebar.NewGlobalBoard(host,
//	    func() string { return "&6&lArena" },
//	    func() []string { return []string{"&aKills: 3", "Deaths: 1"} },
//	    sidebar.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	board.AddViewer(viewerID)
//	if err := board.UpdateScoreboard(); err != nil {
//	    return err
//	}
//
// A [PersonalBoard] gives each viewer a surface of its own, with content
// computed per viewer:
//
//	board, err := sidebar.NewPersonalBoard(host,
//	    func(v sidebar.Viewer) string { return "&e" + v.Name() },
//	    func(v sidebar.Viewer) []string { return statsFor(v.ID()) },
//	)
//
// [StaticGlobalBoard] and [StaticPersonalBoard] hold their content themselves
// and push whenever SetTitle or SetLines is called.
//
// # Colors
//
// Titles, lines and team display names may contain '&' color codes such as
// "&a" or "&l". [Colorize] translates them to the protocol form before they
// are written; [StripColor] removes protocol color codes.
//
// # Pushing
//
// Each push to a surface runs in one of three modes, reported through
// [WithPushCallback]:
//
//   - fast path: the lines equal the last push to that surface, so only the
//     title and teams are refreshed
//   - update: lines are rewritten in place, keeping every entry token at
//     the same rank
//   - reshape: the line count changed, so the old layout is cleared first
//
// Content is validated before anything is written. A line longer than
// [MaxLineLen] after color translation fails with [ErrLineTooLong] and
// leaves the surface exactly as it was.
//
// # Teams
//
// Teams are created with CreateTeam and render as roster teams on every
// surface they resolve to: the shared surface of a global board, or the
// current surface of every member of a personal board. Names are unique on a
// board ignoring color codes and case, at most [MaxTeamNameLen] characters,
// and may not look like the "line<N>" teams the board uses for its own
// lines.
//
// # Hosts
//
// The package does not talk to any display protocol directly. Callers
// implement [Host], [Viewer], [Surface], [Objective] and [RosterTeam] for
// their platform. All board and team methods are safe for concurrent use.
package sidebar
