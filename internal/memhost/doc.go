// Package memhost is an in-memory display host for sidebar boards.
//
// It implements [sidebar.Host], [sidebar.Viewer], [sidebar.Surface],
// [sidebar.Objective] and [sidebar.RosterTeam] without any network protocol.
// Every state change on a [Surface] increments a mutation counter, which lets
// tests assert that an unchanged push touched nothing, and [Surface.Render]
// produces the rows a viewer would actually see.
//
// The preview server and the CLI render command use it to show what a board
// configuration looks like.
package memhost
