// Package preview runs a configured board against an in-memory host and
// publishes what every surface shows.
//
// A [Preview] joins the configured viewers, refreshes the board on a
// schedule, pulls feed lines when a feed is configured and stores one
// frame per surface. [Preview.Start] additionally serves the frames over
// HTTP until its context is cancelled; [Preview.RenderOnce] performs a
// single refresh for command line rendering.
package preview
