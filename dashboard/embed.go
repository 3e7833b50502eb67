// Package dashboard provides the embedded preview page for the sidebar
// server.
//
// The page subscribes to the server's event stream and draws every surface's
// frame the way a viewer would see it. It is compiled into the binary, so
// the preview needs no external asset files.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the preview page.
//
//	assets/
//	  index.html    - preview page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
