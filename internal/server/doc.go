// Package server exposes rendered board frames over HTTP.
//
// Routes:
//
//   - GET /: the embedded preview page, or a plain-text rendering when no
//     assets are configured
//   - GET /frames.txt: plain-text rendering of every frame
//   - GET /api/frames: all frames as JSON
//   - GET /api/frames/{surface}: one frame as JSON
//   - GET /api/sse: Server-Sent Events stream of frame updates
//   - GET /metrics: Prometheus metrics, when a handler is configured
//   - GET /healthz: liveness probe
//
// The server shuts down gracefully when its context is cancelled; streaming
// handlers observe the same context through the server's BaseContext.
package server
