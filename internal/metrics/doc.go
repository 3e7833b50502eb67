// Package metrics exports board activity to Prometheus.
//
// A [Recorder] owns its own registry and is fed from a board push callback.
// Every method is safe on a nil *Recorder, so callers can leave metrics
// disabled without branching.
package metrics
