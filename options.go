package sidebar

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PushMode describes what a push had to do to bring a surface up to date.
type PushMode int

const (
	// PushFailed means validation rejected the content; the surface is untouched.
	PushFailed PushMode = iota
	// PushFastPath means the lines matched the last push; only teams were re-rendered.
	PushFastPath
	// PushUpdate means lines were rewritten in place.
	PushUpdate
	// PushReshape means the line count changed and the layout was rebuilt.
	PushReshape
)

// String returns a short lowercase name, suitable as a metric label.
func (m PushMode) String() string {
	switch m {
	case PushFastPath:
		return "fast"
	case PushUpdate:
		return "update"
	case PushReshape:
		return "reshape"
	default:
		return "failed"
	}
}

// PushResult reports the outcome of one push to one surface.
type PushResult struct {
	// Viewer owns the surface. It is [uuid.Nil] for a [GlobalBoard].
	Viewer   uuid.UUID
	Mode     PushMode
	Lines    int
	Duration time.Duration
	Err      error
}

// boardConfig holds mutable state during board construction.
type boardConfig struct {
	logger        *slog.Logger
	objective     string
	pushCallbacks []func(PushResult)
}

// Option configures a [GlobalBoard] or [PersonalBoard] during construction.
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithLogger sets a custom [slog.Logger] for the board.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithObjectiveName overrides the name of the objective content is written
// to. Defaults to "sidebar".
//
// Returns an error if the name is empty or longer than [MaxTeamNameLen].
func WithObjectiveName(name string) Option {
	return func(cfg *boardConfig) error {
		if name == "" {
			return errors.New("objective name cannot be empty")
		}
		if n := displayLen(name); n > MaxTeamNameLen {
			return fmt.Errorf("objective name must be at most %d characters, got %d", MaxTeamNameLen, n)
		}
		cfg.objective = name
		return nil
	}
}

// WithPushCallback registers a function called after every push, including
// failed ones.
//
// Callbacks run after the board lock is released, in registration order.
// They must be non-blocking. Panics are recovered and logged.
//
// Example:
//
//	board, err := sidebar.NewGlobalBoard(host, title, lines,
//	    sidebar.WithPushCallback(func(r sidebar.PushResult) {
//	        if r.Err != nil {
//	            log.Printf("push failed: %v", r.Err)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithPushCallback(cb func(PushResult)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.pushCallbacks = append(cfg.pushCallbacks, cb)
		return nil
	}
}
