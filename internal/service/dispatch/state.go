package dispatch

import (
	"context"
	"fmt"

	"github.com/oshokin/mediagrab/internal/logger"
)

// RequestState is the lifecycle stage of a single request.
type RequestState uint8

const (
	// StateIdle is the initial state.
	StateIdle RequestState = iota
	// StateClassified means the platform is known.
	StateClassified
	// StateCommandBuilt means the argument vector is ready.
	StateCommandBuilt
	// StateExecuting means the child process or HTTP transfer is running.
	StateExecuting
	// StateSucceeded is terminal.
	StateSucceeded
	// StateFailed is terminal.
	StateFailed
)

// String returns a human-readable representation of the state.
func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClassified:
		return "classified"
	case StateCommandBuilt:
		return "command built"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s RequestState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// allowedTransitions lists the forward edges of the lifecycle.
// Direct downloads go from Classified straight to Executing,
// and any non-terminal state may fail.
//
//nolint:gochecknoglobals // Static transition table.
var allowedTransitions = map[RequestState][]RequestState{
	StateIdle:         {StateClassified, StateFailed},
	StateClassified:   {StateCommandBuilt, StateExecuting, StateFailed},
	StateCommandBuilt: {StateExecuting, StateSucceeded, StateFailed},
	StateExecuting:    {StateSucceeded, StateFailed},
}

// CanTransition reports whether the lifecycle allows moving from one state to another.
func CanTransition(from, to RequestState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// requestTracker follows one URL through the lifecycle.
type requestTracker struct {
	url   string
	state RequestState
}

func newRequestTracker(url string) *requestTracker {
	return &requestTracker{url: url, state: StateIdle}
}

// advance moves the request to the next state.
// Invalid transitions are logged and ignored.
func (t *requestTracker) advance(ctx context.Context, next RequestState) {
	if !CanTransition(t.state, next) {
		logger.Warnf(ctx, "Ignoring invalid state transition %s -> %s for %s", t.state, next, t.url)

		return
	}

	logger.Debugf(ctx, "Request %s: %s -> %s", t.url, t.state, next)

	t.state = next
}
