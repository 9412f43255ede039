package types

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// RunState is the terminal state of a single workflow run.
type RunState string

const (
	// RunStateSessionInvalid means the login indicator was absent. The run
	// is reported as cleanly ignored, not as an error.
	RunStateSessionInvalid RunState = "session_invalid"
	// RunStateNothingOutstanding means every current promotion is already
	// owned.
	RunStateNothingOutstanding RunState = "nothing_outstanding"
	// RunStateCompleted means the checkout batch ran to completion.
	RunStateCompleted RunState = "completed"
	// RunStateFailed means the bounded top-level retry was exhausted.
	RunStateFailed RunState = "failed"
)

// RunResult summarizes one workflow run.
type RunResult struct {
	RunID       string
	State       RunState
	Outstanding int
	StartedAt   time.Time
	CompletedAt time.Time
	Err         error
}

// GenerateRunID returns a ULID-based identifier for a workflow run.
func GenerateRunID() string {
	return "run_" + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
