package session

import "time"

// State is the controller's position in the detection cycle. Exactly
// one state exists per active session and transitions are its only
// mutator.
type State int

const (
	StateIdle State = iota
	StateMonitoring
	StateRecording
	StateAnalyzing
	StateWaitingForStart
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMonitoring:
		return "monitoring"
	case StateRecording:
		return "recording"
	case StateAnalyzing:
		return "analyzing"
	case StateWaitingForStart:
		return "waiting_for_start"
	default:
		return "unknown"
	}
}

// Mode selects which classifier a session runs with. It is fixed for
// the lifetime of the session.
type Mode int

const (
	ModeRemote Mode = iota
	ModeLocal
)

func (m Mode) String() string {
	if m == ModeLocal {
		return "local"
	}
	return "remote"
}

type AttemptStatus string

const (
	StatusSaved        AttemptStatus = "saved"
	StatusDiscarded    AttemptStatus = "discarded"
	StatusManualReview AttemptStatus = "manual_review"
	StatusError        AttemptStatus = "error"
)

// Attempt is the record of one completed run. Created exactly once per
// attempt and never mutated afterwards. Media is nil for discarded
// attempts. Score is nil when the classifier could not read one.
type Attempt struct {
	ID        string
	Timestamp time.Time
	Score     *int
	Status    AttemptStatus
	Media     []byte
	Thumbnail []byte
}

// HistorySink receives completed attempts. The controller only ever
// appends; it never reads history back.
type HistorySink interface {
	Append(a Attempt)
}

// Event is a one-way notification about controller activity, consumed
// by the live event feed.
type Event struct {
	Type        string   `json:"type"`
	State       string   `json:"state,omitempty"`
	Attempt     *Attempt `json:"-"`
	AttemptID   string   `json:"attempt_id,omitempty"`
	RateLimited bool     `json:"rate_limited,omitempty"`
}

const (
	EventStateChanged = "state_changed"
	EventAttempt      = "attempt"
	EventRateLimited  = "rate_limited"
)
