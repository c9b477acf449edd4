package cloner

import (
	"fmt"
	"time"

	"github.com/armatrix/codex-session-cloner/checkpoint"
)

// Mode selects what a run does.
type Mode string

const (
	ModeClone Mode = "clone"
	ModeClean Mode = "clean"
)

// ParseMode converts a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeClone, ModeClean:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeClone, ModeClean)
	}
}

// Outcome is the result of applying one action.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeWouldCreate Outcome = "would-create"
	OutcomeDeleted     Outcome = "deleted"
	OutcomeWouldDelete Outcome = "would-delete"
	OutcomeBlocked     Outcome = "blocked"
	OutcomeCollision   Outcome = "skipped-collision"
	OutcomeFailed      Outcome = "failed"
)

// Result is the outcome of one Action.
type Result struct {
	Action  Action  `json:"action"`
	Outcome Outcome `json:"outcome"`
	// Path is the storage path written (clone) or removed (delete).
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failure is a serializable parse failure.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Counts aggregates a run.
type Counts struct {
	Scanned           int `json:"scanned"`
	Planned           int `json:"planned"`
	Created           int `json:"created"`
	Deleted           int `json:"deleted"`
	SkippedTarget     int `json:"skipped_target"`
	SkippedIdempotent int `json:"skipped_idempotent"`
	Ambiguous         int `json:"ambiguous_skipped"`
	Unmatched         int `json:"unmatched"`
	Blocked           int `json:"blocked"`
	Collisions        int `json:"collisions"`
	ParseErrors       int `json:"parse_errors"`
	Errors            int `json:"errors"`
}

// Report is everything a front end needs to render a finished run.
type Report struct {
	Mode       Mode      `json:"mode"`
	DryRun     bool      `json:"dry_run"`
	Provider   string    `json:"provider"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Plan        *Plan                  `json:"plan"`
	Results     []Result               `json:"results"`
	ParseErrors []Failure              `json:"parse_errors,omitempty"`
	Integrity   []checkpoint.Violation `json:"integrity_violations,omitempty"`
	Counts      Counts                 `json:"counts"`

	failures []error
}

// Errors returns every per-record and per-action failure of the run.
func (r *Report) Errors() []error { return r.failures }

// OK reports whether the run finished without any failure.
func (r *Report) OK() bool {
	return len(r.failures) == 0 && len(r.Integrity) == 0
}

func (r *Report) addResult(res Result) {
	if res.Err != nil {
		res.Error = res.Err.Error()
		r.failures = append(r.failures, res.Err)
	}
	r.Results = append(r.Results, res)

	switch res.Outcome {
	case OutcomeCreated:
		r.Counts.Created++
	case OutcomeDeleted:
		r.Counts.Deleted++
	case OutcomeBlocked:
		r.Counts.Blocked++
	case OutcomeCollision:
		r.Counts.Collisions++
	case OutcomeFailed:
		r.Counts.Errors++
	}
}

func (r *Report) addParseFailure(f *RecordError) {
	r.failures = append(r.failures, f)
	r.ParseErrors = append(r.ParseErrors, Failure{Path: f.Path, Error: f.Err.Error()})
	r.Counts.ParseErrors++
}
