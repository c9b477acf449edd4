// Package hook defines public types for the cloner hook system.
//
// Hooks let callers observe or veto individual clone and delete actions. The
// [Matcher] type binds a set of [Func] callbacks to a specific [Event] and an
// optional session-id regex pattern.
package hook

import (
	"context"
	"time"
)

// Event identifies when a hook fires.
type Event string

const (
	PreClone      Event = "PreClone"
	PostClone     Event = "PostClone"
	CloneFailure  Event = "CloneFailure"
	PreDelete     Event = "PreDelete"
	PostDelete    Event = "PostDelete"
	DeleteFailure Event = "DeleteFailure"
)

// Input is passed to hook functions.
type Input struct {
	Event          Event
	SessionID      string // Source session (clone events) or legacy clone (delete events).
	Path           string // Storage path of SessionID.
	Provider       string // Provider of SessionID.
	TargetProvider string // Current provider.

	NewID   string // PreClone, PostClone, CloneFailure.
	NewPath string // PostClone.

	OriginalID string // Delete events: the original the legacy clone mirrors.

	Err error // CloneFailure, DeleteFailure.
}

// Result is returned by hook functions. A zero value means "no action".
type Result struct {
	Block  bool   // If true on a Pre event, the action is skipped.
	Reason string // Human-readable reason for blocking.
}

// Func is the signature for hook callbacks.
type Func func(ctx context.Context, input *Input) (*Result, error)

// Matcher defines which events a set of hooks should fire for.
type Matcher struct {
	Event   Event         // Which event to match.
	Pattern string        // Regex pattern for the session id (empty = match all).
	Hooks   []Func        // Functions to call (in order).
	Timeout time.Duration // Max time for all hooks in this matcher (0 = 30s default).
}
