package cloner

import (
	"sort"
	"time"
)

// ActionKind identifies what an Action does.
type ActionKind string

const (
	ActionClone  ActionKind = "create-clone"
	ActionDelete ActionKind = "delete-legacy"
)

// Action is one planned step. Source is the record cloned from (ActionClone)
// or the legacy clone to remove (ActionDelete).
type Action struct {
	Kind           ActionKind `json:"kind"`
	SourceID       string     `json:"source_id"`
	SourcePath     string     `json:"source_path"`
	SourceProvider string     `json:"source_provider"`
	TargetProvider string     `json:"target_provider"`
	CreatedAt      string     `json:"created_at"`

	// NewID is set for ActionClone.
	NewID string `json:"new_id,omitempty"`
	// OriginalID is set for ActionDelete: the original the legacy clone mirrors.
	OriginalID string `json:"original_id,omitempty"`

	Source *Record `json:"-"`
}

// Plan is the ordered list of actions for one run along with the decisions
// that did not produce an action.
type Plan struct {
	Mode              Mode                 `json:"mode"`
	Provider          string               `json:"provider"`
	Actions           []Action             `json:"actions"`
	SkippedTarget     int                  `json:"skipped_target"`
	SkippedIdempotent int                  `json:"skipped_idempotent"`
	Ambiguous         []AmbiguousCandidate `json:"ambiguous,omitempty"`
	Unmatched         int                  `json:"unmatched,omitempty"`

	// DuplicateSources lists originals not planned because an earlier record
	// in scan order has the same session id.
	DuplicateSources []string `json:"duplicate_sources,omitempty"`
}

// PlanClones returns a clone action for every original that is not on
// provider and has no clone for it yet. Actions are ordered by CreatedAt.
// newID is called once per action; it is not called for skipped records.
func PlanClones(records []*Record, idx *Index, provider string, newID IDFunc) *Plan {
	if newID == nil {
		newID = GenerateID
	}

	plan := &Plan{Mode: ModeClone, Provider: provider}
	var sources []*Record
	seen := make(map[string]bool)
	for _, r := range records {
		switch {
		case r.Kind() == KindClone:
			continue
		case r.Provider == provider:
			plan.SkippedTarget++
		case idx.HasClone(r.ID, provider):
			plan.SkippedIdempotent++
		case seen[r.ID]:
			// Another file carries the same session id; one clone serves both.
			plan.SkippedIdempotent++
			plan.DuplicateSources = append(plan.DuplicateSources, r.Path)
		default:
			seen[r.ID] = true
			sources = append(sources, r)
		}
	}

	sortByCreatedAt(sources)
	plan.Actions = make([]Action, 0, len(sources))
	for _, r := range sources {
		plan.Actions = append(plan.Actions, Action{
			Kind:           ActionClone,
			SourceID:       r.ID,
			SourcePath:     r.Path,
			SourceProvider: r.Provider,
			TargetProvider: provider,
			CreatedAt:      r.CreatedAt,
			NewID:          newID(),
			Source:         r,
		})
	}
	return plan
}

// PlanCleanup returns a delete action for every record classified as an
// unambiguous legacy clone.
func PlanCleanup(records []*Record, c *Classification, provider string) *Plan {
	plan := &Plan{Mode: ModeClean, Provider: provider, Ambiguous: c.Ambiguous, Unmatched: c.Unmatched}

	var targets []*Record
	for _, r := range records {
		if _, ok := c.Legacy[r.Path]; ok {
			targets = append(targets, r)
		}
	}

	sortByCreatedAt(targets)
	plan.Actions = make([]Action, 0, len(targets))
	for _, r := range targets {
		plan.Actions = append(plan.Actions, Action{
			Kind:           ActionDelete,
			SourceID:       r.ID,
			SourcePath:     r.Path,
			SourceProvider: r.Provider,
			TargetProvider: provider,
			CreatedAt:      r.CreatedAt,
			OriginalID:     c.Legacy[r.Path].ID,
			Source:         r,
		})
	}
	return plan
}

// filenameLayout is the timestamp shape embedded in rollout file names.
const filenameLayout = "2006-01-02T15-04-05"

type sortKey struct {
	at     time.Time
	parsed bool
}

func createdKey(s string) sortKey {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return sortKey{at: t, parsed: true}
	}
	if t, err := time.Parse(filenameLayout, s); err == nil {
		return sortKey{at: t, parsed: true}
	}
	return sortKey{}
}

// sortByCreatedAt orders records by creation time. Timestamps that parse
// (RFC 3339 or the file name layout, read as UTC) come first in time order;
// the rest follow in string order. Ties keep path order.
func sortByCreatedAt(rs []*Record) {
	keys := make(map[*Record]sortKey, len(rs))
	for _, r := range rs {
		keys[r] = createdKey(r.CreatedAt)
	}
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		ka, kb := keys[a], keys[b]
		switch {
		case ka.parsed != kb.parsed:
			return ka.parsed
		case ka.parsed && !ka.at.Equal(kb.at):
			return ka.at.Before(kb.at)
		case !ka.parsed && a.CreatedAt != b.CreatedAt:
			return a.CreatedAt < b.CreatedAt
		}
		return a.Path < b.Path
	})
}
