package cloner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/armatrix/codex-session-cloner/checkpoint"
)

// Engine runs the scan, index, plan and execute pipeline against a Store for
// one current provider.
type Engine struct {
	store    Store
	provider string
	opts     options
	exec     *Executor
}

// New creates an Engine. An empty provider is a configuration error: no
// decision can be made without it.
func New(store Store, provider string, opts ...Option) (*Engine, error) {
	if provider == "" {
		return nil, ErrConfig
	}
	o := resolveOptions(opts)
	exec, err := newExecutor(store, provider, o)
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, provider: provider, opts: o, exec: exec}, nil
}

// Provider returns the current provider the engine targets.
func (e *Engine) Provider() string { return e.provider }

// Plan scans the store and computes the plan for mode without executing it.
func (e *Engine) Plan(ctx context.Context, mode Mode) (*Plan, *ScanResult, error) {
	scan, err := e.store.Scan(ctx)
	if err != nil {
		if !errors.Is(err, ErrStorageRoot) {
			err = fmt.Errorf("%w: %w", ErrStorageRoot, err)
		}
		return nil, nil, err
	}

	switch mode {
	case ModeClone:
		idx := BuildIndex(scan.Records)
		for _, d := range idx.Duplicates() {
			e.opts.logger.Warn("index.duplicate_clone", "path", d.Path, "id", d.ID, "cloned_from", d.Lineage.ClonedFrom, "provider", d.Provider)
		}
		e.opts.logger.Debug("index.built", "clones", idx.Len(), "records", len(scan.Records))
		plan := PlanClones(scan.Records, idx, e.provider, e.opts.newID)
		for _, p := range plan.DuplicateSources {
			e.opts.logger.Warn("plan.duplicate_source", "path", p)
		}
		return plan, scan, nil
	case ModeClean:
		c := NewDetector(e.provider).Classify(scan.Records)
		for _, a := range c.Ambiguous {
			e.opts.logger.Info("cleanup.ambiguous", "path", a.Path, "id", a.ID, "created_at", a.CreatedAt, "matches", a.Matches)
		}
		plan := PlanCleanup(scan.Records, c, e.provider)
		return plan, scan, nil
	default:
		return nil, nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// Run executes mode end to end. The returned error is non-nil only for
// run-level failures (unreadable storage root, unknown mode, cancellation);
// per-record failures are in the Report.
func (e *Engine) Run(ctx context.Context, mode Mode) (*Report, error) {
	report := &Report{
		Mode:      mode,
		DryRun:    e.opts.dryRun,
		Provider:  e.provider,
		StartedAt: e.opts.now(),
	}

	plan, scan, err := e.Plan(ctx, mode)
	if err != nil {
		return report, err
	}
	report.Plan = plan
	report.Counts.Scanned = len(scan.Records) + len(scan.Failures)
	report.Counts.Planned = len(plan.Actions)
	report.Counts.SkippedTarget = plan.SkippedTarget
	report.Counts.SkippedIdempotent = plan.SkippedIdempotent
	report.Counts.Ambiguous = len(plan.Ambiguous)
	report.Counts.Unmatched = plan.Unmatched

	for _, f := range scan.Failures {
		e.opts.logger.Warn("scan.parse_error", "path", f.Path, "error", f.Err)
		report.addParseFailure(f)
	}

	var guard *checkpoint.Guard
	if e.opts.integrity && !e.opts.dryRun {
		guard = checkpoint.NewGuard()
		for _, r := range scan.Records {
			if r.Kind() == KindOriginal {
				guard.Track(r.Path, r.Content)
			}
		}
	}

	results, execErr := e.exec.Execute(ctx, plan)
	for _, res := range results {
		report.addResult(res)
		if guard != nil && res.Outcome == OutcomeDeleted {
			guard.Release(res.Path)
		}
	}

	if guard != nil {
		report.Integrity = guard.Verify(func(key string) ([]byte, bool) {
			data, err := e.store.Read(context.WithoutCancel(ctx), key)
			return data, err == nil
		})
		for _, v := range report.Integrity {
			e.opts.logger.Error("integrity.violation", "path", v.Key, "reason", v.Reason)
		}
	}

	report.FinishedAt = e.opts.now()
	e.opts.logger.Info("run.finished",
		slog.String("mode", string(mode)),
		slog.Bool("dry_run", e.opts.dryRun),
		slog.Int("planned", report.Counts.Planned),
		slog.Int("created", report.Counts.Created),
		slog.Int("deleted", report.Counts.Deleted),
		slog.Int("errors", report.Counts.Errors),
	)
	return report, execErr
}
