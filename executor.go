package cloner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/armatrix/codex-session-cloner/hook"
	"github.com/armatrix/codex-session-cloner/internal/hookrunner"
)

// Executor applies planned actions to a Store, one at a time. A failed action
// is reported in its Result and never stops the remaining ones.
type Executor struct {
	store    Store
	provider string
	dryRun   bool
	now      func() time.Time
	logger   *slog.Logger
	hooks    *hookrunner.Runner
}

// NewExecutor creates an Executor that writes clones for provider.
func NewExecutor(store Store, provider string, opts ...Option) (*Executor, error) {
	o := resolveOptions(opts)
	return newExecutor(store, provider, o)
}

func newExecutor(store Store, provider string, o options) (*Executor, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if provider == "" {
		return nil, ErrConfig
	}
	runner, err := hookrunner.New(o.hooks)
	if err != nil {
		return nil, fmt.Errorf("hooks: %w", err)
	}
	return &Executor{
		store:    store,
		provider: provider,
		dryRun:   o.dryRun,
		now:      o.now,
		logger:   o.logger,
		hooks:    runner,
	}, nil
}

// Execute applies every action in plan order. It returns early only when ctx
// is cancelled, with the results gathered so far.
func (x *Executor) Execute(ctx context.Context, plan *Plan) ([]Result, error) {
	results := make([]Result, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		switch a.Kind {
		case ActionClone:
			results = append(results, x.Clone(ctx, a))
		case ActionDelete:
			results = append(results, x.Delete(ctx, a))
		default:
			results = append(results, Result{
				Action:  a,
				Outcome: OutcomeFailed,
				Err:     fmt.Errorf("unknown action kind %q", a.Kind),
			})
		}
	}
	return results, nil
}

// Clone materializes a clone action.
func (x *Executor) Clone(ctx context.Context, a Action) Result {
	res := Result{Action: a}
	src := a.Source

	fail := func(err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = &RecordError{Kind: ErrWrite, Path: a.SourcePath, Err: err}
		x.logger.Error("clone.failed", "path", a.SourcePath, "id", a.SourceID, "new_id", a.NewID, "error", err)
		return res
	}

	switch {
	case src == nil:
		return fail(errors.New("action has no source record"))
	case src.Kind() == KindClone:
		return fail(ErrChained)
	case a.NewID == "":
		return fail(errors.New("action has no new id"))
	}

	if x.dryRun {
		res.Outcome = OutcomeWouldCreate
		x.logger.Info("clone.planned", "path", a.SourcePath, "id", a.SourceID, "new_id", a.NewID, "provider", x.provider)
		return res
	}

	in := &hook.Input{
		Event:          hook.PreClone,
		SessionID:      src.ID,
		Path:           src.Path,
		Provider:       src.Provider,
		TargetProvider: x.provider,
		NewID:          a.NewID,
	}
	hr, err := x.hooks.Run(ctx, in)
	if err != nil {
		return fail(fmt.Errorf("pre-clone hook: %w", err))
	}
	if hr != nil && hr.Block {
		res.Outcome = OutcomeBlocked
		res.Reason = hr.Reason
		x.logger.Info("clone.blocked", "path", a.SourcePath, "id", a.SourceID, "reason", hr.Reason)
		return res
	}

	clone := src.CloneFor(x.provider, a.NewID, x.now())
	path, err := x.store.Create(ctx, src, clone)
	if errors.Is(err, ErrExists) {
		res.Outcome = OutcomeCollision
		res.Path = path
		res.Reason = "target file already exists"
		x.logger.Warn("clone.collision", "path", a.SourcePath, "target", path)
		return res
	}
	if err != nil {
		res = fail(err)
		x.post(ctx, &hook.Input{
			Event: hook.CloneFailure, SessionID: src.ID, Path: src.Path, Provider: src.Provider,
			TargetProvider: x.provider, NewID: a.NewID, Err: err,
		})
		return res
	}

	res.Outcome = OutcomeCreated
	res.Path = path
	x.logger.Info("clone.created", "path", path, "id", a.NewID, "cloned_from", src.ID, "original_provider", src.Provider)
	x.post(ctx, &hook.Input{
		Event: hook.PostClone, SessionID: src.ID, Path: src.Path, Provider: src.Provider,
		TargetProvider: x.provider, NewID: a.NewID, NewPath: path,
	})
	return res
}

// Delete removes a legacy clone. The record is re-checked before removal:
// anything carrying lineage or sitting on another provider is refused.
func (x *Executor) Delete(ctx context.Context, a Action) Result {
	res := Result{Action: a}
	r := a.Source

	fail := func(err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = &RecordError{Kind: ErrDelete, Path: a.SourcePath, Err: err}
		x.logger.Error("cleanup.failed", "path", a.SourcePath, "id", a.SourceID, "error", err)
		return res
	}

	switch {
	case r == nil:
		return fail(errors.New("action has no source record"))
	case r.Kind() != KindOriginal:
		return fail(errors.New("refusing to delete a record that carries lineage"))
	case r.Provider != x.provider:
		return fail(fmt.Errorf("refusing to delete a record on provider %q", r.Provider))
	}

	if x.dryRun {
		res.Outcome = OutcomeWouldDelete
		x.logger.Info("cleanup.planned", "path", r.Path, "id", r.ID, "original_id", a.OriginalID)
		return res
	}

	in := &hook.Input{
		Event:          hook.PreDelete,
		SessionID:      r.ID,
		Path:           r.Path,
		Provider:       r.Provider,
		TargetProvider: x.provider,
		OriginalID:     a.OriginalID,
	}
	hr, err := x.hooks.Run(ctx, in)
	if err != nil {
		return fail(fmt.Errorf("pre-delete hook: %w", err))
	}
	if hr != nil && hr.Block {
		res.Outcome = OutcomeBlocked
		res.Reason = hr.Reason
		x.logger.Info("cleanup.blocked", "path", r.Path, "id", r.ID, "reason", hr.Reason)
		return res
	}

	if err := x.store.Remove(ctx, r); err != nil {
		res = fail(err)
		x.post(ctx, &hook.Input{
			Event: hook.DeleteFailure, SessionID: r.ID, Path: r.Path, Provider: r.Provider,
			TargetProvider: x.provider, OriginalID: a.OriginalID, Err: err,
		})
		return res
	}

	res.Outcome = OutcomeDeleted
	res.Path = r.Path
	x.logger.Info("cleanup.deleted", "path", r.Path, "id", r.ID, "original_id", a.OriginalID)
	x.post(ctx, &hook.Input{
		Event: hook.PostDelete, SessionID: r.ID, Path: r.Path, Provider: r.Provider,
		TargetProvider: x.provider, OriginalID: a.OriginalID,
	})
	return res
}

// post runs an observational hook; its errors are logged, never returned.
func (x *Executor) post(ctx context.Context, in *hook.Input) {
	if _, err := x.hooks.Run(ctx, in); err != nil {
		x.logger.Warn("hook.failed", "event", string(in.Event), "id", in.SessionID, "error", err)
	}
}
