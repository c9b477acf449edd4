// Package cloner re-targets Codex session rollouts to the currently configured
// model provider without touching the original files.
//
// A run is a single pass over a session archive:
//
//   - [Store.Scan] reads every rollout into a [Record].
//   - [BuildIndex] records which originals already have a clone per provider.
//   - [PlanClones] or [PlanCleanup] turns the snapshot into a [Plan].
//   - [Executor] applies the plan unless the run is a dry-run.
//
// [Engine] wires these steps together and returns a [Report].
//
// # Quick Start
//
//	store, _ := session.NewFileStore(cloner.DefaultSessionsDir())
//	eng, _ := cloner.New(store, "cliproxyapi", cloner.WithDryRun(true))
//	report, err := eng.Run(ctx, cloner.ModeClone)
//
// # Sub-packages
//
//   - [session] provides Store implementations (FileStore, MemoryStore).
//   - [hook] provides hook types for intercepting clone and delete actions.
//   - [checkpoint] fingerprints originals so a run can prove it left them alone.
package cloner
