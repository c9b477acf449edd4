package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	cloner "github.com/armatrix/codex-session-cloner"
)

const rule = "----------------------------------------"

func renderHeader(w io.Writer, provider, dir string, mode cloner.Mode, dryRun bool) {
	fmt.Fprintf(w, "Target Provider: %s\n", provider)
	fmt.Fprintf(w, "Sessions Dir:    %s\n", dir)
	fmt.Fprintf(w, "Mode:            %s\n", mode)
	if dryRun {
		fmt.Fprintln(w, "!! DRY RUN MODE ENABLED !!")
	}
	fmt.Fprintln(w, rule)
}

func renderJSON(w io.Writer, r *cloner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func renderReport(w io.Writer, r *cloner.Report) {
	for _, f := range r.ParseErrors {
		fmt.Fprintf(w, "[!] Skipped %s: %s\n", f.Path, f.Error)
	}
	for _, res := range r.Results {
		fmt.Fprintln(w, resultLine(res))
	}
	if r.Plan != nil {
		for _, c := range r.Plan.Ambiguous {
			fmt.Fprintf(w, "[?] Ambiguous %s: %d other-provider sessions share %s, left alone\n",
				c.Path, c.Matches, c.CreatedAt)
		}
	}
	for _, v := range r.Integrity {
		fmt.Fprintf(w, "[!!] Original %s was %s during the run\n", v.Key, v.Reason)
	}

	c := r.Counts
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 30))
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Target Provider:  %s\n", r.Provider)
	fmt.Fprintf(w, "  Scanned:          %d\n", c.Scanned)
	switch r.Mode {
	case cloner.ModeClone:
		if r.DryRun {
			fmt.Fprintf(w, "  Would clone:      %d\n", c.Planned)
		} else {
			fmt.Fprintf(w, "  Cloned (new):     %d\n", c.Created)
		}
		fmt.Fprintf(w, "  Skipped (target): %d (already on %s)\n", c.SkippedTarget, r.Provider)
		fmt.Fprintf(w, "  Skipped (done):   %d (cloned previously)\n", c.SkippedIdempotent)
		if c.Collisions > 0 {
			fmt.Fprintf(w, "  Collisions:       %d\n", c.Collisions)
		}
	case cloner.ModeClean:
		if r.DryRun {
			fmt.Fprintf(w, "  Would delete:     %d\n", c.Planned)
		} else {
			fmt.Fprintf(w, "  Deleted:          %d\n", c.Deleted)
		}
		fmt.Fprintf(w, "  Ambiguous:        %d (left alone)\n", c.Ambiguous)
	}
	if c.Blocked > 0 {
		fmt.Fprintf(w, "  Blocked by hook:  %d\n", c.Blocked)
	}
	fmt.Fprintf(w, "  Parse errors:     %d\n", c.ParseErrors)
	fmt.Fprintf(w, "  Errors:           %d\n", c.Errors)
	fmt.Fprintln(w, strings.Repeat("=", 30))

	if r.DryRun {
		fmt.Fprintln(w, "\nThis was a DRY RUN. No files were changed.")
	}
}

func resultLine(res cloner.Result) string {
	a := res.Action
	switch res.Outcome {
	case cloner.OutcomeCreated:
		return fmt.Sprintf("[+] Created %s (from %s, id %s)", filepath.Base(res.Path), providerLabel(a.SourceProvider), a.NewID)
	case cloner.OutcomeWouldCreate:
		return fmt.Sprintf("[DRY-RUN] Would clone %s -> %s as %s (from %s)", a.SourceID, a.TargetProvider, a.NewID, providerLabel(a.SourceProvider))
	case cloner.OutcomeDeleted:
		return fmt.Sprintf("[Deleted] %s (unmarked clone of %s)", res.Path, a.OriginalID)
	case cloner.OutcomeWouldDelete:
		return fmt.Sprintf("[DRY-RUN] Would delete: %s (unmarked clone of %s)", a.SourcePath, a.OriginalID)
	case cloner.OutcomeBlocked:
		return fmt.Sprintf("[-] Blocked %s: %s", a.SourcePath, res.Reason)
	case cloner.OutcomeCollision:
		return fmt.Sprintf("[-] Skipped %s: %s", a.SourcePath, res.Reason)
	default:
		return fmt.Sprintf("[!] Error in %s: %s", filepath.Base(a.SourcePath), res.Error)
	}
}

func providerLabel(p string) string {
	if p == "" {
		return "unset provider"
	}
	return p
}
