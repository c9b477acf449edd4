// Command session-cloner clones Codex sessions to the currently configured
// model provider so they can be resumed there. Originals are never modified.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	cloner "github.com/armatrix/codex-session-cloner"
	"github.com/armatrix/codex-session-cloner/internal/config"
	"github.com/armatrix/codex-session-cloner/internal/schema"
	"github.com/armatrix/codex-session-cloner/session"
)

// Exit codes.
const (
	exitOK       = 0
	exitRunError = 1
	exitUsage    = 2
)

func main() {
	exitFn(run(os.Args[1:], os.Stdout, os.Stderr))
}

var exitFn = os.Exit

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func fail(err error) error { return &exitError{code: exitRunError, err: err} }

type cliFlags struct {
	dryRun      bool
	provider    string
	sessionsDir string
	codexConfig string
	settings    string
	pattern     string
	jsonOut     bool
	verbose     bool
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}

	root := &cobra.Command{
		Use:   "session-cloner",
		Short: "Clone Codex sessions to the current model provider",
		Long: `Clone Codex sessions to the currently configured model provider.

Running without a subcommand is the same as "clone". Clones carry lineage
metadata (cloned_from, original_provider, clone_timestamp), so repeated runs
never create a second clone of the same session. "clean" removes unmarked
clones left by older versions, but only when the match is unambiguous.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMode(cmd.Context(), f, cloner.ModeClone, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&f.dryRun, "dry-run", "n", false, "preview changes without writing or deleting files")
	pf.StringVar(&f.provider, "provider", "", "target provider (default: model_provider from the Codex config)")
	pf.StringVar(&f.sessionsDir, "sessions-dir", "", "Codex sessions directory (default ~/.codex/sessions)")
	pf.StringVar(&f.codexConfig, "codex-config", "", "Codex config.toml (default ~/.codex/config.toml)")
	pf.StringVar(&f.settings, "settings", "", "extra JSON settings file, applied last")
	pf.StringVar(&f.pattern, "pattern", "", "glob for session files relative to the sessions dir")
	pf.BoolVar(&f.jsonOut, "json", false, "print the report as JSON")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "clone",
			Short: "Clone sessions that are not yet on the current provider",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMode(cmd.Context(), f, cloner.ModeClone, stdout, stderr)
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove unmarked clones created by older versions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMode(cmd.Context(), f, cloner.ModeClean, stdout, stderr)
			},
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of the --json report",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				raw, err := schema.GenerateJSON[cloner.Report]()
				if err != nil {
					return fail(err)
				}
				_, err = fmt.Fprintln(stdout, string(raw))
				return err
			},
		},
	)
	return root
}

func runMode(ctx context.Context, f *cliFlags, mode cloner.Mode, stdout, stderr io.Writer) error {
	paths := config.DefaultSettingsPaths()
	if f.settings != "" {
		paths = append(paths, f.settings)
	}
	s, err := config.LoadSettings(paths...)
	if err != nil {
		return fail(err)
	}
	if f.sessionsDir != "" {
		s.SessionsDir = f.sessionsDir
	}
	if f.codexConfig != "" {
		s.CodexConfig = f.codexConfig
	}
	if f.pattern != "" {
		s.Pattern = f.pattern
	}
	s.ApplyDefaults()

	provider := f.provider
	if provider == "" {
		provider, err = config.ResolveProvider(s.CodexConfig, s.DefaultProvider)
		if err != nil {
			return fail(err)
		}
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	store, err := session.NewFileStore(s.SessionsDir, session.WithPattern(s.Pattern))
	if err != nil {
		return fail(err)
	}
	eng, err := cloner.New(store, provider,
		cloner.WithDryRun(f.dryRun),
		cloner.WithLogger(logger),
	)
	if err != nil {
		return fail(err)
	}

	if !f.jsonOut {
		renderHeader(stdout, provider, s.SessionsDir, mode, f.dryRun)
	}

	report, err := eng.Run(ctx, mode)
	if err != nil && report.Plan == nil {
		return fail(err)
	}

	if f.jsonOut {
		if werr := renderJSON(stdout, report); werr != nil {
			return fail(werr)
		}
	} else {
		renderReport(stdout, report)
	}

	if err != nil {
		return fail(err)
	}
	return nil
}
