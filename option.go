package cloner

import (
	"log/slog"
	"time"

	"github.com/armatrix/codex-session-cloner/hook"
)

// Option configures an Engine or Executor via the functional options pattern.
type Option func(*options)

type options struct {
	dryRun    bool
	logger    *slog.Logger
	now       func() time.Time
	newID     IDFunc
	hooks     []hook.Matcher
	integrity bool
}

func (o *options) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = GenerateID
	}
}

func resolveOptions(opts []Option) options {
	o := options{integrity: true}
	for _, fn := range opts {
		fn(&o)
	}
	o.applyDefaults()
	return o
}

// WithDryRun makes the run compute and report its plan without writing or
// deleting anything.
func WithDryRun(dryRun bool) Option {
	return func(o *options) { o.dryRun = dryRun }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the clock used for clone_timestamp and report times.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc overrides clone id generation.
func WithIDFunc(fn IDFunc) Option {
	return func(o *options) { o.newID = fn }
}

// WithHooks registers hook matchers for clone and delete actions.
// Hooks never fire during a dry-run.
func WithHooks(matchers ...hook.Matcher) Option {
	return func(o *options) { o.hooks = append(o.hooks, matchers...) }
}

// WithIntegrityCheck toggles the post-run verification that originals are
// byte-identical. Enabled by default.
func WithIntegrityCheck(enabled bool) Option {
	return func(o *options) { o.integrity = enabled }
}
