package hookrunner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	pubhook "github.com/armatrix/codex-session-cloner/hook"
	"github.com/armatrix/codex-session-cloner/internal/hookrunner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
	return nil, nil
}

func blockHook(reason string) pubhook.Func {
	return func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
		return &pubhook.Result{Block: true, Reason: reason}, nil
	}
}

func allowHook() pubhook.Func {
	return func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
		return &pubhook.Result{}, nil
	}
}

func preClone(id string) *pubhook.Input {
	return &pubhook.Input{Event: pubhook.PreClone, SessionID: id}
}

func TestNewInvalidPattern(t *testing.T) {
	_, err := hookrunner.New([]pubhook.Matcher{
		{Event: pubhook.PreClone, Pattern: "[invalid", Hooks: []pubhook.Func{noop}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestEmptyRunnerReturnsNil(t *testing.T) {
	r, err := hookrunner.New(nil)
	require.NoError(t, err)

	res, err := r.Run(context.Background(), preClone("sess"))
	require.NoError(t, err)
	assert.Nil(t, res, "empty runner should return nil result")
}

func TestNilRunnerIsNoop(t *testing.T) {
	var r *hookrunner.Runner
	res, err := r.Run(context.Background(), preClone("sess"))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestBasicMatchByEvent(t *testing.T) {
	called := false
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event: pubhook.PreClone,
			Hooks: []pubhook.Func{
				func(_ context.Context, in *pubhook.Input) (*pubhook.Result, error) {
					called = true
					assert.Equal(t, "sess-1", in.SessionID)
					assert.Equal(t, pubhook.PreClone, in.Event)
					return nil, nil
				},
			},
		},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), preClone("sess-1"))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Nil(t, res)
}

func TestEventMismatchSkips(t *testing.T) {
	called := false
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event: pubhook.PreDelete,
			Hooks: []pubhook.Func{
				func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					called = true
					return nil, nil
				},
			},
		},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), preClone("sess"))
	require.NoError(t, err)
	assert.False(t, called, "PreDelete matcher should not fire for PreClone")
	assert.Nil(t, res)
}

func TestRegexPatternMatching(t *testing.T) {
	var matched []string
	hook := func(_ context.Context, in *pubhook.Input) (*pubhook.Result, error) {
		matched = append(matched, in.SessionID)
		return nil, nil
	}

	r, err := hookrunner.New([]pubhook.Matcher{
		{Event: pubhook.PreClone, Pattern: `^0199`, Hooks: []pubhook.Func{hook}},
		{Event: pubhook.PreClone, Pattern: `-beef$`, Hooks: []pubhook.Func{hook}},
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), preClone("0199-aaaa"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0199-aaaa"}, matched)

	matched = nil
	_, err = r.Run(context.Background(), preClone("dead-beef"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dead-beef"}, matched)

	matched = nil
	_, err = r.Run(context.Background(), preClone("cafe"))
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestEmptyPatternMatchesAll(t *testing.T) {
	called := 0
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event: pubhook.PostDelete,
			Hooks: []pubhook.Func{
				func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					called++
					return nil, nil
				},
			},
		},
	})
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, _ = r.Run(context.Background(), &pubhook.Input{Event: pubhook.PostDelete, SessionID: id})
	}
	assert.Equal(t, 3, called, "empty pattern should match all session ids")
}

func TestFirstBlockWins(t *testing.T) {
	thirdCalled := false
	r, err := hookrunner.New([]pubhook.Matcher{
		{Event: pubhook.PreClone, Hooks: []pubhook.Func{allowHook()}},
		{Event: pubhook.PreClone, Hooks: []pubhook.Func{blockHook("reason-1")}},
		{
			Event: pubhook.PreClone,
			Hooks: []pubhook.Func{
				func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					thirdCalled = true
					return &pubhook.Result{Block: true, Reason: "reason-2"}, nil
				},
			},
		},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), preClone("s"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Block)
	assert.Equal(t, "reason-1", res.Reason, "first block reason wins")
	assert.False(t, thirdCalled, "hooks after block should not execute")
}

func TestFirstBlockWinsWithinMatcher(t *testing.T) {
	secondCalled := false
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event: pubhook.PreDelete,
			Hooks: []pubhook.Func{
				blockHook("inner-block"),
				func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					secondCalled = true
					return nil, nil
				},
			},
		},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), &pubhook.Input{Event: pubhook.PreDelete, SessionID: "s"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Block)
	assert.Equal(t, "inner-block", res.Reason)
	assert.False(t, secondCalled)
}

func TestTimeoutEnforcement(t *testing.T) {
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event:   pubhook.PreClone,
			Timeout: 50 * time.Millisecond,
			Hooks: []pubhook.Func{
				func(ctx context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(5 * time.Second):
						return nil, nil
					}
				},
			},
		},
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = r.Run(context.Background(), preClone("s"))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, elapsed < 2*time.Second, "should timeout quickly, took %v", elapsed)
}

func TestFailureInputCarriesError(t *testing.T) {
	var captured *pubhook.Input
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event: pubhook.CloneFailure,
			Hooks: []pubhook.Func{
				func(_ context.Context, in *pubhook.Input) (*pubhook.Result, error) {
					captured = in
					return nil, nil
				},
			},
		},
	})
	require.NoError(t, err)

	writeErr := errors.New("disk full")
	_, err = r.Run(context.Background(), &pubhook.Input{
		Event:     pubhook.CloneFailure,
		SessionID: "sess-3",
		NewID:     "new-3",
		Err:       writeErr,
	})
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "new-3", captured.NewID)
	assert.Equal(t, writeErr, captured.Err)
}

func TestMultipleMatchersForSameEvent(t *testing.T) {
	var order []int
	makeHook := func(id int) pubhook.Func {
		return func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
			order = append(order, id)
			return nil, nil
		}
	}

	r, err := hookrunner.New([]pubhook.Matcher{
		{Event: pubhook.PostClone, Hooks: []pubhook.Func{makeHook(1)}},
		{Event: pubhook.PostClone, Hooks: []pubhook.Func{makeHook(2)}},
		{Event: pubhook.PostClone, Hooks: []pubhook.Func{makeHook(3)}},
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), &pubhook.Input{Event: pubhook.PostClone, SessionID: "s"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order, "hooks should execute in registration order")
}

func TestHookErrorStopsExecution(t *testing.T) {
	secondCalled := false
	r, err := hookrunner.New([]pubhook.Matcher{
		{
			Event: pubhook.PreClone,
			Hooks: []pubhook.Func{
				func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					return nil, errors.New("hook failed")
				},
			},
		},
		{
			Event: pubhook.PreClone,
			Hooks: []pubhook.Func{
				func(_ context.Context, _ *pubhook.Input) (*pubhook.Result, error) {
					secondCalled = true
					return nil, nil
				},
			},
		},
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), preClone("s"))
	require.Error(t, err)
	assert.Equal(t, "hook failed", err.Error())
	assert.False(t, secondCalled)
}
