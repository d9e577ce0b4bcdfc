package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
)

type PipelineTestMessage struct {
	Value string
}

func passThrough(name string, calls *[]string, stage pipeline.Stage) pipeline.Middleware {
	return pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			*calls = append(*calls, name)
			return next(ctx)
		},
		pipeline.AtStage(stage),
	)
}

func finalCounting(calls *int) pipeline.Final {
	return func(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
		*calls++
		return pipeline.Success("done"), nil
	}
}

func TestExecuteArgumentValidation(t *testing.T) {
	t.Parallel()

	p := pipeline.New()
	msg := message.New(message.KindAction, PipelineTestMessage{})
	mctx := message.NewContext()
	final := func(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
		return pipeline.Success(nil), nil
	}

	t.Run("nil message body", func(t *testing.T) {
		t.Parallel()

		_, err := p.Execute(context.Background(), message.Message{}, mctx, final)
		assert.ErrorIs(t, err, pipeline.ErrNilMessage)
	})

	t.Run("nil context", func(t *testing.T) {
		t.Parallel()

		_, err := p.Execute(context.Background(), msg, nil, final)
		assert.ErrorIs(t, err, pipeline.ErrNilContext)
	})

	t.Run("nil final delegate", func(t *testing.T) {
		t.Parallel()

		_, err := p.Execute(context.Background(), msg, mctx, nil)
		assert.ErrorIs(t, err, pipeline.ErrNilFinal)
	})
}

func TestMiddlewareOrdering(t *testing.T) {
	t.Parallel()

	t.Run("distinct stages execute in rank order regardless of registration", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := pipeline.New(pipeline.Use(
			passThrough("auth", &calls, pipeline.StageAuthorization),
			passThrough("instr", &calls, pipeline.StageInstrumentation),
		))

		finalCalls := 0
		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)

		assert.Equal(t, []string{"instr", "auth"}, calls)
		assert.Equal(t, 1, finalCalls)
	})

	t.Run("same stage preserves registration order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := pipeline.New(pipeline.Use(
			passThrough("first", &calls, pipeline.StageValidation),
			passThrough("second", &calls, pipeline.StageValidation),
			passThrough("third", &calls, pipeline.StageValidation),
		))

		finalCalls := 0
		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)

		assert.Equal(t, []string{"first", "second", "third"}, calls)
	})

	t.Run("unstaged middleware run after every staged one", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := pipeline.New(pipeline.Use(
			passThrough("unstaged-a", &calls, pipeline.StageUnspecified),
			passThrough("start", &calls, pipeline.StageStart),
			passThrough("unstaged-b", &calls, pipeline.StageUnspecified),
			passThrough("error", &calls, pipeline.StageError),
		))

		finalCalls := 0
		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)

		assert.Equal(t, []string{"start", "error", "unstaged-a", "unstaged-b"}, calls)
	})

	t.Run("start then unstaged", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := pipeline.New(pipeline.Use(
			passThrough("a", &calls, pipeline.StageStart),
			passThrough("b", &calls, pipeline.StageUnspecified),
		))

		finalCalls := 0
		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b"}, calls)
	})
}

func TestEmptyChainInvokesFinalOnce(t *testing.T) {
	t.Parallel()

	p := pipeline.New()
	finalCalls := 0

	result, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
	require.NoError(t, err)

	assert.Equal(t, 1, finalCalls)
	assert.Equal(t, "done", result.Value)
}

func TestShortCircuit(t *testing.T) {
	t.Parallel()

	t.Run("skips remaining middleware and final delegate", func(t *testing.T) {
		t.Parallel()

		var calls []string
		shortCircuit := pipeline.NewFunc(
			func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
				calls = append(calls, "short")
				return pipeline.Fail("rejected", "not today"), nil
			},
			pipeline.AtStage(pipeline.StageValidation),
		)

		p := pipeline.New(pipeline.Use(
			passThrough("start", &calls, pipeline.StageStart),
			shortCircuit,
			passThrough("after", &calls, pipeline.StageProcessing),
		))

		finalCalls := 0
		result, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)

		assert.Equal(t, []string{"start", "short"}, calls)
		assert.Equal(t, 0, finalCalls)
		assert.False(t, result.OK())
		assert.Equal(t, "rejected", result.Problem.Code)
	})
}

func TestErrorPropagation(t *testing.T) {
	t.Parallel()

	t.Run("middleware error stops chain and reaches caller", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var calls []string
		failing := pipeline.NewFunc(
			func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
				calls = append(calls, "failing")
				return pipeline.Result{}, boom
			},
			pipeline.AtStage(pipeline.StageValidation),
		)

		p := pipeline.New(pipeline.Use(
			failing,
			passThrough("after", &calls, pipeline.StageProcessing),
		))

		finalCalls := 0
		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"failing"}, calls)
		assert.Equal(t, 0, finalCalls)
	})

	t.Run("final delegate error propagates unchanged", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("handler exploded")
		p := pipeline.New()

		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(),
			func(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
				return pipeline.Result{}, boom
			})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancellation surfaces as context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := pipeline.New()
		_, err := p.Execute(ctx, message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(),
			func(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
				if err := ctx.Err(); err != nil {
					return pipeline.Result{}, err
				}
				return pipeline.Success(nil), nil
			})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestKindFiltering(t *testing.T) {
	t.Parallel()

	var calls []string
	eventsOnly := pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			calls = append(calls, "events-only")
			return next(ctx)
		},
		pipeline.ForKinds(message.KindEvent),
	)

	p := pipeline.New(pipeline.Use(eventsOnly))
	finalCalls := 0

	_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
	require.NoError(t, err)
	assert.Empty(t, calls, "action message must skip event-only middleware")

	_, err = p.Execute(context.Background(), message.New(message.KindEvent, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
	require.NoError(t, err)
	assert.Equal(t, []string{"events-only"}, calls)
}

func TestShouldProcessPredicate(t *testing.T) {
	t.Parallel()

	var calls []string
	conditional := pipeline.NewFunc(
		func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
			calls = append(calls, "conditional")
			return next(ctx)
		},
		pipeline.When(func(msg message.Message, mctx *message.Context) bool {
			return mctx.TenantID != ""
		}),
	)

	p := pipeline.New(pipeline.Use(conditional))
	finalCalls := 0

	_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
	require.NoError(t, err)
	assert.Empty(t, calls)

	mctx := message.NewContext()
	mctx.TenantID = "tenant-1"
	_, err = p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), mctx, finalCounting(&finalCalls))
	require.NoError(t, err)
	assert.Equal(t, []string{"conditional"}, calls)
	assert.Equal(t, 2, finalCalls, "skipped middleware must not block the final delegate")
}

func TestClearCache(t *testing.T) {
	t.Parallel()

	p := pipeline.New(pipeline.Use(
		passThrough("noop", &[]string{}, pipeline.StageStart),
	))

	finalCalls := 0
	_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
	require.NoError(t, err)

	assert.NotPanics(t, func() { p.ClearCache() })

	_, err = p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
	require.NoError(t, err)
	assert.Equal(t, 2, finalCalls)
}

func TestHooked(t *testing.T) {
	t.Parallel()

	t.Run("before hook short-circuits ahead of the body", func(t *testing.T) {
		t.Parallel()

		bodyRan := false
		blocked := pipeline.Fail("blocked", "before hook said no")
		mw := &pipeline.Hooked{
			AtStage: pipeline.StageAuthorization,
			Before: func(ctx context.Context, msg message.Message, mctx *message.Context) (*pipeline.Result, error) {
				return &blocked, nil
			},
			Body: func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
				bodyRan = true
				return next(ctx)
			},
		}

		p := pipeline.New(pipeline.Use(mw))
		finalCalls := 0
		result, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)

		assert.False(t, bodyRan)
		assert.Equal(t, 0, finalCalls)
		assert.Equal(t, "blocked", result.Problem.Code)
	})

	t.Run("on-error hook converts body error into result", func(t *testing.T) {
		t.Parallel()

		converted := pipeline.Fail("handled", "converted by hook")
		mw := &pipeline.Hooked{
			Body: func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
				return pipeline.Result{}, errors.New("body failed")
			},
			OnError: func(ctx context.Context, msg message.Message, mctx *message.Context, err error) *pipeline.Result {
				return &converted
			},
		}

		p := pipeline.New(pipeline.Use(mw))
		finalCalls := 0
		result, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)
		assert.Equal(t, "handled", result.Problem.Code)
	})

	t.Run("on-error hook returning nil propagates the error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("unconverted")
		mw := &pipeline.Hooked{
			Body: func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
				return pipeline.Result{}, boom
			},
			OnError: func(ctx context.Context, msg message.Message, mctx *message.Context, err error) *pipeline.Result {
				return nil
			},
		}

		p := pipeline.New(pipeline.Use(mw))
		_, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(),
			func(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
				return pipeline.Success(nil), nil
			})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("nil body passes through to next", func(t *testing.T) {
		t.Parallel()

		mw := &pipeline.Hooked{}
		p := pipeline.New(pipeline.Use(mw))
		finalCalls := 0
		result, err := p.Execute(context.Background(), message.New(message.KindAction, PipelineTestMessage{}), message.NewContext(), finalCounting(&finalCalls))
		require.NoError(t, err)
		assert.Equal(t, 1, finalCalls)
		assert.Equal(t, "done", result.Value)
	})
}
