package pipeline

import (
	"context"

	"github.com/dmitrymomot/mediator/core/message"
)

// Next invokes the remainder of the middleware chain. A middleware that
// returns without calling next short-circuits: nothing after it runs, and
// its result is what Execute yields.
type Next func(ctx context.Context) (Result, error)

// Final is the caller-supplied terminal continuation invoked after all
// applicable middleware have run without short-circuiting. Typically it
// looks up the handler, activates it, and invokes it.
type Final func(ctx context.Context, msg message.Message, mctx *message.Context) (Result, error)

// Middleware is one unit of cross-cutting logic in the dispatch chain.
type Middleware interface {
	// Stage positions the middleware in the chain. StageUnspecified runs
	// after all staged middleware.
	Stage() Stage

	// Kinds filters which message kinds the middleware applies to. The
	// middleware runs only when the mask intersects the message's kind.
	Kinds() message.Kind

	// ShouldProcess is a per-dispatch predicate; returning false skips the
	// middleware for this message only.
	ShouldProcess(msg message.Message, mctx *message.Context) bool

	// Process runs the middleware. It may call next and pass the result
	// through (possibly transformed), or return its own result without
	// calling next to short-circuit the rest of the chain.
	Process(ctx context.Context, msg message.Message, mctx *message.Context, next Next) (Result, error)
}

// ProcessFunc is the processing function of a Func middleware.
type ProcessFunc func(ctx context.Context, msg message.Message, mctx *message.Context, next Next) (Result, error)

// Func adapts a plain function into a Middleware.
//
// Example:
//
//	mw := pipeline.NewFunc(
//	    func(ctx context.Context, msg message.Message, mctx *message.Context, next pipeline.Next) (pipeline.Result, error) {
//	        return next(ctx)
//	    },
//	    pipeline.AtStage(pipeline.StageValidation),
//	    pipeline.ForKinds(message.KindAction),
//	)
type Func struct {
	stage     Stage
	kinds     message.Kind
	predicate func(msg message.Message, mctx *message.Context) bool
	process   ProcessFunc
}

// FuncOption configures a Func middleware.
type FuncOption func(*Func)

// AtStage sets the middleware's ordering stage.
func AtStage(stage Stage) FuncOption {
	return func(f *Func) {
		f.stage = stage
	}
}

// ForKinds restricts the middleware to the given message kinds.
func ForKinds(kinds message.Kind) FuncOption {
	return func(f *Func) {
		f.kinds = kinds
	}
}

// When sets a per-dispatch predicate; the middleware is skipped for
// messages where it returns false.
func When(predicate func(msg message.Message, mctx *message.Context) bool) FuncOption {
	return func(f *Func) {
		f.predicate = predicate
	}
}

// NewFunc creates a function-backed middleware. By default it is
// unstaged, applies to all kinds, and always processes.
func NewFunc(process ProcessFunc, opts ...FuncOption) *Func {
	f := &Func{
		stage: StageUnspecified,
		kinds: message.KindAll,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.process = process
	return f
}

func (f *Func) Stage() Stage        { return f.stage }
func (f *Func) Kinds() message.Kind { return f.kinds }

func (f *Func) ShouldProcess(msg message.Message, mctx *message.Context) bool {
	if f.predicate == nil {
		return true
	}
	return f.predicate(msg, mctx)
}

func (f *Func) Process(ctx context.Context, msg message.Message, mctx *message.Context, next Next) (Result, error) {
	return f.process(ctx, msg, mctx, next)
}

// Hooked is the extension-point middleware base: it never short-circuits on
// its own and instead delegates to hooks. Before may return a non-nil
// result to short-circuit ahead of the main body; OnError may convert an
// error raised by the body into a result instead of propagating it.
type Hooked struct {
	// AtStage positions the middleware; StageUnspecified by default.
	AtStage Stage

	// ForKinds filters applicability; defaults to all kinds when zero.
	ForKinds message.Kind

	// Predicate is the optional per-dispatch ShouldProcess override.
	Predicate func(msg message.Message, mctx *message.Context) bool

	// Before runs ahead of Body. A non-nil result short-circuits.
	Before func(ctx context.Context, msg message.Message, mctx *message.Context) (*Result, error)

	// Body is the main processing step. When nil, the middleware is a
	// pass-through around its hooks.
	Body ProcessFunc

	// OnError runs when Body returns an error. A non-nil result replaces
	// the error; otherwise the error propagates unchanged.
	OnError func(ctx context.Context, msg message.Message, mctx *message.Context, err error) *Result
}

func (h *Hooked) Stage() Stage { return h.AtStage }

func (h *Hooked) Kinds() message.Kind {
	if h.ForKinds == 0 {
		return message.KindAll
	}
	return h.ForKinds
}

func (h *Hooked) ShouldProcess(msg message.Message, mctx *message.Context) bool {
	if h.Predicate == nil {
		return true
	}
	return h.Predicate(msg, mctx)
}

func (h *Hooked) Process(ctx context.Context, msg message.Message, mctx *message.Context, next Next) (Result, error) {
	if h.Before != nil {
		r, err := h.Before(ctx, msg, mctx)
		if err != nil {
			return Result{}, err
		}
		if r != nil {
			return *r, nil
		}
	}

	body := h.Body
	if body == nil {
		body = func(ctx context.Context, _ message.Message, _ *message.Context, next Next) (Result, error) {
			return next(ctx)
		}
	}

	result, err := body(ctx, msg, mctx, next)
	if err != nil && h.OnError != nil {
		if r := h.OnError(ctx, msg, mctx, err); r != nil {
			return *r, nil
		}
	}
	return result, err
}
