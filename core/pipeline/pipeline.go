package pipeline

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/mediator/core/message"
)

// entry pairs a registered middleware with its registration index, the
// tie-breaker for middleware sharing a stage.
type entry struct {
	mw    Middleware
	index int
}

// Pipeline composes the ordered, filtered middleware chain for a message
// and drives execution, terminating in the caller-supplied final delegate.
//
// The middleware set is fixed at construction. The sorted, kind-filtered
// chain is cached per concrete message type; ClearCache invalidates it.
//
// Example:
//
//	p := pipeline.New(
//	    pipeline.Use(authMW),
//	    pipeline.Use(loggingMW),
//	)
//	result, err := p.Execute(ctx, msg, mctx, final)
type Pipeline struct {
	registered []entry
	cache      atomic.Pointer[sync.Map] // reflect.Type -> []entry
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// Use registers middleware in the order given. Registration order is the
// tie-breaker within a stage and the order among unstaged middleware.
func Use(mws ...Middleware) Option {
	return func(p *Pipeline) {
		for _, mw := range mws {
			p.registered = append(p.registered, entry{mw: mw, index: len(p.registered)})
		}
	}
}

// New creates a pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	p.cache.Store(&sync.Map{})
	return p
}

// Execute runs the message through the ordered middleware chain and then
// the final delegate. Argument validation happens before any middleware.
//
// Middleware errors and final-delegate errors propagate unmodified; the
// pipeline installs no recover and never converts a cancellation error into
// anything else.
func (p *Pipeline) Execute(ctx context.Context, msg message.Message, mctx *message.Context, final Final) (Result, error) {
	if msg.Body == nil {
		return Result{}, ErrNilMessage
	}
	if mctx == nil {
		return Result{}, ErrNilContext
	}
	if final == nil {
		return Result{}, ErrNilFinal
	}

	chain := p.chainFor(msg)

	var run func(ctx context.Context, i int) (Result, error)
	run = func(ctx context.Context, i int) (Result, error) {
		for ; i < len(chain); i++ {
			if !chain[i].mw.ShouldProcess(msg, mctx) {
				continue
			}
			link := i
			return chain[link].mw.Process(ctx, msg, mctx, func(ctx context.Context) (Result, error) {
				return run(ctx, link+1)
			})
		}
		return final(ctx, msg, mctx)
	}
	return run(ctx, 0)
}

// ClearCache invalidates the per-message-type chain cache. Safe to call at
// any time, concurrently with Execute; it never panics.
func (p *Pipeline) ClearCache() {
	p.cache.Store(&sync.Map{})
}

// chainKey carries the kind alongside the concrete type so a body type
// dispatched under two kinds cannot share a mismatched chain.
type chainKey struct {
	t reflect.Type
	k message.Kind
}

// chainFor returns the sorted subsequence of middleware applicable to the
// message's concrete type, building and caching it on first use.
func (p *Pipeline) chainFor(msg message.Message) []entry {
	cache := p.cache.Load()
	key := chainKey{t: reflect.TypeOf(msg.Body), k: msg.Kind}

	if cached, ok := cache.Load(key); ok {
		return cached.([]entry)
	}

	chain := make([]entry, 0, len(p.registered))
	for _, e := range p.registered {
		if e.mw.Kinds().Intersects(msg.Kind) {
			chain = append(chain, e)
		}
	}

	// Stable order: stage rank ascending, then registration index.
	// SliceStable keeps registration order for equal ranks.
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].mw.Stage().rank() < chain[j].mw.Stage().rank()
	})

	actual, _ := cache.LoadOrStore(key, chain)
	return actual.([]entry)
}
