package bus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/mediator/core/activator"
	"github.com/dmitrymomot/mediator/core/invoker"
	"github.com/dmitrymomot/mediator/core/message"
	"github.com/dmitrymomot/mediator/core/pipeline"
	"github.com/dmitrymomot/mediator/core/registry"
	"github.com/dmitrymomot/mediator/pkg/async"
)

// Bus is the composition root of the dispatch core: it owns the handler
// registry, the invoker registry, the activator, and the middleware
// pipeline, and wires them into the canonical final delegate.
//
// Example:
//
//	b := bus.New(
//	    bus.WithResolver(container),
//	    bus.WithMiddleware(middleware.Logging(logger)),
//	)
//	bus.RegisterRequestHandler[GetUser, *User, *GetUserHandler](b)
//
//	result, err := b.Dispatch(ctx, message.New(message.KindQuery, GetUser{ID: "123"}))
type Bus struct {
	registry   *registry.Registry
	invokers   *invoker.Registry
	activator  *activator.Activator
	pipeline   *pipeline.Pipeline
	pool       *message.Pool
	resolver   message.ServiceResolver
	logger     *slog.Logger
	middleware []pipeline.Middleware
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger for registration diagnostics.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMiddleware registers pipeline middleware in the order given.
// Middleware must be configured at construction time.
func WithMiddleware(mws ...pipeline.Middleware) Option {
	return func(b *Bus) {
		b.middleware = append(b.middleware, mws...)
	}
}

// WithResolver sets the dependency resolver handlers are activated from.
// Defaults to an empty container, which means every handler is built by the
// constructor-injection fallback.
func WithResolver(resolver message.ServiceResolver) Option {
	return func(b *Bus) {
		if resolver != nil {
			b.resolver = resolver
		}
	}
}

// WithContextPool makes the bus rent dispatch contexts from the pool
// instead of allocating one per dispatch. Every rented context is returned
// exactly once, including when the dispatch panics.
func WithContextPool(pool *message.Pool) Option {
	return func(b *Bus) {
		b.pool = pool
	}
}

// WithInvokers replaces the invoker registry, e.g. to share one across
// several buses.
func WithInvokers(reg *invoker.Registry) Option {
	return func(b *Bus) {
		if reg != nil {
			b.invokers = reg
		}
	}
}

// WithActivator replaces the handler activator.
func WithActivator(act *activator.Activator) Option {
	return func(b *Bus) {
		if act != nil {
			b.activator = act
		}
	}
}

// New creates a bus with the given options.
func New(opts ...Option) *Bus {
	b := &Bus{
		registry:  registry.New(),
		invokers:  invoker.NewRegistry(),
		activator: activator.New(),
		resolver:  activator.NewContainer(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.pipeline = pipeline.New(pipeline.Use(b.middleware...))
	return b
}

// Register maps a message type to a handler type using prototype values.
// A later call for the same message type replaces the earlier registration.
//
// Prefer the generic RegisterHandler / RegisterRequestHandler helpers: they
// also precompile a reflection-free invoker.
func (b *Bus) Register(msgPrototype, handlerPrototype any, expectsResponse bool) error {
	if msgPrototype == nil || handlerPrototype == nil {
		return ErrNilPrototype
	}

	msgType := reflect.TypeOf(msgPrototype)
	handlerType := reflect.TypeOf(handlerPrototype)
	if err := b.registry.Register(msgType, handlerType, expectsResponse); err != nil {
		return err
	}

	b.logger.Debug("handler registered",
		slog.String("message", message.TypeName(msgType)),
		slog.String("handler", message.TypeName(handlerType)),
		slog.Bool("expects_response", expectsResponse))
	return nil
}

// Dispatch routes the message through the middleware pipeline to its
// handler. The per-dispatch context is rented from the pool when one is
// configured, and returned exactly once even if a middleware or handler
// panics.
func (b *Bus) Dispatch(ctx context.Context, msg message.Message) (pipeline.Result, error) {
	var mctx *message.Context
	if b.pool != nil {
		mctx = b.pool.Rent()
		defer b.pool.ReturnToPool(mctx)
	} else {
		mctx = message.NewContext()
	}
	return b.dispatch(ctx, msg, mctx)
}

// DispatchAsync dispatches the message on a new goroutine and returns a
// future for the result. The future resolves with ctx.Err() without running
// the pipeline when ctx is already canceled.
func (b *Bus) DispatchAsync(ctx context.Context, msg message.Message) *async.Future[pipeline.Result] {
	return async.Run(ctx, msg, b.Dispatch)
}

// DispatchWithContext dispatches with a caller-owned context, e.g. a child
// context created for fan-out. The caller keeps ownership; the bus never
// pools it.
func (b *Bus) DispatchWithContext(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
	if mctx == nil {
		return pipeline.Result{}, pipeline.ErrNilContext
	}
	return b.dispatch(ctx, msg, mctx)
}

func (b *Bus) dispatch(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
	mctx.MessageID = msg.ID
	mctx.RequestServices = b.resolver
	return b.pipeline.Execute(ctx, msg, mctx, b.deliver)
}

// deliver is the canonical final delegate: observe cancellation, look up
// the handler, activate it, invoke it, convert to a result.
func (b *Bus) deliver(ctx context.Context, msg message.Message, mctx *message.Context) (pipeline.Result, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Result{}, err
	}

	entry, ok := b.registry.TryGet(msg.Type())
	if !ok {
		return pipeline.Result{}, fmt.Errorf("%w: %s", ErrNoHandler, msg.Name())
	}

	handler, err := b.activator.ActivateHandler(entry.HandlerType, mctx, b.resolver)
	if err != nil {
		return pipeline.Result{}, err
	}

	value, err := b.invokers.Invoke(ctx, handler, msg)
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Success(value), nil
}

// Freeze transitions the invoker cache to its frozen, lock-free phase.
// Call it once registration is complete, typically at startup.
func (b *Bus) Freeze() {
	b.invokers.Freeze()
}

// Frozen reports whether the invoker cache is frozen.
func (b *Bus) Frozen() bool {
	return b.invokers.IsFrozen()
}

// ClearCaches resets the invoker cache to warmup, drops the activator's
// strategy cache, and invalidates the pipeline's chain cache.
func (b *Bus) ClearCaches() {
	b.invokers.Clear()
	b.activator.ClearCache()
	b.pipeline.ClearCache()
}

// Registry exposes the handler registry, e.g. for diagnostics.
func (b *Bus) Registry() *registry.Registry {
	return b.registry
}

// Invokers exposes the invoker registry for manual registration.
func (b *Bus) Invokers() *invoker.Registry {
	return b.invokers
}

// RegisterHandler registers a fire-and-forget handler H for message type T
// and precompiles a reflection-free invoker for it.
//
// Example:
//
//	bus.RegisterHandler[UserCreated, *UserCreatedHandler](b)
func RegisterHandler[T any, H interface {
	Handle(ctx context.Context, msg T) error
}](b *Bus) error {
	msgType := reflect.TypeOf((*T)(nil)).Elem()
	handlerType := reflect.TypeOf((*H)(nil)).Elem()

	if err := b.registry.Register(msgType, handlerType, false); err != nil {
		return err
	}
	return invoker.Precompile(b.invokers, func(ctx context.Context, h H, msg message.Message) (any, error) {
		body, ok := msg.Body.(T)
		if !ok {
			return nil, fmt.Errorf("bus: %s expects %s, got %T", message.TypeName(handlerType), message.TypeName(msgType), msg.Body)
		}
		return nil, h.Handle(ctx, body)
	})
}

// RegisterRequestHandler registers a response-producing handler H for
// message type T and precompiles a reflection-free invoker for it.
//
// Example:
//
//	bus.RegisterRequestHandler[GetUser, *User, *GetUserHandler](b)
func RegisterRequestHandler[T, R any, H interface {
	Handle(ctx context.Context, msg T) (R, error)
}](b *Bus) error {
	msgType := reflect.TypeOf((*T)(nil)).Elem()
	handlerType := reflect.TypeOf((*H)(nil)).Elem()

	if err := b.registry.Register(msgType, handlerType, true); err != nil {
		return err
	}
	return invoker.Precompile(b.invokers, func(ctx context.Context, h H, msg message.Message) (any, error) {
		body, ok := msg.Body.(T)
		if !ok {
			return nil, fmt.Errorf("bus: %s expects %s, got %T", message.TypeName(handlerType), message.TypeName(msgType), msg.Body)
		}
		value, err := h.Handle(ctx, body)
		if err != nil {
			return nil, err
		}
		return normalize(value), nil
	})
}

// normalize applies the invoker's return-shape rules to a typed value:
// booleans become the shared boxed singletons, everything else boxes as-is.
func normalize(value any) any {
	if b, ok := value.(bool); ok {
		return invoker.Bool(b)
	}
	return value
}
