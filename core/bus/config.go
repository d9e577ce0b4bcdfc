package bus

import "github.com/dmitrymomot/mediator/core/message"

// Config controls bus construction from the environment.
//
// Example:
//
//	var cfg bus.Config
//	config.MustLoad(&cfg)
//	b := bus.NewFromConfig(cfg, bus.WithResolver(container))
type Config struct {
	// ContextPool enables renting dispatch contexts from a shared pool.
	ContextPool bool `env:"MEDIATOR_CONTEXT_POOL" envDefault:"true"`

	// FreezeOnStart freezes the invoker cache right after construction.
	// Only enable when all registration happens through options/init code
	// that runs before the bus is used.
	FreezeOnStart bool `env:"MEDIATOR_FREEZE_ON_START" envDefault:"false"`
}

// NewFromConfig creates a bus applying the configuration on top of the
// given options.
func NewFromConfig(cfg Config, opts ...Option) *Bus {
	if cfg.ContextPool {
		opts = append(opts, WithContextPool(message.NewPool()))
	}

	b := New(opts...)
	if cfg.FreezeOnStart {
		b.Freeze()
	}
	return b
}
