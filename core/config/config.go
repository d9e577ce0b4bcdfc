package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load is called with a nil target.
var ErrNilConfig = errors.New("config: nil target")

var (
	cache       sync.Map // reflect.Type -> loaded value
	loadEnvOnce sync.Once
)

// Load populates cfg from environment variables using `env` struct tags.
// Each configuration type is loaded once per process and cached; later
// calls for the same type return the cached value. A .env file, when
// present, is loaded into the environment on first use.
//
// Example:
//
//	type BusConfig struct {
//	    ContextPool bool `env:"MEDIATOR_CONTEXT_POOL" envDefault:"true"`
//	}
//
//	var cfg BusConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	loadEnvOnce.Do(func() {
		// Missing .env is not an error; the environment may be set directly.
		_ = godotenv.Load()
	})

	t := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", t, err)
	}

	actual, _ := cache.LoadOrStore(t, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure. Useful at startup where a
// missing required variable should stop the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
