// Package config provides type-safe environment variable loading with
// per-type caching using Go generics.
//
// The package loads a .env file on first use (when present) and parses
// environment variables into struct fields via caarlos0/env tags:
//
//	type BusConfig struct {
//	    ContextPool   bool `env:"MEDIATOR_CONTEXT_POOL" envDefault:"true"`
//	    FreezeOnStart bool `env:"MEDIATOR_FREEZE_ON_START" envDefault:"false"`
//	}
//
//	var cfg BusConfig
//	config.MustLoad(&cfg)
//
// Each configuration type is loaded only once per process lifetime; later
// Load calls for the same type return the cached value, so hot paths can
// load configuration without re-reading the environment.
package config
