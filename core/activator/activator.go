package activator

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dmitrymomot/mediator/core/message"
)

// strategy is how an activator obtains an instance for a handler type.
// The probe runs at most once per handler type; the winning strategy is
// cached for the lifetime of the activator unless ClearCache is called.
type strategy uint8

const (
	strategyUnknown  strategy = iota
	strategyResolved          // explicitly registered with the resolver
	strategySeeded            // pre-bound factory via Bind
	strategyConstructed
)

// Factory builds a handler instance from a resolver. Used by Bind to seed
// a handler type with a custom construction path.
type Factory func(resolver message.ServiceResolver) (any, error)

var contextType = reflect.TypeOf((*message.Context)(nil))

// Activator resolves live handler instances and injects the active message
// context into them. Safe for concurrent use.
//
// Example:
//
//	act := activator.New()
//	h, err := act.ActivateHandler(reflect.TypeOf(&CreateUserHandler{}), mctx, resolver)
type Activator struct {
	strategies sync.Map // reflect.Type -> strategy
	factories  sync.Map // reflect.Type -> Factory
	ctxFields  sync.Map // reflect.Type -> int (field index, -1 if none)
}

// New creates an activator with empty caches.
func New() *Activator {
	return &Activator{}
}

// Bind seeds a handler type with a factory. Bound types skip the resolver
// probe entirely; the factory runs on every activation.
func (a *Activator) Bind(handlerType reflect.Type, factory Factory) error {
	if handlerType == nil {
		return ErrNilHandlerType
	}
	if factory == nil {
		return fmt.Errorf("activator: nil factory for %s", message.TypeName(handlerType))
	}
	a.factories.Store(handlerType, factory)
	a.strategies.Store(handlerType, strategySeeded)
	return nil
}

// ActivateHandler produces a live instance of handlerType with the message
// context injected. If the resolver knows the type, the instance comes from
// it; otherwise the type is constructed with resolver-known dependencies
// injected into its exported fields.
func (a *Activator) ActivateHandler(handlerType reflect.Type, mctx *message.Context, resolver message.ServiceResolver) (any, error) {
	if err := validateArgs(handlerType, mctx, resolver); err != nil {
		return nil, err
	}

	instance, err := a.instantiate(handlerType, resolver, false)
	if err != nil {
		return nil, err
	}

	a.injectContext(instance, mctx)
	return instance, nil
}

// ActivateRegisteredHandler is the strict variant: it fails with
// ErrNotRegistered instead of falling back to construction when the handler
// type is not explicitly registered with the resolver. Use it when the
// handler's lifetime must be managed by the container.
func (a *Activator) ActivateRegisteredHandler(handlerType reflect.Type, mctx *message.Context, resolver message.ServiceResolver) (any, error) {
	if err := validateArgs(handlerType, mctx, resolver); err != nil {
		return nil, err
	}

	instance, err := a.instantiate(handlerType, resolver, true)
	if err != nil {
		return nil, err
	}

	a.injectContext(instance, mctx)
	return instance, nil
}

// ClearCache drops the cached strategies and context-field indexes. The
// next activation of each handler type probes again.
func (a *Activator) ClearCache() {
	clearMap(&a.strategies)
	clearMap(&a.ctxFields)
}

func validateArgs(handlerType reflect.Type, mctx *message.Context, resolver message.ServiceResolver) error {
	if handlerType == nil {
		return ErrNilHandlerType
	}
	if mctx == nil {
		return fmt.Errorf("%w: activating %s", ErrNilContext, message.TypeName(handlerType))
	}
	if resolver == nil {
		return fmt.Errorf("%w: activating %s", ErrNilResolver, message.TypeName(handlerType))
	}
	return nil
}

// instantiate picks (and caches) the resolution strategy for the handler
// type and produces an instance with it.
func (a *Activator) instantiate(handlerType reflect.Type, resolver message.ServiceResolver, strict bool) (any, error) {
	var strat strategy
	if cached, ok := a.strategies.Load(handlerType); ok {
		strat = cached.(strategy)
	} else {
		// One-time probe. Under race the probe may run twice; both
		// writers reach the same verdict for the same resolver setup.
		switch {
		case a.hasFactory(handlerType):
			strat = strategySeeded
		case resolver.Known(handlerType):
			strat = strategyResolved
		default:
			strat = strategyConstructed
		}
		a.strategies.Store(handlerType, strat)
	}

	if strict && strat != strategyResolved {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, message.TypeName(handlerType))
	}

	switch strat {
	case strategyResolved:
		if instance, ok := resolver.Resolve(handlerType); ok {
			return instance, nil
		}
		// Resolver changed since the probe; fall back to construction.
		if strict {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistered, message.TypeName(handlerType))
		}
		return a.construct(handlerType, resolver)
	case strategySeeded:
		factory, ok := a.factories.Load(handlerType)
		if !ok {
			return nil, fmt.Errorf("%w: factory for %s disappeared", ErrNotConstructible, message.TypeName(handlerType))
		}
		return factory.(Factory)(resolver)
	default:
		return a.construct(handlerType, resolver)
	}
}

// construct builds an instance via reflection, injecting resolver-known
// dependencies into exported fields. This is the constructor-injection
// fallback for handler types not registered with the container.
func (a *Activator) construct(handlerType reflect.Type, resolver message.ServiceResolver) (any, error) {
	elem := handlerType
	pointer := false
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
		pointer = true
	}
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct type", ErrNotConstructible, message.TypeName(handlerType))
	}

	value := reflect.New(elem)
	target := value.Elem()

	for i := 0; i < elem.NumField(); i++ {
		field := target.Field(i)
		if !field.CanSet() || elem.Field(i).Type == contextType {
			continue
		}
		if dep, ok := resolver.Resolve(elem.Field(i).Type); ok {
			dv := reflect.ValueOf(dep)
			if dv.IsValid() && dv.Type().AssignableTo(field.Type()) {
				field.Set(dv)
			}
		}
	}

	if pointer {
		return value.Interface(), nil
	}
	return target.Interface(), nil
}

// injectContext writes the message context into the first exported,
// settable field of type *message.Context. Unexported fields and fields of
// other types are never targeted. The field index is cached per type.
func (a *Activator) injectContext(instance any, mctx *message.Context) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return
	}

	t := elem.Type()
	idx := a.contextFieldIndex(t)
	if idx < 0 {
		return
	}
	elem.Field(idx).Set(reflect.ValueOf(mctx))
}

// contextFieldIndex finds (and caches) the index of the context-carrying
// field on a struct type, or -1 when there is none.
func (a *Activator) contextFieldIndex(t reflect.Type) int {
	if cached, ok := a.ctxFields.Load(t); ok {
		return cached.(int)
	}

	idx := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && f.Type == contextType {
			idx = i
			break
		}
	}

	a.ctxFields.Store(t, idx)
	return idx
}

func (a *Activator) hasFactory(handlerType reflect.Type) bool {
	_, ok := a.factories.Load(handlerType)
	return ok
}

func clearMap(m *sync.Map) {
	m.Range(func(key, _ any) bool {
		m.Delete(key)
		return true
	})
}
