// Package activator resolves live handler instances from a dependency
// resolver and injects the active message context into them.
//
// # Resolution strategies
//
// Per handler type, exactly one of three strategies applies, probed once
// and cached so steady-state activation never repeats the "is this
// registered?" check:
//
//   - resolved: the type is explicitly registered with the resolver
//   - seeded: a factory was pre-bound with Bind
//   - constructed: reflect.New plus resolver-known exported-field injection
//
// ClearCache drops the cached verdicts so the next activation probes again.
//
// # Context injection
//
// After construction the active *message.Context is written into the first
// exported, settable struct field of that exact type. Unexported fields and
// fields of any other type are never touched:
//
//	type CreateUserHandler struct {
//	    Ctx *message.Context // receives the active dispatch context
//	    DB  *sql.DB          // filled from the resolver when known
//	}
//
// # Strict activation
//
// ActivateRegisteredHandler refuses the construction fallback and returns
// ErrNotRegistered for types the resolver does not know. Use it where the
// container must own the handler's lifetime.
package activator
