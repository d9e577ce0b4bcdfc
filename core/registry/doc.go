// Package registry holds the static mapping from message types to handler
// types. It is pure storage: every other dispatch component depends on it,
// but it has no behavior beyond thread-safe registration and lookup.
//
// Registration is last-write-wins: registering a second handler type for a
// message type replaces the first. All() returns an independent snapshot
// unaffected by later registrations.
//
//	reg := registry.New()
//	reg.Register(reflect.TypeOf(CreateUser{}), reflect.TypeOf(&CreateUserHandler{}), true)
//
//	if entry, ok := reg.TryGet(reflect.TypeOf(CreateUser{})); ok {
//	    // entry.HandlerType, entry.ExpectsResponse
//	}
package registry
