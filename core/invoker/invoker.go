package invoker

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/mediator/core/message"
)

// Func binds a handler instance and a message into a single executable call.
// It is the one result channel every handler return shape is normalized
// into: fire-and-forget handlers yield nil, single-value handlers yield the
// value, boolean handlers yield a shared boxed bool, and batch handlers
// yield their []any unchanged for the caller to fan out.
type Func func(ctx context.Context, handler any, msg message.Message) (any, error)

// Shared boxed booleans so boolean-returning handlers do not re-box on
// every call.
var (
	boxedTrue  any = true
	boxedFalse any = false
)

// Bool returns the shared boxed value for b. Repeated calls with the same
// argument return the same value.
func Bool(b bool) any {
	if b {
		return boxedTrue
	}
	return boxedFalse
}

// Return shapes a Handle method may declare.
type returnShape uint8

const (
	shapeVoid  returnShape = iota // Handle(ctx, T) error
	shapeValue                    // Handle(ctx, T) (R, error)
	shapeBool                     // Handle(ctx, T) (bool, error)
	shapeBatch                    // Handle(ctx, T) ([]any, error)
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType   = reflect.TypeOf((*error)(nil)).Elem()
	batchType = reflect.TypeOf([]any(nil))
)

// build constructs an invoker for the handler type via reflection. The
// resulting closure is built once and cached; only discovery pays the
// reflection cost, not every call.
//
// The handler must expose a method Handle(context.Context, T) returning one
// of: error, (R, error), (bool, error), ([]any, error).
func build(handlerType reflect.Type) (Func, error) {
	method, ok := handlerType.MethodByName("Handle")
	if !ok {
		return nil, fmt.Errorf("%w: %s has no Handle method", ErrNoHandleMethod, message.TypeName(handlerType))
	}

	mt := method.Type
	// Receiver + ctx + message payload.
	if mt.NumIn() != 3 {
		return nil, fmt.Errorf("%w: %s.Handle must accept (context.Context, message), got %d parameters",
			ErrNoHandleMethod, message.TypeName(handlerType), mt.NumIn()-1)
	}
	if !mt.In(1).Implements(ctxType) && mt.In(1) != ctxType {
		return nil, fmt.Errorf("%w: %s.Handle first parameter must be context.Context",
			ErrNoHandleMethod, message.TypeName(handlerType))
	}

	shape, err := shapeOf(mt, handlerType)
	if err != nil {
		return nil, err
	}

	paramType := mt.In(2)
	fn := method.Func

	return func(ctx context.Context, handler any, msg message.Message) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %s panicked: %v", ErrInvocationFailed, message.TypeName(handlerType), r)
			}
		}()

		body := reflect.ValueOf(msg.Body)
		if !body.IsValid() || !body.Type().AssignableTo(paramType) {
			return nil, fmt.Errorf("%w: %s.Handle expects %s, got %T",
				ErrInvocationFailed, message.TypeName(handlerType), paramType, msg.Body)
		}

		out := fn.Call([]reflect.Value{reflect.ValueOf(handler), reflect.ValueOf(ctx), body})

		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}

		switch shape {
		case shapeVoid:
			return nil, nil
		case shapeBool:
			return Bool(out[0].Bool()), nil
		case shapeBatch:
			return out[0].Interface(), nil
		default:
			return out[0].Interface(), nil
		}
	}, nil
}

// shapeOf classifies the return signature of a Handle method.
func shapeOf(mt reflect.Type, handlerType reflect.Type) (returnShape, error) {
	switch mt.NumOut() {
	case 1:
		if mt.Out(0) != errType {
			return 0, fmt.Errorf("%w: %s.Handle single return value must be error",
				ErrNoHandleMethod, message.TypeName(handlerType))
		}
		return shapeVoid, nil
	case 2:
		if mt.Out(1) != errType {
			return 0, fmt.Errorf("%w: %s.Handle second return value must be error",
				ErrNoHandleMethod, message.TypeName(handlerType))
		}
		switch {
		case mt.Out(0).Kind() == reflect.Bool:
			return shapeBool, nil
		case mt.Out(0) == batchType:
			return shapeBatch, nil
		default:
			return shapeValue, nil
		}
	default:
		return 0, fmt.Errorf("%w: %s.Handle must return error or (value, error)",
			ErrNoHandleMethod, message.TypeName(handlerType))
	}
}
