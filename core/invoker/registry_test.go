package invoker_test

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/invoker"
	"github.com/dmitrymomot/mediator/core/message"
)

type precedenceHandler struct{}

func (h *precedenceHandler) Handle(ctx context.Context, cmd PingCommand) (string, error) {
	return "reflection", nil
}

func TestResolutionPrecedence(t *testing.T) {
	t.Parallel()

	t.Run("manual beats reflection", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		err := reg.RegisterFunc(reflect.TypeOf(&precedenceHandler{}), func(ctx context.Context, handler any, msg message.Message) (any, error) {
			return "manual", nil
		})
		require.NoError(t, err)

		result, err := reg.Invoke(context.Background(), &precedenceHandler{}, msgOf(PingCommand{}))
		require.NoError(t, err)
		assert.Equal(t, "manual", result)
	})

	t.Run("precompiled beats manual", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		err := reg.RegisterFunc(reflect.TypeOf(&precedenceHandler{}), func(ctx context.Context, handler any, msg message.Message) (any, error) {
			return "manual", nil
		})
		require.NoError(t, err)
		err = invoker.Precompile(reg, func(ctx context.Context, h *precedenceHandler, msg message.Message) (any, error) {
			return "precompiled", nil
		})
		require.NoError(t, err)

		result, err := reg.Invoke(context.Background(), &precedenceHandler{}, msgOf(PingCommand{}))
		require.NoError(t, err)
		assert.Equal(t, "precompiled", result)
	})

	t.Run("reflection is the fallback", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		result, err := reg.Invoke(context.Background(), &precedenceHandler{}, msgOf(PingCommand{}))
		require.NoError(t, err)
		assert.Equal(t, "reflection", result)
	})
}

func TestFreeze(t *testing.T) {
	t.Parallel()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		assert.False(t, reg.IsFrozen())

		for _i := 0; _i < 3; _i++ {
			assert.NotPanics(t, reg.Freeze)
		}
		assert.True(t, reg.IsFrozen())
	})

	t.Run("concurrent freeze with readers", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		// Warm the cache before freezing.
		_, err := reg.Invoke(context.Background(), &valueHandler{}, msgOf(PingCommand{Value: "warm"}))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _i := 0; _i < 4; _i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				reg.Freeze()
			}()
			go func() {
				defer wg.Done()
				_, _ = reg.Invoke(context.Background(), &valueHandler{}, msgOf(PingCommand{Value: "read"}))
			}()
		}
		wg.Wait()

		assert.True(t, reg.IsFrozen())
	})

	t.Run("frozen hit uses the snapshot", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		_, err := reg.Invoke(context.Background(), &valueHandler{}, msgOf(PingCommand{Value: "warm"}))
		require.NoError(t, err)
		reg.Freeze()

		result, err := reg.Invoke(context.Background(), &valueHandler{}, msgOf(PingCommand{Value: "x"}))
		require.NoError(t, err)
		assert.Equal(t, "pong:x", result)
	})

	t.Run("frozen miss builds on the fly and stays frozen", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		reg.Freeze()

		result, err := reg.Invoke(context.Background(), &valueHandler{}, msgOf(PingCommand{Value: "late"}))
		require.NoError(t, err)
		assert.Equal(t, "pong:late", result)
		assert.True(t, reg.IsFrozen())
	})

	t.Run("registration rejected while frozen", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		reg.Freeze()

		err := reg.RegisterFunc(reflect.TypeOf(&precedenceHandler{}), func(ctx context.Context, handler any, msg message.Message) (any, error) {
			return nil, nil
		})
		assert.ErrorIs(t, err, invoker.ErrCacheFrozen)

		err = invoker.Precompile(reg, func(ctx context.Context, h *precedenceHandler, msg message.Message) (any, error) {
			return nil, nil
		})
		assert.ErrorIs(t, err, invoker.ErrCacheFrozen)
	})
}

func TestClear(t *testing.T) {
	t.Parallel()

	t.Run("resets frozen state and allows registration again", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		reg.Freeze()
		require.True(t, reg.IsFrozen())

		reg.Clear()
		assert.False(t, reg.IsFrozen())

		err := reg.RegisterFunc(reflect.TypeOf(&precedenceHandler{}), func(ctx context.Context, handler any, msg message.Message) (any, error) {
			return "manual-after-clear", nil
		})
		require.NoError(t, err)

		result, err := reg.Invoke(context.Background(), &precedenceHandler{}, msgOf(PingCommand{}))
		require.NoError(t, err)
		assert.Equal(t, "manual-after-clear", result)
	})

	t.Run("precompiled registrations survive a clear", func(t *testing.T) {
		t.Parallel()

		reg := invoker.NewRegistry()
		err := invoker.Precompile(reg, func(ctx context.Context, h *precedenceHandler, msg message.Message) (any, error) {
			return "precompiled", nil
		})
		require.NoError(t, err)

		reg.Freeze()
		reg.Clear()

		result, err := reg.Invoke(context.Background(), &precedenceHandler{}, msgOf(PingCommand{}))
		require.NoError(t, err)
		assert.Equal(t, "precompiled", result)
	})
}

func TestConcurrentWarmup(t *testing.T) {
	t.Parallel()

	reg := invoker.NewRegistry()

	var wg sync.WaitGroup
	for _i := 0; _i < 16; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := reg.Invoke(context.Background(), &valueHandler{}, msgOf(PingCommand{Value: "c"}))
			assert.NoError(t, err)
			assert.Equal(t, "pong:c", result)
		}()
	}
	wg.Wait()
}
