package gantry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_BeforeResolve_Abort(t *testing.T) {
	c := New()

	err := c.Register("blocked", func(c Container) (any, error) {
		t.Fatal("factory must not run when middleware aborts")

		return nil, nil
	})
	require.NoError(t, err)

	abortErr := errors.New("denied")

	c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, name string) error {
			return abortErr
		},
	})

	_, err = c.Resolve("blocked")
	assert.ErrorIs(t, err, abortErr)
}

func TestMiddleware_AfterResolve_SeesResult(t *testing.T) {
	c := New()

	err := c.Register("svc", func(c Container) (any, error) {
		return "value", nil
	})
	require.NoError(t, err)

	var seenService any

	var seenErr error

	c.Use(&FuncMiddleware{
		AfterResolveFunc: func(ctx context.Context, name string, service any, err error) error {
			seenService = service
			seenErr = err

			return nil
		},
	})

	_, err = c.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, "value", seenService)
	assert.NoError(t, seenErr)
}

func TestMiddleware_AfterResolve_SeesFailure(t *testing.T) {
	c := New()

	var seenErr error

	c.Use(&FuncMiddleware{
		AfterResolveFunc: func(ctx context.Context, name string, service any, err error) error {
			seenErr = err

			return nil
		},
	})

	_, _ = c.Resolve("ghost")
	assert.ErrorIs(t, seenErr, ErrServiceNotFoundSentinel)
}

func TestMiddleware_CalledInOrder(t *testing.T) {
	c := New()

	err := c.Register("svc", func(c Container) (any, error) {
		return "value", nil
	})
	require.NoError(t, err)

	var calls []string

	for _, id := range []string{"first", "second"} {
		c.Use(&FuncMiddleware{
			BeforeResolveFunc: func(ctx context.Context, name string) error {
				calls = append(calls, id)

				return nil
			},
		})
	}

	_, err = c.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMiddleware_StartHooks(t *testing.T) {
	c := New()

	err := c.Register("svc", func(c Container) (any, error) {
		return &mockService{name: "svc"}, nil
	}, Singleton())
	require.NoError(t, err)

	var before, after bool

	c.Use(&FuncMiddleware{
		BeforeStartFunc: func(ctx context.Context, name string) error {
			before = true

			return nil
		},
		AfterStartFunc: func(ctx context.Context, name string, err error) error {
			after = true

			return nil
		},
	})

	_, err = c.Resolve("svc")
	require.NoError(t, err)
	assert.True(t, before)
	assert.True(t, after)
}

func TestMiddleware_BeforeStart_Abort(t *testing.T) {
	c := New()
	svc := &mockService{name: "svc"}

	err := c.Register("svc", func(c Container) (any, error) {
		return svc, nil
	}, Singleton())
	require.NoError(t, err)

	abortErr := errors.New("not yet")

	c.Use(&FuncMiddleware{
		BeforeStartFunc: func(ctx context.Context, name string) error {
			return abortErr
		},
	})

	_, err = c.Resolve("svc")
	assert.ErrorIs(t, err, abortErr)
	assert.False(t, svc.started)
}

func TestMiddleware_NestedResolvesAreObserved(t *testing.T) {
	c := New()

	err := c.Register("inner", func(c Container) (any, error) {
		return "inner", nil
	})
	require.NoError(t, err)

	err = c.Register("outer", func(c Container) (any, error) {
		return c.Resolve("inner")
	})
	require.NoError(t, err)

	var resolved []string

	c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, name string) error {
			resolved = append(resolved, name)

			return nil
		},
	})

	_, err = c.Resolve("outer")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, resolved)
}

func TestFuncMiddleware_NilFuncs(t *testing.T) {
	mw := &FuncMiddleware{}
	ctx := context.Background()

	assert.NoError(t, mw.BeforeResolve(ctx, "x"))
	assert.NoError(t, mw.AfterResolve(ctx, "x", nil, nil))
	assert.NoError(t, mw.BeforeStart(ctx, "x"))
	assert.NoError(t, mw.AfterStart(ctx, "x", nil))
}

func TestLoggingMiddleware_LogsResolution(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	c := New()
	c.Use(NewLoggingMiddleware(zap.New(core)))

	err := c.Register("svc", func(c Container) (any, error) {
		return "value", nil
	})
	require.NoError(t, err)

	_, err = c.Resolve("svc")
	require.NoError(t, err)

	entries := logs.FilterMessage("service resolved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "svc", entries[0].ContextMap()["service"])
}

func TestLoggingMiddleware_LogsFailureAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	c := New()
	c.Use(NewLoggingMiddleware(zap.New(core)))

	_, _ = c.Resolve("ghost")

	entries := logs.FilterMessage("service resolution failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestLoggingMiddleware_NilLogger(t *testing.T) {
	c := New()
	c.Use(NewLoggingMiddleware(nil))

	err := c.Register("svc", func(c Container) (any, error) {
		return "value", nil
	})
	require.NoError(t, err)

	_, err = c.Resolve("svc")
	assert.NoError(t, err)
}
