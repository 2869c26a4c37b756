package gantry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/go-utils/errs"
)

func TestResolve_CircularDependency_TwoServices(t *testing.T) {
	c := New()

	err := c.Register("x", func(c Container) (any, error) {
		return c.Resolve("y")
	})
	require.NoError(t, err)

	err = c.Register("y", func(c Container) (any, error) {
		return c.Resolve("x")
	})
	require.NoError(t, err)

	_, err = c.Resolve("x")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_CircularDependency_SelfReference(t *testing.T) {
	c := New()

	err := c.Register("narcissus", func(c Container) (any, error) {
		return c.Resolve("narcissus")
	})
	require.NoError(t, err)

	_, err = c.Resolve("narcissus")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_CircularDependency_LongChain(t *testing.T) {
	c := New()

	// a -> b -> c -> d -> a
	names := []string{"a", "b", "c", "d"}

	for i, name := range names {
		next := names[(i+1)%len(names)]

		err := c.Register(name, func(c Container) (any, error) {
			return c.Resolve(next)
		})
		require.NoError(t, err)
	}

	_, err := c.Resolve("a")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_CircularDependency_ReportsChain(t *testing.T) {
	c := New()

	err := c.Register("x", func(c Container) (any, error) {
		return c.Resolve("y")
	})
	require.NoError(t, err)

	err = c.Register("y", func(c Container) (any, error) {
		return c.Resolve("x")
	})
	require.NoError(t, err)

	_, err = c.Resolve("x")
	require.Error(t, err)

	var cycleErr *errs.Error
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"x", "y", "x"}, cycleErr.GetContext()["chain"])
}

func TestResolve_CircularDependency_Transients(t *testing.T) {
	c := New()

	err := c.Register("x", func(c Container) (any, error) {
		return c.Resolve("y")
	}, Transient())
	require.NoError(t, err)

	err = c.Register("y", func(c Container) (any, error) {
		return c.Resolve("x")
	}, Transient())
	require.NoError(t, err)

	_, err = c.Resolve("x")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_CircularDependency_MixedLifecycles(t *testing.T) {
	c := New()

	// Singleton x depends on transient y, which depends back on x. The cycle
	// must be detected before the chain can deadlock on x's creation lock.
	err := c.Register("x", func(c Container) (any, error) {
		return c.Resolve("y")
	}, Singleton())
	require.NoError(t, err)

	err = c.Register("y", func(c Container) (any, error) {
		return c.Resolve("x")
	}, Transient())
	require.NoError(t, err)

	_, err = c.Resolve("x")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolveReady_CircularDependency(t *testing.T) {
	c := New()

	// a's factory goes through ResolveReady rather than Resolve; the cycle
	// must still be detected instead of blocking on a's creation lock.
	err := c.Register("a", func(c Container) (any, error) {
		if _, err := c.ResolveReady(context.Background(), "b"); err != nil {
			return nil, err
		}

		return &mockService{name: "a"}, nil
	}, Singleton())
	require.NoError(t, err)

	err = c.Register("b", func(c Container) (any, error) {
		return c.Resolve("a")
	}, Singleton())
	require.NoError(t, err)

	_, err = c.Resolve("a")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolveReady_SelfCycle(t *testing.T) {
	c := New()

	err := c.Register("a", func(c Container) (any, error) {
		return c.ResolveReady(context.Background(), "a")
	}, Singleton())
	require.NoError(t, err)

	_, err = c.ResolveReady(context.Background(), "a")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_DiamondDependency_NotACycle(t *testing.T) {
	c := New()

	// top -> left -> base, top -> right -> base: base is visited twice, but
	// never while it is still on the stack.
	err := c.Register("base", func(c Container) (any, error) {
		return "base", nil
	}, Transient())
	require.NoError(t, err)

	for _, name := range []string{"left", "right"} {
		err = c.Register(name, func(c Container) (any, error) {
			return c.Resolve("base")
		}, Transient())
		require.NoError(t, err)
	}

	err = c.Register("top", func(c Container) (any, error) {
		if _, err := c.Resolve("left"); err != nil {
			return nil, err
		}

		return c.Resolve("right")
	}, Transient())
	require.NoError(t, err)

	val, err := c.Resolve("top")
	assert.NoError(t, err)
	assert.Equal(t, "base", val)
}

func TestResolve_RepeatedSiblingDependency_NotACycle(t *testing.T) {
	c := New()

	err := c.Register("shared", func(c Container) (any, error) {
		return &plainValue{id: 1}, nil
	}, Singleton())
	require.NoError(t, err)

	err = c.Register("consumer", func(c Container) (any, error) {
		// Resolving the same dependency twice within one factory is fine: it
		// is popped between the calls.
		if _, err := c.Resolve("shared"); err != nil {
			return nil, err
		}

		return c.Resolve("shared")
	}, Transient())
	require.NoError(t, err)

	_, err = c.Resolve("consumer")
	assert.NoError(t, err)
}

func TestResolve_CycleDoesNotPoisonLaterResolves(t *testing.T) {
	c := New()

	err := c.Register("x", func(c Container) (any, error) {
		return c.Resolve("y")
	})
	require.NoError(t, err)

	err = c.Register("y", func(c Container) (any, error) {
		return c.Resolve("x")
	})
	require.NoError(t, err)

	err = c.Register("ok", func(c Container) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = c.Resolve("x")
	require.ErrorIs(t, err, ErrCircularDependencySentinel)

	// The failed chain must have unwound its stack completely; an unrelated
	// resolve on the same container works.
	val, err := c.Resolve("ok")
	assert.NoError(t, err)
	assert.Equal(t, "ok", val)

	// And the cyclic pair still fails deterministically rather than hanging.
	_, err = c.Resolve("y")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestResolve_CycleBrokenByLazy(t *testing.T) {
	c := New()

	type nodeA struct {
		b any
	}

	type nodeB struct {
		a *Lazy[*nodeA]
	}

	err := c.Register("b", func(c Container) (any, error) {
		// Lazy defers the back-reference, breaking the construction cycle.
		return &nodeB{a: NewLazy[*nodeA](c, "a")}, nil
	}, Singleton())
	require.NoError(t, err)

	err = c.Register("a", func(c Container) (any, error) {
		b, err := c.Resolve("b")
		if err != nil {
			return nil, err
		}

		return &nodeA{b: b}, nil
	}, Singleton())
	require.NoError(t, err)

	a, err := Resolve[*nodeA](c, "a")
	require.NoError(t, err)

	b, ok := a.b.(*nodeB)
	require.True(t, ok)

	// After construction the lazy edge resolves to the cached singleton.
	got, err := b.a.Get()
	require.NoError(t, err)
	assert.Same(t, a, got)
}
