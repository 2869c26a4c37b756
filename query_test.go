package gantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryFixture(t *testing.T) Container {
	t.Helper()

	c := New()

	err := RegisterAll(c,
		Def("db", func(c Container) (any, error) {
			return &plainValue{id: 1}, nil
		}, Singleton(), WithGroup("storage"), WithMetadata("tier", "primary")),
		Def("cache", func(c Container) (any, error) {
			return &plainValue{id: 2}, nil
		}, Singleton(), WithGroup("storage")),
		Def("handler", func(c Container) (any, error) {
			return &plainValue{id: 3}, nil
		}, Transient(), WithGroup("api")),
	)
	require.NoError(t, err)

	return c
}

func TestQuery_ByLifecycle(t *testing.T) {
	c := newQueryFixture(t)

	results := Query(c, ServiceQuery{Lifecycle: "singleton"})
	assert.Len(t, results, 2)

	results = Query(c, ServiceQuery{Lifecycle: "transient"})
	require.Len(t, results, 1)
	assert.Equal(t, "handler", results[0].Name)
}

func TestQuery_ByGroup(t *testing.T) {
	c := newQueryFixture(t)

	names := QueryNames(c, ServiceQuery{Group: "storage"})
	assert.ElementsMatch(t, []string{"db", "cache"}, names)
}

func TestQuery_ByMetadata(t *testing.T) {
	c := newQueryFixture(t)

	results := Query(c, ServiceQuery{Metadata: map[string]string{"tier": "primary"}})
	require.Len(t, results, 1)
	assert.Equal(t, "db", results[0].Name)
}

func TestQuery_ByStarted(t *testing.T) {
	c := newQueryFixture(t)

	_, err := c.Resolve("db")
	require.NoError(t, err)

	started := true
	names := QueryNames(c, ServiceQuery{Started: &started})
	assert.Equal(t, []string{"db"}, names)
}

func TestQuery_CombinedCriteria(t *testing.T) {
	c := newQueryFixture(t)

	names := QueryNames(c, ServiceQuery{
		Lifecycle: "singleton",
		Group:     "storage",
		Metadata:  map[string]string{"tier": "primary"},
	})
	assert.Equal(t, []string{"db"}, names)
}

func TestQuery_NoMatches(t *testing.T) {
	c := newQueryFixture(t)

	results := Query(c, ServiceQuery{Group: "ghost"})
	assert.Empty(t, results)
}

func TestFindByGroup(t *testing.T) {
	c := newQueryFixture(t)

	results := FindByGroup(c, "api")
	require.Len(t, results, 1)
	assert.Equal(t, "handler", results[0].Name)
}

func TestFindByLifecycle(t *testing.T) {
	c := newQueryFixture(t)

	results := FindByLifecycle(c, "singleton")
	assert.Len(t, results, 2)
}

func TestFindStarted_FindNotStarted(t *testing.T) {
	c := newQueryFixture(t)

	assert.Empty(t, FindStarted(c))
	assert.Len(t, FindNotStarted(c), 3)

	_, err := c.Resolve("db")
	require.NoError(t, err)

	assert.Len(t, FindStarted(c), 1)
	assert.Len(t, FindNotStarted(c), 2)
}

func TestQuery_MultipleGroups(t *testing.T) {
	c := New()

	err := c.Register("svc", func(c Container) (any, error) {
		return &plainValue{}, nil
	}, WithGroup("api"), WithGroup("internal"))
	require.NoError(t, err)

	assert.Equal(t, []string{"svc"}, QueryNames(c, ServiceQuery{Group: "api"}))
	assert.Equal(t, []string{"svc"}, QueryNames(c, ServiceQuery{Group: "internal"}))
}
