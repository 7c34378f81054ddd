package session_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgo/internal/detour/rectmesh"
	"github.com/udisondev/navgo/internal/filter"
	"github.com/udisondev/navgo/internal/navmesh"
	"github.com/udisondev/navgo/internal/session"
	"github.com/udisondev/navgo/internal/testutil"
)

func newRegistry(t *testing.T, opts session.Options) (*session.Registry, *testutil.MemSource) {
	t.Helper()
	src := testutil.TwoPolySource(t)
	engine := rectmesh.New()
	cache := navmesh.NewCache(engine, src, 2)
	return session.NewRegistry(engine, cache, filter.NewProvider(filter.DefaultCosts()), src.Format(), opts), src
}

func TestCreateIdempotent(t *testing.T) {
	r, _ := newRegistry(t, session.DefaultOptions())

	s1 := r.Create(1, filter.StateNormal)
	s2 := r.Create(1, filter.StateDead)

	assert.Same(t, s1, s2)
	assert.Equal(t, filter.StateNormal, s2.State(), "second create must not reset state")
	assert.Equal(t, 1, r.Count())
}

func TestDestroyThenGetFails(t *testing.T) {
	r, _ := newRegistry(t, session.DefaultOptions())
	s := r.Create(7, filter.StateNormal)
	_, err := s.EnsureQuery(testutil.TestMapID)
	require.NoError(t, err)

	r.Destroy(7)

	_, err = r.Get(7)
	assert.ErrorIs(t, err, session.ErrNoClientSession)
	assert.Zero(t, r.Count())
	assert.Zero(t, s.QueryCount())
	assert.Nil(t, s.Path)

	// Повторное удаление безопасно.
	r.Destroy(7)
	assert.Zero(t, r.Count())
}

func TestBuffersSizedFromOptions(t *testing.T) {
	r, _ := newRegistry(t, session.Options{PolyPathSize: 8, PointPathSize: 5, MaxSearchNodes: 100})
	s := r.Create(1, filter.StateNormal)

	assert.Len(t, s.PolyPath, 8)
	assert.Equal(t, 5, s.Path.Cap())
	assert.Equal(t, 5, s.Scratch.Cap())
}

func TestEnsureQueryReused(t *testing.T) {
	r, src := newRegistry(t, session.DefaultOptions())
	a := r.Create(1, filter.StateNormal)
	b := r.Create(2, filter.StateNormal)

	qa1, err := a.EnsureQuery(testutil.TestMapID)
	require.NoError(t, err)
	qa2, err := a.EnsureQuery(testutil.TestMapID)
	require.NoError(t, err)
	qb, err := b.EnsureQuery(testutil.TestMapID)
	require.NoError(t, err)

	assert.Same(t, qa1, qa2)
	assert.NotSame(t, qa1, qb, "sessions must not share query objects")
	assert.Equal(t, 1, a.QueryCount())
	assert.Equal(t, int64(1), src.Opens(), "mesh is loaded once for all sessions")
}

func TestEnsureQueryErrors(t *testing.T) {
	t.Run("unknown map", func(t *testing.T) {
		r, _ := newRegistry(t, session.DefaultOptions())
		_, err := r.Create(1, filter.StateNormal).EnsureQuery(42)
		assert.ErrorIs(t, err, navmesh.ErrNotFound)
	})

	t.Run("query init", func(t *testing.T) {
		r, _ := newRegistry(t, session.Options{MaxSearchNodes: 1 << 20})
		s := r.Create(1, filter.StateNormal)
		_, err := s.EnsureQuery(testutil.TestMapID)
		assert.ErrorIs(t, err, session.ErrEngineQueryInitFailed)
		assert.Zero(t, s.QueryCount())
	})
}

func TestConfigureFilter(t *testing.T) {
	r, _ := newRegistry(t, session.DefaultOptions())
	s := r.Create(1, filter.StateNormal)
	shared := s.Filter()

	require.NoError(t, s.ConfigureFilter(filter.StateNormal, map[uint8]float32{testutil.GroundArea: 9}))
	custom := s.Filter()
	require.NotSame(t, shared, custom)
	assert.InDelta(t, 9, custom.AreaCost(testutil.GroundArea), 1e-6)
	assert.InDelta(t, 1, shared.AreaCost(testutil.GroundArea), 1e-6, "shared filter stays immutable")

	require.NoError(t, s.ConfigureFilter(filter.StateDead, nil))
	assert.Equal(t, filter.StateDead, s.State())
	assert.Same(t, r.Create(2, filter.StateDead).Filter(), s.Filter())
}

func TestConfigureFilterRejectsBadCosts(t *testing.T) {
	r, _ := newRegistry(t, session.DefaultOptions())
	s := r.Create(1, filter.StateNormal)
	require.NoError(t, s.ConfigureFilter(filter.StateNormal, map[uint8]float32{testutil.GroundArea: 2}))
	before := s.Filter()

	for _, cost := range []float32{-1, 0, float32(math.NaN()), float32(math.Inf(1))} {
		err := s.ConfigureFilter(filter.StateDead, map[uint8]float32{testutil.GroundArea: cost})
		assert.ErrorIs(t, err, session.ErrInvalidAreaCost, "cost %v", cost)
	}

	assert.Equal(t, filter.StateNormal, s.State(), "rejected update keeps the state")
	assert.Same(t, before, s.Filter())
}

func TestConcurrentCreateDestroy(t *testing.T) {
	r, _ := newRegistry(t, session.DefaultOptions())

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Go(func() {
			id := uint64(i)
			r.Create(id, filter.StateNormal)
			r.Create(id, filter.StateNormal)
			if i%2 == 0 {
				r.Destroy(id)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 32, r.Count())
}
