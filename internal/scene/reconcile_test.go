package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civiscope/civiscope/internal/model"
)

func testTracker(t *testing.T, vp Viewport) *Tracker {
	t.Helper()
	tr := NewTracker(0, 1, 0)
	tr.SetViewport(vp)
	tr.Evaluate(time.Now())
	return tr
}

func TestReconcileAcquiresVisibleReleasesHidden(t *testing.T) {
	t.Parallel()

	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	pool := NewPool(4, nil)
	r := NewReconciler(pool, tr, nil)

	zones := []*model.Zone{
		zoneAt("a", 1, 1),
		zoneAt("b", 5, 5),
		zoneAt("far", 100, 100),
	}
	stats := r.Reconcile(zones, "")
	require.Equal(t, 2, stats.Acquired)
	require.Equal(t, 0, stats.Released)
	require.True(t, r.IsActive("a"))
	require.True(t, r.IsActive("b"))
	require.False(t, r.IsActive("far"))

	// pool + active set partition the handles
	require.Equal(t, pool.Total(), pool.Idle()+r.ActiveCount())

	// zone b wanders off screen
	zones[1].Pos = model.Point{X: 50, Y: 50}
	stats = r.Reconcile(zones, "")
	require.Equal(t, 0, stats.Acquired)
	require.Equal(t, 1, stats.Released)
	require.False(t, r.IsActive("b"))
	require.Equal(t, pool.Total(), pool.Idle()+r.ActiveCount())
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	pool := NewPool(4, nil)
	r := NewReconciler(pool, tr, nil)

	zones := []*model.Zone{zoneAt("a", 1, 1), zoneAt("b", 2, 2)}
	first := r.Reconcile(zones, "")
	require.Equal(t, 2, first.Acquired)

	second := r.Reconcile(zones, "")
	require.Zero(t, second.Acquired)
	require.Zero(t, second.Released)
	require.Equal(t, 2, r.ActiveCount())
}

func TestReconcilePoolOverflowScenario(t *testing.T) {
	t.Parallel()

	// capacity 2, three zones visible: two from the pool, one
	// synthesized, idle count afterwards zero
	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	pool := NewPool(2, nil)
	r := NewReconciler(pool, tr, nil)

	zones := []*model.Zone{zoneAt("a", 1, 1), zoneAt("b", 2, 2), zoneAt("c", 3, 3)}
	stats := r.Reconcile(zones, "")
	require.Equal(t, 3, stats.Acquired)
	require.Equal(t, 1, pool.Synthesized())
	require.Equal(t, 0, pool.Idle())
	require.Equal(t, 3, r.ActiveCount())
}

func TestReconcileSelectedRendersOnTop(t *testing.T) {
	t.Parallel()

	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	r := NewReconciler(NewPool(4, nil), tr, nil)

	zones := []*model.Zone{zoneAt("a", 1, 1), zoneAt("b", 2, 2), zoneAt("z", 3, 3)}
	r.Reconcile(zones, "b")

	handles := r.Handles()
	require.Len(t, handles, 3)
	last := handles[len(handles)-1]
	require.Equal(t, "b", last.Zone)
	require.True(t, last.Selected)
	for _, h := range handles[:len(handles)-1] {
		require.False(t, h.Selected)
	}
}

func TestReconcileConfigureErrorSkipsZoneOnly(t *testing.T) {
	t.Parallel()

	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	pool := NewPool(4, nil)
	r := NewReconciler(pool, tr, nil)

	zones := []*model.Zone{
		zoneAt("a", 1, 1),
		zoneAt("", 2, 2), // unnameable zone fails configure
		zoneAt("c", 3, 3),
	}
	stats := r.Reconcile(zones, "")
	require.Equal(t, 1, stats.Errors)
	require.Equal(t, 2, stats.Acquired)
	require.True(t, r.IsActive("a"))
	require.True(t, r.IsActive("c"))
	// the failed zone's handle went back to the pool
	require.Equal(t, pool.Total(), pool.Idle()+r.ActiveCount())
}

func TestReconcileRefreshesDraggedPositions(t *testing.T) {
	t.Parallel()

	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	r := NewReconciler(NewPool(2, nil), tr, nil)

	z := zoneAt("a", 1, 1)
	r.Reconcile([]*model.Zone{z}, "")
	z.Pos = model.Point{X: 4, Y: 4}
	stats := r.Reconcile([]*model.Zone{z}, "")
	require.Zero(t, stats.Acquired)

	h := r.Handles()[0]
	require.Equal(t, model.Point{X: 4, Y: 4}, h.Pos)
}

func TestTeardownReleasesEverything(t *testing.T) {
	t.Parallel()

	tr := testTracker(t, Viewport{Max: model.Point{X: 10, Y: 10}})
	pool := NewPool(2, nil)
	r := NewReconciler(pool, tr, nil)

	r.Reconcile([]*model.Zone{zoneAt("a", 1, 1), zoneAt("b", 2, 2), zoneAt("c", 3, 3)}, "")
	r.Teardown()
	require.Zero(t, r.ActiveCount())
	require.Equal(t, pool.Total(), pool.Idle())
}
