package scene

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/civiscope/civiscope/internal/model"
)

// Reconciler diffs the active set of displayed zones against the
// currently visible set, releasing handles for zones that scrolled
// out and acquiring handles for zones that scrolled in.
type Reconciler struct {
	pool    *Pool
	tracker *Tracker
	active  map[string]*Handle
	logger  *zap.Logger
}

// Stats summarizes one reconciliation pass.
type Stats struct {
	Visible  int
	Acquired int
	Released int
	Errors   int
}

// NewReconciler builds a reconciler over pool and tracker.
func NewReconciler(pool *Pool, tracker *Tracker, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		pool:    pool,
		tracker: tracker,
		active:  make(map[string]*Handle),
		logger:  logger,
	}
}

// Reconcile runs one pass over zones. selected names the zone to flag
// for elevated render priority, or "" for none. A per-zone configure
// failure is logged and skipped; it never aborts the rest of the pass.
func (r *Reconciler) Reconcile(zones []*model.Zone, selected string) Stats {
	var stats Stats

	visible := make(map[string]*model.Zone, len(zones))
	for _, z := range zones {
		if z == nil {
			continue
		}
		if r.tracker.IsVisible(z) {
			visible[z.Name] = z
		}
	}
	stats.Visible = len(visible)

	// release zones that scrolled out
	for name, h := range r.active {
		if _, ok := visible[name]; !ok {
			r.pool.Release(h)
			delete(r.active, name)
			stats.Released++
		}
	}

	// acquire newly visible zones, refresh the rest
	for name, z := range visible {
		h, ok := r.active[name]
		acquired := false
		if !ok {
			h = r.pool.Acquire()
			acquired = true
		}
		if err := configure(h, z, name == selected); err != nil {
			stats.Errors++
			r.logger.Error("configure zone handle", zap.String("zone", name), zap.Error(err))
			if acquired {
				r.pool.Release(h)
			}
			continue
		}
		if acquired {
			r.active[name] = h
			stats.Acquired++
		}
	}
	return stats
}

// configure copies a zone's visual state onto its handle.
func configure(h *Handle, z *model.Zone, selected bool) error {
	if z.Name == "" {
		return fmt.Errorf("zone without a name")
	}
	h.Zone = z.Name
	h.Pos = z.Pos
	h.Color = z.Category.Color()
	h.Glyph = z.Category.Glyph()
	h.Label = z.Name
	h.Selected = selected
	return nil
}

// ActiveCount returns the number of zones currently backed by a
// handle.
func (r *Reconciler) ActiveCount() int { return len(r.active) }

// IsActive reports whether the named zone holds a handle.
func (r *Reconciler) IsActive(name string) bool {
	_, ok := r.active[name]
	return ok
}

// Handles returns the active handles in render order: stable by name,
// selected handle last so it draws on top.
func (r *Reconciler) Handles() []*Handle {
	out := make([]*Handle, 0, len(r.active))
	for _, h := range r.active {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Selected != out[j].Selected {
			return out[j].Selected
		}
		return out[i].Zone < out[j].Zone
	})
	return out
}

// Teardown releases every active handle back to the pool.
func (r *Reconciler) Teardown() {
	for name, h := range r.active {
		r.pool.Release(h)
		delete(r.active, name)
	}
}
