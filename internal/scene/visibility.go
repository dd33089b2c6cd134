package scene

import (
	"math"
	"time"

	"github.com/civiscope/civiscope/internal/model"
)

// Rect is an axis-aligned world-space rectangle, inclusive on all
// edges.
type Rect struct {
	Min model.Point
	Max model.Point
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p model.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Viewport is the world-space window the map pane currently shows.
type Viewport struct {
	Min model.Point
	Max model.Point
}

// everything is the fallback rect used before a viewport is
// configured: all zones count as visible.
var everything = Rect{
	Min: model.Point{X: -math.MaxFloat64 / 2, Y: -math.MaxFloat64 / 2},
	Max: model.Point{X: math.MaxFloat64 / 2, Y: math.MaxFloat64 / 2},
}

// Tracker computes the visible rectangle and rate-limits how often it
// is recomputed: only when the accumulated scroll distance passes a
// threshold AND a minimum interval has elapsed since the last
// evaluation. Skipped evaluations are dropped, never queued.
type Tracker struct {
	viewport    *Viewport
	margin      float64
	rect        Rect
	evaluated   bool
	scrollAccum float64
	distance    float64
	minInterval time.Duration
	lastEval    time.Time
}

// NewTracker builds a tracker. margin expands the viewport on all four
// sides; distance and minInterval are the debounce thresholds.
func NewTracker(margin, distance float64, minInterval time.Duration) *Tracker {
	return &Tracker{margin: margin, distance: distance, minInterval: minInterval}
}

// SetViewport replaces the tracked viewport.
func (t *Tracker) SetViewport(v Viewport) {
	t.viewport = &v
}

// Margin returns the configured expansion margin.
func (t *Tracker) Margin() float64 { return t.margin }

// AddScroll accumulates a scroll delta toward the distance threshold.
func (t *Tracker) AddScroll(delta model.Point) {
	t.scrollAccum += math.Abs(delta.X) + math.Abs(delta.Y)
}

// ShouldEvaluate reports whether a visibility pass is due. The first
// pass always runs; afterwards both debounce conditions must hold.
func (t *Tracker) ShouldEvaluate(now time.Time) bool {
	if !t.evaluated {
		return true
	}
	if t.scrollAccum < t.distance {
		return false
	}
	return now.Sub(t.lastEval) >= t.minInterval
}

// Evaluate recomputes the visible rectangle from the viewport corners
// expanded by the margin, resets the scroll accumulator and returns
// the new rect. With no viewport configured the rect covers
// everything.
func (t *Tracker) Evaluate(now time.Time) Rect {
	if t.viewport == nil {
		t.rect = everything
	} else {
		t.rect = Rect{
			Min: model.Point{X: t.viewport.Min.X - t.margin, Y: t.viewport.Min.Y - t.margin},
			Max: model.Point{X: t.viewport.Max.X + t.margin, Y: t.viewport.Max.Y + t.margin},
		}
	}
	t.evaluated = true
	t.scrollAccum = 0
	t.lastEval = now
	return t.rect
}

// VisibleRect returns the last evaluated rectangle.
func (t *Tracker) VisibleRect() Rect {
	if !t.evaluated {
		return everything
	}
	return t.rect
}

// IsVisible tests the zone's position against the last evaluated
// rectangle.
func (t *Tracker) IsVisible(z *model.Zone) bool {
	return t.VisibleRect().Contains(z.Pos)
}
