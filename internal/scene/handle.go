// Package scene maintains the set of display handles backing visible
// zones: a recycling pool, a debounced viewport visibility test, the
// reconciler that diffs the active set against the visible set, and
// the pointer selection/drag state machine. The package is pure
// bookkeeping; rendering happens in the TUI from the handles it hands
// out.
package scene

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/civiscope/civiscope/internal/model"
)

// Handle is a reusable display slot for one on-screen zone. Every
// handle is owned by exactly one of the pool's idle queue or the
// reconciler's active set; callers render from it but never free it
// directly.
type Handle struct {
	id        int
	synthetic bool
	inUse     bool

	Zone     string
	Pos      model.Point
	Color    lipgloss.Color
	Glyph    rune
	Label    string
	Selected bool
}

// Synthetic reports whether the handle was created on the overflow
// path rather than during pool warm-up.
func (h *Handle) Synthetic() bool { return h.synthetic }

// InUse reports whether the handle currently backs an active zone.
func (h *Handle) InUse() bool { return h.inUse }

func (h *Handle) reset() {
	h.inUse = false
	h.Zone = ""
	h.Pos = model.Point{}
	h.Color = ""
	h.Glyph = 0
	h.Label = ""
	h.Selected = false
}
