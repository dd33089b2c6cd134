package scene

import (
	"time"

	"github.com/civiscope/civiscope/internal/model"
)

// Selection tracks the single selected zone and the in-flight drag.
// It is fed pointer events by the TUI and knows nothing about how
// they were produced.
type Selection struct {
	selected   string
	pressed    bool
	dragging   bool
	dragOffset model.Point

	doubleClickWindow time.Duration
	lastClickZone     string
	lastClickAt       time.Time
}

// Click describes the outcome of a pointer-down event.
type Click struct {
	Zone        string
	DoubleClick bool
}

// NewSelection builds a controller with the given double-click window.
func NewSelection(doubleClickWindow time.Duration) *Selection {
	return &Selection{doubleClickWindow: doubleClickWindow}
}

// PointerDown handles a press at pointer. A press over a zone selects
// it and captures the drag offset (zone position minus pointer); a
// press over empty ground clears the selection. A second press on the
// same zone within the window reports a double-click.
func (s *Selection) PointerDown(z *model.Zone, pointer model.Point, now time.Time) Click {
	s.pressed = true
	s.dragging = false

	if z == nil {
		s.selected = ""
		s.lastClickZone = ""
		return Click{}
	}

	double := z.Name == s.lastClickZone && now.Sub(s.lastClickAt) <= s.doubleClickWindow
	if double {
		// reset so a third click starts a fresh pair
		s.lastClickZone = ""
	} else {
		s.lastClickZone = z.Name
		s.lastClickAt = now
	}

	s.selected = z.Name
	s.dragOffset = z.Pos.Sub(pointer)
	return Click{Zone: z.Name, DoubleClick: double}
}

// Drag handles pointer motion while pressed, returning the zone's new
// position (pointer plus the captured offset). The second result is
// false when no drag is in progress.
func (s *Selection) Drag(pointer model.Point) (model.Point, bool) {
	if !s.pressed || s.selected == "" {
		return model.Point{}, false
	}
	s.dragging = true
	return pointer.Add(s.dragOffset), true
}

// PointerUp ends the press. It reports whether a drag just finished,
// which is the cue to refresh the impact display.
func (s *Selection) PointerUp() bool {
	wasDragging := s.pressed && s.dragging
	s.pressed = false
	s.dragging = false
	return wasDragging
}

// Selected returns the selected zone's name, or "".
func (s *Selection) Selected() string { return s.selected }

// Dragging reports whether a drag is in progress.
func (s *Selection) Dragging() bool { return s.pressed && s.dragging }

// Clear drops the selection and any in-flight drag.
func (s *Selection) Clear() {
	s.selected = ""
	s.pressed = false
	s.dragging = false
	s.lastClickZone = ""
}
