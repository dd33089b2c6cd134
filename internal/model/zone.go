package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Point is a position in world space. The map viewport and zone
// positions share this coordinate system; screen cells are derived
// from it only at render time.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p minus q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Zone is a placeable city-budget item: a named marker on the map with
// a nominal cost and a set of named impact scores.
type Zone struct {
	Name     string
	Pos      Point
	Category Category
	Cost     float64
	Impacts  map[string]float64
}

// Clone returns a deep copy, used when snapshotting a plan so later
// edits don't bleed into the saved state.
func (z *Zone) Clone() *Zone {
	c := *z
	c.Impacts = make(map[string]float64, len(z.Impacts))
	for k, v := range z.Impacts {
		c.Impacts[k] = v
	}
	return &c
}

// Category classifies a zone. The set is closed: parsing an unknown
// name is an error, and the color/glyph tables below cover every
// member, so there is no "unknown type" render path.
type Category int

const (
	CategoryPark Category = iota
	CategoryHousing
	CategoryTransport
	CategoryEducation
	CategoryHealth
	CategoryCommercial
	CategoryOther
	categoryCount
)

// ErrUnknownCategory is returned by ParseCategory for names outside
// the closed set.
var ErrUnknownCategory = fmt.Errorf("unknown zone category")

var categoryNames = [categoryCount]string{
	CategoryPark:       "Park",
	CategoryHousing:    "Housing",
	CategoryTransport:  "Transport",
	CategoryEducation:  "Education",
	CategoryHealth:     "Health",
	CategoryCommercial: "Commercial",
	CategoryOther:      "Other",
}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return "Other"
	}
	return categoryNames[c]
}

// ParseCategory maps a CSV token to a Category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	name := strings.TrimSpace(s)
	for i, n := range categoryNames {
		if strings.EqualFold(name, n) {
			return Category(i), nil
		}
	}
	return CategoryOther, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Catppuccin Mocha accents, matching the rest of the palette in the
// TUI theme.
var categoryColors = [categoryCount]lipgloss.Color{
	CategoryPark:       "#a6e3a1", // green
	CategoryHousing:    "#fab387", // peach
	CategoryTransport:  "#89b4fa", // blue
	CategoryEducation:  "#cba6f7", // mauve
	CategoryHealth:     "#f38ba8", // red
	CategoryCommercial: "#f9e2af", // yellow
	CategoryOther:      "#7f849c", // overlay1
}

// Color returns the display color for the category. Total over the
// enum: out-of-range values clamp to Other rather than falling through
// to a sentinel.
func (c Category) Color() lipgloss.Color {
	if c < 0 || c >= categoryCount {
		return categoryColors[CategoryOther]
	}
	return categoryColors[c]
}

var categoryGlyphs = [categoryCount]rune{
	CategoryPark:       '♣',
	CategoryHousing:    '⌂',
	CategoryTransport:  '▣',
	CategoryEducation:  '◆',
	CategoryHealth:     '✚',
	CategoryCommercial: '▲',
	CategoryOther:      '●',
}

// Glyph returns the map marker rune for the category.
func (c Category) Glyph() rune {
	if c < 0 || c >= categoryCount {
		return categoryGlyphs[CategoryOther]
	}
	return categoryGlyphs[c]
}
