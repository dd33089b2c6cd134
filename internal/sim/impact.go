// Package sim computes budget-impact projections. Projections are
// read-only: they never write back into the zone or budget stores.
package sim

import (
	"errors"
	"fmt"

	"github.com/civiscope/civiscope/internal/model"
)

// ErrZeroCost marks a projection against a zone whose nominal cost is
// zero; the ratio proposed/cost is undefined there.
var ErrZeroCost = errors.New("undefined impact: zone has zero cost")

// ErrNoImpact marks a projection for an impact category the zone does
// not carry.
var ErrNoImpact = errors.New("zone has no score for impact category")

// Projection is the result of a linear impact extrapolation.
type Projection struct {
	Zone       string
	Impact     string
	BaseImpact float64
	Proposed   float64
	Years      int
	Yearly     float64
	Total      float64
}

// Project extrapolates a zone's base impact for one category under a
// proposed budget: yearly = base * (proposed / cost), total = yearly *
// years.
func Project(zone *model.Zone, impact string, proposed float64, years int) (Projection, error) {
	if years < 0 {
		return Projection{}, fmt.Errorf("years must be non-negative, got %d", years)
	}
	base, ok := zone.Impacts[impact]
	if !ok {
		return Projection{}, fmt.Errorf("%w: %s/%s", ErrNoImpact, zone.Name, impact)
	}
	if zone.Cost == 0 {
		return Projection{}, fmt.Errorf("%w: %s", ErrZeroCost, zone.Name)
	}
	yearly := base * (proposed / zone.Cost)
	return Projection{
		Zone:       zone.Name,
		Impact:     impact,
		BaseImpact: base,
		Proposed:   proposed,
		Years:      years,
		Yearly:     yearly,
		Total:      yearly * float64(years),
	}, nil
}
