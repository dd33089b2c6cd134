package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civiscope/civiscope/internal/model"
)

func parkZone() *model.Zone {
	return &model.Zone{
		Name:     "Central Park",
		Category: model.CategoryPark,
		Cost:     50,
		Impacts:  map[string]float64{"Environment": 5.0, "Recreation": 3.0},
	}
}

func TestProjectLinearExtrapolation(t *testing.T) {
	t.Parallel()

	p, err := Project(parkZone(), "Environment", 100, 3)
	require.NoError(t, err)
	require.InDelta(t, 10.0, p.Yearly, 1e-9)
	require.InDelta(t, 30.0, p.Total, 1e-9)
	require.Equal(t, "Central Park", p.Zone)
	require.Equal(t, 3, p.Years)
}

func TestProjectNegativeImpact(t *testing.T) {
	t.Parallel()

	z := parkZone()
	z.Impacts["Traffic"] = -2.0
	p, err := Project(z, "Traffic", 25, 4)
	require.NoError(t, err)
	require.InDelta(t, -1.0, p.Yearly, 1e-9)
	require.InDelta(t, -4.0, p.Total, 1e-9)
}

func TestProjectZeroCostIsDefinedError(t *testing.T) {
	t.Parallel()

	z := parkZone()
	z.Cost = 0
	_, err := Project(z, "Environment", 100, 3)
	require.ErrorIs(t, err, ErrZeroCost)
}

func TestProjectUnknownImpact(t *testing.T) {
	t.Parallel()

	_, err := Project(parkZone(), "Noise", 100, 3)
	require.ErrorIs(t, err, ErrNoImpact)
}

func TestProjectRejectsNegativeYears(t *testing.T) {
	t.Parallel()

	_, err := Project(parkZone(), "Environment", 100, -1)
	require.Error(t, err)
}

func TestProjectZeroYears(t *testing.T) {
	t.Parallel()

	p, err := Project(parkZone(), "Environment", 100, 0)
	require.NoError(t, err)
	require.InDelta(t, 10.0, p.Yearly, 1e-9)
	require.Zero(t, p.Total)
}
