package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	cases := map[string]Category{
		"Park":       CategoryPark,
		"park":       CategoryPark,
		" Housing ":  CategoryHousing,
		"TRANSPORT":  CategoryTransport,
		"education":  CategoryEducation,
		"Health":     CategoryHealth,
		"commercial": CategoryCommercial,
		"Other":      CategoryOther,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseCategory("Casino")
	require.ErrorIs(t, err, ErrUnknownCategory)
	_, err = ParseCategory("")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategoryTablesAreTotal(t *testing.T) {
	t.Parallel()

	seenColor := map[string]Category{}
	seenGlyph := map[rune]Category{}
	for _, c := range Categories() {
		color := string(c.Color())
		require.NotEmpty(t, color, c.String())
		if prev, dup := seenColor[color]; dup {
			t.Fatalf("color %s shared by %s and %s", color, prev, c)
		}
		seenColor[color] = c

		glyph := c.Glyph()
		require.NotZero(t, glyph, c.String())
		if prev, dup := seenGlyph[glyph]; dup {
			t.Fatalf("glyph %c shared by %s and %s", glyph, prev, c)
		}
		seenGlyph[glyph] = c

		// name round-trips
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
	}
}

func TestZoneClone(t *testing.T) {
	t.Parallel()

	z := &Zone{
		Name:     "Central Park",
		Pos:      Point{X: 3, Y: 4},
		Category: CategoryPark,
		Cost:     50,
		Impacts:  map[string]float64{"Environment": 5},
	}
	c := z.Clone()
	c.Impacts["Environment"] = -1
	c.Pos.X = 99
	require.Equal(t, 5.0, z.Impacts["Environment"])
	require.Equal(t, 3.0, z.Pos.X)
}

func TestBudgetItemRemaining(t *testing.T) {
	t.Parallel()

	b := BudgetItem{Name: "Parks", Allocated: 100, Spent: 40}
	require.Equal(t, 60.0, b.Remaining())
	require.False(t, b.OverBudget())

	b.Spent = 130
	require.Equal(t, -30.0, b.Remaining())
	require.True(t, b.OverBudget())
}
