package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civiscope/civiscope/internal/database"
	"github.com/civiscope/civiscope/internal/model"
)

func openTestDB(t *testing.T) *testDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	return &testDB{Plans: NewPlanRepo(db), Adjustments: NewAdjustmentRepo(db)}
}

type testDB struct {
	Plans       *PlanRepo
	Adjustments *AdjustmentRepo
}

func sampleZones() []*model.Zone {
	return []*model.Zone{
		{
			Name: "Central Park", Pos: model.Point{X: 30, Y: 14},
			Category: model.CategoryPark, Cost: 50,
			Impacts: map[string]float64{"Environment": 5, "Recreation": 4},
		},
		{
			Name: "Metro Hub", Pos: model.Point{X: 45, Y: 18},
			Category: model.CategoryTransport, Cost: 200,
			Impacts: map[string]float64{"Traffic": 7},
		},
	}
}

func sampleBudget() []model.BudgetItem {
	return []model.BudgetItem{
		{Name: "Parks & Recreation", Allocated: 400, Spent: 180, Category: model.CategoryPark},
		{Name: "Transit Authority", Allocated: 1200, Spent: 1150, Category: model.CategoryTransport},
	}
}

func TestPlanSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d := openTestDB(t)

	p, err := d.Plans.Save(ctx, "baseline", sampleZones(), sampleBudget())
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, 2, p.Zones)
	require.Equal(t, 2, p.Items)

	zones, items, err := d.Plans.Load(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	require.Len(t, items, 2)

	byName := map[string]*model.Zone{}
	for _, z := range zones {
		byName[z.Name] = z
	}
	cp := byName["Central Park"]
	require.NotNil(t, cp)
	require.Equal(t, model.Point{X: 30, Y: 14}, cp.Pos)
	require.Equal(t, model.CategoryPark, cp.Category)
	require.Equal(t, map[string]float64{"Environment": 5, "Recreation": 4}, cp.Impacts)
}

func TestPlanSaveSameNameReplaces(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d := openTestDB(t)

	first, err := d.Plans.Save(ctx, "draft", sampleZones(), sampleBudget())
	require.NoError(t, err)

	second, err := d.Plans.Save(ctx, "draft", sampleZones()[:1], nil)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	plans, err := d.Plans.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, second.ID, plans[0].ID)
	require.Equal(t, 1, plans[0].Zones)

	_, _, err = d.Plans.Load(ctx, first.ID)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanDelete(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d := openTestDB(t)

	p, err := d.Plans.Save(ctx, "temp", sampleZones(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Plans.Delete(ctx, p.ID))
	require.ErrorIs(t, d.Plans.Delete(ctx, p.ID), ErrPlanNotFound)

	_, _, err = d.Plans.Load(ctx, p.ID)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestAdjustmentLedger(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	d := openTestDB(t)

	a, err := d.Adjustments.Insert(ctx, Adjustment{
		ZoneName: "Central Park", Impact: "Environment",
		Proposed: 100, Years: 3, Yearly: 10, Total: 30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.False(t, a.CreatedAt.IsZero())

	_, err = d.Adjustments.Insert(ctx, Adjustment{
		ZoneName: "Metro Hub", Impact: "Traffic",
		Proposed: 250, Years: 5, Yearly: 8.75, Total: 43.75,
	})
	require.NoError(t, err)

	recent, err := d.Adjustments.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	one, err := d.Adjustments.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
}
