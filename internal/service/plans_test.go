package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civiscope/civiscope/internal/database"
	"github.com/civiscope/civiscope/internal/database/repository"
	"github.com/civiscope/civiscope/internal/model"
	"github.com/civiscope/civiscope/internal/sim"
	"github.com/civiscope/civiscope/internal/store"
)

func newPlanService(t *testing.T) *PlanService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))

	zones := store.NewZoneStore(nil)
	zones.LoadDefaults()
	budget := store.NewBudgetStore(nil)
	budget.LoadDefaults()

	return &PlanService{
		Plans:       repository.NewPlanRepo(db),
		Adjustments: repository.NewAdjustmentRepo(db),
		Zones:       zones,
		Budget:      budget,
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc := newPlanService(t)

	p, err := svc.Snapshot(ctx, "baseline")
	require.NoError(t, err)
	require.Equal(t, svc.Zones.Len(), p.Zones)

	// mutate the working state after the snapshot
	require.True(t, svc.Zones.Move("Central Park", model.Point{X: 1, Y: 1}))
	svc.Budget.Set(model.BudgetItem{Name: "Parks & Recreation", Allocated: 1, Spent: 1, Category: model.CategoryPark})

	require.NoError(t, svc.Restore(ctx, p.ID))

	z, ok := svc.Zones.Get("Central Park")
	require.True(t, ok)
	require.Equal(t, model.Point{X: 30, Y: 14}, z.Pos)

	item, ok := svc.Budget.Get("Parks & Recreation")
	require.True(t, ok)
	require.Equal(t, 400.0, item.Allocated)
}

func TestSnapshotClonesZones(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc := newPlanService(t)

	p, err := svc.Snapshot(ctx, "before")
	require.NoError(t, err)

	// editing the live zone after the snapshot must not change the plan
	require.True(t, svc.Zones.Move("Metro Hub", model.Point{X: 0, Y: 0}))

	zones, _, err := svc.Plans.Load(ctx, p.ID)
	require.NoError(t, err)
	for _, z := range zones {
		if z.Name == "Metro Hub" {
			require.Equal(t, model.Point{X: 45, Y: 18}, z.Pos)
			return
		}
	}
	t.Fatal("Metro Hub missing from snapshot")
}

func TestSnapshotRejectsEmptyName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newPlanService(t)

	_, err := svc.Snapshot(ctx, "   ")
	require.ErrorIs(t, err, ErrEmptyPlanName)
}

func TestApplyRecordsAdjustment(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc := newPlanService(t)

	// Central Park: cost 50, Environment base 5
	proj, err := svc.Apply(ctx, "Central Park", "Environment", 100, 3)
	require.NoError(t, err)
	require.Equal(t, 10.0, proj.Yearly)
	require.Equal(t, 30.0, proj.Total)

	history, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Central Park", history[0].ZoneName)
	require.Equal(t, 30.0, history[0].Total)
}

func TestApplyErrorsDoNotRecord(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc := newPlanService(t)

	_, err := svc.Apply(ctx, "Central Park", "Nonexistent", 100, 3)
	require.ErrorIs(t, err, sim.ErrNoImpact)

	_, err = svc.Apply(ctx, "Nowhere", "Environment", 100, 3)
	require.Error(t, err)

	history, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestRestoreUnknownPlan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newPlanService(t)

	err := svc.Restore(ctx, "no-such-id")
	require.ErrorIs(t, err, repository.ErrPlanNotFound)
}
