// Package service coordinates the in-memory stores with sqlite-backed
// plan snapshots and the adjustment ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civiscope/civiscope/internal/database/repository"
	"github.com/civiscope/civiscope/internal/model"
	"github.com/civiscope/civiscope/internal/sim"
	"github.com/civiscope/civiscope/internal/store"
)

// ErrEmptyPlanName is returned when saving a plan without a name.
var ErrEmptyPlanName = errors.New("plan name required")

// PlanService snapshots and restores the working city state.
type PlanService struct {
	Plans       *repository.PlanRepo
	Adjustments *repository.AdjustmentRepo
	Zones       *store.ZoneStore
	Budget      *store.BudgetStore
	Logger      *zap.Logger
}

func (s *PlanService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Snapshot stores the current zones and budget under name. Zones are
// cloned so later edits do not bleed into the saved rows.
func (s *PlanService) Snapshot(ctx context.Context, name string) (repository.Plan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Plan{}, ErrEmptyPlanName
	}

	live := s.Zones.Zones()
	zones := make([]*model.Zone, 0, len(live))
	for _, z := range live {
		zones = append(zones, z.Clone())
	}

	p, err := s.Plans.Save(ctx, name, zones, s.Budget.Items())
	if err != nil {
		return repository.Plan{}, fmt.Errorf("save plan %q: %w", name, err)
	}
	s.log().Info("plan saved",
		zap.String("plan", p.Name),
		zap.Int("zones", p.Zones),
		zap.Int("budget_items", p.Items))
	return p, nil
}

// Restore replaces the working stores with the plan's rows.
func (s *PlanService) Restore(ctx context.Context, id string) error {
	zones, items, err := s.Plans.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	s.Zones.Replace(zones)
	s.Budget.Replace(items)
	s.log().Info("plan restored", zap.String("id", id), zap.Int("zones", len(zones)))
	return nil
}

// List returns saved plans, newest first.
func (s *PlanService) List(ctx context.Context) ([]repository.Plan, error) {
	return s.Plans.List(ctx)
}

// Delete removes a saved plan.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	return s.Plans.Delete(ctx, id)
}

// Apply projects an impact for a zone and records it in the
// adjustment ledger. The working zone data is not modified.
func (s *PlanService) Apply(ctx context.Context, zoneName, impact string, proposed float64, years int) (sim.Projection, error) {
	z, ok := s.Zones.Get(zoneName)
	if !ok {
		return sim.Projection{}, fmt.Errorf("unknown zone %q", zoneName)
	}
	proj, err := sim.Project(z, impact, proposed, years)
	if err != nil {
		return sim.Projection{}, err
	}
	if _, err := s.Adjustments.Insert(ctx, repository.Adjustment{
		ZoneName: z.Name,
		Impact:   proj.Impact,
		Proposed: proj.Proposed,
		Years:    proj.Years,
		Yearly:   proj.Yearly,
		Total:    proj.Total,
	}); err != nil {
		return sim.Projection{}, fmt.Errorf("record adjustment: %w", err)
	}
	s.log().Info("adjustment recorded",
		zap.String("zone", z.Name),
		zap.String("impact", proj.Impact),
		zap.Float64("total", proj.Total))
	return proj, nil
}

// History returns the most recent recorded adjustments.
func (s *PlanService) History(ctx context.Context, limit int) ([]repository.Adjustment, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Adjustments.ListRecent(ctx, limit)
}
