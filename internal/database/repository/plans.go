package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/civiscope/civiscope/internal/database"
	"github.com/civiscope/civiscope/internal/model"
)

// ErrPlanNotFound is returned when a plan id does not exist.
var ErrPlanNotFound = errors.New("plan not found")

// PlanRepo handles plan snapshots.
type PlanRepo struct {
	db *sql.DB
}

func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// Save stores a snapshot of zones and budget items under name. Saving
// with an existing name replaces that plan.
func (r *PlanRepo) Save(ctx context.Context, name string, zones []*model.Zone, items []model.BudgetItem) (Plan, error) {
	p := Plan{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: database.Now(),
		Zones:     len(zones),
		Items:     len(items),
	}
	err := database.WithTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE name = ?`, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plans(id, name, created_at) VALUES (?, ?, ?)`,
			p.ID, p.Name, p.CreatedAt); err != nil {
			return err
		}
		for _, z := range zones {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plan_zones(plan_id, name, x, y, category, cost) VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, z.Name, z.Pos.X, z.Pos.Y, z.Category.String(), z.Cost); err != nil {
				return err
			}
			names := make([]string, 0, len(z.Impacts))
			for n := range z.Impacts {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO plan_impacts(plan_id, zone_name, impact, value) VALUES (?, ?, ?, ?)`,
					p.ID, z.Name, n, z.Impacts[n]); err != nil {
					return err
				}
			}
		}
		for _, it := range items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plan_budget(plan_id, name, allocated, spent, category) VALUES (?, ?, ?, ?, ?)`,
				p.ID, it.Name, it.Allocated, it.Spent, it.Category.String()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Plan{}, err
	}
	return p, nil
}

// List returns all plans, newest first.
func (r *PlanRepo) List(ctx context.Context) ([]Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT p.id, p.name, p.created_at,
	  (SELECT COUNT(*) FROM plan_zones z WHERE z.plan_id = p.id),
	  (SELECT COUNT(*) FROM plan_budget b WHERE b.plan_id = p.id)
	FROM plans p ORDER BY p.created_at DESC, p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.Zones, &p.Items); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Load returns the zones and budget items stored under plan id.
func (r *PlanRepo) Load(ctx context.Context, id string) ([]*model.Zone, []model.BudgetItem, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, nil, err
	}
	if exists == 0 {
		return nil, nil, ErrPlanNotFound
	}

	zones, err := r.loadZones(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := r.loadBudget(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return zones, items, nil
}

func (r *PlanRepo) loadZones(ctx context.Context, id string) ([]*model.Zone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, x, y, category, cost FROM plan_zones WHERE plan_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []*model.Zone
	byName := map[string]*model.Zone{}
	for rows.Next() {
		var z model.Zone
		var cat string
		if err := rows.Scan(&z.Name, &z.Pos.X, &z.Pos.Y, &cat, &z.Cost); err != nil {
			return nil, err
		}
		c, err := model.ParseCategory(cat)
		if err != nil {
			return nil, err
		}
		z.Category = c
		z.Impacts = map[string]float64{}
		zones = append(zones, &z)
		byName[z.Name] = &z
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	irows, err := r.db.QueryContext(ctx,
		`SELECT zone_name, impact, value FROM plan_impacts WHERE plan_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var zone, impact string
		var value float64
		if err := irows.Scan(&zone, &impact, &value); err != nil {
			return nil, err
		}
		if z, ok := byName[zone]; ok {
			z.Impacts[impact] = value
		}
	}
	return zones, irows.Err()
}

func (r *PlanRepo) loadBudget(ctx context.Context, id string) ([]model.BudgetItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, allocated, spent, category FROM plan_budget WHERE plan_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.BudgetItem
	for rows.Next() {
		var it model.BudgetItem
		var cat string
		if err := rows.Scan(&it.Name, &it.Allocated, &it.Spent, &cat); err != nil {
			return nil, err
		}
		c, err := model.ParseCategory(cat)
		if err != nil {
			return nil, err
		}
		it.Category = c
		items = append(items, it)
	}
	return items, rows.Err()
}

// Delete removes a plan and its rows.
func (r *PlanRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}
