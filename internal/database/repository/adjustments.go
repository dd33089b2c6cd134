package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/civiscope/civiscope/internal/database"
)

// AdjustmentRepo handles the applied-projection ledger.
type AdjustmentRepo struct {
	db *sql.DB
}

func NewAdjustmentRepo(db *sql.DB) *AdjustmentRepo {
	return &AdjustmentRepo{db: db}
}

// Insert records an adjustment and fills in its id and timestamp.
func (r *AdjustmentRepo) Insert(ctx context.Context, a Adjustment) (Adjustment, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = database.Now()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO adjustments(id, zone_name, impact, proposed, years, yearly, total, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ZoneName, a.Impact, a.Proposed, a.Years, a.Yearly, a.Total, a.CreatedAt)
	if err != nil {
		return Adjustment{}, err
	}
	return a, nil
}

// ListRecent returns up to limit adjustments, newest first.
func (r *AdjustmentRepo) ListRecent(ctx context.Context, limit int) ([]Adjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, zone_name, impact, proposed, years, yearly, total, created_at
	FROM adjustments ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.ZoneName, &a.Impact, &a.Proposed, &a.Years, &a.Yearly, &a.Total, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
