package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtware/draw-system/models"
)

type OverrideRepository interface {
	Create(ctx context.Context, override *models.AssignmentOverride) error
	ListByMatch(ctx context.Context, matchID int) ([]models.AssignmentOverride, error)
}

type postgresOverrideRepository struct {
	db *sql.DB
}

func NewPostgresOverrideRepository(db *sql.DB) OverrideRepository {
	return &postgresOverrideRepository{db: db}
}

func (r *postgresOverrideRepository) Create(ctx context.Context, override *models.AssignmentOverride) error {
	query := `
		INSERT INTO assignment_overrides (id, match_id, court_id, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		override.ID, override.MatchID, override.CourtID, override.Reason, override.CreatedBy,
	).Scan(&override.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record assignment override: %w", err)
	}
	return nil
}

func (r *postgresOverrideRepository) ListByMatch(ctx context.Context, matchID int) ([]models.AssignmentOverride, error) {
	query := `
		SELECT id, match_id, court_id, reason, created_by, created_at
		FROM assignment_overrides
		WHERE match_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides for match %d: %w", matchID, err)
	}
	defer rows.Close()

	var overrides []models.AssignmentOverride
	for rows.Next() {
		var o models.AssignmentOverride
		if err := rows.Scan(&o.ID, &o.MatchID, &o.CourtID, &o.Reason, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}
