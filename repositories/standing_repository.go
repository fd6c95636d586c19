package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtware/draw-system/models"
)

var ErrStandingsNotFound = errors.New("no standings snapshot for division")

type StandingRepository interface {
	// ReplaceSnapshot swaps the stored snapshot for the division in one
	// transaction so readers never see a half-written table.
	ReplaceSnapshot(ctx context.Context, exec SQLExecutor, divisionID int, standings []models.Standing) error
	ListByDivision(ctx context.Context, divisionID int) ([]models.Standing, error)
	DeleteByDivision(ctx context.Context, exec SQLExecutor, divisionID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) ReplaceSnapshot(ctx context.Context, exec SQLExecutor, divisionID int, standings []models.Standing) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM standings WHERE division_id = $1`, divisionID); err != nil {
		return fmt.Errorf("failed to clear standings for division %d: %w", divisionID, err)
	}

	query := `
		INSERT INTO standings
			(division_id, entry_id, as_of_round, wins, losses, points_for, points_against, point_diff, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, s := range standings {
		if _, err := executor.ExecContext(ctx, query,
			divisionID, s.EntryID, s.AsOfRound, s.Wins, s.Losses,
			s.PointsFor, s.PointsAgainst, s.PointDiff, s.Rank); err != nil {
			return fmt.Errorf("failed to insert standing for entry %d: %w", s.EntryID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByDivision(ctx context.Context, divisionID int) ([]models.Standing, error) {
	query := `
		SELECT id, division_id, entry_id, as_of_round, wins, losses, points_for, points_against, point_diff, rank, updated_at
		FROM standings
		WHERE division_id = $1
		ORDER BY rank`

	rows, err := r.db.QueryContext(ctx, query, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for division %d: %w", divisionID, err)
	}
	defer rows.Close()

	var standings []models.Standing
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(&s.ID, &s.DivisionID, &s.EntryID, &s.AsOfRound, &s.Wins, &s.Losses,
			&s.PointsFor, &s.PointsAgainst, &s.PointDiff, &s.Rank, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(standings) == 0 {
		return nil, ErrStandingsNotFound
	}
	return standings, nil
}

func (r *postgresStandingRepository) DeleteByDivision(ctx context.Context, exec SQLExecutor, divisionID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM standings WHERE division_id = $1`, divisionID)
	if err != nil {
		return fmt.Errorf("failed to delete standings for division %d: %w", divisionID, err)
	}
	return nil
}
