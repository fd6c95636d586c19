package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtware/draw-system/models"
)

var ErrDivisionNotFound = errors.New("division not found")

type DivisionRepository interface {
	Create(ctx context.Context, d *models.Division) error
	GetByID(ctx context.Context, id int) (*models.Division, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Division, error)
	Delete(ctx context.Context, id int) error
}

type postgresDivisionRepository struct {
	db *sql.DB
}

func NewPostgresDivisionRepository(db *sql.DB) DivisionRepository {
	return &postgresDivisionRepository{db: db}
}

const divisionColumns = `id, tournament_id, name, event_type, total_rounds, qualifier_count, created_at`

func scanDivision(row interface{ Scan(...interface{}) error }) (*models.Division, error) {
	d := &models.Division{}
	err := row.Scan(&d.ID, &d.TournamentID, &d.Name, &d.EventType, &d.TotalRounds, &d.QualifierCount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *postgresDivisionRepository) Create(ctx context.Context, d *models.Division) error {
	query := `
		INSERT INTO divisions (tournament_id, name, event_type, total_rounds, qualifier_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		d.TournamentID, d.Name, d.EventType, d.TotalRounds, d.QualifierCount,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create division: %w", err)
	}
	return nil
}

func (r *postgresDivisionRepository) GetByID(ctx context.Context, id int) (*models.Division, error) {
	query := `SELECT ` + divisionColumns + ` FROM divisions WHERE id = $1`
	d, err := scanDivision(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to scan division %d: %w", id, err)
	}
	return d, nil
}

func (r *postgresDivisionRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Division, error) {
	query := `SELECT ` + divisionColumns + ` FROM divisions WHERE tournament_id = $1 ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list divisions: %w", err)
	}
	defer rows.Close()

	var divisions []*models.Division
	for rows.Next() {
		d, err := scanDivision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan division row: %w", err)
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

func (r *postgresDivisionRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM divisions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete division %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrDivisionNotFound)
}
