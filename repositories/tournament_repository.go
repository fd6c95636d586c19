package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtware/draw-system/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrCourtNotFound          = errors.New("court not found")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, description, venue, organizer_id, start_date, end_date, rest_window_minutes, status, created_at, logo_key`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Venue, &t.OrganizerID,
		&t.StartDate, &t.EndDate, &t.RestWindowMinutes, &t.Status, &t.CreatedAt, &t.LogoKey)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, description, venue, organizer_id, start_date, end_date, rest_window_minutes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Description, t.Venue, t.OrganizerID, t.StartDate, t.EndDate, t.RestWindowMinutes, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY start_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $2 WHERE id = $1`, id, logoKey)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error)
	Delete(ctx context.Context, id int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) Create(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts (tournament_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, court.TournamentID, court.Name).Scan(&court.ID, &court.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}
	return nil
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	court := &models.Court{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, name, created_at FROM courts WHERE id = $1`, id,
	).Scan(&court.ID, &court.TournamentID, &court.Name, &court.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to scan court %d: %w", id, err)
	}
	return court, nil
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, name, created_at FROM courts WHERE tournament_id = $1 ORDER BY name, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	defer rows.Close()

	var courts []*models.Court
	for rows.Next() {
		court := &models.Court{}
		if err := rows.Scan(&court.ID, &court.TournamentID, &court.Name, &court.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", err)
		}
		courts = append(courts, court)
	}
	return courts, rows.Err()
}

func (r *postgresCourtRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete court %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}
