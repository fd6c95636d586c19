package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/courtware/draw-system/models"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrCourtOccupied  = errors.New("court is already occupied by an active match")
	ErrMatchImmutable = errors.New("match is in a terminal status")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByDivision(ctx context.Context, divisionID int, phase *models.MatchPhase, round *int) ([]*models.Match, error)
	ListOccupyingByTournament(ctx context.Context, tournamentID, excludeMatchID int) ([]*models.Match, error)
	ListFinishedSince(ctx context.Context, tournamentID int, since time.Time) ([]*models.Match, error)
	CountByDivisionAndPhase(ctx context.Context, divisionID int, phase models.MatchPhase) (int, error)

	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	SetActualStart(ctx context.Context, id int, startedAt time.Time) error
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, games []models.GameScore, live *models.GameScore, status models.MatchStatus, winner *models.MatchSide, endedAt *time.Time) error
	UpdateLiveScore(ctx context.Context, id int, live *models.GameScore) error
	UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, id int, nextMatchID *int, nextMatchSlot *models.MatchSide) error
	FillSlot(ctx context.Context, exec SQLExecutor, id int, slot models.MatchSide, entryID int) error

	// AssignCourt is guarded against double-booking: the update only lands
	// when no other court-occupying match holds the court.
	AssignCourt(ctx context.Context, id, courtID int) error
	ClearCourt(ctx context.Context, id int) error

	DeleteByDivision(ctx context.Context, exec SQLExecutor, divisionID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, division_id, phase, round, sequence, entry_a_id, entry_b_id, status, winner_side,
	games, live_score, court_id, next_match_id, next_match_slot, actual_start, actual_end, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var gamesRaw []byte
	var liveRaw []byte
	err := row.Scan(&m.ID, &m.DivisionID, &m.Phase, &m.Round, &m.Sequence, &m.EntryAID, &m.EntryBID,
		&m.Status, &m.WinnerSide, &gamesRaw, &liveRaw, &m.CourtID, &m.NextMatchID, &m.NextMatchSlot,
		&m.ActualStart, &m.ActualEnd, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(gamesRaw) > 0 {
		if err := json.Unmarshal(gamesRaw, &m.Games); err != nil {
			return nil, fmt.Errorf("failed to decode games for match %d: %w", m.ID, err)
		}
	}
	if len(liveRaw) > 0 {
		if err := json.Unmarshal(liveRaw, &m.LiveScore); err != nil {
			return nil, fmt.Errorf("failed to decode live score for match %d: %w", m.ID, err)
		}
	}
	return m, nil
}

func marshalGames(games []models.GameScore) ([]byte, error) {
	if games == nil {
		games = []models.GameScore{}
	}
	return json.Marshal(games)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	gamesRaw, err := marshalGames(m.Games)
	if err != nil {
		return fmt.Errorf("failed to encode games: %w", err)
	}
	query := `
		INSERT INTO matches
			(division_id, phase, round, sequence, entry_a_id, entry_b_id, status, winner_side,
			 games, court_id, next_match_id, next_match_slot, actual_start, actual_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		m.DivisionID, m.Phase, m.Round, m.Sequence, m.EntryAID, m.EntryBID, m.Status, m.WinnerSide,
		gamesRaw, m.CourtID, m.NextMatchID, m.NextMatchSlot, m.ActualStart, m.ActualEnd,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByDivision(ctx context.Context, divisionID int, phase *models.MatchPhase, round *int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE division_id = $1`
	args := []interface{}{divisionID}
	if phase != nil {
		args = append(args, *phase)
		query += fmt.Sprintf(` AND phase = $%d`, len(args))
	}
	if round != nil {
		args = append(args, *round)
		query += fmt.Sprintf(` AND round = $%d`, len(args))
	}
	query += ` ORDER BY phase, round, sequence`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for division %d: %w", divisionID, err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

// ListOccupyingByTournament returns every match in the tournament that is
// holding a court: ready, on court, or scheduled with a court assigned.
func (r *postgresMatchRepository) ListOccupyingByTournament(ctx context.Context, tournamentID, excludeMatchID int) ([]*models.Match, error) {
	query := `
		SELECT ` + prefixedMatchColumns("m") + `
		FROM matches m
		JOIN divisions d ON d.id = m.division_id
		WHERE d.tournament_id = $1
		  AND m.id <> $2
		  AND (m.status IN ('ready', 'on_court') OR (m.status = 'scheduled' AND m.court_id IS NOT NULL))
		ORDER BY m.id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, excludeMatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupying matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListFinishedSince(ctx context.Context, tournamentID int, since time.Time) ([]*models.Match, error) {
	query := `
		SELECT ` + prefixedMatchColumns("m") + `
		FROM matches m
		JOIN divisions d ON d.id = m.division_id
		WHERE d.tournament_id = $1
		  AND m.status IN ('completed', 'walkover')
		  AND m.actual_end IS NOT NULL
		  AND m.actual_end >= $2
		ORDER BY m.actual_end DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *postgresMatchRepository) CountByDivisionAndPhase(ctx context.Context, divisionID int, phase models.MatchPhase) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE division_id = $1 AND phase = $2`, divisionID, phase,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update match %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetActualStart(ctx context.Context, id int, startedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $2, actual_start = $3 WHERE id = $1`,
		id, models.MatchStatusOnCourt, startedAt)
	if err != nil {
		return fmt.Errorf("failed to start match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, games []models.GameScore, live *models.GameScore, status models.MatchStatus, winner *models.MatchSide, endedAt *time.Time) error {
	gamesRaw, err := marshalGames(games)
	if err != nil {
		return fmt.Errorf("failed to encode games: %w", err)
	}
	var liveRaw []byte
	if live != nil {
		if liveRaw, err = json.Marshal(live); err != nil {
			return fmt.Errorf("failed to encode live score: %w", err)
		}
	}
	result, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE matches
		SET games = $2, live_score = $3, status = $4, winner_side = $5, actual_end = $6
		WHERE id = $1`,
		id, gamesRaw, liveRaw, status, winner, endedAt)
	if err != nil {
		return fmt.Errorf("failed to update match %d score: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateLiveScore(ctx context.Context, id int, live *models.GameScore) error {
	var liveRaw []byte
	if live != nil {
		var err error
		if liveRaw, err = json.Marshal(live); err != nil {
			return fmt.Errorf("failed to encode live score: %w", err)
		}
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET live_score = $2 WHERE id = $1 AND status = 'on_court'`, id, liveRaw)
	if err != nil {
		return fmt.Errorf("failed to update match %d live score: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, id int, nextMatchID *int, nextMatchSlot *models.MatchSide) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET next_match_id = $2, next_match_slot = $3 WHERE id = $1`,
		id, nextMatchID, nextMatchSlot)
	if err != nil {
		return fmt.Errorf("failed to link match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) FillSlot(ctx context.Context, exec SQLExecutor, id int, slot models.MatchSide, entryID int) error {
	column := "entry_a_id"
	if slot == models.SideB {
		column = "entry_b_id"
	}
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET `+column+` = $2 WHERE id = $1`, id, entryID)
	if err != nil {
		return fmt.Errorf("failed to fill match %d slot %s: %w", id, slot, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) AssignCourt(ctx context.Context, id, courtID int) error {
	// The NOT EXISTS guard makes check-then-assign atomic at the row level:
	// a concurrent assignment to the same court loses and sees zero rows.
	query := `
		UPDATE matches SET court_id = $2
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM matches other
			WHERE other.court_id = $2
			  AND other.id <> $1
			  AND (other.status IN ('ready', 'on_court') OR (other.status = 'scheduled' AND other.court_id IS NOT NULL))
		  )`
	result, err := r.db.ExecContext(ctx, query, id, courtID)
	if err != nil {
		return fmt.Errorf("failed to assign court %d to match %d: %w", courtID, id, err)
	}
	return checkAffectedRows(result, ErrCourtOccupied)
}

func (r *postgresMatchRepository) ClearCourt(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE matches SET court_id = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear court for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByDivision(ctx context.Context, exec SQLExecutor, divisionID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE division_id = $1`, divisionID)
	if err != nil {
		return fmt.Errorf("failed to delete matches for division %d: %w", divisionID, err)
	}
	return nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func prefixedMatchColumns(alias string) string {
	return alias + `.id, ` + alias + `.division_id, ` + alias + `.phase, ` + alias + `.round, ` + alias + `.sequence, ` +
		alias + `.entry_a_id, ` + alias + `.entry_b_id, ` + alias + `.status, ` + alias + `.winner_side, ` +
		alias + `.games, ` + alias + `.live_score, ` + alias + `.court_id, ` + alias + `.next_match_id, ` +
		alias + `.next_match_slot, ` + alias + `.actual_start, ` + alias + `.actual_end, ` + alias + `.created_at`
}
