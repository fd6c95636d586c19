package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtware/draw-system/models"
	"github.com/lib/pq"
)

var (
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryConflict      = errors.New("player or team is already entered in this division")
	ErrEntrySideViolation = errors.New("entry must reference exactly one of player or team")
	ErrTeamNotFound       = errors.New("team not found")
)

type EntryRepository interface {
	Create(ctx context.Context, e *models.Entry) error
	GetByID(ctx context.Context, id int) (*models.Entry, error)
	ListByDivision(ctx context.Context, divisionID int, statusFilter *models.EntryStatus) ([]*models.Entry, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Entry, error)
	UpdateSeed(ctx context.Context, id int, seed *int) error
	UpdateStatus(ctx context.Context, id int, status models.EntryStatus) error
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

const entryColumns = `id, division_id, player_id, team_id, seed, status, created_at`

func scanEntry(row interface{ Scan(...interface{}) error }) (*models.Entry, error) {
	e := &models.Entry{}
	err := row.Scan(&e.ID, &e.DivisionID, &e.PlayerID, &e.TeamID, &e.Seed, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEntryRepository) Create(ctx context.Context, e *models.Entry) error {
	if !e.IsValidSide() {
		return ErrEntrySideViolation
	}
	query := `
		INSERT INTO entries (division_id, player_id, team_id, seed, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		e.DivisionID, e.PlayerID, e.TeamID, e.Seed, e.Status,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		switch pqErrorCode(err) {
		case pqUniqueViolation:
			return ErrEntryConflict
		case pqCheckViolation:
			return ErrEntrySideViolation
		}
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

func (r *postgresEntryRepository) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan entry %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresEntryRepository) ListByDivision(ctx context.Context, divisionID int, statusFilter *models.EntryStatus) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE division_id = $1`
	args := []interface{}{divisionID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY seed NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for division %d: %w", divisionID, err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *postgresEntryRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]*models.Entry, error) {
	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresEntryRepository) UpdateSeed(ctx context.Context, id int, seed *int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE entries SET seed = $2 WHERE id = $1`, id, seed)
	if err != nil {
		return fmt.Errorf("failed to update entry %d seed: %w", id, err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) UpdateStatus(ctx context.Context, id int, status models.EntryStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE entries SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update entry %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team, memberIDs []int) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

// Create inserts the team and its member rows in one transaction; team
// membership is immutable after creation.
func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team, memberIDs []int) error {
	if len(memberIDs) < 2 {
		return errors.New("a team needs at least two members")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin team transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO teams (name) VALUES ($1) RETURNING id, created_at`, team.Name,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	for _, memberID := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, player_id) VALUES ($1, $2)`, team.ID, memberID); err != nil {
			return fmt.Errorf("failed to add team member %d: %w", memberID, err)
		}
	}
	return tx.Commit()
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	teams, err := r.ListByIDs(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrTeamNotFound
	}
	return teams[0], nil
}

// ListByIDs loads teams with their members in one pass.
func (r *postgresTeamRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT t.id, t.name, t.created_at, u.id, u.first_name, u.last_name, u.email, u.role, u.created_at
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		JOIN users u ON u.id = tm.player_id
		WHERE t.id = ANY($1)
		ORDER BY t.id, u.id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*models.Team)
	var ordered []*models.Team
	for rows.Next() {
		var teamID int
		var teamName string
		team := &models.Team{}
		member := models.User{}
		err := rows.Scan(&teamID, &teamName, &team.CreatedAt,
			&member.ID, &member.FirstName, &member.LastName, &member.Email, &member.Role, &member.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		existing, ok := byID[teamID]
		if !ok {
			team.ID = teamID
			team.Name = teamName
			byID[teamID] = team
			ordered = append(ordered, team)
			existing = team
		}
		existing.Members = append(existing.Members, member)
	}
	return ordered, rows.Err()
}
