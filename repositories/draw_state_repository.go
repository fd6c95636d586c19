package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/courtware/draw-system/models"
)

var (
	ErrDrawStateNotFound = errors.New("draw state not found")
	ErrDrawStateConflict = errors.New("draw state already exists for division")
)

type DrawStateRepository interface {
	Create(ctx context.Context, exec SQLExecutor, state *models.DrawState) error
	GetByDivision(ctx context.Context, divisionID int) (*models.DrawState, error)
	Update(ctx context.Context, exec SQLExecutor, state *models.DrawState) error
	DeleteByDivision(ctx context.Context, exec SQLExecutor, divisionID int) error
}

type postgresDrawStateRepository struct {
	db *sql.DB
}

func NewPostgresDrawStateRepository(db *sql.DB) DrawStateRepository {
	return &postgresDrawStateRepository{db: db}
}

func (r *postgresDrawStateRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDrawStateRepository) Create(ctx context.Context, exec SQLExecutor, state *models.DrawState) error {
	query := `
		INSERT INTO draw_states (division_id, current_round, total_rounds, qualifier_count, phase, bye_entry_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		state.DivisionID, state.CurrentRound, state.TotalRounds, state.QualifierCount,
		state.Phase, pq.Array(state.ByeEntryIDs),
	).Scan(&state.ID, &state.UpdatedAt)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return ErrDrawStateConflict
		}
		return fmt.Errorf("failed to create draw state: %w", err)
	}
	return nil
}

func (r *postgresDrawStateRepository) GetByDivision(ctx context.Context, divisionID int) (*models.DrawState, error) {
	query := `
		SELECT id, division_id, current_round, total_rounds, qualifier_count, phase, bye_entry_ids, updated_at
		FROM draw_states WHERE division_id = $1`

	state := &models.DrawState{}
	var byes pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, divisionID).Scan(
		&state.ID, &state.DivisionID, &state.CurrentRound, &state.TotalRounds,
		&state.QualifierCount, &state.Phase, &byes, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDrawStateNotFound
		}
		return nil, fmt.Errorf("failed to get draw state for division %d: %w", divisionID, err)
	}
	state.ByeEntryIDs = make([]int, len(byes))
	for i, id := range byes {
		state.ByeEntryIDs[i] = int(id)
	}
	return state, nil
}

func (r *postgresDrawStateRepository) Update(ctx context.Context, exec SQLExecutor, state *models.DrawState) error {
	query := `
		UPDATE draw_states
		SET current_round = $2, phase = $3, bye_entry_ids = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		state.ID, state.CurrentRound, state.Phase, pq.Array(state.ByeEntryIDs))
	if err != nil {
		return fmt.Errorf("failed to update draw state %d: %w", state.ID, err)
	}
	return checkAffectedRows(result, ErrDrawStateNotFound)
}

func (r *postgresDrawStateRepository) DeleteByDivision(ctx context.Context, exec SQLExecutor, divisionID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM draw_states WHERE division_id = $1`, divisionID)
	if err != nil {
		return fmt.Errorf("failed to delete draw state for division %d: %w", divisionID, err)
	}
	return nil
}
