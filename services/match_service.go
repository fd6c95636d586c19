package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
)

type MatchService interface {
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	StartMatch(ctx context.Context, matchID int) (*models.Match, error)
	UpdateLiveScore(ctx context.Context, matchID int, live models.GameScore) (*models.Match, error)
	SubmitScore(ctx context.Context, matchID int, games []models.GameScore) (*models.Match, error)
	ApproveResult(ctx context.Context, matchID int) (*models.Match, error)
	RejectResult(ctx context.Context, matchID int) (*models.Match, error)
	Walkover(ctx context.Context, matchID int, winner models.MatchSide) (*models.Match, error)
}

type matchService struct {
	db            *sql.DB
	matchRepo     repositories.MatchRepository
	entryRepo     repositories.EntryRepository
	drawStateRepo repositories.DrawStateRepository
	standingRepo  repositories.StandingRepository
	hub           *draws.Hub
	log           zerolog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	entryRepo repositories.EntryRepository,
	drawStateRepo repositories.DrawStateRepository,
	standingRepo repositories.StandingRepository,
	hub *draws.Hub,
	log zerolog.Logger,
) MatchService {
	return &matchService{
		db:            db,
		matchRepo:     matchRepo,
		entryRepo:     entryRepo,
		drawStateRepo: drawStateRepo,
		standingRepo:  standingRepo,
		hub:           hub,
		log:           log,
	}
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, matchID)
}

func (s *matchService) StartMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.CanTransition(models.MatchStatusOnCourt) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidMatchTransition, match.Status, models.MatchStatusOnCourt)
	}
	if match.EntryAID == nil || match.EntryBID == nil {
		return nil, ErrMatchSlotsIncomplete
	}

	now := time.Now()
	if err := s.matchRepo.SetActualStart(ctx, matchID, now); err != nil {
		return nil, err
	}
	match.Status = models.MatchStatusOnCourt
	match.ActualStart = &now

	s.broadcast(match)
	return match, nil
}

func (s *matchService) UpdateLiveScore(ctx context.Context, matchID int, live models.GameScore) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusOnCourt {
		return nil, fmt.Errorf("%w: live score requires %s, match is %s",
			ErrInvalidMatchTransition, models.MatchStatusOnCourt, match.Status)
	}
	if err := s.matchRepo.UpdateLiveScore(ctx, matchID, &live); err != nil {
		return nil, err
	}
	match.LiveScore = &live

	s.broadcast(match)
	return match, nil
}

// SubmitScore records the games and parks the match at pending_signoff; the
// result only counts after a referee approves it.
func (s *matchService) SubmitScore(ctx context.Context, matchID int, games []models.GameScore) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.CanTransition(models.MatchStatusPendingSignoff) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidMatchTransition, match.Status, models.MatchStatusPendingSignoff)
	}
	winner, err := gamesWinner(games)
	if err != nil {
		return nil, err
	}

	err = s.matchRepo.UpdateScore(ctx, nil, matchID, games, nil, models.MatchStatusPendingSignoff, &winner, nil)
	if err != nil {
		return nil, err
	}
	match.Games = games
	match.LiveScore = nil
	match.Status = models.MatchStatusPendingSignoff
	match.WinnerSide = &winner

	s.broadcast(match)
	return match, nil
}

// ApproveResult finalizes a pending result. Completion triggers the
// downstream effects: a standings refresh in the swiss phase, winner
// advancement in the knockout phase.
func (s *matchService) ApproveResult(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.CanTransition(models.MatchStatusCompleted) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidMatchTransition, match.Status, models.MatchStatusCompleted)
	}
	if match.WinnerSide == nil {
		return nil, ErrScoreRequired
	}

	now := time.Now()
	match.Status = models.MatchStatusCompleted
	match.ActualEnd = &now
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.UpdateScore(ctx, tx, matchID, match.Games, nil, models.MatchStatusCompleted, match.WinnerSide, &now); err != nil {
			return err
		}
		return s.applyCompletion(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("match_id", matchID).
		Str("winner_side", string(*match.WinnerSide)).
		Msg("match result approved")
	s.broadcast(match)
	return match, nil
}

func (s *matchService) RejectResult(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPendingSignoff {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidMatchTransition, match.Status, models.MatchStatusOnCourt)
	}

	// The disputed games are wiped; the match goes back on court for replay
	// or re-entry of the score.
	err = s.matchRepo.UpdateScore(ctx, nil, matchID, nil, nil, models.MatchStatusOnCourt, nil, nil)
	if err != nil {
		return nil, err
	}
	match.Games = nil
	match.Status = models.MatchStatusOnCourt
	match.WinnerSide = nil

	s.log.Warn().Int("match_id", matchID).Msg("match result rejected")
	s.broadcast(match)
	return match, nil
}

// Walkover forfeits the match in favor of the given side. It is allowed from
// any non-terminal status.
func (s *matchService) Walkover(ctx context.Context, matchID int, winner models.MatchSide) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsTerminal() {
		return nil, ErrMatchAlreadyDecided
	}
	if winner != models.SideA && winner != models.SideB {
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidMatchTransition, winner)
	}

	now := time.Now()
	match.Games = nil
	match.Status = models.MatchStatusWalkover
	match.WinnerSide = &winner
	match.ActualEnd = &now
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.UpdateScore(ctx, tx, matchID, nil, nil, models.MatchStatusWalkover, &winner, &now); err != nil {
			return err
		}
		return s.applyCompletion(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn().
		Int("match_id", matchID).
		Str("winner_side", string(winner)).
		Msg("walkover recorded")
	s.broadcast(match)
	return match, nil
}

// applyCompletion runs the in-transaction side effects of a decided match.
// The caller must have applied the final status and winner to match before
// invoking it.
func (s *matchService) applyCompletion(ctx context.Context, tx *sql.Tx, match *models.Match) error {
	switch match.Phase {
	case models.PhaseSwiss:
		return s.refreshStandings(ctx, tx, match)
	case models.PhaseKnockout:
		if match.NextMatchID == nil || match.NextMatchSlot == nil {
			// No feeder target means this was the final.
			return s.markDrawComplete(ctx, tx, match.DivisionID)
		}
		winnerEntry := match.WinnerEntryID()
		if winnerEntry == nil {
			return fmt.Errorf("match %d decided without a resolvable winner entry", match.ID)
		}
		return s.matchRepo.FillSlot(ctx, tx, *match.NextMatchID, *match.NextMatchSlot, *winnerEntry)
	}
	return nil
}

func (s *matchService) markDrawComplete(ctx context.Context, tx *sql.Tx, divisionID int) error {
	state, err := s.drawStateRepo.GetByDivision(ctx, divisionID)
	if err != nil {
		return err
	}
	state.Phase = models.DrawPhaseComplete
	return s.drawStateRepo.Update(ctx, tx, state)
}

func (s *matchService) refreshStandings(ctx context.Context, tx *sql.Tx, updated *models.Match) error {
	divisionID := updated.DivisionID
	state, err := s.drawStateRepo.GetByDivision(ctx, divisionID)
	if err != nil {
		return err
	}
	entries, err := s.entryRepo.ListByDivision(ctx, divisionID, nil)
	if err != nil {
		return err
	}
	swiss := models.PhaseSwiss
	matches, err := s.matchRepo.ListByDivision(ctx, divisionID, &swiss, nil)
	if err != nil {
		return err
	}

	// The result being approved is not committed yet, so the fetched list
	// still holds the old row. Substitute the in-memory version.
	matchValues := derefMatches(matches)
	for i := range matchValues {
		if matchValues[i].ID == updated.ID {
			matchValues[i] = *updated
			break
		}
	}

	standings, err := draws.CalculateStandings(derefEntries(entries), matchValues, state.CurrentRound)
	if err != nil {
		return err
	}
	return s.standingRepo.ReplaceSnapshot(ctx, tx, divisionID, standings)
}

func (s *matchService) broadcast(match *models.Match) {
	s.hub.BroadcastToRoom(divisionRoom(match.DivisionID), draws.EventMatchUpdated, match)
}
