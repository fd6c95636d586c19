package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
)

type StandingsService interface {
	// GetStandings returns the stored snapshot, falling back to a fresh
	// computation when no snapshot exists yet.
	GetStandings(ctx context.Context, divisionID int) ([]models.Standing, error)
	Recompute(ctx context.Context, divisionID int) ([]models.Standing, error)
	Qualifiers(ctx context.Context, divisionID int) ([]models.Qualifier, error)
}

type standingsService struct {
	db            *sql.DB
	entryRepo     repositories.EntryRepository
	matchRepo     repositories.MatchRepository
	drawStateRepo repositories.DrawStateRepository
	standingRepo  repositories.StandingRepository
	hub           *draws.Hub
	log           zerolog.Logger
}

func NewStandingsService(
	db *sql.DB,
	entryRepo repositories.EntryRepository,
	matchRepo repositories.MatchRepository,
	drawStateRepo repositories.DrawStateRepository,
	standingRepo repositories.StandingRepository,
	hub *draws.Hub,
	log zerolog.Logger,
) StandingsService {
	return &standingsService{
		db:            db,
		entryRepo:     entryRepo,
		matchRepo:     matchRepo,
		drawStateRepo: drawStateRepo,
		standingRepo:  standingRepo,
		hub:           hub,
		log:           log,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, divisionID int) ([]models.Standing, error) {
	standings, err := s.standingRepo.ListByDivision(ctx, divisionID)
	if err == nil {
		return standings, nil
	}
	if !errors.Is(err, repositories.ErrStandingsNotFound) {
		return nil, err
	}
	return s.Recompute(ctx, divisionID)
}

func (s *standingsService) Recompute(ctx context.Context, divisionID int) ([]models.Standing, error) {
	standings, err := s.compute(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.standingRepo.ReplaceSnapshot(ctx, tx, divisionID, standings)
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(divisionRoom(divisionID), draws.EventStandingsUpdated, standings)
	return standings, nil
}

func (s *standingsService) Qualifiers(ctx context.Context, divisionID int) ([]models.Qualifier, error) {
	state, err := s.drawStateRepo.GetByDivision(ctx, divisionID)
	if err != nil {
		if errors.Is(err, repositories.ErrDrawStateNotFound) {
			return nil, ErrDrawNotGenerated
		}
		return nil, err
	}
	if state.QualifierCount == 0 {
		return nil, ErrKnockoutDisabled
	}

	swiss := models.PhaseSwiss
	matches, err := s.matchRepo.ListByDivision(ctx, divisionID, &swiss, nil)
	if err != nil {
		return nil, err
	}
	if !draws.IsPhaseComplete(derefMatches(matches), state.TotalRounds) {
		return nil, ErrSwissNotComplete
	}

	standings, err := s.compute(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	return draws.SelectQualifiers(standings, state.QualifierCount)
}

func (s *standingsService) compute(ctx context.Context, divisionID int) ([]models.Standing, error) {
	state, err := s.drawStateRepo.GetByDivision(ctx, divisionID)
	if err != nil {
		if errors.Is(err, repositories.ErrDrawStateNotFound) {
			return nil, ErrDrawNotGenerated
		}
		return nil, err
	}
	entries, err := s.entryRepo.ListByDivision(ctx, divisionID, nil)
	if err != nil {
		return nil, err
	}
	swiss := models.PhaseSwiss
	matches, err := s.matchRepo.ListByDivision(ctx, divisionID, &swiss, nil)
	if err != nil {
		return nil, err
	}
	return draws.CalculateStandings(derefEntries(entries), derefMatches(matches), state.CurrentRound)
}
