package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
)

type RegisterEntryInput struct {
	PlayerID *int `json:"player_id,omitempty"`
	TeamID   *int `json:"team_id,omitempty"`
	Seed     *int `json:"seed,omitempty"`
}

type EntryService interface {
	Register(ctx context.Context, divisionID int, input RegisterEntryInput) (*models.Entry, error)
	ListByDivision(ctx context.Context, divisionID int) ([]*models.Entry, error)
	SetSeed(ctx context.Context, entryID int, seed *int) (*models.Entry, error)
	Withdraw(ctx context.Context, entryID int) (*models.Entry, error)
	CreateTeam(ctx context.Context, name string, memberIDs []int) (*models.Team, error)
}

type entryService struct {
	entryRepo      repositories.EntryRepository
	teamRepo       repositories.TeamRepository
	divisionRepo   repositories.DivisionRepository
	tournamentRepo repositories.TournamentRepository
	drawStateRepo  repositories.DrawStateRepository
	log            zerolog.Logger
}

func NewEntryService(
	entryRepo repositories.EntryRepository,
	teamRepo repositories.TeamRepository,
	divisionRepo repositories.DivisionRepository,
	tournamentRepo repositories.TournamentRepository,
	drawStateRepo repositories.DrawStateRepository,
	log zerolog.Logger,
) EntryService {
	return &entryService{
		entryRepo:      entryRepo,
		teamRepo:       teamRepo,
		divisionRepo:   divisionRepo,
		tournamentRepo: tournamentRepo,
		drawStateRepo:  drawStateRepo,
		log:            log,
	}
}

func (s *entryService) Register(ctx context.Context, divisionID int, input RegisterEntryInput) (*models.Entry, error) {
	division, err := s.divisionRepo.GetByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, division.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentStatusRegistration && tournament.Status != models.TournamentStatusActive {
		return nil, ErrRegistrationClosed
	}

	switch division.EventType {
	case models.EventSingles:
		if input.PlayerID == nil || input.TeamID != nil {
			return nil, fmt.Errorf("%w: singles entries take a player", ErrDivisionEventType)
		}
	case models.EventDoubles:
		if input.TeamID == nil || input.PlayerID != nil {
			return nil, fmt.Errorf("%w: doubles entries take a team", ErrDivisionEventType)
		}
	}
	if input.Seed != nil && *input.Seed < 1 {
		return nil, ErrSeedOutOfRange
	}

	// Registrations landing after the draw started join as late adds; they
	// are excluded from pairing but kept on the roster.
	status := models.EntryStatusActive
	if _, err := s.drawStateRepo.GetByDivision(ctx, divisionID); err == nil {
		status = models.EntryStatusLateAdd
	} else if !errors.Is(err, repositories.ErrDrawStateNotFound) {
		return nil, err
	}

	entry := &models.Entry{
		DivisionID: divisionID,
		PlayerID:   input.PlayerID,
		TeamID:     input.TeamID,
		Seed:       input.Seed,
		Status:     status,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("division_id", divisionID).
		Int("entry_id", entry.ID).
		Str("status", string(status)).
		Msg("entry registered")
	return entry, nil
}

func (s *entryService) ListByDivision(ctx context.Context, divisionID int) ([]*models.Entry, error) {
	return s.entryRepo.ListByDivision(ctx, divisionID, nil)
}

func (s *entryService) SetSeed(ctx context.Context, entryID int, seed *int) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if seed != nil && *seed < 1 {
		return nil, ErrSeedOutOfRange
	}

	// Seeds only matter to round 1 pairing, so they freeze once the draw
	// exists.
	if _, err := s.drawStateRepo.GetByDivision(ctx, entry.DivisionID); err == nil {
		return nil, ErrSeedLocked
	} else if !errors.Is(err, repositories.ErrDrawStateNotFound) {
		return nil, err
	}

	if err := s.entryRepo.UpdateSeed(ctx, entryID, seed); err != nil {
		return nil, err
	}
	entry.Seed = seed
	return entry, nil
}

// Withdraw removes the entry from future pairing. Matches it already played
// keep their results; a withdrawn entry simply stops appearing in standings
// and new rounds.
func (s *entryService) Withdraw(ctx context.Context, entryID int) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status == models.EntryStatusWithdrawn {
		return nil, ErrEntryWithdrawn
	}
	if err := s.entryRepo.UpdateStatus(ctx, entryID, models.EntryStatusWithdrawn); err != nil {
		return nil, err
	}
	entry.Status = models.EntryStatusWithdrawn

	s.log.Warn().Int("entry_id", entryID).Int("division_id", entry.DivisionID).Msg("entry withdrawn")
	return entry, nil
}

func (s *entryService) CreateTeam(ctx context.Context, name string, memberIDs []int) (*models.Team, error) {
	if len(memberIDs) != 2 {
		return nil, ErrTeamSizeInvalid
	}
	team := &models.Team{Name: name}
	if err := s.teamRepo.Create(ctx, team, memberIDs); err != nil {
		return nil, err
	}
	return s.teamRepo.GetByID(ctx, team.ID)
}
