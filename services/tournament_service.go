package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
	"github.com/courtware/draw-system/storage"
)

type CreateTournamentInput struct {
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	Venue             *string   `json:"venue,omitempty"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	RestWindowMinutes int       `json:"rest_window_minutes"`
}

type CreateDivisionInput struct {
	Name           string           `json:"name"`
	EventType      models.EventType `json:"event_type"`
	TotalRounds    int              `json:"total_rounds"`
	QualifierCount int              `json:"qualifier_count"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	UploadLogo(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error

	CreateDivision(ctx context.Context, tournamentID int, input CreateDivisionInput) (*models.Division, error)
	ListDivisions(ctx context.Context, tournamentID int) ([]*models.Division, error)
	DeleteDivision(ctx context.Context, divisionID int) error

	AddCourt(ctx context.Context, tournamentID int, name string) (*models.Court, error)
	ListCourts(ctx context.Context, tournamentID int) ([]*models.Court, error)
	RemoveCourt(ctx context.Context, courtID int) error
}

type tournamentService struct {
	tournamentRepo    repositories.TournamentRepository
	divisionRepo      repositories.DivisionRepository
	courtRepo         repositories.CourtRepository
	drawStateRepo     repositories.DrawStateRepository
	uploader          storage.FileUploader
	defaultRestWindow int
	log               zerolog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	divisionRepo repositories.DivisionRepository,
	courtRepo repositories.CourtRepository,
	drawStateRepo repositories.DrawStateRepository,
	uploader storage.FileUploader,
	defaultRestWindowMinutes int,
	log zerolog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:    tournamentRepo,
		divisionRepo:      divisionRepo,
		courtRepo:         courtRepo,
		drawStateRepo:     drawStateRepo,
		uploader:          uploader,
		defaultRestWindow: defaultRestWindowMinutes,
		log:               log,
	}
}

var tournamentTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentStatusSoon:         {models.TournamentStatusRegistration, models.TournamentStatusCanceled},
	models.TournamentStatusRegistration: {models.TournamentStatusActive, models.TournamentStatusCanceled},
	models.TournamentStatusActive:       {models.TournamentStatusCompleted, models.TournamentStatusCanceled},
	models.TournamentStatusCompleted:    {},
	models.TournamentStatusCanceled:     {},
}

func isValidTournamentTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range tournamentTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, ErrTournamentDatesRequired
	}
	if !input.StartDate.Before(input.EndDate) {
		return nil, fmt.Errorf("%w: start %s, end %s", ErrTournamentInvalidDateRange,
			input.StartDate.Format(time.RFC3339), input.EndDate.Format(time.RFC3339))
	}
	if input.RestWindowMinutes < 0 {
		return nil, ErrRestWindowNegative
	}
	restWindow := input.RestWindowMinutes
	if restWindow == 0 {
		restWindow = s.defaultRestWindow
	}

	tournament := &models.Tournament{
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Venue:             input.Venue,
		OrganizerID:       organizerID,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		RestWindowMinutes: restWindow,
		Status:            models.TournamentStatusSoon,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.log.Info().Int("tournament_id", tournament.ID).Str("name", tournament.Name).Msg("tournament created")
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateLogoURL(tournament)

	divisions, err := s.divisionRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range divisions {
		tournament.Divisions = append(tournament.Divisions, *d)
	}
	courts, err := s.courtRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range courts {
		tournament.Courts = append(tournament.Courts, *c)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populateLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidTournamentTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	tournament.Status = status

	s.log.Info().Int("tournament_id", id).Str("status", string(status)).Msg("tournament status changed")
	return tournament, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("tournaments/%d/logo-%s%s", id, uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}

	// Best effort cleanup of the previous object.
	if tournament.LogoKey != nil && *tournament.LogoKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *tournament.LogoKey); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", *tournament.LogoKey).Msg("failed to delete old logo")
		}
	}

	tournament.LogoKey = &result.Key
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if tournament.LogoKey != nil {
		if delErr := s.uploader.Delete(ctx, *tournament.LogoKey); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", *tournament.LogoKey).Msg("failed to delete logo")
		}
	}
	return nil
}

func (s *tournamentService) CreateDivision(ctx context.Context, tournamentID int, input CreateDivisionInput) (*models.Division, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	if input.EventType != models.EventSingles && input.EventType != models.EventDoubles {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrDivisionEventType, input.EventType)
	}

	division := &models.Division{
		TournamentID:   tournamentID,
		Name:           strings.TrimSpace(input.Name),
		EventType:      input.EventType,
		TotalRounds:    input.TotalRounds,
		QualifierCount: input.QualifierCount,
	}
	if err := s.divisionRepo.Create(ctx, division); err != nil {
		return nil, err
	}
	return division, nil
}

func (s *tournamentService) ListDivisions(ctx context.Context, tournamentID int) ([]*models.Division, error) {
	return s.divisionRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) DeleteDivision(ctx context.Context, divisionID int) error {
	// A division with a live draw must be reset first.
	if _, err := s.drawStateRepo.GetByDivision(ctx, divisionID); err == nil {
		return ErrDrawAlreadyGenerated
	} else if !errors.Is(err, repositories.ErrDrawStateNotFound) {
		return err
	}
	return s.divisionRepo.Delete(ctx, divisionID)
}

func (s *tournamentService) AddCourt(ctx context.Context, tournamentID int, name string) (*models.Court, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	court := &models.Court{TournamentID: tournamentID, Name: strings.TrimSpace(name)}
	if err := s.courtRepo.Create(ctx, court); err != nil {
		return nil, err
	}
	return court, nil
}

func (s *tournamentService) ListCourts(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	return s.courtRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) RemoveCourt(ctx context.Context, courtID int) error {
	return s.courtRepo.Delete(ctx, courtID)
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if t == nil || t.LogoKey == nil || *t.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}

func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported logo content type %q", contentType)
	}
}
