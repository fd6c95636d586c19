package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
	"github.com/courtware/draw-system/scheduling"
)

// OverrideInput is the organizer's justification for assigning a court past
// warning-level conflicts.
type OverrideInput struct {
	Reason    string `json:"reason"`
	CreatedBy int    `json:"-"`
}

// AssignmentResult reports what an assignment attempt found and did.
type AssignmentResult struct {
	Match     *models.Match              `json:"match"`
	Conflicts []models.Conflict          `json:"conflicts,omitempty"`
	Assigned  bool                       `json:"assigned"`
	Override  *models.AssignmentOverride `json:"override,omitempty"`
}

type ScheduleService interface {
	CheckAssignment(ctx context.Context, matchID, courtID int) ([]models.Conflict, error)
	AssignCourt(ctx context.Context, matchID, courtID int, override *OverrideInput) (*AssignmentResult, error)
	ClearAssignment(ctx context.Context, matchID int) (*models.Match, error)
	ListOverrides(ctx context.Context, matchID int) ([]models.AssignmentOverride, error)
}

type scheduleService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	entryRepo      repositories.EntryRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	courtRepo      repositories.CourtRepository
	divisionRepo   repositories.DivisionRepository
	tournamentRepo repositories.TournamentRepository
	overrideRepo   repositories.OverrideRepository
	locks          *scheduling.CourtLocks
	hub            *draws.Hub
	log            zerolog.Logger
}

func NewScheduleService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	entryRepo repositories.EntryRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	courtRepo repositories.CourtRepository,
	divisionRepo repositories.DivisionRepository,
	tournamentRepo repositories.TournamentRepository,
	overrideRepo repositories.OverrideRepository,
	hub *draws.Hub,
	log zerolog.Logger,
) ScheduleService {
	return &scheduleService{
		db:             db,
		matchRepo:      matchRepo,
		entryRepo:      entryRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		courtRepo:      courtRepo,
		divisionRepo:   divisionRepo,
		tournamentRepo: tournamentRepo,
		overrideRepo:   overrideRepo,
		locks:          scheduling.NewCourtLocks(),
		hub:            hub,
		log:            log,
	}
}

func (s *scheduleService) CheckAssignment(ctx context.Context, matchID, courtID int) ([]models.Conflict, error) {
	input, _, err := s.buildCheckInput(ctx, matchID, courtID)
	if err != nil {
		return nil, err
	}
	return scheduling.CheckAssignment(*input), nil
}

// AssignCourt runs the conflict check and the assignment under a per-court
// lock, so two concurrent assignments to the same court serialize instead of
// both passing the check.
func (s *scheduleService) AssignCourt(ctx context.Context, matchID, courtID int, override *OverrideInput) (*AssignmentResult, error) {
	unlock := s.locks.Lock(courtID)
	defer unlock()

	input, match, err := s.buildCheckInput(ctx, matchID, courtID)
	if err != nil {
		return nil, err
	}
	if match.IsTerminal() {
		return nil, ErrMatchAlreadyDecided
	}

	conflicts := scheduling.CheckAssignment(*input)
	result := &AssignmentResult{Match: match, Conflicts: conflicts}

	if scheduling.HasBlocking(conflicts) {
		return result, ErrAssignmentBlocked
	}
	if len(conflicts) > 0 {
		if override == nil {
			return result, ErrOverrideRequired
		}
		if strings.TrimSpace(override.Reason) == "" {
			return result, ErrOverrideReasonRequired
		}
	}

	if err := s.matchRepo.AssignCourt(ctx, matchID, courtID); err != nil {
		return result, err
	}
	match.CourtID = &courtID
	if match.Status == models.MatchStatusScheduled {
		if err := s.matchRepo.UpdateStatus(ctx, nil, matchID, models.MatchStatusReady); err != nil {
			return result, err
		}
		match.Status = models.MatchStatusReady
	}
	result.Assigned = true

	if override != nil && len(conflicts) > 0 {
		record := &models.AssignmentOverride{
			ID:        uuid.NewString(),
			MatchID:   matchID,
			CourtID:   courtID,
			Reason:    override.Reason,
			CreatedBy: override.CreatedBy,
		}
		if err := s.overrideRepo.Create(ctx, record); err != nil {
			return result, err
		}
		result.Override = record
		s.log.Warn().
			Int("match_id", matchID).
			Int("court_id", courtID).
			Str("override_id", record.ID).
			Str("reason", record.Reason).
			Msg("court assignment overridden past warnings")
	}

	s.log.Info().
		Int("match_id", matchID).
		Int("court_id", courtID).
		Int("conflicts", len(conflicts)).
		Msg("court assigned")
	s.hub.BroadcastToRoom(divisionRoom(match.DivisionID), draws.EventAssignmentChanged, result)
	return result, nil
}

func (s *scheduleService) ClearAssignment(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.ClearCourt(ctx, matchID); err != nil {
		return nil, err
	}
	match.CourtID = nil
	if match.Status == models.MatchStatusReady {
		if err := s.matchRepo.UpdateStatus(ctx, nil, matchID, models.MatchStatusScheduled); err != nil {
			return nil, err
		}
		match.Status = models.MatchStatusScheduled
	}

	s.hub.BroadcastToRoom(divisionRoom(match.DivisionID), draws.EventAssignmentChanged, match)
	return match, nil
}

func (s *scheduleService) ListOverrides(ctx context.Context, matchID int) ([]models.AssignmentOverride, error) {
	return s.overrideRepo.ListByMatch(ctx, matchID)
}

// buildCheckInput gathers everything the detector needs: the proposed match's
// players, every court-occupying match in the tournament, and the matches
// finished inside the rest window.
func (s *scheduleService) buildCheckInput(ctx context.Context, matchID, courtID int) (*scheduling.CheckInput, *models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	division, err := s.divisionRepo.GetByID(ctx, match.DivisionID)
	if err != nil {
		return nil, nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, division.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		return nil, nil, err
	}

	restWindow := time.Duration(tournament.RestWindowMinutes) * time.Minute
	now := time.Now()

	occupying, err := s.matchRepo.ListOccupyingByTournament(ctx, tournament.ID, matchID)
	if err != nil {
		return nil, nil, err
	}
	finished, err := s.matchRepo.ListFinishedSince(ctx, tournament.ID, now.Add(-restWindow))
	if err != nil {
		return nil, nil, err
	}

	playersByEntry, names, err := s.resolveParticipants(ctx, match, occupying, finished)
	if err != nil {
		return nil, nil, err
	}

	input := &scheduling.CheckInput{
		ProposedPlayerIDs: matchPlayers(match, playersByEntry),
		CourtID:           courtID,
		CourtName:         court.Name,
		RestWindow:        restWindow,
		Now:               now,
		PlayerNames:       names,
	}
	for _, m := range occupying {
		input.Active = append(input.Active, scheduling.ActiveMatch{
			MatchID:   m.ID,
			CourtID:   m.CourtID,
			PlayerIDs: matchPlayers(m, playersByEntry),
		})
	}
	for _, m := range finished {
		if m.ActualEnd == nil {
			continue
		}
		input.Finished = append(input.Finished, scheduling.FinishedMatch{
			MatchID:   m.ID,
			EndedAt:   *m.ActualEnd,
			PlayerIDs: matchPlayers(m, playersByEntry),
		})
	}
	return input, match, nil
}

// resolveParticipants batch-loads the entries, teams, and users referenced by
// the given matches and maps each entry id to its player ids.
func (s *scheduleService) resolveParticipants(ctx context.Context, match *models.Match, occupying, finished []*models.Match) (map[int][]int, map[int]string, error) {
	entrySet := make(map[int]struct{})
	addMatch := func(m *models.Match) {
		if m.EntryAID != nil {
			entrySet[*m.EntryAID] = struct{}{}
		}
		if m.EntryBID != nil {
			entrySet[*m.EntryBID] = struct{}{}
		}
	}
	addMatch(match)
	for _, m := range occupying {
		addMatch(m)
	}
	for _, m := range finished {
		addMatch(m)
	}

	entryIDs := make([]int, 0, len(entrySet))
	for id := range entrySet {
		entryIDs = append(entryIDs, id)
	}
	entries, err := s.entryRepo.ListByIDs(ctx, entryIDs)
	if err != nil {
		return nil, nil, err
	}

	var teamIDs []int
	for _, e := range entries {
		if e.TeamID != nil {
			teamIDs = append(teamIDs, *e.TeamID)
		}
	}
	teams := make(map[int]models.Team)
	if len(teamIDs) > 0 {
		loaded, err := s.teamRepo.ListByIDs(ctx, teamIDs)
		if err != nil {
			return nil, nil, err
		}
		for _, t := range loaded {
			teams[t.ID] = *t
		}
	}

	entryValues := derefEntries(entries)
	playersByEntry := scheduling.ResolveEntryParticipants(entryValues, teams)

	playerSet := make(map[int]struct{})
	for _, ids := range playersByEntry {
		for _, id := range ids {
			playerSet[id] = struct{}{}
		}
	}
	playerIDs := make([]int, 0, len(playerSet))
	for id := range playerSet {
		playerIDs = append(playerIDs, id)
	}
	names := make(map[int]string, len(playerIDs))
	if len(playerIDs) > 0 {
		users, err := s.userRepo.ListByIDs(ctx, playerIDs)
		if err != nil {
			return nil, nil, err
		}
		for _, u := range users {
			names[u.ID] = displayName(u)
		}
	}
	return playersByEntry, names, nil
}

func matchPlayers(m *models.Match, playersByEntry map[int][]int) []int {
	var ids []int
	if m.EntryAID != nil {
		ids = append(ids, playersByEntry[*m.EntryAID]...)
	}
	if m.EntryBID != nil {
		ids = append(ids, playersByEntry[*m.EntryBID]...)
	}
	return ids
}
