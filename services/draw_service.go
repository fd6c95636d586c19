package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/courtware/draw-system/draws"
	"github.com/courtware/draw-system/models"
	"github.com/courtware/draw-system/repositories"
)

// GeneratedRound is the result of one swiss generation call.
type GeneratedRound struct {
	Round       int             `json:"round"`
	Matches     []*models.Match `json:"matches"`
	ByeEntryIDs []int           `json:"bye_entry_ids,omitempty"`
}

// DrawView bundles everything a bracket page needs for one division.
type DrawView struct {
	Division  *models.Division  `json:"division"`
	State     *models.DrawState `json:"state,omitempty"`
	Entries   []*models.Entry   `json:"entries"`
	Matches   []*models.Match   `json:"matches"`
	Standings []models.Standing `json:"standings,omitempty"`
}

type DrawService interface {
	GenerateRound1(ctx context.Context, divisionID int) (*GeneratedRound, error)
	GenerateNextRound(ctx context.Context, divisionID int) (*GeneratedRound, error)
	BuildKnockoutBracket(ctx context.Context, divisionID int) ([]*models.Match, error)
	GetFullDraw(ctx context.Context, divisionID int) (*DrawView, error)
	ResetDraw(ctx context.Context, divisionID int) error
}

type drawService struct {
	db            *sql.DB
	divisionRepo  repositories.DivisionRepository
	entryRepo     repositories.EntryRepository
	matchRepo     repositories.MatchRepository
	drawStateRepo repositories.DrawStateRepository
	standingRepo  repositories.StandingRepository
	hub           *draws.Hub
	log           zerolog.Logger
}

func NewDrawService(
	db *sql.DB,
	divisionRepo repositories.DivisionRepository,
	entryRepo repositories.EntryRepository,
	matchRepo repositories.MatchRepository,
	drawStateRepo repositories.DrawStateRepository,
	standingRepo repositories.StandingRepository,
	hub *draws.Hub,
	log zerolog.Logger,
) DrawService {
	return &drawService{
		db:            db,
		divisionRepo:  divisionRepo,
		entryRepo:     entryRepo,
		matchRepo:     matchRepo,
		drawStateRepo: drawStateRepo,
		standingRepo:  standingRepo,
		hub:           hub,
		log:           log,
	}
}

func (s *drawService) GenerateRound1(ctx context.Context, divisionID int) (*GeneratedRound, error) {
	division, err := s.divisionRepo.GetByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.drawStateRepo.GetByDivision(ctx, divisionID); err == nil {
		return nil, ErrDrawAlreadyGenerated
	} else if !errors.Is(err, repositories.ErrDrawStateNotFound) {
		return nil, fmt.Errorf("failed to check draw state for division %d: %w", divisionID, err)
	}

	entries, err := s.entryRepo.ListByDivision(ctx, divisionID, nil)
	if err != nil {
		return nil, err
	}

	pairing, err := draws.PairRound1(derefEntries(entries), division.TotalRounds, division.QualifierCount)
	if err != nil {
		return nil, err
	}

	created := plannedToMatches(divisionID, models.PhaseSwiss, pairing.Matches)
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		state := &models.DrawState{
			DivisionID:     divisionID,
			CurrentRound:   1,
			TotalRounds:    division.TotalRounds,
			QualifierCount: division.QualifierCount,
			Phase:          models.DrawPhaseSwiss,
			ByeEntryIDs:    pairing.ByeEntryIDs,
		}
		if err := s.drawStateRepo.Create(ctx, tx, state); err != nil {
			return err
		}
		for _, m := range created {
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("division_id", divisionID).
		Int("matches", len(created)).
		Int("byes", len(pairing.ByeEntryIDs)).
		Msg("round 1 generated")

	result := &GeneratedRound{Round: 1, Matches: created, ByeEntryIDs: pairing.ByeEntryIDs}
	s.hub.BroadcastToRoom(divisionRoom(divisionID), draws.EventDrawGenerated, result)
	return result, nil
}

func (s *drawService) GenerateNextRound(ctx context.Context, divisionID int) (*GeneratedRound, error) {
	state, err := s.loadState(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	if state.Phase != models.DrawPhaseSwiss || state.CurrentRound >= state.TotalRounds {
		return nil, ErrSwissRoundsExhausted
	}

	swiss := models.PhaseSwiss
	matches, err := s.matchRepo.ListByDivision(ctx, divisionID, &swiss, nil)
	if err != nil {
		return nil, err
	}
	matchValues := derefMatches(matches)
	if !draws.IsRoundComplete(matchValues, state.CurrentRound) {
		return nil, fmt.Errorf("%w: round %d", ErrRoundNotComplete, state.CurrentRound)
	}

	entries, err := s.entryRepo.ListByDivision(ctx, divisionID, nil)
	if err != nil {
		return nil, err
	}
	standings, err := draws.CalculateStandings(derefEntries(entries), matchValues, state.CurrentRound)
	if err != nil {
		return nil, err
	}

	pairing, err := draws.PairNextRound(standings, draws.HistoryFromMatches(matchValues), state)
	if err != nil {
		return nil, err
	}

	created := plannedToMatches(divisionID, models.PhaseSwiss, pairing.Matches)
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, m := range created {
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return err
			}
		}
		state.CurrentRound = pairing.Round
		state.ByeEntryIDs = append(state.ByeEntryIDs, pairing.ByeEntryIDs...)
		if err := s.drawStateRepo.Update(ctx, tx, state); err != nil {
			return err
		}
		return s.standingRepo.ReplaceSnapshot(ctx, tx, divisionID, standings)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("division_id", divisionID).
		Int("round", pairing.Round).
		Int("matches", len(created)).
		Msg("next round generated")

	result := &GeneratedRound{Round: pairing.Round, Matches: created, ByeEntryIDs: pairing.ByeEntryIDs}
	s.hub.BroadcastToRoom(divisionRoom(divisionID), draws.EventDrawGenerated, result)
	s.hub.BroadcastToRoom(divisionRoom(divisionID), draws.EventStandingsUpdated, standings)
	return result, nil
}

func (s *drawService) BuildKnockoutBracket(ctx context.Context, divisionID int) ([]*models.Match, error) {
	state, err := s.loadState(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	if state.QualifierCount == 0 {
		return nil, ErrKnockoutDisabled
	}
	if state.Phase != models.DrawPhaseSwiss {
		return nil, ErrBracketAlreadyBuilt
	}

	swiss := models.PhaseSwiss
	matches, err := s.matchRepo.ListByDivision(ctx, divisionID, &swiss, nil)
	if err != nil {
		return nil, err
	}
	matchValues := derefMatches(matches)
	if !draws.IsPhaseComplete(matchValues, state.TotalRounds) {
		return nil, ErrSwissNotComplete
	}

	existing, err := s.matchRepo.CountByDivisionAndPhase(ctx, divisionID, models.PhaseKnockout)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrBracketAlreadyBuilt
	}

	entries, err := s.entryRepo.ListByDivision(ctx, divisionID, nil)
	if err != nil {
		return nil, err
	}
	standings, err := draws.CalculateStandings(derefEntries(entries), matchValues, state.TotalRounds)
	if err != nil {
		return nil, err
	}
	qualifiers, err := draws.SelectQualifiers(standings, state.QualifierCount)
	if err != nil {
		return nil, err
	}
	bracket, err := draws.BuildKnockoutBracket(qualifiers)
	if err != nil {
		return nil, err
	}

	var created []*models.Match
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		// First pass: persist every bracket node and remember its database id
		// under the symbolic bracket key.
		idByUID := make(map[string]int, len(bracket))
		created = created[:0]
		for _, bm := range bracket {
			m := &models.Match{
				DivisionID: divisionID,
				Phase:      models.PhaseKnockout,
				Round:      bm.Round,
				Sequence:   bm.Sequence,
				EntryAID:   bm.EntryAID,
				EntryBID:   bm.EntryBID,
				Status:     models.MatchStatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return err
			}
			idByUID[bm.UID] = m.ID
			created = append(created, m)
		}

		// Second pass: now that every id exists, point each feeder match at
		// the slot its winner fills.
		for i, bm := range bracket {
			targetID := created[i].ID
			if bm.SourceAUID != nil {
				sideA := models.SideA
				if err := s.matchRepo.UpdateNextMatchInfo(ctx, tx, idByUID[*bm.SourceAUID], &targetID, &sideA); err != nil {
					return err
				}
			}
			if bm.SourceBUID != nil {
				sideB := models.SideB
				if err := s.matchRepo.UpdateNextMatchInfo(ctx, tx, idByUID[*bm.SourceBUID], &targetID, &sideB); err != nil {
					return err
				}
			}
		}

		state.Phase = models.DrawPhaseKnockout
		if err := s.drawStateRepo.Update(ctx, tx, state); err != nil {
			return err
		}
		return s.standingRepo.ReplaceSnapshot(ctx, tx, divisionID, standings)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("division_id", divisionID).
		Int("qualifiers", len(qualifiers)).
		Int("matches", len(created)).
		Msg("knockout bracket built")

	s.hub.BroadcastToRoom(divisionRoom(divisionID), draws.EventBracketBuilt, created)
	return created, nil
}

func (s *drawService) GetFullDraw(ctx context.Context, divisionID int) (*DrawView, error) {
	view := &DrawView{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		division, err := s.divisionRepo.GetByID(gCtx, divisionID)
		if err != nil {
			return err
		}
		view.Division = division
		return nil
	})
	g.Go(func() error {
		entries, err := s.entryRepo.ListByDivision(gCtx, divisionID, nil)
		if err != nil {
			return err
		}
		view.Entries = entries
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByDivision(gCtx, divisionID, nil, nil)
		if err != nil {
			return err
		}
		view.Matches = matches
		return nil
	})
	g.Go(func() error {
		state, err := s.drawStateRepo.GetByDivision(gCtx, divisionID)
		if err != nil {
			if errors.Is(err, repositories.ErrDrawStateNotFound) {
				return nil
			}
			return err
		}
		view.State = state
		return nil
	})
	g.Go(func() error {
		standings, err := s.standingRepo.ListByDivision(gCtx, divisionID)
		if err != nil {
			if errors.Is(err, repositories.ErrStandingsNotFound) {
				return nil
			}
			return err
		}
		view.Standings = standings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if view.Entries == nil {
		view.Entries = []*models.Entry{}
	}
	if view.Matches == nil {
		view.Matches = []*models.Match{}
	}
	return view, nil
}

func (s *drawService) ResetDraw(ctx context.Context, divisionID int) error {
	if _, err := s.loadState(ctx, divisionID); err != nil {
		return err
	}

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DeleteByDivision(ctx, tx, divisionID); err != nil {
			return err
		}
		if err := s.standingRepo.DeleteByDivision(ctx, tx, divisionID); err != nil {
			return err
		}
		return s.drawStateRepo.DeleteByDivision(ctx, tx, divisionID)
	})
	if err != nil {
		return err
	}

	s.log.Warn().Int("division_id", divisionID).Msg("draw reset")
	s.hub.BroadcastToRoom(divisionRoom(divisionID), draws.EventDrawGenerated, map[string]interface{}{
		"division_id": divisionID,
		"reset":       true,
	})
	return nil
}

func (s *drawService) loadState(ctx context.Context, divisionID int) (*models.DrawState, error) {
	state, err := s.drawStateRepo.GetByDivision(ctx, divisionID)
	if err != nil {
		if errors.Is(err, repositories.ErrDrawStateNotFound) {
			return nil, ErrDrawNotGenerated
		}
		return nil, err
	}
	return state, nil
}

// plannedToMatches converts engine output into persistable rows. Bye matches
// are stored terminal so standings can count them immediately.
func plannedToMatches(divisionID int, phase models.MatchPhase, planned []draws.PlannedMatch) []*models.Match {
	matches := make([]*models.Match, 0, len(planned))
	for _, p := range planned {
		m := &models.Match{
			DivisionID: divisionID,
			Phase:      phase,
			Round:      p.Round,
			Sequence:   p.Sequence,
			EntryAID:   p.EntryAID,
			EntryBID:   p.EntryBID,
			Status:     models.MatchStatusScheduled,
		}
		if m.IsBye() {
			sideA := models.SideA
			m.Status = models.MatchStatusCompleted
			m.WinnerSide = &sideA
		}
		matches = append(matches, m)
	}
	return matches
}
