package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/courtware/draw-system/models"
)

func newMatchServiceForTest(t *testing.T, commits int, matchRepo *fakeMatchRepo, entryRepo *fakeEntryRepo, stateRepo *fakeDrawStateRepo, standingRepo *fakeStandingRepo) MatchService {
	t.Helper()
	return NewMatchService(
		newTxDB(t, commits),
		matchRepo,
		entryRepo,
		stateRepo,
		standingRepo,
		newTestHub(t),
		zerolog.Nop(),
	)
}

func swissState() *fakeDrawStateRepo {
	return newFakeDrawStateRepo(&models.DrawState{DivisionID: 1, CurrentRound: 1, TotalRounds: 3, Phase: models.DrawPhaseSwiss})
}

func readySwissMatch(id int) *models.Match {
	return &models.Match{
		ID:         id,
		DivisionID: 1,
		Phase:      models.PhaseSwiss,
		Round:      1,
		EntryAID:   intPtr(1),
		EntryBID:   intPtr(2),
		Status:     models.MatchStatusReady,
	}
}

func TestStartMatch(t *testing.T) {
	matchRepo := newFakeMatchRepo(readySwissMatch(1))
	svc := newMatchServiceForTest(t, 0, matchRepo, newFakeEntryRepo(testEntries(1, 2)...), swissState(), newFakeStandingRepo())

	match, err := svc.StartMatch(context.Background(), 1)
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if match.Status != models.MatchStatusOnCourt {
		t.Errorf("status = %s, want on_court", match.Status)
	}
	if match.ActualStart == nil {
		t.Error("actual start not recorded")
	}
}

func TestStartMatch_Guards(t *testing.T) {
	t.Run("missing opponent", func(t *testing.T) {
		m := readySwissMatch(1)
		m.EntryBID = nil
		svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(m), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.StartMatch(context.Background(), 1); !errors.Is(err, ErrMatchSlotsIncomplete) {
			t.Fatalf("expected ErrMatchSlotsIncomplete, got %v", err)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		m := readySwissMatch(1)
		m.Status = models.MatchStatusScheduled
		svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(m), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.StartMatch(context.Background(), 1); !errors.Is(err, ErrInvalidMatchTransition) {
			t.Fatalf("expected ErrInvalidMatchTransition, got %v", err)
		}
	})
}

func TestUpdateLiveScore_RequiresOnCourt(t *testing.T) {
	svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(readySwissMatch(1)), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
	if _, err := svc.UpdateLiveScore(context.Background(), 1, models.GameScore{SideA: 5, SideB: 3}); !errors.Is(err, ErrInvalidMatchTransition) {
		t.Fatalf("expected ErrInvalidMatchTransition, got %v", err)
	}
}

func TestSubmitScore(t *testing.T) {
	m := readySwissMatch(1)
	m.Status = models.MatchStatusOnCourt
	matchRepo := newFakeMatchRepo(m)
	svc := newMatchServiceForTest(t, 0, matchRepo, newFakeEntryRepo(), swissState(), newFakeStandingRepo())

	games := []models.GameScore{{SideA: 11, SideB: 5}, {SideA: 7, SideB: 11}, {SideA: 11, SideB: 9}}
	match, err := svc.SubmitScore(context.Background(), 1, games)
	if err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	if match.Status != models.MatchStatusPendingSignoff {
		t.Errorf("status = %s, want pending_signoff", match.Status)
	}
	if match.WinnerSide == nil || *match.WinnerSide != models.SideA {
		t.Errorf("winner = %v, want side A", match.WinnerSide)
	}
	if match.LiveScore != nil {
		t.Error("live score should be cleared on submission")
	}
}

func TestSubmitScore_Rejections(t *testing.T) {
	newOnCourt := func() *fakeMatchRepo {
		m := readySwissMatch(1)
		m.Status = models.MatchStatusOnCourt
		return newFakeMatchRepo(m)
	}

	t.Run("no games", func(t *testing.T) {
		svc := newMatchServiceForTest(t, 0, newOnCourt(), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.SubmitScore(context.Background(), 1, nil); !errors.Is(err, ErrScoreRequired) {
			t.Fatalf("expected ErrScoreRequired, got %v", err)
		}
	})

	t.Run("tied games", func(t *testing.T) {
		svc := newMatchServiceForTest(t, 0, newOnCourt(), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		games := []models.GameScore{{SideA: 11, SideB: 5}, {SideA: 5, SideB: 11}}
		if _, err := svc.SubmitScore(context.Background(), 1, games); !errors.Is(err, ErrScoreTied) {
			t.Fatalf("expected ErrScoreTied, got %v", err)
		}
	})

	t.Run("drawn game", func(t *testing.T) {
		svc := newMatchServiceForTest(t, 0, newOnCourt(), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.SubmitScore(context.Background(), 1, []models.GameScore{{SideA: 10, SideB: 10}}); !errors.Is(err, ErrScoreTied) {
			t.Fatalf("expected ErrScoreTied, got %v", err)
		}
	})
}

func TestApproveResult_SwissRefreshesStandings(t *testing.T) {
	pending := readySwissMatch(1)
	pending.Status = models.MatchStatusPendingSignoff
	pending.WinnerSide = sidePtr(models.SideA)
	pending.Games = []models.GameScore{{SideA: 11, SideB: 4}}
	other := completedSwiss(2, 1, 3, 4, models.SideB)

	matchRepo := newFakeMatchRepo(pending, other)
	standingRepo := newFakeStandingRepo()
	svc := newMatchServiceForTest(t, 1, matchRepo, newFakeEntryRepo(testEntries(1, 4)...), swissState(), standingRepo)

	match, err := svc.ApproveResult(context.Background(), 1)
	if err != nil {
		t.Fatalf("ApproveResult: %v", err)
	}
	if match.Status != models.MatchStatusCompleted {
		t.Errorf("status = %s, want completed", match.Status)
	}
	if match.ActualEnd == nil {
		t.Error("actual end not recorded")
	}

	snapshot, err := standingRepo.ListByDivision(context.Background(), 1)
	if err != nil {
		t.Fatalf("standings not refreshed: %v", err)
	}
	wins := make(map[int]int, len(snapshot))
	for _, row := range snapshot {
		wins[row.EntryID] = row.Wins
	}
	if wins[1] != 1 || wins[2] != 0 {
		t.Errorf("approved result not reflected in standings: wins = %v", wins)
	}
}

func TestApproveResult_RequiresPendingWinner(t *testing.T) {
	t.Run("wrong status", func(t *testing.T) {
		svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(readySwissMatch(1)), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.ApproveResult(context.Background(), 1); !errors.Is(err, ErrInvalidMatchTransition) {
			t.Fatalf("expected ErrInvalidMatchTransition, got %v", err)
		}
	})

	t.Run("no winner recorded", func(t *testing.T) {
		m := readySwissMatch(1)
		m.Status = models.MatchStatusPendingSignoff
		svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(m), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.ApproveResult(context.Background(), 1); !errors.Is(err, ErrScoreRequired) {
			t.Fatalf("expected ErrScoreRequired, got %v", err)
		}
	})
}

func TestApproveResult_KnockoutAdvancesWinner(t *testing.T) {
	slot := models.SideA
	semi := &models.Match{
		ID:            10,
		DivisionID:    1,
		Phase:         models.PhaseKnockout,
		Round:         1,
		EntryAID:      intPtr(1),
		EntryBID:      intPtr(2),
		Status:        models.MatchStatusPendingSignoff,
		WinnerSide:    sidePtr(models.SideB),
		Games:         []models.GameScore{{SideA: 6, SideB: 11}},
		NextMatchID:   intPtr(11),
		NextMatchSlot: &slot,
	}
	final := &models.Match{ID: 11, DivisionID: 1, Phase: models.PhaseKnockout, Round: 2, Status: models.MatchStatusScheduled}

	matchRepo := newFakeMatchRepo(semi, final)
	stateRepo := newFakeDrawStateRepo(&models.DrawState{DivisionID: 1, CurrentRound: 3, TotalRounds: 3, QualifierCount: 4, Phase: models.DrawPhaseKnockout})
	svc := newMatchServiceForTest(t, 1, matchRepo, newFakeEntryRepo(testEntries(1, 4)...), stateRepo, newFakeStandingRepo())

	if _, err := svc.ApproveResult(context.Background(), 10); err != nil {
		t.Fatalf("ApproveResult: %v", err)
	}

	stored, _ := matchRepo.GetByID(context.Background(), 11)
	if stored.EntryAID == nil || *stored.EntryAID != 2 {
		t.Errorf("final slot A = %v, want entry 2", stored.EntryAID)
	}
}

func TestApproveResult_FinalCompletesDraw(t *testing.T) {
	final := &models.Match{
		ID:         11,
		DivisionID: 1,
		Phase:      models.PhaseKnockout,
		Round:      2,
		EntryAID:   intPtr(1),
		EntryBID:   intPtr(2),
		Status:     models.MatchStatusPendingSignoff,
		WinnerSide: sidePtr(models.SideA),
		Games:      []models.GameScore{{SideA: 11, SideB: 8}},
	}
	stateRepo := newFakeDrawStateRepo(&models.DrawState{DivisionID: 1, CurrentRound: 3, TotalRounds: 3, QualifierCount: 2, Phase: models.DrawPhaseKnockout})
	svc := newMatchServiceForTest(t, 1, newFakeMatchRepo(final), newFakeEntryRepo(testEntries(1, 2)...), stateRepo, newFakeStandingRepo())

	if _, err := svc.ApproveResult(context.Background(), 11); err != nil {
		t.Fatalf("ApproveResult: %v", err)
	}

	state, _ := stateRepo.GetByDivision(context.Background(), 1)
	if state.Phase != models.DrawPhaseComplete {
		t.Errorf("state phase = %s, want complete", state.Phase)
	}
}

func TestRejectResult(t *testing.T) {
	m := readySwissMatch(1)
	m.Status = models.MatchStatusPendingSignoff
	m.WinnerSide = sidePtr(models.SideA)
	m.Games = []models.GameScore{{SideA: 11, SideB: 2}}
	matchRepo := newFakeMatchRepo(m)
	svc := newMatchServiceForTest(t, 0, matchRepo, newFakeEntryRepo(), swissState(), newFakeStandingRepo())

	match, err := svc.RejectResult(context.Background(), 1)
	if err != nil {
		t.Fatalf("RejectResult: %v", err)
	}
	if match.Status != models.MatchStatusOnCourt {
		t.Errorf("status = %s, want on_court", match.Status)
	}
	if match.WinnerSide != nil || len(match.Games) != 0 {
		t.Error("rejected result should wipe the recorded score")
	}
}

func TestWalkover(t *testing.T) {
	matchRepo := newFakeMatchRepo(readySwissMatch(1), completedSwiss(2, 1, 3, 4, models.SideA))
	standingRepo := newFakeStandingRepo()
	svc := newMatchServiceForTest(t, 1, matchRepo, newFakeEntryRepo(testEntries(1, 4)...), swissState(), standingRepo)

	match, err := svc.Walkover(context.Background(), 1, models.SideB)
	if err != nil {
		t.Fatalf("Walkover: %v", err)
	}
	if match.Status != models.MatchStatusWalkover {
		t.Errorf("status = %s, want walkover", match.Status)
	}
	if match.WinnerSide == nil || *match.WinnerSide != models.SideB {
		t.Errorf("winner = %v, want side B", match.WinnerSide)
	}

	snapshot, err := standingRepo.ListByDivision(context.Background(), 1)
	if err != nil {
		t.Fatalf("standings not refreshed after walkover: %v", err)
	}
	for _, row := range snapshot {
		if row.EntryID == 2 && row.Wins != 1 {
			t.Errorf("walkover winner has %d wins, want 1", row.Wins)
		}
	}
}

func TestWalkover_Guards(t *testing.T) {
	t.Run("already decided", func(t *testing.T) {
		svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(completedSwiss(1, 1, 1, 2, models.SideA)), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.Walkover(context.Background(), 1, models.SideA); !errors.Is(err, ErrMatchAlreadyDecided) {
			t.Fatalf("expected ErrMatchAlreadyDecided, got %v", err)
		}
	})

	t.Run("unknown side", func(t *testing.T) {
		svc := newMatchServiceForTest(t, 0, newFakeMatchRepo(readySwissMatch(1)), newFakeEntryRepo(), swissState(), newFakeStandingRepo())
		if _, err := svc.Walkover(context.Background(), 1, models.MatchSide("C")); !errors.Is(err, ErrInvalidMatchTransition) {
			t.Fatalf("expected ErrInvalidMatchTransition, got %v", err)
		}
	})
}
