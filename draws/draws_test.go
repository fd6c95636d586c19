package draws

import (
	"testing"

	"github.com/courtware/draw-system/models"
)

func statusMatch(round int, status models.MatchStatus) models.Match {
	a, b := 1, 2
	return models.Match{Phase: models.PhaseSwiss, Round: round, EntryAID: &a, EntryBID: &b, Status: status}
}

func TestIsRoundComplete(t *testing.T) {
	if IsRoundComplete(nil, 1) {
		t.Error("a round with no matches must not be complete")
	}

	matches := []models.Match{
		statusMatch(1, models.MatchStatusCompleted),
		statusMatch(1, models.MatchStatusWalkover),
		statusMatch(2, models.MatchStatusOnCourt),
	}
	if !IsRoundComplete(matches, 1) {
		t.Error("round 1 should be complete (completed + walkover)")
	}
	if IsRoundComplete(matches, 2) {
		t.Error("round 2 has a live match and must not be complete")
	}
}

func TestIsPhaseComplete(t *testing.T) {
	matches := []models.Match{
		statusMatch(1, models.MatchStatusCompleted),
		statusMatch(2, models.MatchStatusCompleted),
		statusMatch(3, models.MatchStatusPendingSignoff),
	}
	if IsPhaseComplete(matches, 3) {
		t.Error("phase with a pending round must not be complete")
	}
	matches[2].Status = models.MatchStatusCompleted
	if !IsPhaseComplete(matches, 3) {
		t.Error("all rounds terminal, phase should be complete")
	}
	if IsPhaseComplete(matches, 4) {
		t.Error("round 4 was never generated, phase must not be complete")
	}

	knockout := statusMatch(1, models.MatchStatusOnCourt)
	knockout.Phase = models.PhaseKnockout
	matches = append(matches, knockout)
	if !IsPhaseComplete(matches, 3) {
		t.Error("knockout matches must not affect swiss phase completion")
	}
}

func TestPairingHistory(t *testing.T) {
	a, b, c := 1, 2, 3
	matches := []models.Match{
		{EntryAID: &a, EntryBID: &b},
		{EntryAID: &c, EntryBID: nil}, // bye, no pairing recorded
	}
	h := HistoryFromMatches(matches)
	if !h.Played(1, 2) || !h.Played(2, 1) {
		t.Error("history must be order-insensitive")
	}
	if h.Played(1, 3) || h.Played(3, 1) {
		t.Error("bye must not record a pairing")
	}
}

func TestValidateDrawConfig_ZeroQualifiersAllowed(t *testing.T) {
	if err := ValidateDrawConfig(5, 0, 9); err != nil {
		t.Errorf("qualifier count 0 (no knockout phase) rejected: %v", err)
	}
	if err := ValidateDrawConfig(5, 8, 9); err != nil {
		t.Errorf("valid qualifier count rejected: %v", err)
	}
}
