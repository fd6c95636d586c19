package draws

import (
	"errors"
	"reflect"
	"testing"

	"github.com/courtware/draw-system/models"
)

func activeEntry(id int, seed *int) models.Entry {
	return models.Entry{ID: id, DivisionID: 1, Seed: seed, Status: models.EntryStatusActive, PlayerID: &id}
}

func seedPtr(s int) *int { return &s }

func completedMatch(id, round, a, b int, winner models.MatchSide, games ...models.GameScore) models.Match {
	side := winner
	return models.Match{
		ID:         id,
		DivisionID: 1,
		Phase:      models.PhaseSwiss,
		Round:      round,
		EntryAID:   &a,
		EntryBID:   &b,
		Status:     models.MatchStatusCompleted,
		WinnerSide: &side,
		Games:      games,
	}
}

func byeMatch(id, round, a int) models.Match {
	side := models.SideA
	return models.Match{
		ID:         id,
		DivisionID: 1,
		Phase:      models.PhaseSwiss,
		Round:      round,
		EntryAID:   &a,
		Status:     models.MatchStatusCompleted,
		WinnerSide: &side,
	}
}

func TestCalculateStandings_NoCompletedMatches(t *testing.T) {
	entries := []models.Entry{activeEntry(1, nil), activeEntry(2, nil)}
	if _, err := CalculateStandings(entries, nil, 1); !errors.Is(err, ErrNoCompletedMatches) {
		t.Fatalf("expected ErrNoCompletedMatches, got %v", err)
	}
}

func TestCalculateStandings_RankOrder(t *testing.T) {
	entries := []models.Entry{activeEntry(1, nil), activeEntry(2, nil), activeEntry(3, nil), activeEntry(4, nil)}
	matches := []models.Match{
		// entry 1 beats entry 2 11-5, entry 3 beats entry 4 11-9
		completedMatch(1, 1, 1, 2, models.SideA, models.GameScore{SideA: 11, SideB: 5}),
		completedMatch(2, 1, 3, 4, models.SideA, models.GameScore{SideA: 11, SideB: 9}),
	}

	standings, err := CalculateStandings(entries, matches, 1)
	if err != nil {
		t.Fatalf("CalculateStandings failed: %v", err)
	}
	if len(standings) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(standings))
	}

	// Both winners have 1 win; entry 1 has the better point differential.
	wantOrder := []int{1, 3, 4, 2}
	for i, want := range wantOrder {
		if standings[i].EntryID != want {
			t.Errorf("rank %d: expected entry %d, got %d", i+1, want, standings[i].EntryID)
		}
		if standings[i].Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", standings[i].EntryID, i+1, standings[i].Rank)
		}
	}
	if standings[0].PointDiff != 6 {
		t.Errorf("expected point diff 6 for entry 1, got %d", standings[0].PointDiff)
	}
}

func TestCalculateStandings_ByeCountsAsZeroZeroWin(t *testing.T) {
	entries := []models.Entry{activeEntry(1, nil), activeEntry(2, nil), activeEntry(3, nil)}
	matches := []models.Match{
		completedMatch(1, 1, 1, 2, models.SideA, models.GameScore{SideA: 11, SideB: 7}),
		byeMatch(2, 1, 3),
	}

	standings, err := CalculateStandings(entries, matches, 1)
	if err != nil {
		t.Fatalf("CalculateStandings failed: %v", err)
	}
	var byeRow *models.Standing
	for i := range standings {
		if standings[i].EntryID == 3 {
			byeRow = &standings[i]
		}
	}
	if byeRow == nil {
		t.Fatal("entry 3 missing from standings")
	}
	if byeRow.Wins != 1 || byeRow.Losses != 0 {
		t.Errorf("bye should count as a win, got %d-%d", byeRow.Wins, byeRow.Losses)
	}
	if byeRow.PointsFor != 0 || byeRow.PointsAgainst != 0 {
		t.Errorf("bye should contribute no points, got %d/%d", byeRow.PointsFor, byeRow.PointsAgainst)
	}
}

func TestCalculateStandings_Deterministic(t *testing.T) {
	entries := []models.Entry{activeEntry(1, nil), activeEntry(2, nil), activeEntry(3, nil), activeEntry(4, nil)}
	// Identical records all around: same wins, same differential, same points.
	matches := []models.Match{
		completedMatch(1, 1, 1, 2, models.SideA, models.GameScore{SideA: 11, SideB: 9}),
		completedMatch(2, 1, 3, 4, models.SideA, models.GameScore{SideA: 11, SideB: 9}),
		completedMatch(3, 2, 2, 3, models.SideA, models.GameScore{SideA: 11, SideB: 9}),
		completedMatch(4, 2, 4, 1, models.SideA, models.GameScore{SideA: 11, SideB: 9}),
	}

	first, err := CalculateStandings(entries, matches, 2)
	if err != nil {
		t.Fatalf("CalculateStandings failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := CalculateStandings(entries, matches, 2)
		if err != nil {
			t.Fatalf("CalculateStandings failed on repeat: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("standings order changed between calls:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestCalculateStandings_ExcludesWithdrawnAndLaterRounds(t *testing.T) {
	withdrawn := activeEntry(4, nil)
	withdrawn.Status = models.EntryStatusWithdrawn
	entries := []models.Entry{activeEntry(1, nil), activeEntry(2, nil), activeEntry(3, nil), withdrawn}
	matches := []models.Match{
		completedMatch(1, 1, 1, 2, models.SideA, models.GameScore{SideA: 11, SideB: 3}),
		byeMatch(2, 1, 3),
		completedMatch(3, 2, 1, 3, models.SideA, models.GameScore{SideA: 11, SideB: 6}),
	}

	standings, err := CalculateStandings(entries, matches, 1)
	if err != nil {
		t.Fatalf("CalculateStandings failed: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("withdrawn entry must not be ranked, got %d rows", len(standings))
	}
	for _, row := range standings {
		if row.EntryID == 1 && row.Wins != 1 {
			t.Errorf("round 2 result leaked into as-of-round-1 standings: %+v", row)
		}
	}
}

func TestSelectQualifiers(t *testing.T) {
	standings := []models.Standing{
		{EntryID: 7, Rank: 1},
		{EntryID: 3, Rank: 2},
		{EntryID: 9, Rank: 3},
		{EntryID: 1, Rank: 4},
		{EntryID: 5, Rank: 5},
	}

	qualifiers, err := SelectQualifiers(standings, 4)
	if err != nil {
		t.Fatalf("SelectQualifiers failed: %v", err)
	}
	want := []models.Qualifier{{EntryID: 7, Seed: 1}, {EntryID: 3, Seed: 2}, {EntryID: 9, Seed: 3}, {EntryID: 1, Seed: 4}}
	if !reflect.DeepEqual(qualifiers, want) {
		t.Errorf("unexpected qualifiers: %+v", qualifiers)
	}

	if _, err := SelectQualifiers(standings, 3); !errors.Is(err, ErrQualifierCountNotPowerOf2) {
		t.Errorf("expected power-of-2 rejection for 3, got %v", err)
	}
	if _, err := SelectQualifiers(standings, 8); !errors.Is(err, ErrQualifierCountTooLarge) {
		t.Errorf("expected too-large rejection for 8 of 5, got %v", err)
	}
}
