package draws

import (
	"errors"
	"testing"

	"github.com/courtware/draw-system/models"
)

func rankedQualifiers(n int) []models.Qualifier {
	qualifiers := make([]models.Qualifier, 0, n)
	for seed := 1; seed <= n; seed++ {
		qualifiers = append(qualifiers, models.Qualifier{EntryID: 200 + seed, Seed: seed})
	}
	return qualifiers
}

func TestBuildKnockoutBracket_PowerOfTwoValidation(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 6, 7} {
		if _, err := BuildKnockoutBracket(rankedQualifiers(n)); !errors.Is(err, ErrQualifierCountNotPowerOf2) {
			t.Errorf("n=%d: expected ErrQualifierCountNotPowerOf2, got %v", n, err)
		}
	}
	for _, n := range []int{2, 4, 8, 16} {
		if _, err := BuildKnockoutBracket(rankedQualifiers(n)); err != nil {
			t.Errorf("n=%d: unexpected error %v", n, err)
		}
	}
}

func TestBuildKnockoutBracket_RoundOneSeedPlacement(t *testing.T) {
	matches, err := BuildKnockoutBracket(rankedQualifiers(8))
	if err != nil {
		t.Fatalf("BuildKnockoutBracket failed: %v", err)
	}

	// Position sequence for 8: 1 8 4 5 2 7 3 6.
	wantPairs := [][2]int{{201, 208}, {204, 205}, {202, 207}, {203, 206}}
	round1 := matches[:4]
	for i, m := range round1 {
		if m.Round != 1 || m.Sequence != i+1 {
			t.Errorf("match %d: unexpected position R%dM%d", i, m.Round, m.Sequence)
		}
		if *m.EntryAID != wantPairs[i][0] || *m.EntryBID != wantPairs[i][1] {
			t.Errorf("match %d: expected %v, got %d vs %d", i, wantPairs[i], *m.EntryAID, *m.EntryBID)
		}
	}
}

func TestBuildKnockoutBracket_AdvancementLinkage(t *testing.T) {
	matches, err := BuildKnockoutBracket(rankedQualifiers(8))
	if err != nil {
		t.Fatalf("BuildKnockoutBracket failed: %v", err)
	}
	if len(matches) != 7 {
		t.Fatalf("expected 7 matches for 8 qualifiers, got %d", len(matches))
	}

	byUID := make(map[string]*BracketMatch, len(matches))
	for _, m := range matches {
		byUID[m.UID] = m
	}
	for _, m := range matches {
		if m.Round == 1 {
			if m.SourceAUID != nil || m.SourceBUID != nil {
				t.Errorf("round 1 match %s must have no sources", m.UID)
			}
			continue
		}
		if m.EntryAID != nil || m.EntryBID != nil {
			t.Errorf("later-round match %s must start empty", m.UID)
		}
		wantA := matchUID(m.Round-1, 2*m.Sequence-1)
		wantB := matchUID(m.Round-1, 2*m.Sequence)
		if m.SourceAUID == nil || *m.SourceAUID != wantA {
			t.Errorf("match %s: expected source A %s, got %v", m.UID, wantA, m.SourceAUID)
		}
		if m.SourceBUID == nil || *m.SourceBUID != wantB {
			t.Errorf("match %s: expected source B %s, got %v", m.UID, wantB, m.SourceBUID)
		}
		if byUID[wantA] == nil || byUID[wantB] == nil {
			t.Errorf("match %s references missing sources", m.UID)
		}
	}
}

// TestBuildKnockoutBracket_SeedSeparation simulates the bracket with the
// better seed always winning: seed 1 must meet seed 2 only in the final, and
// every favorite must reach its expected round.
func TestBuildKnockoutBracket_SeedSeparation(t *testing.T) {
	const size = 16
	matches, err := BuildKnockoutBracket(rankedQualifiers(size))
	if err != nil {
		t.Fatalf("BuildKnockoutBracket failed: %v", err)
	}

	seedOf := func(entryID int) int { return entryID - 200 }
	winnerByUID := make(map[string]int)

	for _, m := range matches {
		a, b := m.EntryAID, m.EntryBID
		if a == nil && m.SourceAUID != nil {
			id := winnerByUID[*m.SourceAUID]
			a = &id
		}
		if b == nil && m.SourceBUID != nil {
			id := winnerByUID[*m.SourceBUID]
			b = &id
		}
		if a == nil || b == nil {
			t.Fatalf("match %s could not be resolved during simulation", m.UID)
		}
		if m.Round < 4 && seedOf(*a)+seedOf(*b) == 3 {
			t.Fatalf("seeds 1 and 2 meet in round %d, before the final", m.Round)
		}
		// Earliest-opponent bound: in round r both survivors rank within the
		// top size/2^(r-1) seeds when favorites win.
		bound := size >> uint(m.Round-1)
		if seedOf(*a) > bound || seedOf(*b) > bound {
			t.Errorf("match %s: seeds %d vs %d exceed round-%d bound %d", m.UID, seedOf(*a), seedOf(*b), m.Round, bound)
		}
		if seedOf(*a) < seedOf(*b) {
			winnerByUID[m.UID] = *a
		} else {
			winnerByUID[m.UID] = *b
		}
	}

	final := matches[len(matches)-1]
	if winnerByUID[final.UID] != 201 {
		t.Errorf("expected seed 1 to win the simulated bracket, got entry %d", winnerByUID[final.UID])
	}
}

func TestRoundLabel(t *testing.T) {
	cases := []struct {
		round, total int
		want         string
	}{
		{4, 4, "Final"},
		{3, 4, "Semi-Final"},
		{2, 4, "Quarter-Final"},
		{1, 4, "Round of 16"},
		{1, 5, "Round of 32"},
		{1, 1, "Final"},
	}
	for _, c := range cases {
		if got := RoundLabel(c.round, c.total); got != c.want {
			t.Errorf("RoundLabel(%d, %d) = %q, want %q", c.round, c.total, got, c.want)
		}
	}
}

func TestBuildKnockoutBracket_RejectsBadSeeds(t *testing.T) {
	qualifiers := rankedQualifiers(4)
	qualifiers[3].Seed = 2
	if _, err := BuildKnockoutBracket(qualifiers); err == nil {
		t.Fatal("expected duplicate seed rejection")
	}

	qualifiers = rankedQualifiers(4)
	qualifiers[0].Seed = 9
	if _, err := BuildKnockoutBracket(qualifiers); err == nil {
		t.Fatal("expected out-of-range seed rejection")
	}
}
