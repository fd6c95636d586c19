package models

import "testing"

func intPtr(v int) *int { return &v }

func sidePtr(s MatchSide) *MatchSide { return &s }

func TestMatchCanTransition(t *testing.T) {
	cases := []struct {
		from MatchStatus
		to   MatchStatus
		want bool
	}{
		{MatchStatusScheduled, MatchStatusReady, true},
		{MatchStatusScheduled, MatchStatusOnCourt, false},
		{MatchStatusReady, MatchStatusOnCourt, true},
		{MatchStatusOnCourt, MatchStatusPendingSignoff, true},
		{MatchStatusOnCourt, MatchStatusCompleted, false},
		{MatchStatusPendingSignoff, MatchStatusCompleted, true},
		{MatchStatusPendingSignoff, MatchStatusOnCourt, true},
		{MatchStatusCompleted, MatchStatusWalkover, false},
		{MatchStatusWalkover, MatchStatusReady, false},
		// forfeit is allowed from every non-terminal state
		{MatchStatusScheduled, MatchStatusWalkover, true},
		{MatchStatusReady, MatchStatusWalkover, true},
		{MatchStatusOnCourt, MatchStatusWalkover, true},
		{MatchStatusPendingSignoff, MatchStatusWalkover, true},
	}
	for _, tc := range cases {
		m := Match{Status: tc.from}
		if got := m.CanTransition(tc.to); got != tc.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestMatchIsBye(t *testing.T) {
	m := Match{EntryAID: intPtr(1)}
	if !m.IsBye() {
		t.Error("match with only side A should be a bye")
	}
	m.EntryBID = intPtr(2)
	if m.IsBye() {
		t.Error("match with both sides is not a bye")
	}
}

func TestMatchOccupying(t *testing.T) {
	cases := []struct {
		status  MatchStatus
		courtID *int
		want    bool
	}{
		{MatchStatusReady, nil, true},
		{MatchStatusOnCourt, intPtr(1), true},
		{MatchStatusScheduled, nil, false},
		{MatchStatusScheduled, intPtr(1), true},
		{MatchStatusPendingSignoff, intPtr(1), false},
		{MatchStatusCompleted, intPtr(1), false},
		{MatchStatusWalkover, nil, false},
	}
	for _, tc := range cases {
		m := Match{Status: tc.status, CourtID: tc.courtID}
		if got := m.Occupying(); got != tc.want {
			t.Errorf("Occupying() with status %s court %v = %v, want %v", tc.status, tc.courtID, got, tc.want)
		}
	}
}

func TestMatchWinnerEntryID(t *testing.T) {
	m := Match{EntryAID: intPtr(10), EntryBID: intPtr(20)}
	if m.WinnerEntryID() != nil {
		t.Error("undecided match should have nil winner")
	}

	m.WinnerSide = sidePtr(SideA)
	if got := m.WinnerEntryID(); got == nil || *got != 10 {
		t.Errorf("winner = %v, want 10", got)
	}

	m.WinnerSide = sidePtr(SideB)
	if got := m.WinnerEntryID(); got == nil || *got != 20 {
		t.Errorf("winner = %v, want 20", got)
	}
}
