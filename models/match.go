package models

import "time"

type MatchPhase string

const (
	PhaseSwiss    MatchPhase = "swiss"
	PhaseKnockout MatchPhase = "knockout"
)

type MatchStatus string

const (
	MatchStatusScheduled      MatchStatus = "scheduled"
	MatchStatusReady          MatchStatus = "ready"
	MatchStatusOnCourt        MatchStatus = "on_court"
	MatchStatusPendingSignoff MatchStatus = "pending_signoff"
	MatchStatusCompleted      MatchStatus = "completed"
	MatchStatusWalkover       MatchStatus = "walkover"
)

// MatchSide names one side of a match: "A" or "B".
type MatchSide string

const (
	SideA MatchSide = "A"
	SideB MatchSide = "B"
)

// GameScore is one completed game of a match.
type GameScore struct {
	SideA int `json:"side_a"`
	SideB int `json:"side_b"`
}

type Match struct {
	ID         int         `json:"id" db:"id"`
	DivisionID int         `json:"division_id" db:"division_id"`
	Phase      MatchPhase  `json:"phase" db:"phase"`
	Round      int         `json:"round" db:"round"`
	Sequence   int         `json:"sequence" db:"sequence"`
	EntryAID   *int        `json:"entry_a_id,omitempty" db:"entry_a_id"`
	EntryBID   *int        `json:"entry_b_id,omitempty" db:"entry_b_id"`
	Status     MatchStatus `json:"status" db:"status"`
	WinnerSide *MatchSide  `json:"winner_side,omitempty" db:"winner_side"`
	Games      []GameScore `json:"games" db:"-"`
	LiveScore  *GameScore  `json:"live_score,omitempty" db:"-"`
	CourtID    *int        `json:"court_id,omitempty" db:"court_id"`

	// Knockout advancement: the winner fills NextMatchSlot of NextMatchID.
	NextMatchID   *int       `json:"next_match_id,omitempty" db:"next_match_id"`
	NextMatchSlot *MatchSide `json:"next_match_slot,omitempty" db:"next_match_slot"`

	ActualStart *time.Time `json:"actual_start,omitempty" db:"actual_start"`
	ActualEnd   *time.Time `json:"actual_end,omitempty" db:"actual_end"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// IsBye reports whether the match is a bye (side B never existed).
func (m *Match) IsBye() bool {
	return m.EntryAID != nil && m.EntryBID == nil
}

// IsTerminal reports whether no further transition is defined for the match.
func (m *Match) IsTerminal() bool {
	return m.Status == MatchStatusCompleted || m.Status == MatchStatusWalkover
}

// Occupying reports whether the match holds a court for conflict purposes.
func (m *Match) Occupying() bool {
	switch m.Status {
	case MatchStatusReady, MatchStatusOnCourt:
		return true
	case MatchStatusScheduled:
		return m.CourtID != nil
	}
	return false
}

// WinnerEntryID resolves the winning entry id, nil while undecided.
func (m *Match) WinnerEntryID() *int {
	if m.WinnerSide == nil {
		return nil
	}
	if *m.WinnerSide == SideA {
		return m.EntryAID
	}
	return m.EntryBID
}

// matchTransitions is the full lifecycle graph. Walkover is reachable from
// every non-terminal state to record a forfeit.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusScheduled:      {MatchStatusReady, MatchStatusWalkover},
	MatchStatusReady:          {MatchStatusOnCourt, MatchStatusWalkover},
	MatchStatusOnCourt:        {MatchStatusPendingSignoff, MatchStatusWalkover},
	MatchStatusPendingSignoff: {MatchStatusCompleted, MatchStatusOnCourt, MatchStatusWalkover},
}

// CanTransition reports whether moving the match to the given status is a
// defined lifecycle step.
func (m *Match) CanTransition(to MatchStatus) bool {
	for _, allowed := range matchTransitions[m.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}
