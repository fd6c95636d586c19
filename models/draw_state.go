package models

import "time"

type DrawPhase string

const (
	DrawPhaseSwiss    DrawPhase = "swiss"
	DrawPhaseKnockout DrawPhase = "knockout"
	DrawPhaseComplete DrawPhase = "complete"
)

// DrawState is the per-division progression record. It is read before and
// written after every generation call; the engines themselves hold no state.
type DrawState struct {
	ID             int       `json:"id" db:"id"`
	DivisionID     int       `json:"division_id" db:"division_id"`
	CurrentRound   int       `json:"current_round" db:"current_round"`
	TotalRounds    int       `json:"total_rounds" db:"total_rounds"`
	QualifierCount int       `json:"qualifier_count" db:"qualifier_count"`
	Phase          DrawPhase `json:"phase" db:"phase"`

	// Entries that have already received a bye, in award order. Repeat byes
	// are avoided while any entry without one remains.
	ByeEntryIDs []int `json:"bye_entry_ids" db:"-"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasBye reports whether the entry already received a bye in this draw.
func (s *DrawState) HasBye(entryID int) bool {
	for _, id := range s.ByeEntryIDs {
		if id == entryID {
			return true
		}
	}
	return false
}
