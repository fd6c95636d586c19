package models

import "time"

// Standing is one derived row of a division ranking as of a round. Rows are
// recomputed on demand; persisting them is a snapshot, not the source of truth.
type Standing struct {
	ID            int       `json:"id,omitempty" db:"id"`
	DivisionID    int       `json:"division_id" db:"division_id"`
	EntryID       int       `json:"entry_id" db:"entry_id"`
	AsOfRound     int       `json:"as_of_round" db:"as_of_round"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	PointsFor     int       `json:"points_for" db:"points_for"`
	PointsAgainst int       `json:"points_against" db:"points_against"`
	PointDiff     int       `json:"point_diff" db:"point_diff"`
	Rank          int       `json:"rank" db:"rank"`
	UpdatedAt     time.Time `json:"updated_at,omitempty" db:"updated_at"`

	Entry *Entry `json:"entry,omitempty" db:"-"`
}

// Qualifier is an entry that advanced from the swiss phase, with its
// knockout seed taken from the final standings rank.
type Qualifier struct {
	EntryID int `json:"entry_id"`
	Seed    int `json:"seed"`
}
