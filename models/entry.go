package models

import "time"

type EntryStatus string

const (
	EntryStatusActive    EntryStatus = "active"
	EntryStatusWithdrawn EntryStatus = "withdrawn"
	EntryStatusLateAdd   EntryStatus = "late_add"
)

// Entry is a division-scoped registration. Exactly one of PlayerID or TeamID
// is set: a singles entry references a player, a doubles entry a team.
type Entry struct {
	ID         int         `json:"id" db:"id"`
	DivisionID int         `json:"division_id" db:"division_id"`
	PlayerID   *int        `json:"player_id,omitempty" db:"player_id"`
	TeamID     *int        `json:"team_id,omitempty" db:"team_id"`
	Seed       *int        `json:"seed,omitempty" db:"seed"`
	Status     EntryStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`

	Player *User `json:"player,omitempty" db:"-"`
	Team   *Team `json:"team,omitempty" db:"-"`
}

// IsValidSide reports whether the entry references exactly one of a player
// or a team.
func (e *Entry) IsValidSide() bool {
	return (e.PlayerID != nil) != (e.TeamID != nil)
}

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []User `json:"members,omitempty" db:"-"`
}
