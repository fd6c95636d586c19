package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusSoon         TournamentStatus = "soon"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusActive       TournamentStatus = "active"
	TournamentStatusCompleted    TournamentStatus = "completed"
	TournamentStatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Description       *string          `json:"description,omitempty" db:"description"`
	Venue             *string          `json:"venue,omitempty" db:"venue"`
	OrganizerID       int              `json:"organizer_id" db:"organizer_id"`
	StartDate         time.Time        `json:"start_date" db:"start_date"`
	EndDate           time.Time        `json:"end_date" db:"end_date"`
	RestWindowMinutes int              `json:"rest_window_minutes" db:"rest_window_minutes"`
	Status            TournamentStatus `json:"status" db:"status"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	LogoKey           *string          `json:"-" db:"logo_key"`
	LogoURL           *string          `json:"logo_url,omitempty" db:"-"`

	// Optional linked data, populated by services rather than the row scan.
	Organizer *User      `json:"organizer,omitempty" db:"-"`
	Divisions []Division `json:"divisions,omitempty" db:"-"`
	Courts    []Court    `json:"courts,omitempty" db:"-"`
}

// EventType distinguishes singles and doubles divisions.
type EventType string

const (
	EventSingles EventType = "singles"
	EventDoubles EventType = "doubles"
)

type Division struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	Name           string    `json:"name" db:"name"`
	EventType      EventType `json:"event_type" db:"event_type"`
	TotalRounds    int       `json:"total_rounds" db:"total_rounds"`
	QualifierCount int       `json:"qualifier_count" db:"qualifier_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Entries []Entry `json:"entries,omitempty" db:"-"`
}

type Court struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
