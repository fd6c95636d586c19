package models

import "time"

type ConflictType string

const (
	ConflictPlayerOverlap    ConflictType = "player_overlap"
	ConflictRestViolation    ConflictType = "rest_violation"
	ConflictCourtUnavailable ConflictType = "court_unavailable"
)

type ConflictSeverity string

const (
	// SeverityWarning blocks the assignment unless overridden with a reason.
	SeverityWarning ConflictSeverity = "warning"
	// SeverityError blocks the assignment unconditionally.
	SeverityError ConflictSeverity = "error"
)

// Conflict is a detected problem with a proposed court assignment. Conflicts
// are computed on demand and never persisted as facts.
type Conflict struct {
	Type     ConflictType     `json:"type"`
	Severity ConflictSeverity `json:"severity"`
	Detail   string           `json:"detail"`

	PlayerID     *int `json:"player_id,omitempty"`
	OtherMatchID *int `json:"other_match_id,omitempty"`
	CourtID      *int `json:"court_id,omitempty"`
}

// Blocking reports whether the conflict can never be overridden.
func (c Conflict) Blocking() bool {
	return c.Severity == SeverityError
}

// AssignmentOverride records the justification entered when a warning-level
// conflict was overridden.
type AssignmentOverride struct {
	ID        string    `json:"id" db:"id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	CourtID   int       `json:"court_id" db:"court_id"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedBy int       `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
