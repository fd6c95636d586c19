// Package scheduling holds the court assignment conflict detector and the
// per-court serialization used by the schedule service.
package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/courtware/draw-system/models"
)

// ResolveEntryParticipants expands each entry to its player ids: a singles
// entry to its one player, a doubles entry to every team member. The map is
// built once per batch so comparing one match against many others does not
// re-derive the same lookups.
func ResolveEntryParticipants(entries []models.Entry, teams map[int]models.Team) map[int][]int {
	resolved := make(map[int][]int, len(entries))
	for i := range entries {
		e := &entries[i]
		switch {
		case e.PlayerID != nil:
			resolved[e.ID] = []int{*e.PlayerID}
		case e.TeamID != nil:
			team, ok := teams[*e.TeamID]
			if !ok {
				continue
			}
			ids := make([]int, 0, len(team.Members))
			for _, member := range team.Members {
				ids = append(ids, member.ID)
			}
			resolved[e.ID] = ids
		}
	}
	return resolved
}

// ActiveMatch is a court-occupying match of the same tournament, with its
// participant set already resolved.
type ActiveMatch struct {
	MatchID   int
	CourtID   *int
	PlayerIDs []int
}

// FinishedMatch is a completed match with a recorded end time.
type FinishedMatch struct {
	MatchID   int
	EndedAt   time.Time
	PlayerIDs []int
}

// CheckInput carries everything the detector needs for one proposed
// (match, court) assignment.
type CheckInput struct {
	ProposedPlayerIDs []int
	CourtID           int
	CourtName         string
	Active            []ActiveMatch
	Finished          []FinishedMatch
	RestWindow        time.Duration
	Now               time.Time

	// PlayerNames is optional display data for conflict details.
	PlayerNames map[int]string
}

// CheckAssignment returns every conflict the proposed assignment would cause.
// It mutates nothing; the caller decides whether to block, override, or
// proceed.
func CheckAssignment(in CheckInput) []models.Conflict {
	var conflicts []models.Conflict
	proposed := make(map[int]struct{}, len(in.ProposedPlayerIDs))
	for _, id := range in.ProposedPlayerIDs {
		proposed[id] = struct{}{}
	}

	for _, other := range in.Active {
		if other.CourtID != nil && *other.CourtID == in.CourtID {
			otherID := other.MatchID
			courtID := in.CourtID
			conflicts = append(conflicts, models.Conflict{
				Type:         models.ConflictCourtUnavailable,
				Severity:     models.SeverityError,
				Detail:       fmt.Sprintf("court %s is already hosting match %d", in.courtLabel(), other.MatchID),
				OtherMatchID: &otherID,
				CourtID:      &courtID,
			})
		}
		for _, playerID := range other.PlayerIDs {
			if _, ok := proposed[playerID]; !ok {
				continue
			}
			pid := playerID
			otherID := other.MatchID
			conflicts = append(conflicts, models.Conflict{
				Type:         models.ConflictPlayerOverlap,
				Severity:     models.SeverityError,
				Detail:       fmt.Sprintf("%s is already committed to match %d%s", in.playerLabel(playerID), other.MatchID, courtSuffix(other.CourtID)),
				PlayerID:     &pid,
				OtherMatchID: &otherID,
				CourtID:      other.CourtID,
			})
		}
	}

	if in.RestWindow > 0 {
		for _, finished := range in.Finished {
			elapsed := in.Now.Sub(finished.EndedAt)
			if elapsed >= in.RestWindow {
				continue
			}
			remaining := int(math.Ceil(in.RestWindow.Minutes() - elapsed.Minutes()))
			for _, playerID := range finished.PlayerIDs {
				if _, ok := proposed[playerID]; !ok {
					continue
				}
				pid := playerID
				otherID := finished.MatchID
				conflicts = append(conflicts, models.Conflict{
					Type:         models.ConflictRestViolation,
					Severity:     models.SeverityWarning,
					Detail:       fmt.Sprintf("%s finished match %d recently and needs %d more minutes of rest", in.playerLabel(playerID), finished.MatchID, remaining),
					PlayerID:     &pid,
					OtherMatchID: &otherID,
				})
			}
		}
	}
	return conflicts
}

// HasBlocking reports whether any conflict is error severity.
func HasBlocking(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Blocking() {
			return true
		}
	}
	return false
}

func (in CheckInput) courtLabel() string {
	if in.CourtName != "" {
		return in.CourtName
	}
	return fmt.Sprintf("%d", in.CourtID)
}

func (in CheckInput) playerLabel(playerID int) string {
	if name, ok := in.PlayerNames[playerID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("player %d", playerID)
}

func courtSuffix(courtID *int) string {
	if courtID == nil {
		return ""
	}
	return fmt.Sprintf(" on court %d", *courtID)
}
