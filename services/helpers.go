package services

import (
	"fmt"

	"github.com/courtware/draw-system/models"
)

func divisionRoom(divisionID int) string {
	return fmt.Sprintf("division:%d", divisionID)
}

func derefEntries(slice []*models.Entry) []models.Entry {
	result := make([]models.Entry, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func derefMatches(slice []*models.Match) []models.Match {
	result := make([]models.Match, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

// gamesWinner decides the match winner from completed games. It returns an
// error when no games were played or the game count is tied.
func gamesWinner(games []models.GameScore) (models.MatchSide, error) {
	if len(games) == 0 {
		return "", ErrScoreRequired
	}
	var wonA, wonB int
	for _, g := range games {
		switch {
		case g.SideA > g.SideB:
			wonA++
		case g.SideB > g.SideA:
			wonB++
		default:
			return "", fmt.Errorf("%w: game %d-%d has no winner", ErrScoreTied, g.SideA, g.SideB)
		}
	}
	if wonA == wonB {
		return "", ErrScoreTied
	}
	if wonA > wonB {
		return models.SideA, nil
	}
	return models.SideB, nil
}

func displayName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}
