package draws

import (
	"fmt"
	"sort"

	"github.com/courtware/draw-system/models"
)

// CalculateStandings derives the ranked standings of a division as of the
// given round, from the terminal swiss matches in the input. It never touches
// persisted state; callers snapshot the rows if they want them stored.
//
// Ties break on wins, then point differential, then points for, then entry id
// ascending, which makes the order total and repeat calls deterministic.
func CalculateStandings(entries []models.Entry, matches []models.Match, asOfRound int) ([]models.Standing, error) {
	rows := make(map[int]*models.Standing)
	for i := range entries {
		e := &entries[i]
		if e.Status == models.EntryStatusWithdrawn {
			continue
		}
		rows[e.ID] = &models.Standing{
			DivisionID: e.DivisionID,
			EntryID:    e.ID,
			AsOfRound:  asOfRound,
		}
	}

	counted := 0
	for i := range matches {
		m := &matches[i]
		if m.Phase != models.PhaseSwiss || m.Round > asOfRound || !m.IsTerminal() {
			continue
		}
		if m.IsBye() {
			// A bye is a win with a zero-zero score contribution.
			if row, ok := rows[*m.EntryAID]; ok {
				row.Wins++
				counted++
			}
			continue
		}
		if m.EntryAID == nil || m.EntryBID == nil || m.WinnerSide == nil {
			return nil, fmt.Errorf("match %d is terminal but has no decided winner", m.ID)
		}
		rowA, rowB := rows[*m.EntryAID], rows[*m.EntryBID]
		var forA, forB int
		for _, g := range m.Games {
			forA += g.SideA
			forB += g.SideB
		}
		if rowA != nil {
			rowA.PointsFor += forA
			rowA.PointsAgainst += forB
			if *m.WinnerSide == models.SideA {
				rowA.Wins++
			} else {
				rowA.Losses++
			}
		}
		if rowB != nil {
			rowB.PointsFor += forB
			rowB.PointsAgainst += forA
			if *m.WinnerSide == models.SideB {
				rowB.Wins++
			} else {
				rowB.Losses++
			}
		}
		counted++
	}
	if counted == 0 {
		return nil, ErrNoCompletedMatches
	}

	ordered := make([]models.Standing, 0, len(rows))
	for _, row := range rows {
		row.PointDiff = row.PointsFor - row.PointsAgainst
		ordered = append(ordered, *row)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Wins != ordered[j].Wins {
			return ordered[i].Wins > ordered[j].Wins
		}
		if ordered[i].PointDiff != ordered[j].PointDiff {
			return ordered[i].PointDiff > ordered[j].PointDiff
		}
		if ordered[i].PointsFor != ordered[j].PointsFor {
			return ordered[i].PointsFor > ordered[j].PointsFor
		}
		return ordered[i].EntryID < ordered[j].EntryID
	})
	for i := range ordered {
		ordered[i].Rank = i + 1
	}
	return ordered, nil
}

// SelectQualifiers takes the top count rows of the final standings; the
// knockout seed of each is its standings rank.
func SelectQualifiers(standings []models.Standing, count int) ([]models.Qualifier, error) {
	if !isPowerOfTwo(count) {
		return nil, fmt.Errorf("%w: got %d", ErrQualifierCountNotPowerOf2, count)
	}
	if count > len(standings) {
		return nil, fmt.Errorf("%w: %d qualifiers, %d ranked entries", ErrQualifierCountTooLarge, count, len(standings))
	}
	qualifiers := make([]models.Qualifier, count)
	for i := 0; i < count; i++ {
		qualifiers[i] = models.Qualifier{EntryID: standings[i].EntryID, Seed: i + 1}
	}
	return qualifiers, nil
}
