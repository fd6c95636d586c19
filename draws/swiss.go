package draws

import (
	"fmt"
	"sort"

	"github.com/courtware/draw-system/models"
)

// PairRound1 builds the opening round from the active entries of a division.
// Entries are sorted by seed ascending with unseeded entries last (by entry
// id, so the order is deterministic), then fold-paired: top half against
// bottom half, rank 1 vs last, rank 2 vs second-last, and so on.
//
// With an odd entry count the lowest-sorted entry takes the bye.
func PairRound1(entries []models.Entry, totalRounds, qualifierCount int) (*RoundPairing, error) {
	active := make([]models.Entry, 0, len(entries))
	for i := range entries {
		if entries[i].Status == models.EntryStatusActive {
			active = append(active, entries[i])
		}
	}
	if err := ValidateDrawConfig(totalRounds, qualifierCount, len(active)); err != nil {
		return nil, err
	}

	sort.SliceStable(active, func(i, j int) bool {
		si, sj := active[i].Seed, active[j].Seed
		switch {
		case si != nil && sj != nil:
			if *si != *sj {
				return *si < *sj
			}
			return active[i].ID < active[j].ID
		case si != nil:
			return true
		case sj != nil:
			return false
		default:
			return active[i].ID < active[j].ID
		}
	})

	pairing := &RoundPairing{Round: 1}
	pool := active
	if len(pool)%2 == 1 {
		bye := pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		pairing.ByeEntryIDs = []int{bye.ID}
	}

	seq := 1
	for i := 0; i < len(pool)/2; i++ {
		a, b := pool[i].ID, pool[len(pool)-1-i].ID
		pairing.Matches = append(pairing.Matches, PlannedMatch{
			Round:    1,
			Sequence: seq,
			EntryAID: &a,
			EntryBID: &b,
		})
		seq++
	}
	for _, byeID := range pairing.ByeEntryIDs {
		id := byeID
		pairing.Matches = append(pairing.Matches, PlannedMatch{
			Round:    1,
			Sequence: seq,
			EntryAID: &id,
		})
		seq++
	}
	return pairing, nil
}

// PairNextRound builds round state.CurrentRound+1 from the current standings,
// the pairing history of all previous rounds, and the bye history carried in
// the draw state.
//
// Entries are partitioned into score brackets by win count. Within a bracket
// the top entry is paired with the lowest-ranked opponent it has not yet
// played; a rematch is permitted only when no alternative exists. A lone
// leftover entry floats into the next bracket. A leftover at the very bottom
// of the draw un-pairs the most recent pairing and re-pairs among the three
// entries involved; the odd one out receives a bye even when a bye was
// already awarded this round, so no entry is ever silently dropped.
func PairNextRound(standings []models.Standing, history PairingHistory, state *models.DrawState) (*RoundPairing, error) {
	if len(standings) == 0 {
		return nil, ErrNoStandings
	}
	round := state.CurrentRound + 1

	type ranked struct {
		id   int
		wins int
	}
	pool := make([]ranked, len(standings))
	rankOf := make(map[int]int, len(standings))
	for i, s := range standings {
		pool[i] = ranked{id: s.EntryID, wins: s.Wins}
		rankOf[s.EntryID] = s.Rank
	}

	var byes []int
	if len(pool)%2 == 1 {
		idx := len(pool) - 1
		for i := len(pool) - 1; i >= 0; i-- {
			if !state.HasBye(pool[i].id) {
				idx = i
				break
			}
		}
		byes = append(byes, pool[idx].id)
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	// Score brackets, highest win count first. Standings order is preserved
	// within each bracket.
	var brackets [][]ranked
	for i := 0; i < len(pool); {
		j := i + 1
		for j < len(pool) && pool[j].wins == pool[i].wins {
			j++
		}
		bracket := make([]ranked, j-i)
		copy(bracket, pool[i:j])
		brackets = append(brackets, bracket)
		i = j
	}

	var pairs [][2]int
	var floater *ranked
	for _, bracket := range brackets {
		group := bracket
		if floater != nil {
			group = append([]ranked{*floater}, group...)
			floater = nil
		}
		for len(group) >= 2 {
			top := group[0]
			oppIdx := len(group) - 1
			for j := len(group) - 1; j >= 1; j-- {
				if !history.Played(top.id, group[j].id) {
					oppIdx = j
					break
				}
			}
			pairs = append(pairs, [2]int{top.id, group[oppIdx].id})
			group = append(group[1:oppIdx], group[oppIdx+1:]...)
		}
		if len(group) == 1 {
			f := group[0]
			floater = &f
		}
	}

	if floater != nil {
		if len(pairs) == 0 {
			return nil, fmt.Errorf("%w: entry %d has no opponent in round %d", ErrPairingFailed, floater.id, round)
		}
		last := pairs[len(pairs)-1]
		pairs = pairs[:len(pairs)-1]

		trio := []ranked{{id: last[0]}, {id: last[1]}, {id: floater.id}}
		sort.Slice(trio, func(i, j int) bool { return rankOf[trio[i].id] < rankOf[trio[j].id] })

		oppIdx := 2
		for j := 2; j >= 1; j-- {
			if !history.Played(trio[0].id, trio[j].id) {
				oppIdx = j
				break
			}
		}
		pairs = append(pairs, [2]int{trio[0].id, trio[oppIdx].id})
		for j := 1; j <= 2; j++ {
			if j != oppIdx {
				byes = append(byes, trio[j].id)
			}
		}
	}

	pairing := &RoundPairing{Round: round, ByeEntryIDs: byes}
	seq := 1
	for _, p := range pairs {
		a, b := p[0], p[1]
		pairing.Matches = append(pairing.Matches, PlannedMatch{
			Round:    round,
			Sequence: seq,
			EntryAID: &a,
			EntryBID: &b,
		})
		seq++
	}
	for _, byeID := range byes {
		id := byeID
		pairing.Matches = append(pairing.Matches, PlannedMatch{
			Round:    round,
			Sequence: seq,
			EntryAID: &id,
		})
		seq++
	}
	return pairing, nil
}
