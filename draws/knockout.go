package draws

import (
	"fmt"

	"github.com/courtware/draw-system/models"
)

// BracketMatch is one slot of a knockout bracket before persistence. Matches
// carry symbolic UIDs ("R2M1"); later-round matches reference the UIDs of the
// matches feeding them, and the references are resolved to concrete match ids
// in a second pass once the whole bracket has been stored.
type BracketMatch struct {
	UID      string
	Round    int
	Sequence int

	EntryAID *int
	EntryBID *int

	SourceAUID *string
	SourceBUID *string
}

// BuildKnockoutBracket constructs a seed-separated single-elimination bracket
// from the qualifier list. The qualifier count must be a power of 2; seeds
// must cover 1..n. Seed separation follows the standard halving rule: seeds 1
// and 2 can only meet in the final, seeds 1-4 from the semi-finals on.
func BuildKnockoutBracket(qualifiers []models.Qualifier) ([]*BracketMatch, error) {
	n := len(qualifiers)
	if !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: got %d qualifiers", ErrQualifierCountNotPowerOf2, n)
	}

	entryBySeed := make(map[int]int, n)
	for _, q := range qualifiers {
		if q.Seed < 1 || q.Seed > n {
			return nil, fmt.Errorf("qualifier seed %d out of range 1..%d", q.Seed, n)
		}
		if _, dup := entryBySeed[q.Seed]; dup {
			return nil, fmt.Errorf("duplicate qualifier seed %d", q.Seed)
		}
		entryBySeed[q.Seed] = q.EntryID
	}

	totalRounds := 0
	for size := n; size > 1; size >>= 1 {
		totalRounds++
	}

	positions := seedPositions(n)
	matches := make([]*BracketMatch, 0, n-1)
	for i := 0; i < n; i += 2 {
		a := entryBySeed[positions[i]]
		b := entryBySeed[positions[i+1]]
		seq := i/2 + 1
		matches = append(matches, &BracketMatch{
			UID:      matchUID(1, seq),
			Round:    1,
			Sequence: seq,
			EntryAID: &a,
			EntryBID: &b,
		})
	}

	// Later rounds are created empty; winners of (r-1, 2s-1) and (r-1, 2s)
	// fill sides A and B of (r, s).
	for round := 2; round <= totalRounds; round++ {
		count := n >> uint(round)
		for seq := 1; seq <= count; seq++ {
			srcA := matchUID(round-1, 2*seq-1)
			srcB := matchUID(round-1, 2*seq)
			matches = append(matches, &BracketMatch{
				UID:        matchUID(round, seq),
				Round:      round,
				Sequence:   seq,
				SourceAUID: &srcA,
				SourceBUID: &srcB,
			})
		}
	}
	return matches, nil
}

// seedPositions builds the bracket position sequence for a draw of the given
// size. Starting from [1], every doubling step replaces each seed s with the
// pair (s, doubledSize+1-s), e.g. 8 -> [1 8 4 5 2 7 3 6].
func seedPositions(size int) []int {
	positions := []int{1}
	for len(positions) < size {
		doubled := len(positions) * 2
		next := make([]int, 0, doubled)
		for _, s := range positions {
			next = append(next, s, doubled+1-s)
		}
		positions = next
	}
	return positions
}

func matchUID(round, sequence int) string {
	return fmt.Sprintf("R%dM%d", round, sequence)
}

// RoundLabel names a knockout round for display, counted from the final
// backwards.
func RoundLabel(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semi-Final"
	case 2:
		return "Quarter-Final"
	default:
		return fmt.Sprintf("Round of %d", 1<<uint(totalRounds-round+1))
	}
}
