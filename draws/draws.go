package draws

import (
	"errors"
	"fmt"

	"github.com/courtware/draw-system/models"
)

// Configuration errors, surfaced before any state mutation.
var (
	ErrRoundCountOutOfRange      = errors.New("total rounds must be between 3 and 10")
	ErrQualifierCountNotPowerOf2 = errors.New("qualifier count must be a power of 2")
	ErrQualifierCountTooLarge    = errors.New("qualifier count exceeds entry count")
	ErrNotEnoughEntries          = errors.New("at least two active entries are required")
	ErrNoCompletedMatches        = errors.New("no completed matches to rank")
	ErrNoStandings               = errors.New("standings are required for pairing")
	ErrPairingFailed             = errors.New("no valid pairing found")
)

// PlannedMatch is a match produced by a pairing or bracket run before it is
// persisted. EntryBID nil marks a bye.
type PlannedMatch struct {
	Round    int
	Sequence int
	EntryAID *int
	EntryBID *int
}

// RoundPairing is the result of pairing one swiss round. ByeEntryIDs lists
// every bye awarded this round, in award order; the matching bye matches are
// sequenced last in Matches.
type RoundPairing struct {
	Round       int
	Matches     []PlannedMatch
	ByeEntryIDs []int
}

// ValidateDrawConfig checks the division draw configuration against the
// active entry count. Qualifier count zero means no knockout phase.
func ValidateDrawConfig(totalRounds, qualifierCount, entryCount int) error {
	if totalRounds < 3 || totalRounds > 10 {
		return fmt.Errorf("%w: got %d", ErrRoundCountOutOfRange, totalRounds)
	}
	if entryCount < 2 {
		return fmt.Errorf("%w: got %d", ErrNotEnoughEntries, entryCount)
	}
	if qualifierCount != 0 {
		if !isPowerOfTwo(qualifierCount) {
			return fmt.Errorf("%w: got %d", ErrQualifierCountNotPowerOf2, qualifierCount)
		}
		if qualifierCount > entryCount {
			return fmt.Errorf("%w: %d qualifiers, %d entries", ErrQualifierCountTooLarge, qualifierCount, entryCount)
		}
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// IsRoundComplete reports whether every match of the given round is terminal.
// A round with no matches at all is not complete.
func IsRoundComplete(matches []models.Match, round int) bool {
	found := false
	for i := range matches {
		if matches[i].Round != round {
			continue
		}
		found = true
		if !matches[i].IsTerminal() {
			return false
		}
	}
	return found
}

// IsPhaseComplete reports whether all swiss rounds up to totalRounds are
// complete.
func IsPhaseComplete(matches []models.Match, totalRounds int) bool {
	swiss := make([]models.Match, 0, len(matches))
	for i := range matches {
		if matches[i].Phase == models.PhaseSwiss {
			swiss = append(swiss, matches[i])
		}
	}
	for round := 1; round <= totalRounds; round++ {
		if !IsRoundComplete(swiss, round) {
			return false
		}
	}
	return true
}

// PairingHistory records which entries have already met, keyed on the
// unordered entry id pair.
type PairingHistory map[[2]int]struct{}

// HistoryFromMatches collects every non-bye pairing across the given matches.
func HistoryFromMatches(matches []models.Match) PairingHistory {
	h := make(PairingHistory)
	for i := range matches {
		m := &matches[i]
		if m.EntryAID == nil || m.EntryBID == nil {
			continue
		}
		h.Add(*m.EntryAID, *m.EntryBID)
	}
	return h
}

func (h PairingHistory) Add(a, b int) {
	h[pairKey(a, b)] = struct{}{}
}

// Played reports whether the two entries have already faced each other.
func (h PairingHistory) Played(a, b int) bool {
	_, ok := h[pairKey(a, b)]
	return ok
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
