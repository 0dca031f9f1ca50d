package assign

import (
	"math/rand"

	id "giftex/pkg/domain"
)

// Assignment maps each gifter to the recipient they drew. A complete
// assignment is a derangement: a bijection over the participant set with no
// participant drawing themself.
type Assignment map[id.UserID]id.UserID

// Search finds one complete valid assignment for the participants, or
// reports that none exists.
//
// The algorithm is depth-first backtracking over positions. At each position
// the gifter is participants[pos] and every unused participant is tried as
// recipient in a freshly shuffled order, skipping self-pairing and forbidden
// edges. The shuffle makes repeated calls land on different valid solutions;
// pass a fixed-seed rng for determinism. A nil rng uses the global source.
//
// ok is false only when no derangement satisfies the constraints. The
// search is exhaustive, so infeasibility is a fact about the input, not bad
// luck. Behavior is undefined for fewer than two participants; callers
// reject that earlier.
func Search(participants []id.UserID, forbidden ForbiddenPairs, rng *rand.Rand) (result Assignment, ok bool) {
	n := len(participants)
	assignment := make([]int, n)
	used := make([]bool, n)
	for i := range assignment {
		assignment[i] = -1
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}

	var backtrack func(pos int) bool
	backtrack = func(pos int) bool {
		if pos == n {
			return true
		}

		gifter := participants[pos]

		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		for _, recipientIdx := range indices {
			if used[recipientIdx] {
				continue
			}
			recipient := participants[recipientIdx]
			if gifter == recipient {
				continue
			}
			if forbidden.Forbids(gifter, recipient) {
				continue
			}

			assignment[pos] = recipientIdx
			used[recipientIdx] = true

			if backtrack(pos + 1) {
				return true
			}

			assignment[pos] = -1
			used[recipientIdx] = false
		}

		return false
	}

	if !backtrack(0) {
		return nil, false
	}

	result = make(Assignment, n)
	for pos, recipientIdx := range assignment {
		result[participants[pos]] = participants[recipientIdx]
	}
	return result, true
}
