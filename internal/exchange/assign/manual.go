package assign

import (
	"fmt"
	"strings"

	id "giftex/pkg/domain"
)

// ValidationError reports why a proposed manual assignment was rejected,
// with the offending identifiers grouped by violation so the operator can
// fix the exact rows.
type ValidationError struct {
	MissingRecipients []id.UserID // participants never named as recipient
	ExtraRecipients   []id.UserID // recipients outside the participant set
	UnknownGifters    []id.UserID // gifters outside the participant set
	SelfPairs         []id.UserID // gifter == recipient
	DuplicateGifters  []id.UserID // participants gifting more than once
	MissingGifters    []id.UserID // participants never gifting
}

func (e *ValidationError) Error() string {
	var parts []string
	appendGroup := func(label string, ids []id.UserID) {
		if len(ids) == 0 {
			return
		}
		ss := make([]string, len(ids))
		for i, v := range ids {
			ss[i] = v.String()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(ss, ", ")))
	}
	appendGroup("missing recipients", e.MissingRecipients)
	appendGroup("extra recipients", e.ExtraRecipients)
	appendGroup("unknown gifters", e.UnknownGifters)
	appendGroup("self pairs", e.SelfPairs)
	appendGroup("duplicate gifters", e.DuplicateGifters)
	appendGroup("missing gifters", e.MissingGifters)
	if len(parts) == 0 {
		return "manual assignment invalid"
	}
	return "manual assignment invalid: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.MissingRecipients) == 0 &&
		len(e.ExtraRecipients) == 0 &&
		len(e.UnknownGifters) == 0 &&
		len(e.SelfPairs) == 0 &&
		len(e.DuplicateGifters) == 0 &&
		len(e.MissingGifters) == 0
}

// ValidateManual checks a proposed manual assignment against the structural
// invariants: recipients cover exactly the participant set, every gifter is
// a participant, nobody gifts themself, and every participant gifts exactly
// once. Forbidden pairs are deliberately not checked; a manual assignment
// is an explicit administrative override.
//
// Returns nil when the proposal is a valid derangement, else a
// *ValidationError naming the offenders.
func ValidateManual(participants []id.UserID, proposed []Pair) error {
	verr := &ValidationError{}

	inSet := make(map[id.UserID]struct{}, len(participants))
	for _, p := range participants {
		inSet[p] = struct{}{}
	}

	recipients := make(map[id.UserID]struct{}, len(proposed))
	gifterCount := make(map[id.UserID]int, len(proposed))
	for _, pair := range proposed {
		if _, ok := inSet[pair.Recipient]; !ok {
			verr.ExtraRecipients = append(verr.ExtraRecipients, pair.Recipient)
		}
		if _, ok := inSet[pair.Gifter]; !ok {
			verr.UnknownGifters = append(verr.UnknownGifters, pair.Gifter)
		}
		if pair.Gifter == pair.Recipient {
			verr.SelfPairs = append(verr.SelfPairs, pair.Gifter)
		}
		recipients[pair.Recipient] = struct{}{}
		gifterCount[pair.Gifter]++
	}

	for _, p := range participants {
		if _, ok := recipients[p]; !ok {
			verr.MissingRecipients = append(verr.MissingRecipients, p)
		}
		switch gifterCount[p] {
		case 0:
			verr.MissingGifters = append(verr.MissingGifters, p)
		case 1:
			// exactly once, as required
		default:
			verr.DuplicateGifters = append(verr.DuplicateGifters, p)
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}
