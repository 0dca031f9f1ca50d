package assign

import (
	"sort"
	"time"

	id "giftex/pkg/domain"
)

// historyDepth is how many prior rounds of the same exchange name feed the
// default forbidden-pair set.
const historyDepth = 2

// Pair is one gifter->recipient edge.
type Pair struct {
	Gifter    id.UserID
	Recipient id.UserID
}

// ForbiddenPairs maps a gifter to the recipients they must not draw again.
type ForbiddenPairs map[id.UserID]map[id.UserID]struct{}

// Forbids reports whether gifter->recipient is excluded.
func (f ForbiddenPairs) Forbids(gifter, recipient id.UserID) bool {
	set, ok := f[gifter]
	if !ok {
		return false
	}
	_, ok = set[recipient]
	return ok
}

func (f ForbiddenPairs) add(gifter, recipient id.UserID) {
	set, ok := f[gifter]
	if !ok {
		set = make(map[id.UserID]struct{})
		f[gifter] = set
	}
	set[recipient] = struct{}{}
}

// Len returns the total number of forbidden edges.
func (f ForbiddenPairs) Len() int {
	n := 0
	for _, set := range f {
		n += len(set)
	}
	return n
}

// HistorySpec selects which prior exchanges contribute forbidden pairs.
//
// Three states, distinguished by presence rather than emptiness:
//   - nil ExchangeIDs: default, the two most recent Assigned rounds sharing
//     the current exchange's name
//   - empty non-nil ExchangeIDs: history checking disabled
//   - populated ExchangeIDs: exactly those exchanges, regardless of name or
//     recency
type HistorySpec struct {
	ExchangeIDs []id.ExchangeID
}

// Disabled reports whether history checking is explicitly turned off.
func (s HistorySpec) Disabled() bool {
	return s.ExchangeIDs != nil && len(s.ExchangeIDs) == 0
}

// HistoryExchange is a read-only snapshot of one prior exchange and its
// recorded assignments, supplied by the store.
type HistoryExchange struct {
	ID        id.ExchangeID
	Name      string
	Status    Status
	CreatedAt time.Time
	Pairs     []Pair
}

// ResolveForbidden builds the forbidden-pair set for the exchange identified
// by currentID/currentName from the supplied history snapshot.
//
// Default mode orders candidates newest first by CreatedAt, breaking ties by
// ID, so the "two most recent" rounds are a total order rather than an
// accident of scan order. Read-only and deterministic for a fixed snapshot.
func ResolveForbidden(spec HistorySpec, currentID id.ExchangeID, currentName string, history []HistoryExchange) ForbiddenPairs {
	forbidden := make(ForbiddenPairs)

	if spec.Disabled() {
		return forbidden
	}

	if spec.ExchangeIDs != nil {
		wanted := make(map[id.ExchangeID]struct{}, len(spec.ExchangeIDs))
		for _, exID := range spec.ExchangeIDs {
			wanted[exID] = struct{}{}
		}
		for _, ex := range history {
			if _, ok := wanted[ex.ID]; !ok {
				continue
			}
			for _, p := range ex.Pairs {
				forbidden.add(p.Gifter, p.Recipient)
			}
		}
		return forbidden
	}

	for _, ex := range RecentRounds(currentID, currentName, history) {
		for _, p := range ex.Pairs {
			forbidden.add(p.Gifter, p.Recipient)
		}
	}
	return forbidden
}

// RecentRounds selects the rounds default-mode resolution draws pairs from:
// the last two Assigned exchanges sharing currentName, excluding the current
// exchange, newest first by CreatedAt with ties broken by ID.
func RecentRounds(currentID id.ExchangeID, currentName string, history []HistoryExchange) []HistoryExchange {
	candidates := make([]HistoryExchange, 0, len(history))
	for _, ex := range history {
		if ex.ID == currentID || ex.Name != currentName || ex.Status != StatusAssigned {
			continue
		}
		candidates = append(candidates, ex)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	if len(candidates) > historyDepth {
		candidates = candidates[:historyDepth]
	}
	return candidates
}
