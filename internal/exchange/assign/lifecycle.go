// Package assign contains the pairing core of the gift exchange: the
// lifecycle state machine, forbidden-pair resolution from history, the
// randomized derangement search, and the manual-assignment validator.
//
// The package is pure: no I/O, no clocks, no persistence. Callers feed it
// snapshots and persist what it returns.
package assign

// Status is the lifecycle state of an exchange.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusOpen     Status = "open"
	StatusAssigned Status = "assigned"
	StatusClosed   Status = "closed"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusAssigned, StatusClosed:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// NextStatus returns the status an exchange should hold after a participant
// mutation. Only Draft->Open happens automatically; every other transition
// needs an explicit trigger.
func NextStatus(current Status, participantCount int) Status {
	if current == StatusDraft && participantCount >= 1 {
		return StatusOpen
	}
	return current
}

// CanModify reports whether participants may join, leave, or edit messages.
// Assigned and Closed exchanges are frozen.
func CanModify(status Status) bool {
	return status == StatusDraft || status == StatusOpen
}

// CanAssign reports whether an assignment trigger is legal. Assignment runs
// only on Open exchanges; re-running on an Assigned exchange is rejected.
func CanAssign(status Status) bool {
	return status == StatusOpen
}

// CanClose reports whether the explicit close action is legal.
func CanClose(status Status) bool {
	return status == StatusAssigned
}

// Reopen re-derives the status of a Closed exchange. If any assignment row
// still names a gifter the round is considered assigned, otherwise the
// exchange reopens for participation. Stale gifter values are not cleared
// here; the caller owns that decision.
func Reopen(hasAssignments bool) Status {
	if hasAssignments {
		return StatusAssigned
	}
	return StatusOpen
}
