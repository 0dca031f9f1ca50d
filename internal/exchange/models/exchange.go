// Package models defines the exchange domain entities.
package models

import (
	"time"

	"giftex/internal/exchange/assign"
	id "giftex/pkg/domain"
)

// Exchange is one run of the gift exchange among an enrolled participant
// set. Name groups successive rounds: history resolution looks at prior
// Assigned exchanges sharing the same Name.
type Exchange struct {
	ID        id.ExchangeID
	Name      string
	Date      time.Time
	Status    assign.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant is one user's enrollment in an exchange. GifterID is nil until
// assignment runs; afterwards it names who gives to this participant.
type Participant struct {
	UserID     id.UserID
	ExchangeID id.ExchangeID
	GifterID   *id.UserID
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasMessage reports whether the participant wrote their gift wish.
func (p Participant) HasMessage() bool {
	return p.Message != ""
}

// IsAssigned reports whether a gifter has been recorded for this
// participant.
func (p Participant) IsAssigned() bool {
	return p.GifterID != nil && !p.GifterID.IsNil()
}

// Statistics summarizes one exchange for the admin dashboard.
type Statistics struct {
	ExchangeID               id.ExchangeID
	Status                   assign.Status
	TotalParticipants        int
	ParticipantsWithMessages int
	AssignedParticipants     int
	CanAssign                bool
	ReadyForAssignment       bool
}

// HistoryRound is one prior round of the same exchange name, with resolved
// gifter and recipient names for display.
type HistoryRound struct {
	ExchangeID  id.ExchangeID
	Date        time.Time
	Assignments []HistoryAssignment
}

// HistoryAssignment is one resolved gifter->recipient edge of a prior round.
type HistoryAssignment struct {
	GifterName    string
	RecipientName string
}

// MyAssignment tells a gifter who they give to in one assigned exchange.
type MyAssignment struct {
	ExchangeID       id.ExchangeID
	ExchangeName     string
	ExchangeDate     time.Time
	RecipientName    string
	RecipientMessage string
}
