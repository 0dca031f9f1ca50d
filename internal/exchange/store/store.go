// Package store persists exchanges and their participants.
//
// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code. Stores return sentinel errors for infrastructure facts; services
// translate them into domain errors.
package store

import (
	"context"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	id "giftex/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock

// Store is the persistence boundary for the exchange feature.
type Store interface {
	// Transact runs fn atomically. Every store call made with the context
	// passed to fn joins the same transaction; an error from fn rolls the
	// whole unit back. Used so an assignment (gifter writes + status
	// change) is never half-applied.
	Transact(ctx context.Context, fn func(ctx context.Context) error) error

	CreateExchange(ctx context.Context, ex *models.Exchange) error
	GetExchange(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error)
	UpdateExchange(ctx context.Context, ex *models.Exchange) error
	DeleteExchange(ctx context.Context, exID id.ExchangeID) error
	ListExchanges(ctx context.Context) ([]*models.Exchange, error)

	AddParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, p *models.Participant) error
	RemoveParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error
	ListParticipants(ctx context.Context, exID id.ExchangeID) ([]*models.Participant, error)
	CountParticipants(ctx context.Context, exID id.ExchangeID) (int, error)

	// SetGifter records who gives to the recipient in one exchange.
	SetGifter(ctx context.Context, exID id.ExchangeID, recipient id.UserID, gifter id.UserID) error

	// ListByGifter returns the participant rows a user gifts to, across
	// exchanges.
	ListByGifter(ctx context.Context, gifter id.UserID) ([]*models.Participant, error)

	// HistorySnapshot returns every exchange sharing name, with the
	// gifter->recipient pairs recorded for it. Fed to the forbidden-pair
	// resolver and the history view.
	HistorySnapshot(ctx context.Context, name string) ([]assign.HistoryExchange, error)

	// HistoryByIDs returns the named exchanges with their recorded pairs,
	// regardless of name. Fed to explicit-mode history resolution.
	HistoryByIDs(ctx context.Context, exIDs []id.ExchangeID) ([]assign.HistoryExchange, error)
}
