// Package store persists user accounts.
package store

import (
	"context"

	"giftex/internal/user/models"
	id "giftex/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock

// Store persists users. Implementations return sentinel errors for
// not-found and unique-email conflicts; services translate them.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, userID id.UserID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
	Names(ctx context.Context, ids []id.UserID) (map[id.UserID]string, error)
}
