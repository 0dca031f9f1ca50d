// Package models defines the user entity.
package models

import (
	"time"

	id "giftex/pkg/domain"
)

// User is an account that can log in and take part in exchanges.
type User struct {
	ID           id.UserID
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
