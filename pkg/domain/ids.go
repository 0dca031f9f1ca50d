// Package domain holds the typed identifiers shared across features.
//
// IDs are distinct named types over uuid.UUID so a user ID can never be
// passed where an exchange ID is expected. Construct them via the Parse
// functions at trust boundaries; direct casting bypasses validation.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// ExchangeID identifies one run of the gift exchange.
type ExchangeID uuid.UUID

// NewUserID returns a freshly generated user ID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewExchangeID returns a freshly generated exchange ID.
func NewExchangeID() ExchangeID {
	return ExchangeID(uuid.New())
}

// ParseUserID validates and returns a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID(uuid.Nil), fmt.Errorf("invalid user id: %w", err)
	}
	return UserID(u), nil
}

// ParseExchangeID validates and returns an ExchangeID from external input.
func ParseExchangeID(s string) (ExchangeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ExchangeID(uuid.Nil), fmt.Errorf("invalid exchange id: %w", err)
	}
	return ExchangeID(u), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ExchangeID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero UUID.
func (id ExchangeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText implements encoding.TextMarshaler so IDs render as canonical
// UUID strings in JSON payloads.
func (id UserID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *UserID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	*id = UserID(u)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ExchangeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ExchangeID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return fmt.Errorf("invalid exchange id: %w", err)
	}
	*id = ExchangeID(u)
	return nil
}
