// Package service implements account management: registration, login
// credentials, and admin user administration.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"giftex/internal/platform/metrics"
	"giftex/internal/user/models"
	"giftex/internal/user/store"
	id "giftex/pkg/domain"
	dErrors "giftex/pkg/domain-errors"
	"giftex/pkg/email"
	"giftex/pkg/platform/sentinel"
)

const (
	maxNameLength     = 45
	minPasswordLength = 8
)

// Service orchestrates user accounts.
type Service struct {
	store      store.Store
	logger     *slog.Logger
	metrics    *metrics.Metrics
	bcryptCost int
	now        func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBcryptCost lowers the hash cost in tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		logger:     slog.Default(),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateParams carries the optional fields of an account update. Nil fields
// are left untouched.
type UpdateParams struct {
	Name     *string
	Email    *string
	Password *string
	IsAdmin  *bool
}

// Register creates an account. An omitted name is derived from the email
// local part.
func (s *Service) Register(ctx context.Context, name, emailAddr, password string) (*models.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if !govalidator.IsEmail(emailAddr) {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = email.DeriveName(emailAddr)
	}
	if len(name) > maxNameLength {
		return nil, dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := s.now().UTC()
	u := &models.User{
		ID:           id.NewUserID(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersCreated()
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// EnsureAdmin seeds the bootstrap admin account. If the email already has an
// account it is promoted instead, so the call is safe on every startup.
func (s *Service) EnsureAdmin(ctx context.Context, emailAddr, password string) error {
	if emailAddr == "" || password == "" {
		return nil
	}

	u, err := s.Register(ctx, "", emailAddr, password)
	if err != nil {
		var dErr *dErrors.Error
		if !errors.As(err, &dErr) || dErr.Code != dErrors.CodeConflict {
			return err
		}
		existing, err := s.store.GetByEmail(ctx, normalizeEmail(emailAddr))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bootstrap admin")
		}
		u = existing
	}
	if u.IsAdmin {
		return nil
	}

	isAdmin := true
	if _, err := s.Update(ctx, u.ID, UpdateParams{IsAdmin: &isAdmin}); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "bootstrap admin ensured", "user_id", u.ID)
	return nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, emailAddr, password string) (*models.User, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	u, err := s.store.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	return u, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

// List returns all users, oldest first.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// Update applies the non-nil fields of params.
func (s *Service) Update(ctx context.Context, userID id.UserID, params UpdateParams) (*models.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" || len(name) > maxNameLength {
			return nil, dErrors.Newf(dErrors.CodeValidation, "name must be between 1 and %d characters", maxNameLength)
		}
		u.Name = name
	}
	if params.Email != nil {
		emailAddr := normalizeEmail(*params.Email)
		if !govalidator.IsEmail(emailAddr) {
			return nil, dErrors.New(dErrors.CodeValidation, "a valid email address is required")
		}
		u.Email = emailAddr
	}
	if params.Password != nil {
		if len(*params.Password) < minPasswordLength {
			return nil, dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), s.bcryptCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		u.PasswordHash = string(hash)
	}
	if params.IsAdmin != nil {
		u.IsAdmin = *params.IsAdmin
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	return u, nil
}

// Delete removes the account. Exchange enrollments cascade in the store.
func (s *Service) Delete(ctx context.Context, userID id.UserID) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

// Names resolves display names for the exchange feature.
func (s *Service) Names(ctx context.Context, ids []id.UserID) (map[id.UserID]string, error) {
	return s.store.Names(ctx, ids)
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
