// Package service orchestrates gift exchanges: membership, lifecycle, and
// gifter assignment.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	"giftex/internal/exchange/store"
	"giftex/internal/platform/lock"
	"giftex/internal/platform/metrics"
	id "giftex/pkg/domain"
	dErrors "giftex/pkg/domain-errors"
	"giftex/pkg/platform/sentinel"
)

const maxNameLength = 45

// UserDirectory resolves user IDs to display names. Backed by the user
// store; an ID absent from the result is unknown.
type UserDirectory interface {
	Names(ctx context.Context, ids []id.UserID) (map[id.UserID]string, error)
}

// Service orchestrates exchange management and assignment.
type Service struct {
	store   store.Store
	users   UserDirectory
	locker  lock.Locker
	logger  *slog.Logger
	metrics *metrics.Metrics
	rng     *rand.Rand
	now     func() time.Time
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

// WithRand fixes the randomness source used by assignment search. Tests use
// a seeded source for reproducible draws.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service.
func New(st store.Store, users UserDirectory, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		store:  st,
		users:  users,
		locker: locker,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExchangeSummary is a list row: the exchange plus its enrollment count.
type ExchangeSummary struct {
	Exchange         models.Exchange
	ParticipantCount int
}

// ParticipantView is one participant with resolved display names.
type ParticipantView struct {
	UserID     id.UserID
	Name       string
	Message    string
	GifterID   *id.UserID
	GifterName string
}

// ExchangeDetail is the admin view of one exchange.
type ExchangeDetail struct {
	Exchange     models.Exchange
	Participants []ParticipantView
}

// CreateExchange creates a new exchange in Draft.
func (s *Service) CreateExchange(ctx context.Context, name string, date time.Time) (*models.Exchange, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ex := &models.Exchange{
		ID:        id.NewExchangeID(),
		Name:      name,
		Date:      date,
		Status:    assign.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateExchange(ctx, ex); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create exchange")
	}

	s.logger.InfoContext(ctx, "exchange created",
		"exchange_id", ex.ID, "name", ex.Name)
	return ex, nil
}

// UpdateExchange changes name and date. Rejected once assignments exist.
func (s *Service) UpdateExchange(ctx context.Context, exID id.ExchangeID, name string, date time.Time) (*models.Exchange, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, err
	}
	if !assign.CanModify(ex.Status) {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s and cannot be modified", ex.Status)
	}

	ex.Name = name
	ex.Date = date
	ex.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateExchange(ctx, ex); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update exchange")
	}
	return ex, nil
}

// DeleteExchange removes the exchange and its enrollments.
func (s *Service) DeleteExchange(ctx context.Context, exID id.ExchangeID) error {
	if err := s.store.DeleteExchange(ctx, exID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "exchange not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete exchange")
	}
	s.logger.InfoContext(ctx, "exchange deleted", "exchange_id", exID)
	return nil
}

// GetExchange returns the bare exchange record.
func (s *Service) GetExchange(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error) {
	return s.getExchange(ctx, exID)
}

// ListExchanges returns all exchanges, newest first, with enrollment counts.
func (s *Service) ListExchanges(ctx context.Context) ([]ExchangeSummary, error) {
	exchanges, err := s.store.ListExchanges(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list exchanges")
	}

	out := make([]ExchangeSummary, 0, len(exchanges))
	for _, ex := range exchanges {
		n, err := s.store.CountParticipants(ctx, ex.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count participants")
		}
		out = append(out, ExchangeSummary{Exchange: *ex, ParticipantCount: n})
	}
	return out, nil
}

// GetExchangeDetail returns the exchange with its participants and resolved
// names, including gifter names once assigned.
func (s *Service) GetExchangeDetail(ctx context.Context, exID id.ExchangeID) (*ExchangeDetail, error) {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return nil, err
	}
	views, err := s.participantViews(ctx, exID)
	if err != nil {
		return nil, err
	}
	return &ExchangeDetail{Exchange: *ex, Participants: views}, nil
}

// Join enrolls the user. Joining the first participant opens a draft.
func (s *Service) Join(ctx context.Context, exID id.ExchangeID, userID id.UserID) error {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return err
	}
	if !assign.CanModify(ex.Status) {
		return dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s and no longer accepts membership changes", ex.Status)
	}

	now := s.now().UTC()
	p := &models.Participant{
		UserID:     userID,
		ExchangeID: exID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.AddParticipant(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "already a participant of this exchange")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to join exchange")
	}

	if err := s.advanceStatus(ctx, ex); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "participant joined",
		"exchange_id", exID, "user_id", userID)
	return nil
}

// Leave removes the user's enrollment. An open exchange stays open even if
// the last participant leaves.
func (s *Service) Leave(ctx context.Context, exID id.ExchangeID, userID id.UserID) error {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return err
	}
	if !assign.CanModify(ex.Status) {
		return dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s and no longer accepts membership changes", ex.Status)
	}

	if err := s.store.RemoveParticipant(ctx, exID, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "not a participant of this exchange")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to leave exchange")
	}

	s.logger.InfoContext(ctx, "participant left",
		"exchange_id", exID, "user_id", userID)
	return nil
}

// UpdateMessage sets the participant's gift wish.
func (s *Service) UpdateMessage(ctx context.Context, exID id.ExchangeID, userID id.UserID, message string) error {
	ex, err := s.getExchange(ctx, exID)
	if err != nil {
		return err
	}
	if !assign.CanModify(ex.Status) {
		return dErrors.Newf(dErrors.CodeInvalidState, "exchange is %s and messages can no longer be changed", ex.Status)
	}

	p, err := s.store.GetParticipant(ctx, exID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "not a participant of this exchange")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load participant")
	}

	p.Message = message
	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateParticipant(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update message")
	}
	return nil
}

// AddParticipant enrolls an arbitrary user on the admin's behalf. The user
// must exist in the directory.
func (s *Service) AddParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error {
	names, err := s.users.Names(ctx, []id.UserID{userID})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if _, ok := names[userID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return s.Join(ctx, exID, userID)
}

// RemoveParticipant removes an enrollment on the admin's behalf.
func (s *Service) RemoveParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error {
	return s.Leave(ctx, exID, userID)
}

// ParticipantsWithoutMessages lists enrolled users who have not written a
// gift wish yet.
func (s *Service) ParticipantsWithoutMessages(ctx context.Context, exID id.ExchangeID) ([]ParticipantView, error) {
	if _, err := s.getExchange(ctx, exID); err != nil {
		return nil, err
	}
	views, err := s.participantViews(ctx, exID)
	if err != nil {
		return nil, err
	}
	out := make([]ParticipantView, 0)
	for _, v := range views {
		if v.Message == "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) getExchange(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error) {
	ex, err := s.store.GetExchange(ctx, exID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "exchange not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load exchange")
	}
	return ex, nil
}

// advanceStatus applies the automatic Draft->Open transition after a
// membership change.
func (s *Service) advanceStatus(ctx context.Context, ex *models.Exchange) error {
	n, err := s.store.CountParticipants(ctx, ex.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count participants")
	}
	next := assign.NextStatus(ex.Status, n)
	if next == ex.Status {
		return nil
	}

	ex.Status = next
	ex.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateExchange(ctx, ex); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update exchange status")
	}
	s.logger.InfoContext(ctx, "exchange opened", "exchange_id", ex.ID)
	return nil
}

func (s *Service) participantViews(ctx context.Context, exID id.ExchangeID) ([]ParticipantView, error) {
	participants, err := s.store.ListParticipants(ctx, exID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list participants")
	}

	ids := make([]id.UserID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
		if p.GifterID != nil {
			ids = append(ids, *p.GifterID)
		}
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user names")
	}

	out := make([]ParticipantView, 0, len(participants))
	for _, p := range participants {
		v := ParticipantView{
			UserID:   p.UserID,
			Name:     names[p.UserID],
			Message:  p.Message,
			GifterID: p.GifterID,
		}
		if p.GifterID != nil {
			v.GifterName = names[*p.GifterID]
		}
		out = append(out, v)
	}
	return out, nil
}

func validateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}
	return nil
}
