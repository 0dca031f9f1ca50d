//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	"giftex/internal/exchange/store"
	id "giftex/pkg/domain"
	"giftex/pkg/platform/sentinel"
	"giftex/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	// Truncate in dependency order
	err := s.postgres.TruncateTables(s.ctx, "participants", "exchanges", "users")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newExchange(name string) *models.Exchange {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Exchange{
		ID:        id.NewExchangeID(),
		Name:      name,
		Date:      now.AddDate(0, 1, 0),
		Status:    assign.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// insertUser satisfies the participants foreign keys. User rows are owned by
// the user store, which is out of scope here.
func (s *PostgresStoreSuite) insertUser() id.UserID {
	userID := id.NewUserID()
	now := time.Now().UTC()
	_, err := s.postgres.DB.ExecContext(s.ctx, `
		INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, 'x', FALSE, $4, $4)`,
		uuid.UUID(userID), "Test User", userID.String()+"@example.com", now)
	s.Require().NoError(err)
	return userID
}

func (s *PostgresStoreSuite) newParticipant(exID id.ExchangeID) *models.Participant {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Participant{
		UserID:     s.insertUser(),
		ExchangeID: exID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *PostgresStoreSuite) TestExchangeRoundTrip() {
	ex := s.newExchange("Christmas 2026")
	s.Require().NoError(s.store.CreateExchange(s.ctx, ex))

	found, err := s.store.GetExchange(s.ctx, ex.ID)
	s.Require().NoError(err)
	s.Equal(ex.Name, found.Name)
	s.Equal(assign.StatusDraft, found.Status)
	s.WithinDuration(ex.CreatedAt, found.CreatedAt, time.Millisecond)

	s.ErrorIs(s.store.CreateExchange(s.ctx, ex), sentinel.ErrConflict)

	ex.Status = assign.StatusOpen
	s.Require().NoError(s.store.UpdateExchange(s.ctx, ex))

	found, err = s.store.GetExchange(s.ctx, ex.ID)
	s.Require().NoError(err)
	s.Equal(assign.StatusOpen, found.Status)

	s.Require().NoError(s.store.DeleteExchange(s.ctx, ex.ID))
	_, err = s.store.GetExchange(s.ctx, ex.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestParticipantLifecycle() {
	ex := s.newExchange("Party")
	s.Require().NoError(s.store.CreateExchange(s.ctx, ex))

	p := s.newParticipant(ex.ID)
	s.Require().NoError(s.store.AddParticipant(s.ctx, p))
	s.ErrorIs(s.store.AddParticipant(s.ctx, p), sentinel.ErrConflict)

	found, err := s.store.GetParticipant(s.ctx, ex.ID, p.UserID)
	s.Require().NoError(err)
	s.Nil(found.GifterID)
	s.Empty(found.Message)

	p.Message = "board games please"
	s.Require().NoError(s.store.UpdateParticipant(s.ctx, p))

	found, err = s.store.GetParticipant(s.ctx, ex.ID, p.UserID)
	s.Require().NoError(err)
	s.Equal("board games please", found.Message)

	n, err := s.store.CountParticipants(s.ctx, ex.ID)
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Require().NoError(s.store.RemoveParticipant(s.ctx, ex.ID, p.UserID))
	s.ErrorIs(s.store.RemoveParticipant(s.ctx, ex.ID, p.UserID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestGifterAssignment() {
	ex := s.newExchange("Secret Santa")
	s.Require().NoError(s.store.CreateExchange(s.ctx, ex))

	alice := s.newParticipant(ex.ID)
	bob := s.newParticipant(ex.ID)
	s.Require().NoError(s.store.AddParticipant(s.ctx, alice))
	s.Require().NoError(s.store.AddParticipant(s.ctx, bob))

	s.Require().NoError(s.store.SetGifter(s.ctx, ex.ID, alice.UserID, bob.UserID))

	found, err := s.store.GetParticipant(s.ctx, ex.ID, alice.UserID)
	s.Require().NoError(err)
	s.Require().NotNil(found.GifterID)
	s.Equal(bob.UserID, *found.GifterID)

	recipients, err := s.store.ListByGifter(s.ctx, bob.UserID)
	s.Require().NoError(err)
	s.Require().Len(recipients, 1)
	s.Equal(alice.UserID, recipients[0].UserID)
}

func (s *PostgresStoreSuite) TestTransactRollsBackOnError() {
	ex := s.newExchange("Atomic")
	s.Require().NoError(s.store.CreateExchange(s.ctx, ex))
	p := s.newParticipant(ex.ID)
	s.Require().NoError(s.store.AddParticipant(s.ctx, p))

	boom := errors.New("boom")
	err := s.store.Transact(s.ctx, func(ctx context.Context) error {
		if err := s.store.SetGifter(ctx, ex.ID, p.UserID, s.insertUser()); err != nil {
			return err
		}
		ex.Status = assign.StatusAssigned
		if err := s.store.UpdateExchange(ctx, ex); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	found, err := s.store.GetParticipant(s.ctx, ex.ID, p.UserID)
	s.Require().NoError(err)
	s.Nil(found.GifterID)

	foundEx, err := s.store.GetExchange(s.ctx, ex.ID)
	s.Require().NoError(err)
	s.Equal(assign.StatusDraft, foundEx.Status)
}

func (s *PostgresStoreSuite) TestHistoryQueries() {
	base := time.Now().UTC().Truncate(time.Microsecond)

	makeRound := func(name string, createdAt time.Time, pairs int) id.ExchangeID {
		ex := s.newExchange(name)
		ex.CreatedAt = createdAt
		ex.Status = assign.StatusAssigned
		s.Require().NoError(s.store.CreateExchange(s.ctx, ex))
		for i := 0; i < pairs; i++ {
			p := s.newParticipant(ex.ID)
			g := s.insertUser()
			p.GifterID = &g
			s.Require().NoError(s.store.AddParticipant(s.ctx, p))
		}
		return ex.ID
	}

	oldID := makeRound("Annual", base.Add(-2*time.Hour), 2)
	newID := makeRound("Annual", base.Add(-time.Hour), 3)
	makeRound("Other", base, 1)

	history, err := s.store.HistorySnapshot(s.ctx, "Annual")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(newID, history[0].ID)
	s.Len(history[0].Pairs, 3)
	s.Equal(oldID, history[1].ID)
	s.Len(history[1].Pairs, 2)

	byIDs, err := s.store.HistoryByIDs(s.ctx, []id.ExchangeID{oldID, id.NewExchangeID()})
	s.Require().NoError(err)
	s.Require().Len(byIDs, 1)
	s.Equal(oldID, byIDs[0].ID)
}
