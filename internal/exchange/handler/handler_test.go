package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"giftex/internal/exchange/service"
	"giftex/internal/exchange/store"
	"giftex/internal/jwttoken"
	"giftex/internal/platform/lock"
	id "giftex/pkg/domain"
)

type fakeDirectory struct {
	names map[id.UserID]string
}

func (d *fakeDirectory) Names(_ context.Context, ids []id.UserID) (map[id.UserID]string, error) {
	out := make(map[id.UserID]string, len(ids))
	for _, userID := range ids {
		if name, ok := d.names[userID]; ok {
			out[userID] = name
		}
	}
	return out, nil
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	users  *fakeDirectory
	jwt    *jwttoken.JWTService
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.users = &fakeDirectory{names: make(map[id.UserID]string)}
	s.jwt = jwttoken.NewJWTService("test-signing-key", "giftex-test")

	exchanges := service.New(store.NewMemory(), s.users, lock.NewMemory(),
		service.WithLogger(logger),
		service.WithRand(rand.New(rand.NewSource(7))))

	h := New(exchanges, jwttoken.NewJWTServiceAdapter(s.jwt), logger)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) newUser(name string) (id.UserID, string) {
	userID := id.NewUserID()
	s.users.names[userID] = name
	token, err := s.jwt.GenerateAccessToken(uuid.UUID(userID), false, time.Hour)
	s.Require().NoError(err)
	return userID, token
}

func (s *HandlerSuite) adminToken() string {
	token, err := s.jwt.GenerateAccessToken(uuid.New(), true, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *HandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) createExchange(admin, name string) exchangeResponse {
	rec := s.do(http.MethodPost, "/admin/exchanges", admin, exchangeRequest{
		Name: name,
		Date: time.Now().AddDate(0, 1, 0).UTC(),
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp exchangeResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) TestAuthRequired() {
	rec := s.do(http.MethodGet, "/exchanges", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestAdminRequired() {
	_, token := s.newUser("Alice")
	rec := s.do(http.MethodPost, "/admin/exchanges", token, exchangeRequest{Name: "Nope"})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestJoinListLeave() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Christmas 2026")
	s.Equal("draft", ex.Status)

	_, alice := s.newUser("Alice")

	rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", alice, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	s.Run("joining twice conflicts", func() {
		rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", alice, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("list shows count and open status", func() {
		rec := s.do(http.MethodGet, "/exchanges", alice, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var list []exchangeResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
		s.Require().Len(list, 1)
		s.Equal("open", list[0].Status)
		s.Require().NotNil(list[0].ParticipantCount)
		s.Equal(1, *list[0].ParticipantCount)
	})

	s.Run("leave", func() {
		rec := s.do(http.MethodDelete, "/exchanges/"+ex.ID+"/leave", alice, nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *HandlerSuite) TestMessageRoundTrip() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Party")
	aliceID, alice := s.newUser("Alice")

	rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", alice, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPut, "/exchanges/"+ex.ID+"/message", alice, messageRequest{Message: "wool socks"})
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/admin/exchanges/"+ex.ID, admin, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var detail detailResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &detail))
	s.Require().Len(detail.Participants, 1)
	s.Equal(aliceID.String(), detail.Participants[0].UserID)
	s.Equal("wool socks", detail.Participants[0].Message)
}

func (s *HandlerSuite) TestAssignFlow() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Santa")

	tokens := make(map[id.UserID]string)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		userID, token := s.newUser(name)
		tokens[userID] = token
		rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", token, nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)
	}

	s.Run("assign returns full derangement", func() {
		rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/assign", admin, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var detail detailResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &detail))
		s.Equal("assigned", detail.Status)
		s.Require().Len(detail.Participants, 3)
		for _, p := range detail.Participants {
			s.NotEmpty(p.GifterID)
			s.NotEqual(p.UserID, p.GifterID)
			s.NotEmpty(p.GifterName)
		}
	})

	s.Run("assign twice conflicts", func() {
		rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/assign", admin, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("join after assignment conflicts", func() {
		_, late := s.newUser("Late")
		rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", late, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("each gifter sees exactly one recipient", func() {
		for _, token := range tokens {
			rec := s.do(http.MethodGet, "/assignments", token, nil)
			s.Require().Equal(http.StatusOK, rec.Code)

			var mine []myAssignmentResponse
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &mine))
			s.Require().Len(mine, 1)
			s.Equal(ex.ID, mine[0].ExchangeID)
			s.NotEmpty(mine[0].RecipientName)
		}
	})

	s.Run("close and reopen", func() {
		rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/close", admin, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/reopen", admin, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var reopened exchangeResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &reopened))
		s.Equal("assigned", reopened.Status)
	})
}

func (s *HandlerSuite) TestAssignTooFewParticipants() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Lonely")
	_, alice := s.newUser("Alice")
	rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", alice, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/assign", admin, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestManualAssign() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Manual")

	aliceID, alice := s.newUser("Alice")
	bobID, bob := s.newUser("Bob")
	for _, token := range []string{alice, bob} {
		rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", token, nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)
	}

	s.Run("self pair rejected with details", func() {
		rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/assign/manual", admin, manualAssignRequest{
			Assignments: []manualPair{
				{GifterID: aliceID.String(), RecipientID: aliceID.String()},
				{GifterID: bobID.String(), RecipientID: bobID.String()},
			},
		})
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "self_pairs")
	})

	s.Run("valid swap applied", func() {
		rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/assign/manual", admin, manualAssignRequest{
			Assignments: []manualPair{
				{GifterID: aliceID.String(), RecipientID: bobID.String()},
				{GifterID: bobID.String(), RecipientID: aliceID.String()},
			},
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		var detail detailResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &detail))
		s.Equal("assigned", detail.Status)
	})
}

func (s *HandlerSuite) TestStatisticsAndNudges() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Stats")

	_, alice := s.newUser("Alice")
	bobID, bob := s.newUser("Bob")
	for _, token := range []string{alice, bob} {
		rec := s.do(http.MethodPost, "/exchanges/"+ex.ID+"/join", token, nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)
	}
	rec := s.do(http.MethodPut, "/exchanges/"+ex.ID+"/message", alice, messageRequest{Message: "books"})
	s.Require().Equal(http.StatusNoContent, rec.Code)

	s.Run("statistics", func() {
		rec := s.do(http.MethodGet, "/admin/exchanges/"+ex.ID+"/statistics", admin, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var stats statisticsResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &stats))
		s.Equal(2, stats.TotalParticipants)
		s.Equal(1, stats.ParticipantsWithMessages)
		s.True(stats.CanAssign)
		s.False(stats.ReadyForAssignment)
	})

	s.Run("nudge list names the silent participant", func() {
		rec := s.do(http.MethodGet, "/admin/exchanges/"+ex.ID+"/participants-without-messages", admin, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var missing []participantResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &missing))
		s.Require().Len(missing, 1)
		s.Equal(bobID.String(), missing[0].UserID)
	})
}

func (s *HandlerSuite) TestAdminParticipantManagement() {
	admin := s.adminToken()
	ex := s.createExchange(admin, "Managed")
	aliceID, _ := s.newUser("Alice")

	rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/participants", admin, addParticipantRequest{
		UserID: aliceID.String(),
	})
	s.Require().Equal(http.StatusNoContent, rec.Code)

	s.Run("unknown user not found", func() {
		rec := s.do(http.MethodPost, "/admin/exchanges/"+ex.ID+"/participants", admin, addParticipantRequest{
			UserID: uuid.NewString(),
		})
		s.Equal(http.StatusNotFound, rec.Code)
	})

	rec = s.do(http.MethodDelete, "/admin/exchanges/"+ex.ID+"/participants/"+aliceID.String(), admin, nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestUnknownExchange() {
	_, alice := s.newUser("Alice")

	rec := s.do(http.MethodGet, "/exchanges/"+uuid.NewString()+"/status", alice, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/exchanges/not-a-uuid/status", alice, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}
