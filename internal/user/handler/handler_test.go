package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"giftex/internal/jwttoken"
	"giftex/internal/user/service"
	"giftex/internal/user/store"
)

type HandlerSuite struct {
	suite.Suite
	router   chi.Router
	jwt      *jwttoken.JWTService
	tokenTTL time.Duration
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.New(store.NewMemory(), service.WithBcryptCost(bcrypt.MinCost))
	s.jwt = jwttoken.NewJWTService("test-signing-key", "giftex-test")
	s.tokenTTL = time.Hour

	h := New(users, s.jwt, jwttoken.NewJWTServiceAdapter(s.jwt), logger, s.tokenTTL)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
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

func (s *HandlerSuite) register(email string) userResponse {
	rec := s.do(http.MethodPost, "/auth/register", "", registerRequest{
		Email:    email,
		Password: "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp userResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) login(email string) string {
	rec := s.do(http.MethodPost, "/auth/login", "", loginRequest{
		Email:    email,
		Password: "correct-horse",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp tokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("Bearer", resp.TokenType)
	return resp.AccessToken
}

func (s *HandlerSuite) adminToken() string {
	token, err := s.jwt.GenerateAccessToken(uuid.New(), true, s.tokenTTL)
	s.Require().NoError(err)
	return token
}

func (s *HandlerSuite) TestRegisterLoginMe() {
	u := s.register("alice@example.com")
	s.Equal("Alice", u.Name)

	token := s.login("alice@example.com")

	rec := s.do(http.MethodGet, "/users/me", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var me userResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &me))
	s.Equal(u.ID, me.ID)
	s.Equal("alice@example.com", me.Email)
}

func (s *HandlerSuite) TestRegisterValidation() {
	s.Run("bad email", func() {
		rec := s.do(http.MethodPost, "/auth/register", "", registerRequest{
			Email:    "nope",
			Password: "correct-horse",
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("duplicate email", func() {
		s.register("dup@example.com")
		rec := s.do(http.MethodPost, "/auth/register", "", registerRequest{
			Email:    "dup@example.com",
			Password: "correct-horse",
		})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestLoginRejectsBadCredentials() {
	s.register("alice@example.com")

	rec := s.do(http.MethodPost, "/auth/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestMeRequiresAuth() {
	rec := s.do(http.MethodGet, "/users/me", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestAdminRoutes() {
	alice := s.register("alice@example.com")
	userToken := s.login("alice@example.com")
	adminToken := s.adminToken()

	s.Run("list forbidden for non-admin", func() {
		rec := s.do(http.MethodGet, "/admin/users", userToken, nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("admin lists users", func() {
		rec := s.do(http.MethodGet, "/admin/users", adminToken, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var list []userResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
		s.Len(list, 1)
	})

	s.Run("admin grants admin", func() {
		isAdmin := true
		rec := s.do(http.MethodPut, "/admin/users/"+alice.ID, adminToken, updateRequest{IsAdmin: &isAdmin})
		s.Require().Equal(http.StatusOK, rec.Code)

		var updated userResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
		s.True(updated.IsAdmin)
	})

	s.Run("admin deletes user", func() {
		rec := s.do(http.MethodDelete, "/admin/users/"+alice.ID, adminToken, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodDelete, "/admin/users/"+alice.ID, adminToken, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("invalid id is a bad request", func() {
		rec := s.do(http.MethodDelete, "/admin/users/not-a-uuid", adminToken, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
