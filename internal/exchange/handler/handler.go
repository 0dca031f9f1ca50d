// Package handler exposes the exchange endpoints: participation for users,
// lifecycle and assignment for admins.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	"giftex/internal/exchange/service"
	"giftex/internal/platform/middleware"
	"giftex/internal/transport/http/shared"
	id "giftex/pkg/domain"
	dErrors "giftex/pkg/domain-errors"
	pstrings "giftex/pkg/platform/strings"
	"giftex/pkg/requestcontext"
)

// Service defines the exchange operations the handler needs.
type Service interface {
	CreateExchange(ctx context.Context, name string, date time.Time) (*models.Exchange, error)
	UpdateExchange(ctx context.Context, exID id.ExchangeID, name string, date time.Time) (*models.Exchange, error)
	DeleteExchange(ctx context.Context, exID id.ExchangeID) error
	GetExchange(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error)
	GetExchangeDetail(ctx context.Context, exID id.ExchangeID) (*service.ExchangeDetail, error)
	ListExchanges(ctx context.Context) ([]service.ExchangeSummary, error)

	Join(ctx context.Context, exID id.ExchangeID, userID id.UserID) error
	Leave(ctx context.Context, exID id.ExchangeID, userID id.UserID) error
	UpdateMessage(ctx context.Context, exID id.ExchangeID, userID id.UserID, message string) error
	AddParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error
	RemoveParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error
	ParticipantsWithoutMessages(ctx context.Context, exID id.ExchangeID) ([]service.ParticipantView, error)

	Assign(ctx context.Context, exID id.ExchangeID, spec assign.HistorySpec) (*service.ExchangeDetail, error)
	AssignManual(ctx context.Context, exID id.ExchangeID, proposed []assign.Pair) (*service.ExchangeDetail, error)
	Close(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error)
	Reopen(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error)
	Statistics(ctx context.Context, exID id.ExchangeID) (*models.Statistics, error)
	AssignmentHistory(ctx context.Context, exID id.ExchangeID) ([]models.HistoryRound, error)
	MyAssignments(ctx context.Context, userID id.UserID) ([]models.MyAssignment, error)
}

// Handler handles exchange endpoints.
type Handler struct {
	exchanges Service
	validator middleware.JWTValidator
	logger    *slog.Logger
}

// New creates an exchange Handler.
func New(exchanges Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		exchanges: exchanges,
		validator: validator,
		logger:    logger,
	}
}

// Register mounts the authenticated user routes and the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/exchanges", h.handleList)
		r.Get("/exchanges/{exchangeID}/status", h.handleStatus)
		r.Post("/exchanges/{exchangeID}/join", h.handleJoin)
		r.Delete("/exchanges/{exchangeID}/leave", h.handleLeave)
		r.Put("/exchanges/{exchangeID}/message", h.handleMessage)
		r.Get("/assignments", h.handleMyAssignments)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireAdmin(h.logger))
		r.Post("/admin/exchanges", h.handleCreate)
		r.Get("/admin/exchanges/{exchangeID}", h.handleDetail)
		r.Put("/admin/exchanges/{exchangeID}", h.handleUpdate)
		r.Delete("/admin/exchanges/{exchangeID}", h.handleDelete)
		r.Post("/admin/exchanges/{exchangeID}/assign", h.handleAssign)
		r.Post("/admin/exchanges/{exchangeID}/assign/manual", h.handleAssignManual)
		r.Post("/admin/exchanges/{exchangeID}/close", h.handleClose)
		r.Post("/admin/exchanges/{exchangeID}/reopen", h.handleReopen)
		r.Get("/admin/exchanges/{exchangeID}/statistics", h.handleStatistics)
		r.Get("/admin/exchanges/{exchangeID}/history", h.handleHistory)
		r.Get("/admin/exchanges/{exchangeID}/participants-without-messages", h.handleWithoutMessages)
		r.Post("/admin/exchanges/{exchangeID}/participants", h.handleAddParticipant)
		r.Delete("/admin/exchanges/{exchangeID}/participants/{userID}", h.handleRemoveParticipant)
	})
}

type exchangeRequest struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

type exchangeResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	Status           string    `json:"status"`
	ParticipantCount *int      `json:"participant_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type participantResponse struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Message    string `json:"message,omitempty"`
	GifterID   string `json:"gifter_id,omitempty"`
	GifterName string `json:"gifter_name,omitempty"`
}

type detailResponse struct {
	exchangeResponse
	Participants []participantResponse `json:"participants"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type assignRequest struct {
	// Absent: default history. Empty list: history disabled. Populated:
	// exactly those exchanges.
	HistoryExchangeIDs []string `json:"history_exchange_ids"`
}

type manualAssignRequest struct {
	Assignments []manualPair `json:"assignments"`
}

type manualPair struct {
	GifterID    string `json:"gifter_id"`
	RecipientID string `json:"recipient_id"`
}

type addParticipantRequest struct {
	UserID string `json:"user_id"`
}

type statisticsResponse struct {
	ExchangeID               string `json:"exchange_id"`
	Status                   string `json:"status"`
	TotalParticipants        int    `json:"total_participants"`
	ParticipantsWithMessages int    `json:"participants_with_messages"`
	AssignedParticipants     int    `json:"assigned_participants"`
	CanAssign                bool   `json:"can_assign"`
	ReadyForAssignment       bool   `json:"ready_for_assignment"`
}

type historyRoundResponse struct {
	ExchangeID  string                      `json:"exchange_id"`
	Date        time.Time                   `json:"date"`
	Assignments []historyAssignmentResponse `json:"assignments"`
}

type historyAssignmentResponse struct {
	GifterName    string `json:"gifter_name"`
	RecipientName string `json:"recipient_name"`
}

type myAssignmentResponse struct {
	ExchangeID       string    `json:"exchange_id"`
	ExchangeName     string    `json:"exchange_name"`
	ExchangeDate     time.Time `json:"exchange_date"`
	RecipientName    string    `json:"recipient_name"`
	RecipientMessage string    `json:"recipient_message,omitempty"`
}

func toExchangeResponse(ex models.Exchange) exchangeResponse {
	return exchangeResponse{
		ID:        ex.ID.String(),
		Name:      ex.Name,
		Date:      ex.Date,
		Status:    ex.Status.String(),
		CreatedAt: ex.CreatedAt,
	}
}

func toDetailResponse(detail *service.ExchangeDetail) detailResponse {
	resp := detailResponse{
		exchangeResponse: toExchangeResponse(detail.Exchange),
		Participants:     make([]participantResponse, 0, len(detail.Participants)),
	}
	for _, p := range detail.Participants {
		pr := participantResponse{
			UserID:     p.UserID.String(),
			Name:       p.Name,
			Message:    p.Message,
			GifterName: p.GifterName,
		}
		if p.GifterID != nil {
			pr.GifterID = p.GifterID.String()
		}
		resp.Participants = append(resp.Participants, pr)
	}
	return resp
}

func exchangeIDFromRequest(r *http.Request) (id.ExchangeID, error) {
	exID, err := id.ParseExchangeID(chi.URLParam(r, "exchangeID"))
	if err != nil {
		return id.ExchangeID{}, dErrors.New(dErrors.CodeBadRequest, "invalid exchange id")
	}
	return exID, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.exchanges.ListExchanges(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]exchangeResponse, 0, len(summaries))
	for _, s := range summaries {
		resp := toExchangeResponse(s.Exchange)
		count := s.ParticipantCount
		resp.ParticipantCount = &count
		out = append(out, resp)
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ex, err := h.exchanges.GetExchange(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toExchangeResponse(*ex))
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.exchanges.Join(r.Context(), exID, requestcontext.UserID(r.Context())); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.exchanges.Leave(r.Context(), exID, requestcontext.UserID(r.Context())); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.exchanges.UpdateMessage(r.Context(), exID, requestcontext.UserID(r.Context()), req.Message); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMyAssignments(w http.ResponseWriter, r *http.Request) {
	mine, err := h.exchanges.MyAssignments(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]myAssignmentResponse, 0, len(mine))
	for _, a := range mine {
		out = append(out, myAssignmentResponse{
			ExchangeID:       a.ExchangeID.String(),
			ExchangeName:     a.ExchangeName,
			ExchangeDate:     a.ExchangeDate,
			RecipientName:    a.RecipientName,
			RecipientMessage: a.RecipientMessage,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ex, err := h.exchanges.CreateExchange(r.Context(), req.Name, req.Date)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toExchangeResponse(*ex))
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	detail, err := h.exchanges.GetExchangeDetail(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ex, err := h.exchanges.UpdateExchange(r.Context(), exID, req.Name, req.Date)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toExchangeResponse(*ex))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.exchanges.DeleteExchange(r.Context(), exID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// An empty body means default history resolution.
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	spec := assign.HistorySpec{}
	if req.HistoryExchangeIDs != nil {
		// DedupeAndTrim keeps nil and empty slices distinct, which this
		// field relies on: absent means default history, empty means none.
		raws := pstrings.DedupeAndTrim(req.HistoryExchangeIDs)
		spec.ExchangeIDs = make([]id.ExchangeID, 0, len(raws))
		for _, raw := range raws {
			histID, err := id.ParseExchangeID(raw)
			if err != nil {
				shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid history exchange id"))
				return
			}
			spec.ExchangeIDs = append(spec.ExchangeIDs, histID)
		}
	}

	detail, err := h.exchanges.Assign(ctx, exID, spec)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *Handler) handleAssignManual(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req manualAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	proposed := make([]assign.Pair, 0, len(req.Assignments))
	for _, pair := range req.Assignments {
		gifter, err := id.ParseUserID(pair.GifterID)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid gifter id"))
			return
		}
		recipient, err := id.ParseUserID(pair.RecipientID)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient id"))
			return
		}
		proposed = append(proposed, assign.Pair{Gifter: gifter, Recipient: recipient})
	}

	detail, err := h.exchanges.AssignManual(r.Context(), exID, proposed)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ex, err := h.exchanges.Close(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toExchangeResponse(*ex))
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ex, err := h.exchanges.Reopen(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toExchangeResponse(*ex))
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	stats, err := h.exchanges.Statistics(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statisticsResponse{
		ExchangeID:               stats.ExchangeID.String(),
		Status:                   stats.Status.String(),
		TotalParticipants:        stats.TotalParticipants,
		ParticipantsWithMessages: stats.ParticipantsWithMessages,
		AssignedParticipants:     stats.AssignedParticipants,
		CanAssign:                stats.CanAssign,
		ReadyForAssignment:       stats.ReadyForAssignment,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	rounds, err := h.exchanges.AssignmentHistory(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]historyRoundResponse, 0, len(rounds))
	for _, round := range rounds {
		hr := historyRoundResponse{
			ExchangeID:  round.ExchangeID.String(),
			Date:        round.Date,
			Assignments: make([]historyAssignmentResponse, 0, len(round.Assignments)),
		}
		for _, a := range round.Assignments {
			hr.Assignments = append(hr.Assignments, historyAssignmentResponse{
				GifterName:    a.GifterName,
				RecipientName: a.RecipientName,
			})
		}
		out = append(out, hr)
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleWithoutMessages(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	views, err := h.exchanges.ParticipantsWithoutMessages(r.Context(), exID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]participantResponse, 0, len(views))
	for _, v := range views {
		out = append(out, participantResponse{
			UserID: v.UserID.String(),
			Name:   v.Name,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req addParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.exchanges.AddParticipant(r.Context(), exID, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	exID, err := exchangeIDFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.exchanges.RemoveParticipant(r.Context(), exID, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
