package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Chative-shop-assistant/server/internal/agent/cart"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
	"github.com/Chative-shop-assistant/server/internal/agent/reply"
	errx "github.com/Chative-shop-assistant/server/internal/core/error"
	logx "github.com/Chative-shop-assistant/server/pkg/logger"
)

// Chatbot is the part of the router the HTTP layer needs.
type Chatbot interface {
	Handle(ctx context.Context, sessionID, message string) model.Reply
	Cart(ctx context.Context, sessionID string) (cart.Summary, error)
	ClearCart(ctx context.Context, sessionID string) (model.Reply, error)
	Reset(ctx context.Context, sessionID string) error
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	model.Reply
	SessionID string `json:"session_id"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type CartLineResponse struct {
	ProductID model.ProductID `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     int64           `json:"price"`
	LineTotal int64           `json:"line_total"`
}

type CartResponse struct {
	SessionID string             `json:"session_id"`
	Lines     []CartLineResponse `json:"lines"`
	Total     int64              `json:"total"`
}

// Handler handles chat and session requests
type Handler struct {
	bot     Chatbot
	metrics *Metrics
}

func NewHandler(bot Chatbot, metrics *Metrics) *Handler {
	return &Handler{bot: bot, metrics: metrics}
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Debug().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("undecodable chat request")
		req = ChatRequest{}
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get("X-Session-ID")
	}
	if req.SessionID == "" {
		req.SessionID = model.DefaultSessionID
	}

	res := h.bot.Handle(r.Context(), req.SessionID, req.Message)
	if h.metrics != nil {
		h.metrics.Observe(res)
	}

	status := http.StatusOK
	switch res.Intent {
	case model.IntentNoMessage:
		logx.Debug().Err(errx.ErrNoMessage).Str("session_id", req.SessionID).Msg("rejected chat request")
		status = http.StatusBadRequest
	case model.IntentError:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, ChatResponse{Reply: res, SessionID: req.SessionID})
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: uuid.NewString()})
}

// ResetSession handles DELETE /sessions/{id}
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l := logx.Session(id)
	if err := h.bot.Reset(r.Context(), id); err != nil {
		l.Error().Err(err).Msg("failed to reset session")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	l.Info().Msg("session reset")
	w.WriteHeader(http.StatusNoContent)
}

// GetCart handles GET /sessions/{id}/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sum, err := h.bot.Cart(r.Context(), id)
	if err != nil {
		logx.Session(id).Error().Err(err).Msg("failed to load cart")
		writeError(w, http.StatusInternalServerError, errx.New(err, errx.StatusOf(err), reply.SystemErrorText))
		return
	}

	resp := CartResponse{SessionID: id, Lines: make([]CartLineResponse, 0, len(sum.Lines)), Total: sum.Total}
	for _, l := range sum.Lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
			LineTotal: l.LineTotal,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearCart handles DELETE /sessions/{id}/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.bot.ClearCart(r.Context(), id)
	if err != nil {
		logx.Session(id).Error().Err(err).Msg("failed to clear cart")
		writeError(w, http.StatusInternalServerError, errx.New(err, errx.StatusOf(err), reply.SystemErrorText))
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: res, SessionID: id})
}
