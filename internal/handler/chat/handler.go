package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/locale"
	"github.com/zhouzirui/mnchat/internal/model/chat"
	"github.com/zhouzirui/mnchat/internal/model/persona"
	"github.com/zhouzirui/mnchat/pkg/utils"
)

var (
	ErrModelUnavailable = errors.New("model is not configured")
	ErrUnknownPersona   = errors.New("persona not found")
)

// Replier generates assistant replies.
type Replier interface {
	Reply(ctx context.Context, p *persona.Persona, history []chat.Turn, message string) (string, error)
}

// Handler serves the chat exchange over HTTP and websocket.
type Handler struct {
	replier   Replier
	personas  persona.Store
	defaultID string
	catalog   locale.Catalog
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// New creates the chat handler. replier may be nil when no model is
// configured; exchanges then fail with a service-unavailable reply.
func New(replier Replier, personas persona.Store, defaultPersonaID string, catalog locale.Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		replier:   replier,
		personas:  personas,
		defaultID: defaultPersonaID,
		catalog:   catalog,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	exchangeID := uuid.NewString()
	logger := h.logger.With(zap.String("exchange", exchangeID))

	var req chat.Request
	if err := utils.DecodeJSON(r, &req); err != nil {
		logger.Info("invalid chat request body", zap.Error(err))
		utils.RespondJSON(w, http.StatusBadRequest, h.failure("invalid request body"))
		return
	}

	reply, status := h.exchange(r.Context(), logger, r.URL.Query().Get("persona"), req)
	utils.RespondJSON(w, status, reply)
}

// exchange runs one request through the replier and returns the reply body
// with its HTTP status.
func (h *Handler) exchange(ctx context.Context, logger *zap.Logger, personaID string, req chat.Request) (chat.Reply, int) {
	p, err := h.resolvePersona(personaID)
	if err != nil {
		return h.failure(err.Error()), http.StatusBadRequest
	}
	if h.replier == nil {
		return h.failure(ErrModelUnavailable.Error()), http.StatusServiceUnavailable
	}

	logger.Debug("chat exchange",
		zap.String("persona", p.ID),
		zap.Int("history", len(req.History)),
	)

	text, err := h.replier.Reply(ctx, &p, req.History, req.Message)
	if err != nil {
		logger.Error("chat exchange failed", zap.Error(err))
		return h.failure(err.Error()), http.StatusInternalServerError
	}
	return chat.Reply{Response: text, Status: chat.StatusSuccess}, http.StatusOK
}

func (h *Handler) resolvePersona(id string) (persona.Persona, error) {
	if id == "" {
		id = h.defaultID
	}
	p, ok := h.personas.FindByID(id)
	if !ok {
		return persona.Persona{}, ErrUnknownPersona
	}
	return p, nil
}

func (h *Handler) failure(reason string) chat.Reply {
	return chat.Reply{Response: h.catalog.FailureIndicator + ": " + reason, Status: chat.StatusError}
}

// handleWebSocket answers every request frame with one reply frame until the
// client closes the connection.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	personaID := r.URL.Query().Get("persona")
	logger := h.logger.With(zap.String("conn", connID))
	logger.Debug("websocket connected", zap.String("remote", r.RemoteAddr))

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		var reply chat.Reply
		var req chat.Request
		if err := sonic.Unmarshal(data, &req); err != nil {
			reply = h.failure("invalid request frame")
		} else {
			reply, _ = h.exchange(ctx, logger.With(zap.String("exchange", uuid.NewString())), personaID, req)
		}

		payload, err := sonic.Marshal(reply)
		if err != nil {
			logger.Error("failed to encode reply frame", zap.Error(err))
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}
