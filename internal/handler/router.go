package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/mnchat/internal/handler/chat"
	"github.com/zhouzirui/mnchat/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/mnchat/internal/middleware"
	chatModel "github.com/zhouzirui/mnchat/internal/model/chat"
	personaModel "github.com/zhouzirui/mnchat/internal/model/persona"
	"github.com/zhouzirui/mnchat/pkg/utils"
)

// Options carries what the router needs beyond the handlers.
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	// Model is reported by / and /health; empty when no model is configured.
	Model string
}

// NewRouter wires HTTP routes to the chat handlers.
func NewRouter(chatHandler *chat.Handler, personas personaModel.Store, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(opts.AllowedOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, serviceInfo(opts.Model))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if opts.Model == "" {
			status = "degraded"
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": status, "model": opts.Model})
	})

	chatHandler.RegisterRoutes(r)
	persona.New(personas).RegisterRoutes(r)

	return r
}

func serviceInfo(model string) map[string]any {
	return map[string]any{
		"status":  "online",
		"message": "Mongolian Chatbot API is running! 🇲🇳",
		"endpoints": map[string]string{
			"/":              "GET - This page",
			"/chat":          "POST - Send chat messages",
			"/ws":            "GET - Websocket chat, one reply frame per request frame",
			"/personas":      "GET - List personas",
			"/personas/{id}": "GET - One persona",
			"/health":        "GET - Check server health",
		},
		"model": model,
		"usage": map[string]any{
			"example": map[string]any{
				"url":    "/chat",
				"method": http.MethodPost,
				"body": chatModel.Request{
					Message: "Сайн байна уу?",
					History: []chatModel.Turn{},
				},
			},
		},
	}
}
