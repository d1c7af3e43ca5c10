package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mnchat/internal/model/persona"
	"github.com/zhouzirui/mnchat/pkg/utils"
)

// Handler lists the personas the backend can answer as.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes registers the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{id}", h.handleGetPersona)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.personas.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found: "+id)
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
