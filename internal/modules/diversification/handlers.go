package diversification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/belovelace/Portfolio-Optimizer/internal/modules/correlation"
)

// Handler exposes the portfolio optimization HTTP API
type Handler struct {
	service  *Service
	sessions correlation.SessionResolver
	log      zerolog.Logger
}

// NewHandler creates a new diversification handler
func NewHandler(service *Service, sessions correlation.SessionResolver, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		log:      log.With().Str("handler", "diversification").Logger(),
	}
}

// RegisterRoutes mounts the optimization endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/correlation/diversification/optimize", h.Optimize)
}

// Optimize handles POST /api/correlation/diversification/optimize
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.sessions.Resolve(r.Header.Get("X-Session-ID"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	w.Header().Set("X-Session-ID", sessionID)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Optimize(sessionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, correlation.ErrInvalidRequest), errors.Is(err, correlation.ErrNoData):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Optimization failed")
			writeError(w, http.StatusInternalServerError, "optimization error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
