package screening

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SessionResolver resolves (and creates on demand) the session for a request
type SessionResolver interface {
	Resolve(sessionID string) (string, error)
}

// Handler exposes the multifactor screening HTTP API
type Handler struct {
	service  *Service
	sessions SessionResolver
	log      zerolog.Logger
}

// NewHandler creates a new screening handler
func NewHandler(service *Service, sessions SessionResolver, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		log:      log.With().Str("handler", "screening").Logger(),
	}
}

// RegisterRoutes mounts the screening endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/screening", func(r chi.Router) {
		r.Post("/run", h.Run)
		r.Get("/results", h.Results)
		r.Delete("/results", h.Delete)
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID, err := h.sessions.Resolve(r.Header.Get("X-Session-ID"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve session")
		writeError(w, http.StatusInternalServerError, "session error")
		return "", false
	}
	w.Header().Set("X-Session-ID", sessionID)
	return sessionID, true
}

// Run handles POST /api/screening/run
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	req := &Request{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	page, err := h.service.Run(sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeights), errors.Is(err, ErrEmptyUniverse):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Screening run failed")
			writeError(w, http.StatusInternalServerError, "screening error")
		}
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Results handles GET /api/screening/results
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	top50Only := q.Get("top50") == "true"

	result, err := h.service.Results(sessionID, page, size, top50Only)
	if err != nil {
		h.log.Error().Err(err).Msg("Screening result query failed")
		writeError(w, http.StatusInternalServerError, "query error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/screening/results
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(sessionID); err != nil {
		h.log.Error().Err(err).Msg("Screening result deletion failed")
		writeError(w, http.StatusInternalServerError, "delete error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "screening results deleted",
		"session_id": sessionID,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
