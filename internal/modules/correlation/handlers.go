package correlation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SessionResolver resolves (and creates on demand) the analysis session for a
// request-supplied session identifier.
type SessionResolver interface {
	Resolve(sessionID string) (string, error)
}

// Handler exposes the correlation analysis HTTP API
type Handler struct {
	service  *Service
	sessions SessionResolver
	log      zerolog.Logger
}

// NewHandler creates a new correlation handler
func NewHandler(service *Service, sessions SessionResolver, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		log:      log.With().Str("handler", "correlation").Logger(),
	}
}

// RegisterRoutes mounts the correlation endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/correlation", func(r chi.Router) {
		r.Post("/analyze", h.Analyze)
		r.Post("/analyze-selected", h.AnalyzeSelected)
		r.Get("/results", h.Results)
		r.Get("/heatmap", h.Heatmap)
		r.Get("/high-correlations", h.HighCorrelations)
		r.Get("/diversification-guide", h.Guide)
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

// Analyze handles POST /api/correlation/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Analyze(sessionID, &req)
	if err != nil {
		h.writeServiceError(w, err, "analysis error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AnalyzeSelected handles POST /api/correlation/analyze-selected
func (h *Handler) AnalyzeSelected(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := h.service.AnalyzeSelected(sessionID)
	if err != nil {
		h.writeServiceError(w, err, "analysis error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Results handles GET /api/correlation/results
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := h.service.Results(sessionID)
	if err != nil {
		h.writeServiceError(w, err, "query error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Heatmap handles GET /api/correlation/heatmap
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var tickers []string
	if raw := r.URL.Query().Get("tickers"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
	}

	heatmap, err := h.service.HeatmapFor(sessionID, tickers)
	if err != nil {
		h.writeServiceError(w, err, "generation error")
		return
	}

	writeJSON(w, http.StatusOK, heatmap)
}

// HighCorrelations handles GET /api/correlation/high-correlations
func (h *Handler) HighCorrelations(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	threshold := DefaultHighCorrelationThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0.0 || parsed > 1.0 {
			writeError(w, http.StatusBadRequest, "threshold must be between 0.0 and 1.0")
			return
		}
		threshold = parsed
	}

	pairs, err := h.service.HighCorrelations(sessionID, threshold)
	if err != nil {
		h.writeServiceError(w, err, "query error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":             sessionID,
		"threshold":              threshold,
		"high_correlation_pairs": pairs,
		"count":                  len(pairs),
	})
}

// Guide handles GET /api/correlation/diversification-guide
func (h *Handler) Guide(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	threshold := DefaultHighCorrelationThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0.0 || parsed > 1.0 {
			writeError(w, http.StatusBadRequest, "threshold must be between 0.0 and 1.0")
			return
		}
		threshold = parsed
	}

	guide, err := h.service.GuideFor(sessionID, threshold)
	if err != nil {
		h.writeServiceError(w, err, "generation error")
		return
	}

	writeJSON(w, http.StatusOK, guide)
}

// Delete handles DELETE /api/correlation/results
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(sessionID); err != nil {
		h.writeServiceError(w, err, "delete error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "analysis results deleted",
		"session_id": sessionID,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNoData):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
