package stocks

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

// Handler exposes the stock catalog and selected assets HTTP API
type Handler struct {
	catalog  *Repository
	selected *SelectedRepository
	sessions SessionResolver
	log      zerolog.Logger
}

// NewHandler creates a new stocks handler
func NewHandler(catalog *Repository, selected *SelectedRepository, sessions SessionResolver, log zerolog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		selected: selected,
		sessions: sessions,
		log:      log.With().Str("handler", "stocks").Logger(),
	}
}

// RegisterRoutes mounts the stock endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stocks", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Get("/industries", h.Industries)
		r.Get("/{ticker}", h.Get)
	})

	r.Route("/selected-assets", func(r chi.Router) {
		r.Get("/", h.ListSelected)
		r.Post("/{ticker}", h.Select)
		r.Delete("/{ticker}", h.Deselect)
		r.Delete("/", h.ClearSelected)
	})
}

// Search handles GET /api/stocks
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	result, err := h.catalog.Search(q.Get("query"), q.Get("industry"), page, size)
	if err != nil {
		h.log.Error().Err(err).Msg("Stock search failed")
		writeError(w, http.StatusInternalServerError, "query error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/stocks/{ticker}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	stock, err := h.catalog.GetByTicker(ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Stock lookup failed")
		writeError(w, http.StatusInternalServerError, "query error")
		return
	}
	if stock == nil {
		writeError(w, http.StatusNotFound, "stock not found")
		return
	}

	writeJSON(w, http.StatusOK, stock)
}

// Industries handles GET /api/stocks/industries
func (h *Handler) Industries(w http.ResponseWriter, r *http.Request) {
	industries, err := h.catalog.Industries()
	if err != nil {
		h.log.Error().Err(err).Msg("Industry listing failed")
		writeError(w, http.StatusInternalServerError, "query error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"industries": industries})
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

// ListSelected handles GET /api/selected-assets
func (h *Handler) ListSelected(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	assets, err := h.selected.List(sessionID)
	if err != nil {
		h.log.Error().Err(err).Msg("Selected asset listing failed")
		writeError(w, http.StatusInternalServerError, "query error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"assets":     assets,
		"count":      len(assets),
		"max":        MaxSelectedAssets,
	})
}

// Select handles POST /api/selected-assets/{ticker}
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	ticker := chi.URLParam(r, "ticker")
	if err := h.selected.Add(sessionID, ticker); err != nil {
		h.writeSelectionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "asset selected",
		"ticker":  ticker,
	})
}

// Deselect handles DELETE /api/selected-assets/{ticker}
func (h *Handler) Deselect(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	ticker := chi.URLParam(r, "ticker")
	if err := h.selected.Remove(sessionID, ticker); err != nil {
		h.writeSelectionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "asset deselected",
		"ticker":  ticker,
	})
}

// ClearSelected handles DELETE /api/selected-assets
func (h *Handler) ClearSelected(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.selected.Clear(sessionID); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear selected assets")
		writeError(w, http.StatusInternalServerError, "delete error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "selection cleared"})
}

func (h *Handler) writeSelectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownTicker), errors.Is(err, ErrNotSelected):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSelectionFull), errors.Is(err, ErrAlreadySelected), errors.Is(err, ErrInvalidSelection):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Selection update failed")
		writeError(w, http.StatusInternalServerError, "selection error")
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
