package returns

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler exposes stored return series over HTTP.
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new returns handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "returns").Logger(),
	}
}

// HandleListFunds serves GET /api/funds
func (h *Handler) HandleListFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.repo.ListFunds()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"funds": funds,
	})
}

// HandleGetSeries serves GET /api/funds/{fundID}/returns
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	fundID := chi.URLParam(r, "fundID")

	series, err := h.repo.GetSeries(fundID, Daily)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if series == nil {
		h.writeError(w, http.StatusNotFound, "no return series for fund "+fundID)
		return
	}

	h.writeJSON(w, http.StatusOK, series)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
