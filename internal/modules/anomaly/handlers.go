package anomaly

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
)

// Handler exposes anomaly detection over HTTP.
type Handler struct {
	detector *Detector
	repo     *returns.Repository
	defaults Params
	log      zerolog.Logger
}

// NewHandler creates a new anomaly handler
func NewHandler(detector *Detector, repo *returns.Repository, defaults Params, log zerolog.Logger) *Handler {
	return &Handler{
		detector: detector,
		repo:     repo,
		defaults: defaults,
		log:      log.With().Str("handler", "anomaly").Logger(),
	}
}

// HandleDetect serves GET /api/funds/{fundID}/anomalies
//
// Query parameters: contamination, seed (optional, falling back to the
// configured defaults).
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	fundID := chi.URLParam(r, "fundID")

	series, err := h.repo.GetSeries(fundID, returns.Daily)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if series == nil {
		h.writeError(w, http.StatusNotFound, "no return series for fund "+fundID)
		return
	}

	params := h.defaults
	if raw := r.URL.Query().Get("contamination"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			params.Contamination = v
		}
	}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			params.Seed = v
		}
	}

	result, err := h.detector.Detect(series, params)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
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
