package riskmetrics

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

// Handler exposes risk metrics over HTTP. Thin orchestration: loads the
// stored series, parses per-request overrides and delegates to the
// calculator.
type Handler struct {
	calc     *Calculator
	repo     *returns.Repository
	defaults Params
	log      zerolog.Logger
}

// NewHandler creates a new risk metrics handler
func NewHandler(calc *Calculator, repo *returns.Repository, defaults Params, log zerolog.Logger) *Handler {
	return &Handler{
		calc:     calc,
		repo:     repo,
		defaults: defaults,
		log:      log.With().Str("handler", "riskmetrics").Logger(),
	}
}

// HandleGetRiskMetrics serves GET /api/funds/{fundID}/risk
//
// Query parameters: risk_free_rate, confidence, mar (all optional,
// falling back to configured defaults); benchmark (fund ID of an
// aligned benchmark series).
func (h *Handler) HandleGetRiskMetrics(w http.ResponseWriter, r *http.Request) {
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
	if v, ok := queryFloat(r, "risk_free_rate"); ok {
		params.RiskFreeRate = v
	}
	if v, ok := queryFloat(r, "confidence"); ok {
		params.Confidence = v
	}
	if v, ok := queryFloat(r, "mar"); ok {
		params.MAR = v
	}

	var benchmark *returns.Series
	if benchID := r.URL.Query().Get("benchmark"); benchID != "" {
		benchmark, err = h.repo.GetSeries(benchID, returns.Daily)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if benchmark == nil {
			h.writeError(w, http.StatusNotFound, "no return series for benchmark "+benchID)
			return
		}
	}

	result, err := h.calc.Calculate(series, benchmark, params)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// queryFloat parses an optional float query parameter
func queryFloat(r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// statusForError maps engine error kinds to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrBenchmarkRequired):
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
