package allocation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
)

// Handler exposes allocation optimization over HTTP.
type Handler struct {
	optimizer *Optimizer
	defaults  Params
	log       zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(optimizer *Optimizer, defaults Params, log zerolog.Logger) *Handler {
	return &Handler{
		optimizer: optimizer,
		defaults:  defaults,
		log:       log.With().Str("handler", "allocation").Logger(),
	}
}

// optimizeRequest is the wire shape of an optimization request. The
// correlation matrix arrives as nested rows ordered by the assets list.
type optimizeRequest struct {
	Weights      map[string]float64    `json:"weights"`
	Stats        map[string]AssetStats `json:"stats"`
	Correlations struct {
		Assets []string    `json:"assets"`
		Matrix [][]float64 `json:"matrix"`
	} `json:"correlations"`
	MaxStep      *float64 `json:"max_step,omitempty"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
}

// HandleOptimize serves POST /api/allocation/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	corr, err := buildMatrix(req.Correlations.Assets, req.Correlations.Matrix)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	params := h.defaults
	if req.MaxStep != nil {
		params.MaxStep = *req.MaxStep
	}
	if req.RiskFreeRate != nil {
		params.RiskFreeRate = *req.RiskFreeRate
	}

	rec, err := h.optimizer.Optimize(req.Weights, req.Stats, corr, params)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

// buildMatrix converts wire-format rows into a symmetric correlation matrix.
func buildMatrix(assets []string, rows [][]float64) (CorrelationMatrix, error) {
	n := len(assets)
	if n == 0 || len(rows) != n {
		return CorrelationMatrix{}, domain.ErrDimensionMismatch
	}

	m := mat.NewSymDense(n, nil)
	for i, row := range rows {
		if len(row) != n {
			return CorrelationMatrix{}, domain.ErrDimensionMismatch
		}
		for j := i; j < n; j++ {
			m.SetSym(i, j, row[j])
		}
	}

	return CorrelationMatrix{Assets: assets, Matrix: m}, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInconsistentAllocation),
		errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadRequest
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
