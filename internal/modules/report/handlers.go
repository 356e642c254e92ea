package report

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/allocation"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/anomaly"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/riskmetrics"
)

// Handler exposes full analytics reports over HTTP.
type Handler struct {
	service         *Service
	repo            *returns.Repository
	riskDefaults    riskmetrics.Params
	anomalyDefaults anomaly.Params
	allocDefaults   allocation.Params
	log             zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(service *Service, repo *returns.Repository, riskDefaults riskmetrics.Params, anomalyDefaults anomaly.Params, allocDefaults allocation.Params, log zerolog.Logger) *Handler {
	return &Handler{
		service:         service,
		repo:            repo,
		riskDefaults:    riskDefaults,
		anomalyDefaults: anomalyDefaults,
		allocDefaults:   allocDefaults,
		log:             log.With().Str("handler", "report").Logger(),
	}
}

// reportRequest is the wire shape of a report request. The fund's
// return series is loaded from storage; allocation inputs are optional.
type reportRequest struct {
	BenchmarkID string `json:"benchmark_id,omitempty"`

	RiskFreeRate  *float64 `json:"risk_free_rate,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Contamination *float64 `json:"contamination,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`

	Weights      map[string]float64               `json:"weights,omitempty"`
	Stats        map[string]allocation.AssetStats `json:"stats,omitempty"`
	Correlations *struct {
		Assets []string    `json:"assets"`
		Matrix [][]float64 `json:"matrix"`
	} `json:"correlations,omitempty"`
}

// HandleGenerate serves POST /api/funds/{fundID}/report
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
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

	var body reportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	req := Request{
		Series:           series,
		Risk:             h.riskDefaults,
		Anomaly:          h.anomalyDefaults,
		AllocationParams: h.allocDefaults,
	}

	if body.BenchmarkID != "" {
		benchmark, err := h.repo.GetSeries(body.BenchmarkID, returns.Daily)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if benchmark == nil {
			h.writeError(w, http.StatusNotFound, "no return series for benchmark "+body.BenchmarkID)
			return
		}
		req.Benchmark = benchmark
	}

	if body.RiskFreeRate != nil {
		req.Risk.RiskFreeRate = *body.RiskFreeRate
		req.AllocationParams.RiskFreeRate = *body.RiskFreeRate
	}
	if body.Confidence != nil {
		req.Risk.Confidence = *body.Confidence
	}
	if body.Contamination != nil {
		req.Anomaly.Contamination = *body.Contamination
	}
	if body.Seed != nil {
		req.Anomaly.Seed = *body.Seed
	}

	if len(body.Weights) > 0 {
		req.Weights = body.Weights
		req.AssetStats = body.Stats

		if body.Correlations == nil {
			h.writeError(w, http.StatusBadRequest, "allocation requested without a correlation matrix")
			return
		}
		corr, err := buildMatrix(body.Correlations.Assets, body.Correlations.Matrix)
		if err != nil {
			h.writeError(w, statusForError(err), err.Error())
			return
		}
		req.Correlations = corr
	}

	result, err := h.service.Generate(req)
	if err != nil {
		h.writeError(w, statusForError(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// buildMatrix converts wire-format rows into a symmetric correlation matrix.
func buildMatrix(assets []string, rows [][]float64) (allocation.CorrelationMatrix, error) {
	n := len(assets)
	if n == 0 || len(rows) != n {
		return allocation.CorrelationMatrix{}, domain.ErrDimensionMismatch
	}

	m := mat.NewSymDense(n, nil)
	for i, row := range rows {
		if len(row) != n {
			return allocation.CorrelationMatrix{}, domain.ErrDimensionMismatch
		}
		for j := i; j < n; j++ {
			m.SetSym(i, j, row[j])
		}
	}

	return allocation.CorrelationMatrix{Assets: assets, Matrix: m}, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrBenchmarkRequired),
		errors.Is(err, domain.ErrInconsistentAllocation),
		errors.Is(err, domain.ErrDimensionMismatch):
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
