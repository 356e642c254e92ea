package anomaly

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
)

const (
	defaultTrees         = 100
	defaultSubsampleSize = 256
	defaultMinSamples    = 20
)

// Detector flags outlier observations in a return series using an
// isolation forest over engineered features. Stateless; a fixed seed
// makes a run fully reproducible regardless of internal parallelism.
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a new anomaly detector
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{
		log: log.With().Str("component", "anomaly").Logger(),
	}
}

// Detect scores every observation and flags the top contamination-rate
// fraction as anomalous, ties broken by earliest timestamp.
func (d *Detector) Detect(series *returns.Series, p Params) (*Result, error) {
	if series == nil {
		return nil, fmt.Errorf("%w: nil return series", domain.ErrInsufficientData)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	features := BuildFeatures(series.Values(), d.featureConfig(p))
	return d.DetectWithFeatures(series, features, p)
}

// DetectWithFeatures runs detection over a caller-supplied feature
// matrix, one row per observation. Used when the default feature set is
// not what the caller wants.
func (d *Detector) DetectWithFeatures(series *returns.Series, features [][]float64, p Params) (*Result, error) {
	minSamples := p.MinSamples
	if minSamples <= 0 {
		minSamples = defaultMinSamples
	}

	n := series.Len()
	if n < minSamples {
		return nil, fmt.Errorf("%w: %d observations, need at least %d", domain.ErrInsufficientData, n, minSamples)
	}
	if len(features) != n {
		return nil, fmt.Errorf("%w: %d feature rows for %d observations", domain.ErrInvalidInput, len(features), n)
	}
	width := len(features[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: empty feature rows", domain.ErrInvalidInput)
	}
	for i, row := range features {
		if len(row) != width {
			return nil, fmt.Errorf("%w: feature row %d has %d columns, expected %d", domain.ErrInvalidInput, i, len(row), width)
		}
	}
	if p.Contamination <= 0 || p.Contamination > 0.5 {
		return nil, fmt.Errorf("%w: contamination rate %v outside (0, 0.5]", domain.ErrInvalidInput, p.Contamination)
	}

	scores, err := d.scoreEnsemble(features, p)
	if err != nil {
		return nil, err
	}

	// Flag the top round(contamination * N) by score; ties resolve to
	// the earlier observation.
	numAnomalies := int(math.Round(p.Contamination * float64(n)))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	flagged := make([]bool, n)
	for i := 0; i < numAnomalies && i < n; i++ {
		flagged[order[i]] = true
	}

	points := make([]PointResult, n)
	for i, pt := range series.Points {
		points[i] = PointResult{
			Timestamp: pt.Timestamp,
			Score:     scores[i],
			IsAnomaly: flagged[i],
		}
	}

	d.log.Debug().
		Str("fund_id", series.FundID).
		Int("observations", n).
		Int("anomalies", numAnomalies).
		Float64("contamination", p.Contamination).
		Msg("Anomaly detection completed")

	return &Result{
		FundID:        series.FundID,
		Contamination: p.Contamination,
		NumAnomalies:  numAnomalies,
		Points:        points,
	}, nil
}

// scoreEnsemble builds the tree ensemble and averages isolation path
// lengths per point. Per-tree seeds are drawn from the master seed up
// front, so building trees in parallel cannot change the result.
func (d *Detector) scoreEnsemble(features [][]float64, p Params) ([]float64, error) {
	n := len(features)

	numTrees := p.Trees
	if numTrees <= 0 {
		numTrees = defaultTrees
	}

	subsample := p.SubsampleSize
	if subsample <= 0 {
		subsample = defaultSubsampleSize
	}
	if subsample > n {
		subsample = n
	}

	maxDepth := int(math.Ceil(math.Log2(float64(subsample)))) + 1

	master := rand.New(rand.NewSource(p.Seed))
	seeds := make([]int64, numTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*isolationTree, numTrees)

	var g errgroup.Group
	g.SetLimit(8)
	for i := 0; i < numTrees; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			sample := rng.Perm(n)[:subsample]
			trees[i] = buildTree(features, sample, maxDepth, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		total := 0.0
		for _, t := range trees {
			total += t.pathLength(features[i])
		}
		scores[i] = anomalyScore(total/float64(numTrees), subsample)
	}

	return scores, nil
}

func (d *Detector) featureConfig(p Params) FeatureConfig {
	cfg := p.Features
	if cfg.Window == 0 && !cfg.IncludeVolatility && !cfg.IncludeZScore {
		cfg = DefaultFeatures()
	}
	return cfg
}
