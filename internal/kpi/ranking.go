package kpi

import (
	"math"
	"sort"
)

const (
	// DefaultTopN is the leaderboard size used when the caller does not pick one.
	DefaultTopN = 5

	flatScore = 50.0
)

// ScoreWeights configures the composite score. Hold and wrap reward lower
// values, the rest reward higher values.
type ScoreWeights struct {
	Hold           float64 `json:"hold" yaml:"hold"`
	Wrap           float64 `json:"wrap" yaml:"wrap"`
	CSATBehaviour  float64 `json:"csat_behaviour" yaml:"csat_behaviour"`
	CSATResolution float64 `json:"csat_resolution" yaml:"csat_resolution"`
	AutoOn         float64 `json:"auto_on" yaml:"auto_on"`
}

// DefaultScoreWeights returns the reference weight set.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Hold:           0.05,
		Wrap:           0.05,
		CSATBehaviour:  0.25,
		CSATResolution: 0.25,
		AutoOn:         0.40,
	}
}

type bounds struct {
	min, max float64
}

func boundsOf(rows []EmployeeMetricRow, field func(EmployeeMetricRow) float64) bounds {
	b := bounds{min: math.Inf(1), max: math.Inf(-1)}
	for _, r := range rows {
		v := sanitize(field(r))
		b.min = math.Min(b.min, v)
		b.max = math.Max(b.max, v)
	}
	return b
}

// scale maps v into [0, 100] relative to the bounds; equal bounds give 50.
// Differences are taken on halved values so the span of two large finite
// bounds of opposite sign cannot overflow.
func (b bounds) scale(v float64, invert bool) float64 {
	span := b.max/2 - b.min/2
	if b.max == b.min || span == 0 {
		return flatScore
	}
	v = sanitize(v)
	if invert {
		return 100 * (b.max/2 - v/2) / span
	}
	return 100 * (v/2 - b.min/2) / span
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Score computes the weighted composite for each row without sorting.
func Score(rows []EmployeeMetricRow, w ScoreWeights) []RankedResult {
	if len(rows) == 0 {
		return []RankedResult{}
	}

	hold := boundsOf(rows, func(r EmployeeMetricRow) float64 { return r.HoldSeconds })
	wrap := boundsOf(rows, func(r EmployeeMetricRow) float64 { return r.WrapSeconds })
	autoOn := boundsOf(rows, func(r EmployeeMetricRow) float64 { return r.AutoOnSeconds })
	res := boundsOf(rows, func(r EmployeeMetricRow) float64 { return r.CSATResolution })
	beh := boundsOf(rows, func(r EmployeeMetricRow) float64 { return r.CSATBehaviour })

	out := make([]RankedResult, len(rows))
	for i, r := range rows {
		c := ScoreComponents{
			Hold:           hold.scale(r.HoldSeconds, true),
			Wrap:           wrap.scale(r.WrapSeconds, true),
			AutoOn:         autoOn.scale(r.AutoOnSeconds, false),
			CSATResolution: res.scale(r.CSATResolution, false),
			CSATBehaviour:  beh.scale(r.CSATBehaviour, false),
		}
		out[i] = RankedResult{
			EmployeeMetricRow: r,
			Components:        c,
			Score: c.Hold*w.Hold +
				c.Wrap*w.Wrap +
				c.AutoOn*w.AutoOn +
				c.CSATResolution*w.CSATResolution +
				c.CSATBehaviour*w.CSATBehaviour,
		}
	}
	return out
}

// RankTopPerformers scores rows, orders them by descending score and returns
// the first n. Rows with equal scores keep their input order.
func RankTopPerformers(rows []EmployeeMetricRow, w ScoreWeights, n int) []RankedResult {
	if n <= 0 || len(rows) == 0 {
		return []RankedResult{}
	}

	scored := Score(rows, w)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if n < len(scored) {
		scored = scored[:n]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}
