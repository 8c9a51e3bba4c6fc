// Package kpi normalises raw call-center sheet cells and ranks employees.
package kpi

// DailyRecord is one row of the daily call-center export. Metric cells are kept
// as they were read (string, number or nil) and normalised during aggregation.
type DailyRecord struct {
	EmployeeID string
	Name       string
	Date       string
	Week       string
	CallCount  any
	AHT        any
	Wrap       any
	Hold       any
	AutoOn     any

	// The daily sheet carries its own CSAT columns; aggregation ignores them
	// and joins the weekly CSAT table instead.
	CSATResolution any
	CSATBehaviour  any
}

// CSATRecord is one row of the weekly customer-satisfaction export.
type CSATRecord struct {
	EmployeeID string
	Name       string
	Week       string
	Resolution any
	Behaviour  any
}

// EmployeeMetricRow is the per-employee aggregate for a single period.
type EmployeeMetricRow struct {
	EmployeeID     string  `json:"employee_id"`
	Name           string  `json:"name"`
	CallCount      float64 `json:"call_count"`
	AHTSeconds     float64 `json:"aht_seconds"`
	WrapSeconds    float64 `json:"wrap_seconds"`
	HoldSeconds    float64 `json:"hold_seconds"`
	AutoOnSeconds  float64 `json:"auto_on_seconds"`
	CSATResolution float64 `json:"csat_resolution"`
	CSATBehaviour  float64 `json:"csat_behaviour"`
}

// ScoreComponents holds the normalised 0-100 value of each scored metric.
type ScoreComponents struct {
	Hold           float64 `json:"hold"`
	Wrap           float64 `json:"wrap"`
	AutoOn         float64 `json:"auto_on"`
	CSATResolution float64 `json:"csat_resolution"`
	CSATBehaviour  float64 `json:"csat_behaviour"`
}

// RankedResult is an EmployeeMetricRow with its composite score.
type RankedResult struct {
	EmployeeMetricRow
	Rank       int             `json:"rank"`
	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"`
}
