package service

import "github.com/godilite/kpi-server/internal/repository/models"

type WeeklySummary struct {
	EmployeeID     string
	Name           string
	Week           string
	TotalCalls     float64
	AHTSeconds     float64
	HoldSeconds    float64
	WrapSeconds    float64
	AutoOnSeconds  float64
	HasCSAT        bool
	CSATResolution float64
	CSATBehaviour  float64
}

type DailySummary struct {
	EmployeeID     string
	Name           string
	Date           string
	CallCount      float64
	AHTSeconds     float64
	HoldSeconds    float64
	WrapSeconds    float64
	AutoOnSeconds  float64
	CSATResolution float64
	CSATBehaviour  float64
}

// PerformanceMetric is one line of the monthly performance table.
type PerformanceMetric struct {
	Description string
	Metric      string
	Value       string
	Unit        string
}

// KPIScore is one weighted line of the monthly KPI table.
type KPIScore struct {
	Weightage string
	Metric    string
	Score     float64
}

type PeriodChange struct {
	PreviousMonth string
	PreviousScore float64
	Delta         float64
}

type MonthlySummary struct {
	Record      models.MonthlyKPI
	Performance []PerformanceMetric
	Scores      []KPIScore
	Targets     map[string]string
	Previous    *PeriodChange
}

type Periods struct {
	Weeks  []string
	Dates  []string
	Months []string
}
