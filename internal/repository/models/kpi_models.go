package models

// MonthlyKPI is one employee's row of the monthly KPI rollup. Performance
// metrics are kept as displayed in the sheet; KPI scores are numeric.
type MonthlyKPI struct {
	EmployeeID string
	Name       string
	Month      string

	Hold              string
	Wrap              string
	AutoOn            string
	ScheduleAdherence string
	ResolutionCSAT    string
	AgentBehaviour    string
	Quality           string
	PKT               string
	SickLeaves        string
	Logins            string

	HoldScore              float64
	AutoOnScore            float64
	ScheduleAdherenceScore float64
	ResolutionCSATScore    float64
	AgentBehaviourScore    float64
	QualityScore           float64
	PKTScore               float64
	GrandTotal             float64

	TargetPKT           string
	TargetCSATBehaviour string
	TargetQuality       string
}

// HasTargets reports whether next-month targets were filled in.
func (m MonthlyKPI) HasTargets() bool {
	return m.TargetPKT != "" || m.TargetCSATBehaviour != "" || m.TargetQuality != ""
}
