package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository/models"
)

// performanceMetrics builds the monthly performance table in sheet order.
func performanceMetrics(m models.MonthlyKPI) []PerformanceMetric {
	return []PerformanceMetric{
		{"Avg hold time used", "Hold", m.Hold, "HH:MM:SS"},
		{"Avg time taken to wrap the call", "Wrap", m.Wrap, "HH:MM:SS"},
		{"Avg duration of champ using auto on", "Auto-On", m.AutoOn, "HH:MM:SS"},
		{"Shift adherence for the month", "Schedule Adherence", m.ScheduleAdherence, "Percentage"},
		{"Customer feedback on resolution given", "Resolution CSAT", m.ResolutionCSAT, "Percentage"},
		{"Customer feedback on champ behaviour", "Agent Behaviour", m.AgentBehaviour, "Percentage"},
		{"Avg Quality Score achieved for the month", "Quality", m.Quality, "Percentage"},
		{"Process Knowledge Test", "PKT", m.PKT, "Percentage"},
		{"Number of sick and unplanned leaves", "SL + UPL", m.SickLeaves, "Days"},
		{"Number of days logged in", "LOGINS", m.Logins, "Days"},
	}
}

// kpiScores builds the weighted KPI table of the monthly rollup.
func kpiScores(m models.MonthlyKPI) []KPIScore {
	return []KPIScore{
		{"0%", "Hold KPI Score", m.HoldScore},
		{"30%", "Auto-On KPI Score", m.AutoOnScore},
		{"10%", "Schedule Adherence KPI Score", m.ScheduleAdherenceScore},
		{"10%", "Resolution CSAT KPI Score", m.ResolutionCSATScore},
		{"20%", "Agent Behaviour KPI Score", m.AgentBehaviourScore},
		{"20%", "Quality KPI Score", m.QualityScore},
		{"10%", "PKT KPI Score", m.PKTScore},
	}
}

func targets(m models.MonthlyKPI) map[string]string {
	if !m.HasTargets() {
		return nil
	}
	return map[string]string{
		"Target Committed for PKT":                    m.TargetPKT,
		"Target Committed for CSAT (Agent Behaviour)": m.TargetCSATBehaviour,
		"Target Committed for Quality":                m.TargetQuality,
	}
}

// MonthlySummary returns an employee's monthly rollup together with the change
// in grand total against the previous available month.
func (s *KPIService) MonthlySummary(ctx context.Context, employeeID, month string) (MonthlySummary, error) {
	id := kpi.NormalizeID(employeeID)
	month = kpi.NormalizeMonth(month)
	if id == "" || month == "" {
		return MonthlySummary{}, fmt.Errorf("%w: employee id and month are required", ErrInvalidArgument)
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	records, err := s.storage.GetMonthlyKPI(dbCtx, id, month)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(records) == 0 {
		return MonthlySummary{}, ErrNoData
	}
	current := records[0]

	summary := MonthlySummary{
		Record:      current,
		Performance: performanceMetrics(current),
		Scores:      kpiScores(current),
		Targets:     targets(current),
	}

	months, err := s.storage.ListMonths(dbCtx)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	prev, ok := previousMonth(canonicalMonths(months), month)
	if !ok {
		return summary, nil
	}

	prevRecords, err := s.storage.GetMonthlyKPI(dbCtx, id, prev)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(prevRecords) == 0 {
		s.logger.Debug("no previous month data",
			zap.String("employee_id", id),
			zap.String("month", month),
			zap.String("previous_month", prev))
		return summary, nil
	}

	summary.Previous = &PeriodChange{
		PreviousMonth: prev,
		PreviousScore: prevRecords[0].GrandTotal,
		Delta:         round2(current.GrandTotal - prevRecords[0].GrandTotal),
	}
	return summary, nil
}
