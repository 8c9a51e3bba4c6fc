package repository

import (
	"context"
	"fmt"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository/models"
)

// ImportDaily inserts daily rows in a single transaction. With replace set the
// table is cleared first.
func (r *KPIRepository) ImportDaily(ctx context.Context, records []kpi.DailyRecord, replace bool) (int64, error) {
	const stmt = `
		INSERT INTO kpi_daily (emp_id, name, day, week, call_count, aht, wrap, hold, auto_on, csat_resolution, csat_behaviour)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return r.importRows(ctx, "kpi_daily", stmt, replace, len(records), func(i int) []any {
		d := records[i]
		return []any{
			kpi.NormalizeID(d.EmployeeID), d.Name, d.Date, d.Week,
			d.CallCount, d.AHT, d.Wrap, d.Hold, d.AutoOn, d.CSATResolution, d.CSATBehaviour,
		}
	})
}

// ImportCSAT inserts weekly CSAT rows in a single transaction.
func (r *KPIRepository) ImportCSAT(ctx context.Context, records []kpi.CSATRecord, replace bool) (int64, error) {
	const stmt = `
		INSERT INTO kpi_csat (emp_id, name, week, resolution, behaviour)
		VALUES (?, ?, ?, ?, ?)
	`
	return r.importRows(ctx, "kpi_csat", stmt, replace, len(records), func(i int) []any {
		c := records[i]
		return []any{kpi.NormalizeID(c.EmployeeID), c.Name, c.Week, c.Resolution, c.Behaviour}
	})
}

// ImportMonthly inserts monthly rollup rows in a single transaction. Months
// are stored under their canonical name.
func (r *KPIRepository) ImportMonthly(ctx context.Context, records []models.MonthlyKPI, replace bool) (int64, error) {
	const stmt = `
		INSERT INTO kpi_monthly (
			emp_id, name, month,
			hold, wrap, auto_on, schedule_adherence, resolution_csat, agent_behaviour,
			quality, pkt, sick_leaves, logins,
			hold_score, auto_on_score, schedule_adherence_score, resolution_csat_score,
			agent_behaviour_score, quality_score, pkt_score, grand_total,
			target_pkt, target_csat_behaviour, target_quality
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return r.importRows(ctx, "kpi_monthly", stmt, replace, len(records), func(i int) []any {
		m := records[i]
		return []any{
			kpi.NormalizeID(m.EmployeeID), m.Name, kpi.NormalizeMonth(m.Month),
			m.Hold, m.Wrap, m.AutoOn, m.ScheduleAdherence, m.ResolutionCSAT, m.AgentBehaviour,
			m.Quality, m.PKT, m.SickLeaves, m.Logins,
			m.HoldScore, m.AutoOnScore, m.ScheduleAdherenceScore, m.ResolutionCSATScore,
			m.AgentBehaviourScore, m.QualityScore, m.PKTScore, m.GrandTotal,
			m.TargetPKT, m.TargetCSATBehaviour, m.TargetQuality,
		}
	})
}

func (r *KPIRepository) importRows(ctx context.Context, table, stmt string, replace bool, n int, args func(i int) []any) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		// table names are package constants, never user input
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("prepare import %s: %w", table, err)
	}
	defer prepared.Close()

	var inserted int64
	for i := 0; i < n; i++ {
		res, err := prepared.ExecContext(ctx, sqlArgs(args(i))...)
		if err != nil {
			return 0, fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
		affected, err := res.RowsAffected()
		if err == nil {
			inserted += affected
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import %s: %w", table, err)
	}
	return inserted, nil
}

// sqlArgs maps cell values the driver cannot bind to their string form.
func sqlArgs(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil, string, []byte, int, int32, int64, float32, float64, bool:
			out[i] = val
		case fmt.Stringer:
			out[i] = val.String()
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}
