package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository/models"
)

// Schema creates the tables that mirror the three sheet exports. Metric
// columns of the daily and CSAT tables are untyped so cells keep the storage
// class they were imported with.
const Schema = `
	CREATE TABLE IF NOT EXISTS kpi_daily (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		emp_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		day TEXT NOT NULL DEFAULT '',
		week TEXT NOT NULL DEFAULT '',
		call_count,
		aht,
		wrap,
		hold,
		auto_on,
		csat_resolution,
		csat_behaviour
	);
	CREATE INDEX IF NOT EXISTS idx_kpi_daily_week ON kpi_daily (week);
	CREATE INDEX IF NOT EXISTS idx_kpi_daily_emp_day ON kpi_daily (emp_id, day);

	CREATE TABLE IF NOT EXISTS kpi_csat (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		emp_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		week TEXT NOT NULL DEFAULT '',
		resolution,
		behaviour
	);
	CREATE INDEX IF NOT EXISTS idx_kpi_csat_week ON kpi_csat (week);

	CREATE TABLE IF NOT EXISTS kpi_monthly (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		emp_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		month TEXT NOT NULL,
		hold TEXT NOT NULL DEFAULT '',
		wrap TEXT NOT NULL DEFAULT '',
		auto_on TEXT NOT NULL DEFAULT '',
		schedule_adherence TEXT NOT NULL DEFAULT '',
		resolution_csat TEXT NOT NULL DEFAULT '',
		agent_behaviour TEXT NOT NULL DEFAULT '',
		quality TEXT NOT NULL DEFAULT '',
		pkt TEXT NOT NULL DEFAULT '',
		sick_leaves TEXT NOT NULL DEFAULT '',
		logins TEXT NOT NULL DEFAULT '',
		hold_score REAL NOT NULL DEFAULT 0,
		auto_on_score REAL NOT NULL DEFAULT 0,
		schedule_adherence_score REAL NOT NULL DEFAULT 0,
		resolution_csat_score REAL NOT NULL DEFAULT 0,
		agent_behaviour_score REAL NOT NULL DEFAULT 0,
		quality_score REAL NOT NULL DEFAULT 0,
		pkt_score REAL NOT NULL DEFAULT 0,
		grand_total REAL NOT NULL DEFAULT 0,
		target_pkt TEXT NOT NULL DEFAULT '',
		target_csat_behaviour TEXT NOT NULL DEFAULT '',
		target_quality TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_kpi_monthly_emp_month ON kpi_monthly (emp_id, month);
`

type KPIRepository struct {
	db *sql.DB
}

func NewKPIRepository(db *sql.DB) *KPIRepository {
	return &KPIRepository{db: db}
}

// EnsureSchema creates missing tables and indexes.
func (r *KPIRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetDailyRecords returns every daily row of the given week in import order.
func (r *KPIRepository) GetDailyRecords(ctx context.Context, week string) ([]kpi.DailyRecord, error) {
	const query = `
		SELECT emp_id, name, day, week, call_count, aht, wrap, hold, auto_on, csat_resolution, csat_behaviour
		FROM kpi_daily
		WHERE TRIM(week) = TRIM(?)
		ORDER BY id
	`
	return r.queryDaily(ctx, "GetDailyRecords", query, week)
}

// GetDailyRecordsByDate returns one employee's rows for a single day.
func (r *KPIRepository) GetDailyRecordsByDate(ctx context.Context, employeeID, date string) ([]kpi.DailyRecord, error) {
	const query = `
		SELECT emp_id, name, day, week, call_count, aht, wrap, hold, auto_on, csat_resolution, csat_behaviour
		FROM kpi_daily
		WHERE TRIM(emp_id) = TRIM(?) AND TRIM(day) = TRIM(?)
		ORDER BY id
	`
	return r.queryDaily(ctx, "GetDailyRecordsByDate", query, employeeID, date)
}

func (r *KPIRepository) queryDaily(ctx context.Context, op, query string, args ...any) ([]kpi.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	var results []kpi.DailyRecord
	for rows.Next() {
		var d kpi.DailyRecord
		if err := rows.Scan(&d.EmployeeID, &d.Name, &d.Date, &d.Week, &d.CallCount, &d.AHT, &d.Wrap, &d.Hold, &d.AutoOn, &d.CSATResolution, &d.CSATBehaviour); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		results = append(results, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}

// GetCSATRecords returns every CSAT row of the given week in import order.
func (r *KPIRepository) GetCSATRecords(ctx context.Context, week string) ([]kpi.CSATRecord, error) {
	const query = `
		SELECT emp_id, name, week, resolution, behaviour
		FROM kpi_csat
		WHERE TRIM(week) = TRIM(?)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, week)
	if err != nil {
		return nil, fmt.Errorf("query GetCSATRecords: %w", err)
	}
	defer rows.Close()

	var results []kpi.CSATRecord
	for rows.Next() {
		var c kpi.CSATRecord
		if err := rows.Scan(&c.EmployeeID, &c.Name, &c.Week, &c.Resolution, &c.Behaviour); err != nil {
			return nil, fmt.Errorf("scan GetCSATRecords row: %w", err)
		}
		results = append(results, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetCSATRecords: %w", err)
	}
	return results, nil
}

// GetMonthlyKPI returns the monthly rollup rows of one employee.
func (r *KPIRepository) GetMonthlyKPI(ctx context.Context, employeeID, month string) ([]models.MonthlyKPI, error) {
	const query = `
		SELECT
			emp_id, name, month,
			hold, wrap, auto_on, schedule_adherence, resolution_csat, agent_behaviour,
			quality, pkt, sick_leaves, logins,
			hold_score, auto_on_score, schedule_adherence_score, resolution_csat_score,
			agent_behaviour_score, quality_score, pkt_score, grand_total,
			target_pkt, target_csat_behaviour, target_quality
		FROM kpi_monthly
		WHERE TRIM(emp_id) = TRIM(?) AND LOWER(TRIM(month)) = LOWER(TRIM(?))
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID, kpi.NormalizeMonth(month))
	if err != nil {
		return nil, fmt.Errorf("query GetMonthlyKPI: %w", err)
	}
	defer rows.Close()

	var results []models.MonthlyKPI
	for rows.Next() {
		var m models.MonthlyKPI
		if err := rows.Scan(
			&m.EmployeeID, &m.Name, &m.Month,
			&m.Hold, &m.Wrap, &m.AutoOn, &m.ScheduleAdherence, &m.ResolutionCSAT, &m.AgentBehaviour,
			&m.Quality, &m.PKT, &m.SickLeaves, &m.Logins,
			&m.HoldScore, &m.AutoOnScore, &m.ScheduleAdherenceScore, &m.ResolutionCSATScore,
			&m.AgentBehaviourScore, &m.QualityScore, &m.PKTScore, &m.GrandTotal,
			&m.TargetPKT, &m.TargetCSATBehaviour, &m.TargetQuality,
		); err != nil {
			return nil, fmt.Errorf("scan GetMonthlyKPI row: %w", err)
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetMonthlyKPI: %w", err)
	}
	return results, nil
}

// ListWeeks returns the distinct non-empty week keys of the daily table.
func (r *KPIRepository) ListWeeks(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "ListWeeks", `SELECT DISTINCT TRIM(week) FROM kpi_daily WHERE TRIM(week) <> ''`)
}

// ListDates returns the distinct days of the daily table.
func (r *KPIRepository) ListDates(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "ListDates", `SELECT DISTINCT TRIM(day) FROM kpi_daily WHERE TRIM(day) <> '' ORDER BY 1`)
}

// ListMonths returns the distinct months of the monthly rollup.
func (r *KPIRepository) ListMonths(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "ListMonths", `SELECT DISTINCT TRIM(month) FROM kpi_monthly WHERE TRIM(month) <> ''`)
}

func (r *KPIRepository) distinct(ctx context.Context, op, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return out, nil
}
