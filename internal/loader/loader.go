// Package loader reads CSV exports of the daily, CSAT and monthly KPI sheets.
// Columns are located by their trimmed header so the sheet layout can change.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/godilite/kpi-server/internal/kpi"
	"github.com/godilite/kpi-server/internal/repository/models"
)

var ErrMissingColumn = errors.New("missing column")

const (
	colEmpID          = "EMP ID"
	colName           = "NAME"
	colDate           = "Date"
	colWeek           = "Week"
	colMonth          = "Month"
	colCallCount      = "Call Count"
	colAHT            = "AHT"
	colWrap           = "Wrap"
	colHold           = "Hold"
	colAutoOn         = "Auto On"
	colCSATResolution = "CSAT Resolution"
	colCSATBehaviour  = "CSAT Behaviour"
	colGrandTotal     = "Grand Total"
)

type table struct {
	sheet   string
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader, sheet string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s export: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s export: empty file", sheet)
	}

	t := &table{sheet: sheet, columns: make(map[string]int, len(records[0]))}
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := t.columns[name]; !dup && name != "" {
			t.columns[name] = i
		}
	}

	for _, rec := range records[1:] {
		if !blank(rec) {
			t.rows = append(t.rows, rec)
		}
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (t *table) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.columns[c]; !ok {
			return fmt.Errorf("%w %q in %s export", ErrMissingColumn, c, t.sheet)
		}
	}
	return nil
}

// cell returns the raw cell value, or "" when the column or cell is absent.
func (t *table) cell(rec []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (t *table) text(rec []string, col string) string {
	return strings.TrimSpace(t.cell(rec, col))
}

// ReadDaily parses the per-day sheet. Metric cells are kept raw; rows
// without an employee id are skipped.
func ReadDaily(r io.Reader) ([]kpi.DailyRecord, error) {
	t, err := readTable(r, "daily")
	if err != nil {
		return nil, err
	}
	if err := t.require(colEmpID, colWeek); err != nil {
		return nil, err
	}

	out := make([]kpi.DailyRecord, 0, len(t.rows))
	for _, rec := range t.rows {
		id := kpi.NormalizeID(t.cell(rec, colEmpID))
		if id == "" {
			continue
		}
		out = append(out, kpi.DailyRecord{
			EmployeeID:     id,
			Name:           t.text(rec, colName),
			Date:           t.text(rec, colDate),
			Week:           kpi.NormalizePeriod(t.cell(rec, colWeek)),
			CallCount:      t.cell(rec, colCallCount),
			AHT:            t.cell(rec, colAHT),
			Wrap:           t.cell(rec, colWrap),
			Hold:           t.cell(rec, colHold),
			AutoOn:         t.cell(rec, colAutoOn),
			CSATResolution: t.cell(rec, colCSATResolution),
			CSATBehaviour:  t.cell(rec, colCSATBehaviour),
		})
	}
	return out, nil
}

// ReadCSAT parses the weekly CSAT sheet.
func ReadCSAT(r io.Reader) ([]kpi.CSATRecord, error) {
	t, err := readTable(r, "csat")
	if err != nil {
		return nil, err
	}
	if err := t.require(colEmpID, colWeek); err != nil {
		return nil, err
	}

	out := make([]kpi.CSATRecord, 0, len(t.rows))
	for _, rec := range t.rows {
		id := kpi.NormalizeID(t.cell(rec, colEmpID))
		if id == "" {
			continue
		}
		out = append(out, kpi.CSATRecord{
			EmployeeID: id,
			Name:       t.text(rec, colName),
			Week:       kpi.NormalizePeriod(t.cell(rec, colWeek)),
			Resolution: t.cell(rec, colCSATResolution),
			Behaviour:  t.cell(rec, colCSATBehaviour),
		})
	}
	return out, nil
}

// ReadMonthly parses the monthly rollup sheet. Performance metrics are kept as
// displayed; KPI scores and the grand total are read as numbers.
func ReadMonthly(r io.Reader) ([]models.MonthlyKPI, error) {
	t, err := readTable(r, "monthly")
	if err != nil {
		return nil, err
	}
	if err := t.require(colEmpID, colMonth, colGrandTotal); err != nil {
		return nil, err
	}

	num := func(rec []string, col string) float64 {
		return kpi.ParsePercentage(t.cell(rec, col))
	}

	out := make([]models.MonthlyKPI, 0, len(t.rows))
	for _, rec := range t.rows {
		id := kpi.NormalizeID(t.cell(rec, colEmpID))
		if id == "" {
			continue
		}
		out = append(out, models.MonthlyKPI{
			EmployeeID: id,
			Name:       t.text(rec, colName),
			Month:      kpi.NormalizeMonth(t.text(rec, colMonth)),

			Hold:              t.text(rec, "Hold"),
			Wrap:              t.text(rec, "Wrap"),
			AutoOn:            t.text(rec, "Auto-On"),
			ScheduleAdherence: t.text(rec, "Schedule Adherence"),
			ResolutionCSAT:    t.text(rec, "Resolution CSAT"),
			AgentBehaviour:    t.text(rec, "Agent Behaviour"),
			Quality:           t.text(rec, "Quality"),
			PKT:               t.text(rec, "PKT"),
			SickLeaves:        t.text(rec, "SL + UPL"),
			Logins:            t.text(rec, "LOGINS"),

			HoldScore:              num(rec, "Hold KPI Score"),
			AutoOnScore:            num(rec, "Auto-On KPI Score"),
			ScheduleAdherenceScore: num(rec, "Schedule Adherence KPI Score"),
			ResolutionCSATScore:    num(rec, "Resolution CSAT KPI Score"),
			AgentBehaviourScore:    num(rec, "Agent Behaviour KPI Score"),
			QualityScore:           num(rec, "Quality KPI Score"),
			PKTScore:               num(rec, "PKT KPI Score"),
			GrandTotal:             num(rec, colGrandTotal),

			TargetPKT:           t.text(rec, "Target Committed for PKT"),
			TargetCSATBehaviour: t.text(rec, "Target Committed for CSAT (Agent Behaviour)"),
			TargetQuality:       t.text(rec, "Target Committed for Quality"),
		})
	}
	return out, nil
}
