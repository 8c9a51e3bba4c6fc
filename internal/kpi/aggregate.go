package kpi

import (
	"math"
	"strconv"
	"strings"
)

// AggregateStats counts metric cells that could not be read and were counted
// as zero while aggregating.
type AggregateStats struct {
	DailyRows         int
	CSATRows          int
	DurationFallbacks int
	PercentFallbacks  int
}

type dailyAccumulator struct {
	row   EmployeeMetricRow
	count int
}

type csatAccumulator struct {
	resolution float64
	behaviour  float64
	count      int
}

// NormalizeID returns the identity key used to compare employee ids.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizePeriod trims a period key and collapses integral numbers such as
// "42.0" to "42", so week numbers read as floats match their text form.
func NormalizePeriod(p string) string {
	s := strings.TrimSpace(p)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1e15 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// AggregatePeriod builds one EmployeeMetricRow per employee for periodKey.
// Call counts are summed, durations and CSAT percentages are averaged.
// Employees without CSAT rows get zero CSAT; CSAT rows for employees absent
// from the daily table are dropped.
func AggregatePeriod(daily []DailyRecord, csat []CSATRecord, periodKey string) []EmployeeMetricRow {
	rows, _ := AggregatePeriodWithStats(daily, csat, periodKey)
	return rows
}

// AggregatePeriodWithStats is AggregatePeriod plus fallback counters.
func AggregatePeriodWithStats(daily []DailyRecord, csat []CSATRecord, periodKey string) ([]EmployeeMetricRow, AggregateStats) {
	period := strings.TrimSpace(periodKey)
	var stats AggregateStats

	order := make([]string, 0)
	byID := make(map[string]*dailyAccumulator)

	duration := func(v any) float64 {
		secs, ok := ParseDurationOK(v)
		if !ok {
			stats.DurationFallbacks++
		}
		return secs
	}

	for _, d := range daily {
		if strings.TrimSpace(d.Week) != period {
			continue
		}
		stats.DailyRows++

		id := NormalizeID(d.EmployeeID)
		acc, ok := byID[id]
		if !ok {
			acc = &dailyAccumulator{row: EmployeeMetricRow{
				EmployeeID: id,
				Name:       strings.TrimSpace(d.Name),
			}}
			byID[id] = acc
			order = append(order, id)
		}

		acc.count++
		acc.row.CallCount += ParseCount(d.CallCount)
		acc.row.AHTSeconds += duration(d.AHT)
		acc.row.WrapSeconds += duration(d.Wrap)
		acc.row.HoldSeconds += duration(d.Hold)
		acc.row.AutoOnSeconds += duration(d.AutoOn)
	}

	csatByID := make(map[string]*csatAccumulator)
	for _, c := range csat {
		if strings.TrimSpace(c.Week) != period {
			continue
		}
		stats.CSATRows++

		id := NormalizeID(c.EmployeeID)
		res, okRes := ParsePercentageOK(c.Resolution)
		beh, okBeh := ParsePercentageOK(c.Behaviour)
		if !okRes {
			stats.PercentFallbacks++
		}
		if !okBeh {
			stats.PercentFallbacks++
		}

		acc, ok := csatByID[id]
		if !ok {
			acc = &csatAccumulator{}
			csatByID[id] = acc
		}
		acc.resolution += res
		acc.behaviour += beh
		acc.count++
	}

	out := make([]EmployeeMetricRow, 0, len(order))
	for _, id := range order {
		acc := byID[id]
		n := float64(acc.count)
		row := acc.row
		row.AHTSeconds /= n
		row.WrapSeconds /= n
		row.HoldSeconds /= n
		row.AutoOnSeconds /= n

		if c, ok := csatByID[id]; ok && c.count > 0 {
			row.CSATResolution = c.resolution / float64(c.count)
			row.CSATBehaviour = c.behaviour / float64(c.count)
		}
		out = append(out, row)
	}
	return out, stats
}
