package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/kpi-server/internal/kpi"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	fmt.Fprintln(w, renderTable(headers, rows))
}

func field(s *structpb.Struct, key string) *structpb.Value {
	return s.GetFields()[key]
}

func str(s *structpb.Struct, key string) string {
	return field(s, key).GetStringValue()
}

func num(s *structpb.Struct, key string) float64 {
	return field(s, key).GetNumberValue()
}

func list(s *structpb.Struct, key string) []*structpb.Value {
	return field(s, key).GetListValue().GetValues()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func formatSeconds(s *structpb.Struct, key string) string {
	return kpi.FormatDuration(num(s, key))
}

func renderTopPerformers(w io.Writer, resp *structpb.Struct) {
	performers := list(resp, "performers")
	printTitle(w, fmt.Sprintf("Top performers, week %s", str(resp, "week")))
	if len(performers) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No employees ranked for this week."))
		return
	}

	rows := make([][]string, 0, len(performers))
	for _, p := range performers {
		ps := p.GetStructValue()
		rows = append(rows, []string{
			formatNumber(num(ps, "rank")),
			str(ps, "name"),
			fmt.Sprintf("%.1f", num(ps, "score")),
			formatSeconds(ps, "aht_seconds"),
			formatSeconds(ps, "wrap_seconds"),
			formatSeconds(ps, "hold_seconds"),
			formatSeconds(ps, "auto_on_seconds"),
			formatPercent(num(ps, "csat_resolution")),
			formatPercent(num(ps, "csat_behaviour")),
		})
	}
	printTable(w, []string{"#", "Agent", "Score", "AHT", "Wrap", "Hold", "Auto-On", "CSAT Res", "CSAT Beh"}, rows)
}

func renderWeeklySummary(w io.Writer, resp *structpb.Struct) {
	printTitle(w, fmt.Sprintf("%s (EMP ID %s), week %s", str(resp, "name"), str(resp, "employee_id"), str(resp, "week")))
	printTable(w, []string{"Metric", "Value"}, [][]string{
		{"Total Calls", formatNumber(num(resp, "total_calls"))},
		{"Avg AHT", str(resp, "aht")},
		{"Avg Hold", str(resp, "hold")},
		{"Avg Wrap", str(resp, "wrap")},
		{"Avg Auto-On", str(resp, "auto_on")},
	})

	if !field(resp, "has_csat").GetBoolValue() {
		fmt.Fprintln(w, dimStyle.Render("No CSAT data for this week."))
		return
	}
	printTable(w, []string{"CSAT", "Score"}, [][]string{
		{"CSAT Resolution", formatPercent(num(resp, "csat_resolution"))},
		{"CSAT Behaviour", formatPercent(num(resp, "csat_behaviour"))},
	})
}

func renderDailySummary(w io.Writer, resp *structpb.Struct) {
	printTitle(w, fmt.Sprintf("%s (EMP ID %s), %s", str(resp, "name"), str(resp, "employee_id"), str(resp, "date")))
	printTable(w, []string{"Metric", "Value"}, [][]string{
		{"Call Count", formatNumber(num(resp, "call_count"))},
		{"AHT", str(resp, "aht")},
		{"Hold", str(resp, "hold")},
		{"Wrap", str(resp, "wrap")},
		{"Auto On", str(resp, "auto_on")},
		{"CSAT Resolution", formatPercent(num(resp, "csat_resolution"))},
		{"CSAT Behaviour", formatPercent(num(resp, "csat_behaviour"))},
	})
}

// changeLine describes the grand total movement against the previous month.
func changeLine(prev *structpb.Struct) string {
	if prev == nil {
		return ""
	}
	month := str(prev, "month")
	delta := num(prev, "delta")
	switch {
	case delta > 0:
		return goodStyle.Render(fmt.Sprintf("Improved by +%s points since %s.", formatNumber(delta), month))
	case delta < 0:
		return badStyle.Render(fmt.Sprintf("Dropped by %s points since %s.", formatNumber(-delta), month))
	default:
		return fmt.Sprintf("No change from %s.", month)
	}
}

func renderMonthlySummary(w io.Writer, resp *structpb.Struct) {
	printTitle(w, fmt.Sprintf("%s (EMP ID %s), %s", str(resp, "name"), str(resp, "employee_id"), str(resp, "month")))

	var perf [][]string
	for _, v := range list(resp, "performance") {
		p := v.GetStructValue()
		perf = append(perf, []string{str(p, "description"), str(p, "metric"), str(p, "value"), str(p, "unit")})
	}
	printTable(w, []string{"Description", "Metric", "Value", "Unit"}, perf)

	var scores [][]string
	for _, v := range list(resp, "kpi_scores") {
		s := v.GetStructValue()
		scores = append(scores, []string{str(s, "weightage"), str(s, "metric"), formatNumber(num(s, "score"))})
	}
	printTable(w, []string{"Weightage", "KPI Metric", "Score"}, scores)

	fmt.Fprintf(w, "Grand Total KPI: %s\n", formatNumber(num(resp, "grand_total")))
	if line := changeLine(field(resp, "previous").GetStructValue()); line != "" {
		fmt.Fprintln(w, line)
	}

	targets := field(resp, "targets").GetStructValue()
	if len(targets.GetFields()) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No target data available."))
		return
	}
	var rows [][]string
	for _, name := range []string{
		"Target Committed for PKT",
		"Target Committed for CSAT (Agent Behaviour)",
		"Target Committed for Quality",
	} {
		rows = append(rows, []string{name, str(targets, name)})
	}
	printTable(w, []string{"Target Metric", "Target"}, rows)
}

func renderPeriods(w io.Writer, resp *structpb.Struct) {
	join := func(key string) string {
		vals := list(resp, key)
		if len(vals) == 0 {
			return "-"
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = v.GetStringValue()
		}
		return strings.Join(parts, ", ")
	}
	printTable(w, []string{"Period", "Available"}, [][]string{
		{"Weeks", join("weeks")},
		{"Dates", join("dates")},
		{"Months", join("months")},
	})
}
