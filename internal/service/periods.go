package service

import (
	"sort"
	"strconv"

	"github.com/godilite/kpi-server/internal/kpi"
)

// canonicalMonths normalises month names and drops duplicates that differ
// only in spelling, such as "Sep" and "september".
func canonicalMonths(months []string) []string {
	seen := make(map[string]struct{}, len(months))
	out := make([]string, 0, len(months))
	for _, m := range months {
		n := kpi.NormalizeMonth(m)
		if _, dup := seen[n]; dup || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// orderMonths sorts months in calendar order. Unrecognised names are kept
// after the known ones in lexical order.
func orderMonths(months []string) []string {
	out := append([]string(nil), months...)
	sort.SliceStable(out, func(i, j int) bool {
		mi, oki := kpi.MonthOf(out[i])
		mj, okj := kpi.MonthOf(out[j])
		switch {
		case oki && okj:
			return mi < mj
		case oki != okj:
			return oki
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// sortWeeks keeps numeric week keys only and sorts them ascending.
func sortWeeks(weeks []string) []string {
	seen := make(map[int]struct{}, len(weeks))
	nums := make([]int, 0, len(weeks))
	for _, w := range weeks {
		n, err := strconv.Atoi(kpi.NormalizePeriod(w))
		if err != nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = strconv.Itoa(n)
	}
	return out
}

func sortDates(dates []string) []string {
	out := append([]string(nil), dates...)
	sort.Strings(out)
	return out
}

// previousMonth returns the calendar-previous month among the available ones.
func previousMonth(available []string, current string) (string, bool) {
	ordered := orderMonths(available)
	for i, m := range ordered {
		if kpi.NormalizeMonth(m) == kpi.NormalizeMonth(current) {
			if i == 0 {
				return "", false
			}
			return ordered[i-1], true
		}
	}
	return "", false
}
