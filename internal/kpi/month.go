package kpi

import (
	"strings"
	"time"
)

// MonthOf resolves full or three-letter English month names, ignoring case.
func MonthOf(name string) (time.Month, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if n == full || n == full[:3] {
			return m, true
		}
	}
	return 0, false
}

// NormalizeMonth returns the canonical month name ("sep" becomes "September"),
// or the trimmed input when it is not a recognised month. Monthly rows are
// stored and looked up under this key.
func NormalizeMonth(name string) string {
	if m, ok := MonthOf(name); ok {
		return m.String()
	}
	return strings.TrimSpace(name)
}
