package kpi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var zeroDurations = map[string]struct{}{
	"":         {},
	"0":        {},
	"00:00":    {},
	"00:00:00": {},
}

// ParseDuration converts a spreadsheet duration cell into seconds.
//
// Accepted forms are numbers (already seconds), "H:MM:SS", "M:SS", plain
// decimal strings and the empty/zero sentinels. Strings with more than three
// colon-separated parts keep only the last three. Everything else yields 0;
// the function never fails.
func ParseDuration(v any) float64 {
	secs, _ := ParseDurationOK(v)
	return secs
}

// ParseDurationOK is ParseDuration that also reports whether the value was
// understood. It returns false only when a non-empty cell fell back to zero.
func ParseDurationOK(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, true
	case time.Duration:
		return nonNegative(val.Seconds())
	case float64:
		return nonNegative(val)
	case float32:
		return nonNegative(float64(val))
	case int:
		return nonNegative(float64(val))
	case int8:
		return nonNegative(float64(val))
	case int16:
		return nonNegative(float64(val))
	case int32:
		return nonNegative(float64(val))
	case int64:
		return nonNegative(float64(val))
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		return parseDurationString(string(val))
	case []byte:
		return parseDurationString(string(val))
	case string:
		return parseDurationString(val)
	case fmt.Stringer:
		return parseDurationString(val.String())
	default:
		return 0, false
	}
}

func parseDurationString(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if _, ok := zeroDurations[s]; ok {
		return 0, true
	}

	if !strings.Contains(s, ":") {
		return parseUnsignedDecimal(s)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		parts = parts[len(parts)-3:]
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		f, ok := parseUnsignedDecimal(strings.TrimSpace(p))
		if !ok {
			return 0, false
		}
		values[i] = f
	}

	var secs float64
	if len(values) == 3 {
		secs = values[0]*3600 + values[1]*60 + values[2]
	} else {
		secs = values[0]*60 + values[1]
	}
	if math.IsInf(secs, 0) {
		return 0, false
	}
	return secs, true
}

// parseUnsignedDecimal accepts digits with at most one '.', nothing else.
func parseUnsignedDecimal(s string) (float64, bool) {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return 0, false
		}
	}
	if digits == 0 || dots > 1 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func nonNegative(f float64) (float64, bool) {
	if math.IsNaN(f) {
		return 0, true
	}
	if math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// FormatDuration renders seconds as H:MM:SS, truncating fractions.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.MaxInt64)
	if seconds < math.MaxInt64 {
		total = int64(seconds)
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
