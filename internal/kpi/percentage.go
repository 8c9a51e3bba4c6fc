package kpi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParsePercentage reads a percentage cell such as 87.5, "87.5" or "87.5%".
// Values are not clamped to [0, 100]. Missing or unparseable input yields 0.
func ParsePercentage(v any) float64 {
	f, _ := ParsePercentageOK(v)
	return f
}

// ParsePercentageOK reports false when a non-empty cell fell back to zero.
func ParsePercentageOK(v any) (float64, bool) {
	return parseNumber(v, true)
}

// ParseCount reads a numeric cell such as a call count. A trailing '%' is not
// accepted here.
func ParseCount(v any) float64 {
	f, _ := parseNumber(v, false)
	return f
}

func parseNumber(v any, allowPercent bool) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, true
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
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
		return parseNumberString(string(val), allowPercent)
	case []byte:
		return parseNumberString(string(val), allowPercent)
	case string:
		return parseNumberString(val, allowPercent)
	default:
		return 0, false
	}
}

func parseNumberString(raw string, allowPercent bool) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	if allowPercent {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) {
		return 0, true
	}
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
