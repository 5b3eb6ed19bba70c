// Package coerce parses the heterogeneous numeric representations found in
// research reports (currency strings, suffixed magnitudes, accounting
// negatives) into canonical units: millions of dollars for monetary values,
// plain numbers for percentages.
package coerce

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultRawDollarThreshold is the magnitude above which an unsuffixed
// value is assumed to be raw dollars rather than millions. The heuristic
// is intentionally approximate; it misclassifies legitimately huge
// per-million values, which is why the threshold is tunable.
const DefaultRawDollarThreshold = 100000

var rawDollarThreshold float64 = DefaultRawDollarThreshold

// SetRawDollarThreshold overrides the process-wide raw-dollar threshold.
// Called once from config wiring at startup; tests use ToMillionsAt instead.
func SetRawDollarThreshold(v float64) {
	if v > 0 {
		rawDollarThreshold = v
	}
}

// RawDollarThreshold returns the active threshold.
func RawDollarThreshold() float64 { return rawDollarThreshold }

// Number parses any supported representation into a float, or nil.
// Accepted: numeric types, numeric strings, strings carrying "$", commas,
// whitespace, parenthesized negatives, or one trailing magnitude suffix
// (B|M|K, case-insensitive). Base unit is millions, so B multiplies by
// 1000 and K divides by 1000. nil, empty string and "N/A" yield nil.
// Non-numeric residue yields nil, never an error.
func Number(value interface{}) *float64 {
	f, _, ok := parse(value)
	if !ok {
		return nil
	}
	return &f
}

// parse also reports whether the value carried an explicit magnitude
// suffix; a suffixed value states its own scale and must never hit the
// raw-dollar heuristic.
func parse(value interface{}) (float64, bool, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false, false
	case float64:
		return v, false, true
	case float32:
		return float64(v), false, true
	case int:
		return float64(v), false, true
	case int64:
		return float64(v), false, true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, false, true
		}
		return 0, false, false
	case string:
		return numberFromString(v)
	default:
		return 0, false, false
	}
}

func numberFromString(s string) (float64, bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return 0, false, false
	}

	// Accounting negative: (1,234.5)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false, false
	}

	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	multiplier := 1.0
	suffixed := false
	if len(s) > 1 {
		switch s[len(s)-1] {
		case 'B', 'b':
			multiplier = 1000 // base unit is millions
			suffixed = true
			s = s[:len(s)-1]
		case 'M', 'm':
			suffixed = true
			s = s[:len(s)-1]
		case 'K', 'k':
			multiplier = 1.0 / 1000
			suffixed = true
			s = s[:len(s)-1]
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, false
	}
	f *= multiplier
	if negative {
		f = -f
	}
	return f, suffixed, true
}

// ToMillions coerces a value and normalizes it to millions of dollars
// using the process-wide raw-dollar threshold.
func ToMillions(value interface{}) *float64 {
	return ToMillionsAt(value, rawDollarThreshold)
}

// ToMillionsAt is ToMillions with an explicit threshold: if an
// unsuffixed magnitude exceeds it, the value is treated as raw dollars
// and divided by 1e6; otherwise it is assumed to already be in millions.
// Suffixed values ("999B") are fully scaled by the suffix and bypass the
// heuristic regardless of size.
func ToMillionsAt(value interface{}, threshold float64) *float64 {
	f, suffixed, ok := parse(value)
	if !ok {
		return nil
	}
	if !suffixed && abs(f) > threshold {
		f = f / 1e6
	}
	return &f
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
