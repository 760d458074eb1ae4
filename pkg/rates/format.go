package rates

import (
	"math"
	"strconv"
	"strings"
)

const (
	thousand = 1_000
	million  = 1_000_000
)

// FormatValue scales a raw rate figure for display: values with up to three
// integer digits are truncated to an integer ("999.9" -> "999"), four to six
// digits are shown in thousands ("93360" -> "93.36k") and seven or more in
// millions ("2810000" -> "2.81M"). Input without a leading number is returned
// unchanged.
func FormatValue(raw string) string {
	value, ok := ParseLeadingFloat(raw)
	if !ok {
		return raw
	}

	switch digits := integerDigits(value); {
	case digits <= 3:
		return strconv.FormatFloat(positiveZero(math.Floor(value)), 'f', -1, 64)
	case digits <= 6:
		return scaled(value/thousand) + "k"
	default:
		return scaled(value/million) + "M"
	}
}

// ParseLeadingFloat parses the longest numeric prefix of raw after leading
// whitespace, so "12.5/h" yields 12.5. It reports false when no digits are
// present or the value is not finite.
func ParseLeadingFloat(raw string) (float64, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	end := numericPrefix(s)
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - intStart
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if frac := j - (i + 1); frac > 0 || digits > 0 {
			digits += frac
			i = j
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func integerDigits(value float64) int {
	return len(strconv.FormatFloat(math.Floor(math.Abs(value)), 'f', 0, 64))
}

func positiveZero(value float64) float64 {
	if value == 0 {
		return 0
	}
	return value
}

// scaled renders value cut to at most two decimals (never rounded up, so
// 999999 stays "999.99k"), then strips trailing zeros and a bare point.
func scaled(value float64) string {
	text := strconv.FormatFloat(value, 'f', -1, 64)
	intPart, frac, ok := strings.Cut(text, ".")
	if !ok {
		return text
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}
