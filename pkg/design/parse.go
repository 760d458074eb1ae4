package design

import (
	"strconv"
	"strings"
)

// ParseError is returned when text does not name a known enum constant.
type ParseError struct {
	Type  string
	Value string
}

func (e *ParseError) Error() string {
	return "design: invalid " + e.Type + " " + strconv.Quote(e.Value)
}

// ParseRangeType converts user input into a RangeType. Matching ignores case
// and surrounding whitespace.
func ParseRangeType(raw string) (RangeType, error) {
	value := RangeType(strings.ToLower(strings.TrimSpace(raw)))
	if !value.Valid() {
		return "", &ParseError{Type: "RangeType", Value: raw}
	}
	return value, nil
}

// ParseModifier converts user input into a Modifier.
func ParseModifier(raw string) (Modifier, error) {
	value := Modifier(strings.ToLower(strings.TrimSpace(raw)))
	if !value.Valid() {
		return "", &ParseError{Type: "Modifier", Value: raw}
	}
	return value, nil
}

// ParseRateUnit converts user input into a RateUnit.
func ParseRateUnit(raw string) (RateUnit, error) {
	value := RateUnit(strings.ToLower(strings.TrimSpace(raw)))
	if !value.Valid() {
		return "", &ParseError{Type: "RateUnit", Value: raw}
	}
	return value, nil
}

// RangeTypes lists the range types in display order.
func RangeTypes() []RangeType {
	return []RangeType{RangeCurrent, RangeUntil, RangeSingle}
}

// Modifiers lists the modifiers in display order.
func Modifiers() []Modifier {
	return []Modifier{ModifierNone, ModifierWithModifications, ModifierSeeThread}
}
