package rates

import (
	"strings"

	"github.com/tmcc-dev/designform/pkg/design"
)

const (
	fallbackDropName = "Drop"
	fallbackValue    = "x"
	fallbackInterval = "interval"
)

// Preview renders the one-line description shown next to a drop while it is
// being edited, e.g. "Iron Ingot (with looting III): 93.36k/chunk/h (AFK-able)".
func Preview(drop design.Drop) string {
	var b strings.Builder

	name := drop.Name
	if name == "" {
		name = fallbackDropName
	}
	b.WriteString(name)

	if drop.Condition != "" {
		b.WriteString(" (")
		b.WriteString(drop.Condition)
		b.WriteString(")")
	}

	b.WriteString(": ")
	if drop.RateValue != "" {
		b.WriteString(FormatValue(drop.RateValue))
	} else {
		b.WriteString(fallbackValue)
	}

	if drop.ExternalFactor != "" {
		b.WriteString("/")
		b.WriteString(drop.ExternalFactor)
	}

	b.WriteString("/")
	b.WriteString(Interval(drop))

	if drop.Note != "" {
		b.WriteString(" (")
		b.WriteString(drop.Note)
		b.WriteString(")")
	}
	return b.String()
}

// Interval resolves the unit a drop is measured over.
func Interval(drop design.Drop) string {
	if drop.RateUnit == design.RateUnitHour {
		return "h"
	}
	if drop.CustomUnit != "" {
		return drop.CustomUnit
	}
	return fallbackInterval
}

// AlternateLine renders the secondary "- 3/min" line displayed under a
// preview. It reports false unless both the alternate value and interval are
// set.
func AlternateLine(drop design.Drop) (string, bool) {
	if drop.AlternateValue == "" || drop.AlternateInterval == "" {
		return "", false
	}
	return "- " + drop.AlternateValue + "/" + drop.AlternateInterval, true
}
