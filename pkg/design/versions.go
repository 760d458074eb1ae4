package design

import "strings"

// VersionString joins ranges into the combined compatibility label stored
// with a design, for example "1.16-1.18 (see thread); 1.19+".
//
// Segments are built verbatim from the record; an empty start version still
// produces the degenerate "1." segment.
func VersionString(ranges []VersionRange) string {
	if len(ranges) == 0 {
		return ""
	}

	segments := make([]string, 0, len(ranges))
	for _, r := range ranges {
		segments = append(segments, r.Label())
	}
	return strings.Join(segments, "; ")
}

// Label renders a single range segment.
func (r VersionRange) Label() string {
	var b strings.Builder
	b.WriteString("1.")
	b.WriteString(r.StartVersion)

	switch r.RangeType {
	case RangeCurrent:
		b.WriteString("+")
	case RangeUntil:
		if r.EndVersion != "" {
			b.WriteString("-1.")
			b.WriteString(r.EndVersion)
		}
	}

	switch r.Modifier {
	case ModifierWithModifications:
		b.WriteString(" (with modifications)")
	case ModifierSeeThread:
		b.WriteString(" (see thread)")
	}
	return b.String()
}
