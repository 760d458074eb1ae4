package render

import (
	"strconv"
	"strings"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
	"github.com/tmcc-dev/designform/pkg/validation"
)

// ErrorMapping splits error messages into field-level entries keyed by the
// dotted paths of a submission ("designers.0.name") and form-level messages
// that no rendered control owns.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Field returns the first message for path.
func (m ErrorMapping) Field(path string) string {
	if messages := m.Fields[path]; len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapTree projects an error tree onto the controls rendered for sub.
func MapTree(sub design.Submission, tree *errtree.Tree) ErrorMapping {
	flat := tree.Flatten()
	payload := make(map[string][]string, len(flat))
	for path, message := range flat {
		payload[path] = append(payload[path], message)
	}
	return MapErrorPayload(sub, payload)
}

// MapErrorPayload normalises error payloads keyed by dotted, bracketed or
// JSON pointer paths (optionally wrapped in body/request/payload segments)
// into the dotted paths of sub. A path deeper than any control attaches to
// its longest known prefix; anything else becomes a form-level message.
func MapErrorPayload(sub design.Submission, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := FieldPaths(sub)
	for raw, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		path, ok := resolvePath(raw, known)
		if !ok {
			mapping.Form = MergeFormErrors(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[path] = normalizeMessages(append(mapping.Fields[path], normalized...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	return mapping
}

// FieldPaths lists every path the submission page renders a control or a
// list container for.
func FieldPaths(sub design.Submission) map[string]struct{} {
	paths := make(map[string]struct{}, 64)
	add := func(parts ...string) {
		paths[strings.Join(parts, ".")] = struct{}{}
	}

	add("title")
	add("categories")
	add("description")

	people := func(section string, list []design.Person) {
		add(section)
		for i := range list {
			at := strconv.Itoa(i)
			add(section, at)
			for _, field := range []string{"name", "url", "contributions"} {
				add(section, at, field)
			}
		}
	}
	people("designers", sub.Designers)
	people("credits", sub.Credits)

	add("versions")
	for i := range sub.Versions {
		at := strconv.Itoa(i)
		add("versions", at)
		for _, field := range []string{"startVersion", "rangeType", "endVersion", "modifier", "modifierDetails"} {
			add("versions", at, field)
		}
	}

	drops := func(prefix string, list []design.Drop) {
		add(prefix)
		for i := range list {
			at := strconv.Itoa(i)
			add(prefix, at)
			for _, field := range dropFields {
				add(prefix, at, field)
			}
		}
	}
	add("rates")
	add("rates.variants")
	for i, variant := range sub.Rates.Variants {
		at := strconv.Itoa(i)
		add("rates.variants", at)
		add("rates.variants", at, "variantName")
		drops("rates.variants."+at+".drops", variant.Drops)
	}
	drops("rates.consumedResources", sub.Rates.ConsumedResources)
	add("rates.variabilityNote")
	add("rates.additionalNotes")
	return paths
}

var dropFields = []string{
	"dropName", "rateValue", "rateUnit", "customUnit", "condition",
	"externalFactor", "alternateInterval", "alternateValue", "note",
}

func resolvePath(raw string, known map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := segmentStrings(validation.ParsePath(strings.TrimPrefix(strings.TrimSpace(raw), "$")))
	segments = dropWrapperSegments(segments)
	if path := longestMatchingPath(segments, known); path != "" {
		return path, true
	}
	return "", false
}

func segmentStrings(path validation.Path) []string {
	out := make([]string, len(path))
	for i, seg := range path {
		out[i] = seg.String()
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "request", "payload", "data", "submission":
			segments = segments[1:]
			continue
		}
		break
	}
	return segments
}

func longestMatchingPath(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
