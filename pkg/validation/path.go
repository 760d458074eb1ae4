package validation

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either an object key or a sequence index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object key segment.
func Key(name string) Segment {
	return Segment{Key: name}
}

// Index returns a sequence index segment.
func Index(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path addresses a field inside a submission, mirroring the record nesting:
// designers[0].name is Path{Key("designers"), Index(0), Key("name")}.
type Path []Segment

// NewPath builds a path from keys (string) and indices (int). Other element
// types are ignored.
func NewPath(parts ...any) Path {
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			out = append(out, Key(v))
		case int:
			out = append(out, Index(v))
		case Segment:
			out = append(out, v)
		}
	}
	return out
}

// Append returns a new path extended by segs; p is never modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// String renders the dotted form used as a field identifier
// ("rates.variants.0.drops.1.dropName").
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// Pointer renders the path as a JSON pointer ("/designers/0/name").
func (p Path) Pointer() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		text := seg.String()
		text = strings.ReplaceAll(text, "~", "~0")
		text = strings.ReplaceAll(text, "/", "~1")
		b.WriteString(text)
	}
	return b.String()
}

// Equal reports whether both paths address the same field.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// MarshalJSON encodes the path as a mixed array of keys and indices, the
// shape form libraries commonly report ("designers", 0, "name").
func (p Path) MarshalJSON() ([]byte, error) {
	out := make([]any, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			out[i] = seg.Index
		} else {
			out[i] = seg.Key
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either the array form or a string understood by
// ParsePath.
func (p *Path) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = ParsePath(text)
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("validation: path must be a string or an array")
	}
	out := make(Path, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, Key(v))
		case float64:
			out = append(out, Index(int(v)))
		default:
			return errors.New("validation: path segments must be strings or integers")
		}
	}
	*p = out
	return nil
}

// ParsePath converts dotted ("designers.0.name"), bracketed
// ("designers[0].name") and JSON pointer ("/designers/0/name") notations into
// a Path. Purely numeric segments become indices.
func ParsePath(raw string) Path {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "#")
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make(Path, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if isNumeric(segment) {
			if idx, err := strconv.Atoi(segment); err == nil {
				out = append(out, Index(idx))
				continue
			}
		}
		out = append(out, Key(segment))
	}
	return out
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
