package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownSection is returned for a section name the session does not
	// manage, or one that does not support the requested operation.
	ErrUnknownSection = errors.New("form: unknown section")
	// ErrUnknownField is returned when a field does not exist on the section.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrIndexOutOfRange is returned when an index does not address an entry.
	ErrIndexOutOfRange = errors.New("form: index out of range")
	// ErrIndexCount is returned when the number of indices does not match the
	// section's nesting depth.
	ErrIndexCount = errors.New("form: wrong number of indices")
)

// FieldError describes a mutation the session refused because the caller
// addressed something that does not exist. It wraps one of the sentinel
// errors above.
type FieldError struct {
	Section Section
	Field   string
	Indices []int
	Err     error
}

func (e *FieldError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Section))
	for _, idx := range e.Indices {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(idx))
	}
	if e.Field != "" {
		b.WriteByte('.')
		b.WriteString(e.Field)
	}
	return fmt.Sprintf("%v: %s", e.Err, b.String())
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(section Section, field string, indices []int, err error) error {
	return &FieldError{Section: section, Field: field, Indices: append([]int(nil), indices...), Err: err}
}
