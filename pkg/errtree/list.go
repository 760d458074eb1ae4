package errtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
)

// Kind reports which shape a List currently holds.
type Kind int

const (
	// KindNone means the sequence carries no errors.
	KindNone Kind = iota
	// KindWhole means a single message applies to the whole sequence
	// ("At least one designer is required").
	KindWhole
	// KindItems means errors are held per element, aligned by index with the
	// data sequence. Error free indices hold nil.
	KindItems
)

func (k Kind) String() string {
	switch k {
	case KindWhole:
		return "whole"
	case KindItems:
		return "items"
	default:
		return "none"
	}
}

// List is the error slot of a sequence field. It is either empty, a single
// whole-sequence message or a sparse slice of per-element errors; never both.
type List[T any] struct {
	kind  Kind
	whole string
	items []*T
}

// Whole returns a list carrying one message for the entire sequence.
func Whole[T any](message string) List[T] {
	if message == "" {
		return List[T]{}
	}
	return List[T]{kind: KindWhole, whole: message}
}

// Items returns a per-element list. Nil entries mark error free indices.
func Items[T any](items ...*T) List[T] {
	l := List[T]{kind: KindItems, items: items}
	l.normalize(nil)
	return l
}

// Kind reports the current shape.
func (l List[T]) Kind() Kind {
	return l.kind
}

// Whole returns the whole-sequence message, if that is the current shape.
func (l List[T]) Whole() (string, bool) {
	if l.kind != KindWhole {
		return "", false
	}
	return l.whole, true
}

// Items returns the per-element errors, if that is the current shape.
func (l List[T]) Items() []*T {
	if l.kind != KindItems {
		return nil
	}
	return l.items
}

// At returns the errors recorded for index i, or nil.
func (l List[T]) At(i int) *T {
	if l.kind != KindItems || i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Len returns the number of per-element slots (0 unless KindItems).
func (l List[T]) Len() int {
	if l.kind != KindItems {
		return 0
	}
	return len(l.items)
}

// Equal reports deep equality; go-cmp picks it up in tests.
func (l List[T]) Equal(other List[T]) bool {
	return l.kind == other.kind && l.whole == other.whole && reflect.DeepEqual(l.items, other.items)
}

// wholeSlot returns the storage for the whole-sequence message. It returns
// nil when the list already holds per-element errors.
func (l *List[T]) wholeSlot(create bool) *string {
	switch l.kind {
	case KindWhole:
		return &l.whole
	case KindItems:
		return nil
	}
	if !create {
		return nil
	}
	l.kind = KindWhole
	return &l.whole
}

// item returns the entry at i, lazily creating it (and growing the slice)
// when create is set. It returns nil when the list holds a whole message.
func (l *List[T]) item(i int, create bool) *T {
	if i < 0 || l.kind == KindWhole {
		return nil
	}
	if i >= len(l.items) || l.items[i] == nil {
		if !create {
			return nil
		}
		for len(l.items) <= i {
			l.items = append(l.items, nil)
		}
		l.items[i] = new(T)
		l.kind = KindItems
	}
	return l.items[i]
}

// splice removes the entry at i and shifts later entries down by one.
func (l *List[T]) splice(i int) bool {
	if l.kind != KindItems || i < 0 || i >= len(l.items) {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.normalize(nil)
	return true
}

// normalize prunes entries that no longer carry messages and collapses the
// list back to KindNone once nothing is left.
func (l *List[T]) normalize(empty func(*T) bool) {
	switch l.kind {
	case KindWhole:
		if l.whole == "" {
			*l = List[T]{}
		}
		return
	case KindItems:
	default:
		*l = List[T]{}
		return
	}

	last := -1
	for i, item := range l.items {
		if item != nil && empty != nil && empty(item) {
			l.items[i] = nil
			item = nil
		}
		if item != nil {
			last = i
		}
	}
	if last < 0 {
		*l = List[T]{}
		return
	}
	l.items = l.items[:last+1]
}

// MarshalJSON encodes a whole message as a JSON string and per-element
// errors as an array with null at error free indices.
func (l List[T]) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case KindWhole:
		return json.Marshal(l.whole)
	case KindItems:
		return json.Marshal(l.items)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a string or an array of objects/nulls.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = List[T]{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var message string
		if err := json.Unmarshal(trimmed, &message); err != nil {
			return err
		}
		*l = Whole[T](message)
		return nil
	case '[':
		var items []*T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = Items(items...)
		return nil
	}
	return errors.New("errtree: sequence errors must be a string or an array")
}
