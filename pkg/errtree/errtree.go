// Package errtree maps flat validation issues onto a tree shaped like the
// submission, where each sequence field carries either a whole-sequence
// message or sparse per-element errors.
package errtree

import (
	"strconv"

	"github.com/tmcc-dev/designform/pkg/validation"
)

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Map builds a tree from validation issues. Intermediate per-index entries
// are created only for indices that carry errors. When several issues target
// the same field the first one wins.
func Map(issues []validation.Issue) *Tree {
	tree := New()
	for _, issue := range issues {
		tree.Set(issue.Path, issue.Message)
	}
	return tree
}

// Set records message at path unless a message is already present there.
// Paths without a slot in the tree (unknown fields, or a per-element error
// against a sequence that already holds a whole message) are kept in Form.
func (t *Tree) Set(path validation.Path, message string) {
	if message == "" {
		return
	}
	slot := t.slot(path, true)
	if slot == nil {
		t.compact()
		key := path.String()
		if t.Form == nil {
			t.Form = make(map[string]string)
		}
		if _, exists := t.Form[key]; !exists {
			t.Form[key] = message
		}
		return
	}
	if *slot == "" {
		*slot = message
	}
}

// Message returns the message recorded at path.
func (t *Tree) Message(path validation.Path) (string, bool) {
	if t == nil {
		return "", false
	}
	if slot := t.slot(path, false); slot != nil && *slot != "" {
		return *slot, true
	}
	if message, ok := t.Form[path.String()]; ok {
		return message, true
	}
	return "", false
}

// Clear deletes the message at path, pruning per-index entries and blocks
// that become empty. It reports whether a message was removed.
func (t *Tree) Clear(path validation.Path) bool {
	if t == nil {
		return false
	}
	removed := false
	if slot := t.slot(path, false); slot != nil && *slot != "" {
		*slot = ""
		removed = true
	}
	key := path.String()
	if _, ok := t.Form[key]; ok {
		delete(t.Form, key)
		removed = true
	}
	if removed {
		t.compact()
	}
	return removed
}

// Splice removes the per-element errors at index from the sequence at list
// and shifts later entries down, keeping the tree aligned with a data
// sequence after the same removal. Supported sequences are designers,
// credits, versions, rates.variants, rates.consumedResources and
// rates.variants.N.drops.
func (t *Tree) Splice(list validation.Path, index int) bool {
	if t == nil {
		return false
	}
	changed := false
	switch {
	case matches(list, "designers"):
		changed = t.Designers.splice(index)
	case matches(list, "credits"):
		changed = t.Credits.splice(index)
	case matches(list, "versions"):
		changed = t.Versions.splice(index)
	case matches(list, "rates", "variants"):
		if t.Rates != nil {
			changed = t.Rates.Variants.splice(index)
		}
	case matches(list, "rates", "consumedResources"):
		if t.Rates != nil {
			changed = t.Rates.ConsumedResources.splice(index)
		}
	case len(list) == 4 && matches(list[:2], "rates", "variants") && list[2].IsIndex && matches(list[3:], "drops"):
		if t.Rates != nil {
			if variant := t.Rates.Variants.At(list[2].Index); variant != nil {
				changed = variant.Drops.splice(index)
			}
		}
	}
	if changed {
		t.compact()
	}
	return changed
}

// Empty reports whether the tree holds no messages at all.
func (t *Tree) Empty() bool {
	if t == nil {
		return true
	}
	t.compact()
	return t.Title == "" &&
		t.Categories == "" &&
		t.Description == "" &&
		t.Designers.Kind() == KindNone &&
		t.Credits.Kind() == KindNone &&
		t.Versions.Kind() == KindNone &&
		t.Rates == nil &&
		len(t.Form) == 0
}

// Flatten returns every message keyed by its dotted path
// ("rates.variants.0.drops.1.dropName").
func (t *Tree) Flatten() map[string]string {
	out := make(map[string]string)
	if t == nil {
		return out
	}
	put(out, "title", t.Title)
	put(out, "categories", t.Categories)
	put(out, "description", t.Description)
	flattenList(out, "designers", t.Designers, flattenPerson)
	flattenList(out, "credits", t.Credits, flattenPerson)
	flattenList(out, "versions", t.Versions, func(out map[string]string, prefix string, e *VersionErrors) {
		put(out, prefix+".startVersion", e.StartVersion)
		put(out, prefix+".rangeType", e.RangeType)
		put(out, prefix+".endVersion", e.EndVersion)
		put(out, prefix+".modifier", e.Modifier)
		put(out, prefix+".modifierDetails", e.ModifierDetails)
	})
	if t.Rates != nil {
		flattenList(out, "rates.variants", t.Rates.Variants, func(out map[string]string, prefix string, e *VariantErrors) {
			put(out, prefix+".variantName", e.VariantName)
			flattenList(out, prefix+".drops", e.Drops, flattenDrop)
		})
		flattenList(out, "rates.consumedResources", t.Rates.ConsumedResources, flattenDrop)
		put(out, "rates.variabilityNote", t.Rates.VariabilityNote)
		put(out, "rates.additionalNotes", t.Rates.AdditionalNotes)
	}
	for key, message := range t.Form {
		if _, exists := out[key]; !exists {
			out[key] = message
		}
	}
	return out
}

func flattenList[T any](out map[string]string, prefix string, l List[T], each func(map[string]string, string, *T)) {
	if message, ok := l.Whole(); ok {
		put(out, prefix, message)
		return
	}
	for i, item := range l.Items() {
		if item == nil {
			continue
		}
		each(out, prefix+"."+strconv.Itoa(i), item)
	}
}

func flattenPerson(out map[string]string, prefix string, e *PersonErrors) {
	put(out, prefix+".name", e.Name)
	put(out, prefix+".url", e.URL)
	put(out, prefix+".contributions", e.Contributions)
}

func flattenDrop(out map[string]string, prefix string, e *DropErrors) {
	put(out, prefix+".dropName", e.DropName)
	put(out, prefix+".rateValue", e.RateValue)
	put(out, prefix+".rateUnit", e.RateUnit)
	put(out, prefix+".customUnit", e.CustomUnit)
	put(out, prefix+".condition", e.Condition)
	put(out, prefix+".externalFactor", e.ExternalFactor)
	put(out, prefix+".alternateInterval", e.AlternateInterval)
	put(out, prefix+".alternateValue", e.AlternateValue)
	put(out, prefix+".note", e.Note)
}

func put(out map[string]string, key, message string) {
	if message != "" {
		out[key] = message
	}
}

func matches(path validation.Path, keys ...string) bool {
	if len(path) != len(keys) {
		return false
	}
	for i, key := range keys {
		if path[i].IsIndex || path[i].Key != key {
			return false
		}
	}
	return true
}
