package errtree

import (
	"encoding/json"

	"github.com/tmcc-dev/designform/pkg/validation"
)

// PersonErrors holds messages for one designer or credit entry.
type PersonErrors struct {
	Name          string `json:"name,omitempty"`
	URL           string `json:"url,omitempty"`
	Contributions string `json:"contributions,omitempty"`
}

// VersionErrors holds messages for one version range.
type VersionErrors struct {
	StartVersion    string `json:"startVersion,omitempty"`
	RangeType       string `json:"rangeType,omitempty"`
	EndVersion      string `json:"endVersion,omitempty"`
	Modifier        string `json:"modifier,omitempty"`
	ModifierDetails string `json:"modifierDetails,omitempty"`
}

// DropErrors holds messages for one rate drop or consumed resource.
type DropErrors struct {
	DropName          string `json:"dropName,omitempty"`
	RateValue         string `json:"rateValue,omitempty"`
	RateUnit          string `json:"rateUnit,omitempty"`
	CustomUnit        string `json:"customUnit,omitempty"`
	Condition         string `json:"condition,omitempty"`
	ExternalFactor    string `json:"externalFactor,omitempty"`
	AlternateInterval string `json:"alternateInterval,omitempty"`
	AlternateValue    string `json:"alternateValue,omitempty"`
	Note              string `json:"note,omitempty"`
}

// VariantErrors holds messages for one rate variant and its drops.
type VariantErrors struct {
	VariantName string           `json:"variantName,omitempty"`
	Drops       List[DropErrors] `json:"drops"`
}

// RatesErrors mirrors the rates block.
type RatesErrors struct {
	Variants          List[VariantErrors] `json:"variants"`
	ConsumedResources List[DropErrors]    `json:"consumedResources"`
	VariabilityNote   string              `json:"variabilityNote,omitempty"`
	AdditionalNotes   string              `json:"additionalNotes,omitempty"`
}

// Tree is the error structure parallel to a design submission. Fields that
// pass validation carry no message.
type Tree struct {
	Title       string              `json:"title,omitempty"`
	Categories  string              `json:"categories,omitempty"`
	Description string              `json:"description,omitempty"`
	Designers   List[PersonErrors]  `json:"designers"`
	Credits     List[PersonErrors]  `json:"credits"`
	Versions    List[VersionErrors] `json:"versions"`
	Rates       *RatesErrors        `json:"rates,omitempty"`
	// Form collects messages whose path has no slot in the tree, keyed by
	// dotted path. Nothing reported by validation is dropped.
	Form map[string]string `json:"form,omitempty"`
}

func (e *PersonErrors) slot(rest validation.Path, _ bool) *string {
	key, ok := leaf(rest)
	if !ok {
		return nil
	}
	switch key {
	case "name":
		return &e.Name
	case "url":
		return &e.URL
	case "contributions":
		return &e.Contributions
	}
	return nil
}

func (e *PersonErrors) empty() bool {
	return *e == PersonErrors{}
}

func (e *VersionErrors) slot(rest validation.Path, _ bool) *string {
	key, ok := leaf(rest)
	if !ok {
		return nil
	}
	switch key {
	case "startVersion":
		return &e.StartVersion
	case "rangeType":
		return &e.RangeType
	case "endVersion":
		return &e.EndVersion
	case "modifier":
		return &e.Modifier
	case "modifierDetails":
		return &e.ModifierDetails
	}
	return nil
}

func (e *VersionErrors) empty() bool {
	return *e == VersionErrors{}
}

func (e *DropErrors) slot(rest validation.Path, _ bool) *string {
	key, ok := leaf(rest)
	if !ok {
		return nil
	}
	switch key {
	case "dropName":
		return &e.DropName
	case "rateValue":
		return &e.RateValue
	case "rateUnit":
		return &e.RateUnit
	case "customUnit":
		return &e.CustomUnit
	case "condition":
		return &e.Condition
	case "externalFactor":
		return &e.ExternalFactor
	case "alternateInterval":
		return &e.AlternateInterval
	case "alternateValue":
		return &e.AlternateValue
	case "note":
		return &e.Note
	}
	return nil
}

func (e *DropErrors) empty() bool {
	return *e == DropErrors{}
}

func (e *VariantErrors) slot(rest validation.Path, create bool) *string {
	if len(rest) == 0 || rest[0].IsIndex {
		return nil
	}
	switch rest[0].Key {
	case "variantName":
		if len(rest) == 1 {
			return &e.VariantName
		}
	case "drops":
		return listSlot(&e.Drops, rest[1:], create, (*DropErrors).slot)
	}
	return nil
}

func (e *VariantErrors) compact() {
	e.Drops.normalize((*DropErrors).empty)
}

func (e *VariantErrors) empty() bool {
	e.compact()
	return e.VariantName == "" && e.Drops.Kind() == KindNone
}

func (r *RatesErrors) slot(rest validation.Path, create bool) *string {
	if len(rest) == 0 || rest[0].IsIndex {
		return nil
	}
	switch rest[0].Key {
	case "variants":
		return listSlot(&r.Variants, rest[1:], create, (*VariantErrors).slot)
	case "consumedResources":
		return listSlot(&r.ConsumedResources, rest[1:], create, (*DropErrors).slot)
	case "variabilityNote":
		if len(rest) == 1 {
			return &r.VariabilityNote
		}
	case "additionalNotes":
		if len(rest) == 1 {
			return &r.AdditionalNotes
		}
	}
	return nil
}

func (r *RatesErrors) compact() {
	r.Variants.normalize((*VariantErrors).empty)
	r.ConsumedResources.normalize((*DropErrors).empty)
}

func (r *RatesErrors) empty() bool {
	r.compact()
	return r.Variants.Kind() == KindNone &&
		r.ConsumedResources.Kind() == KindNone &&
		r.VariabilityNote == "" &&
		r.AdditionalNotes == ""
}

// listSlot resolves rest against a sequence: an empty rest addresses the
// whole-sequence message, an index descends into that element.
func listSlot[T any](l *List[T], rest validation.Path, create bool, field func(*T, validation.Path, bool) *string) *string {
	if len(rest) == 0 {
		return l.wholeSlot(create)
	}
	if !rest[0].IsIndex {
		return nil
	}
	item := l.item(rest[0].Index, create)
	if item == nil {
		return nil
	}
	return field(item, rest[1:], create)
}

func leaf(rest validation.Path) (string, bool) {
	if len(rest) != 1 || rest[0].IsIndex {
		return "", false
	}
	return rest[0].Key, true
}

func (t *Tree) slot(path validation.Path, create bool) *string {
	if len(path) == 0 || path[0].IsIndex {
		return nil
	}
	rest := path[1:]
	switch path[0].Key {
	case "title":
		if len(rest) == 0 {
			return &t.Title
		}
	case "categories":
		if len(rest) == 0 {
			return &t.Categories
		}
	case "description":
		if len(rest) == 0 {
			return &t.Description
		}
	case "designers":
		return listSlot(&t.Designers, rest, create, (*PersonErrors).slot)
	case "credits":
		return listSlot(&t.Credits, rest, create, (*PersonErrors).slot)
	case "versions":
		return listSlot(&t.Versions, rest, create, (*VersionErrors).slot)
	case "rates":
		if t.Rates == nil {
			if !create {
				return nil
			}
			t.Rates = &RatesErrors{}
		}
		return t.Rates.slot(rest, create)
	}
	return nil
}

// compact prunes per-index entries and blocks left without messages.
func (t *Tree) compact() {
	t.Designers.normalize((*PersonErrors).empty)
	t.Credits.normalize((*PersonErrors).empty)
	t.Versions.normalize((*VersionErrors).empty)
	if t.Rates != nil && t.Rates.empty() {
		t.Rates = nil
	}
	if len(t.Form) == 0 {
		t.Form = nil
	}
}

// MarshalJSON omits sequences without errors so the payload only carries
// failing paths.
func (t Tree) MarshalJSON() ([]byte, error) {
	type wire struct {
		Title       string               `json:"title,omitempty"`
		Categories  string               `json:"categories,omitempty"`
		Description string               `json:"description,omitempty"`
		Designers   *List[PersonErrors]  `json:"designers,omitempty"`
		Credits     *List[PersonErrors]  `json:"credits,omitempty"`
		Versions    *List[VersionErrors] `json:"versions,omitempty"`
		Rates       *RatesErrors         `json:"rates,omitempty"`
		Form        map[string]string    `json:"form,omitempty"`
	}
	return json.Marshal(wire{
		Title:       t.Title,
		Categories:  t.Categories,
		Description: t.Description,
		Designers:   present(t.Designers),
		Credits:     present(t.Credits),
		Versions:    present(t.Versions),
		Rates:       t.Rates,
		Form:        t.Form,
	})
}

// MarshalJSON omits sequences without errors.
func (r RatesErrors) MarshalJSON() ([]byte, error) {
	type wire struct {
		Variants          *List[VariantErrors] `json:"variants,omitempty"`
		ConsumedResources *List[DropErrors]    `json:"consumedResources,omitempty"`
		VariabilityNote   string               `json:"variabilityNote,omitempty"`
		AdditionalNotes   string               `json:"additionalNotes,omitempty"`
	}
	return json.Marshal(wire{
		Variants:          present(r.Variants),
		ConsumedResources: present(r.ConsumedResources),
		VariabilityNote:   r.VariabilityNote,
		AdditionalNotes:   r.AdditionalNotes,
	})
}

// MarshalJSON omits the drops key when no drop carries errors.
func (e VariantErrors) MarshalJSON() ([]byte, error) {
	type wire struct {
		VariantName string            `json:"variantName,omitempty"`
		Drops       *List[DropErrors] `json:"drops,omitempty"`
	}
	return json.Marshal(wire{VariantName: e.VariantName, Drops: present(e.Drops)})
}

func present[T any](l List[T]) *List[T] {
	if l.Kind() == KindNone {
		return nil
	}
	return &l
}
