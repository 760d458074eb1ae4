package tui

import (
	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/form"
	"github.com/tmcc-dev/designform/pkg/validation"
)

// target addresses one editable field in the form.Session vocabulary.
type target struct {
	section form.Section
	field   string
	indices []int
}

func at(section form.Section, field string, indices ...int) target {
	return target{section: section, field: field, indices: indices}
}

// path returns the validation path the session stores errors under.
func (t target) path() validation.Path {
	switch t.section {
	case form.SectionTitle, form.SectionCategories, form.SectionDescription:
		return validation.NewPath(string(t.section))
	case form.SectionRates:
		return validation.NewPath("rates", t.field)
	case form.SectionVariants:
		return validation.NewPath("rates", "variants", t.indices[0], t.field)
	case form.SectionDrops:
		return validation.NewPath("rates", "variants", t.indices[0], "drops", t.indices[1], t.field)
	case form.SectionConsumedResources:
		return validation.NewPath("rates", "consumedResources", t.indices[0], t.field)
	default:
		return validation.NewPath(string(t.section), t.indices[0], t.field)
	}
}

// targetFor maps a field-level validation path back to a target. Whole
// sequence and entry paths have no single field to ask for.
func targetFor(path validation.Path) (target, bool) {
	keys := func(want ...bool) bool {
		if len(path) != len(want) {
			return false
		}
		for i, isIndex := range want {
			if path[i].IsIndex != isIndex {
				return false
			}
		}
		return true
	}

	switch {
	case keys(false):
		switch section := form.Section(path[0].Key); section {
		case form.SectionTitle, form.SectionCategories, form.SectionDescription:
			return at(section, ""), true
		}
	case keys(false, true, false):
		switch section := form.Section(path[0].Key); section {
		case form.SectionDesigners, form.SectionCredits, form.SectionVersions:
			return at(section, path[2].Key, path[1].Index), true
		}
	case keys(false, false):
		if path[0].Key == "rates" {
			return at(form.SectionRates, path[1].Key), true
		}
	case keys(false, false, true, false):
		if path[0].Key != "rates" {
			break
		}
		switch path[1].Key {
		case "variants":
			if path[3].Key == "variantName" {
				return at(form.SectionVariants, path[3].Key, path[2].Index), true
			}
		case "consumedResources":
			return at(form.SectionConsumedResources, path[3].Key, path[2].Index), true
		}
	case keys(false, false, true, false, true, false):
		if path[0].Key == "rates" && path[1].Key == "variants" && path[3].Key == "drops" {
			return at(form.SectionDrops, path[5].Key, path[2].Index, path[4].Index), true
		}
	}
	return target{}, false
}

// valueOf reads the current value of t from sub.
func valueOf(sub design.Submission, t target) string {
	switch t.section {
	case form.SectionTitle:
		return sub.Title
	case form.SectionCategories:
		return sub.Categories
	case form.SectionDescription:
		return sub.Description
	case form.SectionRates:
		if t.field == "variabilityNote" {
			return sub.Rates.VariabilityNote
		}
		return sub.Rates.AdditionalNotes
	case form.SectionDesigners:
		return personValue(sub.Designers[t.indices[0]], t.field)
	case form.SectionCredits:
		return personValue(sub.Credits[t.indices[0]], t.field)
	case form.SectionVersions:
		return versionValue(sub.Versions[t.indices[0]], t.field)
	case form.SectionVariants:
		return sub.Rates.Variants[t.indices[0]].Name
	case form.SectionDrops:
		return dropValue(sub.Rates.Variants[t.indices[0]].Drops[t.indices[1]], t.field)
	case form.SectionConsumedResources:
		return dropValue(sub.Rates.ConsumedResources[t.indices[0]], t.field)
	}
	return ""
}

func personValue(p design.Person, field string) string {
	switch field {
	case "name":
		return p.Name
	case "url":
		return p.URL
	case "contributions":
		return p.Contributions
	}
	return ""
}

func versionValue(v design.VersionRange, field string) string {
	switch field {
	case "startVersion":
		return v.StartVersion
	case "rangeType":
		return string(v.RangeType)
	case "endVersion":
		return v.EndVersion
	case "modifier":
		return string(v.Modifier)
	case "modifierDetails":
		return v.ModifierDetails
	}
	return ""
}

func dropValue(d design.Drop, field string) string {
	switch field {
	case "dropName":
		return d.Name
	case "rateValue":
		return d.RateValue
	case "rateUnit":
		return string(d.RateUnit)
	case "customUnit":
		return d.CustomUnit
	case "condition":
		return d.Condition
	case "externalFactor":
		return d.ExternalFactor
	case "alternateInterval":
		return d.AlternateInterval
	case "alternateValue":
		return d.AlternateValue
	case "note":
		return d.Note
	}
	return ""
}

// sectionLen reports how many entries an indexed section holds. Drops take
// the variant index as parent.
func sectionLen(sub design.Submission, section form.Section, parent []int) int {
	switch section {
	case form.SectionDesigners:
		return len(sub.Designers)
	case form.SectionCredits:
		return len(sub.Credits)
	case form.SectionVersions:
		return len(sub.Versions)
	case form.SectionVariants:
		return len(sub.Rates.Variants)
	case form.SectionConsumedResources:
		return len(sub.Rates.ConsumedResources)
	case form.SectionDrops:
		if len(parent) == 1 && parent[0] < len(sub.Rates.Variants) {
			return len(sub.Rates.Variants[parent[0]].Drops)
		}
	}
	return 0
}

// withDefaults gives every required section its first blank entry.
func withDefaults(sub design.Submission) design.Submission {
	sub = sub.Clone()
	if len(sub.Designers) == 0 {
		sub.Designers = []design.Person{design.NewPerson()}
	}
	if len(sub.Versions) == 0 {
		sub.Versions = []design.VersionRange{design.NewVersionRange()}
	}
	if len(sub.Rates.Variants) == 0 {
		first := design.NewVariant()
		first.Name = design.DefaultVariantName
		sub.Rates.Variants = []design.Variant{first}
	}
	for i := range sub.Rates.Variants {
		if len(sub.Rates.Variants[i].Drops) == 0 {
			sub.Rates.Variants[i].Drops = []design.Drop{design.NewDrop()}
		}
	}
	return sub
}
