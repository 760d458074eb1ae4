package tui

import (
	"fmt"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/form"
)

type promptKind int

const (
	kindInput promptKind = iota
	kindTextArea
	kindSelect
)

type prompt struct {
	label   string
	help    string
	kind    promptKind
	options []string
}

var sectionNouns = map[form.Section]string{
	form.SectionDesigners:         "designer",
	form.SectionCredits:           "credit",
	form.SectionVersions:          "version range",
	form.SectionVariants:          "variant",
	form.SectionDrops:             "drop",
	form.SectionConsumedResources: "consumed resource",
}

var fieldPrompts = map[string]prompt{
	"title":             {label: "Title", help: "2 to 100 characters"},
	"categories":        {label: "Categories"},
	"description":       {label: "Description", kind: kindTextArea},
	"name":              {label: "Name"},
	"url":               {label: "Profile URL", help: "Optional link to the person's page"},
	"contributions":     {label: "Contributions", help: "Comma separated, e.g. Main design, Testing"},
	"startVersion":      {label: "Start version", help: "Minor version after \"1.\", e.g. 19"},
	"rangeType":         {label: "Range", kind: kindSelect, options: enumOptions(design.RangeTypes())},
	"endVersion":        {label: "End version", help: "Minor version after \"1.\""},
	"modifier":          {label: "Modifier", kind: kindSelect, options: enumOptions(design.Modifiers())},
	"modifierDetails":   {label: "Modifier details"},
	"variantName":       {label: "Variant name"},
	"dropName":          {label: "Drop", help: "Item name, each word capitalised"},
	"rateValue":         {label: "Rate", help: "Positive number, e.g. 93360"},
	"rateUnit":          {label: "Unit", kind: kindSelect, options: []string{string(design.RateUnitHour), string(design.RateUnitCustom)}},
	"customUnit":        {label: "Custom unit", help: "e.g. cycle"},
	"condition":         {label: "Condition", help: "e.g. with looting III"},
	"externalFactor":    {label: "External factor", help: "e.g. chunk"},
	"alternateValue":    {label: "Alternate value"},
	"alternateInterval": {label: "Alternate interval", help: "e.g. min"},
	"note":              {label: "Note", help: "e.g. AFK-able"},
	"variabilityNote":   {label: "Variability note", kind: kindTextArea},
	"additionalNotes":   {label: "Additional notes", kind: kindTextArea},
}

func (r *Renderer) promptFor(t target) prompt {
	key := t.field
	if key == "" {
		key = string(t.section)
	}
	p, ok := fieldPrompts[key]
	if !ok {
		p = prompt{label: key}
	}
	if key == "categories" && len(r.categories) > 0 {
		p.kind = kindSelect
		p.options = r.categories
	}

	switch t.section {
	case form.SectionDesigners, form.SectionCredits, form.SectionVersions, form.SectionVariants, form.SectionConsumedResources:
		p.label = fmt.Sprintf("%s %d: %s", sectionNouns[t.section], t.indices[0]+1, p.label)
	case form.SectionDrops:
		p.label = fmt.Sprintf("variant %d drop %d: %s", t.indices[0]+1, t.indices[1]+1, p.label)
	}
	return p
}

func enumOptions[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
