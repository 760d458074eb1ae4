package render

import (
	"strconv"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/rates"
)

// field is one control of the page. Name doubles as the dotted error path.
type field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Value   string   `json:"value"`
	Error   string   `json:"error,omitempty"`
	Options []string `json:"options,omitempty"`
}

type entry struct {
	Index  int     `json:"index"`
	Error  string  `json:"error,omitempty"`
	Fields []field `json:"fields"`
}

type versionEntry struct {
	entry
	Label string `json:"label"`
}

type dropEntry struct {
	entry
	Record    design.Drop `json:"record"`
	Alternate string      `json:"alternate,omitempty"`
}

type variantEntry struct {
	Index      int         `json:"index"`
	Error      string      `json:"error,omitempty"`
	Name       field       `json:"name"`
	Drops      []dropEntry `json:"drops"`
	DropsError string      `json:"dropsError,omitempty"`
}

type section[T any] struct {
	Error   string `json:"error,omitempty"`
	Entries []T    `json:"entries"`
}

type pageData struct {
	Action        string                `json:"action"`
	Title         field                 `json:"title"`
	Categories    field                 `json:"categories"`
	Description   field                 `json:"description"`
	Designers     section[entry]        `json:"designers"`
	Credits       section[entry]        `json:"credits"`
	Versions      section[versionEntry] `json:"versions"`
	VersionString string                `json:"versionString"`
	Variants      section[variantEntry] `json:"variants"`
	Consumed      section[dropEntry]    `json:"consumedResources"`
	Variability   field                 `json:"variabilityNote"`
	Notes         field                 `json:"additionalNotes"`
	FormErrors    []string              `json:"formErrors,omitempty"`
	Summary       summaryText           `json:"summary"`
	Theme         *Theme                `json:"theme,omitempty"`
	ThemeStyle    string                `json:"themeStyle,omitempty"`
}

// summaryText holds sanitised free text shown outside of form controls.
type summaryText struct {
	Description     string `json:"description"`
	VariabilityNote string `json:"variabilityNote"`
	AdditionalNotes string `json:"additionalNotes"`
}

var fieldLabels = map[string]string{
	"title":             "Title",
	"categories":        "Categories",
	"description":       "Description",
	"name":              "Name",
	"url":               "Profile URL",
	"contributions":     "Contributions",
	"startVersion":      "Start version",
	"rangeType":         "Range",
	"endVersion":        "End version",
	"modifier":          "Modifier",
	"modifierDetails":   "Modifier details",
	"variantName":       "Variant name",
	"dropName":          "Drop",
	"rateValue":         "Rate",
	"rateUnit":          "Unit",
	"customUnit":        "Custom unit",
	"condition":         "Condition",
	"externalFactor":    "External factor",
	"alternateInterval": "Alternate interval",
	"alternateValue":    "Alternate value",
	"note":              "Note",
	"variabilityNote":   "Variability note",
	"additionalNotes":   "Additional notes",
}

type builder struct {
	errors ErrorMapping
}

func (b builder) field(path, key, kind, value string, options ...string) field {
	return field{
		Name:    path,
		Label:   fieldLabels[key],
		Kind:    kind,
		Value:   value,
		Error:   b.errors.Field(path),
		Options: options,
	}
}

func buildPage(view View, errs ErrorMapping) pageData {
	b := builder{errors: errs}
	sub := view.Submission

	data := pageData{
		Action:        view.Action,
		Title:         b.field("title", "title", "text", sub.Title),
		Categories:    b.field("categories", "categories", "select", sub.Categories, view.Categories...),
		Description:   b.field("description", "description", "textarea", sub.Description),
		Designers:     b.people("designers", sub.Designers),
		Credits:       b.people("credits", sub.Credits),
		VersionString: design.VersionString(sub.Versions),
		Variability:   b.field("rates.variabilityNote", "variabilityNote", "textarea", sub.Rates.VariabilityNote),
		Notes:         b.field("rates.additionalNotes", "additionalNotes", "textarea", sub.Rates.AdditionalNotes),
		FormErrors:    errs.Form,
		Summary: summaryText{
			Description:     SanitizeText(sub.Description),
			VariabilityNote: SanitizeText(sub.Rates.VariabilityNote),
			AdditionalNotes: SanitizeText(sub.Rates.AdditionalNotes),
		},
	}

	data.Versions.Error = errs.Field("versions")
	for i, v := range sub.Versions {
		at := "versions." + strconv.Itoa(i)
		data.Versions.Entries = append(data.Versions.Entries, versionEntry{
			entry: entry{
				Index: i,
				Error: errs.Field(at),
				Fields: []field{
					b.field(at+".startVersion", "startVersion", "text", v.StartVersion),
					b.field(at+".rangeType", "rangeType", "select", string(v.RangeType), enumStrings(design.RangeTypes())...),
					b.field(at+".endVersion", "endVersion", "text", v.EndVersion),
					b.field(at+".modifier", "modifier", "select", string(v.Modifier), enumStrings(design.Modifiers())...),
					b.field(at+".modifierDetails", "modifierDetails", "text", v.ModifierDetails),
				},
			},
			Label: v.Label(),
		})
	}

	data.Variants.Error = errs.Field("rates.variants")
	for i, variant := range sub.Rates.Variants {
		at := "rates.variants." + strconv.Itoa(i)
		drops := b.drops(at+".drops", variant.Drops)
		data.Variants.Entries = append(data.Variants.Entries, variantEntry{
			Index:      i,
			Error:      errs.Field(at),
			Name:       b.field(at+".variantName", "variantName", "text", variant.Name),
			Drops:      drops.Entries,
			DropsError: drops.Error,
		})
	}
	data.Consumed = b.drops("rates.consumedResources", sub.Rates.ConsumedResources)
	return data
}

func (b builder) people(prefix string, people []design.Person) section[entry] {
	out := section[entry]{Error: b.errors.Field(prefix)}
	for i, p := range people {
		at := prefix + "." + strconv.Itoa(i)
		out.Entries = append(out.Entries, entry{
			Index: i,
			Error: b.errors.Field(at),
			Fields: []field{
				b.field(at+".name", "name", "text", p.Name),
				b.field(at+".url", "url", "url", p.URL),
				b.field(at+".contributions", "contributions", "text", p.Contributions),
			},
		})
	}
	return out
}

func (b builder) drops(prefix string, drops []design.Drop) section[dropEntry] {
	out := section[dropEntry]{Error: b.errors.Field(prefix)}
	for i, d := range drops {
		at := prefix + "." + strconv.Itoa(i)
		alternate, _ := rates.AlternateLine(d)
		out.Entries = append(out.Entries, dropEntry{
			entry: entry{
				Index: i,
				Error: b.errors.Field(at),
				Fields: []field{
					b.field(at+".dropName", "dropName", "text", d.Name),
					b.field(at+".rateValue", "rateValue", "text", d.RateValue),
					b.field(at+".rateUnit", "rateUnit", "select", string(d.RateUnit), string(design.RateUnitHour), string(design.RateUnitCustom)),
					b.field(at+".customUnit", "customUnit", "text", d.CustomUnit),
					b.field(at+".condition", "condition", "text", d.Condition),
					b.field(at+".externalFactor", "externalFactor", "text", d.ExternalFactor),
					b.field(at+".alternateInterval", "alternateInterval", "text", d.AlternateInterval),
					b.field(at+".alternateValue", "alternateValue", "text", d.AlternateValue),
					b.field(at+".note", "note", "text", d.Note),
				},
			},
			Record:    d,
			Alternate: alternate,
		})
	}
	return out
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
