package design

// RangeType describes how a version range extends from its start version.
type RangeType string

const (
	// RangeCurrent covers the start version and everything after it ("1.19+").
	RangeCurrent RangeType = "current"
	// RangeUntil covers start through an explicit end version ("1.16-1.19").
	RangeUntil RangeType = "until"
	// RangeSingle covers exactly one version ("1.19").
	RangeSingle RangeType = "single"
)

// Valid reports whether the range type is one of the known constants.
func (t RangeType) Valid() bool {
	switch t {
	case RangeCurrent, RangeUntil, RangeSingle:
		return true
	default:
		return false
	}
}

// Modifier qualifies a version range.
type Modifier string

const (
	ModifierNone              Modifier = "none"
	ModifierWithModifications Modifier = "with-modifications"
	ModifierSeeThread         Modifier = "see-thread"
)

// Valid reports whether the modifier is one of the known constants.
func (m Modifier) Valid() bool {
	switch m {
	case ModifierNone, ModifierWithModifications, ModifierSeeThread:
		return true
	default:
		return false
	}
}

// RateUnit selects the interval a drop rate is measured over.
type RateUnit string

const (
	// RateUnitHour measures rates per hour.
	RateUnitHour RateUnit = "h"
	// RateUnitCustom defers to Drop.CustomUnit.
	RateUnitCustom RateUnit = "custom"
)

// Valid reports whether the unit is one of the known constants.
func (u RateUnit) Valid() bool {
	return u == RateUnitHour || u == RateUnitCustom
}

// Submission is the root record edited by a single form session.
type Submission struct {
	Title       string         `json:"title" yaml:"title"`
	Categories  string         `json:"categories" yaml:"categories"`
	Description string         `json:"description" yaml:"description"`
	Designers   []Person       `json:"designers" yaml:"designers"`
	Credits     []Person       `json:"credits,omitempty" yaml:"credits,omitempty"`
	Versions    []VersionRange `json:"versions" yaml:"versions"`
	Rates       Rates          `json:"rates" yaml:"rates"`
}

// Person is a designer or credited contributor.
type Person struct {
	Name          string `json:"name" yaml:"name"`
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	Contributions string `json:"contributions,omitempty" yaml:"contributions,omitempty"`
}

// VersionRange is one compatible span of game versions. Versions are stored
// without the implicit "1." prefix.
type VersionRange struct {
	StartVersion    string    `json:"startVersion" yaml:"startVersion"`
	RangeType       RangeType `json:"rangeType" yaml:"rangeType"`
	EndVersion      string    `json:"endVersion,omitempty" yaml:"endVersion,omitempty"`
	Modifier        Modifier  `json:"modifier" yaml:"modifier"`
	ModifierDetails string    `json:"modifierDetails,omitempty" yaml:"modifierDetails,omitempty"`
}

// Rates groups produced and consumed resource figures.
type Rates struct {
	Variants          []Variant `json:"variants" yaml:"variants"`
	ConsumedResources []Drop    `json:"consumedResources" yaml:"consumedResources"`
	VariabilityNote   string    `json:"variabilityNote,omitempty" yaml:"variabilityNote,omitempty"`
	AdditionalNotes   string    `json:"additionalNotes,omitempty" yaml:"additionalNotes,omitempty"`
}

// Variant groups drops measured under one named condition or version.
type Variant struct {
	Name  string `json:"variantName" yaml:"variantName"`
	Drops []Drop `json:"drops" yaml:"drops"`
}

// Drop is a single resource rate entry.
type Drop struct {
	Name              string   `json:"dropName" yaml:"dropName"`
	RateValue         string   `json:"rateValue" yaml:"rateValue"`
	RateUnit          RateUnit `json:"rateUnit" yaml:"rateUnit"`
	CustomUnit        string   `json:"customUnit,omitempty" yaml:"customUnit,omitempty"`
	Condition         string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	ExternalFactor    string   `json:"externalFactor,omitempty" yaml:"externalFactor,omitempty"`
	AlternateInterval string   `json:"alternateInterval,omitempty" yaml:"alternateInterval,omitempty"`
	AlternateValue    string   `json:"alternateValue,omitempty" yaml:"alternateValue,omitempty"`
	Note              string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// DefaultVariantName labels the variant seeded into every new submission.
const DefaultVariantName = "Default"

// NewSubmission returns the record a fresh form session starts from.
func NewSubmission() Submission {
	first := NewVariant()
	first.Name = DefaultVariantName
	return Submission{
		Designers: []Person{NewPerson()},
		Versions:  []VersionRange{NewVersionRange()},
		Rates: Rates{
			Variants:          []Variant{first},
			ConsumedResources: []Drop{},
		},
	}
}

// NewPerson returns a blank designer or credit entry.
func NewPerson() Person {
	return Person{}
}

// NewVersionRange returns a blank "current" range without modifiers.
func NewVersionRange() VersionRange {
	return VersionRange{
		RangeType: RangeCurrent,
		Modifier:  ModifierNone,
	}
}

// NewVariant returns an unnamed variant holding one blank drop.
func NewVariant() Variant {
	return Variant{Drops: []Drop{NewDrop()}}
}

// NewDrop returns a blank per-hour drop.
func NewDrop() Drop {
	return Drop{RateUnit: RateUnitHour}
}

// Clone returns a deep copy of the submission.
func (s Submission) Clone() Submission {
	out := s
	out.Designers = clonePeople(s.Designers)
	out.Credits = clonePeople(s.Credits)
	if s.Versions != nil {
		out.Versions = make([]VersionRange, len(s.Versions))
		copy(out.Versions, s.Versions)
	}
	out.Rates = s.Rates.Clone()
	return out
}

// Clone returns a deep copy of the rates block.
func (r Rates) Clone() Rates {
	out := r
	if r.Variants != nil {
		out.Variants = make([]Variant, len(r.Variants))
		for i, variant := range r.Variants {
			out.Variants[i] = Variant{
				Name:  variant.Name,
				Drops: cloneDrops(variant.Drops),
			}
		}
	}
	out.ConsumedResources = cloneDrops(r.ConsumedResources)
	return out
}

func clonePeople(src []Person) []Person {
	if src == nil {
		return nil
	}
	out := make([]Person, len(src))
	copy(out, src)
	return out
}

func cloneDrops(src []Drop) []Drop {
	if src == nil {
		return nil
	}
	out := make([]Drop, len(src))
	copy(out, src)
	return out
}
