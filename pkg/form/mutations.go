package form

import (
	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/validation"
)

// AddEntry appends a blank default entry to an indexed section. Drops take
// the variant index.
func (s *Session) AddEntry(section Section, indices ...int) error {
	switch section {
	case SectionDesigners, SectionCredits, SectionVersions, SectionVariants, SectionConsumedResources:
		if len(indices) != 0 {
			return fieldError(section, "", indices, ErrIndexCount)
		}
	case SectionDrops:
		if len(indices) != 1 {
			return fieldError(section, "", indices, ErrIndexCount)
		}
	default:
		return fieldError(section, "", indices, ErrUnknownSection)
	}

	rates := &s.record.Rates
	var list validation.Path
	switch section {
	case SectionDesigners:
		s.record.Designers = append(s.record.Designers, design.NewPerson())
		list = validation.NewPath("designers")
	case SectionCredits:
		s.record.Credits = append(s.record.Credits, design.NewPerson())
		list = validation.NewPath("credits")
	case SectionVersions:
		s.record.Versions = append(s.record.Versions, design.NewVersionRange())
		list = validation.NewPath("versions")
	case SectionVariants:
		rates.Variants = append(rates.Variants, design.NewVariant())
		list = validation.NewPath("rates", "variants")
	case SectionConsumedResources:
		rates.ConsumedResources = append(rates.ConsumedResources, design.NewDrop())
		list = validation.NewPath("rates", "consumedResources")
	case SectionDrops:
		v := indices[0]
		if v < 0 || v >= len(rates.Variants) {
			return fieldError(section, "", indices, ErrIndexOutOfRange)
		}
		rates.Variants[v].Drops = append(rates.Variants[v].Drops, design.NewDrop())
		list = validation.NewPath("rates", "variants").Append(validation.Index(v), validation.Key("drops"))
	}

	// A whole-sequence message ("at least one ... is required") no longer
	// describes a sequence that just gained an entry.
	if _, whole := s.errors.Message(list); whole {
		s.errors.Clear(list)
		s.logger.Debug("cleared whole-sequence error",
			zap.String("section", string(section)), zap.Stringer("path", list))
	}
	return nil
}

// RemoveEntry deletes the addressed entry and splices the parallel error
// list so later error entries stay aligned with their data. Required
// sections (designers, versions, variants, drops of a variant) never drop
// below one entry: such a removal is a silent no-op that reports false.
func (s *Session) RemoveEntry(section Section, indices ...int) (bool, error) {
	list, err := s.listPath(section, indices)
	if err != nil {
		return false, err
	}
	index := indices[len(indices)-1]

	length, required := s.sectionLen(section, indices)
	if index < 0 || index >= length {
		return false, fieldError(section, "", indices, ErrIndexOutOfRange)
	}
	if required && length <= 1 {
		s.logger.Debug("remove refused: section at minimum length",
			zap.String("section", string(section)), zap.Ints("indices", indices))
		return false, nil
	}

	rates := &s.record.Rates
	switch section {
	case SectionDesigners:
		s.record.Designers = removeAt(s.record.Designers, index)
	case SectionCredits:
		s.record.Credits = removeAt(s.record.Credits, index)
	case SectionVersions:
		s.record.Versions = removeAt(s.record.Versions, index)
	case SectionVariants:
		rates.Variants = removeAt(rates.Variants, index)
	case SectionConsumedResources:
		rates.ConsumedResources = removeAt(rates.ConsumedResources, index)
	case SectionDrops:
		v := indices[0]
		rates.Variants[v].Drops = removeAt(rates.Variants[v].Drops, index)
	}
	s.errors.Splice(list, index)
	return true, nil
}

// UpdateField sets one field and clears the error recorded at the same path,
// if any. It never re-validates the record. Scalar sections (title,
// categories, description) accept an empty field name; the rates section
// takes variabilityNote or additionalNotes.
func (s *Session) UpdateField(section Section, field, value string, indices ...int) error {
	path, err := s.fieldPath(section, field, indices)
	if err != nil {
		return err
	}

	rec := &s.record
	ok := true
	switch section {
	case SectionTitle:
		rec.Title = value
	case SectionCategories:
		rec.Categories = value
	case SectionDescription:
		rec.Description = value
	case SectionRates:
		ok = setRatesField(&rec.Rates, field, value)
	case SectionDesigners:
		ok = setPersonField(&rec.Designers[indices[0]], field, value)
	case SectionCredits:
		ok = setPersonField(&rec.Credits[indices[0]], field, value)
	case SectionVersions:
		ok = setVersionField(&rec.Versions[indices[0]], field, value)
	case SectionVariants:
		ok = field == "variantName"
		if ok {
			rec.Rates.Variants[indices[0]].Name = value
		}
	case SectionDrops:
		ok = setDropField(&rec.Rates.Variants[indices[0]].Drops[indices[1]], field, value)
	case SectionConsumedResources:
		ok = setDropField(&rec.Rates.ConsumedResources[indices[0]], field, value)
	}
	if !ok {
		return fieldError(section, field, indices, ErrUnknownField)
	}

	s.errors.Clear(path)
	return nil
}

// listPath validates indices for an indexed section and returns the path of
// the sequence they address.
func (s *Session) listPath(section Section, indices []int) (validation.Path, error) {
	want := 1
	if section == SectionDrops {
		want = 2
	}
	var base validation.Path
	switch section {
	case SectionDesigners, SectionCredits, SectionVersions:
		base = validation.Path{validation.Key(string(section))}
	case SectionVariants:
		base = validation.NewPath("rates", "variants")
	case SectionConsumedResources:
		base = validation.NewPath("rates", "consumedResources")
	case SectionDrops:
		base = validation.NewPath("rates", "variants")
	default:
		return nil, fieldError(section, "", indices, ErrUnknownSection)
	}
	if len(indices) != want {
		return nil, fieldError(section, "", indices, ErrIndexCount)
	}
	if section == SectionDrops {
		v := indices[0]
		if v < 0 || v >= len(s.record.Rates.Variants) {
			return nil, fieldError(section, "", indices, ErrIndexOutOfRange)
		}
		base = base.Append(validation.Index(v), validation.Key("drops"))
	}
	return base, nil
}

// sectionLen returns the current length of the addressed sequence and
// whether the section must keep at least one entry.
func (s *Session) sectionLen(section Section, indices []int) (int, bool) {
	switch section {
	case SectionDesigners:
		return len(s.record.Designers), true
	case SectionCredits:
		return len(s.record.Credits), false
	case SectionVersions:
		return len(s.record.Versions), true
	case SectionVariants:
		return len(s.record.Rates.Variants), true
	case SectionConsumedResources:
		return len(s.record.Rates.ConsumedResources), false
	case SectionDrops:
		return len(s.record.Rates.Variants[indices[0]].Drops), true
	}
	return 0, false
}

// fieldPath resolves the error tree path for a field update, checking that
// every index addresses an existing entry.
func (s *Session) fieldPath(section Section, field string, indices []int) (validation.Path, error) {
	switch section {
	case SectionTitle, SectionCategories, SectionDescription:
		if len(indices) != 0 {
			return nil, fieldError(section, field, indices, ErrIndexCount)
		}
		if field != "" && field != string(section) {
			return nil, fieldError(section, field, indices, ErrUnknownField)
		}
		return validation.Path{validation.Key(string(section))}, nil
	case SectionRates:
		if len(indices) != 0 {
			return nil, fieldError(section, field, indices, ErrIndexCount)
		}
		return validation.NewPath("rates", field), nil
	}

	list, err := s.listPath(section, indices)
	if err != nil {
		return nil, err
	}
	index := indices[len(indices)-1]
	if length, _ := s.sectionLen(section, indices); index < 0 || index >= length {
		return nil, fieldError(section, field, indices, ErrIndexOutOfRange)
	}
	return list.Append(validation.Index(index), validation.Key(field)), nil
}

func removeAt[T any](items []T, index int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}

func setRatesField(r *design.Rates, field, value string) bool {
	switch field {
	case "variabilityNote":
		r.VariabilityNote = value
	case "additionalNotes":
		r.AdditionalNotes = value
	default:
		return false
	}
	return true
}

func setPersonField(p *design.Person, field, value string) bool {
	switch field {
	case "name":
		p.Name = value
	case "url":
		p.URL = value
	case "contributions":
		p.Contributions = value
	default:
		return false
	}
	return true
}

func setVersionField(v *design.VersionRange, field, value string) bool {
	switch field {
	case "startVersion":
		v.StartVersion = value
	case "rangeType":
		v.RangeType = design.RangeType(value)
	case "endVersion":
		v.EndVersion = value
	case "modifier":
		v.Modifier = design.Modifier(value)
	case "modifierDetails":
		v.ModifierDetails = value
	default:
		return false
	}
	return true
}

func setDropField(d *design.Drop, field, value string) bool {
	switch field {
	case "dropName":
		d.Name = value
	case "rateValue":
		d.RateValue = value
	case "rateUnit":
		d.RateUnit = design.RateUnit(value)
	case "customUnit":
		d.CustomUnit = value
	case "condition":
		d.Condition = value
	case "externalFactor":
		d.ExternalFactor = value
	case "alternateInterval":
		d.AlternateInterval = value
	case "alternateValue":
		d.AlternateValue = value
	case "note":
		d.Note = value
	default:
		return false
	}
	return true
}
