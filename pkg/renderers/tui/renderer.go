package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/form"
	"github.com/tmcc-dev/designform/pkg/rates"
	"github.com/tmcc-dev/designform/pkg/render"
	"github.com/tmcc-dev/designform/pkg/validation"
)

// Renderer walks a form.Session through terminal prompts. The first pass asks
// for every field; after a rejected submit only the fields named by the
// error tree are asked again, with their message, until the record passes or
// the round limit is hit.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	categories   []string
	maxRounds    int
	schema       *validation.Schema
	theme        Theme
	logger       *zap.Logger
	summary      *render.Summary
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxRounds:    defaultMaxRounds,
		theme:        Theme{ErrorPrefix: "✗ "},
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	if r.outputFormat == OutputFormatPrettyText {
		summary, err := render.NewSummary()
		if err != nil {
			return nil, err
		}
		r.summary = summary
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render prompts for a submission starting from view.Submission. When
// view.Errors already holds messages the full walk is skipped and only the
// invalid fields are asked for.
func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := []form.Option{
		form.WithSubmission(withDefaults(view.Submission)),
		form.WithLogger(r.logger),
	}
	if r.schema != nil {
		opts = append(opts, form.WithSchema(*r.schema))
	}
	session := form.NewSession(opts...)

	if view.Errors.Empty() {
		if err := r.collect(ctx, session); err != nil {
			return nil, err
		}
	}

	for round := 0; ; round++ {
		outcome := session.Submit()
		if outcome.Accepted {
			r.logger.Debug("tui submission accepted", zap.String("session", session.ID()), zap.Int("rounds", round))
			return r.serialize(ctx, outcome)
		}
		r.logger.Debug("tui submission rejected",
			zap.String("session", session.ID()),
			zap.Int("round", round),
			zap.Int("issues", len(outcome.Issues)),
		)
		if round >= r.maxRounds {
			return nil, fmt.Errorf("%w: %d problems left", ErrInvalid, len(outcome.Issues))
		}
		if err := r.fix(ctx, session, outcome.Issues); err != nil {
			return nil, err
		}
	}
}

func (r *Renderer) collect(ctx context.Context, s *form.Session) error {
	for _, section := range []form.Section{form.SectionTitle, form.SectionCategories, form.SectionDescription} {
		if err := r.ask(ctx, s, at(section, "")); err != nil {
			return err
		}
	}
	for _, section := range []form.Section{form.SectionDesigners, form.SectionCredits} {
		err := r.entries(ctx, s, section, nil, func(i int) error {
			return r.askAll(ctx, s, section, []string{"name", "url", "contributions"}, i)
		})
		if err != nil {
			return err
		}
	}
	if err := r.entries(ctx, s, form.SectionVersions, nil, func(i int) error {
		return r.version(ctx, s, i)
	}); err != nil {
		return err
	}
	if err := r.entries(ctx, s, form.SectionVariants, nil, func(i int) error {
		if err := r.ask(ctx, s, at(form.SectionVariants, "variantName", i)); err != nil {
			return err
		}
		return r.entries(ctx, s, form.SectionDrops, []int{i}, func(j int) error {
			return r.drop(ctx, s, form.SectionDrops, i, j)
		})
	}); err != nil {
		return err
	}
	if err := r.entries(ctx, s, form.SectionConsumedResources, nil, func(i int) error {
		return r.drop(ctx, s, form.SectionConsumedResources, i)
	}); err != nil {
		return err
	}
	return r.askAll(ctx, s, form.SectionRates, []string{"variabilityNote", "additionalNotes"})
}

// entries visits every entry of a section and offers to append another
// after the last one. An empty optional section is offered once.
func (r *Renderer) entries(ctx context.Context, s *form.Session, section form.Section, parent []int, each func(int) error) error {
	noun := sectionNouns[section]
	length := func() int { return sectionLen(s.Record(), section, parent) }

	if length() == 0 {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Add a " + noun + "?"})
		if err != nil || !add {
			return err
		}
		if err := s.AddEntry(section, parent...); err != nil {
			return err
		}
	}
	for i := 0; i < length(); i++ {
		if err := each(i); err != nil {
			return err
		}
		if i < length()-1 {
			continue
		}
		more, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Add another " + noun + "?"})
		if err != nil {
			return err
		}
		if more {
			if err := s.AddEntry(section, parent...); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) version(ctx context.Context, s *form.Session, i int) error {
	if err := r.askAll(ctx, s, form.SectionVersions, []string{"startVersion", "rangeType"}, i); err != nil {
		return err
	}
	if s.Record().Versions[i].RangeType == design.RangeUntil {
		if err := r.ask(ctx, s, at(form.SectionVersions, "endVersion", i)); err != nil {
			return err
		}
	}
	if err := r.ask(ctx, s, at(form.SectionVersions, "modifier", i)); err != nil {
		return err
	}
	if s.Record().Versions[i].Modifier != design.ModifierNone {
		return r.ask(ctx, s, at(form.SectionVersions, "modifierDetails", i))
	}
	return nil
}

func (r *Renderer) drop(ctx context.Context, s *form.Session, section form.Section, indices ...int) error {
	if err := r.askAll(ctx, s, section, []string{"dropName", "rateValue", "rateUnit"}, indices...); err != nil {
		return err
	}
	current := func() design.Drop {
		sub := s.Record()
		if section == form.SectionDrops {
			return sub.Rates.Variants[indices[0]].Drops[indices[1]]
		}
		return sub.Rates.ConsumedResources[indices[0]]
	}
	if current().RateUnit == design.RateUnitCustom {
		if err := r.ask(ctx, s, at(section, "customUnit", indices...)); err != nil {
			return err
		}
	}
	details, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Add details (condition, external factor, alternate rate, note)?"})
	if err != nil {
		return err
	}
	if details {
		fields := []string{"condition", "externalFactor", "alternateValue", "alternateInterval", "note"}
		if err := r.askAll(ctx, s, section, fields, indices...); err != nil {
			return err
		}
	}

	drop := current()
	if err := r.info(ctx, rates.Preview(drop)); err != nil {
		return err
	}
	if line, ok := rates.AlternateLine(drop); ok {
		return r.info(ctx, line)
	}
	return nil
}

// fix asks again for every field named by issues. Messages without a single
// field (whole sequences) are printed only.
func (r *Renderer) fix(ctx context.Context, s *form.Session, issues []validation.Issue) error {
	if err := r.info(ctx, fmt.Sprintf("%d problems need attention", len(issues))); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		key := issue.Path.String()
		if _, done := seen[key]; done {
			continue
		}
		seen[key] = struct{}{}

		t, ok := targetFor(issue.Path)
		if !ok {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+key+": "+issue.Message); err != nil {
				return err
			}
			continue
		}
		if err := r.ask(ctx, s, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) askAll(ctx context.Context, s *form.Session, section form.Section, fields []string, indices ...int) error {
	for _, field := range fields {
		if err := r.ask(ctx, s, at(section, field, indices...)); err != nil {
			return err
		}
	}
	return nil
}

// ask prompts for one field, showing its current error if any, and stores
// the answer through the session (which clears that error).
func (r *Renderer) ask(ctx context.Context, s *form.Session, t target) error {
	p := r.promptFor(t)
	current := valueOf(s.Record(), t)
	help := p.help
	if message, ok := s.Errors().Message(t.path()); ok {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
		help = message
	}

	var value string
	switch p.kind {
	case kindSelect:
		def := indexOf(p.options, current)
		if def < 0 {
			def = 0
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      p.label,
			Options:      p.options,
			DefaultIndex: def,
			Help:         help,
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(p.options) {
			value = p.options[idx]
		}
	case kindTextArea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: p.label, Default: current, Help: help})
		if err != nil {
			return err
		}
		value = answer
	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: p.label, Default: current, Help: help})
		if err != nil {
			return err
		}
		value = answer
	}
	return s.UpdateField(t.section, t.field, value, t.indices...)
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

type submitted struct {
	Submission    design.Submission `json:"submission"`
	VersionString string            `json:"versionString"`
}

func (r *Renderer) serialize(ctx context.Context, outcome form.Outcome) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		return r.summary.Render(ctx, render.View{Submission: outcome.Submission})
	}
	return json.MarshalIndent(submitted{
		Submission:    outcome.Submission,
		VersionString: outcome.VersionString,
	}, "", "  ")
}
