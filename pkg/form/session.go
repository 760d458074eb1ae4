// Package form owns the in-memory state of one design submission: the record
// being edited and the error tree produced by the last submit attempt.
//
// A Session is not safe for concurrent use. It is driven by a single event
// loop (an HTTP handler, a prompt session) that applies one mutation at a
// time.
package form

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
	"github.com/tmcc-dev/designform/pkg/validation"
)

// Section names a part of the submission addressed by mutations.
type Section string

const (
	SectionTitle             Section = "title"
	SectionCategories        Section = "categories"
	SectionDescription       Section = "description"
	SectionDesigners         Section = "designers"
	SectionCredits           Section = "credits"
	SectionVersions          Section = "versions"
	SectionVariants          Section = "variants"
	SectionDrops             Section = "drops"
	SectionConsumedResources Section = "consumedResources"
	SectionRates             Section = "rates"
)

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the logger used for clamp and submit events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmission seeds the session with an existing record instead of the
// blank defaults. The record is copied.
func WithSubmission(sub design.Submission) Option {
	return func(s *Session) {
		s.record = sub.Clone()
	}
}

// WithSchema replaces the rule set used on submit.
func WithSchema(schema validation.Schema) Option {
	return func(s *Session) {
		s.schema = schema
		s.customSchema = true
	}
}

// Session holds one submission record and its error tree.
type Session struct {
	id           string
	record       design.Submission
	errors       *errtree.Tree
	schema       validation.Schema
	customSchema bool
	logger       *zap.Logger
}

// NewSession returns a session holding the blank defaults shown when the
// form first mounts.
func NewSession(options ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		record: design.NewSubmission(),
		errors: errtree.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if !s.customSchema {
		s.schema = validation.DefaultSchema()
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s
}

// ID identifies the session.
func (s *Session) ID() string {
	return s.id
}

// Record returns a copy of the current record.
func (s *Session) Record() design.Submission {
	return s.record.Clone()
}

// Errors returns the live error tree. Callers must treat it as read-only.
func (s *Session) Errors() *errtree.Tree {
	return s.errors
}

// Outcome is the result of a submit attempt.
type Outcome struct {
	Accepted bool
	// Submission and VersionString are set when Accepted.
	Submission    design.Submission
	VersionString string
	// Issues and Errors describe the failures otherwise.
	Issues []validation.Issue
	Errors *errtree.Tree
}

// Submit runs a full validation pass. On failure the session's error tree is
// replaced by the mapped issues; on success it is reset and the outcome
// carries a copy of the record plus its combined version string.
func (s *Session) Submit() Outcome {
	result := s.schema.Validate(s.record)
	if !result.Valid {
		s.errors = errtree.Map(result.Issues)
		s.logger.Debug("submission rejected", zap.Int("issues", len(result.Issues)))
		return Outcome{Issues: result.Issues, Errors: s.errors}
	}

	s.errors = errtree.New()
	versions := design.VersionString(s.record.Versions)
	s.logger.Debug("submission accepted", zap.String("title", s.record.Title), zap.String("versions", versions))
	return Outcome{
		Accepted:      true,
		Submission:    s.record.Clone(),
		VersionString: versions,
		Errors:        s.errors,
	}
}
