package tui

import (
	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/pkg/validation"
)

// OutputFormat controls how an accepted submission is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits {"submission": ..., "versionString": ...}.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits the plain-text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

const defaultMaxRounds = 3

// Theme holds the prefixes printed in front of driver messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithCategories turns the categories prompt into a selection.
func WithCategories(names ...string) Option {
	return func(r *Renderer) {
		r.categories = append([]string(nil), names...)
	}
}

// WithMaxRounds bounds how many times invalid fields are asked again after a
// rejected submit.
func WithMaxRounds(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.maxRounds = n
		}
	}
}

// WithSchema validates with a custom schema.
func WithSchema(schema validation.Schema) Option {
	return func(r *Renderer) {
		r.schema = &schema
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
