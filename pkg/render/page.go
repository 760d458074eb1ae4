package render

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/tmcc-dev/designform/pkg/render/template"
)

const (
	pageTemplate    = "page"
	summaryTemplate = "summary"
)

// PageOption configures the HTML page renderer.
type PageOption func(*Page)

// WithTheme applies theme tokens as CSS custom properties.
func WithTheme(t *Theme) PageOption {
	return func(p *Page) {
		p.theme = t
	}
}

// WithTemplates replaces the built-in templates. files must provide
// page.tpl.
func WithTemplates(files fs.FS) PageOption {
	return func(p *Page) {
		p.files = files
	}
}

// WithTemplateDir overrides built-in templates file by file with the .tpl
// files found in dir.
func WithTemplateDir(dir string) PageOption {
	return func(p *Page) {
		p.dir = dir
	}
}

// Page renders the submission form as a standalone HTML document: every
// control with its inline error, rate previews, the combined version string
// and form-level messages.
type Page struct {
	engine template.TemplateRenderer
	theme  *Theme
	files  fs.FS
	dir    string
}

var _ Renderer = (*Page)(nil)

func NewPage(opts ...PageOption) (*Page, error) {
	page := &Page{}
	for _, opt := range opts {
		if opt != nil {
			opt(page)
		}
	}
	engine, err := newEngine(page.files, page.dir)
	if err != nil {
		return nil, fmt.Errorf("render: page engine: %w", err)
	}
	page.engine = engine
	return page, nil
}

func (p *Page) Name() string        { return "html" }
func (p *Page) ContentType() string { return "text/html; charset=utf-8" }

func (p *Page) Render(ctx context.Context, view View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if view.Action == "" {
		view.Action = "/api/designs"
	}
	data := buildPage(view, MapTree(view.Submission, view.Errors))
	data.Theme = p.theme
	data.ThemeStyle = p.theme.Style()

	out, err := p.engine.RenderTemplate(pageTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render: page: %w", err)
	}
	return []byte(out), nil
}

// Summary renders a plain-text digest of a submission, used by the CLI and
// the terminal prompts.
type Summary struct {
	engine template.TemplateRenderer
}

var _ Renderer = (*Summary)(nil)

func NewSummary() (*Summary, error) {
	engine, err := newEngine(nil, "")
	if err != nil {
		return nil, fmt.Errorf("render: summary engine: %w", err)
	}
	return &Summary{engine: engine}, nil
}

func (s *Summary) Name() string        { return "text" }
func (s *Summary) ContentType() string { return "text/plain; charset=utf-8" }

func (s *Summary) Render(ctx context.Context, view View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := buildPage(view, MapTree(view.Submission, view.Errors))
	out, err := s.engine.RenderTemplate(summaryTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render: summary: %w", err)
	}
	return []byte(out), nil
}
