package template

import (
	"io"
)

// TemplateRenderer is the engine contract the page renderers depend on.
// Render accepts either a template name or inline source; every method also
// writes the result to the optional writers.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
