// Package pongo implements template.TemplateRenderer on a pongo2 template
// set. Templates are looked up in an optional override directory first and
// then in an fs.FS, so a deployment can replace single files of the embedded
// set.
package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/tmcc-dev/designform/pkg/render/template"
)

// Suffix is appended to template names that lack it.
const Suffix = ".tpl"

var (
	// ErrNoTemplates is returned by New when neither a directory nor an
	// fs.FS was given.
	ErrNoTemplates = errors.New("pongo: no template source")
	errNilEngine   = errors.New("pongo: engine is nil")
)

// Option configures New.
type Option func(*Engine) error

// WithDir layers templates from dir on top of every fs.FS source. An empty
// dir is ignored.
func WithDir(dir string) Option {
	return func(e *Engine) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return nil
		}
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return fmt.Errorf("pongo: template dir %s: %w", dir, err)
		}
		e.overrides = append(e.overrides, loader)
		return nil
	}
}

// WithFS adds files, typically an embed.FS sub tree, as a template source.
func WithFS(files fs.FS) Option {
	return func(e *Engine) error {
		if files != nil {
			e.sources = append(e.sources, pongo2.NewFSLoader(files))
		}
		return nil
	}
}

// Engine caches parsed templates by file name. Filters registered on an
// engine are pongo2 globals and therefore shared by every engine in the
// process.
type Engine struct {
	overrides []pongo2.TemplateLoader
	sources   []pongo2.TemplateLoader
	set       *pongo2.TemplateSet

	mu     sync.RWMutex
	parsed map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine from at least one template source.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{parsed: make(map[string]*pongo2.Template)}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	loaders := append(append([]pongo2.TemplateLoader{}, e.overrides...), e.sources...)
	if len(loaders) == 0 {
		return nil, ErrNoTemplates
	}
	e.set = pongo2.NewSet("designform", loaders...)
	e.set.Globals = pongo2.Context{}
	return e, nil
}

// Render renders inline source when name contains a tag or variable
// delimiter and a template file otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a template file. The .tpl suffix is optional.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	if !strings.HasSuffix(name, Suffix) {
		name += Suffix
	}
	tpl, err := e.load(name)
	if err != nil {
		return "", err
	}
	return e.run(tpl, name, data, out)
}

// RenderString parses and renders source without caching it.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	tpl, err := e.set.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse inline template: %w", err)
	}
	return e.run(tpl, "inline template", data, out)
}

// RegisterFilter installs fn under name, replacing any filter already
// registered with that name.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("pongo: filter name is empty")
	}
	if fn == nil {
		return fmt.Errorf("pongo: filter %s has no function", name)
	}

	wrapped := func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		v, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(v), nil
	}
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, wrapped)
	}
	return pongo2.RegisterFilter(name, wrapped)
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errNilEngine
	}
	globals, err := contextOf(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.set.Globals.Update(globals)
	e.mu.Unlock()
	return nil
}

func (e *Engine) load(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tpl := e.parsed[name]
	e.mu.RUnlock()
	if tpl != nil {
		return tpl, nil
	}

	tpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %s: %w", name, err)
	}
	e.mu.Lock()
	if cached, ok := e.parsed[name]; ok {
		tpl = cached
	} else {
		e.parsed[name] = tpl
	}
	e.mu.Unlock()
	return tpl, nil
}

func (e *Engine) run(tpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	ctx, err := contextOf(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s data: %w", label, err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", label, err)
	}
	if len(out) > 0 {
		if _, err := buf.WriteTo(io.MultiWriter(out...)); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// contextOf turns view data into a pongo2 context. Values that are not
// plain maps, slices or scalars are passed through their JSON encoding so
// templates address struct fields by their JSON names.
func contextOf(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	fields, err := objectOf(data)
	if err != nil {
		return nil, err
	}
	ctx := make(pongo2.Context, len(fields))
	for key, value := range fields {
		if key = strings.TrimSpace(key); key == "" {
			continue
		}
		if ctx[key], err = plain(value); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return ctx, nil
}

func objectOf(data any) (map[string]any, error) {
	switch v := data.(type) {
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return v, nil
	}
	decoded, err := roundTrip(data)
	if err != nil {
		return nil, err
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%T is not an object", data)
	}
	return obj, nil
}

func plain(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, float64:
		return v, nil
	case pongo2.Context:
		return plain(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := plain(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := plain(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return value, nil
	}
	decoded, err := roundTrip(value)
	if err != nil {
		return nil, err
	}
	return plain(decoded)
}

func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
