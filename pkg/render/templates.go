package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/rates"
	"github.com/tmcc-dev/designform/pkg/render/template"
	"github.com/tmcc-dev/designform/pkg/render/template/pongo"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in templates rooted at their directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// newEngine loads templates from dir first, when set, then from files or the
// built-in set.
func newEngine(files fs.FS, dir string) (*pongo.Engine, error) {
	if files == nil {
		files = TemplatesFS()
	}
	engine, err := pongo.New(pongo.WithDir(dir), pongo.WithFS(files))
	if err != nil {
		return nil, err
	}
	if err := RegisterFilters(engine); err != nil {
		return nil, err
	}
	return engine, nil
}

// RegisterFilters installs the rate helpers on a template engine:
//
//	{{ drop.rateValue|rate }}   abbreviated rate value ("93.36k")
//	{{ drop.record|preview }}   one-line drop preview
//	{{ drop.record|alternate }} secondary "- 3/min" line or ""
func RegisterFilters(engine template.TemplateRenderer) error {
	filters := map[string]func(any, any) (any, error){
		"rate":      filterRate,
		"preview":   filterPreview,
		"alternate": filterAlternate,
	}
	for name, fn := range filters {
		if err := engine.RegisterFilter(name, fn); err != nil {
			return fmt.Errorf("render: register %s filter: %w", name, err)
		}
	}
	return nil
}

func filterRate(input any, _ any) (any, error) {
	switch v := input.(type) {
	case nil:
		return "", nil
	case string:
		return rates.FormatValue(v), nil
	default:
		return rates.FormatValue(fmt.Sprint(v)), nil
	}
}

func filterPreview(input any, _ any) (any, error) {
	drop, err := asDrop(input)
	if err != nil {
		return nil, err
	}
	return rates.Preview(drop), nil
}

func filterAlternate(input any, _ any) (any, error) {
	drop, err := asDrop(input)
	if err != nil {
		return nil, err
	}
	line, _ := rates.AlternateLine(drop)
	return line, nil
}

// asDrop accepts a design.Drop or its decoded JSON object, which is what
// templates see after the engine normalises view data.
func asDrop(input any) (design.Drop, error) {
	switch v := input.(type) {
	case design.Drop:
		return v, nil
	case *design.Drop:
		if v == nil {
			return design.Drop{}, nil
		}
		return *v, nil
	case nil:
		return design.Drop{}, nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return design.Drop{}, fmt.Errorf("render: encode drop: %w", err)
	}
	var drop design.Drop
	if err := json.Unmarshal(raw, &drop); err != nil {
		return design.Drop{}, fmt.Errorf("render: decode drop: %w", err)
	}
	return drop, nil
}
