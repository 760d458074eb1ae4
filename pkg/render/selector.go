package render

import (
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ErrUnknownTheme is wrapped when a selector has no manifest or variant for
// the requested name.
var ErrUnknownTheme = errors.New("render: unknown theme")

// ManifestSelector is a theme.ThemeSelector over a fixed set of manifests.
// An empty name selects the first manifest.
type ManifestSelector struct {
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, errors.New("render: theme manifest has no name")
		}
		if _, dup := s.manifests[name]; dup {
			return nil, fmt.Errorf("render: theme %q registered twice", name)
		}
		s.manifests[name] = m
		if s.fallback == "" {
			s.fallback = name
		}
	}
	if s.fallback == "" {
		return nil, errors.New("render: no theme manifests")
	}
	return s, nil
}

func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %s has no variant %q", ErrUnknownTheme, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
