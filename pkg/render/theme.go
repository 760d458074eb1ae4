package render

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme is the resolved token set of a go-theme manifest. Tokens become CSS
// custom properties on the page root ("accent" -> "--accent").
type Theme struct {
	Name    string            `json:"name"`
	Variant string            `json:"variant,omitempty"`
	Tokens  map[string]string `json:"tokens,omitempty"`
	CSSVars map[string]string `json:"cssVars,omitempty"`
}

// DefaultManifest is the built-in look with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "designform",
		Version: "1.0.0",
		Tokens: map[string]string{
			"background": "#f7f7f5",
			"surface":    "#ffffff",
			"text":       "#1d1d1f",
			"muted":      "#6b6b70",
			"accent":     "#3b7d3b",
			"error":      "#b3261e",
			"radius":     "6px",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"background": "#141416",
					"surface":    "#1e1e21",
					"text":       "#ececf1",
					"muted":      "#9a9aa3",
					"accent":     "#6fbf6f",
					"error":      "#f2b8b5",
				},
			},
		},
	}
}

// ThemeFromManifest merges the variant tokens over the base tokens. An unknown
// variant yields the base tokens.
func ThemeFromManifest(manifest *theme.Manifest, variant string) *Theme {
	if manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	variant = strings.TrimSpace(variant)
	if v, ok := manifest.Variants[variant]; ok {
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	} else {
		variant = ""
	}
	return &Theme{
		Name:    manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: cssVars(tokens),
	}
}

// SelectTheme resolves name and variant through a go-theme selector.
func SelectTheme(selector theme.ThemeSelector, name, variant string) (*Theme, error) {
	if selector == nil {
		return nil, fmt.Errorf("render: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("render: theme %q has no manifest", name)
	}
	resolved := ThemeFromManifest(selection.Manifest, selection.Variant)
	if selection.Theme != "" {
		resolved.Name = selection.Theme
	}
	return resolved, nil
}

// Style renders the CSS custom properties as a declaration list, sorted by
// name.
func (t *Theme) Style() string {
	if t == nil || len(t.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(t.CSSVars))
	for name := range t.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(t.CSSVars[name])
		b.WriteString(";")
	}
	return b.String()
}

func cssVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := cssIdent(key)
		value = cssValue(value)
		if name == "" || value == "" {
			continue
		}
		out["--"+name] = value
	}
	return out
}

func cssIdent(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '.', r == '_', r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// cssValue drops characters that could close the declaration or the style
// element.
func cssValue(value string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\\':
			return -1
		}
		return r
	}, value))
}
