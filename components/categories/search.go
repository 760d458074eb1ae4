package categories

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/tmcc-dev/designform/pkg/catalogue"
)

// Option is one selectable entry of the categories picker. Subcategories
// carry the parent name in Group.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
}

// Flatten turns the category tree into picker options: each category
// followed by its subcategories.
func Flatten(tree []catalogue.Category) []Option {
	out := make([]Option, 0, len(tree)*4)
	for _, category := range tree {
		out = append(out, Option{Value: Slug(category.Name), Label: category.Name})
		for _, sub := range category.Subcategories {
			out = append(out, Option{Value: sub, Label: Label(sub), Group: category.Name})
		}
	}
	return out
}

// Rank orders every option matching query, best first. Labels are matched
// together with their group so "slime monsters" finds the subcategory.
func Rank(options []Option, query string, mode EmptySearchMode) []Option {
	query = strings.TrimSpace(query)
	if query == "" {
		if mode != EmptySearchAll {
			return []Option{}
		}
		return append([]Option{}, options...)
	}

	targets := make([]string, len(options))
	for i, opt := range options {
		targets[i] = opt.Label + " " + opt.Group
	}
	matches := fuzzy.Find(query, targets)
	out := make([]Option, 0, len(matches))
	for _, match := range matches {
		out = append(out, options[match.Index])
	}
	return out
}

// InGroup keeps the top-level option named by group (slug or display name)
// and its subcategories. It reports false when no top-level option matches.
func InGroup(options []Option, group string) ([]Option, bool) {
	slug := Slug(group)
	var parent string
	for _, opt := range options {
		if opt.Group == "" && opt.Value == slug {
			parent = opt.Label
			break
		}
	}
	if parent == "" {
		return nil, false
	}

	out := make([]Option, 0, 8)
	for _, opt := range options {
		if (opt.Group == "" && opt.Label == parent) || opt.Group == parent {
			out = append(out, opt)
		}
	}
	return out, true
}

// Slug lowercases name and joins words with dashes ("Blocks & Items" ->
// "blocks-and-items").
func Slug(name string) string {
	name = strings.ReplaceAll(name, "&", " and ")
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

// Label turns a slug into display text ("gold-and-bartering" -> "Gold and
// bartering").
func Label(slug string) string {
	text := strings.ReplaceAll(slug, "-", " ")
	if text == "" {
		return text
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
