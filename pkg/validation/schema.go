package validation

import (
	"strconv"
	"unicode/utf8"

	"github.com/tmcc-dev/designform/pkg/design"
)

// Rule checks one field of T. Field names the key reported in the issue
// path; Valid returns false when the rule is violated.
type Rule[T any] struct {
	Field   string
	Message string
	Valid   func(T) bool
}

// ObjectSchema holds the rules evaluated against a single value, in
// declaration order.
type ObjectSchema[T any] struct {
	Rules []Rule[T]
}

func (s ObjectSchema[T]) collect(value T, at Path, issues []Issue) []Issue {
	for _, rule := range s.Rules {
		if rule.Valid == nil || rule.Valid(value) {
			continue
		}
		path := at
		if rule.Field != "" {
			path = at.Append(Key(rule.Field))
		}
		issues = append(issues, newIssue(path, rule.Message))
	}
	return issues
}

// ListSchema validates a sequence: a minimum length reported against the
// whole list plus item rules reported per index. Optional lists are skipped
// entirely while empty.
type ListSchema[T any] struct {
	Min        int
	MinMessage string
	Optional   bool
	Item       ObjectSchema[T]
	// Children validates nested sequences of an item after its own rules.
	Children func(item T, at Path, issues []Issue) []Issue
}

func (s ListSchema[T]) collect(items []T, at Path, issues []Issue) []Issue {
	if s.Optional && len(items) == 0 {
		return issues
	}
	if len(items) < s.Min {
		issues = append(issues, newIssue(at, s.MinMessage))
	}
	for i, item := range items {
		itemPath := at.Append(Index(i))
		issues = s.Item.collect(item, itemPath, issues)
		if s.Children != nil {
			issues = s.Children(item, itemPath, issues)
		}
	}
	return issues
}

// Schema is the full rule set for a design submission.
type Schema struct {
	Root              ObjectSchema[design.Submission]
	Designers         ListSchema[design.Person]
	Credits           ListSchema[design.Person]
	Versions          ListSchema[design.VersionRange]
	Variants          ListSchema[design.Variant]
	Drops             ListSchema[design.Drop]
	ConsumedResources ListSchema[design.Drop]
}

type textCheck struct {
	message string
	valid   func(string) bool
}

func minLength(n int, message string) textCheck {
	return textCheck{message: message, valid: func(v string) bool { return utf8.RuneCountInString(v) >= n }}
}

func maxLength(n int, message string) textCheck {
	return textCheck{message: message, valid: func(v string) bool { return utf8.RuneCountInString(v) <= n }}
}

func satisfies(pred func(string) bool, message string) textCheck {
	return textCheck{message: message, valid: pred}
}

// text expands checks on one string field of T into rules.
func text[T any](field string, get func(T) string, checks ...textCheck) []Rule[T] {
	rules := make([]Rule[T], 0, len(checks))
	for _, check := range checks {
		valid := check.valid
		rules = append(rules, Rule[T]{
			Field:   field,
			Message: check.message,
			Valid:   func(v T) bool { return valid(get(v)) },
		})
	}
	return rules
}

func rules[T any](groups ...[]Rule[T]) ObjectSchema[T] {
	var out []Rule[T]
	for _, group := range groups {
		out = append(out, group...)
	}
	return ObjectSchema[T]{Rules: out}
}

const (
	msgShareURL      = "Must be a valid URL without trailing metadata (remove ?si= and similar parameters)"
	msgContributions = "Each contribution must start with uppercase, rest lowercase, no periods (separate with commas)"
	msgPositive      = "Must be a positive number"
)

// DefaultSchema returns the submission rules used by the design form.
func DefaultSchema() Schema {
	s := Schema{
		Root: rules(
			text("title", func(v design.Submission) string { return v.Title },
				minLength(2, "Title must be at least 2 characters"),
				maxLength(100, "Title must be at most 100 characters"),
			),
			text("categories", func(v design.Submission) string { return v.Categories },
				minLength(1, "At least one category is required"),
			),
			text("description", func(v design.Submission) string { return v.Description },
				minLength(10, "Description must be at least 10 characters"),
				maxLength(1000, "Description must be at most 1000 characters"),
			),
		),
		Designers: ListSchema[design.Person]{
			Min:        1,
			MinMessage: "At least one designer is required",
			Item:       personRules("Designer", false),
		},
		Credits: ListSchema[design.Person]{
			Optional: true,
			Item:     personRules("Credit", true),
		},
		Versions: ListSchema[design.VersionRange]{
			Min:        1,
			MinMessage: "At least one version range is required",
			Item:       versionRules(),
		},
		Drops: ListSchema[design.Drop]{
			Min:        1,
			MinMessage: "At least one drop is required per variant",
			Item:       dropRules(),
		},
		ConsumedResources: ListSchema[design.Drop]{
			Item: dropRules(),
		},
	}

	drops := s.Drops
	s.Variants = ListSchema[design.Variant]{
		Min:        1,
		MinMessage: "At least one variant is required",
		Item: rules(
			text("variantName", func(v design.Variant) string { return v.Name },
				minLength(1, "Variant name is required"),
				satisfies(IsVariantName, `Must be "Default", version format (e.g., "Java 1.19+"), or lowercase condition (e.g., "with 10 bees")`),
			),
		),
		Children: func(item design.Variant, at Path, issues []Issue) []Issue {
			return drops.collect(item.Drops, at.Append(Key("drops")), issues)
		},
	}
	return s
}

func personRules(label string, contributionsRequired bool) ObjectSchema[design.Person] {
	list := satisfies(IsContributionList, msgContributions)
	var contributions []textCheck
	if contributionsRequired {
		// An empty required list is reported twice: missing and malformed.
		list = satisfies(func(v string) bool { return v != "" && IsContributionList(v) }, msgContributions)
		contributions = append(contributions, minLength(1, "Contributions are required for credits"))
	}
	contributions = append(contributions,
		maxLength(200, "Contributions must be at most 200 characters"),
		list,
	)

	return rules(
		text("name", func(v design.Person) string { return v.Name },
			minLength(2, label+" name must be at least 2 characters"),
			maxLength(100, label+" name must be at most 100 characters"),
		),
		text("url", func(v design.Person) string { return v.URL },
			satisfies(IsShareURL, msgShareURL),
		),
		text("contributions", func(v design.Person) string { return v.Contributions }, contributions...),
	)
}

func versionRules() ObjectSchema[design.VersionRange] {
	return rules(
		text("startVersion", func(v design.VersionRange) string { return v.StartVersion },
			minLength(1, "Start version is required"),
		),
		[]Rule[design.VersionRange]{
			{
				Field:   "rangeType",
				Message: enumMessage(design.RangeTypes()),
				Valid:   func(v design.VersionRange) bool { return v.RangeType.Valid() },
			},
			{
				Field:   "endVersion",
				Message: "End version is required for a version range",
				Valid: func(v design.VersionRange) bool {
					return v.RangeType != design.RangeUntil || v.EndVersion != ""
				},
			},
			{
				Field:   "modifier",
				Message: enumMessage(design.Modifiers()),
				Valid:   func(v design.VersionRange) bool { return v.Modifier.Valid() },
			},
		},
	)
}

func dropRules() ObjectSchema[design.Drop] {
	return rules(
		text("dropName", func(v design.Drop) string { return v.Name },
			minLength(1, "Drop name is required"),
			satisfies(IsDropNameCapitalized, "All words except articles must be capitalized"),
		),
		text("rateValue", func(v design.Drop) string { return v.RateValue },
			minLength(1, "Rate value is required"),
			satisfies(IsPositiveNumber, msgPositive),
		),
		[]Rule[design.Drop]{{
			Field:   "rateUnit",
			Message: enumMessage([]design.RateUnit{design.RateUnitHour, design.RateUnitCustom}),
			Valid:   func(v design.Drop) bool { return v.RateUnit.Valid() },
		}},
		text("condition", func(v design.Drop) string { return v.Condition },
			satisfies(IsLowercase, "Condition must be lowercase (e.g., 'with looting III')"),
		),
		text("externalFactor", func(v design.Drop) string { return v.ExternalFactor },
			satisfies(IsLowercase, "External factor must be lowercase (e.g., 'cat', 'chunk')"),
		),
		text("alternateValue", func(v design.Drop) string { return v.AlternateValue },
			satisfies(func(s string) bool { return s == "" || IsPositiveNumber(s) }, msgPositive),
		),
	)
}

func enumMessage[T ~string](values []T) string {
	msg := "Must be one of "
	for i, v := range values {
		if i > 0 {
			msg += ", "
		}
		msg += strconv.Quote(string(v))
	}
	return msg
}
