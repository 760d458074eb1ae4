package validation

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tmcc-dev/designform/pkg/design"
)

func validSubmission() design.Submission {
	sub := design.NewSubmission()
	sub.Title = "Iron Farm"
	sub.Categories = "Agriculture"
	sub.Description = "A compact iron farm for the overworld."
	sub.Designers[0] = design.Person{Name: "Ilmango", URL: "https://youtube.com/@ilmango", Contributions: "Main design, Testing"}
	sub.Versions[0].StartVersion = "19"
	sub.Rates.Variants[0].Drops[0] = design.Drop{Name: "Iron Ingot", RateValue: "93360", RateUnit: design.RateUnitHour}
	return sub
}

func fields(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Field
	}
	return out
}

func TestValidate_ValidSubmission(t *testing.T) {
	result := Validate(validSubmission())
	if !result.Valid {
		t.Fatalf("expected valid submission, got issues: %+v", result.Issues)
	}
}

func TestValidate_EndToEndScenario(t *testing.T) {
	sub := design.NewSubmission()
	sub.Title = "AB"
	sub.Designers[0] = design.Person{Name: "A", URL: "https://x.com/@u?si=abc"}
	sub.Versions[0] = design.VersionRange{StartVersion: "", RangeType: design.RangeCurrent, Modifier: design.ModifierNone}
	sub.Rates.Variants[0].Drops[0] = design.Drop{Name: "iron ingot", RateValue: "0", RateUnit: design.RateUnitHour}

	result := Validate(sub)
	if result.Valid {
		t.Fatalf("expected failures")
	}

	got := map[string]bool{}
	for _, field := range fields(result.Issues) {
		got[field] = true
	}
	want := []string{
		"designers.0.name",
		"designers.0.url",
		"versions.0.startVersion",
		"rates.variants.0.drops.0.dropName",
		"rates.variants.0.drops.0.rateValue",
	}
	for _, field := range want {
		if !got[field] {
			t.Errorf("missing issue at %s; got %v", field, fields(result.Issues))
		}
	}
	// "AB" satisfies the two character minimum.
	if got["title"] {
		t.Errorf("unexpected title issue for %q", sub.Title)
	}
}

func TestValidate_TitleTooShort(t *testing.T) {
	sub := validSubmission()
	sub.Title = "A"

	result := Validate(sub)
	want := []Issue{{
		Path:    Path{Key("title")},
		Field:   "title",
		Message: "Title must be at least 2 characters",
	}}
	if diff := cmp.Diff(want, result.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_ReportsEveryViolatedRule(t *testing.T) {
	sub := validSubmission()
	sub.Title = "A"
	sub.Description = "short"
	sub.Designers[0].Contributions = "main design."
	sub.Credits = []design.Person{{Name: "X"}}
	sub.Versions[0].RangeType = design.RangeUntil
	sub.Rates.Variants[0].Drops[0].RateValue = ""
	sub.Rates.ConsumedResources = []design.Drop{{Name: "Bone", RateValue: "4", RateUnit: "week"}}

	result := Validate(sub)

	want := []string{
		"title",
		"description",
		"designers.0.contributions",
		"credits.0.name",
		"credits.0.contributions",
		"credits.0.contributions",
		"versions.0.endVersion",
		"rates.variants.0.drops.0.rateValue",
		"rates.variants.0.drops.0.rateValue",
		"rates.consumedResources.0.rateUnit",
	}
	if diff := cmp.Diff(want, fields(result.Issues)); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_WholeListFailures(t *testing.T) {
	sub := validSubmission()
	sub.Designers = nil
	sub.Versions = nil
	sub.Rates.Variants = []design.Variant{{Name: "Default"}}

	result := Validate(sub)
	got := fields(result.Issues)
	sort.Strings(got)
	want := []string{"designers", "rates.variants.0.drops", "versions"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}

	sub.Rates.Variants = nil
	result = Validate(sub)
	if !contains(fields(result.Issues), "rates.variants") {
		t.Fatalf("expected whole-list issue for rates.variants, got %v", fields(result.Issues))
	}
}

func TestValidate_EmptyCreditsSkipped(t *testing.T) {
	sub := validSubmission()
	sub.Credits = []design.Person{}
	if result := Validate(sub); !result.Valid {
		t.Fatalf("empty credits should pass, got %+v", result.Issues)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	sub := validSubmission()
	sub.Title = ""
	before := sub.Clone()

	Validate(sub)

	if diff := cmp.Diff(before, sub); diff != "" {
		t.Fatalf("submission mutated (-before +after):\n%s", diff)
	}
}

func TestValidateWith_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ValidateWith(ctx, DefaultSchema(), validSubmission())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateWith_CustomSchema(t *testing.T) {
	schema := DefaultSchema()
	schema.Root.Rules = append(schema.Root.Rules, Rule[design.Submission]{
		Field:   "categories",
		Message: "Unknown category",
		Valid:   func(s design.Submission) bool { return s.Categories == "Monsters" },
	})

	result, err := ValidateWith(context.Background(), schema, validSubmission())
	if err != nil {
		t.Fatalf("ValidateWith: %v", err)
	}
	if diff := cmp.Diff([]string{"categories"}, fields(result.Issues)); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}
}

func TestIsDropNameCapitalized(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Iron Ingot", true},
		{"Bottle o' Enchanting", false},
		{"Bottle of Enchanting", true},
		{"Bottle Of Enchanting", false},
		{"The End Stone", true},
		{"iron ingot", false},
		{"Iron ingot", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := IsDropNameCapitalized(tt.value); got != tt.want {
			t.Errorf("IsDropNameCapitalized(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsVariantName(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Default", true},
		{"Java 1.19+", true},
		{"bedrock 1.18-1.20", true},
		{"Java 1.16", true},
		{"with 10 bees", true},
		{"With 10 bees", false},
		{"Java 2.0", false},
		{"default", true},
	}
	for _, tt := range tests {
		if got := IsVariantName(tt.value); got != tt.want {
			t.Errorf("IsVariantName(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsContributionList(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"Main design", true},
		{"Main design, Color scheme", true},
		{"main design", false},
		{"Main Design", false},
		{"Main design.", false},
		{"Main design,", false},
	}
	for _, tt := range tests {
		if got := IsContributionList(tt.value); got != tt.want {
			t.Errorf("IsContributionList(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsShareURL(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"https://youtube.com/@ilmango", true},
		{"https://x.com/@u?si=abc", false},
		{"youtube.com/@ilmango", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := IsShareURL(tt.value); got != tt.want {
			t.Errorf("IsShareURL(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsPositiveNumberAndLowercase(t *testing.T) {
	if !IsPositiveNumber("2.5/min") || IsPositiveNumber("0") || IsPositiveNumber("-1") || IsPositiveNumber("x") {
		t.Fatalf("IsPositiveNumber returned unexpected results")
	}
	if !IsLowercase("with looting iii") || IsLowercase("with Looting") || !IsLowercase("") {
		t.Fatalf("IsLowercase returned unexpected results")
	}
}

func TestPath(t *testing.T) {
	path := NewPath("rates", "variants", 0, "drops", 1, "dropName")

	if got, want := path.String(), "rates.variants.0.drops.1.dropName"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got, want := path.Pointer(), "/rates/variants/0/drops/1/dropName"; got != want {
		t.Fatalf("Pointer() = %q, want %q", got, want)
	}
	for _, raw := range []string{
		"rates.variants.0.drops.1.dropName",
		"rates.variants[0].drops[1].dropName",
		"/rates/variants/0/drops/1/dropName",
	} {
		if parsed := ParsePath(raw); !parsed.Equal(path) {
			t.Errorf("ParsePath(%q) = %v", raw, parsed)
		}
	}
	if !path.HasPrefix(NewPath("rates", "variants", 0)) {
		t.Fatalf("expected prefix match")
	}
	if path.HasPrefix(NewPath("rates", "variants", 1)) {
		t.Fatalf("unexpected prefix match")
	}
}

func TestPathJSON(t *testing.T) {
	data, err := json.Marshal(NewPath("designers", 0, "name"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `["designers",0,"name"]`; got != want {
		t.Fatalf("marshal = %s, want %s", got, want)
	}

	var fromArray, fromString Path
	if err := json.Unmarshal(data, &fromArray); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if err := json.Unmarshal([]byte(`"designers[0].name"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if !fromArray.Equal(fromString) {
		t.Fatalf("paths differ: %v vs %v", fromArray, fromString)
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
