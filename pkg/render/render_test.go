package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	theme "github.com/goliatone/go-theme"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
	"github.com/tmcc-dev/designform/pkg/render"
	"github.com/tmcc-dev/designform/pkg/render/template/pongo"
	"github.com/tmcc-dev/designform/pkg/validation"
)

func sampleSubmission() design.Submission {
	sub := design.NewSubmission()
	sub.Title = "Iron Farm"
	sub.Categories = "Agriculture"
	sub.Description = "<script>alert(1)</script>Fast <b>iron</b> farm"
	sub.Designers[0] = design.Person{Name: "Ilmango", Contributions: "Main design, Testing"}
	sub.Versions[0].StartVersion = "19"
	sub.Rates.Variants[0].Drops[0] = design.Drop{
		Name:              "Iron Ingot",
		RateValue:         "93360",
		RateUnit:          design.RateUnitHour,
		AlternateValue:    "26",
		AlternateInterval: "min",
	}
	return sub
}

func TestMapErrorPayload(t *testing.T) {
	sub := sampleSubmission()
	payload := map[string][]string{
		"/body/title":                        {"Title is too short"},
		"$.designers[0].name":                {"Designer name is required", " Designer name is required "},
		"rates/variants/0/drops/0/rateValue": {"Rate must be positive"},
		"request.designers.0.nickname":       {"Unknown field"},
		"non_field_errors":                   {"Form level error"},
		"credits.3.name":                     {"Out of range entry"},
		"":                                   {"Unscoped"},
		"versions":                           {" "},
	}

	mapped := render.MapErrorPayload(sub, payload)

	wantFields := map[string][]string{
		"title":                              {"Title is too short"},
		"designers.0.name":                   {"Designer name is required"},
		"rates.variants.0.drops.0.rateValue": {"Rate must be positive"},
		"designers.0":                        {"Unknown field"},
		"credits":                            {"Out of range entry"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Unscoped"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapTree_UsesFlattenedPaths(t *testing.T) {
	sub := sampleSubmission()
	tree := errtree.Map(validation.Validate(design.NewSubmission()).Issues)

	mapped := render.MapTree(sub, tree)
	if mapped.Field("title") == "" {
		t.Fatalf("expected title error, got %#v", mapped.Fields)
	}
	if mapped.Field("designers.0.name") == "" {
		t.Fatalf("expected designer name error, got %#v", mapped.Fields)
	}
	if len(mapped.Form) != 0 {
		t.Fatalf("unexpected form errors %v", mapped.Form)
	}
}

func TestPage_FormLevelMessagesShownOnce(t *testing.T) {
	tree := errtree.New()
	tree.Set(validation.NewPath("form"), "Draft is out of date")
	tree.Set(validation.NewPath("legacyField"), " Draft is out of date ")
	tree.Set(validation.NewPath("server"), "Try again later")

	mapped := render.MapTree(sampleSubmission(), tree)
	want := []string{"Draft is out of date", "Try again later"}
	if diff := cmp.Diff(want, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	page, err := render.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	out, err := page.Render(context.Background(), render.View{Submission: sampleSubmission(), Errors: tree})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := strings.Count(string(out), "<li>Draft is out of date</li>"); got != 1 {
		t.Fatalf("form-level message rendered %d times", got)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"  plain  ":                          "plain",
		"<script>alert(1)</script>Fast farm": "Fast farm",
		"Fast <b>iron</b> farm":              "Fast iron farm",
		"Tom & Jerry":                        "Tom &amp; Jerry",
	}
	for in, want := range cases {
		if got := render.SanitizeText(in); got != want {
			t.Errorf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThemeFromManifest(t *testing.T) {
	dark := render.ThemeFromManifest(render.DefaultManifest(), "dark")
	if dark.Variant != "dark" {
		t.Fatalf("variant = %q", dark.Variant)
	}
	if dark.CSSVars["--accent"] != "#6fbf6f" {
		t.Fatalf("dark accent = %q", dark.CSSVars["--accent"])
	}
	if dark.CSSVars["--radius"] != "6px" {
		t.Fatalf("base tokens not inherited: %#v", dark.CSSVars)
	}

	base := render.ThemeFromManifest(render.DefaultManifest(), "missing")
	if base.Variant != "" || base.CSSVars["--accent"] != "#3b7d3b" {
		t.Fatalf("unexpected fallback theme %#v", base)
	}

	custom := render.ThemeFromManifest(&theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"brand.primary": "red;}</style>", "Body Text": "#000"},
	}, "")
	want := "--body-text: #000; --brand-primary: red/style;"
	if got := custom.Style(); got != want {
		t.Fatalf("Style() = %q, want %q", got, want)
	}

	if render.ThemeFromManifest(nil, "dark") != nil {
		t.Fatalf("expected nil theme for nil manifest")
	}
}

type stubSelector struct {
	selection *theme.Selection
	err       error
}

func (s stubSelector) Select(_, _ string, _ ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, s.err
}

func TestSelectTheme(t *testing.T) {
	selected, err := render.SelectTheme(stubSelector{selection: &theme.Selection{
		Theme:    "designform",
		Variant:  "dark",
		Manifest: render.DefaultManifest(),
	}}, "designform", "dark")
	if err != nil {
		t.Fatalf("SelectTheme: %v", err)
	}
	if selected.Name != "designform" || selected.Variant != "dark" {
		t.Fatalf("unexpected selection %#v", selected)
	}

	boom := errors.New("boom")
	if _, err := render.SelectTheme(stubSelector{err: boom}, "x", ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped selector error, got %v", err)
	}
	if _, err := render.SelectTheme(stubSelector{selection: &theme.Selection{}}, "x", ""); err == nil {
		t.Fatalf("expected error for selection without manifest")
	}
}

func TestPage_RendersRecordErrorsAndPreviews(t *testing.T) {
	page, err := render.NewPage(render.WithTheme(render.ThemeFromManifest(render.DefaultManifest(), "dark")))
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	tree := errtree.New()
	tree.Set(validation.NewPath("designers", 0, "name"), "Designer name is required")
	tree.Set(validation.NewPath("designers", 0, "nickname"), "Nicknames are not supported")
	tree.Set(validation.NewPath("versions"), "At least one version is required")

	out, err := page.Render(context.Background(), render.View{
		Submission: sampleSubmission(),
		Errors:     tree,
		Categories: []string{"Agriculture", "Mob Farms"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`action="/api/designs"`,
		`data-variant="dark"`,
		`--accent: #6fbf6f;`,
		`value="Iron Farm"`,
		`<option value="Agriculture" selected>Agriculture</option>`,
		`data-error-for="designers.0.name">Designer name is required`,
		`<p class="entry__error">Nicknames are not supported</p>`,
		`data-error-for="versions">At least one version is required`,
		`<p class="version-string">1.19+</p>`,
		`Iron Ingot: 93.36k/h`,
		`- 26/min`,
		`<p class="summary__description">Fast iron farm</p>`,
		`&lt;script&gt;`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("page contains unescaped script tag")
	}
}

func TestPage_HonoursCanceledContext(t *testing.T) {
	page, err := render.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := page.Render(ctx, render.View{Submission: design.NewSubmission()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPage_TemplateDirOverridesFileByFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a template"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	page, err := render.NewPage(render.WithTemplateDir(dir))
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	out, err := page.Render(context.Background(), render.View{Submission: sampleSubmission()})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "Iron Ingot: 93.36k/h") {
		t.Fatalf("built-in page expected when dir has no page.tpl")
	}

	if err := os.WriteFile(filepath.Join(dir, "page.tpl"), []byte("<h1>{{ title.value }}</h1>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	page, err = render.NewPage(render.WithTemplateDir(dir))
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	out, err = page.Render(context.Background(), render.View{Submission: sampleSubmission()})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(out); got != "<h1>Iron Farm</h1>" {
		t.Fatalf("override page = %q", got)
	}
}

func TestPage_MissingTemplateDir(t *testing.T) {
	if _, err := render.NewPage(render.WithTemplateDir(filepath.Join(t.TempDir(), "absent"))); err == nil {
		t.Fatalf("expected error for missing template dir")
	}
}

func TestSummary_RendersPlainText(t *testing.T) {
	summary, err := render.NewSummary()
	if err != nil {
		t.Fatalf("NewSummary: %v", err)
	}
	sub := sampleSubmission()
	sub.Description = "Tom & Jerry's farm"

	out, err := summary.Render(context.Background(), render.View{Submission: sub})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"Iron Farm\n",
		"Tom & Jerry's farm",
		"  - Ilmango (Main design, Testing)",
		"Versions: 1.19+",
		"  Default:",
		"    Iron Ingot: 93.36k/h",
		"      - 26/min",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q in:\n%s", want, text)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := render.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if diff := cmp.Diff([]string{"html", "text"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	page, err := registry.Get("html")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.HasPrefix(page.ContentType(), "text/html") {
		t.Fatalf("content type = %q", page.ContentType())
	}
	if _, err := registry.Get("pdf"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
	if err := registry.Register(page); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegisterFilters(t *testing.T) {
	engine, err := pongo.New(pongo.WithFS(render.TemplatesFS()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := render.RegisterFilters(engine); err != nil {
		t.Fatalf("RegisterFilters: %v", err)
	}

	got, err := engine.RenderString("{{ a|rate }} {{ b|rate }} {{ drop|preview }}{{ drop|alternate }}", map[string]any{
		"a":    "1500.5",
		"b":    2810000,
		"drop": design.Drop{Name: "Gunpowder", RateValue: "1000", RateUnit: design.RateUnitCustom, CustomUnit: "cycle"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "1.5k 2.81M Gunpowder: 1k/cycle" {
		t.Fatalf("result = %q", got)
	}
}

func TestManifestSelector(t *testing.T) {
	selector, err := render.NewManifestSelector(render.DefaultManifest())
	if err != nil {
		t.Fatalf("NewManifestSelector: %v", err)
	}

	resolved, err := render.SelectTheme(selector, "", "dark")
	if err != nil {
		t.Fatalf("SelectTheme: %v", err)
	}
	if resolved.Name != "designform" || resolved.Variant != "dark" || resolved.Tokens["accent"] != "#6fbf6f" {
		t.Fatalf("unexpected theme %#v", resolved)
	}

	if _, err := selector.Select("missing", ""); !errors.Is(err, render.ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if _, err := selector.Select("designform", "sepia"); !errors.Is(err, render.ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme for variant, got %v", err)
	}
	if _, err := render.NewManifestSelector(render.DefaultManifest(), render.DefaultManifest()); err == nil {
		t.Fatalf("expected duplicate manifest error")
	}
	if _, err := render.NewManifestSelector(); err == nil {
		t.Fatalf("expected error without manifests")
	}
}
