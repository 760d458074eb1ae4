package catalogue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleYAML = `
designs:
  - id: 1
    slug: ilmango-iron-farm
    title: Iron Farm
    category: Agriculture
    designers:
      - name: ilmango
    credits:
      - name: Cubicmetre
        contribution: Testing
    versions:
      base: "1.19+"
  - id: 2
    slug: witch-hut
    title: Witch Farm
    category: Monsters
    subcategory: overworld-monsters
    designers:
      - name: Gnembon
    versions:
      base: "1.16+"
  - id: 3
    slug: gold-farm
    title: Gold Farm
    category: Monsters
    subcategory: gold-and-bartering
    designers:
      - name: Cubicmetre
    versions:
      base: "1.20+"
`

func titles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Designs) != 3 {
		t.Fatalf("designs = %d", len(doc.Designs))
	}
	if diff := cmp.Diff(DefaultCategories(), doc.Categories); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Designs[0].CreditNames(); got != "ilmango, Cubicmetre" {
		t.Fatalf("CreditNames = %q", got)
	}
}

func TestParse_JSONAndErrors(t *testing.T) {
	doc, err := Parse([]byte(`{"designs":[{"slug":"a","title":"A"}]}`))
	if err != nil || len(doc.Designs) != 1 {
		t.Fatalf("Parse json = %+v, %v", doc, err)
	}
	if _, err := Parse([]byte(`designs: [{title: x}]`)); err == nil {
		t.Fatalf("expected missing slug error")
	}
	if _, err := Parse([]byte(`designs: [{slug: a}, {slug: a}]`)); err == nil {
		t.Fatalf("expected duplicate slug error")
	}
}

func TestSearch(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := New(doc)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"all", Query{}, []string{"Iron Farm", "Witch Farm", "Gold Farm"}},
		{"category", Query{Category: "monsters"}, []string{"Witch Farm", "Gold Farm"}},
		{"subcategory", Query{Category: "gold-and-bartering"}, []string{"Gold Farm"}},
		{"title", Query{Text: "witch"}, []string{"Witch Farm"}},
		{"credit name", Query{Text: "cubicmetre", Category: "Agriculture"}, []string{"Iron Farm"}},
		{"limit", Query{Limit: 1}, []string{"Iron Farm"}},
		{"no match", Query{Text: "zzzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, titles(c.Search(tt.query))); diff != "" {
				t.Fatalf("Search mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	doc, _ := Parse([]byte(sampleYAML))
	c := New(doc)
	entry, err := c.Get("witch-hut")
	if err != nil || entry.Title != "Witch Farm" {
		t.Fatalf("Get = %+v, %v", entry, err)
	}
	if _, err := c.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogue.yaml")
	if err := os.WriteFile(path, []byte(`designs: [{slug: a, title: First}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`designs: [{slug: a, title: Second}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if entries := c.Entries(); len(entries) == 1 && entries[0].Title == "Second" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("catalogue was not reloaded: %+v", c.Entries())
}
