// Package catalogue serves the read-only list of published designs used by
// the browse and search pages.
package catalogue

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a slug does not match any design.
var ErrNotFound = errors.New("catalogue: design not found")

// Contributor is a designer or credited helper on a published design.
type Contributor struct {
	Name         string `yaml:"name" json:"name"`
	ChannelLink  string `yaml:"channel_link,omitempty" json:"channel_link,omitempty"`
	Contribution string `yaml:"contribution,omitempty" json:"contribution,omitempty"`
}

// DropRate is one published rate line.
type DropRate struct {
	Variant   string `yaml:"variant,omitempty" json:"variant,omitempty"`
	Versions  string `yaml:"versions,omitempty" json:"versions,omitempty"`
	Drop      string `yaml:"drop" json:"drop"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
	Rate      string `yaml:"rate" json:"rate"`
	Interval  string `yaml:"interval,omitempty" json:"interval,omitempty"`
	Note      string `yaml:"note,omitempty" json:"note,omitempty"`
}

// Rates groups produced and consumed rates.
type Rates struct {
	Drops       []DropRate `yaml:"drops,omitempty" json:"drops,omitempty"`
	Consumption []DropRate `yaml:"consumption,omitempty" json:"consumption,omitempty"`
	Notes       []string   `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Versions describes where a design works.
type Versions struct {
	Base          string `yaml:"base" json:"base"`
	Modifications string `yaml:"modifications,omitempty" json:"modifications,omitempty"`
	Thread        string `yaml:"thread,omitempty" json:"thread,omitempty"`
}

// Entry is a published design.
type Entry struct {
	ID          int           `yaml:"id" json:"id"`
	Slug        string        `yaml:"slug" json:"slug"`
	Title       string        `yaml:"title" json:"title"`
	Category    string        `yaml:"category" json:"category"`
	Subcategory string        `yaml:"subcategory,omitempty" json:"subcategory,omitempty"`
	Tags        []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Designers   []Contributor `yaml:"designers,omitempty" json:"designers,omitempty"`
	Credits     []Contributor `yaml:"credits,omitempty" json:"credits,omitempty"`
	Versions    Versions      `yaml:"versions" json:"versions"`
	Rates       Rates         `yaml:"rates,omitempty" json:"rates,omitempty"`
	Description []string      `yaml:"description,omitempty" json:"description,omitempty"`
	CreatedAt   string        `yaml:"created_at,omitempty" json:"created_at,omitempty"`
}

// CreditNames joins designer and credit names for text search.
func (e Entry) CreditNames() string {
	names := make([]string, 0, len(e.Designers)+len(e.Credits))
	for _, c := range e.Designers {
		names = append(names, c.Name)
	}
	for _, c := range e.Credits {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// Category is a top-level browse section with its subcategory slugs.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories,omitempty" json:"subcategories,omitempty"`
}

// Document is the on-disk catalogue layout.
type Document struct {
	Categories []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
	Designs    []Entry    `yaml:"designs" json:"designs"`
}

// Parse decodes a catalogue document. YAML is a superset of JSON, so both
// encodings are accepted.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("catalogue: parse: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Designs))
	for i, entry := range doc.Designs {
		if strings.TrimSpace(entry.Slug) == "" {
			return Document{}, fmt.Errorf("catalogue: design %d has no slug", i)
		}
		if _, dup := seen[entry.Slug]; dup {
			return Document{}, fmt.Errorf("catalogue: duplicate slug %q", entry.Slug)
		}
		seen[entry.Slug] = struct{}{}
	}
	if len(doc.Categories) == 0 {
		doc.Categories = DefaultCategories()
	}
	return doc, nil
}

// Option customises a Catalogue.
type Option func(*Catalogue)

// WithLogger sets the logger used for reload events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalogue) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Catalogue is a concurrency-safe in-memory view of a catalogue file.
type Catalogue struct {
	mu     sync.RWMutex
	path   string
	doc    Document
	logger *zap.Logger
}

// New wraps an already parsed document. Reload and Watch are unavailable.
func New(doc Document, options ...Option) *Catalogue {
	c := &Catalogue{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if len(doc.Categories) == 0 {
		doc.Categories = DefaultCategories()
	}
	c.doc = doc
	return c
}

// Open loads the catalogue file at path.
func Open(path string, options ...Option) (*Catalogue, error) {
	c := New(Document{}, options...)
	c.path = path
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the backing file. On error the previous contents stay.
func (c *Catalogue) Reload() error {
	if c.path == "" {
		return errors.New("catalogue: no backing file")
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("catalogue: read %s: %w", c.path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
	c.logger.Info("catalogue loaded", zap.String("path", c.path), zap.Int("designs", len(doc.Designs)))
	return nil
}

// Entries returns every design in file order.
func (c *Catalogue) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Entry(nil), c.doc.Designs...)
}

// Categories returns the browse tree.
func (c *Catalogue) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Category(nil), c.doc.Categories...)
}

// Get returns the design with slug.
func (c *Catalogue) Get(slug string) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.doc.Designs {
		if entry.Slug == slug {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
}

// Query narrows a listing.
type Query struct {
	// Text is matched fuzzily against titles and contributor names.
	Text string
	// Category matches the category name or a subcategory slug,
	// case-insensitively.
	Category string
	// Limit caps the results when positive.
	Limit int
}

// Search returns designs matching q. With text, results are ordered by match
// quality; otherwise file order is kept.
func (c *Catalogue) Search(q Query) []Entry {
	entries := c.Entries()

	if category := strings.TrimSpace(q.Category); category != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if strings.EqualFold(entry.Category, category) || strings.EqualFold(entry.Subcategory, category) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if text := strings.TrimSpace(q.Text); text != "" {
		targets := make([]string, len(entries))
		for i, entry := range entries {
			targets[i] = entry.Title + " " + entry.CreditNames()
		}
		matches := fuzzy.Find(text, targets)
		ranked := make([]Entry, 0, len(matches))
		for _, match := range matches {
			ranked = append(ranked, entries[match.Index])
		}
		entries = ranked
	}

	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries
}

// DefaultCategories is the browse tree used when a catalogue file does not
// define one.
func DefaultCategories() []Category {
	subcategories := []string{
		"overworld-monsters",
		"nether-monsters",
		"end-monsters",
		"fortress-monsters",
		"slime",
		"gold-and-bartering",
	}
	names := []string{
		"Monsters",
		"Creatures",
		"Agriculture",
		"Blocks & Items",
		"Item processing",
		"Infrastructure",
		"Niche and Legacy",
	}
	out := make([]Category, len(names))
	for i, name := range names {
		out[i] = Category{Name: name, Subcategories: append([]string(nil), subcategories...)}
	}
	return out
}
