package interactions

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Severity ranks how serious a warning is.
type Severity string

const (
	Severe   Severity = "severe"
	Moderate Severity = "moderate"
	Minor    Severity = "minor"
)

// Rank orders severities: severe=3, moderate=2, minor=1, anything else 0.
func (s Severity) Rank() int {
	switch s {
	case Severe:
		return 3
	case Moderate:
		return 2
	case Minor:
		return 1
	}
	return 0
}

// Entry describes a known interaction between two medications.
type Entry struct {
	Drugs       [2]string `yaml:"drugs"`
	Severity    Severity  `yaml:"severity"`
	Description string    `yaml:"description"`
	Advice      string    `yaml:"advice"`
	Category    string    `yaml:"category"`
}

// CategoryRule assigns a therapeutic category to names containing any of
// its keywords.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type catalogFile struct {
	Interactions []Entry        `yaml:"interactions"`
	Categories   []CategoryRule `yaml:"categories"`
}

// Catalog is a closed table of medication pairs plus the category rules
// used for duplicate therapy checks. It is immutable after construction
// and safe for concurrent use.
type Catalog struct {
	entries    map[string]Entry
	categories []CategoryRule
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a catalog from its YAML form.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing interaction catalog: %w", err)
	}

	c := &Catalog{
		entries:    make(map[string]Entry, len(f.Interactions)),
		categories: make([]CategoryRule, 0, len(f.Categories)),
	}
	for i, e := range f.Interactions {
		a, b := normalize(e.Drugs[0]), normalize(e.Drugs[1])
		if a == "" || b == "" {
			return nil, fmt.Errorf("interaction %d: both drug names are required", i)
		}
		if e.Severity.Rank() == 0 {
			return nil, fmt.Errorf("interaction %s-%s: unknown severity %q", a, b, e.Severity)
		}
		c.entries[pairKey(a, b)] = e
	}
	for _, rule := range f.Categories {
		folded := CategoryRule{Name: rule.Name}
		for _, kw := range rule.Keywords {
			folded.Keywords = append(folded.Keywords, normalize(kw))
		}
		c.categories = append(c.categories, folded)
	}
	return c, nil
}

// Lookup returns the entry for the two names, trying both orderings.
func (c *Catalog) Lookup(name1, name2 string) (Entry, bool) {
	a, b := normalize(name1), normalize(name2)
	if e, ok := c.entries[pairKey(a, b)]; ok {
		return e, true
	}
	e, ok := c.entries[pairKey(b, a)]
	return e, ok
}

// Len returns the number of known pairs.
func (c *Catalog) Len() int { return len(c.entries) }

// Categories returns the category rules in priority order.
func (c *Catalog) Categories() []CategoryRule {
	return append([]CategoryRule(nil), c.categories...)
}

func pairKey(a, b string) string { return a + "\x00" + b }

// normalize trims surrounding whitespace and case folds the name. A Caser
// carries state, so one is created per call.
func normalize(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
