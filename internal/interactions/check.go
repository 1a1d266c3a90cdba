package interactions

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"healthtrack/internal/model"
)

// OtherCategory is assigned to names no category rule matches. It groups
// like any other category, so two unmatched names are reported together.
const OtherCategory = "other"

const defaultMemoSize = 256

// Kind distinguishes pairwise interactions from duplicate therapies.
type Kind string

const (
	KindInteraction Kind = "interaction"
	KindDuplicate   Kind = "duplicate"
)

// Warning is a derived advisory about the medication list. It is never
// stored; every query regenerates it.
type Warning struct {
	ID            string   `json:"id"`
	Kind          Kind     `json:"type"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Message       string   `json:"message"`
	Advice        string   `json:"advice"`
	Category      string   `json:"category"`
	Medications   []string `json:"medications"`
	MedicationIDs []string `json:"medicationIds"`
}

// Checker runs interaction and duplicate therapy checks against a catalog.
type Checker struct {
	catalog *Catalog
	memo    *lru.Cache[string, string]
}

// NewChecker creates a checker over catalog. memoSize bounds the number of
// remembered name classifications; zero or less uses a default.
func NewChecker(catalog *Catalog, memoSize int) (*Checker, error) {
	if memoSize <= 0 {
		memoSize = defaultMemoSize
	}
	memo, err := lru.New[string, string](memoSize)
	if err != nil {
		return nil, fmt.Errorf("creating category cache: %w", err)
	}
	return &Checker{catalog: catalog, memo: memo}, nil
}

// Category classifies a medication name by the first rule with a keyword
// the name contains, or OtherCategory.
func (c *Checker) Category(name string) string {
	key := normalize(name)
	if cat, ok := c.memo.Get(key); ok {
		return cat
	}

	cat := OtherCategory
	for _, rule := range c.catalog.categories {
		if containsAny(key, rule.Keywords) {
			cat = rule.Name
			break
		}
	}
	c.memo.Add(key, cat)
	return cat
}

// Pairwise reports catalog hits for every unordered pair of distinct list
// positions, in discovery order.
func (c *Checker) Pairwise(meds []model.Medication) []Warning {
	var warnings []Warning
	for i := 0; i < len(meds); i++ {
		for j := i + 1; j < len(meds); j++ {
			if e, ok := c.catalog.Lookup(meds[i].Name, meds[j].Name); ok {
				warnings = append(warnings, interactionWarning(e, meds[i], meds[j]))
			}
		}
	}
	return warnings
}

// ForMedication reports interactions between med and every other entry of
// all, skipping entries with med's id.
func (c *Checker) ForMedication(med model.Medication, all []model.Medication) []Warning {
	var warnings []Warning
	for _, other := range all {
		if other.ID == med.ID {
			continue
		}
		if e, ok := c.catalog.Lookup(med.Name, other.Name); ok {
			warnings = append(warnings, interactionWarning(e, med, other))
		}
	}
	sortBySeverity(warnings)
	return warnings
}

// Duplicates reports one moderate warning per category with two or more
// members. Categories and members appear in first-appearance order.
func (c *Checker) Duplicates(meds []model.Medication) []Warning {
	var order []string
	members := make(map[string][]model.Medication)
	for _, m := range meds {
		cat := c.Category(m.Name)
		if _, seen := members[cat]; !seen {
			order = append(order, cat)
		}
		members[cat] = append(members[cat], m)
	}

	var warnings []Warning
	for _, cat := range order {
		group := members[cat]
		if len(group) < 2 {
			continue
		}
		w := Warning{
			ID:       "duplicate-" + cat,
			Kind:     KindDuplicate,
			Severity: Moderate,
			Title:    fmt.Sprintf("Multiple %s medications", cat),
			Message:  fmt.Sprintf("You are taking %d medications in the %s category", len(group), cat),
			Advice:   "Consult your doctor to ensure this is appropriate.",
			Category: "duplicate",
		}
		for _, m := range group {
			w.Medications = append(w.Medications, m.Name)
			w.MedicationIDs = append(w.MedicationIDs, m.ID)
		}
		warnings = append(warnings, w)
	}
	return warnings
}

// Check combines pairwise and duplicate warnings, most severe first. Ties
// keep discovery order, pairwise before duplicates.
func (c *Checker) Check(meds []model.Medication) []Warning {
	warnings := append(c.Pairwise(meds), c.Duplicates(meds)...)
	sortBySeverity(warnings)
	return warnings
}

func interactionWarning(e Entry, a, b model.Medication) Warning {
	return Warning{
		ID:            fmt.Sprintf("interaction-%s-%s", a.ID, b.ID),
		Kind:          KindInteraction,
		Severity:      e.Severity,
		Title:         a.Name + " + " + b.Name,
		Message:       e.Description,
		Advice:        e.Advice,
		Category:      e.Category,
		Medications:   []string{a.Name, b.Name},
		MedicationIDs: []string{a.ID, b.ID},
	}
}

func sortBySeverity(warnings []Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Severity.Rank() > warnings[j].Severity.Rank()
	})
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
