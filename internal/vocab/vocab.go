// Package vocab loads the versioned matching vocabulary: spelling and synonym
// tables, categories, glossary, thresholds, presentation estimates and the
// canned replies. The parsed document is immutable.
package vocab

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"corralon_backend/internal/matcher"
	"corralon_backend/internal/quantity"
	"corralon_backend/internal/textnorm"
)

// SupportedVersion is the only document version this build understands.
const SupportedVersion = 1

//go:embed defaults.yaml
var defaultDocument []byte

// Replies are the fixed customer-facing texts. Placeholders {business},
// {cash} and {transfer} are filled by Render.
type Replies struct {
	Greeting       string `yaml:"greeting"`
	Help           string `yaml:"help"`
	Hours          string `yaml:"hours"`
	Location       string `yaml:"location"`
	Payment        string `yaml:"payment"`
	Delivery       string `yaml:"delivery"`
	Stock          string `yaml:"stock"`
	Handoff        string `yaml:"handoff"`
	HumanRequested string `yaml:"humanRequested"`
	FreightNote    string `yaml:"freightNote"`
}

// Vocabulary is the decoded document.
type Vocabulary struct {
	Version  int              `yaml:"version"`
	Lexicon  textnorm.Lexicon `yaml:"lexicon"`
	Matcher  matcher.Config   `yaml:"matcher"`
	Units    quantity.Units   `yaml:"units"`
	Reserved []string         `yaml:"reserved"`
	Replies  Replies          `yaml:"replies"`
}

// Default returns the embedded vocabulary.
func Default() (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(defaultDocument, &v); err != nil {
		return nil, fmt.Errorf("parse embedded vocabulary: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("embedded vocabulary: %w", err)
	}
	return &v, nil
}

// Load returns the embedded vocabulary with the file at path decoded on top.
// An empty path yields the defaults.
func Load(path string) (*Vocabulary, error) {
	v, err := Default()
	if err != nil || path == "" {
		return v, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("parse vocabulary %q: %w", path, err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", path, err)
	}
	return v, nil
}

func (v *Vocabulary) validate() error {
	if v.Version != SupportedVersion {
		return fmt.Errorf("unsupported version %d", v.Version)
	}
	th := v.Matcher.Thresholds
	for name, val := range map[string]float64{
		"strongAccept":    th.StrongAccept,
		"strongMargin":    th.StrongMargin,
		"tieEpsilon":      th.TieEpsilon,
		"containment":     th.Containment,
		"glossaryFloor":   th.GlossaryFloor,
		"fallbackFloor":   th.FallbackFloor,
		"fallbackEpsilon": th.FallbackEpsilon,
		"fuzzyToken":      th.FuzzyToken,
	} {
		if val < 0 || val > 1 {
			return fmt.Errorf("threshold %s must be within [0,1], got %v", name, val)
		}
	}
	for i, c := range v.Matcher.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category %d has no name", i)
		}
	}
	for i, g := range v.Matcher.Glossary {
		if strings.TrimSpace(g.Key) == "" {
			return fmt.Errorf("glossary entry %d has no key", i)
		}
	}
	loose := make(map[string]bool, len(v.Matcher.PresentationWords))
	for _, w := range v.Matcher.PresentationWords {
		loose[textnorm.Fold(w)] = true
	}
	for w, f := range v.Units {
		if f <= 0 {
			return fmt.Errorf("unit %q must be positive", w)
		}
		// A unit word that had to appear in the title could never be converted.
		if !loose[textnorm.Fold(w)] {
			return fmt.Errorf("unit %q must be listed in matcher.presentationWords", w)
		}
	}
	return nil
}

// IsReserved reports whether a not-found term is a command word rather than a
// product request.
func (v *Vocabulary) IsReserved(term string) bool {
	folded := textnorm.Fold(term)
	for _, r := range v.Reserved {
		if folded == textnorm.Fold(r) {
			return true
		}
	}
	return false
}

// Render fills the placeholders of a reply.
func Render(text, business string, cashDiscount, transferDiscount float64) string {
	return strings.NewReplacer(
		"{business}", business,
		"{cash}", percent(cashDiscount),
		"{transfer}", percent(transferDiscount),
	).Replace(text)
}

func percent(f float64) string {
	return strconv.Itoa(int(math.Round(f * 100)))
}
