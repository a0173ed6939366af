package matcher

// Thresholds tune the cascade. See Config.
type Thresholds struct {
	// StrongAccept is the direct-match score a candidate must exceed.
	StrongAccept float64 `yaml:"strongAccept"`
	// StrongMargin is the lead a direct match needs over the runner-up.
	StrongMargin float64 `yaml:"strongMargin"`
	// TieEpsilon groups candidates whose scores are this close to the best.
	TieEpsilon float64 `yaml:"tieEpsilon"`
	// Containment is the score given when one title contains the other.
	Containment float64 `yaml:"containment"`
	// GlossaryFloor is the minimum glossary score that triggers expansion.
	GlossaryFloor float64 `yaml:"glossaryFloor"`
	// FallbackFloor is the minimum fuzzy score for the last stage.
	FallbackFloor float64 `yaml:"fallbackFloor"`
	// FallbackEpsilon is the ambiguity band of the fuzzy stage.
	FallbackEpsilon float64 `yaml:"fallbackEpsilon"`
	// FuzzyToken is the per-token similarity that counts as a fuzzy hit.
	FuzzyToken float64 `yaml:"fuzzyToken"`
}

// Category is a generic product family such as "arena" or "cemento".
type Category struct {
	Name   string   `yaml:"name"`
	Brands []string `yaml:"brands"`
	// Default is the title of the variant offered for a bare category request.
	Default string `yaml:"default"`
}

// GlossaryEntry maps colloquial aliases onto catalog vocabulary.
type GlossaryEntry struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases"`
	// Include lists title tokens that put an item in this entry's family.
	// Defaults to Key.
	Include []string `yaml:"include"`
}

// Config drives the match cascade.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Stopwords  []string   `yaml:"stopwords"`
	// PresentationWords name packaging ("balde", "pallet") that is converted
	// or implied rather than printed in titles. They score like other terms
	// but are never strong.
	PresentationWords []string        `yaml:"presentationWords"`
	Categories        []Category      `yaml:"categories"`
	SpecMarkers       []string        `yaml:"specMarkers"`
	Glossary          []GlossaryEntry `yaml:"glossary"`
	MinStrongToken    int             `yaml:"minStrongToken"`
}

// DefaultThresholds are used for any zero threshold.
var DefaultThresholds = Thresholds{
	StrongAccept:    0.75,
	StrongMargin:    0.20,
	TieEpsilon:      0.05,
	Containment:     0.90,
	GlossaryFloor:   0.50,
	FallbackFloor:   0.35,
	FallbackEpsilon: 0.10,
	FuzzyToken:      0.80,
}

func (t Thresholds) withDefaults() Thresholds {
	fill := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&t.StrongAccept, DefaultThresholds.StrongAccept)
	fill(&t.StrongMargin, DefaultThresholds.StrongMargin)
	fill(&t.TieEpsilon, DefaultThresholds.TieEpsilon)
	fill(&t.Containment, DefaultThresholds.Containment)
	fill(&t.GlossaryFloor, DefaultThresholds.GlossaryFloor)
	fill(&t.FallbackFloor, DefaultThresholds.FallbackFloor)
	fill(&t.FallbackEpsilon, DefaultThresholds.FallbackEpsilon)
	fill(&t.FuzzyToken, DefaultThresholds.FuzzyToken)
	return t
}
