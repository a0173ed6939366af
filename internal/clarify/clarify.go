// Package clarify builds the option lists offered when a request line matches
// several catalog variants, and resolves the customer's reply against them.
package clarify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/textnorm"
)

// Option is one selectable candidate.
type Option struct {
	ID         string `json:"id"`
	ItemID     string `json:"itemId"`
	VariantID  string `json:"variantId"`
	Title      string `json:"title"`
	PriceCents int64  `json:"priceCents,omitempty"`
}

// Clarification asks the customer to pick one option for a request line.
type Clarification struct {
	Line     string   `json:"line"`
	Question string   `json:"question"`
	Qty      float64  `json:"qty"`
	Options  []Option `json:"options"`
}

// Candidate is a scored (item, variant) pair produced by the matcher.
type Candidate struct {
	Item    catalog.Item
	Variant catalog.Variant
	Score   float64
}

// OptionID is the stable identifier of an (item, variant) pair.
func OptionID(itemID, variantID string) string {
	return itemID + ":" + variantID
}

// RowID is the list-row identifier for the option at zero-based position i.
func RowID(i int) string {
	return "opt_" + strconv.Itoa(i+1)
}

// Build turns ordered candidates into a clarification, keeping the candidate
// order and dropping duplicates.
func Build(line string, candidates []Candidate, qty float64) Clarification {
	c := Clarification{
		Line:     line,
		Question: fmt.Sprintf("Encontré varias opciones para \"%s\". ¿Cuál querés?", line),
		Qty:      qty,
	}
	seen := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		id := OptionID(cand.Item.ID, cand.Variant.ID)
		if seen[id] {
			continue
		}
		seen[id] = true
		c.Options = append(c.Options, Option{
			ID:         id,
			ItemID:     cand.Item.ID,
			VariantID:  cand.Variant.ID,
			Title:      catalog.DisplayTitle(cand.Item, cand.Variant),
			PriceCents: cand.Variant.PriceCents,
		})
	}
	return c
}

var (
	rowIDPattern   = regexp.MustCompile(`^(?:opt_|\d+-)(\d+)$`)
	numericPattern = regexp.MustCompile(`^(?:el|la|opcion|nro|numero|num|n)?\s*#?\s*(\d{1,2})$`)
)

var ordinals = map[string]int{
	"primero": 1, "primera": 1, "primer": 1,
	"segundo": 2, "segunda": 2,
	"tercero": 3, "tercera": 3, "tercer": 3,
	"cuarto": 4, "cuarta": 4,
	"quinto": 5, "quinta": 5,
	"sexto": 6, "sexta": 6,
	"septimo": 7, "septima": 7,
	"octavo": 8, "octava": 8,
	"noveno": 9, "novena": 9,
	"decimo": 10, "decima": 10,
}

// Ordinal finds a Spanish ordinal word ("segundo", "tercera") in folded text
// and returns its 1-based value.
func Ordinal(folded string) (int, bool) {
	for _, w := range strings.Fields(folded) {
		if n, ok := ordinals[w]; ok {
			return n, true
		}
	}
	return 0, false
}

// Resolve matches a reply against the options. It tries, in order: the exact
// option ID, a list-row ID, a numeric or ordinal position, and finally a
// unique substring match on the option title. It returns the zero-based index.
func Resolve(input string, options []Option) (int, bool) {
	raw := strings.TrimSpace(input)
	if raw == "" || len(options) == 0 {
		return 0, false
	}

	for i, o := range options {
		if raw == o.ID {
			return i, true
		}
	}

	if m := rowIDPattern.FindStringSubmatch(raw); m != nil {
		return position(m[1], len(options))
	}

	folded := textnorm.Fold(raw)
	if m := numericPattern.FindStringSubmatch(folded); m != nil {
		return position(m[1], len(options))
	}
	if len(strings.Fields(folded)) <= 3 {
		if n, ok := Ordinal(folded); ok && n <= len(options) {
			return n - 1, true
		}
	}

	if len(folded) < 3 {
		return 0, false
	}
	found := -1
	for i, o := range options {
		title := textnorm.Fold(o.Title)
		if strings.Contains(title, folded) || strings.Contains(folded, title) {
			if found >= 0 {
				return 0, false
			}
			found = i
		}
	}
	return found, found >= 0
}

func position(raw string, n int) (int, bool) {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx - 1, true
}
