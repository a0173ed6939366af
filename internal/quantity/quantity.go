// Package quantity pulls the requested quantity out of a normalized request
// line and converts presentation words into catalog units.
package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"corralon_backend/internal/textnorm"
)

var (
	suffixQty  = regexp.MustCompile(`\b(x|por|a)\s*(\d+(?:[.,]\d+)?)\b`)
	leadingQty = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\b`)
	unitAfter  = regexp.MustCompile(`^\s*(?:kg|kilos?|gr?|m|m2|m3|mm|cm|mts?|metros?|lts?|l|litros?|cc)\b`)
	numBefore  = regexp.MustCompile(`\d\s*$`)
	fillers    = map[string]bool{"de": true, "del": true}
)

// Extract returns the quantity requested in line and the remaining product
// description. An explicit "x N", "por N" or "a N" suffix wins over a leading
// numeral; without either the quantity defaults to 1. Sizes such as "25kg" or
// dimensions such as "45 x 45" are never taken as quantities.
func Extract(line string) (float64, string) {
	if qty, rest, ok := Explicit(line); ok {
		return qty, rest
	}
	return 1, cleanRemainder(strings.TrimSpace(line))
}

// Explicit is Extract without the default: ok is false when line names no
// quantity.
func Explicit(line string) (float64, string, bool) {
	s := strings.TrimSpace(line)

	matches := suffixQty.FindAllStringSubmatchIndex(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if unitAfter.MatchString(s[m[1]:]) {
			continue
		}
		if s[m[2]:m[3]] == "x" && numBefore.MatchString(s[:m[0]]) {
			continue
		}
		qty, ok := parse(s[m[4]:m[5]])
		if !ok {
			continue
		}
		return qty, cleanRemainder(s[:m[0]] + " " + s[m[1]:]), true
	}

	if m := leadingQty.FindStringSubmatchIndex(s); m != nil {
		rest := s[m[1]:]
		if !unitAfter.MatchString(rest) && !strings.HasPrefix(rest, "/") && !strings.HasPrefix(rest, "-") && !isDimension(rest) {
			if qty, ok := parse(s[m[2]:m[3]]); ok {
				return qty, cleanRemainder(rest), true
			}
		}
	}
	return 0, s, false
}

func isDimension(rest string) bool {
	rest = strings.TrimLeft(rest, " ")
	if !strings.HasPrefix(rest, "x") {
		return false
	}
	rest = strings.TrimLeft(rest[1:], " ")
	return rest != "" && rest[0] >= '0' && rest[0] <= '9'
}

func parse(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func cleanRemainder(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && fillers[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && fillers[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// Units maps presentation words ("medio", "bolsita", "granel", "balde") to the
// fraction of a cubic meter they represent.
type Units map[string]float64

// Convert rescales qty when the request names a presentation the accepted
// title does not carry and the title is sold per cubic meter. The result is
// rounded to two decimals.
func (u Units) Convert(request, title string, qty float64) (float64, bool) {
	foldedTitle := textnorm.Fold(title)
	if !strings.Contains(foldedTitle, "m3") {
		return qty, false
	}
	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(foldedTitle) {
		titleWords[textnorm.Singular(w)] = true
	}
	for _, w := range strings.Fields(textnorm.Fold(request)) {
		w = textnorm.Singular(w)
		factor, ok := u[w]
		if !ok || titleWords[w] {
			continue
		}
		return math.Round(qty*factor*100) / 100, true
	}
	return qty, false
}
