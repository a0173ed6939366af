// Package segment splits a raw inbound message into candidate request lines.
package segment

import (
	"regexp"
	"strings"

	"corralon_backend/internal/textnorm"
)

const (
	// MaxInputRunes caps how much of a message is considered.
	MaxInputRunes = 4000
	// MaxLines caps the number of lines returned for one message.
	MaxLines = 60
)

var (
	lineBreak  = regexp.MustCompile(`\r?\n+|\.\s+`)
	bulletSep  = regexp.MustCompile(`[;•]+`)
	andSep     = regexp.MustCompile(`\s+y\s+`)
	qtyMarker  = regexp.MustCompile(`\b(?:x|por|a)\s*\d+(?:[.,]\d+)?\b`)
	deMarker   = regexp.MustCompile(`\b\d+\s+de\s+\pL+`)
	digitGroup = regexp.MustCompile(`\d+`)
)

// Segment splits raw into trimmed, non-empty lines. Newlines, sentence-final
// periods, semicolons and bullet glyphs always separate lines. A single line
// carrying two or more quantity markers is further split on commas that are
// not decimal separators and on " y ".
func Segment(raw string) []string {
	raw = truncate(raw)
	var lines []string
	for _, part := range lineBreak.Split(raw, -1) {
		for _, sub := range bulletSep.Split(part, -1) {
			if s := strings.TrimSpace(sub); s != "" {
				lines = append(lines, s)
			}
		}
	}

	if len(lines) == 1 {
		one := spoken(lines[0])
		if countMarkers(one) >= 2 {
			lines = splitInline(one)
		}
	}

	if len(lines) > MaxLines {
		lines = lines[:MaxLines]
	}
	return lines
}

func truncate(s string) string {
	if len(s) <= MaxInputRunes {
		return s
	}
	rs := []rune(s)
	if len(rs) <= MaxInputRunes {
		return s
	}
	return string(rs[:MaxInputRunes])
}

// spoken lowercases, strips diacritics and turns number words into digits
// while keeping punctuation needed for inline splitting.
func spoken(s string) string {
	return textnorm.SpokenToDigits(strings.ToLower(textnorm.StripDiacritics(s)))
}

func countMarkers(s string) int {
	return len(qtyMarker.FindAllStringIndex(s, -1)) + len(deMarker.FindAllStringIndex(s, -1))
}

func splitInline(s string) []string {
	var out []string
	for _, part := range andSep.Split(s, -1) {
		for _, piece := range splitCommas(part) {
			if p := strings.TrimSpace(piece); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// splitCommas splits on commas unless a digit follows ("1,5" stays intact).
func splitCommas(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			continue
		}
		if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			continue
		}
		out = append(out, s[start:i])
		start = i + 1
	}
	return append(out, s[start:])
}

var domainHints = []string{
	"arena", "piedra", "escombro", "tosca", "cemento", "cal", "plasticor",
	"hidrofugo", "impermeabilizante", "pegamento", "malla", "hierro", "alambre",
	"clavo", "tornillo", "rejilla", "ladrillo", "ceramico", "porcelanato",
	"pintura", "latex", "aislante", "vigueta", "weber", "sinteplast", "muroseal",
}

// IsLikelyList reports whether raw looks like a multi-item materials list
// rather than a single command or question.
func IsLikelyList(raw string) bool {
	valid := 0
	for _, l := range Segment(raw) {
		if len(textnorm.Fold(l)) >= 3 {
			valid++
		}
	}
	if valid >= 3 {
		return true
	}

	t := spoken(textnorm.Fold(raw))
	qtyHits := len(qtyMarker.FindAllStringIndex(t, -1))
	numHits := len(digitGroup.FindAllStringIndex(t, -1))
	deHits := len(deMarker.FindAllStringIndex(t, -1))
	domHits := 0
	for _, w := range domainHints {
		if strings.Contains(t, w) {
			domHits++
		}
	}

	switch {
	case valid >= 2 && (qtyHits >= 1 || domHits >= 2 || numHits >= 4):
		return true
	case deHits >= 2:
		return true
	case numHits >= 2 && domHits >= 2:
		return true
	}
	return false
}
