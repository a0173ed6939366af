package textnorm

import (
	"strconv"
	"strings"
	"unicode"
)

// Tokens splits folded text into alphanumeric tokens, breaking at letter/digit
// boundaries so "25kg" yields "25", "kg" and "12x18" yields "12", "x", "18".
func Tokens(s string) []string {
	var (
		out  []string
		cur  []rune
		kind int // 0 none, 1 letter, 2 digit
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		var k int
		switch {
		case unicode.IsLetter(r):
			k = 1
		case unicode.IsDigit(r):
			k = 2
		}
		if k == 0 || (kind != 0 && k != kind) {
			flush()
		}
		if k != 0 {
			cur = append(cur, r)
		}
		kind = k
	}
	flush()
	return out
}

// Singular strips a trailing "s" from words longer than four characters.
func Singular(w string) string {
	if len(w) > 4 && strings.HasSuffix(w, "s") && !IsNumeral(w) {
		return w[:len(w)-1]
	}
	return w
}

// IsNumeral reports whether tok consists only of digits.
func IsNumeral(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var spokenUnits = map[string]int{
	"cero": 0, "un": 1, "una": 1, "uno": 1, "dos": 2, "tres": 3, "cuatro": 4,
	"cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
	"once": 11, "doce": 12, "trece": 13, "catorce": 14, "quince": 15,
	"dieciseis": 16, "diecisiete": 17, "dieciocho": 18, "diecinueve": 19,
	"veinte": 20, "veintiuno": 21, "veintiuna": 21, "veintidos": 22, "veintitres": 23,
	"veinticuatro": 24, "veinticinco": 25, "veintiseis": 26, "veintisiete": 27,
	"veintiocho": 28, "veintinueve": 29,
}

var spokenTens = map[string]int{
	"treinta": 30, "cuarenta": 40, "cincuenta": 50, "sesenta": 60,
	"setenta": 70, "ochenta": 80, "noventa": 90, "cien": 100,
}

// SpokenToDigits replaces Spanish number words with digits, including compound
// forms such as "treinta y dos". Input is expected to be folded.
func SpokenToDigits(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if tens, ok := spokenTens[w]; ok {
			if tens < 100 && i+2 < len(words) && words[i+1] == "y" {
				if u, ok := spokenUnits[words[i+2]]; ok && u > 0 && u < 10 {
					out = append(out, strconv.Itoa(tens+u))
					i += 2
					continue
				}
			}
			out = append(out, strconv.Itoa(tens))
			continue
		}
		if u, ok := spokenUnits[w]; ok {
			out = append(out, strconv.Itoa(u))
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// IsSpokenNumber reports whether w is a number word SpokenToDigits understands.
func IsSpokenNumber(w string) bool {
	_, unit := spokenUnits[w]
	_, tens := spokenTens[w]
	return unit || tens
}

// Distance returns the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Similarity is 1 - distance/maxLen, in [0,1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(maxLen)
}
