// Package textnorm canonicalizes free-form Spanish request text before it is
// segmented and matched against the catalog.
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lexicon holds the static rewrite tables. Keys and values are folded on load.
type Lexicon struct {
	Spelling map[string]string `yaml:"spelling"`
	Synonyms map[string]string `yaml:"synonyms"`
}

// Overrides supplies administrator-managed synonyms. Entries win over the
// static table when both define the same phrase.
type Overrides interface {
	Synonyms() map[string]string
	Version() uint64
}

// maxPasses bounds the fixed-point loop that makes Normalize idempotent when
// table targets are themselves rewritable.
const maxPasses = 4

// Normalizer applies folding, spelling correction and synonym expansion.
// It is safe for concurrent use.
type Normalizer struct {
	spelling  *phraseTable
	static    map[string]string
	overrides Overrides

	mu        sync.Mutex
	synonyms  *phraseTable
	builtFrom uint64
}

// New builds a normalizer from the static lexicon. overrides may be nil.
func New(lex Lexicon, overrides Overrides) *Normalizer {
	static := foldTable(lex.Synonyms)
	n := &Normalizer{
		spelling:  newPhraseTable(foldTable(lex.Spelling)),
		static:    static,
		overrides: overrides,
		synonyms:  newPhraseTable(static),
	}
	if overrides != nil {
		n.synonyms = newPhraseTable(mergeTables(static, foldTable(overrides.Synonyms())))
		n.builtFrom = overrides.Version()
	}
	return n
}

// Version changes whenever the effective synonym table changes. Callers that
// cache normalized catalog titles key their cache on it.
func (n *Normalizer) Version() uint64 {
	if n.overrides == nil {
		return 0
	}
	return n.overrides.Version()
}

func (n *Normalizer) synonymTable() *phraseTable {
	if n.overrides == nil {
		return n.synonyms
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if v := n.overrides.Version(); v != n.builtFrom {
		n.synonyms = newPhraseTable(mergeTables(n.static, foldTable(n.overrides.Synonyms())))
		n.builtFrom = v
	}
	return n.synonyms
}

// Normalize folds s and rewrites misspellings and synonyms with longest-match,
// whole-word semantics. Normalize(Normalize(s)) == Normalize(s).
func (n *Normalizer) Normalize(s string) string {
	syn := n.synonymTable()
	cur := Fold(s)
	for i := 0; i < maxPasses; i++ {
		next := syn.apply(n.spelling.apply(cur))
		if next == cur {
			break
		}
		cur = next
	}
	return cur
}

var diacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks ("cerámica" -> "ceramica").
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacritics, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases, strips diacritics, drops characters outside the allow-list
// and collapses whitespace. Decimal separators and measure slashes survive only
// between digits or letters ("1,5", "6/20", "6-20").
func Fold(s string) string {
	s = StripDiacritics(strings.ToLower(s))
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for i, r := range rs {
		keep := unicode.IsLetter(r) || unicode.IsDigit(r)
		if !keep {
			switch r {
			case '.', ',':
				keep = between(rs, i, unicode.IsDigit)
			case '/', '-':
				keep = between(rs, i, isAlnum)
			}
		}
		if !keep {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimSpace(b.String())
}

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func between(rs []rune, i int, ok func(rune) bool) bool {
	return i > 0 && i < len(rs)-1 && ok(rs[i-1]) && ok(rs[i+1])
}

func foldTable(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		fk, fv := Fold(k), Fold(v)
		if fk == "" || fv == "" || fk == fv {
			continue
		}
		out[fk] = fv
	}
	return out
}

func mergeTables(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// phraseTable rewrites whole-word phrases, longest phrase first.
type phraseTable struct {
	entries map[string][]string
	maxLen  int
}

func newPhraseTable(m map[string]string) *phraseTable {
	t := &phraseTable{entries: make(map[string][]string, len(m))}
	for k, v := range m {
		n := len(strings.Fields(k))
		if n > t.maxLen {
			t.maxLen = n
		}
		t.entries[k] = strings.Fields(v)
	}
	return t
}

// apply rewrites s in a single left-to-right pass. Replacement words that the
// line already contains are skipped, so "pallet ladrillo" is not expanded twice.
func (t *phraseTable) apply(s string) string {
	if len(t.entries) == 0 || s == "" {
		return s
	}
	words := strings.Fields(s)
	out := make([]string, 0, len(words)+2)
	for i := 0; i < len(words); {
		matched := false
		for l := min(t.maxLen, len(words)-i); l >= 1; l-- {
			repl, ok := t.entries[strings.Join(words[i:i+l], " ")]
			if !ok {
				continue
			}
			source := words[i : i+l]
			for _, w := range repl {
				if !contains(source, w) && (containsOutside(words, i, i+l, w) || contains(out, w)) {
					continue
				}
				out = append(out, w)
			}
			i += l
			matched = true
			break
		}
		if !matched {
			out = append(out, words[i])
			i++
		}
	}
	return strings.Join(out, " ")
}

func contains(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func containsOutside(words []string, from, to int, w string) bool {
	for i, x := range words {
		if (i < from || i >= to) && x == w {
			return true
		}
	}
	return false
}
