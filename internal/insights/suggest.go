package insights

import (
	"regexp"
	"sort"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/textnorm"
)

const (
	suggestionLimit = 50
	titlesPerTerm   = 3
	minPhraseCount  = 2
)

// Candidate is a catalog title close to an unmatched term.
type Candidate struct {
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// SynonymSuggestion proposes catalog titles for an unmatched term.
type SynonymSuggestion struct {
	Term       string      `json:"term"`
	Count      int         `json:"count"`
	Candidates []Candidate `json:"candidates"`
}

// PhraseSuggestion proposes attaching a repeated unknown message to an intent.
type PhraseSuggestion struct {
	Phrase string      `json:"phrase"`
	Count  int         `json:"count"`
	Intent intent.Kind `json:"intent"`
}

// Suggestions is the training report.
type Suggestions struct {
	Synonyms []SynonymSuggestion `json:"synonyms"`
	Phrases  []PhraseSuggestion  `json:"phrases"`
}

var phraseGuesses = []struct {
	re   *regexp.Regexp
	kind intent.Kind
}{
	{regexp.MustCompile(`\b(mostra|mostrame|ver|estado|resumen|como va)\b`), intent.View},
	{regexp.MustCompile(`\b(cancela|cancelalo|cancelame|cerra|cerralo|chau)\b`), intent.Cancel},
	{regexp.MustCompile(`\b(confirma|confirmame|listo|mandame el pdf|enviar pdf|cerrar presupuesto)\b`), intent.Confirm},
	{regexp.MustCompile(`\b(asesor|humano|me atiende alguien|persona|vendedor)\b`), intent.Human},
	{regexp.MustCompile(`\b(presupuesto|empezar de cero|nuevo|arranquemos|empecemos|hacer otro)\b`), intent.Start},
}

// Suggest ranks catalog titles by Levenshtein similarity for each unmatched
// term, and guesses intents for unknown messages seen at least twice.
func Suggest(unknown []Unknown, notFound []NotFound, snap *catalog.Snapshot) Suggestions {
	var out Suggestions

	counts := map[string]int{}
	for _, nf := range notFound {
		for _, t := range nf.Terms {
			if k := textnorm.Fold(t); k != "" {
				counts[k]++
			}
		}
	}
	titles := foldedTitles(snap)
	for _, t := range sortTally(counts) {
		out.Synonyms = append(out.Synonyms, SynonymSuggestion{
			Term:       t.Value,
			Count:      t.Count,
			Candidates: closest(t.Value, titles),
		})
		if len(out.Synonyms) == suggestionLimit {
			break
		}
	}

	phrases := map[string]int{}
	for _, u := range unknown {
		if k := textnorm.Fold(u.Text); k != "" {
			phrases[k]++
		}
	}
	for _, t := range sortTally(phrases) {
		if t.Count < minPhraseCount {
			break
		}
		for _, g := range phraseGuesses {
			if g.re.MatchString(t.Value) {
				out.Phrases = append(out.Phrases, PhraseSuggestion{Phrase: t.Value, Count: t.Count, Intent: g.kind})
				break
			}
		}
		if len(out.Phrases) == suggestionLimit {
			break
		}
	}
	return out
}

type foldedTitle struct {
	title  string
	folded string
}

func foldedTitles(snap *catalog.Snapshot) []foldedTitle {
	if snap == nil {
		return nil
	}
	out := make([]foldedTitle, 0, len(snap.Items))
	for _, it := range snap.Items {
		out = append(out, foldedTitle{title: it.Title, folded: textnorm.Fold(it.Title)})
	}
	return out
}

func closest(term string, titles []foldedTitle) []Candidate {
	cands := make([]Candidate, 0, len(titles))
	for _, t := range titles {
		cands = append(cands, Candidate{Title: t.title, Similarity: textnorm.Similarity(term, t.folded)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Similarity > cands[j].Similarity })
	if len(cands) > titlesPerTerm {
		cands = cands[:titlesPerTerm]
	}
	return cands
}
