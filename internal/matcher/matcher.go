// Package matcher resolves one request line against the catalog through a
// cascade of stages, from configured defaults down to fuzzy matching. It
// never picks a variant whose title lacks a distinguishing token the customer
// wrote: numerals and long words must all be present in the candidate.
package matcher

import (
	"sort"
	"strings"
	"sync/atomic"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/clarify"
	"corralon_backend/internal/textnorm"
)

// Matcher is safe for concurrent use.
type Matcher struct {
	th        Thresholds
	norm      *textnorm.Normalizer
	stop      map[string]bool
	loose     map[string]bool
	cats      map[string]*category
	vocab     map[string]bool
	glossary  []glossaryEntry
	minStrong int
	observer  func(Result)

	idx atomic.Pointer[index]
}

type category struct {
	name         string
	brands       [][]string
	defaultTerms []string
}

type glossaryEntry struct {
	key     string
	aliases [][]string
	include []string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithObserver registers a callback invoked with every Match result.
func WithObserver(fn func(Result)) Option {
	return func(m *Matcher) { m.observer = fn }
}

// New prepares the cascade from cfg. Vocabulary is passed through norm so it
// lines up with normalized request text and catalog titles.
func New(cfg Config, norm *textnorm.Normalizer, opts ...Option) *Matcher {
	m := &Matcher{
		th:        cfg.Thresholds.withDefaults(),
		norm:      norm,
		stop:      make(map[string]bool),
		loose:     make(map[string]bool),
		cats:      make(map[string]*category),
		vocab:     make(map[string]bool),
		minStrong: cfg.MinStrongToken,
	}
	if m.minStrong <= 0 {
		m.minStrong = 4
	}
	for _, w := range cfg.Stopwords {
		for _, tok := range textnorm.Tokens(textnorm.Fold(w)) {
			m.stop[textnorm.Singular(tok)] = true
		}
	}
	for _, w := range cfg.PresentationWords {
		for _, tok := range textnorm.Tokens(textnorm.Fold(w)) {
			m.loose[textnorm.Singular(tok)] = true
		}
	}
	for _, c := range cfg.Categories {
		terms := m.terms(c.Name)
		if len(terms) == 0 {
			continue
		}
		cat := &category{name: terms[0], defaultTerms: m.terms(c.Default)}
		for _, b := range c.Brands {
			if bt := m.terms(b); len(bt) > 0 {
				cat.brands = append(cat.brands, bt)
				for _, t := range bt {
					m.vocab[t] = true
				}
			}
		}
		m.cats[cat.name] = cat
		m.vocab[cat.name] = true
	}
	for _, mk := range cfg.SpecMarkers {
		for _, t := range m.terms(mk) {
			if !textnorm.IsNumeral(t) {
				m.vocab[t] = true
			}
		}
	}
	for _, g := range cfg.Glossary {
		entry := glossaryEntry{key: g.Key}
		for _, a := range append([]string{g.Key}, g.Aliases...) {
			if at := m.terms(a); len(at) > 0 {
				entry.aliases = append(entry.aliases, at)
			}
		}
		include := g.Include
		if len(include) == 0 {
			include = []string{g.Key}
		}
		for _, inc := range include {
			entry.include = append(entry.include, m.terms(inc)...)
		}
		m.glossary = append(m.glossary, entry)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// terms normalizes s into deduplicated, singularized content tokens.
func (m *Matcher) terms(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, tok := range textnorm.Tokens(m.norm.Normalize(s)) {
		tok = textnorm.Singular(tok)
		if m.stop[tok] || seen[tok] {
			continue
		}
		if len(tok) < 2 && !textnorm.IsNumeral(tok) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Normalize exposes the normalizer the matcher uses.
func (m *Matcher) Normalize(s string) string {
	return m.norm.Normalize(s)
}

type query struct {
	line    string
	terms   []string
	set     map[string]bool
	strong  []string
	cats    []string
	numeral bool
	generic bool
}

func (m *Matcher) query(line string) query {
	q := query{line: strings.TrimSpace(line), terms: m.terms(line)}
	q.set = toSet(q.terms)
	q.generic = len(q.terms) > 0
	for _, t := range q.terms {
		isNum := textnorm.IsNumeral(t)
		if isNum {
			q.numeral = true
		}
		if isNum || (len(t) >= m.minStrong && !m.loose[t]) {
			q.strong = append(q.strong, t)
		}
		if _, ok := m.cats[t]; ok {
			q.cats = append(q.cats, t)
		}
		if isNum || !m.vocab[t] {
			q.generic = false
		}
	}
	if len(q.cats) == 0 {
		q.generic = false
	}
	return q
}

type entry struct {
	cand   clarify.Candidate
	pos    int
	terms  []string
	set    map[string]bool
	joined string
}

type index struct {
	snap    *catalog.Snapshot
	version uint64
	entries []*entry
}

// index returns the per-variant index of snap, rebuilding it when the snapshot
// or the synonym overrides change.
func (m *Matcher) index(snap *catalog.Snapshot) *index {
	version := m.norm.Version()
	if cur := m.idx.Load(); cur != nil && cur.snap == snap && cur.version == version {
		return cur
	}
	idx := &index{snap: snap, version: version}
	if snap != nil {
		for _, item := range snap.Items {
			for _, v := range item.Variants {
				terms := m.terms(catalog.DisplayTitle(item, v))
				idx.entries = append(idx.entries, &entry{
					cand:   clarify.Candidate{Item: item, Variant: v},
					pos:    len(idx.entries),
					terms:  terms,
					set:    toSet(terms),
					joined: " " + strings.Join(terms, " ") + " ",
				})
			}
		}
	}
	m.idx.Store(idx)
	return idx
}

// Match runs the cascade for one request line (quantity already removed).
func (m *Matcher) Match(line string, snap *catalog.Snapshot, qty float64) Result {
	r := m.match(line, snap, qty, nil)
	if m.observer != nil {
		m.observer(r)
	}
	return r
}

// Explain runs the cascade and records every stage's candidates.
func (m *Matcher) Explain(line string, snap *catalog.Snapshot, qty float64) (Result, *Trace) {
	tr := &Trace{}
	return m.match(line, snap, qty, tr), tr
}

func (m *Matcher) match(line string, snap *catalog.Snapshot, qty float64, tr *Trace) Result {
	q := m.query(line)
	notFound := NotFound{Line: q.line, Qty: qty}
	if tr != nil {
		tr.Normalized = m.norm.Normalize(line)
		tr.Terms = q.terms
	}
	if len(q.terms) == 0 {
		return notFound
	}

	idx := m.index(snap)
	strong := q.strong
	if tr != nil {
		tr.Strong = strong
	}

	if r, ok := m.defaultStage(q, idx, strong, qty, tr); ok {
		return r
	}
	if r, ok := m.genericStage(q, idx, strong, qty, tr); ok {
		return r
	}
	if r, ok := m.strongStage(q, idx, strong, qty, tr); ok {
		return r
	}
	if r, ok := m.glossaryStage(q, idx, strong, qty, tr); ok {
		return r
	}
	if r, ok := m.fallbackStage(q, idx, strong, qty, tr); ok {
		return r
	}
	return notFound
}

// family returns entries belonging to any of the categories, by name or brand.
func (m *Matcher) family(idx *index, cats []string) []*entry {
	var out []*entry
	for _, e := range idx.entries {
		for _, c := range cats {
			if m.inCategory(e, m.cats[c]) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (m *Matcher) inCategory(e *entry, c *category) bool {
	if c == nil {
		return false
	}
	if e.set[c.name] {
		return true
	}
	for _, b := range c.brands {
		if hasAll(e.set, b) {
			return true
		}
	}
	return false
}

func (m *Matcher) defaultStage(q query, idx *index, strong []string, qty float64, tr *Trace) (Result, bool) {
	if len(q.terms) != 1 || len(q.cats) != 1 {
		return nil, false
	}
	cat := m.cats[q.cats[0]]
	if len(cat.defaultTerms) == 0 {
		return nil, false
	}
	var hits []*entry
	for _, e := range hardFilter(idx.entries, strong) {
		if hasAll(e.set, cat.defaultTerms) {
			hits = append(hits, e)
		}
	}
	tr.add(StageDefault, scoredOf(hits, 1))
	if len(hits) != 1 {
		return nil, false
	}
	return m.accept(q, hits[0], qty, StageDefault, 1), true
}

func (m *Matcher) genericStage(q query, idx *index, strong []string, qty float64, tr *Trace) (Result, bool) {
	if !q.generic {
		return nil, false
	}
	cands := m.rank(q, hardFilter(m.family(idx, q.cats), strong))
	tr.add(StageGeneric, cands)
	switch len(cands) {
	case 0:
		return nil, false
	case 1:
		return m.accept(q, cands[0].e, qty, StageGeneric, cands[0].score), true
	default:
		return m.clarify(q, cands, qty, StageGeneric), true
	}
}

func (m *Matcher) strongStage(q query, idx *index, strong []string, qty float64, tr *Trace) (Result, bool) {
	cands := m.rank(q, hardFilter(idx.entries, strong))
	tr.add(StageStrong, cands)
	if len(cands) == 0 || cands[0].score <= m.th.StrongAccept {
		return nil, false
	}
	top := cands[0]
	if len(cands) == 1 || top.score-cands[1].score >= m.th.StrongMargin {
		return m.accept(q, top.e, qty, StageStrong, top.score), true
	}
	// The runner-up is what blocked the accept, so it is always offered.
	band := within(cands, top.score-m.th.TieEpsilon)
	if len(band) < 2 {
		band = cands[:2]
	}
	return m.clarify(q, band, qty, StageStrong), true
}

func (m *Matcher) glossaryStage(q query, idx *index, strong []string, qty float64, tr *Trace) (Result, bool) {
	best := 0.0
	scores := make([]float64, len(m.glossary))
	for i, g := range m.glossary {
		for _, alias := range g.aliases {
			s := jaccard(q.set, toSet(alias))
			if hasAll(q.set, alias) {
				s = max(s, m.th.Containment)
			}
			scores[i] = max(scores[i], s)
		}
		best = max(best, scores[i])
	}
	if best < m.th.GlossaryFloor {
		return nil, false
	}

	include := make(map[string]bool)
	for i, g := range m.glossary {
		if scores[i] >= best-m.th.TieEpsilon {
			for _, t := range g.include {
				include[t] = true
			}
		}
	}
	var expanded []*entry
	for _, e := range idx.entries {
		for t := range include {
			if e.set[t] {
				expanded = append(expanded, e)
				break
			}
		}
	}

	cands := m.rank(q, hardFilter(expanded, strong))
	tr.add(StageGlossary, cands)
	switch len(cands) {
	case 0:
		return nil, false
	case 1:
		return m.accept(q, cands[0].e, qty, StageGlossary, best), true
	default:
		return m.clarify(q, cands, qty, StageGlossary), true
	}
}

func (m *Matcher) fallbackStage(q query, idx *index, strong []string, qty float64, tr *Trace) (Result, bool) {
	var cands []scored
	for _, e := range m.nearFilter(idx.entries, strong) {
		if s := m.fuzzy(q, e); s > 0 {
			cands = append(cands, scored{e: e, score: s})
		}
	}
	sortScored(cands)
	tr.add(StageFallback, cands)
	if len(cands) == 0 || cands[0].score < m.th.FallbackFloor {
		return nil, false
	}
	top := cands[0]
	if len(cands) == 1 || top.score-cands[1].score > m.th.FallbackEpsilon {
		return m.accept(q, top.e, qty, StageFallback, top.score), true
	}
	return m.clarify(q, within(cands, top.score-m.th.FallbackEpsilon), qty, StageFallback), true
}

// fuzzy is a Jaccard score where near-identical long tokens count as shared.
func (m *Matcher) fuzzy(q query, e *entry) float64 {
	matched := 0
	for _, qt := range q.terms {
		if e.set[qt] {
			matched++
			continue
		}
		if textnorm.IsNumeral(qt) || len(qt) < m.minStrong {
			continue
		}
		for _, tt := range e.terms {
			if len(tt) >= m.minStrong && textnorm.Similarity(qt, tt) >= m.th.FuzzyToken {
				matched++
				break
			}
		}
	}
	union := len(q.terms) + len(e.terms) - matched
	if matched == 0 || union <= 0 {
		return 0
	}
	return float64(matched) / float64(union)
}

type scored struct {
	e     *entry
	score float64
}

// rank scores entries by Jaccard overlap, lifting containment to the
// configured containment score, best first and catalog order on ties.
func (m *Matcher) rank(q query, entries []*entry) []scored {
	joined := " " + strings.Join(q.terms, " ") + " "
	out := make([]scored, 0, len(entries))
	for _, e := range entries {
		s := jaccard(q.set, e.set)
		if strings.Contains(e.joined, joined) || strings.Contains(joined, e.joined) {
			s = max(s, m.th.Containment)
		}
		out = append(out, scored{e: e, score: s})
	}
	sortScored(out)
	return out
}

func (m *Matcher) accept(q query, e *entry, qty float64, stage Stage, score float64) Accepted {
	return Accepted{
		Line:    q.line,
		Qty:     qty,
		Item:    e.cand.Item,
		Variant: e.cand.Variant,
		By:      stage,
		Score:   score,
	}
}

func (m *Matcher) clarify(q query, cands []scored, qty float64, stage Stage) Clarify {
	list := make([]clarify.Candidate, 0, len(cands))
	for _, c := range cands {
		cand := c.e.cand
		cand.Score = c.score
		list = append(list, cand)
	}
	return Clarify{
		Clarification: clarify.Build(q.line, list, qty),
		By:            stage,
		Score:         cands[0].score,
	}
}

// Family lists the variants whose titles carry every term of phrase, in
// catalog order. It backs category listings and variant edits.
func (m *Matcher) Family(phrase string, snap *catalog.Snapshot, limit int) []clarify.Candidate {
	terms := m.terms(phrase)
	if len(terms) == 0 {
		return nil
	}
	var out []clarify.Candidate
	for _, e := range m.index(snap).entries {
		if !hasAll(e.set, terms) {
			continue
		}
		out = append(out, e.cand)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Category guesses the family keyword of a title: the first configured
// category it mentions, else its first long word.
func (m *Matcher) Category(title string) string {
	terms := m.terms(title)
	for _, t := range terms {
		if _, ok := m.cats[t]; ok {
			return t
		}
	}
	for _, t := range terms {
		if !textnorm.IsNumeral(t) && len(t) > 3 {
			return t
		}
	}
	return ""
}

// IsCategory reports whether the phrase names a configured category.
func (m *Matcher) IsCategory(phrase string) bool {
	terms := m.terms(phrase)
	if len(terms) != 1 {
		return false
	}
	_, ok := m.cats[terms[0]]
	return ok
}

func hardFilter(entries []*entry, strong []string) []*entry {
	if len(strong) == 0 {
		return entries
	}
	out := make([]*entry, 0, len(entries))
	for _, e := range entries {
		if hasAll(e.set, strong) {
			out = append(out, e)
		}
	}
	return out
}

func within(cands []scored, floor float64) []scored {
	out := cands[:0:0]
	for _, c := range cands {
		if c.score >= floor {
			out = append(out, c)
		}
	}
	return out
}

func sortScored(s []scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].score != s[j].score {
			return s[i].score > s[j].score
		}
		return s[i].e.pos < s[j].e.pos
	})
}

func scoredOf(entries []*entry, score float64) []scored {
	out := make([]scored, len(entries))
	for i, e := range entries {
		out[i] = scored{e: e, score: score}
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func toSet(terms []string) map[string]bool {
	s := make(map[string]bool, len(terms))
	for _, t := range terms {
		s[t] = true
	}
	return s
}

func hasAll(set map[string]bool, terms []string) bool {
	for _, t := range terms {
		if !set[t] {
			return false
		}
	}
	return true
}

// nearFilter is hardFilter for the fallback stage: a word token may also be
// carried as a near-identical title token. Numerals still need an exact hit.
func (m *Matcher) nearFilter(entries []*entry, strong []string) []*entry {
	out := make([]*entry, 0, len(entries))
	for _, e := range entries {
		if m.carriesNear(e, strong) {
			out = append(out, e)
		}
	}
	return out
}

func (m *Matcher) carriesNear(e *entry, strong []string) bool {
	for _, tok := range strong {
		if e.set[tok] {
			continue
		}
		if textnorm.IsNumeral(tok) {
			return false
		}
		near := false
		for _, tt := range e.terms {
			if len(tt) >= m.minStrong && textnorm.Similarity(tok, tt) >= m.th.FuzzyToken {
				near = true
				break
			}
		}
		if !near {
			return false
		}
	}
	return true
}
