// Package dictionary holds the runtime overrides an administrator can edit
// without a deploy: extra synonyms for the normalizer and extra phrases for
// the navigation intents. Edits go to Redis; Reload swaps the in-memory copy
// the matcher and classifier read.
package dictionary

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"corralon_backend/internal/intent"
	"corralon_backend/internal/textnorm"
	"corralon_backend/platform/apperr"
	"corralon_backend/platform/logger"
)

// Entries is a listing of both override tables.
type Entries struct {
	Synonyms map[string]string   `json:"synonyms"`
	Phrases  map[string][]string `json:"phrases"`
}

// Store implements textnorm.Overrides and intent.PhraseSource.
type Store struct {
	rdb         *redis.Client
	synonymsKey string
	phrasesKey  string
	log         *logger.Logger

	mu       sync.RWMutex
	synonyms map[string]string
	phrases  map[intent.Kind][]string
	version  atomic.Uint64
}

// New returns an empty store. Call Reload to load the persisted tables.
func New(rdb *redis.Client, prefix string, log *logger.Logger) *Store {
	return &Store{
		rdb:         rdb,
		synonymsKey: prefix + ":dict:synonyms",
		phrasesKey:  prefix + ":dict:phrases",
		log:         log,
		synonyms:    map[string]string{},
		phrases:     map[intent.Kind][]string{},
	}
}

// Synonyms returns the current override table. Callers must not modify it.
func (s *Store) Synonyms() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synonyms
}

// Version changes every time Reload installs new tables.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// MatchPhrase reports the first dynamic intent with a phrase contained, on
// word boundaries, in folded.
func (s *Store) MatchPhrase(folded string) (intent.Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	padded := " " + folded + " "
	for _, k := range intent.DynamicKinds {
		for _, p := range s.phrases[k] {
			if strings.Contains(padded, " "+p+" ") {
				return k, true
			}
		}
	}
	return "", false
}

// Reload reads both tables from Redis and installs them.
func (s *Store) Reload(ctx context.Context) error {
	syn, err := s.rdb.HGetAll(ctx, s.synonymsKey).Result()
	if err != nil {
		return fmt.Errorf("load synonyms: %w", err)
	}
	raw, err := s.rdb.HGetAll(ctx, s.phrasesKey).Result()
	if err != nil {
		return fmt.Errorf("load phrases: %w", err)
	}

	phrases := make(map[intent.Kind][]string)
	for phrase, kind := range raw {
		phrases[intent.Kind(kind)] = append(phrases[intent.Kind(kind)], phrase)
	}
	for k := range phrases {
		slices.Sort(phrases[k])
	}

	s.mu.Lock()
	s.synonyms = syn
	s.phrases = phrases
	s.mu.Unlock()
	s.version.Add(1)

	s.log.Info("dictionary reloaded", "synonyms", len(syn), "phrases", len(raw))
	return nil
}

// List returns the persisted tables, which may be ahead of the loaded ones.
func (s *Store) List(ctx context.Context) (Entries, error) {
	syn, err := s.rdb.HGetAll(ctx, s.synonymsKey).Result()
	if err != nil {
		return Entries{}, fmt.Errorf("list synonyms: %w", err)
	}
	raw, err := s.rdb.HGetAll(ctx, s.phrasesKey).Result()
	if err != nil {
		return Entries{}, fmt.Errorf("list phrases: %w", err)
	}
	out := Entries{Synonyms: syn, Phrases: map[string][]string{}}
	for phrase, kind := range raw {
		out.Phrases[kind] = append(out.Phrases[kind], phrase)
	}
	for k := range out.Phrases {
		slices.Sort(out.Phrases[k])
	}
	return out, nil
}

// PutSynonym persists a rewrite from one phrase to another.
func (s *Store) PutSynonym(ctx context.Context, from, to string) error {
	f, t := textnorm.Fold(from), textnorm.Fold(to)
	if f == "" || t == "" {
		return apperr.Validation("synonym needs both sides")
	}
	if f == t {
		return apperr.Validation("synonym maps a phrase onto itself")
	}
	return s.rdb.HSet(ctx, s.synonymsKey, f, t).Err()
}

// DeleteSynonym removes a rewrite.
func (s *Store) DeleteSynonym(ctx context.Context, from string) error {
	n, err := s.rdb.HDel(ctx, s.synonymsKey, textnorm.Fold(from)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("synonym not found")
	}
	return nil
}

// PutPhrase attaches a phrase to one of the dynamic intents.
func (s *Store) PutPhrase(ctx context.Context, kind intent.Kind, phrase string) error {
	if !slices.Contains(intent.DynamicKinds, kind) {
		return apperr.Validation("intent does not accept phrases").WithDetails(map[string]any{"allowed": intent.DynamicKinds})
	}
	p := textnorm.Fold(phrase)
	if p == "" {
		return apperr.Validation("phrase is empty")
	}
	return s.rdb.HSet(ctx, s.phrasesKey, p, string(kind)).Err()
}

// DeletePhrase detaches a phrase.
func (s *Store) DeletePhrase(ctx context.Context, phrase string) error {
	n, err := s.rdb.HDel(ctx, s.phrasesKey, textnorm.Fold(phrase)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("phrase not found")
	}
	return nil
}
