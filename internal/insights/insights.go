// Package insights records what customers wrote that the bot could not
// handle, so the vocabulary can be tuned offline.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"corralon_backend/internal/textnorm"
	"corralon_backend/platform/logger"
)

// MaxEntries caps each list; older entries are trimmed on write.
const MaxEntries = 2000

// Unknown is a message no rule classified.
type Unknown struct {
	At             time.Time `json:"t"`
	ConversationID string    `json:"conversationId"`
	Text           string    `json:"text"`
}

// NotFound is a set of request terms that matched no product.
type NotFound struct {
	At             time.Time `json:"t"`
	ConversationID string    `json:"conversationId"`
	Terms          []string  `json:"terms"`
}

// Tally counts one normalized text or term.
type Tally struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Removed reports how many entries a cleanup dropped.
type Removed struct {
	Unknown  int `json:"unknown"`
	NotFound int `json:"notFound"`
}

// Recorder writes and reads the two insight lists. Newest entries come first.
type Recorder struct {
	rdb         *redis.Client
	unknownKey  string
	notFoundKey string
	log         *logger.Logger
	now         func() time.Time
}

// NewRecorder returns a recorder writing under "<prefix>:insights:*".
func NewRecorder(rdb *redis.Client, prefix string, log *logger.Logger) *Recorder {
	return &Recorder{
		rdb:         rdb,
		unknownKey:  prefix + ":insights:unknown",
		notFoundKey: prefix + ":insights:notfound",
		log:         log,
		now:         time.Now,
	}
}

// RecordUnknown stores an unclassified message.
func (r *Recorder) RecordUnknown(ctx context.Context, conversationID, text string) error {
	return r.push(ctx, r.unknownKey, Unknown{At: r.now(), ConversationID: conversationID, Text: text})
}

// RecordNotFound stores unmatched request terms.
func (r *Recorder) RecordNotFound(ctx context.Context, conversationID string, terms []string) error {
	if len(terms) == 0 {
		return nil
	}
	return r.push(ctx, r.notFoundKey, NotFound{At: r.now(), ConversationID: conversationID, Terms: terms})
}

func (r *Recorder) push(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, MaxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record insight: %w", err)
	}
	return nil
}

// Unknowns returns up to limit entries, newest first.
func (r *Recorder) Unknowns(ctx context.Context, limit int) ([]Unknown, error) {
	return readList[Unknown](ctx, r, r.unknownKey, limit)
}

// NotFounds returns up to limit entries, newest first.
func (r *Recorder) NotFounds(ctx context.Context, limit int) ([]NotFound, error) {
	return readList[NotFound](ctx, r, r.notFoundKey, limit)
}

func readList[T any](ctx context.Context, r *Recorder, key string, limit int) ([]T, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	rows, err := r.rdb.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read insights: %w", err)
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal([]byte(row), &v); err != nil {
			r.log.Warn("skipping malformed insight", "key", key, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// UnknownTally counts unknown messages by folded text, most frequent first.
func (r *Recorder) UnknownTally(ctx context.Context, limit int) ([]Tally, error) {
	rows, err := r.Unknowns(ctx, limit)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, u := range rows {
		if k := textnorm.Fold(u.Text); k != "" {
			counts[k]++
		}
	}
	return sortTally(counts), nil
}

// NotFoundTally counts unmatched terms by folded text, most frequent first.
func (r *Recorder) NotFoundTally(ctx context.Context, limit int) ([]Tally, error) {
	rows, err := r.NotFounds(ctx, limit)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, nf := range rows {
		for _, t := range nf.Terms {
			if k := textnorm.Fold(t); k != "" {
				counts[k]++
			}
		}
	}
	return sortTally(counts), nil
}

func sortTally(counts map[string]int) []Tally {
	out := make([]Tally, 0, len(counts))
	for v, c := range counts {
		out = append(out, Tally{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// CleanupOlderThan drops entries older than the given age from both lists,
// keeping the remaining entries in their original order.
func (r *Recorder) CleanupOlderThan(ctx context.Context, age time.Duration) (Removed, error) {
	cutoff := r.now().Add(-age)
	u, err := r.cleanup(ctx, r.unknownKey, cutoff)
	if err != nil {
		return Removed{}, err
	}
	nf, err := r.cleanup(ctx, r.notFoundKey, cutoff)
	if err != nil {
		return Removed{}, err
	}
	return Removed{Unknown: u, NotFound: nf}, nil
}

func (r *Recorder) cleanup(ctx context.Context, key string, cutoff time.Time) (int, error) {
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("read insights: %w", err)
	}
	kept := make([]any, 0, len(rows))
	for _, row := range rows {
		var stamp struct {
			At time.Time `json:"t"`
		}
		if err := json.Unmarshal([]byte(row), &stamp); err != nil {
			continue
		}
		if !stamp.At.Before(cutoff) {
			kept = append(kept, row)
		}
	}
	removed := len(rows) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(kept) > 0 {
		pipe.RPush(ctx, key, kept...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rewrite insights: %w", err)
	}
	return removed, nil
}

// Clear drops both lists.
func (r *Recorder) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.unknownKey, r.notFoundKey).Err(); err != nil {
		return fmt.Errorf("clear insights: %w", err)
	}
	return nil
}
