// Package session persists conversation state in Redis with a sliding TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"corralon_backend/internal/conversation"
)

// DefaultTTL applies when the configured TTL is not positive.
const DefaultTTL = 24 * time.Hour

// Store keeps one JSON document per conversation.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore returns a store writing under "<prefix>:session:<id>".
func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) key(conversationID string) string {
	return s.prefix + ":session:" + conversationID
}

// Get loads the state. ok is false when none is stored or it expired.
func (s *Store) Get(ctx context.Context, conversationID string) (conversation.State, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return conversation.State{}, false, nil
	}
	if err != nil {
		return conversation.State{}, false, fmt.Errorf("get session: %w", err)
	}
	var st conversation.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return conversation.State{}, false, fmt.Errorf("decode session: %w", err)
	}
	return st, true, nil
}

// Set stores the state and renews the TTL.
func (s *Store) Set(ctx context.Context, conversationID string, st conversation.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Clear removes the state.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	if err := s.rdb.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
