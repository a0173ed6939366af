package dictionary

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corralon_backend/internal/intent"
	"corralon_backend/internal/textnorm"
	"corralon_backend/platform/apperr"
	"corralon_backend/platform/logger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "test", logger.Discard())
}

func TestSynonymsApplyAfterReload(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	norm := textnorm.New(textnorm.Lexicon{}, s)

	require.NoError(t, s.PutSynonym(ctx, "Fierro", "hierro"))
	assert.Equal(t, "fierro del 8", norm.Normalize("fierro del 8"), "edits apply only after reload")

	before := s.Version()
	require.NoError(t, s.Reload(ctx))
	assert.Greater(t, s.Version(), before)
	assert.Equal(t, "hierro del 8", norm.Normalize("fierro del 8"))
}

func TestPhrasesFollowIntentPrecedence(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutPhrase(ctx, intent.Human, "pasame con juan"))
	require.NoError(t, s.PutPhrase(ctx, intent.View, "como viene"))
	require.NoError(t, s.Reload(ctx))

	k, ok := s.MatchPhrase("che como viene eso")
	require.True(t, ok)
	assert.Equal(t, intent.View, k)

	k, ok = s.MatchPhrase("pasame con juan porfa")
	require.True(t, ok)
	assert.Equal(t, intent.Human, k)

	_, ok = s.MatchPhrase("como vienen")
	assert.False(t, ok, "phrases match on word boundaries")

	c := intent.New(s)
	assert.Equal(t, intent.Human, c.Classify("Pasame con Juan").Kind)
}

func TestValidationAndMissingEntries(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.PutPhrase(ctx, intent.Add, "metele")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = s.PutSynonym(ctx, "arena", "Arena")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = s.DeleteSynonym(ctx, "nada")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, s.PutPhrase(ctx, intent.Confirm, "mandalo ya"))
	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mandalo ya"}, entries.Phrases[string(intent.Confirm)])
	require.NoError(t, s.DeletePhrase(ctx, "Mandalo ya"))
}
