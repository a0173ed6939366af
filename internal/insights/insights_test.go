package insights

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/intent"
	"corralon_backend/platform/logger"
)

func newRecorder(t *testing.T) (*Recorder, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	r := NewRecorder(rdb, "test", logger.Discard())
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRecordAndTally(t *testing.T) {
	r, _ := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.RecordUnknown(ctx, "a", "Qué onda?"))
	require.NoError(t, r.RecordUnknown(ctx, "b", "que onda"))
	require.NoError(t, r.RecordUnknown(ctx, "b", "jaja"))
	require.NoError(t, r.RecordNotFound(ctx, "a", []string{"Vigueta", "fenolico"}))
	require.NoError(t, r.RecordNotFound(ctx, "b", []string{"vigueta"}))
	require.NoError(t, r.RecordNotFound(ctx, "b", nil))

	rows, err := r.Unknowns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "jaja", rows[0].Text, "newest first")

	tally, err := r.UnknownTally(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, Tally{Value: "que onda", Count: 2}, tally[0])

	nf, err := r.NotFoundTally(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []Tally{{Value: "vigueta", Count: 2}, {Value: "fenolico", Count: 1}}, nf)
}

func TestListsAreCapped(t *testing.T) {
	r, _ := newRecorder(t)
	ctx := context.Background()
	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, r.RecordUnknown(ctx, "a", "x"))
	}
	n, err := r.rdb.LLen(ctx, r.unknownKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(MaxEntries), n)
}

func TestCleanupKeepsOrder(t *testing.T) {
	r, now := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.RecordUnknown(ctx, "a", "viejo"))
	*now = now.Add(40 * 24 * time.Hour)
	require.NoError(t, r.RecordUnknown(ctx, "a", "uno"))
	require.NoError(t, r.RecordUnknown(ctx, "a", "dos"))

	removed, err := r.CleanupOlderThan(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, Removed{Unknown: 1}, removed)

	rows, err := r.Unknowns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "dos", rows[0].Text)
	assert.Equal(t, "uno", rows[1].Text)
}

func TestSuggest(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.Item{
		{ID: "1", Title: "Vigueta Pretensada"},
		{ID: "2", Title: "Cemento"},
		{ID: "3", Title: "Cal Hidratada"},
		{ID: "4", Title: "Arena"},
	}, time.Now())

	got := Suggest(
		[]Unknown{{Text: "mostrame como va"}, {Text: "Mostrame como va"}, {Text: "hola"}},
		[]NotFound{{Terms: []string{"cemeto"}}},
		snap,
	)

	require.Len(t, got.Synonyms, 1)
	assert.Equal(t, "cemeto", got.Synonyms[0].Term)
	require.Len(t, got.Synonyms[0].Candidates, titlesPerTerm)
	assert.Equal(t, "Cemento", got.Synonyms[0].Candidates[0].Title)

	require.Len(t, got.Phrases, 1)
	assert.Equal(t, intent.View, got.Phrases[0].Intent)
	assert.Equal(t, 2, got.Phrases[0].Count)
}
