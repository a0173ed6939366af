package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/insights"
	"corralon_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*catalog.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return catalog.NewSnapshot([]catalog.Item{{ID: "1", Title: "Arena"}}, time.Now()), nil
}

type fakeCleaner struct {
	age time.Duration
}

func (f *fakeCleaner) CleanupOlderThan(_ context.Context, age time.Duration) (insights.Removed, error) {
	f.age = age
	return insights.Removed{Unknown: 2, NotFound: 1}, nil
}

func newTestWorker(refresher CatalogRefresher, cleaner InsightsCleaner) *Worker {
	return &Worker{catalog: refresher, insights: cleaner, defaultRetention: 30, log: logger.Discard()}
}

func TestCatalogRefreshTask(t *testing.T) {
	refresher := &fakeRefresher{}
	w := newTestWorker(refresher, &fakeCleaner{})

	task, err := NewCatalogRefreshTask(CatalogRefreshPayload{Reason: "admin"})
	require.NoError(t, err)
	require.NoError(t, w.handleCatalogRefresh(context.Background(), task))
	assert.Equal(t, 1, refresher.calls)

	refresher.err = errors.New("shopify 503")
	assert.Error(t, w.handleCatalogRefresh(context.Background(), task))
}

func TestInsightsCleanupUsesPayloadRetention(t *testing.T) {
	cleaner := &fakeCleaner{}
	w := newTestWorker(&fakeRefresher{}, cleaner)

	task, err := NewInsightsCleanupTask(InsightsCleanupPayload{RetentionDays: 7})
	require.NoError(t, err)
	require.NoError(t, w.handleInsightsCleanup(context.Background(), task))
	assert.Equal(t, 7*24*time.Hour, cleaner.age)

	task, err = NewInsightsCleanupTask(InsightsCleanupPayload{})
	require.NoError(t, err)
	require.NoError(t, w.handleInsightsCleanup(context.Background(), task))
	assert.Equal(t, 30*24*time.Hour, cleaner.age)
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	w := newTestWorker(&fakeRefresher{}, &fakeCleaner{})

	err := w.handleInsightsCleanup(context.Background(), asynq.NewTask(TaskInsightsCleanup, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
