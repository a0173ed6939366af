package scheduler

import (
	"context"
	"fmt"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/insights"
	"corralon_backend/platform/config"
	"corralon_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// CatalogRefresher reloads the catalog from upstream into the shared cache.
type CatalogRefresher interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// InsightsCleaner drops insight rows older than a cutoff.
type InsightsCleaner interface {
	CleanupOlderThan(ctx context.Context, age time.Duration) (insights.Removed, error)
}

type Worker struct {
	server           *asynq.Server
	scheduler        *asynq.Scheduler
	mux              *asynq.ServeMux
	catalog          CatalogRefresher
	insights         InsightsCleaner
	defaultRetention int
	log              *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, refresher CatalogRefresher, cleaner InsightsCleaner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:           server,
		scheduler:        asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.Local}),
		mux:              mux,
		catalog:          refresher,
		insights:         cleaner,
		defaultRetention: cfg.GetInsightsRetentionDays(),
		log:              log,
	}

	mux.HandleFunc(TaskCatalogRefresh, w.handleCatalogRefresh)
	mux.HandleFunc(TaskInsightsCleanup, w.handleInsightsCleanup)

	if err := w.registerPeriodic(cfg, queue); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Worker) registerPeriodic(cfg config.SchedulerConfig, queue string) error {
	if spec := cfg.GetCatalogRefreshCron(); spec != "" {
		task, err := NewCatalogRefreshTask(CatalogRefreshPayload{Reason: "periodic"})
		if err != nil {
			return err
		}
		if _, err := w.scheduler.Register(spec, task, asynq.Queue(queue)); err != nil {
			return fmt.Errorf("register catalog refresh %q: %w", spec, err)
		}
	}

	if spec := cfg.GetInsightsCleanupCron(); spec != "" {
		task, err := NewInsightsCleanupTask(InsightsCleanupPayload{RetentionDays: w.defaultRetention})
		if err != nil {
			return err
		}
		if _, err := w.scheduler.Register(spec, task, asynq.Queue(queue)); err != nil {
			return fmt.Errorf("register insights cleanup %q: %w", spec, err)
		}
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.scheduler.Start(); err != nil {
		w.log.Error("periodic scheduler failed to start", "error", err)
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleCatalogRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCatalogRefreshPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	snap, err := w.catalog.Refresh(ctx)
	if err != nil {
		w.log.CollaboratorFailure("catalog", err)
		return err
	}

	w.log.Info("catalog refreshed", "reason", payload.Reason, "items", snap.Len())
	return nil
}

func (w *Worker) handleInsightsCleanup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseInsightsCleanupPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	days := payload.RetentionDays
	if days <= 0 {
		days = w.defaultRetention
	}
	if days <= 0 {
		return nil
	}

	removed, err := w.insights.CleanupOlderThan(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}

	w.log.Info("insights cleaned up", "retention_days", days, "unknown", removed.Unknown, "not_found", removed.NotFound)
	return nil
}
