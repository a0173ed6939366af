package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corralon_backend/internal/adapters/storage"
	"corralon_backend/internal/auth"
	"corralon_backend/internal/catalog"
	"corralon_backend/internal/conversation"
	"corralon_backend/internal/dictionary"
	"corralon_backend/internal/email"
	"corralon_backend/internal/events"
	apphttp "corralon_backend/internal/http"
	"corralon_backend/internal/http/router"
	"corralon_backend/internal/inbound"
	"corralon_backend/internal/inbox"
	"corralon_backend/internal/insights"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/matcher"
	"corralon_backend/internal/media"
	"corralon_backend/internal/notification"
	"corralon_backend/internal/order"
	"corralon_backend/internal/quotes"
	quotesvc "corralon_backend/internal/quotes/service"
	"corralon_backend/internal/scheduler"
	"corralon_backend/internal/session"
	"corralon_backend/internal/textnorm"
	"corralon_backend/internal/vocab"
	"corralon_backend/internal/whatsapp"
	"corralon_backend/platform/config"
	"corralon_backend/platform/db"
	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/logger"
	"corralon_backend/platform/metrics"
	"corralon_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	businessTimezone = "America/Argentina/Buenos_Aires"
	shutdownTimeout  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	rdb, err := newRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		return err
	}

	health := map[string]apphttp.HealthChecker{"redis": redisPinger{rdb}}

	var pool *pgxpool.Pool
	if cfg.GetDatabaseURL() != "" {
		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			return err
		}
		defer pool.Close()

		if err := db.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("database migrations: %w", err)
		}
		health["database"] = db.NewPoolAdapter(pool)
		log.Info("database ready")
	} else {
		log.Warn("DATABASE_URL not configured; finalized quotes will not be persisted")
	}

	var store storage.DocumentStore
	if cfg.IsMinIOEnabled() {
		minio, err := storage.NewMinIOService(cfg)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		if err := withRetry(ctx, log, "ensure quote bucket", 5, 2*time.Second, func() error {
			return minio.EnsureBucket(ctx)
		}); err != nil {
			return err
		}
		store = minio
		log.Info("storage service initialized", "bucket", cfg.GetMinioBucketQuotePDFs())
	}

	m := metrics.New()
	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	prefix := cfg.GetRedisKeyPrefix()

	// ========================================================================
	// Quoting Core
	// ========================================================================

	vocabulary, err := vocab.Load(cfg.GetMatcherConfigPath())
	if err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}

	dict := dictionary.New(rdb, prefix, log)
	if err := dict.Reload(ctx); err != nil {
		log.Warn("dictionary overrides not loaded", "error", err)
	}

	norm := textnorm.New(vocabulary.Lexicon, dict)
	match := matcher.New(vocabulary.Matcher, norm, matcher.WithObserver(func(r matcher.Result) {
		m.MatchOutcome(r.Outcome(), string(r.Stage()))
	}))
	discounts := order.Discounts{Cash: cfg.GetCashDiscount(), Transfer: cfg.GetTransferDiscount()}
	engine := conversation.NewEngine(match, intent.New(dict), vocabulary, conversation.Settings{
		BusinessName: cfg.GetBusinessName(),
		Discounts:    discounts,
		ValidityDays: cfg.GetQuoteValidityDays(),
	})

	catalogCache := catalog.NewCache(catalogProvider(cfg), rdb, prefix, cfg.GetCatalogCacheTTL(), log)
	if _, err := catalogCache.Snapshot(ctx); err != nil {
		log.Warn("catalog warm-up failed; will retry on first message", "error", err)
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(email.NewSender(cfg, cfg.GetBusinessName()), cfg.GetSalesInbox(), log)
	notificationModule.RegisterHandlers(eventBus)

	quotesModule := quotes.NewModule(pool, store, eventBus, quotesvc.Settings{
		BusinessName: cfg.GetBusinessName(),
		Discounts:    discounts,
		Location:     businessLocation(log),
	}, val, log)

	recorder := insights.NewRecorder(rdb, prefix, log)

	reader, err := media.NewReader(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("image reader: %w", err)
	}

	dispatcher := inbox.New(context.WithoutCancel(ctx), log)
	inboundModule := inbound.NewModule(inbound.Deps{
		Engine:      engine,
		Sessions:    session.NewStore(rdb, prefix, cfg.GetSessionTTL()),
		Catalog:     catalogCache,
		Gateway:     whatsapp.NewClient(cfg, log),
		Transcriber: media.NewTranscriber(cfg, log),
		Images:      reader,
		Quotes:      quotesModule.Service(),
		Insights:    recorder,
		Bus:         eventBus,
		Limiter:     httpkit.NewKeyedRateLimiter(rate.Limit(cfg.GetInboundRatePerMinute()/60), cfg.GetInboundBurst(), log),
		Dispatcher:  dispatcher,
		Metrics:     m,
		Region:      cfg.GetPhoneRegion(),
	}, cfg.GetWebhookSecret(), val, log)

	var enqueuer catalog.RefreshEnqueuer
	if client, err := scheduler.NewClient(cfg); err != nil {
		log.Warn("scheduler client unavailable; catalog refresh runs inline", "error", err)
	} else {
		defer func() { _ = client.Close() }()
		enqueuer = client
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  health,
		Metrics: m,
		Modules: []apphttp.Module{
			auth.NewModule(cfg, val, log),
			inboundModule,
			quotesModule,
			insights.NewModule(recorder, catalogCache, val),
			dictionary.NewModule(dict, val),
			catalog.NewModule(catalogCache, enqueuer),
		},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if derr := dispatcher.Close(shutdownCtx); derr != nil {
			log.Warn("inbox did not drain", "error", derr)
		}
		eventBus.Wait()
		return err
	})
	return g.Wait()
}

func catalogProvider(cfg config.CatalogConfig) catalog.Provider {
	if cfg.GetShopifyShopURL() != "" {
		return catalog.NewShopifyProvider(cfg)
	}
	return catalog.NewFileProvider(cfg.GetCatalogFile())
}

func businessLocation(log *logger.Logger) *time.Location {
	loc, err := time.LoadLocation(businessTimezone)
	if err != nil {
		log.Warn("timezone not available, using local time", "tz", businessTimezone, "error", err)
		return time.Local
	}
	return loc
}

func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
