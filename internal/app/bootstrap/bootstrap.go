package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	audittrail "warden/contexts/moderation-safety/audit-trail"
	auditpostgres "warden/contexts/moderation-safety/audit-trail/adapters/postgres"
	moderationpipeline "warden/contexts/moderation-safety/moderation-pipeline"
	"warden/contexts/moderation-safety/moderation-pipeline/adapters/classifier"
	pipelinememory "warden/contexts/moderation-safety/moderation-pipeline/adapters/memory"
	pipelinepostgres "warden/contexts/moderation-safety/moderation-pipeline/adapters/postgres"
	redisadapter "warden/contexts/moderation-safety/moderation-pipeline/adapters/redis"
	pipelineports "warden/contexts/moderation-safety/moderation-pipeline/ports"
	strikeledger "warden/contexts/moderation-safety/strike-ledger"
	ledgerpostgres "warden/contexts/moderation-safety/strike-ledger/adapters/postgres"
	"warden/internal/platform/cache"
	"warden/internal/platform/config"
	"warden/internal/platform/db"
	"warden/internal/platform/httpserver"
	"warden/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	classifierMaxRetries     = 2
	classifierRetryBaseDelay = 250 * time.Millisecond
	sweepBatchSize           = 100
	shutdownTimeout          = 15 * time.Second
)

type APIApp struct {
	server *httpserver.Server
	infra  *infrastructure
	logger *slog.Logger
}

type WorkerApp struct {
	pipeline moderationpipeline.Module
	ledger   strikeledger.Module
	infra    *infrastructure
	cfg      config.Config
	logger   *slog.Logger
}

type infrastructure struct {
	postgres *db.Postgres
	redis    *cache.Redis
	bus      *messaging.Kafka
}

func (i *infrastructure) Close() error {
	var errs []error
	if i.bus != nil {
		errs = append(errs, i.bus.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	if i.postgres != nil {
		errs = append(errs, i.postgres.Close())
	}
	return errors.Join(errs...)
}

type modules struct {
	pipeline moderationpipeline.Module
	ledger   strikeledger.Module
	audit    audittrail.Module
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.AuthJWTSecret) == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	infra, built, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		built.pipeline,
		built.ledger,
		built.audit,
		httpserver.NewAuthenticator(cfg.AuthJWTSecret),
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{server: server, infra: infra, logger: logger}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening",
			"event", "api_listening",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errCh
}

func (a *APIApp) Close() error {
	return a.infra.Close()
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	infra, built, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &WorkerApp{
		pipeline: built.pipeline,
		ledger:   built.ledger,
		infra:    infra,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Run starts every enabled background job and blocks until ctx is cancelled.
// A failing iteration is logged and retried on the next tick.
func (w *WorkerApp) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if w.cfg.EnableAssetConsumer {
		group.Go(func() error {
			if err := w.pipeline.AssetConsumer.Start(groupCtx); err != nil {
				return err
			}
			<-groupCtx.Done()
			return nil
		})
	}

	group.Go(func() error {
		w.every(groupCtx, "outbox_relay", w.cfg.WorkerPollInterval, false, func(ctx context.Context) error {
			return w.pipeline.OutboxRelay.RunOnce(ctx)
		})
		return nil
	})

	if w.cfg.EnableStaleUploadScan {
		group.Go(func() error {
			w.every(groupCtx, "stale_upload_scan", w.cfg.WorkerPollInterval, true, func(ctx context.Context) error {
				_, err := w.pipeline.StaleReaper.RunOnce(ctx)
				return err
			})
			return nil
		})
	}

	if w.cfg.EnableBanExpirySweep {
		group.Go(func() error {
			w.every(groupCtx, "ban_expiry_sweep", w.cfg.BanSweepInterval, true, func(ctx context.Context) error {
				_, err := w.ledger.Sweep.RunOnce(ctx)
				return err
			})
			return nil
		})
	}

	w.logger.Info("worker started",
		"event", "worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"asset_consumer", w.cfg.EnableAssetConsumer,
		"stale_upload_scan", w.cfg.EnableStaleUploadScan,
		"ban_expiry_sweep", w.cfg.EnableBanExpirySweep,
	)
	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (w *WorkerApp) every(
	ctx context.Context,
	job string,
	interval time.Duration,
	runImmediately bool,
	fn func(context.Context) error,
) {
	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("worker iteration failed",
				"event", "worker_iteration_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"job", job,
				"error", err.Error(),
			)
		}
	}
	if runImmediately {
		run()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

func (w *WorkerApp) Close() error {
	return w.infra.Close()
}

func buildModules(cfg config.Config, logger *slog.Logger) (*infrastructure, modules, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, modules{}, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, modules{}, err
	}
	infra := &infrastructure{postgres: pg}

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	models := append(auditpostgres.Models(), pipelinepostgres.Models()...)
	models = append(models, ledgerpostgres.Models()...)
	if err := pg.Migrate(migrateCtx, models...); err != nil {
		_ = infra.Close()
		return nil, modules{}, err
	}

	var lease pipelineports.RunLease
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = infra.Close()
			return nil, modules{}, err
		}
		infra.redis = rdb
		lease = redisadapter.NewLease(rdb.Client)
	} else {
		logger.Warn("REDIS_ADDR not set; run leases are process-local",
			"event", "lease_fallback_memory",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		lease = pipelinememory.NewStore()
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = infra.Close()
		return nil, modules{}, err
	}
	infra.bus = bus

	audit := audittrail.NewModule(audittrail.Dependencies{
		Repository:  auditpostgres.NewRepository(pg.DB, logger),
		Clock:       auditpostgres.SystemClock{},
		IDGenerator: auditpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	ledger := strikeledger.NewModule(strikeledger.Dependencies{
		Ledger:              ledgerpostgres.NewRepository(pg.DB, logger),
		Principals:          ledgerpostgres.NewPrincipalStore(pg.DB),
		Notifications:       ledgerpostgres.NewNotificationStore(pg.DB),
		Audit:               ledgerAuditClient{service: audit.Service},
		Clock:               ledgerpostgres.SystemClock{},
		IDGenerator:         ledgerpostgres.UUIDGenerator{},
		WarningBanThreshold: cfg.WarningBanThreshold,
		BanDuration:         cfg.BanDuration,
		SweepBatchSize:      sweepBatchSize,
		SweepConcurrency:    cfg.BanSweepConcurrency,
		Logger:              logger,
	})

	classifierHTTP := &http.Client{Timeout: cfg.ImageClassifierTimeout + 5*time.Second}
	pipelineRepo := pipelinepostgres.NewRepository(pg.DB, logger)
	pipeline := moderationpipeline.NewModule(moderationpipeline.Dependencies{
		Assets: pipelineRepo,
		Outbox: pipelineRepo,
		Lease:  lease,
		Text: classifier.TextClient{
			URL:            cfg.TextClassifierURL,
			APIKey:         cfg.TextClassifierAPIKey,
			DenyKeywords:   cfg.TextDenyKeywords,
			HTTPClient:     classifierHTTP,
			MaxRetries:     classifierMaxRetries,
			RetryBaseDelay: classifierRetryBaseDelay,
			Logger:         logger,
		},
		Image: classifier.ImageClient{
			BaseURL:        cfg.ImageClassifierURL,
			APIKey:         cfg.ImageClassifierAPIKey,
			Model:          cfg.ImageClassifierModel,
			Threshold:      cfg.ImageConfidenceThreshold,
			HTTPClient:     classifierHTTP,
			MaxRetries:     classifierMaxRetries,
			RetryBaseDelay: classifierRetryBaseDelay,
			Logger:         logger,
		},
		Strikes:          strikeClient{recordWarning: ledger.RecordWarning},
		Audit:            pipelineAuditClient{service: audit.Service},
		Subscriber:       bus,
		Publisher:        bus,
		Clock:            pipelinepostgres.SystemClock{},
		IDGenerator:      pipelinepostgres.UUIDGenerator{},
		TextTimeout:      cfg.TextClassifierTimeout,
		ImageTimeout:     cfg.ImageClassifierTimeout,
		StaleUploadAfter: cfg.StaleUploadAfter,
		Logger:           logger,
	})

	return infra, modules{pipeline: pipeline, ledger: ledger, audit: audit}, nil
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
