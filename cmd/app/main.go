// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nightapp-server/internal/config"
	"nightapp-server/internal/domain/ports/adapter"
	pg "nightapp-server/internal/infra/db/postgres"
	"nightapp-server/internal/infra/events"
	"nightapp-server/internal/infra/logging"
	"nightapp-server/internal/infra/metrics"
	red "nightapp-server/internal/infra/redis"
	"nightapp-server/internal/infra/sched"
	"nightapp-server/internal/infra/scheduler"
	"nightapp-server/internal/infra/security"
	"nightapp-server/internal/infra/web"
	"nightapp-server/internal/infra/worker"
	"nightapp-server/internal/usecase"
)

// Overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 && cfg.Runtime.Dev {
		logger.Warn().Msg("security.encryption_key not set or not 32 bytes; using dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption init failed")
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	activityRepo := pg.NewActivityRepoCacheDecorator(pg.NewActivityRepo(pool), redisClient)
	qrRepo := pg.NewQRCodeRepo(pool)
	visitRepo := pg.NewVisitRepo(pool)
	ledgerRepo := pg.NewPointsLedgerRepo(pool)
	rewardRepo := pg.NewRewardRepo(pool)
	redemptionRepo := pg.NewRedemptionRepo(pool)
	feedbackRepo := pg.NewFeedbackRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Outbound events ----
	wpool := worker.NewPool(cfg.Events.Workers, cfg.Events.QueueSize, logger)
	wpool.Start(ctx)

	var base adapter.EventPublisher
	if cfg.Events.AMQPURL != "" {
		base = events.NewAMQPPublisher(cfg.Events.AMQPURL, logger)
	} else {
		logger.Info().Msg("events.amqp_url not set; event publishing disabled")
		base = events.NewNoopPublisher()
	}
	publisher := events.NewAsyncPublisher(base, wpool, logger)

	// ---- Use cases ----
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, userRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	visitUC := usecase.NewVisitUseCase(activityRepo, qrRepo, visitRepo, ledgerUC, txManager, publisher, logger)
	activityUC := usecase.NewActivityUseCase(activityRepo, logger)
	qrUC := usecase.NewQRCodeUseCase(qrRepo, userRepo, cfg.QRCode.DefaultTTL, logger)
	rewardUC := usecase.NewRewardUseCase(rewardRepo, redemptionRepo, ledgerUC, txManager, locker, publisher, logger)
	feedbackUC := usecase.NewFeedbackUseCase(feedbackRepo, encSvc, logger)
	statsUC := red.NewStatsCache(
		usecase.NewStatsUseCase(userRepo, visitRepo, ledgerRepo, redemptionRepo, feedbackRepo, logger),
		redisClient,
		cfg.Stats.CacheTTL,
	)

	// ---- HTTP API ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, !cfg.Runtime.Dev, "", cfg.Auth.TokenTTL)
	srv := web.NewServer(web.Config{
		Users:             userUC,
		Visits:            visitUC,
		Activities:        activityUC,
		QRCodes:           qrUC,
		Ledger:            ledgerUC,
		Rewards:           rewardUC,
		Feedback:          feedbackUC,
		Stats:             statsUC,
		Auth:              auth,
		Limiter:           rateLimiter,
		AdminKey:          cfg.Auth.AdminKey,
		RequestTimeout:    cfg.Server.RequestTimeout,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
		DB:                pool,
		Cache:             redisClient,
	}, logger)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.Start(cfg.Server.Port, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Background sweeps ----
	expiry := sched.NewCodeExpiryWorker(cfg.QRCode.SweepInterval, qrUC, logger)
	go func() { _ = expiry.Run(ctx) }()

	poolStats := scheduler.NewScheduler("db_pool_stats", 15*time.Second, func(context.Context) error {
		st := pool.Stat()
		metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		return nil
	}, logger)
	poolStats.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
	poolStats.Stop()
	wpool.Stop()
	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("event publisher close failed")
	}
}
