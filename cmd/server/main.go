package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/qrtrail/qrtrail/config"
	appmodel "github.com/qrtrail/qrtrail/internal/app/model"
	apprepository "github.com/qrtrail/qrtrail/internal/app/repository"
	appserver "github.com/qrtrail/qrtrail/internal/app/server"
	appservice "github.com/qrtrail/qrtrail/internal/app/service"
	"github.com/qrtrail/qrtrail/internal/infra/logger"
	infraNATS "github.com/qrtrail/qrtrail/internal/infra/nats"
	infraPostgres "github.com/qrtrail/qrtrail/internal/infra/postgres"
	infraPrometheus "github.com/qrtrail/qrtrail/internal/infra/prometheus"
	infraRedis "github.com/qrtrail/qrtrail/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
		zap.String("geo_endpoint", cfg.Geo.Endpoint),
		zap.String("cleanup_schedule", cfg.Cleanup.Schedule),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.QRCode{}, &appmodel.ScanEvent{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	codeRepo := apprepository.NewQRCodeRepository(gormDB)
	scanRepo := apprepository.NewScanEventRepository(gormDB)
	guestStatsRepo := apprepository.NewGuestStatsRepository(pool)

	codeCache := infraRedis.NewCodeCache(redisClient, 0)
	resolver := appservice.NewResolver(log, codeRepo, codeCache)
	geo := appservice.NewGeoEnricher(log, cfg.Geo.Endpoint, cfg.Geo.Timeout)
	scanPublisher := appservice.NewScanPublisher(js, log, geo)
	analytics := appservice.NewAnalyticsAggregator(log, codeRepo, scanRepo)
	cleanup := appservice.NewCleanupService(log, codeRepo, scanRepo, cfg.Cleanup.BatchSize)

	recorder := appservice.NewScanRecorder(js, log, scanRepo, codeRepo)
	if err := recorder.Start(); err != nil {
		log.Fatal("Failed to start scan recorder", zap.Error(err))
	}

	scheduler, err := appservice.NewCleanupScheduler(log, cleanup, cfg.Cleanup.Schedule)
	if err != nil {
		log.Fatal("Failed to build cleanup scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := appserver.New(appserver.Dependencies{
		Logger:     log,
		Postgres:   pool,
		Redis:      redisClient,
		NATS:       natsConn,
		JetStream:  js,
		Resolver:   resolver,
		Scans:      scanPublisher,
		Analytics:  analytics,
		Cleanup:    cleanup,
		GuestStats: guestStatsRepo,
	})

	if err := server.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
