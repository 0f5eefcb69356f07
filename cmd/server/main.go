package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Nishanthpaka11/TinyLink/config"
	appmodel "github.com/Nishanthpaka11/TinyLink/internal/app/model"
	apprepository "github.com/Nishanthpaka11/TinyLink/internal/app/repository"
	appresolver "github.com/Nishanthpaka11/TinyLink/internal/app/resolver"
	appserver "github.com/Nishanthpaka11/TinyLink/internal/app/server"
	appservice "github.com/Nishanthpaka11/TinyLink/internal/app/service"
	"github.com/Nishanthpaka11/TinyLink/internal/infra/logger"
	infraNATS "github.com/Nishanthpaka11/TinyLink/internal/infra/nats"
	infraPostgres "github.com/Nishanthpaka11/TinyLink/internal/infra/postgres"
	infraPrometheus "github.com/Nishanthpaka11/TinyLink/internal/infra/prometheus"
	infraRedis "github.com/Nishanthpaka11/TinyLink/internal/infra/redis"
)

const clickPendingTTL = 5 * time.Minute

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

	log.Info("Configuration loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
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

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}, &appmodel.ClickEvent{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS", zap.Bool("jetstream_ready", js != nil))

	linkRepo := apprepository.NewLinkRepository(gormDB)
	clickRepo := apprepository.NewClickEventRepository(gormDB)

	codeFilter := appservice.NewCodeFilter()
	seeded, err := codeFilter.Seed(ctx, gormDB)
	if err != nil {
		log.Fatal("Failed to seed code filter", zap.Error(err))
	}
	log.Info("Seeded code filter", zap.Int("codes", seeded))

	resolverTimeout, err := time.ParseDuration(cfg.Resolver.Timeout)
	if err != nil {
		log.Fatal("Invalid resolver timeout", zap.String("timeout", cfg.Resolver.Timeout), zap.Error(err))
	}

	linkService := appservice.NewLinkService(
		linkRepo,
		appservice.NewCodeAllocator(linkRepo, cfg.Allocator.MaxAttempts),
		appresolver.NewDNS(resolverTimeout),
		codeFilter,
	)
	clickPublisher := appservice.NewClickPublisher(js, clickRepo)

	clickConsumer := appservice.NewClickConsumer(js, log, clickRepo)
	if err := clickConsumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}

	clickJanitor := appservice.NewClickJanitor(log, clickRepo, clickPendingTTL)
	clickJanitor.Start()
	defer clickJanitor.Stop()

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.String("addr", promServer.Addr))
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

	server := appserver.New(appserver.Dependencies{
		Logger:         log,
		Postgres:       pool,
		Redis:          redisClient,
		LinkService:    linkService,
		ClickPublisher: clickPublisher,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Listening", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
