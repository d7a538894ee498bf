package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/artifactstore"
	"github.com/naija-watch/conflict-monitor/internal/bus"
	"github.com/naija-watch/conflict-monitor/internal/config"
	"github.com/naija-watch/conflict-monitor/internal/docstore"
	"github.com/naija-watch/conflict-monitor/internal/health"
	"github.com/naija-watch/conflict-monitor/internal/ingestion"
	"github.com/naija-watch/conflict-monitor/internal/scheduler"
	"github.com/naija-watch/conflict-monitor/internal/server"
	"github.com/naija-watch/conflict-monitor/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})
	log.Info().Msg("starting ingestion service")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	db, err := docstore.New(docstore.Config{Path: cfg.DocStoreURL, Profile: docstore.ProfileStandard})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open document store")
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate document store")
	}

	var mirror artifactstore.Mirror
	if cfg.UsesS3Mirror() {
		m, err := artifactstore.NewS3Mirror(context.Background(), artifactstore.S3MirrorConfig{
			Bucket:          cfg.ArtifactS3Bucket,
			Prefix:          cfg.ArtifactS3Prefix,
			Region:          cfg.ArtifactS3Region,
			Endpoint:        cfg.ArtifactS3Endpoint,
			AccessKeyID:     cfg.ArtifactS3AccessKey,
			SecretAccessKey: cfg.ArtifactS3SecretKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize artifact mirror")
		}
		mirror = m
	}

	store, err := artifactstore.New(cfg.ArtifactDir, mirror, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize artifact store")
	}

	msgBus := bus.New(bus.Config{Addr: cfg.MsgBusURL}, log)
	defer msgBus.Close()

	articles := docstore.NewArticleRepo(db)
	svc := ingestion.New(ingestion.Config{
		FetchConcurrency:  cfg.MaxConcurrentProcessing,
		FetchTimeout:      time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		HighRiskThreshold: cfg.HighRiskThreshold,
	}, []ingestion.Fetcher{ingestion.NewDemoFetcher()}, articles, msgBus, store, log)

	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := sched.AddJob(cfg.Schedule, svc); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule ingestion job")
	}
	reconcile := ingestion.NewReconcileJob(svc, 100)
	if err := sched.AddJob("*/5 * * * *", reconcile); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule reconciliation job")
	}

	srv := server.New(server.Config{Port: cfg.Port, AllowedOrigins: cfg.AllowedOrigins, Log: log})
	dbChecker := health.CheckerFunc(db.QuickCheck)
	handler := ingestion.NewHandler(svc, sched, cfg.Schedule, dbChecker, msgBus, log)
	handler.RegisterRoutes(srv.Router)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("ingestion service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down ingestion service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	log.Info().Msg("ingestion service stopped")
}
