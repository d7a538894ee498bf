package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/bus"
	"github.com/naija-watch/conflict-monitor/internal/config"
	"github.com/naija-watch/conflict-monitor/internal/docstore"
	"github.com/naija-watch/conflict-monitor/internal/extraction"
	"github.com/naija-watch/conflict-monitor/internal/health"
	"github.com/naija-watch/conflict-monitor/internal/reliability"
	"github.com/naija-watch/conflict-monitor/internal/server"
	"github.com/naija-watch/conflict-monitor/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})
	log.Info().Msg("starting extraction service")

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

	msgBus := bus.New(bus.Config{Addr: cfg.MsgBusURL}, log)
	defer msgBus.Close()

	ctx := context.Background()
	consumer, err := bus.NewConsumer(ctx, msgBus, bus.QueueArticles, "extraction-service", "worker-1")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build articles queue consumer")
	}

	var analyzer extraction.Analyzer
	if cfg.LLMURL != "" {
		analyzer = extraction.NewLLMAnalyzer(cfg.LLMURL, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	} else {
		log.Warn().Msg("no LLM_URL configured, using deterministic fallback analyzer")
		analyzer = extraction.NewFallbackAnalyzer()
	}

	breaker := reliability.NewBreaker(reliability.BreakerConfig{
		Name:             reliability.DefaultExtractionBreaker.Name,
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		OpenDuration:     time.Duration(cfg.CircuitBreakerRecoverySeconds) * time.Second,
	})

	articles := docstore.NewArticleRepo(db)
	events := docstore.NewEventRepo(db)

	xcfg := extraction.DefaultConfig()
	xcfg.WorkerCount = cfg.MaxConcurrentProcessing
	xcfg.LLMConcurrency = cfg.MaxConcurrentProcessing
	xcfg.ReclaimMinIdle = time.Duration(cfg.CircuitBreakerRecoverySeconds) * time.Second

	svc, err := extraction.New(xcfg, analyzer, breaker, articles, events, msgBus, consumer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize extraction service")
	}
	svc.StartProcessor()
	defer svc.StopProcessor()

	srv := server.New(server.Config{Port: cfg.Port, AllowedOrigins: cfg.AllowedOrigins, Log: log})
	dbChecker := health.CheckerFunc(db.QuickCheck)
	handler := extraction.NewHandler(svc, dbChecker, msgBus, log)
	handler.RegisterRoutes(srv.Router)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("extraction service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down extraction service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	log.Info().Msg("extraction service stopped")
}
