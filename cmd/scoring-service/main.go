package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/artifactstore"
	"github.com/naija-watch/conflict-monitor/internal/bus"
	"github.com/naija-watch/conflict-monitor/internal/config"
	"github.com/naija-watch/conflict-monitor/internal/docstore"
	"github.com/naija-watch/conflict-monitor/internal/domain"
	"github.com/naija-watch/conflict-monitor/internal/health"
	"github.com/naija-watch/conflict-monitor/internal/scoring"
	"github.com/naija-watch/conflict-monitor/internal/server"
	"github.com/naija-watch/conflict-monitor/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})
	log.Info().Msg("starting scoring service")

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

	ctx := context.Background()
	consumer, err := bus.NewConsumer(ctx, msgBus, bus.QueueEvents, "scoring-service", "worker-1")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build events queue consumer")
	}

	events := docstore.NewEventRepo(db)
	signals := docstore.NewSignalRepo(db)
	reference := docstore.NewReferenceRepo(db)

	scfg := scoring.DefaultConfig()
	scfg.WorkerCount = cfg.MaxConcurrentProcessing
	scfg.SurgeThreshold = cfg.SurgePercentage
	scfg.UrbanFuelThreshold = cfg.UrbanFuelThreshold
	scfg.SurgeSnapshotPath = filepath.Join(cfg.ArtifactDir, "surge_state.msgpack")
	scfg.ReclaimMinIdle = time.Duration(cfg.CircuitBreakerRecoverySeconds) * time.Second

	svc := scoring.New(scfg, events, signals, reference, store, msgBus, consumer, log)

	refDir := filepath.Join(cfg.ArtifactDir, "reference")
	reload := newReferenceLoader(refDir, reference, svc, log)
	if err := reload(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load reference data at startup, continuing with whatever is already in the document store")
	}

	svc.StartProcessor()
	defer svc.StopProcessor()

	srv := server.New(server.Config{Port: cfg.Port, AllowedOrigins: cfg.AllowedOrigins, Log: log})
	dbChecker := health.CheckerFunc(db.QuickCheck)
	handler := scoring.NewHandler(svc, dbChecker, msgBus, log)
	handler.RegisterRoutes(srv.Router, reload)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("scoring service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down scoring service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	log.Info().Msg("scoring service stopped")
}

// newReferenceLoader builds the initialize_economic_data() reload closure.
// Reference files are optional: a missing file is logged and skipped rather
// than treated as fatal, since a fresh deployment may run predict()/
// simulate() purely against whatever the document store already holds.
// Climate/mining/border zones are static reference tables upserted directly;
// only the strategic indicators table flows through Service.InitializeEconomicData,
// since no economic-record source file exists in the retrieval pack.
func newReferenceLoader(dir string, reference *docstore.ReferenceRepo, svc *scoring.Service, log zerolog.Logger) scoring.InitializeEconomicDataFunc {
	return func(ctx context.Context) error {
		if zones, err := artifactstore.LoadClimateZones(filepath.Join(dir, "climate_zones.geojson")); err == nil {
			for _, z := range zones {
				if err := reference.UpsertClimateZone(ctx, z); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to load climate zones reference data")
		}

		if sites, err := artifactstore.LoadMiningSites(filepath.Join(dir, "mining_sites.geojson")); err == nil {
			for _, m := range sites {
				if err := reference.UpsertMiningSite(ctx, m); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to load mining sites reference data")
		}

		if zones, err := artifactstore.LoadBorderZones(filepath.Join(dir, "border_zones.geojson")); err == nil {
			for _, b := range zones {
				if err := reference.UpsertBorderZone(ctx, b); err != nil {
					return err
				}
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to load border zones reference data")
		}

		var strategic []domain.StrategicIndicators
		if parsed, err := artifactstore.LoadStrategicIndicators(filepath.Join(dir, "strategic_indicators.csv")); err == nil {
			strategic = parsed
		} else if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to load strategic indicators reference data")
		}

		return svc.InitializeEconomicData(ctx, nil, strategic)
	}
}
