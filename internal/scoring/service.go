package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/artifactstore"
	"github.com/naija-watch/conflict-monitor/internal/bus"
	"github.com/naija-watch/conflict-monitor/internal/docstore"
	"github.com/naija-watch/conflict-monitor/internal/domain"
	"github.com/naija-watch/conflict-monitor/internal/scheduler"
)

// Publisher is the narrow bus dependency the Service needs to emit scored
// signals onto the signals queue.
type Publisher interface {
	Publish(ctx context.Context, stream string, payload []byte) (string, error)
}

// Config tunes the Service's concurrency.
type Config struct {
	WorkerCount        int
	BlockInterval      time.Duration
	SurgeThreshold     float64
	SurgeSnapshotPath  string
	UrbanFuelThreshold float64

	// ReclaimInterval/ReclaimMinIdle drive the periodic sweep of
	// pending-but-unacked events messages back onto the worker pool.
	ReclaimInterval time.Duration
	ReclaimMinIdle  time.Duration
}

// DefaultConfig is the service's default tuning.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5, BlockInterval: 2 * time.Second, SurgeThreshold: SurgePercentage,
		UrbanFuelThreshold: defaultUrbanFuelBar,
		ReclaimInterval:    15 * time.Second, ReclaimMinIdle: 30 * time.Second,
	}
}

// Service consumes the events queue, joins reference context, scores each
// event via Compute, persists and republishes the resulting signal, and
// holds the per-location surge-detection state.
type Service struct {
	cfg Config

	events    *docstore.EventRepo
	signals   *docstore.SignalRepo
	reference *docstore.ReferenceRepo
	store     *artifactstore.Store
	pub       Publisher
	consumer  *bus.Consumer
	surge     *SurgeTracker
	log       zerolog.Logger

	mu      sync.Mutex
	state   scheduler.State
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New constructs a Service and attempts to restore the surge baseline from
// a prior warm-restart snapshot.
func New(cfg Config, events *docstore.EventRepo, signals *docstore.SignalRepo, reference *docstore.ReferenceRepo,
	store *artifactstore.Store, pub Publisher, consumer *bus.Consumer, log zerolog.Logger) *Service {
	surge := NewSurgeTracker(cfg.SurgeThreshold)
	if cfg.SurgeSnapshotPath != "" {
		if err := surge.LoadSnapshot(cfg.SurgeSnapshotPath); err != nil {
			log.Warn().Err(err).Msg("failed to restore surge snapshot, starting with an empty baseline")
		}
	}
	return &Service{
		cfg:       cfg,
		events:    events,
		signals:   signals,
		reference: reference,
		store:     store,
		pub:       pub,
		consumer:  consumer,
		surge:     surge,
		log:       log.With().Str("component", "scoring").Logger(),
		state:     scheduler.StateStopped,
	}
}

// contextFor joins every reference table for an event's (state,lga), for
// use by both the processor loop and predict()/simulate().
func (s *Service) contextFor(ctx context.Context, state, lga string) (ScoringInput, error) {
	var in ScoringInput
	var err error

	if in.Economic, err = s.reference.Economic(ctx, state, lga); err != nil {
		return in, err
	}
	if in.Strategic, err = s.reference.Strategic(ctx, state); err != nil {
		return in, err
	}
	if in.Climate, err = s.reference.ClimateZones(ctx); err != nil {
		return in, err
	}
	if in.Mining, err = s.reference.MiningSites(ctx); err != nil {
		return in, err
	}
	if in.Border, err = s.reference.BorderZone(ctx, state); err != nil {
		return in, err
	}
	if in.Economic != nil && in.Economic.Geo != nil {
		in.Geo = in.Economic.Geo
	}
	return in, nil
}

// scoreEvent builds a ScoringInput for e, runs it through Compute, persists
// and publishes the resulting signal, and records it against the surge
// tracker. It implements the common body of predict() and the background
// processor loop.
func (s *Service) scoreEvent(ctx context.Context, e domain.ParsedEvent) (domain.RiskSignal, error) {
	already, err := s.signals.HasSignalForEvent(ctx, e.ID)
	if err != nil {
		return domain.RiskSignal{}, err
	}
	if already {
		return domain.RiskSignal{}, nil
	}

	in, err := s.contextFor(ctx, e.State, e.LGA)
	if err != nil {
		return domain.RiskSignal{}, err
	}
	in.Event = e

	version, err := s.signals.NextVersion(ctx, e.State, e.LGA)
	if err != nil {
		return domain.RiskSignal{}, err
	}
	in.Version = version

	signal := Compute(in, uuid.NewString(), time.Now())

	surged, pct := s.surge.Observe(e.State, e.LGA, signal.RiskScore)
	signal.SurgeDetected = surged
	if surged {
		signal.SurgePercentageIncrease = &pct
		signal.TriggerReason += fmt.Sprintf("; SURGE ALERT: +%.1f%% over previous score", pct)
	}

	if err := s.signals.Insert(ctx, signal); err != nil {
		return domain.RiskSignal{}, err
	}

	payload, err := json.Marshal(signal)
	if err != nil {
		return signal, fmt.Errorf("failed to marshal risk signal %q: %w", signal.ID, err)
	}
	if _, err := s.pub.Publish(ctx, bus.QueueSignals, payload); err != nil {
		s.log.Error().Err(err).Str("signal_id", signal.ID).Msg("failed to publish risk signal")
	}

	if signal.RiskLevel == domain.RiskCritical {
		if err := s.store.AppendHighRiskAlert(ctx, domain.HighRiskAlert{
			Timestamp: signal.CalculatedAt,
			AlertType: "critical_risk_signal",
			Count:     1,
			Articles:  []domain.HighRiskArticleRef{{Title: e.Title, Source: e.State + "/" + e.LGA, RiskScore: signal.RiskScore}},
		}); err != nil {
			s.log.Error().Err(err).Msg("failed to append high-risk alert")
		}
	}

	if s.cfg.SurgeSnapshotPath != "" {
		if err := s.surge.SaveSnapshot(s.cfg.SurgeSnapshotPath); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist surge snapshot")
		}
	}

	return signal, nil
}

// PredictResult is the outcome of one predict() batch.
type PredictResult struct {
	Processed int `json:"processed"`
	Scored    int `json:"scored"`
	Skipped   int `json:"skipped"`
}

// Predict scores every event with no existing signal (up to limit),
// implementing the predict() operation.
func (s *Service) Predict(ctx context.Context, limit int) (PredictResult, error) {
	pending, err := s.events.ListPending(ctx, limit)
	if err != nil {
		return PredictResult{}, fmt.Errorf("failed to list pending events: %w", err)
	}

	result := PredictResult{Processed: len(pending)}
	for _, e := range pending {
		signal, err := s.scoreEvent(ctx, e)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", e.ID).Msg("failed to score event")
			continue
		}
		if signal.ID == "" {
			result.Skipped++
			continue
		}
		result.Scored++
	}
	return result, nil
}

// StartProcessor starts the background events-queue consumer loop. Idempotent.
func (s *Service) StartProcessor() {
	s.mu.Lock()
	if s.state == scheduler.StateRunning || s.state == scheduler.StateIdle {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})
	s.state = scheduler.StateIdle
	s.mu.Unlock()

	go s.loop(ctx)
}

// StopProcessor stops the background loop and waits briefly for it to drain.
func (s *Service) StopProcessor() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	stopped := s.stopped
	s.cancel = nil
	s.state = scheduler.StateStopped
	s.mu.Unlock()

	cancel()
	select {
	case <-stopped:
	case <-time.After(30 * time.Second):
	}
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.stopped)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.reclaimLoop(ctx)
	}()
	wg.Wait()
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := s.consumer.Read(ctx, 1, s.cfg.BlockInterval)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error().Err(err).Msg("failed to read from events queue")
			continue
		}
		s.handleAll(ctx, msgs)
	}
}

// reclaimLoop periodically sweeps the events consumer group's pending
// entries list for messages idle longer than ReclaimMinIdle and hands them
// back through the same processing path as a freshly delivered message,
// implementing the redelivery half of the at-least-once guarantee.
func (s *Service) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msgs, err := s.consumer.ReclaimStale(ctx, s.cfg.ReclaimMinIdle, int64(s.cfg.WorkerCount))
			if err != nil {
				s.log.Warn().Err(err).Msg("failed to reclaim stale events messages")
				continue
			}
			if len(msgs) > 0 {
				s.log.Info().Int("count", len(msgs)).Msg("reclaimed stale events messages for redelivery")
			}
			s.handleAll(ctx, msgs)
		}
	}
}

func (s *Service) handleAll(ctx context.Context, msgs []bus.Message) {
	for _, msg := range msgs {
		s.mu.Lock()
		s.state = scheduler.StateRunning
		s.mu.Unlock()

		if err := s.processOne(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to process event")
		}

		s.mu.Lock()
		if s.state != scheduler.StateStopped {
			s.state = scheduler.StateIdle
		}
		s.mu.Unlock()
	}
}

func (s *Service) processOne(ctx context.Context, msg bus.Message) error {
	var e domain.ParsedEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		_ = s.consumer.Ack(ctx, msg.ID)
		return fmt.Errorf("failed to unmarshal event message %s: %w", msg.ID, err)
	}

	if _, err := s.scoreEvent(ctx, e); err != nil {
		if apperrors.Is(err, apperrors.KindTransientExternal) {
			// Leave un-acked for redelivery once the document store recovers.
			return err
		}
		_ = s.consumer.Ack(ctx, msg.ID)
		return err
	}
	return s.consumer.Ack(ctx, msg.ID)
}

// ListSignals returns persisted signals, implementing list_signals().
func (s *Service) ListSignals(ctx context.Context, state string, limit int) ([]domain.RiskSignal, error) {
	return s.signals.List(ctx, state, limit)
}

// Status is the processor introspection payload.
type Status struct {
	ProcessorState string `json:"processor_state"`
}

// Status reports the processor's lifecycle state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{ProcessorState: string(s.state)}
}

// InitializeEconomicData reloads the economic and strategic reference
// tables from the artifact store's GeoJSON/CSV source files, implementing
// initialize_economic_data().
func (s *Service) InitializeEconomicData(ctx context.Context, economicRecords []domain.EconomicRecord, strategic []domain.StrategicIndicators) error {
	if err := s.reference.ReplaceEconomicAndStrategic(ctx, economicRecords, strategic); err != nil {
		return fmt.Errorf("failed to reload economic and strategic reference data: %w", err)
	}
	return nil
}
