package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/bus"
	"github.com/naija-watch/conflict-monitor/internal/docstore"
	"github.com/naija-watch/conflict-monitor/internal/domain"
	"github.com/naija-watch/conflict-monitor/internal/reliability"
	"github.com/naija-watch/conflict-monitor/internal/scheduler"
)

// Publisher is the narrow bus dependency the Service needs to emit parsed
// events onto the events queue.
type Publisher interface {
	Publish(ctx context.Context, stream string, payload []byte) (string, error)
}

// Config tunes the Service's concurrency.
type Config struct {
	WorkerCount    int
	LLMConcurrency int
	CacheSize      int
	BlockInterval  time.Duration

	// ReclaimInterval/ReclaimMinIdle drive the periodic sweep of
	// pending-but-unacked articles messages (left behind by a transient
	// failure or an open circuit breaker) back onto the worker pool,
	// implementing nack-with-delay redelivery.
	ReclaimInterval time.Duration
	ReclaimMinIdle  time.Duration
}

// DefaultConfig is the service's default tuning.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5, LLMConcurrency: 5, CacheSize: 1024, BlockInterval: 2 * time.Second,
		ReclaimInterval: 15 * time.Second, ReclaimMinIdle: 30 * time.Second,
	}
}

// Service consumes the articles queue, extracts structured events via an
// Analyzer guarded by a circuit breaker and LRU response cache, persists
// and republishes them, and flips the source article's processing_status.
type Service struct {
	cfg      Config
	analyzer Analyzer
	breaker  *reliability.Breaker
	cache    *lru.Cache[string, domain.ExtractionResult]
	sem      chan struct{}

	articles *docstore.ArticleRepo
	events   *docstore.EventRepo
	pub      Publisher
	consumer *bus.Consumer
	log      zerolog.Logger

	mu      sync.Mutex
	state   scheduler.State
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New constructs a Service.
func New(cfg Config, analyzer Analyzer, breaker *reliability.Breaker, articles *docstore.ArticleRepo,
	events *docstore.EventRepo, pub Publisher, consumer *bus.Consumer, log zerolog.Logger) (*Service, error) {
	cache, err := lru.New[string, domain.ExtractionResult](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction response cache: %w", err)
	}
	return &Service{
		cfg:      cfg,
		analyzer: analyzer,
		breaker:  breaker,
		cache:    cache,
		sem:      make(chan struct{}, cfg.LLMConcurrency),
		articles: articles,
		events:   events,
		pub:      pub,
		consumer: consumer,
		log:      log.With().Str("component", "extraction").Logger(),
		state:    scheduler.StateStopped,
	}, nil
}

// BatchResult is the outcome of one analyze() batch.
type BatchResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// AnalyzeBatch synchronously drains up to n pending messages from the
// articles queue and processes them, implementing the analyze() operation.
func (s *Service) AnalyzeBatch(ctx context.Context, n int64) (BatchResult, error) {
	msgs, err := s.consumer.Read(ctx, n, 0)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to drain articles queue: %w", err)
	}

	result := BatchResult{Processed: len(msgs)}
	for _, msg := range msgs {
		if err := s.processOne(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to process article")
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// StartProcessor starts the background consumer loop, implementing
// start_processor(). It is idempotent.
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

// StopProcessor stops the background loop, implementing stop_processor(),
// and blocks up to 30s for it to drain in-flight work.
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
			s.log.Error().Err(err).Msg("failed to read from articles queue")
			continue
		}
		s.handleAll(ctx, msgs)
	}
}

// reclaimLoop periodically sweeps the articles consumer group's pending
// entries list for messages idle longer than ReclaimMinIdle — left behind
// by a transient failure or an open circuit breaker that returned without
// acking — and hands them back through the same processing path
// as a freshly delivered message.
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
				s.log.Warn().Err(err).Msg("failed to reclaim stale articles messages")
				continue
			}
			if len(msgs) > 0 {
				s.log.Info().Int("count", len(msgs)).Msg("reclaimed stale articles messages for redelivery")
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
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to process article")
		}

		s.mu.Lock()
		if s.state != scheduler.StateStopped {
			s.state = scheduler.StateIdle
		}
		s.mu.Unlock()
	}
}

// processOne extracts, persists, and republishes a single articles-queue
// message: validate→normalize→persist→publish→ack.
func (s *Service) processOne(ctx context.Context, msg bus.Message) error {
	var article domain.Article
	if err := json.Unmarshal(msg.Payload, &article); err != nil {
		// Malformed payloads can never be reprocessed into a valid event;
		// ack and drop rather than loop forever.
		_ = s.consumer.Ack(ctx, msg.ID)
		return fmt.Errorf("failed to unmarshal article message %s: %w", msg.ID, err)
	}

	// A redelivered message for an article already processed or failed is
	// acked without producing another event.
	if stored, err := s.articles.Get(ctx, article.ID); err == nil && stored != nil && stored.ProcessingStatus != domain.StatusPending {
		return s.consumer.Ack(ctx, msg.ID)
	}

	result, err := s.analyzeWithCache(ctx, article)
	if err != nil {
		if apperrors.Is(err, apperrors.KindCircuitOpen) {
			// Leave un-acked; ReclaimStale will redeliver once the
			// breaker's recovery window elapses.
			return err
		}
		if apperrors.Is(err, apperrors.KindValidationFailure) {
			s.markFailed(ctx, article, err)
			_ = s.consumer.Ack(ctx, msg.ID)
			return err
		}
		// Transient: leave un-acked for redelivery.
		return err
	}

	event := domain.ParsedEvent{
		ID:            uuid.NewString(),
		ArticleID:     article.ID,
		EventType:     domain.NormalizeEventType(result.EventType),
		State:         result.State,
		LGA:           result.LGA,
		Severity:      domain.NormalizeSeverity(result.Severity),
		Fatalities:    result.Fatalities,
		ConflictActor: result.ConflictActor,
		ParsedAt:      time.Now(),
		ConfidenceScore: result.Confidence,
		Title:         article.Title,
		Content:       article.Content,
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return fmt.Errorf("failed to persist parsed event for article %q: %w", article.ID, err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal parsed event %q: %w", event.ID, err)
	}
	if _, err := s.pub.Publish(ctx, bus.QueueEvents, payload); err != nil {
		s.log.Error().Err(err).Str("event_id", event.ID).Msg("failed to publish parsed event")
	}

	if err := s.articles.UpdateStatus(ctx, article.ID, domain.StatusProcessed, ""); err != nil {
		s.log.Error().Err(err).Str("article_id", article.ID).Msg("failed to mark article processed")
	}

	return s.consumer.Ack(ctx, msg.ID)
}

func (s *Service) markFailed(ctx context.Context, article domain.Article, cause error) {
	if err := s.articles.UpdateStatus(ctx, article.ID, domain.StatusFailed, cause.Error()); err != nil {
		s.log.Error().Err(err).Str("article_id", article.ID).Msg("failed to mark article failed")
	}
}

// analyzeWithCache checks the LRU cache by content_hash, then calls the
// analyzer through the circuit breaker with retry, bounded by the LLM
// concurrency semaphore.
func (s *Service) analyzeWithCache(ctx context.Context, article domain.Article) (domain.ExtractionResult, error) {
	if cached, ok := s.cache.Get(article.ContentHash); ok {
		return cached, nil
	}

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	var result domain.ExtractionResult
	retryErr := reliability.Retry(ctx, reliability.ExtractionBackoff, func(ctx context.Context) error {
		out, err := s.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
			return s.analyzer.Analyze(ctx, article)
		})
		if err != nil {
			if apperrors.Is(err, apperrors.KindCircuitOpen) || apperrors.Is(err, apperrors.KindValidationFailure) {
				return err
			}
			return apperrors.TransientExternal(err, "analyzer call failed")
		}
		result = out.(domain.ExtractionResult)
		return nil
	})
	if retryErr != nil {
		return domain.ExtractionResult{}, retryErr
	}

	s.cache.Add(article.ContentHash, result)
	return result, nil
}

// ListEvents returns the most recently parsed events, bounded by limit.
func (s *Service) ListEvents(ctx context.Context, limit int) ([]domain.ParsedEvent, error) {
	return s.events.List(ctx, limit)
}

// Status reports the processor's lifecycle state and the LLM breaker's
// state for /api/v1/status.
type Status struct {
	ProcessorState string `json:"processor_state"`
	BreakerState   string `json:"breaker_state"`
}

// Status implements status().
func (s *Service) Status() Status {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	return Status{ProcessorState: string(state), BreakerState: s.breaker.State()}
}
