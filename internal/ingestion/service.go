package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
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
	"github.com/naija-watch/conflict-monitor/internal/reliability"
	"github.com/naija-watch/conflict-monitor/internal/scheduler"
)

// Publisher is the narrow bus dependency the Service needs, so tests can
// supply a hand-written fake instead of a live Redis connection.
type Publisher interface {
	Publish(ctx context.Context, stream string, payload []byte) (string, error)
}

// Config tunes the Service's concurrency and thresholds.
type Config struct {
	FetchConcurrency  int
	FetchTimeout      time.Duration
	HighRiskThreshold float64
}

// DefaultConfig is the service's default tuning.
func DefaultConfig() Config {
	return Config{
		FetchConcurrency:  10,
		FetchTimeout:      15 * time.Second,
		HighRiskThreshold: 85,
	}
}

// Service owns the fetcher plug-ins, dedup gate, article persistence,
// publication to the articles queue, high-risk alerting, and automation
// logging.
type Service struct {
	cfg      Config
	fetchers []Fetcher
	articles *docstore.ArticleRepo
	pub      Publisher
	store    *artifactstore.Store
	log      zerolog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// New constructs a Service.
func New(cfg Config, fetchers []Fetcher, articles *docstore.ArticleRepo, pub Publisher, store *artifactstore.Store, log zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		fetchers: fetchers,
		articles: articles,
		pub:      pub,
		store:    store,
		log:      log.With().Str("component", "ingestion").Logger(),
	}
}

// RunResult is the outcome of one ingestion pass.
type RunResult struct {
	ArticlesScraped int     `json:"articles_scraped"`
	NewArticles     int     `json:"new_articles"`
	HighRiskCount   int     `json:"high_risk_count"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Run executes one full ingestion pass: fetch from every configured
// fetcher behind a bounded semaphore, dedup-gate and persist new articles,
// publish them, evaluate high-risk alerts, and record an automation log.
// It implements scheduler.Job so it can be driven by both the cadence
// scheduler and an on-demand trigger.
func (s *Service) Run() error {
	_, err := s.run(context.Background())
	return err
}

// Name identifies this job in scheduler logs.
func (s *Service) Name() string { return "ingestion-scrape" }

func (s *Service) run(ctx context.Context) (RunResult, error) {
	start := time.Now()
	s.mu.Lock()
	s.lastRun = start
	s.mu.Unlock()

	raws := s.fetchAll(ctx)

	var (
		newArticles   int
		highRisk      []domain.HighRiskArticleRef
		dbSuccess     = true
		mqSuccess     = true
	)

	for _, raw := range raws {
		article := normalize(raw, start)

		if err := s.articles.Insert(ctx, article); err != nil {
			if apperrors.Is(err, apperrors.KindDuplicateItem) {
				s.log.Debug().Str("url", article.URL).Msg("dropped duplicate article")
				continue
			}
			s.log.Error().Err(err).Str("url", article.URL).Msg("failed to persist article")
			dbSuccess = false
			continue
		}
		newArticles++

		if err := s.publish(ctx, article); err != nil {
			s.log.Error().Err(err).Str("url", article.URL).Msg("failed to publish article after retries; it remains pending for reconciliation")
			mqSuccess = false
		}

		if raw.PreScore != nil && *raw.PreScore > s.cfg.HighRiskThreshold {
			highRisk = append(highRisk, domain.HighRiskArticleRef{
				Title: article.Title, Source: article.Source, RiskScore: *raw.PreScore,
			})
		}
	}

	if len(highRisk) > 0 {
		if err := s.store.AppendHighRiskAlert(ctx, domain.HighRiskAlert{
			Timestamp: start, AlertType: "high_risk_articles", Count: len(highRisk), Articles: highRisk,
		}); err != nil {
			s.log.Error().Err(err).Msg("failed to append high-risk alert")
		}
	}

	result := RunResult{
		ArticlesScraped: len(raws),
		NewArticles:     newArticles,
		HighRiskCount:   len(highRisk),
		DurationSeconds: time.Since(start).Seconds(),
	}

	status := "success"
	if !dbSuccess {
		status = "failure"
	}
	if err := s.store.AppendAutomationLog(ctx, domain.AutomationLog{
		Timestamp: start,
		EventType: "scrape",
		Status:    status,
		Details: domain.AutomationLogDetails{
			ArticlesCount:   result.ArticlesScraped,
			HighRiskCount:   result.HighRiskCount,
			DurationSeconds: result.DurationSeconds,
			DBSuccess:       dbSuccess,
			MQSuccess:       mqSuccess,
		},
	}); err != nil {
		s.log.Error().Err(err).Msg("failed to append automation log")
	}

	return result, nil
}

// fetchAll runs every fetcher concurrently behind a bounded semaphore,
// retrying transient failures per reliability.IngestionBackoff and
// applying a per-request timeout. Partial fetcher failures are logged and
// do not abort the run.
func (s *Service) fetchAll(ctx context.Context) []domain.RawArticle {
	sem := make(chan struct{}, s.cfg.FetchConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []domain.RawArticle

	for _, f := range s.fetchers {
		f := f
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			var articles []domain.RawArticle
			err := reliability.Retry(ctx, reliability.IngestionBackoff, func(ctx context.Context) error {
				fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
				defer cancel()

				result, ferr := f.Fetch(fetchCtx)
				if ferr != nil {
					articles = nil
					return apperrors.TransientExternal(ferr, "fetcher %s failed", f.Name())
				}
				articles = result
				return nil
			})
			if err != nil {
				s.log.Warn().Err(err).Str("fetcher", f.Name()).Msg("fetcher failed after retries, skipping")
				return
			}

			mu.Lock()
			all = append(all, articles...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return all
}

func normalize(raw domain.RawArticle, scrapedAt time.Time) domain.Article {
	hash := sha256.Sum256([]byte(raw.Title + raw.Content))
	return domain.Article{
		ID:               uuid.NewString(),
		URL:              raw.URL,
		Title:            raw.Title,
		Content:          raw.Content,
		Source:           raw.Source,
		ScrapedAt:        scrapedAt,
		ContentHash:      hex.EncodeToString(hash[:]),
		ProcessingStatus: domain.StatusPending,
		PreScore:         raw.PreScore,
	}
}

// publish retries the bus publish once on failure before giving up and
// logging; the article remains persisted either
// way and will be re-picked by the reconciliation pass.
func (s *Service) publish(ctx context.Context, a domain.Article) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal article %q for publish: %w", a.ID, err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if _, lastErr = s.pub.Publish(ctx, bus.QueueArticles, payload); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to publish article %q after retry: %w", a.ID, lastErr)
}

// TriggerScrape is the on-demand trigger operation. It fails with
// apperrors.SchedulerBusy if a run is currently in progress.
func (s *Service) TriggerScrape(ctx context.Context, sch *scheduler.Scheduler) (RunResult, error) {
	if sch.IsRunning() {
		return RunResult{}, apperrors.SchedulerBusy("ingestion run already in progress")
	}
	return s.run(ctx)
}

// SchedulerStatus is the scheduler introspection payload.
type SchedulerStatus struct {
	Status           string    `json:"status"`
	SchedulerRunning bool      `json:"scheduler_running"`
	JobRunning       bool      `json:"job_running"`
	LastRun          time.Time `json:"last_run"`
	NextRun          time.Time `json:"next_run"`
	Schedule         string    `json:"schedule"`
}

// Status reports the scheduler's current lifecycle state; always
// non-blocking.
func (s *Service) Status(sch *scheduler.Scheduler, schedule string) SchedulerStatus {
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()

	state := sch.Status()
	active := "inactive"
	if state != scheduler.StateStopped {
		active = "active"
	}

	return SchedulerStatus{
		Status:           active,
		SchedulerRunning: state != scheduler.StateStopped,
		JobRunning:       state == scheduler.StateRunning,
		LastRun:          last,
		NextRun:          sch.NextRun(s.Name()),
		Schedule:         schedule,
	}
}

// ReconcileJob republishes articles stuck in processing_status=pending whose
// bus publish may never have been acknowledged. It implements
// scheduler.Job.
type ReconcileJob struct {
	svc   *Service
	limit int
}

// NewReconcileJob builds the reconciliation cron job.
func NewReconcileJob(svc *Service, limit int) *ReconcileJob {
	return &ReconcileJob{svc: svc, limit: limit}
}

// Name identifies this job in scheduler logs.
func (j *ReconcileJob) Name() string { return "ingestion-reconcile" }

// Run republishes any pending articles found.
func (j *ReconcileJob) Run() error {
	ctx := context.Background()
	pending, err := j.svc.articles.ListPending(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("reconciliation failed to list pending articles: %w", err)
	}
	for _, a := range pending {
		if err := j.svc.publish(ctx, a); err != nil {
			j.svc.log.Error().Err(err).Str("article_id", a.ID).Msg("reconciliation republish failed")
		}
	}
	return nil
}
