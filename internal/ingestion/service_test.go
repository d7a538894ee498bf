package ingestion

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naija-watch/conflict-monitor/internal/artifactstore"
	"github.com/naija-watch/conflict-monitor/internal/docstore"
	"github.com/naija-watch/conflict-monitor/internal/domain"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (p *fakePublisher) Publish(ctx context.Context, stream string, payload []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return "", assert.AnError
	}
	p.messages = append(p.messages, stream)
	return "1-0", nil
}

type staticFetcher struct {
	articles []domain.RawArticle
}

func (f *staticFetcher) Name() string { return "static" }
func (f *staticFetcher) Fetch(ctx context.Context) ([]domain.RawArticle, error) {
	return f.articles, nil
}

func newTestService(t *testing.T, fetchers []Fetcher, pub Publisher) (*Service, *artifactstore.Store) {
	t.Helper()

	db, err := docstore.New(docstore.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	store, err := artifactstore.New(t.TempDir(), nil, zerolog.Nop())
	require.NoError(t, err)

	svc := New(DefaultConfig(), fetchers, docstore.NewArticleRepo(db), pub, store, zerolog.Nop())
	return svc, store
}

func TestRunPersistsAndPublishesNewArticles(t *testing.T) {
	pub := &fakePublisher{}
	fetcher := &staticFetcher{articles: []domain.RawArticle{
		{URL: "https://news.example/a", Title: "Attack in Ikeja", Content: "body a", Source: "news.example"},
		{URL: "https://news.example/b", Title: "Clash in Guma", Content: "body b", Source: "news.example"},
	}}
	svc, _ := newTestService(t, []Fetcher{fetcher}, pub)

	result, err := svc.run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.ArticlesScraped)
	assert.Equal(t, 2, result.NewArticles)
	assert.Len(t, pub.messages, 2, "expected one bus publish per new article")
}

func TestRunDropsDuplicateURLs(t *testing.T) {
	pub := &fakePublisher{}
	fetcher := &staticFetcher{articles: []domain.RawArticle{
		{URL: "https://news.example/a", Title: "Attack in Ikeja", Content: "body", Source: "news.example"},
	}}
	svc, _ := newTestService(t, []Fetcher{fetcher}, pub)

	first, err := svc.run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.NewArticles)

	second, err := svc.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewArticles, "expected the second run to drop the already-seen URL")
	assert.Len(t, pub.messages, 1, "a dropped duplicate must not be republished")
}

func TestRunDropsContentHashCollisionAcrossURLs(t *testing.T) {
	pub := &fakePublisher{}
	fetcher := &staticFetcher{articles: []domain.RawArticle{
		{URL: "https://news.example/a", Title: "Same story", Content: "identical body", Source: "site-a"},
		{URL: "https://mirror.example/a", Title: "Same story", Content: "identical body", Source: "site-b"},
	}}
	svc, _ := newTestService(t, []Fetcher{fetcher}, pub)

	result, err := svc.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewArticles, "expected the second URL with the same content hash to be dropped")
}

func TestRunGatesHighRiskAlertOnPreScore(t *testing.T) {
	pub := &fakePublisher{}
	high := 92.0
	low := 40.0
	fetcher := &staticFetcher{articles: []domain.RawArticle{
		{URL: "https://news.example/hot", Title: "Major attack", Content: "x", Source: "s", PreScore: &high},
		{URL: "https://news.example/cold", Title: "Minor incident", Content: "y", Source: "s", PreScore: &low},
		{URL: "https://news.example/unscored", Title: "No pre-score", Content: "z", Source: "s"},
	}}
	svc, store := newTestService(t, []Fetcher{fetcher}, pub)

	result, err := svc.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.HighRiskCount, "only the article with pre_score above the threshold counts")

	alerts, err := store.HighRiskAlerts(10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 1, alerts[0].Count)
	assert.Equal(t, "Major attack", alerts[0].Articles[0].Title)
}

func TestRunAppendsAutomationLog(t *testing.T) {
	pub := &fakePublisher{}
	fetcher := &staticFetcher{articles: []domain.RawArticle{
		{URL: "https://news.example/a", Title: "t", Content: "c", Source: "s"},
	}}
	svc, store := newTestService(t, []Fetcher{fetcher}, pub)

	_, err := svc.run(context.Background())
	require.NoError(t, err)

	logs, err := store.AutomationLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "scrape", logs[0].EventType)
	assert.Equal(t, "success", logs[0].Status)
	assert.Equal(t, 1, logs[0].Details.ArticlesCount)
	assert.True(t, logs[0].Details.DBSuccess)
	assert.True(t, logs[0].Details.MQSuccess)
}

func TestRunMarksMQFailureButKeepsArticlesPersisted(t *testing.T) {
	pub := &fakePublisher{fail: true}
	fetcher := &staticFetcher{articles: []domain.RawArticle{
		{URL: "https://news.example/a", Title: "t", Content: "c", Source: "s"},
	}}
	svc, store := newTestService(t, []Fetcher{fetcher}, pub)

	result, err := svc.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewArticles, "a publish failure must not undo persistence")

	logs, err := store.AutomationLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Details.MQSuccess)

	pending, err := svc.articles.ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "the article stays pending for the reconciliation pass")
}

func TestNormalizeComputesStableContentHash(t *testing.T) {
	now := time.Now().UTC()
	a := normalize(domain.RawArticle{URL: "u", Title: "t", Content: "c"}, now)
	b := normalize(domain.RawArticle{URL: "other", Title: "t", Content: "c"}, now)

	assert.Equal(t, a.ContentHash, b.ContentHash, "content hash depends only on title+content")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, domain.StatusPending, a.ProcessingStatus)
}
