package ingestion

import (
	"context"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// Fetcher is the pluggable scraper boundary: the core never parses a
// specific news source's HTML, it only consumes
// normalized articles from whatever Fetcher implementations are wired in.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawArticle, error)
}
