package ingestion

import (
	"context"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// DemoFetcher returns a fixed set of canned articles. Real news-source
// scraping is explicitly out of scope; this fetcher exists so
// the pipeline is runnable end-to-end in tests and local development
// without a live scraper plugged in.
type DemoFetcher struct {
	articles []domain.RawArticle
}

// NewDemoFetcher builds a DemoFetcher over a fixed seed set spanning the
// interesting scoring shapes (urban attack, farmer-herder clash, mining
// proximity, Sahelian border activity).
func NewDemoFetcher() *DemoFetcher {
	highPreScore := 92.0
	return &DemoFetcher{articles: []domain.RawArticle{
		{
			URL:     "https://example-news.ng/articles/ikeja-attack",
			Title:   "Gunmen attack market in Ikeja, Lagos",
			Content: "Armed men attacked a market in Ikeja, Lagos state, on Tuesday, leaving several injured.",
			Source:  "example-news.ng",
		},
		{
			URL:     "https://example-news.ng/articles/guma-clash",
			Title:   "Deadly clash between farmers and herders in Guma, Benue",
			Content: "A clash between farmers and Fulani herdsmen over grazing land in Guma, Benue state turned deadly, with critical casualties reported among livestock herders and farmland owners.",
			Source:  "example-news.ng",
		},
		{
			URL:      "https://example-news.ng/articles/zamfara-mining",
			Title:    "Banditry incident near gold mining site in Zamfara",
			Content:  "A banditry incident was reported near an informal gold mining site in Zamfara state.",
			Source:   "example-news.ng",
			PreScore: &highPreScore,
		},
		{
			URL:     "https://example-news.ng/articles/sokoto-border",
			Title:   "Border clash reported in Sokoto amid high border activity",
			Content: "A violent clash was reported near the Sokoto border region amid reports of high cross-border armed group activity.",
			Source:  "example-news.ng",
		},
	}}
}

// Name identifies this fetcher in logs and automation records.
func (f *DemoFetcher) Name() string { return "demo" }

// Fetch returns the canned article set, ignoring ctx since there is no
// network call to cancel.
func (f *DemoFetcher) Fetch(ctx context.Context) ([]domain.RawArticle, error) {
	out := make([]domain.RawArticle, len(f.articles))
	copy(out, f.articles)
	return out, nil
}
