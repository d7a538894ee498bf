// Package extraction implements the Extraction Service: it consumes raw
// articles off the articles stream, extracts structured conflict events
// from them, and republishes the normalized result onto the events stream.
package extraction

import (
	"context"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// Analyzer turns one article's free text into a structured extraction
// result. Implementations may call out to an LLM, a local model, or a
// deterministic fallback; the Service treats them identically, wrapping
// every call in a circuit breaker and retry policy.
type Analyzer interface {
	Analyze(ctx context.Context, article domain.Article) (domain.ExtractionResult, error)
}
