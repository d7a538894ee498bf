package extraction

import (
	"context"
	"strings"

	"github.com/naija-watch/conflict-monitor/internal/domain"
)

// FallbackAnalyzer deterministically keyword-matches an article's title
// and content to an event type and severity, used when no LLM_URL is
// configured (local development, demos, and the testable-properties suite,
// which needs reproducible extraction without a live model).
type FallbackAnalyzer struct{}

// NewFallbackAnalyzer builds a FallbackAnalyzer.
func NewFallbackAnalyzer() *FallbackAnalyzer { return &FallbackAnalyzer{} }

var eventKeywords = []struct {
	eventType string
	keywords  []string
}{
	{"attack", []string{"attack", "gunmen", "raid", "ambush"}},
	{"clash", []string{"clash", "fighting", "farmer", "herder", "herdsmen"}},
	{"kidnapping", []string{"kidnap", "abduct", "hostage"}},
	{"banditry", []string{"bandit", "banditry"}},
	{"terrorism", []string{"terrorist", "terrorism", "boko haram", "iswap"}},
	{"communal", []string{"communal", "ethnic"}},
	{"protest", []string{"protest", "demonstration", "riot"}},
}

var severityKeywords = []struct {
	severity string
	keywords []string
}{
	{"critical", []string{"dozens killed", "critical", "massacre", "scores killed"}},
	{"high", []string{"killed", "deadly", "dead"}},
	{"medium", []string{"injured", "wounded", "clash"}},
	{"low", []string{"threat", "tension", "warning"}},
}

// Analyze implements Analyzer with a deterministic keyword match. State and
// LGA are left blank when not recognizable from a small gazetteer match;
// downstream consumers treat an empty state as "skip geospatial
// modifiers", not an extraction failure.
func (a *FallbackAnalyzer) Analyze(ctx context.Context, article domain.Article) (domain.ExtractionResult, error) {
	text := strings.ToLower(article.Title + " " + article.Content)

	eventType := "other"
	for _, ek := range eventKeywords {
		if containsAny(text, ek.keywords) {
			eventType = ek.eventType
			break
		}
	}

	severity := "medium"
	for _, sk := range severityKeywords {
		if containsAny(text, sk.keywords) {
			severity = sk.severity
			break
		}
	}

	state, lga := matchGazetteer(text)

	return domain.ExtractionResult{
		EventType: eventType,
		State:     state,
		LGA:       lga,
		Severity:  severity,
	}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// gazetteer is a small, closed set of well-known state/LGA pairs used to
// make the fallback analyzer's behavior reproducible.
// A production deployment would replace this with a full NER pass inside
// the LLM prompt; the fallback only needs to be deterministic, not complete.
var gazetteer = []struct {
	lga, state string
}{
	{"ikeja", "Lagos"},
	{"guma", "Benue"},
	{"zamfara", "Zamfara"},
	{"sokoto", "Sokoto"},
	{"zaria", "Kaduna"},
	{"kaduna", "Kaduna"},
}

func matchGazetteer(text string) (state, lga string) {
	for _, g := range gazetteer {
		if strings.Contains(text, g.lga) {
			return g.state, strings.Title(g.lga)
		}
	}
	return "", ""
}
