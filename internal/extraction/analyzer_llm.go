package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/naija-watch/conflict-monitor/internal/apperrors"
	"github.com/naija-watch/conflict-monitor/internal/domain"
)

const extractionPrompt = `You are a conflict-event extraction system. Read the news article below and return a single JSON object with exactly these fields: "Event_Type" (one of attack, protest, clash, kidnapping, banditry, terrorism, communal, violence, conflict, other), "State" (Nigerian state), "LGA" (local government area), "Severity" (one of low, medium, high, critical). Return only the JSON object, no prose.

Title: %s

Content: %s`

// LLMAnalyzer calls an OpenAI-compatible chat-completions endpoint (the
// shape shared by vLLM, Ollama, and most hosted providers) to extract a
// structured event from an article.
type LLMAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewLLMAnalyzer builds an LLMAnalyzer pointed at baseURL (LLM_URL), using
// a bounded-pool HTTP client.
func NewLLMAnalyzer(baseURL string, timeout time.Duration) *LLMAnalyzer {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &LLMAnalyzer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Transport: transport, Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// extractedShape is the raw JSON object the LLM is instructed to return.
// Fields accept either PascalCase or lowercase keys since models are
// inconsistent about honoring exact casing.
type extractedShape struct {
	EventType string `json:"Event_Type"`
	State     string `json:"State"`
	LGA       string `json:"LGA"`
	Severity  string `json:"Severity"`
}

// Analyze implements Analyzer by calling the configured LLM endpoint and
// validating its response: must parse to an object, required
// fields present, arrays take their first element.
func (a *LLMAnalyzer) Analyze(ctx context.Context, article domain.Article) (domain.ExtractionResult, error) {
	prompt := fmt.Sprintf(extractionPrompt, article.Title, article.Content)
	reqBody := chatRequest{
		Model:    "default",
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("failed to marshal llm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("failed to build llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return domain.ExtractionResult{}, apperrors.TransientExternal(err, "llm request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.ExtractionResult{}, apperrors.TransientExternal(
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)), "llm returned non-200")
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return domain.ExtractionResult{}, apperrors.TransientExternal(err, "failed to decode llm response envelope")
	}
	if len(cr.Choices) == 0 {
		return domain.ExtractionResult{}, apperrors.ValidationFailure("llm response contained no choices")
	}

	shape, err := parseExtractedShape(cr.Choices[0].Message.Content)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	return domain.ExtractionResult{
		EventType: shape.EventType,
		State:     shape.State,
		LGA:       shape.LGA,
		Severity:  shape.Severity,
	}, nil
}

// parseExtractedShape validates the LLM's JSON body: it must decode to
// either a single object or an array whose first element is an object;
// anything else is a terminal ValidationFailure.
func parseExtractedShape(raw string) (extractedShape, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var shape extractedShape
	if strings.HasPrefix(trimmed, "[") {
		var arr []extractedShape
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return extractedShape{}, apperrors.ValidationFailure("llm response array did not parse as JSON: %v", err)
		}
		if len(arr) == 0 {
			return extractedShape{}, apperrors.ValidationFailure("llm response array was empty")
		}
		shape = arr[0]
	} else if err := json.Unmarshal([]byte(trimmed), &shape); err != nil {
		return extractedShape{}, apperrors.ValidationFailure("llm response did not parse as a JSON object: %v", err)
	}
	if shape.EventType == "" || shape.State == "" || shape.LGA == "" || shape.Severity == "" {
		return extractedShape{}, apperrors.ValidationFailure("llm response missing required fields")
	}
	return shape, nil
}
