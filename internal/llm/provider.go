// Package llm gives the collector access to a classification model behind
// a small provider interface. Providers return the raw structured block;
// parsing and hard rules live with the collector.
package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for classification model backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify sends one collected finding to the model and returns its
	// raw structured-block response.
	Classify(ctx context.Context, req ClassifyRequest) (string, error)
}

// ClassifyRequest carries one search finding to classify
type ClassifyRequest struct {
	Query    string
	Title    string
	URL      string
	Content  string
	PageText string
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai" or "local" (any OpenAI-compatible endpoint)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted endpoints; local endpoints may leave it empty
	APIKey string

	// BaseURL for custom endpoints (Ollama, text-generation-webui, vLLM)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int
}

const systemPrompt = "You return structured blocks only."

const maxPageTextChars = 4000

// BuildPrompt constructs the classification prompt. The output contract is
// line-oriented so the parser stays total: any malformed response still
// maps to a degraded UNSURE record.
func BuildPrompt(req ClassifyRequest) string {
	pageText := req.PageText
	if len(pageText) > maxPageTextChars {
		pageText = pageText[:maxPageTextChars]
	}
	return fmt.Sprintf(`You are a strict classifier for research collection.
Follow this output contract exactly:
UPDATE: <1-4 lines>
CLASS: <FACT|THEORY|UNSURE|TRASH>
STATEMENT: <short>
SOURCE: <url or NONE>
EVIDENCE: "<direct quote or NONE>"
CONFIDENCE: <0-100>
REASON: <one line>

QUERY: %s
SEARCH_TITLE: %s
SEARCH_URL: %s
SEARCH_CONTENT: %s
PAGE_TEXT: %s`, req.Query, req.Title, req.URL, req.Content, pageText)
}
