package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Classify_Success(t *testing.T) {
	block := "UPDATE: Found a source.\nCLASS: THEORY\nSTATEMENT: test statement\nSOURCE: NONE\nEVIDENCE: \"NONE\"\nCONFIDENCE: 40\nREASON: plausible"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var chatReq openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(chatReq.Messages) != 2 {
			t.Fatalf("Expected system and user messages, got %d", len(chatReq.Messages))
		}
		if !strings.Contains(chatReq.Messages[1].Content, "QUERY: test query") {
			t.Errorf("Expected query in prompt, got %s", chatReq.Messages[1].Content)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "  " + block + "\n",
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	got, err := provider.Classify(context.Background(), ClassifyRequest{Query: "test query"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got != block {
		t.Errorf("Expected trimmed block, got %q", got)
	}
}

func TestOpenAIProvider_Classify_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Classify(context.Background(), ClassifyRequest{Query: "q"}); err == nil {
		t.Error("Expected error on server failure")
	}
}

func TestNewOpenAIProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestNewLocalProvider_RequiresBaseURL(t *testing.T) {
	if _, err := NewLocalProvider(Config{}); err == nil {
		t.Error("Expected error without base URL")
	}
}

func TestNewLocalProvider_NoAPIKeyNeeded(t *testing.T) {
	provider, err := NewLocalProvider(Config{BaseURL: "http://127.0.0.1:5000/v1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if provider.Name() != "local" {
		t.Errorf("Expected name local, got %s", provider.Name())
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "mystery"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewProvider_AliasesResolveToLocal(t *testing.T) {
	for _, name := range []string{"local", "ollama", "oobabooga"} {
		p, err := NewProvider(Config{Provider: name, BaseURL: "http://127.0.0.1:5000/v1"})
		if err != nil {
			t.Fatalf("Provider %s: %v", name, err)
		}
		if p.Name() != "local" {
			t.Errorf("Provider %s: expected local backend, got %s", name, p.Name())
		}
	}
}

func TestBuildPrompt_TruncatesPageText(t *testing.T) {
	long := strings.Repeat("~", maxPageTextChars+500)
	prompt := BuildPrompt(ClassifyRequest{Query: "q", PageText: long})
	if strings.Count(prompt, "~") != maxPageTextChars {
		t.Errorf("Expected page text truncated to %d chars", maxPageTextChars)
	}
	if !strings.Contains(prompt, "CLASS: <FACT|THEORY|UNSURE|TRASH>") {
		t.Error("Expected output contract in prompt")
	}
}
