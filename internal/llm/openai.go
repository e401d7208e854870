package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider over the OpenAI Chat Completions API.
// With a BaseURL it also serves any OpenAI-compatible local endpoint.
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a hosted OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newChatProvider(config, "openai")
}

// NewLocalProvider creates a provider for a local OpenAI-compatible server.
// No API key required; a placeholder is sent when none is configured.
func NewLocalProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for a local provider")
	}
	if config.APIKey == "" {
		config.APIKey = "local"
	}
	return newChatProvider(config, "local")
}

func newChatProvider(config Config, name string) (*OpenAIProvider, error) {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Classify sends the finding to the chat endpoint and returns the raw block
func (p *OpenAIProvider) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 40 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.name)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
