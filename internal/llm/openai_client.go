// ABOUTME: OpenAI client for free-form answers and sentiment labels
// ABOUTME: Wraps go-openai chat completions with timeout and backoff retries
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/jarvis/internal/util"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultTimeout bounds each completion attempt
	DefaultTimeout = 30 * time.Second
)

// Sentiment labels
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// ErrNoChoices is returned when the API answers without a completion
var ErrNoChoices = errors.New("no completion choices returned")

// ChatCompleter is the part of *openai.Client this package needs
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:     apiKey,
		ChatModel:  DefaultChatModel,
		Timeout:    DefaultTimeout,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client     ChatCompleter
	chatModel  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newClient(openai.NewClient(config.APIKey), config), nil
}

// NewOpenAIClientWithCompleter uses an existing completer, e.g. a test double
func NewOpenAIClientWithCompleter(c ChatCompleter, config *ClientConfig) *OpenAIClient {
	return newClient(c, config)
}

func newClient(c ChatCompleter, config *ClientConfig) *OpenAIClient {
	model := config.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		client:     c,
		chatModel:  model,
		timeout:    timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}
}

// Model returns the chat model in use
func (c *OpenAIClient) Model() string {
	return c.chatModel
}

// complete runs one system+user exchange, retrying transient failures
func (c *OpenAIClient) complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	var content string
	attempt := 0

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: temperature,
		})
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("chat completion failed")
			return fmt.Errorf("attempt %d: %w", attempt, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("attempt %d: %w", attempt, ErrNoChoices)
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed after %d attempts: %w", attempt, err)
	}
	return content, nil
}

// Answer asks the model for a short spoken-style answer to a question
func (c *OpenAIClient) Answer(ctx context.Context, question string) (string, error) {
	systemPrompt := `You are Jarvis, a concise home assistant. Answer the user's question in one or two
spoken sentences. If you do not know, say so plainly.`

	return c.complete(ctx, systemPrompt, question, 0.3)
}

// Analyze labels the sentiment of an utterance as positive, negative, or
// neutral. Unrecognized model output is treated as neutral.
func (c *OpenAIClient) Analyze(ctx context.Context, text string) (string, error) {
	systemPrompt := `You are a sentiment classifier. Reply with exactly one word:
positive, negative, or neutral.`

	out, err := c.complete(ctx, systemPrompt, text, 0)
	if err != nil {
		return "", err
	}
	return normalizeSentiment(out), nil
}

func normalizeSentiment(s string) string {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), ".!\"'"))
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return s
	}
	return SentimentNeutral
}
