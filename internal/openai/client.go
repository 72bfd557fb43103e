package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
	"github.com/cloo-solutions/dupefinder/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the chat model used for extraction and comparison
	DefaultModel = openai.GPT4o
	// DefaultTemperature keeps replies close to deterministic
	DefaultTemperature float32 = 0.2
)

var (
	// ErrEmptyQuery is returned when the query is blank
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrNoChoices is returned when the API reply carries no message
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatAPI is the subset of the OpenAI API the client calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client wraps the OpenAI chat API for product extraction and ingredient comparison
type Client struct {
	api    ChatAPI
	model  string
	logger *zap.Logger
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string, logger *zap.Logger) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey}, logger)
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config, logger *zap.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return NewClientWithAPI(openai.NewClientWithConfig(clientConfig), cfg.Model, logger)
}

// NewClientWithAPI builds a client around any ChatAPI implementation.
func NewClientWithAPI(api ChatAPI, model string, logger *zap.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:    api,
		model:  model,
		logger: logger.Named("openai"),
	}
}

// Model returns the configured chat model
func (c *Client) Model() string {
	return c.model
}

// ExtractProductInfo asks the model for a structured guess at the product
// named or described by query.
func (c *Client) ExtractProductInfo(ctx context.Context, query string) (*domain.ExtractedProduct, error) {
	if query == "" {
		return nil, domain.WithCause(domain.ErrExtractionFailed, ErrEmptyQuery)
	}

	content, err := c.complete(ctx, "extract", extractSystemPrompt, extractUserPrompt(query))
	if err != nil {
		return nil, domain.WithCause(domain.ErrExtractionFailed, err)
	}

	extracted, err := decodeReply[domain.ExtractedProduct](content)
	if err != nil {
		c.logger.Warn("unparseable extraction reply", zap.Error(err), zap.Int("content_len", len(content)))
		return nil, domain.WithCause(domain.ErrExtractionFailed, err)
	}

	return extracted, nil
}

// CompareIngredients asks the model to compare two ingredient lists.
func (c *Client) CompareIngredients(ctx context.Context, original, dupe []string) (*domain.IngredientComparison, error) {
	if len(original) == 0 || len(dupe) == 0 {
		return nil, domain.ErrMissingIngredients
	}

	content, err := c.complete(ctx, "compare", compareSystemPrompt, compareUserPrompt(original, dupe))
	if err != nil {
		return nil, domain.WithCause(domain.ErrComparisonFailed, err)
	}

	comparison, err := decodeReply[domain.IngredientComparison](content)
	if err != nil {
		c.logger.Warn("unparseable comparison reply", zap.Error(err), zap.Int("content_len", len(content)))
		return nil, domain.WithCause(domain.ErrComparisonFailed, err)
	}

	return comparison, nil
}

// Ping verifies the API key by listing models.
func (c *Client) Ping(ctx context.Context) (int, error) {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list models: %w", err)
	}
	return len(models.Models), nil
}

func (c *Client) complete(ctx context.Context, operation, system, prompt string) (string, error) {
	start := time.Now()
	c.logger.Debug("chat completion request",
		zap.String("operation", operation),
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: DefaultTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err == nil && len(resp.Choices) == 0 {
		err = ErrNoChoices
	}
	metrics.ObserveLLM(operation, start, err)
	if err != nil {
		c.logger.Error("chat completion failed",
			zap.String("operation", operation),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	c.logger.Debug("chat completion response",
		zap.String("operation", operation),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}
