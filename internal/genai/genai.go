// Package genai wraps the OpenAI API for the operations the coaching core
// needs: goal evaluation, goal rewording, and text embedding. Calls go
// through an explicit retry policy with doubling backoff.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Error variables for better error handling and testability
var (
	ErrNoChoicesReturned = errors.New("no choices returned")
	ErrNoEmbeddingData   = errors.New("no embedding data returned")
	ErrMissingAPIKey     = errors.New("OPENAI_API_KEY not set")
)

// chatService defines the minimal interface for chat completions.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// embedService defines the minimal interface for embeddings.
type embedService interface {
	Create(ctx context.Context, params openai.EmbeddingNewParams) (openai.CreateEmbeddingResponse, error)
}

type openaiChat struct {
	client openai.Client
}

func (s openaiChat) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

type openaiEmbed struct {
	client openai.Client
}

func (s openaiEmbed) Create(ctx context.Context, params openai.EmbeddingNewParams) (openai.CreateEmbeddingResponse, error) {
	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return openai.CreateEmbeddingResponse{}, err
	}
	return *resp, nil
}

// RetryPolicy retries a failing call with doubling delays. The zero value
// performs exactly one attempt.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryPolicy matches the evaluation pipeline: three attempts
// starting at one second.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second}

// Do runs fn until it succeeds, attempts are exhausted, or the context is
// done. The last error is returned when all attempts fail.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		slog.Debug("genai retry attempt failed", "attempt", attempt, "error", err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Retry          RetryPolicy
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key, overriding the environment variable.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model used for evaluation and rewording.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithEmbeddingModel sets the model used for history embeddings.
func WithEmbeddingModel(model string) Option {
	return func(o *Opts) { o.EmbeddingModel = model }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *Opts) { o.Retry = p }
}

// Client wraps the OpenAI services the coaching core uses.
type Client struct {
	chat           chatService
	embed          embedService
	model          string
	embeddingModel string
	retry          RetryPolicy
}

// NewClient initializes a GenAI client. The API key comes from options or
// the OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	o := Opts{
		Model:          openai.ChatModelGPT4oMini,
		EmbeddingModel: "text-embedding-3-small",
		Retry:          DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if o.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	cli := openai.NewClient(option.WithAPIKey(o.APIKey))
	slog.Debug("genai.NewClient initialized", "model", o.Model)
	return &Client{
		chat:           openaiChat{client: cli},
		embed:          openaiEmbed{client: cli},
		model:          o.Model,
		embeddingModel: o.EmbeddingModel,
		retry:          o.Retry,
	}, nil
}

const evaluatorSystemPrompt = "You are a precise evaluator. Follow the requested output format exactly."

// EvaluateGoal sends a goal-evaluation prompt and returns the raw
// completion text.
func (c *Client) EvaluateGoal(ctx context.Context, prompt string) (string, error) {
	slog.Debug("genai.EvaluateGoal invoked", "prompt_len", len(prompt))
	result, err := c.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, evaluatorSystemPrompt, prompt)
	})
	if err != nil {
		slog.Error("genai.EvaluateGoal failed", "error", err)
		return "", fmt.Errorf("evaluate goal: %w", err)
	}
	return result, nil
}

const rewriterSystemPrompt = "You are a health coach assistant that rewrites goals concisely."

// RewordGoal sends a goal-rewording prompt and returns the cleaned text.
func (c *Client) RewordGoal(ctx context.Context, prompt string) (string, error) {
	slog.Debug("genai.RewordGoal invoked", "prompt_len", len(prompt))
	result, err := c.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, rewriterSystemPrompt, prompt)
	})
	if err != nil {
		slog.Error("genai.RewordGoal failed", "error", err)
		return "", fmt.Errorf("reword goal: %w", err)
	}
	return result, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}
	resp, err := c.chat.Create(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesReturned
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	slog.Debug("genai.Embed invoked", "text_len", len(text))
	params := openai.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	}
	resp, err := c.embed.Create(ctx, params)
	if err != nil {
		slog.Error("genai.Embed failed", "error", err)
		return nil, fmt.Errorf("embed text: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingData
	}
	return resp.Data[0].Embedding, nil
}
