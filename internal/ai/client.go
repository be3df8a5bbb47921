package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// Model name mapping for the short aliases accepted on the CLI.
const (
	ModelOpus   = "claude-opus-4-1-20250805"
	ModelSonnet = "claude-sonnet-4-5-20250929"
	ModelHaiku  = "claude-3-5-haiku-20241022"
)

// ResolveModel maps a CLI alias (opus/sonnet/haiku) to a full model name.
// Anything else passes through unchanged so full names keep working.
func ResolveModel(alias string) string {
	switch alias {
	case "opus":
		return ModelOpus
	case "sonnet":
		return ModelSonnet
	case "haiku":
		return ModelHaiku
	default:
		return alias
	}
}

// Client wraps the Anthropic Messages API with retry and request pacing.
type Client struct {
	api     *anthropic.Client
	model   string
	limiter *rate.Limiter

	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewClient creates a Client. The API key comes from cfg or the
// ANTHROPIC_API_KEY environment variable.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	api := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		api:   &api,
		model: ResolveModel(model),
		// One request per second is plenty for this tool's few direct API
		// calls and keeps us clear of rate limits.
		limiter:        rate.NewLimiter(rate.Every(time.Second), 2),
		maxRetries:     3,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
	}, nil
}

// Complete sends a single-turn prompt and returns the concatenated text of
// the response, retrying transient failures with exponential backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var text string

	err := c.retryWithBackoff(ctx, "completion", func(attemptCtx context.Context) error {
		resp, err := c.api.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 2048,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return err
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		text = sb.String()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// retryWithBackoff executes fn with pacing, retry, and exponential backoff.
func (c *Client) retryWithBackoff(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s canceled while rate limited: %w", operation, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetriable(err) {
			return fmt.Errorf("%s failed: %w", operation, err)
		}
		if attempt == c.maxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
		case <-ctx.Done():
			return fmt.Errorf("%s canceled during backoff: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, c.maxRetries+1, lastErr)
}

// isRetriable classifies transient failures worth retrying. Rate limits and
// server-side errors retry; client errors do not.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{
		"429", "rate limit",
		"500", "502", "503", "504",
		"connection refused", "connection reset", "timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
