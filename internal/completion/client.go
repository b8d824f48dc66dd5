// Package completion obtains model completions for conversations, consulting
// the completion cache first and retrying provider failures.
package completion

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/mwiater/fewshot/internal/cache"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/prompt"
	"github.com/mwiater/fewshot/internal/providers"
)

// Params are the per-call generation settings.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Stream      bool
}

// Client completes conversations through a provider with caching.
type Client struct {
	provider providers.ChatProvider
	cache    *cache.Cache
	retry    RetryPolicy
	limiter  *rate.Limiter
	echo     bool

	calls  atomic.Int64
	hits   atomic.Int64
	failed atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithRequestsPerMinute paces provider calls. Zero disables pacing.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithEcho enables or disables console echo of conversations and chunks.
func WithEcho(enabled bool) Option {
	return func(c *Client) { c.echo = enabled }
}

// New returns a Client. store may be nil, in which case nothing is cached.
func New(provider providers.ChatProvider, store *cache.Cache, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		cache:    store,
		retry:    DefaultRetryPolicy(),
		echo:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats reports provider calls, cache hits and failed attempts so far.
func (c *Client) Stats() (calls, hits, failed int64) {
	return c.calls.Load(), c.hits.Load(), c.failed.Load()
}

// Complete returns the completion for conv. A cached answer for the same
// model and serialized conversation is returned without a provider call.
// Otherwise the provider is called, retrying per the policy, and the result
// is cached before returning.
func (c *Client) Complete(ctx context.Context, conv prompt.Conversation, p Params) (string, error) {
	fetch := func() (string, error) { return c.fetch(ctx, conv, p) }
	if c.cache == nil {
		return fetch()
	}

	text, hit, err := c.cache.Do(p.Model, conv.Serialize(), fetch)
	if err != nil {
		return "", err
	}
	if hit {
		c.hits.Add(1)
	}
	return text, nil
}

func (c *Client) fetch(ctx context.Context, conv prompt.Conversation, p Params) (string, error) {
	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("completion: rate limit wait: %w", err)
			}
		}

		text, err := c.call(ctx, conv, p)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("completion: %w", ctxErr)
		}

		c.failed.Add(1)
		if c.retry.exhausted(attempt) {
			return "", &ProviderError{Provider: c.provider.Name(), Model: p.Model, Attempts: attempt, Err: err}
		}
		logging.LogEvent("An error occurred: %v. Retrying in %s (attempt %d)...", err, c.retry.Delay, attempt)

		if c.retry.Delay > 0 {
			timer := time.NewTimer(c.retry.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", fmt.Errorf("completion: retry wait: %w", ctx.Err())
			case <-timer.C:
			}
		}
	}
}

func (c *Client) call(ctx context.Context, conv prompt.Conversation, p Params) (string, error) {
	c.calls.Add(1)

	turns := conv.Turns()
	messages := make([]providers.ChatMessage, len(turns))
	echoed := make([]logging.Turn, len(turns))
	for i, t := range turns {
		messages[i] = providers.ChatMessage{Role: t.Role, Content: t.Content}
		echoed[i] = logging.Turn{Role: t.Role, Content: t.Content}
	}
	if c.echo {
		logging.PrintConversation(p.Model, p.Temperature, echoed)
	}

	var sb strings.Builder
	err := c.provider.Stream(ctx, providers.StreamRequest{
		Model:            p.Model,
		Messages:         messages,
		Temperature:      p.Temperature,
		MaxTokens:        p.MaxTokens,
		DisableStreaming: !p.Stream,
	}, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			sb.WriteString(msg.Content)
			if c.echo && p.Stream {
				logging.PrintChunk(msg.Content)
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}

	text := sb.String()
	if c.echo {
		logging.PrintCompletion(text)
	}
	return text, nil
}
