// internal/metrics/provider.go
package metrics

import (
	"context"
	"time"

	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/providers"
)

// Provider is a decorator that wraps a ChatProvider to record call metrics.
type Provider struct {
	wrapped    providers.ChatProvider
	aggregator *Aggregator
}

// NewProvider creates a new metrics-enabled provider that wraps an existing ChatProvider.
func NewProvider(wrapped providers.ChatProvider, aggregator *Aggregator) *Provider {
	logging.LogEvent("[METRICS] Wrapping %s provider with metrics provider", wrapped.Name())
	return &Provider{wrapped: wrapped, aggregator: aggregator}
}

// Name reports the wrapped provider's name.
func (p *Provider) Name() string { return p.wrapped.Name() }

// Stream intercepts the call to the wrapped provider's Stream method to record timing.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	start := time.Now()
	var firstChunk time.Time

	onChunk := func(chunk providers.ChatMessage) error {
		if firstChunk.IsZero() {
			firstChunk = time.Now()
		}
		if callbacks.OnChunk != nil {
			return callbacks.OnChunk(chunk)
		}
		return nil
	}

	onComplete := func(meta providers.StreamMetadata) error {
		if p.aggregator != nil {
			var ttft time.Duration
			if !firstChunk.IsZero() {
				ttft = firstChunk.Sub(start)
			}
			if meta.Model == "" {
				meta.Model = req.Model
			}
			p.aggregator.Record(meta, ttft, time.Since(start))
		}
		if callbacks.OnComplete != nil {
			return callbacks.OnComplete(meta)
		}
		return nil
	}

	err := p.wrapped.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk:    onChunk,
		OnComplete: onComplete,
	})
	if err != nil && p.aggregator != nil {
		p.aggregator.RecordFailure(req.Model)
	}
	return err
}

// Close passes the call through to the wrapped provider.
func (p *Provider) Close() error {
	return p.wrapped.Close()
}
