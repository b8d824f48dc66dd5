// Package openai provides a ChatProvider backed by the OpenAI chat completions API
// or any server that speaks the same protocol.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mwiater/fewshot/internal/appconfig"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/providers"
)

const backendName = "openai"

// ErrMissingAPIKey is returned when no key is configured for the public API.
var ErrMissingAPIKey = errors.New("openai: OPENAI_API_KEY is not set")

// Provider implements providers.ChatProvider using go-openai.
type Provider struct {
	client  *goopenai.Client
	timeout time.Duration
}

// New constructs a Provider. A key is required unless a custom base URL points
// at a compatible local server.
func New(cfg *appconfig.Config) (*Provider, error) {
	key := cfg.Secrets.OpenAIAPIKey
	baseURL := cfg.ProviderURL()
	if key == "" && baseURL == "" {
		return nil, ErrMissingAPIKey
	}

	clientCfg := goopenai.DefaultConfig(key)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout()}

	return &Provider{
		client:  goopenai.NewClientWithConfig(clientCfg),
		timeout: cfg.RequestTimeout(),
	}, nil
}

// Name identifies the backend in logs.
func (p *Provider) Name() string { return backendName }

// Stream sends the conversation and forwards output to the callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	chatReq := buildRequest(req)
	logging.LogRequest("FEWSHOT->LLM", backendName, req.Model, chatReq)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if req.DisableStreaming {
		resp, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return fmt.Errorf("openai: chat completion: %w", err)
		}
		logging.LogRequest("LLM->FEWSHOT", backendName, req.Model, resp)
		if len(resp.Choices) == 0 {
			return fmt.Errorf("openai: response contained no choices")
		}
		choice := resp.Choices[0]
		if callbacks.OnChunk != nil && choice.Message.Content != "" {
			if err := callbacks.OnChunk(providers.ChatMessage{Role: goopenai.ChatMessageRoleAssistant, Content: choice.Message.Content}); err != nil {
				return err
			}
		}
		if callbacks.OnComplete != nil {
			return callbacks.OnComplete(providers.StreamMetadata{
				Model:            modelOr(resp.Model, req.Model),
				CreatedAt:        time.Now(),
				Done:             true,
				FinishReason:     string(choice.FinishReason),
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
			})
		}
		return nil
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return fmt.Errorf("openai: open stream: %w", err)
	}
	defer stream.Close()

	meta := providers.StreamMetadata{Model: req.Model}
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("openai: stream: %w", err)
		}
		logging.LogRequest("LLM->FEWSHOT", backendName, req.Model, chunk)

		if chunk.Model != "" {
			meta.Model = chunk.Model
		}
		if chunk.Usage != nil {
			meta.PromptTokens = chunk.Usage.PromptTokens
			meta.CompletionTokens = chunk.Usage.CompletionTokens
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			meta.FinishReason = string(choice.FinishReason)
		}
		if callbacks.OnChunk != nil && choice.Delta.Content != "" {
			if err := callbacks.OnChunk(providers.ChatMessage{Role: goopenai.ChatMessageRoleAssistant, Content: choice.Delta.Content}); err != nil {
				return err
			}
		}
	}

	if callbacks.OnComplete != nil {
		meta.CreatedAt = time.Now()
		meta.Done = true
		return callbacks.OnComplete(meta)
	}
	return nil
}

func buildRequest(req providers.StreamRequest) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	// go-openai drops a zero temperature from the payload, which the API then
	// treats as 1.0.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      !req.DisableStreaming,
	}
}

func modelOr(got, fallback string) string {
	if got != "" {
		return got
	}
	return fallback
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}
