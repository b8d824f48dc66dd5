// internal/providers/ollama/provider.go
// Package ollama provides a ChatProvider backed by Ollama-compatible HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/fewshot/internal/appconfig"
	"github.com/mwiater/fewshot/internal/logging"
	"github.com/mwiater/fewshot/internal/providers"
)

const backendName = "ollama"

// Provider implements the providers.ChatProvider interface using the Ollama chat API.
type Provider struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// New constructs a Provider configured with the application's host and request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL: cfg.ProviderURL(),
		timeout: timeout,
	}
}

// streamChunk defines the structure of a single chunk in a streaming response.
type streamChunk struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	TotalDuration   int64  `json:"total_duration"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

// Name identifies the backend in logs.
func (p *Provider) Name() string { return backendName }

// Stream issues a chat request and forwards output to the provided callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	messages := req.Messages
	if len(messages) == 0 {
		messages = []providers.ChatMessage{}
	}

	streamEnabled := !req.DisableStreaming
	options := map[string]any{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	payload := map[string]any{
		"model":    req.Model,
		"messages": messages,
		"options":  options,
		"stream":   streamEnabled,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	logging.LogRequest("FEWSHOT->LLM", backendName, req.Model, body)

	streamCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logging.LogRequest("LLM->FEWSHOT", backendName, req.Model, body)
		return fmt.Errorf("ollama: /api/chat returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if !streamEnabled {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		logging.LogRequest("LLM->FEWSHOT", backendName, req.Model, body)
		var result streamChunk
		if err := json.Unmarshal(body, &result); err != nil {
			return err
		}
		if result.Error != "" {
			return fmt.Errorf("ollama: %s", result.Error)
		}
		if callbacks.OnChunk != nil && result.Message.Content != "" {
			role := result.Message.Role
			if role == "" {
				role = "assistant"
			}
			if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: result.Message.Content}); err != nil {
				return err
			}
		}
		return complete(callbacks, req.Model, result)
	}

	decoder := json.NewDecoder(resp.Body)
	var final streamChunk
	for {
		var chunk streamChunk
		if err := decoder.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if data, err := json.Marshal(chunk); err == nil {
			logging.LogRequest("LLM->FEWSHOT", backendName, req.Model, data)
		}
		if chunk.Error != "" {
			return fmt.Errorf("ollama: %s", chunk.Error)
		}

		if callbacks.OnChunk != nil && chunk.Message.Content != "" {
			if err := callbacks.OnChunk(providers.ChatMessage{Role: chunk.Message.Role, Content: chunk.Message.Content}); err != nil {
				return err
			}
		}

		if chunk.Done {
			final = chunk
			break
		}
	}

	if !final.Done {
		return fmt.Errorf("ollama: stream ended before completion")
	}
	return complete(callbacks, req.Model, final)
}

func complete(callbacks providers.StreamCallbacks, model string, final streamChunk) error {
	if callbacks.OnComplete == nil {
		return nil
	}
	modelName := final.Model
	if modelName == "" {
		modelName = model
	}
	return callbacks.OnComplete(providers.StreamMetadata{
		Model:            modelName,
		CreatedAt:        time.Now(),
		Done:             true,
		FinishReason:     final.DoneReason,
		PromptTokens:     final.PromptEvalCount,
		CompletionTokens: final.EvalCount,
		TotalDuration:    final.TotalDuration,
	})
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}
