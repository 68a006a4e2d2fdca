// Package ollama implements llm.Provider against the Ollama HTTP API.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillsenselab/tubebrief/llm"
	"github.com/skillsenselab/tubebrief/provider"
)

const (
	// ProviderName is the registered name for the Ollama provider.
	ProviderName = "ollama"

	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3"
	defaultTimeout     = 120 * time.Second
)

// Config holds configuration for the Ollama provider.
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model"`
	Temperature float64       `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements llm.Provider using Ollama's HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Ollama LLM provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Options returns the config as the generic option map consumed by Factory.
func (c Config) Options() map[string]any {
	return map[string]any{
		"base_url":    c.BaseURL,
		"model":       c.Model,
		"temperature": c.Temperature,
		"timeout":     c.Timeout,
	}
}

// Factory returns a provider.Factory that creates Ollama Provider instances
// from a generic config map.
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		oc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		if v, ok := cfg["temperature"].(float64); ok {
			oc.Temperature = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			oc.Timeout = v
		}
		return NewProvider(oc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Ollama server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends a completion request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	chatReq := p.buildChatRequest(req, false, nil)

	resp, err := p.doRequest(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama complete: %w", err)
	}

	return toCompletionResponse(resp), nil
}

// CompleteStructured sends a completion request with JSON format mode.
func (p *Provider) CompleteStructured(ctx context.Context, req llm.CompletionRequest, schema any) (*llm.CompletionResponse, error) {
	var format any = "json"
	if schema != nil {
		format = schema
	}
	chatReq := p.buildChatRequest(req, false, format)

	resp, err := p.doRequest(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama complete structured: %w", err)
	}

	return toCompletionResponse(resp), nil
}

// Stream sends a completion request and returns a channel of streamed chunks.
func (p *Provider) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	chatReq := p.buildChatRequest(req, true, nil)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama stream: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama stream: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	//nolint:bodyclose // Body is closed in the goroutine that processes the stream
	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama stream: send request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		return nil, fmt.Errorf("ollama stream: unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		defer httpResp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

		scanner := bufio.NewScanner(httpResp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var resp ollamaChatResponse
			if err := json.Unmarshal(line, &resp); err != nil {
				ch <- llm.StreamChunk{Err: fmt.Errorf("ollama stream: unmarshal chunk: %w", err)}
				return
			}

			chunk := llm.StreamChunk{
				Content: resp.Message.Content,
				Done:    resp.Done,
			}

			select {
			case ch <- chunk:
			case <-ctx.Done():
				ch <- llm.StreamChunk{Err: ctx.Err()}
				return
			}

			if resp.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			ch <- llm.StreamChunk{Err: fmt.Errorf("ollama stream: read: %w", err)}
		}
	}()

	return ch, nil
}

// --- internal ---

func (p *Provider) buildChatRequest(req llm.CompletionRequest, stream bool, format any) *ollamaChatRequest {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	temperature := p.cfg.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}

	messages := make([]ollamaMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	chatReq := &ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   stream,
		Format:   format,
		Options:  map[string]any{"temperature": temperature},
	}
	if req.MaxTokens > 0 {
		chatReq.Options["num_predict"] = req.MaxTokens
	}
	return chatReq
}

func (p *Provider) doRequest(ctx context.Context, chatReq *ollamaChatRequest) (*ollamaChatResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

func toCompletionResponse(resp *ollamaChatResponse) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
}

// --- Ollama API types ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   any             `json:"format,omitempty"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}
