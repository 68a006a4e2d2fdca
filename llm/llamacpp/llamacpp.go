// Package llamacpp implements llm.Provider against a llama.cpp llama-server
// instance. The server owns the model weights; this provider sends one
// bounded-length completion request per call and applies no retries — errors
// from the runtime propagate to the caller.
package llamacpp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skillsenselab/tubebrief/llm"
	"github.com/skillsenselab/tubebrief/provider"
)

const (
	// ProviderName is the registered name for the llama.cpp provider.
	ProviderName = "llamacpp"

	defaultBaseURL = "http://localhost:8080"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the llama.cpp provider.
type Config struct {
	BaseURL     string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	Temperature float64       `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements llm.Provider using llama-server's /completion API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new llama.cpp LLM provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
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
		"temperature": c.Temperature,
		"timeout":     c.Timeout,
	}
}

// Factory returns a provider.Factory that creates llama.cpp Provider
// instances from a generic config map.
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		lc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			lc.BaseURL = v
		}
		if v, ok := cfg["temperature"].(float64); ok {
			lc.Temperature = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			lc.Timeout = v
		}
		return NewProvider(lc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if llama-server is up and has finished loading the model.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/health", http.NoBody)
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
	compReq := p.buildCompletionRequest(req, false, nil)

	resp, err := p.doRequest(ctx, compReq)
	if err != nil {
		return nil, fmt.Errorf("llamacpp complete: %w", err)
	}

	return toCompletionResponse(resp), nil
}

// CompleteStructured sends a completion request constrained by a JSON schema.
func (p *Provider) CompleteStructured(ctx context.Context, req llm.CompletionRequest, schema any) (*llm.CompletionResponse, error) {
	compReq := p.buildCompletionRequest(req, false, schema)

	resp, err := p.doRequest(ctx, compReq)
	if err != nil {
		return nil, fmt.Errorf("llamacpp complete structured: %w", err)
	}

	return toCompletionResponse(resp), nil
}

// Stream sends a completion request and returns a channel of streamed chunks.
func (p *Provider) Stream(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	compReq := p.buildCompletionRequest(req, true, nil)

	body, err := json.Marshal(compReq)
	if err != nil {
		return nil, fmt.Errorf("llamacpp stream: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/completion", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llamacpp stream: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	//nolint:bodyclose // Body is closed in the goroutine that processes the stream
	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llamacpp stream: send request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		_ = httpResp.Body.Close()
		return nil, fmt.Errorf("llamacpp stream: unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		defer httpResp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

		scanner := bufio.NewScanner(httpResp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			// llama-server streams SSE-style "data: {...}" lines.
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				continue
			}

			var resp completionResponse
			if err := json.Unmarshal([]byte(data), &resp); err != nil {
				ch <- llm.StreamChunk{Err: fmt.Errorf("llamacpp stream: unmarshal chunk: %w", err)}
				return
			}

			chunk := llm.StreamChunk{
				Content: resp.Content,
				Done:    resp.Stop,
			}

			select {
			case ch <- chunk:
			case <-ctx.Done():
				ch <- llm.StreamChunk{Err: ctx.Err()}
				return
			}

			if resp.Stop {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			ch <- llm.StreamChunk{Err: fmt.Errorf("llamacpp stream: read: %w", err)}
		}
	}()

	return ch, nil
}

// --- internal ---

// buildCompletionRequest flattens chat messages into a single prompt; the
// /completion endpoint is prompt-oriented, not chat-oriented.
func (p *Provider) buildCompletionRequest(req llm.CompletionRequest, stream bool, schema any) *completionRequest {
	var b strings.Builder
	if req.SystemPrompt != "" {
		b.WriteString(req.SystemPrompt)
		b.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}

	temperature := p.cfg.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}

	compReq := &completionRequest{
		Prompt:      strings.TrimSpace(b.String()),
		Stream:      stream,
		Temperature: temperature,
		NPredict:    req.MaxTokens,
	}
	if compReq.NPredict == 0 {
		compReq.NPredict = 512
	}
	if schema != nil {
		compReq.JSONSchema = schema
	}
	return compReq
}

func (p *Provider) doRequest(ctx context.Context, compReq *completionRequest) (*completionResponse, error) {
	body, err := json.Marshal(compReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/completion", bytes.NewReader(body))
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

	var resp completionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

func toCompletionResponse(resp *completionResponse) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Content: resp.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.TokensEvaluated,
			CompletionTokens: resp.TokensPredicted,
			TotalTokens:      resp.TokensEvaluated + resp.TokensPredicted,
		},
	}
}

// --- llama-server API types ---

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	NPredict    int     `json:"n_predict"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
	JSONSchema  any     `json:"json_schema,omitempty"`
}

type completionResponse struct {
	Content         string `json:"content"`
	Model           string `json:"model"`
	Stop            bool   `json:"stop"`
	TokensPredicted int    `json:"tokens_predicted"`
	TokensEvaluated int    `json:"tokens_evaluated"`
}
