package llm

import (
	"context"
	"fmt"
)

// maxCharsPerToken is a conservative upper bound on how many runes a single
// generated token can expand to. Used only as a backstop for backends that
// ignore the token budget.
const maxCharsPerToken = 6

// ModelConfig holds the immutable settings of one Invoker instance.
type ModelConfig struct {
	// Model is the model name or path known to the backend.
	Model string `yaml:"model" mapstructure:"model"`
	// MaxLength is the maximum response length in tokens.
	MaxLength int `yaml:"max_length" mapstructure:"max_length"`
	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *ModelConfig) ApplyDefaults() {
	if c.MaxLength == 0 {
		c.MaxLength = 512
	}
}

// Invoker presents a uniform "prompt in, text out" call contract over any
// Provider, so the pipeline does not care which inference engine is configured.
type Invoker struct {
	provider Provider
	cfg      ModelConfig
}

// NewInvoker creates an Invoker bound to a provider and model config.
func NewInvoker(p Provider, cfg ModelConfig) *Invoker {
	cfg.ApplyDefaults()
	return &Invoker{provider: p, cfg: cfg}
}

// Config returns the invoker's model configuration.
func (i *Invoker) Config() ModelConfig { return i.cfg }

// Provider returns the underlying LLM provider.
func (i *Invoker) Provider() Provider { return i.provider }

// Call sends a single prompt and returns the generated text. The response
// never exceeds the configured maximum length: the token budget is passed to
// the backend and the returned text is hard-capped as a backstop.
func (i *Invoker) Call(ctx context.Context, prompt string) (string, error) {
	resp, err := i.provider.Complete(ctx, i.request(prompt))
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", i.provider.Name(), err)
	}
	return i.cap(resp.Content), nil
}

// CallStructured sends a single prompt expecting JSON output matching schema.
func (i *Invoker) CallStructured(ctx context.Context, prompt string, schema any) (string, error) {
	resp, err := i.provider.CompleteStructured(ctx, i.request(prompt), schema)
	if err != nil {
		return "", fmt.Errorf("invoke structured %s: %w", i.provider.Name(), err)
	}
	return i.cap(resp.Content), nil
}

func (i *Invoker) request(prompt string) CompletionRequest {
	return CompletionRequest{
		Model:       i.cfg.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: i.cfg.Temperature,
		MaxTokens:   i.cfg.MaxLength,
	}
}

func (i *Invoker) cap(text string) string {
	limit := i.cfg.MaxLength * maxCharsPerToken
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return text
}
