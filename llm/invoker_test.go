package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type stubProvider struct {
	lastReq   CompletionRequest
	content   string
	err       error
	available bool
}

func (s *stubProvider) Name() string                       { return "stub" }
func (s *stubProvider) IsAvailable(_ context.Context) bool { return s.available }

func (s *stubProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Content: s.content, Model: req.Model}, nil
}

func (s *stubProvider) CompleteStructured(ctx context.Context, req CompletionRequest, _ any) (*CompletionResponse, error) {
	return s.Complete(ctx, req)
}

func (s *stubProvider) Stream(_ context.Context, _ CompletionRequest) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk)
	close(ch)
	return ch, nil
}

func TestInvokerPassesModelConfig(t *testing.T) {
	stub := &stubProvider{content: "a summary"}
	inv := NewInvoker(stub, ModelConfig{Model: "llama-2-7b", MaxLength: 256, Temperature: 0.2})

	got, err := inv.Call(context.Background(), "summarize this")
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if got != "a summary" {
		t.Errorf("Call() = %q", got)
	}
	if stub.lastReq.Model != "llama-2-7b" {
		t.Errorf("request model = %q", stub.lastReq.Model)
	}
	if stub.lastReq.MaxTokens != 256 {
		t.Errorf("request max tokens = %d, want 256", stub.lastReq.MaxTokens)
	}
	if len(stub.lastReq.Messages) != 1 || stub.lastReq.Messages[0].Content != "summarize this" {
		t.Errorf("unexpected messages: %+v", stub.lastReq.Messages)
	}
}

func TestInvokerDefaultMaxLength(t *testing.T) {
	inv := NewInvoker(&stubProvider{}, ModelConfig{Model: "m"})
	if inv.Config().MaxLength != 512 {
		t.Errorf("default MaxLength = %d, want 512", inv.Config().MaxLength)
	}
}

func TestInvokerOutputNeverExceedsBound(t *testing.T) {
	// A backend that ignores the token budget entirely.
	stub := &stubProvider{content: strings.Repeat("x", 100000)}
	inv := NewInvoker(stub, ModelConfig{Model: "m", MaxLength: 64})

	got, err := inv.Call(context.Background(), "p")
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if len([]rune(got)) > 64*maxCharsPerToken {
		t.Errorf("output length %d exceeds bound %d", len(got), 64*maxCharsPerToken)
	}
}

func TestInvokerErrorPropagates(t *testing.T) {
	stub := &stubProvider{err: fmt.Errorf("runtime exploded")}
	inv := NewInvoker(stub, ModelConfig{Model: "m"})

	_, err := inv.Call(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error from provider")
	}
	if !strings.Contains(err.Error(), "runtime exploded") {
		t.Errorf("error %q does not wrap cause", err)
	}
}
