package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/tubebrief/config"
	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/fetch"
	"github.com/skillsenselab/tubebrief/llm"
	"github.com/skillsenselab/tubebrief/logger"
	"github.com/skillsenselab/tubebrief/server/endpoint"
	"github.com/skillsenselab/tubebrief/transcription"
)

const testURL = "https://www.youtube.com/watch?v=h5id4erwD4s"

type fakeFetcher struct {
	asset *fetch.AudioAsset
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetch.AudioAsset, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.asset, nil
}

type fakeTranscriber struct {
	text      string
	err       error
	available bool
	calls     int
}

func (f *fakeTranscriber) Name() string                     { return "fake-stt" }
func (f *fakeTranscriber) IsAvailable(context.Context) bool { return f.available }
func (f *fakeTranscriber) Transcribe(context.Context, transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &transcription.TranscriptionResponse{Text: f.text}, nil
}

type fakeGenerator struct {
	content   string
	available bool

	lastModel string
}

func (f *fakeGenerator) Name() string                     { return "fake-llm" }
func (f *fakeGenerator) IsAvailable(context.Context) bool { return f.available }
func (f *fakeGenerator) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastModel = req.Model
	return &llm.CompletionResponse{Content: f.content}, nil
}
func (f *fakeGenerator) CompleteStructured(ctx context.Context, req llm.CompletionRequest, _ any) (*llm.CompletionResponse, error) {
	return f.Complete(ctx, req)
}
func (f *fakeGenerator) Stream(context.Context, llm.CompletionRequest) (<-chan llm.StreamChunk, error) {
	return nil, errors.New("not implemented")
}

func tempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio_test.m4a")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func newApp(t *testing.T, fetcher AudioFetcher, stt transcription.Provider, gen llm.Provider) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.LLM.Model.Model = "default-model"
	return &App{
		cfg:         cfg,
		log:         logger.NewDefault("test"),
		fetcher:     fetcher,
		transcriber: stt,
		generator:   gen,
	}
}

func TestBuildTranscriberSelectsBackend(t *testing.T) {
	cfg := config.TranscriptionConfig{Backend: config.BackendWhisper}
	p, err := buildTranscriber(cfg)
	if err != nil {
		t.Fatalf("buildTranscriber() error: %v", err)
	}
	if p.Name() != config.BackendWhisper {
		t.Errorf("Name() = %q, want %q", p.Name(), config.BackendWhisper)
	}

	cfg.Backend = config.BackendWhisperCpp
	p, err = buildTranscriber(cfg)
	if err != nil {
		t.Fatalf("buildTranscriber() error: %v", err)
	}
	if p.Name() != config.BackendWhisperCpp {
		t.Errorf("Name() = %q, want %q", p.Name(), config.BackendWhisperCpp)
	}
}

func TestBuildTranscriberUnknownBackend(t *testing.T) {
	_, err := buildTranscriber(config.TranscriptionConfig{Backend: "deepgram"})
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestBuildGeneratorSelectsBackend(t *testing.T) {
	cfg := config.LLMConfig{Backend: config.BackendOllama}
	p, err := buildGenerator(cfg)
	if err != nil {
		t.Fatalf("buildGenerator() error: %v", err)
	}
	if p.Name() != config.BackendOllama {
		t.Errorf("Name() = %q, want %q", p.Name(), config.BackendOllama)
	}

	cfg.Backend = config.BackendLlamaCpp
	p, err = buildGenerator(cfg)
	if err != nil {
		t.Fatalf("buildGenerator() error: %v", err)
	}
	if p.Name() != config.BackendLlamaCpp {
		t.Errorf("Name() = %q, want %q", p.Name(), config.BackendLlamaCpp)
	}
}

func TestBuildGeneratorUnknownBackend(t *testing.T) {
	_, err := buildGenerator(config.LLMConfig{Backend: "openai"})
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	path := tempAudio(t)
	fetcher := &fakeFetcher{asset: &fetch.AudioAsset{URL: testURL, Path: path}}
	stt := &fakeTranscriber{text: "spoken words"}
	gen := &fakeGenerator{content: "the summary\n\n[INST] noise"}
	a := newApp(t, fetcher, stt, gen)

	outcome, err := a.Summarize(context.Background(), testURL, "")
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if outcome.Summary != "the summary" {
		t.Errorf("Summary = %q", outcome.Summary)
	}
	if !outcome.Extracted {
		t.Error("Extracted should be true")
	}
	if outcome.Transcript != "spoken words" {
		t.Errorf("Transcript = %q", outcome.Transcript)
	}
	if outcome.Elapsed <= 0 {
		t.Error("Elapsed should be positive")
	}
	if gen.lastModel != "default-model" {
		t.Errorf("model = %q", gen.lastModel)
	}

	// Audio is removed after the run.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected downloaded audio to be cleaned up")
	}
	if outcome.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty after cleanup", outcome.AudioPath)
	}
}

func TestSummarizeModelOverride(t *testing.T) {
	fetcher := &fakeFetcher{asset: &fetch.AudioAsset{URL: testURL, Path: tempAudio(t)}}
	gen := &fakeGenerator{content: "out"}
	a := newApp(t, fetcher, &fakeTranscriber{text: "words"}, gen)

	if _, err := a.Summarize(context.Background(), testURL, "/models/llama-2-7b.gguf"); err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if gen.lastModel != "/models/llama-2-7b.gguf" {
		t.Errorf("model = %q, want per-request override", gen.lastModel)
	}
}

func TestSummarizeMissingURL(t *testing.T) {
	a := newApp(t, &fakeFetcher{}, &fakeTranscriber{}, &fakeGenerator{})
	_, err := a.Summarize(context.Background(), "", "")
	if !apperrors.IsCode(err, apperrors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

func TestSummarizeFetchFailure(t *testing.T) {
	fetchErr := apperrors.StreamNotFound(testURL, "bestaudio[abr<=160]")
	stt := &fakeTranscriber{text: "words"}
	a := newApp(t, &fakeFetcher{err: fetchErr}, stt, &fakeGenerator{content: "out"})

	_, err := a.Summarize(context.Background(), testURL, "")
	if !apperrors.IsCode(err, apperrors.ErrCodeStreamNotFound) {
		t.Errorf("expected STREAM_NOT_FOUND, got %v", err)
	}
	if stt.calls != 0 {
		t.Error("transcription must not run when the download failed")
	}
}

func TestSummarizeCleanupOnPipelineFailure(t *testing.T) {
	path := tempAudio(t)
	fetcher := &fakeFetcher{asset: &fetch.AudioAsset{URL: testURL, Path: path}}
	stt := &fakeTranscriber{err: errors.New("decoder error")}
	a := newApp(t, fetcher, stt, &fakeGenerator{content: "out"})

	if _, err := a.Summarize(context.Background(), testURL, ""); err == nil {
		t.Fatal("expected pipeline error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("audio must be cleaned up even when the pipeline fails")
	}
}

func TestSummarizeKeepAudio(t *testing.T) {
	path := tempAudio(t)
	fetcher := &fakeFetcher{asset: fetch.KeptAsset(testURL, path)}
	a := newApp(t, fetcher, &fakeTranscriber{text: "words"}, &fakeGenerator{content: "out"})
	a.cfg.Fetch.KeepAudio = true

	outcome, err := a.Summarize(context.Background(), testURL, "")
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if outcome.AudioPath != path {
		t.Errorf("AudioPath = %q, want %q", outcome.AudioPath, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("keep_audio run must retain the file")
	}
}

func TestHealthChecker(t *testing.T) {
	a := newApp(t, &fakeFetcher{}, &fakeTranscriber{available: true}, &fakeGenerator{available: false})

	components := a.HealthChecker()(context.Background())
	if len(components) != 2 {
		t.Fatalf("len(components) = %d", len(components))
	}
	if components[0].Name != "transcription" || components[0].Status != endpoint.StatusHealthy {
		t.Errorf("transcription health = %+v", components[0])
	}
	if components[1].Name != "llm" || components[1].Status != endpoint.StatusUnhealthy {
		t.Errorf("llm health = %+v", components[1])
	}
}
