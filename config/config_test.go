package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadServiceFromFile(t *testing.T) {
	path := writeConfig(t, `
name: tubebrief
environment: production
llm:
  backend: ollama
  model:
    max_length: 256
  ollama:
    base_url: http://inference:11434
    timeout: 30s
transcription:
  backend: whisper
  whisper:
    url: http://stt:9000
`)

	cfg, err := LoadService("tubebrief", WithConfigFile(path))
	if err != nil {
		t.Fatalf("LoadService() error: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.LLM.Backend != BackendOllama {
		t.Errorf("LLM.Backend = %q", cfg.LLM.Backend)
	}
	if cfg.LLM.Model.MaxLength != 256 {
		t.Errorf("Model.MaxLength = %d", cfg.LLM.Model.MaxLength)
	}
	if cfg.LLM.Ollama.Timeout != 30*time.Second {
		t.Errorf("Ollama.Timeout = %v", cfg.LLM.Ollama.Timeout)
	}
	if cfg.Transcription.Whisper.URL != "http://stt:9000" {
		t.Errorf("Whisper.URL = %q", cfg.Transcription.Whisper.URL)
	}
}

func TestLoadServiceDefaults(t *testing.T) {
	cfg, err := LoadService("tubebrief", WithConfigFile(filepath.Join(t.TempDir(), "absent.yml")))
	if err != nil {
		t.Fatalf("LoadService() error: %v", err)
	}
	if cfg.Name != "tubebrief" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Environment != "development" || !cfg.Debug {
		t.Errorf("expected development defaults, got env=%q debug=%v", cfg.Environment, cfg.Debug)
	}
	if cfg.Transcription.Backend != BackendWhisperCpp {
		t.Errorf("Transcription.Backend = %q", cfg.Transcription.Backend)
	}
	if cfg.LLM.Backend != BackendLlamaCpp {
		t.Errorf("LLM.Backend = %q", cfg.LLM.Backend)
	}
	if cfg.LLM.Model.MaxLength != 512 {
		t.Errorf("Model.MaxLength = %d", cfg.LLM.Model.MaxLength)
	}
	if cfg.Fetch.Format == "" {
		t.Error("Fetch.Format should have a default")
	}
}

func TestLoadServiceEnvOverride(t *testing.T) {
	t.Setenv("LLM_BACKEND", "ollama")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadService("tubebrief", WithConfigFile(filepath.Join(t.TempDir(), "absent.yml")))
	if err != nil {
		t.Fatalf("LoadService() error: %v", err)
	}
	if cfg.LLM.Backend != BackendOllama {
		t.Errorf("LLM.Backend = %q, want env override", cfg.LLM.Backend)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want env override", cfg.Server.Port)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Transcription.Backend = "siri"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown transcription backend")
	}
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Environment = "qa"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown environment")
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("LLM_OLLAMA_BASE_URL")
	want := map[string]bool{
		"llm_ollama_base_url": false,
		"llm.ollama.base.url": false,
		"llm.ollama_base_url": false,
		"llm.ollama.base_url": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("missing variant %q in %v", k, variants)
		}
	}
}

func TestBackendOptions(t *testing.T) {
	tc := TranscriptionConfig{Backend: BackendWhisper}
	tc.Whisper.URL = "http://whisper:8387"
	opts := tc.BackendOptions()
	if opts["url"] != "http://whisper:8387" {
		t.Errorf("whisper options = %v", opts)
	}

	tc.Backend = BackendWhisperCpp
	tc.WhisperCpp.ModelPath = "/models/ggml-base.bin"
	opts = tc.BackendOptions()
	if opts["model_path"] != "/models/ggml-base.bin" {
		t.Errorf("whispercpp options = %v", opts)
	}

	lc := LLMConfig{Backend: BackendOllama}
	lc.Ollama.BaseURL = "http://ollama:11434"
	opts = lc.BackendOptions()
	if opts["base_url"] != "http://ollama:11434" {
		t.Errorf("ollama options = %v", opts)
	}

	lc.Backend = "unknown"
	if lc.BackendOptions() != nil {
		t.Error("unknown backend should have no options")
	}
}
