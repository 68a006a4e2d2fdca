// Package whispercpp implements transcription.Provider by shelling out to
// the whisper.cpp CLI. The binary writes a plain-text transcript next to the
// audio file; this provider reads it back and cleans it up.
package whispercpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/process"
	"github.com/skillsenselab/tubebrief/provider"
	"github.com/skillsenselab/tubebrief/transcription"
	"github.com/skillsenselab/tubebrief/util"
)

const (
	// ProviderName is the registered name for the whisper.cpp provider.
	ProviderName = "whispercpp"

	defaultBinary  = "whisper-cli"
	defaultThreads = 4
	defaultTimeout = 30 * time.Minute
)

// Config holds configuration for the whisper.cpp transcription provider.
type Config struct {
	// BinaryPath is the whisper.cpp CLI binary (resolved via PATH if bare).
	BinaryPath string `json:"binary_path" yaml:"binary_path" mapstructure:"binary_path"`
	// ModelPath is the ggml model weights file.
	ModelPath string `json:"model_path" yaml:"model_path" mapstructure:"model_path"`
	// Language forces the transcript language ("auto" to detect).
	Language string `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	// Threads is the number of CPU threads to use.
	Threads int `json:"threads" yaml:"threads" mapstructure:"threads"`
	// Timeout bounds one transcription run.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements transcription.Provider using the whisper.cpp CLI.
type Provider struct {
	cfg Config
}

// NewProvider creates a new whisper.cpp transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = defaultBinary
	}
	if cfg.Threads == 0 {
		cfg.Threads = defaultThreads
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{cfg: cfg}
}

// Options returns the config as the generic option map consumed by Factory.
func (c Config) Options() map[string]any {
	return map[string]any{
		"binary_path": c.BinaryPath,
		"model_path":  c.ModelPath,
		"language":    c.Language,
		"threads":     c.Threads,
		"timeout":     c.Timeout,
	}
}

// Factory returns a provider.Factory that creates whisper.cpp Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["binary_path"].(string); ok {
			wc.BinaryPath = v
		}
		if v, ok := cfg["model_path"].(string); ok {
			wc.ModelPath = v
		}
		if v, ok := cfg["language"].(string); ok {
			wc.Language = v
		}
		if v, ok := cfg["threads"].(int); ok {
			wc.Threads = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		return NewProvider(wc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks that the binary and model weights are present.
func (p *Provider) IsAvailable(_ context.Context) bool {
	if _, err := exec.LookPath(p.cfg.BinaryPath); err != nil {
		return false
	}
	if p.cfg.ModelPath == "" {
		return false
	}
	_, err := os.Stat(p.cfg.ModelPath)
	return err == nil
}

// Transcribe runs whisper.cpp on the audio file and returns the transcript.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	model := p.cfg.ModelPath
	if req.Model != "" {
		model = req.Model
	}
	if model == "" {
		return nil, apperrors.MissingField("model_path")
	}
	if _, err := os.Stat(model); err != nil {
		return nil, apperrors.ModelNotFound(model).WithCause(err)
	}

	outputPrefix := strings.TrimSuffix(req.AudioPath, filepath.Ext(req.AudioPath))

	args := []string{
		"-m", model,
		"-f", req.AudioPath,
		"-t", strconv.Itoa(p.cfg.Threads),
		"--output-txt",
		"--output-file", outputPrefix,
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		args = append(args, "-l", lang)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	result, err := process.Run(runCtx, process.Command{
		Binary: p.cfg.BinaryPath,
		Args:   args,
	})
	if err != nil {
		return nil, fmt.Errorf("whispercpp: %w (stderr: %s)", err, util.Truncate(string(result.Stderr), 500))
	}

	txtPath := outputPrefix + ".txt"
	text, err := os.ReadFile(txtPath)
	if err != nil {
		return nil, fmt.Errorf("whispercpp: read transcript %s: %w", txtPath, err)
	}
	defer os.Remove(txtPath)

	return &transcription.TranscriptionResponse{
		Text:     strings.TrimSpace(string(text)),
		Language: lang,
	}, nil
}
