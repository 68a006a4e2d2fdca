package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/tubebrief/fetch"
	"github.com/skillsenselab/tubebrief/llm"
	"github.com/skillsenselab/tubebrief/llm/llamacpp"
	"github.com/skillsenselab/tubebrief/llm/ollama"
	"github.com/skillsenselab/tubebrief/logger"
	"github.com/skillsenselab/tubebrief/pipeline"
	"github.com/skillsenselab/tubebrief/server"
	"github.com/skillsenselab/tubebrief/transcription/whisper"
	"github.com/skillsenselab/tubebrief/transcription/whispercpp"
)

// Backend names accepted by the transcription and llm selectors.
const (
	BackendWhisper    = "whisper"
	BackendWhisperCpp = "whispercpp"
	BackendOllama     = "ollama"
	BackendLlamaCpp   = "llamacpp"
)

// Config is the full service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Fetch         fetch.Config        `yaml:"fetch" mapstructure:"fetch"`
	Transcription TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Pipeline      pipeline.Config     `yaml:"pipeline" mapstructure:"pipeline"`
}

// TranscriptionConfig selects and configures the speech-to-text backend.
type TranscriptionConfig struct {
	Backend    string            `yaml:"backend" mapstructure:"backend" validate:"oneof=whisper whispercpp"`
	Whisper    whisper.Config    `yaml:"whisper" mapstructure:"whisper"`
	WhisperCpp whispercpp.Config `yaml:"whispercpp" mapstructure:"whispercpp"`
}

// BackendOptions returns the selected backend's settings as the option map
// its provider factory consumes.
func (c TranscriptionConfig) BackendOptions() map[string]any {
	switch c.Backend {
	case BackendWhisper:
		return c.Whisper.Options()
	case BackendWhisperCpp:
		return c.WhisperCpp.Options()
	}
	return nil
}

// LLMConfig selects and configures the generation backend.
type LLMConfig struct {
	Backend  string          `yaml:"backend" mapstructure:"backend" validate:"oneof=ollama llamacpp"`
	Model    llm.ModelConfig `yaml:"model" mapstructure:"model"`
	Ollama   ollama.Config   `yaml:"ollama" mapstructure:"ollama"`
	LlamaCpp llamacpp.Config `yaml:"llamacpp" mapstructure:"llamacpp"`
}

// BackendOptions returns the selected backend's settings as the option map
// its provider factory consumes.
func (c LLMConfig) BackendOptions() map[string]any {
	switch c.Backend {
	case BackendOllama:
		return c.Ollama.Options()
	case BackendLlamaCpp:
		return c.LlamaCpp.Options()
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "tubebrief"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = BackendWhisperCpp
	}
	if c.LLM.Backend == "" {
		c.LLM.Backend = BackendLlamaCpp
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Fetch.ApplyDefaults()
	c.LLM.Model.ApplyDefaults()
}

var validate = validator.New()

// Validate validates the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config.%s failed %q validation (got: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config validation: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// LoadService loads, defaults, and validates the full service configuration.
func LoadService(serviceName string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := Load(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
