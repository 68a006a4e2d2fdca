// Package app wires audio fetching, transcription, and summary generation
// into the end-to-end service used by both the CLI and the web server.
package app

import (
	"context"
	"time"

	"github.com/skillsenselab/tubebrief/config"
	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/fetch"
	"github.com/skillsenselab/tubebrief/llm"
	"github.com/skillsenselab/tubebrief/llm/llamacpp"
	"github.com/skillsenselab/tubebrief/llm/ollama"
	"github.com/skillsenselab/tubebrief/logger"
	"github.com/skillsenselab/tubebrief/pipeline"
	"github.com/skillsenselab/tubebrief/server/endpoint"
	"github.com/skillsenselab/tubebrief/transcription"
	"github.com/skillsenselab/tubebrief/transcription/whisper"
	"github.com/skillsenselab/tubebrief/transcription/whispercpp"
	"github.com/skillsenselab/tubebrief/util"
)

// AudioFetcher resolves a video URL to a local audio file.
type AudioFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.AudioAsset, error)
}

// Outcome is the result of one end-to-end summarization run.
type Outcome struct {
	// URL is the source video URL.
	URL string `json:"url"`
	// Summary is the cleaned summary text.
	Summary string `json:"summary"`
	// RawOutput is the unmodified model output, kept so callers can fall
	// back to it when extraction found no marker.
	RawOutput string `json:"raw_output,omitempty"`
	// Transcript is the intermediate speech-to-text output.
	Transcript string `json:"transcript,omitempty"`
	// Extracted reports whether the summary was cleanly separated from
	// instruction-formatting artifacts.
	Extracted bool `json:"extracted"`
	// AudioPath is the retained audio file, set only when keep_audio is on.
	AudioPath string `json:"audio_path,omitempty"`
	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration `json:"elapsed_ms"`
}

// App is the service orchestrator.
type App struct {
	cfg         *config.Config
	log         *logger.Logger
	fetcher     AudioFetcher
	transcriber transcription.Provider
	generator   llm.Provider
}

// New builds the App from configuration, selecting the configured
// transcription and generation backends.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	transcriber, err := buildTranscriber(cfg.Transcription)
	if err != nil {
		return nil, err
	}
	generator, err := buildGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}

	// Fail on a broken prompt template at startup, not mid-request.
	if _, err := pipeline.NewPromptTemplate(cfg.Pipeline.Template); err != nil {
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log.WithComponent("app"),
		fetcher:     fetch.New(cfg.Fetch, log),
		transcriber: transcriber,
		generator:   generator,
	}, nil
}

func buildTranscriber(cfg config.TranscriptionConfig) (transcription.Provider, error) {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
	reg.RegisterFactory(whispercpp.ProviderName, whispercpp.Factory())

	p, err := reg.Create(cfg.Backend, cfg.BackendOptions())
	if err != nil {
		return nil, apperrors.InvalidInput("transcription.backend", err.Error())
	}
	return p, nil
}

func buildGenerator(cfg config.LLMConfig) (llm.Provider, error) {
	reg := llm.NewRegistry()
	reg.RegisterFactory(ollama.ProviderName, ollama.Factory())
	reg.RegisterFactory(llamacpp.ProviderName, llamacpp.Factory())

	p, err := reg.Create(cfg.Backend, cfg.BackendOptions())
	if err != nil {
		return nil, apperrors.InvalidInput("llm.backend", err.Error())
	}
	return p, nil
}

// Summarize runs the full pipeline for one video URL. modelOverride, when
// non-empty, replaces the configured model for this run only. The downloaded
// audio is always cleaned up unless keep_audio is configured.
func (a *App) Summarize(ctx context.Context, url, modelOverride string) (*Outcome, error) {
	if url == "" {
		return nil, apperrors.MissingField("url")
	}

	start := time.Now()

	asset, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	audioPath := asset.Path
	defer func() {
		if cerr := asset.Cleanup(); cerr != nil {
			a.log.WithError(cerr).Warn("Audio cleanup failed")
		}
	}()

	modelCfg := a.cfg.LLM.Model
	modelCfg.Model = util.Coalesce(modelOverride, modelCfg.Model)
	invoker := llm.NewInvoker(a.generator, modelCfg)

	pipe, err := pipeline.New(a.cfg.Pipeline, a.transcriber, invoker, a.log)
	if err != nil {
		return nil, err
	}

	result, err := pipe.Run(ctx, pipeline.Request{AudioPaths: []string{audioPath}})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, apperrors.EmptyResult()
	}

	item := result.Items[0]
	outcome := &Outcome{
		URL:        url,
		Summary:    item.Summary,
		RawOutput:  item.RawOutput,
		Transcript: item.Transcript,
		Extracted:  item.Extracted,
		Elapsed:    time.Since(start),
	}
	if a.cfg.Fetch.KeepAudio {
		outcome.AudioPath = audioPath
	}

	a.log.Info("Summarization complete", map[string]interface{}{
		logger.FieldURL:      url,
		logger.FieldDuration: outcome.Elapsed.String(),
		"extracted":          outcome.Extracted,
		"summary_preview":    util.Truncate(outcome.Summary, 80),
	})
	return outcome, nil
}

// HealthChecker reports the availability of the configured backends.
func (a *App) HealthChecker() endpoint.HealthChecker {
	return func(ctx context.Context) []endpoint.ComponentHealth {
		return []endpoint.ComponentHealth{
			checkProvider(ctx, "transcription", a.transcriber),
			checkProvider(ctx, "llm", a.generator),
		}
	}
}

type availability interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

func checkProvider(ctx context.Context, role string, p availability) endpoint.ComponentHealth {
	health := endpoint.ComponentHealth{Name: role, Status: endpoint.StatusHealthy, Message: p.Name()}
	if !p.IsAvailable(ctx) {
		health.Status = endpoint.StatusUnhealthy
		health.Message = p.Name() + " backend is not reachable"
	}
	return health
}
