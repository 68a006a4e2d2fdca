// Package pipeline wires transcription and summary generation into a linear
// two-stage run: audio in, summarized text out.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/llm"
	"github.com/skillsenselab/tubebrief/logger"
	"github.com/skillsenselab/tubebrief/transcription"
)

// Config holds configuration for the summarization pipeline.
type Config struct {
	// Template overrides the default summarization prompt. Must contain
	// {{.Transcript}}.
	Template string `yaml:"template" mapstructure:"template"`
	// Structured requests JSON-constrained output from the backend instead
	// of relying on marker extraction.
	Structured bool `yaml:"structured" mapstructure:"structured"`
	// Language is an optional hint forwarded to the transcription backend.
	Language string `yaml:"language" mapstructure:"language"`
}

// Request names the audio files to run through the pipeline, in order.
type Request struct {
	AudioPaths []string `json:"audio_paths"`
}

// Item is the per-file outcome of one pipeline run.
type Item struct {
	// AudioPath is the input audio file.
	AudioPath string `json:"audio_path"`
	// Transcript is the speech-to-text output fed into generation.
	Transcript string `json:"transcript"`
	// RawOutput is the unmodified model output.
	RawOutput string `json:"raw_output"`
	// Summary is the cleaned summary text. Equals RawOutput when no
	// formatting marker was found.
	Summary string `json:"summary"`
	// Extracted reports whether marker extraction (or structured decoding)
	// actually trimmed the raw output.
	Extracted bool `json:"extracted"`
}

// Result holds the pipeline output, one item per input path in input order.
type Result struct {
	Items []Item `json:"items"`
}

// structuredSchema constrains JSON-mode output to a single summary field.
var structuredSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary": map[string]any{"type": "string"},
	},
	"required": []string{"summary"},
}

// Pipeline runs transcription followed by summary generation. Stages execute
// strictly in order per input file; a stage failure aborts the whole run.
type Pipeline struct {
	cfg         Config
	transcriber transcription.Provider
	invoker     *llm.Invoker
	tmpl        *PromptTemplate
	log         *logger.Logger
}

// New creates a Pipeline. It fails only when the prompt template is invalid.
func New(cfg Config, transcriber transcription.Provider, invoker *llm.Invoker, log *logger.Logger) (*Pipeline, error) {
	tmpl, err := NewPromptTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:         cfg,
		transcriber: transcriber,
		invoker:     invoker,
		tmpl:        tmpl,
		log:         log.WithComponent("pipeline"),
	}, nil
}

// Run executes both stages for every input path. It returns an error and no
// partial result as soon as any stage fails.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.AudioPaths) == 0 {
		return nil, apperrors.MissingField("audio_paths")
	}

	result := &Result{Items: make([]Item, 0, len(req.AudioPaths))}
	for _, path := range req.AudioPaths {
		item, err := p.runOne(ctx, path)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (p *Pipeline) runOne(ctx context.Context, path string) (Item, error) {
	transcript, err := p.transcribe(ctx, path)
	if err != nil {
		return Item{}, err
	}

	item := Item{AudioPath: path, Transcript: transcript}
	if err := p.summarize(ctx, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (p *Pipeline) transcribe(ctx context.Context, path string) (string, error) {
	p.log.Info("Transcribing audio", map[string]interface{}{
		logger.FieldPath:     path,
		logger.FieldProvider: p.transcriber.Name(),
	})

	resp, err := p.transcriber.Transcribe(ctx, transcription.TranscriptionRequest{
		AudioPath: path,
		Language:  p.cfg.Language,
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return "", err
		}
		return "", apperrors.TranscriptionFailed(err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", apperrors.TranscriptionFailed(fmt.Errorf("transcription of %s produced no text", path))
	}
	return resp.Text, nil
}

func (p *Pipeline) summarize(ctx context.Context, item *Item) error {
	prompt, err := p.tmpl.Render(item.Transcript)
	if err != nil {
		return apperrors.Internal(err)
	}

	p.log.Info("Generating summary", map[string]interface{}{
		logger.FieldProvider: p.invoker.Provider().Name(),
		logger.FieldModel:    p.invoker.Config().Model,
	})

	if p.cfg.Structured {
		return p.summarizeStructured(ctx, prompt, item)
	}

	raw, err := p.invoker.Call(ctx, prompt)
	if err != nil {
		return inferenceError(err)
	}
	item.RawOutput = raw
	item.Summary, item.Extracted = ExtractSummary(raw)
	return nil
}

// summarizeStructured asks the backend for JSON-constrained output. When the
// model returns something that does not decode, the raw output falls through
// to plain marker extraction.
func (p *Pipeline) summarizeStructured(ctx context.Context, prompt string, item *Item) error {
	raw, err := p.invoker.CallStructured(ctx, prompt, structuredSchema)
	if err != nil {
		return inferenceError(err)
	}
	item.RawOutput = raw

	var decoded struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil && decoded.Summary != "" {
		item.Summary = decoded.Summary
		item.Extracted = true
		return nil
	}
	item.Summary, item.Extracted = ExtractSummary(raw)
	return nil
}

func inferenceError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.InferenceFailed(err)
}
