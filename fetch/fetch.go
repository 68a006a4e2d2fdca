// Package fetch resolves a video URL to a local audio-only file using yt-dlp.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/logger"
)

const (
	defaultFormat  = "bestaudio[abr<=160]"
	defaultTimeout = 15 * time.Minute
)

// Config holds configuration for the audio fetcher.
type Config struct {
	// Dir is where downloaded audio files are written.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Format is the yt-dlp format selector for the audio stream.
	// Selectors without a fallback alternative fail hard when no stream
	// matches, which is the wanted behavior for a strict bitrate filter.
	Format string `yaml:"format" mapstructure:"format"`
	// Timeout bounds one download.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// KeepAudio disables cleanup of downloaded files after the pipeline run.
	KeepAudio bool `yaml:"keep_audio" mapstructure:"keep_audio"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// AudioAsset describes one downloaded audio file.
type AudioAsset struct {
	// URL is the source video URL.
	URL string `json:"url"`
	// Path is the local file path of the downloaded audio.
	Path string `json:"path"`
	// Format is the selector the stream was chosen by.
	Format string `json:"format"`

	keep bool
}

// KeptAsset builds an asset whose Cleanup is a no-op, for audio files managed
// by the caller.
func KeptAsset(url, path string) *AudioAsset {
	return &AudioAsset{URL: url, Path: path, keep: true}
}

// Cleanup removes the downloaded file. It is safe to call more than once
// and is a no-op when the fetcher was configured to keep audio.
func (a *AudioAsset) Cleanup() error {
	if a.keep || a.Path == "" {
		return nil
	}
	path := a.Path
	a.Path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fetch: cleanup %s: %w", path, err)
	}
	return nil
}

// Fetcher downloads audio-only streams via the yt-dlp wrapper.
type Fetcher struct {
	cfg Config
	log *logger.Logger
}

// New creates a Fetcher.
func New(cfg Config, log *logger.Logger) *Fetcher {
	cfg.ApplyDefaults()
	return &Fetcher{cfg: cfg, log: log.WithComponent("fetch")}
}

// EnsureTool downloads a managed yt-dlp binary if none is on PATH.
func EnsureTool(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("fetch: install yt-dlp: %w", err)
	}
	return nil
}

// Fetch downloads the audio stream of the video at url and returns the asset.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*AudioAsset, error) {
	if err := os.MkdirAll(f.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("fetch: create dir %s: %w", f.cfg.Dir, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	f.log.Info("Downloading audio", map[string]interface{}{
		logger.FieldURL: url,
		"format":        f.cfg.Format,
	})

	dl := ytdlp.New().
		NoPlaylist().
		Format(f.cfg.Format).
		ForceOverwrites().
		RestrictFilenames().
		Output(f.outputTemplate())

	result, err := dl.Run(runCtx, url)
	if err != nil {
		return nil, mapRunError(url, f.cfg.Format, err)
	}

	path, err := downloadedPath(result)
	if err != nil {
		return nil, apperrors.DownloadFailed(url, err)
	}

	asset := &AudioAsset{URL: url, Path: path, Format: f.cfg.Format, keep: f.cfg.KeepAudio}
	if err := validateAsset(asset); err != nil {
		return nil, err
	}

	f.log.Info("Audio downloaded", map[string]interface{}{
		logger.FieldURL:  url,
		logger.FieldPath: path,
	})
	return asset, nil
}

// outputTemplate is the yt-dlp output path template for downloaded audio.
// The %(id)s/%(ext)s placeholders are expanded by yt-dlp itself.
func (f *Fetcher) outputTemplate() string {
	return filepath.Join(f.cfg.Dir, "audio_%(id)s.%(ext)s")
}

// downloadedPath pulls the local file path out of a yt-dlp run result.
func downloadedPath(result *ytdlp.Result) (string, error) {
	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", fmt.Errorf("extract info: %w", err)
	}
	if len(info) == 0 || info[0].Filename == nil || *info[0].Filename == "" {
		return "", fmt.Errorf("no downloaded file reported")
	}
	return *info[0].Filename, nil
}

// validateAsset checks that the downloaded file exists and is non-empty.
func validateAsset(a *AudioAsset) error {
	st, err := os.Stat(a.Path)
	if err != nil {
		return apperrors.DownloadFailed(a.URL, err)
	}
	if st.Size() == 0 {
		return apperrors.DownloadFailed(a.URL, fmt.Errorf("downloaded file %s is empty", a.Path))
	}
	return nil
}

// mapRunError translates yt-dlp failures into the unified error taxonomy.
func mapRunError(url, format string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Requested format is not available"):
		return apperrors.StreamNotFound(url, format)
	case strings.Contains(msg, "Video unavailable"),
		strings.Contains(msg, "is not a valid URL"),
		strings.Contains(msg, "Unsupported URL"):
		return apperrors.NotFound("video", url).WithCause(err)
	default:
		return apperrors.DownloadFailed(url, err)
	}
}
