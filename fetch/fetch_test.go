package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/logger"
)

const testURL = "https://www.youtube.com/watch?v=h5id4erwD4s"

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Format != defaultFormat {
		t.Errorf("Format = %q, want %q", cfg.Format, defaultFormat)
	}
	if cfg.Dir == "" {
		t.Error("Dir should default to a temp directory")
	}
	if cfg.Timeout == 0 {
		t.Error("Timeout should have a default")
	}
}

func TestMapRunErrorNoStream(t *testing.T) {
	err := mapRunError(testURL, "bestaudio[abr<=160]", fmt.Errorf("yt-dlp: Requested format is not available"))
	if !apperrors.IsCode(err, apperrors.ErrCodeStreamNotFound) {
		t.Errorf("expected STREAM_NOT_FOUND, got %v", err)
	}
}

func TestMapRunErrorUnresolvable(t *testing.T) {
	tests := []string{
		"ERROR: Video unavailable",
		`"not-a-url" is not a valid URL`,
		"ERROR: Unsupported URL: https://example.com",
	}
	for _, msg := range tests {
		err := mapRunError(testURL, "bestaudio", errors.New(msg))
		if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			t.Errorf("mapRunError(%q) = %v, want NOT_FOUND", msg, err)
		}
	}
}

func TestMapRunErrorNetwork(t *testing.T) {
	err := mapRunError(testURL, "bestaudio", errors.New("connection timed out"))
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatal("expected AppError")
	}
	if appErr.Code != apperrors.ErrCodeDownloadFailed {
		t.Errorf("Code = %q, want DOWNLOAD_FAILED", appErr.Code)
	}
	if !appErr.Retryable {
		t.Error("download failures should be retryable")
	}
}

func TestValidateAsset(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "audio_ok.m4a")
	if err := os.WriteFile(full, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := validateAsset(&AudioAsset{URL: testURL, Path: full}); err != nil {
		t.Errorf("validateAsset(non-empty) = %v", err)
	}

	empty := filepath.Join(dir, "audio_empty.m4a")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := validateAsset(&AudioAsset{URL: testURL, Path: empty}); err == nil {
		t.Error("expected error for empty file")
	}

	if err := validateAsset(&AudioAsset{URL: testURL, Path: filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAssetCleanup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio_x.m4a")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	asset := &AudioAsset{URL: testURL, Path: path}
	if err := asset.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}

	// Second cleanup is a no-op.
	if err := asset.Cleanup(); err != nil {
		t.Errorf("second Cleanup() error: %v", err)
	}
}

func TestAssetCleanupKeepAudio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio_keep.m4a")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	asset := &AudioAsset{URL: testURL, Path: path, keep: true}
	if err := asset.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("keep_audio asset should not be removed")
	}
}

func TestOutputTemplate(t *testing.T) {
	f := New(Config{Dir: "/var/cache/tubebrief/"}, logger.NewDefault("test"))
	got := f.outputTemplate()
	want := filepath.Join("/var/cache/tubebrief", "audio_%(id)s.%(ext)s")
	if got != want {
		t.Errorf("outputTemplate() = %q, want %q", got, want)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	f := New(Config{}, logger.NewDefault("test"))
	if f.cfg.Format != defaultFormat {
		t.Errorf("Format = %q, want default", f.cfg.Format)
	}
}
