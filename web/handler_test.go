package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/tubebrief/app"
	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSummarizer struct {
	outcome *app.Outcome
	err     error

	gotURL   string
	gotModel string
}

func (s *stubSummarizer) Summarize(_ context.Context, url, model string) (*app.Outcome, error) {
	s.gotURL = url
	s.gotModel = model
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func newEngine(s Summarizer) *gin.Engine {
	engine := gin.New()
	NewHandler(s, logger.NewDefault("test")).Register(engine)
	return engine
}

func postSummary(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/summaries", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestIndexServed(t *testing.T) {
	engine := newEngine(&stubSummarizer{})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "TubeBrief") {
		t.Error("page body missing app title")
	}
}

func TestCreateSummary(t *testing.T) {
	stub := &stubSummarizer{outcome: &app.Outcome{
		URL:       "https://www.youtube.com/watch?v=h5id4erwD4s",
		Summary:   "a tidy summary",
		Extracted: true,
		Elapsed:   90 * time.Second,
	}}
	engine := newEngine(stub)

	rec := postSummary(t, engine, `{"url":"https://www.youtube.com/watch?v=h5id4erwD4s","model":"/models/llama.gguf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stub.gotModel != "/models/llama.gguf" {
		t.Errorf("model forwarded = %q", stub.gotModel)
	}

	var envelope struct {
		Data summaryResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	data := envelope.Data
	if data.Summary != "a tidy summary" {
		t.Errorf("Summary = %q", data.Summary)
	}
	if data.VideoID != "h5id4erwD4s" {
		t.Errorf("VideoID = %q", data.VideoID)
	}
	if data.EmbedURL != "https://www.youtube.com/embed/h5id4erwD4s" {
		t.Errorf("EmbedURL = %q", data.EmbedURL)
	}
	if data.ElapsedSeconds != 90 {
		t.Errorf("ElapsedSeconds = %v", data.ElapsedSeconds)
	}
	if data.RawOutput != "" {
		t.Errorf("RawOutput should be omitted for extracted summaries, got %q", data.RawOutput)
	}
}

func TestCreateSummaryRawFallback(t *testing.T) {
	stub := &stubSummarizer{outcome: &app.Outcome{
		URL:       "https://youtu.be/h5id4erwD4s",
		Summary:   "raw text",
		RawOutput: "raw text",
		Extracted: false,
	}}
	engine := newEngine(stub)

	rec := postSummary(t, engine, `{"url":"https://youtu.be/h5id4erwD4s"}`)
	var envelope struct {
		Data summaryResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Extracted {
		t.Error("Extracted should be false")
	}
	if envelope.Data.RawOutput != "raw text" {
		t.Errorf("RawOutput = %q", envelope.Data.RawOutput)
	}
}

func TestCreateSummaryInvalidBody(t *testing.T) {
	engine := newEngine(&stubSummarizer{})

	for _, body := range []string{`{}`, `{"url":"not-a-url"}`, `{"url":`} {
		rec := postSummary(t, engine, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestCreateSummaryPipelineError(t *testing.T) {
	stub := &stubSummarizer{err: apperrors.StreamNotFound("https://www.youtube.com/watch?v=x", "bestaudio[abr<=160]")}
	engine := newEngine(stub)

	rec := postSummary(t, engine, `{"url":"https://www.youtube.com/watch?v=x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error.Code != apperrors.ErrCodeStreamNotFound {
		t.Errorf("error code = %q", resp.Error.Code)
	}
}
