// Package web serves the browser UI and the JSON summarization API.
package web

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/tubebrief/app"
	apperrors "github.com/skillsenselab/tubebrief/errors"
	"github.com/skillsenselab/tubebrief/logger"
	"github.com/skillsenselab/tubebrief/server"
)

//go:embed index.html
var indexHTML []byte

// Summarizer runs the end-to-end pipeline for one video URL.
type Summarizer interface {
	Summarize(ctx context.Context, url, modelOverride string) (*app.Outcome, error)
}

// Handler serves the UI page and the summarization API.
type Handler struct {
	summarizer Summarizer
	log        *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(summarizer Summarizer, log *logger.Logger) *Handler {
	return &Handler{summarizer: summarizer, log: log.WithComponent("web")}
}

// Register mounts the UI and API routes on the engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/", h.index)
	engine.POST("/api/summaries", h.createSummary)
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// summaryRequest is the API input. Model optionally overrides the configured
// model for this request.
type summaryRequest struct {
	URL   string `json:"url" binding:"required,url"`
	Model string `json:"model"`
}

// summaryResponse is the API output.
type summaryResponse struct {
	URL            string  `json:"url"`
	VideoID        string  `json:"video_id,omitempty"`
	EmbedURL       string  `json:"embed_url,omitempty"`
	Summary        string  `json:"summary"`
	RawOutput      string  `json:"raw_output,omitempty"`
	Extracted      bool    `json:"extracted"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

func (h *Handler) createSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("url", "a valid video URL is required").WithCause(err))
		return
	}

	log := h.log.WithContext(c.Request.Context()).WithFields(map[string]interface{}{
		logger.FieldURL: req.URL,
	})
	log.Info("Summarization requested")

	outcome, err := h.summarizer.Summarize(c.Request.Context(), req.URL, req.Model)
	if err != nil {
		log.WithError(err).Error("Summarization failed")
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, summaryResponse{
		URL:            outcome.URL,
		VideoID:        VideoID(outcome.URL),
		EmbedURL:       EmbedURL(outcome.URL),
		Summary:        outcome.Summary,
		RawOutput:      rawIfNotExtracted(outcome),
		Extracted:      outcome.Extracted,
		ElapsedSeconds: outcome.Elapsed.Seconds(),
	})
}

// rawIfNotExtracted keeps the response small: the raw output is only
// interesting when extraction failed and the client wants to show it instead.
func rawIfNotExtracted(o *app.Outcome) string {
	if o.Extracted {
		return ""
	}
	return o.RawOutput
}
