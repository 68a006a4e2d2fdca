package pipeline

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultTemplate is the fixed summarization prompt the transcript is
// substituted into. Configurable via Config.Template.
const DefaultTemplate = `Provide a concise and comprehensive summary of the following video transcript. Cover the main points and key takeaways.

Transcript:
{{.Transcript}}

Summary:`

// PromptTemplate renders a transcript into a summarization prompt.
type PromptTemplate struct {
	tmpl *template.Template
}

// NewPromptTemplate parses a prompt template. The template must reference
// {{.Transcript}} so the transcript is actually substituted in.
func NewPromptTemplate(text string) (*PromptTemplate, error) {
	if text == "" {
		text = DefaultTemplate
	}
	if !strings.Contains(text, "{{.Transcript}}") {
		return nil, fmt.Errorf("pipeline: prompt template must contain {{.Transcript}}")
	}
	tmpl, err := template.New("summary-prompt").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse prompt template: %w", err)
	}
	return &PromptTemplate{tmpl: tmpl}, nil
}

// Render substitutes the transcript into the template.
func (p *PromptTemplate) Render(transcript string) (string, error) {
	var b strings.Builder
	if err := p.tmpl.Execute(&b, struct{ Transcript string }{Transcript: transcript}); err != nil {
		return "", fmt.Errorf("pipeline: render prompt: %w", err)
	}
	return b.String(), nil
}
