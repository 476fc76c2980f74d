// Package summarize produces a free-text synthesis of cleaned page text or
// a video transcript through the model collaborator.
package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mohammad-safakhou/gatherer/provider"
)

const systemPrompt = `You are an expert summarizer. You will be given the raw text content of a webpage or a video transcript.
Produce a concise, well-structured summary of the key points and insights. Use short paragraphs or bullet points.
Do not add commentary about the text's formatting or origin. Respond with the summary only.`

// Summarizer issues one completion per text.
type Summarizer struct {
	provider provider.Provider
	maxChars int
	logger   *log.Logger
}

// NewSummarizer creates a Summarizer. maxChars bounds how much of the text
// is sent to the model; longer inputs are truncated, not rejected.
func NewSummarizer(p provider.Provider, maxChars int, logger *log.Logger) *Summarizer {
	if maxChars <= 0 {
		maxChars = 15000
	}
	return &Summarizer{provider: p, maxChars: maxChars, logger: logger}
}

// Summarize returns the model's synthesis of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to summarize")
	}
	if len(text) > s.maxChars {
		if s.logger != nil {
			s.logger.Printf("truncating input from %d to %d characters", len(text), s.maxChars)
		}
		text = text[:s.maxChars]
	}

	user := fmt.Sprintf("Summarize the following content:\n\n%s", text)
	summary, err := s.provider.Complete(ctx, systemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("summarization request: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
