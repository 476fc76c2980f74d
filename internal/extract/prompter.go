// Package extract issues the link-grounded article-extraction request to
// the model collaborator and validates what comes back against the link
// set the model was given.
package extract

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mohammad-safakhou/gatherer/provider"
)

const systemPromptTemplate = `You are an expert web content extractor. Your task is to identify articles or posts from the provided text content.
The text content contains the main body of the webpage, followed by a section titled "--- ALL LINKS ---" which lists all unique, absolute URLs found on the page, one per line.

For each article, extract its title, its full URL, and its publication date string.
The publication date can be in various formats (e.g., "2 days ago", "Yesterday", "September 1, 2023", "2023-09-01", "Published: 2023-08-10").

Crucially, when extracting the URL for an article, you MUST find it in the "--- ALL LINKS ---" section. Match the title or context of the article to the most relevant URL provided in that section. Do NOT infer URLs from the main text or invent them. If an article cannot be confidently matched to a URL in the list, do not include it.

Return the results as a JSON array of objects. Each object must have 'title', 'url', and 'raw_date' fields.
If no articles are found, return an empty JSON array [].
Limit your extraction to the first %d distinct articles you find.

Example Output Format:
[
  {
    "title": "How to Use Ollama Locally",
    "url": "https://ollama.com/blog/local-ollama-guide",
    "raw_date": "2023-10-26"
  },
  {
    "title": "New Features in Llama 3.1",
    "url": "https://ollama.com/blog/llama3.1-features",
    "raw_date": "1 day ago"
  }
]`

// Prompter sends one extraction request per document. It performs no
// parsing: the raw response is the unit of record, so parse failures stay
// distinguishable from connectivity failures.
type Prompter struct {
	provider provider.Provider
	limit    int
	logger   *log.Logger
}

// NewPrompter creates a Prompter. limit bounds how many articles the model
// is asked for per document.
func NewPrompter(p provider.Provider, limit int, logger *log.Logger) *Prompter {
	if limit <= 0 {
		limit = 10
	}
	return &Prompter{provider: p, limit: limit, logger: logger}
}

// Extract hands the document to the model and returns its raw text
// verbatim. A failure to reach the model wraps provider.ErrUnavailable.
func (p *Prompter) Extract(ctx context.Context, document string) (string, error) {
	system := fmt.Sprintf(systemPromptTemplate, p.limit)
	user := fmt.Sprintf("Extract article details from this content:\n\nContent:\n%s", document)

	if p.logger != nil {
		p.logger.Printf("invoking model, context size: %d characters", len(document))
	}
	start := time.Now()
	raw, err := p.provider.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("extraction request: %w", err)
	}
	if p.logger != nil {
		p.logger.Printf("model responded in %s", time.Since(start).Round(time.Millisecond))
	}
	return raw, nil
}
