// Package fetch adapts the headless-browser rendering collaborator. Each
// render runs in its own browser context, scoped and released before the
// next source begins.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
)

// Render failure taxonomy. Both are recoverable through the fallback
// controller; timeouts are reported distinctly.
var (
	ErrRender        = errors.New("render failed")
	ErrRenderTimeout = errors.New("render timed out")
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Renderer renders pages with a headless browser.
type Renderer struct {
	Timeout   time.Duration
	UserAgent string
}

// Render navigates to rawURL and returns the rendered outer HTML once the
// body is ready. The timeout is owned here, at the collaborator boundary.
func (r Renderer) Render(ctx context.Context, rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: empty url", ErrRender)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ua := r.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(ua),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrRenderTimeout, rawURL)
		}
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return html, nil
}

// ArticleText extracts the readable main text from rendered HTML,
// truncated to maxChars. Used by the summarize path, where the whole-page
// link inventory is not needed.
func ArticleText(html, pageURL string, maxChars int) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return "", fmt.Errorf("extracting article text: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}
