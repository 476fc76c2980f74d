// Package pipeline orchestrates a batch run: sources are processed
// strictly sequentially, every per-source failure is converted into a
// terminal record at that source's boundary, and the batch always emits
// exactly one record per configured source.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/gatherer/config"
	"github.com/mohammad-safakhou/gatherer/internal/content"
	"github.com/mohammad-safakhou/gatherer/internal/extract"
	"github.com/mohammad-safakhou/gatherer/internal/fallback"
	"github.com/mohammad-safakhou/gatherer/internal/normalize"
	"github.com/mohammad-safakhou/gatherer/internal/recency"
	"github.com/mohammad-safakhou/gatherer/internal/youtube"
)

// Renderer is the page-rendering collaborator.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Extractor issues the grounded extraction request and returns the model's
// raw response.
type Extractor interface {
	Extract(ctx context.Context, document string) (string, error)
}

// MetadataAPI is the video-hosting metadata collaborator.
type MetadataAPI interface {
	ResolveChannel(ctx context.Context, handleOrURL string) (string, error)
	ListRecentUploads(ctx context.Context, channelID string, maxItems int) ([]youtube.Upload, error)
}

// Deps bundles the collaborators a run needs. Pace is the injected delay
// strategy between sources; it is a courtesy policy, not a correctness
// requirement, and may be nil.
type Deps struct {
	Renderer  Renderer
	Extractor Extractor
	YouTube   MetadataAPI
	Prompt    fallback.PromptFunc
	Sanitize  func(string) string
	Pace      func(ctx context.Context)
	Logger    *log.Logger
	Now       func() time.Time
}

// Run processes every configured source and writes one JSON line per
// source to out. Per-source failures never abort the batch; only a write
// failure on our side does.
func Run(ctx context.Context, cfg *config.Config, deps Deps, out io.Writer) error {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	runID := uuid.NewString()
	enc := json.NewEncoder(out)

	for i, src := range cfg.Sources {
		if i > 0 && deps.Pace != nil {
			deps.Pace(ctx)
		}
		if deps.Logger != nil {
			deps.Logger.Printf("processing source %q (%s)", src.Name, src.URL)
		}
		rec := processSource(ctx, cfg, deps, runID, src)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("writing record for %q: %w", src.Name, err)
		}
	}
	return nil
}

func processSource(ctx context.Context, cfg *config.Config, deps Deps, runID string, src config.SourceConfig) Record {
	rec := Record{
		RunID:      runID,
		SourceName: src.Name,
		SourceURL:  src.URL,
		Kind:       src.Kind,
		Category:   src.Category,
	}
	switch src.Kind {
	case config.KindYouTube:
		processChannel(ctx, cfg, deps, &rec, src)
	default:
		processWebpage(ctx, cfg, deps, &rec, src)
	}
	return rec
}

func processWebpage(ctx context.Context, cfg *config.Config, deps Deps, rec *Record, src config.SourceConfig) {
	controller := &fallback.Controller{
		Prompt:   deps.Prompt,
		Sanitize: deps.Sanitize,
		Logger:   deps.Logger,
	}

	var markup string
	outcome := controller.Resolve(ctx, src.Name, func(ctx context.Context) (string, error) {
		html, err := deps.Renderer.Render(ctx, src.URL)
		markup = html
		return html, err
	})

	switch outcome.Terminal {
	case fallback.ManualSkipped:
		rec.Status = StatusNoContent
		rec.Error = outcome.Reason
		return
	case fallback.ManualProvided:
		rec.Status = StatusManual
		rec.RawText = outcome.Content
		rec.Error = outcome.Reason
		return
	}

	text := content.Clean(markup)
	links, err := content.CollectLinks(markup, src.URL)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.Printf("link collection failed for %q: %v", src.Name, err)
		}
		rec.Flags = append(rec.Flags, fmt.Sprintf("link collection failed: %v", err))
	}
	document := content.BuildDocument(text, links)

	raw, err := deps.Extractor.Extract(ctx, document)
	if err != nil {
		// No manual fallback for model failures: the batch item is marked
		// failed and the run moves on.
		rec.Status = StatusModelUnavailable
		rec.Error = err.Error()
		return
	}

	articles, flags, err := extract.ParseArticles(raw, links)
	if err != nil {
		var perr *extract.ParseError
		if errors.As(err, &perr) {
			rec.RawText = perr.Raw
		}
		rec.Status = StatusParseFailed
		rec.Error = err.Error()
		return
	}

	rec.Status = StatusExtracted
	rec.Flags = append(rec.Flags, flags...)
	now := deps.Now().UTC()
	for _, article := range articles {
		item := Item{Article: article}
		if published, err := normalize.Normalize(article.RawDate, now); err != nil {
			// Date unknown stays unknown; the item is excluded from any
			// recency comparison rather than defaulted.
			if deps.Logger != nil {
				deps.Logger.Printf("unparseable date %q for %q", article.RawDate, article.Title)
			}
			rec.Flags = append(rec.Flags, fmt.Sprintf("unparseable date %q (title %q)", article.RawDate, article.Title))
		} else {
			item.NormalizedDate = published.Format(time.RFC3339)
		}
		rec.Items = append(rec.Items, item)
	}
}

func processChannel(ctx context.Context, cfg *config.Config, deps Deps, rec *Record, src config.SourceConfig) {
	channelID, err := deps.YouTube.ResolveChannel(ctx, src.URL)
	if err != nil {
		rec.Status = StatusMetadataError
		rec.Error = err.Error()
		return
	}

	uploads, err := deps.YouTube.ListRecentUploads(ctx, channelID, cfg.YouTube.MaxResults)
	if err != nil {
		rec.Status = StatusMetadataError
		rec.Error = err.Error()
		return
	}

	items := make([]recency.Item, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, recency.Item{
			Title:      u.Title,
			Published:  u.PublishedAt,
			SourceName: src.Name,
			VideoID:    u.VideoID,
			URL:        u.URL,
		})
	}
	kept := recency.FilterRecent(items, cfg.Pipeline.WindowDays, deps.Now().UTC())
	recency.SortChronological(kept)

	rec.Status = StatusExtracted
	for _, item := range kept {
		published := item.Published.Format(time.RFC3339)
		rec.Items = append(rec.Items, Item{
			Article: extract.Article{
				Title:   item.Title,
				URL:     item.URL,
				RawDate: published,
			},
			NormalizedDate: published,
		})
	}
	if deps.Logger != nil {
		deps.Logger.Printf("found %d recent videos for source %q", len(kept), src.Name)
	}
}

// WaitPacer returns a pacing policy that sleeps for delay between sources,
// honouring context cancellation.
func WaitPacer(delay time.Duration) func(ctx context.Context) {
	return func(ctx context.Context) {
		if delay <= 0 {
			return
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}
