package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mohammad-safakhou/gatherer/config"
	"github.com/mohammad-safakhou/gatherer/internal/youtube"
	"github.com/mohammad-safakhou/gatherer/provider"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) Render(context.Context, string) (string, error) {
	return f.html, f.err
}

type fakeExtractor struct {
	response string
	err      error
	lastDoc  string
}

func (f *fakeExtractor) Extract(_ context.Context, document string) (string, error) {
	f.lastDoc = document
	return f.response, f.err
}

type fakeMetadata struct {
	channelID  string
	resolveErr error
	uploads    []youtube.Upload
	listErr    error
}

func (f *fakeMetadata) ResolveChannel(context.Context, string) (string, error) {
	return f.channelID, f.resolveErr
}

func (f *fakeMetadata) ListRecentUploads(context.Context, string, int) ([]youtube.Upload, error) {
	return f.uploads, f.listErr
}

func testConfig(sources ...config.SourceConfig) *config.Config {
	return &config.Config{
		YouTube:  config.YouTubeConfig{MaxResults: 50},
		Pipeline: config.PipelineConfig{WindowDays: 7, ArticleLimit: 10},
		Sources:  sources,
	}
}

func decodeRecords(t *testing.T, buf *bytes.Buffer) []Record {
	t.Helper()
	var records []Record
	scanner := bufio.NewScanner(buf)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}

func TestRun_WebpageExtracted(t *testing.T) {
	markup := `<html><body><p>Hello</p><a href="/a">A</a></body></html>`
	extractor := &fakeExtractor{
		response: `[{"title":"A post","url":"https://s.com/a","raw_date":"2 days ago"},
			{"title":"Made up","url":"https://nowhere.com/x","raw_date":"banana"}]`,
	}
	cfg := testConfig(config.SourceConfig{Name: "Site", URL: "https://s.com", Kind: config.KindWebpage})
	deps := Deps{
		Renderer:  &fakeRenderer{html: markup},
		Extractor: extractor,
		Now:       func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records := decodeRecords(t, &buf)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Status != StatusExtracted {
		t.Fatalf("expected %s, got %s", StatusExtracted, rec.Status)
	}
	if len(rec.Items) != 2 {
		t.Fatalf("expected both items kept, got %d", len(rec.Items))
	}
	if rec.Items[0].Ungrounded || rec.Items[0].NormalizedDate != "2024-03-13T00:00:00Z" {
		t.Fatalf("unexpected grounded item: %+v", rec.Items[0])
	}
	if !rec.Items[1].Ungrounded {
		t.Fatal("foreign URL was not flagged")
	}
	if rec.Items[1].NormalizedDate != "" {
		t.Fatal("unparseable date must not get a normalized instant")
	}
	if len(rec.Flags) != 2 {
		t.Fatalf("expected grounding and date flags, got %v", rec.Flags)
	}
	wantDoc := "Hello\n\n--- ALL LINKS ---\nhttps://s.com/a"
	if extractor.lastDoc != wantDoc {
		t.Fatalf("expected document %q, got %q", wantDoc, extractor.lastDoc)
	}
}

func TestRun_RenderFailureManualFallback(t *testing.T) {
	cfg := testConfig(config.SourceConfig{Name: "Site", URL: "https://s.com", Kind: config.KindWebpage})
	deps := Deps{
		Renderer:  &fakeRenderer{err: errors.New("render timed out")},
		Extractor: &fakeExtractor{},
		Prompt:    func(_, _ string) string { return "pasted text" },
		Now:       func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := decodeRecords(t, &buf)[0]
	if rec.Status != StatusManual {
		t.Fatalf("expected %s, got %s", StatusManual, rec.Status)
	}
	if rec.RawText != "pasted text" {
		t.Fatalf("manual content lost: %+v", rec)
	}
	if rec.Error != "render timed out" {
		t.Fatalf("failure reason lost: %+v", rec)
	}
}

func TestRun_RenderFailureSkipped(t *testing.T) {
	cfg := testConfig(config.SourceConfig{Name: "Site", URL: "https://s.com", Kind: config.KindWebpage})
	deps := Deps{
		Renderer:  &fakeRenderer{err: errors.New("unreachable")},
		Extractor: &fakeExtractor{},
		Now:       func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := decodeRecords(t, &buf)[0]
	if rec.Status != StatusNoContent {
		t.Fatalf("expected %s, got %s", StatusNoContent, rec.Status)
	}
}

func TestRun_ModelUnavailableVersusParseFailure(t *testing.T) {
	markup := `<html><body><p>Hello</p><a href="/a">A</a></body></html>`
	cfg := testConfig(config.SourceConfig{Name: "Site", URL: "https://s.com", Kind: config.KindWebpage})

	var buf bytes.Buffer
	deps := Deps{
		Renderer:  &fakeRenderer{html: markup},
		Extractor: &fakeExtractor{err: fmt.Errorf("extraction request: %w", provider.ErrUnavailable)},
		Now:       func() time.Time { return fixedNow },
	}
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec := decodeRecords(t, &buf)[0]; rec.Status != StatusModelUnavailable {
		t.Fatalf("expected %s, got %s", StatusModelUnavailable, rec.Status)
	}

	buf.Reset()
	deps.Extractor = &fakeExtractor{response: "sorry, nothing structured today"}
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := decodeRecords(t, &buf)[0]
	if rec.Status != StatusParseFailed {
		t.Fatalf("expected %s, got %s", StatusParseFailed, rec.Status)
	}
	if rec.RawText != "sorry, nothing structured today" {
		t.Fatalf("raw model output not preserved: %+v", rec)
	}
}

func TestRun_EmptyArticleListIsSuccess(t *testing.T) {
	markup := `<html><body><p>Hello</p><a href="/a">A</a></body></html>`
	cfg := testConfig(config.SourceConfig{Name: "Site", URL: "https://s.com", Kind: config.KindWebpage})
	deps := Deps{
		Renderer:  &fakeRenderer{html: markup},
		Extractor: &fakeExtractor{response: "[]"},
		Now:       func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := decodeRecords(t, &buf)[0]
	if rec.Status != StatusExtracted || len(rec.Items) != 0 {
		t.Fatalf("expected successful empty extraction, got %+v", rec)
	}
}

func TestRun_ChannelWithinWindow(t *testing.T) {
	cfg := testConfig(config.SourceConfig{Name: "Channel", URL: "https://www.youtube.com/@handle", Kind: config.KindYouTube})
	deps := Deps{
		YouTube: &fakeMetadata{
			channelID: "UC1",
			uploads: []youtube.Upload{
				{Title: "fresh", VideoID: "v1", URL: "https://www.youtube.com/watch?v=v1", PublishedAt: fixedNow.Add(-24 * time.Hour)},
				{Title: "stale", VideoID: "v2", URL: "https://www.youtube.com/watch?v=v2", PublishedAt: fixedNow.AddDate(0, 0, -8)},
				{Title: "older but in window", VideoID: "v3", URL: "https://www.youtube.com/watch?v=v3", PublishedAt: fixedNow.AddDate(0, 0, -6)},
			},
		},
		Now: func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := decodeRecords(t, &buf)[0]
	if rec.Status != StatusExtracted {
		t.Fatalf("expected %s, got %s", StatusExtracted, rec.Status)
	}
	if len(rec.Items) != 2 {
		t.Fatalf("expected window to keep 2 items, got %d", len(rec.Items))
	}
	// Chronological post-processing: oldest first.
	if rec.Items[0].Title != "older but in window" || rec.Items[1].Title != "fresh" {
		t.Fatalf("unexpected order: %+v", rec.Items)
	}
	if rec.Items[0].NormalizedDate == "" || rec.Items[0].RawDate == "" {
		t.Fatalf("missing dates: %+v", rec.Items[0])
	}
}

func TestRun_ChannelMetadataError(t *testing.T) {
	cfg := testConfig(config.SourceConfig{Name: "Channel", URL: "https://www.youtube.com/@handle", Kind: config.KindYouTube})
	deps := Deps{
		YouTube: &fakeMetadata{resolveErr: youtube.ErrChannelNotFound},
		Now:     func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec := decodeRecords(t, &buf)[0]; rec.Status != StatusMetadataError {
		t.Fatalf("expected %s, got %s", StatusMetadataError, rec.Status)
	}
}

func TestRun_BatchAlwaysCompletesWithOneRecordPerSource(t *testing.T) {
	cfg := testConfig(
		config.SourceConfig{Name: "Broken site", URL: "https://a.com", Kind: config.KindWebpage},
		config.SourceConfig{Name: "Broken channel", URL: "https://www.youtube.com/@x", Kind: config.KindYouTube},
		config.SourceConfig{Name: "Another broken site", URL: "https://b.com", Kind: config.KindWebpage},
	)
	var paced int
	deps := Deps{
		Renderer:  &fakeRenderer{err: errors.New("down")},
		Extractor: &fakeExtractor{},
		YouTube:   &fakeMetadata{listErr: youtube.ErrMetadata, resolveErr: youtube.ErrMetadata},
		Pace:      func(context.Context) { paced++ },
		Now:       func() time.Time { return fixedNow },
	}

	var buf bytes.Buffer
	if err := Run(context.Background(), cfg, deps, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records := decodeRecords(t, &buf)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Status == "" {
			t.Fatalf("record without terminal status: %+v", rec)
		}
		if rec.RunID != records[0].RunID {
			t.Fatal("records of one batch must share a run id")
		}
	}
	if paced != 2 {
		t.Fatalf("expected pacing between sources only, got %d calls", paced)
	}
}
