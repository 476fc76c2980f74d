package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	stdhtml "html"
	"net/http"
	"net/url"
	"strings"

	"github.com/mohammad-safakhou/gatherer/internal/helpers"
)

// ErrTranscriptUnavailable reports that a video has no retrievable
// transcript. Recoverable through the fallback controller.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

const timedTextBase = "https://video.google.com/timedtext"

func (c *Client) timedTextURL() string {
	if c.TimedTextURL != "" {
		return c.TimedTextURL
	}
	return timedTextBase
}

// Transcript fetches the ordered caption segments for a video via the
// timedtext endpoint. Timestamps are not part of the result.
func (c *Client) Transcript(ctx context.Context, videoID string) ([]string, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, fmt.Errorf("%w: empty video id", ErrTranscriptUnavailable)
	}

	params := url.Values{}
	params.Set("lang", "en")
	params.Set("v", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.timedTextURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	body, err := helpers.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTranscriptUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK || len(body) == 0 {
		return nil, fmt.Errorf("%w: video %q", ErrTranscriptUnavailable, videoID)
	}

	var transcript struct {
		Texts []struct {
			Content string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(body, &transcript); err != nil {
		return nil, fmt.Errorf("%w: decoding transcript: %v", ErrTranscriptUnavailable, err)
	}

	segments := make([]string, 0, len(transcript.Texts))
	for _, t := range transcript.Texts {
		text := strings.TrimSpace(stdhtml.UnescapeString(t.Content))
		if text != "" {
			segments = append(segments, text)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: video %q has no caption segments", ErrTranscriptUnavailable, videoID)
	}
	return segments, nil
}

// VideoID extracts a video identifier from watch and youtu.be URL forms.
func VideoID(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid video url %q: %w", rawURL, err)
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch host {
	case "youtube.com":
		if parsed.Path == "/watch" {
			if id := parsed.Query().Get("v"); id != "" {
				return id, nil
			}
		}
	case "youtu.be":
		if id := strings.Trim(parsed.Path, "/"); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not extract video id from %q", rawURL)
}
