// Package youtube adapts the video-hosting metadata API and transcript
// retrieval behind the collaborator contracts the pipeline expects.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/gatherer/internal/helpers"
)

var (
	// ErrMetadata reports a metadata-API failure; the source is skipped
	// for the run.
	ErrMetadata = errors.New("metadata api error")
	// ErrChannelNotFound reports that a handle resolved to no channel.
	ErrChannelNotFound = errors.New("channel not found")
)

const dataAPIBase = "https://www.googleapis.com/youtube/v3"

var handlePattern = regexp.MustCompile(`youtube\.com/(@[A-Za-z0-9_.-]+)`)

// Upload is one item from a channel's uploads playlist.
type Upload struct {
	Title       string
	VideoID     string
	URL         string
	PublishedAt time.Time
}

// Client talks to the YouTube Data API v3.
type Client struct {
	APIKey     string
	HTTPClient *http.Client
	Logger     *log.Logger

	// BaseURL and TimedTextURL override the production endpoints,
	// primarily for tests.
	BaseURL      string
	TimedTextURL string
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return dataAPIBase
}

// ResolveChannel turns an @handle, or a channel URL containing one, into a
// channel identifier. Only @handle forms are supported.
func (c *Client) ResolveChannel(ctx context.Context, handleOrURL string) (string, error) {
	handle := strings.TrimSpace(handleOrURL)
	if m := handlePattern.FindStringSubmatch(handle); m != nil {
		handle = m[1]
	}
	if !strings.HasPrefix(handle, "@") {
		return "", fmt.Errorf("%w: no @handle in %q", ErrChannelNotFound, handleOrURL)
	}

	params := url.Values{}
	params.Set("part", "id")
	params.Set("type", "channel")
	params.Set("maxResults", "1")
	params.Set("q", handle)

	var result struct {
		Items []struct {
			ID struct {
				ChannelID string `json:"channelId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search", params, &result); err != nil {
		return "", err
	}
	if len(result.Items) == 0 || result.Items[0].ID.ChannelID == "" {
		return "", fmt.Errorf("%w: %q", ErrChannelNotFound, handle)
	}
	if c.Logger != nil {
		c.Logger.Printf("resolved handle %q to channel %q", handle, result.Items[0].ID.ChannelID)
	}
	return result.Items[0].ID.ChannelID, nil
}

// ListRecentUploads returns up to maxItems entries from the channel's
// uploads playlist, newest first as the API delivers them. Recency
// windowing is the caller's concern.
func (c *Client) ListRecentUploads(ctx context.Context, channelID string, maxItems int) ([]Upload, error) {
	if maxItems <= 0 {
		maxItems = 50
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	var channels struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/channels", params, &channels); err != nil {
		return nil, err
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("%w: no channel details for %q", ErrMetadata, channelID)
	}
	playlistID := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if playlistID == "" {
		return nil, fmt.Errorf("%w: channel %q has no uploads playlist", ErrMetadata, channelID)
	}

	params = url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(maxItems))

	var playlist struct {
		Items []struct {
			Snippet struct {
				Title       string `json:"title"`
				PublishedAt string `json:"publishedAt"`
				ResourceID  struct {
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/playlistItems", params, &playlist); err != nil {
		return nil, err
	}

	uploads := make([]Upload, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			if c.Logger != nil {
				c.Logger.Printf("skipping upload %q: bad publishedAt %q", item.Snippet.Title, item.Snippet.PublishedAt)
			}
			continue
		}
		videoID := item.Snippet.ResourceID.VideoID
		uploads = append(uploads, Upload{
			Title:       item.Snippet.Title,
			VideoID:     videoID,
			URL:         "https://www.youtube.com/watch?v=" + videoID,
			PublishedAt: published.UTC(),
		})
	}
	return uploads, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	body, err := helpers.ReadAllAndClose(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrMetadata, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrMetadata, path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrMetadata, path, err)
	}
	return nil
}
