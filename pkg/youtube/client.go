// Package youtube is a minimal YouTube Data API v3 client covering the
// videos.list call used for metadata normalization.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// ErrVideoNotFound is returned when the API knows no video with the given id.
var ErrVideoNotFound = errors.New("youtube: video not found")

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey string, baseURL string) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// SetHTTPClient replaces the underlying HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

type Snippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

type ContentDetails struct {
	Duration string `json:"duration"`
}

type Status struct {
	UploadStatus  string `json:"uploadStatus"`
	PrivacyStatus string `json:"privacyStatus"`
}

type Video struct {
	ID             string         `json:"id"`
	Snippet        Snippet        `json:"snippet"`
	ContentDetails ContentDetails `json:"contentDetails"`
	Status         Status         `json:"status"`
}

type videoListResponse struct {
	Items []Video `json:"items"`
}

// GetVideo fetches status, snippet and content details for a single video id.
// Returns ErrVideoNotFound when the id does not resolve to a video.
func (c *Client) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, fmt.Errorf("youtube: videoID is required")
	}

	u, err := url.Parse(c.baseURL + "/videos")
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("part", "status,snippet,contentDetails")
	q.Set("id", videoID)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		return nil, fmt.Errorf("youtube: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out videoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	if len(out.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	return &out.Items[0], nil
}

// PublishedAtUnix converts the snippet's RFC 3339 publish timestamp to epoch
// seconds. A missing or malformed timestamp yields zero.
func (v *Video) PublishedAtUnix() int64 {
	ts, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt)
	if err != nil {
		return 0
	}
	return ts.Unix()
}
