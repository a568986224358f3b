// Package instagram is a minimal Instagram Graph API client for the media edge.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultBaseURL = "https://graph.instagram.com"
	mediaFields    = "id,caption,media_type,media_url,permalink,thumbnail_url,timestamp"
)

// Media is one item of the /{user-id}/media edge.
type Media struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
}

type mediaResponse struct {
	Data  []Media `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type Config struct {
	BaseURL     string
	AccessToken string
	UserID      string
	Limit       int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 9
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Configured reports whether both the token and the user id are present.
func (c *Client) Configured() bool {
	return c.cfg.AccessToken != "" && c.cfg.UserID != ""
}

// RecentMedia returns the newest media items of the configured account.
func (c *Client) RecentMedia(ctx context.Context) ([]Media, error) {
	q := url.Values{}
	q.Set("fields", mediaFields)
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	q.Set("access_token", c.cfg.AccessToken)
	endpoint := fmt.Sprintf("%s/%s/media?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.UserID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build instagram request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the access token; keep it out of the error.
		return nil, fmt.Errorf("instagram request failed: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read instagram response: %w", err)
	}

	var parsed mediaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode instagram response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || parsed.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("instagram returned status %d: %s", resp.StatusCode, msg)
	}
	return parsed.Data, nil
}

func unwrapURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Err
	}
	return err
}
