// Package farcaster talks to the Neynar v2 Farcaster API for publishing casts
// and reading the trending feed.
package farcaster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/selfai-labs/selfai/src/webclient"
)

const DefaultBaseURL = "https://api.neynar.com/v2/farcaster"

// ErrMissingHash is returned when Neynar accepts a cast but reports no hash.
var ErrMissingHash = errors.New("farcaster: response missing cast hash")

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: webclient.NewDefault(timeout),
	}
}

// Cast is the subset of a trending cast the service reads.
type Cast struct {
	Hash           string `json:"hash"`
	Text           string `json:"text"`
	RepliesCount   int    `json:"replies_count"`
	ReactionsCount int    `json:"reactions_count"`
}

type publishRequest struct {
	Text         string `json:"text"`
	FID          int64  `json:"fid"`
	ParentCastID string `json:"parent_cast_id,omitempty"`
}

// Publish posts text as fid, optionally as a reply to parentHash, and returns
// the new cast hash. It is attempted once so a timeout never double-posts.
func (c *Client) Publish(ctx context.Context, text string, fid int64, parentHash string) (string, error) {
	payload, err := json.Marshal(publishRequest{Text: text, FID: fid, ParentCastID: parentHash})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/casts", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.headers(req)
	req.Header.Set("Content-Type", "application/json")

	_, body, err := webclient.Do(c.httpClient, req)
	if err != nil {
		return "", fmt.Errorf("farcaster: publish: %w", err)
	}

	var result struct {
		Cast struct {
			Hash string `json:"hash"`
		} `json:"cast"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("farcaster: decode publish response: %w", err)
	}
	if result.Cast.Hash == "" {
		return "", ErrMissingHash
	}
	return result.Cast.Hash, nil
}

// Trending returns up to limit casts from the trending feed.
func (c *Client) Trending(ctx context.Context, limit int) ([]Cast, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/feed/trending?" + q.Encode()

	_, body, err := webclient.DoWithRetry(ctx, 2, 500*time.Millisecond, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return 0, nil, err
		}
		c.headers(req)
		return webclient.Do(c.httpClient, req)
	})
	if err != nil {
		return nil, fmt.Errorf("farcaster: trending: %w", err)
	}

	var result struct {
		Casts []Cast `json:"casts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("farcaster: decode trending response: %w", err)
	}
	return result.Casts, nil
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
}
