// Package probe implements the per-stream HLS test pipeline: manifest
// resolution, segment accessibility probing, media-sequence-number liveness
// monitoring, audio/video quality analysis and the bounded-concurrency
// batch orchestrator.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/streamqa/hlscheck/internal/hls"
	"github.com/streamqa/hlscheck/internal/metrics"
)

const userAgent = "hlscheck/1.0"

// Client fetches playlists and probes segment reachability. Segment HEAD
// probes go through a shared rate limiter so that a wide worker pool does
// not hammer one origin.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a Client with the given per-request timeout. probesPerSec
// bounds segment existence checks across all workers; zero or negative
// disables the limit.
func NewClient(timeout time.Duration, probesPerSec float64) *Client {
	limit := rate.Inf
	if probesPerSec > 0 {
		limit = rate.Limit(probesPerSec)
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Get fetches a URL and returns the body. Non-2xx statuses are errors.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		metrics.RecordManifestFetch(false)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.RecordManifestFetch(false)
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		metrics.RecordManifestFetch(false)
		return nil, err
	}
	metrics.RecordManifestFetch(true)
	return body, nil
}

// GetPlaylist fetches and parses a playlist, resolving URIs against the
// requested URL.
func (c *Client) GetPlaylist(ctx context.Context, rawURL string) (*hls.Playlist, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		base = nil
	}
	return hls.Parse(bytes.NewReader(body), base)
}

// SegmentExists performs a lightweight existence check (HEAD, no body
// transfer). Network failures count as inaccessible and are never
// propagated.
func (c *Client) SegmentExists(ctx context.Context, rawURL string) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode == http.StatusOK
}
