// Package deliveries talks to the delivery views API and turns delivery
// records into testable HLS stream targets.
package deliveries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const deliveriesEndpoint = "/api/v1/delivery_views/deliveries"

// Delivery is one record from the delivery views API.
type Delivery struct {
	AMGID                string `json:"amg_id"`
	CName                string `json:"cname"`
	StreamURL            string `json:"stream_url"`
	FeedName             string `json:"feed_name"`
	FeedCode             string `json:"feed_code"`
	Platform             string `json:"platform"`
	HostURL              string `json:"host_url"`
	PrevDestinationID    string `json:"prev_destination_id"`
	FinalDestinationType string `json:"final_destination_type"`
	FinalDestinationID   string `json:"final_destination_id"`
}

type Client struct {
	base  string
	token string
	http  *http.Client
}

// New builds a client for the delivery views API at base, authenticating
// every request with the bearer token.
func New(base, token string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Deliveries fetches every delivery record. params are passed through as
// query parameters.
func (c *Client) Deliveries(ctx context.Context, params url.Values) ([]Delivery, error) {
	u := c.base + deliveriesEndpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("deliveries API returned HTTP %d", res.StatusCode)
	}

	var p struct {
		Deliveries []Delivery `json:"deliveries"`
		Total      int        `json:"total"`
		Shown      int        `json:"shown"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode deliveries: %w", err)
	}
	return p.Deliveries, nil
}
