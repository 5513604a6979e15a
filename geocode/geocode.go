// Package geocode resolves coordinates to display addresses through an
// external reverse-geocoding provider. The provider is treated as an opaque
// HTTP endpoint; callers fall back to FallbackAddress when it fails.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client calls a reverse-geocoding endpoint expected to answer
// GET {base}/reverse?lng=..&lat=.. with {"address": "..."}.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the provider at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// ReverseGeocode returns the display address for the coordinate pair.
func (c *Client) ReverseGeocode(ctx context.Context, lng, lat float64) (string, error) {
	q := url.Values{}
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if body.Address == "" {
		return "", fmt.Errorf("reverse geocode: empty address")
	}
	return body.Address, nil
}

// FallbackAddress formats a coordinate pair as a display string for when
// the provider is unavailable.
func FallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}
