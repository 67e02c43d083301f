// Package stats fetches per-user game statistics from the game server's
// HTTP API.
package stats

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

	"k8s.io/klog/v2"
)

// ErrInvalidUsername is returned for blank usernames. Nothing is requested.
var ErrInvalidUsername = errors.New("invalid username")

// Stats of one user. Missing fields are zero.
type Stats struct {
	Username        string `json:"username,omitempty"`
	GamesPlayed     int    `json:"games_played"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	Draws           int    `json:"draws"`
	AbandonedByUser int    `json:"abandoned_by_user"`
}

// Client for the stats endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the API rooted at baseURL,
// e.g. "http://localhost:8000/api/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch returns the stats of username. A user unknown to the server has zero
// stats and no error.
func (c *Client) Fetch(ctx context.Context, username string) (Stats, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Stats{}, ErrInvalidUsername
	}
	u := fmt.Sprintf("%s/users/%s/stats", c.baseURL, url.PathEscape(username))
	klog.V(1).Infof("stats: fetching %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: fetching stats for %q: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		klog.V(1).Infof("stats: user %q not found, using zero stats", username)
		return Stats{Username: username}, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Stats{}, fmt.Errorf("stats: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Stats{}, fmt.Errorf("stats: fetching stats for %q: %s", username, apiError(resp, body))
	}

	var s Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return Stats{}, fmt.Errorf("stats: decoding response: %w", err)
	}
	if s.Username == "" {
		s.Username = username
	}
	return s, nil
}

// apiError extracts the error text of a failed response: "detail", then
// "message", then the HTTP status.
func apiError(resp *http.Response, body []byte) string {
	var e struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if d, ok := e.Detail.(string); ok && d != "" {
			return d
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
