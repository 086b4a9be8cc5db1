package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pinchpop/backend/internal/config"
)

// Client posts event envelopes to the configured sink service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Default package-level client (set from main on startup)
var Default *Client

// SetDefault sets the package Default client.
func SetDefault(c *Client) {
	Default = c
}

// NewClient constructs a sink client. Returns nil if no sink is configured.
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || cfg.EventSinkURL == "" {
		return nil
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.EventSinkURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Post delivers one envelope to the sink. Returns the sink's event id when
// the sink reports one. Transient transport and 5xx failures are retried a
// couple of times with a short backoff.
func (c *Client) Post(ctx context.Context, env Envelope) (string, error) {
	if c == nil {
		return "", errors.New("event sink not configured")
	}

	b, err := json.Marshal(env)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/events", strings.NewReader(string(b)))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < 2 {
				time.Sleep(time.Duration(100+attempt*200) * time.Millisecond)
				continue
			}
			break
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == 200 {
			var parsed struct {
				Status  string `json:"status"`
				EventID string `json:"eventId"`
			}
			if err := json.Unmarshal(body, &parsed); err == nil {
				return parsed.EventID, nil
			}
			return "", nil
		}

		if resp.StatusCode >= 500 && attempt < 2 {
			lastErr = fmt.Errorf("sink error %d: %s", resp.StatusCode, string(body))
			time.Sleep(time.Duration(100+attempt*200) * time.Millisecond)
			continue
		}

		return "", fmt.Errorf("event post failed: %d %s", resp.StatusCode, string(body))
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", errors.New("event post failed")
}
