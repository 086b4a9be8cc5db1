package advisor

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
	"github.com/pinchpop/backend/internal/game"
)

// Client talks to the external advisory service. The HTTP timeout bounds
// the whole round trip, so a hung service can never hold a session locked.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs an advisory client. Returns nil if no service is
// configured, which drops the whole advisory path onto the local heuristic.
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || cfg.AdvisorBaseURL == "" {
		return nil
	}
	timeout := time.Duration(cfg.AdvisorTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.AdvisorBaseURL, "/"),
		apiKey:     cfg.AdvisorAPIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Query is what the service judges: the rendered board plus the candidate
// list the engine already computed.
type Query struct {
	Image      string           `json:"image"`
	Candidates []game.Candidate `json:"candidates"`
	Danger     bool             `json:"danger"`
	Score      int              `json:"score"`
}

// Advice is the service's verdict. Every field is optional; whatever is
// missing gets filled from the local heuristic.
type Advice struct {
	Message   string     `json:"message"`
	Rationale string     `json:"rationale"`
	Target    *game.Cell `json:"target"`
	Color     string     `json:"color"`
}

// Advise posts one query and parses the verdict. No retries: the caller is
// holding the interaction lock while this runs.
func (c *Client) Advise(ctx context.Context, q Query) (*Advice, error) {
	if c == nil {
		return nil, errors.New("advisor not configured")
	}

	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/advice", strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("advisor returned %d: %s", resp.StatusCode, string(body))
	}

	var advice Advice
	if err := json.Unmarshal(body, &advice); err != nil {
		return nil, fmt.Errorf("advisor response unreadable: %w", err)
	}
	return &advice, nil
}
