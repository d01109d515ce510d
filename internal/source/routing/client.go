// Package routing queries the model-routing service for the model that
// actually served a session.
package routing

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kaidence/cc-statusline/internal/util"
)

// DefaultBaseURL is the routing service's statusline API root.
const DefaultBaseURL = "http://localhost:3000/api/statusline"

// DefaultTimeout keeps the routing lookup sub-second; the render budget
// cannot wait on a slow router.
const DefaultTimeout = 800 * time.Millisecond

// UsageResponse is the routing service's answer for one session.
type UsageResponse struct {
	CurrentModel *CurrentModel `json:"currentModel"`
}

// CurrentModel reports the model the router resolved. IsActual is only
// set once the router has really served a request for the session;
// otherwise the field describes the requested model and must be ignored.
type CurrentModel struct {
	Model    string `json:"model"`
	IsActual bool   `json:"isActual"`
}

// Client is a bounded-timeout HTTP client for the routing service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a routing client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Usage looks up the current model for a session. Any transport, status
// or parse failure returns an error the caller treats as absence.
func (c *Client) Usage(sessionID string) (*UsageResponse, error) {
	endpoint := fmt.Sprintf("%s/usage?sessionId=%s", c.baseURL, url.QueryEscape(sessionID))

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading routing response: %w", err)
	}

	var usage UsageResponse
	if err := sonic.Unmarshal(body, &usage); err != nil {
		util.LogDebugf("routing response malformed: %v", err)
		return nil, fmt.Errorf("parsing routing response: %w", err)
	}
	return &usage, nil
}
