// Package indexing queries the project-indexing service's collection
// catalog and recent log tail.
package indexing

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultBaseURL is the indexing service root.
const DefaultBaseURL = "http://localhost:6333"

// DefaultCatalogTimeout bounds the collection catalog request.
const DefaultCatalogTimeout = 2 * time.Second

// DefaultLogsTimeout bounds the log tail request, which only feeds the
// optional progress estimate.
const DefaultLogsTimeout = 1 * time.Second

type collectionsResponse struct {
	Result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	} `json:"result"`
}

type logsResponse struct {
	Output []string `json:"output"`
}

// Client talks to the indexing service with independent timeouts per
// endpoint.
type Client struct {
	baseURL       string
	catalogClient *http.Client
	logsClient    *http.Client
}

// NewClient creates an indexing client.
func NewClient(baseURL string, catalogTimeout, logsTimeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if catalogTimeout <= 0 {
		catalogTimeout = DefaultCatalogTimeout
	}
	if logsTimeout <= 0 {
		logsTimeout = DefaultLogsTimeout
	}
	return &Client{
		baseURL:       baseURL,
		catalogClient: &http.Client{Timeout: catalogTimeout},
		logsClient:    &http.Client{Timeout: logsTimeout},
	}
}

// Collections returns the names in the collection catalog.
func (c *Client) Collections() ([]string, error) {
	body, err := get(c.catalogClient, c.baseURL+"/collections")
	if err != nil {
		return nil, err
	}

	var parsed collectionsResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing collections response: %w", err)
	}

	names := make([]string, 0, len(parsed.Result.Collections))
	for _, col := range parsed.Result.Collections {
		names = append(names, col.Name)
	}
	return names, nil
}

// Logs returns the recent log tail, most recent entries last.
func (c *Client) Logs() ([]string, error) {
	body, err := get(c.logsClient, c.baseURL+"/logs")
	if err != nil {
		return nil, err
	}

	var parsed logsResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing logs response: %w", err)
	}
	return parsed.Output, nil
}

func get(client *http.Client, endpoint string) ([]byte, error) {
	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("indexing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexing returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
