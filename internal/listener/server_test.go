package listener

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Aggregator) {
	t.Helper()
	agg := NewAggregator(filepath.Join(t.TempDir(), "token-metrics.json"))
	server := httptest.NewServer(NewServer("", agg).Handler())
	t.Cleanup(server.Close)
	return server, agg
}

func TestServerAcknowledgesValidPayload(t *testing.T) {
	server, agg := newTestServer(t)

	payload := string(usagePayload(dataPoint(42, "input", "claude-opus-4-1")))
	resp, err := http.Post(server.URL+"/v1/metrics", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 42, agg.Snapshot().TotalUsed)
}

func TestServerAcknowledgesGarbage(t *testing.T) {
	server, agg := newTestServer(t)

	resp, err := http.Post(server.URL+"/v1/metrics", "application/json", strings.NewReader("garbage"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, agg.Snapshot().TotalUsed)
}

func TestServerIgnoresGetBody(t *testing.T) {
	server, agg := newTestServer(t)

	resp, err := http.Get(server.URL + "/v1/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, agg.Snapshot().TotalUsed)
}
