package listener

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaidence/cc-statusline/internal/core/model"
)

func newTestAggregator(t *testing.T) (*Aggregator, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token-metrics.json")
	agg := NewAggregator(path)
	agg.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return agg, path
}

func usagePayload(points string) []byte {
	return []byte(fmt.Sprintf(`{
		"resourceMetrics": [{
			"scopeMetrics": [{
				"metrics": [{
					"name": "claude_code.token.usage",
					"sum": {"dataPoints": [%s]}
				}]
			}]
		}]
	}`, points))
}

func dataPoint(value int, tokenType, modelID string) string {
	return fmt.Sprintf(`{
		"asInt": "%d",
		"attributes": [
			{"key": "type", "value": {"stringValue": %q}},
			{"key": "model", "value": {"stringValue": %q}}
		]
	}`, value, tokenType, modelID)
}

func TestIngestAccumulatesByType(t *testing.T) {
	agg, _ := newTestAggregator(t)

	agg.Ingest(usagePayload(
		dataPoint(100, "input", "claude-sonnet-4-5") + "," +
			dataPoint(50, "output", "claude-sonnet-4-5") + "," +
			dataPoint(2000, "cacheRead", "claude-sonnet-4-5") + "," +
			dataPoint(300, "cacheCreation", "claude-sonnet-4-5")))
	agg.Ingest(usagePayload(dataPoint(25, "output", "claude-sonnet-4-5")))

	snap := agg.Snapshot()
	assert.Equal(t, 100, snap.Totals.Input)
	assert.Equal(t, 75, snap.Totals.Output)
	assert.Equal(t, 2000, snap.Totals.CacheRead)
	assert.Equal(t, 300, snap.Totals.CacheCreation)
	assert.Equal(t, 2475, snap.TotalUsed)
	assert.Equal(t, "claude-sonnet-4-5", snap.Model)
}

func TestIngestWritesSnapshotFile(t *testing.T) {
	agg, path := newTestAggregator(t)

	agg.Ingest(usagePayload(dataPoint(42, "input", "claude-opus-4-1")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap model.TokenMetricsSnapshot
	require.NoError(t, sonic.Unmarshal(data, &snap))
	assert.Equal(t, 42, snap.TotalUsed)
	assert.Equal(t, "claude-opus-4-1", snap.Model)
	assert.Equal(t, "2026-08-30T12:00:00Z", snap.Timestamp)
}

func TestIngestIgnoresOtherMetrics(t *testing.T) {
	agg, path := newTestAggregator(t)

	agg.Ingest([]byte(`{
		"resourceMetrics": [{
			"scopeMetrics": [{
				"metrics": [{
					"name": "claude_code.cost.usage",
					"sum": {"dataPoints": [{"asInt": "999", "attributes": [{"key": "type", "value": {"stringValue": "input"}}]}]}
				}]
			}]
		}]
	}`))

	assert.Equal(t, 0, agg.Snapshot().TotalUsed)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestIngestUnknownTypeRejected(t *testing.T) {
	agg, _ := newTestAggregator(t)

	agg.Ingest(usagePayload(dataPoint(500, "speculation", "claude-opus-4-1")))

	assert.Equal(t, 0, agg.Snapshot().TotalUsed)
}

func TestIngestGarbagePayload(t *testing.T) {
	agg, path := newTestAggregator(t)

	agg.Ingest([]byte(`not even json`))
	agg.Ingest(nil)

	assert.Equal(t, 0, agg.Snapshot().TotalUsed)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestResetRemovesStaleSnapshot(t *testing.T) {
	agg, path := newTestAggregator(t)

	agg.Ingest(usagePayload(dataPoint(42, "input", "m")))
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, agg.Reset())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 0, agg.Snapshot().TotalUsed)
}

func TestResetWithNoSnapshot(t *testing.T) {
	agg, _ := newTestAggregator(t)
	assert.NoError(t, agg.Reset())
}
