// Package metrics reads the token snapshot the ingestion listener
// publishes and gates it on freshness.
package metrics

import (
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/util"
)

// DefaultSnapshotPath is the side-channel file under the host's
// configuration directory.
const DefaultSnapshotPath = "~/.claude/token-metrics.json"

// DefaultFreshness is the maximum age at which a snapshot is trusted.
const DefaultFreshness = 60 * time.Second

// timestampLayouts cover the zoned and naive ISO-8601 forms the listener
// family has written over time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Gate admits the snapshot only while it is fresh.
type Gate struct {
	path      string
	freshness time.Duration
}

// NewGate creates a gate over the snapshot file at path.
func NewGate(path string, freshness time.Duration) *Gate {
	if path == "" {
		path = util.ExpandPath(DefaultSnapshotPath)
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Gate{path: path, freshness: freshness}
}

// Read returns the snapshot when the file exists, parses, and is younger
// than the freshness window measured against now. Stale, missing, or
// malformed snapshots yield (nil, false).
func (g *Gate) Read(now time.Time) (*model.TokenMetricsSnapshot, bool) {
	snapshot, err := Load(g.path)
	if err != nil {
		return nil, false
	}

	ts, ok := ParseTimestamp(snapshot.Timestamp, now.Location())
	if !ok {
		util.LogDebugf("token snapshot has unparseable timestamp %q", snapshot.Timestamp)
		return nil, false
	}

	if now.Sub(ts) >= g.freshness {
		util.LogDebugf("token snapshot is stale (age %s)", now.Sub(ts))
		return nil, false
	}
	return snapshot, true
}

// Load reads and parses the snapshot file without any freshness check.
func Load(path string) (*model.TokenMetricsSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshot model.TokenMetricsSnapshot
	if err := sonic.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ParseTimestamp parses the snapshot timestamp, trying zoned forms first
// and falling back to naive local time.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timestampLayouts[:2] {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	for _, layout := range timestampLayouts[2:] {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
