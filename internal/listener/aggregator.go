// Package listener implements the token-metrics ingestion side: an OTLP
// HTTP endpoint that folds token-usage data points into cumulative
// totals and publishes them as the snapshot file the renderer reads.
package listener

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/util"
)

// TokenUsageMetric is the only metric name the listener consumes.
const TokenUsageMetric = "claude_code.token.usage"

// Aggregator owns the cumulative totals. All updates run under one lock
// and every accepted data point republishes a complete snapshot, so a
// reader never sees a partial document.
type Aggregator struct {
	mu           sync.Mutex
	totals       model.TokenTotals
	model        string
	snapshotPath string
	now          func() time.Time
}

// NewAggregator creates an aggregator publishing to snapshotPath.
func NewAggregator(snapshotPath string) *Aggregator {
	return &Aggregator{
		snapshotPath: snapshotPath,
		now:          time.Now,
	}
}

// Reset removes any stale snapshot from a previous run.
func (a *Aggregator) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totals = model.TokenTotals{}
	a.model = ""
	if err := os.Remove(a.snapshotPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Ingest processes one OTLP metrics payload. Data points of the token
// usage metric are accumulated by their "type" attribute; everything
// else is ignored. The payload tree is probed leniently, since OTLP
// exporters vary in which optional fields they emit.
func (a *Aggregator) Ingest(payload []byte) {
	accepted := 0

	gjson.GetBytes(payload, "resourceMetrics").ForEach(func(_, rm gjson.Result) bool {
		rm.Get("scopeMetrics").ForEach(func(_, sm gjson.Result) bool {
			sm.Get("metrics").ForEach(func(_, metric gjson.Result) bool {
				if metric.Get("name").String() != TokenUsageMetric {
					return true
				}
				metric.Get("sum.dataPoints").ForEach(func(_, dp gjson.Result) bool {
					if a.ingestDataPoint(dp) {
						accepted++
					}
					return true
				})
				return true
			})
			return true
		})
		return true
	})

	if accepted > 0 {
		a.mu.Lock()
		total := a.totals.Total()
		a.mu.Unlock()
		util.LogInfof("accepted %d token data points, total %d tokens", accepted, total)
	}
}

func (a *Aggregator) ingestDataPoint(dp gjson.Result) bool {
	value := int(dp.Get("asInt").Int())

	var tokenType, modelID string
	dp.Get("attributes").ForEach(func(_, attr gjson.Result) bool {
		switch attr.Get("key").String() {
		case "type":
			tokenType = attr.Get("value.stringValue").String()
		case "model":
			modelID = attr.Get("value.stringValue").String()
		}
		return true
	})

	a.mu.Lock()
	defer a.mu.Unlock()

	switch tokenType {
	case "input":
		a.totals.Input += value
	case "output":
		a.totals.Output += value
	case "cacheRead":
		a.totals.CacheRead += value
	case "cacheCreation":
		a.totals.CacheCreation += value
	default:
		return false
	}

	if modelID != "" {
		a.model = modelID
	}
	a.totals.LastUpdate = a.now().Format(time.RFC3339Nano)
	a.totals.Model = a.model

	if err := a.publishLocked(); err != nil {
		util.LogErrorf("failed to publish token snapshot: %v", err)
	}
	return true
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() model.TokenMetricsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() model.TokenMetricsSnapshot {
	return model.TokenMetricsSnapshot{
		Timestamp: a.now().Format(time.RFC3339Nano),
		Totals:    a.totals,
		TotalUsed: a.totals.Total(),
		Model:     a.model,
	}
}

// publishLocked atomically replaces the snapshot file: write a temporary
// sibling, then rename over the target. Readers either see the old
// document or the new one, never a half-written mix.
func (a *Aggregator) publishLocked() error {
	snapshot := a.snapshotLocked()
	data, err := sonic.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := util.EnsureDir(filepath.Dir(a.snapshotPath)); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp := a.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, a.snapshotPath); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}
