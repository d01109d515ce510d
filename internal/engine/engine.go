// Package engine orchestrates the status render: it fans out to every
// external source concurrently, reconciles the answers through the
// resolvers, and formats one line.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/resolver"
	"github.com/kaidence/cc-statusline/internal/source/accounting"
	"github.com/kaidence/cc-statusline/internal/source/indexing"
	"github.com/kaidence/cc-statusline/internal/source/metrics"
	"github.com/kaidence/cc-statusline/internal/source/routing"
	"github.com/kaidence/cc-statusline/internal/util"
)

// errDisabled marks a capability switched off by configuration; the
// resolver sees it as plain unavailability.
var errDisabled = errors.New("capability disabled")

// AccountingSource provides the three accounting reports.
type AccountingSource interface {
	Blocks(ctx context.Context) model.BlocksDocument
	Sessions(ctx context.Context) model.SessionsDocument
	Daily(ctx context.Context) model.DailyDocument
}

// RoutingSource answers which model actually served a session.
type RoutingSource interface {
	Usage(sessionID string) (*routing.UsageResponse, error)
}

// IndexingSource provides the collection catalog and log tail.
type IndexingSource interface {
	Collections() ([]string, error)
	Logs() ([]string, error)
}

// MetricsSource reads the freshness-gated token snapshot.
type MetricsSource interface {
	Read(now time.Time) (*model.TokenMetricsSnapshot, bool)
}

// Engine is the per-invocation orchestrator. It holds no mutable state;
// one Engine can render any number of times.
type Engine struct {
	cfg        Config
	accounting AccountingSource
	routing    RoutingSource
	indexing   IndexingSource
	metrics    MetricsSource
	indexRes   *resolver.IndexingResolver
}

// New builds an engine with real sources from the configuration.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:        cfg,
		accounting: accounting.New(cfg.AccountingCommand, cfg.AccountingTimeout),
		metrics:    metrics.NewGate(cfg.SnapshotPath, cfg.Freshness),
		indexRes: &resolver.IndexingResolver{
			Prefix:        cfg.CollectionPrefix,
			BoundaryDirs:  cfg.BoundaryDirs,
			MinDepth:      cfg.MinDepth,
			ChunksPerFile: cfg.ChunksPerFile,
		},
	}
	if cfg.RoutingEnabled {
		e.routing = routing.NewClient(cfg.RoutingBaseURL, cfg.RoutingTimeout)
	}
	if cfg.IndexingEnabled {
		e.indexing = indexing.NewClient(cfg.IndexingBaseURL, cfg.IndexingCatalogTimeout, cfg.IndexingLogsTimeout)
	}
	return e
}

// NewWithSources builds an engine over injected sources, for tests.
func NewWithSources(cfg Config, acc AccountingSource, rt RoutingSource, idx IndexingSource, met MetricsSource) *Engine {
	e := New(cfg)
	e.accounting = acc
	e.routing = rt
	e.indexing = idx
	e.metrics = met
	return e
}

// fetched holds whatever the sources delivered before the soft deadline.
// Fields the deadline cut off keep their absent zero values.
type fetched struct {
	mu sync.Mutex

	blocks   model.BlocksDocument
	sessions model.SessionsDocument
	daily    model.DailyDocument

	routing *resolver.RoutingAttribution

	collections []string
	catalogErr  error
	logs        []string
	logsErr     error

	snapshot *model.TokenMetricsSnapshot
}

// Render produces the status line for one invocation. All sources are
// queried concurrently under their own timeouts; a slow or failing
// source never stalls the others, and the soft deadline caps the whole
// render. Render itself never fails.
func (e *Engine) Render(ctx context.Context, statusCtx *model.StatusContext, now time.Time) string {
	f := e.fetch(ctx, statusCtx, now)
	return e.reconcile(statusCtx, f, now)
}

func (e *Engine) fetch(ctx context.Context, statusCtx *model.StatusContext, now time.Time) *fetched {
	f := &fetched{
		catalogErr: errDisabled,
		logsErr:    errDisabled,
	}

	var wg sync.WaitGroup
	run := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	}

	run(func() {
		blocks := e.accounting.Blocks(ctx)
		f.mu.Lock()
		f.blocks = blocks
		f.mu.Unlock()
	})
	run(func() {
		sessions := e.accounting.Sessions(ctx)
		f.mu.Lock()
		f.sessions = sessions
		f.mu.Unlock()
	})
	run(func() {
		daily := e.accounting.Daily(ctx)
		f.mu.Lock()
		f.daily = daily
		f.mu.Unlock()
	})
	run(func() {
		snapshot, ok := e.metrics.Read(now)
		if !ok {
			return
		}
		f.mu.Lock()
		f.snapshot = snapshot
		f.mu.Unlock()
	})

	if e.routing != nil && statusCtx != nil && statusCtx.SessionID != "" {
		sessionID := statusCtx.SessionID
		run(func() {
			usage, err := e.routing.Usage(sessionID)
			if err != nil || usage == nil || usage.CurrentModel == nil {
				return
			}
			f.mu.Lock()
			f.routing = &resolver.RoutingAttribution{
				Model:    usage.CurrentModel.Model,
				IsActual: usage.CurrentModel.IsActual,
			}
			f.mu.Unlock()
		})
	}

	if e.indexing != nil {
		run(func() {
			collections, err := e.indexing.Collections()
			f.mu.Lock()
			f.collections, f.catalogErr = collections, err
			f.mu.Unlock()
		})
		run(func() {
			logs, err := e.indexing.Logs()
			f.mu.Lock()
			f.logs, f.logsErr = logs, err
			f.mu.Unlock()
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(e.cfg.SoftDeadline):
		util.LogWarnf("render deadline (%s) exceeded, formatting partial status", e.cfg.SoftDeadline)
	case <-ctx.Done():
	}
	return f
}

func (e *Engine) reconcile(statusCtx *model.StatusContext, f *fetched, now time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if statusCtx == nil {
		statusCtx = &model.StatusContext{}
	}

	block := resolver.ResolveBlock(f.blocks)
	session := resolver.ResolveSessionCost(statusCtx, f.sessions)
	today := resolver.ResolveToday(f.daily, now.Format("2006-01-02"))
	modelName := resolver.ResolveModel(f.routing, statusCtx.Model, block.Block)
	indexStatus := e.indexRes.Resolve(statusCtx.WorkingDir(), f.collections, f.catalogErr, f.logs, f.logsErr)

	var contextUsed int
	if statusCtx.Context != nil {
		contextUsed = statusCtx.Context.UsedTokens
	}

	formatter := Formatter{}
	return formatter.Format(RenderInput{
		Model:          modelName,
		ExceedsContext: statusCtx.Exceeds200kTokens,
		Indexing:       indexStatus,
		Session:        session,
		Today:          today,
		Block:          block,
		Snapshot:       f.snapshot,
		ContextUsed:    contextUsed,
		ContextWindow:  statusCtx.Model.ContextWindow(),
	})
}
