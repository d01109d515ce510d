package engine

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kaidence/cc-statusline/internal/resolver"
	"github.com/kaidence/cc-statusline/internal/source/accounting"
	"github.com/kaidence/cc-statusline/internal/source/indexing"
	"github.com/kaidence/cc-statusline/internal/source/metrics"
	"github.com/kaidence/cc-statusline/internal/source/routing"
	"github.com/kaidence/cc-statusline/internal/util"
)

// DefaultConfigPath is the optional TOML config file.
const DefaultConfigPath = "~/.cc-statusline/config.toml"

// DefaultSoftDeadline bounds the whole render; when it fires, formatting
// proceeds with whatever the sources produced so far.
const DefaultSoftDeadline = 2500 * time.Millisecond

// Config carries every knob of the render engine. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	AccountingCommand string
	AccountingTimeout time.Duration

	RoutingEnabled bool
	RoutingBaseURL string
	RoutingTimeout time.Duration

	IndexingEnabled        bool
	IndexingBaseURL        string
	IndexingCatalogTimeout time.Duration
	IndexingLogsTimeout    time.Duration
	CollectionPrefix       string
	BoundaryDirs           []string
	MinDepth               int
	ChunksPerFile          int

	SnapshotPath string
	Freshness    time.Duration

	SoftDeadline time.Duration
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		AccountingCommand:      accounting.DefaultCommand,
		AccountingTimeout:      accounting.DefaultTimeout,
		RoutingEnabled:         true,
		RoutingBaseURL:         routing.DefaultBaseURL,
		RoutingTimeout:         routing.DefaultTimeout,
		IndexingEnabled:        true,
		IndexingBaseURL:        indexing.DefaultBaseURL,
		IndexingCatalogTimeout: indexing.DefaultCatalogTimeout,
		IndexingLogsTimeout:    indexing.DefaultLogsTimeout,
		CollectionPrefix:       resolver.DefaultCollectionPrefix,
		BoundaryDirs:           resolver.DefaultBoundaryDirs,
		MinDepth:               resolver.DefaultMinDepth,
		ChunksPerFile:          resolver.DefaultChunksPerFile,
		SnapshotPath:           util.ExpandPath(metrics.DefaultSnapshotPath),
		Freshness:              metrics.DefaultFreshness,
		SoftDeadline:           DefaultSoftDeadline,
	}
}

// fileConfig is the TOML shape. Pointer fields distinguish "absent" from
// a deliberate zero so the file only overrides what it mentions.
type fileConfig struct {
	Accounting struct {
		Command   *string `toml:"command"`
		TimeoutMs *int    `toml:"timeout_ms"`
	} `toml:"accounting"`
	Routing struct {
		Enabled   *bool   `toml:"enabled"`
		BaseURL   *string `toml:"base_url"`
		TimeoutMs *int    `toml:"timeout_ms"`
	} `toml:"routing"`
	Indexing struct {
		Enabled          *bool    `toml:"enabled"`
		BaseURL          *string  `toml:"base_url"`
		CatalogTimeoutMs *int     `toml:"catalog_timeout_ms"`
		LogsTimeoutMs    *int     `toml:"logs_timeout_ms"`
		CollectionPrefix *string  `toml:"collection_prefix"`
		BoundaryDirs     []string `toml:"boundary_dirs"`
		MinDepth         *int     `toml:"min_depth"`
		ChunksPerFile    *int     `toml:"chunks_per_file"`
	} `toml:"indexing"`
	Metrics struct {
		SnapshotPath     *string `toml:"snapshot_path"`
		FreshnessSeconds *int    `toml:"freshness_seconds"`
	} `toml:"metrics"`
	Render struct {
		DeadlineMs *int `toml:"deadline_ms"`
	} `toml:"render"`
}

// LoadConfig layers the TOML file at path over the defaults. A missing
// file is fine; a malformed one is reported but the defaults still come
// back usable.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = util.ExpandPath(DefaultConfigPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return cfg, err
	}

	setString(&cfg.AccountingCommand, fc.Accounting.Command)
	setMillis(&cfg.AccountingTimeout, fc.Accounting.TimeoutMs)

	setBool(&cfg.RoutingEnabled, fc.Routing.Enabled)
	setString(&cfg.RoutingBaseURL, fc.Routing.BaseURL)
	setMillis(&cfg.RoutingTimeout, fc.Routing.TimeoutMs)

	setBool(&cfg.IndexingEnabled, fc.Indexing.Enabled)
	setString(&cfg.IndexingBaseURL, fc.Indexing.BaseURL)
	setMillis(&cfg.IndexingCatalogTimeout, fc.Indexing.CatalogTimeoutMs)
	setMillis(&cfg.IndexingLogsTimeout, fc.Indexing.LogsTimeoutMs)
	setString(&cfg.CollectionPrefix, fc.Indexing.CollectionPrefix)
	if len(fc.Indexing.BoundaryDirs) > 0 {
		cfg.BoundaryDirs = fc.Indexing.BoundaryDirs
	}
	setInt(&cfg.MinDepth, fc.Indexing.MinDepth)
	setInt(&cfg.ChunksPerFile, fc.Indexing.ChunksPerFile)

	if fc.Metrics.SnapshotPath != nil {
		cfg.SnapshotPath = util.ExpandPath(*fc.Metrics.SnapshotPath)
	}
	if fc.Metrics.FreshnessSeconds != nil {
		cfg.Freshness = time.Duration(*fc.Metrics.FreshnessSeconds) * time.Second
	}

	setMillis(&cfg.SoftDeadline, fc.Render.DeadlineMs)

	return cfg, nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

func setMillis(dst *time.Duration, src *int) {
	if src != nil && *src > 0 {
		*dst = time.Duration(*src) * time.Millisecond
	}
}
