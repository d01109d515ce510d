package commands

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kaidence/cc-statusline/internal/engine"
	"github.com/kaidence/cc-statusline/internal/source/metrics"
	"github.com/kaidence/cc-statusline/internal/util"
)

var metricsFollow bool

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect the token-metrics snapshot",
	Long: `Prints the token snapshot the ingestion listener publishes. With
--follow, watches the snapshot file and reprints on every update.`,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().BoolVarP(&metricsFollow, "follow", "f", false,
		"Watch the snapshot file and reprint on change")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	initRuntime()

	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		util.LogWarnf("config load failed, using defaults: %v", err)
	}

	printSnapshot(cfg.SnapshotPath)
	if !metricsFollow {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: the listener publishes by renaming a temp
	// file over the snapshot, which replaces the inode a file watch
	// would be pinned to.
	if err := watcher.Add(filepath.Dir(cfg.SnapshotPath)); err != nil {
		return fmt.Errorf("failed to watch snapshot directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name == cfg.SnapshotPath && event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				printSnapshot(cfg.SnapshotPath)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.LogError("snapshot watch error: " + err.Error())
		case <-ctx.Done():
			return nil
		}
	}
}

func printSnapshot(path string) {
	snapshot, err := metrics.Load(path)
	if err != nil {
		fmt.Printf("No snapshot at %s\n", path)
		return
	}

	age := "unknown age"
	if ts, ok := metrics.ParseTimestamp(snapshot.Timestamp, util.GetTimeProvider().Now().Location()); ok {
		age = fmt.Sprintf("%s old", util.GetTimeProvider().Now().Sub(ts).Round(time.Second))
	}

	fmt.Printf("%s tokens total (%s)\n", util.FormatNumber(snapshot.TotalUsed), age)
	fmt.Printf("  input: %s  output: %s  cacheRead: %s  cacheCreation: %s\n",
		util.FormatNumber(snapshot.Totals.Input),
		util.FormatNumber(snapshot.Totals.Output),
		util.FormatNumber(snapshot.Totals.CacheRead),
		util.FormatNumber(snapshot.Totals.CacheCreation))
	if snapshot.Model != "" {
		fmt.Printf("  model: %s\n", snapshot.Model)
	}
}
