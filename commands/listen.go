package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kaidence/cc-statusline/internal/engine"
	"github.com/kaidence/cc-statusline/internal/listener"
	"github.com/kaidence/cc-statusline/internal/util"
)

var (
	listenAddr  string
	listenFresh bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run the OTLP token-metrics listener",
	Long: `Runs the long-lived ingestion listener that captures OpenTelemetry
token-usage metrics from Claude Code and publishes them to the snapshot
file the statusline reads.

Point Claude Code at it with:

  export CLAUDE_CODE_ENABLE_TELEMETRY=1
  export OTEL_METRICS_EXPORTER=otlp
  export OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
  export OTEL_METRIC_EXPORT_INTERVAL=5000`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().StringVar(&listenAddr, "addr", fmt.Sprintf("localhost:%d", listener.DefaultPort),
		"Listen address for the OTLP endpoint")
	listenCmd.Flags().BoolVar(&listenFresh, "fresh", true,
		"Remove any stale snapshot on startup")
}

func runListen(cmd *cobra.Command, args []string) error {
	initRuntime()

	cfg, err := engine.LoadConfig(configPath)
	if err != nil {
		util.LogWarnf("config load failed, using defaults: %v", err)
	}

	aggregator := listener.NewAggregator(cfg.SnapshotPath)
	if listenFresh {
		if err := aggregator.Reset(); err != nil {
			return fmt.Errorf("failed to clear stale snapshot: %w", err)
		}
	}

	fmt.Printf("Token metrics listener on %s\n", listenAddr)
	fmt.Printf("Snapshot file: %s\n", cfg.SnapshotPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := listener.NewServer(listenAddr, aggregator)
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("listener failed: %w", err)
	}
	return nil
}
