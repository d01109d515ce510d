package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/engine"
	"github.com/kaidence/cc-statusline/internal/util"
)

var (
	// Logging related
	debug bool

	// Configuration
	configPath string
	timezone   string

	// Capability switches
	noRouting  bool
	noIndexing bool

	// Render related
	deadlineMs int
	maxWidth   int

	rootCmd = &cobra.Command{
		Use:   "cc-statusline",
		Short: "Claude Code statusline renderer",
		Long: `cc-statusline renders a single-line usage summary for a Claude Code
session: model, session/today/block cost, burn rate, token counts, and
project-indexing health.

The host invokes it once per render tick and pipes the session context
as JSON on stdin. It always prints exactly one line and always exits 0;
any source that is slow, absent, or broken simply drops out of the line.

Examples:
  echo '{}' | cc-statusline                 # render with defaults
  cc-statusline --no-indexing               # skip the indexing lookup
  cc-statusline listen                      # run the OTLP token listener
  cc-statusline metrics --follow            # watch the token snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRender,
	}
)

const (
	defaultLogFile = "~/.cc-statusline/logs/app.log"
	stdinWait      = 500 * time.Millisecond
	maxStdinBytes  = 1 << 20
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default ~/.cc-statusline/config.toml)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")

	rootCmd.Flags().BoolVar(&noRouting, "no-routing", false,
		"Skip the model-routing service lookup")
	rootCmd.Flags().BoolVar(&noIndexing, "no-indexing", false,
		"Skip the project-indexing service lookup")
	rootCmd.Flags().IntVar(&deadlineMs, "deadline", 0,
		"Overall soft render deadline in milliseconds (0 = config value)")
	rootCmd.Flags().IntVar(&maxWidth, "max-width", 0,
		"Clamp the line to a display width (0 = terminal width when on a tty)")
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	// The contract with the host is one line and exit 0, no matter what.
	defer func() {
		if r := recover(); r != nil {
			util.LogErrorf("render panicked: %v", r)
			fmt.Println(engine.FallbackLine)
		}
		err = nil
	}()

	initRuntime()

	cfg, cfgErr := engine.LoadConfig(configPath)
	if cfgErr != nil {
		util.LogWarnf("config load failed, using defaults: %v", cfgErr)
	}
	if noRouting {
		cfg.RoutingEnabled = false
	}
	if noIndexing {
		cfg.IndexingEnabled = false
	}
	if deadlineMs > 0 {
		cfg.SoftDeadline = time.Duration(deadlineMs) * time.Millisecond
	}

	statusCtx := parseStatusContext(readStdin(stdinWait))

	now := util.GetTimeProvider().Now()
	line := engine.New(cfg).Render(context.Background(), statusCtx, now)
	fmt.Println(engine.TruncateToWidth(line, lineWidth()))
	return nil
}

func initRuntime() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	logFile := util.ExpandPath(defaultLogFile)
	util.EnsureDir(filepath.Dir(logFile))
	util.InitLogger(logLevel, logFile, debug)
	if err := util.InitializeTimeProvider(timezone); err != nil {
		util.LogWarnf("falling back to local timezone: %v", err)
	}
}

// readStdin drains stdin, giving up after the wait when the host sends
// nothing. The renderer must not hang on a host that never writes.
func readStdin(wait time.Duration) []byte {
	type result struct{ data []byte }
	ch := make(chan result, 1)

	go func() {
		data, _ := io.ReadAll(io.LimitReader(os.Stdin, maxStdinBytes))
		ch <- result{data: data}
	}()

	select {
	case r := <-ch:
		return r.data
	case <-time.After(wait):
		util.LogDebug("no stdin payload before deadline")
		return nil
	}
}

// parseStatusContext decodes the host payload; absent or malformed input
// is a valid empty context.
func parseStatusContext(data []byte) *model.StatusContext {
	ctx := &model.StatusContext{}
	if len(data) == 0 {
		return ctx
	}
	if err := sonic.Unmarshal(data, ctx); err != nil {
		util.LogDebugf("stdin payload malformed: %v", err)
		return &model.StatusContext{}
	}
	return ctx
}

// lineWidth resolves the clamp width: the flag wins, then the terminal
// width when stdout is a tty, else no clamp.
func lineWidth() int {
	if maxWidth > 0 {
		return maxWidth
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			return w
		}
	}
	return 0
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
