// Package accounting queries the external usage-accounting tool.
package accounting

import (
	"context"
	"os/exec"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kaidence/cc-statusline/internal/core/model"
	"github.com/kaidence/cc-statusline/internal/util"
)

// DefaultCommand is the accounting tool's binary name.
const DefaultCommand = "ccusage"

// DefaultTimeout bounds each subprocess invocation.
const DefaultTimeout = 5 * time.Second

// Runner executes one accounting query and returns its stdout. Injectable
// so resolvers can be tested without the real tool on PATH.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct {
	command string
}

func (r execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.command, args...)
	return cmd.Output()
}

// Source issues the three independent accounting queries. Failures of any
// kind (missing binary, non-zero exit, timeout, malformed JSON) reduce to
// an empty document, never an error.
type Source struct {
	runner  Runner
	timeout time.Duration
}

// New creates a Source running the given command.
func New(command string, timeout time.Duration) *Source {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{runner: execRunner{command: command}, timeout: timeout}
}

// NewWithRunner creates a Source backed by a custom runner.
func NewWithRunner(runner Runner, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{runner: runner, timeout: timeout}
}

// Blocks returns the billing-block report.
func (s *Source) Blocks(ctx context.Context) model.BlocksDocument {
	var doc model.BlocksDocument
	if output, ok := s.query(ctx, "blocks", "--json", "--offline"); ok {
		if err := sonic.Unmarshal(output, &doc); err != nil {
			util.LogDebugf("accounting blocks output malformed: %v", err)
			return model.BlocksDocument{}
		}
	}
	return doc
}

// Sessions returns the per-session report.
func (s *Source) Sessions(ctx context.Context) model.SessionsDocument {
	var doc model.SessionsDocument
	if output, ok := s.query(ctx, "session", "--json", "--offline"); ok {
		if err := sonic.Unmarshal(output, &doc); err != nil {
			util.LogDebugf("accounting session output malformed: %v", err)
			return model.SessionsDocument{}
		}
	}
	return doc
}

// Daily returns the per-day report.
func (s *Source) Daily(ctx context.Context) model.DailyDocument {
	var doc model.DailyDocument
	if output, ok := s.query(ctx, "daily", "--json", "--offline"); ok {
		if err := sonic.Unmarshal(output, &doc); err != nil {
			util.LogDebugf("accounting daily output malformed: %v", err)
			return model.DailyDocument{}
		}
	}
	return doc
}

func (s *Source) query(ctx context.Context, args ...string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	output, err := s.runner.Run(ctx, args...)
	if err != nil {
		util.LogDebugf("accounting query %v failed: %v", args, err)
		return nil, false
	}
	return output, true
}
