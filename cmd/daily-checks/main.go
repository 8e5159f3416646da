// Command daily-checks creates a reminder notification for every task due tomorrow.
// It runs a single pass and exits 0 on success or 1 on any error.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pedrinsang/classboard/app/bootstrap"
	"github.com/pedrinsang/classboard/app/cfg"
	"github.com/pedrinsang/classboard/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	c, err := cfg.Load()
	if errors.Is(err, cfg.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	cfg.SetupLogger(c.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting job", "type", string(tasks.TaskTypeDailyChecks), "version", c.Version, "store", c.Store)

	if err := bootstrap.RunOnce(ctx, c, tasks.TaskTypeDailyChecks); err != nil {
		slog.Error("Job failed", "type", string(tasks.TaskTypeDailyChecks), "error", err)
		return 1
	}

	return 0
}
