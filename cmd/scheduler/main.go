// Command scheduler runs the daily checks and the news scraper on a timer and
// serves health, stats, metrics and a manual trigger over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pedrinsang/classboard/app/api"
	"github.com/pedrinsang/classboard/app/bootstrap"
	"github.com/pedrinsang/classboard/app/cfg"
	"github.com/pedrinsang/classboard/app/metrics"
	"github.com/pedrinsang/classboard/app/tasks"
)

func main() {
	c, err := cfg.Load()
	if errors.Is(err, cfg.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	cfg.SetupLogger(c.Debug)
	metrics.Init(c.Version, c.Store)

	slog.Info("Starting Classboard scheduler", "version", c.Version, "store", c.Store, "timezone", c.Location.String())

	ctx := context.Background()

	app, err := bootstrap.Open(ctx, c, true)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	scheduler := tasks.NewScheduler(app.Factory, c)
	scheduler.Start()
	slog.Info("Scheduler started",
		"workers", c.WorkerCount,
		"checks_hour", c.ChecksHour,
		"scrape_interval", (time.Duration(c.ScrapeInterval) * time.Second).String())

	handler := api.NewHandler(scheduler, app.Cache, c.Store, c.Version)
	server := api.NewServer(handler, c.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()
	slog.Info("Classboard scheduler stopped")
}
