// Package bootstrap wires configuration into a ready-to-run task factory.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pedrinsang/classboard/app/cache"
	"github.com/pedrinsang/classboard/app/cfg"
	"github.com/pedrinsang/classboard/app/events"
	"github.com/pedrinsang/classboard/app/feed"
	"github.com/pedrinsang/classboard/app/store"
	"github.com/pedrinsang/classboard/app/tasks"
)

// App owns every connection opened for the process.
type App struct {
	Factory *tasks.Factory
	Cache   *cache.SeenCache

	store     store.Store
	publisher *events.Publisher
}

// Open connects the store and the optional integrations. The feed
// configuration is only loaded when withFeed is set, so the reminder job
// never depends on it. Redis and NATS only speed up or announce runs, so an
// unreachable server disables them instead of failing.
func Open(ctx context.Context, c *cfg.Cfg, withFeed bool) (*App, error) {
	s, err := store.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", c.Store, err)
	}

	app := &App{store: s}

	factory := &tasks.Factory{
		Store:     s,
		Location:  c.Location,
		UserAgent: c.UserAgent,
	}

	if withFeed {
		feedConfig, err := feed.LoadConfig(c.FiltersFile)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to load filters: %w", err)
		}

		factory.FeedConfig = feedConfig
		factory.HTTPClient = &http.Client{Timeout: time.Duration(feedConfig.Settings.Timeout) * time.Second}
		factory.Parser = feed.NewParser()
		factory.Filterer = feed.NewFilterer()
		factory.ContentExtractor = feed.NewContentExtractor()

		if c.RedisAddr != "" {
			seen, err := cache.NewSeenCache(ctx, c.RedisAddr)
			if err != nil {
				slog.Warn("Seen cache disabled", "error", err)
			} else {
				app.Cache = seen
				factory.Cache = seen
			}
		}
	}

	if c.NATSUrl != "" {
		publisher, err := events.Connect(c.NATSUrl)
		if err != nil {
			slog.Warn("Event publishing disabled", "error", err)
		} else {
			app.publisher = publisher
			factory.Publisher = publisher
		}
	}

	app.Factory = factory

	return app, nil
}

func (a *App) Close() {
	a.publisher.Close()

	if err := a.Cache.Close(); err != nil {
		slog.Warn("Failed to close cache", "error", err)
	}

	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close store", "error", err)
	}
}

// RunOnce performs a single run of taskType, as the cron-invoked binaries do.
func RunOnce(ctx context.Context, c *cfg.Cfg, taskType tasks.TaskType) error {
	app, err := Open(ctx, c, taskType == tasks.TaskTypeScrapeNews)
	if err != nil {
		return err
	}
	defer app.Close()

	task, err := app.Factory.NewTask(taskType)
	if err != nil {
		return err
	}

	return tasks.Run(ctx, task)
}
