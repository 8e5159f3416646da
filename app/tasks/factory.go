package tasks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pedrinsang/classboard/app/feed"
	"github.com/pedrinsang/classboard/app/metrics"
	"github.com/pedrinsang/classboard/app/store"
)

// Factory holds the collaborators shared by every run and builds fresh tasks from them.
type Factory struct {
	Store            store.Store
	FeedConfig       *feed.Config
	HTTPClient       *http.Client
	Parser           *feed.Parser
	Filterer         *feed.Filterer
	ContentExtractor *feed.ContentExtractor
	Cache            SeenCache
	Publisher        Publisher
	Location         *time.Location
	UserAgent        string
}

func (f *Factory) NewTask(taskType TaskType) (TaskInterface, error) {
	switch taskType {
	case TaskTypeDailyChecks:
		return NewDailyChecksTask(f.Store, f.Location, f.Publisher), nil
	case TaskTypeScrapeNews:
		if f.FeedConfig == nil {
			return nil, fmt.Errorf("news scraper requires a feed configuration")
		}
		return NewScrapeNewsTask(f.FeedConfig, f.HTTPClient, f.Parser, f.Filterer, f.ContentExtractor,
			f.Store, f.Cache, f.Publisher, f.Location, f.UserAgent), nil
	default:
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}
}

// Run executes one pass of a task and records its outcome.
func Run(ctx context.Context, task TaskInterface) error {
	task.Start()
	err := task.Execute(ctx)

	job := string(task.GetType())
	metrics.JobRunDuration.WithLabelValues(job).Observe(task.GetDuration().Seconds())

	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(job, "failed").Inc()
		return err
	}

	metrics.JobRunsTotal.WithLabelValues(job, "success").Inc()
	metrics.DocumentsCreated.WithLabelValues(job).Add(float64(task.GetCount()))
	metrics.JobLastSuccess.WithLabelValues(job).SetToCurrentTime()

	return nil
}
