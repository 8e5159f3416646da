package tasks

import (
	"context"

	"github.com/pedrinsang/classboard/app/events"
	"github.com/pedrinsang/classboard/app/store"
)

// TaskSource is the part of the store the reminder job needs.
type TaskSource interface {
	store.TaskRepository
	NewBatch() store.Batch
}

// NewsSink is the part of the store the scraper needs.
type NewsSink interface {
	store.NewsRepository
	NewBatch() store.Batch
}

// SeenCache short-circuits the store existence check for links committed earlier.
type SeenCache interface {
	Seen(ctx context.Context, linkID string) (bool, error)
	Mark(ctx context.Context, linkIDs ...string) error
}

type Publisher interface {
	Publish(subject string, e events.Event) error
}

// TaskSchedulerInterface is what the HTTP API drives.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Trigger(taskType TaskType) error
	Stats() []JobStats
}
