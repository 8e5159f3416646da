package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeDailyChecks TaskType = "daily_checks"
	TaskTypeScrapeNews  TaskType = "scrape_news"
)

func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(s) {
	case TaskTypeDailyChecks, TaskTypeScrapeNews:
		return TaskType(s), nil
	default:
		return "", fmt.Errorf("unknown task type %q", s)
	}
}

// TaskInterface is a single pass of a job. Runs are never retried; a failed
// run is picked up again by the next scheduled invocation.
type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetCount() int
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID        string
	Type      TaskType
	Count     int // Documents created by the run
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetCount() int {
	return t.Count
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType) Task {
	return Task{
		ID:   uuid.NewString(),
		Type: taskType,
	}
}
