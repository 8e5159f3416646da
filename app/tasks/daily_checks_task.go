package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pedrinsang/classboard/app/calendar"
	"github.com/pedrinsang/classboard/app/events"
	"github.com/pedrinsang/classboard/app/store"
)

type DailyChecksTask struct {
	Task
	source    TaskSource
	location  *time.Location
	publisher Publisher
	now       func() time.Time
}

func NewDailyChecksTask(source TaskSource, location *time.Location, publisher Publisher) *DailyChecksTask {
	return &DailyChecksTask{
		Task:      NewTask(TaskTypeDailyChecks),
		source:    source,
		location:  location,
		publisher: publisher,
		now:       time.Now,
	}
}

func (t *DailyChecksTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	date := calendar.Tomorrow(t.now(), t.location)

	due, err := t.source.TasksDueOn(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}

	if len(due) == 0 {
		slog.Info("Task completed",
			"type", string(t.Type),
			"date", date,
			"duration", t.GetDuration(),
			"created", 0)
		return nil
	}

	batch := t.source.NewBatch()
	for _, task := range due {
		batch.CreateNotification(Reminder(task, date))
		slog.Debug("Reminder staged", "task_id", task.ID, "title", task.Title)
	}

	ids, err := batch.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit reminders: %w", err)
	}
	t.Count = len(ids)

	if t.publisher != nil {
		err := t.publisher.Publish(events.SubjectNotificationsCreated, events.Event{
			Job:   string(t.Type),
			Date:  date,
			Count: len(ids),
			IDs:   ids,
		})
		if err != nil {
			slog.Warn("Failed to publish event", "type", string(t.Type), "error", err)
		}
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"date", date,
		"duration", t.GetDuration(),
		"tasks", len(due),
		"created", t.Count)

	return nil
}

// Reminder builds the notification for a task due on date (YYYY-MM-DD).
func Reminder(task store.Task, date string) store.Notification {
	return store.Notification{
		Type:   store.NotificationTypeReminder,
		Title:  "Lembrete: " + task.Title,
		Body:   fmt.Sprintf("A tarefa \"%s\" está marcada para amanhã (%s).", task.Title, calendar.FormatBR(date)),
		ReadBy: []string{},
	}
}
