// Package store is the document store the jobs read tasks from and write
// notifications and news to. Every backend commits a Batch atomically and
// creates documents only if their id is not taken yet.
package store

import (
	"context"
	"errors"
	"time"
)

const (
	CollectionTasks         = "tasks"
	CollectionNotifications = "notifications"
	CollectionNews          = "news"

	NotificationTypeReminder = "reminder"

	// Firestore rejects batched writes above this size.
	MaxBatchWrites = 500
)

var (
	ErrBatchTooLarge = errors.New("batch exceeds maximum number of writes")
	ErrAlreadyExists = errors.New("document already exists")
)

type Task struct {
	ID    string
	Title string
	Date  string // YYYY-MM-DD
}

type Notification struct {
	ID        string // Assigned on commit
	Type      string
	Title     string
	Body      string
	ReadBy    []string
	CreatedAt time.Time // Assigned by the store
}

type News struct {
	ID          string // Derived from Link
	Title       string
	Link        string
	Date        string // YYYY-MM-DD
	Description string
	Img         string
	Source      string
	CreatedAt   time.Time // Assigned by the store
}

type TaskRepository interface {
	TasksDueOn(ctx context.Context, date string) ([]Task, error)
}

type NewsRepository interface {
	NewsExists(ctx context.Context, id string) (bool, error)
}

// Batch stages document creations. Commit applies all of them or none.
type Batch interface {
	CreateNotification(n Notification)
	CreateNews(n News)
	Len() int
	// Commit returns the ids of the created documents in staging order, notifications first.
	Commit(ctx context.Context) ([]string, error)
}

type Store interface {
	TaskRepository
	NewsRepository
	NewBatch() Batch
	Close() error
}

type staged struct {
	notifications []Notification
	news          []News
}

func (s *staged) CreateNotification(n Notification) {
	if n.Type == "" {
		n.Type = NotificationTypeReminder
	}
	if n.ReadBy == nil {
		n.ReadBy = []string{}
	}
	s.notifications = append(s.notifications, n)
}

func (s *staged) CreateNews(n News) {
	s.news = append(s.news, n)
}

func (s *staged) Len() int {
	return len(s.notifications) + len(s.news)
}
