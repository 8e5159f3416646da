package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "classboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestSQLite_TasksDueOn(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.AddTask(ctx, Task{ID: "t1", Title: "Prova de Anatomia", Date: "2024-05-20"}))
	require.NoError(t, s.AddTask(ctx, Task{ID: "t2", Title: "Relatório", Date: "2024-05-20"}))
	require.NoError(t, s.AddTask(ctx, Task{ID: "t3", Title: "Seminário", Date: "2024-05-21"}))

	tasks, err := s.TasksDueOn(ctx, "2024-05-20")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "t1", tasks[0].ID)
	require.Equal(t, "Prova de Anatomia", tasks[0].Title)

	none, err := s.TasksDueOn(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSQLite_CommitCreatesDocuments(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	b := s.NewBatch()
	b.CreateNotification(Notification{Title: "Lembrete: Prova", Body: "corpo"})
	b.CreateNews(News{ID: "aHR0cHM6Ly94", Title: "Edital", Link: "https://x", Date: "2024-05-20", Source: "ufsm-auto"})
	require.Equal(t, 2, b.Len())

	ids, err := b.Commit(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Equal(t, "aHR0cHM6Ly94", ids[1])

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, ids[0], notifications[0].ID)
	require.Equal(t, NotificationTypeReminder, notifications[0].Type)
	require.Equal(t, []string{}, notifications[0].ReadBy)
	require.False(t, notifications[0].CreatedAt.IsZero())

	exists, err := s.NewsExists(ctx, "aHR0cHM6Ly94")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.NewsExists(ctx, "missing")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSQLite_CommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	first := s.NewBatch()
	first.CreateNews(News{ID: "dup", Title: "A", Link: "https://a", Date: "2024-05-20", Source: "ufsm-auto"})
	_, err := first.Commit(ctx)
	require.NoError(t, err)

	second := s.NewBatch()
	second.CreateNotification(Notification{Title: "Lembrete: X", Body: "y"})
	second.CreateNews(News{ID: "fresh", Title: "B", Link: "https://b", Date: "2024-05-20", Source: "ufsm-auto"})
	second.CreateNews(News{ID: "dup", Title: "A again", Link: "https://a", Date: "2024-05-20", Source: "ufsm-auto"})

	_, err = second.Commit(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrAlreadyExists), "expected ErrAlreadyExists, got %v", err)

	notifications, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Empty(t, notifications)

	news, err := s.News(ctx)
	require.NoError(t, err)
	require.Len(t, news, 1)
	require.Equal(t, "A", news[0].Title)
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "classboard.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	version, dirty, err := RunMigrations(s.db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}
