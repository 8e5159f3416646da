package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the three collections as tables in a local file.
// It backs development runs and tests.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("SQLite store ready", "path", path, "version", version, "dirty", dirty)

	return &SQLiteStore{db: db}, nil
}

// AddTask inserts a task. Tasks are owned by the class application, so this only seeds local stores.
func (s *SQLiteStore) AddTask(ctx context.Context, t Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (id, title, date) VALUES (?, ?, ?)`, t.ID, t.Title, t.Date)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TasksDueOn(ctx context.Context, date string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, date FROM tasks WHERE date = ? ORDER BY id`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks due on %s: %w", date, err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func (s *SQLiteStore) NewsExists(ctx context.Context, id string) (bool, error) {
	var found int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM news WHERE id = ? LIMIT 1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check news %s: %w", id, err)
	}
	return true, nil
}

func (s *SQLiteStore) Notifications(ctx context.Context) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, title, body, read_by, created_at
		FROM notifications
		ORDER BY created_at, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		var readBy string
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &readBy, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if err := json.Unmarshal([]byte(readBy), &n.ReadBy); err != nil {
			return nil, fmt.Errorf("failed to decode read_by of notification %s: %w", n.ID, err)
		}
		result = append(result, n)
	}

	return result, rows.Err()
}

func (s *SQLiteStore) News(ctx context.Context) ([]News, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, link, date, description, img, source, created_at
		FROM news
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var result []News
	for rows.Next() {
		var n News
		if err := rows.Scan(&n.ID, &n.Title, &n.Link, &n.Date, &n.Description, &n.Img, &n.Source, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		result = append(result, n)
	}

	return result, rows.Err()
}

func (s *SQLiteStore) NewBatch() Batch {
	return &sqliteBatch{db: s.db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteBatch struct {
	staged
	db *sql.DB
}

func (b *sqliteBatch) Commit(ctx context.Context) ([]string, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, b.Len())

	for _, n := range b.notifications {
		id := uuid.NewString()
		readBy, err := json.Marshal(n.ReadBy)
		if err != nil {
			return nil, fmt.Errorf("failed to encode read_by: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO notifications (id, type, title, body, read_by)
			VALUES (?, ?, ?, ?, ?)`, id, n.Type, n.Title, n.Body, string(readBy))
		if err != nil {
			return nil, commitError(err)
		}
		ids = append(ids, id)
	}

	for _, n := range b.news {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO news (id, title, link, date, description, img, source)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, n.ID, n.Title, n.Link, n.Date, n.Description, n.Img, n.Source)
		if err != nil {
			return nil, commitError(err)
		}
		ids = append(ids, n.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	return ids, nil
}

func commitError(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("failed to commit batch: %w: %v", ErrAlreadyExists, err)
	}
	return fmt.Errorf("failed to commit batch: %w", err)
}
