package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/pedrinsang/classboard/app/events"
	"github.com/pedrinsang/classboard/app/store"
)

var _ store.Store = (*fakeStore)(nil)

type fakeStore struct {
	mu            sync.Mutex
	tasks         []store.Task
	notifications []store.Notification
	news          map[string]store.News
	queriedDates  []string
	existsCalls   int
	commits       int
	queryErr      error
	commitErr     error
}

func newFakeStore(tasks ...store.Task) *fakeStore {
	return &fakeStore{tasks: tasks, news: make(map[string]store.News)}
}

func (s *fakeStore) TasksDueOn(ctx context.Context, date string) ([]store.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queriedDates = append(s.queriedDates, date)
	if s.queryErr != nil {
		return nil, s.queryErr
	}

	var due []store.Task
	for _, t := range s.tasks {
		if t.Date == date {
			due = append(due, t)
		}
	}
	return due, nil
}

func (s *fakeStore) NewsExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.existsCalls++
	_, ok := s.news[id]
	return ok, nil
}

func (s *fakeStore) NewBatch() store.Batch {
	return &fakeBatch{store: s}
}

func (s *fakeStore) Close() error {
	return nil
}

type fakeBatch struct {
	store         *fakeStore
	notifications []store.Notification
	news          []store.News
}

func (b *fakeBatch) CreateNotification(n store.Notification) {
	b.notifications = append(b.notifications, n)
}

func (b *fakeBatch) CreateNews(n store.News) {
	b.news = append(b.news, n)
}

func (b *fakeBatch) Len() int {
	return len(b.notifications) + len(b.news)
}

func (b *fakeBatch) Commit(ctx context.Context) ([]string, error) {
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commits++
	if s.commitErr != nil {
		return nil, s.commitErr
	}

	for _, n := range b.news {
		if _, ok := s.news[n.ID]; ok {
			return nil, fmt.Errorf("news %s: %w", n.ID, store.ErrAlreadyExists)
		}
	}

	var ids []string
	for _, n := range b.notifications {
		n.ID = fmt.Sprintf("notification-%d", len(s.notifications)+1)
		s.notifications = append(s.notifications, n)
		ids = append(ids, n.ID)
	}
	for _, n := range b.news {
		s.news[n.ID] = n
		ids = append(ids, n.ID)
	}

	return ids, nil
}

type publishedEvent struct {
	subject string
	event   events.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(subject string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{subject: subject, event: e})
	return nil
}

type fakeCache struct {
	seen map[string]bool
	err  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{seen: make(map[string]bool)}
}

func (c *fakeCache) Seen(ctx context.Context, linkID string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.seen[linkID], nil
}

func (c *fakeCache) Mark(ctx context.Context, linkIDs ...string) error {
	for _, id := range linkIDs {
		c.seen[id] = true
	}
	return nil
}
