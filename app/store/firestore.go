package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pedrinsang/classboard/app/cfg"
)

type taskDocument struct {
	Title string `firestore:"title"`
	Date  string `firestore:"date"`
}

type notificationDocument struct {
	Type      string    `firestore:"type"`
	Title     string    `firestore:"title"`
	Body      string    `firestore:"body"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
	ReadBy    []string  `firestore:"readBy"`
}

type newsDocument struct {
	Title       string    `firestore:"title"`
	Link        string    `firestore:"link"`
	Date        string    `firestore:"date"`
	Description string    `firestore:"description"`
	Img         string    `firestore:"img"`
	Source      string    `firestore:"source"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
}

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, sa *cfg.ServiceAccount) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, sa.ProjectID, option.WithCredentialsJSON(sa.Raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) TasksDueOn(ctx context.Context, date string) ([]Task, error) {
	iter := s.client.Collection(CollectionTasks).Where("date", "==", date).Documents(ctx)
	defer iter.Stop()

	var tasks []Task
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query tasks due on %s: %w", date, err)
		}

		var td taskDocument
		if err := doc.DataTo(&td); err != nil {
			return nil, fmt.Errorf("failed to decode task %s: %w", doc.Ref.ID, err)
		}

		tasks = append(tasks, Task{ID: doc.Ref.ID, Title: td.Title, Date: td.Date})
	}

	return tasks, nil
}

func (s *FirestoreStore) NewsExists(ctx context.Context, id string) (bool, error) {
	_, err := s.client.Collection(CollectionNews).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check news %s: %w", id, err)
	}
	return true, nil
}

func (s *FirestoreStore) NewBatch() Batch {
	return &firestoreBatch{client: s.client}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

type firestoreBatch struct {
	staged
	client *firestore.Client
}

func (b *firestoreBatch) Commit(ctx context.Context) ([]string, error) {
	if b.Len() > MaxBatchWrites {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, b.Len(), MaxBatchWrites)
	}

	wb := b.client.Batch()
	ids := make([]string, 0, b.Len())

	for _, n := range b.notifications {
		ref := b.client.Collection(CollectionNotifications).NewDoc()
		wb.Create(ref, notificationDocument{
			Type:   n.Type,
			Title:  n.Title,
			Body:   n.Body,
			ReadBy: n.ReadBy,
		})
		ids = append(ids, ref.ID)
	}

	for _, n := range b.news {
		ref := b.client.Collection(CollectionNews).Doc(n.ID)
		wb.Create(ref, newsDocument{
			Title:       n.Title,
			Link:        n.Link,
			Date:        n.Date,
			Description: n.Description,
			Img:         n.Img,
			Source:      n.Source,
		})
		ids = append(ids, ref.ID)
	}

	if _, err := wb.Commit(ctx); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, fmt.Errorf("failed to commit batch: %w: %v", ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	return ids, nil
}
