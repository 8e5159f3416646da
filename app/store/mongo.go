package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTask struct {
	ID    interface{} `bson:"_id"`
	Title string      `bson:"title"`
	Date  string      `bson:"date"`
}

type mongoNotification struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	Title     string    `bson:"title"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"createdAt"`
	ReadBy    []string  `bson:"readBy"`
}

type mongoNews struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Link        string    `bson:"link"`
	Date        string    `bson:"date"`
	Description string    `bson:"description"`
	Img         string    `bson:"img"`
	Source      string    `bson:"source"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// MongoStore needs a replica set (or sharded cluster) because batches commit in a transaction.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database)}
	s.ensureIndexes(ctx)

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.db.Collection(CollectionTasks).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
	})
	if err != nil {
		slog.Warn("Failed to create tasks index", "error", err)
	}
}

func (s *MongoStore) TasksDueOn(ctx context.Context, date string) ([]Task, error) {
	cursor, err := s.db.Collection(CollectionTasks).Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks due on %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var tasks []Task
	for cursor.Next(ctx) {
		var mt mongoTask
		if err := cursor.Decode(&mt); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, Task{ID: mongoID(mt.ID), Title: mt.Title, Date: mt.Date})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

func (s *MongoStore) NewsExists(ctx context.Context, id string) (bool, error) {
	count, err := s.db.Collection(CollectionNews).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check news %s: %w", id, err)
	}
	return count > 0, nil
}

func (s *MongoStore) NewBatch() Batch {
	return &mongoBatch{store: s}
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

type mongoBatch struct {
	staged
	store *MongoStore
}

func (b *mongoBatch) Commit(ctx context.Context) ([]string, error) {
	now := time.Now().UTC()
	ids := make([]string, 0, b.Len())

	notifications := make([]interface{}, 0, len(b.notifications))
	for _, n := range b.notifications {
		id := uuid.NewString()
		notifications = append(notifications, mongoNotification{
			ID: id, Type: n.Type, Title: n.Title, Body: n.Body, CreatedAt: now, ReadBy: n.ReadBy,
		})
		ids = append(ids, id)
	}

	news := make([]interface{}, 0, len(b.news))
	for _, n := range b.news {
		news = append(news, mongoNews{
			ID: n.ID, Title: n.Title, Link: n.Link, Date: n.Date,
			Description: n.Description, Img: n.Img, Source: n.Source, CreatedAt: now,
		})
		ids = append(ids, n.ID)
	}

	session, err := b.store.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return err
		}

		if err := b.insert(sc, CollectionNotifications, notifications); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}
		if err := b.insert(sc, CollectionNews, news); err != nil {
			_ = session.AbortTransaction(sc)
			return err
		}

		return session.CommitTransaction(sc)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to commit batch: %w: %v", ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	return ids, nil
}

func (b *mongoBatch) insert(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := b.store.db.Collection(collection).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func mongoID(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
