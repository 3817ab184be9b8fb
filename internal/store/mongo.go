package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
)

// MongoStore keeps tasks in a MongoDB collection. Documents use the task's
// UUID string as _id so ids look the same as with the Postgres store.
type MongoStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("tasks"), now: time.Now}
}

// EnsureIndexes creates the user_id and scheduled_date indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "scheduled_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

func owned(userID, id string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

func (s *MongoStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return tasks, nil
}

func (s *MongoStore) CreateTask(ctx context.Context, t *models.Task) error {
	now := s.now().UTC().Truncate(time.Millisecond)
	t.ID = uuid.NewString()
	t.Completed = false
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (s *MongoStore) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	var t models.Task
	if err := s.col.FindOne(ctx, owned(userID, id)).Decode(&t); err != nil {
		return nil, notFound(err, "mongo find")
	}
	return &t, nil
}

func (s *MongoStore) UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (*models.Task, error) {
	set := bson.M{"updated_at": s.now().UTC().Truncate(time.Millisecond)}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ScheduledDate != nil {
		set["scheduled_date"] = *p.ScheduledDate
	}
	return s.findAndUpdate(ctx, userID, id, bson.M{"$set": set})
}

// ToggleTask flips completed with a pipeline update so the read and the
// write happen in one server-side operation.
func (s *MongoStore) ToggleTask(ctx context.Context, userID, id string) (*models.Task, error) {
	update := bson.A{bson.M{"$set": bson.M{
		"completed":  bson.M{"$not": bson.A{"$completed"}},
		"updated_at": "$$NOW",
	}}}
	return s.findAndUpdate(ctx, userID, id, update)
}

func (s *MongoStore) findAndUpdate(ctx context.Context, userID, id string, update any) (*models.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	if err := s.col.FindOneAndUpdate(ctx, owned(userID, id), update, opts).Decode(&t); err != nil {
		return nil, notFound(err, "mongo update")
	}
	return &t, nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.col.DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
