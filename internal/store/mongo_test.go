package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// lastCommand returns the body of the most recent command sent by mt's client.
func lastCommand(mt *mtest.T) bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	if evt == nil {
		mt.Fatal("no command was sent")
	}
	return evt.Command
}

func assertOwnerFilter(mt *mtest.T, filter bson.RawValue, userID string) {
	mt.Helper()
	doc, ok := filter.DocumentOK()
	if !ok {
		mt.Fatalf("filter is %s, want a document", filter.Type)
	}
	if got := doc.Lookup("user_id").StringValue(); got != userID {
		mt.Fatalf("filter user_id = %q, want %q", got, userID)
	}
	if got := doc.Lookup("_id").StringValue(); got != taskID {
		mt.Fatalf("filter _id = %q, want %q", got, taskID)
	}
}

func TestMongoStore_ForeignOwnerIsNotFound(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("get", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "todo.tasks", mtest.FirstBatch))

		if _, err := s.GetTask(ctx, foreignID, taskID); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
		assertOwnerFilter(mt, lastCommand(mt).Lookup("filter"), foreignID)
	})

	mt.Run("update", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		title := "hijacked"
		if _, err := s.UpdateTask(ctx, foreignID, taskID, models.TaskPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
		assertOwnerFilter(mt, lastCommand(mt).Lookup("query"), foreignID)
	})

	mt.Run("toggle", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if _, err := s.ToggleTask(ctx, foreignID, taskID); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
		assertOwnerFilter(mt, lastCommand(mt).Lookup("query"), foreignID)
	})

	mt.Run("delete", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		if err := s.DeleteTask(ctx, foreignID, taskID); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("err = %v, want ErrNotFound", err)
		}
		assertOwnerFilter(mt, lastCommand(mt).Lookup("deletes", "0", "q"), foreignID)
	})
}

func TestMongoStore_DeleteTwice(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("second delete", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		if err := s.DeleteTask(context.Background(), ownerID, taskID); err != nil {
			mt.Fatalf("first delete: %v", err)
		}
		if err := s.DeleteTask(context.Background(), ownerID, taskID); !errors.Is(err, ErrNotFound) {
			mt.Fatalf("second delete err = %v, want ErrNotFound", err)
		}
	})
}

func TestMongoStore_ToggleIsServerSide(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("pipeline", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: taskID},
			{Key: "user_id", Value: ownerID},
			{Key: "title", Value: "Buy milk"},
			{Key: "completed", Value: true},
		}}))

		got, err := s.ToggleTask(context.Background(), ownerID, taskID)
		if err != nil {
			mt.Fatalf("toggle: %v", err)
		}
		if !got.Completed || got.ID != taskID {
			mt.Fatalf("unexpected task: %+v", got)
		}

		cmd := lastCommand(mt)
		stage, ok := cmd.Lookup("update", "0", "$set").DocumentOK()
		if !ok {
			mt.Fatalf("update is not a pipeline: %s", cmd)
		}
		if not := stage.Lookup("completed", "$not"); not.Type != bson.TypeArray {
			mt.Fatalf("completed is not negated in place: %s", stage)
		}
		if at := stage.Lookup("updated_at").StringValue(); at != "$$NOW" {
			mt.Fatalf("updated_at = %q, want $$NOW", at)
		}
		if !cmd.Lookup("new").Boolean() {
			mt.Fatal("toggle must return the updated document")
		}
	})
}

func TestMongoStore_UpdateSetsOnlyGivenFields(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("title only", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: taskID},
			{Key: "user_id", Value: ownerID},
			{Key: "title", Value: "renamed"},
		}}))

		title := "renamed"
		if _, err := s.UpdateTask(context.Background(), ownerID, taskID, models.TaskPatch{Title: &title}); err != nil {
			mt.Fatalf("update: %v", err)
		}

		set, ok := lastCommand(mt).Lookup("update", "$set").DocumentOK()
		if !ok {
			mt.Fatal("update has no $set")
		}
		if got := set.Lookup("title").StringValue(); got != "renamed" {
			mt.Fatalf("title = %q", got)
		}
		if got := set.Lookup("updated_at").Time(); !got.Equal(now) {
			mt.Fatalf("updated_at = %s, want %s", got, now)
		}
		for _, key := range []string{"description", "scheduled_date", "completed"} {
			if _, err := set.LookupErr(key); err == nil {
				mt.Fatalf("$set touches %s", key)
			}
		}
	})
}

func TestMongoStore_CreateAssignsIDAndTimestamps(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("insert", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task := &models.Task{UserID: ownerID, Title: "Buy milk", Completed: true}
		if err := s.CreateTask(context.Background(), task); err != nil {
			mt.Fatalf("create: %v", err)
		}
		if _, err := uuid.Parse(task.ID); err != nil {
			mt.Fatalf("id %q is not a UUID", task.ID)
		}
		if task.Completed || !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(now) {
			mt.Fatalf("unexpected task: %+v", task)
		}
		if got := lastCommand(mt).Lookup("documents", "0", "user_id").StringValue(); got != ownerID {
			mt.Fatalf("inserted user_id = %q", got)
		}
	})
}
