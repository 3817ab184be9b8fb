package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// TaskBackend is the task persistence the cache sits in front of.
// Both PostgresStore and MongoStore implement it.
type TaskBackend interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (*models.Task, error)
	ToggleTask(ctx context.Context, userID, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

const (
	taskListKeyPrefix = "tasks:list:"
	taskGenKeyPrefix  = "tasks:gen:"
)

func taskListKey(userID string) string {
	return taskListKeyPrefix + userID
}

// taskGenKey holds a per-user counter bumped by every write. A cached list
// is only served while its recorded generation matches the counter, so a
// fill that raced a write can never be read back.
func taskGenKey(userID string) string {
	return taskGenKeyPrefix + userID
}

type cachedList struct {
	Gen   int64         `json:"gen"`
	Tasks []models.Task `json:"tasks"`
}

// CachedTaskStore caches each user's task list in Redis and invalidates it
// on every write by that user. Redis failures are logged and fall through to
// the backend; they never fail a request.
type CachedTaskStore struct {
	next TaskBackend
	rdb  *redis.Client
	ttl  time.Duration
	sf   singleflight.Group
}

func NewCachedTaskStore(next TaskBackend, rdb *redis.Client, ttl time.Duration) *CachedTaskStore {
	return &CachedTaskStore{next: next, rdb: rdb, ttl: ttl}
}

func (c *CachedTaskStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	// Coalesced callers share one load; it must not die with the first caller.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do(userID, func() (interface{}, error) {
		gen, genOK := c.generation(shared, userID)
		if genOK {
			if tasks, ok := c.get(shared, userID, gen); ok {
				return tasks, nil
			}
		}
		tasks, err := c.next.ListTasks(shared, userID)
		if err != nil {
			return nil, err
		}
		if genOK {
			c.set(shared, userID, gen, tasks)
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Task), nil
}

func (c *CachedTaskStore) CreateTask(ctx context.Context, t *models.Task) error {
	if err := c.next.CreateTask(ctx, t); err != nil {
		return err
	}
	c.invalidate(ctx, t.UserID)
	return nil
}

func (c *CachedTaskStore) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	return c.next.GetTask(ctx, userID, id)
}

func (c *CachedTaskStore) UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (*models.Task, error) {
	t, err := c.next.UpdateTask(ctx, userID, id, p)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, userID)
	return t, nil
}

func (c *CachedTaskStore) ToggleTask(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := c.next.ToggleTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, userID)
	return t, nil
}

func (c *CachedTaskStore) DeleteTask(ctx context.Context, userID, id string) error {
	if err := c.next.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *CachedTaskStore) generation(ctx context.Context, userID string) (int64, bool) {
	gen, err := c.rdb.Get(ctx, taskGenKey(userID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		log.Printf("task cache generation %s: %v", userID, err)
		return 0, false
	}
	return gen, true
}

func (c *CachedTaskStore) get(ctx context.Context, userID string, gen int64) ([]models.Task, bool) {
	key := taskListKey(userID)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("task cache get %s: %v", key, err)
		}
		return nil, false
	}
	var entry cachedList
	if err := json.Unmarshal(b, &entry); err != nil {
		log.Printf("task cache decode %s: %v", key, err)
		return nil, false
	}
	if entry.Gen != gen {
		return nil, false
	}
	return entry.Tasks, true
}

func (c *CachedTaskStore) set(ctx context.Context, userID string, gen int64, tasks []models.Task) {
	key := taskListKey(userID)
	b, err := json.Marshal(cachedList{Gen: gen, Tasks: tasks})
	if err != nil {
		log.Printf("task cache encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		log.Printf("task cache set %s: %v", key, err)
	}
}

// invalidate bumps the generation before dropping the entry, so a fill
// that read the backend before this write is stored under a stale
// generation and ignored.
func (c *CachedTaskStore) invalidate(ctx context.Context, userID string) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, taskGenKey(userID))
		pipe.Del(ctx, taskListKey(userID))
		return nil
	})
	if err != nil {
		log.Printf("task cache invalidate %s: %v", userID, err)
	}
}
