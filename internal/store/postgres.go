package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
)

// NewPostgresPool opens a pool and verifies the server answers.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore handles users and tasks against PostgreSQL.
type PostgresStore struct {
	pool DB
}

func NewPostgresStore(pool DB) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and tasks tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email         VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS tasks (
			id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title          VARCHAR(500) NOT NULL,
			description    TEXT,
			scheduled_date DATE,
			completed      BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_scheduled_date ON tasks (scheduled_date);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, email, password_hash, created_at`,
		email, passwordHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

const taskColumns = `id, user_id, title, description, scheduled_date, completed, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.ScheduledDate,
		&t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// one maps the no-rows case of a single-task statement to ErrNotFound.
func one(t *models.Task, err error, op string) (*models.Task, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s task: %w", op, err)
	}
	return t, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: scan: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, t *models.Task) error {
	created, err := scanTask(s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, scheduled_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, t.ScheduledDate,
	))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	*t = *created
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID))
	return one(t, err, "get")
}

func (s *PostgresStore) UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (*models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`UPDATE tasks SET
			title          = COALESCE($3, title),
			description    = COALESCE($4, description),
			scheduled_date = COALESCE($5, scheduled_date),
			updated_at     = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		id, userID, p.Title, p.Description, p.ScheduledDate,
	))
	return one(t, err, "update")
}

func (s *PostgresStore) ToggleTask(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx,
		`UPDATE tasks SET completed = NOT completed, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		id, userID,
	))
	return one(t, err, "toggle")
}

func (s *PostgresStore) DeleteTask(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
