package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	TaskStorePostgres = "postgres"
	TaskStoreMongo    = "mongo"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string   `env:"PORT" env-default:"8080"`
	DatabaseURL string   `env:"DATABASE_URL" env-required:"true"`
	AuthSecret  string   `env:"BETTER_AUTH_SECRET" env-required:"true"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`

	// TaskStore selects where tasks live: "postgres" or "mongo".
	// Users always live in Postgres.
	TaskStore string `env:"TASK_STORE" env-default:"postgres"`
	MongoURI  string `env:"MONGO_URI" env-default:""`
	MongoDB   string `env:"MONGO_DB" env-default:"todo"`

	// Empty RedisAddr disables the task list cache.
	RedisAddr     string        `env:"REDIS_ADDR" env-default:""`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"60s"`
}

// Load reads the environment into a Config and checks the combinations
// cleanenv tags cannot express.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return fmt.Errorf("BETTER_AUTH_SECRET must not be blank")
	}
	switch c.TaskStore {
	case TaskStorePostgres:
	case TaskStoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when TASK_STORE=%s", TaskStoreMongo)
		}
	default:
		return fmt.Errorf("TASK_STORE must be %q or %q, got %q", TaskStorePostgres, TaskStoreMongo, c.TaskStore)
	}
	if c.RedisAddr != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
