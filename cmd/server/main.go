package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/auth"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/config"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/server"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/store"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/tasks"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, reading configuration from the environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── Task backend ─────────────────────────────────────────
	var taskStore store.TaskBackend = pgStore
	if cfg.TaskStore == config.TaskStoreMongo {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer mongoClient.Disconnect(ctx)
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
		taskStore = mongoStore
		log.Printf("tasks stored in mongo database %q", cfg.MongoDB)
	}

	// ── Redis ────────────────────────────────────────────────
	if cfg.CacheEnabled() {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		taskStore = store.NewCachedTaskStore(taskStore, rdb, cfg.CacheTTL)
		log.Printf("task list cache enabled (ttl %s)", cfg.CacheTTL)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.AuthSecret)
	router := server.NewRouter(server.Options{
		CORSOrigins: cfg.CORSOrigins,
		Auth:        auth.NewHandler(pgStore, tokens),
		Tasks:       tasks.NewHandler(taskStore),
		Tokens:      tokens,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Printf("Todo API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
