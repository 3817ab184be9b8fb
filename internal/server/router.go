package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/auth"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/httpx"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/middleware"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/tasks"
)

const (
	serviceName = "todo-api"
	version     = "1.0.0"
)

// Options wires the router to its handlers.
type Options struct {
	CORSOrigins []string
	Auth        *auth.Handler
	Tasks       *tasks.Handler
	Tokens      middleware.Verifier
}

// NewRouter builds the HTTP surface: public auth and health routes plus the
// per-user task routes behind token and ownership checks.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
			"version": version,
		})
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"message": "Todo API",
			"version": version,
		})
	})

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", opts.Auth.Signup)
		r.Post("/login", opts.Auth.Login)
	})

	// Task routes (protected, owner only)
	r.Route("/{owner}/tasks", func(r chi.Router) {
		r.Use(middleware.RequireAuth(opts.Tokens))
		r.Use(middleware.RequireOwner("owner"))
		r.Get("/", opts.Tasks.List)
		r.Post("/", opts.Tasks.Create)
		r.Get("/{id}", opts.Tasks.Get)
		r.Put("/{id}", opts.Tasks.Update)
		r.Delete("/{id}", opts.Tasks.Delete)
		r.Patch("/{id}/complete", opts.Tasks.ToggleComplete)
	})

	return r
}
