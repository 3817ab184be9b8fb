package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/auth"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/httpx"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/models"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/store"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/validate"
)

// Store defines the interface for task persistence. Every method is scoped
// to userID; a task owned by someone else is reported as store.ErrNotFound.
type Store interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (*models.Task, error)
	ToggleTask(ctx context.Context, userID, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// Handler holds task HTTP handlers. Routes are expected behind
// middleware.RequireAuth and middleware.RequireOwner.
type Handler struct {
	tasks Store
}

func NewHandler(tasks Store) *Handler {
	return &Handler{tasks: tasks}
}

// List returns all tasks of the caller, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.tasks.ListTasks(r.Context(), id.UserID)
	if err != nil {
		httpx.Internal(w, "list tasks", err)
		return
	}
	out := make([]models.TaskResponse, len(list))
	for i := range list {
		out[i] = list[i].Response()
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Create adds a task owned by the caller. The path owner is never used
// as the new row's user_id.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Invalid(w, map[string]string{"body": err.Error()})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if fields := validate.Struct(req); fields != nil {
		httpx.Invalid(w, fields)
		return
	}
	scheduled, err := parseDate(req.ScheduledDate)
	if err != nil {
		httpx.Invalid(w, map[string]string{"scheduled_date": err.Error()})
		return
	}

	t := &models.Task{
		UserID:        id.UserID,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: scheduled,
	}
	if err := h.tasks.CreateTask(r.Context(), t); err != nil {
		httpx.Internal(w, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t.Response())
}

// Get returns a single task.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := target(w, r)
	if !ok {
		return
	}
	t, err := h.tasks.GetTask(r.Context(), id.UserID, taskID)
	if err != nil {
		storeError(w, "get task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t.Response())
}

// Update replaces the title, description and scheduled date of a task.
// Absent fields keep their value; completion is left alone.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := target(w, r)
	if !ok {
		return
	}
	var req models.UpdateTaskRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Invalid(w, map[string]string{"body": err.Error()})
		return
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			httpx.Invalid(w, map[string]string{"title": "must not be empty"})
			return
		}
		req.Title = &trimmed
	}
	if fields := validate.Struct(req); fields != nil {
		httpx.Invalid(w, fields)
		return
	}
	scheduled, err := parseDate(req.ScheduledDate)
	if err != nil {
		httpx.Invalid(w, map[string]string{"scheduled_date": err.Error()})
		return
	}

	t, err := h.tasks.UpdateTask(r.Context(), id.UserID, taskID, models.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: scheduled,
	})
	if err != nil {
		storeError(w, "update task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t.Response())
}

// Delete removes a task. Deleting it again yields 404.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := target(w, r)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(r.Context(), id.UserID, taskID); err != nil {
		storeError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleComplete flips the completed flag.
func (h *Handler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := target(w, r)
	if !ok {
		return
	}
	t, err := h.tasks.ToggleTask(r.Context(), id.UserID, taskID)
	if err != nil {
		storeError(w, "toggle task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t.Response())
}

func caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
		return auth.Identity{}, false
	}
	return id, true
}

// target resolves the caller and the {id} path parameter. An id that is not
// a UUID cannot name a task, so it is answered like a missing one.
func target(w http.ResponseWriter, r *http.Request) (auth.Identity, string, bool) {
	id, ok := caller(w, r)
	if !ok {
		return auth.Identity{}, "", false
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "task not found")
		return auth.Identity{}, "", false
	}
	return id, taskID.String(), true
}

func storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "task not found")
		return
	}
	httpx.Internal(w, op, err)
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, *s)
	if err != nil {
		return nil, errors.New("must be a date in 2006-01-02 format")
	}
	return &d, nil
}
