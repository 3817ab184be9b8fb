package models

import "time"

// DateLayout is the wire format of Task.ScheduledDate.
const DateLayout = "2006-01-02"

// Task is a single todo item. It is stored in PostgreSQL or MongoDB
// depending on TASK_STORE.
type Task struct {
	ID            string     `json:"id"             bson:"_id"`
	UserID        string     `json:"user_id"        bson:"user_id"`
	Title         string     `json:"title"          bson:"title"`
	Description   *string    `json:"description"    bson:"description"`
	ScheduledDate *time.Time `json:"scheduled_date" bson:"scheduled_date"`
	Completed     bool       `json:"completed"      bson:"completed"`
	CreatedAt     time.Time  `json:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"     bson:"updated_at"`
}

// TaskPatch carries the fields of an update. Nil means "leave unchanged".
type TaskPatch struct {
	Title         *string
	Description   *string
	ScheduledDate *time.Time
}

// CreateTaskRequest is the JSON body for POST /{owner}/tasks.
type CreateTaskRequest struct {
	Title         string  `json:"title"          validate:"required,max=500"`
	Description   *string `json:"description"`
	ScheduledDate *string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest is the JSON body for PUT /{owner}/tasks/{id}.
type UpdateTaskRequest struct {
	Title         *string `json:"title"          validate:"omitempty,max=500"`
	Description   *string `json:"description"`
	ScheduledDate *string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
}

// TaskResponse is the wire shape of a Task.
type TaskResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	ScheduledDate *string   `json:"scheduled_date"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Response converts t to its wire shape.
func (t *Task) Response() TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ScheduledDate != nil {
		d := t.ScheduledDate.Format(DateLayout)
		resp.ScheduledDate = &d
	}
	return resp
}
