package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents where a task sits on the board.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
	TaskStatusCancelled,
}

// TaskPriority represents how urgent a task is.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TaskPriorities lists every priority from lowest to highest rank.
var TaskPriorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityUrgent,
}

// Task validation errors
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidPriority  = errors.New("invalid task priority")
	ErrInvalidTimestamp = errors.New("task updated_at cannot precede created_at")
)

// IsValid reports whether s is one of the enumerated statuses.
func (s TaskStatus) IsValid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsValid reports whether p is one of the enumerated priorities.
func (p TaskPriority) IsValid() bool {
	return p.Rank() > 0
}

// Rank returns the ordinal used when sorting by priority:
// low=1, medium=2, high=3, urgent=4. Unknown priorities rank 0.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityHigh:
		return 3
	case TaskPriorityUrgent:
		return 4
	default:
		return 0
	}
}

// Task is a unit of work tracked on the board.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  *uuid.UUID   `json:"assigneeId,omitempty"`
	ProjectID   *uuid.UUID   `json:"projectId,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Tags        []string     `json:"tags"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CreateTaskParams carries the caller-supplied fields for a new task.
// Zero Status and Priority fall back to todo and medium.
type CreateTaskParams struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  *uuid.UUID
	ProjectID   *uuid.UUID
	DueDate     *time.Time
	Tags        []string
}

// UpdateTaskParams describes a partial update. Nil fields are left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeID  *uuid.UUID
	ProjectID   *uuid.UUID
	DueDate     *time.Time
	Tags        *[]string
}

// IsEmpty reports whether the update would change nothing.
func (p UpdateTaskParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.AssigneeID == nil && p.ProjectID == nil &&
		p.DueDate == nil && p.Tags == nil
}

// NewTask builds a Task from params, assigning a fresh ID and setting both
// timestamps to now. Returns an error if validation fails.
func NewTask(params CreateTaskParams, now time.Time) (*Task, error) {
	status := params.Status
	if status == "" {
		status = TaskStatusTodo
	}
	priority := params.Priority
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now = now.UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       params.Title,
		Description: cloneString(params.Description),
		Status:      status,
		Priority:    priority,
		AssigneeID:  cloneUUID(params.AssigneeID),
		ProjectID:   cloneUUID(params.ProjectID),
		DueDate:     cloneTime(params.DueDate),
		Tags:        cloneTags(params.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyTaskID)
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTaskTitle)
	}

	if !t.Status.IsValid() {
		return NewValidationError("status", "is not a known status", ErrInvalidStatus)
	}

	if !t.Priority.IsValid() {
		return NewValidationError("priority", "is not a known priority", ErrInvalidPriority)
	}

	if t.UpdatedAt.Before(t.CreatedAt) {
		return NewValidationError("updatedAt", "cannot precede createdAt", ErrInvalidTimestamp)
	}

	return nil
}

// ApplyUpdate returns a copy of the task with the non-nil fields of params
// merged in and UpdatedAt set to now. ID and CreatedAt are never touched.
// The receiver is left unmodified; the copy is validated before returning.
func (t *Task) ApplyUpdate(params UpdateTaskParams, now time.Time) (*Task, error) {
	updated := t.Clone()

	if params.Title != nil {
		updated.Title = *params.Title
	}
	if params.Description != nil {
		updated.Description = cloneString(params.Description)
	}
	if params.Status != nil {
		updated.Status = *params.Status
	}
	if params.Priority != nil {
		updated.Priority = *params.Priority
	}
	if params.AssigneeID != nil {
		updated.AssigneeID = cloneUUID(params.AssigneeID)
	}
	if params.ProjectID != nil {
		updated.ProjectID = cloneUUID(params.ProjectID)
	}
	if params.DueDate != nil {
		updated.DueDate = cloneTime(params.DueDate)
	}
	if params.Tags != nil {
		updated.Tags = cloneTags(*params.Tags)
	}

	now = now.UTC()
	// Clock skew must not break updatedAt >= createdAt.
	if now.Before(updated.CreatedAt) {
		now = updated.CreatedAt
	}
	updated.UpdatedAt = now

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	return updated, nil
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Description = cloneString(t.Description)
	c.AssigneeID = cloneUUID(t.AssigneeID)
	c.ProjectID = cloneUUID(t.ProjectID)
	c.DueDate = cloneTime(t.DueDate)
	c.Tags = cloneTags(t.Tags)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := ts.UTC()
	return &v
}

// cloneTags always returns a non-nil slice so tasks serialize tags as [].
func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
