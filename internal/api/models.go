package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Title       string   `json:"title"                 validate:"required,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      string   `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress in_review done cancelled"`
	Priority    string   `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *string  `json:"assigneeId,omitempty"  validate:"omitempty,uuid"`
	ProjectID   *string  `json:"projectId,omitempty"   validate:"omitempty,uuid"`
	DueDate     *string  `json:"dueDate,omitempty"     validate:"omitempty,isodate"`
	Tags        []string `json:"tags,omitempty"        validate:"omitempty,max=10,dive,max=50"`
}

// UpdateTaskRequest defines the payload for the task update endpoint.
// Absent fields are left unchanged; at least one field must be present.
type UpdateTaskRequest struct {
	Title       *string   `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      *string   `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress in_review done cancelled"`
	Priority    *string   `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *string   `json:"assigneeId,omitempty"  validate:"omitempty,uuid"`
	ProjectID   *string   `json:"projectId,omitempty"   validate:"omitempty,uuid"`
	DueDate     *string   `json:"dueDate,omitempty"     validate:"omitempty,isodate"`
	Tags        *[]string `json:"tags,omitempty"        validate:"omitempty,max=10,dive,max=50"`
}

// IsEmpty reports whether the request sets no field.
func (r UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil && r.Priority == nil &&
		r.AssigneeID == nil && r.ProjectID == nil && r.DueDate == nil && r.Tags == nil
}

// ListTasksQuery holds the raw query parameters of the listing endpoint.
// Nil numeric fields were not supplied.
type ListTasksQuery struct {
	Page       *int     `json:"page"       validate:"omitempty,min=1"`
	Limit      *int     `json:"limit"      validate:"omitempty,min=1,max=100"`
	SortBy     string   `json:"sortBy"     validate:"omitempty,oneof=createdAt updatedAt dueDate priority title"`
	SortOrder  string   `json:"sortOrder"  validate:"omitempty,oneof=asc desc"`
	Status     string   `json:"status"     validate:"omitempty,oneof=todo in_progress in_review done cancelled"`
	Priority   string   `json:"priority"   validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID string   `json:"assigneeId" validate:"omitempty,uuid"`
	ProjectID  string   `json:"projectId"  validate:"omitempty,uuid"`
	Tags       []string `json:"tags"       validate:"omitempty,dive,max=50"`
	DueBefore  string   `json:"dueBefore"  validate:"omitempty,isodate"`
	DueAfter   string   `json:"dueAfter"   validate:"omitempty,isodate"`
}

// TaskResponse is the wire representation of a task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assigneeId,omitempty"`
	ProjectID   *string    `json:"projectId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskListResponse is one page of a task listing.
type TaskListResponse struct {
	Data       []TaskResponse    `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// StatsResponse holds task counts by status and priority.
type StatsResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
}

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Version     string  `json:"version"`
	Environment string  `json:"environment"`
}

// toParams converts a validated create request into domain parameters.
func (r CreateTaskRequest) toParams() (domain.CreateTaskParams, error) {
	params := domain.CreateTaskParams{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		Tags:        r.Tags,
	}

	var err error
	if params.AssigneeID, err = parseOptionalUUID("assigneeId", r.AssigneeID); err != nil {
		return params, err
	}
	if params.ProjectID, err = parseOptionalUUID("projectId", r.ProjectID); err != nil {
		return params, err
	}
	if params.DueDate, err = parseOptionalDate("dueDate", r.DueDate); err != nil {
		return params, err
	}

	return params, nil
}

// toParams converts a validated update request into domain parameters.
func (r UpdateTaskRequest) toParams() (domain.UpdateTaskParams, error) {
	params := domain.UpdateTaskParams{
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
	}
	if r.Status != nil {
		status := domain.TaskStatus(*r.Status)
		params.Status = &status
	}
	if r.Priority != nil {
		priority := domain.TaskPriority(*r.Priority)
		params.Priority = &priority
	}

	var err error
	if params.AssigneeID, err = parseOptionalUUID("assigneeId", r.AssigneeID); err != nil {
		return params, err
	}
	if params.ProjectID, err = parseOptionalUUID("projectId", r.ProjectID); err != nil {
		return params, err
	}
	if params.DueDate, err = parseOptionalDate("dueDate", r.DueDate); err != nil {
		return params, err
	}

	return params, nil
}

func parseOptionalUUID(field string, value *string) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a valid UUID", domain.ErrInvalidID)
	}
	return &id, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := shared.ParseISODate(*value)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be an ISO-8601 date", domain.ErrInvalidFormat)
	}
	return &t, nil
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Tags:        task.Tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if task.AssigneeID != nil {
		s := task.AssigneeID.String()
		resp.AssigneeID = &s
	}
	if task.ProjectID != nil {
		s := task.ProjectID.String()
		resp.ProjectID = &s
	}
	return resp
}

// pageToResponse converts a domain.TaskPage to a TaskListResponse
func pageToResponse(page *domain.TaskPage) TaskListResponse {
	data := make([]TaskResponse, 0, len(page.Data))
	for _, task := range page.Data {
		data = append(data, taskToResponse(task))
	}
	return TaskListResponse{Data: data, Pagination: page.Pagination}
}

// statsToResponse converts domain.TaskStats to a StatsResponse
func statsToResponse(stats *domain.TaskStats) StatsResponse {
	resp := StatsResponse{
		Total:      stats.Total,
		ByStatus:   make(map[string]int, len(stats.ByStatus)),
		ByPriority: make(map[string]int, len(stats.ByPriority)),
	}
	for status, n := range stats.ByStatus {
		resp.ByStatus[string(status)] = n
	}
	for priority, n := range stats.ByPriority {
		resp.ByPriority[string(priority)] = n
	}
	return resp
}
