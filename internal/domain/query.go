package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortField names a task attribute a listing can be ordered by.
type SortField string

// Supported sort fields
const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByTitle     SortField = "title"
)

// SortOrder is the direction of a listing.
type SortOrder string

// Supported sort orders
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilter narrows which tasks a listing returns. Every non-empty field
// must match (logical AND). Nil or empty fields impose no constraint.
type TaskFilter struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	AssigneeID *uuid.UUID
	ProjectID  *uuid.UUID
	// Tags matches a task sharing at least one tag with this list.
	Tags []string
	// DueBefore and DueAfter are inclusive. Tasks without a due date
	// never satisfy either bound.
	DueBefore *time.Time
	DueAfter  *time.Time
}

// PageRequest selects the ordering and window of a listing.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize fills zero values with defaults and caps the limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.SortBy == "" {
		p.SortBy = SortByCreatedAt
	}
	if p.SortOrder == "" {
		p.SortOrder = SortDesc
	}
	return p
}

// Pagination describes the window returned by a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TaskPage is one page of a filtered, sorted listing.
type TaskPage struct {
	Data       []*Task    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// TaskStats aggregates task counts. Every enumerated status and priority
// is present as a key, including those with a zero count.
type TaskStats struct {
	Total      int                  `json:"total"`
	ByStatus   map[TaskStatus]int   `json:"byStatus"`
	ByPriority map[TaskPriority]int `json:"byPriority"`
}
