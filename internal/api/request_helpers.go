package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
//
// Parameters:
//   - r: The HTTP request
//   - paramName: The name of the path parameter to extract
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.UUID{}, error): A zero UUID and appropriate error if parameter is missing or invalid
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "must be a valid UUID", domain.ErrInvalidID)
	}

	return id, nil
}

// parseListQuery reads the listing query string. Numbers that do not parse
// are reported as field errors; everything else is left to the validator.
func parseListQuery(values url.Values) (ListTasksQuery, []shared.FieldError) {
	var problems []shared.FieldError

	q := ListTasksQuery{
		SortBy:     values.Get("sortBy"),
		SortOrder:  values.Get("sortOrder"),
		Status:     values.Get("status"),
		Priority:   values.Get("priority"),
		AssigneeID: values.Get("assigneeId"),
		ProjectID:  values.Get("projectId"),
		Tags:       splitTags(values["tags"]),
		DueBefore:  values.Get("dueBefore"),
		DueAfter:   values.Get("dueAfter"),
	}

	for _, field := range []struct {
		name string
		dst  **int
	}{
		{"page", &q.Page},
		{"limit", &q.Limit},
	} {
		raw := values.Get(field.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, shared.FieldError{
				Field:   field.name,
				Message: field.name + " must be an integer",
			})
			continue
		}
		*field.dst = &n
	}

	return q, problems
}

// splitTags accepts repeated tags parameters and comma-separated lists.
// Blank entries are dropped.
func splitTags(raw []string) []string {
	var tags []string
	for _, value := range raw {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// toDomain converts a validated query into a filter and page request.
// Validation guarantees the IDs and dates parse.
func (q ListTasksQuery) toDomain() (domain.TaskFilter, domain.PageRequest) {
	var filter domain.TaskFilter

	if q.Status != "" {
		status := domain.TaskStatus(q.Status)
		filter.Status = &status
	}
	if q.Priority != "" {
		priority := domain.TaskPriority(q.Priority)
		filter.Priority = &priority
	}
	if id, err := uuid.Parse(q.AssigneeID); err == nil {
		filter.AssigneeID = &id
	}
	if id, err := uuid.Parse(q.ProjectID); err == nil {
		filter.ProjectID = &id
	}
	filter.Tags = q.Tags
	if t, err := shared.ParseISODate(q.DueBefore); err == nil {
		filter.DueBefore = &t
	}
	if t, err := shared.ParseISODate(q.DueAfter); err == nil {
		filter.DueAfter = &t
	}

	page := domain.PageRequest{
		SortBy:    domain.SortField(q.SortBy),
		SortOrder: domain.SortOrder(q.SortOrder),
	}
	if q.Page != nil {
		page.Page = *q.Page
	}
	if q.Limit != nil {
		page.Limit = *q.Limit
	}

	return filter, page.Normalize()
}
