// Package query implements the task listing pipeline: filter, then sort,
// then paginate. Every function here is pure and never mutates its input.
package query

import (
	"sort"
	"strings"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// Run filters, sorts and paginates tasks. The input slice is left untouched;
// Total and TotalPages reflect the filtered set before pagination.
func Run(tasks []*domain.Task, filter domain.TaskFilter, page domain.PageRequest) domain.TaskPage {
	page = page.Normalize()

	matched := Filter(tasks, filter)
	Sort(matched, page.SortBy, page.SortOrder)

	return Paginate(matched, page.Page, page.Limit)
}

// Filter returns the tasks satisfying every criterion of f, in input order.
func Filter(tasks []*domain.Task, f domain.TaskFilter) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t satisfies every supplied criterion of f.
func Matches(t *domain.Task, f domain.TaskFilter) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(t, f.Tags) {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
		return false
	}
	if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
		return false
	}
	return true
}

func hasAnyTag(t *domain.Task, tags []string) bool {
	for _, tag := range tags {
		if t.HasTag(tag) {
			return true
		}
	}
	return false
}

// Sort orders tasks in place by field and order. The sort is stable, so
// tasks with equal keys keep their relative order. Tasks without a due date
// go last when sorting by due date, whichever the direction.
func Sort(tasks []*domain.Task, field domain.SortField, order domain.SortOrder) {
	desc := order == domain.SortDesc
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		if field == domain.SortByDueDate && (a.DueDate == nil || b.DueDate == nil) {
			return a.DueDate != nil && b.DueDate == nil
		}

		c := compare(a, b, field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compare returns -1, 0 or 1 as a sorts before, with or after b in
// ascending order of field.
func compare(a, b *domain.Task, field domain.SortField) int {
	switch field {
	case domain.SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case domain.SortByPriority:
		return compareInts(a.Priority.Rank(), b.Priority.Rank())
	case domain.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case domain.SortByDueDate:
		return a.DueDate.Compare(*b.DueDate)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Paginate slices out page number page of size limit. A page past the end,
// however large, yields an empty, non-nil Data slice with the same totals.
func Paginate(tasks []*domain.Task, page, limit int) domain.TaskPage {
	total := len(tasks)
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	// Compare in page units first so (page-1)*limit cannot overflow.
	start := total
	if page < 1 {
		start = 0
	} else if page-1 < totalPages {
		start = (page - 1) * limit
	}
	end := start
	if limit > 0 {
		end = start + min(limit, total-start)
	}

	data := make([]*domain.Task, end-start)
	copy(data, tasks[start:end])

	return domain.TaskPage{
		Data: data,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// Summarize counts tasks overall and per status and priority. Every
// enumerated value is present in the maps, zero or not.
func Summarize(tasks []*domain.Task) domain.TaskStats {
	stats := domain.TaskStats{
		Total:      len(tasks),
		ByStatus:   make(map[domain.TaskStatus]int, len(domain.TaskStatuses)),
		ByPriority: make(map[domain.TaskPriority]int, len(domain.TaskPriorities)),
	}
	for _, s := range domain.TaskStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range domain.TaskPriorities {
		stats.ByPriority[p] = 0
	}

	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}

	return stats
}
