package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Implementations hold tasks in insertion order, which is the natural
// order used when a listing does not request a sort.
//
// Every method returns copies; callers never share memory with the store.
type TaskStore interface {
	// Insert appends a task to the store.
	// Returns ErrTaskExists if a task with the same ID is already stored.
	// Returns ErrInvalidEntity if the task fails domain validation.
	Insert(ctx context.Context, task *domain.Task) error

	// Get retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update applies mutate to the stored task with the given ID and stores
	// the result in place, atomically with respect to every other call.
	// mutate receives a copy; an error from it is returned unchanged and
	// leaves the stored task untouched.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns ErrInvalidEntity if the result fails domain validation or
	// changes the task ID.
	Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Task) (*domain.Task, error)) (*domain.Task, error)

	// Remove deletes a task by ID, preserving the relative order of the rest.
	// Returns ErrTaskNotFound if the task does not exist.
	Remove(ctx context.Context, id uuid.UUID) error

	// List returns a consistent snapshot of every task in insertion order.
	// No mutation is ever half-visible in the result.
	List(ctx context.Context) ([]*domain.Task, error)
}
