package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskStore implements the store.TaskStore interface with an ordered
// slice guarded by a single RWMutex. Writers take the exclusive lock, so
// a List snapshot never observes a half-applied mutation.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  []*domain.Task
	index  map[uuid.UUID]int
	logger *slog.Logger
}

// NewTaskStore creates an empty in-memory TaskStore.
// If logger is nil, a default logger will be used.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		tasks:  make([]*domain.Task, 0),
		index:  make(map[uuid.UUID]int),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Insert implements store.TaskStore.Insert
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return store.NewStoreError("task", "insert", "context done", err)
	}
	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "insert", "invalid task", joinInvalid(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[task.ID]; exists {
		s.logger.Warn("rejected duplicate task id", slog.String("task_id", task.ID.String()))
		return store.ErrTaskExists
	}

	s.index[task.ID] = len(s.tasks)
	s.tasks = append(s.tasks, task.Clone())

	s.logger.Debug("task inserted",
		slog.String("task_id", task.ID.String()),
		slog.Int("task_count", len(s.tasks)))
	return nil
}

// Get implements store.TaskStore.Get
func (s *TaskStore) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.NewStoreError("task", "get", "context done", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return s.tasks[i].Clone(), nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*domain.Task) (*domain.Task, error),
) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.NewStoreError("task", "update", "context done", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}

	updated, err := mutate(s.tasks[i].Clone())
	if err != nil {
		return nil, err
	}
	if updated == nil || updated.ID != id {
		return nil, store.NewStoreError("task", "update", "task ID changed", store.ErrInvalidEntity)
	}
	if err := updated.Validate(); err != nil {
		return nil, store.NewStoreError("task", "update", "invalid task", joinInvalid(err))
	}
	s.tasks[i] = updated.Clone()

	s.logger.Debug("task updated", slog.String("task_id", id.String()))
	return updated, nil
}

// Remove implements store.TaskStore.Remove
func (s *TaskStore) Remove(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return store.NewStoreError("task", "remove", "context done", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return store.ErrTaskNotFound
	}

	copy(s.tasks[i:], s.tasks[i+1:])
	s.tasks[len(s.tasks)-1] = nil
	s.tasks = s.tasks[:len(s.tasks)-1]

	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}

	s.logger.Debug("task removed",
		slog.String("task_id", id.String()),
		slog.Int("task_count", len(s.tasks)))
	return nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "context done", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

// joinInvalid tags a validation failure with store.ErrInvalidEntity while
// keeping the domain error reachable through errors.Is.
func joinInvalid(err error) error {
	return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
}
