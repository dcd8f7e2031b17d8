package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/domain/query"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskService provides task management operations
type TaskService interface {
	// CreateTask creates a task with server-assigned ID and timestamps.
	CreateTask(ctx context.Context, params domain.CreateTaskParams) (*domain.Task, error)

	// ListTasks returns one page of the tasks matching filter, ordered and
	// windowed by page. Zero values in page take their defaults.
	ListTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.TaskPage, error)

	// GetTask retrieves a task by its ID.
	// Returns an error wrapping store.ErrTaskNotFound if it does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateTask applies the non-nil fields of params and refreshes updatedAt.
	// Returns an error wrapping store.ErrTaskNotFound if the task does not exist,
	// or ErrEmptyUpdate if params sets no field.
	UpdateTask(ctx context.Context, id uuid.UUID, params domain.UpdateTaskParams) (*domain.Task, error)

	// DeleteTask removes a task.
	// Returns an error wrapping store.ErrTaskNotFound if it does not exist.
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// GetStats counts all tasks by status and priority.
	GetStats(ctx context.Context) (*domain.TaskStats, error)
}

// Option configures a task service.
type Option func(*taskServiceImpl)

// WithClock overrides the time source used for task timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks   store.TaskStore
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		tasks:   tasks,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	params domain.CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(params, s.now())
	if err != nil {
		log.Debug("rejected invalid task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		log.Error("failed to store task",
			redact.ErrorAttr(err),
			slog.String("task_id", task.ID.String()))
		return nil, NewTaskServiceError("create_task", "failed to store task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))

	s.emit(ctx, events.TaskCreated, task.ID, task)

	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	filter domain.TaskFilter,
	page domain.PageRequest,
) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	all, err := s.tasks.List(ctx)
	if err != nil {
		log.Error("failed to list tasks", redact.ErrorAttr(err))
		return nil, NewTaskServiceError("list_tasks", "failed to read tasks", err)
	}

	result := query.Run(all, filter, page)

	log.Debug("listed tasks",
		slog.Int("total", result.Pagination.Total),
		slog.Int("page", result.Pagination.Page),
		slog.Int("returned", len(result.Data)))

	return &result, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, NewTaskServiceError("get_task", "task not found", err)
		}
		log.Error("failed to retrieve task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}

	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	params domain.UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.IsEmpty() {
		return nil, NewTaskServiceError("update_task", "nothing to update", ErrEmptyUpdate)
	}

	// The read-modify-write runs inside the store's lock, so concurrent
	// updates and deletes never interleave with it.
	var applyErr error
	updated, err := s.tasks.Update(ctx, id, func(current *domain.Task) (*domain.Task, error) {
		next, err := current.ApplyUpdate(params, s.now())
		applyErr = err
		return next, err
	})
	if err != nil {
		switch {
		case applyErr != nil:
			log.Debug("rejected invalid update",
				slog.String("task_id", id.String()),
				slog.String("error", applyErr.Error()))
			return nil, NewTaskServiceError("update_task", "invalid update", applyErr)
		case errors.Is(err, store.ErrTaskNotFound):
			log.Debug("task not found for update", slog.String("task_id", id.String()))
			return nil, NewTaskServiceError("update_task", "task not found", err)
		}
		log.Error("failed to update task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("status", string(updated.Status)))

	s.emit(ctx, events.TaskUpdated, updated.ID, updated)

	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Remove(ctx, id); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for deletion", slog.String("task_id", id.String()))
			return NewTaskServiceError("delete_task", "task not found", err)
		}
		log.Error("failed to delete task",
			redact.ErrorAttr(err),
			slog.String("task_id", id.String()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.String("task_id", id.String()))

	s.emit(ctx, events.TaskDeleted, id, nil)

	return nil
}

// GetStats implements TaskService.GetStats
func (s *taskServiceImpl) GetStats(ctx context.Context) (*domain.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	all, err := s.tasks.List(ctx)
	if err != nil {
		log.Error("failed to read tasks for stats", redact.ErrorAttr(err))
		return nil, NewTaskServiceError("get_stats", "failed to read tasks", err)
	}

	stats := query.Summarize(all)
	return &stats, nil
}

// emit publishes a lifecycle event. The mutation has already happened, so
// failures are logged and never returned.
func (s *taskServiceImpl) emit(ctx context.Context, eventType string, taskID uuid.UUID, payload interface{}) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, taskID, payload)
	if err != nil {
		log.Error("failed to build task event",
			slog.String("event_type", eventType),
			slog.String("task_id", taskID.String()),
			redact.ErrorAttr(err))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task event handler failed",
			slog.String("event_type", eventType),
			slog.String("task_id", taskID.String()),
			redact.ErrorAttr(err))
	}
}
