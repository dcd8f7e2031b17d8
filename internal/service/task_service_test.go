package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/memory"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	current := epoch
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(t *testing.T) (TaskService, *recordingEmitter) {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	emitter := &recordingEmitter{}

	svc, err := NewTaskService(memory.NewTaskStore(log), emitter, log, WithClock(steppingClock()))
	require.NoError(t, err)
	return svc, emitter
}

func strPtr(s string) *string { return &s }

func TestNewTaskService(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	tasks := memory.NewTaskStore(log)
	emitter := &recordingEmitter{}

	svc, err := NewTaskService(nil, emitter, log)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "tasks")

	svc, err = NewTaskService(tasks, nil, log)
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "emitter")

	svc, err = NewTaskService(tasks, emitter, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, emitter := newTestService(t)
	ctx := context.Background()
	project := uuid.New()

	created, err := svc.CreateTask(ctx, domain.CreateTaskParams{
		Title:       "Implement authentication system",
		Description: strPtr("JWT-based login"),
		Status:      domain.TaskStatusInProgress,
		Priority:    domain.TaskPriorityUrgent,
		ProjectID:   &project,
		Tags:        []string{"backend", "security"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, epoch.Add(time.Second), created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := svc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.TaskCreated, emitter.events[0].Type)
	assert.Equal(t, created.ID, emitter.events[0].TaskID)

	var payload domain.Task
	require.NoError(t, emitter.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, "Implement authentication system", payload.Title)
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	task, err := svc.CreateTask(context.Background(), domain.CreateTaskParams{Title: "Write unit tests"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.NotNil(t, task.Tags)
	assert.Empty(t, task.Tags)
}

func TestCreateTaskInvalid(t *testing.T) {
	svc, emitter := newTestService(t)

	_, err := svc.CreateTask(context.Background(), domain.CreateTaskParams{Title: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)

	var svcErr *TaskServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_task", svcErr.Operation)
	assert.Empty(t, emitter.events)
}

func TestGetTaskNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateTaskPartial(t *testing.T) {
	svc, emitter := newTestService(t)
	ctx := context.Background()
	due := epoch.Add(72 * time.Hour)

	created, err := svc.CreateTask(ctx, domain.CreateTaskParams{
		Title:    "Deploy to staging environment",
		Priority: domain.TaskPriorityLow,
		DueDate:  &due,
		Tags:     []string{"devops"},
	})
	require.NoError(t, err)

	done := domain.TaskStatusDone
	updated, err := svc.UpdateTask(ctx, created.ID, domain.UpdateTaskParams{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusDone, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.True(t, created.DueDate.Equal(*updated.DueDate))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := svc.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	assert.Equal(t, []string{events.TaskCreated, events.TaskUpdated}, emitter.types())
}

func TestUpdateTaskErrors(t *testing.T) {
	svc, emitter := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, domain.CreateTaskParams{Title: "Code review"})
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		title := "x"
		_, err := svc.UpdateTask(ctx, uuid.New(), domain.UpdateTaskParams{Title: &title})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := svc.UpdateTask(ctx, created.ID, domain.UpdateTaskParams{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("invalid field", func(t *testing.T) {
		blank := "  "
		_, err := svc.UpdateTask(ctx, created.ID, domain.UpdateTaskParams{Title: &blank})
		assert.ErrorIs(t, err, domain.ErrValidation)

		got, getErr := svc.GetTask(ctx, created.ID)
		require.NoError(t, getErr)
		assert.Equal(t, "Code review", got.Title, "rejected update must not be stored")
	})

	assert.Equal(t, []string{events.TaskCreated}, emitter.types())
}

func TestDeleteTaskVisibility(t *testing.T) {
	svc, emitter := newTestService(t)
	ctx := context.Background()

	keep, err := svc.CreateTask(ctx, domain.CreateTaskParams{Title: "keep"})
	require.NoError(t, err)
	gone, err := svc.CreateTask(ctx, domain.CreateTaskParams{Title: "gone", Tags: []string{"tmp"}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, gone.ID))

	_, err = svc.GetTask(ctx, gone.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	page, err := svc.ListTasks(ctx, domain.TaskFilter{}, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, keep.ID, page.Data[0].ID)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	err = svc.DeleteTask(ctx, gone.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	require.Len(t, emitter.events, 3)
	last := emitter.events[2]
	assert.Equal(t, events.TaskDeleted, last.Type)
	assert.Equal(t, gone.ID, last.TaskID)
	assert.Empty(t, last.Payload)
}

func TestListTasksPipeline(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, p := range []domain.CreateTaskParams{
		{Title: "Design user interface mockups", Priority: domain.TaskPriorityHigh, Tags: []string{"design", "ui-ux"}},
		{Title: "Implement authentication system", Priority: domain.TaskPriorityUrgent, Tags: []string{"backend", "security"}},
		{Title: "Write unit tests", Priority: domain.TaskPriorityMedium, Tags: []string{"testing", "backend"}},
		{Title: "Deploy to staging environment", Priority: domain.TaskPriorityLow, Tags: []string{"devops"}},
	} {
		_, err := svc.CreateTask(ctx, p)
		require.NoError(t, err)
	}

	page, err := svc.ListTasks(ctx, domain.TaskFilter{Tags: []string{"backend", "design"}}, domain.PageRequest{
		Limit:     2,
		SortBy:    domain.SortByPriority,
		SortOrder: domain.SortDesc,
	})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	assert.Equal(t, "Implement authentication system", page.Data[0].Title)
	assert.Equal(t, "Design user interface mockups", page.Data[1].Title)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, page.Pagination)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 4, stats.ByStatus[domain.TaskStatusTodo])
	assert.Equal(t, 1, stats.ByPriority[domain.TaskPriorityUrgent])
	assert.Equal(t, 0, stats.ByStatus[domain.TaskStatusDone])
}

func TestEmitFailureDoesNotFailMutation(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	emitter := &recordingEmitter{err: errors.New("handler exploded")}

	svc, err := NewTaskService(memory.NewTaskStore(log), emitter, log)
	require.NoError(t, err)

	task, err := svc.CreateTask(context.Background(), domain.CreateTaskParams{Title: "resilient"})
	require.NoError(t, err)
	assert.NotNil(t, task)

	logger.AssertLogContains(t, buf, "task event handler failed")
	logger.AssertLogField(t, buf, "event_type", events.TaskCreated)
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	storeErr := store.NewStoreError("task", "list", "context done", context.Canceled)

	mockStore := new(MockTaskStore)
	mockStore.On("List", mock.Anything).Return(nil, storeErr)
	mockStore.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(store.ErrTaskExists)

	svc, err := NewTaskService(mockStore, &recordingEmitter{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.ListTasks(ctx, domain.TaskFilter{}, domain.PageRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	var svcErr *TaskServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "list_tasks", svcErr.Operation)

	_, err = svc.GetStats(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.CreateTask(ctx, domain.CreateTaskParams{Title: "dup"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	mockStore.AssertExpectations(t)
}

func TestUpdateTaskStoreFailures(t *testing.T) {
	existing, err := domain.NewTask(domain.CreateTaskParams{Title: "racing"}, epoch)
	require.NoError(t, err)
	missing := uuid.New()
	broken := uuid.New()

	mockStore := new(MockTaskStore)
	mockStore.On("Update", mock.Anything, existing.ID).Return(existing, nil)
	mockStore.On("Update", mock.Anything, missing).Return(nil, store.ErrTaskNotFound)
	mockStore.On("Update", mock.Anything, broken).
		Return(nil, store.NewStoreError("task", "update", "context done", context.DeadlineExceeded))

	emitter := &recordingEmitter{}
	svc, err := NewTaskService(mockStore, emitter, nil, WithClock(steppingClock()))
	require.NoError(t, err)
	ctx := context.Background()
	title := "renamed"

	// Deleted before the update ran.
	_, err = svc.UpdateTask(ctx, missing, domain.UpdateTaskParams{Title: &title})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.UpdateTask(ctx, broken, domain.UpdateTaskParams{Title: &title})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var svcErr *TaskServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "failed to update task", svcErr.Message)

	invalid := domain.TaskPriority("critical")
	_, err = svc.UpdateTask(ctx, existing.ID, domain.UpdateTaskParams{Priority: &invalid})
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "invalid update", svcErr.Message)

	updated, err := svc.UpdateTask(ctx, existing.ID, domain.UpdateTaskParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	assert.Equal(t, []string{events.TaskUpdated}, emitter.types())
	mockStore.AssertExpectations(t)
}

// slowStore widens the read-modify-write window of every update.
type slowStore struct {
	store.TaskStore
}

func (s slowStore) Update(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*domain.Task) (*domain.Task, error),
) (*domain.Task, error) {
	return s.TaskStore.Update(ctx, id, func(current *domain.Task) (*domain.Task, error) {
		time.Sleep(time.Millisecond)
		return mutate(current)
	})
}

func TestConcurrentPartialUpdatesKeepBothChanges(t *testing.T) {
	log, _ := logger.GetTestLogger(t)
	svc, err := NewTaskService(slowStore{memory.NewTaskStore(log)}, &recordingEmitter{}, log)
	require.NoError(t, err)
	ctx := context.Background()

	const rounds = 20
	title := "renamed"
	done := domain.TaskStatusDone

	for i := 0; i < rounds; i++ {
		task, err := svc.CreateTask(ctx, domain.CreateTaskParams{Title: "original"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, params := range []domain.UpdateTaskParams{{Title: &title}, {Status: &done}} {
			wg.Add(1)
			go func(params domain.UpdateTaskParams) {
				defer wg.Done()
				if _, err := svc.UpdateTask(ctx, task.ID, params); err != nil {
					t.Error(err)
				}
			}(params)
		}
		wg.Wait()

		got, err := svc.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title, "round %d", i)
		assert.Equal(t, domain.TaskStatusDone, got.Status, "round %d", i)
	}
}

func TestTaskServiceError(t *testing.T) {
	err := NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound)
	assert.Equal(t, "task service get_task failed: task not found: entity not found: task", err.Error())
	assert.ErrorIs(t, err, store.ErrNotFound)

	bare := NewTaskServiceError("update_task", "nothing to update", nil)
	assert.Equal(t, "task service update_task failed: nothing to update", bare.Error())
}
