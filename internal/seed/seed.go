package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a seed fixture.
type File struct {
	Tasks []TaskSpec `yaml:"tasks"`
}

// TaskSpec is one task in a seed fixture. Omitted status and priority take
// the usual defaults.
type TaskSpec struct {
	Title       string     `yaml:"title"`
	Description *string    `yaml:"description"`
	Status      string     `yaml:"status"`
	Priority    string     `yaml:"priority"`
	AssigneeID  *string    `yaml:"assigneeId"`
	ProjectID   *string    `yaml:"projectId"`
	DueDate     *time.Time `yaml:"dueDate"`
	Tags        []string   `yaml:"tags"`
}

// TaskCreator creates tasks. service.TaskService satisfies it.
type TaskCreator interface {
	CreateTask(ctx context.Context, params domain.CreateTaskParams) (*domain.Task, error)
}

// LoadFile reads and parses the fixture at path.
func LoadFile(path string) ([]domain.CreateTaskParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse decodes a fixture. Unknown keys are rejected so typos surface early.
// An empty document yields no tasks.
func Parse(r io.Reader) ([]domain.CreateTaskParams, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	params := make([]domain.CreateTaskParams, 0, len(file.Tasks))
	for i, spec := range file.Tasks {
		p, err := spec.toParams()
		if err != nil {
			return nil, fmt.Errorf("seed task %d (%q): %w", i, spec.Title, err)
		}
		params = append(params, p)
	}

	return params, nil
}

func (s TaskSpec) toParams() (domain.CreateTaskParams, error) {
	p := domain.CreateTaskParams{
		Title:       s.Title,
		Description: s.Description,
		Status:      domain.TaskStatus(s.Status),
		Priority:    domain.TaskPriority(s.Priority),
		DueDate:     s.DueDate,
		Tags:        s.Tags,
	}

	var err error
	if p.AssigneeID, err = parseID("assigneeId", s.AssigneeID); err != nil {
		return p, err
	}
	if p.ProjectID, err = parseID("projectId", s.ProjectID); err != nil {
		return p, err
	}

	return p, nil
}

func parseID(field string, value *string) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a valid UUID", domain.ErrInvalidID)
	}
	return &id, nil
}

// Apply creates every task in order and returns how many were created.
// It stops at the first failure.
func Apply(ctx context.Context, creator TaskCreator, params []domain.CreateTaskParams, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "seed"))

	for i, p := range params {
		task, err := creator.CreateTask(ctx, p)
		if err != nil {
			return i, fmt.Errorf("seeding task %d (%q): %w", i, p.Title, err)
		}
		log.Debug("seeded task", slog.String("task_id", task.ID.String()), slog.String("title", task.Title))
	}

	log.Info("seed complete", slog.Int("task_count", len(params)))
	return len(params), nil
}
