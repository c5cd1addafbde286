package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fantacard/market-api/internal/service/valuation"
)

// Revaluer recomputes market values for the whole card population.
// Satisfied by the valuation engine.
type Revaluer interface {
	Revalue(ctx context.Context) error
}

// RevaluationTask runs one full revaluation pass.
type RevaluationTask struct {
	id       uuid.UUID
	revaluer Revaluer
	logger   *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*RevaluationTask)(nil)

// NewRevaluationTask creates a revaluation task.
func NewRevaluationTask(revaluer Revaluer, logger *slog.Logger) (*RevaluationTask, error) {
	if revaluer == nil {
		return nil, errors.New("revaluer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RevaluationTask{
		id:       uuid.New(),
		revaluer: revaluer,
		logger:   logger.With(slog.String("component", "revaluation_task")),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *RevaluationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *RevaluationTask) Type() string {
	return TaskTypeRevaluation
}

// Status returns the current task status
func (t *RevaluationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *RevaluationTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Execute runs the revaluation. A degenerate card population is not a
// failure: the model simply declines to update and the previous values
// stay in place.
func (t *RevaluationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	err := t.revaluer.Revalue(ctx)
	if errors.Is(err, valuation.ErrUnavailable) {
		t.logger.Warn("revaluation skipped, card population does not support a fit",
			slog.String("task_id", t.id.String()))
		t.setStatus(TaskStatusCompleted)
		return nil
	}
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return err
	}

	t.setStatus(TaskStatusCompleted)
	return nil
}
