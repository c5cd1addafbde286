package task

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fantacard/market-api/internal/service/trade"
)

// Trigger enqueues revaluation tasks on demand. It is handed to the
// services that mutate the card population so every trade and
// registration is followed by a model refresh.
type Trigger struct {
	runner   *TaskRunner
	revaluer Revaluer
	logger   *slog.Logger
}

var _ trade.RevaluationTrigger = (*Trigger)(nil)

// NewTrigger creates a revaluation trigger backed by the runner.
func NewTrigger(runner *TaskRunner, revaluer Revaluer, logger *slog.Logger) (*Trigger, error) {
	if runner == nil {
		return nil, errors.New("runner cannot be nil")
	}
	if revaluer == nil {
		return nil, errors.New("revaluer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Trigger{
		runner:   runner,
		revaluer: revaluer,
		logger:   logger.With(slog.String("component", "revaluation_trigger")),
	}, nil
}

// TriggerRevaluation submits a revaluation task for background execution.
// A full queue is tolerable: queued tasks already cover the same work and
// the periodic sweep recomputes everything regardless.
func (t *Trigger) TriggerRevaluation(ctx context.Context) error {
	revalTask, err := NewRevaluationTask(t.revaluer, t.logger)
	if err != nil {
		return err
	}

	if err := t.runner.Submit(ctx, revalTask); err != nil {
		if errors.Is(err, ErrQueueFull) {
			t.logger.Debug("revaluation queue full, relying on queued work")
			return nil
		}
		return err
	}
	return nil
}
