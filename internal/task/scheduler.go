package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic revaluation sweep. The sweep is the safety
// net behind the trade-driven triggers: even if every trigger is dropped,
// market values converge on the next scheduled pass.
type Scheduler struct {
	cron    *cron.Cron
	trigger *Trigger
	logger  *slog.Logger
}

// NewScheduler creates a scheduler that fires the trigger on the given
// cron schedule (standard five-field syntax).
func NewScheduler(schedule string, trigger *Trigger, logger *slog.Logger) (*Scheduler, error) {
	if trigger == nil {
		return nil, errors.New("trigger cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:    cron.New(),
		trigger: trigger,
		logger:  logger.With(slog.String("component", "revaluation_scheduler")),
	}

	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins the scheduled sweeps in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("revaluation sweep scheduled")
}

// Stop stops the scheduler and waits for any running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	if err := s.trigger.TriggerRevaluation(context.Background()); err != nil {
		s.logger.Error("scheduled revaluation sweep failed", "error", err)
	}
}
