package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"rideshare/internal/service"
)

// Scheduler enqueues deferred payout releases onto the task queue.
type Scheduler struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(client *asynq.Client, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		client: client,
		logger: logger,
	}
}

// SchedulePayoutRelease enqueues a task that releases the payout after the
// given delay.
func (s *Scheduler) SchedulePayoutRelease(ctx context.Context, payoutID string, delay time.Duration) error {
	task, err := NewPayoutReleaseTask(payoutID)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	s.logger.Info("payout release scheduled",
		zap.String("payout_id", payoutID),
		zap.String("task_id", info.ID),
		zap.Duration("delay", delay))

	return nil
}

// Ensure Scheduler implements service.PayoutScheduler
var _ service.PayoutScheduler = (*Scheduler)(nil)
