package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"rideshare/internal/config"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// Worker consumes payout release tasks. Held payouts are enqueued with a
// delay equal to the review window, so by the time a task runs the payout
// is due unless an admin already released it.
type Worker struct {
	srv        *asynq.Server
	mux        *asynq.ServeMux
	settlement *service.SettlementService
	logger     *zap.Logger
}

// New creates a worker bound to the payout queue.
func New(cfg config.RedisConfig, settlement *service.SettlementService, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.WorkerDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	w := &Worker{
		srv:        srv,
		settlement: settlement,
		logger:     logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePayoutRelease, w.handlePayoutRelease)
	w.mux = mux

	return w
}

// Start runs the worker loop in the background.
func (w *Worker) Start() error {
	return w.srv.Start(w.mux)
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

func (w *Worker) handlePayoutRelease(ctx context.Context, task *asynq.Task) error {
	var p PayoutReleasePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		w.logger.Error("invalid payout release payload", zap.Error(err))
		return err
	}

	payout, err := w.settlement.ReleasePayout(ctx, p.PayoutID)
	switch {
	case err == nil:
		w.logger.Info("payout released",
			zap.String("payout_id", payout.ID),
			zap.String("driver_id", payout.DriverID),
			zap.Float64("amount", payout.Amount))
		return nil
	case errors.Is(err, service.ErrPayoutAlreadySent):
		// An admin released it during the review window.
		w.logger.Info("payout already sent", zap.String("payout_id", p.PayoutID))
		return nil
	case errors.Is(err, repository.ErrNotFound):
		// Retrying cannot make the row appear.
		w.logger.Warn("payout not found", zap.String("payout_id", p.PayoutID))
		return nil
	default:
		w.logger.Error("payout release failed",
			zap.String("payout_id", p.PayoutID),
			zap.Error(err))
		return err
	}
}
