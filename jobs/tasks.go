// Package jobs wires background task types to the Asynq queue.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bizledger/bizledger/internal/jobs"
	"github.com/bizledger/bizledger/internal/ledger"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerRecompute rebalances one party's ledger stream.
	TaskLedgerRecompute = "ledger:recompute"
)

// LedgerRecomputePayload identifies the party whose stream needs rebalancing.
type LedgerRecomputePayload struct {
	PartyID int64 `json:"party_id"`
}

// NewLedgerRecomputeTask constructs an Asynq task.
func NewLedgerRecomputeTask(payload LedgerRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerRecompute, data), nil
}

// NewLedgerRecomputeHandler builds the handler processing TaskLedgerRecompute
// tasks. A malformed payload skips retry; a recompute error is retried by
// the queue.
func NewLedgerRecomputeHandler(svc *ledger.Service, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerRecomputePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskLedgerRecompute)
		err := svc.Recompute(ctx, payload.PartyID)
		if err != nil {
			logger.Error("ledger recompute job",
				slog.Int64("party_id", payload.PartyID),
				slog.Any("error", err))
		}
		return tracker.End(err)
	}
}
