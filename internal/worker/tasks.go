package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TypePayoutRelease is the task type for releasing a held payout once its
// review window elapses.
const TypePayoutRelease = "payout:release"

// PayoutReleasePayload is the payload of a payout release task.
type PayoutReleasePayload struct {
	PayoutID string `json:"payout_id"`
}

// NewPayoutReleaseTask creates a payout release task.
func NewPayoutReleaseTask(payoutID string) (*asynq.Task, error) {
	b, err := json.Marshal(PayoutReleasePayload{PayoutID: payoutID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePayoutRelease, b), nil
}
