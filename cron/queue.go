package cron

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypePaymentInitiate = "payment:initiate"

type paymentInitiatePayload struct {
	BookingID string `json:"bookingId"`
}

// TaskClient enqueues lifecycle background work. Implements
// booking.TaskQueue.
type TaskClient struct {
	Client *asynq.Client
}

// EnqueuePaymentInitiation schedules an STK push for an approved booking so
// the landlord's request never blocks on the gateway.
func (c *TaskClient) EnqueuePaymentInitiation(ctx context.Context, bookingID string) error {
	payload, err := json.Marshal(paymentInitiatePayload{BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("failed to marshal payment initiation task: %w", err)
	}
	task := asynq.NewTask(TypePaymentInitiate, payload)
	if _, err := c.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue payment initiation: %w", err)
	}
	return nil
}
