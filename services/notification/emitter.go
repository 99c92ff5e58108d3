package notification

import (
	"context"
	"encoding/json"
	"time"

	"keja/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotifyDispatch is the asynq task type for queued notification events.
const TypeNotifyDispatch = "notify:dispatch"

// DefaultEmitter queues lifecycle events onto the background worker. Enqueue
// failures are logged and dropped; notification delivery never blocks a
// booking transition.
type DefaultEmitter struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// Emit enqueues a structured event for dispatch.
func (e *DefaultEmitter) Emit(ctx context.Context, eventType, recipient string, data map[string]string) {
	event := models.NotificationEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Recipient: recipient,
		Data:      data,
		CreatedAt: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.Logger.Error("failed to marshal notification event",
			zap.String("type", eventType), zap.Error(err))
		return
	}

	task := asynq.NewTask(TypeNotifyDispatch, payload)
	if _, err := e.Client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		e.Logger.Error("failed to enqueue notification event",
			zap.String("type", eventType), zap.String("recipient", recipient), zap.Error(err))
		return
	}

	e.Logger.Debug("notification event queued",
		zap.String("type", eventType), zap.String("recipient", recipient))
}

// NopEmitter discards events. Used in tests and tooling.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, eventType, recipient string, data map[string]string) {}
