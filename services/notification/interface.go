package notification

import (
	"context"

	"keja/models"
)

// Emitter receives structured lifecycle events for downstream delivery
// (email, push). It is fire-and-forget from the lifecycle's perspective:
// failures are logged by implementations and never block a transition.
type Emitter interface {
	Emit(ctx context.Context, eventType, recipient string, data map[string]string)
}

// Dispatcher delivers a queued event to its transports. Implemented by the
// worker side of the default emitter.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.NotificationEvent) error
}
