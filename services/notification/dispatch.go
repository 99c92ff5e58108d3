package notification

import (
	"context"
	"fmt"

	"keja/models"
	"keja/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Human-readable titles per event type.
var eventTitles = map[string]string{
	models.EventNewBooking:       "New booking inquiry",
	models.EventBookingApproved:  "Your booking was approved",
	models.EventBookingRejected:  "Your booking was rejected",
	models.EventBookingCancelled: "A booking was cancelled",
	models.EventPaymentConfirmed: "Rent payment received",
	models.EventPaymentFailed:    "Rent payment failed",
}

// DefaultDispatcher delivers queued events. Push goes out via FCM when the
// recipient has a registered device token; email composition and sending is
// handled by the downstream mailer, which consumes the same queue.
type DefaultDispatcher struct {
	Cache  *redis.Client
	Logger *zap.Logger
}

// Dispatch delivers one event to its transports.
func (d *DefaultDispatcher) Dispatch(ctx context.Context, event models.NotificationEvent) error {
	title, ok := eventTitles[event.Type]
	if !ok {
		title = event.Type
	}

	d.Logger.Info("dispatching notification",
		zap.String("eventID", event.ID),
		zap.String("type", event.Type),
		zap.String("recipient", event.Recipient))

	if utils.FCMClient == nil {
		return nil
	}

	// Device tokens are registered by the client apps outside this service.
	token, err := d.Cache.Get(ctx, "fcm:"+event.Recipient).Result()
	if err == redis.Nil || token == "" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up device token: %w", err)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  bodyFor(event),
		},
		Data: event.Data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}

func bodyFor(event models.NotificationEvent) string {
	if id, ok := event.Data["bookingId"]; ok {
		return fmt.Sprintf("Booking %s", id)
	}
	return "Open the app for details."
}
