package models

import "time"

// Notification event types emitted by the booking lifecycle.
const (
	EventNewBooking       = "new-booking"
	EventBookingApproved  = "booking-approved"
	EventBookingRejected  = "booking-rejected"
	EventBookingCancelled = "booking-cancelled"
	EventPaymentConfirmed = "payment-confirmed"
	EventPaymentFailed    = "payment-failed"
)

// NotificationEvent is a structured event handed to the notification emitter.
// Delivery mechanics (email, push) are downstream concerns; the lifecycle
// only records what happened and to whom.
type NotificationEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Recipient string            `json:"recipient"` // landlord ID or tenant email
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}
