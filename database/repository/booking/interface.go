package bookingRepo

import (
	"context"
	"errors"
	"time"

	"keja/models"
)

// ErrNoMatch is returned by conditional updates when no document matched the
// guard filter, meaning the booking was already transitioned by another writer.
var ErrNoMatch = errors.New("no booking matched the conditional filter")

// BookingRepository defines the interface for booking data access.
//
// The conditional update methods take the lifecycle state the caller observed;
// the storage layer only applies the mutation if that state still holds. This
// serializes decide/reconcile races on the same booking without process locks.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Booking, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.Booking, error)
	ListByTenantEmail(ctx context.Context, email string) ([]models.Booking, error)
	ListStalePayments(ctx context.Context, olderThan time.Time) ([]models.Booking, error)

	// UpdateStatusIf sets the lifecycle status (and the given extra fields)
	// only if the booking's status still equals fromStatus.
	UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, fields map[string]interface{}) error

	// UpdatePaymentStatusIf sets the payment status (and the given extra
	// fields) only if the booking's payment status still equals fromStatus.
	UpdatePaymentStatusIf(ctx context.Context, id, fromStatus, toStatus string, fields map[string]interface{}) error

	// SetPaymentSession records the gateway correlation id and payment method
	// for the current payment attempt.
	SetPaymentSession(ctx context.Context, id, checkoutRequestID, method string) error

	Delete(ctx context.Context, id string) error
}
