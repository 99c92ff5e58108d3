package booking

import (
	"context"
	"time"

	bookingRepo "keja/database/repository/booking"
	commissionRepo "keja/database/repository/commission"
	propertyRepo "keja/database/repository/property"
	"keja/models"
	"keja/services/notification"
	"keja/services/payment"
	"keja/services/subscription"

	"go.uber.org/zap"
)

// Decision values accepted by Decide.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// CreateBookingRequest carries a tenant's inquiry submission.
type CreateBookingRequest struct {
	PropertyID      string  `json:"propertyId"`
	UserName        string  `json:"userName"`
	UserEmail       string  `json:"userEmail"`
	Phone           string  `json:"phone"`
	MoveInDate      string  `json:"moveInDate"` // YYYY-MM-DD
	LeaseDuration   int     `json:"leaseDuration,omitempty"`
	SecurityDeposit float64 `json:"securityDeposit,omitempty"`
}

// TaskQueue enqueues background work triggered by lifecycle transitions.
// The asynq-backed implementation lives in the cron package.
type TaskQueue interface {
	EnqueuePaymentInitiation(ctx context.Context, bookingID string) error
}

// BookingService orchestrates the booking-to-payment lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]models.Booking, error)
	ListByTenantEmail(ctx context.Context, email string) ([]models.Booking, error)

	// Decide applies the owning landlord's approve/reject decision. A second
	// decision attempt fails with InvalidStateError; approval triggers
	// payment collection that must not be duplicated.
	Decide(ctx context.Context, bookingID, decision, actorLandlordID string) (*models.Booking, error)

	// CancelBooking is the tenant-initiated cleanup of a still-pending inquiry.
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)

	// InitiatePayment opens a fresh gateway session for the booking's first
	// month's rent. Reinvoking it after a failure reuses the same booking.
	InitiatePayment(ctx context.Context, bookingID, phoneOverride string) (*models.STKPushResult, error)

	// ReconcilePayment applies a payment outcome. Reconciling an already
	// settled booking is an idempotent no-op; gateway callbacks are
	// at-least-once.
	ReconcilePayment(ctx context.Context, bookingID, outcome, transactionRef string) (*models.Booking, error)

	// ReconcileCallback maps an asynchronous gateway callback payload onto
	// ReconcilePayment.
	ReconcileCallback(ctx context.Context, payload *models.STKCallbackPayload) (*models.Booking, error)

	// WaitForPayment polls the booking's payment status at a fixed interval,
	// bounded by maxAttempts. Exhaustion surfaces PaymentTimeoutError without
	// mutating the booking.
	WaitForPayment(ctx context.Context, bookingID string, interval time.Duration, maxAttempts int) (*models.Booking, error)

	// SweepStalePayments queries the gateway for bookings whose payment has
	// been pending longer than the cutoff and reconciles terminal outcomes.
	SweepStalePayments(ctx context.Context, olderThan time.Time) error
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo            bookingRepo.BookingRepository
	PropertyRepo    propertyRepo.PropertyRepository
	CommissionRepo  commissionRepo.CommissionRepository
	SubscriptionSvc subscription.SubscriptionService
	Gateway         payment.Gateway
	Notifier        notification.Emitter
	Queue           TaskQueue
	Logger          *zap.Logger
}
