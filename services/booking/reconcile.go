package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "keja/database/repository/booking"
	"keja/models"
	"keja/services/commission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcilePayment applies a payment outcome to a booking. Settled bookings
// are returned unchanged: gateway callbacks are untrusted, at-least-once
// external events, so a duplicate delivery must be a no-op. This is the
// deliberate asymmetry with Decide's strictness.
func (s *DefaultBookingService) ReconcilePayment(ctx context.Context, bookingID, outcome, transactionRef string) (*models.Booking, error) {
	if outcome != models.PaymentStatusPaid && outcome != models.PaymentStatusFailed {
		return nil, ValidationError{Field: "outcome", Reason: "must be paid or failed"}
	}

	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentSettled() {
		s.Logger.Info("duplicate payment reconciliation ignored",
			zap.String("bookingID", bookingID),
			zap.String("paymentStatus", b.PaymentStatus),
			zap.String("outcome", outcome))
		return b, nil
	}

	now := time.Now()
	fields := map[string]interface{}{}
	if outcome == models.PaymentStatusPaid {
		fields["paid_at"] = now
		fields["transaction_id"] = transactionRef
	}

	err = s.Repo.UpdatePaymentStatusIf(ctx, bookingID, models.PaymentStatusPending, outcome, fields)
	if errors.Is(err, bookingRepo.ErrNoMatch) {
		// A concurrent reconciliation won; treat like a duplicate delivery.
		s.Logger.Info("payment already reconciled concurrently", zap.String("bookingID", bookingID))
		return s.GetBooking(ctx, bookingID)
	}
	if err != nil {
		return nil, err
	}

	if outcome == models.PaymentStatusPaid {
		s.recordCollection(ctx, b, transactionRef, now)
		s.Notifier.Emit(ctx, models.EventPaymentConfirmed, b.UserEmail, map[string]string{
			"bookingId":     bookingID,
			"transactionId": transactionRef,
		})
	} else {
		s.Notifier.Emit(ctx, models.EventPaymentFailed, b.UserEmail, map[string]string{
			"bookingId": bookingID,
		})
	}

	return s.GetBooking(ctx, bookingID)
}

// recordCollection writes the commission ledger entry and bumps the
// property's analytics counters. Both are downstream of the payment fact and
// must not undo it, so failures are logged and swallowed.
func (s *DefaultBookingService) recordCollection(ctx context.Context, b *models.Booking, transactionRef string, paidAt time.Time) {
	entry := &models.Commission{
		ID:          uuid.New().String(),
		BookingID:   b.ID,
		LandlordID:  b.LandlordID,
		Amount:      b.CommissionAmount,
		Rate:        b.CommissionRate,
		Plan:        commission.PlanForRate(b.CommissionRate),
		Status:      models.CommissionStatusCollected,
		CollectedAt: &paidAt,
		Month:       int(paidAt.Month()),
		Year:        paidAt.Year(),
		CreatedAt:   paidAt,
	}
	if err := s.CommissionRepo.Create(ctx, entry); err != nil {
		s.Logger.Error("failed to create commission ledger entry",
			zap.String("bookingID", b.ID), zap.Error(err))
	}

	if err := s.PropertyRepo.IncrementBookingStats(ctx, b.PropertyID, b.MonthlyRent); err != nil {
		s.Logger.Error("failed to increment property booking stats",
			zap.String("propertyID", b.PropertyID), zap.Error(err))
	}

	s.Logger.Info("payment collected",
		zap.String("bookingID", b.ID),
		zap.String("transactionID", transactionRef),
		zap.Float64("commission", b.CommissionAmount),
		zap.Float64("payout", b.LandlordPayout))
}

// ReconcileCallback maps the gateway's asynchronous result payload onto a
// reconciliation. Unknown sessions surface NotFoundError; the handler logs
// and acknowledges so the provider stops redelivering.
func (s *DefaultBookingService) ReconcileCallback(ctx context.Context, payload *models.STKCallbackPayload) (*models.Booking, error) {
	cb := payload.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return nil, ValidationError{Field: "CheckoutRequestID", Reason: "is required"}
	}

	b, err := s.Repo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		return nil, NotFoundError{Entity: "booking", ID: cb.CheckoutRequestID}
	}

	outcome := models.PaymentStatusFailed
	transactionRef := ""
	if cb.ResultCode == 0 {
		outcome = models.PaymentStatusPaid
		transactionRef = payload.ReceiptNumber()
		if transactionRef == "" {
			transactionRef = cb.CheckoutRequestID
		}
	} else {
		s.Logger.Info("gateway reported payment failure",
			zap.String("bookingID", b.ID),
			zap.Int("resultCode", cb.ResultCode),
			zap.String("resultDesc", cb.ResultDesc))
	}

	return s.ReconcilePayment(ctx, b.ID, outcome, transactionRef)
}
