package booking

import (
	"context"
	"time"

	"keja/models"
	"keja/services/payment"

	"go.uber.org/zap"
)

// InitiatePayment opens a fresh gateway session collecting the booking's
// first month's rent from the tenant's phone. A retry after a failed attempt
// reuses the same booking; only the gateway session is new.
func (s *DefaultBookingService) InitiatePayment(ctx context.Context, bookingID, phoneOverride string) (*models.STKPushResult, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingStatusConfirmed {
		return nil, InvalidStateError{BookingID: bookingID, State: b.Status, Op: "initiate payment for"}
	}
	if b.PaymentStatus == models.PaymentStatusPaid {
		return nil, InvalidStateError{BookingID: bookingID, State: b.PaymentStatus, Op: "initiate payment for"}
	}

	phone := b.Phone
	if phoneOverride != "" {
		if !payment.ValidPhone(phoneOverride) {
			return nil, ValidationError{Field: "phone", Reason: "must be a valid mobile number"}
		}
		phone = phoneOverride
	}

	result, err := s.Gateway.InitiatePayment(ctx, phone, b.MonthlyRent, b.ID)
	if err != nil {
		// Token or transport failure: surface to the caller, booking stays pending.
		return nil, err
	}
	if !result.Success {
		s.Logger.Warn("gateway rejected payment initiation",
			zap.String("bookingID", bookingID), zap.String("message", result.Message))
		return result, nil
	}

	// A previously failed attempt re-enters here with a fresh session.
	if b.PaymentStatus == models.PaymentStatusFailed {
		if err := s.Repo.UpdatePaymentStatusIf(ctx, bookingID, models.PaymentStatusFailed, models.PaymentStatusPending, nil); err != nil {
			s.Logger.Error("failed to reset payment status for retry",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}

	if err := s.Repo.SetPaymentSession(ctx, bookingID, result.CheckoutRequestID, "mpesa"); err != nil {
		s.Logger.Error("failed to record gateway session",
			zap.String("bookingID", bookingID), zap.Error(err))
	}

	s.Logger.Info("payment initiated",
		zap.String("bookingID", bookingID),
		zap.String("checkoutRequestID", result.CheckoutRequestID))
	return result, nil
}

// WaitForPayment polls the booking's payment status at a fixed interval,
// bounded by maxAttempts. Caller cancellation simply stops polling; the
// booking stays pending for later callback resolution.
func (s *DefaultBookingService) WaitForPayment(ctx context.Context, bookingID string, interval time.Duration, maxAttempts int) (*models.Booking, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		b, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if b.PaymentSettled() {
			return b, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, PaymentTimeoutError{BookingID: bookingID, Attempts: maxAttempts}
}

// SweepStalePayments asks the gateway for the outcome of payments whose
// callback has not arrived within the expected window.
func (s *DefaultBookingService) SweepStalePayments(ctx context.Context, olderThan time.Time) error {
	stale, err := s.Repo.ListStalePayments(ctx, olderThan)
	if err != nil {
		return err
	}

	for _, b := range stale {
		resp, err := s.Gateway.QueryStatus(ctx, b.CheckoutRequestID)
		if err != nil {
			s.Logger.Warn("stale payment query failed",
				zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}

		switch resp.ResultCode {
		case "0":
			if _, err := s.ReconcilePayment(ctx, b.ID, models.PaymentStatusPaid, b.CheckoutRequestID); err != nil {
				s.Logger.Error("failed to reconcile swept payment",
					zap.String("bookingID", b.ID), zap.Error(err))
			}
		case "1", "1032", "1037", "2001":
			// Insufficient funds, user cancel, prompt timeout, wrong PIN.
			if _, err := s.ReconcilePayment(ctx, b.ID, models.PaymentStatusFailed, ""); err != nil {
				s.Logger.Error("failed to reconcile swept payment",
					zap.String("bookingID", b.ID), zap.Error(err))
			}
		default:
			// Still processing; leave for the next sweep or the callback.
		}
	}
	return nil
}
