package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "keja/database/repository/booking"
	"keja/models"

	"go.uber.org/zap"
)

// Decide applies the owning landlord's approve/reject decision to a pending
// booking. The status transition is a guarded storage update, so two racing
// decisions (or a decision racing a payment callback) cannot both win.
func (s *DefaultBookingService) Decide(ctx context.Context, bookingID, decision, actorLandlordID string) (*models.Booking, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}

	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.LandlordID != actorLandlordID {
		return nil, ForbiddenError{Actor: actorLandlordID, BookingID: bookingID}
	}
	if b.Decided() {
		return nil, InvalidStateError{BookingID: bookingID, State: b.Status, Op: "decide"}
	}

	now := time.Now()
	var toStatus string
	fields := map[string]interface{}{}
	if decision == DecisionApprove {
		toStatus = models.BookingStatusConfirmed
		fields["confirmed_at"] = now
	} else {
		toStatus = models.BookingStatusRejected
		fields["rejected_at"] = now
	}

	err = s.Repo.UpdateStatusIf(ctx, bookingID, models.BookingStatusPending, toStatus, fields)
	if errors.Is(err, bookingRepo.ErrNoMatch) {
		// Another decision landed between our read and the guarded write.
		current, getErr := s.GetBooking(ctx, bookingID)
		state := "unknown"
		if getErr == nil {
			state = current.Status
		}
		return nil, InvalidStateError{BookingID: bookingID, State: state, Op: "decide"}
	}
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking decided",
		zap.String("bookingID", bookingID),
		zap.String("decision", decision),
		zap.String("landlordID", actorLandlordID))

	if decision == DecisionApprove {
		s.Notifier.Emit(ctx, models.EventBookingApproved, b.UserEmail, map[string]string{
			"bookingId":  bookingID,
			"propertyId": b.PropertyID,
		})
		// Payment collection runs off the landlord's request path.
		if err := s.Queue.EnqueuePaymentInitiation(ctx, bookingID); err != nil {
			s.Logger.Error("failed to enqueue payment initiation",
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	} else {
		s.Notifier.Emit(ctx, models.EventBookingRejected, b.UserEmail, map[string]string{
			"bookingId":  bookingID,
			"propertyId": b.PropertyID,
		})
	}

	return s.GetBooking(ctx, bookingID)
}

// CancelBooking is the tenant-initiated cleanup of a still-pending inquiry.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Decided() {
		return nil, InvalidStateError{BookingID: bookingID, State: b.Status, Op: "cancel"}
	}

	fields := map[string]interface{}{"cancelled_at": time.Now()}
	err = s.Repo.UpdateStatusIf(ctx, bookingID, models.BookingStatusPending, models.BookingStatusCancelled, fields)
	if errors.Is(err, bookingRepo.ErrNoMatch) {
		current, getErr := s.GetBooking(ctx, bookingID)
		state := "unknown"
		if getErr == nil {
			state = current.Status
		}
		return nil, InvalidStateError{BookingID: bookingID, State: state, Op: "cancel"}
	}
	if err != nil {
		return nil, err
	}

	s.Notifier.Emit(ctx, models.EventBookingCancelled, b.LandlordID, map[string]string{
		"bookingId":  bookingID,
		"propertyId": b.PropertyID,
	})

	return s.GetBooking(ctx, bookingID)
}
