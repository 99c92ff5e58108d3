package booking

import (
	"context"
	"strings"
	"time"

	propertyRepo "keja/database/repository/property"
	"keja/models"
	"keja/services/commission"
	"keja/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultLeaseMonths = 12

// CreateBooking records a tenant inquiry against a visible property. The
// landlord's commission rate is snapshotted here; a later subscription change
// never reprices an existing booking.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}
	moveIn, err := time.Parse("2006-01-02", req.MoveInDate)
	if err != nil {
		return nil, ValidationError{Field: "moveInDate", Reason: "must be a valid YYYY-MM-DD date"}
	}

	property, err := s.PropertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		if propertyRepo.IsNotFound(err) {
			return nil, NotFoundError{Entity: "property", ID: req.PropertyID}
		}
		return nil, err
	}
	if !property.IsVisible() {
		return nil, NotFoundError{Entity: "property", ID: req.PropertyID}
	}

	rate, err := s.SubscriptionSvc.GetCommissionRate(ctx, property.LandlordID)
	if err != nil {
		return nil, err
	}
	commissionAmount, landlordPayout := commission.Compute(property.Price, rate)

	leaseDuration := req.LeaseDuration
	if leaseDuration <= 0 {
		leaseDuration = defaultLeaseMonths
	}

	now := time.Now()
	booking := &models.Booking{
		ID:               uuid.New().String(),
		PropertyID:       property.ID,
		LandlordID:       property.LandlordID,
		UserName:         strings.TrimSpace(req.UserName),
		UserEmail:        strings.TrimSpace(req.UserEmail),
		Phone:            payment.NormalizePhone(req.Phone),
		MoveInDate:       moveIn,
		InquiryDate:      now,
		LeaseDuration:    leaseDuration,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		MonthlyRent:      property.Price,
		CommissionRate:   rate,
		CommissionAmount: commissionAmount,
		LandlordPayout:   landlordPayout,
		SecurityDeposit:  req.SecurityDeposit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("propertyID", booking.PropertyID),
		zap.Float64("monthlyRent", booking.MonthlyRent),
		zap.Float64("commissionRate", booking.CommissionRate))

	s.Notifier.Emit(ctx, models.EventNewBooking, booking.LandlordID, map[string]string{
		"bookingId":  booking.ID,
		"propertyId": booking.PropertyID,
		"tenantName": booking.UserName,
		"moveInDate": booking.MoveInDate.Format("2006-01-02"),
	})

	return booking, nil
}

func validateCreateRequest(req CreateBookingRequest) error {
	if strings.TrimSpace(req.PropertyID) == "" {
		return ValidationError{Field: "propertyId", Reason: "is required"}
	}
	if strings.TrimSpace(req.UserName) == "" {
		return ValidationError{Field: "userName", Reason: "is required"}
	}
	if strings.TrimSpace(req.UserEmail) == "" || !strings.Contains(req.UserEmail, "@") {
		return ValidationError{Field: "userEmail", Reason: "must be a valid email address"}
	}
	if !payment.ValidPhone(req.Phone) {
		return ValidationError{Field: "phone", Reason: "must be a valid mobile number"}
	}
	if strings.TrimSpace(req.MoveInDate) == "" {
		return ValidationError{Field: "moveInDate", Reason: "is required"}
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, NotFoundError{Entity: "booking", ID: bookingID}
	}
	return b, nil
}

// ListByLandlord returns all bookings owned by a landlord.
func (s *DefaultBookingService) ListByLandlord(ctx context.Context, landlordID string) ([]models.Booking, error) {
	return s.Repo.ListByLandlord(ctx, landlordID)
}

// ListByTenantEmail returns all bookings submitted with a tenant email.
func (s *DefaultBookingService) ListByTenantEmail(ctx context.Context, email string) ([]models.Booking, error) {
	return s.Repo.ListByTenantEmail(ctx, email)
}
