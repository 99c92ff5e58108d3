package models

import "time"

// Booking lifecycle statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusRejected  = "rejected"
)

// Booking payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Booking represents a tenant's rental inquiry and its payment lifecycle.
// Commission fields are snapshotted at creation from the landlord's
// subscription and never recomputed from the live plan afterwards.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	PropertyID string `bson:"property_id" json:"propertyId"`
	LandlordID string `bson:"landlord_id" json:"landlordId"` // denormalized from the property for query efficiency

	// Tenant contact details; tenants are not authenticated accounts in this flow.
	UserName  string `bson:"user_name" json:"userName"`
	UserEmail string `bson:"user_email" json:"userEmail"`
	Phone     string `bson:"phone" json:"phone"`

	MoveInDate    time.Time `bson:"move_in_date" json:"moveInDate"`
	InquiryDate   time.Time `bson:"inquiry_date" json:"inquiryDate"`
	LeaseDuration int       `bson:"lease_duration" json:"leaseDuration"` // months

	Status        string `bson:"status" json:"status"`
	PaymentStatus string `bson:"payment_status" json:"paymentStatus"`

	MonthlyRent      float64 `bson:"monthly_rent" json:"monthlyRent"`
	CommissionRate   float64 `bson:"commission_rate" json:"commissionRate"` // percent
	CommissionAmount float64 `bson:"commission_amount" json:"commissionAmount"`
	LandlordPayout   float64 `bson:"landlord_payout" json:"landlordPayout"`
	SecurityDeposit  float64 `bson:"security_deposit,omitempty" json:"securityDeposit,omitempty"`

	PaymentMethod     string `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	TransactionID     string `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	CheckoutRequestID string `bson:"checkout_request_id,omitempty" json:"checkoutRequestId,omitempty"`

	PaidAt      *time.Time `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	RejectedAt  *time.Time `bson:"rejected_at,omitempty" json:"rejectedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Decided reports whether the booking has already received a landlord decision.
func (b *Booking) Decided() bool {
	return b.Status != BookingStatusPending
}

// PaymentSettled reports whether the payment has reached a terminal state.
func (b *Booking) PaymentSettled() bool {
	return b.PaymentStatus != PaymentStatusPending
}
