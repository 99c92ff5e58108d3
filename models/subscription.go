package models

import "time"

// Subscription plans and statuses.
const (
	PlanFree    = "free"
	PlanPremium = "premium"

	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// Subscription holds a landlord's current plan. One per landlord, enforced by
// a unique index on landlord_id.
type Subscription struct {
	ID         string `bson:"id" json:"id"`
	LandlordID string `bson:"landlord_id" json:"landlordId"`
	Plan       string `bson:"plan" json:"plan"`
	Status     string `bson:"status" json:"status"`

	StartDate *time.Time `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`

	// Premium billing bookkeeping, not tenant-facing.
	Amount          float64    `bson:"amount,omitempty" json:"amount,omitempty"`
	PaymentMethod   string     `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	AutoRenew       bool       `bson:"auto_renew" json:"autoRenew"`
	LastPaymentDate *time.Time `bson:"last_payment_date,omitempty" json:"lastPaymentDate,omitempty"`
	NextPaymentDate *time.Time `bson:"next_payment_date,omitempty" json:"nextPaymentDate,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the subscription currently grants its plan's
// benefits. Free subscriptions are always active; premium requires an active
// status and an end date that is absent or in the future.
func (s *Subscription) IsActive() bool {
	if s.Plan == PlanFree {
		return true
	}
	if s.Status != SubscriptionStatusActive {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(time.Now())
}
