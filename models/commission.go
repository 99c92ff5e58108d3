package models

import "time"

// Commission ledger statuses.
const (
	CommissionStatusPending   = "pending"
	CommissionStatusCollected = "collected"
	CommissionStatusRefunded  = "refunded"
)

// Commission is a ledger entry recording the platform's cut of a confirmed
// booking. Created once the booking's payment is confirmed; immutable
// thereafter except for refund transitions.
type Commission struct {
	ID         string  `bson:"id" json:"id"`
	BookingID  string  `bson:"booking_id" json:"bookingId"`
	LandlordID string  `bson:"landlord_id" json:"landlordId"`
	Amount     float64 `bson:"amount" json:"amount"`
	Rate       float64 `bson:"rate" json:"rate"`
	Plan       string  `bson:"plan" json:"plan"` // plan snapshot at booking creation
	Status     string  `bson:"status" json:"status"`

	CollectedAt *time.Time `bson:"collected_at,omitempty" json:"collectedAt,omitempty"`

	// Reporting rollup keys.
	Month int `bson:"month" json:"month"`
	Year  int `bson:"year" json:"year"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// CommissionSummary is a monthly rollup of collected commissions for a landlord.
type CommissionSummary struct {
	Month       int     `bson:"month" json:"month"`
	Year        int     `bson:"year" json:"year"`
	TotalAmount float64 `bson:"total_amount" json:"totalAmount"`
	Count       int     `bson:"count" json:"count"`
}
