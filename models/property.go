package models

// Property carries only the fields the booking core needs. Full catalog CRUD
// lives outside this service.
type Property struct {
	ID         string  `bson:"id" json:"id"`
	LandlordID string  `bson:"landlord_id" json:"landlordId"`
	Title      string  `bson:"title" json:"title"`
	Price      float64 `bson:"price" json:"price"` // monthly rent
	Status     string  `bson:"status" json:"status"`

	// Analytics counters incremented by the booking core on payment confirmation.
	CompletedBookings int     `bson:"completed_bookings" json:"completedBookings"`
	TotalRevenue      float64 `bson:"total_revenue" json:"totalRevenue"`
}

// IsVisible reports whether the property can receive new inquiries.
func (p *Property) IsVisible() bool {
	return p.Status == "available"
}
