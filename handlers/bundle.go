package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints.
	CreateBooking        gin.HandlerFunc
	GetBooking           gin.HandlerFunc
	ListLandlordBookings gin.HandlerFunc
	ListTenantBookings   gin.HandlerFunc
	DecideBooking        gin.HandlerFunc
	CancelBooking        gin.HandlerFunc

	// Payment endpoints.
	InitiatePayment    gin.HandlerFunc
	WaitForPayment     gin.HandlerFunc
	MpesaCallback      gin.HandlerFunc
	QueryPaymentStatus gin.HandlerFunc

	// Subscription and earnings endpoints.
	GetSubscription    gin.HandlerFunc
	UpgradeTier        gin.HandlerFunc
	CancelSubscription gin.HandlerFunc
	ListCommissions    gin.HandlerFunc
	CommissionSummary  gin.HandlerFunc
}
