package handlers

import (
	"net/http"
	"time"

	"keja/models"
	"keja/services/booking"
	"keja/services/payment"
	"keja/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	pollInterval    = 3 * time.Second
	pollMaxAttempts = 20
)

// PaymentHandler exposes the payment surface: initiation, polling, the
// gateway callback, and a raw status passthrough for support tooling.
type PaymentHandler struct {
	Service booking.BookingService
	Gateway payment.Gateway
	Logger  *zap.Logger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc booking.BookingService, gateway payment.Gateway, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: svc, Gateway: gateway, Logger: logger}
}

// InitiatePayment opens a gateway session for a confirmed booking. Tenants
// retry here after a failed attempt; the booking is reused.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var input struct {
		Phone string `json:"phone"`
	}
	// Body is optional; the booking's phone is the default.
	_ = c.ShouldBindJSON(&input)

	result, err := h.Service.InitiatePayment(c.Request.Context(), c.Param("id"), input.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Success {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// WaitForPayment blocks until the booking's payment settles or the poll
// budget runs out. Closing the connection stops polling and leaves the
// booking pending.
func (h *PaymentHandler) WaitForPayment(c *gin.Context) {
	b, err := h.Service.WaitForPayment(c.Request.Context(), c.Param("id"), pollInterval, pollMaxAttempts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// MpesaCallback receives the gateway's asynchronous result. Malformed or
// unknown deliveries are logged and acknowledged; the provider retries
// delivery on non-2xx and the outcome will never change.
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	var payload models.STKCallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Logger.Warn("malformed gateway callback", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	if _, err := h.Service.ReconcileCallback(c.Request.Context(), &payload); err != nil {
		h.Logger.Warn("gateway callback could not be reconciled",
			zap.String("checkoutRequestID", payload.Body.StkCallback.CheckoutRequestID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// QueryPaymentStatus passes a raw gateway status query through for support
// tooling.
func (h *PaymentHandler) QueryPaymentStatus(c *gin.Context) {
	checkoutRequestID := c.Param("checkoutRequestID")
	if checkoutRequestID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "checkoutRequestID is required")
		return
	}

	resp, err := h.Gateway.QueryStatus(c.Request.Context(), checkoutRequestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
