package handlers

import (
	"net/http"
	"strconv"
	"time"

	commissionRepo "keja/database/repository/commission"
	"keja/middleware"
	"keja/services/subscription"
	"keja/utils"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler exposes the landlord subscription and earnings surface.
type SubscriptionHandler struct {
	Service        subscription.SubscriptionService
	CommissionRepo commissionRepo.CommissionRepository
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(svc subscription.SubscriptionService, repo commissionRepo.CommissionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{Service: svc, CommissionRepo: repo}
}

// GetSubscription returns the landlord's current subscription.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sub, err := h.Service.GetSubscription(c.Request.Context(), middleware.LandlordID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Upgrade moves the landlord to the premium plan.
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	var input struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "mpesa"
	}

	sub, err := h.Service.Upgrade(c.Request.Context(), middleware.LandlordID(c), input.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Cancel marks the landlord's premium subscription cancelled.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	if err := h.Service.Cancel(c.Request.Context(), middleware.LandlordID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListCommissions returns the landlord's commission ledger entries.
func (h *SubscriptionHandler) ListCommissions(c *gin.Context) {
	entries, err := h.CommissionRepo.ListByLandlord(c.Request.Context(), middleware.LandlordID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": entries})
}

// CommissionSummary returns the landlord's monthly commission rollup for a year.
func (h *SubscriptionHandler) CommissionSummary(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", "year must be a number")
			return
		}
		year = parsed
	}

	summary, err := h.CommissionRepo.MonthlySummary(c.Request.Context(), middleware.LandlordID(c), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "summary": summary})
}
