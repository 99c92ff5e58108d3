package subscription

import (
	"context"
	"fmt"
	"time"

	subscriptionRepo "keja/database/repository/subscription"
	"keja/models"
	"keja/services/commission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const premiumCycleDays = 30

// GetCommissionRate returns the landlord's effective commission rate.
func (s *DefaultSubscriptionService) GetCommissionRate(ctx context.Context, landlordID string) (float64, error) {
	sub, err := s.GetSubscription(ctx, landlordID)
	if err != nil {
		return 0, err
	}

	plan := sub.Plan
	if plan == models.PlanPremium && !sub.IsActive() {
		// Premium benefits lapse automatically on inactivity.
		s.Logger.Info("premium subscription inactive, falling back to free rate",
			zap.String("landlordID", landlordID), zap.String("status", sub.Status))
		plan = models.PlanFree
	}

	rate, err := commission.RateFor(plan)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve commission rate: %w", err)
	}
	return rate, nil
}

// GetSubscription returns the landlord's subscription, creating the implicit
// free record if none exists yet.
func (s *DefaultSubscriptionService) GetSubscription(ctx context.Context, landlordID string) (*models.Subscription, error) {
	sub, err := s.Repo.GetByLandlordID(ctx, landlordID)
	if err == nil {
		return sub, nil
	}
	if !subscriptionRepo.IsNotFound(err) {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}

	now := time.Now()
	sub = &models.Subscription{
		ID:         uuid.New().String(),
		LandlordID: landlordID,
		Plan:       models.PlanFree,
		Status:     models.SubscriptionStatusActive,
		StartDate:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create default subscription: %w", err)
	}
	s.Logger.Info("created implicit free subscription", zap.String("landlordID", landlordID))
	return sub, nil
}

// Upgrade moves the landlord to the premium plan and stamps the billing cycle.
func (s *DefaultSubscriptionService) Upgrade(ctx context.Context, landlordID, paymentMethod string) (*models.Subscription, error) {
	if _, err := s.GetSubscription(ctx, landlordID); err != nil {
		return nil, err
	}

	if paymentMethod == "card" {
		if err := s.collectCardFee(ctx, landlordID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	end := now.AddDate(0, 0, premiumCycleDays)
	fields := map[string]interface{}{
		"plan":              models.PlanPremium,
		"status":            models.SubscriptionStatusActive,
		"amount":            s.PremiumAmount,
		"payment_method":    paymentMethod,
		"end_date":          end,
		"last_payment_date": now,
		"next_payment_date": end,
	}
	if err := s.Repo.Update(ctx, landlordID, fields); err != nil {
		return nil, fmt.Errorf("failed to upgrade subscription: %w", err)
	}

	s.Logger.Info("subscription upgraded to premium",
		zap.String("landlordID", landlordID), zap.String("method", paymentMethod))
	return s.Repo.GetByLandlordID(ctx, landlordID)
}

// Cancel marks the subscription cancelled.
func (s *DefaultSubscriptionService) Cancel(ctx context.Context, landlordID string) error {
	fields := map[string]interface{}{
		"status":     models.SubscriptionStatusCancelled,
		"auto_renew": false,
	}
	if err := s.Repo.Update(ctx, landlordID, fields); err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return nil
}
