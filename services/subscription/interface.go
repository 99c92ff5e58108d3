package subscription

import (
	"context"

	subscriptionRepo "keja/database/repository/subscription"
	"keja/models"

	"go.uber.org/zap"
)

// SubscriptionService exposes the landlord subscription store.
type SubscriptionService interface {
	// GetCommissionRate returns the landlord's effective commission rate.
	// A landlord without a subscription record gets one created on the free
	// plan; a lapsed or cancelled premium silently falls back to the free rate.
	GetCommissionRate(ctx context.Context, landlordID string) (float64, error)

	// GetSubscription returns the landlord's subscription, creating the
	// implicit free record if none exists.
	GetSubscription(ctx context.Context, landlordID string) (*models.Subscription, error)

	// Upgrade moves the landlord to the premium plan on a 30-day cycle. It is
	// expected to be called only after the upgrade payment itself succeeded.
	Upgrade(ctx context.Context, landlordID, paymentMethod string) (*models.Subscription, error)

	// Cancel marks a premium subscription cancelled. Benefits lapse via
	// IsActive without a separate downgrade action.
	Cancel(ctx context.Context, landlordID string) error
}

// DefaultSubscriptionService implements SubscriptionService.
type DefaultSubscriptionService struct {
	Repo   subscriptionRepo.SubscriptionRepository
	Logger *zap.Logger

	// PremiumAmount is the recurring premium fee in KES.
	PremiumAmount float64
}
