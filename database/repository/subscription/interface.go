package subscriptionRepo

import (
	"context"

	"keja/models"
)

// SubscriptionRepository defines the interface for subscription data access.
type SubscriptionRepository interface {
	GetByLandlordID(ctx context.Context, landlordID string) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, landlordID string, fields map[string]interface{}) error
}
