package subscription

import (
	"context"
	"fmt"
	"testing"
	"time"

	"keja/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeSubscriptionRepo struct {
	subs map[string]*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*models.Subscription)}
}

func (r *fakeSubscriptionRepo) GetByLandlordID(ctx context.Context, landlordID string) (*models.Subscription, error) {
	sub, ok := r.subs[landlordID]
	if !ok {
		return nil, fmt.Errorf("subscription not found: %w", mongo.ErrNoDocuments)
	}
	clone := *sub
	return &clone, nil
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	clone := *sub
	r.subs[sub.LandlordID] = &clone
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, landlordID string, fields map[string]interface{}) error {
	sub, ok := r.subs[landlordID]
	if !ok {
		return fmt.Errorf("subscription not found: %w", mongo.ErrNoDocuments)
	}
	for k, v := range fields {
		switch k {
		case "plan":
			sub.Plan = v.(string)
		case "status":
			sub.Status = v.(string)
		case "amount":
			sub.Amount = v.(float64)
		case "payment_method":
			sub.PaymentMethod = v.(string)
		case "auto_renew":
			sub.AutoRenew = v.(bool)
		case "end_date":
			t := v.(time.Time)
			sub.EndDate = &t
		case "last_payment_date":
			t := v.(time.Time)
			sub.LastPaymentDate = &t
		case "next_payment_date":
			t := v.(time.Time)
			sub.NextPaymentDate = &t
		}
	}
	sub.UpdatedAt = time.Now()
	return nil
}

func newTestService(repo *fakeSubscriptionRepo) *DefaultSubscriptionService {
	return &DefaultSubscriptionService{
		Repo:          repo,
		Logger:        zap.NewNop(),
		PremiumAmount: 2000,
	}
}

func TestGetSubscriptionCreatesImplicitFreeRecord(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := newTestService(repo)

	sub, err := svc.GetSubscription(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.NotEmpty(t, sub.ID)

	// The record persists; a second call returns the same subscription.
	again, err := svc.GetSubscription(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
}

func TestGetCommissionRateFreePlan(t *testing.T) {
	svc := newTestService(newFakeSubscriptionRepo())

	rate, err := svc.GetCommissionRate(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, rate)
}

func TestGetCommissionRateActivePremium(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	end := time.Now().AddDate(0, 0, 20)
	repo.subs["landlord-1"] = &models.Subscription{
		ID:         "sub-1",
		LandlordID: "landlord-1",
		Plan:       models.PlanPremium,
		Status:     models.SubscriptionStatusActive,
		EndDate:    &end,
	}
	svc := newTestService(repo)

	rate, err := svc.GetCommissionRate(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, rate)
}

func TestGetCommissionRateLapsedPremiumFallsBackToFree(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	end := time.Now().AddDate(0, 0, -3)
	repo.subs["landlord-1"] = &models.Subscription{
		ID:         "sub-1",
		LandlordID: "landlord-1",
		Plan:       models.PlanPremium,
		Status:     models.SubscriptionStatusActive,
		EndDate:    &end,
	}
	svc := newTestService(repo)

	rate, err := svc.GetCommissionRate(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, rate)
}

func TestGetCommissionRateCancelledPremiumFallsBackToFree(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	repo.subs["landlord-1"] = &models.Subscription{
		ID:         "sub-1",
		LandlordID: "landlord-1",
		Plan:       models.PlanPremium,
		Status:     models.SubscriptionStatusCancelled,
	}
	svc := newTestService(repo)

	rate, err := svc.GetCommissionRate(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, rate)
}

func TestUpgradeStampsBillingCycle(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := newTestService(repo)

	before := time.Now()
	sub, err := svc.Upgrade(context.Background(), "landlord-1", "mpesa")
	require.NoError(t, err)

	assert.Equal(t, models.PlanPremium, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, 2000.0, sub.Amount)
	assert.Equal(t, "mpesa", sub.PaymentMethod)
	require.NotNil(t, sub.EndDate)
	require.NotNil(t, sub.NextPaymentDate)
	assert.WithinDuration(t, before.AddDate(0, 0, 30), *sub.EndDate, time.Minute)
	assert.Equal(t, *sub.EndDate, *sub.NextPaymentDate)

	rate, err := svc.GetCommissionRate(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, rate)
}

func TestCancelLapsesBenefits(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := newTestService(repo)

	_, err := svc.Upgrade(context.Background(), "landlord-1", "mpesa")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), "landlord-1"))

	sub, err := svc.GetSubscription(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, sub.Status)
	assert.Equal(t, models.PlanPremium, sub.Plan) // plan label survives; benefits lapse

	rate, err := svc.GetCommissionRate(context.Background(), "landlord-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, rate)
}
