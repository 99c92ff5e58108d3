package subscription

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// collectCardFee charges the premium plan fee via a Stripe PaymentIntent.
// Mobile-money upgrades are verified upstream before Upgrade is called, so
// only the card path goes through here.
func (s *DefaultSubscriptionService) collectCardFee(ctx context.Context, landlordID string) error {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(s.PremiumAmount * 100)),
		Currency: stripe.String(string(stripe.CurrencyKES)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String("Premium subscription upgrade"),
	}
	params.AddMetadata("landlord_id", landlordID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.Logger.Info("created premium upgrade payment intent",
		zap.String("landlordID", landlordID), zap.String("paymentIntentID", pi.ID))
	return nil
}
