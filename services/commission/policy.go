package commission

import (
	"fmt"
	"math"

	"keja/models"
)

// planRates is the closed plan-to-commission mapping. Any future tier is added
// here and nowhere else.
var planRates = map[string]float64{
	models.PlanFree:    15,
	models.PlanPremium: 5,
}

// ConfigurationError signals a plan value outside the closed plan enum.
type ConfigurationError struct {
	Plan string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("no commission rate configured for plan %q", e.Plan)
}

// RateFor returns the commission percentage for a subscription plan.
func RateFor(plan string) (float64, error) {
	rate, ok := planRates[plan]
	if !ok {
		return 0, ConfigurationError{Plan: plan}
	}
	return rate, nil
}

// PlanForRate is the reverse lookup used when ledgering a booking whose plan
// was snapshotted as a rate. Unknown rates map to the free tier.
func PlanForRate(rate float64) string {
	for plan, r := range planRates {
		if r == rate {
			return plan
		}
	}
	return models.PlanFree
}

// Compute derives the commission amount and landlord payout for a rent and
// rate. The commission is rounded half-up to the smallest currency unit; the
// payout is the exact remainder so the two always sum back to the rent.
func Compute(monthlyRent, rate float64) (commissionAmount, landlordPayout float64) {
	commissionAmount = roundToCents(monthlyRent * rate / 100)
	landlordPayout = monthlyRent - commissionAmount
	return commissionAmount, landlordPayout
}

func roundToCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
