package commission

import (
	"testing"

	"keja/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateFor(t *testing.T) {
	rate, err := RateFor(models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 15.0, rate)

	rate, err = RateFor(models.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rate)
}

func TestRateForUnknownPlan(t *testing.T) {
	_, err := RateFor("gold")
	require.Error(t, err)
	assert.IsType(t, ConfigurationError{}, err)
}

func TestCompute(t *testing.T) {
	amount, payout := Compute(50000, 15)
	assert.Equal(t, 7500.0, amount)
	assert.Equal(t, 42500.0, payout)

	amount, payout = Compute(50000, 5)
	assert.Equal(t, 2500.0, amount)
	assert.Equal(t, 47500.0, payout)
}

func TestComputeRoundsHalfUp(t *testing.T) {
	// 33333 * 15% = 4999.95: already at cent precision.
	amount, _ := Compute(33333, 15)
	assert.Equal(t, 4999.95, amount)

	// 333.33 * 5% = 16.6665 -> rounds up to 16.67.
	amount, _ = Compute(333.33, 5)
	assert.Equal(t, 16.67, amount)
}

func TestComputeSumInvariant(t *testing.T) {
	rents := []float64{0, 1, 99.99, 333.33, 1500.20, 50000, 123456.78}
	for _, rent := range rents {
		for _, rate := range []float64{5, 15} {
			amount, payout := Compute(rent, rate)
			assert.Equal(t, rent, amount+payout, "rent %v rate %v", rent, rate)
		}
	}
}
