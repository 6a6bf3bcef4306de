package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultValidator() *DonationValidator {
	return NewDonationValidator(ValidationLimits{
		MinAmount:        0.01,
		MaxAmount:        10000,
		MaxDailyPerDonor: 0,
	})
}

func TestValidateAmount(t *testing.T) {
	v := defaultValidator()

	tests := []struct {
		name     string
		amount   float64
		wantOK   bool
		wantCode string
	}{
		{"typical donation", 25, true, ""},
		{"exactly the minimum", 0.01, true, ""},
		{"exactly the maximum", 10000, true, ""},
		{"just under the minimum", 0.009999, false, CodeAmountBelowMinimum},
		{"just over the maximum", 10000.01, false, CodeAmountExceedsMaximum},
		{"zero", 0, false, CodeAmountTooLow},
		{"negative", -5, false, CodeAmountTooLow},
		{"not a number", math.NaN(), false, CodeInvalidAmountType},
		{"positive infinity", math.Inf(1), false, CodeInvalidAmountType},
		{"negative infinity", math.Inf(-1), false, CodeInvalidAmountType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateAmount(tt.amount)
			assert.Equal(t, tt.wantOK, result.Valid)
			assert.Equal(t, tt.wantCode, result.Code)
		})
	}
}

func TestValidateAmountReportsBounds(t *testing.T) {
	v := defaultValidator()

	below := v.ValidateAmount(0.001)
	assert.Equal(t, 0.01, below.MinAmount)

	above := v.ValidateAmount(20000)
	assert.Equal(t, 10000.0, above.MaxAmount)
}

func TestValidateDailyLimit(t *testing.T) {
	v := NewDonationValidator(ValidationLimits{
		MinAmount:        0.01,
		MaxAmount:        10000,
		MaxDailyPerDonor: 5000,
	})

	t.Run("over the cap", func(t *testing.T) {
		result := v.ValidateDailyLimit(1000, 4500)
		assert.False(t, result.Valid)
		assert.Equal(t, CodeDailyLimitExceeded, result.Code)
		assert.Equal(t, 5000.0, result.MaxDailyAmount)
		assert.Equal(t, 4500.0, result.CurrentDailyTotal)
		assert.Equal(t, 500.0, result.RemainingDaily)
	})

	t.Run("landing exactly on the cap is allowed", func(t *testing.T) {
		result := v.ValidateDailyLimit(500, 4500)
		assert.True(t, result.Valid)
	})

	t.Run("under the cap", func(t *testing.T) {
		result := v.ValidateDailyLimit(100, 0)
		assert.True(t, result.Valid)
	})

	t.Run("remaining never negative", func(t *testing.T) {
		result := v.ValidateDailyLimit(1, 6000)
		assert.False(t, result.Valid)
		assert.Equal(t, 0.0, result.RemainingDaily)
	})
}

func TestValidateDailyLimitDisabled(t *testing.T) {
	v := defaultValidator() // MaxDailyPerDonor 0 disables the cap

	result := v.ValidateDailyLimit(1_000_000, 99_000_000)
	assert.True(t, result.Valid)
}

func TestIsValidRange(t *testing.T) {
	v := defaultValidator()

	assert.True(t, v.IsValidRange(0.01))
	assert.True(t, v.IsValidRange(10000))
	assert.False(t, v.IsValidRange(0))
	assert.False(t, v.IsValidRange(10000.5))
	assert.False(t, v.IsValidRange(math.NaN()))
}

func TestLimitsEchoesConfiguration(t *testing.T) {
	limits := ValidationLimits{MinAmount: 1, MaxAmount: 500, MaxDailyPerDonor: 2000}
	v := NewDonationValidator(limits)
	assert.Equal(t, limits, v.Limits())
}
