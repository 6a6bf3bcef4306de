package core

import (
	"fmt"
	"math"
)

// Machine-readable rejection codes returned by the validator.
const (
	CodeInvalidAmountType    = "INVALID_AMOUNT_TYPE"
	CodeAmountTooLow         = "AMOUNT_TOO_LOW"
	CodeAmountBelowMinimum   = "AMOUNT_BELOW_MINIMUM"
	CodeAmountExceedsMaximum = "AMOUNT_EXCEEDS_MAXIMUM"
	CodeDailyLimitExceeded   = "DAILY_LIMIT_EXCEEDED"
)

type (
	// ValidationLimits is the process-wide donation limit configuration,
	// loaded once at startup and immutable afterwards. MaxDailyPerDonor
	// of 0 means no daily cap is enforced.
	ValidationLimits struct {
		MinAmount        float64 `json:"minAmount"`
		MaxAmount        float64 `json:"maxAmount"`
		MaxDailyPerDonor float64 `json:"maxDailyPerDonor"`
	}

	// ValidationResult is a rule outcome represented as data. Rejections
	// carry a code, a human-readable message, and the thresholds that
	// produced them; the validator never signals rejection through errors.
	ValidationResult struct {
		Valid             bool    `json:"valid"`
		Code              string  `json:"code,omitempty"`
		Message           string  `json:"error,omitempty"`
		MinAmount         float64 `json:"minAmount,omitempty"`
		MaxAmount         float64 `json:"maxAmount,omitempty"`
		MaxDailyAmount    float64 `json:"maxDailyAmount,omitempty"`
		CurrentDailyTotal float64 `json:"currentDailyTotal,omitempty"`
		RemainingDaily    float64 `json:"remainingDaily,omitempty"`
	}

	// DonationValidator evaluates candidate donation amounts against the
	// configured limits. It is stateless and safe for concurrent use;
	// tests can run differently-configured instances side by side.
	DonationValidator struct {
		limits ValidationLimits
	}
)

func NewDonationValidator(limits ValidationLimits) *DonationValidator {
	return &DonationValidator{limits: limits}
}

// ValidateAmount checks a single amount against the static limits. Both
// bounds are inclusive: amount == MinAmount and amount == MaxAmount pass.
func (v *DonationValidator) ValidateAmount(amount float64) ValidationResult {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ValidationResult{
			Valid:   false,
			Code:    CodeInvalidAmountType,
			Message: "Amount must be a valid number",
		}
	}
	if amount <= 0 {
		return ValidationResult{
			Valid:   false,
			Code:    CodeAmountTooLow,
			Message: "Amount must be greater than zero",
		}
	}
	if amount < v.limits.MinAmount {
		return ValidationResult{
			Valid:     false,
			Code:      CodeAmountBelowMinimum,
			Message:   fmt.Sprintf("Amount must be at least %g", v.limits.MinAmount),
			MinAmount: v.limits.MinAmount,
		}
	}
	if amount > v.limits.MaxAmount {
		return ValidationResult{
			Valid:     false,
			Code:      CodeAmountExceedsMaximum,
			Message:   fmt.Sprintf("Amount cannot exceed %g", v.limits.MaxAmount),
			MaxAmount: v.limits.MaxAmount,
		}
	}
	return ValidationResult{Valid: true}
}

// ValidateDailyLimit checks the amount against the donor's rolling daily
// total. With MaxDailyPerDonor 0 the cap is disabled and everything
// passes. Exactly reaching the cap is allowed; only exceeding it fails.
func (v *DonationValidator) ValidateDailyLimit(amount, currentDailyTotal float64) ValidationResult {
	if v.limits.MaxDailyPerDonor == 0 {
		return ValidationResult{Valid: true}
	}

	if currentDailyTotal+amount > v.limits.MaxDailyPerDonor {
		return ValidationResult{
			Valid:             false,
			Code:              CodeDailyLimitExceeded,
			Message:           fmt.Sprintf("Daily donation limit exceeded. Maximum %g per day", v.limits.MaxDailyPerDonor),
			MaxDailyAmount:    v.limits.MaxDailyPerDonor,
			CurrentDailyTotal: currentDailyTotal,
			RemainingDaily:    math.Max(0, v.limits.MaxDailyPerDonor-currentDailyTotal),
		}
	}
	return ValidationResult{Valid: true}
}

// Limits returns the configured thresholds verbatim.
func (v *DonationValidator) Limits() ValidationLimits {
	return v.limits
}

// IsValidRange is the quick boolean form of ValidateAmount's range checks.
func (v *DonationValidator) IsValidRange(amount float64) bool {
	return amount >= v.limits.MinAmount && amount <= v.limits.MaxAmount
}
