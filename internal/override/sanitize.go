package override

import (
	"strconv"
	"strings"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

// ValidateBatch rejects a batch before anything is persisted. Every
// override must name its product, catalog id and a reason.
func ValidateBatch(overrides []*contracts.ProductOverride) error {
	if len(overrides) == 0 {
		return contracts.NewValidationError("overrides", "batch is empty")
	}

	for i, ov := range overrides {
		if err := Validate(ov); err != nil {
			if ve, ok := err.(*contracts.ValidationError); ok {
				ve.Field = ve.Field + " (override " + strconv.Itoa(i) + ")"
				return ve
			}
			return err
		}
	}

	return nil
}

// Validate checks a single override payload
func Validate(ov *contracts.ProductOverride) error {
	if ov == nil {
		return contracts.NewValidationError("override", "missing payload")
	}
	if strings.TrimSpace(ov.ProductID) == "" {
		return contracts.NewValidationError("product_id", "required")
	}
	if strings.TrimSpace(ov.ASIN) == "" {
		return contracts.NewValidationError("asin", "required")
	}
	if strings.TrimSpace(ov.Reason) == "" {
		return contracts.NewValidationError("reason", "required")
	}

	if margin, ok := ov.Margin.Value(); ok && (margin < -1 || margin > 1) {
		return contracts.NewValidationError("margin", "must be between -1 and 1")
	}
	if rating, ok := ov.Rating.Value(); ok && (rating < 0 || rating > 5) {
		return contracts.NewValidationError("rating", "must be between 0 and 5")
	}
	if opp, ok := ov.OpportunityScore.Value(); ok && (opp < 0 || opp > 10) {
		return contracts.NewValidationError("opportunity_score", "must be between 0 and 10")
	}
	if price, ok := ov.Price.Value(); ok && price < 0 {
		return contracts.NewValidationError("price", "must not be negative")
	}
	if reviews, ok := ov.Reviews.Value(); ok && reviews < 0 {
		return contracts.NewValidationError("reviews", "must not be negative")
	}

	return nil
}
