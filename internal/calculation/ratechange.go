package calculation

import (
	"github.com/rgehrsitz/ratesim/internal/domain"
)

// ApplyRateChanges left-joins rate changes onto plans. Every plan is kept, in order;
// plans without a matching change keep their base rate as the new rate.
func ApplyRateChanges(plans []domain.Plan, changes []domain.RateChange) []domain.AdjustedPlan {
	byKey := make(map[domain.RateChangeKey]domain.RateChange, len(changes))
	for _, rc := range changes {
		byKey[rc.RateChangeKey] = rc
	}

	adjusted := make([]domain.AdjustedPlan, len(plans))
	for i, plan := range plans {
		newRate := plan.IndividualRate
		if rc, ok := byKey[plan.RateChangeKey()]; ok {
			newRate = plan.IndividualRate.Mul(rc.Factor())
		}
		adjusted[i] = domain.AdjustedPlan{Plan: plan, IndividualRateNew: newRate}
	}
	return adjusted
}
