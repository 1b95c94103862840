package calculation

import (
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPlan(id string, metal domain.MetalLevel, csr string, rate string) domain.Plan {
	return domain.Plan{
		PlanID:            id,
		Issuer:            "Acme Health",
		StateCode:         "CA",
		RatingAreaID:      "1",
		Age:               "40",
		MetalLevel:        metal,
		CSRVariationType:  csr,
		PlanMarketingName: id + " plan",
		PlanType:          "HMO",
		IndividualRate:    d(rate),
	}
}

func silverPlan(id, rate string) domain.Plan {
	return testPlan(id, domain.MetalSilver, domain.StandardSilverOnExchange, rate)
}

func adjust(plans ...domain.Plan) []domain.AdjustedPlan {
	return ApplyRateChanges(plans, nil)
}
