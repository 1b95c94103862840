package ingest

import (
	"github.com/rgehrsitz/ratesim/internal/domain"
)

type componentMetal struct {
	componentID string
	metal       domain.MetalLevel
}

type attributeKey struct {
	componentID string
	metal       domain.MetalLevel
	csr         string
}

// JoinPlans joins rate rows to plan attributes. Each rate row takes the metal
// levels its component carries in the attributes file (one per distinct level),
// rows whose level is not loadable are dropped, and the survivors are paired with
// every attribute record of the component, giving one plan per cost-sharing
// variation. Attribute records repeated with the same component, metal level and
// variation are read once.
func JoinPlans(rates []RateRecord, attrs []AttributeRecord) []domain.Plan {
	metals := make(map[string][]domain.MetalLevel)
	seenMetal := make(map[componentMetal]bool)
	byComponent := make(map[string][]AttributeRecord)
	seenAttr := make(map[attributeKey]bool)

	for _, a := range attrs {
		cm := componentMetal{a.StandardComponentID, a.MetalLevel}
		if !seenMetal[cm] {
			seenMetal[cm] = true
			metals[a.StandardComponentID] = append(metals[a.StandardComponentID], a.MetalLevel)
		}

		ak := attributeKey{a.StandardComponentID, a.MetalLevel, a.CSRVariationType}
		if !seenAttr[ak] {
			seenAttr[ak] = true
			byComponent[a.StandardComponentID] = append(byComponent[a.StandardComponentID], a)
		}
	}

	var plans []domain.Plan
	for _, r := range rates {
		for _, metal := range metals[r.PlanID] {
			if !metal.IsLoadable() {
				continue
			}
			for _, a := range byComponent[r.PlanID] {
				plans = append(plans, domain.Plan{
					PlanID:                r.PlanID,
					StandardComponentID:   a.StandardComponentID,
					IssuerID:              a.IssuerID,
					Issuer:                a.Issuer,
					StateCode:             r.StateCode,
					RatingAreaID:          r.RatingAreaID,
					Age:                   r.Age,
					Tobacco:               r.Tobacco,
					MetalLevel:            metal,
					CSRVariationType:      a.CSRVariationType,
					PlanMarketingName:     a.PlanMarketingName,
					PlanType:              a.PlanType,
					IndividualRate:        r.IndividualRate,
					IndividualTobaccoRate: r.IndividualTobaccoRate,
				})
			}
		}
	}
	return plans
}
