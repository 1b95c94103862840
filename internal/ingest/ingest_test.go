package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlanRates(t *testing.T) {
	input := "PlanId, StateCode, RatingAreaId, Tobacco, Age, IndividualRate, IndividualTobaccoRate\n" +
		"P1, CA, Rating Area 1, No Preference, 21, 310.55,\n" +
		"P2, CA, Rating Area 1, Tobacco User/Non-Tobacco User, 64 and over, 900, 1080.10\n" +
		"P3, CA, Rating Area 1, No Preference, 30, not-a-rate,\n" +
		", CA, Rating Area 1, No Preference, 30, 100,\n"

	records, warnings, err := LoadPlanRates(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "P1", records[0].PlanID)
	assert.Equal(t, "Rating Area 1", records[0].RatingAreaID)
	assert.True(t, records[0].IndividualRate.Equal(decimal.RequireFromString("310.55")))
	assert.True(t, records[0].IndividualTobaccoRate.IsZero())
	assert.Equal(t, "64 and over", records[1].Age)
	assert.True(t, records[1].IndividualTobaccoRate.Equal(decimal.RequireFromString("1080.10")))

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "line 4")
	assert.Contains(t, warnings[1], "missing PlanId")
}

func TestLoadPlanRates_MissingHeaders(t *testing.T) {
	_, _, err := LoadPlanRates(strings.NewReader("PlanId,StateCode\nP1,CA\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required headers")
	assert.Contains(t, err.Error(), "individualrate")
}

func TestLoadPlanRates_Empty(t *testing.T) {
	_, _, err := LoadPlanRates(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadPlanAttributes(t *testing.T) {
	input := "\ufeffIssuerId,IssuerMarketPlaceMarketingName,StandardComponentId,PlanMarketingName,PlanType,MetalLevel,CSRVariationType\n" +
		"1,Acme Health,C1,Acme Gold,HMO,Gold,Standard Gold On Exchange Plan\n"

	records, warnings, err := LoadPlanAttributes(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 1)
	assert.Equal(t, domain.MetalGold, records[0].MetalLevel)
	assert.Equal(t, "Acme Health", records[0].Issuer)
}

func TestJoinPlans(t *testing.T) {
	rates := []RateRecord{
		{PlanID: "C1", StateCode: "CA", RatingAreaID: "1", Age: "40", IndividualRate: decimal.NewFromInt(400)},
		{PlanID: "C2", StateCode: "CA", RatingAreaID: "1", Age: "40", IndividualRate: decimal.NewFromInt(100)},
		{PlanID: "C3", StateCode: "CA", RatingAreaID: "1", Age: "40", IndividualRate: decimal.NewFromInt(50)},
	}
	attrs := []AttributeRecord{
		{StandardComponentID: "C1", Issuer: "Acme Health", MetalLevel: domain.MetalSilver, CSRVariationType: domain.StandardSilverOnExchange},
		{StandardComponentID: "C1", Issuer: "Acme Health", MetalLevel: domain.MetalSilver, CSRVariationType: "Limited Cost Sharing Plan Variation"},
		{StandardComponentID: "C1", Issuer: "Acme Health", MetalLevel: domain.MetalSilver, CSRVariationType: domain.StandardSilverOnExchange},
		{StandardComponentID: "C2", Issuer: "Beta Care", MetalLevel: "Low", CSRVariationType: "Standard Low"},
	}

	plans := JoinPlans(rates, attrs)

	require.Len(t, plans, 2, "one plan per distinct cost-sharing variation; unknown metal and unmatched rows dropped")
	assert.Equal(t, domain.StandardSilverOnExchange, plans[0].CSRVariationType)
	assert.Equal(t, "Limited Cost Sharing Plan Variation", plans[1].CSRVariationType)
	for _, p := range plans {
		assert.Equal(t, "C1", p.PlanID)
		assert.Equal(t, domain.MetalSilver, p.MetalLevel)
		assert.True(t, p.IndividualRate.Equal(decimal.NewFromInt(400)))
	}
}

func TestLoadFiles(t *testing.T) {
	var progress bytes.Buffer
	result, err := LoadFiles(filepath.Join("testdata", "rates.csv"), filepath.Join("testdata", "plan_attributes.csv"), &progress)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Rates)
	assert.Equal(t, 6, result.Records)
	assert.Empty(t, result.Warnings)
	// Acme Silver 1 (two variations), Acme Silver 2, Beta Bronze (duplicate collapsed).
	require.Len(t, result.Plans, 4)
	assert.Equal(t, domain.MetalBronze, result.Plans[3].MetalLevel)
	assert.True(t, result.Plans[3].IndividualTobaccoRate.Equal(decimal.NewFromInt(360)))
	assert.NotEmpty(t, progress.String())
}

func TestLoadFiles_WithoutProgress(t *testing.T) {
	result, err := LoadFiles(filepath.Join("testdata", "rates.csv"), filepath.Join("testdata", "plan_attributes.csv"), nil)
	require.NoError(t, err)
	assert.Len(t, result.Plans, 4)
}

func TestLoadFiles_MissingFile(t *testing.T) {
	_, err := LoadFiles(filepath.Join("testdata", "nope.csv"), filepath.Join("testdata", "plan_attributes.csv"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
}
