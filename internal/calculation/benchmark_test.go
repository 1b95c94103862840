package calculation

import (
	"testing"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBenchmarks_SecondLowestSilver(t *testing.T) {
	adjusted := adjust(
		silverPlan("S1", "400"),
		silverPlan("S2", "450"),
		silverPlan("S3", "500"),
		testPlan("B1", domain.MetalBronze, "Standard Bronze On Exchange Plan", "100"),
		testPlan("S4", domain.MetalSilver, "Zero Cost Sharing Plan Variation", "50"),
	)

	benchmarks, err := ComputeBenchmarks(adjusted)
	require.NoError(t, err)
	require.Len(t, benchmarks, 1)

	b := benchmarks[0]
	assert.Equal(t, domain.BenchmarkKey{Age: "40", StateCode: "CA", RatingAreaID: "1"}, b.Key)
	assert.True(t, b.IndividualRateBenchmark.Equal(d("450")), "got %s", b.IndividualRateBenchmark)
	assert.True(t, b.IndividualRateNewBenchmark.Equal(d("450")))
}

func TestComputeBenchmarks_SinglePlanGroup(t *testing.T) {
	benchmarks, err := ComputeBenchmarks(adjust(silverPlan("S1", "410.25")))
	require.NoError(t, err)
	require.Len(t, benchmarks, 1)
	assert.True(t, benchmarks[0].IndividualRateBenchmark.Equal(d("410.25")))
}

func TestComputeBenchmarks_NewRatesReducedIndependently(t *testing.T) {
	cheap := silverPlan("S1", "400")
	pricey := silverPlan("S2", "450")
	pricey.Issuer = "Other Insurer"
	third := silverPlan("S3", "470")
	third.Issuer = "Third Insurer"

	// A 20% cut on the priciest issuer reorders the new rates: 400, 376, 450.
	changes := []domain.RateChange{{RateChangeKey: third.RateChangeKey(), Percentage: d("-20")}}
	adjusted := ApplyRateChanges([]domain.Plan{cheap, pricey, third}, changes)

	benchmarks, err := ComputeBenchmarks(adjusted)
	require.NoError(t, err)
	require.Len(t, benchmarks, 1)
	assert.True(t, benchmarks[0].IndividualRateBenchmark.Equal(d("450")))
	assert.True(t, benchmarks[0].IndividualRateNewBenchmark.Equal(d("400")), "got %s", benchmarks[0].IndividualRateNewBenchmark)
}

func TestComputeBenchmarks_GroupsByAgeStateArea(t *testing.T) {
	a := silverPlan("S1", "400")
	b := silverPlan("S2", "300")
	b.Age = "41"
	c := silverPlan("S3", "200")
	c.RatingAreaID = "2"

	benchmarks, err := ComputeBenchmarks(adjust(a, b, c))
	require.NoError(t, err)
	require.Len(t, benchmarks, 3)
	assert.Equal(t, "40", benchmarks[0].Key.Age)
	assert.Equal(t, "41", benchmarks[1].Key.Age)
	assert.Equal(t, "2", benchmarks[2].Key.RatingAreaID)
}

func TestJoinBenchmarks_DropsPlansWithoutBenchmark(t *testing.T) {
	covered := testPlan("G1", domain.MetalGold, "Standard Gold On Exchange Plan", "500")
	uncovered := testPlan("G2", domain.MetalGold, "Standard Gold On Exchange Plan", "520")
	uncovered.RatingAreaID = "9"

	adjusted := adjust(silverPlan("S1", "400"), covered, uncovered)
	benchmarks, err := ComputeBenchmarks(adjusted)
	require.NoError(t, err)

	joined := JoinBenchmarks(adjusted, benchmarks)

	require.Len(t, joined, 2, "plan in rating area 9 has no benchmark and must be dropped")
	assert.Equal(t, "S1", joined[0].PlanID)
	assert.Equal(t, "G1", joined[1].PlanID)
	assert.True(t, joined[1].IndividualRateBenchmark.Equal(d("400")))
}

func TestJoinBenchmarks_NoSilverAtAll(t *testing.T) {
	adjusted := adjust(testPlan("B1", domain.MetalBronze, "Standard Bronze On Exchange Plan", "100"))
	benchmarks, err := ComputeBenchmarks(adjusted)
	require.NoError(t, err)
	assert.Empty(t, benchmarks)
	assert.Empty(t, JoinBenchmarks(adjusted, benchmarks))
}

func TestStripBenchmarks_AllowsRebenchmarking(t *testing.T) {
	adjusted := adjust(silverPlan("S1", "400"), silverPlan("S2", "450"))
	benchmarks, err := ComputeBenchmarks(adjusted)
	require.NoError(t, err)
	first := JoinBenchmarks(adjusted, benchmarks)

	stripped := StripBenchmarks(first)
	require.Len(t, stripped, 2)

	again, err := ComputeBenchmarks(stripped)
	require.NoError(t, err)
	second := JoinBenchmarks(stripped, again)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].IndividualRateBenchmark.Equal(second[i].IndividualRateBenchmark))
	}
}
