package calculation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.False(t, engine.Debug)
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, logging.NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestCalculationEngine_Run_EndToEnd(t *testing.T) {
	engine := NewCalculationEngine()

	plans := []domain.Plan{
		silverPlan("S1", "400"),
		silverPlan("S2", "450"),
		testPlan("B1", domain.MetalBronze, "Standard Bronze On Exchange Plan", "300"),
	}

	result, err := engine.Run(plans, nil, []domain.MetalLevel{domain.MetalBronze})
	require.NoError(t, err)

	require.Len(t, result.Benchmarks, 1)
	assert.True(t, result.Benchmarks[0].IndividualRateBenchmark.Equal(d("450")))
	require.Len(t, result.Rows, 28, "only the bronze plan survives the metal filter")
	assert.Equal(t, 3, result.PlansIn)
	assert.Zero(t, result.PlansWithoutBenchmark)

	row := findIncome(t, result.Rows, "3.0")
	assert.Equal(t, "B1", row.PlanID)
	assert.True(t, row.MaxMonthlyRate.Equal(d("202.5")))
	assert.True(t, row.Subsidy.Equal(d("247.5")))
	assert.True(t, row.NetMonthlyRate.Equal(d("52.5")))
	// No rate changes: the new columns mirror the current ones.
	assert.True(t, row.IndividualRateNew.Equal(row.IndividualRate))
	assert.True(t, row.NetMonthlyRateNew.Equal(row.NetMonthlyRate))
}

func TestCalculationEngine_Run_WithRateChange(t *testing.T) {
	engine := NewCalculationEngine()

	bronze := testPlan("B1", domain.MetalBronze, "Standard Bronze On Exchange Plan", "300")
	plans := []domain.Plan{silverPlan("S1", "400"), silverPlan("S2", "450"), bronze}
	changes := []domain.RateChange{
		{RateChangeKey: bronze.RateChangeKey(), Percentage: d("10")},
		{RateChangeKey: silverPlan("S1", "0").RateChangeKey(), Percentage: d("10")},
	}

	result, err := engine.Run(plans, changes, nil)
	require.NoError(t, err)

	require.Len(t, result.Benchmarks, 1)
	assert.True(t, result.Benchmarks[0].IndividualRateNewBenchmark.Equal(d("495")), "got %s", result.Benchmarks[0].IndividualRateNewBenchmark)
	require.Len(t, result.Rows, 3*28)

	var bronzeRow *domain.SubsidyRow
	for i := range result.Rows {
		if result.Rows[i].PlanID == "B1" && result.Rows[i].Income.Equal(d("3.0")) {
			bronzeRow = &result.Rows[i]
		}
	}
	require.NotNil(t, bronzeRow)
	assert.True(t, bronzeRow.IndividualRateNew.Equal(d("330")))
	assert.True(t, bronzeRow.SubsidyNew.Equal(d("292.5")))
	assert.True(t, bronzeRow.NetMonthlyRateNew.Equal(d("37.5")))
}

func TestCalculationEngine_Run_SingleSilverDegrades(t *testing.T) {
	engine := NewCalculationEngine()

	result, err := engine.Run([]domain.Plan{silverPlan("S1", "380")}, nil, nil)
	require.NoError(t, err)

	require.Len(t, result.Benchmarks, 1)
	assert.True(t, result.Benchmarks[0].IndividualRateBenchmark.Equal(d("380")))
	assert.Len(t, result.Rows, 28)
}

func TestCalculationEngine_Run_DropsPlansWithoutBenchmark(t *testing.T) {
	engine := NewCalculationEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	orphan := testPlan("G1", domain.MetalGold, "Standard Gold On Exchange Plan", "600")
	orphan.RatingAreaID = "7"

	result, err := engine.Run([]domain.Plan{silverPlan("S1", "400"), orphan}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PlansWithoutBenchmark)
	assert.Len(t, result.Rows, 28)
	for _, row := range result.Rows {
		assert.NotEqual(t, "G1", row.PlanID)
	}
	assert.True(t, logger.contains("INFO: 1 of 2 plans have no silver benchmark"), "messages: %v", logger.messages)
}

func TestCalculationEngine_Run_NetRatesNeverNegative(t *testing.T) {
	engine := NewCalculationEngine()

	plans := []domain.Plan{
		silverPlan("S1", "700"),
		silverPlan("S2", "720"),
		testPlan("B1", domain.MetalBronze, "Standard Bronze On Exchange Plan", "150"),
		testPlan("C1", domain.MetalCatastrophic, "Standard Catastrophic On Exchange Plan", "90"),
	}

	result, err := engine.Run(plans, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 4*28)

	for _, row := range result.Rows {
		assert.False(t, row.NetMonthlyRate.IsNegative(), "%s at %s", row.PlanID, row.Income)
		assert.False(t, row.NetMonthlyRateNew.IsNegative(), "%s at %s", row.PlanID, row.Income)
		assert.False(t, row.Subsidy.IsNegative())
	}
}

func TestCalculationEngine_Run_EmptyInput(t *testing.T) {
	engine := NewCalculationEngine()

	result, err := engine.Run(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Benchmarks)
}

func TestCalculationEngine_Run_DebugLogsBenchmarks(t *testing.T) {
	engine := NewCalculationEngine()
	engine.Debug = true
	logger := &TestLogger{}
	engine.SetLogger(logger)

	_, err := engine.Run([]domain.Plan{silverPlan("S1", "400"), silverPlan("S2", "450")}, nil, nil)
	require.NoError(t, err)

	assert.True(t, logger.contains("DEBUG: benchmark CA/1 age 40: 450.00 -> 450.00"), "messages: %v", logger.messages)
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) contains(prefix string) bool {
	for _, m := range tl.messages {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}
