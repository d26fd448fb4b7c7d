package agronomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cropadvisor/backend/internal/domain"
)

func TestWaterStressFactor(t *testing.T) {
	testCases := []struct {
		ratio    float64
		expected float64
	}{
		{1.5, 1.0},
		{0.8, 1.0},
		{0.7, 0.9},
		{0.6, 0.8},
		{0.5, 0.7},
		{0.4, 0.6},
		{0.3, 0.45},
		{0.1, 0.3},
		{0, 0.3},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, WaterStressFactor(tc.ratio), 1e-9, "ratio %v", tc.ratio)
	}
}

func TestWaterStressFactor_ExactBoundaries(t *testing.T) {
	assert.Equal(t, 1.0, WaterStressFactor(0.8))
	assert.Equal(t, 0.8, WaterStressFactor(0.6))
}

func TestTemperatureStressFactor(t *testing.T) {
	r := domain.Range{Min: 20, Optimal: 27, Max: 35}

	assert.Equal(t, 1.0, TemperatureStressFactor(27, r))
	assert.Equal(t, 0.875, TemperatureStressFactor(28, r))
	assert.Equal(t, 0.5, TemperatureStressFactor(35, r))
	assert.Equal(t, 0.5, TemperatureStressFactor(20, r))
	assert.Equal(t, 0.1, TemperatureStressFactor(19.9, r))
	assert.Equal(t, 0.1, TemperatureStressFactor(40, r))
}

func TestPHStressFactor(t *testing.T) {
	r := domain.Range{Min: 5, Optimal: 6, Max: 7}

	assert.Equal(t, 1.0, PHStressFactor(6.5, r))
	assert.Equal(t, 0.8, PHStressFactor(5.0, r))
	assert.Equal(t, 0.6, PHStressFactor(7.5, r))
	assert.Equal(t, 0.4, PHStressFactor(8.0, r))
}

func TestNutrientStressFactor(t *testing.T) {
	r := domain.Range{Min: 80, Optimal: 120, Max: 160}

	assert.Equal(t, 1.0, NutrientStressFactor(120, r))
	assert.InDelta(t, 0.5, NutrientStressFactor(40, r), 1e-9)
	assert.InDelta(t, 0.3, NutrientStressFactor(10, r), 1e-9)
	assert.InDelta(t, 0.75, NutrientStressFactor(200, r), 1e-9)
	assert.InDelta(t, 0.4, NutrientStressFactor(400, r), 1e-9)
	assert.InDelta(t, 0.9, NutrientStressFactor(80, r), 1e-9)
}

func TestAvailableNutrients(t *testing.T) {
	neutral := AvailableNutrients(domain.SoilReading{PH: 6.5, Nitrogen: 100, Phosphorus: 50, Potassium: 40, OrganicMatter: 0})
	assert.InDelta(t, 100, neutral.Nitrogen, 1e-9)
	assert.InDelta(t, 50, neutral.Phosphorus, 1e-9)
	assert.InDelta(t, 40, neutral.Potassium, 1e-9)

	acid := AvailableNutrients(domain.SoilReading{PH: 5.0, Nitrogen: 100, Phosphorus: 50, Potassium: 40, OrganicMatter: 5})
	assert.InDelta(t, 100*0.775+10, acid.Nitrogen, 1e-9)
	assert.InDelta(t, 50*0.75*1.1, acid.Phosphorus, 1e-9)
	assert.InDelta(t, 40*0.9, acid.Potassium, 1e-9)

	extreme := AvailableNutrients(domain.SoilReading{PH: 2.0, Nitrogen: 100, Phosphorus: 100, Potassium: 100})
	assert.InDelta(t, 60, extreme.Nitrogen, 1e-9)
	assert.InDelta(t, 50, extreme.Phosphorus, 1e-9)
	assert.InDelta(t, 70, extreme.Potassium, 1e-9)
}

func TestRiskCategory(t *testing.T) {
	assert.Equal(t, domain.RiskLow, RiskCategory(0))
	assert.Equal(t, domain.RiskLow, RiskCategory(0.3))
	assert.Equal(t, domain.RiskMedium, RiskCategory(0.31))
	assert.Equal(t, domain.RiskMedium, RiskCategory(0.6))
	assert.Equal(t, domain.RiskHigh, RiskCategory(0.61))
}

func TestLimitingFactors(t *testing.T) {
	assert.Equal(t, []string{NoLimitingFactors}, LimitingFactors(StressFactors{1, 0.8, 0.9, 1}))
	assert.Equal(t,
		[]string{"Water stress", "Soil pH imbalance"},
		LimitingFactors(StressFactors{Water: 0.3, Temperature: 1, Nutrient: 1, PH: 0.6}))
}

func TestYieldEfficiency(t *testing.T) {
	assert.InDelta(t, 0.8647, YieldEfficiency(1), 1e-4)
	assert.Equal(t, 0.0, YieldEfficiency(0))
}
