package agronomy

import (
	"math"

	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/pkg/utils"
)

// AssessRisk scores water, nutrient and climate risk in [0,1] and
// categorises their mean.
func AssessRisk(in domain.InputReading, avail NutrientLevels, p domain.CropProfile) domain.RiskAssessment {
	water := 1 - math.Min(1, in.Weather.Rainfall/(p.WaterRequirement/10))

	nutrient := math.Max(shortfall(avail.Nitrogen, p.Nitrogen),
		math.Max(shortfall(avail.Phosphorus, p.Phosphorus), shortfall(avail.Potassium, p.Potassium)))

	tempDev := math.Min(1, math.Abs(in.Weather.Temperature-p.Temperature.Optimal)/p.Temperature.Span())
	humDev := math.Min(1, math.Abs(in.Weather.Humidity-p.Humidity.Optimal)/p.Humidity.Span())
	climate := utils.Mean(tempDev, humDev)

	return domain.RiskAssessment{
		WaterStress:        utils.Percent(water),
		NutrientDeficiency: utils.Percent(nutrient),
		ClimateRisk:        utils.Percent(climate),
		OverallRisk:        RiskCategory(utils.Mean(water, nutrient, climate)),
	}
}

// RiskCategory maps an averaged risk score to Low, Medium or High
func RiskCategory(score float64) domain.RiskLevel {
	switch {
	case score > 0.6:
		return domain.RiskHigh
	case score > 0.3:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// EstimateEconomics derives savings from the irrigation and fertilizer plans
func EstimateEconomics(irr domain.IrrigationPlan, fert domain.FertilizerPlan, yieldIncrease int, p domain.CropProfile) domain.EconomicImpact {
	waterSaving := 5.0
	if float64(irr.LitersPerAcre) < 4*p.WaterRequirement {
		waterSaving = 15
	}
	fertilizerSaving := 10.0
	if float64(fert.Total()) < 1.2*p.OptimalNutrientTotal() {
		fertilizerSaving = 20
	}
	return domain.EconomicImpact{
		CostReduction:  utils.RoundInt(utils.Mean(waterSaving, fertilizerSaving)),
		ProfitIncrease: utils.RoundInt(math.Max(0, float64(yieldIncrease)*0.8)),
	}
}
