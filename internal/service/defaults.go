package service

import (
	"github.com/cropadvisor/backend/internal/agronomy"
	"github.com/cropadvisor/backend/internal/domain"
)

// StaticRecommendation is the fixed result served when the fallback mode is
// static. It carries the given tip.
func StaticRecommendation(tip string) domain.RecommendationResult {
	return domain.RecommendationResult{
		Irrigation: domain.IrrigationPlan{
			LitersPerAcre:   1000,
			Frequency:       agronomy.FrequencyEvery2,
			Method:          agronomy.MethodDrip,
			Efficiency:      85,
			CriticalPeriods: []string{"Flowering stage"},
		},
		Fertilizer: domain.FertilizerPlan{
			Nitrogen:            100,
			Phosphorus:          50,
			Potassium:           60,
			ApplicationSchedule: []string{"Split application recommended"},
			Efficiency:          80,
		},
		YieldPrediction: domain.YieldPrediction{
			ExpectedYield:   3.5,
			YieldIncrease:   15,
			LimitingFactors: []string{"Model prediction unavailable"},
			Confidence:      70,
		},
		RiskAssessment: domain.RiskAssessment{
			OverallRisk:        domain.RiskMedium,
			WaterStress:        30,
			NutrientDeficiency: 30,
			ClimateRisk:        30,
		},
		SustainabilityTip: tip,
		EconomicImpact: domain.EconomicImpact{
			CostReduction:  15,
			ProfitIncrease: 12,
		},
	}
}
