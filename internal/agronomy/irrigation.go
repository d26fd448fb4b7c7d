package agronomy

import (
	"math"

	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/pkg/utils"
)

const (
	// BaseET is the reference daily evapotranspiration in mm
	BaseET = 5.0
	// EffectiveRainfallShare is the fraction of reported rainfall that reaches the root zone
	EffectiveRainfallShare = 0.8
	// DaysPerMonth sizes the monthly water balance
	DaysPerMonth = 30.0
	// LitersPerMMAcre is the volume of 1 mm of water spread over one acre
	LitersPerMMAcre = 4047.0

	sprinklerThreshold = 2000
	weeklyThreshold    = 800
	lowOrganicMatter   = 2.0
)

const (
	MethodSprinkler = "Sprinkler System"
	MethodDrip      = "Drip Irrigation"

	FrequencyDaily  = "Daily"
	FrequencyEvery2 = "Every 2-3 days"
	FrequencyWeekly = "Weekly"
)

// WaterBalance is the monthly crop water budget in mm
type WaterBalance struct {
	DailyETc      float64
	MonthlyNeed   float64
	EffectiveRain float64
}

// Deficit is the monthly need not covered by effective rainfall
func (b WaterBalance) Deficit() float64 {
	return math.Max(0, b.MonthlyNeed-b.EffectiveRain)
}

// SupplyRatio is actual over potential evapotranspiration
func (b WaterBalance) SupplyRatio() float64 {
	if b.MonthlyNeed <= 0 {
		return 1
	}
	return b.EffectiveRain / b.MonthlyNeed
}

// LitersPerAcre converts the monthly deficit into a daily application
// volume: liters per acre per day, the deficit spread over DaysPerMonth.
func (b WaterBalance) LitersPerAcre() int {
	return utils.RoundInt(b.Deficit() / DaysPerMonth * LitersPerMMAcre)
}

// ComputeWaterBalance applies temperature, humidity and growth-stage
// adjustments to the reference evapotranspiration.
func ComputeWaterBalance(weather domain.WeatherReading, p domain.CropProfile, stage domain.GrowthStage) WaterBalance {
	tempFactor := math.Max(0.5, 1+0.03*(weather.Temperature-p.Temperature.Optimal))
	humidityFactor := math.Max(0.5, 1+0.01*(p.Humidity.Optimal-weather.Humidity))
	daily := BaseET * tempFactor * humidityFactor * p.Coefficient(stage)
	monthly := daily * DaysPerMonth
	return WaterBalance{
		DailyETc:      daily,
		MonthlyNeed:   monthly,
		EffectiveRain: math.Min(weather.Rainfall*EffectiveRainfallShare, monthly),
	}
}

// PlanIrrigation picks method, frequency and efficiency from the volume and
// the soil's organic matter.
func PlanIrrigation(liters int, organicMatter float64, p domain.CropProfile) domain.IrrigationPlan {
	plan := domain.IrrigationPlan{
		LitersPerAcre:   liters,
		Method:          MethodDrip,
		Frequency:       FrequencyEvery2,
		Efficiency:      90,
		CriticalPeriods: append([]string(nil), p.CriticalPeriods...),
	}
	switch {
	case liters > sprinklerThreshold:
		plan.Method = MethodSprinkler
		plan.Frequency = FrequencyDaily
		plan.Efficiency = 75
	case liters < weeklyThreshold:
		plan.Frequency = FrequencyWeekly
		plan.Efficiency = 95
	}
	// Low organic matter soils hold little water.
	if organicMatter < lowOrganicMatter {
		plan.Frequency = FrequencyDaily
		plan.Efficiency -= 10
	}
	return plan
}
