package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SoilReading holds the soil test values submitted with a request
type SoilReading struct {
	PH            float64 `json:"ph" validate:"gte=0,lte=14"`
	Nitrogen      float64 `json:"nitrogen" validate:"gte=0,lte=1000"`
	Phosphorus    float64 `json:"phosphorus" validate:"gte=0,lte=1000"`
	Potassium     float64 `json:"potassium" validate:"gte=0,lte=1000"`
	OrganicMatter float64 `json:"organicMatter" validate:"gte=0,lte=100"`
}

// WeatherReading holds the field weather values submitted with a request
type WeatherReading struct {
	Temperature   float64 `json:"temperature" validate:"gte=-30,lte=60"`
	Rainfall      float64 `json:"rainfall" validate:"gte=0,lte=5000"`
	Humidity      float64 `json:"humidity" validate:"gte=0,lte=100"`
	SunlightHours float64 `json:"sunlightHours" validate:"gte=0,lte=24"`
}

// InputReading is one form submission: soil, weather and the crop key
type InputReading struct {
	Soil        SoilReading    `json:"soil"`
	Weather     WeatherReading `json:"weather"`
	CropType    string         `json:"cropType" validate:"required"`
	GrowthStage GrowthStage    `json:"growthStage,omitempty" validate:"omitempty,oneof=initial development mid late"`
}

// IrrigationPlan is the irrigation part of a recommendation
type IrrigationPlan struct {
	LitersPerAcre   int      `json:"litersPerAcre"` // per day
	Frequency       string   `json:"frequency"`
	Method          string   `json:"method"`
	Efficiency      int      `json:"efficiency"`
	CriticalPeriods []string `json:"criticalPeriods"`
}

// FertilizerPlan is the fertilizer part of a recommendation (kg per hectare)
type FertilizerPlan struct {
	Nitrogen            int      `json:"nitrogen"`
	Phosphorus          int      `json:"phosphorus"`
	Potassium           int      `json:"potassium"`
	ApplicationSchedule []string `json:"applicationSchedule"`
	Efficiency          int      `json:"efficiency"`
}

// Total returns N+P+K
func (f FertilizerPlan) Total() int {
	return f.Nitrogen + f.Phosphorus + f.Potassium
}

// YieldPrediction is the yield part of a recommendation
type YieldPrediction struct {
	ExpectedYield   float64  `json:"expectedYield"`
	YieldIncrease   int      `json:"yieldIncrease"`
	LimitingFactors []string `json:"limitingFactors"`
	Confidence      int      `json:"confidence"`
}

// RiskLevel is the overall risk category
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskAssessment holds stress percentages in [0,100] and the overall category
type RiskAssessment struct {
	WaterStress        int       `json:"waterStress"`
	NutrientDeficiency int       `json:"nutrientDeficiency"`
	ClimateRisk        int       `json:"climateRisk"`
	OverallRisk        RiskLevel `json:"overallRisk"`
}

// EconomicImpact holds the estimated percentage savings and profit gain
type EconomicImpact struct {
	CostReduction  int `json:"costReduction"`
	ProfitIncrease int `json:"profitIncrease"`
}

// RecommendationResult is the full dashboard payload for one submission
type RecommendationResult struct {
	Irrigation        IrrigationPlan  `json:"irrigation"`
	Fertilizer        FertilizerPlan  `json:"fertilizer"`
	YieldPrediction   YieldPrediction `json:"yieldPrediction"`
	RiskAssessment    RiskAssessment  `json:"riskAssessment"`
	SustainabilityTip string          `json:"sustainabilityTip"`
	EconomicImpact    EconomicImpact  `json:"economicImpact"`
}

// Source records which path produced a recommendation
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
	SourceStatic Source = "static"
)

// Recommendation pairs a result with the path that produced it
type Recommendation struct {
	Result RecommendationResult `json:"predictions"`
	Source Source               `json:"source"`
}

// RecommendationLog is one persisted history entry
type RecommendationLog struct {
	ID        uuid.UUID            `json:"id"`
	CropType  string               `json:"crop_type"`
	Input     InputReading         `json:"input"`
	Result    RecommendationResult `json:"result"`
	Source    Source               `json:"source"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewRecommendationLog stamps a history entry with a fresh ID and time
func NewRecommendationLog(in InputReading, rec Recommendation) RecommendationLog {
	return RecommendationLog{
		ID:        uuid.New(),
		CropType:  in.CropType,
		Input:     in,
		Result:    rec.Result,
		Source:    rec.Source,
		CreatedAt: time.Now().UTC(),
	}
}

// ErrInvalidReading marks input values the calculator cannot use
var ErrInvalidReading = errors.New("invalid reading")

// UnknownCropError is returned when a crop key has no reference profile
type UnknownCropError struct {
	CropType string
}

func (e *UnknownCropError) Error() string {
	return fmt.Sprintf("crop type %q not recognized", e.CropType)
}
