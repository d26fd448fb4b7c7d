// Package agronomy implements the rule-based recommendation calculator.
//
// Compute is a pure function of the input and the matching crop profile;
// the only nondeterminism is the sustainability tip, drawn from an
// injectable RandomSource.
package agronomy

import (
	"fmt"
	"math"

	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/pkg/utils"
)

// Version identifies the calculator rules served by model-info
const Version = "1.0.0"

// Calculator computes recommendations from the crop catalog
type Calculator struct {
	catalog *Catalog
	tips    *TipLibrary
	rnd     RandomSource
}

// NewCalculator creates a calculator. A nil rnd uses a runtime-seeded source.
func NewCalculator(catalog *Catalog, tips *TipLibrary, rnd RandomSource) *Calculator {
	if rnd == nil {
		rnd = NewRandomSource()
	}
	return &Calculator{catalog: catalog, tips: tips, rnd: rnd}
}

// NewDefaultCalculator builds a calculator over the embedded crop and tip tables
func NewDefaultCalculator(rnd RandomSource) (*Calculator, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	tips, err := DefaultTips()
	if err != nil {
		return nil, err
	}
	return NewCalculator(catalog, tips, rnd), nil
}

// Catalog exposes the crop table
func (c *Calculator) Catalog() *Catalog {
	return c.catalog
}

// Tips exposes the tip library
func (c *Calculator) Tips() *TipLibrary {
	return c.tips
}

// Compute returns the recommendation for one reading, or an
// *domain.UnknownCropError when the crop has no profile.
func (c *Calculator) Compute(in domain.InputReading) (domain.RecommendationResult, error) {
	profile, err := c.catalog.Lookup(in.CropType)
	if err != nil {
		return domain.RecommendationResult{}, err
	}
	if err := checkFinite(in); err != nil {
		return domain.RecommendationResult{}, err
	}

	stage := in.GrowthStage
	if stage == "" {
		stage = domain.DefaultGrowthStage
	}

	balance := ComputeWaterBalance(in.Weather, profile, stage)
	avail := AvailableNutrients(in.Soil)

	stress := StressFactors{
		Water:       WaterStressFactor(balance.SupplyRatio()),
		Temperature: TemperatureStressFactor(in.Weather.Temperature, profile.Temperature),
		Nutrient:    nutrientStress(avail, profile),
		PH:          PHStressFactor(in.Soil.PH, profile.PH),
	}

	irrigation := PlanIrrigation(balance.LitersPerAcre(), in.Soil.OrganicMatter, profile)
	fertilizer := PlanFertilizer(avail, stress.PH, profile)

	expected, increase := PredictYield(stress, profile)

	return domain.RecommendationResult{
		Irrigation: irrigation,
		Fertilizer: fertilizer,
		YieldPrediction: domain.YieldPrediction{
			ExpectedYield:   expected,
			YieldIncrease:   increase,
			LimitingFactors: LimitingFactors(stress),
			Confidence:      Confidence(in, profile),
		},
		RiskAssessment:    AssessRisk(in, avail, profile),
		SustainabilityTip: c.tips.Pick(profile.Name, c.rnd),
		EconomicImpact:    EstimateEconomics(irrigation, fertilizer, increase, profile),
	}, nil
}

// PlanFertilizer sizes the N, P and K deficits, inflated when pH limits uptake
func PlanFertilizer(avail NutrientLevels, phFactor float64, p domain.CropProfile) domain.FertilizerPlan {
	scale := 2 - phFactor
	size := func(available float64, r domain.Range) int {
		return utils.RoundInt(math.Max(0, r.Optimal-available) * scale)
	}
	plan := domain.FertilizerPlan{
		Nitrogen:   size(avail.Nitrogen, p.Nitrogen),
		Phosphorus: size(avail.Phosphorus, p.Phosphorus),
		Potassium:  size(avail.Potassium, p.Potassium),
		Efficiency: utils.RoundInt(60 + 30*phFactor),
	}
	if plan.Nitrogen == 0 {
		plan.ApplicationSchedule = []string{"Maintenance dose only at planting"}
	} else {
		plan.ApplicationSchedule = []string{
			"25% at planting",
			"50% at vegetative stage",
			"25% at flowering",
		}
	}
	return plan
}

func checkFinite(in domain.InputReading) error {
	values := map[string]float64{
		"soil.ph":               in.Soil.PH,
		"soil.nitrogen":         in.Soil.Nitrogen,
		"soil.phosphorus":       in.Soil.Phosphorus,
		"soil.potassium":        in.Soil.Potassium,
		"soil.organicMatter":    in.Soil.OrganicMatter,
		"weather.temperature":   in.Weather.Temperature,
		"weather.rainfall":      in.Weather.Rainfall,
		"weather.humidity":      in.Weather.Humidity,
		"weather.sunlightHours": in.Weather.SunlightHours,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("agronomy: %s is not a finite number: %w", name, domain.ErrInvalidReading)
		}
	}
	return nil
}
