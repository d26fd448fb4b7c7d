package agronomy

import (
	"math"

	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/pkg/utils"
)

// NoLimitingFactors is reported when every stress factor is at least 0.8
const NoLimitingFactors = "No major limiting factors detected"

const limitingThreshold = 0.8

// YieldEfficiency is the Mitscherlich response to the limiting factor
func YieldEfficiency(limiting float64) float64 {
	return 1 - math.Exp(-2*limiting)
}

// PredictYield sizes expected yield from the most limiting factor
func PredictYield(s StressFactors, p domain.CropProfile) (expected float64, increase int) {
	expected = utils.RoundTo(p.Yield.Maximum*YieldEfficiency(s.Limiting()), 1)
	increase = utils.RoundInt(math.Max(0, (expected/p.Yield.Average-1)*100))
	return expected, increase
}

// LimitingFactors names every factor below the threshold
func LimitingFactors(s StressFactors) []string {
	var out []string
	if s.Water < limitingThreshold {
		out = append(out, "Water stress")
	}
	if s.Temperature < limitingThreshold {
		out = append(out, "Temperature stress")
	}
	if s.Nutrient < limitingThreshold {
		out = append(out, "Nutrient deficiency")
	}
	if s.PH < limitingThreshold {
		out = append(out, "Soil pH imbalance")
	}
	if len(out) == 0 {
		return []string{NoLimitingFactors}
	}
	return out
}

// Confidence is 85 plus up to 10 points for input quality
func Confidence(in domain.InputReading, p domain.CropProfile) int {
	criteria := []bool{
		in.Soil.OrganicMatter > 2,
		math.Abs(in.Soil.PH-p.PH.Optimal) <= 0.5,
		in.Weather.Rainfall >= 50 && in.Weather.Rainfall <= 300,
		math.Abs(in.Weather.Temperature-p.Temperature.Optimal) <= 5,
	}
	met := 0
	for _, ok := range criteria {
		if ok {
			met++
		}
	}
	return utils.RoundInt(85 + 10*float64(met)/float64(len(criteria)))
}
