package agronomy

import (
	"math"

	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/pkg/utils"
)

// Stress factors live in [0,1]; 1 means the factor does not limit growth.

// StressFactors are the four growth factors combined by Liebig's law
type StressFactors struct {
	Water       float64
	Temperature float64
	Nutrient    float64
	PH          float64
}

// Limiting returns the most limiting factor value
func (s StressFactors) Limiting() float64 {
	return math.Min(math.Min(s.Water, s.Temperature), math.Min(s.Nutrient, s.PH))
}

// WaterStressFactor maps the actual/potential evapotranspiration ratio to a factor.
// Bands: >=0.8 no stress, [0.6,0.8) and [0.4,0.6) linear, below that 1.5x with a 0.3 floor.
func WaterStressFactor(ratio float64) float64 {
	switch {
	case ratio >= 0.8:
		return 1.0
	case ratio >= 0.6:
		return utils.Lerp(0.8, 1.0, (ratio-0.6)/0.2)
	case ratio >= 0.4:
		return utils.Lerp(0.6, 0.8, (ratio-0.4)/0.2)
	default:
		return math.Max(0.3, ratio*1.5)
	}
}

// TemperatureStressFactor scales by distance from the optimum inside the
// tolerated range and collapses to 0.1 outside it.
func TemperatureStressFactor(temp float64, r domain.Range) float64 {
	if !r.Contains(temp) {
		return 0.1
	}
	dev := math.Abs(temp - r.Optimal)
	return math.Max(0.5, 1-dev/r.Span())
}

// PHStressFactor buckets the deviation from the optimal pH
func PHStressFactor(ph float64, r domain.Range) float64 {
	dev := math.Abs(ph - r.Optimal)
	switch {
	case dev <= 0.5:
		return 1.0
	case dev <= 1.0:
		return 0.8
	case dev <= 1.5:
		return 0.6
	default:
		return 0.4
	}
}

// NutrientStressFactor rates one plant-available nutrient amount against its range
func NutrientStressFactor(available float64, r domain.Range) float64 {
	switch {
	case available < r.Min:
		return math.Max(0.3, available/r.Min)
	case available > r.Max:
		return math.Max(0.4, 1-(available-r.Max)/r.Max)
	default:
		return math.Max(0.7, 1-0.3*math.Abs(available-r.Optimal)/r.Optimal)
	}
}
