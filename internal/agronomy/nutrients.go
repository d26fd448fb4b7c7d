package agronomy

import (
	"math"

	"github.com/cropadvisor/backend/internal/domain"
)

// NutrientLevels holds N, P and K amounts in kg/ha
type NutrientLevels struct {
	Nitrogen   float64
	Phosphorus float64
	Potassium  float64
}

// AvailableNutrients adjusts raw soil test values for pH and organic matter.
// Nitrogen favours pH above 6.5 and gains from mineralised organic matter,
// phosphorus is most available between 6.0 and 7.0, potassium above 6.0.
func AvailableNutrients(soil domain.SoilReading) NutrientLevels {
	return NutrientLevels{
		Nitrogen:   soil.Nitrogen*nitrogenPHFactor(soil.PH) + 2*soil.OrganicMatter,
		Phosphorus: soil.Phosphorus * phosphorusPHFactor(soil.PH) * (1 + 0.02*soil.OrganicMatter),
		Potassium:  soil.Potassium * potassiumPHFactor(soil.PH),
	}
}

func nitrogenPHFactor(ph float64) float64 {
	if ph >= 6.5 {
		return 1.0
	}
	return math.Max(0.6, 1-0.15*(6.5-ph))
}

func phosphorusPHFactor(ph float64) float64 {
	var dist float64
	switch {
	case ph < 6.0:
		dist = 6.0 - ph
	case ph > 7.0:
		dist = ph - 7.0
	default:
		return 1.0
	}
	return math.Max(0.5, 1-0.25*dist)
}

func potassiumPHFactor(ph float64) float64 {
	if ph >= 6.0 {
		return 1.0
	}
	return math.Max(0.7, 1-0.1*(6.0-ph))
}

// nutrientStress is the Liebig minimum over the three nutrient factors
func nutrientStress(avail NutrientLevels, p domain.CropProfile) float64 {
	n := NutrientStressFactor(avail.Nitrogen, p.Nitrogen)
	ph := NutrientStressFactor(avail.Phosphorus, p.Phosphorus)
	k := NutrientStressFactor(avail.Potassium, p.Potassium)
	return math.Min(n, math.Min(ph, k))
}

// shortfall returns the relative deficit of an available amount, 0 when met
func shortfall(available float64, r domain.Range) float64 {
	return math.Max(0, (r.Optimal-available)/r.Optimal)
}
