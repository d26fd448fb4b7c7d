package domain

// GrowthStage identifies the phenological stage used to pick a crop coefficient
type GrowthStage string

const (
	StageInitial     GrowthStage = "initial"
	StageDevelopment GrowthStage = "development"
	StageMid         GrowthStage = "mid"
	StageLate        GrowthStage = "late"
)

// DefaultGrowthStage is the peak-demand stage used when the caller sends none
const DefaultGrowthStage = StageMid

// Range is an optimal value bounded by a tolerated minimum and maximum
type Range struct {
	Min     float64 `json:"min" yaml:"min"`
	Optimal float64 `json:"optimal" yaml:"optimal"`
	Max     float64 `json:"max" yaml:"max"`
}

// Span returns the wider of the two half-ranges around the optimum
func (r Range) Span() float64 {
	lower := r.Optimal - r.Min
	upper := r.Max - r.Optimal
	if upper > lower {
		return upper
	}
	return lower
}

// Contains reports whether v lies within [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// YieldPotential holds average and attainable yield in tons per hectare
type YieldPotential struct {
	Average float64 `json:"average" yaml:"average"`
	Maximum float64 `json:"maximum" yaml:"maximum"`
}

// CropProfile is the static reference record for one crop.
// Profiles are loaded once at startup and never mutated.
type CropProfile struct {
	Name              string                  `json:"name" yaml:"name"`
	WaterRequirement  float64                 `json:"water_requirement_mm" yaml:"water_requirement"`
	StageCoefficients map[GrowthStage]float64 `json:"stage_coefficients" yaml:"stage_coefficients"`
	Nitrogen          Range                   `json:"nitrogen" yaml:"nitrogen"`
	Phosphorus        Range                   `json:"phosphorus" yaml:"phosphorus"`
	Potassium         Range                   `json:"potassium" yaml:"potassium"`
	PH                Range                   `json:"ph" yaml:"ph"`
	OrganicMatter     float64                 `json:"organic_matter_pct" yaml:"organic_matter"`
	Temperature       Range                   `json:"temperature" yaml:"temperature"`
	Humidity          Range                   `json:"humidity" yaml:"humidity"`
	Sunlight          Range                   `json:"sunlight_hours" yaml:"sunlight"`
	Yield             YieldPotential          `json:"yield" yaml:"yield"`
	CriticalPeriods   []string                `json:"critical_periods" yaml:"critical_periods"`
}

// Coefficient returns the crop coefficient for a stage, falling back to mid-season
func (p CropProfile) Coefficient(stage GrowthStage) float64 {
	if kc, ok := p.StageCoefficients[stage]; ok {
		return kc
	}
	return p.StageCoefficients[DefaultGrowthStage]
}

// OptimalNutrientTotal is the sum of optimal N, P and K
func (p CropProfile) OptimalNutrientTotal() float64 {
	return p.Nitrogen.Optimal + p.Phosphorus.Optimal + p.Potassium.Optimal
}
