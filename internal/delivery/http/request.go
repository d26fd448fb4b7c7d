package http

import "github.com/cropadvisor/backend/internal/domain"

// readingPayload is the wire form of domain.InputReading. Pointer fields let
// an omitted value be told apart from an explicit zero.
type readingPayload struct {
	Soil        *soilPayload       `json:"soil" validate:"required"`
	Weather     *weatherPayload    `json:"weather" validate:"required"`
	CropType    string             `json:"cropType"`
	GrowthStage domain.GrowthStage `json:"growthStage,omitempty"`
}

type soilPayload struct {
	PH            *float64 `json:"ph" validate:"required"`
	Nitrogen      *float64 `json:"nitrogen" validate:"required"`
	Phosphorus    *float64 `json:"phosphorus" validate:"required"`
	Potassium     *float64 `json:"potassium" validate:"required"`
	OrganicMatter *float64 `json:"organicMatter" validate:"required"`
}

type weatherPayload struct {
	Temperature   *float64 `json:"temperature" validate:"required"`
	Rainfall      *float64 `json:"rainfall" validate:"required"`
	Humidity      *float64 `json:"humidity" validate:"required"`
	SunlightHours *float64 `json:"sunlightHours" validate:"required"`
}

// BatchRequest is the body of the batch prediction endpoint
type BatchRequest struct {
	Inputs []readingPayload `json:"inputs"`
}

// reading converts the payload; missing values read as zero
func (p readingPayload) reading() domain.InputReading {
	in := domain.InputReading{CropType: p.CropType, GrowthStage: p.GrowthStage}
	if s := p.Soil; s != nil {
		in.Soil = domain.SoilReading{
			PH:            deref(s.PH),
			Nitrogen:      deref(s.Nitrogen),
			Phosphorus:    deref(s.Phosphorus),
			Potassium:     deref(s.Potassium),
			OrganicMatter: deref(s.OrganicMatter),
		}
	}
	if w := p.Weather; w != nil {
		in.Weather = domain.WeatherReading{
			Temperature:   deref(w.Temperature),
			Rainfall:      deref(w.Rainfall),
			Humidity:      deref(w.Humidity),
			SunlightHours: deref(w.SunlightHours),
		}
	}
	return in
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
