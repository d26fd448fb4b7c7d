package domain

import "time"

// FieldConditions is a current-weather snapshot used to pre-fill weather inputs
type FieldConditions struct {
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lon"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Rainfall      float64   `json:"rainfall"`
	SunlightHours float64   `json:"sunlightHours"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Timestamp     time.Time `json:"timestamp"`
	IsMock        bool      `json:"is_mock"`
}

// Reading converts the snapshot into a WeatherReading for the calculator
func (c FieldConditions) Reading() WeatherReading {
	return WeatherReading{
		Temperature:   c.Temperature,
		Rainfall:      c.Rainfall,
		Humidity:      c.Humidity,
		SunlightHours: c.SunlightHours,
	}
}
