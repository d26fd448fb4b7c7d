package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/pkg/utils"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org"

// WeatherService fetches current field conditions to pre-fill weather inputs
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewWeatherService creates a new weather service. An empty baseURL uses OpenWeatherMap.
func NewWeatherService(apiKey, baseURL string, logger *zap.Logger) *WeatherService {
	if baseURL == "" {
		baseURL = defaultOpenWeatherURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

// OpenWeatherResponse represents the OpenWeatherMap API response
type OpenWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// FieldConditions returns current conditions at a coordinate. Rainfall is a
// seasonal monthly estimate since the current-weather API has no monthly total.
// NaN coordinates fail the range check.
func (s *WeatherService) FieldConditions(ctx context.Context, lat, lon float64) (domain.FieldConditions, error) {
	if !(lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180) {
		return domain.FieldConditions{}, fmt.Errorf("weather: coordinates out of range: %w", domain.ErrInvalidReading)
	}

	// Return mock data if no API key
	if s.apiKey == "" {
		return s.getMockConditions(lat, lon), nil
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	endpoint := fmt.Sprintf("%s/data/2.5/weather?%s", s.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.FieldConditions{}, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("weather request failed, using seasonal estimate", zap.Error(err))
		return s.getMockConditions(lat, lon), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("weather request rejected, using seasonal estimate", zap.Int("status", resp.StatusCode))
		return s.getMockConditions(lat, lon), nil
	}

	var owResp OpenWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.FieldConditions{}, fmt.Errorf("weather: failed to decode response: %w", err)
	}

	season := seasonFor(s.now().Month(), lat)
	conditions := domain.FieldConditions{
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   owResp.Main.Temp,
		Humidity:      float64(owResp.Main.Humidity),
		Rainfall:      season.rainfall,
		SunlightHours: sunlightFromClouds(season.sunlight, owResp.Clouds.All),
		Location:      owResp.Name,
		Timestamp:     s.now(),
		IsMock:        false,
	}
	if owResp.Sys.Country != "" {
		conditions.Location = fmt.Sprintf("%s, %s", owResp.Name, owResp.Sys.Country)
	}
	if len(owResp.Weather) > 0 {
		conditions.Description = owResp.Weather[0].Description
	}

	return conditions, nil
}

type seasonNormals struct {
	temperature float64
	humidity    float64
	rainfall    float64
	sunlight    float64
	description string
}

// seasonFor returns rough temperate-climate normals, mirrored for the southern hemisphere
func seasonFor(month time.Month, lat float64) seasonNormals {
	if lat < 0 {
		month = (month+5)%12 + 1
	}

	switch {
	case month == 12 || month <= 2: // Winter
		return seasonNormals{temperature: 4, humidity: 75, rainfall: 50, sunlight: 4, description: "Overcast clouds"}
	case month <= 5: // Spring
		return seasonNormals{temperature: 15, humidity: 65, rainfall: 80, sunlight: 7, description: "Partly cloudy"}
	case month <= 8: // Summer
		return seasonNormals{temperature: 26, humidity: 60, rainfall: 100, sunlight: 10, description: "Clear sky"}
	default: // Autumn
		return seasonNormals{temperature: 13, humidity: 70, rainfall: 70, sunlight: 6, description: "Light rain"}
	}
}

// sunlightFromClouds scales clear-sky sunshine hours by cloud cover
func sunlightFromClouds(clearSky float64, cloudPct int) float64 {
	cover := utils.Clamp(float64(cloudPct)/100, 0, 1)
	return utils.RoundTo(clearSky*(1-0.7*cover), 1)
}

// getMockConditions returns seasonal normals for the coordinate
func (s *WeatherService) getMockConditions(lat, lon float64) domain.FieldConditions {
	season := seasonFor(s.now().Month(), lat)
	return domain.FieldConditions{
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   season.temperature,
		Humidity:      season.humidity,
		Rainfall:      season.rainfall,
		SunlightHours: season.sunlight,
		Description:   season.description,
		Location:      "Unknown",
		Timestamp:     s.now(),
		IsMock:        true,
	}
}
