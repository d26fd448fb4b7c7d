package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropadvisor/backend/internal/domain"
)

func fixedClock(month time.Month) func() time.Time {
	return func() time.Time { return time.Date(2024, month, 15, 12, 0, 0, 0, time.UTC) }
}

func TestFieldConditions_MockWithoutKey(t *testing.T) {
	s := NewWeatherService("", "", nil)
	s.now = fixedClock(time.July)

	north, err := s.FieldConditions(context.Background(), 43.2, 76.9)
	require.NoError(t, err)
	assert.True(t, north.IsMock)
	assert.Equal(t, 26.0, north.Temperature)
	assert.Equal(t, 100.0, north.Rainfall)

	south, err := s.FieldConditions(context.Background(), -33.9, 18.4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, south.Temperature, "July is winter in the southern hemisphere")
}

func TestFieldConditions_OpenWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"main": {"temp": 31.5, "humidity": 72},
			"weather": [{"description": "scattered clouds"}],
			"clouds": {"all": 50},
			"name": "Ludhiana",
			"sys": {"country": "IN"}
		}`))
	}))
	defer srv.Close()

	s := NewWeatherService("secret", srv.URL, nil)
	s.now = fixedClock(time.June)

	c, err := s.FieldConditions(context.Background(), 30.9, 75.85)
	require.NoError(t, err)
	assert.False(t, c.IsMock)
	assert.Equal(t, 31.5, c.Temperature)
	assert.Equal(t, 72.0, c.Humidity)
	assert.Equal(t, "Ludhiana, IN", c.Location)
	assert.Equal(t, "scattered clouds", c.Description)
	assert.Equal(t, 6.5, c.SunlightHours)

	reading := c.Reading()
	assert.Equal(t, c.Rainfall, reading.Rainfall)
	assert.Equal(t, c.SunlightHours, reading.SunlightHours)
}

func TestFieldConditions_UpstreamErrorFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewWeatherService("bad-key", srv.URL, nil)
	c, err := s.FieldConditions(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.True(t, c.IsMock)
}

func TestFieldConditions_RejectsBadCoordinates(t *testing.T) {
	s := NewWeatherService("", "", nil)
	for _, c := range [][2]float64{{91, 0}, {0, -181}, {math.NaN(), 10}, {10, math.NaN()}, {math.Inf(1), 0}} {
		_, err := s.FieldConditions(context.Background(), c[0], c[1])
		assert.True(t, errors.Is(err, domain.ErrInvalidReading), "lat=%v lon=%v", c[0], c[1])
	}
}
