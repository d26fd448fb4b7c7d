package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all HTTP routes. A nil gatherer serves the default registry.
func SetupRoutes(app *fiber.App, handler *Handler, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Health check
	app.Get("/health", handler.HealthCheck)

	// Prometheus exposition
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Catalog endpoints
		api.Get("/crops", handler.GetCrops)
		api.Get("/model-info", handler.GetModelInfo)

		// Recommendation endpoints
		api.Post("/predict", handler.Predict)
		api.Post("/batch-predict", handler.BatchPredict)
		api.Get("/recommendations", handler.GetRecommendations)

		// Field conditions for pre-filling weather inputs
		api.Get("/weather", handler.GetWeather)
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
