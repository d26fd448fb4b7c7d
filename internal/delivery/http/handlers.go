package http

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cropadvisor/backend/internal/agronomy"
	"github.com/cropadvisor/backend/internal/domain"
	"github.com/cropadvisor/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	predictionSvc *service.PredictionService
	historySvc    *service.HistoryService
	weatherSvc    *service.WeatherService
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(
	predictionSvc *service.PredictionService,
	historySvc *service.HistoryService,
	weatherSvc *service.WeatherService,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		predictionSvc: predictionSvc,
		historySvc:    historySvc,
		weatherSvc:    weatherSvc,
		validate:      newValidator(),
		logger:        logger,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx := c.UserContext()

	database := "ok"
	if err := h.historySvc.Health(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		database = "unavailable"
	}

	remote := "disabled"
	if health, err := h.predictionSvc.RemoteHealth(ctx); err == nil {
		remote = "not ready"
		if health.Ready() {
			remote = "ready"
		}
	} else {
		var rerr *service.RemoteError
		if !errors.As(err, &rerr) || rerr.Reason != service.ReasonDisabled {
			remote = "unreachable"
		}
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "cropadvisor-backend",
		"version":  agronomy.Version,
		"database": database,
		"remote":   remote,
	})
}

// GetCrops returns the supported crop keys
func (h *Handler) GetCrops(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.predictionSvc.Crops(),
	})
}

// GetModelInfo returns calculator metadata
func (h *Handler) GetModelInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.predictionSvc.ModelInfo(c.UserContext()),
	})
}

// Predict validates one reading and returns its recommendation
func (h *Handler) Predict(c *fiber.Ctx) error {
	var req readingPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	in, err := h.decode(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rec, err := h.predictionSvc.Predict(c.UserContext(), in)
	if err != nil {
		return h.predictionError(err)
	}

	// Log recommendation to the history store asynchronously
	h.historySvc.RecordAsync(in, rec)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rec,
	})
}

// BatchPredict predicts up to service.MaxBatchSize readings, each independently
func (h *Handler) BatchPredict(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	readings := make([]domain.InputReading, len(req.Inputs))
	for i, p := range req.Inputs {
		readings[i] = p.reading()
	}
	check := func(i int, _ domain.InputReading) error {
		_, err := h.decode(req.Inputs[i])
		return err
	}

	items, err := h.predictionSvc.PredictBatch(c.UserContext(), readings, check)
	switch {
	case errors.Is(err, service.ErrEmptyBatch):
		return fiber.NewError(fiber.StatusBadRequest, "inputs must contain at least one reading")
	case errors.Is(err, service.ErrBatchTooLarge):
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("inputs must contain at most %d readings", service.MaxBatchSize))
	case err != nil:
		return h.predictionError(err)
	}

	succeeded := 0
	for _, item := range items {
		if item.Status != service.BatchStatusSuccess {
			continue
		}
		succeeded++
		h.historySvc.RecordAsync(readings[item.Index], domain.Recommendation{Result: *item.Predictions, Source: item.Source})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"data":      items,
		"count":     len(items),
		"succeeded": succeeded,
	})
}

// GetRecommendations returns recent recommendation history
func (h *Handler) GetRecommendations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", service.DefaultHistoryLimit)

	data, err := h.historySvc.Recent(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("history lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch recommendation history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetWeather returns current field conditions for a coordinate
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	lat, latErr := parseCoordinate(c.Query("lat"))
	lon, lonErr := parseCoordinate(c.Query("lon"))
	if latErr != nil || lonErr != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon query parameters are required numbers")
	}

	conditions, err := h.weatherSvc.FieldConditions(c.UserContext(), lat, lon)
	if errors.Is(err, domain.ErrInvalidReading) {
		return fiber.NewError(fiber.StatusBadRequest, "lat must be within [-90, 90] and lon within [-180, 180]")
	}
	if err != nil {
		h.logger.Error("weather lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    conditions,
	})
}

// decode checks every reading value was sent, then applies the range rules
func (h *Handler) decode(p readingPayload) (domain.InputReading, error) {
	if err := h.validate.Struct(p); err != nil {
		return domain.InputReading{}, validationMessage(err)
	}
	in := p.reading()
	if err := h.validate.Struct(in); err != nil {
		return domain.InputReading{}, validationMessage(err)
	}
	return in, nil
}

// predictionError maps service errors onto HTTP errors
func (h *Handler) predictionError(err error) error {
	var unknown *domain.UnknownCropError
	switch {
	case errors.As(err, &unknown):
		return fiber.NewError(fiber.StatusUnprocessableEntity, unknown.Error())
	case errors.Is(err, domain.ErrInvalidReading):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error("prediction failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute recommendation")
	}
}

func parseCoordinate(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("missing coordinate")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("coordinate is not a finite number")
	}
	return v, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns validator errors into "field: rule" messages
func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", field, rule))
	}
	return errors.New(strings.Join(parts, "; "))
}
