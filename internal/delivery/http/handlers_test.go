package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cropadvisor/backend/internal/agronomy"
	"github.com/cropadvisor/backend/internal/repository/postgres"
	"github.com/cropadvisor/backend/internal/service"
)

type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

type testServer struct {
	app     *fiber.App
	history *service.HistoryService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	calc, err := agronomy.NewDefaultCalculator(zeroSource{})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	cfg := service.RemoteConfig{Fallback: service.FallbackCalculator}
	predictionSvc := service.NewPredictionService(calc, service.NewMLBridge(cfg), cfg, service.NewMetrics(reg), logger)
	historySvc := service.NewHistoryService(postgres.NewMockRepository(), logger)
	weatherSvc := service.NewWeatherService("", "", logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, NewHandler(predictionSvc, historySvc, weatherSvc, logger), reg)
	t.Cleanup(historySvc.WaitBackground)

	return &testServer{app: app, history: historySvc}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

const riceBody = `{
	"soil": {"ph": 6.0, "nitrogen": 120, "phosphorus": 60, "potassium": 40, "organicMatter": 4},
	"weather": {"temperature": 28, "rainfall": 200, "humidity": 80, "sunlightHours": 8},
	"cropType": "rice"
}`

func withCrop(crop string) string {
	return strings.Replace(riceBody, `"rice"`, `"`+crop+`"`, 1)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.Equal(t, "disabled", body["remote"])
}

func TestGetCropsAndModelInfo(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodGet, "/api/v1/crops", "")
	assert.Equal(t, fiber.StatusOK, status)
	crops := body["data"].([]any)
	assert.Len(t, crops, 10)
	assert.Contains(t, crops, "rice")

	status, body = s.do(t, fiber.MethodGet, "/api/v1/model-info", "")
	assert.Equal(t, fiber.StatusOK, status)
	info := body["data"].(map[string]any)
	assert.Equal(t, "rule-based", info["type"])
	assert.Equal(t, false, info["remote_enabled"])
}

func TestPredict(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodPost, "/api/v1/predict", riceBody)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "local", data["source"])
	predictions := data["predictions"].(map[string]any)
	irrigation := predictions["irrigation"].(map[string]any)
	assert.Equal(t, 3426.0, irrigation["litersPerAcre"])
	assert.Equal(t, "Sprinkler System", irrigation["method"])
	risk := predictions["riskAssessment"].(map[string]any)
	assert.Equal(t, "Low", risk["overallRisk"])

	s.history.WaitBackground()
	status, body = s.do(t, fiber.MethodGet, "/api/v1/recommendations?limit=5", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1.0, body["count"])
}

func TestPredict_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"unknown crop", withCrop("unicorn-fruit"), fiber.StatusUnprocessableEntity, `crop type "unicorn-fruit" not recognized`},
		{"unsupported original crop", withCrop("mustard"), fiber.StatusUnprocessableEntity, `crop type "mustard" not recognized`},
		{"ph out of range", strings.Replace(riceBody, `"ph": 6.0`, `"ph": 15`, 1), fiber.StatusBadRequest, "soil.ph: failed lte=14"},
		{"negative rainfall", strings.Replace(riceBody, `"rainfall": 200`, `"rainfall": -1`, 1), fiber.StatusBadRequest, "weather.rainfall: failed gte=0"},
		{"missing crop", withCrop(""), fiber.StatusBadRequest, "cropType: failed required"},
		{"bad stage", strings.Replace(riceBody, `"cropType"`, `"growthStage": "harvest", "cropType"`, 1), fiber.StatusBadRequest, "growthStage: failed oneof"},
		{"malformed", `{"soil":`, fiber.StatusBadRequest, "Invalid request body"},
		{"missing ph", strings.Replace(riceBody, `"ph": 6.0, `, ``, 1), fiber.StatusBadRequest, "soil.ph: failed required"},
		{"missing rainfall", strings.Replace(riceBody, `"rainfall": 200, `, ``, 1), fiber.StatusBadRequest, "weather.rainfall: failed required"},
		{"missing weather", `{"soil": {"ph": 6.0, "nitrogen": 120, "phosphorus": 60, "potassium": 40, "organicMatter": 4}, "cropType": "rice"}`, fiber.StatusBadRequest, "weather: failed required"},
	}

	s := newTestServer(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(t, fiber.MethodPost, "/api/v1/predict", tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, true, body["error"])
			assert.Contains(t, body["message"], tc.message)
		})
	}
}

func TestBatchPredict(t *testing.T) {
	s := newTestServer(t)

	payload := `{"inputs": [` + riceBody + `,` + withCrop("groundnut") + `,` + withCrop("Wheat") + `]}`
	status, body := s.do(t, fiber.MethodPost, "/api/v1/batch-predict", payload)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, 3.0, body["count"])
	assert.Equal(t, 2.0, body["succeeded"])

	items := body["data"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "success", first["status"])
	second := items[1].(map[string]any)
	assert.Equal(t, "error", second["status"])
	assert.Equal(t, `crop type "groundnut" not recognized`, second["error"])
}

func TestPredict_ExplicitZeroIsAccepted(t *testing.T) {
	s := newTestServer(t)

	body := strings.Replace(riceBody, `"rainfall": 200`, `"rainfall": 0`, 1)
	status, resp := s.do(t, fiber.MethodPost, "/api/v1/predict", body)
	require.Equal(t, fiber.StatusOK, status, resp)

	dry := resp["data"].(map[string]any)["predictions"].(map[string]any)["irrigation"].(map[string]any)
	assert.Greater(t, dry["litersPerAcre"], 3426.0)
}

func TestBatchPredict_MissingFieldFailsOnlyThatItem(t *testing.T) {
	s := newTestServer(t)

	missing := strings.Replace(riceBody, `"nitrogen": 120, `, ``, 1)
	payload := `{"inputs": [` + riceBody + `,` + missing + `]}`
	status, body := s.do(t, fiber.MethodPost, "/api/v1/batch-predict", payload)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, 1.0, body["succeeded"])

	items := body["data"].([]any)
	second := items[1].(map[string]any)
	assert.Equal(t, "error", second["status"])
	assert.Equal(t, "soil.nitrogen: failed required", second["error"])
}

func TestBatchPredict_Limits(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, fiber.MethodPost, "/api/v1/batch-predict", `{"inputs": []}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	var buf bytes.Buffer
	buf.WriteString(`{"inputs": [`)
	for i := 0; i <= service.MaxBatchSize; i++ {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(riceBody)
	}
	buf.WriteString(`]}`)

	status, body := s.do(t, fiber.MethodPost, "/api/v1/batch-predict", buf.String())
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "at most 50")
}

func TestGetWeather(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, fiber.MethodGet, "/api/v1/weather?lat=30.9&lon=75.85", "")
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["is_mock"])

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/weather?lat=abc&lon=1", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/weather?lon=1", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/weather?lat=95&lon=1", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	for _, query := range []string{"lat=NaN&lon=0", "lat=0&lon=nan", "lat=Inf&lon=0", "lat=10&lon=-Inf"} {
		status, body := s.do(t, fiber.MethodGet, "/api/v1/weather?"+query, "")
		assert.Equal(t, fiber.StatusBadRequest, status, query)
		assert.Equal(t, true, body["error"], query)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, fiber.MethodPost, "/api/v1/predict", riceBody)
	require.Equal(t, fiber.StatusOK, status)

	resp, err := s.app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `cropadvisor_predictions_total{crop="rice",source="local"} 1`)
}
