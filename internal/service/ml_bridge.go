package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cropadvisor/backend/internal/domain"
)

const maxRemoteBody = 1 << 20

// MLBridge handles communication with the remote prediction service.
// Every call is a single attempt bounded by the configured timeout.
type MLBridge struct {
	cfg        RemoteConfig
	httpClient *http.Client
}

// NewMLBridge creates a new ML bridge
func NewMLBridge(cfg RemoteConfig) *MLBridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &MLBridge{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Enabled reports whether the bridge should be consulted at all
func (b *MLBridge) Enabled() bool {
	return b != nil && b.cfg.Enabled && b.cfg.BaseURL != ""
}

// Predict calls the remote service for a recommendation
func (b *MLBridge) Predict(ctx context.Context, in domain.InputReading) RemoteOutcome {
	const op = "predict"
	if !b.Enabled() {
		return RemoteFailure(&RemoteError{Op: op, Reason: ReasonDisabled})
	}

	body, err := json.Marshal(in)
	if err != nil {
		return RemoteFailure(&RemoteError{Op: op, Reason: ReasonMalformed, Err: fmt.Errorf("failed to marshal request: %w", err)})
	}

	var resp domain.RemotePredictResponse
	if rerr := b.do(ctx, op, http.MethodPost, "/api/predict", body, &resp); rerr != nil {
		return RemoteFailure(rerr)
	}
	if resp.Status != domain.RemoteStatusSuccess {
		return RemoteFailure(&RemoteError{Op: op, Reason: ReasonRejected, Err: errors.New(resp.Error)})
	}
	if resp.Predictions == nil {
		return RemoteFailure(&RemoteError{Op: op, Reason: ReasonMalformed, Err: errors.New("response has no predictions")})
	}
	if err := checkRemoteResult(*resp.Predictions); err != nil {
		return RemoteFailure(&RemoteError{Op: op, Reason: ReasonMalformed, Err: err})
	}
	return RemoteSuccess(*resp.Predictions)
}

// Health checks remote service readiness
func (b *MLBridge) Health(ctx context.Context) (domain.RemoteHealth, error) {
	const op = "health"
	if !b.Enabled() {
		return domain.RemoteHealth{}, &RemoteError{Op: op, Reason: ReasonDisabled}
	}
	var health domain.RemoteHealth
	if rerr := b.do(ctx, op, http.MethodGet, "/api/health", nil, &health); rerr != nil {
		return domain.RemoteHealth{}, rerr
	}
	return health, nil
}

// Crops lists the crop keys the remote service claims to support
func (b *MLBridge) Crops(ctx context.Context) ([]string, error) {
	const op = "crops"
	if !b.Enabled() {
		return nil, &RemoteError{Op: op, Reason: ReasonDisabled}
	}
	var resp domain.RemoteCropsResponse
	if rerr := b.do(ctx, op, http.MethodGet, "/api/crops", nil, &resp); rerr != nil {
		return nil, rerr
	}
	if resp.Status != domain.RemoteStatusSuccess {
		return nil, &RemoteError{Op: op, Reason: ReasonRejected, Err: errors.New(resp.Error)}
	}
	return resp.Crops, nil
}

// ModelInfo fetches the remote model metadata
func (b *MLBridge) ModelInfo(ctx context.Context) (map[string]any, error) {
	const op = "model-info"
	if !b.Enabled() {
		return nil, &RemoteError{Op: op, Reason: ReasonDisabled}
	}
	var resp domain.RemoteModelInfoResponse
	if rerr := b.do(ctx, op, http.MethodGet, "/api/model-info", nil, &resp); rerr != nil {
		return nil, rerr
	}
	if resp.Status != domain.RemoteStatusSuccess {
		return nil, &RemoteError{Op: op, Reason: ReasonRejected, Err: errors.New(resp.Error)}
	}
	return resp.ModelInfo, nil
}

// do performs one request and decodes a 2xx JSON body into out
func (b *MLBridge) do(ctx context.Context, op, method, path string, body []byte, out any) *RemoteError {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.cfg.BaseURL+path, reader)
	if err != nil {
		return &RemoteError{Op: op, Reason: ReasonTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		reason := ReasonTransport
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = ReasonTimeout
		}
		return &RemoteError{Op: op, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return &RemoteError{Op: op, Reason: ReasonTransport, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{Op: op, Reason: ReasonStatus, StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteError{Op: op, Reason: ReasonMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// checkRemoteResult rejects remote payloads that break the result invariants
func checkRemoteResult(r domain.RecommendationResult) error {
	switch r.RiskAssessment.OverallRisk {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
	default:
		return fmt.Errorf("invalid overallRisk %q", r.RiskAssessment.OverallRisk)
	}
	pcts := map[string]int{
		"waterStress":        r.RiskAssessment.WaterStress,
		"nutrientDeficiency": r.RiskAssessment.NutrientDeficiency,
		"climateRisk":        r.RiskAssessment.ClimateRisk,
		"confidence":         r.YieldPrediction.Confidence,
	}
	for name, v := range pcts {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s out of range: %d", name, v)
		}
	}
	if r.Irrigation.LitersPerAcre < 0 || r.YieldPrediction.ExpectedYield < 0 {
		return errors.New("negative quantity in result")
	}
	return nil
}
