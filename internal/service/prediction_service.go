package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cropadvisor/backend/internal/agronomy"
	"github.com/cropadvisor/backend/internal/domain"
)

// MaxBatchSize caps the number of readings accepted by one batch call
const MaxBatchSize = 50

// Batch item statuses
const (
	BatchStatusSuccess = "success"
	BatchStatusError   = "error"
)

// BatchItem is the outcome of one reading in a batch call
type BatchItem struct {
	Index       int                          `json:"index"`
	Status      string                       `json:"status"`
	CropType    string                       `json:"cropType"`
	Source      domain.Source                `json:"source,omitempty"`
	Predictions *domain.RecommendationResult `json:"predictions,omitempty"`
	Error       string                       `json:"error,omitempty"`
}

// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize
var ErrBatchTooLarge = errors.New("prediction: batch exceeds maximum size")

// ErrEmptyBatch is returned for a batch without readings
var ErrEmptyBatch = errors.New("prediction: batch has no inputs")

// PredictionService produces recommendations, preferring the remote
// collaborator when it is enabled and falling back locally otherwise
type PredictionService struct {
	calc    *agronomy.Calculator
	bridge  *MLBridge
	cfg     RemoteConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewPredictionService creates the prediction service. bridge may be nil.
func NewPredictionService(calc *agronomy.Calculator, bridge *MLBridge, cfg RemoteConfig, metrics *Metrics, logger *zap.Logger) *PredictionService {
	if cfg.Fallback == "" {
		cfg.Fallback = FallbackCalculator
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		calc:    calc,
		bridge:  bridge,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Predict returns a recommendation for one reading. An unknown crop always
// fails with *domain.UnknownCropError, whichever branch would have served it.
// Remote failures are logged and absorbed.
func (s *PredictionService) Predict(ctx context.Context, in domain.InputReading) (domain.Recommendation, error) {
	profile, err := s.calc.Catalog().Lookup(in.CropType)
	if err != nil {
		return domain.Recommendation{}, err
	}

	outcome := s.callRemote(ctx, in)
	rec, err := outcome.OrElse(func() (domain.Recommendation, error) {
		// A remote that was never enabled is not a failure; the calculator serves.
		if outcome.Err().Reason == ReasonDisabled {
			return s.compute(in)
		}
		return s.fallback(in)
	})
	if err != nil {
		return domain.Recommendation{}, err
	}

	if s.metrics != nil {
		s.metrics.Predictions.WithLabelValues(string(rec.Source), profile.Name).Inc()
	}
	s.logger.Debug("prediction served",
		zap.String("crop", profile.Name),
		zap.String("source", string(rec.Source)),
		zap.String("risk", string(rec.Result.RiskAssessment.OverallRisk)),
	)
	return rec, nil
}

// PredictBatch predicts every reading independently. check, when non-nil,
// runs first with the item index and marks an item failed without predicting it.
func (s *PredictionService) PredictBatch(ctx context.Context, inputs []domain.InputReading, check func(int, domain.InputReading) error) ([]BatchItem, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(inputs) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	items := make([]BatchItem, 0, len(inputs))
	for i, in := range inputs {
		item := BatchItem{Index: i, CropType: in.CropType}

		if check != nil {
			if err := check(i, in); err != nil {
				item.Status = BatchStatusError
				item.Error = err.Error()
				items = append(items, item)
				continue
			}
		}

		rec, err := s.Predict(ctx, in)
		if err != nil {
			item.Status = BatchStatusError
			item.Error = err.Error()
		} else {
			result := rec.Result
			item.Status = BatchStatusSuccess
			item.Source = rec.Source
			item.Predictions = &result
		}
		items = append(items, item)
	}
	return items, nil
}

// Crops returns the supported crop keys of the local catalog
func (s *PredictionService) Crops() []string {
	return s.calc.Catalog().Names()
}

// ModelInfo describes the local calculator, with remote metadata when reachable
func (s *PredictionService) ModelInfo(ctx context.Context) domain.ModelInfo {
	crops := s.calc.Catalog().Names()
	info := domain.ModelInfo{
		Type:       "rule-based",
		Version:    agronomy.Version,
		CropCount:  len(crops),
		Crops:      crops,
		TipCount:   len(s.calc.Tips().Tips),
		RemoteUsed: s.bridge.Enabled(),
	}
	if !info.RemoteUsed {
		return info
	}

	remote, err := s.bridge.ModelInfo(ctx)
	if err != nil {
		s.logger.Warn("remote model info unavailable", zap.Error(err))
		return info
	}
	info.Remote = remote
	return info
}

// RemoteHealth reports remote readiness. Disabled remotes report not ready.
func (s *PredictionService) RemoteHealth(ctx context.Context) (domain.RemoteHealth, error) {
	return s.bridge.Health(ctx)
}

func (s *PredictionService) callRemote(ctx context.Context, in domain.InputReading) RemoteOutcome {
	outcome := s.bridge.Predict(ctx, in)
	if rerr := outcome.Err(); rerr != nil && rerr.Reason != ReasonDisabled {
		if s.metrics != nil {
			s.metrics.RemoteFailures.WithLabelValues(rerr.Reason).Inc()
		}
		s.logger.Warn("remote prediction failed, using fallback",
			zap.String("reason", rerr.Reason),
			zap.String("fallback", string(s.cfg.Fallback)),
			zap.Error(rerr),
		)
	}
	return outcome
}

// fallback serves a request after a real remote failure
func (s *PredictionService) fallback(in domain.InputReading) (domain.Recommendation, error) {
	if s.cfg.Fallback == FallbackStatic {
		return domain.Recommendation{
			Result: StaticRecommendation(s.calc.Tips().Fallback),
			Source: domain.SourceStatic,
		}, nil
	}
	return s.compute(in)
}

func (s *PredictionService) compute(in domain.InputReading) (domain.Recommendation, error) {
	start := time.Now()
	result, err := s.calc.Compute(in)
	if s.metrics != nil {
		s.metrics.CalculationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return domain.Recommendation{}, err
	}
	return domain.Recommendation{Result: result, Source: domain.SourceLocal}, nil
}
