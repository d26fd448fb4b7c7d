package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cropadvisor/backend/internal/domain"
)

const (
	// DefaultHistoryLimit is used when a caller gives no usable limit
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps one history page
	MaxHistoryLimit = 100

	saveTimeout = 5 * time.Second
)

// HistoryService records served recommendations and reads them back
type HistoryService struct {
	repo   RecommendationRepository
	logger *zap.Logger

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewHistoryService creates a new history service
func NewHistoryService(repo RecommendationRepository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		repo:   repo,
		logger: logger,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *HistoryService) WaitBackground() {
	s.wgBg.Wait()
}

// RecordAsync persists one served recommendation without blocking the caller
func (s *HistoryService) RecordAsync(in domain.InputReading, rec domain.Recommendation) {
	entry := domain.NewRecommendationLog(in, rec)

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.repo.SaveRecommendationLog(ctx, entry); err != nil {
			s.logger.Warn("failed to save recommendation log",
				zap.String("id", entry.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Recent returns the latest entries, newest first. limit is clamped to
// [1, MaxHistoryLimit]; non-positive values use DefaultHistoryLimit.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.RecommendationLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	entries, err := s.repo.GetRecentRecommendations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: failed to load recent recommendations: %w", err)
	}
	if entries == nil {
		entries = []domain.RecommendationLog{}
	}
	return entries, nil
}

// Health checks the backing store
func (s *HistoryService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}
