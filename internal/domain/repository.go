package domain

import (
	"context"
)

// RecommendationRepository defines the interface for recommendation history
// This follows the Dependency Inversion Principle - domain defines the interface
type RecommendationRepository interface {
	// SaveRecommendationLog persists one served recommendation
	SaveRecommendationLog(ctx context.Context, entry RecommendationLog) error

	// GetRecentRecommendations returns up to limit entries, newest first
	GetRecentRecommendations(ctx context.Context, limit int) ([]RecommendationLog, error)

	// Health checks database connectivity
	Health(ctx context.Context) error
}
