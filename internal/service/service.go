package service

import (
	"github.com/cropadvisor/backend/internal/domain"
)

// RecommendationRepository is re-exported from domain for convenience
type RecommendationRepository = domain.RecommendationRepository
