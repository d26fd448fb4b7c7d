package postgres

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/cropadvisor/backend/internal/domain"
)

// DefaultMockCapacity bounds the in-memory history of MockRepository
const DefaultMockCapacity = 500

// MockRepository implements domain.RecommendationRepository in memory for
// testing/demo mode. The oldest entries are dropped past its capacity.
type MockRepository struct {
	mu       sync.RWMutex
	entries  []domain.RecommendationLog
	capacity int
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{capacity: DefaultMockCapacity}
}

// SaveRecommendationLog keeps the entry in memory
func (r *MockRepository) SaveRecommendationLog(ctx context.Context, entry domain.RecommendationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// kept oldest first by CreatedAt, whatever order saves arrive in
	i := sort.Search(len(r.entries), func(i int) bool {
		return newer(r.entries[i], entry)
	})
	r.entries = append(r.entries, domain.RecommendationLog{})
	copy(r.entries[i+1:], r.entries[i:])
	r.entries[i] = entry

	if over := len(r.entries) - r.capacity; over > 0 {
		r.entries = append(r.entries[:0:0], r.entries[over:]...)
	}
	return nil
}

// GetRecentRecommendations returns up to limit entries, newest first by
// CreatedAt with ID as the tie-break
func (r *MockRepository) GetRecentRecommendations(ctx context.Context, limit int) ([]domain.RecommendationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if limit < n {
		n = max(limit, 0)
	}
	out := make([]domain.RecommendationLog, 0, n)
	for i := len(r.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

// newer reports whether a sorts after b: later CreatedAt, then larger ID
func newer(a, b domain.RecommendationLog) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}
