package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropadvisor/backend/internal/domain"
)

var _ domain.RecommendationRepository = (*MockRepository)(nil)
var _ domain.RecommendationRepository = (*PostgresRepository)(nil)

var logSeq atomic.Int64

// logFor returns an entry stamped strictly later than every previous one
func logFor(crop string) domain.RecommendationLog {
	in := domain.InputReading{CropType: crop}
	e := domain.NewRecommendationLog(in, domain.Recommendation{Source: domain.SourceLocal})
	e.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(logSeq.Add(1)) * time.Millisecond)
	return e
}

func TestMockRepository_NewestFirst(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	for _, crop := range []string{"rice", "wheat", "maize"} {
		require.NoError(t, repo.SaveRecommendationLog(ctx, logFor(crop)))
	}

	got, err := repo.GetRecentRecommendations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "maize", got[0].CropType)
	assert.Equal(t, "wheat", got[1].CropType)

	all, err := repo.GetRecentRecommendations(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMockRepository_OrdersByCreatedAt(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	older := logFor("rice")
	older.CreatedAt = base
	newest := logFor("wheat")
	newest.CreatedAt = base.Add(2 * time.Second)
	middle := logFor("maize")
	middle.CreatedAt = base.Add(time.Second)

	// saved out of order, as racing background saves would be
	for _, e := range []domain.RecommendationLog{newest, older, middle} {
		require.NoError(t, repo.SaveRecommendationLog(ctx, e))
	}

	got, err := repo.GetRecentRecommendations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"wheat", "maize", "rice"}, []string{got[0].CropType, got[1].CropType, got[2].CropType})
}

func TestMockRepository_SameTimestampTieBreaksOnID(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a := logFor("rice")
	b := logFor("wheat")
	a.CreatedAt, b.CreatedAt = at, at
	a.ID[0], b.ID[0] = 0x01, 0xff

	require.NoError(t, repo.SaveRecommendationLog(ctx, b))
	require.NoError(t, repo.SaveRecommendationLog(ctx, a))

	got, err := repo.GetRecentRecommendations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "wheat", got[0].CropType)
	assert.Equal(t, "rice", got[1].CropType)
}

func TestMockRepository_Empty(t *testing.T) {
	repo := NewMockRepository()
	got, err := repo.GetRecentRecommendations(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, repo.Health(context.Background()))
}

func TestMockRepository_Capacity(t *testing.T) {
	repo := &MockRepository{capacity: 3}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveRecommendationLog(ctx, logFor(fmt.Sprintf("crop-%d", i))))
	}

	got, err := repo.GetRecentRecommendations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "crop-4", got[0].CropType)
	assert.Equal(t, "crop-2", got[2].CropType)
}

func TestMockRepository_ConcurrentSaves(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.SaveRecommendationLog(ctx, logFor("rice"))
		}()
	}
	wg.Wait()

	got, err := repo.GetRecentRecommendations(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
