// internal/snapshot/redis_test.go
package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "feedback-ranking/internal/common/errors"
	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, logger.NewTestLogger(t)), mr
}

func testSnapshot(category, weekID string, weekStart, generatedAt time.Time, productIDs ...string) *models.WeeklyRanking {
	entries := make([]models.RankingEntry, 0, len(productIDs))
	for i, id := range productIDs {
		entries = append(entries, models.RankingEntry{
			Rank:        i + 1,
			ProductID:   id,
			ProductName: "Product " + id,
			Score:       0.9 - 0.1*float64(i),
			Metrics: models.ProductRankingMetrics{
				ProductID:             id,
				ProductName:           "Product " + id,
				Category:              category,
				NPSScore:              25,
				TotalResponses:        40,
				SentimentScore:        0.7,
				SurveyCompletionRate:  0.8,
				FeedbackVolume:        12,
				RecentResponseCount:   6,
				DaysSinceLastResponse: 2,
				TrendDirection:        models.TrendStable,
				ConfidenceScore:       0.6,
				HasMinimumData:        true,
			},
			ScoreBreakdown: models.ScoreBreakdown{
				NPS:        0.15,
				Sentiment:  0.14,
				Engagement: 0.13,
				Volume:     0.09,
				Recency:    0.08,
				Trend:      0.05,
			},
		})
	}
	return &models.WeeklyRanking{
		Category:               category,
		WeekID:                 weekID,
		WeekStart:              weekStart,
		WeekEnd:                weekStart.AddDate(0, 0, 7).Add(-time.Millisecond),
		GeneratedAt:            generatedAt,
		TotalProductsEvaluated: len(productIDs),
		Rankings:               entries,
	}
}

func TestRedisStoreSaveAndGet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	original := testSnapshot("electronics", "2026-W10", weekStart, weekStart.Add(26*time.Hour), "prod-a", "prod-b")

	require.NoError(t, store.Save(ctx, original))

	got, err := store.Get(ctx, "2026-W10", "electronics")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, original.Category, got.Category)
	assert.Equal(t, original.WeekID, got.WeekID)
	assert.True(t, original.WeekStart.Equal(got.WeekStart))
	assert.True(t, original.WeekEnd.Equal(got.WeekEnd))
	assert.True(t, original.GeneratedAt.Equal(got.GeneratedAt))
	assert.Equal(t, original.TotalProductsEvaluated, got.TotalProductsEvaluated)
	require.Len(t, got.Rankings, 2)
	assert.Equal(t, original.Rankings[0].Metrics, got.Rankings[0].Metrics)
	assert.Equal(t, original.Rankings[0].ScoreBreakdown, got.Rankings[0].ScoreBreakdown)
	assert.Equal(t, 1, got.Rankings[0].Rank)
	assert.Equal(t, "prod-a", got.Rankings[0].ProductID)
}

func TestRedisStoreGetMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.Get(context.Background(), "2026-W10", "electronics")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreStaleWriteRejected(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	newer := testSnapshot("electronics", "2026-W10", weekStart, weekStart.Add(2*time.Hour), "prod-a")
	older := testSnapshot("electronics", "2026-W10", weekStart, weekStart.Add(1*time.Hour), "prod-b")

	require.NoError(t, store.Save(ctx, newer))
	err := store.Save(ctx, older)
	assert.ErrorIs(t, err, ErrStaleSnapshot)

	got, err := store.Get(ctx, "2026-W10", "electronics")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "prod-a", got.Rankings[0].ProductID)
}

func TestRedisStoreEqualGeneratedAtOverwrites(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	generatedAt := weekStart.Add(2 * time.Hour)
	first := testSnapshot("electronics", "2026-W10", weekStart, generatedAt, "prod-a")
	retry := testSnapshot("electronics", "2026-W10", weekStart, generatedAt, "prod-b")

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, retry))

	got, err := store.Get(ctx, "2026-W10", "electronics")
	require.NoError(t, err)
	assert.Equal(t, "prod-b", got.Rankings[0].ProductID)
}

func TestRedisStoreRejectsInvalidDocument(t *testing.T) {
	store, _ := newTestRedisStore(t)

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	bad := testSnapshot("electronics", "not-a-week-id", weekStart, weekStart.Add(time.Hour), "prod-a")

	err := store.Save(context.Background(), bad)
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeSnapshotInvalid, stdErr.Code)

	got, getErr := store.Get(context.Background(), "not-a-week-id", "electronics")
	assert.NoError(t, getErr)
	assert.Nil(t, got)
}

func TestRedisStoreGetHistory(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	weeks := []struct {
		id    string
		start time.Time
	}{
		{"2026-W08", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)},
		{"2026-W09", time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
		{"2026-W10", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, w := range weeks {
		require.NoError(t, store.Save(ctx, testSnapshot("electronics", w.id, w.start, w.start.Add(time.Hour), "prod-a")))
	}

	history, err := store.GetHistory(ctx, "electronics", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2026-W10", history[0].WeekID)
	assert.Equal(t, "2026-W09", history[1].WeekID)
	assert.Equal(t, "2026-W08", history[2].WeekID)

	limited, err := store.GetHistory(ctx, "electronics", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "2026-W10", limited[0].WeekID)
	assert.Equal(t, "2026-W09", limited[1].WeekID)
}

func TestRedisStoreHistoryIsolatedByCategory(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testSnapshot("electronics", "2026-W10", weekStart, weekStart.Add(time.Hour), "prod-a")))
	require.NoError(t, store.Save(ctx, testSnapshot("furniture", "2026-W10", weekStart, weekStart.Add(time.Hour), "prod-b")))

	history, err := store.GetHistory(ctx, "electronics", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "electronics", history[0].Category)
}

func TestRedisStoreGetProductTrend(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	w8 := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	w9 := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	w10 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testSnapshot("electronics", "2026-W08", w8, w8.Add(time.Hour), "prod-a", "prod-b")))
	require.NoError(t, store.Save(ctx, testSnapshot("electronics", "2026-W09", w9, w9.Add(time.Hour), "prod-b")))
	require.NoError(t, store.Save(ctx, testSnapshot("electronics", "2026-W10", w10, w10.Add(time.Hour), "prod-b", "prod-a")))

	trend, err := store.GetProductTrend(ctx, "prod-a", "electronics")
	require.NoError(t, err)
	require.Len(t, trend, 3)

	assert.Equal(t, "2026-W08", trend[0].WeekID)
	require.NotNil(t, trend[0].Rank)
	assert.Equal(t, 1, *trend[0].Rank)

	// prod-a missed the W09 top N: the point is present but unranked.
	assert.Equal(t, "2026-W09", trend[1].WeekID)
	assert.Nil(t, trend[1].Rank)
	assert.Zero(t, trend[1].Score)

	assert.Equal(t, "2026-W10", trend[2].WeekID)
	require.NotNil(t, trend[2].Rank)
	assert.Equal(t, 2, *trend[2].Rank)
}

func TestRedisStoreGetPreviousRank(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // inside 2026-W10
	store.now = func() time.Time { return now }

	prevStart := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testSnapshot("electronics", "2026-W09", prevStart, prevStart.Add(time.Hour), "prod-a", "prod-b")))

	rank, err := store.GetPreviousRank(ctx, "prod-b", "electronics")
	require.NoError(t, err)
	require.NotNil(t, rank)
	assert.Equal(t, 2, *rank)

	// Ranked snapshot exists but the product is not in it.
	rank, err = store.GetPreviousRank(ctx, "prod-z", "electronics")
	require.NoError(t, err)
	assert.Nil(t, rank)

	// No snapshot at all for the previous week.
	rank, err = store.GetPreviousRank(ctx, "prod-a", "furniture")
	require.NoError(t, err)
	assert.Nil(t, rank)
}

func TestRedisStoreGetCurrent(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testSnapshot("electronics", "2026-W10", weekStart, weekStart.Add(time.Hour), "prod-a")))

	got, err := store.GetCurrent(ctx, "electronics")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2026-W10", got.WeekID)
}

func TestRedisStoreSaveServerError(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.SetError("LOADING Redis is loading the dataset in memory")

	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	err := store.Save(context.Background(), testSnapshot("electronics", "2026-W10", weekStart, weekStart.Add(time.Hour), "prod-a"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStaleSnapshot))
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeSnapshotWriteFailed, stdErr.Code)
}

func TestRedisStoreGetReadError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, logger.NewNoOpLogger())

	mock.ExpectGet(snapshotKey("electronics", "2026-W10")).SetErr(errors.New("connection reset"))

	got, err := store.Get(context.Background(), "2026-W10", "electronics")
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
