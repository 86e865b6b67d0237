// internal/ranking/generator_test.go
package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-ranking/internal/models"
)

func scoresFor(n int) ([]models.RankingScore, map[string]*models.ProductRankingMetrics) {
	scores := make([]models.RankingScore, 0, n)
	byID := make(map[string]*models.ProductRankingMetrics, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("prod-%02d", i)
		scores = append(scores, models.RankingScore{
			ProductID:  id,
			TotalScore: float64(n-i) / float64(n),
		})
		byID[id] = &models.ProductRankingMetrics{
			ProductID:   id,
			ProductName: "Product " + id,
		}
	}
	return scores, byID
}

func TestGenerateTopRankingsTruncates(t *testing.T) {
	scores, byID := scoresFor(15)

	entries, evaluated := GenerateTopRankings(scores, byID, 10)
	assert.Equal(t, 15, evaluated)
	require.Len(t, entries, 10)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		if i > 0 {
			assert.LessOrEqual(t, e.Score, entries[i-1].Score)
		}
	}
	assert.Equal(t, "prod-00", entries[0].ProductID)
	assert.Equal(t, "Product prod-00", entries[0].ProductName)
}

func TestGenerateTopRankingsFewerThanTopN(t *testing.T) {
	scores, byID := scoresFor(3)

	entries, evaluated := GenerateTopRankings(scores, byID, 10)
	assert.Equal(t, 3, evaluated)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestGenerateTopRankingsEmpty(t *testing.T) {
	entries, evaluated := GenerateTopRankings(nil, nil, 10)
	assert.Zero(t, evaluated)
	assert.Empty(t, entries)
}

func TestGenerateTopRankingsDeterministicTieBreak(t *testing.T) {
	scores := []models.RankingScore{
		{ProductID: "prod-b", TotalScore: 0.8},
		{ProductID: "prod-a", TotalScore: 0.8},
		{ProductID: "prod-c", TotalScore: 0.8},
	}
	byID := map[string]*models.ProductRankingMetrics{
		"prod-a": {ProductID: "prod-a"},
		"prod-b": {ProductID: "prod-b"},
		"prod-c": {ProductID: "prod-c"},
	}

	first, _ := GenerateTopRankings(scores, byID, 10)
	second, _ := GenerateTopRankings(scores, byID, 10)
	assert.Equal(t, first, second)
	assert.Equal(t, "prod-a", first[0].ProductID)
	assert.Equal(t, "prod-b", first[1].ProductID)
	assert.Equal(t, "prod-c", first[2].ProductID)
}

func TestGenerateTopRankingsDoesNotMutateInput(t *testing.T) {
	scores, byID := scoresFor(5)
	original := make([]models.RankingScore, len(scores))
	copy(original, scores)

	// Shuffle the input so sorting would be observable.
	scores[0], scores[4] = scores[4], scores[0]
	shuffled := make([]models.RankingScore, len(scores))
	copy(shuffled, scores)

	_, _ = GenerateTopRankings(scores, byID, 3)
	assert.Equal(t, shuffled, scores)
}

func TestGenerateTopRankingsDefaultTopN(t *testing.T) {
	scores, byID := scoresFor(12)

	entries, evaluated := GenerateTopRankings(scores, byID, 0)
	assert.Equal(t, 12, evaluated)
	assert.Len(t, entries, 10)
}
