// internal/ranking/generator.go
package ranking

import (
	"sort"

	"feedback-ranking/internal/models"
)

// GenerateTopRankings sorts scores descending, truncates to topN and
// attaches 1-based ranks. Ties are broken by productId so the ordering is
// deterministic. The returned count is the number of scored products before
// truncation, for display as totalProductsEvaluated.
func GenerateTopRankings(scores []models.RankingScore, metricsByID map[string]*models.ProductRankingMetrics, topN int) ([]models.RankingEntry, int) {
	if topN <= 0 {
		topN = 10
	}

	evaluated := len(scores)

	sorted := make([]models.RankingScore, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		return sorted[i].ProductID < sorted[j].ProductID
	})

	if len(sorted) > topN {
		sorted = sorted[:topN]
	}

	entries := make([]models.RankingEntry, 0, len(sorted))
	for i, s := range sorted {
		m := metricsByID[s.ProductID]
		if m == nil {
			continue
		}
		entries = append(entries, models.RankingEntry{
			Rank:           i + 1,
			ProductID:      s.ProductID,
			ProductName:    m.ProductName,
			Score:          s.TotalScore,
			Metrics:        *m,
			ScoreBreakdown: s.Breakdown,
		})
	}

	return entries, evaluated
}
