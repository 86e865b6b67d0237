// internal/ranking/eligibility.go
package ranking

import "feedback-ranking/internal/models"

// Eligible reports whether a product clears the minimum-data gate. Products
// without a category never reach this stage; they are excluded upstream by
// the calculator.
func (c *Config) Eligible(m *models.ProductRankingMetrics) bool {
	return m.HasMinimumData &&
		m.TotalResponses >= c.MinTotalResponses &&
		m.RecentResponseCount >= c.MinRecentResponses
}

// FilterEligible keeps only metrics records that clear the gate. Exclusion
// is not an error; ineligible products simply never appear in the ranking.
func (c *Config) FilterEligible(records []*models.ProductRankingMetrics) []*models.ProductRankingMetrics {
	eligible := make([]*models.ProductRankingMetrics, 0, len(records))
	for _, m := range records {
		if c.Eligible(m) {
			eligible = append(eligible, m)
		}
	}
	return eligible
}
