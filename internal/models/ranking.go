// internal/models/ranking.go
package models

import "time"

// ScoreBreakdown holds the six weighted component contributions. Each value
// is the normalized component multiplied by its weight, so the sum of all
// six equals the pre-multiplier total score.
type ScoreBreakdown struct {
	NPS        float64 `json:"nps"`
	Sentiment  float64 `json:"sentiment"`
	Engagement float64 `json:"engagement"`
	Volume     float64 `json:"volume"`
	Recency    float64 `json:"recency"`
	Trend      float64 `json:"trend"`
}

// Sum returns the pre-multiplier weighted total.
func (b ScoreBreakdown) Sum() float64 {
	return b.NPS + b.Sentiment + b.Engagement + b.Volume + b.Recency + b.Trend
}

// RankingScore is derived 1:1 from a metrics record. TotalScore is the
// post-multiplier value.
type RankingScore struct {
	ProductID            string         `json:"productId"`
	TotalScore           float64        `json:"totalScore"`
	Breakdown            ScoreBreakdown `json:"breakdown"`
	ConfidenceMultiplier float64        `json:"confidenceMultiplier"`
}

// RankingEntry is one row of a weekly ranking. Metrics is a frozen copy of
// the record the score was computed from.
type RankingEntry struct {
	Rank           int                   `json:"rank"`
	ProductID      string                `json:"productId"`
	ProductName    string                `json:"productName"`
	Score          float64               `json:"score"`
	Metrics        ProductRankingMetrics `json:"metrics"`
	ScoreBreakdown ScoreBreakdown        `json:"scoreBreakdown"`
}

// WeeklyRanking is the persisted snapshot for one (category, week). A run
// overwrites the keyed snapshot wholesale; it is never partially patched.
type WeeklyRanking struct {
	Category               string         `json:"category"`
	WeekID                 string         `json:"weekId"`
	WeekStart              time.Time      `json:"weekStart"`
	WeekEnd                time.Time      `json:"weekEnd"`
	GeneratedAt            time.Time      `json:"generatedAt"`
	TotalProductsEvaluated int            `json:"totalProductsEvaluated"`
	Rankings               []RankingEntry `json:"rankings"`
}

// EntryFor returns the entry for a product, or nil if the product did not
// make the snapshot's top N.
func (w *WeeklyRanking) EntryFor(productID string) *RankingEntry {
	for i := range w.Rankings {
		if w.Rankings[i].ProductID == productID {
			return &w.Rankings[i]
		}
	}
	return nil
}

// TrendPoint is one week of a product's ranking history. Rank is nil for
// weeks where the product did not make the top N.
type TrendPoint struct {
	WeekStart time.Time `json:"weekStart"`
	WeekID    string    `json:"weekId"`
	Rank      *int      `json:"rank"`
	Score     float64   `json:"score"`
}
