// internal/models/metrics.go
package models

import "time"

// TrendDirection classifies the week-over-week NPS movement.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// SentimentBreakdown holds classified text answer counts.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// ProductRankingMetrics is the full signal set computed for one product in
// one ranking run. It is never mutated after computation and is embedded
// read-only in the persisted snapshot entry for audit and trend queries.
type ProductRankingMetrics struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`

	// NPS, -100..100
	NPSScore       float64 `json:"npsScore"`
	TotalResponses int     `json:"totalResponses"`

	// Sentiment, 0..1
	SentimentScore     float64            `json:"sentimentScore"`
	SentimentBreakdown SentimentBreakdown `json:"sentimentBreakdown"`

	// Engagement
	SurveyCompletionRate float64 `json:"surveyCompletionRate"`
	FeedbackVolume       int     `json:"feedbackVolume"`

	// Recency. RecentResponseCount covers the trailing 7 days.
	// DaysSinceLastResponse is 999 when the product has no responses.
	RecentResponseCount   int        `json:"recentResponseCount"`
	LastResponseAt        *time.Time `json:"lastResponseAt,omitempty"`
	DaysSinceLastResponse float64    `json:"daysSinceLastResponse"`

	// Trend
	WeekOverWeekChange float64        `json:"weekOverWeekChange"`
	TrendDirection     TrendDirection `json:"trendDirection"`

	// ConfidenceScore is descriptive only; the score multiplier applied
	// during normalization is selected separately by response-count tier.
	ConfidenceScore float64 `json:"confidenceScore"`
	HasMinimumData  bool    `json:"hasMinimumData"`
}
