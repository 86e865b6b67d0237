// internal/ranking/normalizer.go
package ranking

import (
	"math"

	"feedback-ranking/internal/models"
)

// Normalizer maps a metrics record into a RankingScore. Pure computation,
// no I/O.
type Normalizer struct {
	config *Config
}

func NewNormalizer(config *Config) *Normalizer {
	return &Normalizer{config: config}
}

// Score normalizes each component to [0,1], applies the configured weights
// and selects the confidence multiplier by response-count tier.
func (n *Normalizer) Score(m *models.ProductRankingMetrics) models.RankingScore {
	w := n.config.Weights

	npsNorm := (m.NPSScore + 100) / 200
	sentimentNorm := clamp01(m.SentimentScore)
	engagementNorm := m.SurveyCompletionRate*0.6 +
		math.Min(float64(m.FeedbackVolume)/50, 1)*0.4

	// Logarithmic to suppress runaway influence of very high response
	// counts: 1000 responses saturate the component.
	volumeNorm := math.Min(math.Log10(float64(m.TotalResponses)+1)/math.Log10(1000), 1)

	// Exponential decay, halving roughly every 7 days.
	recencyNorm := math.Exp(-m.DaysSinceLastResponse / 10)

	// -100%..+100% change maps linearly to 0..1 around a neutral 0.5.
	trendNorm := clamp01(0.5 + m.WeekOverWeekChange/200)

	breakdown := models.ScoreBreakdown{
		NPS:        npsNorm * w.NPS,
		Sentiment:  sentimentNorm * w.Sentiment,
		Engagement: engagementNorm * w.Engagement,
		Volume:     volumeNorm * w.Volume,
		Recency:    recencyNorm * w.Recency,
		Trend:      trendNorm * w.Trend,
	}

	multiplier := n.config.MultiplierFor(m.TotalResponses)

	return models.RankingScore{
		ProductID:            m.ProductID,
		TotalScore:           breakdown.Sum() * multiplier,
		Breakdown:            breakdown,
		ConfidenceMultiplier: multiplier,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
