// internal/ranking/normalizer_test.go
package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"feedback-ranking/internal/models"
)

func baselineMetrics() *models.ProductRankingMetrics {
	return &models.ProductRankingMetrics{
		ProductID:             "prod-a",
		NPSScore:              25,
		TotalResponses:        60,
		SentimentScore:        0.7,
		SurveyCompletionRate:  0.8,
		FeedbackVolume:        25,
		RecentResponseCount:   8,
		DaysSinceLastResponse: 2,
		WeekOverWeekChange:    10,
		HasMinimumData:        true,
	}
}

func TestScoreBreakdownSumsToTotal(t *testing.T) {
	norm := NewNormalizer(DefaultConfig())

	score := norm.Score(baselineMetrics())
	assert.InDelta(t, score.TotalScore, score.Breakdown.Sum()*score.ConfidenceMultiplier, 1e-9)
	assert.InDelta(t, 0.9, score.ConfidenceMultiplier, 1e-9)
}

func TestScoreNPSNormalization(t *testing.T) {
	cfg := DefaultConfig()
	norm := NewNormalizer(cfg)

	tests := []struct {
		nps  float64
		want float64
	}{
		{-100, 0},
		{-20, 0.40},
		{0, 0.5},
		{25, 0.625},
		{100, 1},
	}

	for _, tt := range tests {
		m := baselineMetrics()
		m.NPSScore = tt.nps
		score := norm.Score(m)
		assert.InDelta(t, tt.want*cfg.Weights.NPS, score.Breakdown.NPS, 1e-9)
	}
}

func TestScoreTrendNormalization(t *testing.T) {
	cfg := DefaultConfig()
	norm := NewNormalizer(cfg)

	tests := []struct {
		change float64
		want   float64
	}{
		{0, 0.5},
		{50, 0.75},
		{-50, 0.25},
		{100, 1},
		{300, 1},   // clamped
		{-300, 0},  // clamped
	}

	for _, tt := range tests {
		m := baselineMetrics()
		m.WeekOverWeekChange = tt.change
		score := norm.Score(m)
		assert.InDelta(t, tt.want*cfg.Weights.Trend, score.Breakdown.Trend, 1e-9)
	}
}

func TestScoreVolumeNormalization(t *testing.T) {
	cfg := DefaultConfig()
	norm := NewNormalizer(cfg)

	m := baselineMetrics()
	m.TotalResponses = 999
	score := norm.Score(m)
	assert.InDelta(t, cfg.Weights.Volume, score.Breakdown.Volume, 1e-9)

	m.TotalResponses = 5000
	score = norm.Score(m)
	assert.InDelta(t, cfg.Weights.Volume, score.Breakdown.Volume, 1e-9)

	m.TotalResponses = 0
	score = norm.Score(m)
	assert.Zero(t, score.Breakdown.Volume)
}

func TestScoreRecencyDecay(t *testing.T) {
	cfg := DefaultConfig()
	norm := NewNormalizer(cfg)

	m := baselineMetrics()
	m.DaysSinceLastResponse = 0
	fresh := norm.Score(m).Breakdown.Recency
	assert.InDelta(t, cfg.Weights.Recency, fresh, 1e-9)

	m.DaysSinceLastResponse = 10
	decayed := norm.Score(m).Breakdown.Recency
	assert.InDelta(t, cfg.Weights.Recency*math.Exp(-1), decayed, 1e-9)

	// The no-response sentinel maps to effectively zero.
	m.DaysSinceLastResponse = 999
	sentinel := norm.Score(m).Breakdown.Recency
	assert.Less(t, sentinel, 1e-9)
}

func TestScoreMonotonicInNPS(t *testing.T) {
	norm := NewNormalizer(DefaultConfig())

	prev := -1.0
	for nps := -100.0; nps <= 100; nps += 20 {
		m := baselineMetrics()
		m.NPSScore = nps
		score := norm.Score(m)
		assert.Greater(t, score.TotalScore, prev)
		prev = score.TotalScore
	}
}

func TestScoreBounded(t *testing.T) {
	norm := NewNormalizer(DefaultConfig())

	best := baselineMetrics()
	best.NPSScore = 100
	best.SentimentScore = 1
	best.SurveyCompletionRate = 1
	best.FeedbackVolume = 100
	best.TotalResponses = 2000
	best.DaysSinceLastResponse = 0
	best.WeekOverWeekChange = 500

	score := norm.Score(best)
	assert.InDelta(t, 1.0, score.TotalScore, 1e-9)
	assert.LessOrEqual(t, score.TotalScore, 1.0)

	worst := baselineMetrics()
	worst.NPSScore = -100
	worst.SentimentScore = 0
	worst.SurveyCompletionRate = 0
	worst.FeedbackVolume = 0
	worst.TotalResponses = 0
	worst.DaysSinceLastResponse = 999
	worst.WeekOverWeekChange = -500

	score = norm.Score(worst)
	assert.GreaterOrEqual(t, score.TotalScore, 0.0)
	assert.Less(t, score.TotalScore, 0.01)
}

func TestConfidenceMultiplierTiers(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		responses int
		want      float64
	}{
		{150, 1.0},
		{100, 1.0},
		{99, 0.9},
		{50, 0.9},
		{49, 0.8},
		{20, 0.8},
		{19, 0.5},
		{0, 0.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, cfg.MultiplierFor(tt.responses), 1e-9,
			"responses=%d", tt.responses)
	}
}
