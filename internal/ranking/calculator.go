// internal/ranking/calculator.go
package ranking

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/common/metrics"
	"feedback-ranking/internal/models"
	"feedback-ranking/internal/sentiment"
)

const (
	// Sentinel for products with no responses; maps to near-zero recency.
	noResponseDays = 999

	// Free-text answers shorter than this are not worth classifying.
	minSentimentTextLen = 10

	// A response counts toward feedback volume when it carries at least one
	// answer longer than this.
	minFeedbackTextLen = 20

	// Surveys are nominally 2-3 questions.
	nominalQuestionCount = 3.0

	trendThresholdPct = 5.0
)

// Calculator turns a product's raw survey responses into a
// ProductRankingMetrics record. The external sentiment classifier is the
// dominant cost; its calls are batched with bounded concurrency.
type Calculator struct {
	config     *Config
	classifier sentiment.Classifier
	logger     logger.Logger
	now        func() time.Time
}

func NewCalculator(config *Config, classifier sentiment.Classifier, log logger.Logger) *Calculator {
	return &Calculator{
		config:     config,
		classifier: classifier,
		logger:     log.WithFields(map[string]interface{}{"component": "metrics-calculator"}),
		now:        time.Now,
	}
}

// Compute produces the metrics record for one product. A product without a
// category is not applicable for ranking: Compute logs, returns (nil, nil)
// and the caller skips it. previousWeek may be nil when no prior-week
// responses are available.
func (c *Calculator) Compute(ctx context.Context, product models.Product, responses, previousWeek []models.SurveyResponse) (*models.ProductRankingMetrics, error) {
	if !product.HasCategory() {
		c.logger.Warn("product has no category, excluded from ranking", map[string]interface{}{
			"productId": product.ID,
		})
		metrics.ProductsSkipped.WithLabelValues("uncategorized", "missing_category").Inc()
		return nil, nil
	}

	now := c.now()

	npsScore := computeNPS(responses)
	sentimentScore, breakdown := c.computeSentiment(ctx, product.ID, responses)
	completionRate, feedbackVolume := computeEngagement(responses)

	lastResponseAt, daysSinceLast := computeRecency(responses, now)
	recent7 := countSince(responses, now.AddDate(0, 0, -7))
	recent30 := countSince(responses, now.AddDate(0, 0, -30))

	change, direction := c.computeTrend(responses, previousWeek, now)

	total := len(responses)
	confidence := computeConfidence(total, recent7, daysSinceLast)

	m := &models.ProductRankingMetrics{
		ProductID:             product.ID,
		ProductName:           product.Name,
		Category:              product.Category,
		NPSScore:              npsScore,
		TotalResponses:        total,
		SentimentScore:        sentimentScore,
		SentimentBreakdown:    breakdown,
		SurveyCompletionRate:  completionRate,
		FeedbackVolume:        feedbackVolume,
		RecentResponseCount:   recent7,
		LastResponseAt:        lastResponseAt,
		DaysSinceLastResponse: daysSinceLast,
		WeekOverWeekChange:    change,
		TrendDirection:        direction,
		ConfidenceScore:       confidence,
		HasMinimumData: total >= c.config.MinTotalResponses &&
			recent30 >= c.config.MinRecentResponses,
	}

	metrics.ProductsScored.WithLabelValues(product.Category).Inc()
	return m, nil
}

// isNPSKey reports whether an answer key names an NPS/"recommend" question.
func isNPSKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "nps") || strings.Contains(k, "recommend")
}

// numericAnswer extracts a rating value from an answer.
func numericAnswer(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// computeNPS scans responses for NPS-style answers: >=9 promoter,
// <=6 detractor, 7-8 passive. Returns 0 when nothing is scoreable.
func computeNPS(responses []models.SurveyResponse) float64 {
	promoters, detractors, total := 0, 0, 0
	for _, r := range responses {
		for key, value := range r.Answers {
			if !isNPSKey(key) {
				continue
			}
			score, ok := numericAnswer(value)
			if !ok {
				continue
			}
			total++
			switch {
			case score >= 9:
				promoters++
			case score <= 6:
				detractors++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(promoters-detractors) / float64(total) * 100
}

// computeSentiment classifies every qualifying free-text answer with bounded
// concurrency. Failed classifications are isolated: the fragment is dropped
// from the count and logged, never fatal for the product. With no
// classifiable text the score defaults to a neutral 0.5 so absence of text
// does not read as negative sentiment.
func (c *Calculator) computeSentiment(ctx context.Context, productID string, responses []models.SurveyResponse) (float64, models.SentimentBreakdown) {
	var texts []string
	for _, r := range responses {
		for _, value := range r.Answers {
			if text, ok := value.(string); ok && len(text) > minSentimentTextLen {
				if _, numeric := numericAnswer(text); !numeric {
					texts = append(texts, text)
				}
			}
		}
	}

	var bd models.SentimentBreakdown
	if len(texts) == 0 {
		return 0.5, bd
	}

	failed := 0
	for _, res := range sentiment.ClassifyBatch(ctx, c.classifier, texts, c.config.ClassifierConcurrency) {
		if res.Err != nil {
			failed++
			continue
		}
		switch res.Sentiment {
		case sentiment.Positive:
			bd.Positive++
		case sentiment.Negative:
			bd.Negative++
		default:
			bd.Neutral++
		}
	}
	if failed > 0 {
		c.logger.Warn("some sentiment classifications failed", map[string]interface{}{
			"productId": productID,
			"failed":    failed,
			"total":     len(texts),
		})
	}

	classified := bd.Positive + bd.Neutral + bd.Negative
	if classified == 0 {
		return 0.5, bd
	}
	return float64(bd.Positive) / float64(classified), bd
}

// computeEngagement derives the completion rate and feedback volume.
func computeEngagement(responses []models.SurveyResponse) (float64, int) {
	if len(responses) == 0 {
		return 0, 0
	}

	totalAnswers := 0
	feedbackVolume := 0
	for _, r := range responses {
		totalAnswers += len(r.Answers)
		for _, value := range r.Answers {
			if text, ok := value.(string); ok && len(text) > minFeedbackTextLen {
				feedbackVolume++
				break
			}
		}
	}

	avgAnswers := float64(totalAnswers) / float64(len(responses))
	completionRate := math.Min(avgAnswers/nominalQuestionCount, 1)
	return completionRate, feedbackVolume
}

func computeRecency(responses []models.SurveyResponse, now time.Time) (*time.Time, float64) {
	var last *time.Time
	for i := range responses {
		t := responses[i].SubmittedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	if last == nil {
		return nil, noResponseDays
	}
	days := now.Sub(*last).Hours() / 24
	if days < 0 {
		days = 0
	}
	return last, days
}

func countSince(responses []models.SurveyResponse, cutoff time.Time) int {
	n := 0
	for _, r := range responses {
		if !r.SubmittedAt.Before(cutoff) {
			n++
		}
	}
	return n
}

// computeTrend compares NPS over the trailing 7 days against the supplied
// previous-week responses.
func (c *Calculator) computeTrend(responses, previousWeek []models.SurveyResponse, now time.Time) (float64, models.TrendDirection) {
	if len(previousWeek) == 0 {
		return 0, models.TrendStable
	}

	cutoff := now.AddDate(0, 0, -7)
	var current []models.SurveyResponse
	for _, r := range responses {
		if !r.SubmittedAt.Before(cutoff) {
			current = append(current, r)
		}
	}

	currentNPS := computeNPS(current)
	previousNPS := computeNPS(previousWeek)

	change := 0.0
	if previousNPS != 0 {
		change = (currentNPS - previousNPS) / math.Abs(previousNPS) * 100
	}

	switch {
	case change > trendThresholdPct:
		return change, models.TrendUp
	case change < -trendThresholdPct:
		return change, models.TrendDown
	default:
		return change, models.TrendStable
	}
}

// computeConfidence blends volume, recency and activity confidence. This is
// the descriptive 0..1 score, distinct from the tier multiplier applied
// during normalization.
func computeConfidence(total, recent int, daysSinceLast float64) float64 {
	volumeConf := math.Min(float64(total)/100, 1)
	recencyConf := math.Max(0, 1-daysSinceLast/30)

	activityConf := 0.0
	if total > 0 {
		denom := total
		if denom > 20 {
			denom = 20
		}
		activityConf = math.Min(float64(recent)/float64(denom), 1)
	}

	return volumeConf*0.5 + recencyConf*0.3 + activityConf*0.2
}
