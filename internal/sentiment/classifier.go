// internal/sentiment/classifier.go
package sentiment

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Sentiment is the classification of one text fragment.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Classifier classifies a text span. Implementations may fail per call;
// callers decide whether a single failure is fatal.
type Classifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}

// Result is one classification outcome. Err is set when the call for that
// fragment failed; Sentiment is then meaningless.
type Result struct {
	Sentiment Sentiment
	Err       error
}

// ClassifyBatch classifies texts with at most limit concurrent calls and
// returns results index-matched to the input. Per-item failures are recorded
// in the result, never propagated, so one flaky classification cannot abort
// the batch.
func ClassifyBatch(ctx context.Context, cl Classifier, texts []string, limit int) []Result {
	if limit <= 0 {
		limit = 1
	}
	results := make([]Result, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, text := range texts {
		g.Go(func() error {
			s, err := cl.Classify(ctx, text)
			results[i] = Result{Sentiment: s, Err: err}
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()
	return results
}
