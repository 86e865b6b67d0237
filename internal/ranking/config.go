// internal/ranking/config.go
package ranking

import (
	"fmt"
	"math"
)

// Weights are the fixed component weights of the score. They must sum to
// exactly 1.0 so the pre-multiplier total stays bounded to [0,1].
type Weights struct {
	NPS        float64
	Sentiment  float64
	Engagement float64
	Volume     float64
	Recency    float64
	Trend      float64
}

func (w Weights) Sum() float64 {
	return w.NPS + w.Sentiment + w.Engagement + w.Volume + w.Recency + w.Trend
}

// ConfidenceTier maps a minimum response count to a score multiplier.
// Tiers are evaluated high-to-low; first match wins.
type ConfidenceTier struct {
	MinResponses int
	Multiplier   float64
}

// Config holds every tunable of the scoring pipeline, injectable so weights
// and thresholds are testable without recompilation.
type Config struct {
	Weights         Weights
	ConfidenceTiers []ConfidenceTier

	// Eligibility thresholds. Both must be explicit configuration; zero is
	// a legitimate bootstrap value.
	MinTotalResponses  int
	MinRecentResponses int

	TopN int

	// ClassifierConcurrency bounds parallel sentiment calls per product.
	ClassifierConcurrency int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			NPS:        0.25,
			Sentiment:  0.20,
			Engagement: 0.20,
			Volume:     0.15,
			Recency:    0.10,
			Trend:      0.10,
		},
		ConfidenceTiers: []ConfidenceTier{
			{MinResponses: 100, Multiplier: 1.0},
			{MinResponses: 50, Multiplier: 0.9},
			{MinResponses: 20, Multiplier: 0.8},
			{MinResponses: 0, Multiplier: 0.5},
		},
		MinTotalResponses:     5,
		MinRecentResponses:    1,
		TopN:                  10,
		ClassifierConcurrency: 8,
	}
}

// Validate checks structural invariants of the configuration.
func (c *Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1.0, got %.6f", c.Weights.Sum())
	}
	if len(c.ConfidenceTiers) == 0 {
		return fmt.Errorf("at least one confidence tier is required")
	}
	for i := 1; i < len(c.ConfidenceTiers); i++ {
		if c.ConfidenceTiers[i].MinResponses >= c.ConfidenceTiers[i-1].MinResponses {
			return fmt.Errorf("confidence tiers must be ordered by descending MinResponses")
		}
	}
	if c.TopN <= 0 {
		return fmt.Errorf("topN must be positive")
	}
	return nil
}

// MultiplierFor returns the confidence multiplier for a response count.
func (c *Config) MultiplierFor(totalResponses int) float64 {
	for _, tier := range c.ConfidenceTiers {
		if totalResponses >= tier.MinResponses {
			return tier.Multiplier
		}
	}
	// Below the lowest tier floor; use the last (smallest) tier.
	return c.ConfidenceTiers[len(c.ConfidenceTiers)-1].Multiplier
}
