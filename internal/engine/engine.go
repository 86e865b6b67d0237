// Package engine orchestrates weekly ranking runs: it walks every category,
// scores its products and persists one snapshot per (category, week).
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/common/metrics"
	"feedback-ranking/internal/common/observability"
	"feedback-ranking/internal/models"
	"feedback-ranking/internal/ranking"
	"feedback-ranking/internal/ranking/week"
	"feedback-ranking/internal/sentiment"
	"feedback-ranking/internal/signals"
	"feedback-ranking/internal/snapshot"
)

// categoryConcurrency bounds how many categories are processed in parallel.
// Products within a category get their own bound from Options.
const categoryConcurrency = 4

// Options wires the engine's collaborators.
type Options struct {
	Config *ranking.Config

	// ProductConcurrency bounds parallel product scoring within one
	// category. Zero means sequential.
	ProductConcurrency int

	Source        signals.Source
	Store         snapshot.Store
	Classifier    sentiment.Classifier
	Observability *observability.Observability
	Logger        logger.Logger
}

// Engine runs the full ranking pipeline and exposes the snapshot read API.
type Engine struct {
	cfg                *ranking.Config
	productConcurrency int
	source             signals.Source
	store              snapshot.Store
	calc               *ranking.Calculator
	norm               *ranking.Normalizer
	obs                *observability.Observability
	logger             logger.Logger
	now                func() time.Time
}

func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranking config: %w", err)
	}
	if opts.Source == nil || opts.Store == nil || opts.Classifier == nil {
		return nil, errors.New("engine requires a source, a store and a classifier")
	}

	concurrency := opts.ProductConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Engine{
		cfg:                opts.Config,
		productConcurrency: concurrency,
		source:             opts.Source,
		store:              opts.Store,
		calc:               ranking.NewCalculator(opts.Config, opts.Classifier, opts.Logger),
		norm:               ranking.NewNormalizer(opts.Config),
		obs:                opts.Observability,
		logger:             opts.Logger.WithFields(map[string]interface{}{"component": "ranking-engine"}),
		now:                time.Now,
	}, nil
}

// CategorySummary reports the outcome of one category's run.
type CategorySummary struct {
	Category          string `json:"category"`
	ProductsEvaluated int    `json:"productsEvaluated"`
	ProductsRanked    int    `json:"productsRanked"`
	Stale             bool   `json:"stale,omitempty"`
	Error             string `json:"error,omitempty"`
}

// RunSummary reports the outcome of one full run across all categories.
type RunSummary struct {
	RunID      string            `json:"runId"`
	WeekID     string            `json:"weekId"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Categories []CategorySummary `json:"categories"`
}

// Run executes one ranking run over every category. A category failure does
// not stop sibling categories; Run finishes them all and returns the
// summary together with the joined per-category errors, if any. A stale
// snapshot write means a concurrent run already persisted a newer result
// for that key and is reported but not treated as a failure.
func (e *Engine) Run(ctx context.Context) (*RunSummary, error) {
	startedAt := e.now()
	summary := &RunSummary{
		RunID:     uuid.New().String(),
		WeekID:    week.ID(startedAt),
		StartedAt: startedAt,
	}

	log := e.logger.WithFields(map[string]interface{}{
		"runId": summary.RunID,
		"week":  summary.WeekID,
	})
	log.Info("ranking run started", nil)

	categories, err := e.source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	summary.Categories = make([]CategorySummary, len(categories))
	var errs []error
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(categoryConcurrency)
	for i, category := range categories {
		g.Go(func() error {
			cs := e.runCategory(gctx, log, category, startedAt)
			mu.Lock()
			summary.Categories[i] = cs
			if cs.Error != "" {
				errs = append(errs, fmt.Errorf("category %s: %s", category, cs.Error))
			}
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait only propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		return summary, err
	}

	summary.FinishedAt = e.now()
	log.Info("ranking run finished", map[string]interface{}{
		"categories": len(categories),
		"failed":     len(errs),
		"durationMs": summary.FinishedAt.Sub(startedAt).Milliseconds(),
	})

	return summary, errors.Join(errs...)
}

func (e *Engine) runCategory(ctx context.Context, log logger.Logger, category string, generatedAt time.Time) CategorySummary {
	start := e.now()
	cs := CategorySummary{Category: category}

	ranked, evaluated, err := e.rankCategory(ctx, category, generatedAt)
	duration := e.now().Sub(start)
	metrics.RankingRunDuration.WithLabelValues(category).Observe(duration.Seconds())
	if e.obs != nil {
		e.obs.RecordRunDuration(ctx, duration, category)
	}

	switch {
	case errors.Is(err, snapshot.ErrStaleSnapshot):
		cs.Stale = true
		metrics.RankingRuns.WithLabelValues(category, "stale").Inc()
		log.Warn("snapshot not written, a newer one exists", map[string]interface{}{
			"category": category,
		})
	case err != nil:
		cs.Error = err.Error()
		metrics.RankingRuns.WithLabelValues(category, "error").Inc()
		if e.obs != nil {
			e.obs.RecordRun(ctx, category, "error")
		}
		log.WithError(err).Error("category run failed", map[string]interface{}{
			"category": category,
		})
		return cs
	default:
		metrics.RankingRuns.WithLabelValues(category, "ok").Inc()
		if e.obs != nil {
			e.obs.RecordRun(ctx, category, "ok")
		}
	}

	cs.ProductsRanked = ranked
	cs.ProductsEvaluated = evaluated
	log.Info("category ranked", map[string]interface{}{
		"category":  category,
		"evaluated": evaluated,
		"ranked":    ranked,
	})
	return cs
}

// rankCategory scores one category's products and persists the snapshot.
// It returns the number of ranked entries and the pre-truncation count of
// scored eligible products.
func (e *Engine) rankCategory(ctx context.Context, category string, generatedAt time.Time) (int, int, error) {
	products, err := e.source.ListProducts(ctx, category)
	if err != nil {
		return 0, 0, err
	}

	records, err := e.computeMetrics(ctx, products, generatedAt)
	if err != nil {
		return 0, 0, err
	}

	eligible := e.cfg.FilterEligible(records)

	scores := make([]models.RankingScore, 0, len(eligible))
	byID := make(map[string]*models.ProductRankingMetrics, len(eligible))
	for _, m := range eligible {
		scores = append(scores, e.norm.Score(m))
		byID[m.ProductID] = m
	}

	entries, evaluated := ranking.GenerateTopRankings(scores, byID, e.cfg.TopN)

	weekStart := week.Start(generatedAt)
	ranked := &models.WeeklyRanking{
		Category:               category,
		WeekID:                 week.ID(generatedAt),
		WeekStart:              weekStart,
		WeekEnd:                week.End(generatedAt),
		GeneratedAt:            generatedAt,
		TotalProductsEvaluated: evaluated,
		Rankings:               entries,
	}

	if err := e.store.Save(ctx, ranked); err != nil {
		return len(entries), evaluated, err
	}
	return len(entries), evaluated, nil
}

// computeMetrics scores products with bounded concurrency. Results keep the
// input order; skipped products (no category) leave no record.
func (e *Engine) computeMetrics(ctx context.Context, products []models.Product, generatedAt time.Time) ([]*models.ProductRankingMetrics, error) {
	prevStart := week.PreviousStart(generatedAt)
	weekStart := week.Start(generatedAt)

	slots := make([]*models.ProductRankingMetrics, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.productConcurrency)
	for i, product := range products {
		g.Go(func() error {
			responses, err := e.source.ResponseHistory(gctx, product.ID)
			if err != nil {
				return err
			}
			previousWeek, err := e.source.ResponsesBetween(gctx, product.ID, prevStart, weekStart)
			if err != nil {
				return err
			}
			m, err := e.calc.Compute(gctx, product, responses, previousWeek)
			if err != nil {
				return err
			}
			slots[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]*models.ProductRankingMetrics, 0, len(products))
	for _, m := range slots {
		if m != nil {
			records = append(records, m)
		}
	}
	return records, nil
}

// GetCurrentRanking returns the current week's snapshot for a category, or
// nil when no run has produced one yet.
func (e *Engine) GetCurrentRanking(ctx context.Context, category string) (*models.WeeklyRanking, error) {
	return e.store.Get(ctx, week.ID(e.now()), category)
}

// GetRankingHistory returns up to limit past snapshots, most recent first.
func (e *Engine) GetRankingHistory(ctx context.Context, category string, limit int) ([]*models.WeeklyRanking, error) {
	return e.store.GetHistory(ctx, category, limit)
}

// GetProductRankingHistory returns a product's week-by-week ranking
// trajectory, oldest week first.
func (e *Engine) GetProductRankingHistory(ctx context.Context, productID, category string) ([]models.TrendPoint, error) {
	return e.store.GetProductTrend(ctx, productID, category)
}

// GetPreviousRank returns a product's rank in last week's snapshot, or nil
// when the snapshot is absent or the product was not ranked in it.
func (e *Engine) GetPreviousRank(ctx context.Context, productID, category string) (*int, error) {
	previous, err := e.store.Get(ctx, week.PreviousID(e.now()), category)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return nil, nil
	}
	if entry := previous.EntryFor(productID); entry != nil {
		rank := entry.Rank
		return &rank, nil
	}
	return nil, nil
}
