// internal/snapshot/store.go
package snapshot

import (
	"context"
	"errors"

	"feedback-ranking/internal/models"
)

// ErrStaleSnapshot is returned by Save when a newer snapshot already exists
// for the same (category, week) key. The slower writer loses; the stored
// snapshot is untouched.
var ErrStaleSnapshot = errors.New("a newer snapshot exists for this category and week")

// Store persists WeeklyRanking snapshots keyed by (category, week).
//
// A read miss is a normal "no data yet" outcome: Get, GetCurrent and
// GetPreviousRank return nil with a nil error when the key is absent.
// Save is an atomic full overwrite of one key, guarded so a stale
// generatedAt cannot clobber a newer snapshot.
type Store interface {
	Save(ctx context.Context, ranking *models.WeeklyRanking) error
	Get(ctx context.Context, weekID, category string) (*models.WeeklyRanking, error)
	GetCurrent(ctx context.Context, category string) (*models.WeeklyRanking, error)

	// GetHistory returns snapshots for a category, most recent week first.
	// limit <= 0 means no truncation.
	GetHistory(ctx context.Context, category string, limit int) ([]*models.WeeklyRanking, error)

	// GetProductTrend returns one point per historical snapshot of the
	// category, oldest week first. Rank is nil for weeks where the product
	// did not make the top N.
	GetProductTrend(ctx context.Context, productID, category string) ([]models.TrendPoint, error)

	// GetPreviousRank returns the product's rank in the snapshot exactly one
	// week before the current week, or nil if that snapshot is absent or the
	// product was not ranked in it.
	GetPreviousRank(ctx context.Context, productID, category string) (*int, error)
}

// trendPoints extracts a product's trend from snapshots ordered oldest
// first. Shared by both store implementations.
func trendPoints(snapshots []*models.WeeklyRanking, productID string) []models.TrendPoint {
	points := make([]models.TrendPoint, 0, len(snapshots))
	for _, s := range snapshots {
		point := models.TrendPoint{
			WeekStart: s.WeekStart,
			WeekID:    s.WeekID,
		}
		if entry := s.EntryFor(productID); entry != nil {
			rank := entry.Rank
			point.Rank = &rank
			point.Score = entry.Score
		}
		points = append(points, point)
	}
	return points
}

// rankIn returns the product's rank within a snapshot, nil when absent.
func rankIn(s *models.WeeklyRanking, productID string) *int {
	if s == nil {
		return nil
	}
	if entry := s.EntryFor(productID); entry != nil {
		rank := entry.Rank
		return &rank
	}
	return nil
}
