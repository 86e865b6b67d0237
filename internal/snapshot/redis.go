// internal/snapshot/redis.go
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "feedback-ranking/internal/common/errors"
	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/common/metrics"
	"feedback-ranking/internal/models"
	"feedback-ranking/internal/ranking/week"
)

// saveScript is the atomic compare-and-write for one snapshot key. It
// rejects writes whose generatedAt is older than the stored one, so a slow
// concurrent run cannot clobber a newer snapshot. Re-saving the same
// generatedAt is accepted (idempotent overwrite).
var saveScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[2]) < current then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
redis.call('ZADD', KEYS[3], ARGV[3], ARGV[4])
return 1
`)

// RedisStore keeps one document per (category, week) with a per-category
// sorted-set index ordered by week start, so history queries never scan.
type RedisStore struct {
	client redis.Cmdable
	logger logger.Logger
	now    func() time.Time
}

func NewRedisStore(client redis.Cmdable, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "snapshot-store"}),
		now:    time.Now,
	}
}

func snapshotKey(category, weekID string) string {
	return fmt.Sprintf("ranking:%s:%s", category, weekID)
}

func generationKey(category, weekID string) string {
	return snapshotKey(category, weekID) + ":gen"
}

func indexKey(category string) string {
	return "ranking:index:" + category
}

func (s *RedisStore) Save(ctx context.Context, ranking *models.WeeklyRanking) error {
	doc, err := json.Marshal(ranking)
	if err != nil {
		return stderrors.NewSnapshotWriteFailedError(ranking.Category, ranking.WeekID, err)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	keys := []string{
		snapshotKey(ranking.Category, ranking.WeekID),
		generationKey(ranking.Category, ranking.WeekID),
		indexKey(ranking.Category),
	}
	stored, err := saveScript.Run(ctx, s.client, keys,
		doc,
		ranking.GeneratedAt.UnixMilli(),
		ranking.WeekStart.Unix(),
		ranking.WeekID,
	).Int()
	if err != nil {
		metrics.SnapshotWrites.WithLabelValues(ranking.Category, "error").Inc()
		return stderrors.NewSnapshotWriteFailedError(ranking.Category, ranking.WeekID, err)
	}
	if stored == 0 {
		metrics.SnapshotWrites.WithLabelValues(ranking.Category, "stale").Inc()
		return ErrStaleSnapshot
	}

	metrics.SnapshotWrites.WithLabelValues(ranking.Category, "ok").Inc()
	s.logger.Info("snapshot saved", map[string]interface{}{
		"category": ranking.Category,
		"week":     ranking.WeekID,
		"entries":  len(ranking.Rankings),
	})
	return nil
}

func (s *RedisStore) Get(ctx context.Context, weekID, category string) (*models.WeeklyRanking, error) {
	doc, err := s.client.Get(ctx, snapshotKey(category, weekID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot read failed: %w", err)
	}

	var ranking models.WeeklyRanking
	if err := json.Unmarshal(doc, &ranking); err != nil {
		return nil, fmt.Errorf("snapshot decode failed: %w", err)
	}
	return &ranking, nil
}

func (s *RedisStore) GetCurrent(ctx context.Context, category string) (*models.WeeklyRanking, error) {
	return s.Get(ctx, week.ID(s.now()), category)
}

func (s *RedisStore) GetHistory(ctx context.Context, category string, limit int) ([]*models.WeeklyRanking, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	weekIDs, err := s.client.ZRevRange(ctx, indexKey(category), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot index read failed: %w", err)
	}
	return s.fetchAll(ctx, category, weekIDs)
}

func (s *RedisStore) GetProductTrend(ctx context.Context, productID, category string) ([]models.TrendPoint, error) {
	weekIDs, err := s.client.ZRange(ctx, indexKey(category), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot index read failed: %w", err)
	}

	snapshots, err := s.fetchAll(ctx, category, weekIDs)
	if err != nil {
		return nil, err
	}
	return trendPoints(snapshots, productID), nil
}

func (s *RedisStore) GetPreviousRank(ctx context.Context, productID, category string) (*int, error) {
	previous, err := s.Get(ctx, week.PreviousID(s.now()), category)
	if err != nil {
		return nil, err
	}
	return rankIn(previous, productID), nil
}

func (s *RedisStore) fetchAll(ctx context.Context, category string, weekIDs []string) ([]*models.WeeklyRanking, error) {
	snapshots := make([]*models.WeeklyRanking, 0, len(weekIDs))
	for _, id := range weekIDs {
		ranking, err := s.Get(ctx, id, category)
		if err != nil {
			return nil, err
		}
		// An index entry without a document means a partially deleted key;
		// treat as absent.
		if ranking != nil {
			snapshots = append(snapshots, ranking)
		}
	}
	return snapshots, nil
}
