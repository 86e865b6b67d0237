// internal/snapshot/postgres.go
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stderrors "feedback-ranking/internal/common/errors"
	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/common/metrics"
	"feedback-ranking/internal/models"
	"feedback-ranking/internal/ranking/week"
)

// Schema is the DDL for the snapshot table. The primary key gives direct
// point lookups; the week_start index serves time-ordered history queries.
const Schema = `
CREATE TABLE IF NOT EXISTS weekly_rankings (
	category        TEXT        NOT NULL,
	week_id         TEXT        NOT NULL,
	week_start      TIMESTAMPTZ NOT NULL,
	week_end        TIMESTAMPTZ NOT NULL,
	generated_at    TIMESTAMPTZ NOT NULL,
	total_evaluated INTEGER     NOT NULL,
	document        JSONB       NOT NULL,
	PRIMARY KEY (category, week_id)
);
CREATE INDEX IF NOT EXISTS idx_weekly_rankings_history
	ON weekly_rankings (category, week_start DESC);
`

const saveQuery = `
INSERT INTO weekly_rankings (category, week_id, week_start, week_end, generated_at, total_evaluated, document)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (category, week_id) DO UPDATE SET
	week_start = EXCLUDED.week_start,
	week_end = EXCLUDED.week_end,
	generated_at = EXCLUDED.generated_at,
	total_evaluated = EXCLUDED.total_evaluated,
	document = EXCLUDED.document
WHERE weekly_rankings.generated_at <= EXCLUDED.generated_at`

// PostgresStore persists snapshots in a keyed table. The upsert's
// generated_at guard makes a stale concurrent write a no-op instead of an
// overwrite.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "snapshot-store"}),
		now:    time.Now,
	}
}

// EnsureSchema creates the snapshot table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, ranking *models.WeeklyRanking) error {
	doc, err := json.Marshal(ranking)
	if err != nil {
		return stderrors.NewSnapshotWriteFailedError(ranking.Category, ranking.WeekID, err)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, saveQuery,
		ranking.Category,
		ranking.WeekID,
		ranking.WeekStart,
		ranking.WeekEnd,
		ranking.GeneratedAt,
		ranking.TotalProductsEvaluated,
		doc,
	)
	if err != nil {
		metrics.SnapshotWrites.WithLabelValues(ranking.Category, "error").Inc()
		return stderrors.NewSnapshotWriteFailedError(ranking.Category, ranking.WeekID, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
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

func (s *PostgresStore) Get(ctx context.Context, weekID, category string) (*models.WeeklyRanking, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM weekly_rankings WHERE category = $1 AND week_id = $2`,
		category, weekID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
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

func (s *PostgresStore) GetCurrent(ctx context.Context, category string) (*models.WeeklyRanking, error) {
	return s.Get(ctx, week.ID(s.now()), category)
}

func (s *PostgresStore) GetHistory(ctx context.Context, category string, limit int) ([]*models.WeeklyRanking, error) {
	query := `SELECT document FROM weekly_rankings WHERE category = $1 ORDER BY week_start DESC`
	args := []interface{}{category}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot history read failed: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func (s *PostgresStore) GetProductTrend(ctx context.Context, productID, category string) ([]models.TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document FROM weekly_rankings WHERE category = $1 ORDER BY week_start ASC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot history read failed: %w", err)
	}
	defer rows.Close()

	snapshots, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	return trendPoints(snapshots, productID), nil
}

func (s *PostgresStore) GetPreviousRank(ctx context.Context, productID, category string) (*int, error) {
	previous, err := s.Get(ctx, week.PreviousID(s.now()), category)
	if err != nil {
		return nil, err
	}
	return rankIn(previous, productID), nil
}

func scanSnapshots(rows *sql.Rows) ([]*models.WeeklyRanking, error) {
	var snapshots []*models.WeeklyRanking
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("snapshot scan failed: %w", err)
		}
		var ranking models.WeeklyRanking
		if err := json.Unmarshal(doc, &ranking); err != nil {
			return nil, fmt.Errorf("snapshot decode failed: %w", err)
		}
		snapshots = append(snapshots, &ranking)
	}
	return snapshots, rows.Err()
}
