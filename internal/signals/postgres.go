// internal/signals/postgres.go
package signals

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	stderrors "feedback-ranking/internal/common/errors"
	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/models"
)

// PostgresSource reads products and survey responses from the feedback
// platform's primary database. Answers are stored as a JSONB object keyed
// by question key.
type PostgresSource struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresSource(db *sql.DB, log logger.Logger) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "signal-source"}),
	}
}

func (s *PostgresSource) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM products WHERE category IS NOT NULL AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, stderrors.NewSignalQueryFailedError(err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, stderrors.NewSignalQueryFailedError(err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *PostgresSource) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(category, '') FROM products WHERE category = $1 ORDER BY id`,
		category)
	if err != nil {
		return nil, stderrors.NewSignalQueryFailedError(err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category); err != nil {
			return nil, stderrors.NewSignalQueryFailedError(err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *PostgresSource) ResponseHistory(ctx context.Context, productID string) ([]models.SurveyResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, submitted_at, answers FROM survey_responses WHERE product_id = $1`,
		productID)
	if err != nil {
		return nil, stderrors.NewSignalQueryFailedError(err)
	}
	defer rows.Close()

	return s.scanResponses(rows)
}

func (s *PostgresSource) ResponsesBetween(ctx context.Context, productID string, from, to time.Time) ([]models.SurveyResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, submitted_at, answers FROM survey_responses
		 WHERE product_id = $1 AND submitted_at >= $2 AND submitted_at < $3`,
		productID, from, to)
	if err != nil {
		return nil, stderrors.NewSignalQueryFailedError(err)
	}
	defer rows.Close()

	return s.scanResponses(rows)
}

func (s *PostgresSource) scanResponses(rows *sql.Rows) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	for rows.Next() {
		var (
			r       models.SurveyResponse
			answers []byte
		)
		if err := rows.Scan(&r.ID, &r.ProductID, &r.SubmittedAt, &answers); err != nil {
			return nil, stderrors.NewSignalQueryFailedError(err)
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &r.Answers); err != nil {
				// A malformed answers blob is a data bug; skip the row
				// rather than failing the whole product.
				s.logger.Warn("skipping response with malformed answers", map[string]interface{}{
					"responseId": r.ID,
				})
				continue
			}
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
