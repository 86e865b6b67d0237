// Package signals reads the raw ranking inputs: products and their survey
// responses.
package signals

import (
	"context"
	"time"

	"feedback-ranking/internal/models"
)

// Source supplies the raw signals a ranking run consumes. Implementations
// must return responses in no particular order; the calculator does not
// depend on ordering.
type Source interface {
	// ListCategories returns every category with at least one product.
	ListCategories(ctx context.Context) ([]string, error)

	// ListProducts returns the products assigned to a category.
	ListProducts(ctx context.Context, category string) ([]models.Product, error)

	// ResponseHistory returns a product's full survey response history.
	ResponseHistory(ctx context.Context, productID string) ([]models.SurveyResponse, error)

	// ResponsesBetween returns the responses submitted in [from, to).
	ResponsesBetween(ctx context.Context, productID string, from, to time.Time) ([]models.SurveyResponse, error)
}
